package batch_test

import (
	"context"
	stderrors "errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/traitforge/pkg/batch"
	"github.com/matzehuels/traitforge/pkg/configure"
	"github.com/matzehuels/traitforge/pkg/dna"
	"github.com/matzehuels/traitforge/pkg/errors"
	"github.com/matzehuels/traitforge/pkg/palette"
	"github.com/matzehuels/traitforge/pkg/render"
	"github.com/matzehuels/traitforge/pkg/scene/scenetest"
	"github.com/matzehuels/traitforge/pkg/store"
)

type fixture struct {
	set    dna.Set
	conf   *configure.Configurator
	frames []render.Frame
}

func newFixture(t *testing.T, n int) *fixture {
	t.Helper()
	gen, err := dna.NewGenerator(scenetest.Bank(), dna.Options{Seed: 7})
	if err != nil {
		t.Fatal(err)
	}
	set, err := gen.Set(context.Background(), n)
	if err != nil {
		t.Fatal(err)
	}
	var entries []palette.Entry
	for i := 0; i < dna.DefaultColorSize; i++ {
		entries = append(entries, palette.Entry{Color1: "102030", Color2: "405060"})
	}
	colors, err := palette.NewTable(entries)
	if err != nil {
		t.Fatal(err)
	}
	return &fixture{set: set, conf: configure.New(scenetest.New(), colors, nil)}
}

// recorder returns a renderer that records frames and fails with the
// errors in fails, one per call, before succeeding.
func (f *fixture) recorder(fails ...error) render.Renderer {
	return render.Func(func(_ context.Context, fr render.Frame) error {
		if len(fails) > 0 {
			err := fails[0]
			fails = fails[1:]
			return err
		}
		f.frames = append(f.frames, fr)
		return nil
	})
}

type sleeps struct{ got []time.Duration }

func (s *sleeps) sleep(_ context.Context, d time.Duration) error {
	s.got = append(s.got, d)
	return nil
}

func TestAdvanceBatch(t *testing.T) {
	f := newFixture(t, 5)
	d, err := batch.NewDriver(f.set, f.conf, f.recorder(), batch.Options{
		Start:        1,
		Size:         2,
		OutputPrefix: "renders/",
	})
	if err != nil {
		t.Fatal(err)
	}
	if d.State() != batch.Idle || d.Cursor() != 1 || d.End() != 3 {
		t.Fatalf("initial state = %s cursor %d end %d", d.State(), d.Cursor(), d.End())
	}

	dir, err := d.Advance(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if dir.Halt || dir.After != batch.DefaultDelay {
		t.Errorf("first directive = %+v, want resume after %s", dir, batch.DefaultDelay)
	}
	if d.Cursor() != 2 || d.State() != batch.Idle {
		t.Errorf("after first step: cursor %d state %s", d.Cursor(), d.State())
	}

	dir, err = d.Advance(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !dir.Halt {
		t.Errorf("second directive = %+v, want halt", dir)
	}
	if d.Cursor() != 3 || d.State() != batch.Done {
		t.Errorf("after second step: cursor %d state %s", d.Cursor(), d.State())
	}

	if len(f.frames) != 2 {
		t.Fatalf("rendered %d frames, want 2", len(f.frames))
	}
	for i, fr := range f.frames {
		id := i + 1
		if fr.ID != id || fr.Path != render.OutputPath("renders/", id) || fr.DNA != f.set[i] {
			t.Errorf("frame %d = id %d path %q dna %v", i, fr.ID, fr.Path, fr.DNA)
		}
		head := fr.State.Visible()["Head"]
		if len(head) != 1 || head[0] != f.conf.Scene().Parts[0].Variants[f.set[i][dna.Head]].Name {
			t.Errorf("frame %d visible head = %v", id, head)
		}
	}

	// Done is terminal.
	dir, err = d.Advance(context.Background())
	if err != nil || !dir.Halt || len(f.frames) != 2 {
		t.Errorf("Advance after done = %+v, %v", dir, err)
	}
}

func TestBatchStopsAtSetEnd(t *testing.T) {
	f := newFixture(t, 3)
	d, err := batch.NewDriver(f.set, f.conf, f.recorder(), batch.Options{Start: 3, Size: 5})
	if err != nil {
		t.Fatal(err)
	}
	if d.End() != 4 {
		t.Fatalf("End() = %d, want 4", d.End())
	}
	dir, err := d.Advance(context.Background())
	if err != nil || !dir.Halt {
		t.Fatalf("Advance = %+v, %v; want halt", dir, err)
	}
	if len(f.frames) != 1 || f.frames[0].ID != 3 {
		t.Errorf("frames = %d", len(f.frames))
	}
}

func TestAdvanceRenderFailureKeepsCursor(t *testing.T) {
	f := newFixture(t, 3)
	boom := stderrors.New("host crashed")
	s := &sleeps{}
	r := render.Func(func(context.Context, render.Frame) error { return render.Retryable(boom) })
	d, err := batch.NewDriver(f.set, f.conf, r, batch.Options{Start: 2, Size: 2, Retries: 2, Sleep: s.sleep})
	if err != nil {
		t.Fatal(err)
	}

	dir, err := d.Advance(context.Background())
	if !dir.Halt {
		t.Error("failed step should halt")
	}
	if !errors.Is(err, errors.ErrCodeRender) {
		t.Fatalf("error = %v, want RENDER", err)
	}
	var je *errors.JobError
	if !stderrors.As(err, &je) || je.ID != 2 || je.Attempts != 3 {
		t.Fatalf("job error = %+v", je)
	}
	if !stderrors.Is(err, boom) {
		t.Error("error should wrap the renderer failure")
	}
	if d.Cursor() != 2 || d.State() != batch.Done || d.Err() != err {
		t.Errorf("cursor %d state %s err %v", d.Cursor(), d.State(), d.Err())
	}
	if len(s.got) != 2 || s.got[0] != time.Second || s.got[1] != 2*time.Second {
		t.Errorf("backoff = %v, want [1s 2s]", s.got)
	}

	if _, again := d.Advance(context.Background()); again != err {
		t.Errorf("Advance after failure = %v, want recorded error", again)
	}
}

func TestAdvanceRetryThenSucceed(t *testing.T) {
	f := newFixture(t, 3)
	s := &sleeps{}
	transient := render.Retryable(stderrors.New("busy"))
	d, _ := batch.NewDriver(f.set, f.conf, f.recorder(transient, transient), batch.Options{Start: 1, Size: 1, Sleep: s.sleep})

	dir, err := d.Advance(context.Background())
	if err != nil || !dir.Halt {
		t.Fatalf("Advance = %+v, %v", dir, err)
	}
	if len(f.frames) != 1 || d.Cursor() != 2 {
		t.Errorf("frames %d cursor %d", len(f.frames), d.Cursor())
	}
	if len(s.got) != 2 {
		t.Errorf("slept %d times, want 2", len(s.got))
	}
}

func TestAdvanceNonRetryable(t *testing.T) {
	f := newFixture(t, 3)
	s := &sleeps{}
	d, _ := batch.NewDriver(f.set, f.conf, f.recorder(stderrors.New("bad manifest")), batch.Options{Start: 1, Sleep: s.sleep})

	_, err := d.Advance(context.Background())
	var je *errors.JobError
	if !stderrors.As(err, &je) || je.Attempts != 1 {
		t.Fatalf("error = %v, want a single attempt", err)
	}
	if len(s.got) != 0 {
		t.Errorf("non-retryable failure slept %v", s.got)
	}
}

func TestAdvanceLookup(t *testing.T) {
	f := newFixture(t, 3)
	d, _ := batch.NewDriver(f.set, f.conf, f.recorder(), batch.Options{Start: 4})

	_, err := d.Advance(context.Background())
	if !errors.Is(err, errors.ErrCodeLookup) {
		t.Fatalf("error = %v, want LOOKUP", err)
	}
	var je *errors.JobError
	if stderrors.As(err, &je) {
		t.Error("lookup failure should not be a job error")
	}
	if d.Cursor() != 4 || len(f.frames) != 0 {
		t.Errorf("cursor %d frames %d", d.Cursor(), len(f.frames))
	}
}

func TestAdvanceReentrant(t *testing.T) {
	f := newFixture(t, 3)
	var d *batch.Driver
	var inner error
	r := render.Func(func(ctx context.Context, _ render.Frame) error {
		_, inner = d.Advance(ctx)
		return nil
	})
	d, _ = batch.NewDriver(f.set, f.conf, r, batch.Options{Start: 1, Size: 1})

	if _, err := d.Advance(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !errors.Is(inner, errors.ErrCodeInternal) {
		t.Errorf("re-entrant Advance error = %v, want INTERNAL_ERROR", inner)
	}
}

func TestAdvanceCanceledDuringBackoff(t *testing.T) {
	f := newFixture(t, 3)
	ctx, cancel := context.WithCancel(context.Background())
	sleep := func(ctx context.Context, _ time.Duration) error {
		cancel()
		return ctx.Err()
	}
	r := render.Func(func(context.Context, render.Frame) error { return render.Retryable(stderrors.New("busy")) })
	d, _ := batch.NewDriver(f.set, f.conf, r, batch.Options{Start: 1, Sleep: sleep})

	if _, err := d.Advance(ctx); !stderrors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if d.State() != batch.Idle || d.Cursor() != 1 {
		t.Errorf("interrupted step left state %s cursor %d", d.State(), d.Cursor())
	}
}

func TestNewDriverValidation(t *testing.T) {
	f := newFixture(t, 1)
	tests := []struct {
		name string
		opts batch.Options
		code errors.Code
	}{
		{"zero start", batch.Options{Start: 0}, errors.ErrCodeInvalidConfig},
		{"negative size", batch.Options{Start: 1, Size: -1}, errors.ErrCodeInvalidConfig},
		{"bad set name", batch.Options{Start: 1, SetName: "../x"}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := batch.NewDriver(f.set, f.conf, f.recorder(), tt.opts); !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
	if _, err := batch.NewDriver(f.set, nil, f.recorder(), batch.Options{Start: 1}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("nil configurator error = %v", err)
	}
}

func TestCheckpointResume(t *testing.T) {
	f := newFixture(t, 6)
	st, err := store.NewFileStore(filepath.Join(t.TempDir(), "state"))
	if err != nil {
		t.Fatal(err)
	}
	opts := batch.Options{Start: 1, Size: 2, Store: st, SetName: "monsters", Delay: -1}

	first, _ := batch.NewDriver(f.set, f.conf, f.recorder(), opts)
	if err := batch.Run(context.Background(), first, nil); err != nil {
		t.Fatal(err)
	}
	cp, hit, err := st.LoadCursor(context.Background(), "monsters")
	if err != nil || !hit {
		t.Fatalf("LoadCursor = %v, %v", hit, err)
	}
	if cp.Next != 3 || cp.Run != first.RunID() || !cp.Matches(store.Fingerprint(f.set)) {
		t.Errorf("checkpoint = %+v", cp)
	}

	second, _ := batch.NewDriver(f.set, f.conf, f.recorder(), opts)
	ok, err := second.ResumeFromCheckpoint(context.Background())
	if err != nil || !ok {
		t.Fatalf("ResumeFromCheckpoint = %v, %v", ok, err)
	}
	if second.Cursor() != 3 || second.End() != 5 {
		t.Errorf("resumed at %d..%d, want 3..5", second.Cursor(), second.End())
	}
	if err := batch.Run(context.Background(), second, nil); err != nil {
		t.Fatal(err)
	}
	if len(f.frames) != 4 || f.frames[3].ID != 4 {
		t.Errorf("rendered %d frames", len(f.frames))
	}

	// A checkpoint does not apply to a different set.
	other := newFixture(t, 6)
	other.set[0], other.set[1] = other.set[1], other.set[0]
	third, _ := batch.NewDriver(other.set, other.conf, other.recorder(), opts)
	if _, err := third.ResumeFromCheckpoint(context.Background()); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("foreign checkpoint error = %v, want INVALID_INPUT", err)
	}
}

func TestResumeWithoutCheckpoint(t *testing.T) {
	f := newFixture(t, 2)
	d, _ := batch.NewDriver(f.set, f.conf, f.recorder(), batch.Options{Start: 1})
	ok, err := d.ResumeFromCheckpoint(context.Background())
	if ok || err != nil || d.Cursor() != 1 {
		t.Errorf("ResumeFromCheckpoint = %v, %v, cursor %d", ok, err, d.Cursor())
	}
}
