package batch

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/traitforge/pkg/configure"
	"github.com/matzehuels/traitforge/pkg/dna"
	"github.com/matzehuels/traitforge/pkg/errors"
	"github.com/matzehuels/traitforge/pkg/observability"
	"github.com/matzehuels/traitforge/pkg/render"
	"github.com/matzehuels/traitforge/pkg/store"
)

// Batch defaults: two jobs, 3m15s apart.
const (
	DefaultSize    = 2
	DefaultDelay   = 195 * time.Second
	DefaultRetries = 3
	DefaultBackoff = time.Second
)

// State is the driver's position in its lifecycle.
type State int

// Driver states.
const (
	Idle State = iota
	Stepping
	Done
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Stepping:
		return "stepping"
	case Done:
		return "done"
	}
	return "unknown"
}

// Directive tells the caller of [Driver.Advance] what to do next.
type Directive struct {
	// Halt is set when the batch is over.
	Halt bool
	// After is how long to wait before the next Advance.
	After time.Duration
}

// Resume returns a directive to call Advance again after d.
func Resume(d time.Duration) Directive { return Directive{After: d} }

// Halt returns a directive to stop.
func Halt() Directive { return Directive{Halt: true} }

// Options configures a [Driver].
type Options struct {
	// Start is the first job id, at least 1.
	Start int
	// Size is the number of jobs in the batch. Zero selects DefaultSize.
	Size int
	// Delay is returned between steps. Zero selects DefaultDelay; a negative
	// value means no delay.
	Delay time.Duration
	// Retries is how many times a retryable render failure is retried.
	// Negative disables retries; zero selects DefaultRetries.
	Retries int
	// Backoff is the wait before the first retry, doubled for each further
	// one. Zero selects DefaultBackoff.
	Backoff time.Duration
	// OutputPrefix is prepended to job ids to form output paths.
	OutputPrefix string
	// SetName names the set in the store. Empty selects store.DefaultSetName.
	SetName string
	// Store receives a checkpoint after every completed job. Nil disables
	// checkpointing.
	Store store.Store
	// Sleep waits between retries. Nil uses [Sleep].
	Sleep Sleeper
	// Logger receives job progress. Nil discards output.
	Logger *log.Logger
}

func (o Options) withDefaults() Options {
	if o.Size == 0 {
		o.Size = DefaultSize
	}
	if o.Delay == 0 {
		o.Delay = DefaultDelay
	} else if o.Delay < 0 {
		o.Delay = 0
	}
	if o.Retries == 0 {
		o.Retries = DefaultRetries
	} else if o.Retries < 0 {
		o.Retries = 0
	}
	if o.Backoff <= 0 {
		o.Backoff = DefaultBackoff
	}
	if o.SetName == "" {
		o.SetName = store.DefaultSetName
	}
	if o.Store == nil {
		o.Store = store.NewNullStore()
	}
	if o.Sleep == nil {
		o.Sleep = Sleep
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return o
}

// Driver is the batch state machine. Advance must not be called
// concurrently; overlapping calls fail instead of blocking.
type Driver struct {
	mu sync.Mutex

	set      dna.Set
	conf     *configure.Configurator
	renderer render.Renderer
	opts     Options

	fingerprint string
	run         string

	state   State
	current int
	end     int
	err     error
}

// NewDriver returns an idle driver positioned at opts.Start.
func NewDriver(set dna.Set, conf *configure.Configurator, r render.Renderer, opts Options) (*Driver, error) {
	if conf == nil || r == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "batch driver needs a configurator and a renderer")
	}
	if opts.Start < 1 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "start id must be at least 1, got %d", opts.Start)
	}
	if opts.Size < 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "batch size must be positive, got %d", opts.Size)
	}
	opts = opts.withDefaults()
	if err := errors.ValidateSetName(opts.SetName); err != nil {
		return nil, err
	}
	return &Driver{
		set:         set,
		conf:        conf,
		renderer:    r,
		opts:        opts,
		fingerprint: store.Fingerprint(set),
		run:         uuid.NewString(),
		current:     opts.Start,
		end:         bound(opts.Start, opts.Size, len(set)),
	}, nil
}

// bound returns the exclusive end of a batch of size jobs from start, never
// past the last vector of the set.
func bound(start, size, n int) int {
	if start > n {
		return start + size
	}
	return min(start+size, n+1)
}

// ResumeFromCheckpoint moves an idle driver to the checkpoint saved for its
// set, keeping the batch size. It reports whether a checkpoint was found.
// A checkpoint written for a different set is an INVALID_INPUT error.
func (d *Driver) ResumeFromCheckpoint(ctx context.Context) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != Idle {
		return false, errors.New(errors.ErrCodeInternal, "cannot resume a %s driver", d.state)
	}

	cp, hit, err := d.opts.Store.LoadCursor(ctx, d.opts.SetName)
	if err != nil || !hit {
		return false, err
	}
	if !cp.Matches(d.fingerprint) {
		return false, errors.New(errors.ErrCodeInvalidInput, "checkpoint for %q was written for a different dna set", d.opts.SetName)
	}
	if cp.Next < 1 {
		return false, errors.New(errors.ErrCodeParse, "checkpoint cursor %d out of range", cp.Next)
	}
	d.current = cp.Next
	d.end = bound(cp.Next, d.opts.Size, len(d.set))
	d.opts.Logger.Info("resuming from checkpoint", "set", d.opts.SetName, "next", cp.Next, "previous_run", cp.Run)
	return true, nil
}

// State returns the current state.
func (d *Driver) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Cursor returns the id of the next job.
func (d *Driver) Cursor() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current
}

// End returns the exclusive upper bound of the batch.
func (d *Driver) End() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.end
}

// Err returns the error that stopped the driver, if any.
func (d *Driver) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.err
}

// RunID identifies this driver's run in logs and checkpoints.
func (d *Driver) RunID() string { return d.run }

// Advance runs one step and reports when to run the next. Once the driver
// is Done every call returns Halt and the recorded error.
func (d *Driver) Advance(ctx context.Context) (Directive, error) {
	if !d.mu.TryLock() {
		return Halt(), errors.New(errors.ErrCodeInternal, "advance called while a step is running")
	}
	defer d.mu.Unlock()

	if d.state == Done {
		return Halt(), d.err
	}
	d.state = Stepping

	id := d.current
	err := d.step(ctx, id)
	switch {
	case err == nil:
	case ctx.Err() != nil:
		// Interrupted between attempts; the job can run again.
		d.state = Idle
		return Halt(), err
	default:
		d.state = Done
		d.err = err
		return Halt(), err
	}

	d.current++
	d.checkpoint(ctx)

	if d.current >= d.end {
		d.state = Done
		d.opts.Logger.Info("batch complete", "run", d.run, "next", d.current)
		return Halt(), nil
	}
	d.state = Idle
	return Resume(d.opts.Delay), nil
}

func (d *Driver) step(ctx context.Context, id int) error {
	v, err := d.set.At(id)
	if err != nil {
		return err
	}

	hooks := observability.Render()
	hooks.OnJobStart(ctx, id)
	start := time.Now()

	path := render.OutputPath(d.opts.OutputPrefix, id)
	attempts := 0
	err = d.conf.Apply(v)
	if err == nil {
		frame := render.Frame{ID: id, Path: path, DNA: v, State: d.conf.Scene().Snapshot()}
		attempts, err = d.renderWithRetry(ctx, frame)
	}
	elapsed := time.Since(start)
	hooks.OnJobComplete(ctx, id, attempts, elapsed, err)

	if err != nil {
		if attempts > 0 && ctx.Err() == nil {
			err = errors.Wrap(errors.ErrCodeRender, &errors.JobError{ID: id, Attempts: attempts, Err: err}, "render job %d", id)
		}
		d.opts.Logger.Error("job failed", "id", id, "path", path, "run", d.run, "attempts", attempts, "err", err)
		return err
	}
	d.opts.Logger.Info("rendered", "id", id, "dna", v.String(), "path", path, "run", d.run, "elapsed", elapsed.Round(time.Millisecond))
	return nil
}

// renderWithRetry renders f, retrying retryable failures with a doubling
// delay. It returns the number of attempts made.
func (d *Driver) renderWithRetry(ctx context.Context, f render.Frame) (int, error) {
	maxAttempts := d.opts.Retries + 1
	delay := d.opts.Backoff
	var lastErr error

	for i := 1; i <= maxAttempts; i++ {
		if err := d.renderer.Render(ctx, f); err == nil {
			return i, nil
		} else if lastErr = err; !render.IsRetryable(err) || ctx.Err() != nil {
			return i, err
		}

		if i < maxAttempts {
			observability.Render().OnRetry(ctx, f.ID, i, lastErr)
			d.opts.Logger.Warn("render failed, retrying", "id", f.ID, "attempt", i, "delay", delay, "err", lastErr)
			if err := d.opts.Sleep(ctx, delay); err != nil {
				return i, err
			}
			delay *= 2
		}
	}
	return maxAttempts, lastErr
}

func (d *Driver) checkpoint(ctx context.Context) {
	cp := store.Checkpoint{
		Next:        d.current,
		End:         d.end,
		Fingerprint: d.fingerprint,
		Run:         d.run,
		UpdatedAt:   time.Now().UTC(),
	}
	if err := d.opts.Store.SaveCursor(ctx, d.opts.SetName, cp); err != nil {
		d.opts.Logger.Warn("checkpoint not saved", "set", d.opts.SetName, "next", d.current, "err", err)
	}
}
