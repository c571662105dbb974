package render_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/matzehuels/traitforge/pkg/dna"
	"github.com/matzehuels/traitforge/pkg/errors"
	"github.com/matzehuels/traitforge/pkg/render"
)

func TestExpandArgs(t *testing.T) {
	f := render.Frame{ID: 42, Path: "renders/42"}
	got := render.ExpandArgs([]string{"blender", "-b", "--", "{manifest}", "-o", "{output}", "job={id}"}, f)
	want := []string{"blender", "-b", "--", "renders/42.json", "-o", "renders/42", "job=42"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExpandArgs = %v, want %v", got, want)
	}
}

func TestCommandRendererEmpty(t *testing.T) {
	err := (render.CommandRenderer{}).Render(context.Background(), render.Frame{})
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("error = %v, want INVALID_CONFIG", err)
	}
}

func TestCommandRendererExit(t *testing.T) {
	for _, name := range []string{"true", "false"} {
		if _, err := exec.LookPath(name); err != nil {
			t.Skipf("%s not available", name)
		}
	}
	path := filepath.Join(t.TempDir(), "1")
	f := testFrame(t, 1, path, dna.DNA{})

	if err := (render.CommandRenderer{Args: []string{"true", "{manifest}"}}).Render(context.Background(), f); err != nil {
		t.Fatalf("true: %v", err)
	}
	if _, err := os.Stat(path + ".json"); err != nil {
		t.Errorf("manifest not written: %v", err)
	}

	err := (render.CommandRenderer{Args: []string{"false"}}).Render(context.Background(), f)
	if !errors.Is(err, errors.ErrCodeRender) || !render.IsRetryable(err) {
		t.Errorf("non-zero exit error = %v, want retryable RENDER", err)
	}
}

func TestCommandRendererNotFound(t *testing.T) {
	f := testFrame(t, 1, filepath.Join(t.TempDir(), "1"), dna.DNA{})
	err := (render.CommandRenderer{Args: []string{"traitforge-no-such-binary"}}).Render(context.Background(), f)
	if !errors.Is(err, errors.ErrCodeRender) {
		t.Errorf("error = %v, want RENDER", err)
	}
	if render.IsRetryable(err) {
		t.Error("missing binary should not be retryable")
	}
}
