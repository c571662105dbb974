package render

import (
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/traitforge/pkg/errors"
)

// Command placeholders replaced in every argument.
const (
	PlaceholderOutput   = "{output}"
	PlaceholderManifest = "{manifest}"
	PlaceholderID       = "{id}"
)

// ExpandArgs substitutes the placeholders in args for frame f.
func ExpandArgs(args []string, f Frame) []string {
	r := strings.NewReplacer(
		PlaceholderOutput, f.Path,
		PlaceholderManifest, ManifestPath(f.Path),
		PlaceholderID, strconv.Itoa(f.ID),
	)
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = r.Replace(a)
	}
	return out
}

// CommandRenderer writes the manifest for a frame and then runs a host
// command, typically a headless render invocation. A non-zero exit status
// is retryable; failing to start the command is not.
type CommandRenderer struct {
	Args   []string
	Dir    string
	Logger *log.Logger
}

// Render implements [Renderer].
func (r CommandRenderer) Render(ctx context.Context, f Frame) error {
	if len(r.Args) == 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "render command is empty")
	}
	if err := (ManifestRenderer{Logger: r.Logger}).Render(ctx, f); err != nil {
		return err
	}

	args := ExpandArgs(r.Args, f)
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = r.Dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if r.Logger != nil {
		r.Logger.Debug("running render command", "id", f.ID, "cmd", strings.Join(args, " "))
	}
	out, err := cmd.Output()
	if err == nil {
		if r.Logger != nil && len(out) > 0 {
			r.Logger.Debug("render command output", "id", f.ID, "stdout", strings.TrimSpace(string(out)))
		}
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	msg := strings.TrimSpace(stderr.String())
	if exitErr, ok := err.(*exec.ExitError); ok {
		return Retryable(errors.Wrap(errors.ErrCodeRender, err, "render command for job %d exited with %d: %s", f.ID, exitErr.ExitCode(), msg))
	}
	return errors.Wrap(errors.ErrCodeRender, err, "start render command %q", args[0])
}
