package render

import (
	"context"
	"strconv"

	"github.com/matzehuels/traitforge/pkg/dna"
	"github.com/matzehuels/traitforge/pkg/scene"
)

// Frame is one render job.
type Frame struct {
	// ID is the 1-based job id, equal to the DNA's position in its set.
	ID int
	// Path is the output path without extension.
	Path string
	// DNA is the vector that produced State.
	DNA dna.DNA
	// State is the scene after configuration.
	State scene.State
}

// Renderer consumes frames. Render must not retain f.State after returning.
type Renderer interface {
	Render(ctx context.Context, f Frame) error
}

// Func adapts a function to [Renderer].
type Func func(ctx context.Context, f Frame) error

// Render calls fn(ctx, f).
func (fn Func) Render(ctx context.Context, f Frame) error { return fn(ctx, f) }

// Multi runs each renderer in order and stops at the first error.
type Multi []Renderer

// Render implements [Renderer].
func (m Multi) Render(ctx context.Context, f Frame) error {
	for _, r := range m {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.Render(ctx, f); err != nil {
			return err
		}
	}
	return nil
}

// OutputPath returns prefix followed by the decimal id.
func OutputPath(prefix string, id int) string {
	return prefix + strconv.Itoa(id)
}
