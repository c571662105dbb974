package render

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/traitforge/pkg/errors"
	"github.com/matzehuels/traitforge/pkg/scene"
)

// Graph output formats.
const (
	FormatSVG = "svg"
	FormatPNG = "png"
)

// GraphOptions configures [ToDOT].
type GraphOptions struct {
	// Hidden includes hidden variants, drawn dashed and grey.
	Hidden bool
}

// ToDOT converts a scene state to Graphviz DOT. The body is the root, each
// trait group hangs off it with its variants below. Objects are labelled
// with their slot materials and filled with the first ramp color of their
// first material.
func ToDOT(st scene.State, opts GraphOptions) string {
	fills := make(map[string]string, len(st.Materials))
	for _, m := range st.Materials {
		if len(m.Hex) > 0 {
			fills[m.Name] = m.Hex[0]
		}
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	if st.Body.Name == "" {
		st.Body.Name = scene.DefaultBodyName
	}
	writeObject(&buf, "body", st.Body, fills, false)

	for gi, g := range st.Parts {
		gid := fmt.Sprintf("g%d", gi)
		fmt.Fprintf(&buf, "  %q [label=%q, shape=folder, fillcolor=lightyellow];\n", gid, g.Name)
		fmt.Fprintf(&buf, "  %q -> %q;\n", "body", gid)
		for vi, v := range g.Variants {
			if !v.Visible && !opts.Hidden {
				continue
			}
			vid := fmt.Sprintf("%s_v%d", gid, vi)
			attrs := []string{fmt.Sprintf("label=%q", v.Name), "shape=tab"}
			if !v.Visible {
				attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey")
			}
			fmt.Fprintf(&buf, "  %q [%s];\n", vid, strings.Join(attrs, ", "))
			fmt.Fprintf(&buf, "  %q -> %q;\n", gid, vid)
			for oi, o := range v.Objects {
				oid := fmt.Sprintf("%s_o%d", vid, oi)
				writeObject(&buf, oid, o, fills, !v.Visible)
				fmt.Fprintf(&buf, "  %q -> %q;\n", vid, oid)
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeObject(buf *bytes.Buffer, id string, o scene.ObjectState, fills map[string]string, hidden bool) {
	attrs := []string{fmt.Sprintf("label=%q", objectLabel(o))}
	switch {
	case hidden:
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey")
	case len(o.Materials) > 0 && fills[o.Materials[0]] != "":
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", fills[o.Materials[0]]))
	}
	if o.Tag == scene.Static {
		attrs = append(attrs, "peripheries=2")
	}
	fmt.Fprintf(buf, "  %q [%s];\n", id, strings.Join(attrs, ", "))
	for i, c := range o.Children {
		cid := fmt.Sprintf("%s_%d", id, i)
		writeObject(buf, cid, c, fills, hidden)
		fmt.Fprintf(buf, "  %q -> %q;\n", id, cid)
	}
}

func objectLabel(o scene.ObjectState) string {
	var mats []string
	for _, m := range o.Materials {
		if m == "" {
			m = "-"
		}
		mats = append(mats, m)
	}
	if len(mats) == 0 {
		return o.Name
	}
	return o.Name + "\n" + strings.Join(mats, ", ")
}

// RenderDOT renders a DOT graph with Graphviz in the given format.
func RenderDOT(ctx context.Context, dot string, format string) ([]byte, error) {
	var f graphviz.Format
	switch format {
	case FormatSVG, "":
		f = graphviz.SVG
	case FormatPNG:
		f = graphviz.PNG
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unsupported graph format %q", format)
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, f, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "render graph")
	}
	return buf.Bytes(), nil
}

// RenderSVG renders the state graph of st as SVG.
func RenderSVG(ctx context.Context, st scene.State, opts GraphOptions) ([]byte, error) {
	return RenderDOT(ctx, ToDOT(st, opts), FormatSVG)
}

// GraphRenderer draws each frame as <path>.svg or <path>.png.
type GraphRenderer struct {
	Format  string
	Options GraphOptions
	Logger  *log.Logger
}

// Render implements [Renderer].
func (r GraphRenderer) Render(ctx context.Context, f Frame) error {
	format := r.Format
	if format == "" {
		format = FormatSVG
	}
	data, err := RenderDOT(ctx, ToDOT(f.State, r.Options), format)
	if err != nil {
		return err
	}
	path := f.Path + "." + format
	if err := writeFile(path, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	}); err != nil {
		return err
	}
	if r.Logger != nil {
		r.Logger.Debug("wrote graph", "id", f.ID, "path", path, "bytes", len(data))
	}
	return nil
}
