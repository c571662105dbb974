package render

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/traitforge/pkg/dna"
	"github.com/matzehuels/traitforge/pkg/errors"
	"github.com/matzehuels/traitforge/pkg/scene"
)

// ManifestExt is appended to a frame path to name its manifest.
const ManifestExt = ".json"

// Manifest is the document written for each frame.
type Manifest struct {
	ID     int         `json:"id"`
	Output string      `json:"output"`
	DNA    dna.DNA     `json:"dna"`
	Slots  []string    `json:"slots"`
	Scene  scene.State `json:"scene"`
}

// NewManifest builds the manifest for f.
func NewManifest(f Frame) Manifest {
	m := Manifest{ID: f.ID, Output: f.Path, DNA: f.DNA, Scene: f.State}
	for _, s := range dna.Slots() {
		m.Slots = append(m.Slots, s.String())
	}
	return m
}

// ManifestPath returns the manifest path for a frame path.
func ManifestPath(path string) string { return path + ManifestExt }

// WriteManifest encodes the manifest of f as indented JSON.
func WriteManifest(w io.Writer, f Frame) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewManifest(f))
}

// ManifestRenderer writes <path>.json for every frame.
type ManifestRenderer struct {
	Logger *log.Logger
}

// Render implements [Renderer].
func (r ManifestRenderer) Render(_ context.Context, f Frame) error {
	path := ManifestPath(f.Path)
	if err := writeFile(path, func(w io.Writer) error { return WriteManifest(w, f) }); err != nil {
		return err
	}
	if r.Logger != nil {
		r.Logger.Debug("wrote manifest", "id", f.ID, "path", path)
	}
	return nil
}

// writeFile creates the parent directory and writes path through a
// temporary file.
func writeFile(path string, fn func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "create output directory for %s", path)
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "create %s", path)
	}
	if err := fn(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return errors.Wrap(errors.ErrCodeRender, err, "write %s", path)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return errors.Wrap(errors.ErrCodeStorage, err, "close %s", path)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return errors.Wrap(errors.ErrCodeStorage, err, "rename %s", path)
	}
	return nil
}
