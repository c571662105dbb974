package dna

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/matzehuels/traitforge/pkg/errors"
)

// utf8BOM is skipped at the start of input files written by editors that
// prepend it.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteJSON writes s to w as a single JSON array of 7-integer arrays
// followed by a newline.
func WriteJSON(w io.Writer, s Set) error {
	if s == nil {
		s = Set{}
	}
	data, err := json.Marshal(s)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode dna set")
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// ReadJSON decodes a DNA set written by [WriteJSON]. The input must be one
// JSON array and every inner array must hold exactly [NumSlots] integers.
func ReadJSON(r io.Reader) (Set, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	var raw [][]int
	dec := json.NewDecoder(br)
	if err := dec.Decode(&raw); err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "decode dna set")
	}
	if raw == nil {
		return nil, errors.New(errors.ErrCodeParse, "dna set is not an array")
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New(errors.ErrCodeParse, "trailing data after dna set")
	}

	set := make(Set, len(raw))
	for i, v := range raw {
		if len(v) != NumSlots {
			return nil, errors.New(errors.ErrCodeParse, "entry %d has %d values, want %d", i+1, len(v), NumSlots)
		}
		copy(set[i][:], v)
	}
	return set, nil
}

// WriteFile writes s to path, creating parent directories as needed.
// The file is written to a temporary sibling first and renamed into place.
func WriteFile(path string, s Set) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "create directory for %s", path)
	}

	var buf bytes.Buffer
	if err := WriteJSON(&buf, s); err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0644); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "write %s", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrap(errors.ErrCodeStorage, err, "replace %s", path)
	}
	return nil
}

// ReadFile reads a DNA set from path.
func ReadFile(path string) (Set, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "dna file %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "open dna file %s", path)
	}
	defer f.Close()

	set, err := ReadJSON(f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "dna file %s", path)
	}
	return set, nil
}
