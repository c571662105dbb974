package palette

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"os"

	"github.com/matzehuels/traitforge/pkg/errors"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Entry is one color combination as it appears in the combination file.
type Entry struct {
	Color1 string `json:"Color 1"`
	Color2 string `json:"Color 2"`
}

// Pair is a decoded color combination.
type Pair struct {
	First  RGBA
	Second RGBA
}

// Table maps Color-slot values to color combinations. It is read-only once
// loaded and safe for concurrent use.
type Table struct {
	entries []Entry
	pairs   []Pair
}

type tableFile struct {
	Colors []Entry `json:"colors"`
}

// NewTable decodes every entry up front so malformed colors fail at load
// time rather than in the middle of a batch.
func NewTable(entries []Entry) (*Table, error) {
	t := &Table{
		entries: append([]Entry(nil), entries...),
		pairs:   make([]Pair, len(entries)),
	}
	for i, e := range entries {
		first, err := HexToLinearRGBA(e.Color1, 1)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeParse, err, "colors[%d] \"Color 1\"", i)
		}
		second, err := HexToLinearRGBA(e.Color2, 1)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeParse, err, "colors[%d] \"Color 2\"", i)
		}
		t.pairs[i] = Pair{First: first, Second: second}
	}
	return t, nil
}

// Decode reads a combination file: {"colors": [{"Color 1": ..., "Color 2": ...}]}.
func Decode(r io.Reader) (*Table, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	var f tableFile
	dec := json.NewDecoder(br)
	if err := dec.Decode(&f); err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "decode color table")
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New(errors.ErrCodeParse, "trailing data after color table")
	}
	if f.Colors == nil {
		return nil, errors.New(errors.ErrCodeParse, "color table has no \"colors\" array")
	}
	return NewTable(f.Colors)
}

// LoadFile reads a combination file from path.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "color file %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "open color file %s", path)
	}
	defer f.Close()

	t, err := Decode(f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "color file %s", path)
	}
	return t, nil
}

// Len returns the number of color combinations.
func (t *Table) Len() int { return len(t.pairs) }

// Entry returns the raw hex strings of combination i.
func (t *Table) Entry(i int) (Entry, error) {
	if i < 0 || i >= len(t.entries) {
		return Entry{}, errors.New(errors.ErrCodeLookup, "color %d out of range [0, %d)", i, len(t.entries))
	}
	return t.entries[i], nil
}

// Pair returns the converted colors of combination i.
func (t *Table) Pair(i int) (Pair, error) {
	if i < 0 || i >= len(t.pairs) {
		return Pair{}, errors.New(errors.ErrCodeLookup, "color %d out of range [0, %d)", i, len(t.pairs))
	}
	return t.pairs[i], nil
}
