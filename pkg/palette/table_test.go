package palette

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/traitforge/pkg/errors"
)

const sampleTable = `{
  "colors": [
    {"Color 1": "FFFFFF", "Color 2": "000000"},
    {"Color 1": "#FF0000", "Color 2": "#00FF00"}
  ]
}`

func TestDecode(t *testing.T) {
	tbl, err := Decode(strings.NewReader(sampleTable))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if tbl.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", tbl.Len())
	}

	p, err := tbl.Pair(1)
	if err != nil {
		t.Fatal(err)
	}
	if !approx(p.First.R, 1, eps) || p.First.G != 0 {
		t.Errorf("Pair(1).First = %v", p.First)
	}
	if !approx(p.Second.G, 1, eps) || p.Second.R != 0 {
		t.Errorf("Pair(1).Second = %v", p.Second)
	}

	e, err := tbl.Entry(1)
	if err != nil {
		t.Fatal(err)
	}
	if e.Color1 != "#FF0000" || e.Color2 != "#00FF00" {
		t.Errorf("Entry(1) = %+v", e)
	}
}

func TestDecodeBOM(t *testing.T) {
	if _, err := Decode(strings.NewReader("\xEF\xBB\xBF" + sampleTable)); err != nil {
		t.Errorf("Decode with BOM: %v", err)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not json", "colors"},
		{"missing colors", `{"palette": []}`},
		{"bad color", `{"colors": [{"Color 1": "XYZ", "Color 2": "000000"}]}`},
		{"missing second", `{"colors": [{"Color 1": "FFFFFF"}]}`},
		{"null", `null`},
		{"trailing data", `{"colors": []} {"colors": []}`},
		{"trailing garbage", `{"colors": []} x`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(strings.NewReader(tt.input)); !errors.Is(err, errors.ErrCodeParse) {
				t.Errorf("Decode error = %v, want PARSE", err)
			}
		})
	}
}

func TestPairOutOfRange(t *testing.T) {
	tbl, err := Decode(strings.NewReader(sampleTable))
	if err != nil {
		t.Fatal(err)
	}
	for _, i := range []int{-1, 2, 13} {
		if _, err := tbl.Pair(i); !errors.Is(err, errors.ErrCodeLookup) {
			t.Errorf("Pair(%d) error = %v, want LOOKUP", i, err)
		}
		if _, err := tbl.Entry(i); !errors.Is(err, errors.ErrCodeLookup) {
			t.Errorf("Entry(%d) error = %v, want LOOKUP", i, err)
		}
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "colors.json")
	if err := os.WriteFile(path, []byte(sampleTable), 0644); err != nil {
		t.Fatal(err)
	}

	tbl, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if tbl.Len() != 2 {
		t.Errorf("Len() = %d", tbl.Len())
	}

	if _, err := LoadFile(filepath.Join(dir, "missing.json")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("LoadFile(missing) error = %v, want FILE_NOT_FOUND", err)
	}
}
