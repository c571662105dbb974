package palette

import (
	"math"
	"testing"

	"github.com/matzehuels/traitforge/pkg/errors"
)

const eps = 1e-9

func approx(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func TestHexToLinearRGBAEndpoints(t *testing.T) {
	white, err := HexToLinearRGBA("FFFFFF", 1)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range []float64{white.R, white.G, white.B, white.A} {
		if !approx(v, 1, eps) {
			t.Errorf("white[%d] = %v, want 1", i, v)
		}
	}

	black, err := HexToLinearRGBA("000000", 1)
	if err != nil {
		t.Fatal(err)
	}
	if black != (RGBA{0, 0, 0, 1}) {
		t.Errorf("black = %v, want (0, 0, 0, 1)", black)
	}
}

func TestHexToLinearRGBAMidGray(t *testing.T) {
	gray, err := HexToLinearRGBA("808080", 1)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range []float64{gray.R, gray.G, gray.B} {
		if v >= 0.5 {
			t.Errorf("gray[%d] = %v, want < 0.5", i, v)
		}
		if !approx(v, 0.21586, 1e-4) {
			t.Errorf("gray[%d] = %v, want ~0.21586", i, v)
		}
	}
}

func TestHexToLinearRGBAChannels(t *testing.T) {
	c, err := HexToLinearRGBA("FF0000", 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if !approx(c.R, 1, eps) || c.G != 0 || c.B != 0 || c.A != 0.5 {
		t.Errorf("FF0000 = %v", c)
	}

	// Low values use the linear segment of the curve.
	dark, err := HexToLinearRGBA("0A0000", 1)
	if err != nil {
		t.Fatal(err)
	}
	if want := 10.0 / 255 / 12.92; !approx(dark.R, want, eps) {
		t.Errorf("0A0000 red = %v, want %v", dark.R, want)
	}
}

func TestHexToLinearRGBAMarkers(t *testing.T) {
	plain := MustHex("3366CC")
	for _, in := range []string{"#3366CC", "0x3366cc", "0X3366CC", " 3366cc "} {
		got, err := HexToLinearRGBA(in, 1)
		if err != nil {
			t.Errorf("HexToLinearRGBA(%q): %v", in, err)
			continue
		}
		if got != plain {
			t.Errorf("HexToLinearRGBA(%q) = %v, want %v", in, got, plain)
		}
	}

	// Short strings are integers, not CSS shorthand.
	blue := MustHex("FF")
	if blue.R != 0 || blue.G != 0 || !approx(blue.B, 1, eps) {
		t.Errorf("FF = %v, want pure blue", blue)
	}
}

func TestHexToLinearRGBAInvalid(t *testing.T) {
	for _, in := range []string{"", "#", "GGGGGG", "1234567", "12 34"} {
		if _, err := HexToLinearRGBA(in, 1); !errors.Is(err, errors.ErrCodeParse) {
			t.Errorf("HexToLinearRGBA(%q) error = %v, want PARSE", in, err)
		}
	}
}

func TestRGBAHex(t *testing.T) {
	for _, hex := range []string{"#808080", "#ff0000", "#000000", "#3366cc"} {
		if got := MustHex(hex).Hex(); got != hex {
			t.Errorf("MustHex(%q).Hex() = %q", hex, got)
		}
	}
}

func TestMustHexPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustHex should panic on malformed input")
		}
	}()
	MustHex("nope")
}
