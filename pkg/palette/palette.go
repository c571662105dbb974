// Package palette converts hex colors to the linear-light values shading
// nodes expect and loads the color combination table.
//
// Color values in the combination file are sRGB-encoded hex strings.
// Material color ramps work in linear light, so every color goes through the
// sRGB transfer function before it is written to a ramp stop:
//
//	c := palette.MustHex("808080") // ~0.216 per channel
//
// The conversion is delegated to go-colorful, which implements the same
// piecewise curve (linear segment below 0.04045, 2.4 power above it).
package palette

import (
	"fmt"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/traitforge/pkg/errors"
)

// RGBA is a linear-light color with straight alpha, each channel in [0, 1].
type RGBA struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	A float64 `json:"a"`
}

// Hex encodes the color back to an sRGB hex string like "#80ff00".
// Alpha is dropped.
func (c RGBA) Hex() string {
	return colorful.LinearRgb(c.R, c.G, c.B).Clamped().Hex()
}

// String implements fmt.Stringer.
func (c RGBA) String() string {
	return fmt.Sprintf("(%.4f, %.4f, %.4f, %.4f)", c.R, c.G, c.B, c.A)
}

// HexToLinearRGBA parses a 24-bit hex color and converts it to linear light.
// A leading "#" or "0x" marker is ignored. Up to six hex digits are accepted;
// shorter strings are read as integers, so "FF" is pure blue.
func HexToLinearRGBA(hex string, alpha float64) (RGBA, error) {
	s := strings.TrimSpace(hex)
	s = strings.TrimPrefix(s, "#")
	if len(s) >= 2 && (s[:2] == "0x" || s[:2] == "0X") {
		s = s[2:]
	}
	if s == "" || len(s) > 6 {
		return RGBA{}, errors.New(errors.ErrCodeParse, "invalid hex color %q", hex)
	}

	h, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return RGBA{}, errors.Wrap(errors.ErrCodeParse, err, "invalid hex color %q", hex)
	}

	srgb := colorful.Color{
		R: float64((h&0xff0000)>>16) / 0xff,
		G: float64((h&0x00ff00)>>8) / 0xff,
		B: float64(h&0x0000ff) / 0xff,
	}
	r, g, b := srgb.LinearRgb()
	return RGBA{R: max(r, 0), G: max(g, 0), B: max(b, 0), A: alpha}, nil
}

// MustHex is like [HexToLinearRGBA] with alpha 1 but panics on malformed
// input. It is intended for tests and constants.
func MustHex(hex string) RGBA {
	c, err := HexToLinearRGBA(hex, 1)
	if err != nil {
		panic(err)
	}
	return c
}
