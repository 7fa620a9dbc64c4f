// Package colors holds the colour math shared by the bulk RGB render path and
// the legacy palette lookup.
package colors

import (
	"errors"
	"fmt"
	"math"
	"regexp"

	"github.com/lucasb-eyer/go-colorful"
)

var ErrInvalidColor = errors.New("invalid hex color")

var hexPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// RGB is a colour with 0-255 channels.
type RGB struct {
	R, G, B uint8
}

var Black = RGB{}

// IsHex reports whether s is a #RRGGBB colour (case-insensitive).
func IsHex(s string) bool {
	return hexPattern.MatchString(s)
}

// ParseHex parses a #RRGGBB colour.
func ParseHex(s string) (RGB, error) {
	if !IsHex(s) {
		return RGB{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return RGB{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	r, g, b := c.RGB255()
	return RGB{r, g, b}, nil
}

// Hex formats the colour as lowercase #rrggbb.
func (c RGB) Hex() string {
	return c.colorful().Hex()
}

func (c RGB) colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// Scale multiplies every channel by f and rounds to the nearest integer.
// f is clamped to 0..1.
func (c RGB) Scale(f float64) RGB {
	if f <= 0 {
		return Black
	}
	if f >= 1 {
		return c
	}
	return RGB{scale(c.R, f), scale(c.G, f), scale(c.B, f)}
}

func scale(v uint8, f float64) uint8 {
	return uint8(math.Round(float64(v) * f))
}

func (c RGB) IsBlack() bool {
	return c == Black
}

// HexToRGB is ParseHex returning the three channels.
func HexToRGB(s string) (r, g, b uint8, err error) {
	c, err := ParseHex(s)
	return c.R, c.G, c.B, err
}

// RGBToHex formats three channels as #rrggbb.
func RGBToHex(r, g, b uint8) string {
	return RGB{r, g, b}.Hex()
}

// Brightness scales a hex colour by factor (0-1) and re-encodes it.
func Brightness(factor float64, hex string) (string, error) {
	c, err := ParseHex(hex)
	if err != nil {
		return "", err
	}
	return c.Scale(factor).Hex(), nil
}
