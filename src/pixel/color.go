// Package pixel reads colors out of window captures and turns tables of
// expected colors into boolean application-state flags.
package pixel

import (
	"fmt"
	"image"
	"strconv"
	"strings"
)

// Color is an exact RGB triple.
type Color struct {
	R uint8
	G uint8
	B uint8
}

// FromInt unpacks 0xRRGGBB.
func FromInt(v int) Color {
	if v < 0 || v > 0xFFFFFF {
		panic(fmt.Sprintf("pixel: color %#x is not 24-bit", v))
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}
}

func (c Color) Int() int {
	return int(c.R)<<16 | int(c.G)<<8 | int(c.B)
}

func (c Color) String() string {
	return fmt.Sprintf("#%06X", c.Int())
}

// ParseColor accepts "#RRGGBB", "0xRRGGBB" or bare "RRGGBB".
func ParseColor(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "#"), "0x")
	if len(hex) != 6 {
		return Color{}, fmt.Errorf("color %q: expected 6 hex digits", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("color %q: %w", s, err)
	}
	return FromInt(int(v)), nil
}

func colorAt(img *image.RGBA, x, y int) Color {
	c := img.RGBAAt(img.Rect.Min.X+x, img.Rect.Min.Y+y)
	return Color{R: c.R, G: c.G, B: c.B}
}
