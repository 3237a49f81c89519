// Package paint holds the colour and geometry helpers shared by every rendering stage.
//
// color.go — Colour parsing for template documents ("#RRGGBB", "rgb(...)", "rgba(...)").
package paint

import (
	"image/color"
	"regexp"
	"strconv"
	"strings"
)

// Black is returned for any colour string that does not match a recognised form.
var Black = color.NRGBA{A: 255}

var (
	rgbaPattern = regexp.MustCompile(`^rgba\(\s*(\d+)\s*,\s*(\d+)\s*,\s*(\d+)\s*(?:,\s*([\d.]+)\s*)?\)$`)
	rgbPattern  = regexp.MustCompile(`^rgb\(\s*(\d+)\s*,\s*(\d+)\s*,\s*(\d+)\s*\)$`)
)

// ParseColor converts a colour string to non-premultiplied RGBA.
// Unrecognised input yields opaque black.
func ParseColor(s string) color.NRGBA {
	c, _ := LookupColor(s)
	return c
}

// LookupColor is ParseColor that also reports whether s was recognised.
//
// The rgba() alpha component is a fraction in [0, 1] scaled by 255 and
// truncated, so "rgba(0,0,0,0.5)" has alpha 127.
func LookupColor(s string) (color.NRGBA, bool) {
	s = strings.TrimSpace(s)

	switch {
	case strings.HasPrefix(s, "#"):
		hex := s[1:]
		if len(hex) != 6 {
			return Black, false
		}
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return Black, false
		}
		return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, true

	case strings.HasPrefix(s, "rgba"):
		m := rgbaPattern.FindStringSubmatch(s)
		if m == nil {
			return Black, false
		}
		a := 1.0
		if m[4] != "" {
			f, err := strconv.ParseFloat(m[4], 64)
			if err != nil {
				return Black, false
			}
			a = f
		}
		return color.NRGBA{R: channel(m[1]), G: channel(m[2]), B: channel(m[3]), A: alpha(a)}, true

	case strings.HasPrefix(s, "rgb"):
		m := rgbPattern.FindStringSubmatch(s)
		if m == nil {
			return Black, false
		}
		return color.NRGBA{R: channel(m[1]), G: channel(m[2]), B: channel(m[3]), A: 255}, true
	}

	return Black, false
}

// Opaque reports whether c has full alpha.
func Opaque(c color.NRGBA) bool { return c.A == 255 }

// Lerp interpolates each channel linearly from a to b, truncating toward zero.
func Lerp(a, b color.NRGBA, t float64) color.NRGBA {
	mix := func(x, y uint8) uint8 {
		return uint8(float64(x) + (float64(y)-float64(x))*t)
	}
	return color.NRGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: mix(a.A, b.A)}
}

func channel(s string) uint8 {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return uint8(min(max(v, 0), 255))
}

func alpha(f float64) uint8 {
	f = min(max(f, 0), 1)
	return uint8(f * 255)
}
