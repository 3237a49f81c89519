// geometry.go — Percentage-or-pixel lengths, "WxH" sizes and canvas helpers.
package paint

import (
	"image"
	"image/color"
	"image/draw"
	"regexp"
	"strconv"
	"strings"
)

var sizePattern = regexp.MustCompile(`^(\d+)x(\d+)$`)

// MaxDimension bounds each side of a parsed size.
const MaxDimension = 8192

// ParseLength resolves "80%" against ref, or a plain number as pixels.
// Fractions are truncated. ok is false for empty or malformed input.
func ParseLength(s string, ref int) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if pct, found := strings.CutSuffix(s, "%"); found {
		f, err := strconv.ParseFloat(strings.TrimSpace(pct), 64)
		if err != nil {
			return 0, false
		}
		return int(float64(ref) * f / 100), true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return int(f), true
}

// Length is ParseLength with def substituted for unparseable input.
func Length(s string, ref, def int) int {
	if v, ok := ParseLength(s, ref); ok {
		return v
	}
	return def
}

// IsLength reports whether s is a valid percentage or pixel length.
func IsLength(s string) bool {
	_, ok := ParseLength(s, 100)
	return ok
}

// ParseSize parses a "WxH" size such as "3072x1306". Each side must be in
// 1..MaxDimension.
func ParseSize(s string) (w, h int, ok bool) {
	m := sizePattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, 0, false
	}
	w, errW := strconv.Atoi(m[1])
	h, errH := strconv.Atoi(m[2])
	if errW != nil || errH != nil || !InRange(w, h) {
		return 0, 0, false
	}
	return w, h, true
}

// LooksLikeSize reports whether s has the "WxH" shape, whatever its values.
func LooksLikeSize(s string) bool {
	return sizePattern.MatchString(strings.TrimSpace(s))
}

// InRange reports whether w×h is a usable canvas size.
func InRange(w, h int) bool {
	return w > 0 && h > 0 && w <= MaxDimension && h <= MaxDimension
}

// FormatSize renders w and h as "WxH".
func FormatSize(w, h int) string {
	return strconv.Itoa(w) + "x" + strconv.Itoa(h)
}

// NewCanvas creates a uniform canvas using draw.Draw (O(1) fill).
func NewCanvas(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{c}, image.Point{}, draw.Src)
	return img
}

// Clone copies any image into a fresh RGBA canvas anchored at the origin.
func Clone(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

// Flatten composites src over opaque black so every pixel is fully opaque.
func Flatten(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := NewCanvas(b.Dx(), b.Dy(), color.Black)
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Over)
	return dst
}
