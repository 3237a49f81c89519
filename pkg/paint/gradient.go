// gradient.go — Linear gradients shared by backgrounds and overlays.
package paint

import (
	"image"
	"image/color"
)

// Direction is a gradient direction.
type Direction string

const (
	Horizontal Direction = "horizontal"
	Vertical   Direction = "vertical"
	Diagonal   Direction = "diagonal"
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	return d == Horizontal || d == Vertical || d == Diagonal
}

// Gradient renders a w×h gradient from one colour to another, alpha included.
// Horizontal and vertical ratios are x/w and y/h; unknown directions are
// treated as horizontal.
//
// Diagonal is two opposing sweeps over anti-diagonals: sweep i paints the
// diagonal x+y=i from the top-left and x+y=w+h-i from the bottom-right, both
// at ratio i/max(w,h), later sweeps overwriting earlier ones. Both corners
// therefore start at from. On square canvases the centre diagonal is reached
// by neither sweep and gets to.
func Gradient(w, h int, from, to color.NRGBA, d Direction) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))

	set := func(x, y int, c color.NRGBA) {
		i := img.PixOffset(x, y)
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}

	switch d {
	case Vertical:
		for y := 0; y < h; y++ {
			c := Lerp(from, to, float64(y)/float64(h))
			for x := 0; x < w; x++ {
				set(x, y, c)
			}
		}

	case Diagonal:
		m := max(w, h)
		diag := make([]color.NRGBA, max(w+h-1, 0))
		for s := range diag {
			diag[s] = Lerp(from, to, float64(sweep(s, w, h))/float64(m))
		}
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				set(x, y, diag[x+y])
			}
		}

	default:
		cols := make([]color.NRGBA, w)
		for x := range cols {
			cols[x] = Lerp(from, to, float64(x)/float64(w))
		}
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				set(x, y, cols[x])
			}
		}
	}
	return img
}

// sweep returns the index of the last sweep that paints anti-diagonal s,
// or max(w,h) when none does.
func sweep(s, w, h int) int {
	m := max(w, h)
	last := -1
	if s < m {
		last = s
	}
	if j := w + h - s; j >= 0 && j < m && j >= last {
		last = j
	}
	if last < 0 {
		return m
	}
	return last
}
