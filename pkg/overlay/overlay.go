// Package overlay composites translucent layers over a background so text
// stays legible.
//
// overlay.go — Gradient and solid overlays, composited with "over" blending.
package overlay

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/xob0t/covercraft/pkg/paint"
)

// Spec is one of Gradient or Solid. A nil Spec means no overlay.
type Spec interface {
	kind() string
}

// Gradient is a full-canvas gradient layer; alpha is interpolated too.
type Gradient struct {
	From, To  color.NRGBA
	Direction paint.Direction
}

// Region selects which band of the canvas a solid overlay covers.
type Region string

const (
	Full   Region = "full"
	Top    Region = "top"
	Bottom Region = "bottom"
)

// Valid reports whether r is a known region.
func (r Region) Valid() bool { return r == Full || r == Top || r == Bottom }

// Solid covers a band of the canvas with one colour.
type Solid struct {
	Color  color.NRGBA
	Region Region
	Height string // percentage of the canvas height or pixels; ignored for Full
}

func (Gradient) kind() string { return "gradient" }
func (Solid) kind() string    { return "solid" }

// Apply composites spec over canvas in place.
func Apply(canvas *image.RGBA, spec Spec) {
	b := canvas.Bounds()
	switch s := spec.(type) {
	case Gradient:
		layer := paint.Gradient(b.Dx(), b.Dy(), s.From, s.To, s.Direction)
		draw.Draw(canvas, b, layer, image.Point{}, draw.Over)
	case Solid:
		if r := s.band(b); !r.Empty() {
			draw.Draw(canvas, r, &image.Uniform{C: s.Color}, image.Point{}, draw.Over)
		}
	}
}

// band returns the region of bounds the solid overlay covers.
func (s Solid) band(bounds image.Rectangle) image.Rectangle {
	h := bounds.Dy()
	switch s.Region {
	case Top:
		return image.Rect(bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Min.Y+paint.Length(s.Height, h, h)).Intersect(bounds)
	case Bottom:
		return image.Rect(bounds.Min.X, bounds.Max.Y-paint.Length(s.Height, h, h), bounds.Max.X, bounds.Max.Y).Intersect(bounds)
	default:
		return bounds
	}
}
