// Package background paints the base canvas of a cover.
//
// background.go — Background kinds, style tables and gradient rasterisation.
package background

import (
	"image"
	"image/color"

	"github.com/xob0t/covercraft/pkg/paint"
)

// Spec is one of Solid, Gradient or Generate.
type Spec interface {
	kind() string
}

// Solid fills the canvas with one colour.
type Solid struct {
	Color color.NRGBA
}

// Gradient interpolates linearly from From to To along Direction.
type Gradient struct {
	From, To  color.NRGBA
	Direction paint.Direction
}

// Generate asks the synthesizer for a background. When Prompt is empty the
// style prompt is used. A failed request falls back to the style's local
// background; with no Style there is nothing to fall back to.
type Generate struct {
	Style   Style
	Prompt  string
	Quality string
}

func (Solid) kind() string    { return "solid" }
func (Gradient) kind() string { return "gradient" }
func (Generate) kind() string { return "ai_generate" }

// Style is a named look used for synthesis prompts and local fallbacks.
type Style string

const (
	StyleTech     Style = "tech"
	StyleFresh    Style = "fresh"
	StyleMinimal  Style = "minimal"
	StyleWarm     Style = "warm"
	StyleBusiness Style = "business"
)

// Styles lists every known style.
var Styles = []Style{StyleTech, StyleFresh, StyleMinimal, StyleWarm, StyleBusiness}

// Valid reports whether s is a known style.
func (s Style) Valid() bool {
	_, ok := prompts[s]
	return ok
}

var prompts = map[Style]string{
	StyleTech:     "Simple background, dark blue to purple gradient, no text, no decorations",
	StyleFresh:    "Simple background, light green to yellow gradient, no text, no decorations",
	StyleMinimal:  "Simple background, light gray to white gradient, no text, no decorations",
	StyleWarm:     "Simple background, orange to pink gradient, no text, no decorations",
	StyleBusiness: "Simple background, dark blue to gray gradient, no text, no decorations",
}

var fallbacks = map[Style]Spec{
	StyleTech:     Gradient{From: paint.ParseColor("#1E3A8A"), To: paint.ParseColor("#7C3AED"), Direction: paint.Horizontal},
	StyleFresh:    Gradient{From: paint.ParseColor("#A7F3D0"), To: paint.ParseColor("#FCD34D"), Direction: paint.Diagonal},
	StyleMinimal:  Solid{Color: paint.ParseColor("#FAFAFA")},
	StyleWarm:     Gradient{From: paint.ParseColor("#FDE68A"), To: paint.ParseColor("#FCA5A5"), Direction: paint.Horizontal},
	StyleBusiness: Gradient{From: paint.ParseColor("#1E40AF"), To: paint.ParseColor("#374151"), Direction: paint.Horizontal},
}

// Prompt returns the synthesis prompt for a style; unknown styles use tech.
func Prompt(s Style) string {
	if p, ok := prompts[s]; ok {
		return p
	}
	return prompts[StyleTech]
}

// Fallback returns the local background for a style; unknown styles use tech.
func Fallback(s Style) Spec {
	if f, ok := fallbacks[s]; ok {
		return f
	}
	return fallbacks[StyleTech]
}

// Paint rasterises a Solid or Gradient. It returns nil for Generate.
func Paint(spec Spec, w, h int) *image.RGBA {
	switch s := spec.(type) {
	case Solid:
		return paint.NewCanvas(w, h, opaque(s.Color))
	case Gradient:
		return gradient(s, w, h)
	case Generate:
		return nil
	}
	return nil
}

func opaque(c color.NRGBA) color.NRGBA {
	c.A = 255
	return c
}

// gradient renders an opaque gradient canvas.
func gradient(g Gradient, w, h int) *image.RGBA {
	n := paint.Gradient(w, h, opaque(g.From), opaque(g.To), g.Direction)
	return &image.RGBA{Pix: n.Pix, Stride: n.Stride, Rect: n.Rect}
}
