// Package decoration draws the non-text template elements.
//
// decoration.go — Lines, rounded rectangles and corner brackets, drawn with gg.
package decoration

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"

	"github.com/xob0t/covercraft/pkg/errors"
)

// Kind names a decoration shape.
type Kind string

const (
	KindLine             Kind = "line"
	KindRoundedRectangle Kind = "rounded_rectangle"
	KindBrackets         Kind = "brackets"
)

// Kinds lists every supported kind.
var Kinds = []Kind{KindLine, KindRoundedRectangle, KindBrackets}

// Valid reports whether k is a supported kind.
func (k Kind) Valid() bool {
	for _, v := range Kinds {
		if v == k {
			return true
		}
	}
	return false
}

// Spec is a fully resolved decoration. Which fields apply depends on Kind.
type Spec struct {
	Kind Kind

	Width  int // line, rounded_rectangle: box size; brackets: stroke width
	Height int

	Color        color.NRGBA // line fill, bracket stroke
	Background   color.NRGBA // rounded_rectangle fill
	BorderColor  color.NRGBA
	BorderWidth  int
	CornerRadius int

	CornerSize int // brackets: arm length
	Padding    int // brackets: inset from the canvas edge
}

// Draw renders s onto dst. Line and rounded rectangle are centred on at;
// brackets ignore at and hug the canvas corners.
func Draw(dst *image.RGBA, at image.Point, s Spec) error {
	dc := gg.NewContextForRGBA(dst)

	switch s.Kind {
	case KindLine:
		x := float64(at.X - s.Width/2)
		y := float64(at.Y - s.Height/2)
		dc.DrawRectangle(x, y, float64(s.Width), float64(s.Height))
		dc.SetColor(s.Color)
		dc.Fill()

	case KindRoundedRectangle:
		x := float64(at.X - s.Width/2)
		y := float64(at.Y - s.Height/2)
		dc.DrawRoundedRectangle(x, y, float64(s.Width), float64(s.Height), float64(s.CornerRadius))
		dc.SetColor(s.Background)
		dc.FillPreserve()
		if s.BorderWidth > 0 {
			dc.SetColor(s.BorderColor)
			dc.SetLineWidth(float64(s.BorderWidth))
			dc.Stroke()
		} else {
			dc.ClearPath()
		}

	case KindBrackets:
		drawBrackets(dc, dst.Bounds().Size(), s)

	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown decoration %q", s.Kind)
	}
	return nil
}

func drawBrackets(dc *gg.Context, size image.Point, s Spec) {
	w, h := float64(size.X), float64(size.Y)
	p, c := float64(s.Padding), float64(s.CornerSize)

	corners := [4][3][2]float64{
		{{p, p + c}, {p, p}, {p + c, p}},
		{{w - p - c, p}, {w - p, p}, {w - p, p + c}},
		{{p, h - p - c}, {p, h - p}, {p + c, h - p}},
		{{w - p - c, h - p}, {w - p, h - p}, {w - p, h - p - c}},
	}

	dc.SetColor(s.Color)
	dc.SetLineWidth(float64(s.Width))
	dc.SetLineCap(gg.LineCapSquare)
	dc.SetLineJoin(gg.LineJoinBevel)
	for _, arm := range corners {
		dc.MoveTo(arm[0][0], arm[0][1])
		dc.LineTo(arm[1][0], arm[1][1])
		dc.LineTo(arm[2][0], arm[2][1])
		dc.Stroke()
	}
}
