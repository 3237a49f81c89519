// render.go — Draws a laid-out block: drop shadow, stroke, then fill, line by line.
package text

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
)

// Shadow is a drop shadow drawn under each line.
type Shadow struct {
	Color            color.NRGBA
	OffsetX, OffsetY int
}

// Stroke is an outline drawn under the fill.
type Stroke struct {
	Color color.NRGBA
	Width int
}

// Style is the paint applied to a block. Nil effects are skipped.
type Style struct {
	Color  color.NRGBA
	Shadow *Shadow
	Stroke *Stroke
}

// Render draws b onto dst with face, which must be the face b was laid out with.
func Render(dst *image.RGBA, face font.Face, b Block, st Style) {
	ascent := face.Metrics().Ascent.Ceil()
	dc := gg.NewContextForRGBA(dst)
	dc.SetFontFace(face)

	for _, l := range b.Lines {
		if l.Text == "" {
			continue
		}
		baseline := float64(l.Y + ascent)

		if sh := st.Shadow; sh != nil {
			x, y := l.X+sh.OffsetX, l.Y+sh.OffsetY
			if sh.Color.A < 255 {
				drawLayered(dst, face, l.Text, image.Pt(x, y), l.Width, b.Height, ascent, sh.Color, []image.Point{{}})
			} else {
				dc.SetColor(sh.Color)
				dc.DrawString(l.Text, float64(x), float64(y+ascent))
			}
		}

		if sk := st.Stroke; sk != nil && sk.Width > 0 {
			offsets := strokeOffsets(sk.Width)
			if sk.Color.A < 255 {
				drawLayered(dst, face, l.Text, image.Pt(l.X, l.Y), l.Width, b.Height, ascent, sk.Color, offsets)
			} else {
				dc.SetColor(sk.Color)
				for _, o := range offsets {
					dc.DrawString(l.Text, float64(l.X+o.X), baseline+float64(o.Y))
				}
			}
		}

		dc.SetColor(st.Color)
		dc.DrawString(l.Text, float64(l.X), baseline)
	}
}

// strokeOffsets lists every integer offset within a disc of radius n.
func strokeOffsets(n int) []image.Point {
	var out []image.Point
	for dy := -n; dy <= n; dy++ {
		for dx := -n; dx <= n; dx++ {
			if dx*dx+dy*dy <= n*n {
				out = append(out, image.Pt(dx, dy))
			}
		}
	}
	return out
}

// drawLayered draws s once per offset into a coverage mask, then paints c
// through the mask onto dst. Overlapping copies therefore apply c's alpha once.
func drawLayered(dst *image.RGBA, face font.Face, s string, at image.Point, w, h, ascent int, c color.NRGBA, offsets []image.Point) {
	m := face.Metrics()
	lh := max(h, (m.Ascent + m.Descent).Ceil())
	spread := 0
	for _, o := range offsets {
		spread = max(spread, abs(o.X), abs(o.Y))
	}
	pad := lh + spread
	r := image.Rect(at.X-pad, at.Y-pad, at.X+w+pad, at.Y+lh+pad).Intersect(dst.Bounds())
	if r.Empty() {
		return
	}

	mask := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	lc := gg.NewContextForRGBA(mask)
	lc.SetFontFace(face)
	lc.SetColor(color.White)
	for _, o := range offsets {
		lc.DrawString(s, float64(at.X-r.Min.X+o.X), float64(at.Y-r.Min.Y+ascent+o.Y))
	}

	draw.DrawMask(dst, r, image.NewUniform(c), image.Point{}, mask, image.Point{}, draw.Over)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
