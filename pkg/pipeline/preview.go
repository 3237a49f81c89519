// preview.go — Contact sheet of the generated variants.
package pipeline

import (
	"image"

	"github.com/disintegration/imaging"

	"github.com/xob0t/covercraft/pkg/fonts"
	"github.com/xob0t/covercraft/pkg/paint"
	"github.com/xob0t/covercraft/pkg/template"
	"github.com/xob0t/covercraft/pkg/text"
)

// Preview grid geometry.
const (
	previewCell    = 400
	previewPadding = 20
	previewLabel   = 40 // label band under each cell
	previewFooter  = 60
	previewCols    = 3
	previewLabelPx = 24
)

var (
	previewBackground = paint.ParseColor("#F5F5F5")
	previewLabelColor = paint.ParseColor("#666666")
)

// PreviewCell is one labelled image in a preview grid.
type PreviewCell struct {
	Label string
	Image image.Image
}

// PreviewGrid lays cells out at most three per row, each fitted inside a
// square cell with its label centred underneath.
func PreviewGrid(cells []PreviewCell, resolver *fonts.Resolver) *image.RGBA {
	if resolver == nil {
		resolver = fonts.NewResolver(nil, fonts.EmbeddedSource{})
	}
	n := max(len(cells), 1)
	cols := min(previewCols, n)
	rows := (n + cols - 1) / cols
	w := cols*previewCell + (cols+1)*previewPadding
	h := rows*(previewCell+previewPadding+previewLabel) + previewPadding + previewFooter

	grid := paint.NewCanvas(w, h, previewBackground)
	f := resolver.Resolve(template.DefaultFamily, previewLabelPx, "normal")
	face := f.Face()

	for i, c := range cells {
		col, row := i%cols, i/cols
		x := previewPadding + col*(previewCell+previewPadding)
		y := previewPadding + row*(previewCell+previewPadding+previewLabel)

		thumb := imaging.Fit(c.Image, previewCell, previewCell, imaging.Lanczos)
		tb := thumb.Bounds()
		off := image.Pt(x+(previewCell-tb.Dx())/2, y+(previewCell-tb.Dy())/2)
		grid = paint.Clone(imaging.Paste(grid, thumb, off))

		b := text.Layout(c.Label, face, previewLabelPx, image.Pt(x+previewCell/2, y+previewCell+10), "top", text.Options{})
		text.Render(grid, face, b, text.Style{Color: previewLabelColor})
	}
	return grid
}

func (r *run) previewCells() []PreviewCell {
	var cells []PreviewCell
	for _, v := range r.variants {
		if v.err == nil && v.img != nil {
			cells = append(cells, PreviewCell{Label: v.name(), Image: v.img})
		}
	}
	return cells
}
