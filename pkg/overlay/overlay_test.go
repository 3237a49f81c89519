package overlay

import (
	"image"
	"image/color"
	"testing"

	"github.com/xob0t/covercraft/pkg/paint"
)

func TestNilSpecIsNoop(t *testing.T) {
	c := paint.NewCanvas(4, 4, color.White)
	Apply(c, nil)
	if c.RGBAAt(2, 2) != (color.RGBA{255, 255, 255, 255}) {
		t.Error("nil overlay changed the canvas")
	}
}

func TestSolidRegions(t *testing.T) {
	half := paint.ParseColor("rgba(0,0,0,0.5)")
	tests := []struct {
		name       string
		spec       Solid
		dark, keep image.Point
	}{
		{"full", Solid{Color: half, Region: Full}, image.Pt(5, 95), image.Pt(-1, -1)},
		{"top 30%", Solid{Color: half, Region: Top, Height: "30%"}, image.Pt(5, 29), image.Pt(5, 30)},
		{"bottom 40px", Solid{Color: half, Region: Bottom, Height: "40"}, image.Pt(5, 60), image.Pt(5, 59)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := paint.NewCanvas(10, 100, color.White)
			Apply(c, tt.spec)

			// white under alpha 127 black → 255*(1-127/255) = 128
			if got := c.RGBAAt(tt.dark.X, tt.dark.Y); got.R != 128 || got.A != 255 {
				t.Errorf("covered pixel = %v, want R=128 opaque", got)
			}
			if tt.keep.X >= 0 {
				if got := c.RGBAAt(tt.keep.X, tt.keep.Y); got.R != 255 {
					t.Errorf("uncovered pixel = %v, want white", got)
				}
			}
		})
	}
}

func TestGradientOverlayDarkensTopMore(t *testing.T) {
	c := paint.NewCanvas(10, 100, color.White)
	Apply(c, Gradient{
		From:      paint.ParseColor("rgba(0,0,0,0.7)"),
		To:        paint.ParseColor("rgba(0,0,0,0.3)"),
		Direction: paint.Vertical,
	})
	top, bottom := c.RGBAAt(5, 0), c.RGBAAt(5, 99)
	if top.R >= bottom.R {
		t.Errorf("top %v should be darker than bottom %v", top, bottom)
	}
	if top.A != 255 || bottom.A != 255 {
		t.Error("canvas should stay opaque")
	}
	// alpha 178 over white → 255*(1-178/255) = 77
	if top.R != 77 {
		t.Errorf("top = %v, want R=77", top)
	}
}
