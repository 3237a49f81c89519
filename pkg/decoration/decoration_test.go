package decoration

import (
	"image"
	"image/color"
	"testing"

	"github.com/xob0t/covercraft/pkg/errors"
	"github.com/xob0t/covercraft/pkg/paint"
)

var (
	red   = color.NRGBA{255, 0, 0, 255}
	white = color.NRGBA{255, 255, 255, 255}
)

func TestLineIsCentred(t *testing.T) {
	dst := paint.NewCanvas(300, 100, color.Black)
	if err := Draw(dst, image.Pt(150, 50), Spec{Kind: KindLine, Width: 100, Height: 4, Color: red}); err != nil {
		t.Fatal(err)
	}
	if c := dst.RGBAAt(150, 50); c.R != 255 || c.G != 0 {
		t.Errorf("centre = %v, want red", c)
	}
	if c := dst.RGBAAt(102, 50); c.R != 255 {
		t.Errorf("left end = %v, want red", c)
	}
	if c := dst.RGBAAt(90, 50); c.R != 0 {
		t.Errorf("outside line = %v, want black", c)
	}
	if c := dst.RGBAAt(150, 40); c.R != 0 {
		t.Errorf("above line = %v, want black", c)
	}
}

func TestRoundedRectangleBlendsFill(t *testing.T) {
	dst := paint.NewCanvas(400, 200, color.Black)
	err := Draw(dst, image.Pt(200, 100), Spec{
		Kind: KindRoundedRectangle, Width: 200, Height: 60,
		Background:  color.NRGBA{255, 255, 255, 51},
		BorderColor: white, BorderWidth: 2, CornerRadius: 10,
	})
	if err != nil {
		t.Fatal(err)
	}
	inside := dst.RGBAAt(200, 100)
	if inside.R == 0 || inside.R == 255 {
		t.Errorf("inside = %v, want a translucent blend", inside)
	}
	if border := dst.RGBAAt(200, 70); border.R < 200 {
		t.Errorf("top border = %v, want near white", border)
	}
	if c := dst.RGBAAt(100, 70); c.R > 40 {
		t.Errorf("rounded corner = %v, want mostly background", c)
	}
}

func TestBracketsHugCorners(t *testing.T) {
	dst := paint.NewCanvas(400, 300, color.Black)
	s := Spec{Kind: KindBrackets, Color: white, Width: 3, CornerSize: 60, Padding: 50}
	if err := Draw(dst, image.Point{}, s); err != nil {
		t.Fatal(err)
	}
	for _, p := range []image.Point{{50, 80}, {80, 50}, {350, 80}, {50, 250}, {320, 250}} {
		if c := dst.RGBAAt(p.X, p.Y); c.R < 200 {
			t.Errorf("bracket arm at %v = %v, want white", p, c)
		}
	}
	if c := dst.RGBAAt(200, 150); c.R != 0 {
		t.Errorf("centre = %v, want untouched", c)
	}
}

func TestUnknownKind(t *testing.T) {
	dst := paint.NewCanvas(10, 10, color.Black)
	if err := Draw(dst, image.Point{}, Spec{Kind: "star"}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("got %v, want INVALID_INPUT", err)
	}
	if Kind("star").Valid() || !KindBrackets.Valid() {
		t.Error("Valid disagrees with Kinds")
	}
}
