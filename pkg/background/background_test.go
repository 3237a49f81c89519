package background

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/xob0t/covercraft/pkg/errors"
	"github.com/xob0t/covercraft/pkg/paint"
	"github.com/xob0t/covercraft/pkg/synth"
)

func quiet() *log.Logger { return log.New(&bytes.Buffer{}) }

func TestSolid(t *testing.T) {
	img := Paint(Solid{Color: paint.ParseColor("rgba(10,20,30,0.5)")}, 4, 3)
	if c := img.RGBAAt(3, 2); c != (color.RGBA{10, 20, 30, 255}) {
		t.Errorf("solid pixel = %v, want opaque 10,20,30", c)
	}
}

func TestHorizontalGradient(t *testing.T) {
	g := Gradient{From: color.NRGBA{0, 0, 0, 255}, To: color.NRGBA{200, 100, 0, 255}, Direction: paint.Horizontal}
	img := Paint(g, 100, 10)

	if c := img.RGBAAt(0, 5); c.R != 0 || c.G != 0 {
		t.Errorf("x=0 = %v, want from colour", c)
	}
	// ratio 50/100 → 100, 50
	if c := img.RGBAAt(50, 9); c.R != 100 || c.G != 50 {
		t.Errorf("x=50 = %v", c)
	}
	// ratio 99/100 truncates to 198, 99
	if c := img.RGBAAt(99, 0); c.R != 198 || c.G != 99 {
		t.Errorf("x=99 = %v", c)
	}
}

func TestVerticalGradient(t *testing.T) {
	g := Gradient{From: color.NRGBA{0, 0, 0, 255}, To: color.NRGBA{0, 0, 200, 255}, Direction: paint.Vertical}
	img := Paint(g, 10, 200)
	if c := img.RGBAAt(7, 0); c.B != 0 {
		t.Errorf("top = %v", c)
	}
	if c := img.RGBAAt(7, 100); c.B != 100 {
		t.Errorf("y=100 = %v", c)
	}
	if a, b := img.RGBAAt(0, 40), img.RGBAAt(9, 40); a != b {
		t.Errorf("row not uniform: %v vs %v", a, b)
	}
}

// The diagonal gradient keeps its two-sweep shape: both the top-left and the
// bottom-right corner start near From, and colour is constant along each
// anti-diagonal. A true vector gradient would put To at the bottom-right.
func TestDiagonalGradientTwoSweeps(t *testing.T) {
	from := color.NRGBA{0, 0, 0, 255}
	to := color.NRGBA{250, 250, 250, 255}
	img := Paint(Gradient{From: from, To: to, Direction: paint.Diagonal}, 100, 50)

	if c := img.RGBAAt(0, 0); c.R != 0 {
		t.Errorf("top-left = %v, want from", c)
	}
	// x+y = 148 is painted last by sweep i=2 → ratio 0.02
	if c := img.RGBAAt(99, 49); c.R != 5 {
		t.Errorf("bottom-right = %v, want R=5", c)
	}
	if a, b := img.RGBAAt(10, 20), img.RGBAAt(20, 10); a != b {
		t.Errorf("anti-diagonal not uniform: %v vs %v", a, b)
	}
	// x+y = 75: sweeps 75 and 75 → later one wins, ratio 0.75
	if c := img.RGBAAt(50, 25); c.R != 187 {
		t.Errorf("centre = %v, want R=187", c)
	}

	sq := Paint(Gradient{From: from, To: to, Direction: paint.Diagonal}, 40, 40)
	if c := sq.RGBAAt(20, 20); c.R != 250 {
		t.Errorf("square centre diagonal = %v, want to colour", c)
	}
}

func TestFallbackTable(t *testing.T) {
	if _, ok := Fallback(StyleMinimal).(Solid); !ok {
		t.Error("minimal should fall back to a solid")
	}
	if g, ok := Fallback(StyleFresh).(Gradient); !ok || g.Direction != paint.Diagonal {
		t.Errorf("fresh fallback = %#v", Fallback(StyleFresh))
	}
	if Fallback("neon") != Fallback(StyleTech) {
		t.Error("unknown style should use tech")
	}
	if !strings.Contains(Prompt(StyleWarm), "orange to pink") {
		t.Errorf("warm prompt = %q", Prompt(StyleWarm))
	}
	if Prompt("neon") != Prompt(StyleTech) {
		t.Error("unknown style prompt should use tech")
	}
}

func TestComposeFallsBackOnTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	client := synth.NewClient(synth.Config{BaseURL: srv.URL, APIKey: "k", Timeout: 50 * time.Millisecond})
	c := NewComposer(client, quiet())

	img, warnings, err := c.Compose(context.Background(), Generate{Style: StyleTech}, 120, 60)
	if err != nil {
		t.Fatalf("Compose should recover, got %v", err)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "tech fallback") {
		t.Errorf("warnings = %q", warnings)
	}
	want := Paint(Fallback(StyleTech), 120, 60)
	if !bytes.Equal(img.Pix, want.Pix) {
		t.Error("fallback canvas differs from the tech fallback gradient")
	}
}

type fixedSynth struct {
	img image.Image
	got synth.Request
}

func (f *fixedSynth) Synthesize(ctx context.Context, req synth.Request) (image.Image, error) {
	f.got = req
	return f.img, nil
}

func TestComposeResizesSynthesizedArt(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 50, 50))
	for i := range src.Pix {
		src.Pix[i] = 255
	}
	fs := &fixedSynth{img: src}
	c := NewComposer(fs, quiet())

	img, warnings, err := c.Compose(context.Background(), Generate{Style: StyleWarm}, 200, 80)
	if err != nil || len(warnings) != 0 {
		t.Fatalf("err=%v warnings=%q", err, warnings)
	}
	if img.Bounds().Size() != image.Pt(200, 80) {
		t.Errorf("size = %v", img.Bounds().Size())
	}
	if fs.got.Prompt != Prompt(StyleWarm) || fs.got.Quality != "hd" || fs.got.Size() != "200x80" {
		t.Errorf("request = %+v", fs.got)
	}
	if px := img.RGBAAt(100, 40); px.A != 255 {
		t.Errorf("canvas not opaque: %v", px)
	}
}

func TestComposeWithoutSynthesizer(t *testing.T) {
	c := NewComposer(nil, quiet())
	img, warnings, err := c.Compose(context.Background(), Generate{Style: StyleMinimal}, 10, 10)
	if err != nil || len(warnings) != 1 {
		t.Fatalf("err=%v warnings=%q", err, warnings)
	}
	if got := img.RGBAAt(5, 5); got != (color.RGBA{0xFA, 0xFA, 0xFA, 255}) {
		t.Errorf("pixel = %v", got)
	}

	_, _, err = c.Compose(context.Background(), Generate{Prompt: "custom"}, 10, 10)
	if !errors.Is(err, errors.ErrCodeFatal) {
		t.Errorf("styleless failure: err = %v, want FATAL", err)
	}

	if _, _, err := c.Compose(context.Background(), Solid{}, 0, 10); !errors.Is(err, errors.ErrCodeFatal) {
		t.Errorf("zero size: err = %v, want FATAL", err)
	}
}
