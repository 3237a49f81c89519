package text

import (
	"image"
	"image/color"
	"strings"
	"testing"

	"golang.org/x/image/font"

	"github.com/xob0t/covercraft/pkg/fonts"
	"github.com/xob0t/covercraft/pkg/paint"
)

func testFace(t *testing.T, size float64) font.Face {
	t.Helper()
	return fonts.Builtin(size, "normal").Face()
}

func TestWrapRespectsWidth(t *testing.T) {
	face := testFace(t, 40)
	texts := []string{
		"The quick brown fox jumps over the lazy dog",
		"Go modules make dependency management boring",
		"aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		"short",
	}
	for _, maxWidth := range []int{120, 300, 600, 2000} {
		for _, s := range texts {
			lines := Wrap(s, face, maxWidth)
			if got := strings.Join(lines, ""); got != s {
				t.Errorf("Wrap(%q, %d) lost characters: %q", s, maxWidth, got)
			}
			for _, l := range lines {
				if w := Measure(face, l); w > maxWidth {
					t.Errorf("Wrap(%q, %d): line %q is %dpx", s, maxWidth, l, w)
				}
			}
		}
	}
}

func TestWrapBreaksPerCharacter(t *testing.T) {
	face := testFace(t, 40)
	w := Measure(face, "aaaa")
	lines := Wrap("aaaaaaaa", face, w)
	if len(lines) != 2 || lines[0] != "aaaa" || lines[1] != "aaaa" {
		t.Errorf("lines = %q", lines)
	}
}

func TestWrapOversizedCharacterGetsOwnLine(t *testing.T) {
	face := testFace(t, 40)
	lines := Wrap("WW", face, 1)
	if len(lines) != 2 {
		t.Errorf("lines = %q, want one per character", lines)
	}
}

func TestWrapHonoursNewlines(t *testing.T) {
	face := testFace(t, 20)
	lines := Wrap("one\ntwo", face, 10000)
	if len(lines) != 2 || lines[0] != "one" || lines[1] != "two" {
		t.Errorf("lines = %q", lines)
	}
}

func TestTruncateAddsEllipsis(t *testing.T) {
	face := testFace(t, 40)
	w := Measure(face, "abcdef")
	lines := Truncate([]string{"abcdef", "ghijkl", "mnopqr"}, 2, face, w)
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if !strings.HasSuffix(lines[1], Ellipsis) {
		t.Errorf("last line %q has no ellipsis", lines[1])
	}
	if Measure(face, lines[1]) > w {
		t.Errorf("last line %q exceeds max width", lines[1])
	}

	// Three characters or fewer are kept as they are.
	short := Truncate([]string{"abc", "def", "ghi"}, 2, face, w)
	if short[1] != "def" {
		t.Errorf("short last line = %q, want def", short[1])
	}

	// Nothing to drop, nothing to change.
	same := Truncate([]string{"a", "b"}, 3, face, w)
	if len(same) != 2 || same[1] != "b" {
		t.Errorf("untouched lines = %q", same)
	}
}

func TestTruncateShortAndNarrowLastLine(t *testing.T) {
	face := testFace(t, 40)

	// A kept last line of three characters or fewer gets no marker.
	narrow := Measure(face, "ab")
	lines := Truncate(Wrap("abcdefghijklmnop", face, narrow), 2, face, narrow)
	if len(lines) != 2 || lines[0] != "ab" || lines[1] != "cd" {
		t.Errorf("short last line = %q, want [ab cd]", lines)
	}

	// When nothing fits beside the marker, the marker stands alone even if
	// it is wider than maxWidth.
	tiny := Measure(face, "a")
	lines = Truncate([]string{"abcdef", "ghijkl"}, 1, face, tiny)
	if len(lines) != 1 || lines[0] != Ellipsis {
		t.Errorf("narrow last line = %q, want [%s]", lines, Ellipsis)
	}
}

func TestLayoutNeverExceedsMaxLines(t *testing.T) {
	face := testFace(t, 48)
	long := strings.Repeat("compose covers with care ", 10)
	for _, maxLines := range []int{1, 2, 3} {
		b := Layout(long, face, 48, image.Pt(500, 200), "center", Options{
			Wrap: true, MaxWidth: 400, MaxLines: maxLines, LineHeight: 1.3, Align: AlignCenter,
		})
		if len(b.Lines) != maxLines {
			t.Errorf("maxLines %d: got %d lines", maxLines, len(b.Lines))
		}
		for _, l := range b.Lines {
			if l.Width > 400 {
				t.Errorf("line %q is %dpx", l.Text, l.Width)
			}
		}
	}
}

func TestPlace(t *testing.T) {
	tests := []struct {
		anchor string
		want   image.Point
	}{
		{"left", image.Pt(100, 50)},
		{"top-left", image.Pt(100, 50)},
		{"right", image.Pt(60, 50)},
		{"bottom-right", image.Pt(60, 30)},
		{"center", image.Pt(80, 50)},
		{"middle", image.Pt(80, 30)},
		{"top", image.Pt(80, 50)},
	}
	for _, tt := range tests {
		if got := Place(40, 20, 100, 50, tt.anchor); got != tt.want {
			t.Errorf("Place(%q) = %v, want %v", tt.anchor, got, tt.want)
		}
	}
}

func TestLayoutAlignsLines(t *testing.T) {
	face := testFace(t, 40)
	wide := Measure(face, "wwwwww")
	b := Layout("wwwwwwi", face, 40, image.Pt(0, 0), "top-left", Options{
		Wrap: true, MaxWidth: wide, MaxLines: 3, LineHeight: 1.5, Align: AlignRight,
	})
	if len(b.Lines) != 2 {
		t.Fatalf("lines = %+v", b.Lines)
	}
	first, second := b.Lines[0], b.Lines[1]
	if first.X+first.Width != second.X+second.Width {
		t.Errorf("right edges differ: %d vs %d", first.X+first.Width, second.X+second.Width)
	}
	if step := second.Y - first.Y; step != int(float64(LineHeight(face))*1.5) {
		t.Errorf("line step = %d", step)
	}
	if b.Height != int(float64(LineHeight(face))*1.5*2) {
		t.Errorf("block height = %d", b.Height)
	}
}

func TestLayoutUnwrappedUsesFontSize(t *testing.T) {
	face := testFace(t, 32)
	b := Layout("single line", face, 32, image.Pt(200, 100), "bottom", Options{})
	if len(b.Lines) != 1 || b.Height != 32 {
		t.Fatalf("block = %+v", b)
	}
	if b.Origin.Y != 68 {
		t.Errorf("origin y = %d, want 68", b.Origin.Y)
	}
}

func TestLineHeightPositive(t *testing.T) {
	if h := LineHeight(testFace(t, 40)); h <= 0 {
		t.Errorf("LineHeight = %d", h)
	}
}

func TestRenderDrawsFillStrokeAndShadow(t *testing.T) {
	face := testFace(t, 60)
	dst := paint.NewCanvas(400, 200, color.Black)
	b := Layout("HHH", face, 60, image.Pt(20, 20), "top-left", Options{})

	Render(dst, face, b, Style{
		Color:  color.NRGBA{255, 255, 255, 255},
		Shadow: &Shadow{Color: color.NRGBA{255, 0, 0, 127}, OffsetX: 6, OffsetY: 6},
		Stroke: &Stroke{Color: color.NRGBA{0, 0, 255, 255}, Width: 2},
	})

	var white, blue, shadow int
	for y := 0; y < 200; y++ {
		for x := 0; x < 400; x++ {
			c := dst.RGBAAt(x, y)
			switch {
			case c.R == 255 && c.G == 255 && c.B == 255:
				white++
			case c.B == 255 && c.R == 0:
				blue++
			case c.R > 0 && c.R < 255 && c.G == 0 && c.B == 0:
				shadow++
			}
		}
	}
	if white == 0 || blue == 0 || shadow == 0 {
		t.Errorf("white=%d blue=%d shadow=%d, want all > 0", white, blue, shadow)
	}
}

func TestRenderTranslucentStrokeAppliesAlphaOnce(t *testing.T) {
	face := testFace(t, 60)
	dst := paint.NewCanvas(400, 200, color.Black)
	b := Layout("HHH", face, 60, image.Pt(20, 20), "top-left", Options{})

	Render(dst, face, b, Style{
		Color:  color.NRGBA{255, 255, 255, 255},
		Stroke: &Stroke{Color: color.NRGBA{0, 0, 255, 128}, Width: 4},
	})

	var stroke int
	var peak uint8
	for y := 0; y < 200; y++ {
		for x := 0; x < 400; x++ {
			c := dst.RGBAAt(x, y)
			if c.R == 0 && c.G == 0 && c.B > 0 {
				stroke++
				peak = max(peak, c.B)
			}
		}
	}
	if stroke == 0 {
		t.Fatal("no stroke pixels drawn")
	}
	if peak > 130 {
		t.Errorf("stroke blue peaks at %d, want about 128", peak)
	}
}
