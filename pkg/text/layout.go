// Package text lays out and draws template text: per-character wrapping,
// ellipsis truncation, anchor placement and the shadow → stroke → fill pass.
//
// layout.go — Measurement, wrapping and block placement.
package text

import (
	"image"
	"strings"

	"github.com/rivo/uniseg"
	"golang.org/x/image/font"
	"golang.org/x/text/unicode/norm"
)

// Align is the horizontal alignment of lines inside a block.
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// Ellipsis replaces the tail of the last kept line when text is truncated.
const Ellipsis = "..."

// sample is the glyph whose bounds define a line's height.
const sample = "测"

// Options controls Layout.
type Options struct {
	Wrap       bool
	MaxWidth   int     // pixels; only used when Wrap is set
	MaxLines   int     // ≤ 0 means unlimited
	LineHeight float64 // multiplier of the single line height
	Align      Align
}

// Line is one laid-out line. X and Y are the top-left of the line's box.
type Line struct {
	Text  string
	X, Y  int
	Width int
}

// Block is a positioned run of lines.
type Block struct {
	Lines  []Line
	Origin image.Point // top-left of the block
	Width  int
	Height int
}

// Measure returns the advance width of s in whole pixels.
func Measure(face font.Face, s string) int {
	return font.MeasureString(face, s).Ceil()
}

// LineHeight is the height of a single line: the ink bounds of a CJK sample
// glyph, or ascent plus descent when the face has no such glyph.
func LineHeight(face font.Face) int {
	b, _ := font.BoundString(face, sample)
	if h := (b.Max.Y - b.Min.Y).Ceil(); h > 0 {
		return h
	}
	m := face.Metrics()
	return (m.Ascent + m.Descent).Ceil()
}

// clusters splits s into user-perceived characters after NFC normalisation.
func clusters(s string) []string {
	s = norm.NFC.String(s)
	var out []string
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		out = append(out, g.Str())
	}
	return out
}

// Wrap breaks text into lines no wider than maxWidth, one character at a time.
// A character that alone exceeds maxWidth is kept on a line of its own.
// Explicit newlines always break.
func Wrap(text string, face font.Face, maxWidth int) []string {
	var lines []string
	var cur strings.Builder

	for _, c := range clusters(text) {
		if c == "\n" || c == "\r\n" {
			lines = append(lines, cur.String())
			cur.Reset()
			continue
		}
		if cur.Len() == 0 || Measure(face, cur.String()+c) <= maxWidth {
			cur.WriteString(c)
			continue
		}
		lines = append(lines, cur.String())
		cur.Reset()
		cur.WriteString(c)
	}
	if cur.Len() > 0 {
		lines = append(lines, cur.String())
	}
	return lines
}

// Truncate keeps at most maxLines lines. When lines are dropped and the last
// kept line has more than three characters, its last three become Ellipsis;
// more characters are then removed until it fits maxWidth.
func Truncate(lines []string, maxLines int, face font.Face, maxWidth int) []string {
	if maxLines <= 0 || len(lines) <= maxLines {
		return lines
	}
	out := append([]string(nil), lines[:maxLines]...)

	last := clusters(out[maxLines-1])
	if len(last) <= 3 {
		return out
	}
	keep := len(last) - 3
	for keep > 0 && Measure(face, strings.Join(last[:keep], "")+Ellipsis) > maxWidth {
		keep--
	}
	out[maxLines-1] = strings.Join(last[:keep], "") + Ellipsis
	return out
}

// Place converts an anchor point into the top-left origin of a w×h block.
//
// Anchors are matched by substring. Horizontally "left" puts x at the left
// edge, "right" at the right edge, anything else centres. Vertically "top"
// puts y at the top; "bottom" and "middle" both put y at the bottom edge;
// anything else treats y as the top.
func Place(w, h, x, y int, anchor string) image.Point {
	var p image.Point
	switch {
	case strings.Contains(anchor, "left"):
		p.X = x
	case strings.Contains(anchor, "right"):
		p.X = x - w
	default:
		p.X = x - w/2
	}
	switch {
	case strings.Contains(anchor, "top"):
		p.Y = y
	case strings.Contains(anchor, "bottom"), strings.Contains(anchor, "middle"):
		p.Y = y - h
	default:
		p.Y = y
	}
	return p
}

// Layout positions content anchored at `at`. size is the font size, used as
// the block height of unwrapped text.
func Layout(content string, face font.Face, size float64, at image.Point, anchor string, opts Options) Block {
	if !opts.Wrap {
		content = norm.NFC.String(content)
		w := Measure(face, content)
		h := int(size)
		o := Place(w, h, at.X, at.Y, anchor)
		return Block{
			Lines:  []Line{{Text: content, X: o.X, Y: o.Y, Width: w}},
			Origin: o,
			Width:  w,
			Height: h,
		}
	}

	lines := Truncate(Wrap(content, face, opts.MaxWidth), opts.MaxLines, face, opts.MaxWidth)

	lh := opts.LineHeight
	if lh <= 0 {
		lh = 1
	}
	single := LineHeight(face)
	step := int(float64(single) * lh)
	height := int(float64(single) * lh * float64(len(lines)))

	widths := make([]int, len(lines))
	maxW := 0
	for i, l := range lines {
		widths[i] = Measure(face, l)
		maxW = max(maxW, widths[i])
	}

	o := Place(maxW, height, at.X, at.Y, anchor)
	b := Block{Origin: o, Width: maxW, Height: height}
	y := o.Y
	for i, l := range lines {
		x := o.X
		switch opts.Align {
		case AlignRight:
			x += maxW - widths[i]
		case AlignLeft:
		default:
			x += (maxW - widths[i]) / 2
		}
		b.Lines = append(b.Lines, Line{Text: l, X: x, Y: y, Width: widths[i]})
		y += step
	}
	return b
}
