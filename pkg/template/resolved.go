// resolved.go — Render-ready templates: defaults applied, colours parsed and
// every background and element turned into a closed set of concrete types.
package template

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/xob0t/covercraft/pkg/background"
	"github.com/xob0t/covercraft/pkg/decoration"
	"github.com/xob0t/covercraft/pkg/overlay"
	"github.com/xob0t/covercraft/pkg/paint"
	"github.com/xob0t/covercraft/pkg/text"
)

// Defaults used when a document leaves a field unset.
const (
	DefaultSize       = "3072x1306"
	DefaultQuality    = "hd"
	DefaultFontSize   = 40
	DefaultMaxWidth   = "80%"
	DefaultMaxLines   = 3
	DefaultLineHeight = 1.3
	DefaultAnchor     = "left"
	DefaultCoord      = "50%"
)

// DefaultFamily is the font family list used when none is given.
var DefaultFamily = []string{"Microsoft YaHei", "sans-serif"}

// Template is a resolved template. It is never mutated after Build.
type Template struct {
	ID          string
	Name        string
	Description string
	Category    string
	Version     string
	Variant     string // applied variant, empty for the base

	Width, Height int
	Background    background.Spec
	Overlay       overlay.Spec // nil when disabled
	Elements      []Element

	// Warnings collects recoverable problems found while resolving, such as
	// colours that fell back to black.
	Warnings []string
}

// Size returns the canvas size.
func (t *Template) Size() image.Point { return image.Pt(t.Width, t.Height) }

// Element is one of *Text, *OptionalText or *Decoration.
type Element interface {
	ElementID() string
}

// Position is a resolved placement.
type Position struct {
	Center bool // canvas centre, anchor "middle"
	X, Y   Dim
	Anchor string
}

// Resolve converts the position into pixels on a w×h canvas.
func (p Position) Resolve(w, h int) (image.Point, string) {
	if p.Center {
		return image.Pt(w/2, h/2), "middle"
	}
	x := paint.Length(string(p.X), w, w/2)
	y := paint.Length(string(p.Y), h, h/2)
	return image.Pt(x, y), p.Anchor
}

// Font is a resolved font request.
type Font struct {
	Family []string
	Size   float64
	Weight string
	Color  color.NRGBA
}

// Wrap is resolved wrapping. MaxWidth is interpreted against the canvas width.
type Wrap struct {
	Enabled    bool
	MaxWidth   Dim
	MaxLines   int
	LineHeight float64
	Align      text.Align
}

// Text is a text element.
type Text struct {
	ID       string
	Content  string
	Position Position
	Font     Font
	Wrap     Wrap
	Shadow   *text.Shadow
	Stroke   *text.Stroke
}

// OptionalText is a text element that is skipped when its substituted
// content is empty and Required is false.
type OptionalText struct {
	Text
	Required bool
}

// Decoration is a shape element.
type Decoration struct {
	ID       string
	Position Position
	Spec     decoration.Spec
}

func (t *Text) ElementID() string       { return t.ID }
func (d *Decoration) ElementID() string { return d.ID }

// Build resolves a validated document. Unparseable colours become opaque
// black with a warning; structural problems are reported by Validate, not here.
func Build(doc *Doc) (*Template, error) {
	b := &builder{}

	w, h, ok := paint.ParseSize(orDefault(doc.Background.sizeOrEmpty(), DefaultSize))
	if !ok {
		return nil, fmt.Errorf("template %s: invalid background size %q", doc.ID, doc.Background.Size)
	}

	t := &Template{
		ID:          doc.ID,
		Name:        doc.Name,
		Description: doc.Description,
		Category:    doc.Category,
		Version:     doc.Version,
		Width:       w,
		Height:      h,
	}

	bg, err := b.background(doc.Background)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", doc.ID, err)
	}
	t.Background = bg

	if doc.Overlay != nil && doc.Overlay.Enabled {
		ov, err := b.overlay(doc.Overlay)
		if err != nil {
			return nil, fmt.Errorf("template %s: %w", doc.ID, err)
		}
		t.Overlay = ov
	}

	for i := range doc.Elements {
		el, err := b.element(&doc.Elements[i])
		if err != nil {
			return nil, fmt.Errorf("template %s: element %q: %w", doc.ID, doc.Elements[i].ID, err)
		}
		t.Elements = append(t.Elements, el)
	}

	t.Warnings = b.warnings
	return t, nil
}

// builder accumulates warnings while resolving one document.
type builder struct {
	warnings []string
}

func (b *builder) color(field, s, def string) color.NRGBA {
	if s == "" {
		s = def
	}
	c, ok := paint.LookupColor(s)
	if !ok {
		b.warnings = append(b.warnings, fmt.Sprintf("%s: unrecognised colour %q, using black", field, s))
	}
	return c
}

func (bg *BackgroundDoc) sizeOrEmpty() string {
	if bg == nil {
		return ""
	}
	return bg.Size
}

// gradientFields merges the nested gradient block under the flat keys.
func gradientFields(from, to, dir string, nested *GradientDoc) (string, string, string) {
	if nested != nil {
		from = orDefault(from, nested.From)
		to = orDefault(to, nested.To)
		dir = orDefault(dir, nested.Direction)
	}
	return from, to, dir
}

func (b *builder) background(doc *BackgroundDoc) (background.Spec, error) {
	if doc == nil {
		return nil, fmt.Errorf("missing background")
	}
	switch doc.Type {
	case "solid":
		return background.Solid{Color: b.color("background.color", doc.Color, "#FFFFFF")}, nil
	case "gradient":
		from, to, dir := gradientFields(doc.From, doc.To, doc.Direction, doc.Gradient)
		return background.Gradient{
			From:      b.color("background.from", from, "#667eea"),
			To:        b.color("background.to", to, "#764ba2"),
			Direction: paint.Direction(orDefault(dir, string(paint.Horizontal))),
		}, nil
	case "ai_generate", "":
		return background.Generate{
			Style:   background.Style(orDefault(doc.Style, string(background.StyleTech))),
			Prompt:  doc.Prompt,
			Quality: orDefault(doc.Quality, DefaultQuality),
		}, nil
	}
	return nil, fmt.Errorf("unknown background type %q", doc.Type)
}

func (b *builder) overlay(doc *OverlayDoc) (overlay.Spec, error) {
	switch doc.Type {
	case "gradient", "":
		from, to, dir := gradientFields(doc.From, doc.To, doc.Direction, doc.Gradient)
		return overlay.Gradient{
			From:      b.color("overlay.from", from, "rgba(0,0,0,0.7)"),
			To:        b.color("overlay.to", to, "rgba(0,0,0,0.3)"),
			Direction: paint.Direction(orDefault(dir, string(paint.Vertical))),
		}, nil
	case "solid":
		return overlay.Solid{
			Color:  b.color("overlay.color", doc.Color, "rgba(0,0,0,0.5)"),
			Region: overlay.Region(orDefault(doc.Position, string(overlay.Full))),
			Height: orDefault(string(doc.Height), "100%"),
		}, nil
	}
	return nil, fmt.Errorf("unknown overlay type %q", doc.Type)
}

func (b *builder) element(doc *ElementDoc) (Element, error) {
	switch doc.Type {
	case "text":
		t := b.text(doc)
		return &t, nil
	case "optional":
		required := true
		if doc.Required != nil {
			required = *doc.Required
		}
		return &OptionalText{Text: b.text(doc), Required: required}, nil
	case "decoration":
		return b.decoration(doc), nil
	}
	return nil, fmt.Errorf("unknown element type %q", doc.Type)
}

func position(doc *PositionDoc) Position {
	if doc == nil {
		return Position{X: DefaultCoord, Y: DefaultCoord, Anchor: DefaultAnchor}
	}
	if doc.Type == "center" {
		return Position{Center: true}
	}
	p := Position{X: doc.X, Y: doc.Y, Anchor: orDefault(doc.Anchor, DefaultAnchor)}
	if p.X.IsZero() {
		p.X = DefaultCoord
	}
	if p.Y.IsZero() {
		p.Y = DefaultCoord
	}
	return p
}

func (b *builder) text(doc *ElementDoc) Text {
	field := "elements." + doc.ID
	t := Text{
		ID:       doc.ID,
		Content:  doc.Content,
		Position: position(doc.Position),
		Font: Font{
			Family: DefaultFamily,
			Size:   DefaultFontSize,
			Weight: "normal",
			Color:  b.color(field+".font.color", "", "#000000"),
		},
		Wrap: Wrap{
			Enabled:    true,
			MaxWidth:   DefaultMaxWidth,
			MaxLines:   DefaultMaxLines,
			LineHeight: DefaultLineHeight,
			Align:      text.AlignCenter,
		},
	}

	if f := doc.Font; f != nil {
		if len(f.Family) > 0 {
			t.Font.Family = append([]string(nil), f.Family...)
		}
		if n, ok := f.Size.Number(); ok && n > 0 {
			t.Font.Size = n
		}
		t.Font.Weight = orDefault(f.Weight, "normal")
		t.Font.Color = b.color(field+".font.color", f.Color, "#000000")
	}

	if w := doc.Wrap; w != nil {
		if w.Enabled != nil {
			t.Wrap.Enabled = *w.Enabled
		}
		if !w.MaxWidth.IsZero() {
			t.Wrap.MaxWidth = w.MaxWidth
		}
		if w.MaxLines > 0 {
			t.Wrap.MaxLines = w.MaxLines
		}
		if w.LineHeight > 0 {
			t.Wrap.LineHeight = w.LineHeight
		}
		if w.Align != "" {
			t.Wrap.Align = text.Align(strings.ToLower(w.Align))
		}
	}

	if e := doc.Effects; e != nil {
		if s := e.Shadow; s != nil && s.Enabled {
			t.Shadow = &text.Shadow{
				Color:   b.color(field+".effects.shadow.color", s.Color, "rgba(0,0,0,0.5)"),
				OffsetX: intOr(s.OffsetX, 4),
				OffsetY: intOr(s.OffsetY, 4),
			}
		}
		if s := e.Stroke; s != nil && s.Enabled {
			t.Stroke = &text.Stroke{
				Color: b.color(field+".effects.stroke.color", s.Color, "#000000"),
				Width: intOr(s.Width, 2),
			}
		}
	}
	return t
}

func (b *builder) decoration(doc *ElementDoc) *Decoration {
	field := "elements." + doc.ID + ".style"
	st := doc.Style
	if st == nil {
		st = &StyleDoc{}
	}
	d := &Decoration{ID: doc.ID, Position: position(doc.Position)}

	switch kind := decoration.Kind(orDefault(st.Type, string(decoration.KindLine))); kind {
	case decoration.KindRoundedRectangle:
		d.Spec = decoration.Spec{
			Kind:         kind,
			Width:        intOr(st.Width, 200),
			Height:       intOr(st.Height, 60),
			Background:   b.color(field+".background", st.Background, "rgba(255,255,255,0.2)"),
			BorderColor:  b.color(field+".border_color", st.BorderColor, "#FFFFFF"),
			BorderWidth:  intOr(st.BorderWidth, 2),
			CornerRadius: intOr(st.CornerRadius, 10),
		}
	case decoration.KindBrackets:
		d.Spec = decoration.Spec{
			Kind:       kind,
			Color:      b.color(field+".color", st.Color, "#000000"),
			Width:      intOr(st.Width, 3),
			CornerSize: intOr(st.CornerSize, 60),
			Padding:    intOr(st.Padding, 50),
		}
	default:
		d.Spec = decoration.Spec{
			Kind:   kind,
			Width:  intOr(st.Width, 100),
			Height: intOr(st.Height, 2),
			Color:  b.color(field+".color", st.Color, "#000000"),
		}
	}
	return d
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}
