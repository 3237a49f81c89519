// Package template loads declarative cover templates, validates them,
// applies named variants and resolves them into render-ready form.
package template

import (
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ── Document types (YAML) ──

// File is the on-disk shape: a single top-level "template" key.
type File struct {
	Template Doc `yaml:"template"`
}

// Doc is a template as authored. Zero values mean "not set"; defaults are
// applied by Build.
type Doc struct {
	Name        string         `yaml:"name"`
	ID          string         `yaml:"id"`
	Description string         `yaml:"description"`
	Category    string         `yaml:"category"`
	Version     string         `yaml:"version"`
	Background  *BackgroundDoc `yaml:"background"`
	Overlay     *OverlayDoc    `yaml:"overlay,omitempty"`
	Elements    []ElementDoc   `yaml:"elements"`
	Variants    []VariantDoc   `yaml:"variants,omitempty"`
}

// BackgroundDoc describes the base canvas.
type BackgroundDoc struct {
	Type      string       `yaml:"type"`  // ai_generate, solid, gradient
	Style     string       `yaml:"style"` // ai_generate style token
	Size      string       `yaml:"size"`  // "WxH"
	Quality   string       `yaml:"quality"`
	Prompt    string       `yaml:"prompt,omitempty"`
	Color     string       `yaml:"color"`
	From      string       `yaml:"from"`
	To        string       `yaml:"to"`
	Direction string       `yaml:"direction"`
	Gradient  *GradientDoc `yaml:"gradient,omitempty"` // nested form of From/To/Direction
}

// GradientDoc is the nested gradient block accepted by backgrounds and overlays.
type GradientDoc struct {
	From      string `yaml:"from"`
	To        string `yaml:"to"`
	Direction string `yaml:"direction"`
}

// OverlayDoc describes a translucent layer over the background.
type OverlayDoc struct {
	Enabled   bool         `yaml:"enabled"`
	Type      string       `yaml:"type"` // gradient, solid
	From      string       `yaml:"from"`
	To        string       `yaml:"to"`
	Direction string       `yaml:"direction"`
	Color     string       `yaml:"color"`
	Position  string       `yaml:"position"` // full, top, bottom
	Height    Dim          `yaml:"height"`
	Gradient  *GradientDoc `yaml:"gradient,omitempty"`
}

// ElementDoc is one layer drawn over the background. Nested blocks replace
// as a whole when a variant overrides them.
type ElementDoc struct {
	ID       string       `yaml:"id"`
	Type     string       `yaml:"type"` // text, optional, decoration
	Content  string       `yaml:"content,omitempty"`
	Required *bool        `yaml:"required,omitempty"`
	Position *PositionDoc `yaml:"position,omitempty"`
	Font     *FontDoc     `yaml:"font,omitempty"`
	Wrap     *WrapDoc     `yaml:"wrap,omitempty"`
	Effects  *EffectsDoc  `yaml:"effects,omitempty"`
	Style    *StyleDoc    `yaml:"style,omitempty"`
}

// PositionDoc places an element. Type "center" ignores X, Y and Anchor.
type PositionDoc struct {
	Type   string `yaml:"type"` // center, absolute
	X      Dim    `yaml:"x"`
	Y      Dim    `yaml:"y"`
	Anchor string `yaml:"anchor"`
}

// FontDoc selects a font.
type FontDoc struct {
	Family []string `yaml:"family"`
	Size   Dim      `yaml:"size"`
	Weight string   `yaml:"weight"`
	Color  string   `yaml:"color"`
}

// WrapDoc controls line wrapping.
type WrapDoc struct {
	Enabled    *bool   `yaml:"enabled"`
	MaxWidth   Dim     `yaml:"max_width"`
	MaxLines   int     `yaml:"max_lines"`
	LineHeight float64 `yaml:"line_height"`
	Align      string  `yaml:"align"`
}

// EffectsDoc holds the optional text effects.
type EffectsDoc struct {
	Shadow *ShadowDoc `yaml:"shadow,omitempty"`
	Stroke *StrokeDoc `yaml:"stroke,omitempty"`
}

// ShadowDoc is a drop shadow.
type ShadowDoc struct {
	Enabled bool   `yaml:"enabled"`
	Color   string `yaml:"color"`
	OffsetX *int   `yaml:"offset_x"`
	OffsetY *int   `yaml:"offset_y"`
}

// StrokeDoc is a text outline.
type StrokeDoc struct {
	Enabled bool   `yaml:"enabled"`
	Color   string `yaml:"color"`
	Width   *int   `yaml:"width"`
}

// StyleDoc describes a decoration.
type StyleDoc struct {
	Type         string `yaml:"type"` // line, rounded_rectangle, brackets
	Width        *int   `yaml:"width"`
	Height       *int   `yaml:"height"`
	Color        string `yaml:"color"`
	Background   string `yaml:"background"`
	BorderColor  string `yaml:"border_color"`
	BorderWidth  *int   `yaml:"border_width"`
	CornerRadius *int   `yaml:"corner_radius"`
	CornerSize   *int   `yaml:"corner_size"`
	Padding      *int   `yaml:"padding"`
}

// VariantDoc is a named partial override.
type VariantDoc struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description,omitempty"`
	Background  *BackgroundDoc `yaml:"background,omitempty"`
	Overlay     *OverlayDoc    `yaml:"overlay,omitempty"`
	Elements    []ElementDoc   `yaml:"elements,omitempty"`
}

// Dim is a length or size written either as a number or as a string such
// as "80%". The raw text is kept and interpreted at render time.
type Dim string

// UnmarshalYAML accepts any scalar.
func (d *Dim) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return &yaml.TypeError{Errors: []string{"line " + strconv.Itoa(node.Line) + ": expected a number or percentage"}}
	}
	*d = Dim(node.Value)
	return nil
}

// MarshalYAML writes numbers unquoted.
func (d Dim) MarshalYAML() (any, error) {
	if f, err := strconv.ParseFloat(string(d), 64); err == nil {
		return f, nil
	}
	return string(d), nil
}

// IsZero reports whether d was left unset.
func (d Dim) IsZero() bool { return strings.TrimSpace(string(d)) == "" }

// Number returns d as a plain number. Percentages are not numbers.
func (d Dim) Number() (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(string(d)), 64)
	return f, err == nil
}

// ── Summary ──

// Info is the listing view of a template.
type Info struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Version     string   `json:"version"`
	Variants    []string `json:"variants,omitempty"`
	Source      string   `json:"source"`
}

// Categories are the allowed template categories.
var Categories = []string{"basic", "structured", "minimal", "creative", "tech", "editorial"}
