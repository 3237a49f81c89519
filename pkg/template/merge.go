// merge.go — Variant application: deep-copy the base document, then overlay
// the variant's fields on top.
package template

import (
	"slices"

	"github.com/xob0t/covercraft/pkg/errors"
)

// ApplyVariant returns a copy of doc with the named variant applied. doc is
// not modified. An empty name returns a plain copy; an unknown name is NOT_FOUND.
//
// Background fields set in the variant replace the base fields one by one.
// A variant overlay replaces the base overlay. Elements are matched by id and
// each top-level field the variant sets replaces the base field whole.
func ApplyVariant(doc *Doc, name string) (*Doc, error) {
	out := doc.Clone()
	if name == "" {
		return out, nil
	}

	var v *VariantDoc
	for i := range doc.Variants {
		if doc.Variants[i].Name == name {
			v = &doc.Variants[i]
			break
		}
	}
	if v == nil {
		return nil, errors.New(errors.ErrCodeNotFound, "template %q has no variant %q", doc.ID, name)
	}

	if v.Background != nil {
		if out.Background == nil {
			out.Background = &BackgroundDoc{}
		}
		mergeBackground(out.Background, v.Background)
	}
	if v.Overlay != nil {
		ov := *v.Overlay
		ov.Gradient = cloneGradient(v.Overlay.Gradient)
		out.Overlay = &ov
	}

	overrides := make(map[string]*ElementDoc, len(v.Elements))
	for i := range v.Elements {
		overrides[v.Elements[i].ID] = &v.Elements[i]
	}
	for i := range out.Elements {
		if over, ok := overrides[out.Elements[i].ID]; ok {
			mergeElement(&out.Elements[i], over.Clone())
		}
	}
	return out, nil
}

// mergeBackground applies non-zero background overrides.
func mergeBackground(base *BackgroundDoc, over *BackgroundDoc) {
	if over.Type != "" {
		base.Type = over.Type
	}
	if over.Style != "" {
		base.Style = over.Style
	}
	if over.Size != "" {
		base.Size = over.Size
	}
	if over.Quality != "" {
		base.Quality = over.Quality
	}
	if over.Prompt != "" {
		base.Prompt = over.Prompt
	}
	if over.Color != "" {
		base.Color = over.Color
	}
	if over.From != "" {
		base.From = over.From
	}
	if over.To != "" {
		base.To = over.To
	}
	if over.Direction != "" {
		base.Direction = over.Direction
	}
	if over.Gradient != nil {
		base.Gradient = cloneGradient(over.Gradient)
	}
}

// mergeElement overlays the fields over sets. over must not be shared.
func mergeElement(base *ElementDoc, over ElementDoc) {
	if over.Type != "" {
		base.Type = over.Type
	}
	if over.Content != "" {
		base.Content = over.Content
	}
	if over.Required != nil {
		base.Required = over.Required
	}
	if over.Position != nil {
		base.Position = over.Position
	}
	if over.Font != nil {
		base.Font = over.Font
	}
	if over.Wrap != nil {
		base.Wrap = over.Wrap
	}
	if over.Effects != nil {
		base.Effects = over.Effects
	}
	if over.Style != nil {
		base.Style = over.Style
	}
}

// ── Deep copies ──

// Clone returns a deep copy of d.
func (d *Doc) Clone() *Doc {
	out := *d
	if d.Background != nil {
		bg := *d.Background
		bg.Gradient = cloneGradient(d.Background.Gradient)
		out.Background = &bg
	}
	if d.Overlay != nil {
		ov := *d.Overlay
		ov.Gradient = cloneGradient(d.Overlay.Gradient)
		out.Overlay = &ov
	}
	if d.Elements != nil {
		out.Elements = make([]ElementDoc, len(d.Elements))
		for i := range d.Elements {
			out.Elements[i] = d.Elements[i].Clone()
		}
	}
	if d.Variants != nil {
		out.Variants = make([]VariantDoc, len(d.Variants))
		for i, v := range d.Variants {
			cv := v
			if v.Background != nil {
				bg := *v.Background
				bg.Gradient = cloneGradient(v.Background.Gradient)
				cv.Background = &bg
			}
			if v.Overlay != nil {
				ov := *v.Overlay
				ov.Gradient = cloneGradient(v.Overlay.Gradient)
				cv.Overlay = &ov
			}
			if v.Elements != nil {
				cv.Elements = make([]ElementDoc, len(v.Elements))
				for j := range v.Elements {
					cv.Elements[j] = v.Elements[j].Clone()
				}
			}
			out.Variants[i] = cv
		}
	}
	return &out
}

// Clone returns a deep copy of e.
func (e *ElementDoc) Clone() ElementDoc {
	out := *e
	out.Required = clonePtr(e.Required)
	if e.Position != nil {
		p := *e.Position
		out.Position = &p
	}
	if e.Font != nil {
		f := *e.Font
		f.Family = slices.Clone(e.Font.Family)
		out.Font = &f
	}
	if e.Wrap != nil {
		w := *e.Wrap
		w.Enabled = clonePtr(e.Wrap.Enabled)
		out.Wrap = &w
	}
	if e.Effects != nil {
		fx := EffectsDoc{}
		if s := e.Effects.Shadow; s != nil {
			sc := *s
			sc.OffsetX, sc.OffsetY = clonePtr(s.OffsetX), clonePtr(s.OffsetY)
			fx.Shadow = &sc
		}
		if s := e.Effects.Stroke; s != nil {
			sc := *s
			sc.Width = clonePtr(s.Width)
			fx.Stroke = &sc
		}
		out.Effects = &fx
	}
	if e.Style != nil {
		s := *e.Style
		s.Width, s.Height = clonePtr(e.Style.Width), clonePtr(e.Style.Height)
		s.BorderWidth, s.CornerRadius = clonePtr(e.Style.BorderWidth), clonePtr(e.Style.CornerRadius)
		s.CornerSize, s.Padding = clonePtr(e.Style.CornerSize), clonePtr(e.Style.Padding)
		out.Style = &s
	}
	return out
}

func cloneGradient(g *GradientDoc) *GradientDoc {
	if g == nil {
		return nil
	}
	c := *g
	return &c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
