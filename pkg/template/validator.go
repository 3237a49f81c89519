// validator.go — Structural checks for template documents.
package template

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/xob0t/covercraft/pkg/background"
	"github.com/xob0t/covercraft/pkg/decoration"
	"github.com/xob0t/covercraft/pkg/overlay"
	"github.com/xob0t/covercraft/pkg/paint"
)

var versionPattern = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

// Validate checks a document. Errors make the document unusable; warnings
// describe things that will render with a fallback or not at all.
func Validate(doc *Doc) (errs, warnings []string) {
	v := &validation{}

	v.required("name", doc.Name)
	v.required("id", doc.ID)
	v.required("description", doc.Description)
	v.required("category", doc.Category)
	v.required("version", doc.Version)
	if doc.Category != "" && !slices.Contains(Categories, doc.Category) {
		v.errorf("invalid category %q (want one of %s)", doc.Category, strings.Join(Categories, ", "))
	}
	if doc.Version != "" && !versionPattern.MatchString(doc.Version) {
		v.errorf("invalid version %q (want N.N.N)", doc.Version)
	}

	if doc.Background == nil {
		v.errorf("missing required field template.background")
	} else {
		v.background("background", doc.Background, true)
	}
	if doc.Overlay != nil {
		v.overlay("overlay", doc.Overlay)
	}

	if doc.Elements == nil {
		v.errorf("missing required field template.elements")
	}
	ids := make(map[string]bool, len(doc.Elements))
	for i := range doc.Elements {
		e := &doc.Elements[i]
		v.element(fmt.Sprintf("elements[%d]", i), e, true)
		if e.ID != "" {
			if ids[e.ID] {
				v.errorf("duplicate element id %q", e.ID)
			}
			ids[e.ID] = true
		}
	}

	names := make(map[string]bool, len(doc.Variants))
	for i := range doc.Variants {
		vr := &doc.Variants[i]
		where := fmt.Sprintf("variants[%d]", i)
		if vr.Name == "" {
			v.errorf("%s: missing name", where)
		} else if names[vr.Name] {
			v.errorf("duplicate variant name %q", vr.Name)
		}
		names[vr.Name] = true

		if vr.Background == nil && vr.Overlay == nil && len(vr.Elements) == 0 {
			v.warnf("%s (%s): variant changes nothing", where, vr.Name)
		}
		if vr.Background != nil {
			v.background(where+".background", vr.Background, false)
		}
		if vr.Overlay != nil {
			v.overlay(where+".overlay", vr.Overlay)
		}
		for j := range vr.Elements {
			e := &vr.Elements[j]
			ew := fmt.Sprintf("%s.elements[%d]", where, j)
			if e.ID == "" {
				v.errorf("%s: missing id", ew)
				continue
			}
			if !ids[e.ID] {
				v.warnf("%s: no element with id %q", ew, e.ID)
			}
			v.element(ew, e, false)
		}
	}
	return v.errs, v.warnings
}

type validation struct {
	errs, warnings []string
}

func (v *validation) errorf(format string, args ...any) {
	v.errs = append(v.errs, fmt.Sprintf(format, args...))
}

func (v *validation) warnf(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

func (v *validation) required(field, value string) {
	if value == "" {
		v.errorf("missing required field template.%s", field)
	}
}

func (v *validation) color(where, s string) {
	if s == "" {
		return
	}
	if _, ok := paint.LookupColor(s); !ok {
		v.warnf("%s: unrecognised colour %q will render black", where, s)
	}
}

// background checks a background block; partial blocks come from variants.
func (v *validation) background(where string, bg *BackgroundDoc, complete bool) {
	if bg.Size != "" {
		if _, _, ok := paint.ParseSize(bg.Size); !ok {
			v.errorf("%s.size: invalid size %q (want WxH, at most %d per side)", where, bg.Size, paint.MaxDimension)
		}
	}
	switch bg.Type {
	case "":
		if complete {
			v.errorf("%s: missing type", where)
		}
	case "ai_generate":
		if bg.Style == "" && complete {
			v.errorf("%s: ai_generate background needs a style", where)
		}
		if bg.Style != "" && !background.Style(bg.Style).Valid() {
			v.errorf("%s: invalid style %q", where, bg.Style)
		}
	case "solid":
		if bg.Color == "" && complete {
			v.errorf("%s: solid background needs a color", where)
		}
	case "gradient":
		from, to, dir := gradientFields(bg.From, bg.To, bg.Direction, bg.Gradient)
		if complete {
			for _, f := range [][2]string{{"from", from}, {"to", to}, {"direction", dir}} {
				if f[1] == "" {
					v.errorf("%s: gradient missing %s", where, f[0])
				}
			}
		}
		if dir != "" && !paint.Direction(dir).Valid() {
			v.errorf("%s: invalid gradient direction %q", where, dir)
		}
		v.color(where+".from", from)
		v.color(where+".to", to)
	default:
		v.errorf("%s: unknown background type %q", where, bg.Type)
	}
	v.color(where+".color", bg.Color)
}

func (v *validation) overlay(where string, ov *OverlayDoc) {
	switch ov.Type {
	case "", "gradient":
		from, to, dir := gradientFields(ov.From, ov.To, ov.Direction, ov.Gradient)
		if dir != "" && !paint.Direction(dir).Valid() {
			v.errorf("%s: invalid gradient direction %q", where, dir)
		}
		v.color(where+".from", from)
		v.color(where+".to", to)
	case "solid":
		if ov.Position != "" && !overlay.Region(ov.Position).Valid() {
			v.errorf("%s: invalid position %q (want full, top or bottom)", where, ov.Position)
		}
		if !ov.Height.IsZero() && !paint.IsLength(string(ov.Height)) {
			v.errorf("%s: invalid height %q", where, ov.Height)
		}
		v.color(where+".color", ov.Color)
	default:
		v.errorf("%s: unknown overlay type %q", where, ov.Type)
	}
}

// element checks one element; variant overrides may omit type and content.
func (v *validation) element(where string, e *ElementDoc, complete bool) {
	if complete {
		if e.Type == "" {
			v.errorf("%s: missing type", where)
			return
		}
		if e.ID == "" {
			v.errorf("%s: missing id", where)
		}
	}

	switch e.Type {
	case "", "text", "optional":
		if e.Type != "" && e.Content == "" && complete {
			v.errorf("%s: missing content", where)
		}
		for _, p := range UnknownPlaceholders(e.Content) {
			v.warnf("%s: unknown placeholder %s is left as written", where, p)
		}
	case "decoration":
		if e.Style != nil && e.Style.Type != "" && !decoration.Kind(e.Style.Type).Valid() {
			v.errorf("%s: unknown decoration style %q", where, e.Style.Type)
		}
	default:
		v.errorf("%s: unknown element type %q", where, e.Type)
	}

	if p := e.Position; p != nil {
		if p.Type == "" {
			v.errorf("%s.position: missing type", where)
		}
		for _, d := range [][2]string{{"x", string(p.X)}, {"y", string(p.Y)}} {
			if d[1] != "" && !paint.IsLength(d[1]) {
				v.errorf("%s.position.%s: invalid length %q", where, d[0], d[1])
			}
		}
	}
	if f := e.Font; f != nil {
		if !f.Size.IsZero() {
			if _, ok := f.Size.Number(); !ok {
				v.errorf("%s.font.size: must be a number, got %q", where, f.Size)
			}
		}
		v.color(where+".font.color", f.Color)
	}
	if w := e.Wrap; w != nil && !w.MaxWidth.IsZero() && !paint.IsLength(string(w.MaxWidth)) {
		v.errorf("%s.wrap.max_width: invalid length %q", where, w.MaxWidth)
	}
	if fx := e.Effects; fx != nil {
		if fx.Shadow != nil {
			v.color(where+".effects.shadow.color", fx.Shadow.Color)
		}
		if fx.Stroke != nil {
			v.color(where+".effects.stroke.color", fx.Stroke.Color)
		}
	}
	if s := e.Style; s != nil {
		v.color(where+".style.color", s.Color)
		v.color(where+".style.background", s.Background)
		v.color(where+".style.border_color", s.BorderColor)
	}
}
