// render.go — Draws template elements onto the canvas in declared order.
package pipeline

import (
	"fmt"
	"strings"

	"github.com/xob0t/covercraft/pkg/decoration"
	"github.com/xob0t/covercraft/pkg/errors"
	"github.com/xob0t/covercraft/pkg/paint"
	"github.com/xob0t/covercraft/pkg/template"
	"github.com/xob0t/covercraft/pkg/text"
)

func (r *run) elements(tpl *template.Template, vars template.Vars) {
	for _, el := range tpl.Elements {
		switch e := el.(type) {
		case *template.OptionalText:
			content := template.Substitute(e.Content, vars)
			if strings.TrimSpace(content) == "" && !e.Required {
				r.p.logger.Debug("optional element skipped", "id", e.ID)
				continue
			}
			r.text(&e.Text, content)
		case *template.Text:
			r.text(e, template.Substitute(e.Content, vars))
		case *template.Decoration:
			at, _ := e.Position.Resolve(r.canvas.Rect.Dx(), r.canvas.Rect.Dy())
			if err := decoration.Draw(r.canvas, at, e.Spec); err != nil {
				r.warn(errors.ErrCodeRenderFallback, e.ID, fmt.Sprintf("decoration skipped: %s", errors.UserMessage(err)))
				continue
			}
			r.p.logger.Debug("decoration drawn", "id", e.ID, "kind", e.Spec.Kind)
		default:
			r.warn(errors.ErrCodeRenderFallback, el.ElementID(), fmt.Sprintf("unsupported element %T skipped", el))
		}
	}
}

func (r *run) text(t *template.Text, content string) {
	w, h := r.canvas.Rect.Dx(), r.canvas.Rect.Dy()

	f := r.p.opts.Fonts.Resolve(t.Font.Family, t.Font.Size, t.Font.Weight)
	if f.Fallback {
		r.warn(errors.ErrCodeRenderFallback, t.ID,
			fmt.Sprintf("no font found for %s; using built-in font", strings.Join(t.Font.Family, ", ")))
	}
	face := f.Face()

	at, anchor := t.Position.Resolve(w, h)
	opts := text.Options{
		Wrap:       t.Wrap.Enabled,
		MaxWidth:   paint.Length(string(t.Wrap.MaxWidth), w, w*8/10),
		MaxLines:   t.Wrap.MaxLines,
		LineHeight: t.Wrap.LineHeight,
		Align:      t.Wrap.Align,
	}
	block := text.Layout(content, face, t.Font.Size, at, anchor, opts)
	text.Render(r.canvas, face, block, text.Style{Color: t.Font.Color, Shadow: t.Shadow, Stroke: t.Stroke})

	r.p.logger.Debug("text drawn", "id", t.ID, "font", f.Name, "lines", len(block.Lines), "origin", block.Origin)
}
