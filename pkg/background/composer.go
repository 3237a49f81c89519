// composer.go — Turns a background Spec into a canvas, recovering from
// synthesis failures with the style's local fallback.
package background

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"

	"github.com/xob0t/covercraft/pkg/errors"
	"github.com/xob0t/covercraft/pkg/paint"
	"github.com/xob0t/covercraft/pkg/synth"
)

// Composer produces background canvases.
type Composer struct {
	synth  synth.Synthesizer
	logger *log.Logger
}

// NewComposer creates a composer. s may be nil, in which case every
// Generate spec uses its local fallback.
func NewComposer(s synth.Synthesizer, logger *log.Logger) *Composer {
	if logger == nil {
		logger = log.Default()
	}
	return &Composer{synth: s, logger: logger}
}

// Compose returns a w×h opaque canvas for spec. Synthesis failures never
// surface as errors when a fallback exists; they are reported as warnings.
// The only error is a FATAL one: bad dimensions, or a Generate without a
// style whose request failed.
func (c *Composer) Compose(ctx context.Context, spec Spec, w, h int) (*image.RGBA, []string, error) {
	if w <= 0 || h <= 0 {
		return nil, nil, errors.New(errors.ErrCodeFatal, "invalid canvas size %dx%d", w, h)
	}

	g, ok := spec.(Generate)
	if !ok {
		if img := Paint(spec, w, h); img != nil {
			return img, nil, nil
		}
		return nil, nil, errors.New(errors.ErrCodeFatal, "unsupported background %T", spec)
	}

	img, err := c.generate(ctx, g, w, h)
	if err == nil {
		return img, nil, nil
	}

	if g.Style == "" {
		return nil, nil, errors.Wrap(errors.ErrCodeFatal, err, "background synthesis failed")
	}
	style := g.Style
	if !style.Valid() {
		style = StyleTech
	}
	c.logger.Warn("background synthesis failed, using fallback", "style", style, "err", err)
	warning := fmt.Sprintf("background synthesis failed (%s); used %s fallback", errors.UserMessage(err), style)
	return Paint(Fallback(style), w, h), []string{warning}, nil
}

func (c *Composer) generate(ctx context.Context, g Generate, w, h int) (*image.RGBA, error) {
	if c.synth == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no image synthesizer configured")
	}
	prompt := g.Prompt
	if prompt == "" {
		prompt = Prompt(g.Style)
	}
	quality := g.Quality
	if quality == "" {
		quality = "hd"
	}

	start := time.Now()
	src, err := c.synth.Synthesize(ctx, synth.Request{Prompt: prompt, Width: w, Height: h, Quality: quality})
	if err != nil {
		return nil, err
	}
	c.logger.Info("background synthesized", "size", paint.FormatSize(w, h), "elapsed", time.Since(start).Round(time.Millisecond))

	if src.Bounds().Dx() != w || src.Bounds().Dy() != h {
		src = imaging.Fill(src, w, h, imaging.Center, imaging.Lanczos)
	}
	return paint.Flatten(src), nil
}
