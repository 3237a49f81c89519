// Package pipeline turns a template and a title into a finished set of cover
// artifacts.
//
// A run moves through fixed stages in order:
//
//	Init → BackgroundReady → OverlayApplied → ElementsRendered →
//	CropVariantsGenerated → PreviewAssembled → Persisted
//
// Everything up to Persisted happens in memory; files and the result.json
// manifest are written only in the last stage. The only fatal condition after
// Init is failing to produce a background. Fallbacks and failed variants are
// reported as manifest warnings.
package pipeline

import (
	"context"
	"fmt"
	"image"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/xob0t/covercraft/pkg/background"
	"github.com/xob0t/covercraft/pkg/crop"
	"github.com/xob0t/covercraft/pkg/errors"
	"github.com/xob0t/covercraft/pkg/fonts"
	"github.com/xob0t/covercraft/pkg/overlay"
	"github.com/xob0t/covercraft/pkg/paint"
	"github.com/xob0t/covercraft/pkg/template"
)

// Stage names a pipeline step.
type Stage string

const (
	StageInit                  Stage = "init"
	StageBackgroundReady       Stage = "background_ready"
	StageOverlayApplied        Stage = "overlay_applied"
	StageElementsRendered      Stage = "elements_rendered"
	StageCropVariantsGenerated Stage = "crop_variants_generated"
	StagePreviewAssembled      Stage = "preview_assembled"
	StagePersisted             Stage = "persisted"
)

// Defaults.
const (
	DefaultOutputDir      = "output"
	DefaultPreviewQuality = 90
	DefaultPromptSize     = template.DefaultSize
)

// DefaultPresets are used when neither the request nor Options name any.
var DefaultPresets = []string{"wechat-cover"}

// Options configures a Pipeline. Zero values select defaults.
type Options struct {
	Templates *template.Store      // required for Run
	Composer  *background.Composer // nil: no synthesizer, fallbacks only
	Fonts     *fonts.Resolver      // nil: system fonts plus the embedded set
	Logger    *log.Logger

	OutputDir string
	Presets   []string
	Modes     []crop.Mode
	ShareCard bool
	Preview   bool
	Quality   int // JPEG quality for raw image, variants and share card
	Workers   int // parallel crop variants; ≤ 1 is sequential

	now func() time.Time
}

// Pipeline runs cover generation. It is safe for concurrent use; each run
// owns its own canvas.
type Pipeline struct {
	opts   Options
	logger *log.Logger
}

// New creates a pipeline.
func New(opts Options) *Pipeline {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Composer == nil {
		opts.Composer = background.NewComposer(nil, opts.Logger)
	}
	if opts.Fonts == nil {
		opts.Fonts = fonts.NewResolver(opts.Logger, fonts.SystemSource(), fonts.EmbeddedSource{})
	}
	if opts.OutputDir == "" {
		opts.OutputDir = DefaultOutputDir
	}
	if len(opts.Presets) == 0 {
		opts.Presets = DefaultPresets
	}
	if len(opts.Modes) == 0 {
		opts.Modes = crop.DefaultModes
	}
	if opts.Quality <= 0 {
		opts.Quality = 95
	}
	if opts.now == nil {
		opts.now = time.Now
	}
	return &Pipeline{opts: opts, logger: opts.Logger}
}

// Request is a template-mode run.
type Request struct {
	Template string
	Variant  string
	Title    string
	Subtitle string

	Presets []string // crop preset names or "WxH"; empty uses Options.Presets
	Modes   []string // crop modes or "all"; empty uses Options.Modes

	Author string // share card author line
	QRURL  string // share card QR code target
}

// PromptRequest is a prompt-mode run: the canvas is synthesized directly from
// Prompt and no template elements are drawn.
type PromptRequest struct {
	Prompt  string
	Style   string // fallback style when synthesis fails; empty makes failure fatal
	Size    string // "WxH", default 3072x1306
	Quality string // synthesis quality, default hd

	Title    string // used by the share card
	Subtitle string
	Presets  []string
	Modes    []string
	Author   string
	QRURL    string
}

// run is the state of one invocation.
type run struct {
	p        *Pipeline
	manifest *Manifest
	stage    Stage
	started  time.Time

	canvas   *image.RGBA
	targets  []crop.Preset
	modes    []crop.Mode
	variants []variant
	share    image.Image
	preview  image.Image
}

// Run renders req and writes its artifacts. It returns NOT_FOUND for an
// unknown template, variant, preset or mode before any image work, and FATAL
// when no background could be produced.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Manifest, error) {
	r, err := p.begin(req.Presets, req.Modes)
	if err != nil {
		return nil, err
	}
	if err := r.compose(ctx, req); err != nil {
		return nil, err
	}
	return r.finish(ctx, req.Title, req.Author, req.QRURL)
}

// Render composes the template canvas in memory, stopping after the elements
// are drawn. Nothing is cropped or written. The warnings are the ones Run
// would have recorded up to that point.
func (p *Pipeline) Render(ctx context.Context, req Request) (*image.RGBA, []Warning, error) {
	r, err := p.begin(nil, nil)
	if err != nil {
		return nil, nil, err
	}
	if err := r.compose(ctx, req); err != nil {
		return nil, nil, err
	}
	return r.canvas, r.manifest.Warnings, nil
}

// compose runs the template stages: resolve, background, overlay, elements.
func (r *run) compose(ctx context.Context, req Request) error {
	p := r.p
	if p.opts.Templates == nil {
		return errors.New(errors.ErrCodeInvalidInput, "pipeline has no template store")
	}
	tpl, err := p.opts.Templates.Resolve(req.Template, req.Variant)
	if err != nil {
		return err
	}
	m := r.manifest
	m.Mode = "template"
	m.TemplateID, m.Variant = tpl.ID, tpl.Variant
	m.Title, m.Subtitle = req.Title, req.Subtitle
	m.Canvas = Size{tpl.Width, tpl.Height}
	for _, w := range tpl.Warnings {
		r.warn(errors.ErrCodeRenderFallback, "template", w)
	}
	r.done(StageInit)
	p.logger.Info("cover run started", "run", m.RunID, "template", tpl.ID, "variant", tpl.Variant)

	if err := r.background(ctx, tpl.Background, tpl.Width, tpl.Height); err != nil {
		return err
	}

	overlay.Apply(r.canvas, tpl.Overlay)
	r.done(StageOverlayApplied)

	r.elements(tpl, template.Vars{Title: req.Title, Subtitle: req.Subtitle})
	r.done(StageElementsRendered)
	return nil
}

// RunPrompt renders a cover whose canvas comes straight from the synthesizer.
func (p *Pipeline) RunPrompt(ctx context.Context, req PromptRequest) (*Manifest, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "prompt is required")
	}
	style := background.Style(req.Style)
	if style != "" && !style.Valid() {
		return nil, errors.New(errors.ErrCodeInvalidInput, "invalid style %q", req.Style)
	}
	size := req.Size
	if size == "" {
		size = DefaultPromptSize
	}
	w, h, ok := paint.ParseSize(size)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidInput, "invalid size %q (want WxH, at most %d per side)", req.Size, paint.MaxDimension)
	}

	r, err := p.begin(req.Presets, req.Modes)
	if err != nil {
		return nil, err
	}
	m := r.manifest
	m.Mode = "prompt"
	m.Prompt = req.Prompt
	m.Title, m.Subtitle = req.Title, req.Subtitle
	m.Canvas = Size{w, h}
	r.done(StageInit)
	p.logger.Info("prompt run started", "run", m.RunID, "size", size)

	quality := req.Quality
	if quality == "" {
		quality = template.DefaultQuality
	}
	spec := background.Generate{Style: style, Prompt: req.Prompt, Quality: quality}
	if err := r.background(ctx, spec, w, h); err != nil {
		return nil, err
	}
	r.done(StageOverlayApplied)
	r.done(StageElementsRendered)

	return r.finish(ctx, req.Title, req.Author, req.QRURL)
}

// begin validates crop targets and opens a run.
func (p *Pipeline) begin(presets, modes []string) (*run, error) {
	targets, err := p.targets(presets)
	if err != nil {
		return nil, err
	}
	ms, err := p.modes(modes)
	if err != nil {
		return nil, err
	}

	now := p.opts.now()
	id := fmt.Sprintf("cover_%s_%s", now.Format("20060102_150405"), uuid.NewString()[:8])
	return &run{
		p:       p,
		started: time.Now(),
		targets: targets,
		modes:   ms,
		manifest: &Manifest{
			RunID:     id,
			Dir:       filepath.Join(p.opts.OutputDir, id),
			Timestamp: now,
			Variants:  map[string]map[string]string{},
			Warnings:  []Warning{},
		},
	}, nil
}

func (p *Pipeline) targets(names []string) ([]crop.Preset, error) {
	if len(names) == 0 {
		names = p.opts.Presets
	}
	out := make([]crop.Preset, 0, len(names))
	seen := map[string]bool{}
	for _, n := range names {
		t, err := crop.ParseTarget(n)
		if err != nil {
			return nil, err
		}
		if !seen[t.Name] {
			seen[t.Name] = true
			out = append(out, t)
		}
	}
	return out, nil
}

func (p *Pipeline) modes(names []string) ([]crop.Mode, error) {
	if len(names) == 0 {
		return p.opts.Modes, nil
	}
	var out []crop.Mode
	seen := map[crop.Mode]bool{}
	add := func(m crop.Mode) {
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	for _, n := range names {
		if n == "all" {
			for _, m := range crop.DefaultModes {
				add(m)
			}
			continue
		}
		m, err := crop.ParseMode(n)
		if err != nil {
			return nil, err
		}
		add(m)
	}
	return out, nil
}

// done records the time spent since the previous stage.
func (r *run) done(s Stage) {
	now := time.Now()
	d := now.Sub(r.started)
	r.started = now
	r.stage = s
	r.manifest.Stages = append(r.manifest.Stages, StageTiming{Name: s, DurationMS: d.Milliseconds()})
	r.p.logger.Debug("stage complete", "run", r.manifest.RunID, "stage", s, "duration", d.Round(time.Millisecond))
}

// warn records a warning against the stage in progress.
func (r *run) warn(code errors.Code, subject, msg string) {
	stage := nextStage(r.stage)
	r.manifest.Warnings = append(r.manifest.Warnings, Warning{Code: code, Stage: stage, Subject: subject, Message: msg})
	r.p.logger.Warn(msg, "run", r.manifest.RunID, "stage", stage, "subject", subject)
}

var stageOrder = []Stage{
	StageInit, StageBackgroundReady, StageOverlayApplied, StageElementsRendered,
	StageCropVariantsGenerated, StagePreviewAssembled, StagePersisted,
}

func nextStage(s Stage) Stage {
	if s == "" {
		return StageInit
	}
	for i, v := range stageOrder[:len(stageOrder)-1] {
		if v == s {
			return stageOrder[i+1]
		}
	}
	return StagePersisted
}

func (r *run) background(ctx context.Context, spec background.Spec, w, h int) error {
	canvas, warnings, err := r.p.opts.Composer.Compose(ctx, spec, w, h)
	if err != nil {
		r.p.logger.Error("no background", "run", r.manifest.RunID, "err", err)
		return err
	}
	for _, msg := range warnings {
		r.warn(errors.ErrCodeRenderFallback, "background", msg)
	}
	r.canvas = canvas
	r.done(StageBackgroundReady)
	return nil
}

// finish runs the shared tail: variants, share card, preview, persistence.
func (r *run) finish(ctx context.Context, title, author, qrURL string) (*Manifest, error) {
	r.cropVariants(ctx)
	r.done(StageCropVariantsGenerated)

	if r.p.opts.ShareCard {
		card, err := ShareCard(r.canvas, ShareCardOptions{Title: title, Author: author, QRURL: qrURL, Fonts: r.p.opts.Fonts})
		if err != nil {
			r.warn(errors.ErrCodePartialFailure, "share_card", fmt.Sprintf("share card failed: %v", err))
		} else {
			r.share = card
		}
	}
	if r.p.opts.Preview {
		if cells := r.previewCells(); len(cells) > 0 {
			r.preview = PreviewGrid(cells, r.p.opts.Fonts)
		}
	}
	r.done(StagePreviewAssembled)

	if err := r.persist(); err != nil {
		return nil, err
	}
	m := r.manifest
	r.p.logger.Info("cover run finished", "run", m.RunID, "dir", m.Dir,
		"variants", m.VariantCount(), "warnings", len(m.Warnings))
	return m, nil
}
