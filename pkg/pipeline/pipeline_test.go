package pipeline

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"

	"github.com/xob0t/covercraft/pkg/background"
	"github.com/xob0t/covercraft/pkg/crop"
	"github.com/xob0t/covercraft/pkg/errors"
	"github.com/xob0t/covercraft/pkg/fonts"
	"github.com/xob0t/covercraft/pkg/paint"
	"github.com/xob0t/covercraft/pkg/synth"
	"github.com/xob0t/covercraft/pkg/template"
)

const smallDoc = `
template:
  name: Small
  id: small
  description: small generated cover
  category: tech
  version: 1.0.0
  background:
    type: ai_generate
    style: warm
    size: 600x300
  overlay:
    enabled: true
    type: solid
    color: rgba(0,0,0,0.5)
    position: bottom
    height: 30%
  elements:
    - id: title
      type: text
      content: "{{title}}"
      position: {type: center}
      font: {size: 40, color: "#FFFFFF"}
    - id: rule
      type: decoration
      position: {type: absolute, x: 50%, y: 90%}
      style: {type: line, width: 200, height: 4, color: "#FF0000"}
    - id: subtitle
      type: optional
      required: false
      content: "{{subtitle}}"
      position: {type: absolute, x: 50%, y: 75%, anchor: center}
  variants:
    - name: solid
      background:
        type: solid
        color: "#123456"
`

type harness struct {
	pipeline *Pipeline
	logs     *bytes.Buffer
	out      string
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	logs := &bytes.Buffer{}
	logger := log.NewWithOptions(logs, log.Options{Level: log.DebugLevel})

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "small.yaml"), []byte(smallDoc), 0o644); err != nil {
		t.Fatal(err)
	}
	store := template.NewStore(dir, logger)
	if err := store.Load(); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(t.TempDir(), "output")
	opts.Templates = store
	opts.Logger = logger
	opts.OutputDir = out
	if opts.Fonts == nil {
		opts.Fonts = fonts.NewResolver(logger)
	}
	return &harness{pipeline: New(opts), logs: logs, out: out}
}

func decode(t *testing.T, path string) image.Image {
	t.Helper()
	img, err := imaging.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	return img
}

func hasWarning(m *Manifest, code errors.Code, stage Stage, subject string) bool {
	for _, w := range m.Warnings {
		if w.Code == code && w.Stage == stage && w.Subject == subject {
			return true
		}
	}
	return false
}

func TestCenterTitleScenario(t *testing.T) {
	h := newHarness(t, Options{})
	m, err := h.pipeline.Run(context.Background(), Request{
		Template: "center_title",
		Title:    "智谱上市579亿",
		Presets:  []string{"wechat-cover"},
		Modes:    []string{"center"},
	})
	if err != nil {
		t.Fatal(err)
	}

	if raw := decode(t, m.Files.Raw); raw.Bounds().Dx() != 3072 || raw.Bounds().Dy() != 1306 {
		t.Errorf("raw size = %v", raw.Bounds())
	}
	path := m.Variants["wechat-cover"]["center"]
	if path == "" {
		t.Fatalf("no wechat-cover variant: %+v", m.Variants)
	}
	if v := decode(t, path); v.Bounds().Dx() != 900 || v.Bounds().Dy() != 383 {
		t.Errorf("wechat-cover size = %v", v.Bounds())
	}

	if !strings.Contains(h.logs.String(), "optional element skipped") || !strings.Contains(h.logs.String(), "id=subtitle") {
		t.Error("subtitle was not skipped")
	}
	if !hasWarning(m, errors.ErrCodeRenderFallback, StageBackgroundReady, "background") {
		t.Errorf("missing background fallback warning: %+v", m.Warnings)
	}
	if m.TemplateID != "center_title" || m.Title != "智谱上市579亿" || m.Canvas != (Size{3072, 1306}) {
		t.Errorf("manifest header = %+v", m)
	}

	var stages []Stage
	for _, s := range m.Stages {
		stages = append(stages, s.Name)
	}
	if !reflect.DeepEqual(stages, stageOrder) {
		t.Errorf("stages = %v", stages)
	}

	loaded, err := LoadManifest(m.Dir)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.RunID != m.RunID || loaded.Variants["wechat-cover"]["center"] != path {
		t.Errorf("saved manifest = %+v", loaded)
	}
	if !strings.HasPrefix(filepath.Base(m.Dir), "cover_") {
		t.Errorf("run dir = %s", m.Dir)
	}
}

func TestElementsAreDrawn(t *testing.T) {
	h := newHarness(t, Options{})
	m, err := h.pipeline.Run(context.Background(), Request{
		Template: "small", Variant: "solid", Title: "HELLO", Presets: []string{"600x300"}, Modes: []string{"center"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Warnings) == 0 || hasWarning(m, errors.ErrCodeRenderFallback, StageBackgroundReady, "background") {
		t.Errorf("solid variant should only warn about fonts: %+v", m.Warnings)
	}

	img := imaging.Clone(decode(t, m.Files.Raw))
	// Above the overlay the solid background is untouched.
	if c := img.NRGBAAt(10, 10); !near(c, color.NRGBA{0x12, 0x34, 0x56, 255}) {
		t.Errorf("background = %v", c)
	}
	// The bottom overlay halves the background.
	if c := img.NRGBAAt(10, 290); !near(c, color.NRGBA{0x09, 0x1a, 0x2b, 255}) {
		t.Errorf("overlay = %v", c)
	}
	// The red rule sits at 90% height.
	if c := img.NRGBAAt(300, 270); c.R < 200 || c.G > 60 {
		t.Errorf("rule = %v", c)
	}
	var white int
	for y := 120; y < 180; y++ {
		for x := 200; x < 400; x++ {
			if c := img.NRGBAAt(x, y); c.R > 200 && c.G > 200 && c.B > 200 {
				white++
			}
		}
	}
	if white == 0 {
		t.Error("title not drawn at the centre")
	}
}

func TestRenderStaysInMemory(t *testing.T) {
	h := newHarness(t, Options{})
	img, warnings, err := h.pipeline.Render(context.Background(), Request{Template: "small", Variant: "solid", Title: "HELLO"})
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Size() != image.Pt(600, 300) {
		t.Errorf("canvas = %v", img.Bounds())
	}
	if c := img.RGBAAt(10, 10); c != (color.RGBA{0x12, 0x34, 0x56, 255}) {
		t.Errorf("background = %v", c)
	}
	for _, w := range warnings {
		if w.Subject == "background" {
			t.Errorf("unexpected background warning: %+v", w)
		}
	}
	if _, err := os.Stat(h.out); !os.IsNotExist(err) {
		t.Error("Render wrote to the output directory")
	}

	if _, _, err := h.pipeline.Render(context.Background(), Request{Template: "missing"}); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("unknown template: %v", err)
	}
}

func near(a, b color.NRGBA) bool {
	d := func(x, y uint8) int {
		if x > y {
			return int(x - y)
		}
		return int(y - x)
	}
	return d(a.R, b.R) <= 6 && d(a.G, b.G) <= 6 && d(a.B, b.B) <= 6
}

func TestUnknownNamesFailBeforeIO(t *testing.T) {
	tests := []struct {
		name string
		req  Request
	}{
		{"preset", Request{Template: "small", Presets: []string{"unknown-preset"}}},
		{"mode", Request{Template: "small", Modes: []string{"diagonal"}}},
		{"template", Request{Template: "missing"}},
		{"variant", Request{Template: "small", Variant: "missing"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, Options{})
			_, err := h.pipeline.Run(context.Background(), tt.req)
			if !errors.Is(err, errors.ErrCodeNotFound) {
				t.Fatalf("got %v, want NOT_FOUND", err)
			}
			if _, err := os.Stat(h.out); !os.IsNotExist(err) {
				t.Error("output directory created for a rejected request")
			}
		})
	}
}

func TestSynthesisTimeoutFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	client := synth.NewClient(synth.Config{BaseURL: srv.URL, APIKey: "k", Timeout: 50 * time.Millisecond})
	h := newHarness(t, Options{Composer: background.NewComposer(client, log.New(&bytes.Buffer{}))})

	m, err := h.pipeline.Run(context.Background(), Request{Template: "small", Title: "t", Modes: []string{"smart"}})
	if err != nil {
		t.Fatalf("Run should recover, got %v", err)
	}
	if !hasWarning(m, errors.ErrCodeRenderFallback, StageBackgroundReady, "background") {
		t.Errorf("warnings = %+v", m.Warnings)
	}
	raw := imaging.Clone(decode(t, m.Files.Raw))
	want := background.Paint(background.Fallback(background.StyleWarm), 600, 300)
	if c, w := raw.NRGBAAt(5, 5), want.RGBAAt(5, 5); !near(c, color.NRGBA{w.R, w.G, w.B, 255}) {
		t.Errorf("raw corner = %v, want warm fallback %v", c, w)
	}
}

func TestSharedArtifacts(t *testing.T) {
	h := newHarness(t, Options{ShareCard: true, Preview: true})
	m, err := h.pipeline.Run(context.Background(), Request{
		Template: "small", Variant: "solid", Title: "Share me", Author: "covercraft",
		QRURL: "https://example.com/post", Presets: []string{"wechat-cover", "wechat-share"}, Modes: []string{"all"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if m.VariantCount() != 6 {
		t.Fatalf("variants = %d, want 6", m.VariantCount())
	}
	card := decode(t, m.Files.ShareCard)
	if card.Bounds().Dx() != CardSize || card.Bounds().Dy() != CardSize {
		t.Errorf("share card = %v", card.Bounds())
	}
	preview := decode(t, m.Files.Preview)
	// 6 cells in 2 rows of 3.
	wantW := 3*previewCell + 4*previewPadding
	wantH := 2*(previewCell+previewPadding+previewLabel) + previewPadding + previewFooter
	if preview.Bounds().Dx() != wantW || preview.Bounds().Dy() != wantH {
		t.Errorf("preview = %v, want %dx%d", preview.Bounds(), wantW, wantH)
	}
	if got := len(m.Paths()); got != 9 {
		t.Errorf("Paths() = %d entries, want 9", got)
	}
	if m.Primary() != m.Variants["wechat-cover"]["center"] {
		t.Errorf("primary = %s", m.Primary())
	}
}

func TestParallelVariantsMatchSequential(t *testing.T) {
	req := Request{
		Template: "small", Variant: "solid", Title: "x",
		Presets: []string{"wechat-cover", "article-1-1", "twitter"}, Modes: []string{"center", "golden_ratio", "smart", "top_heavy"},
	}
	var orders [2][]VariantRef
	for i, workers := range []int{1, 4} {
		h := newHarness(t, Options{Workers: workers})
		m, err := h.pipeline.Run(context.Background(), req)
		if err != nil {
			t.Fatal(err)
		}
		for _, v := range m.Order {
			orders[i] = append(orders[i], VariantRef{Preset: v.Preset, Mode: v.Mode, Path: filepath.Base(v.Path)})
		}
	}
	if len(orders[0]) != 12 || !reflect.DeepEqual(orders[0], orders[1]) {
		t.Errorf("sequential %v\nparallel %v", orders[0], orders[1])
	}
}

func TestCropVariantFailureIsPartial(t *testing.T) {
	h := newHarness(t, Options{})
	r, err := h.pipeline.begin([]string{"wechat-cover"}, []string{"center", "smart"})
	if err != nil {
		t.Fatal(err)
	}
	r.canvas = paint.NewCanvas(300, 200, color.White)
	r.stage = StageElementsRendered
	r.targets = append(r.targets, crop.Preset{Name: "broken", Width: 0, Height: 10})
	r.cropVariants(context.Background())

	var ok, failed int
	for _, v := range r.variants {
		if v.err != nil {
			failed++
		} else {
			ok++
		}
	}
	if ok != 2 || failed != 2 {
		t.Errorf("ok=%d failed=%d", ok, failed)
	}
	if !hasWarning(r.manifest, errors.ErrCodePartialFailure, StageCropVariantsGenerated, "broken/center") {
		t.Errorf("warnings = %+v", r.manifest.Warnings)
	}
}

func TestRunPrompt(t *testing.T) {
	synthesized := paint.NewCanvas(320, 160, color.NRGBA{0, 128, 0, 255})
	h := newHarness(t, Options{Composer: background.NewComposer(fixed{img: synthesized}, nil)})

	m, err := h.pipeline.RunPrompt(context.Background(), PromptRequest{
		Prompt: "green field", Size: "320x160", Presets: []string{"160x160"}, Modes: []string{"center"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if m.Mode != "prompt" || m.Prompt != "green field" || len(m.Warnings) != 0 {
		t.Errorf("manifest = %+v", m)
	}
	if c := imaging.Clone(decode(t, m.Files.Raw)).NRGBAAt(10, 10); c.G < 110 || c.R > 20 {
		t.Errorf("raw = %v", c)
	}

	failing := newHarness(t, Options{Composer: background.NewComposer(fixed{err: errors.New(errors.ErrCodeNetwork, "down")}, nil)})
	if _, err := failing.pipeline.RunPrompt(context.Background(), PromptRequest{Prompt: "p", Size: "100x100"}); !errors.Is(err, errors.ErrCodeFatal) {
		t.Errorf("styleless failure: got %v, want FATAL", err)
	}
	m, err = failing.pipeline.RunPrompt(context.Background(), PromptRequest{Prompt: "p", Style: "minimal", Size: "100x100"})
	if err != nil {
		t.Fatalf("styled failure should fall back: %v", err)
	}
	if !hasWarning(m, errors.ErrCodeRenderFallback, StageBackgroundReady, "background") {
		t.Errorf("warnings = %+v", m.Warnings)
	}

	if _, err := h.pipeline.RunPrompt(context.Background(), PromptRequest{}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("empty prompt: got %v", err)
	}
	if _, err := h.pipeline.RunPrompt(context.Background(), PromptRequest{Prompt: "p", Size: "60000x60000"}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("oversized canvas: got %v", err)
	}
}

type fixed struct {
	img image.Image
	err error
}

func (f fixed) Synthesize(ctx context.Context, req synth.Request) (image.Image, error) {
	return f.img, f.err
}
