// manifest.go — The result.json record of a run, and persistence of every
// artifact it lists.
package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/xob0t/covercraft/pkg/errors"
	"github.com/xob0t/covercraft/pkg/generator"
)

// Artifact file names inside a run directory.
const (
	ManifestFile  = "result.json"
	RawFile       = "raw_image.jpg"
	ShareCardFile = "share_card.jpg"
	PreviewFile   = "preview_grid.jpg"
)

// VariantFile names the file for one crop variant.
func VariantFile(preset string, mode string) string {
	return fmt.Sprintf("cover_%s_%s.jpg", preset, mode)
}

// Manifest describes what a run produced. Paths are inside Dir.
type Manifest struct {
	RunID      string    `json:"run_id"`
	Dir        string    `json:"dir"`
	Timestamp  time.Time `json:"timestamp"`
	Mode       string    `json:"mode"` // template or prompt
	TemplateID string    `json:"template_id,omitempty"`
	Variant    string    `json:"variant,omitempty"`
	Prompt     string    `json:"prompt,omitempty"`
	Title      string    `json:"title"`
	Subtitle   string    `json:"subtitle"`
	Canvas     Size      `json:"canvas"`

	Files    Files                        `json:"files"`
	Variants map[string]map[string]string `json:"variants"` // preset → mode → path
	Order    []VariantRef                 `json:"order"`

	Warnings  []Warning     `json:"warnings"`
	Stages    []StageTiming `json:"stages"`
	Published []string      `json:"published,omitempty"`
}

// Size is a canvas size.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Files are the non-variant artifacts.
type Files struct {
	Raw       string `json:"raw"`
	ShareCard string `json:"share_card,omitempty"`
	Preview   string `json:"preview,omitempty"`
}

// VariantRef is one produced crop variant, in generation order.
type VariantRef struct {
	Preset string `json:"preset"`
	Mode   string `json:"mode"`
	Path   string `json:"path"`
}

// Warning is a recovered problem.
type Warning struct {
	Code    errors.Code `json:"code"`
	Stage   Stage       `json:"stage"`
	Subject string      `json:"subject"`
	Message string      `json:"message"`
}

// StageTiming is the time a stage took.
type StageTiming struct {
	Name       Stage `json:"name"`
	DurationMS int64 `json:"duration_ms"`
}

// VariantCount returns the number of variants produced.
func (m *Manifest) VariantCount() int { return len(m.Order) }

// Primary returns the first produced variant path, or the raw image.
func (m *Manifest) Primary() string {
	if len(m.Order) > 0 {
		return m.Order[0].Path
	}
	return m.Files.Raw
}

// Paths returns every artifact path: raw, variants in order, share card, preview.
func (m *Manifest) Paths() []string {
	out := []string{m.Files.Raw}
	for _, v := range m.Order {
		out = append(out, v.Path)
	}
	for _, p := range []string{m.Files.ShareCard, m.Files.Preview} {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Presets returns the presets that produced at least one variant, sorted.
func (m *Manifest) Presets() []string {
	out := make([]string, 0, len(m.Variants))
	for p := range m.Variants {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Save writes the manifest to Dir/result.json.
func (m *Manifest) Save() error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	path := filepath.Join(m.Dir, ManifestFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// LoadManifest reads a run's result.json.
func LoadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeNotFound, err, "no manifest in %s", dir)
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	return &m, nil
}

// persist writes every artifact and the manifest. Only a failure to create
// the run directory or write the raw image is an error; failed variants,
// share card or preview become warnings and are left out of the manifest.
func (r *run) persist() error {
	m := r.manifest
	q := generator.Options{Quality: r.p.opts.Quality}

	if err := os.MkdirAll(m.Dir, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create output dir")
	}

	raw := filepath.Join(m.Dir, RawFile)
	if err := generator.Write(raw, r.canvas, q); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write raw image")
	}
	m.Files.Raw = raw

	for _, v := range r.variants {
		if v.err != nil {
			continue
		}
		path := filepath.Join(m.Dir, VariantFile(v.preset.Name, string(v.mode)))
		if err := generator.Write(path, v.img, q); err != nil {
			r.warn(errors.ErrCodePartialFailure, v.name(), fmt.Sprintf("write variant %s: %v", v.name(), err))
			continue
		}
		if m.Variants[v.preset.Name] == nil {
			m.Variants[v.preset.Name] = map[string]string{}
		}
		m.Variants[v.preset.Name][string(v.mode)] = path
		m.Order = append(m.Order, VariantRef{Preset: v.preset.Name, Mode: string(v.mode), Path: path})
	}

	if r.share != nil {
		path := filepath.Join(m.Dir, ShareCardFile)
		if err := generator.Write(path, r.share, q); err != nil {
			r.warn(errors.ErrCodePartialFailure, "share_card", fmt.Sprintf("write share card: %v", err))
		} else {
			m.Files.ShareCard = path
		}
	}
	if r.preview != nil {
		path := filepath.Join(m.Dir, PreviewFile)
		if err := generator.Write(path, r.preview, generator.Options{Quality: DefaultPreviewQuality}); err != nil {
			r.warn(errors.ErrCodePartialFailure, "preview", fmt.Sprintf("write preview: %v", err))
		} else {
			m.Files.Preview = path
		}
	}

	r.done(StagePersisted)
	if err := m.Save(); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "persist run")
	}
	return nil
}
