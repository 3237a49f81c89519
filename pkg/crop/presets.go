// presets.go — Named crop targets.
package crop

import (
	"sort"

	"github.com/xob0t/covercraft/pkg/errors"
	"github.com/xob0t/covercraft/pkg/paint"
)

// Preset is a named target size.
type Preset struct {
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// presets maps preset names to target sizes.
var presets = map[string]Preset{
	"wechat-cover":  {"wechat-cover", 900, 383},
	"wechat-share":  {"wechat-share", 900, 900},
	"wechat-banner": {"wechat-banner", 1080, 460},
	"article-16-9":  {"article-16-9", 1792, 1024},
	"article-1-1":   {"article-1-1", 1024, 1024},
	"article-4-3":   {"article-4-3", 1024, 768},
	"instagram":     {"instagram", 1080, 1080},
	"twitter":       {"twitter", 1200, 675},
	"linkedin":      {"linkedin", 1200, 627},
}

// LookupPreset returns the named preset or a NOT_FOUND error.
func LookupPreset(name string) (Preset, error) {
	p, ok := presets[name]
	if !ok {
		return Preset{}, errors.New(errors.ErrCodeNotFound, "unknown crop preset %q", name)
	}
	return p, nil
}

// ParseTarget accepts a preset name or a literal "WxH" size. A literal
// outside 1..paint.MaxDimension per side is INVALID_INPUT.
func ParseTarget(s string) (Preset, error) {
	if w, h, ok := paint.ParseSize(s); ok {
		return Preset{Name: s, Width: w, Height: h}, nil
	}
	if paint.LooksLikeSize(s) {
		return Preset{}, errors.New(errors.ErrCodeInvalidInput,
			"target size %q out of range (1-%d per side)", s, paint.MaxDimension)
	}
	return LookupPreset(s)
}

// Presets returns every preset sorted by name.
func Presets() []Preset {
	out := make([]Preset, 0, len(presets))
	for _, p := range presets {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
