// Package fonts resolves font family requests to parsed OpenType fonts.
//
// resolver.go — Memoized family/size/weight resolution with an embedded fallback.
package fonts

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
)

// aliases maps family names used in templates to likely file stems.
var aliases = map[string][]string{
	"simhei":          {"simhei"},
	"microsoft yahei": {"msyh", "microsoft yahei"},
	"simsun":          {"simsun"},
	"pingfang sc":     {"pingfang"},
	"noto sans sc":    {"notosanssc-regular", "notosanscjksc-regular", "notosanscjk-regular"},
	"noto serif sc":   {"notoserifsc-regular", "notoserifcjksc-regular", "notoserifcjk-regular"},
	"consolas":        {"consola", "consolas"},
	"arial":           {"arial"},
	"sans-serif":      {"arial", "dejavusans", "liberationsans-regular", "notosans-regular"},
	"serif":           {"times", "dejavuserif", "liberationserif-regular", "notoserif-regular"},
	"monospace":       {"consola", "dejavusansmono", "liberationmono-regular"},
}

// Font is a resolved font at a fixed size. It is immutable and safe to share.
type Font struct {
	Name     string  // family that matched, or "fallback"
	Path     string  // file the font was read from
	Size     float64 // point size at 72 DPI, i.e. pixels
	Weight   string
	Fallback bool // true when no requested family could be loaded

	otf *opentype.Font
}

// Face returns a new font.Face for this font. Faces are not safe for concurrent
// use, so each drawing operation should ask for its own.
func (f *Font) Face() font.Face {
	face, err := opentype.NewFace(f.otf, &opentype.FaceOptions{
		Size:    f.Size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return basicfont.Face7x13
	}
	return face
}

// Resolver turns family lists into fonts. Results are memoized per
// (families, size, weight) for the lifetime of the resolver.
type Resolver struct {
	sources []Source
	logger  *log.Logger

	mu    sync.Mutex
	cache map[string]*Font
}

// NewResolver creates a resolver that searches sources in order. The embedded
// Go fonts are always available as the final fallback.
func NewResolver(logger *log.Logger, sources ...Source) *Resolver {
	if logger == nil {
		logger = log.Default()
	}
	return &Resolver{
		sources: sources,
		logger:  logger,
		cache:   make(map[string]*Font),
	}
}

// Resolve returns the first loadable family in families. Each family is tried
// against the alias table, then as an exact file stem, then as a substring of
// any known file name. If nothing loads, the embedded Go font is returned with
// Fallback set and a warning logged. Resolve never fails.
func (r *Resolver) Resolve(families []string, size float64, weight string) *Font {
	if weight == "" {
		weight = "normal"
	}
	key := strings.Join(families, ",") + "_" + strconv.FormatFloat(size, 'f', -1, 64) + "_" + weight

	r.mu.Lock()
	defer r.mu.Unlock()

	if f, ok := r.cache[key]; ok {
		return f
	}

	f := r.find(families, size, weight)
	if f == nil {
		f = r.fallback(size, weight)
		r.logger.Warn("font fallback", "families", families, "size", size, "weight", weight)
	}
	r.cache[key] = f
	return f
}

func (r *Resolver) find(families []string, size float64, weight string) *Font {
	for _, family := range families {
		for _, stem := range candidates(family, weight) {
			for _, src := range r.sources {
				if path, ok := src.Lookup(stem); ok {
					if f := r.load(src, path, family, size, weight); f != nil {
						return f
					}
				}
			}
		}
		for _, src := range r.sources {
			m, ok := src.(Matcher)
			if !ok {
				continue
			}
			if path, ok := m.Match(family); ok {
				if f := r.load(src, path, family, size, weight); f != nil {
					return f
				}
			}
		}
	}
	return nil
}

// candidates lists file stems to try for a family, bold variants first.
func candidates(family, weight string) []string {
	base := aliases[strings.ToLower(family)]
	base = append(append([]string(nil), base...), family)

	if weight != "bold" {
		return base
	}
	var out []string
	for _, b := range base {
		out = append(out, b+"bd", b+"-bold", b+" bold")
	}
	return append(out, base...)
}

func (r *Resolver) load(src Source, path, family string, size float64, weight string) *Font {
	data, err := src.ReadFile(path)
	if err != nil {
		r.logger.Debug("font read failed", "path", path, "err", err)
		return nil
	}
	otf, err := parse(data, path)
	if err != nil {
		r.logger.Debug("font parse failed", "path", path, "err", err)
		return nil
	}
	return &Font{Name: family, Path: path, Size: size, Weight: weight, otf: otf}
}

func (r *Resolver) fallback(size float64, weight string) *Font {
	f := Builtin(size, weight)
	f.Name = "fallback"
	f.Fallback = true
	return f
}

// Builtin returns the embedded Go font at size, bold when weight is "bold".
func Builtin(size float64, weight string) *Font {
	name := "goregular"
	if weight == "bold" {
		name = "gobold"
	}
	return &Font{Name: name, Path: embeddedPrefix + name, Size: size, Weight: weight, otf: builtinFonts()[name]}
}

var builtinFonts = sync.OnceValue(func() map[string]*opentype.Font {
	out := make(map[string]*opentype.Font, len(embedded))
	for name, data := range embedded {
		otf, err := opentype.Parse(data)
		if err != nil {
			panic(fmt.Sprintf("fonts: embedded %s: %v", name, err))
		}
		out[name] = otf
	}
	return out
})

// parse reads a single font or the first face of a collection.
func parse(data []byte, path string) (*opentype.Font, error) {
	if strings.EqualFold(filepath.Ext(path), ".ttc") {
		coll, err := opentype.ParseCollection(data)
		if err != nil {
			return nil, err
		}
		return coll.Font(0)
	}
	return opentype.Parse(data)
}
