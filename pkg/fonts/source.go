// source.go — Where font files come from: directory scans, the system font
// directories (via go-findfont) and the Go fonts compiled into the binary.
package fonts

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/flopp/go-findfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

// Source finds font files by name.
type Source interface {
	// Lookup returns the path of the font whose file stem equals name, ignoring case.
	Lookup(name string) (path string, ok bool)
	// ReadFile returns the raw bytes at a path previously returned by this source.
	ReadFile(path string) ([]byte, error)
}

// Matcher is implemented by sources that can search by substring.
type Matcher interface {
	Match(fragment string) (path string, ok bool)
}

// fontExts are the file types the resolver can parse.
var fontExts = map[string]bool{".ttf": true, ".otf": true, ".ttc": true}

// DirSource indexes font files found under a set of paths. The index is built
// lazily on first use and never refreshed.
type DirSource struct {
	list func() []string

	once  sync.Once
	stems map[string]string // lowercase stem → path
	paths []string          // sorted, for deterministic substring search
}

// NewDirSource indexes every font file below dirs. Missing dirs are ignored.
func NewDirSource(dirs ...string) *DirSource {
	return &DirSource{list: func() []string { return walkFonts(dirs) }}
}

// SystemSource indexes the platform font directories known to go-findfont.
func SystemSource() *DirSource {
	return &DirSource{list: findfont.List}
}

func (s *DirSource) index() {
	s.once.Do(func() {
		s.stems = make(map[string]string)
		for _, p := range s.list() {
			if !fontExts[strings.ToLower(filepath.Ext(p))] {
				continue
			}
			stem := strings.ToLower(strings.TrimSuffix(filepath.Base(p), filepath.Ext(p)))
			if _, dup := s.stems[stem]; !dup {
				s.stems[stem] = p
			}
			s.paths = append(s.paths, p)
		}
		sort.Strings(s.paths)
	})
}

// Lookup implements Source.
func (s *DirSource) Lookup(name string) (string, bool) {
	s.index()
	p, ok := s.stems[strings.ToLower(name)]
	return p, ok
}

// Match returns the first indexed file whose base name contains fragment.
func (s *DirSource) Match(fragment string) (string, bool) {
	s.index()
	fragment = strings.ToLower(fragment)
	if fragment == "" {
		return "", false
	}
	for _, p := range s.paths {
		if strings.Contains(strings.ToLower(filepath.Base(p)), fragment) {
			return p, true
		}
	}
	return "", false
}

// ReadFile implements Source.
func (s *DirSource) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Len reports how many font files were indexed.
func (s *DirSource) Len() int {
	s.index()
	return len(s.paths)
}

func walkFonts(dirs []string) []string {
	var out []string
	for _, dir := range dirs {
		_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if !d.IsDir() && fontExts[strings.ToLower(filepath.Ext(path))] {
				out = append(out, path)
			}
			return nil
		})
	}
	return out
}

// EmbeddedSource serves the Go font family compiled into the binary.
type EmbeddedSource struct{}

const embeddedPrefix = "embedded:"

var embedded = map[string][]byte{
	"goregular": goregular.TTF,
	"gobold":    gobold.TTF,
	"goitalic":  goitalic.TTF,
	"gomono":    gomono.TTF,
}

var embeddedAliases = map[string]string{
	"go":         "goregular",
	"go-regular": "goregular",
	"go-bold":    "gobold",
	"go-italic":  "goitalic",
	"go-mono":    "gomono",
}

// Lookup implements Source.
func (EmbeddedSource) Lookup(name string) (string, bool) {
	name = strings.ToLower(name)
	if alias, ok := embeddedAliases[name]; ok {
		name = alias
	}
	if _, ok := embedded[name]; ok {
		return embeddedPrefix + name, true
	}
	return "", false
}

// ReadFile implements Source.
func (EmbeddedSource) ReadFile(path string) ([]byte, error) {
	data, ok := embedded[strings.TrimPrefix(path, embeddedPrefix)]
	if !ok {
		return nil, fmt.Errorf("embedded font %q not found", path)
	}
	return data, nil
}
