// loader.go — Parse template documents and load them from directories or
// the embedded built-in set.
package template

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// Source labels for Info.Source.
const (
	SourceBuiltin = "builtin"
)

// Loaded is a document that passed validation.
type Loaded struct {
	Doc      *Doc
	Path     string
	Source   string
	Warnings []string
}

// Parse decodes one YAML document. Unknown keys are rejected so typos are
// reported instead of silently ignored.
func Parse(data []byte) (*Doc, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}
	if f.Template.ID == "" && f.Template.Name == "" && f.Template.Background == nil && f.Template.Elements == nil {
		return nil, fmt.Errorf("parse template: missing top-level template key")
	}
	return &f.Template, nil
}

// Marshal encodes doc under the top-level template key.
func Marshal(doc *Doc) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(File{Template: *doc}); err != nil {
		return nil, fmt.Errorf("encode template %s: %w", doc.ID, err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// LoadFS loads every .yaml and .yml file at the root of fsys. Files that
// cannot be read, parsed or validated are skipped; the reasons are returned
// as skipped messages. Results are ordered by file name.
func LoadFS(fsys fs.FS, source string) (loaded []Loaded, skipped []string) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, []string{fmt.Sprintf("%s: %v", source, err)}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, e := range entries {
		if e.IsDir() || !isTemplateFile(e.Name()) {
			continue
		}
		l, err := loadFile(fsys, e.Name(), source)
		if err != nil {
			skipped = append(skipped, err.Error())
			continue
		}
		loaded = append(loaded, l)
	}
	return loaded, skipped
}

// LoadDir is LoadFS over a directory on disk.
func LoadDir(dir string) ([]Loaded, []string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("templates dir: %w", err)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("templates dir %s: not a directory", dir)
	}
	loaded, skipped := LoadFS(os.DirFS(dir), dir)
	for i := range loaded {
		loaded[i].Path = filepath.Join(dir, loaded[i].Path)
	}
	return loaded, skipped, nil
}

// Builtin loads the templates compiled into the binary.
func Builtin() ([]Loaded, []string) {
	sub, err := fs.Sub(builtinFS, "builtin")
	if err != nil {
		return nil, []string{err.Error()}
	}
	return LoadFS(sub, SourceBuiltin)
}

func loadFile(fsys fs.FS, name, source string) (Loaded, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return Loaded{}, fmt.Errorf("%s/%s: %w", source, name, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return Loaded{}, fmt.Errorf("%s/%s: %w", source, name, err)
	}
	errs, warnings := Validate(doc)
	if len(errs) > 0 {
		return Loaded{}, fmt.Errorf("%s/%s: invalid template: %s", source, name, strings.Join(errs, "; "))
	}
	return Loaded{Doc: doc, Path: name, Source: source, Warnings: warnings}, nil
}

func isTemplateFile(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	ext := strings.ToLower(path.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}
