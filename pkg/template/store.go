// store.go — Template store: built-ins layered under a directory, resolution
// by id and variant.
package template

import (
	stderrors "errors"
	"io/fs"
	"sort"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/xob0t/covercraft/pkg/errors"
)

// Store holds the loaded template documents. It is safe for concurrent use;
// documents are never mutated after loading.
type Store struct {
	dir    string
	logger *log.Logger

	mu   sync.RWMutex
	docs map[string]Loaded
}

// NewStore returns an empty store. dir may be empty, in which case only the
// built-in templates are available.
func NewStore(dir string, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Default()
	}
	return &Store{dir: dir, logger: logger, docs: map[string]Loaded{}}
}

// Dir returns the templates directory, or "".
func (s *Store) Dir() string { return s.dir }

// Load (re)reads the built-in templates and the directory. Documents that
// fail to load are logged and skipped. A missing directory is logged and the
// built-ins are still served; other directory errors are returned.
func (s *Store) Load() error {
	docs := map[string]Loaded{}

	builtin, skipped := Builtin()
	s.add(docs, builtin, skipped)

	if s.dir != "" {
		loaded, skipped, err := LoadDir(s.dir)
		switch {
		case stderrors.Is(err, fs.ErrNotExist):
			s.logger.Warn("templates dir not found, using built-in templates only", "dir", s.dir)
		case err != nil:
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "load templates")
		default:
			s.add(docs, loaded, skipped)
		}
	}

	s.mu.Lock()
	s.docs = docs
	s.mu.Unlock()
	s.logger.Info("templates loaded", "count", len(docs), "dir", s.dir)
	return nil
}

func (s *Store) add(docs map[string]Loaded, loaded []Loaded, skipped []string) {
	for _, msg := range skipped {
		s.logger.Warn("template skipped", "reason", msg)
	}
	for _, l := range loaded {
		for _, w := range l.Warnings {
			s.logger.Warn("template warning", "id", l.Doc.ID, "warning", w)
		}
		if prev, ok := docs[l.Doc.ID]; ok {
			s.logger.Debug("template overridden", "id", l.Doc.ID, "was", prev.Path, "now", l.Path)
		}
		docs[l.Doc.ID] = l
	}
}

// Get returns the document for id.
func (s *Store) Get(id string) (Loaded, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.docs[id]
	return l, ok
}

// Resolve applies variant (optional) to template id and builds the result.
// An unknown id or variant is NOT_FOUND.
func (s *Store) Resolve(id, variant string) (*Template, error) {
	l, ok := s.Get(id)
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "template %q not found", id)
	}
	doc, err := ApplyVariant(l.Doc, variant)
	if err != nil {
		return nil, err
	}
	t, err := Build(doc)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "resolve template %q", id)
	}
	t.Variant = variant
	return t, nil
}

// List returns a summary of every template, ordered by id.
func (s *Store) List() []Info {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Info, 0, len(s.docs))
	for _, l := range s.docs {
		out = append(out, infoOf(l))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func infoOf(l Loaded) Info {
	d := l.Doc
	info := Info{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Category:    d.Category,
		Version:     d.Version,
		Source:      l.Source,
	}
	for _, v := range d.Variants {
		info.Variants = append(info.Variants, v.Name)
	}
	return info
}
