// project.go — Copy covers into an article project's assets/images folder.
package publish

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/xob0t/covercraft/pkg/errors"
	"github.com/xob0t/covercraft/pkg/pipeline"
)

// MaxProjectDepth bounds the FindProject walk.
const MaxProjectDepth = 5

// ProjectPublisher copies the primary cover, share card and preview into
// <Root>/assets/images/<title>_{cover,share,preview}.jpg.
type ProjectPublisher struct {
	Root string
}

// FindProject walks down from start, at most MaxProjectDepth levels, and
// returns the first directory that contains assets/images. Directories are
// visited in lexical order.
func FindProject(start string) (string, error) {
	start, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	found := ""
	err = filepath.WalkDir(start, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == start {
				return err
			}
			return fs.SkipDir
		}
		if !d.IsDir() {
			return nil
		}
		rel, _ := filepath.Rel(start, path)
		if depth(rel) > MaxProjectDepth {
			return fs.SkipDir
		}
		if info, err := os.Stat(filepath.Join(path, "assets", "images")); err == nil && info.IsDir() {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("find project: %w", err)
	}
	if found == "" {
		return "", errors.New(errors.ErrCodeNotFound, "no directory with assets/images under %s", start)
	}
	return found, nil
}

func depth(rel string) int {
	if rel == "." || rel == "" {
		return 0
	}
	return len(strings.Split(rel, string(filepath.Separator)))
}

// Publish implements Publisher.
func (p ProjectPublisher) Publish(ctx context.Context, m *pipeline.Manifest) ([]string, error) {
	dir := filepath.Join(p.Root, "assets", "images")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}
	stem := Sanitize(m.Title)

	copies := []struct{ src, suffix string }{
		{m.Primary(), "cover"},
		{m.Files.ShareCard, "share"},
		{m.Files.Preview, "preview"},
	}
	var out []string
	for _, c := range copies {
		if c.src == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return out, err
		}
		dst := filepath.Join(dir, stem+"_"+c.suffix+".jpg")
		if err := copyFile(c.src, dst); err != nil {
			return out, err
		}
		out = append(out, dst)
	}
	return out, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("copy %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("copy to %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy to %s: %w", dst, err)
	}
	return out.Close()
}
