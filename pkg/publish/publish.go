// Package publish delivers the artifacts of a finished run somewhere other
// than the run directory: a local article project or an S3 bucket.
package publish

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/xob0t/covercraft/pkg/pipeline"
)

// Publisher copies or uploads a run's artifacts and returns where they went.
type Publisher interface {
	Publish(ctx context.Context, m *pipeline.Manifest) ([]string, error)
}

// All runs every publisher in order, appending each destination to the
// manifest's Published list. A failing publisher does not stop the others;
// its error is returned in the joined message list.
func All(ctx context.Context, m *pipeline.Manifest, pubs ...Publisher) []string {
	var problems []string
	for _, p := range pubs {
		if p == nil {
			continue
		}
		dests, err := p.Publish(ctx, m)
		m.Published = append(m.Published, dests...)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%T: %v", p, err))
		}
	}
	return problems
}

const maxNameRunes = 100

// Sanitize turns a title into a file-name stem: path separators, shell
// metacharacters, CJK punctuation and whitespace become underscores, the
// result is cut to 100 characters and trimmed of underscores and spaces.
// An empty result is "cover".
func Sanitize(title string) string {
	var b strings.Builder
	n := 0
	for _, r := range title {
		if n == maxNameRunes {
			break
		}
		if strings.ContainsRune(`/:\?*"<>|，。！？、；：“”‘’'（）【】《》`, r) || unicode.IsSpace(r) {
			r = '_'
		}
		b.WriteRune(r)
		n++
	}
	clean := strings.Trim(b.String(), "_ ")
	if clean == "" {
		return "cover"
	}
	return clean
}
