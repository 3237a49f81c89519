// substitute.go — {{title}} and {{subtitle}} placeholder replacement.
package template

import (
	"regexp"
	"strings"
)

// Vars are the values available to element content.
type Vars struct {
	Title    string
	Subtitle string
}

var placeholderPattern = regexp.MustCompile(`\{\{[^{}]*\}\}`)

// Substitute replaces {{title}} and {{subtitle}}. Any other {{...}} token is
// left as written.
func Substitute(content string, v Vars) string {
	return strings.NewReplacer("{{title}}", v.Title, "{{subtitle}}", v.Subtitle).Replace(content)
}

// UnknownPlaceholders returns the {{...}} tokens in content that Substitute
// does not recognise, in order of appearance.
func UnknownPlaceholders(content string) []string {
	var out []string
	for _, m := range placeholderPattern.FindAllString(content, -1) {
		if m != "{{title}}" && m != "{{subtitle}}" {
			out = append(out, m)
		}
	}
	return out
}
