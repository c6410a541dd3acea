// Package template provides the immutable catalog of artifact templates
// and a strict placeholder renderer. Placeholders use the <TOKEN> marker
// syntax; every template exposes its closed token set and rendering fails
// unless the supplied bindings cover that set exactly.
package template

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Errors reported by the catalog and renderer.
var (
	ErrUnknownKind    = errors.New("unknown artifact kind")
	ErrMissingBinding = errors.New("missing binding")
	ErrUnknownBinding = errors.New("unknown binding")
)

// tokenPattern matches a <TOKEN> placeholder. Tokens are upper snake case,
// which keeps generated Python generics (list[str]) and comparison
// operators out of the match.
var tokenPattern = regexp.MustCompile(`<([A-Z][A-Z0-9_]*)>`)

// Template is an immutable parametrized text with a closed token set.
type Template struct {
	kind   Kind
	text   string
	tokens map[string]bool
}

// parseTemplate scans the raw text for its placeholder tokens.
func parseTemplate(kind Kind, text string) *Template {
	tokens := make(map[string]bool)
	for _, m := range tokenPattern.FindAllStringSubmatch(text, -1) {
		tokens[m[1]] = true
	}
	return &Template{kind: kind, text: text, tokens: tokens}
}

// Kind returns the artifact kind this template renders.
func (t *Template) Kind() Kind { return t.kind }

// Placeholders returns the sorted token names the template requires.
func (t *Template) Placeholders() []string {
	names := make([]string, 0, len(t.tokens))
	for name := range t.tokens {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Render substitutes all placeholders. Bindings must cover the token set
// exactly: a missing token fails with ErrMissingBinding, a surplus key
// fails with ErrUnknownBinding. The strict match in both directions
// catches drift between templates and call sites at generation time.
func (t *Template) Render(bindings map[string]string) (string, error) {
	for name := range t.tokens {
		if _, ok := bindings[name]; !ok {
			return "", fmt.Errorf("%w: template %s requires <%s>", ErrMissingBinding, t.kind, name)
		}
	}
	for key := range bindings {
		if !t.tokens[key] {
			return "", fmt.Errorf("%w: template %s has no placeholder <%s>", ErrUnknownBinding, t.kind, key)
		}
	}

	out := tokenPattern.ReplaceAllStringFunc(t.text, func(m string) string {
		return bindings[strings.Trim(m, "<>")]
	})
	return out, nil
}
