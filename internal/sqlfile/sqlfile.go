// Package sqlfile implements the AIF SQL file conventions: the literal
// statement separator marker and {PARAM} runtime parameter substitution.
// The marker is a wire format shared with the database access wrapper and
// must match byte for byte.
package sqlfile

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// StatementMarker separates statements inside one SQL file. Files with a
// single statement carry no marker.
const StatementMarker = "-- AIF: NEW_STATEMENT --"

// ErrMissingParam is returned when a {PARAM} in the SQL text has no value.
var ErrMissingParam = errors.New("missing sql parameter")

// paramPattern matches a {PARAM} runtime placeholder. Parameters are upper
// snake case, which keeps quoted braces in SQL literals out of the match.
var paramPattern = regexp.MustCompile(`\{([A-Z][A-Z0-9_]*)\}`)

// Split breaks the content of a SQL file into individual statements at
// each marker line. Leading and trailing whitespace around each statement
// is stripped and empty fragments are dropped.
func Split(content string) []string {
	parts := strings.Split(content, StatementMarker)
	statements := make([]string, 0, len(parts))
	for _, part := range parts {
		if s := strings.TrimSpace(part); s != "" {
			statements = append(statements, s)
		}
	}
	return statements
}

// Params returns the sorted parameter names referenced by the SQL text.
func Params(content string) []string {
	seen := make(map[string]bool)
	for _, m := range paramPattern.FindAllStringSubmatch(content, -1) {
		seen[m[1]] = true
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Substitute replaces every {PARAM} with its value. Parameters without a
// value fail with ErrMissingParam; surplus values are ignored, matching
// the behavior of the database access wrapper the files are written for.
func Substitute(content string, params map[string]string) (string, error) {
	for _, name := range Params(content) {
		if _, ok := params[name]; !ok {
			return "", fmt.Errorf("%w: {%s}", ErrMissingParam, name)
		}
	}
	return paramPattern.ReplaceAllStringFunc(content, func(m string) string {
		return params[strings.Trim(m, "{}")]
	}), nil
}
