package scaffold

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Entry is a reference appended to an aggregation file: an import line
// plus the element exported from the file's list block. Quoted selects
// between string elements ("asset_x" in __all__) and bare identifiers
// (X_DEFS in a definitions list).
type Entry struct {
	ImportLine string
	Export     string
	Quoted     bool
}

// UpdateResult reports the outcome of a registry update.
type UpdateResult struct {
	Path    string
	Changed bool
}

var (
	fromImportPattern  = regexp.MustCompile(`^from\s+\S+\s+import\s+.+$`)
	plainImportPattern = regexp.MustCompile(`^import\s+\S+`)
	exportOpenPattern  = regexp.MustCompile(`^(\w+)(\s*:[^=]+)?\s*=\s*\[`)
	listClosePattern   = regexp.MustCompile(`^\s*\]`)
)

// registry is the parsed form of an aggregation file: an imports block
// followed by exactly one export-list block. Existing lines are never
// reordered; updates append.
type registry struct {
	path       string
	lines      []string
	lastImport int // index of last import line, -1 when none
	listOpen   int // line opening the export list
	listClose  int // line closing it; equal to listOpen for single-line lists
}

// loadRegistry reads and parses an aggregation file, failing with
// ErrRegistryParse when it does not follow the minimal grammar.
func loadRegistry(path string) (*registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s: file does not exist", ErrRegistryParse, path)
		}
		return nil, err
	}

	r := &registry{
		path:       path,
		lines:      strings.Split(strings.TrimRight(string(raw), "\n"), "\n"),
		lastImport: -1,
		listOpen:   -1,
		listClose:  -1,
	}

	for i, line := range r.lines {
		switch {
		case fromImportPattern.MatchString(line) || plainImportPattern.MatchString(line):
			if r.listOpen >= 0 {
				return nil, fmt.Errorf("%w: %s: import after export list at line %d", ErrRegistryParse, path, i+1)
			}
			r.lastImport = i
		case exportOpenPattern.MatchString(line):
			if r.listOpen >= 0 {
				return nil, fmt.Errorf("%w: %s: multiple export lists", ErrRegistryParse, path)
			}
			r.listOpen = i
			// Only a bracket at or after the list opener closes it; a
			// type annotation like list[X] carries its own brackets.
			open := exportOpenPattern.FindStringIndex(line)[1] - 1
			if strings.Contains(line[open:], "]") {
				r.listClose = i
			}
		case r.listOpen >= 0 && r.listClose < 0 && listClosePattern.MatchString(line):
			r.listClose = i
		}
	}

	if r.listOpen < 0 {
		return nil, fmt.Errorf("%w: %s: no export list found", ErrRegistryParse, path)
	}
	if r.listClose < 0 {
		return nil, fmt.Errorf("%w: %s: export list is not closed", ErrRegistryParse, path)
	}
	return r, nil
}

// has reports whether the export list already contains the element.
func (r *registry) has(e Entry) bool {
	elem := regexp.QuoteMeta(r.element(e))
	pattern := regexp.MustCompile(`(^|[\[,\s])` + elem + `($|[,\s\]])`)
	for i := r.listOpen; i <= r.listClose; i++ {
		line := r.lines[i]
		if i == r.listOpen {
			// Strip the assignment target (and any type annotation) so a
			// list named like the element does not count as a match.
			if loc := exportOpenPattern.FindStringIndex(line); loc != nil {
				line = line[loc[1]-1:]
			}
		}
		if pattern.MatchString(line) {
			return true
		}
	}
	return false
}

func (r *registry) element(e Entry) string {
	if e.Quoted {
		return fmt.Sprintf("%q", e.Export)
	}
	return e.Export
}

// register appends the entry. Existing lines keep their order; the new
// import goes after the last import and the new element at the list end.
func (r *registry) register(e Entry) bool {
	if r.has(e) {
		return false
	}

	r.insertImport(e.ImportLine)
	r.insertElement(r.element(e))
	return true
}

func (r *registry) insertImport(line string) {
	at := r.lastImport + 1
	if r.lastImport < 0 {
		// No imports yet: the block starts above the export list,
		// separated by a blank line.
		at = r.listOpen
		line += "\n"
	}
	r.insertLines(at, line)
	r.lastImport = at
}

func (r *registry) insertElement(elem string) {
	if r.listOpen == r.listClose {
		line := r.lines[r.listOpen]
		// The list opener is the bracket matched by the assignment
		// pattern, not a bracket inside a type annotation; the close is
		// the first bracket after it.
		open := exportOpenPattern.FindStringIndex(line)[1] - 1
		close_ := open + strings.Index(line[open:], "]")
		inner := strings.TrimSpace(line[open+1 : close_])
		if inner == "" {
			// Empty single-line list grows into the multi-line form.
			r.lines[r.listOpen] = line[:open+1]
			r.insertLines(r.listOpen+1, "    "+elem+",", line[close_:])
			r.listClose = r.listOpen + 2
			return
		}
		r.lines[r.listOpen] = line[:close_] + ", " + elem + line[close_:]
		return
	}

	indent := "    "
	if r.listClose > r.listOpen+1 {
		last := r.lines[r.listClose-1]
		indent = last[:len(last)-len(strings.TrimLeft(last, " \t"))]
	}
	r.insertLines(r.listClose, indent+elem+",")
	r.listClose++
}

func (r *registry) insertLines(at int, lines ...string) {
	expanded := make([]string, 0, len(lines)+1)
	for _, l := range lines {
		expanded = append(expanded, strings.Split(l, "\n")...)
	}
	r.lines = append(r.lines[:at], append(expanded, r.lines[at:]...)...)
	n := len(expanded)
	if r.listOpen >= at {
		r.listOpen += n
	}
	if r.listClose >= at {
		r.listClose += n
	}
}

// write rewrites the file atomically; the registry owns the file for the
// whole read-modify-write cycle.
func (r *registry) write() error {
	content := strings.Join(r.lines, "\n") + "\n"
	return writeFileAtomic(r.path, []byte(content))
}

// Register appends an entry to the aggregation file at path. Calling it
// twice with the same entry is a no-op that leaves the file
// byte-identical.
func Register(path string, e Entry) (UpdateResult, error) {
	r, err := loadRegistry(path)
	if err != nil {
		return UpdateResult{Path: path}, err
	}
	if !r.register(e) {
		return UpdateResult{Path: path, Changed: false}, nil
	}
	if err := r.write(); err != nil {
		return UpdateResult{Path: path}, err
	}
	return UpdateResult{Path: path, Changed: true}, nil
}
