// Package checker validates a generated package tree against the naming
// and cross-reference conventions. Violations are data returned to the
// caller; the checker never fails on a business-rule violation.
package checker

import (
	"io/fs"
	"os"
	"path"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aifstack-labs/aifgen/internal/naming"
	"github.com/aifstack-labs/aifgen/internal/project"
	"github.com/aifstack-labs/aifgen/internal/sqlfile"
)

// Severity indicates the importance of a violation.
type Severity int

const (
	// SeverityError marks a convention break that must be fixed.
	SeverityError Severity = iota
	// SeverityWarning marks a deviation worth reviewing.
	SeverityWarning
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// ParseSeverity converts a string to a Severity value. Returns the
// severity and true if valid, or SeverityWarning and false if invalid.
func ParseSeverity(s string) (Severity, bool) {
	switch strings.ToLower(s) {
	case "error":
		return SeverityError, true
	case "warning":
		return SeverityWarning, true
	default:
		return SeverityWarning, false
	}
}

// Violation is one convention break found in the tree.
type Violation struct {
	Rule     string   `json:"rule"`
	Severity Severity `json:"-"`
	Path     string   `json:"path"`
	Message  string   `json:"message"`
}

// Level is the severity as a string for serialized output.
func (v Violation) Level() string { return v.Severity.String() }

// checkContext carries the discovered tree and the filesystem the rules
// read from.
type checkContext struct {
	fsys fs.FS
	tree *project.Tree
}

type rule struct {
	id    string
	check func(*checkContext) []Violation
}

var rules = []rule{
	{"naming/constants", checkConstants},
	{"naming/asset-name", checkAssetNames},
	{"naming/layer-prefix", checkLayerPrefix},
	{"deps/unresolved", checkDeps},
	{"registry/unresolved", checkRegistryImports},
	{"sql/unknown-param", checkDDLParams},
	{"template/unresolved-token", checkLeftoverTokens},
}

// Check walks the package root and returns every violation found. The
// returned error covers filesystem problems only; an empty slice means
// the tree is consistent.
func Check(root string) ([]Violation, error) {
	tree, err := project.Discover(root)
	if err != nil {
		return nil, err
	}

	ctx := &checkContext{fsys: os.DirFS(root), tree: tree}
	var out []Violation
	for _, r := range rules {
		for _, v := range r.check(ctx) {
			v.Rule = r.id
			out = append(out, v)
		}
	}
	return out, nil
}

// Filter returns the violations at or above the given severity.
func Filter(violations []Violation, min Severity) []Violation {
	var out []Violation
	for _, v := range violations {
		if v.Severity <= min {
			out = append(out, v)
		}
	}
	return out
}

// checkConstants verifies that the DWH_NAME and SCHEMA_NAME constants in
// a schema's __init__.py are the constant form of their directory names.
// Schemas without declared constants are skipped; an asset generated
// ahead of its schema package is caught by the dependency rule instead.
func checkConstants(ctx *checkContext) []Violation {
	var out []Violation
	for _, wh := range ctx.tree.Warehouses {
		for _, s := range wh.Schemas {
			if !s.HasInit {
				continue
			}
			initPath := path.Join(s.Dir, "__init__.py")
			if want := strings.ToUpper(path.Base(path.Dir(s.Dir))); s.WarehouseConst != want {
				out = append(out, Violation{
					Severity: SeverityError,
					Path:     initPath,
					Message:  "DWH_NAME " + quote(s.WarehouseConst) + " does not match directory, want " + quote(want),
				})
			}
			if want := strings.ToUpper(s.Name); s.SchemaConst != want {
				out = append(out, Violation{
					Severity: SeverityError,
					Path:     initPath,
					Message:  "SCHEMA_NAME " + quote(s.SchemaConst) + " does not match directory, want " + quote(want),
				})
			}
		}
	}
	return out
}

// checkAssetNames verifies that each asset's declared name is the
// constant form of its filename.
func checkAssetNames(ctx *checkContext) []Violation {
	var out []Violation
	for _, a := range ctx.tree.Assets() {
		want := assetNameFromFile(a.File)
		if a.Name != want {
			out = append(out, Violation{
				Severity: SeverityError,
				Path:     a.File,
				Message:  "asset name " + quote(a.Name) + " does not match filename, want " + quote(want),
			})
		}
	}
	return out
}

func assetNameFromFile(file string) string {
	base := strings.TrimSuffix(path.Base(file), ".py")
	return strings.ToUpper(strings.TrimPrefix(base, "asset_"))
}

// checkLayerPrefix warns about schema directories outside the layered
// naming convention.
func checkLayerPrefix(ctx *checkContext) []Violation {
	var out []Violation
	for _, wh := range ctx.tree.Warehouses {
		for _, s := range wh.Schemas {
			if naming.LayerOf(s.Name) == "" {
				out = append(out, Violation{
					Severity: SeverityWarning,
					Path:     s.Dir,
					Message:  "schema " + quote(s.Name) + " has no layer prefix (" + strings.Join(naming.Layers(), ", ") + ")",
				})
			}
		}
	}
	return out
}

// checkDeps verifies that every dependency key an asset declares
// resolves to an asset that exists in the same schema.
func checkDeps(ctx *checkContext) []Violation {
	var out []Violation
	for _, wh := range ctx.tree.Warehouses {
		for _, s := range wh.Schemas {
			for _, a := range s.Assets {
				for _, dep := range a.Deps {
					if _, ok := s.Asset(dep); !ok {
						out = append(out, Violation{
							Severity: SeverityError,
							Path:     a.File,
							Message:  "unresolved dependency: " + dep,
						})
					}
				}
			}
		}
	}
	return out
}

var fromImportPattern = regexp.MustCompile(`(?m)^from\s+(\S+)\s+import\s`)

// checkRegistryImports verifies that import lines in the aggregation
// files point at modules that exist in the tree. Imports outside the
// tree (the shared runtime under aif.common) are not checked.
func checkRegistryImports(ctx *checkContext) []Violation {
	registries, _ := doublestar.Glob(ctx.fsys, "{definitions.py,*/definitions.py,*/*/wf/__init__.py}")

	var out []Violation
	for _, reg := range registries {
		raw, err := fs.ReadFile(ctx.fsys, reg)
		if err != nil {
			continue
		}
		for _, m := range fromImportPattern.FindAllStringSubmatch(string(raw), -1) {
			module := m[1]
			rel, ok := moduleRelPath(module)
			if !ok {
				continue
			}
			if !existsAsModule(ctx.fsys, rel) {
				out = append(out, Violation{
					Severity: SeverityError,
					Path:     reg,
					Message:  "unresolved import: " + module,
				})
			}
		}
	}
	return out
}

// moduleRelPath maps a generated dotted import to a path relative to the
// package root. Generated imports look like aif.<project>.<warehouse>...;
// the leading two components address the root itself.
func moduleRelPath(module string) (string, bool) {
	parts := strings.Split(module, ".")
	if len(parts) < 3 || parts[0] != "aif" || parts[1] == "common" {
		return "", false
	}
	return path.Join(parts[2:]...), true
}

func existsAsModule(fsys fs.FS, rel string) bool {
	if _, err := fs.Stat(fsys, rel+".py"); err == nil {
		return true
	}
	_, err := fs.Stat(fsys, path.Join(rel, "__init__.py"))
	return err == nil
}

// ddlParams lists the runtime parameters the generated db-object asset
// supplies when executing a DDL file. Any other parameter has no value at
// run time.
var ddlParams = map[string]bool{"COMMENT": true}

// checkDDLParams verifies that DDL files only reference runtime
// parameters their asset supplies.
func checkDDLParams(ctx *checkContext) []Violation {
	files, err := doublestar.Glob(ctx.fsys, "*/*/resources/sql/ddl/*.sql")
	if err != nil {
		return nil
	}

	var out []Violation
	for _, file := range files {
		raw, err := fs.ReadFile(ctx.fsys, file)
		if err != nil {
			continue
		}
		for _, p := range sqlfile.Params(string(raw)) {
			if !ddlParams[p] {
				out = append(out, Violation{
					Severity: SeverityError,
					Path:     file,
					Message:  "runtime parameter {" + p + "} is not supplied by the asset (only {COMMENT} is)",
				})
			}
		}
	}
	return out
}

var leftoverTokenPattern = regexp.MustCompile(`<[A-Z][A-Z0-9_]*>`)

// generatedGlobs lists the locations the generator writes to; only those
// are scanned for leftover placeholder tokens. The {PARAM} markers in
// resources/sql are runtime parameters, not placeholders, and stay.
var generatedGlobs = []string{
	"definitions.py",
	"*/definitions.py",
	"*/*/__init__.py",
	"*/*/wf/*.py",
	"*/*/src/*.py",
	"*/*/resources/sql/**/*.sql",
}

func checkLeftoverTokens(ctx *checkContext) []Violation {
	var out []Violation
	for _, pattern := range generatedGlobs {
		files, err := doublestar.Glob(ctx.fsys, pattern)
		if err != nil {
			continue
		}
		for _, file := range files {
			raw, err := fs.ReadFile(ctx.fsys, file)
			if err != nil {
				continue
			}
			for _, tok := range dedupe(leftoverTokenPattern.FindAllString(string(raw), -1)) {
				out = append(out, Violation{
					Severity: SeverityError,
					Path:     file,
					Message:  "unresolved placeholder " + tok,
				})
			}
		}
	}
	return out
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func quote(s string) string { return `"` + s + `"` }
