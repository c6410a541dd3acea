// Package project discovers the structure of an existing package tree:
// warehouses, schema layers, and the assets declared inside them. The
// generated files are the source of truth; discovery re-parses them
// instead of keeping a sidecar index.
package project

import (
	"io/fs"
	"os"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Asset is one declared unit of work found in a schema's wf package.
type Asset struct {
	Name      string   // declared asset name, constant form
	File      string   // path relative to the tree root, slash separated
	Warehouse string   // constant form of the owning warehouse
	Schema    string   // constant form of the owning schema
	Deps      []string // dependency asset names within the same schema
}

// KeyPrefix returns the orchestrator key prefix [WAREHOUSE, SCHEMA].
func (a Asset) KeyPrefix() []string { return []string{a.Warehouse, a.Schema} }

// Key returns the full asset key.
func (a Asset) Key() []string { return append(a.KeyPrefix(), a.Name) }

// Group returns the orchestrator group name WAREHOUSE_SCHEMA.
func (a Asset) Group() string { return a.Warehouse + "_" + a.Schema }

// Kind classifies the asset by its declared name.
func (a Asset) Kind() string {
	switch {
	case a.Name == "SCHEMA":
		return "schema"
	case strings.HasSuffix(a.Name, "_ETL"):
		return "etl"
	default:
		return "table"
	}
}

// Schema is one schema-layer package under a warehouse.
type Schema struct {
	Dir            string // path relative to the tree root, slash separated
	Name           string // directory name, snake form
	WarehouseConst string // DWH_NAME from __init__.py, or derived from the directory
	SchemaConst    string // SCHEMA_NAME from __init__.py, or derived
	HasInit        bool   // __init__.py with constants is present
	Assets         []Asset
}

// Asset returns the asset with the given declared name, if present.
func (s *Schema) Asset(name string) (Asset, bool) {
	for _, a := range s.Assets {
		if a.Name == name {
			return a, true
		}
	}
	return Asset{}, false
}

// Warehouse is one top-level database package.
type Warehouse struct {
	Dir     string // directory name, snake form
	HasDefs bool   // definitions.py registry is present
	Schemas []Schema
}

// Tree is the discovered layout of a package root.
type Tree struct {
	Root       string
	Warehouses []Warehouse
}

// Assets returns every asset in the tree in deterministic order.
func (t *Tree) Assets() []Asset {
	var out []Asset
	for _, w := range t.Warehouses {
		for _, s := range w.Schemas {
			out = append(out, s.Assets...)
		}
	}
	return out
}

var (
	dwhConstPattern    = regexp.MustCompile(`(?m)^DWH_NAME\s*=\s*"([^"]*)"`)
	schemaConstPattern = regexp.MustCompile(`(?m)^SCHEMA_NAME\s*=\s*"([^"]*)"`)
	assetNamePattern   = regexp.MustCompile(`(?m)^\s*name="([^"]*)",\s*$`)
	assetKeyPattern    = regexp.MustCompile(`dg\.AssetKey\(\s*\[([^\]]*)\]`)
)

// Discover walks a package root and rebuilds the warehouse, schema, and
// asset structure from the files on disk. Incomplete packages (a schema
// without its __init__.py, a warehouse without its registry) are still
// reported; the consistency checker decides what is a violation.
func Discover(root string) (*Tree, error) {
	fsys := os.DirFS(root)

	schemaDirs := make(map[string]bool)
	for _, pattern := range []string{"*/*/__init__.py", "*/*/wf/asset_*.py"} {
		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			parts := strings.Split(m, "/")
			schemaDirs[path.Join(parts[0], parts[1])] = true
		}
	}

	warehouseDirs := make(map[string]bool)
	for dir := range schemaDirs {
		warehouseDirs[path.Dir(dir)] = true
	}
	defs, err := doublestar.Glob(fsys, "*/definitions.py")
	if err != nil {
		return nil, err
	}
	for _, d := range defs {
		warehouseDirs[path.Dir(d)] = true
	}

	tree := &Tree{Root: root}
	for _, whDir := range sortedKeys(warehouseDirs) {
		wh := Warehouse{Dir: whDir}
		if _, err := fs.Stat(fsys, path.Join(whDir, "definitions.py")); err == nil {
			wh.HasDefs = true
		}
		for _, dir := range sortedKeys(schemaDirs) {
			if path.Dir(dir) != whDir {
				continue
			}
			schema, err := discoverSchema(fsys, dir)
			if err != nil {
				return nil, err
			}
			wh.Schemas = append(wh.Schemas, schema)
		}
		tree.Warehouses = append(tree.Warehouses, wh)
	}
	return tree, nil
}

func discoverSchema(fsys fs.FS, dir string) (Schema, error) {
	s := Schema{
		Dir:            dir,
		Name:           path.Base(dir),
		WarehouseConst: strings.ToUpper(path.Base(path.Dir(dir))),
		SchemaConst:    strings.ToUpper(path.Base(dir)),
	}

	// Declared constants override the directory-derived fallback.
	if raw, err := fs.ReadFile(fsys, path.Join(dir, "__init__.py")); err == nil {
		content := string(raw)
		if m := dwhConstPattern.FindStringSubmatch(content); m != nil {
			s.WarehouseConst = m[1]
			s.HasInit = true
		}
		if m := schemaConstPattern.FindStringSubmatch(content); m != nil {
			s.SchemaConst = m[1]
			s.HasInit = true
		}
	}

	files, err := doublestar.Glob(fsys, path.Join(dir, "wf", "asset_*.py"))
	if err != nil {
		return Schema{}, err
	}
	sort.Strings(files)
	for _, file := range files {
		raw, err := fs.ReadFile(fsys, file)
		if err != nil {
			return Schema{}, err
		}
		s.Assets = append(s.Assets, parseAsset(file, string(raw), s))
	}
	return s, nil
}

// parseAsset extracts the declared name and dependency keys from an
// asset module. A file that omits the name declaration falls back to the
// constant form of its filename.
func parseAsset(file, content string, s Schema) Asset {
	a := Asset{
		File:      file,
		Warehouse: s.WarehouseConst,
		Schema:    s.SchemaConst,
		Name:      nameFromFile(file),
	}
	if m := assetNamePattern.FindStringSubmatch(content); m != nil {
		a.Name = m[1]
	}
	for _, m := range assetKeyPattern.FindAllStringSubmatch(content, -1) {
		elems := strings.Split(m[1], ",")
		last := resolveKeyElement(elems[len(elems)-1], s)
		if last != "" {
			a.Deps = append(a.Deps, last)
		}
	}
	return a
}

func nameFromFile(file string) string {
	base := strings.TrimSuffix(path.Base(file), ".py")
	base = strings.TrimPrefix(base, "asset_")
	return strings.ToUpper(base)
}

// resolveKeyElement maps one asset-key element to its constant form:
// quoted literals are unquoted, the DWH_NAME and SCHEMA_NAME symbols
// resolve against the schema's constants.
func resolveKeyElement(elem string, s Schema) string {
	elem = strings.TrimSpace(elem)
	switch {
	case strings.HasPrefix(elem, `"`) && strings.HasSuffix(elem, `"`) && len(elem) >= 2:
		return elem[1 : len(elem)-1]
	case elem == "DWH_NAME":
		return s.WarehouseConst
	case elem == "SCHEMA_NAME":
		return s.SchemaConst
	}
	return elem
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
