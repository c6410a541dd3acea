package template

import (
	"embed"
	"fmt"
)

//go:embed templates
var templateFS embed.FS

// templateFiles maps each artifact kind to its embedded template file.
var templateFiles = map[Kind]string{
	KindSchemaInit:    "templates/schema_init.py.tmpl",
	KindSchemaAsset:   "templates/schema_asset.py.tmpl",
	KindDBObjectAsset: "templates/db_object_asset.py.tmpl",
	KindETLSource:     "templates/etl_source.py.tmpl",
	KindETLAsset:      "templates/etl_asset.py.tmpl",
	KindPackageInit:   "templates/package_init.py.tmpl",
	KindWarehouseDefs: "templates/warehouse_defs.py.tmpl",
	KindProjectDefs:   "templates/project_defs.py.tmpl",
	KindSQLDDL:        "templates/sql_ddl.sql.tmpl",
	KindSQLDML:        "templates/sql_dml.sql.tmpl",
}

// Catalog is the process-wide registry of templates, loaded once and
// read-only afterwards.
type Catalog struct {
	templates map[Kind]*Template
}

// NewCatalog loads and parses every embedded template.
func NewCatalog() (*Catalog, error) {
	c := &Catalog{templates: make(map[Kind]*Template, len(templateFiles))}
	for kind, path := range templateFiles {
		raw, err := templateFS.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("load template for %s: %w", kind, err)
		}
		c.templates[kind] = parseTemplate(kind, string(raw))
	}
	return c, nil
}

// Get returns the template for an artifact kind.
func (c *Catalog) Get(kind Kind) (*Template, error) {
	t, ok := c.templates[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return t, nil
}
