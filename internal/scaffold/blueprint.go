package scaffold

import (
	"fmt"
	"path"

	"github.com/aifstack-labs/aifgen/internal/naming"
	"github.com/aifstack-labs/aifgen/internal/template"
)

// Blueprint lists the artifact kinds generated for one package type, in
// generation order. Destination patterns are fixed per kind; a blueprint
// is explicit composition, never a copied template instance.
type Blueprint struct {
	Name  string
	Kinds []template.Kind
}

// SchemaBlueprint is the package type for a new schema layer.
func SchemaBlueprint() Blueprint {
	return Blueprint{
		Name: "schema",
		Kinds: []template.Kind{
			template.KindSchemaInit,
			template.KindPackageInit,
			template.KindSchemaAsset,
		},
	}
}

// TableBlueprint is the package type for a new database object.
func TableBlueprint() Blueprint {
	return Blueprint{
		Name: "table",
		Kinds: []template.Kind{
			template.KindDBObjectAsset,
			template.KindSQLDDL,
		},
	}
}

// ETLBlueprint is the package type for a new data-loading pipeline.
func ETLBlueprint() Blueprint {
	return Blueprint{
		Name: "etl",
		Kinds: []template.Kind{
			template.KindETLSource,
			template.KindETLAsset,
			template.KindSQLDML,
		},
	}
}

// RelPath returns the destination of an artifact kind relative to the
// project package root. Paths follow the fixed per-schema layout
// (wf/, src/, resources/sql/{ddl,dml,dql}).
func RelPath(kind template.Kind, ns naming.NameSet) (string, error) {
	schemaDir := path.Join(ns.Warehouse.Snake, ns.Schema.Snake)

	switch kind {
	case template.KindProjectDefs:
		return "definitions.py", nil
	case template.KindWarehouseDefs:
		return path.Join(ns.Warehouse.Snake, "definitions.py"), nil
	case template.KindSchemaInit:
		return path.Join(schemaDir, "__init__.py"), nil
	case template.KindPackageInit:
		return path.Join(schemaDir, "wf", "__init__.py"), nil
	case template.KindSchemaAsset:
		return path.Join(schemaDir, "wf", "asset_schema.py"), nil
	}

	// Remaining kinds are asset scoped.
	if ns.Asset.IsZero() {
		return "", fmt.Errorf("artifact kind %s requires an asset name", kind)
	}
	switch kind {
	case template.KindDBObjectAsset:
		return path.Join(schemaDir, "wf", "asset_"+ns.Asset.Snake+".py"), nil
	case template.KindETLAsset:
		return path.Join(schemaDir, "wf", "asset_"+ns.Asset.Snake+"_etl.py"), nil
	case template.KindETLSource:
		return path.Join(schemaDir, "src", ns.Asset.Snake+"_etl.py"), nil
	case template.KindSQLDDL:
		return path.Join(schemaDir, "resources", "sql", "ddl", ns.Asset.Snake+".sql"), nil
	case template.KindSQLDML:
		return path.Join(schemaDir, "resources", "sql", "dml", ns.Asset.Snake+"_insert.sql"), nil
	}
	return "", fmt.Errorf("%w: %q", template.ErrUnknownKind, kind)
}

// SchemaDirs lists the fixed directory tree created under a schema
// package, relative to the package root.
func SchemaDirs(ns naming.NameSet) []string {
	schemaDir := path.Join(ns.Warehouse.Snake, ns.Schema.Snake)
	return []string{
		path.Join(schemaDir, "wf"),
		path.Join(schemaDir, "src"),
		path.Join(schemaDir, "resources", "config"),
		path.Join(schemaDir, "resources", "sql", "ddl"),
		path.Join(schemaDir, "resources", "sql", "dml"),
		path.Join(schemaDir, "resources", "sql", "dql"),
		path.Join(schemaDir, "test"),
	}
}
