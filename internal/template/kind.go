package template

import "fmt"

// Kind identifies the category of a generated artifact. The kind selects
// both the template and the destination path pattern.
type Kind string

// Artifact kinds known to the catalog.
const (
	KindSchemaInit    Kind = "schema-init"     // schema package __init__.py with DWH/SCHEMA constants
	KindSchemaAsset   Kind = "schema-asset"    // wf/asset_schema.py creating the schema
	KindDBObjectAsset Kind = "db-object-asset" // wf/asset_<name>.py creating a table or view
	KindETLSource     Kind = "etl-source"      // src/<name>_etl.py extract/transform/load class
	KindETLAsset      Kind = "etl-asset"       // wf/asset_<name>_etl.py running the ETL class
	KindPackageInit   Kind = "package-init"    // wf/__init__.py export registry seed
	KindWarehouseDefs Kind = "warehouse-defs"  // <warehouse>/definitions.py registry seed
	KindProjectDefs   Kind = "project-defs"    // project definitions.py registry seed
	KindSQLDDL        Kind = "sql-ddl"         // resources/sql/ddl/<name>.sql
	KindSQLDML        Kind = "sql-dml"         // resources/sql/dml/<name>_insert.sql
)

// Kinds lists every artifact kind in generation order.
func Kinds() []Kind {
	return []Kind{
		KindSchemaInit,
		KindSchemaAsset,
		KindDBObjectAsset,
		KindETLSource,
		KindETLAsset,
		KindPackageInit,
		KindWarehouseDefs,
		KindProjectDefs,
		KindSQLDDL,
		KindSQLDML,
	}
}

// ParseKind converts a user-supplied kind string.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}
