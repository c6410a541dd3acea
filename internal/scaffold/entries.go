package scaffold

import "github.com/aifstack-labs/aifgen/internal/naming"

// schemaModule is the dotted import path of a schema package.
func schemaModule(ns naming.NameSet) string {
	return "aif." + ns.Project.Snake + "." + ns.Warehouse.Snake + "." + ns.Schema.Snake
}

// SchemaWarehouseEntry is the warehouse-level registry entry for a
// schema: its definitions object aliased by schema name.
func SchemaWarehouseEntry(ns naming.NameSet) Entry {
	alias := ns.Schema.Const + "_DEFINITION"
	return Entry{
		ImportLine: "from " + schemaModule(ns) + " import SCHEMA_DEFINITION as " + alias,
		Export:     alias,
	}
}

// SchemaProjectEntry is the project-level registry entry for a schema.
// The alias carries the warehouse name since schemas from different
// warehouses share one list.
func SchemaProjectEntry(ns naming.NameSet) Entry {
	alias := ns.Warehouse.Const + "_" + ns.Schema.Const + "_DEFINITION"
	return Entry{
		ImportLine: "from " + schemaModule(ns) + " import SCHEMA_DEFINITION as " + alias,
		Export:     alias,
	}
}

// AssetExportEntry is the wf package registry entry for an asset module:
// its asset function re-exported through __all__.
func AssetExportEntry(ns naming.NameSet, etl bool) Entry {
	fn := "asset_" + ns.Asset.Snake
	if etl {
		fn += "_etl"
	}
	return Entry{
		ImportLine: "from " + schemaModule(ns) + ".wf." + fn + " import " + fn,
		Export:     fn,
		Quoted:     true,
	}
}
