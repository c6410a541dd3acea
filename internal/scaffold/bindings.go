package scaffold

import (
	"fmt"
	"strings"

	"github.com/aifstack-labs/aifgen/internal/naming"
	"github.com/aifstack-labs/aifgen/internal/template"
)

// BindingOptions carries the free-text inputs of a generation request.
type BindingOptions struct {
	Description string   // asset description shown in the orchestrator
	Comment     string   // schema comment
	DataSource  string   // upstream system an ETL extracts from
	Deps        []string // extra dependency asset names (constant form)
	ConfigFiles []string // ordered runtime configuration file list
}

// Bindings builds the exact binding map for an artifact kind. The map
// covers the template's token set precisely; any drift between this
// table and the templates surfaces as a render error in tests.
func Bindings(kind template.Kind, ns naming.NameSet, opts BindingOptions) (map[string]string, error) {
	switch kind {
	case template.KindSchemaInit:
		return map[string]string{
			"WAREHOUSE": ns.Warehouse.Const,
			"SCHEMA":    ns.Schema.Const,
			"COMMENT":   opts.Comment,
		}, nil
	case template.KindSchemaAsset:
		return map[string]string{
			"PROJECT":         ns.Project.Snake,
			"WAREHOUSE":       ns.Warehouse.Const,
			"WAREHOUSE_SNAKE": ns.Warehouse.Snake,
			"SCHEMA":          ns.Schema.Const,
			"SCHEMA_SNAKE":    ns.Schema.Snake,
			"DESCRIPTION":     opts.Description,
			"CONFIG_FILES":    renderConfigFiles(opts.ConfigFiles),
		}, nil
	case template.KindDBObjectAsset:
		return map[string]string{
			"PROJECT":         ns.Project.Snake,
			"WAREHOUSE_SNAKE": ns.Warehouse.Snake,
			"SCHEMA":          ns.Schema.Const,
			"SCHEMA_SNAKE":    ns.Schema.Snake,
			"ASSET":           ns.Asset.Const,
			"ASSET_SNAKE":     ns.Asset.Snake,
			"DESCRIPTION":     opts.Description,
			"DEPS":            renderDeps(opts.Deps),
			"CONFIG_FILES":    renderConfigFiles(opts.ConfigFiles),
		}, nil
	case template.KindETLAsset:
		return map[string]string{
			"PROJECT":         ns.Project.Snake,
			"WAREHOUSE_SNAKE": ns.Warehouse.Snake,
			"SCHEMA":          ns.Schema.Const,
			"SCHEMA_SNAKE":    ns.Schema.Snake,
			"ASSET":           ns.Asset.Const,
			"ASSET_SNAKE":     ns.Asset.Snake,
			"CLASS":           ns.EtlClassName(),
			"DESCRIPTION":     opts.Description,
			"CONFIG_FILES":    renderConfigFiles(opts.ConfigFiles),
		}, nil
	case template.KindETLSource:
		return map[string]string{
			"PROJECT":         ns.Project.Snake,
			"WAREHOUSE":       ns.Warehouse.Const,
			"WAREHOUSE_SNAKE": ns.Warehouse.Snake,
			"SCHEMA_SNAKE":    ns.Schema.Snake,
			"ASSET":           ns.Asset.Const,
			"ASSET_SNAKE":     ns.Asset.Snake,
			"CLASS":           ns.EtlClassName(),
			"DATA_SOURCE":     opts.DataSource,
		}, nil
	case template.KindPackageInit:
		return map[string]string{
			"PROJECT":         ns.Project.Snake,
			"WAREHOUSE_SNAKE": ns.Warehouse.Snake,
			"SCHEMA_SNAKE":    ns.Schema.Snake,
		}, nil
	case template.KindWarehouseDefs:
		return map[string]string{"WAREHOUSE": ns.Warehouse.Const}, nil
	case template.KindProjectDefs:
		return map[string]string{"PROJECT": ns.Project.Snake}, nil
	case template.KindSQLDDL, template.KindSQLDML:
		return map[string]string{
			"SCHEMA_SNAKE": ns.Schema.Snake,
			"ASSET_SNAKE":  ns.Asset.Snake,
		}, nil
	}
	return nil, fmt.Errorf("%w: %q", template.ErrUnknownKind, kind)
}

// renderConfigFiles renders the ordered configuration file list as
// Python list elements. The {ENV} placeholder stays literal; it is
// substituted per deployment by the configuration loader.
func renderConfigFiles(files []string) string {
	lines := make([]string, 0, len(files))
	for _, f := range files {
		lines = append(lines, fmt.Sprintf("    %q,", f))
	}
	return strings.Join(lines, "\n")
}

// renderDeps renders dependency declarations for a db-object asset. The
// schema-creation asset is always the first dependency; extra names are
// sibling assets in the same schema.
func renderDeps(extra []string) string {
	names := append([]string{"SCHEMA"}, extra...)
	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, fmt.Sprintf(
			"        dg.SourceAsset(key=dg.AssetKey([DWH_NAME, SCHEMA_NAME, %q])),", name))
	}
	return strings.Join(lines, "\n")
}
