package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aifstack-labs/aifgen/internal/naming"
	"github.com/aifstack-labs/aifgen/internal/scaffold"
	"github.com/aifstack-labs/aifgen/internal/template"
)

// NewRenderCommand creates the render command.
func NewRenderCommand() *cobra.Command {
	var (
		warehouse   string
		schema      string
		asset       string
		description string
		comment     string
		dataSource  string
		deps        []string
	)

	cmd := &cobra.Command{
		Use:   "render <kind>",
		Short: "Render an artifact template to stdout without writing",
		Long: `Render one artifact template with the same bindings 'new' would use
and print the result, as a dry run. Kinds: ` + kindList() + `.`,
		Example: `  # Preview the schema asset module
  aifgen render schema-asset --warehouse dwh_use_cases --schema raw_kaggle

  # Preview a table DDL file
  aifgen render sql-ddl --warehouse dwh_use_cases --schema raw_kaggle --asset kaggle_train`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}

			kind, err := template.ParseKind(args[0])
			if err != nil {
				return err
			}

			ns, err := naming.Resolve(ctx.Cfg.ProjectName, warehouse, schema, asset)
			if err != nil {
				return err
			}
			// Asset-scoped kinds would render empty name bindings
			// without --asset; the destination rules already know which
			// kinds need one.
			if _, err := scaffold.RelPath(kind, ns); err != nil {
				return err
			}

			bindings, err := scaffold.Bindings(kind, ns, scaffold.BindingOptions{
				Description: description,
				Comment:     comment,
				DataSource:  dataSource,
				Deps:        deps,
				ConfigFiles: ctx.Cfg.RuntimeConfigFiles(),
			})
			if err != nil {
				return err
			}

			tmpl, err := ctx.Catalog.Get(kind)
			if err != nil {
				return err
			}
			content, err := tmpl.Render(bindings)
			if err != nil {
				return err
			}

			_, err = fmt.Fprint(cmd.OutOrStdout(), content)
			return err
		},
	}

	cmd.Flags().StringVar(&warehouse, "warehouse", "", "Warehouse name")
	cmd.Flags().StringVar(&schema, "schema", "", "Schema name")
	cmd.Flags().StringVar(&asset, "asset", "", "Asset name (asset-scoped kinds only)")
	cmd.Flags().StringVar(&description, "description", "", "Asset description")
	cmd.Flags().StringVar(&comment, "comment", "", "Schema comment")
	cmd.Flags().StringVar(&dataSource, "data-source", "", "Upstream data source")
	cmd.Flags().StringSliceVar(&deps, "deps", nil, "Extra dependency asset names")
	_ = cmd.MarkFlagRequired("warehouse")
	_ = cmd.MarkFlagRequired("schema")

	return cmd
}

func kindList() string {
	kinds := template.Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}
