package commands

import (
	"fmt"
	"os"
	"path"

	"github.com/spf13/cobra"

	"github.com/aifstack-labs/aifgen/internal/checker"
	"github.com/aifstack-labs/aifgen/internal/naming"
	"github.com/aifstack-labs/aifgen/internal/scaffold"
	"github.com/aifstack-labs/aifgen/internal/template"
)

// newOptions carries the flags shared by the new subcommands.
type newOptions struct {
	description string
	comment     string
	dataSource  string
	deps        []string
	overwrite   bool
}

// NewNewCommand creates the new command with its schema, table, and etl
// subcommands.
func NewNewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Generate a new schema, table, or ETL package",
		Long: `Generate AIF package artifacts from the embedded templates.

Each subcommand resolves the identity tuple once, renders every artifact
of the package type, writes them atomically, updates the registries, and
runs the consistency checker on the result. A failure rolls back every
file written for the request.`,
	}

	cmd.AddCommand(newSchemaCommand())
	cmd.AddCommand(newTableCommand())
	cmd.AddCommand(newETLCommand())

	return cmd
}

func newSchemaCommand() *cobra.Command {
	var opts newOptions

	cmd := &cobra.Command{
		Use:   "schema <warehouse> <schema>",
		Short: "Generate a schema layer package",
		Example: `  # Add a raw layer schema to the DWH_USE_CASES warehouse
  aifgen new schema dwh_use_cases raw_kaggle --comment "Raw Kaggle data"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			return runNewSchema(ctx, args[0], args[1], opts)
		},
	}

	cmd.Flags().StringVar(&opts.comment, "comment", "", "Schema comment used in the database")
	cmd.Flags().StringVar(&opts.description, "description", "", "Asset description shown in the orchestrator")
	cmd.Flags().BoolVar(&opts.overwrite, "force", false, "Overwrite existing files")

	return cmd
}

func newTableCommand() *cobra.Command {
	var opts newOptions

	cmd := &cobra.Command{
		Use:   "table <warehouse> <schema> <name>",
		Short: "Generate a database object asset with its DDL template",
		Example: `  # Add a table asset to the raw_kaggle schema
  aifgen new table dwh_use_cases raw_kaggle kaggle_train --description "Kaggle training data"

  # Declare extra dependencies on sibling assets
  aifgen new table dwh_use_cases raw_kaggle kaggle_test --deps KAGGLE_TRAIN`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			return runNewTable(ctx, args[0], args[1], args[2], opts)
		},
	}

	cmd.Flags().StringVar(&opts.description, "description", "", "Asset description shown in the orchestrator")
	cmd.Flags().StringSliceVar(&opts.deps, "deps", nil, "Extra dependency asset names in the same schema")
	cmd.Flags().BoolVar(&opts.overwrite, "force", false, "Overwrite existing files")

	return cmd
}

func newETLCommand() *cobra.Command {
	var opts newOptions

	cmd := &cobra.Command{
		Use:   "etl <warehouse> <schema> <name>",
		Short: "Generate an ETL pipeline for an existing table asset",
		Example: `  # Add an ETL pipeline loading the kaggle_train table
  aifgen new etl dwh_use_cases raw_kaggle kaggle_train --data-source "Kaggle API"`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			return runNewETL(ctx, args[0], args[1], args[2], opts)
		},
	}

	cmd.Flags().StringVar(&opts.description, "description", "", "Asset description shown in the orchestrator")
	cmd.Flags().StringVar(&opts.dataSource, "data-source", "", "Upstream system the pipeline extracts from")
	cmd.Flags().BoolVar(&opts.overwrite, "force", false, "Overwrite existing files")

	return cmd
}

func runNewSchema(ctx *CommandContext, warehouse, schema string, opts newOptions) error {
	ns, err := naming.Resolve(ctx.Cfg.ProjectName, warehouse, schema, "")
	if err != nil {
		return err
	}
	if naming.Layer(ns.Schema) == "" {
		ctx.Renderer.Warning("schema " + ns.Schema.Snake + " has no layer prefix; the checker will flag it")
	}

	steps, err := blueprintSteps(ctx, scaffold.SchemaBlueprint(), ns, opts)
	if err != nil {
		return err
	}

	// The registries themselves are created on demand so a fresh
	// warehouse needs no separate bootstrap command.
	var extra []scaffold.Step
	for _, kind := range []template.Kind{template.KindProjectDefs, template.KindWarehouseDefs} {
		missing, err := kindMissing(ctx, kind, ns)
		if err != nil {
			return err
		}
		if missing {
			step, err := buildStep(ctx, kind, ns, opts)
			if err != nil {
				return err
			}
			extra = append(extra, step)
		}
	}
	steps = append(extra, steps...)

	regs := []scaffold.Registration{
		{RegistryRel: path.Join(ns.Warehouse.Snake, "definitions.py"), Entry: scaffold.SchemaWarehouseEntry(ns)},
		{RegistryRel: "definitions.py", Entry: scaffold.SchemaProjectEntry(ns)},
	}

	result, err := ctx.Pipeline().Run(ns, steps, regs, opts.overwrite)
	if err != nil {
		return err
	}

	// The fixed schema tree includes directories no artifact lands in.
	mat := scaffold.NewMaterializer(ctx.Cfg.PackageDir)
	for _, dir := range scaffold.SchemaDirs(ns) {
		if err := mat.EnsureDir(dir); err != nil {
			return err
		}
	}

	return reportResult(ctx, "schema "+ns.Schema.Snake, result)
}

func runNewTable(ctx *CommandContext, warehouse, schema, name string, opts newOptions) error {
	ns, err := naming.Resolve(ctx.Cfg.ProjectName, warehouse, schema, name)
	if err != nil {
		return err
	}

	steps, err := blueprintSteps(ctx, scaffold.TableBlueprint(), ns, opts)
	if err != nil {
		return err
	}

	regs, err := assetRegistrations(ctx, ns, false)
	if err != nil {
		return err
	}

	result, err := ctx.Pipeline().Run(ns, steps, regs, opts.overwrite)
	if err != nil {
		return err
	}
	return reportResult(ctx, "table "+ns.Asset.Snake, result)
}

func runNewETL(ctx *CommandContext, warehouse, schema, name string, opts newOptions) error {
	ns, err := naming.Resolve(ctx.Cfg.ProjectName, warehouse, schema, name)
	if err != nil {
		return err
	}

	steps, err := blueprintSteps(ctx, scaffold.ETLBlueprint(), ns, opts)
	if err != nil {
		return err
	}

	regs, err := assetRegistrations(ctx, ns, true)
	if err != nil {
		return err
	}

	result, err := ctx.Pipeline().Run(ns, steps, regs, opts.overwrite)
	if err != nil {
		return err
	}
	return reportResult(ctx, "etl "+ns.Asset.Snake, result)
}

// blueprintSteps builds the pipeline steps for a package type.
func blueprintSteps(ctx *CommandContext, bp scaffold.Blueprint, ns naming.NameSet, opts newOptions) ([]scaffold.Step, error) {
	steps := make([]scaffold.Step, 0, len(bp.Kinds))
	for _, kind := range bp.Kinds {
		step, err := buildStep(ctx, kind, ns, opts)
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	return steps, nil
}

func buildStep(ctx *CommandContext, kind template.Kind, ns naming.NameSet, opts newOptions) (scaffold.Step, error) {
	bindings, err := scaffold.Bindings(kind, ns, scaffold.BindingOptions{
		Description: opts.description,
		Comment:     opts.comment,
		DataSource:  opts.dataSource,
		Deps:        opts.deps,
		ConfigFiles: ctx.Cfg.RuntimeConfigFiles(),
	})
	if err != nil {
		return scaffold.Step{}, err
	}
	return scaffold.Step{Kind: kind, Bindings: bindings}, nil
}

func kindMissing(ctx *CommandContext, kind template.Kind, ns naming.NameSet) (bool, error) {
	mat := scaffold.NewMaterializer(ctx.Cfg.PackageDir)
	dest, err := mat.Path(kind, ns)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(dest); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, err
	}
	return true, nil
}

// assetRegistrations returns the wf registry update for an asset, or
// none when the schema package has not been generated yet. The missing
// schema surfaces as a checker violation instead of a hard failure.
func assetRegistrations(ctx *CommandContext, ns naming.NameSet, etl bool) ([]scaffold.Registration, error) {
	missing, err := kindMissing(ctx, template.KindPackageInit, ns)
	if err != nil {
		return nil, err
	}
	if missing {
		ctx.Renderer.Warning("schema " + ns.Schema.Snake + " is not initialized; skipping registry update (run 'aifgen new schema' first)")
		return nil, nil
	}
	rel, err := scaffold.RelPath(template.KindPackageInit, ns)
	if err != nil {
		return nil, err
	}
	return []scaffold.Registration{{RegistryRel: rel, Entry: scaffold.AssetExportEntry(ns, etl)}}, nil
}

// reportResult prints the written files and runs the consistency checker
// over the package root. Violations do not remove the generated files;
// at error severity the command still fails so scripted callers notice.
func reportResult(ctx *CommandContext, what string, result *scaffold.Result) error {
	r := ctx.Renderer
	for _, p := range result.Written {
		r.StatusLine(p, "created", "")
	}
	for _, p := range result.Registered {
		r.StatusLine(p, "success", "registered")
	}

	violations, err := checker.Check(ctx.Cfg.PackageDir)
	if err != nil {
		return err
	}
	for _, v := range violations {
		if v.Severity == checker.SeverityError {
			r.Err(v.Path + ": " + v.Message)
		} else {
			r.Warning(v.Path + ": " + v.Message)
		}
	}
	if errs := checker.Filter(violations, checker.SeverityError); len(errs) > 0 {
		return fmt.Errorf("generated %s with %d convention violation(s)", what, len(errs))
	}

	r.Println("")
	r.Success("Generated " + what)
	return nil
}
