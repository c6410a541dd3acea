package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	sharedcfg "github.com/aifstack-labs/aifgen/internal/config"
	"github.com/aifstack-labs/aifgen/internal/naming"
	"github.com/aifstack-labs/aifgen/internal/scaffold"
	"github.com/aifstack-labs/aifgen/internal/template"
)

// projectFile is the marshaled form of a fresh aifgen.yaml.
type projectFile struct {
	ProjectName string   `yaml:"project_name"`
	Environment string   `yaml:"environment"`
	ConfigFiles []string `yaml:"config_files"`
}

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool
	var project string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new AIF project",
		Long: `Initialize a new AIF project root.

This creates:
  - aifgen.yaml configuration file
  - definitions.py project-level registry for orchestrator discovery

Warehouses and schema layers are added afterwards with 'aifgen new'.`,
		Example: `  # Initialize in current directory
  aifgen init

  # Initialize in a new directory
  aifgen init ai_analytics

  # Force overwrite existing config
  aifgen init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			ctx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			return runInit(ctx, dir, project, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")
	cmd.Flags().StringVar(&project, "project", "", "Project name (default: directory name)")

	return cmd
}

func runInit(ctx *CommandContext, dir, project string, force bool) error {
	if dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	if project == "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return err
		}
		project = filepath.Base(abs)
	}
	projectName, err := naming.ResolveName("project", project)
	if err != nil {
		return err
	}
	ns := naming.NameSet{Project: projectName}

	configPath := filepath.Join(dir, "aifgen.yaml")
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("aifgen.yaml already exists. Use --force to overwrite")
	}

	raw, err := yaml.Marshal(projectFile{
		ProjectName: ns.Project.Snake,
		Environment: sharedcfg.DefaultEnv,
		ConfigFiles: sharedcfg.DefaultConfigFiles(ns.Project.Snake),
	})
	if err != nil {
		return err
	}
	if err := os.WriteFile(configPath, raw, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", configPath, err)
	}

	mat := scaffold.NewMaterializer(dir)
	tmpl, err := ctx.Catalog.Get(template.KindProjectDefs)
	if err != nil {
		return err
	}
	bindings, err := scaffold.Bindings(template.KindProjectDefs, ns, scaffold.BindingOptions{})
	if err != nil {
		return err
	}
	content, err := tmpl.Render(bindings)
	if err != nil {
		return err
	}
	if _, err := mat.Write("definitions.py", content, force); err != nil {
		return err
	}

	r := ctx.Renderer
	r.StatusLine("aifgen.yaml", "created", "")
	r.StatusLine("definitions.py", "created", "")
	r.Println("")
	r.Success("AIF project " + ns.Project.Snake + " initialized!")
	r.Println("")
	r.Println("Next steps:")
	r.Println("  1. Run 'aifgen new schema <warehouse> <schema>' to add a schema layer")
	r.Println("  2. Run 'aifgen new table <warehouse> <schema> <name>' to add a table")
	r.Println("  3. Run 'aifgen check' to validate the tree")

	return nil
}
