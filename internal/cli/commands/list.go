package commands

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/aifstack-labs/aifgen/internal/cli/output"
	"github.com/aifstack-labs/aifgen/internal/project"
)

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List discovered warehouses, schemas, and assets",
		Long: `List the assets discovered in the package tree with their keys,
groups, and dependencies.

Output adapts to environment:
  - Terminal: styled table
  - Piped/Scripted: Markdown format (agent-friendly)

Use --output to override: auto, text, markdown, json`,
		Example: `  # List all assets
  aifgen list

  # List assets as JSON
  aifgen list --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			return runList(ctx)
		},
	}

	return cmd
}

func runList(ctx *CommandContext) error {
	tree, err := project.Discover(ctx.Cfg.PackageDir)
	if err != nil {
		return fmt.Errorf("failed to discover package tree: %w", err)
	}

	r := ctx.Renderer
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return listJSON(tree, r)
	case output.ModeMarkdown:
		return listMarkdown(tree, r)
	default:
		return listText(tree, r)
	}
}

// listText outputs the discovered assets as a styled table.
func listText(tree *project.Tree, r *output.Renderer) error {
	assets := tree.Assets()
	r.Header(1, fmt.Sprintf("Assets (%d total)", len(assets)))

	if len(assets) == 0 {
		r.Println("(no assets discovered)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.Writer())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Key", "Kind", "Group", "Deps", "File"})

	for _, a := range assets {
		t.AppendRow(table.Row{
			strings.Join(a.Key(), "/"),
			a.Kind(),
			a.Group(),
			strings.Join(a.Deps, ", "),
			a.File,
		})
	}
	t.Render()
	return nil
}

// listMarkdown outputs the discovered tree in markdown format.
func listMarkdown(tree *project.Tree, r *output.Renderer) error {
	assets := tree.Assets()
	r.Println(output.FormatHeader(1, fmt.Sprintf("Assets (%d total)", len(assets))))
	r.Println("")

	for _, wh := range tree.Warehouses {
		r.Println(output.FormatHeader(2, wh.Dir))
		for _, s := range wh.Schemas {
			r.Println(output.FormatHeader(3, s.Dir))
			for _, a := range s.Assets {
				r.Println(output.FormatKeyValue(strings.Join(a.Key(), "/"), a.Kind()))
				if len(a.Deps) > 0 {
					r.Println("  - deps: " + strings.Join(a.Deps, ", "))
				}
			}
			r.Println("")
		}
	}
	return nil
}

// listJSON outputs the discovered tree in JSON format.
func listJSON(tree *project.Tree, r *output.Renderer) error {
	type assetInfo struct {
		Key   []string `json:"key"`
		Kind  string   `json:"kind"`
		Group string   `json:"group"`
		Deps  []string `json:"deps,omitempty"`
		File  string   `json:"file"`
	}
	type schemaInfo struct {
		Dir       string      `json:"dir"`
		Warehouse string      `json:"warehouse"`
		Schema    string      `json:"schema"`
		Assets    []assetInfo `json:"assets"`
	}
	listOutput := struct {
		Schemas []schemaInfo `json:"schemas"`
		Total   int          `json:"total_assets"`
	}{Schemas: []schemaInfo{}}

	for _, wh := range tree.Warehouses {
		for _, s := range wh.Schemas {
			info := schemaInfo{
				Dir:       s.Dir,
				Warehouse: s.WarehouseConst,
				Schema:    s.SchemaConst,
				Assets:    []assetInfo{},
			}
			for _, a := range s.Assets {
				info.Assets = append(info.Assets, assetInfo{
					Key:   a.Key(),
					Kind:  a.Kind(),
					Group: a.Group(),
					Deps:  a.Deps,
					File:  a.File,
				})
				listOutput.Total++
			}
			listOutput.Schemas = append(listOutput.Schemas, info)
		}
	}

	return r.JSON(listOutput)
}
