package commands

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/aifstack-labs/aifgen/internal/cli/config"
	"github.com/aifstack-labs/aifgen/internal/cli/output"
	"github.com/aifstack-labs/aifgen/internal/scaffold"
	"github.com/aifstack-labs/aifgen/internal/template"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
	Catalog  *template.Catalog
}

// NewCommandContext creates a CommandContext from the command's loaded
// configuration and context.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	catalog, err := template.NewCatalog()
	if err != nil {
		return nil, err
	}

	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
		Catalog:  catalog,
	}, nil
}

// Pipeline builds a generation pipeline rooted at the configured package
// directory.
func (c *CommandContext) Pipeline() *scaffold.Pipeline {
	mat := scaffold.NewMaterializer(c.Cfg.PackageDir)
	return scaffold.NewPipeline(c.Catalog, mat, c.Logger)
}

// Helper functions shared across commands

// getConfig returns the current configuration. It uses
// config.GetCurrentConfig() if available, otherwise falls back to
// environment variables.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	cwd, _ := os.Getwd()
	verbose, _ := strconv.ParseBool(os.Getenv("AIFGEN_VERBOSE"))
	return &config.Config{
		ProjectName:  getEnvOrDefault("AIFGEN_PROJECT_NAME", "aif"),
		PackageDir:   getEnvOrDefault("AIFGEN_PACKAGE_DIR", cwd),
		Environment:  getEnvOrDefault("AIFGEN_ENVIRONMENT", config.DefaultEnv),
		Verbose:      verbose,
		OutputFormat: os.Getenv("AIFGEN_OUTPUT"),
		ProjectRoot:  cwd,
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
