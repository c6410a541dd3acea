package commands

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aifstack-labs/aifgen/internal/cli/config"
	"github.com/aifstack-labs/aifgen/internal/cli/testutil"
	"github.com/aifstack-labs/aifgen/internal/template"
)

// newTestContext builds a CommandContext over a temporary package root
// with captured output.
func newTestContext(t *testing.T, packageDir string) (*CommandContext, *testutil.TestRenderer) {
	t.Helper()

	catalog, err := template.NewCatalog()
	require.NoError(t, err)

	r := testutil.NewTestRendererMarkdown()
	ctx := &CommandContext{
		Cfg: &config.Config{
			ProjectName:  "ai_analytics",
			PackageDir:   packageDir,
			Environment:  "dev",
			OutputFormat: "markdown",
			ProjectRoot:  packageDir,
		},
		Logger:   slog.New(slog.DiscardHandler),
		Renderer: r.Renderer,
		Catalog:  catalog,
	}
	return ctx, r
}

func readTreeFile(t *testing.T, root string, parts ...string) string {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join(root, filepath.Join(parts...)))
	require.NoError(t, err)
	return string(raw)
}

func TestRunInit(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "ai_analytics")
	ctx, r := newTestContext(t, dir)

	require.NoError(t, runInit(ctx, dir, "", false))

	cfg := readTreeFile(t, dir, "aifgen.yaml")
	assert.Contains(t, cfg, "project_name: ai_analytics")
	assert.Contains(t, cfg, "environment: dev")
	assert.Contains(t, cfg, "aif/ai_analytics/resources/config/{ENV}/dwh.yaml")

	defs := readTreeFile(t, dir, "definitions.py")
	assert.Contains(t, defs, "DEFINITIONS: list[DagsterSchemaDefinitions] = []")

	testutil.AssertContains(t, r.Output(), "aifgen.yaml")
	testutil.AssertContains(t, r.Output(), "initialized")
}

func TestRunInitRefusesExistingConfig(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	ctx, _ := newTestContext(t, dir)

	err := runInit(ctx, dir, "ai_analytics", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--force")

	require.NoError(t, runInit(ctx, dir, "ai_analytics", true))
}

func TestRunInitRejectsInvalidProjectName(t *testing.T) {
	dir := t.TempDir()
	ctx, _ := newTestContext(t, dir)

	err := runInit(ctx, dir, "my project!", false)
	require.Error(t, err)
}

func TestRunNewSchema(t *testing.T) {
	root := t.TempDir()
	ctx, _ := newTestContext(t, root)

	err := runNewSchema(ctx, "dwh_use_cases", "raw_kaggle", newOptions{comment: "Raw Kaggle data."})
	require.NoError(t, err)

	// Registries are created on demand and the schema registered in both.
	assert.Contains(t, readTreeFile(t, root, "definitions.py"),
		"DWH_USE_CASES_RAW_KAGGLE_DEFINITION")
	assert.Contains(t, readTreeFile(t, root, "dwh_use_cases", "definitions.py"),
		"RAW_KAGGLE_DEFINITION")

	init := readTreeFile(t, root, "dwh_use_cases", "raw_kaggle", "__init__.py")
	assert.Contains(t, init, `DWH_NAME = "DWH_USE_CASES"`)
	assert.Contains(t, init, `SCHEMA_NAME = "RAW_KAGGLE"`)

	assert.Contains(t, readTreeFile(t, root, "dwh_use_cases", "raw_kaggle", "wf", "__init__.py"),
		`__all__ = ["asset_schema"]`)

	// The fixed directory tree exists even where no artifact landed.
	for _, dir := range []string{
		filepath.Join("dwh_use_cases", "raw_kaggle", "src"),
		filepath.Join("dwh_use_cases", "raw_kaggle", "resources", "sql", "dql"),
		filepath.Join("dwh_use_cases", "raw_kaggle", "test"),
	} {
		info, err := os.Stat(filepath.Join(root, dir))
		require.NoError(t, err, dir)
		assert.True(t, info.IsDir())
	}
}

func TestRunNewSchemaSecondSchema(t *testing.T) {
	root := t.TempDir()
	ctx, _ := newTestContext(t, root)

	require.NoError(t, runNewSchema(ctx, "dwh_use_cases", "raw_kaggle", newOptions{}))
	require.NoError(t, runNewSchema(ctx, "dwh_use_cases", "core_sales", newOptions{}))

	// Both schemas land in the grown registries.
	whDefs := readTreeFile(t, root, "dwh_use_cases", "definitions.py")
	assert.Contains(t, whDefs, "RAW_KAGGLE_DEFINITION,")
	assert.Contains(t, whDefs, "CORE_SALES_DEFINITION,")

	projDefs := readTreeFile(t, root, "definitions.py")
	assert.Contains(t, projDefs, "DWH_USE_CASES_RAW_KAGGLE_DEFINITION,")
	assert.Contains(t, projDefs, "DWH_USE_CASES_CORE_SALES_DEFINITION,")

	require.NoError(t, runCheck(ctx, root, "warning"))
}

func TestRunNewSchemaCollision(t *testing.T) {
	root := t.TempDir()
	ctx, _ := newTestContext(t, root)

	require.NoError(t, runNewSchema(ctx, "dwh_use_cases", "raw_kaggle", newOptions{}))
	err := runNewSchema(ctx, "dwh_use_cases", "raw_kaggle", newOptions{})
	require.Error(t, err)
}

func TestRunNewTableAfterSchema(t *testing.T) {
	root := t.TempDir()
	ctx, _ := newTestContext(t, root)

	require.NoError(t, runNewSchema(ctx, "dwh_use_cases", "raw_kaggle", newOptions{}))
	err := runNewTable(ctx, "dwh_use_cases", "raw_kaggle", "kaggle_train",
		newOptions{description: "Training data"})
	require.NoError(t, err)

	asset := readTreeFile(t, root, "dwh_use_cases", "raw_kaggle", "wf", "asset_kaggle_train.py")
	assert.Contains(t, asset, `name="KAGGLE_TRAIN"`)
	assert.Contains(t, asset, `description="Training data"`)

	assert.Contains(t, readTreeFile(t, root, "dwh_use_cases", "raw_kaggle", "wf", "__init__.py"),
		`"asset_kaggle_train"`)

	ddl := readTreeFile(t, root, "dwh_use_cases", "raw_kaggle", "resources", "sql", "ddl", "kaggle_train.sql")
	assert.Contains(t, ddl, "-- AIF: NEW_STATEMENT --")
}

func TestRunNewTableWithoutSchema(t *testing.T) {
	root := t.TempDir()
	ctx, r := newTestContext(t, root)

	// Generation succeeds but the registry update is skipped and the
	// checker reports the unresolved schema dependency.
	err := runNewTable(ctx, "dwh_use_cases", "raw_kaggle", "kaggle_train", newOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "violation")

	testutil.AssertContains(t, r.ErrorOutput(), "not initialized")
	testutil.AssertContains(t, r.ErrorOutput(), "unresolved dependency: SCHEMA")

	// The files stay on disk for the user to fix up.
	_, statErr := os.Stat(filepath.Join(root, "dwh_use_cases", "raw_kaggle", "wf", "asset_kaggle_train.py"))
	assert.NoError(t, statErr)
}

func TestRunNewETL(t *testing.T) {
	root := t.TempDir()
	ctx, _ := newTestContext(t, root)

	require.NoError(t, runNewSchema(ctx, "dwh_use_cases", "raw_kaggle", newOptions{}))
	require.NoError(t, runNewTable(ctx, "dwh_use_cases", "raw_kaggle", "kaggle_train", newOptions{}))
	err := runNewETL(ctx, "dwh_use_cases", "raw_kaggle", "kaggle_train",
		newOptions{dataSource: "Kaggle API"})
	require.NoError(t, err)

	etl := readTreeFile(t, root, "dwh_use_cases", "raw_kaggle", "wf", "asset_kaggle_train_etl.py")
	assert.Contains(t, etl, `name="KAGGLE_TRAIN_ETL"`)
	assert.Contains(t, etl, "KaggleTrainETL")

	src := readTreeFile(t, root, "dwh_use_cases", "raw_kaggle", "src", "kaggle_train_etl.py")
	assert.Contains(t, src, "Kaggle API")

	dml := readTreeFile(t, root, "dwh_use_cases", "raw_kaggle", "resources", "sql", "dml", "kaggle_train_insert.sql")
	assert.Contains(t, dml, "{STAGING_TABLE}")
}

func TestRunCheckCleanTree(t *testing.T) {
	root := t.TempDir()
	ctx, r := newTestContext(t, root)

	require.NoError(t, runNewSchema(ctx, "dwh_use_cases", "raw_kaggle", newOptions{}))
	require.NoError(t, runCheck(ctx, root, "warning"))
	testutil.AssertContains(t, r.Output(), "No violations")
}

func TestRunCheckReportsViolations(t *testing.T) {
	root := t.TempDir()
	ctx, r := newTestContext(t, root)

	dir := filepath.Join(root, "dwh_use_cases", "kaggle", "wf")
	require.NoError(t, os.MkdirAll(dir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "asset_schema.py"), []byte("pass\n"), 0o600))

	// The missing layer prefix is a warning; at error severity the
	// command passes, at warning severity it fails.
	require.NoError(t, runCheck(ctx, root, "error"))
	err := runCheck(ctx, root, "warning")
	require.Error(t, err)
	testutil.AssertContains(t, r.ErrorOutput(), "layer prefix")
}

func TestRunCheckInvalidSeverity(t *testing.T) {
	ctx, _ := newTestContext(t, t.TempDir())
	err := runCheck(ctx, t.TempDir(), "fatal")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid severity")
}

func TestRunCheckJSON(t *testing.T) {
	root := t.TempDir()
	catalog, err := template.NewCatalog()
	require.NoError(t, err)

	r := testutil.NewTestRendererJSON()
	ctx := &CommandContext{
		Cfg:      &config.Config{ProjectName: "ai_analytics", PackageDir: root},
		Logger:   slog.New(slog.DiscardHandler),
		Renderer: r.Renderer,
		Catalog:  catalog,
	}

	require.NoError(t, runCheck(ctx, root, "warning"))
	assert.JSONEq(t, `{"violations": [], "total": 0}`, r.Output())
}

func TestRunList(t *testing.T) {
	root := t.TempDir()
	ctx, r := newTestContext(t, root)

	require.NoError(t, runNewSchema(ctx, "dwh_use_cases", "raw_kaggle", newOptions{}))
	require.NoError(t, runNewTable(ctx, "dwh_use_cases", "raw_kaggle", "kaggle_train", newOptions{}))
	r.Reset()

	require.NoError(t, runList(ctx))
	out := r.Output()
	testutil.AssertContains(t, out, "Assets (2 total)")
	testutil.AssertContains(t, out, "DWH_USE_CASES/RAW_KAGGLE/KAGGLE_TRAIN")
	testutil.AssertContains(t, out, "DWH_USE_CASES/RAW_KAGGLE/SCHEMA")
	testutil.AssertNoANSI(t, out)
}

func TestRenderCommand(t *testing.T) {
	t.Setenv("AIFGEN_PROJECT_NAME", "ai_analytics")

	var out, errOut bytes.Buffer
	cmd := NewRenderCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{"sql-ddl",
		"--warehouse", "dwh_use_cases",
		"--schema", "raw_kaggle",
		"--asset", "kaggle_train"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "CREATE TABLE IF NOT EXISTS raw_kaggle.kaggle_train")
	assert.Contains(t, out.String(), "-- AIF: NEW_STATEMENT --")
	assert.NotContains(t, out.String(), "<")
}

func TestRenderCommandRequiresAssetForAssetKinds(t *testing.T) {
	t.Setenv("AIFGEN_PROJECT_NAME", "ai_analytics")

	for _, kind := range []string{"sql-ddl", "etl-source", "db-object-asset"} {
		cmd := NewRenderCommand()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{kind, "--warehouse", "dwh_use_cases", "--schema", "raw_kaggle"})

		err := cmd.Execute()
		require.Error(t, err, "kind %s", kind)
		assert.Contains(t, err.Error(), "asset")
	}
}

func TestRenderCommandUnknownKind(t *testing.T) {
	cmd := NewRenderCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"nonsense", "--warehouse", "dwh", "--schema", "raw_x"})

	assert.Error(t, cmd.Execute())
}

func TestRunListEmptyTree(t *testing.T) {
	ctx, r := newTestContext(t, t.TempDir())
	require.NoError(t, runList(ctx))
	testutil.AssertContains(t, r.Output(), "Assets (0 total)")
}
