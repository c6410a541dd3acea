package scaffold

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRegistry(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "definitions.py")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(raw)
}

const warehouseDefs = `"""Main entry point for the DWH_USE_CASES database."""

import dagster as dg

from aif.common.dagster.util import DagsterSchemaDefinitions, create_main_defs

DEFINITIONS: list[DagsterSchemaDefinitions] = []

global_defs: dg.Definitions = create_main_defs(definitions=DEFINITIONS)
`

func TestRegisterIntoEmptyList(t *testing.T) {
	path := writeRegistry(t, warehouseDefs)

	entry := Entry{
		ImportLine: "from aif.ai_analytics.dwh_use_cases.raw_kaggle import SCHEMA_DEFINITION as RAW_KAGGLE_DEFINITION",
		Export:     "RAW_KAGGLE_DEFINITION",
	}
	res, err := Register(path, entry)
	require.NoError(t, err)
	assert.True(t, res.Changed)

	got := readFile(t, path)
	assert.Contains(t, got, entry.ImportLine)
	assert.Contains(t, got, "DEFINITIONS: list[DagsterSchemaDefinitions] = [\n    RAW_KAGGLE_DEFINITION,\n]")
}

func TestRegisterAppendsWithoutReordering(t *testing.T) {
	path := writeRegistry(t, warehouseDefs)

	first := Entry{
		ImportLine: "from aif.ai_analytics.dwh_use_cases.raw_kaggle import SCHEMA_DEFINITION as RAW_KAGGLE_DEFINITION",
		Export:     "RAW_KAGGLE_DEFINITION",
	}
	second := Entry{
		ImportLine: "from aif.ai_analytics.dwh_use_cases.core_sales import SCHEMA_DEFINITION as CORE_SALES_DEFINITION",
		Export:     "CORE_SALES_DEFINITION",
	}
	_, err := Register(path, first)
	require.NoError(t, err)
	_, err = Register(path, second)
	require.NoError(t, err)

	got := readFile(t, path)
	assert.Contains(t, got, "    RAW_KAGGLE_DEFINITION,\n    CORE_SALES_DEFINITION,\n]")

	// Prior imports keep their position; the new one lands after them.
	assert.Less(t,
		indexOf(t, got, first.ImportLine),
		indexOf(t, got, second.ImportLine))
}

func TestRegisterIdempotent(t *testing.T) {
	path := writeRegistry(t, warehouseDefs)

	entry := Entry{
		ImportLine: "from aif.ai_analytics.dwh_use_cases.raw_kaggle import SCHEMA_DEFINITION as RAW_KAGGLE_DEFINITION",
		Export:     "RAW_KAGGLE_DEFINITION",
	}
	_, err := Register(path, entry)
	require.NoError(t, err)
	after := readFile(t, path)

	res, err := Register(path, entry)
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Equal(t, after, readFile(t, path), "second register must leave the file byte-identical")
}

func TestRegisterGrownAnnotatedListIdempotent(t *testing.T) {
	path := writeRegistry(t, warehouseDefs)

	entries := []Entry{
		{
			ImportLine: "from aif.ai_analytics.dwh_use_cases.raw_kaggle import SCHEMA_DEFINITION as RAW_KAGGLE_DEFINITION",
			Export:     "RAW_KAGGLE_DEFINITION",
		},
		{
			ImportLine: "from aif.ai_analytics.dwh_use_cases.core_sales import SCHEMA_DEFINITION as CORE_SALES_DEFINITION",
			Export:     "CORE_SALES_DEFINITION",
		},
	}

	// The annotated list grows from [] to the multi-line form on the
	// first entry; the second must append into the grown list, not
	// reparse the opener's type annotation as a close.
	for _, e := range entries {
		res, err := Register(path, e)
		require.NoError(t, err)
		assert.True(t, res.Changed)
	}

	got := readFile(t, path)
	assert.Contains(t, got,
		"DEFINITIONS: list[DagsterSchemaDefinitions] = [\n    RAW_KAGGLE_DEFINITION,\n    CORE_SALES_DEFINITION,\n]")

	// Re-registering both entries leaves the grown file byte-identical.
	for _, e := range entries {
		res, err := Register(path, e)
		require.NoError(t, err)
		assert.False(t, res.Changed, "entry %s registered twice", e.Export)
	}
	assert.Equal(t, got, readFile(t, path))
}

func TestRegisterQuotedExportIntoAllList(t *testing.T) {
	content := `"""Workflow module."""

from aif.ai_analytics.dwh_use_cases.raw_kaggle.wf.asset_schema import asset_schema

__all__ = ["asset_schema"]
`
	path := writeRegistry(t, content)

	entry := Entry{
		ImportLine: "from aif.ai_analytics.dwh_use_cases.raw_kaggle.wf.asset_kaggle_train import asset_kaggle_train",
		Export:     "asset_kaggle_train",
		Quoted:     true,
	}
	res, err := Register(path, entry)
	require.NoError(t, err)
	assert.True(t, res.Changed)

	got := readFile(t, path)
	assert.Contains(t, got, `__all__ = ["asset_schema", "asset_kaggle_train"]`)
	assert.Contains(t, got, entry.ImportLine)
}

func TestRegisterDetectsSubstringNames(t *testing.T) {
	content := `from aif.x.wf.asset_kaggle_train_etl import asset_kaggle_train_etl

__all__ = ["asset_kaggle_train_etl"]
`
	path := writeRegistry(t, content)

	// "asset_kaggle_train" is a substring of the existing export but a
	// different reference, so it must still be appended.
	entry := Entry{
		ImportLine: "from aif.x.wf.asset_kaggle_train import asset_kaggle_train",
		Export:     "asset_kaggle_train",
		Quoted:     true,
	}
	res, err := Register(path, entry)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Contains(t, readFile(t, path), `"asset_kaggle_train_etl", "asset_kaggle_train"`)
}

func TestRegisterParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no export list", "import dagster as dg\n"},
		{"unclosed list", "DEFINITIONS = [\n    A_DEFINITION,\n"},
		{"import after list", "DEFINITIONS = []\nimport dagster as dg\n"},
		{"multiple lists", "DEFINITIONS = []\nOTHERS = []\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeRegistry(t, tt.content)
			_, err := Register(path, Entry{ImportLine: "import x", Export: "X"})
			assert.ErrorIs(t, err, ErrRegistryParse)
		})
	}
}

func TestRegisterMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "definitions.py")
	_, err := Register(path, Entry{ImportLine: "import x", Export: "X"})
	assert.ErrorIs(t, err, ErrRegistryParse)
}

func indexOf(t *testing.T, s, sub string) int {
	t.Helper()
	idx := strings.Index(s, sub)
	require.GreaterOrEqual(t, idx, 0, "substring %q not found", sub)
	return idx
}
