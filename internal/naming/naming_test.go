package naming

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDerivesAllForms(t *testing.T) {
	tests := []struct {
		name      string
		project   string
		warehouse string
		schema    string
		asset     string
		want      NameSet
	}{
		{
			name:      "snake case inputs",
			project:   "ai_analytics",
			warehouse: "dwh_use_cases",
			schema:    "raw_kaggle",
			asset:     "kaggle_train",
			want: NameSet{
				Project:   Name{Const: "AI_ANALYTICS", Snake: "ai_analytics", Class: "AiAnalytics"},
				Warehouse: Name{Const: "DWH_USE_CASES", Snake: "dwh_use_cases", Class: "DwhUseCases"},
				Schema:    Name{Const: "RAW_KAGGLE", Snake: "raw_kaggle", Class: "RawKaggle"},
				Asset:     Name{Const: "KAGGLE_TRAIN", Snake: "kaggle_train", Class: "KaggleTrain"},
			},
		},
		{
			name:      "constant case inputs derive the same forms",
			project:   "AI_ANALYTICS",
			warehouse: "DWH_USE_CASES",
			schema:    "RAW_KAGGLE",
			asset:     "KAGGLE_TRAIN",
			want: NameSet{
				Project:   Name{Const: "AI_ANALYTICS", Snake: "ai_analytics", Class: "AiAnalytics"},
				Warehouse: Name{Const: "DWH_USE_CASES", Snake: "dwh_use_cases", Class: "DwhUseCases"},
				Schema:    Name{Const: "RAW_KAGGLE", Snake: "raw_kaggle", Class: "RawKaggle"},
				Asset:     Name{Const: "KAGGLE_TRAIN", Snake: "kaggle_train", Class: "KaggleTrain"},
			},
		},
		{
			name:      "asset name optional for schema level requests",
			project:   "ai_analytics",
			warehouse: "dwh",
			schema:    "core_sales",
			want: NameSet{
				Project:   Name{Const: "AI_ANALYTICS", Snake: "ai_analytics", Class: "AiAnalytics"},
				Warehouse: Name{Const: "DWH", Snake: "dwh", Class: "Dwh"},
				Schema:    Name{Const: "CORE_SALES", Snake: "core_sales", Class: "CoreSales"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.project, tt.warehouse, tt.schema, tt.asset)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveDeterministic(t *testing.T) {
	first, err := Resolve("ai_analytics", "dwh_use_cases", "raw_kaggle", "kaggle_train")
	require.NoError(t, err)
	second, err := Resolve("ai_analytics", "dwh_use_cases", "raw_kaggle", "kaggle_train")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestResolveRejectsInvalidIdentifiers(t *testing.T) {
	tests := []struct {
		name  string
		asset string
	}{
		{"leading digit", "9train"},
		{"dash", "kaggle-train"},
		{"space", "kaggle train"},
		{"dot", "kaggle.train"},
		{"reserved schema", "SCHEMA"},
		{"reserved schema lowercase", "schema"},
		{"reserved etl", "etl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve("ai_analytics", "dwh", "raw_kaggle", tt.asset)
			assert.ErrorIs(t, err, ErrInvalidIdentifier)
		})
	}
}

func TestResolveRejectsEmptyNames(t *testing.T) {
	_, err := Resolve("", "dwh", "raw_kaggle", "")
	assert.ErrorIs(t, err, ErrInvalidIdentifier)

	_, err = Resolve("ai_analytics", "", "raw_kaggle", "")
	assert.ErrorIs(t, err, ErrInvalidIdentifier)

	_, err = Resolve("ai_analytics", "dwh", "", "")
	assert.ErrorIs(t, err, ErrInvalidIdentifier)
}

func TestReservedWordsAllowedOutsideAssets(t *testing.T) {
	// SCHEMA and ETL are reserved for asset names only.
	_, err := Resolve("ai_analytics", "etl", "raw_schema", "")
	assert.NoError(t, err)
}

func TestOrchestratorMetadata(t *testing.T) {
	ns, err := Resolve("ai_analytics", "DWH_USE_CASES", "raw_kaggle", "")
	require.NoError(t, err)

	assert.Equal(t, []string{"DWH_USE_CASES", "RAW_KAGGLE"}, ns.KeyPrefix())
	assert.Equal(t, "DWH_USE_CASES_RAW_KAGGLE", ns.GroupName())
	assert.Equal(t, []string{"DWH_USE_CASES", "RAW_KAGGLE", "SCHEMA"}, ns.AssetKey())
}

func TestAssetKeyWithAsset(t *testing.T) {
	ns, err := Resolve("ai_analytics", "dwh_use_cases", "raw_kaggle", "kaggle_train")
	require.NoError(t, err)

	assert.Equal(t, []string{"DWH_USE_CASES", "RAW_KAGGLE", "KAGGLE_TRAIN"}, ns.AssetKey())
	assert.Equal(t, "KaggleTrainETL", ns.EtlClassName())
}

func TestLayer(t *testing.T) {
	tests := []struct {
		schema string
		want   string
	}{
		{"stg_files", "stg"},
		{"raw_kaggle", "raw"},
		{"pre_clean", "pre"},
		{"int_joined", "int"},
		{"core_sales", "core"},
		{"app_reporting", "app"},
		{"kaggle", ""},
		{"rawdata", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, LayerOf(tt.schema), "schema %s", tt.schema)
	}
}

func TestResolveNameValidatesSingleIdentifier(t *testing.T) {
	n, err := ResolveName("project", "AiAnalytics")
	require.NoError(t, err)
	assert.Equal(t, "ai_analytics", n.Snake)

	_, err = ResolveName("project", "my-project")
	var invalid error = ErrInvalidIdentifier
	assert.True(t, errors.Is(err, invalid))
}
