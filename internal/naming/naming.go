// Package naming derives every casing variant required by the AIF
// conventions from a single identity tuple and validates the inputs
// against the convention rules.
package naming

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-openapi/inflect"
)

// ErrInvalidIdentifier is returned when an input name violates the
// identifier rules (charset, leading digit, reserved word).
var ErrInvalidIdentifier = errors.New("invalid identifier")

// Reserved asset names. The schema-creation asset is always called SCHEMA
// and the _ETL suffix is appended by the etl-asset kind, so neither may be
// supplied as a user asset name.
var reservedAssetNames = map[string]bool{
	"SCHEMA": true,
	"ETL":    true,
}

// Layer prefixes for schema names, ordered from landing to application.
var layerPrefixes = []string{"stg", "raw", "pre", "int", "core", "app"}

var identPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Name holds the derived casing forms of one identifier. All three forms
// are produced by a single deterministic transform of the input; callers
// never spell a variant independently.
type Name struct {
	Const string // UPPER_SNAKE, used for constants and asset keys
	Snake string // lower_snake, used for directories and file names
	Class string // PascalCase, used for generated class names
}

// IsZero reports whether the name was not supplied.
func (n Name) IsZero() bool { return n.Snake == "" }

// NameSet is the resolved form of an identity tuple.
type NameSet struct {
	Project   Name
	Warehouse Name
	Schema    Name
	Asset     Name // zero for schema-level requests
}

// Resolve validates the identity tuple and derives all casing variants.
// The asset name may be empty for schema-level requests. Resolution is
// deterministic and carries no hidden state.
func Resolve(project, warehouse, schema, asset string) (NameSet, error) {
	var ns NameSet
	var err error

	if ns.Project, err = deriveName("project", project); err != nil {
		return NameSet{}, err
	}
	if ns.Warehouse, err = deriveName("warehouse", warehouse); err != nil {
		return NameSet{}, err
	}
	if ns.Schema, err = deriveName("schema", schema); err != nil {
		return NameSet{}, err
	}
	if asset != "" {
		if ns.Asset, err = deriveName("asset", asset); err != nil {
			return NameSet{}, err
		}
		if reservedAssetNames[ns.Asset.Const] {
			return NameSet{}, fmt.Errorf("%w: asset name %q is reserved", ErrInvalidIdentifier, asset)
		}
	}

	return ns, nil
}

// ResolveName validates a single identifier outside a full identity
// tuple, such as the project name during init. The field name is used in
// error messages.
func ResolveName(field, raw string) (Name, error) {
	return deriveName(field, raw)
}

// deriveName validates a raw identifier and derives its casing forms.
func deriveName(field, raw string) (Name, error) {
	if raw == "" {
		return Name{}, fmt.Errorf("%w: %s name is empty", ErrInvalidIdentifier, field)
	}
	if !identPattern.MatchString(raw) {
		if raw[0] >= '0' && raw[0] <= '9' {
			return Name{}, fmt.Errorf("%w: %s name %q starts with a digit", ErrInvalidIdentifier, field, raw)
		}
		return Name{}, fmt.Errorf("%w: %s name %q contains characters outside [a-zA-Z0-9_]", ErrInvalidIdentifier, field, raw)
	}

	snake := strings.ToLower(inflect.Underscore(raw))
	return Name{
		Const: strings.ToUpper(snake),
		Snake: snake,
		Class: inflect.Camelize(snake),
	}, nil
}

// Layer returns the layer prefix of a schema name (stg, raw, pre, int,
// core, app) or the empty string when the name carries none.
func Layer(schema Name) string { return LayerOf(schema.Snake) }

// LayerOf is Layer for a snake-form schema name that was never resolved,
// such as a directory name found during discovery.
func LayerOf(schema string) string {
	for _, p := range layerPrefixes {
		if strings.HasPrefix(schema, p+"_") {
			return p
		}
	}
	return ""
}

// Layers returns the recognized layer prefixes in landing-to-application
// order.
func Layers() []string {
	return append([]string(nil), layerPrefixes...)
}

// KeyPrefix returns the orchestrator asset key prefix [WAREHOUSE, SCHEMA].
func (ns NameSet) KeyPrefix() []string {
	return []string{ns.Warehouse.Const, ns.Schema.Const}
}

// GroupName returns the orchestrator group name WAREHOUSE_SCHEMA.
func (ns NameSet) GroupName() string {
	return ns.Warehouse.Const + "_" + ns.Schema.Const
}

// AssetKey returns the full asset key [WAREHOUSE, SCHEMA, ASSET].
// For schema-level requests the asset component is the fixed name SCHEMA.
func (ns NameSet) AssetKey() []string {
	name := "SCHEMA"
	if !ns.Asset.IsZero() {
		name = ns.Asset.Const
	}
	return append(ns.KeyPrefix(), name)
}

// EtlClassName returns the generated ETL class name for the asset.
func (ns NameSet) EtlClassName() string {
	return ns.Asset.Class + "ETL"
}
