package scaffold

import (
	"errors"
	"fmt"

	"github.com/aifstack-labs/aifgen/internal/naming"
	"github.com/aifstack-labs/aifgen/internal/template"
)

// Errors reported by the materializer and registry updater.
var (
	// ErrPathCollision is returned when the destination already exists
	// and overwrite was not requested.
	ErrPathCollision = errors.New("path collision")

	// ErrRegistryParse is returned when an aggregation file does not
	// conform to the expected imports-then-export-list grammar.
	ErrRegistryParse = errors.New("registry parse error")
)

// AbortedError wraps the failure that terminated a generation request,
// recording the failing stage (artifact kind, or "registry <path>" for
// registration failures) and the identity tuple for diagnostics.
type AbortedError struct {
	Kind  template.Kind
	Names naming.NameSet
	Err   error
}

func (e *AbortedError) Error() string {
	return fmt.Sprintf("generation aborted at %s for %s/%s/%s: %v",
		e.Kind, e.Names.Warehouse.Snake, e.Names.Schema.Snake, e.assetName(), e.Err)
}

func (e *AbortedError) Unwrap() error { return e.Err }

func (e *AbortedError) assetName() string {
	if e.Names.Asset.IsZero() {
		return "SCHEMA"
	}
	return e.Names.Asset.Const
}
