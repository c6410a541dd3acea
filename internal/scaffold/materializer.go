package scaffold

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aifstack-labs/aifgen/internal/naming"
	"github.com/aifstack-labs/aifgen/internal/template"
)

// packageMarker is the empty file that turns a generated directory into a
// package for the surrounding convention.
const packageMarker = "__init__.py"

// Materializer writes rendered artifacts into the fixed directory layout
// under one project package root.
type Materializer struct {
	root string
}

// NewMaterializer creates a materializer rooted at the project package
// directory (the directory holding the warehouse packages).
func NewMaterializer(root string) *Materializer {
	return &Materializer{root: root}
}

// Root returns the project package root.
func (m *Materializer) Root() string { return m.root }

// Path returns the absolute destination for an artifact kind.
func (m *Materializer) Path(kind template.Kind, ns naming.NameSet) (string, error) {
	rel, err := RelPath(kind, ns)
	if err != nil {
		return "", err
	}
	return filepath.Join(m.root, filepath.FromSlash(rel)), nil
}

// Materialize writes rendered content to the kind's destination. The
// destination directory chain is created as needed, each new package
// directory receiving an empty marker file. An existing destination fails
// with ErrPathCollision unless overwrite is set; overwriting with
// unchanged content leaves the file untouched (byte-identical output).
func (m *Materializer) Materialize(kind template.Kind, ns naming.NameSet, content string, overwrite bool) (string, error) {
	rel, err := RelPath(kind, ns)
	if err != nil {
		return "", err
	}
	return m.Write(rel, content, overwrite)
}

// Write places content at a path relative to the root, applying the same
// collision, marker, and atomicity rules as Materialize.
func (m *Materializer) Write(rel, content string, overwrite bool) (string, error) {
	dest := filepath.Join(m.root, filepath.FromSlash(rel))

	if prior, err := os.ReadFile(dest); err == nil {
		if !overwrite {
			return "", fmt.Errorf("%w: %s", ErrPathCollision, dest)
		}
		if bytes.Equal(prior, []byte(content)) {
			return dest, nil
		}
	} else if !os.IsNotExist(err) {
		return "", err
	}

	if err := m.ensureDirs(rel); err != nil {
		return "", err
	}
	return dest, writeFileAtomic(dest, []byte(content))
}

// EnsureDir creates a directory chain (and its package markers) without
// writing a file. Used for the empty parts of the fixed schema tree.
func (m *Materializer) EnsureDir(rel string) error {
	if err := os.MkdirAll(filepath.Join(m.root, filepath.FromSlash(rel)), 0o750); err != nil {
		return err
	}
	return m.writeMarkers(m.dirMarkers(rel))
}

// MarkerPaths returns the package-marker files that materializing into
// rel would create, outermost first. Directories under resources/ are
// data directories and carry no marker.
func (m *Materializer) MarkerPaths(rel string) []string {
	return m.dirMarkers(path.Dir(rel))
}

// dirMarkers lists the marker files for a slash-separated directory
// chain below the root.
func (m *Materializer) dirMarkers(dir string) []string {
	var markers []string
	cur := m.root
	for _, part := range strings.Split(dir, "/") {
		if part == "." || part == "" {
			continue
		}
		if part == "resources" {
			break
		}
		cur = filepath.Join(cur, part)
		markers = append(markers, filepath.Join(cur, packageMarker))
	}
	return markers
}

// ensureDirs creates the directory chain for the file at rel and drops a
// package marker into every package directory that lacks one.
func (m *Materializer) ensureDirs(rel string) error {
	dir := path.Dir(rel)
	if err := os.MkdirAll(filepath.Join(m.root, filepath.FromSlash(dir)), 0o750); err != nil {
		return err
	}
	return m.writeMarkers(m.dirMarkers(dir))
}

func (m *Materializer) writeMarkers(markers []string) error {
	for _, marker := range markers {
		if _, err := os.Stat(marker); err == nil {
			continue
		} else if !os.IsNotExist(err) {
			return err
		}
		if err := writeFileAtomic(marker, nil); err != nil {
			return err
		}
	}
	return nil
}

// writeFileAtomic writes via a temporary file in the destination
// directory followed by a rename, so no partially written artifact is
// ever visible on any exit path.
func writeFileAtomic(dest string, content []byte) error {
	dir := filepath.Dir(dest)
	tmp, err := os.CreateTemp(dir, ".aifgen-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, dest); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}
