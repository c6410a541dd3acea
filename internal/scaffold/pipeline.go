package scaffold

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aifstack-labs/aifgen/internal/naming"
	"github.com/aifstack-labs/aifgen/internal/template"
)

// Step is one artifact to materialize within a generation request.
type Step struct {
	Kind     template.Kind
	Bindings map[string]string
}

// Registration is one aggregation-file update within a request.
type Registration struct {
	RegistryRel string // registry path relative to the package root
	Entry       Entry
}

// Result lists what a completed request touched.
type Result struct {
	Written    []string
	Registered []string
}

// Pipeline runs the linear resolve, render, write, register sequence for
// one request. The catalog and materializer are passed in once and shared
// by every step; there are no process-wide singletons.
type Pipeline struct {
	catalog *template.Catalog
	mat     *Materializer
	logger  *slog.Logger
}

// NewPipeline creates a pipeline over a catalog and materializer.
func NewPipeline(catalog *template.Catalog, mat *Materializer, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Pipeline{catalog: catalog, mat: mat, logger: logger}
}

// Run executes all steps and registrations for one request. On any
// failure the already-touched files are restored to their pre-request
// state and the error is wrapped in an AbortedError carrying the failing
// kind and the identity tuple. Failures are deterministic input or state
// problems, so nothing is retried.
func (p *Pipeline) Run(ns naming.NameSet, steps []Step, regs []Registration, overwrite bool) (*Result, error) {
	j := &journal{}
	result := &Result{}

	abort := func(kind template.Kind, err error) (*Result, error) {
		j.rollback(p.logger)
		return nil, &AbortedError{Kind: kind, Names: ns, Err: err}
	}

	for _, step := range steps {
		tmpl, err := p.catalog.Get(step.Kind)
		if err != nil {
			return abort(step.Kind, err)
		}
		content, err := tmpl.Render(step.Bindings)
		if err != nil {
			return abort(step.Kind, err)
		}

		rel, err := RelPath(step.Kind, ns)
		if err != nil {
			return abort(step.Kind, err)
		}
		j.snapshot(filepath.Join(p.mat.Root(), filepath.FromSlash(rel)))
		for _, marker := range p.mat.MarkerPaths(rel) {
			j.snapshot(marker)
		}

		dest, err := p.mat.Materialize(step.Kind, ns, content, overwrite)
		if err != nil {
			return abort(step.Kind, err)
		}
		p.logger.Debug("materialized artifact", "kind", string(step.Kind), "path", dest)
		result.Written = append(result.Written, dest)
	}

	for _, reg := range regs {
		path := filepath.Join(p.mat.Root(), filepath.FromSlash(reg.RegistryRel))
		j.snapshot(path)
		res, err := Register(path, reg.Entry)
		if err != nil {
			// Registrations have no artifact kind; name the registry so
			// the diagnostic still says which stage failed.
			return abort(template.Kind("registry "+reg.RegistryRel), err)
		}
		if res.Changed {
			p.logger.Debug("updated registry", "path", path, "export", reg.Entry.Export)
			result.Registered = append(result.Registered, path)
		}
	}

	return result, nil
}

// journal records the pre-request state of every file a request touches
// so a later-stage failure can restore it.
type journalEntry struct {
	path    string
	existed bool
	prior   []byte
}

type journal struct {
	entries []journalEntry
	seen    map[string]bool
}

// snapshot records a file's current state once; later snapshots of the
// same path keep the original.
func (j *journal) snapshot(path string) {
	if j.seen == nil {
		j.seen = make(map[string]bool)
	}
	if j.seen[path] {
		return
	}
	j.seen[path] = true

	prior, err := os.ReadFile(path)
	if err != nil {
		j.entries = append(j.entries, journalEntry{path: path})
		return
	}
	j.entries = append(j.entries, journalEntry{path: path, existed: true, prior: prior})
}

// rollback restores snapshots in reverse order, deleting files that did
// not exist before the request and pruning directories left empty.
func (j *journal) rollback(logger *slog.Logger) {
	for i := len(j.entries) - 1; i >= 0; i-- {
		e := j.entries[i]
		if e.existed {
			if err := writeFileAtomic(e.path, e.prior); err != nil {
				logger.Warn("rollback failed to restore file", "path", e.path, "error", err)
			}
			continue
		}
		if err := os.Remove(e.path); err != nil && !os.IsNotExist(err) {
			logger.Warn("rollback failed to remove file", "path", e.path, "error", err)
			continue
		}
		// Prune directories the request created; Remove refuses
		// non-empty directories, which ends the walk.
		dir := filepath.Dir(e.path)
		for os.Remove(dir) == nil {
			dir = filepath.Dir(dir)
		}
	}
}
