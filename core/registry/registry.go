// Package registry tracks every notebook rendering produced during one run.
//
// The registry maps source documents to per-kind render records, keeps a
// preservation set of (source, kind) pairs exempt from cleanup, and mints a
// unique token for every contributor invocation. It is created once per run,
// drained by Cleanup, and discarded; it holds no state across runs.
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/dhruv-naik/nbweave/core"
)

// Registry is the notebook render registry. All state access is serialized
// behind a single mutex; contributor I/O happens outside the lock.
//
// Concurrent calls for distinct (source, kind) pairs never conflict.
// Concurrent calls for the same pair are last-writer-wins; callers that need
// determinism must serialize them. Cleanup must only be called after every
// in-flight render has returned.
type Registry struct {
	mu           sync.Mutex
	contributors map[core.RenderKind]core.Contributor
	records      map[string]*core.NotebookRecord
	preserved    map[string]map[core.RenderKind]bool
	tokenSeq     int

	remover core.FileRemover
	log     *slog.Logger
}

// New creates a Registry with the given contributor mapping. Every render
// kind the run will touch must be registered here; there is no runtime
// registration.
func New(contributors map[core.RenderKind]core.Contributor, remover core.FileRemover, log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}
	return &Registry{
		contributors: contributors,
		records:      make(map[string]*core.NotebookRecord),
		preserved:    make(map[string]map[core.RenderKind]bool),
		remover:      remover,
		log:          log,
	}
}

// Get returns the record for source, or nil if the source has never been
// touched. Pure lookup, no side effects.
func (r *Registry) Get(source string) *core.NotebookRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.records[source]
}

// Resolve delegates to the contributor for kind, forwarding a fresh token.
// If meta is non-nil it is attached to the (source, kind) record first.
// Resolve never records a RenderOutput; only Render does.
func (r *Registry) Resolve(source string, kind core.RenderKind, executed *core.ExecutedDoc, meta core.NotebookMetadata, outputFile string) (*core.ResolvedNotebook, error) {
	contrib, token, err := r.prepare(source, kind, meta)
	if err != nil {
		return nil, err
	}
	return contrib.Resolve(source, token, executed, meta, outputFile)
}

// Render delegates artifact production to the contributor for kind and
// records the result. The recorded output path is the source document's
// directory joined with the basename of the file the contributor returned.
// A re-render of the same (source, kind) fully replaces the previous output;
// the registry never references superseded files again.
// Returns the now-populated per-kind entry.
func (r *Registry) Render(ctx context.Context, source string, format string, kind core.RenderKind, executed *core.ExecutedDoc, services core.RenderServices, meta core.NotebookMetadata, outputFile string, project *core.Project) (*core.Rendering, error) {
	contrib, token, err := r.prepare(source, kind, meta)
	if err != nil {
		return nil, err
	}

	rendered, err := contrib.Render(ctx, core.RenderRequest{
		Source:     source,
		Format:     format,
		Token:      token,
		Executed:   executed,
		Services:   services,
		Metadata:   meta,
		OutputFile: outputFile,
		Project:    project,
	})
	if err != nil {
		// Contributor failures propagate unchanged; nothing is recorded.
		return nil, err
	}
	return r.record(source, kind, rendered, token)
}

// AddRendering records an output for (source, kind) directly, bypassing the
// contributor. Used by callers that already hold a produced artifact.
func (r *Registry) AddRendering(source string, kind core.RenderKind, output core.RenderOutput) *core.Rendering {
	r.mu.Lock()
	defer r.mu.Unlock()

	if output.Supporting == nil {
		output.Supporting = []string{}
	}
	rec := r.recordLocked(source)
	entry := r.renderingLocked(rec, kind)
	entry.Output = &output
	return entry
}

// RemoveRendering retracts a recorded output for (source, kind) without
// touching any file on disk. A missing record is a no-op.
func (r *Registry) RemoveRendering(source string, kind core.RenderKind) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[source]
	if !ok {
		return
	}
	if entry, ok := rec.Renderings[kind]; ok {
		entry.Output = nil
	}
}

// Preserve idempotently exempts (source, kind) from cleanup. Preservation is
// monotonic within a run; there is no un-preserve.
func (r *Registry) Preserve(source string, kind core.RenderKind) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.preserved[source]
	if !ok {
		set = make(map[core.RenderKind]bool)
		r.preserved[source] = set
	}
	set[kind] = true
}

// Preserved reports whether (source, kind) is exempt from cleanup.
func (r *Registry) Preserved(source string, kind core.RenderKind) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.preserved[source][kind]
}

// Cleanup deletes the output file and every supporting file of each recorded,
// non-preserved rendering. Deletions are best-effort: a missing file is
// success, since the contract is "ensure absence". Resource files are
// referenced, not owned, and are never deleted. Cleanup is idempotent and
// leaves the in-memory records untouched.
func (r *Registry) Cleanup() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, kind := range core.AllKinds {
		for source, rec := range r.records {
			if r.preserved[source][kind] {
				continue
			}
			entry, ok := rec.Renderings[kind]
			if !ok || entry.Output == nil {
				continue
			}
			r.removeArtifact(source, kind, entry.Output)
		}
	}
}

// NextToken mints a token unique within this registry's lifetime. Tokens let
// contributors name intermediate files without collisions; the registry
// attaches no meaning to them.
func (r *Registry) NextToken() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.nextTokenLocked()
}

// Sources returns every source path currently tracked.
func (r *Registry) Sources() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	sources := make([]string, 0, len(r.records))
	for source := range r.records {
		sources = append(sources, source)
	}
	return sources
}

// prepare attaches metadata, resolves the contributor for kind, and mints a
// token. An unregistered kind is a contract violation in the pipeline wiring
// and surfaces as ErrInternal; no registry entry is created for it.
func (r *Registry) prepare(source string, kind core.RenderKind, meta core.NotebookMetadata) (core.Contributor, string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contrib, ok := r.contributors[kind]
	if !ok {
		return nil, "", fmt.Errorf("no contributor registered for render kind %q: %w", kind, core.ErrInternal)
	}
	if meta != nil {
		rec := r.recordLocked(source)
		r.renderingLocked(rec, kind).Metadata = meta
	}
	return contrib, r.nextTokenLocked(), nil
}

// record stores a contributor result and re-reads it, failing fatally if the
// entry is not reachable afterwards.
func (r *Registry) record(source string, kind core.RenderKind, rendered *core.RenderedFile, token string) (*core.Rendering, error) {
	output := &core.RenderOutput{
		Path:          filepath.Join(filepath.Dir(source), filepath.Base(rendered.File)),
		Supporting:    rendered.Supporting,
		ResourceFiles: rendered.ResourceFiles,
	}
	if output.Supporting == nil {
		output.Supporting = []string{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rec := r.recordLocked(source)
	r.renderingLocked(rec, kind).Output = output

	got, ok := r.records[source].Renderings[kind]
	if !ok || got.Output == nil {
		return nil, fmt.Errorf("rendering for %s (%s) missing after render: %w", source, kind, core.ErrInternal)
	}

	r.log.Debug("recorded rendering",
		"source", source, "kind", string(kind), "output", output.Path,
		"supporting", len(output.Supporting), "token", token)
	return got, nil
}

func (r *Registry) recordLocked(source string) *core.NotebookRecord {
	rec, ok := r.records[source]
	if !ok {
		rec = &core.NotebookRecord{
			Source:     source,
			Renderings: make(map[core.RenderKind]*core.Rendering),
		}
		r.records[source] = rec
	}
	return rec
}

func (r *Registry) renderingLocked(rec *core.NotebookRecord, kind core.RenderKind) *core.Rendering {
	entry, ok := rec.Renderings[kind]
	if !ok {
		entry = &core.Rendering{}
		rec.Renderings[kind] = entry
	}
	return entry
}

func (r *Registry) nextTokenLocked() string {
	r.tokenSeq++
	return fmt.Sprintf("nb-%d", r.tokenSeq)
}

func (r *Registry) removeArtifact(source string, kind core.RenderKind, output *core.RenderOutput) {
	paths := append([]string{output.Path}, output.Supporting...)
	for _, path := range paths {
		if err := r.remover.RemoveIfExists(path); err != nil {
			r.log.Warn("cleanup failed to remove artifact file",
				"source", source, "kind", string(kind), "path", path, "error", err)
		}
	}

	// Supporting files may live in an artifact-owned directory such as
	// <stem>-preview_files. Once its files are gone the directory itself is
	// residue, so it goes too. The source's own directory is never emptied by
	// cleanup: the source document still lives there.
	outDir := filepath.Dir(output.Path)
	seen := make(map[string]bool)
	for _, path := range output.Supporting {
		dir := filepath.Dir(path)
		if dir == outDir || seen[dir] {
			continue
		}
		seen[dir] = true
		if err := r.remover.RemoveDirIfEmpty(dir); err != nil {
			r.log.Warn("cleanup failed to remove artifact directory",
				"source", source, "kind", string(kind), "path", dir, "error", err)
		}
	}
}
