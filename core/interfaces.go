// Package core defines the shared types and capability interfaces for nbweave.
// The render pipeline is split into small, testable collaborators: an executor
// that materializes a source document, one contributor per render kind, and a
// registry that tracks every artifact the contributors produce.
package core

import (
	"context"
	"errors"
	"log/slog"
)

// ErrInternal marks a contract violation inside the pipeline wiring:
// an unregistered render kind, or a render call that left no registry entry.
// Callers must treat it as fatal; it is never retried or recovered.
var ErrInternal = errors.New("internal fault")

// RenderKind identifies one of the derived renderings a source document
// can produce. The set is closed at build time.
type RenderKind string

const (
	// KindPreview is the cleaned standalone HTML preview.
	KindPreview RenderKind = "preview"

	// KindStructuredEmbed is the structured JSON embedding of the document.
	KindStructuredEmbed RenderKind = "structured-embed"

	// KindExecutedSnapshot is the paginated PDF snapshot of executed output.
	KindExecutedSnapshot RenderKind = "executed-snapshot"
)

// AllKinds lists every render kind in the order the pipeline produces them.
// The preview comes last so it can link to supplements that already exist.
var AllKinds = []RenderKind{KindStructuredEmbed, KindExecutedSnapshot, KindPreview}

// NotebookMetadata is opaque, contributor-defined metadata attached to a
// (source, kind) pair. The registry stores it without interpreting it.
type NotebookMetadata map[string]any

// ExecutedDoc is the already-executed representation of a source document,
// produced by the executor before any contributor runs.
type ExecutedDoc struct {
	SourcePath string // absolute path of the materialized source document
	Title      string
	HTML       string // executed HTML, noise stripped
	Markdown   string // canonical markdown derived from HTML

	// ResourceFiles are files the document references but no rendering owns
	// (e.g. downloaded images). Cleanup never deletes them.
	ResourceFiles []string
}

// RenderedFile describes what a contributor wrote to disk.
// File is a basename relative to the source document's directory.
type RenderedFile struct {
	File          string
	Supporting    []string
	ResourceFiles []string
}

// ResolvedNotebook is the output-shaped intermediate a contributor returns
// from Resolve: the locations a render would use, without final artifacts
// necessarily written.
type ResolvedNotebook struct {
	File          string
	Supporting    []string
	ResourceFiles []string
}

// RenderOutput is a recorded artifact: the output path plus the supporting
// files owned by it and the resource files referenced by it.
type RenderOutput struct {
	Path          string
	Supporting    []string
	ResourceFiles []string
}

// Rendering is the per-kind entry of a NotebookRecord.
type Rendering struct {
	Metadata NotebookMetadata
	Output   *RenderOutput
}

// NotebookRecord holds every rendering tracked for one source document.
// Records are created lazily the first time any operation touches a source.
type NotebookRecord struct {
	Source     string
	Renderings map[RenderKind]*Rendering
}

// RenderServices carries the run-scoped collaborators a contributor may use.
type RenderServices struct {
	Log *slog.Logger
}

// Logger returns the run logger, or the process default when none was set.
func (s RenderServices) Logger() *slog.Logger {
	if s.Log != nil {
		return s.Log
	}
	return slog.Default()
}

// Project describes the project a render run belongs to, when one exists.
type Project struct {
	Dir       string
	OutputDir string
}

// RenderRequest bundles the inputs to a contributor's Render call.
type RenderRequest struct {
	Source     string
	Format     string
	Token      string
	Executed   *ExecutedDoc
	Services   RenderServices
	Metadata   NotebookMetadata
	OutputFile string   // optional explicit output basename
	Project    *Project // optional
}

// Contributor produces the artifacts for exactly one render kind.
// Implementations write output and supporting files to disk during Render
// and return their locations; Resolve computes locations without committing
// final artifacts.
type Contributor interface {
	Resolve(source string, token string, executed *ExecutedDoc, meta NotebookMetadata, outputFile string) (*ResolvedNotebook, error)
	Render(ctx context.Context, req RenderRequest) (*RenderedFile, error)
}

// FileRemover is the cleanup collaborator: delete if present, no-op if absent.
type FileRemover interface {
	RemoveIfExists(path string) error
	RemoveDirIfEmpty(dir string) error
}

// Executor turns a source document (local path or URL) into its executed
// representation.
type Executor interface {
	Execute(ctx context.Context, source string) (*ExecutedDoc, error)
}
