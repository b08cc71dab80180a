// Package contrib — structured-embed contributor.
// Builds the structured JSON embedding of a document from its canonical
// markdown: sections, headings, links, and structure counts, plus the
// markdown itself as a sidecar for tooling that prefers plain text.
package contrib

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/dhruv-naik/nbweave/core"
	"github.com/dhruv-naik/nbweave/core/output"
)

// EmbedDocument is the JSON shape of a structured embed.
type EmbedDocument struct {
	Source   string         `json:"source"`
	Title    string         `json:"title"`
	Token    string         `json:"token"`
	Text     string         `json:"text"`
	Markdown string         `json:"markdown"`
	Sections []Section      `json:"sections"`
	Headings []Heading      `json:"headings"`
	Links    []Link         `json:"links"`
	Counts   StructureCount `json:"counts"`
}

// StructureCount summarizes the structural elements of the document.
type StructureCount struct {
	CodeBlocks int `json:"code_blocks"`
	Tables     int `json:"tables"`
	Lists      int `json:"lists"`
}

// EmbedContributor produces the structured-embed rendering.
type EmbedContributor struct {
	writer *output.Writer
}

// NewEmbedContributor creates an EmbedContributor.
func NewEmbedContributor() *EmbedContributor {
	return &EmbedContributor{writer: output.NewWriter()}
}

// Resolve computes the embed's planned locations without writing them.
func (c *EmbedContributor) Resolve(source, token string, executed *core.ExecutedDoc, meta core.NotebookMetadata, outputFile string) (*core.ResolvedNotebook, error) {
	file, sidecar := c.names(source, outputFile)
	resolved := &core.ResolvedNotebook{
		File:       file,
		Supporting: []string{filepath.Join(filepath.Dir(source), sidecar)},
	}
	if executed != nil {
		resolved.ResourceFiles = executed.ResourceFiles
	}
	return resolved, nil
}

// Render writes the embed JSON and its markdown sidecar next to the source.
func (c *EmbedContributor) Render(ctx context.Context, req core.RenderRequest) (*core.RenderedFile, error) {
	if req.Executed == nil {
		return nil, fmt.Errorf("structured embed requires an executed document for %s", req.Source)
	}

	md := req.Executed.Markdown
	headings := extractHeadings(md)

	doc := EmbedDocument{
		Source:   req.Source,
		Title:    req.Executed.Title,
		Token:    req.Token,
		Text:     stripMarkdown(md),
		Markdown: md,
		Sections: buildSections(md, headings),
		Headings: headings,
		Links:    extractLinks(md),
		Counts: StructureCount{
			CodeBlocks: countCodeBlocks(md),
			Tables:     countTables(md),
			Lists:      countLists(md),
		},
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling embed JSON: %w", err)
	}

	dir := filepath.Dir(req.Source)
	file, sidecar := c.names(req.Source, req.OutputFile)

	if _, err := c.writer.Write(filepath.Join(dir, file), data); err != nil {
		return nil, err
	}
	sidecarPath, err := c.writer.Write(filepath.Join(dir, sidecar), []byte(md))
	if err != nil {
		return nil, err
	}

	req.Services.Logger().Debug("wrote structured embed", "source", req.Source, "file", file, "sections", len(doc.Sections))
	return &core.RenderedFile{
		File:          file,
		Supporting:    []string{sidecarPath},
		ResourceFiles: req.Executed.ResourceFiles,
	}, nil
}

func (c *EmbedContributor) names(source, outputFile string) (file, sidecar string) {
	stem := output.Stem(source)
	file = outputFile
	if file == "" {
		file = stem + ".embed.json"
	}
	return file, stem + ".embed.md"
}
