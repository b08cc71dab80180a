// Package contrib — executed-snapshot contributor.
// Renders the canonical markdown into a paginated PDF snapshot of the
// executed output. Headings get variable font sizes; code blocks render in
// monospace with a light background. Images are not embedded.
package contrib

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/dhruv-naik/nbweave/core"
	"github.com/dhruv-naik/nbweave/core/output"
)

// SnapshotContributor produces the executed-snapshot rendering.
type SnapshotContributor struct {
	writer *output.Writer
}

// NewSnapshotContributor creates a SnapshotContributor.
func NewSnapshotContributor() *SnapshotContributor {
	return &SnapshotContributor{writer: output.NewWriter()}
}

// Resolve computes the snapshot's planned location without writing it.
// Snapshots own no supporting files.
func (c *SnapshotContributor) Resolve(source, token string, executed *core.ExecutedDoc, meta core.NotebookMetadata, outputFile string) (*core.ResolvedNotebook, error) {
	resolved := &core.ResolvedNotebook{File: c.name(source, outputFile)}
	if executed != nil {
		resolved.ResourceFiles = executed.ResourceFiles
	}
	return resolved, nil
}

// Render writes the PDF snapshot next to the source document.
func (c *SnapshotContributor) Render(ctx context.Context, req core.RenderRequest) (*core.RenderedFile, error) {
	if req.Executed == nil {
		return nil, fmt.Errorf("executed snapshot requires an executed document for %s", req.Source)
	}

	data, err := renderPDF(req.Executed.Title, req.Source, req.Executed.Markdown)
	if err != nil {
		return nil, fmt.Errorf("rendering snapshot PDF: %w", err)
	}

	file := c.name(req.Source, req.OutputFile)
	if _, err := c.writer.Write(filepath.Join(filepath.Dir(req.Source), file), data); err != nil {
		return nil, err
	}

	req.Services.Logger().Debug("wrote executed snapshot", "source", req.Source, "file", file, "bytes", len(data))
	return &core.RenderedFile{
		File:          file,
		ResourceFiles: req.Executed.ResourceFiles,
	}, nil
}

func (c *SnapshotContributor) name(source, outputFile string) string {
	if outputFile != "" {
		return outputFile
	}
	return output.Stem(source) + "-snapshot.pdf"
}

// renderPDF converts markdown into PDF bytes.
func renderPDF(title, source, markdown string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Helvetica", "B", 18)
		pdf.MultiCell(0, 8, title, "", "L", false)
		pdf.Ln(4)
	}

	pdf.SetFont("Helvetica", "I", 9)
	pdf.SetTextColor(100, 100, 100)
	pdf.MultiCell(0, 5, "Source: "+source, "", "L", false)
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(6)

	lines := strings.Split(markdown, "\n")
	inCodeBlock := false

	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inCodeBlock = !inCodeBlock
			pdf.Ln(2)
			continue
		}

		if inCodeBlock {
			pdf.SetFont("Courier", "", 9)
			pdf.SetFillColor(245, 245, 245)
			pdf.MultiCell(0, 4.5, line, "", "L", true)
			continue
		}

		if strings.TrimSpace(line) == "" {
			pdf.Ln(3)
			continue
		}

		if strings.HasPrefix(line, "#") {
			level := 0
			for _, ch := range line {
				if ch != '#' {
					break
				}
				level++
			}
			writeHeading(pdf, strings.TrimSpace(strings.TrimLeft(line, "# ")), level)
			continue
		}

		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") {
			pdf.SetFont("Helvetica", "", 10)
			pdf.MultiCell(0, 5, "• "+cleanInline(trimmed[2:]), "", "L", false)
			continue
		}
		if numberedRegex.MatchString(trimmed) {
			pdf.SetFont("Helvetica", "", 10)
			pdf.MultiCell(0, 5, cleanInline(trimmed), "", "L", false)
			continue
		}

		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, cleanInline(line), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeHeading sets the font size by heading level and writes text.
func writeHeading(pdf *gofpdf.Fpdf, text string, level int) {
	sizes := map[int]float64{1: 18, 2: 15, 3: 13, 4: 12, 5: 11, 6: 10}
	size, ok := sizes[level]
	if !ok {
		size = 10
	}
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", size)
	pdf.MultiCell(0, size*0.6, cleanInline(text), "", "L", false)
	pdf.Ln(2)
}
