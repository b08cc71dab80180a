// Package contrib — preview contributor.
// Produces a standalone HTML preview of the executed document: the content
// fragment sanitized with goquery, wrapped in a minimal page with its own
// stylesheet and links to whichever supplement renderings the run keeps.
package contrib

import (
	"context"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/dhruv-naik/nbweave/core"
	"github.com/dhruv-naik/nbweave/core/output"
)

// SupplementLink names a kept supplement rendering the preview links to.
type SupplementLink struct {
	Label string
	Href  string
}

// MetaSupplements is the metadata key under which the driver passes
// []SupplementLink to the preview contributor.
const MetaSupplements = "supplements"

const previewCSS = `body { max-width: 46rem; margin: 2rem auto; padding: 0 1rem;
  font: 16px/1.6 system-ui, sans-serif; color: #1a1a1a; }
pre { background: #f5f5f5; padding: .75rem; overflow-x: auto; }
code { font-family: ui-monospace, monospace; font-size: .9em; }
nav.supplements { border-top: 1px solid #ddd; margin-top: 2rem; padding-top: 1rem; }
img { max-width: 100%; }`

// PreviewContributor produces the preview rendering.
type PreviewContributor struct {
	writer *output.Writer
}

// NewPreviewContributor creates a PreviewContributor.
func NewPreviewContributor() *PreviewContributor {
	return &PreviewContributor{writer: output.NewWriter()}
}

// Resolve computes the preview's planned locations without writing them.
func (c *PreviewContributor) Resolve(source, token string, executed *core.ExecutedDoc, meta core.NotebookMetadata, outputFile string) (*core.ResolvedNotebook, error) {
	file, filesDir := c.names(source, outputFile)
	resolved := &core.ResolvedNotebook{
		File:       file,
		Supporting: []string{filepath.Join(filepath.Dir(source), filesDir, "style.css")},
	}
	if executed != nil {
		resolved.ResourceFiles = executed.ResourceFiles
	}
	return resolved, nil
}

// Render writes the preview page and its stylesheet next to the source.
// The page is staged under a token-derived name in the target directory and
// renamed into place, so concurrent renders of the same source never tear
// each other's output.
func (c *PreviewContributor) Render(ctx context.Context, req core.RenderRequest) (*core.RenderedFile, error) {
	if req.Executed == nil {
		return nil, fmt.Errorf("preview requires an executed document for %s", req.Source)
	}

	content, err := sanitize(req.Executed.HTML)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(req.Source)
	file, filesDir := c.names(req.Source, req.OutputFile)

	page := buildPage(req.Executed.Title, content, filesDir+"/style.css", supplements(req.Metadata))

	staged := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", output.Stem(req.Source), req.Token))
	if _, err := c.writer.Write(staged, []byte(page)); err != nil {
		return nil, err
	}
	final := filepath.Join(dir, file)
	if err := os.Rename(staged, final); err != nil {
		return nil, fmt.Errorf("placing preview %s: %w", final, err)
	}

	cssPath, err := c.writer.Write(filepath.Join(dir, filesDir, "style.css"), []byte(previewCSS))
	if err != nil {
		return nil, err
	}

	req.Services.Logger().Debug("wrote preview", "source", req.Source, "file", final)
	return &core.RenderedFile{
		File:          file,
		Supporting:    []string{cssPath},
		ResourceFiles: req.Executed.ResourceFiles,
	}, nil
}

func (c *PreviewContributor) names(source, outputFile string) (file, filesDir string) {
	stem := output.Stem(source)
	file = outputFile
	if file == "" {
		file = stem + "-preview.html"
	}
	return file, stem + "-preview_files"
}

// sanitize drops script-bearing attributes from the executed fragment.
func sanitize(fragment string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "", fmt.Errorf("parsing executed content: %w", err)
	}

	doc.Find("*").Each(func(_ int, sel *goquery.Selection) {
		for _, node := range sel.Nodes {
			attrs := node.Attr[:0]
			for _, a := range node.Attr {
				if !strings.HasPrefix(strings.ToLower(a.Key), "on") {
					attrs = append(attrs, a)
				}
			}
			node.Attr = attrs
		}
	})

	cleaned, err := doc.Find("body").Html()
	if err != nil {
		return "", fmt.Errorf("serializing preview content: %w", err)
	}
	return cleaned, nil
}

// supplements reads the driver-provided supplement links from metadata.
func supplements(meta core.NotebookMetadata) []SupplementLink {
	if meta == nil {
		return nil
	}
	links, _ := meta[MetaSupplements].([]SupplementLink)
	return links
}

func buildPage(title, content, cssHref string, links []SupplementLink) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(title))
	fmt.Fprintf(&b, "<link rel=\"stylesheet\" href=\"%s\">\n", cssHref)
	b.WriteString("</head>\n<body>\n")
	b.WriteString(content)

	if len(links) > 0 {
		b.WriteString("\n<nav class=\"supplements\">\n<ul>\n")
		for _, link := range links {
			fmt.Fprintf(&b, "<li><a href=\"%s\">%s</a></li>\n",
				html.EscapeString(link.Href), html.EscapeString(link.Label))
		}
		b.WriteString("</ul>\n</nav>\n")
	}

	b.WriteString("</body>\n</html>\n")
	return b.String()
}
