// Package execute materializes a source document into its executed
// representation: the content every contributor renders from.
//
// Execution here means distilling an already-run notebook export:
//  1. make the document available locally (download if it is a URL)
//  2. isolate the executed content, stripping page chrome
//  3. derive the canonical markdown
//  4. collect the resource files the document references
package execute

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"

	"github.com/dhruv-naik/nbweave/core"
	"github.com/dhruv-naik/nbweave/core/fetch"
	"github.com/dhruv-naik/nbweave/core/output"
	"github.com/dhruv-naik/nbweave/ctxlog"
)

// noiseSelectors are elements stripped before extraction. They carry page
// chrome, not executed notebook content.
var noiseSelectors = []string{
	"script", "style", "noscript",
	"nav", "footer", "header",
	"iframe", "form", "button", "input", "select", "textarea",
	".sidebar", ".menu", ".navigation",
}

// Executor implements core.Executor over HTML notebook exports.
type Executor struct {
	fetcher *fetch.Fetcher

	// DownloadResources controls whether remote images referenced by the
	// document are downloaded next to the source as resource files.
	DownloadResources bool

	// WorkDir receives downloaded remote source documents.
	WorkDir string
}

// New creates an Executor that stages remote documents under workDir.
func New(workDir string) *Executor {
	return &Executor{
		fetcher: fetch.New(),
		WorkDir: workDir,
	}
}

// Execute turns source (a local path or URL) into an ExecutedDoc.
func (e *Executor) Execute(ctx context.Context, source string) (*core.ExecutedDoc, error) {
	log := ctxlog.FromContext(ctx)

	local, err := e.fetcher.Materialize(ctx, source, e.WorkDir)
	if err != nil {
		return nil, fmt.Errorf("materializing source: %w", err)
	}

	raw, err := os.ReadFile(local)
	if err != nil {
		return nil, fmt.Errorf("reading source document: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("parsing source HTML: %w", err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = output.Stem(local)
	}

	content, err := extractContent(doc)
	if err != nil {
		return nil, err
	}

	resources, err := e.collectResources(ctx, doc, local)
	if err != nil {
		return nil, err
	}

	markdown, err := htmltomarkdown.ConvertString(content)
	if err != nil {
		return nil, fmt.Errorf("converting content to markdown: %w", err)
	}

	log.Debug("executed source document",
		"source", local, "title", title, "resources", len(resources))

	return &core.ExecutedDoc{
		SourcePath:    local,
		Title:         title,
		HTML:          content,
		Markdown:      markdown,
		ResourceFiles: resources,
	}, nil
}

// extractContent isolates the executed content fragment. <main> is the most
// semantically correct container, then <article>, then <body>.
func extractContent(doc *goquery.Document) (string, error) {
	for _, sel := range noiseSelectors {
		doc.Find(sel).Remove()
	}

	var content *goquery.Selection
	for _, tag := range []string{"main", "article", "body"} {
		sel := doc.Find(tag)
		if sel.Length() > 0 {
			content = sel.First()
			break
		}
	}
	if content == nil {
		return "", fmt.Errorf("no content container found in source document")
	}

	html, err := goquery.OuterHtml(content)
	if err != nil {
		return "", fmt.Errorf("serializing content: %w", err)
	}
	return html, nil
}

// collectResources gathers the files the document references but no
// rendering owns. Relative image paths that exist next to the source are
// recorded as-is; remote images are downloaded only when enabled.
func (e *Executor) collectResources(ctx context.Context, doc *goquery.Document, sourcePath string) ([]string, error) {
	dir := filepath.Dir(sourcePath)
	resourceDir := filepath.Join(dir, output.Stem(sourcePath)+"_resources")

	var resources []string
	var firstErr error
	doc.Find("img").Each(func(_ int, img *goquery.Selection) {
		src, ok := img.Attr("src")
		if !ok || src == "" || firstErr != nil {
			return
		}

		if fetch.IsRemote(src) {
			if !e.DownloadResources {
				return
			}
			local, err := e.fetcher.DownloadResource(ctx, src, resourceDir)
			if err != nil {
				firstErr = fmt.Errorf("downloading resource %s: %w", src, err)
				return
			}
			resources = append(resources, local)
			return
		}

		local := filepath.Join(dir, filepath.FromSlash(src))
		if _, err := os.Stat(local); err == nil {
			resources = append(resources, local)
		}
	})
	if firstErr != nil {
		return nil, firstErr
	}
	return resources, nil
}
