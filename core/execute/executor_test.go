package execute

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleNotebook = `<!DOCTYPE html>
<html lang="en">
<head><title>Analysis Notebook</title><style>body{}</style></head>
<body>
  <nav>site navigation</nav>
  <main>
    <h1>Results</h1>
    <p>The model converged after <strong>12</strong> iterations.</p>
    <img src="figs/loss.png" alt="loss curve">
    <pre><code>fit(model)</code></pre>
  </main>
  <footer>generated by a notebook exporter</footer>
</body>
</html>`

func writeSample(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "analysis.nb.html")
	require.NoError(t, os.WriteFile(path, []byte(sampleNotebook), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "figs"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "figs", "loss.png"), []byte("png"), 0644))
	return path
}

func TestExecuteExtractsContentAndTitle(t *testing.T) {
	source := writeSample(t)
	ex := New(t.TempDir())

	doc, err := ex.Execute(context.Background(), source)
	require.NoError(t, err)

	assert.Equal(t, source, doc.SourcePath)
	assert.Equal(t, "Analysis Notebook", doc.Title)
	assert.Contains(t, doc.HTML, "<h1>Results</h1>")
	assert.NotContains(t, doc.HTML, "site navigation")
	assert.NotContains(t, doc.HTML, "generated by a notebook exporter")
}

func TestExecuteDerivesMarkdown(t *testing.T) {
	source := writeSample(t)
	ex := New(t.TempDir())

	doc, err := ex.Execute(context.Background(), source)
	require.NoError(t, err)

	assert.Contains(t, doc.Markdown, "# Results")
	assert.Contains(t, doc.Markdown, "**12**")
}

func TestExecuteCollectsLocalResources(t *testing.T) {
	source := writeSample(t)
	ex := New(t.TempDir())

	doc, err := ex.Execute(context.Background(), source)
	require.NoError(t, err)

	require.Len(t, doc.ResourceFiles, 1)
	assert.Equal(t, filepath.Join(filepath.Dir(source), "figs", "loss.png"), doc.ResourceFiles[0])
}

func TestExecuteMissingSourceFails(t *testing.T) {
	ex := New(t.TempDir())
	_, err := ex.Execute(context.Background(), filepath.Join(t.TempDir(), "absent.html"))
	require.Error(t, err)
}

func TestExecuteFallsBackToBodyContainer(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bare.html")
	require.NoError(t, os.WriteFile(path, []byte("<html><body><p>just text</p></body></html>"), 0644))

	ex := New(t.TempDir())
	doc, err := ex.Execute(context.Background(), path)
	require.NoError(t, err)
	assert.Contains(t, doc.HTML, "just text")
	assert.Equal(t, "bare", doc.Title)
}
