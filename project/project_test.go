package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhruv-naik/nbweave/core"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
}

func TestDiscoverFindsSourcesRecursively(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.nb.html"))
	touch(t, filepath.Join(dir, "sub", "b.html"))
	touch(t, filepath.Join(dir, "notes.md"))

	sources, err := Discover(dir)
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, filepath.Join(dir, "a.nb.html"), sources[0])
	assert.Equal(t, filepath.Join(dir, "sub", "b.html"), sources[1])
}

func TestDiscoverSkipsArtifactsAndHiddenDirs(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.nb.html"))
	touch(t, filepath.Join(dir, "a-preview.html"))
	touch(t, filepath.Join(dir, "a-preview_files", "style.css"))
	touch(t, filepath.Join(dir, "a_resources", "fig.png"))
	touch(t, filepath.Join(dir, ".nbweave", "run", "staged.html"))
	touch(t, filepath.Join(dir, ".git", "index.html"))

	sources, err := Discover(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.nb.html")}, sources)
}

func TestIsSource(t *testing.T) {
	assert.True(t, IsSource("report.nb.html"))
	assert.True(t, IsSource("index.htm"))
	assert.False(t, IsSource("report-preview.html"))
	assert.False(t, IsSource("report-snapshot.pdf"))
	assert.False(t, IsSource("report.embed.json"))
	assert.False(t, IsSource(".hidden.html"))
	assert.False(t, IsSource("notes.md"))
}

func TestLoadMissingConfigYieldsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, ".nbweave", cfg.OutputDir)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.Keep)
}

func TestLoadParsesConfig(t *testing.T) {
	dir := t.TempDir()
	yml := "output-dir: out\nkeep:\n  - executed-snapshot\n  - structured-embed\nlog-level: debug\ndownload-resources: true\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFile), []byte(yml), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "out", cfg.OutputDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.DownloadResources)
	assert.Equal(t, []core.RenderKind{core.KindExecutedSnapshot, core.KindStructuredEmbed}, cfg.KeepKinds())
}

func TestLoadRejectsUnknownKeepKind(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFile), []byte("keep: [thumbnails]\n"), 0644))

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "thumbnails")
}

func TestLoadRejectsUnknownLogLevel(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFile), []byte("log-level: loud\n"), 0644))

	_, err := Load(dir)
	require.Error(t, err)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFile), []byte(": not yaml"), 0644))

	_, err := Load(dir)
	require.Error(t, err)
}
