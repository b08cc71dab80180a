package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRemote(t *testing.T) {
	assert.True(t, IsRemote("https://example.com/doc.html"))
	assert.True(t, IsRemote("http://example.com/doc.html"))
	assert.False(t, IsRemote("/doc/a.html"))
	assert.False(t, IsRemote("relative/a.html"))
}

func TestMaterializeLocalSource(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "a.html")
	require.NoError(t, os.WriteFile(source, []byte("<html></html>"), 0644))

	f := New()
	local, err := f.Materialize(context.Background(), source, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, source, local)
}

func TestMaterializeMissingLocalSourceFails(t *testing.T) {
	f := New()
	_, err := f.Materialize(context.Background(), filepath.Join(t.TempDir(), "absent.html"), t.TempDir())
	require.Error(t, err)
}

func TestMaterializeRemoteSourceDownloads(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>remote</body></html>"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	f := New()
	local, err := f.Materialize(context.Background(), srv.URL+"/docs/report.html", dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "report.html"), local)
	data, err := os.ReadFile(local)
	require.NoError(t, err)
	assert.Contains(t, string(data), "remote")
}

func TestFetchRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := New()
	_, err := f.Fetch(context.Background(), srv.URL+"/gone.html")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestDownloadResourceWritesFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("png-bytes"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	f := New()
	local, err := f.DownloadResource(context.Background(), srv.URL+"/figs/loss.png", dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "loss.png"), local)
	assert.FileExists(t, local)
}
