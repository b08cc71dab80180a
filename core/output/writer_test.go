package output

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCreatesParentDirectories(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter()

	path, err := w.Write(filepath.Join(dir, "nested", "deep", "out.html"), []byte("<html>"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<html>", string(data))
}

func TestStem(t *testing.T) {
	assert.Equal(t, "report", Stem("/doc/report.nb.html"))
	assert.Equal(t, "a", Stem("/doc/a.html"))
	assert.Equal(t, "index", Stem("index.htm"))
	assert.Equal(t, "notes", Stem("/x/notes.md"))
	assert.Equal(t, "plain", Stem("plain"))
}

func TestRemoveIfExistsDeletesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "artifact.pdf")
	require.NoError(t, os.WriteFile(path, []byte("pdf"), 0644))

	r := NewRemover()
	require.NoError(t, r.RemoveIfExists(path))
	assert.NoFileExists(t, path)
}

func TestRemoveIfExistsMissingFileIsSuccess(t *testing.T) {
	r := NewRemover()
	assert.NoError(t, r.RemoveIfExists(filepath.Join(t.TempDir(), "never-written.html")))
}

func TestRemoveDirIfEmptyDeletesEmptyDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a-preview_files")
	require.NoError(t, os.Mkdir(dir, 0755))

	r := NewRemover()
	require.NoError(t, r.RemoveDirIfEmpty(dir))
	assert.NoDirExists(t, dir)
}

func TestRemoveDirIfEmptyLeavesPopulatedDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "style.css"), []byte("body{}"), 0644))

	r := NewRemover()
	require.NoError(t, r.RemoveDirIfEmpty(dir))
	assert.DirExists(t, dir)
	assert.FileExists(t, filepath.Join(dir, "style.css"))
}

func TestRemoveDirIfEmptyMissingDirIsSuccess(t *testing.T) {
	r := NewRemover()
	assert.NoError(t, r.RemoveDirIfEmpty(filepath.Join(t.TempDir(), "never-created")))
}
