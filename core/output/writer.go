// Package output handles artifact writing and removal for nbweave.
// Contributors write outputs next to the source document; the remover backs
// the registry's cleanup pass with delete-if-exists semantics.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Writer writes rendered artifacts to disk, creating parent directories
// as needed.
type Writer struct{}

// NewWriter creates a Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Write writes data to path, creating the parent directory first.
// Returns the absolute path written.
func (w *Writer) Write(path string, data []byte) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving path %s: %w", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
		return "", fmt.Errorf("creating directory %s: %w", filepath.Dir(abs), err)
	}
	if err := os.WriteFile(abs, data, 0644); err != nil {
		return "", fmt.Errorf("writing file %s: %w", abs, err)
	}
	return abs, nil
}

// Stem returns the artifact naming stem for a source document: the basename
// with every recognized notebook extension stripped.
// Example: /doc/a.nb.html → a
func Stem(sourcePath string) string {
	base := filepath.Base(sourcePath)
	for _, ext := range []string{".nb.html", ".html", ".htm"} {
		if strings.HasSuffix(base, ext) {
			return base[:len(base)-len(ext)]
		}
	}
	if ext := filepath.Ext(base); ext != "" {
		return base[:len(base)-len(ext)]
	}
	return base
}

// Remover deletes artifact files with "ensure absence" semantics.
type Remover struct{}

// NewRemover creates a Remover.
func NewRemover() *Remover {
	return &Remover{}
}

// RemoveIfExists deletes path if it exists. A missing file is success, not
// an error: the contract is "ensure absence", not "confirm prior presence".
func (r *Remover) RemoveIfExists(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing %s: %w", path, err)
	}
	return nil
}

// RemoveDirIfEmpty deletes dir when nothing is left inside it. A missing or
// still-populated directory is success.
func (r *Remover) RemoveDirIfEmpty(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading directory %s: %w", dir, err)
	}
	if len(entries) > 0 {
		return nil
	}
	if err := os.Remove(dir); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing directory %s: %w", dir, err)
	}
	return nil
}
