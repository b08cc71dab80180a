// Package project — source document discovery.
// Walks a project directory for notebook documents, skipping hidden
// directories and artifacts produced by earlier runs.
package project

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// sourceExtensions are the filename suffixes recognized as notebook
// documents, checked in order.
var sourceExtensions = []string{".nb.html", ".html", ".htm"}

// derivedSuffixes mark files produced by an earlier nbweave run. They are
// never treated as sources.
var derivedSuffixes = []string{
	"-preview.html",
	"-snapshot.pdf",
	".embed.json",
	".embed.md",
}

// skipDirSuffixes mark directories that hold artifacts, not sources.
var skipDirSuffixes = []string{"-preview_files", "_resources"}

// Discover walks dir and returns the absolute paths of every notebook
// source document, sorted for deterministic run order.
func Discover(dir string) ([]string, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving project directory: %w", err)
	}

	var sources []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()

		if d.IsDir() {
			if path != root && (strings.HasPrefix(name, ".") || skipDir(name)) {
				return filepath.SkipDir
			}
			return nil
		}

		if IsSource(name) {
			sources = append(sources, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking project directory: %w", err)
	}

	sort.Strings(sources)
	return sources, nil
}

// IsSource reports whether name looks like a notebook source document.
func IsSource(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	for _, suffix := range derivedSuffixes {
		if strings.HasSuffix(name, suffix) {
			return false
		}
	}
	for _, ext := range sourceExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

func skipDir(name string) bool {
	for _, suffix := range skipDirSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}
