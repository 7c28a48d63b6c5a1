package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PageWriter persists one page's raw markup and reports where it landed.
//
// Design decision: A single-method interface with one concrete
// implementation and a test double, rather than a writer hierarchy.
// The crawl engine only needs "store this and tell me the path".
type PageWriter interface {
	// WriteHTML persists the markup for the named page and returns the
	// location it was written to.
	WriteHTML(pageName, html string) (string, error)
}

// FilesystemWriter writes each page to <dir>/<page-name>.html.
// The directory is created on first write.
type FilesystemWriter struct {
	// dir is the output directory for page files.
	dir string
}

// NewFilesystemWriter creates a FilesystemWriter targeting dir.
func NewFilesystemWriter(dir string) *FilesystemWriter {
	return &FilesystemWriter{dir: dir}
}

// WriteHTML writes the page markup to a file named after the page.
// Identifiers may contain path separators (wiki subpages); those are
// flattened so every page stays a single file directly under dir.
func (w *FilesystemWriter) WriteHTML(pageName, html string) (string, error) {
	if err := os.MkdirAll(w.dir, 0750); err != nil {
		return "", fmt.Errorf("failed to create content directory: %w", err)
	}

	path := filepath.Join(w.dir, FileName(pageName))
	if err := os.WriteFile(path, []byte(html), 0600); err != nil {
		return "", fmt.Errorf("failed to write page %q: %w", pageName, err)
	}

	return path, nil
}

// FileName converts a page identifier into a flat file name.
func FileName(pageName string) string {
	name := strings.ReplaceAll(pageName, "/", "_")
	name = strings.ReplaceAll(name, string(os.PathSeparator), "_")
	return name + ".html"
}

// MemoryWriter is a PageWriter test double that keeps pages in a map.
type MemoryWriter struct {
	// Pages maps page names to the markup written for them.
	Pages map[string]string
}

// NewMemoryWriter creates an empty MemoryWriter.
func NewMemoryWriter() *MemoryWriter {
	return &MemoryWriter{Pages: make(map[string]string)}
}

// WriteHTML records the markup and returns a synthetic path.
func (w *MemoryWriter) WriteHTML(pageName, html string) (string, error) {
	w.Pages[pageName] = html
	return "mem://" + FileName(pageName), nil
}
