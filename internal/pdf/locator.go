// Package pdf locates the PDFs that accompany bibliography entries.
package pdf

import (
	"os"
	"path/filepath"
	"strings"
)

// Locator answers where an entry's PDF lives on disk and on the site.
type Locator interface {
	// Path is the filesystem path checked for the entry's PDF.
	Path(key string) string
	// URL is the link target used in the rendered page.
	URL(key string) string
	// Exists reports whether the PDF is present.
	Exists(key string) bool
}

// DirLocator expects papers named <key>.pdf in a single directory.
type DirLocator struct {
	Dir       string // Directory holding the PDFs
	URLPrefix string // Site path the directory is served under, e.g. "/papers/"
}

// NewDirLocator creates a locator for the given directory and URL prefix.
func NewDirLocator(dir, urlPrefix string) *DirLocator {
	return &DirLocator{Dir: dir, URLPrefix: urlPrefix}
}

// FileName returns the PDF file name for a citation key.
func FileName(key string) string {
	return key + ".pdf"
}

// Path implements Locator.
func (l *DirLocator) Path(key string) string {
	return filepath.Join(l.Dir, FileName(key))
}

// URL implements Locator.
func (l *DirLocator) URL(key string) string {
	prefix := l.URLPrefix
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix + FileName(key)
}

// Exists implements Locator. Directories named <key>.pdf do not count.
func (l *DirLocator) Exists(key string) bool {
	if l.Dir == "" {
		return false
	}
	info, err := os.Stat(l.Path(key))
	return err == nil && info.Mode().IsRegular()
}
