// Package importer reads section sources in the supported formats.
package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/matsen/pubpage/internal/bibtex"
	"github.com/matsen/pubpage/internal/reference"
)

// Source formats.
const (
	FormatBibTeX    = "bibtex"
	FormatPaperpile = "paperpile"
)

// DetectFormat picks a format from the file extension: .json is a
// Paperpile export, anything else is BibTeX.
func DetectFormat(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatPaperpile
	}
	return FormatBibTeX
}

// Read loads references from path. An empty format is detected from the
// file name.
func Read(path, format string) ([]reference.Reference, error) {
	if format == "" {
		format = DetectFormat(path)
	}

	switch format {
	case FormatBibTeX:
		return bibtex.ReadFile(path)
	case FormatPaperpile:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading Paperpile export: %w", err)
		}
		refs, err := ParsePaperpile(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return refs, nil
	default:
		return nil, fmt.Errorf("unknown source format %q", format)
	}
}
