package page

import (
	"bytes"
	"fmt"
	stdhtml "html"

	"github.com/adrg/frontmatter"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// FrontMatter holds the page header fields the preview cares about.
type FrontMatter struct {
	Title  string         `yaml:"title"`
	Layout string         `yaml:"layout"`
	Custom map[string]any `yaml:",inline"`
}

// SplitFrontMatter separates YAML front matter from the markdown body.
// Documents without front matter come back unchanged.
func SplitFrontMatter(source []byte) (FrontMatter, []byte, error) {
	var meta FrontMatter
	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return FrontMatter{}, nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	return meta, body, nil
}

// Preview renders the page body to HTML. Raw HTML such as the <br> tags
// between entry lines is passed through.
func Preview(source []byte) ([]byte, error) {
	meta, body, err := SplitFrontMatter(source)
	if err != nil {
		return nil, err
	}

	engine := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)

	var buf bytes.Buffer
	if meta.Title != "" {
		fmt.Fprintf(&buf, "<h1>%s</h1>\n", stdhtml.EscapeString(meta.Title))
	}
	if err := engine.Convert(body, &buf); err != nil {
		return nil, fmt.Errorf("markdown parse: %w", err)
	}
	return buf.Bytes(), nil
}
