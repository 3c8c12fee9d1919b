// Package page assembles the publications page from its template.
package page

import (
	"fmt"
	"os"
	"strings"

	"github.com/matsen/pubpage/internal/config"
	"github.com/matsen/pubpage/internal/importer"
	"github.com/matsen/pubpage/internal/render"
)

// RenderedSection is one bibliography rendered for its placeholder.
type RenderedSection struct {
	Name    string `json:"name"`
	Marker  string `json:"marker"`
	Source  string `json:"source"`
	Entries int    `json:"entries"`
	Text    string `json:"-"`
}

// Document is the assembled page.
type Document struct {
	Text     string            `json:"-"`
	Sections []RenderedSection `json:"sections"`
}

// Assembler splices rendered bibliographies into the template.
type Assembler struct {
	Config   config.Config
	Renderer *render.Renderer
}

// NewAssembler creates an assembler for the given configuration.
func NewAssembler(cfg config.Config, r *render.Renderer) *Assembler {
	return &Assembler{Config: cfg, Renderer: r}
}

// Build reads the template and renders every section. Nothing is written.
func (a *Assembler) Build() (*Document, error) {
	data, err := os.ReadFile(a.Config.Template)
	if err != nil {
		return nil, fmt.Errorf("reading template: %w", err)
	}

	doc := &Document{}
	for _, s := range a.Config.Sections {
		frags, err := a.renderSection(s)
		if err != nil {
			return nil, err
		}
		doc.Sections = append(doc.Sections, RenderedSection{
			Name:    s.Name,
			Marker:  s.Marker,
			Source:  s.Source,
			Entries: len(frags),
			Text:    render.Join(frags),
		})
	}

	doc.Text = Substitute(string(data), a.Config.RemoveMarker, doc.Sections)
	return doc, nil
}

func (a *Assembler) renderSection(s config.Section) ([]render.Fragment, error) {
	refs, err := importer.Read(s.Source, s.Format)
	if err != nil {
		return nil, err
	}
	frags, err := a.Renderer.Fragments(refs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Source, err)
	}
	return frags, nil
}

// Substitute strips the removal marker, then replaces every placeholder
// with its section text in one pass, so inserted text is never rescanned.
// Sections with an empty marker have no placeholder and are skipped.
func Substitute(template, removeMarker string, sections []RenderedSection) string {
	if removeMarker != "" {
		template = strings.ReplaceAll(template, removeMarker, "")
	}

	pairs := make([]string, 0, 2*len(sections))
	for _, s := range sections {
		if s.Marker == "" {
			continue
		}
		pairs = append(pairs, s.Marker, s.Text)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// Run builds the page and writes it over the output file, plus the HTML
// preview when one is configured.
func (a *Assembler) Run() (*Document, error) {
	doc, err := a.Build()
	if err != nil {
		return nil, err
	}

	if err := os.WriteFile(a.Config.Output, []byte(doc.Text), 0644); err != nil {
		return nil, fmt.Errorf("writing output: %w", err)
	}

	if a.Config.HTMLOutput != "" {
		html, err := Preview([]byte(doc.Text))
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(a.Config.HTMLOutput, html, 0644); err != nil {
			return nil, fmt.Errorf("writing HTML preview: %w", err)
		}
	}

	return doc, nil
}

// MissingMarkers lists section placeholders that do not occur in the template.
func MissingMarkers(template string, sections []config.Section) []string {
	var missing []string
	for _, s := range sections {
		if !strings.Contains(template, s.Marker) {
			missing = append(missing, s.Marker)
		}
	}
	return missing
}
