// Package render turns references into markdown list items for the
// publications page.
package render

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/matsen/pubpage/internal/bibtex"
	"github.com/matsen/pubpage/internal/pdf"
	"github.com/matsen/pubpage/internal/reference"
)

// Fragment is one rendered entry. Year is only used for ordering.
type Fragment struct {
	Year int    `json:"year"`
	Key  string `json:"key"`
	Text string `json:"text"`
}

// Badges configures the image links appended under an entry.
type Badges struct {
	DOIImage string // e.g. "/imgs/doi.png"
	PDFImage string // e.g. "/imgs/pdf.png"
	DOIBase  string // e.g. "https://doi.org/"
}

// Formatter renders single references.
type Formatter struct {
	Papers pdf.Locator
	Badges Badges

	// Warn receives one line per entry missing its year. Nil discards.
	Warn io.Writer

	// DOIFromPDF fills a missing DOI from the text of the entry's PDF.
	DOIFromPDF bool
}

// Format renders one reference as a markdown list item.
func (f *Formatter) Format(ref reference.Reference) (Fragment, error) {
	hasPDF := f.Papers != nil && f.Papers.Exists(ref.ID)

	authors, err := FormatAuthors(ref.Authors)
	if err != nil {
		return Fragment{}, fmt.Errorf("entry %s: %w", ref.ID, err)
	}
	authors = CleanText(authors)
	title := CleanText(ref.Title)
	venue := CleanText(ref.Venue)

	year := ref.Year
	if !ref.HasYear {
		year = reference.DefaultYear
		if f.Warn != nil {
			fmt.Fprintf(f.Warn, "warning: %s: year is missing\n", ref.ID)
		}
	}

	doi := ref.DOI
	if doi == "" && hasPDF && f.DOIFromPDF {
		// Unreadable PDFs just leave the DOI out.
		doi, _ = pdf.ExtractDOI(f.Papers.Path(ref.ID))
	}

	var b strings.Builder
	b.WriteString("- ")
	b.WriteString(authors)
	b.WriteString("<br>")
	if hasPDF {
		fmt.Fprintf(&b, "[*%s*](%s)", title, f.Papers.URL(ref.ID))
	} else {
		fmt.Fprintf(&b, "*%s*", title)
	}
	fmt.Fprintf(&b, "<br>%s, %d", venue, year)
	if ref.Note != "" {
		fmt.Fprintf(&b, " **%s**", ref.Note)
	}

	var extra []string
	if doi != "" {
		extra = append(extra, fmt.Sprintf("[![doi](%s)](%s%s)", f.Badges.DOIImage, f.Badges.DOIBase, doi))
	}
	if hasPDF {
		extra = append(extra, fmt.Sprintf("[![.pdf](%s)](%s)", f.Badges.PDFImage, f.Papers.URL(ref.ID)))
	}
	if len(extra) > 0 {
		b.WriteString("<br>")
		b.WriteString(strings.Join(extra, " "))
	}

	return Fragment{Year: year, Key: ref.ID, Text: b.String()}, nil
}

// FormatAll renders references in order, stopping at the first malformed one.
func (f *Formatter) FormatAll(refs []reference.Reference) ([]Fragment, error) {
	frags := make([]Fragment, 0, len(refs))
	for _, ref := range refs {
		frag, err := f.Format(ref)
		if err != nil {
			return nil, err
		}
		frags = append(frags, frag)
	}
	return frags, nil
}

// SortFragments orders newest first. Entries from the same year are
// ordered by their text, descending, so output does not depend on file order.
func SortFragments(frags []Fragment) {
	sort.SliceStable(frags, func(i, j int) bool {
		if frags[i].Year != frags[j].Year {
			return frags[i].Year > frags[j].Year
		}
		return frags[i].Text > frags[j].Text
	})
}

// Join concatenates fragment texts, one per line.
func Join(frags []Fragment) string {
	texts := make([]string, len(frags))
	for i, f := range frags {
		texts[i] = f.Text
	}
	return strings.Join(texts, "\n")
}

// Renderer renders whole bibliography files.
type Renderer struct {
	Formatter *Formatter
}

// NewRenderer creates a renderer around a formatter.
func NewRenderer(f *Formatter) *Renderer {
	return &Renderer{Formatter: f}
}

// Fragments formats and sorts references.
func (r *Renderer) Fragments(refs []reference.Reference) ([]Fragment, error) {
	frags, err := r.Formatter.FormatAll(refs)
	if err != nil {
		return nil, err
	}
	SortFragments(frags)
	return frags, nil
}

// Render formats, sorts and joins references.
func (r *Renderer) Render(refs []reference.Reference) (string, error) {
	frags, err := r.Fragments(refs)
	if err != nil {
		return "", err
	}
	return Join(frags), nil
}

// RenderFile parses a .bib file and renders all of its entries.
// Parse errors are returned unchanged to the caller.
func (r *Renderer) RenderFile(path string) (string, error) {
	refs, err := bibtex.ReadFile(path)
	if err != nil {
		return "", err
	}
	out, err := r.Render(refs)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}
