package bibtex

import (
	"fmt"
	"strings"

	"github.com/matsen/pubpage/internal/reference"
)

// Format writes a reference back out as a BibTeX entry. Values read from
// a .bib file already carry their TeX markup and pass through unchanged.
func Format(ref reference.Reference) string {
	entryType := ref.EntryType
	if entryType == "" {
		entryType = "article"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "@%s{%s,\n", entryType, ref.ID)

	if len(ref.Authors) > 0 {
		fmt.Fprintf(&b, "  author = {%s},\n", formatNames(ref.Authors))
	}
	fmt.Fprintf(&b, "  title = {%s},\n", escapeLatex(ref.Title))

	if ref.Venue != "" {
		field := "journal"
		if entryType == "inproceedings" || entryType == "incollection" {
			field = "booktitle"
		}
		fmt.Fprintf(&b, "  %s = {%s},\n", field, escapeLatex(ref.Venue))
	}

	// A defaulted year is not written back.
	if ref.HasYear {
		fmt.Fprintf(&b, "  year = {%d},\n", ref.Year)
	}
	if ref.Note != "" {
		fmt.Fprintf(&b, "  note = {%s},\n", escapeLatex(ref.Note))
	}
	if ref.DOI != "" {
		fmt.Fprintf(&b, "  doi = {%s},\n", ref.DOI)
	}

	b.WriteString("}\n")
	return b.String()
}

// FormatList writes references as a BibTeX database, entries separated by
// a blank line.
func FormatList(refs []reference.Reference) string {
	entries := make([]string, 0, len(refs))
	for _, ref := range refs {
		entries = append(entries, Format(ref))
	}
	return strings.Join(entries, "\n")
}

// formatNames joins authors in "Last, Jr, First and ..." form.
func formatNames(authors []reference.Author) string {
	names := make([]string, len(authors))
	for i, a := range authors {
		names[i] = a.String()
	}
	return strings.Join(names, " and ")
}

// escapeLatex escapes characters that are special to LaTeX. Characters
// already preceded by a backslash are left alone, as are braces, which
// carry meaning in BibTeX values. Dollar signs delimit math and are kept,
// and nothing inside a $...$ span is escaped.
func escapeLatex(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inMath := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		escaped := i > 0 && s[i-1] == '\\'
		switch {
		case c == '$' && !escaped:
			inMath = !inMath
		case !inMath && !escaped && strings.IndexByte("&%#_", c) >= 0:
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	return b.String()
}
