package render

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/matsen/pubpage/internal/reference"
)

// ErrNoAuthors is returned for entries without a single author.
var ErrNoAuthors = errors.New("entry has no authors")

var accents = strings.NewReplacer(
	`{\'a}`, "à",
	`{\'e}`, "é",
)

var braces = strings.NewReplacer("{", "", "}", "")

// CleanText replaces the two supported accent escapes and then drops all
// braces, which BibTeX uses to protect capitalization.
func CleanText(s string) string {
	return braces.Replace(accents.Replace(s))
}

// FormatAuthor renders one author as initials plus family name, "J. P. Smith".
func FormatAuthor(a reference.Author) string {
	var b strings.Builder
	for _, given := range a.GivenNames() {
		if initial := initialOf(given); initial != "" {
			b.WriteString(initial)
			b.WriteString(". ")
		}
	}
	b.WriteString(a.Last)
	if a.Jr != "" {
		b.WriteString(", ")
		b.WriteString(a.Jr)
	}
	return b.String()
}

// initialOf returns the first letter of a given name once it is cleaned,
// skipping braces and TeX escapes.
func initialOf(name string) string {
	name = CleanText(name)
	for _, r := range name {
		if unicode.IsLetter(r) {
			return string(r)
		}
	}
	if r, _ := utf8.DecodeRuneInString(name); r != utf8.RuneError {
		return string(r)
	}
	return ""
}

// FormatAuthors joins authors as "A", "A and B", or "A, B, and C".
func FormatAuthors(authors []reference.Author) (string, error) {
	if len(authors) == 0 {
		return "", ErrNoAuthors
	}

	names := make([]string, len(authors))
	for i, a := range authors {
		names[i] = FormatAuthor(a)
	}

	last := names[len(names)-1]
	switch len(names) {
	case 1:
		return last, nil
	case 2:
		return names[0] + " and " + last, nil
	default:
		return strings.Join(names[:len(names)-1], ", ") + ", and " + last, nil
	}
}
