package bibtex

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/matsen/pubpage/internal/reference"
)

// SplitNames splits an author or editor field on the word "and".
// Text inside braces is never split.
func SplitNames(value string) []string {
	words := splitTopLevel(value, isSpace)

	var names []string
	var current []string
	for _, w := range words {
		if strings.EqualFold(w, "and") {
			if len(current) > 0 {
				names = append(names, strings.Join(current, " "))
			}
			current = nil
			continue
		}
		current = append(current, w)
	}
	if len(current) > 0 {
		names = append(names, strings.Join(current, " "))
	}
	return names
}

// ParseName splits one BibTeX name into its parts. Accepted forms are
// "First von Last", "von Last, First" and "von Last, Jr, First".
// The von particle stays with the family name.
func ParseName(name string) reference.Author {
	parts := splitTopLevel(name, func(r rune) bool { return r == ',' })
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	switch len(parts) {
	case 0:
		return reference.Author{}
	case 1:
		return parseFirstLast(parts[0])
	case 2:
		return reference.Author{Last: parts[0], First: parts[1]}
	default:
		return reference.Author{
			Last:  parts[0],
			Jr:    parts[1],
			First: strings.Join(parts[2:], " "),
		}
	}
}

// ParseNames is SplitNames followed by ParseName on each name.
func ParseNames(value string) []reference.Author {
	names := SplitNames(value)
	authors := make([]reference.Author, 0, len(names))
	for _, n := range names {
		authors = append(authors, ParseName(n))
	}
	return authors
}

func parseFirstLast(s string) reference.Author {
	words := splitTopLevel(s, isSpace)
	if len(words) == 0 {
		return reference.Author{}
	}
	if len(words) == 1 {
		return reference.Author{Last: words[0]}
	}

	// The family name starts at the first lowercase word (the von part),
	// or is the final word when there is none.
	lastStart := len(words) - 1
	for i, w := range words[:len(words)-1] {
		if startsLower(w) {
			lastStart = i
			break
		}
	}

	return reference.Author{
		First: strings.Join(words[:lastStart], " "),
		Last:  strings.Join(words[lastStart:], " "),
	}
}

func startsLower(word string) bool {
	if strings.HasPrefix(word, "{") {
		return false
	}
	r, _ := utf8.DecodeRuneInString(word)
	return unicode.IsLower(r)
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r)
}

// splitTopLevel splits s at runes matching sep that sit outside braces.
// Empty pieces are dropped.
func splitTopLevel(s string, sep func(rune) bool) []string {
	var out []string
	depth := 0
	start := 0
	for i, r := range s {
		switch {
		case r == '{':
			depth++
		case r == '}':
			if depth > 0 {
				depth--
			}
		case depth == 0 && sep(r):
			if piece := strings.TrimSpace(s[start:i]); piece != "" {
				out = append(out, piece)
			}
			start = i + utf8.RuneLen(r)
		}
	}
	if piece := strings.TrimSpace(s[start:]); piece != "" {
		out = append(out, piece)
	}
	return out
}
