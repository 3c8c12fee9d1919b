package bibtex

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/matsen/pubpage/internal/reference"
)

// ErrInvalidYear is returned for a year field that is not an integer.
var ErrInvalidYear = errors.New("invalid year")

// VenueFields are the fields holding the venue, in priority order.
var VenueFields = []string{"journal", "booktitle"}

// ToReference converts a parsed entry to our Reference type.
// Only a malformed year is an error; absent fields fall back to defaults.
func ToReference(e Entry) (reference.Reference, error) {
	ref := reference.Reference{
		ID:        e.Key,
		EntryType: e.Type,
		Year:      reference.DefaultYear,
	}

	if author, ok := e.Field("author"); ok {
		ref.Authors = ParseNames(author)
	}
	if title, ok := e.Field("title"); ok {
		ref.Title = title
	}
	if venue, ok := e.FirstField(VenueFields...); ok {
		ref.Venue = venue
	}
	if year, ok := e.Field("year"); ok {
		y, err := strconv.Atoi(strings.TrimSpace(year))
		if err != nil {
			return reference.Reference{}, fmt.Errorf("entry %s: %w %q", e.Key, ErrInvalidYear, year)
		}
		ref.Year = y
		ref.HasYear = true
	}
	if note, ok := e.Field("note"); ok {
		ref.Note = note
	}
	if doi, ok := e.Field("doi"); ok {
		ref.DOI = NormalizeDOI(doi)
	}

	return ref, nil
}

// ToReferences converts entries in order, stopping at the first error.
func ToReferences(entries []Entry) ([]reference.Reference, error) {
	refs := make([]reference.Reference, 0, len(entries))
	for _, e := range entries {
		ref, err := ToReference(e)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// ReadFile parses a .bib file straight into references.
func ReadFile(path string) ([]reference.Reference, error) {
	entries, err := ParseFile(path)
	if err != nil {
		return nil, err
	}
	refs, err := ToReferences(entries)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return refs, nil
}

// NormalizeDOI strips resolver prefixes so the bare DOI remains.
// Case is preserved because the DOI ends up in links.
func NormalizeDOI(doi string) string {
	doi = strings.TrimSpace(doi)
	for _, prefix := range []string{"https://doi.org/", "http://doi.org/", "https://dx.doi.org/", "http://dx.doi.org/", "doi.org/"} {
		if len(doi) >= len(prefix) && strings.EqualFold(doi[:len(prefix)], prefix) {
			return doi[len(prefix):]
		}
	}
	if len(doi) >= 4 && strings.EqualFold(doi[:4], "doi:") {
		return strings.TrimSpace(doi[4:])
	}
	return doi
}
