package importer

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/matsen/pubpage/internal/bibtex"
	"github.com/matsen/pubpage/internal/reference"
)

// FlexibleString can unmarshal from either string or number JSON values.
type FlexibleString string

func (f *FlexibleString) UnmarshalJSON(data []byte) error {
	// Handle null
	if string(data) == "null" {
		*f = ""
		return nil
	}

	// Try string first
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexibleString(s)
		return nil
	}

	// Try number
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexibleString(n.String())
		return nil
	}

	return fmt.Errorf("cannot unmarshal %s into FlexibleString", string(data))
}

func (f FlexibleString) String() string {
	return string(f)
}

// PaperpileEntry represents a single entry from a Paperpile JSON export.
type PaperpileEntry struct {
	ID        string `json:"_id"`
	Citekey   string `json:"citekey"`
	Pubtype   string `json:"pubtype"`
	DOI       string `json:"doi"`
	Title     string `json:"title"`
	Journal   string `json:"journal"`
	Note      string `json:"note"`
	Published struct {
		Year FlexibleString `json:"year"`
	} `json:"published"`
	Author []struct {
		First string `json:"first"`
		Last  string `json:"last"`
	} `json:"author"`
}

// ParsePaperpile parses a Paperpile JSON export into references.
// Missing fields are left empty for the renderer to default; only
// unparseable JSON or a non-numeric year is an error.
func ParsePaperpile(data []byte) ([]reference.Reference, error) {
	var entries []PaperpileEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing Paperpile JSON: %w", err)
	}

	refs := make([]reference.Reference, 0, len(entries))
	seen := make(map[string]int, len(entries))
	for i, entry := range entries {
		ref, err := paperpileEntryToReference(entry)
		if err != nil {
			return nil, fmt.Errorf("entry %d (%s): %w", i+1, entry.Citekey, err)
		}
		folded := strings.ToLower(ref.ID)
		if prev, dup := seen[folded]; dup {
			return nil, fmt.Errorf("entry %d: duplicate citation key %q (first used by entry %d)", i+1, ref.ID, prev)
		}
		seen[folded] = i + 1
		refs = append(refs, ref)
	}

	return refs, nil
}

// paperpileEntryToReference converts a Paperpile entry to our Reference type.
func paperpileEntryToReference(entry PaperpileEntry) (reference.Reference, error) {
	// Use citekey as ID, falling back to Paperpile ID if no citekey
	id := entry.Citekey
	if id == "" {
		id = entry.ID
	}
	if id == "" {
		return reference.Reference{}, fmt.Errorf("missing citekey and _id")
	}

	authors := make([]reference.Author, len(entry.Author))
	for i, a := range entry.Author {
		authors[i] = reference.Author{First: a.First, Last: a.Last}
	}

	ref := reference.Reference{
		ID:        id,
		EntryType: paperpileEntryType(entry.Pubtype),
		DOI:       bibtex.NormalizeDOI(entry.DOI),
		Title:     entry.Title,
		Authors:   authors,
		Venue:     entry.Journal,
		Note:      entry.Note,
		Year:      reference.DefaultYear,
	}

	if y := strings.TrimSpace(entry.Published.Year.String()); y != "" {
		year, err := strconv.Atoi(y)
		if err != nil {
			return reference.Reference{}, fmt.Errorf("%w: %s", bibtex.ErrInvalidYear, y)
		}
		ref.Year = year
		ref.HasYear = true
	}

	return ref, nil
}

// paperpileEntryType maps Paperpile publication types to BibTeX entry types.
func paperpileEntryType(pubtype string) string {
	switch strings.ToUpper(pubtype) {
	case "CONF", "CPAPER", "INPROCEEDINGS":
		return "inproceedings"
	case "":
		return "article"
	default:
		return strings.ToLower(pubtype)
	}
}
