// Package reference defines the core domain types for publication entries.
package reference

// DefaultYear is used for entries that carry no year field.
const DefaultYear = 2000

// Reference represents one published paper read from a bibliography.
type Reference struct {
	// Identity
	ID        string `json:"id" yaml:"id"`                 // Citation key
	EntryType string `json:"entry_type" yaml:"entry_type"` // article, inproceedings, ...

	// Metadata
	Title   string   `json:"title" yaml:"title"`
	Authors []Author `json:"authors" yaml:"authors"`
	Venue   string   `json:"venue" yaml:"venue"` // Journal or conference/book title

	// Year is DefaultYear when HasYear is false.
	Year    int  `json:"year" yaml:"year"`
	HasYear bool `json:"-" yaml:"-"`

	// Optional
	Note string `json:"note,omitempty" yaml:"note,omitempty"`
	DOI  string `json:"doi,omitempty" yaml:"doi,omitempty"`
}

// HasNote reports whether the entry carries a note.
func (r Reference) HasNote() bool {
	return r.Note != ""
}

// HasDOI reports whether the entry carries a DOI.
func (r Reference) HasDOI() bool {
	return r.DOI != ""
}
