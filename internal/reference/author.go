package reference

import "strings"

// Author represents a paper author split the way BibTeX splits names.
type Author struct {
	First string `json:"first" yaml:"first"`               // Given name(s), including middle names
	Last  string `json:"last" yaml:"last"`                 // Family name, including any "von" part
	Jr    string `json:"jr,omitempty" yaml:"jr,omitempty"` // Suffix such as "Jr."
}

// GivenNames returns the individual given-name tokens.
func (a Author) GivenNames() []string {
	return strings.Fields(a.First)
}

// String returns the name in "Last, First" order.
func (a Author) String() string {
	name := a.Last
	if a.Jr != "" {
		name += ", " + a.Jr
	}
	if a.First != "" {
		name += ", " + a.First
	}
	return name
}
