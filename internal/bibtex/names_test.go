package bibtex

import (
	"reflect"
	"testing"

	"github.com/matsen/pubpage/internal/reference"
)

func TestSplitNames(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"single", "Smith, John", []string{"Smith, John"}},
		{"two", "Smith, John and Doe, Jane", []string{"Smith, John", "Doe, Jane"}},
		{"uppercase AND", "Smith, John AND Doe, Jane", []string{"Smith, John", "Doe, Jane"}},
		{"braced and", "{Barnes and Noble} and Doe, Jane", []string{"{Barnes and Noble}", "Doe, Jane"}},
		{"and inside word", "Anderson, Sandy", []string{"Anderson, Sandy"}},
		{"multiline", "Smith, John\n    and Doe, Jane", []string{"Smith, John", "Doe, Jane"}},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitNames(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitNames(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseName(t *testing.T) {
	tests := []struct {
		input string
		want  reference.Author
	}{
		{"Smith, John Paul", reference.Author{First: "John Paul", Last: "Smith"}},
		{"John Paul Smith", reference.Author{First: "John Paul", Last: "Smith"}},
		{"Ludwig van Beethoven", reference.Author{First: "Ludwig", Last: "van Beethoven"}},
		{"van Beethoven, Ludwig", reference.Author{First: "Ludwig", Last: "van Beethoven"}},
		{"King, Jr, Martin Luther", reference.Author{First: "Martin Luther", Last: "King", Jr: "Jr"}},
		{"Plato", reference.Author{Last: "Plato"}},
		{"{World Health Organization}", reference.Author{Last: "{World Health Organization}"}},
		{"Fr{\\'e}d{\\'e}ric Matsen", reference.Author{First: "Fr{\\'e}d{\\'e}ric", Last: "Matsen"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseName(tt.input); got != tt.want {
				t.Errorf("ParseName(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseNames(t *testing.T) {
	got := ParseNames("Smith, John and Jane Doe")
	want := []reference.Author{
		{First: "John", Last: "Smith"},
		{First: "Jane", Last: "Doe"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseNames() = %+v, want %+v", got, want)
	}
}
