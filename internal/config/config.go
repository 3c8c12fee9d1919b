// Package config holds the paths and markers used to build the page.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultFile is read when no config file is named explicitly.
const DefaultFile = "pubpage.yml"

// Environment variables that override file values.
const (
	EnvPapersDir = "PUBPAGE_PAPERS_DIR"
	EnvTemplate  = "PUBPAGE_TEMPLATE"
	EnvOutput    = "PUBPAGE_OUTPUT"
)

// Config is built once at startup and passed to the assembler.
type Config struct {
	PapersDir    string    `yaml:"papers_dir"`            // Directory holding <key>.pdf files
	PapersURL    string    `yaml:"papers_url"`            // Site path for PDF links
	Template     string    `yaml:"template"`              // Template document
	Output       string    `yaml:"output"`                // Assembled markdown page
	HTMLOutput   string    `yaml:"html_output,omitempty"` // Optional HTML preview
	RemoveMarker string    `yaml:"remove_marker"`         // Stripped from the template first
	Sections     []Section `yaml:"sections"`
	Badges       Badges    `yaml:"badges"`
	DOIFromPDF   bool      `yaml:"doi_from_pdf,omitempty"` // Fill missing DOIs from the PDF text
}

// Section ties a placeholder in the template to a bibliography file.
type Section struct {
	Name   string `yaml:"name"`
	Marker string `yaml:"marker"`
	Source string `yaml:"source"`
	Format string `yaml:"format,omitempty"` // bibtex or paperpile; empty detects from the extension
}

// Formats lists the accepted Section.Format values.
var Formats = []string{"", "bibtex", "paperpile"}

// Badges configures the link badges appended to entries.
type Badges struct {
	DOIImage string `yaml:"doi_image"`
	PDFImage string `yaml:"pdf_image"`
	DOIBase  string `yaml:"doi_base"`
}

// Default returns the layout of the site checkout: the tool runs
// from a subdirectory next to bibs/ and papers/.
func Default() Config {
	return Config{
		PapersDir:    "../papers",
		PapersURL:    "/papers/",
		Template:     "research.markdown_template",
		Output:       "../research.markdown",
		RemoveMarker: "###Remove_me",
		Sections: []Section{
			{Name: "journals", Marker: "###Journals_rep", Source: "../bibs/journals.bib"},
			{Name: "conferences", Marker: "###Conferences_rep", Source: "../bibs/conferences.bib"},
		},
		Badges: Badges{
			DOIImage: "/imgs/doi.png",
			PDFImage: "/imgs/pdf.png",
			DOIBase:  "https://doi.org/",
		},
	}
}

// Load returns the defaults overlaid with the YAML file at path.
// With an empty path, DefaultFile is used if it exists.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	data, err := os.ReadFile(ExpandPath(path))
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// LoadEnv reads a .env file in the working directory, if present, then
// applies the PUBPAGE_* overrides.
func (c *Config) LoadEnv() {
	_ = godotenv.Load()
	c.ApplyEnv()
}

// ApplyEnv overrides paths from the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvPapersDir); v != "" {
		c.PapersDir = v
	}
	if v := os.Getenv(EnvTemplate); v != "" {
		c.Template = v
	}
	if v := os.Getenv(EnvOutput); v != "" {
		c.Output = v
	}
}

// Validate checks that paths are set and markers are usable.
func (c Config) Validate() error {
	if c.Template == "" {
		return errors.New("template path is empty")
	}
	if c.Output == "" {
		return errors.New("output path is empty")
	}
	if len(c.Sections) == 0 {
		return errors.New("no sections configured")
	}

	markers := make(map[string]string)
	names := make(map[string]bool)
	for i, s := range c.Sections {
		name := s.Name
		if name == "" {
			name = fmt.Sprintf("section %d", i+1)
		}
		if s.Marker == "" {
			return fmt.Errorf("%s: marker is empty", name)
		}
		if s.Source == "" {
			return fmt.Errorf("%s: source is empty", name)
		}
		if !validFormat(s.Format) {
			return fmt.Errorf("%s: unknown format %q (valid: bibtex, paperpile)", name, s.Format)
		}
		if names[s.Name] {
			return fmt.Errorf("%s: section name %q is used more than once", name, s.Name)
		}
		names[s.Name] = true
		if other, dup := markers[s.Marker]; dup {
			return fmt.Errorf("%s: marker %q already used by %s", name, s.Marker, other)
		}
		if c.RemoveMarker != "" && s.Marker == c.RemoveMarker {
			return fmt.Errorf("%s: marker %q is the removal marker", name, s.Marker)
		}
		markers[s.Marker] = name
	}

	return nil
}

func validFormat(format string) bool {
	for _, f := range Formats {
		if format == f {
			return true
		}
	}
	return false
}

// Section returns the section with the given name.
func (c Config) Section(name string) (Section, bool) {
	for _, s := range c.Sections {
		if s.Name == name {
			return s, true
		}
	}
	return Section{}, false
}

// Expand applies ExpandPath to every path in the config.
func (c *Config) Expand() {
	c.PapersDir = ExpandPath(c.PapersDir)
	c.Template = ExpandPath(c.Template)
	c.Output = ExpandPath(c.Output)
	c.HTMLOutput = ExpandPath(c.HTMLOutput)
	for i := range c.Sections {
		c.Sections[i].Source = ExpandPath(c.Sections[i].Source)
	}
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path // Return original if we can't get home directory
	}

	return filepath.Join(home, path[1:])
}
