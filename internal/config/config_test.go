package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.PapersDir != "../papers" || cfg.PapersURL != "/papers/" {
		t.Errorf("papers = %q/%q, want ../papers and /papers/", cfg.PapersDir, cfg.PapersURL)
	}
	if cfg.Template != "research.markdown_template" {
		t.Errorf("Template = %q", cfg.Template)
	}
	if cfg.Output != "../research.markdown" {
		t.Errorf("Output = %q", cfg.Output)
	}
	if cfg.RemoveMarker != "###Remove_me" {
		t.Errorf("RemoveMarker = %q", cfg.RemoveMarker)
	}
	if len(cfg.Sections) != 2 {
		t.Fatalf("len(Sections) = %d, want 2", len(cfg.Sections))
	}
	if s := cfg.Sections[0]; s.Marker != "###Journals_rep" || s.Source != "../bibs/journals.bib" {
		t.Errorf("Sections[0] = %+v", s)
	}
	if s := cfg.Sections[1]; s.Marker != "###Conferences_rep" || s.Source != "../bibs/conferences.bib" {
		t.Errorf("Sections[1] = %+v", s)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default().Validate() error = %v", err)
	}
}

func TestLoad_MissingDefaultFile(t *testing.T) {
	dir := t.TempDir()
	oldWD, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(oldWD) })

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}
	if cfg.Template != Default().Template {
		t.Errorf("Template = %q, want default", cfg.Template)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	if err == nil {
		t.Error("Load() should fail for a missing explicit file")
	}
}

func TestLoad_Overrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "site.yml")
	data := `papers_dir: /srv/papers
output: out.md
html_output: out.html
doi_from_pdf: true
sections:
  - name: preprints
    marker: "###Preprints_rep"
    source: preprints.bib
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.PapersDir != "/srv/papers" {
		t.Errorf("PapersDir = %q, want /srv/papers", cfg.PapersDir)
	}
	if cfg.Output != "out.md" || cfg.HTMLOutput != "out.html" {
		t.Errorf("Output/HTMLOutput = %q/%q", cfg.Output, cfg.HTMLOutput)
	}
	if !cfg.DOIFromPDF {
		t.Error("DOIFromPDF = false, want true")
	}
	// Untouched keys keep their defaults
	if cfg.Template != "research.markdown_template" || cfg.PapersURL != "/papers/" {
		t.Errorf("Template/PapersURL = %q/%q, want defaults", cfg.Template, cfg.PapersURL)
	}
	if len(cfg.Sections) != 1 || cfg.Sections[0].Name != "preprints" {
		t.Errorf("Sections = %+v, want the single preprints section", cfg.Sections)
	}
	if s, ok := cfg.Section("preprints"); !ok || s.Source != "preprints.bib" {
		t.Errorf("Section(preprints) = %+v, %v", s, ok)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yml")
	if err := os.WriteFile(path, []byte("sections: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() should return error for invalid YAML")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvPapersDir, "/env/papers")
	t.Setenv(EnvTemplate, "")
	t.Setenv(EnvOutput, "/env/out.md")

	cfg := Default()
	cfg.ApplyEnv()

	if cfg.PapersDir != "/env/papers" {
		t.Errorf("PapersDir = %q, want /env/papers", cfg.PapersDir)
	}
	if cfg.Template != "research.markdown_template" {
		t.Errorf("Template = %q, empty env var should not override", cfg.Template)
	}
	if cfg.Output != "/env/out.md" {
		t.Errorf("Output = %q, want /env/out.md", cfg.Output)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"empty template", func(c *Config) { c.Template = "" }, "template"},
		{"empty output", func(c *Config) { c.Output = "" }, "output"},
		{"no sections", func(c *Config) { c.Sections = nil }, "no sections"},
		{"empty marker", func(c *Config) { c.Sections[0].Marker = "" }, "marker is empty"},
		{"empty source", func(c *Config) { c.Sections[1].Source = "" }, "source is empty"},
		{"duplicate marker", func(c *Config) { c.Sections[1].Marker = c.Sections[0].Marker }, "already used"},
		{"removal marker reused", func(c *Config) { c.Sections[0].Marker = c.RemoveMarker }, "removal marker"},
		{"unknown format", func(c *Config) { c.Sections[0].Format = "ris" }, "unknown format"},
		{"duplicate name", func(c *Config) { c.Sections[1].Name = c.Sections[0].Name }, "used more than once"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}

	tests := []struct {
		input string
		want  string
	}{
		{"~/papers", filepath.Join(home, "papers")},
		{"/abs/papers", "/abs/papers"},
		{"rel/papers", "rel/papers"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ExpandPath(tt.input); got != tt.want {
				t.Errorf("ExpandPath(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
