package page

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matsen/pubpage/internal/config"
	"github.com/matsen/pubpage/internal/pdf"
	"github.com/matsen/pubpage/internal/render"
)

const journalsBib = `@article{J2019, author={Smith, John}, title={Journal Paper}, journal={Nature}, year={2019}}
@article{J2021, author={Doe, Jane and Roe, Rick}, title={Later Paper}, journal={Science}, year={2021}}
`

const conferencesBib = `@inproceedings{C2020, author={Lee, Ann}, title={Conference Paper}, booktitle={ICML}, year={2020}}
`

const template = `---
title: Research
layout: page
---
###Remove_me
## Journals

###Journals_rep

## Conferences

###Conferences_rep
`

// setupSite writes a template and two bibliographies into a temp dir and
// returns a matching config.
func setupSite(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()

	files := map[string]string{
		"research.markdown_template": template,
		"journals.bib":               journalsBib,
		"conferences.bib":            conferencesBib,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "papers"), 0755); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.PapersDir = filepath.Join(dir, "papers")
	cfg.Template = filepath.Join(dir, "research.markdown_template")
	cfg.Output = filepath.Join(dir, "research.markdown")
	cfg.Sections[0].Source = filepath.Join(dir, "journals.bib")
	cfg.Sections[1].Source = filepath.Join(dir, "conferences.bib")
	return cfg
}

func newAssembler(cfg config.Config) (*Assembler, *bytes.Buffer) {
	var warn bytes.Buffer
	f := &render.Formatter{
		Papers: pdf.NewDirLocator(cfg.PapersDir, cfg.PapersURL),
		Badges: render.Badges{
			DOIImage: cfg.Badges.DOIImage,
			PDFImage: cfg.Badges.PDFImage,
			DOIBase:  cfg.Badges.DOIBase,
		},
		Warn: &warn,
	}
	return NewAssembler(cfg, render.NewRenderer(f)), &warn
}

func TestRun_RoundTrip(t *testing.T) {
	cfg := setupSite(t)
	a, _ := newAssembler(cfg)

	doc, err := a.Run()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	data, err := os.ReadFile(cfg.Output)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	got := string(data)

	for _, marker := range []string{"###Remove_me", "###Journals_rep", "###Conferences_rep"} {
		if strings.Contains(got, marker) {
			t.Errorf("output still contains %q", marker)
		}
	}

	journals := "- J. Doe and R. Roe<br>*Later Paper*<br>Science, 2021\n" +
		"- J. Smith<br>*Journal Paper*<br>Nature, 2019"
	conferences := "- A. Lee<br>*Conference Paper*<br>ICML, 2020"

	want := "---\ntitle: Research\nlayout: page\n---\n\n## Journals\n\n" +
		journals + "\n\n## Conferences\n\n" + conferences + "\n"
	if got != want {
		t.Errorf("output =\n%s\nwant\n%s", got, want)
	}
	if doc.Text != got {
		t.Error("Document.Text differs from the written file")
	}

	if len(doc.Sections) != 2 {
		t.Fatalf("len(Sections) = %d, want 2", len(doc.Sections))
	}
	if doc.Sections[0].Entries != 2 || doc.Sections[1].Entries != 1 {
		t.Errorf("Entries = %d/%d, want 2/1", doc.Sections[0].Entries, doc.Sections[1].Entries)
	}
}

func TestRun_OverwritesOutput(t *testing.T) {
	cfg := setupSite(t)
	if err := os.WriteFile(cfg.Output, []byte(strings.Repeat("stale ", 1000)), 0644); err != nil {
		t.Fatal(err)
	}

	a, _ := newAssembler(cfg)
	if _, err := a.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	data, err := os.ReadFile(cfg.Output)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "stale") {
		t.Error("output file was not overwritten")
	}
}

func TestRun_HTMLPreview(t *testing.T) {
	cfg := setupSite(t)
	cfg.HTMLOutput = filepath.Join(filepath.Dir(cfg.Output), "research.html")

	a, _ := newAssembler(cfg)
	if _, err := a.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	data, err := os.ReadFile(cfg.HTMLOutput)
	if err != nil {
		t.Fatalf("reading HTML preview: %v", err)
	}
	html := string(data)
	for _, want := range []string{"<h1>Research</h1>", "<em>Later Paper</em>", "<br>", "<li>"} {
		if !strings.Contains(html, want) {
			t.Errorf("HTML preview missing %q:\n%s", want, html)
		}
	}
	if strings.Contains(html, "layout: page") {
		t.Error("front matter leaked into the HTML preview")
	}
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"missing template", func(c *config.Config) { c.Template += ".missing" }},
		{"missing bibliography", func(c *config.Config) { c.Sections[1].Source += ".missing" }},
		{"unwritable output", func(c *config.Config) { c.Output = filepath.Join(c.Output, "nested", "out.md") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := setupSite(t)
			tt.mutate(&cfg)

			a, _ := newAssembler(cfg)
			if _, err := a.Run(); err == nil {
				t.Fatal("Run() expected error")
			}
		})
	}
}

func TestRun_NoPartialOutput(t *testing.T) {
	cfg := setupSite(t)
	cfg.Sections[1].Source += ".missing"

	a, _ := newAssembler(cfg)
	if _, err := a.Run(); err == nil {
		t.Fatal("Run() expected error")
	}
	if _, err := os.Stat(cfg.Output); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("output should not exist after a failed run, stat error = %v", err)
	}
}

func TestBuild_MissingYearWarning(t *testing.T) {
	cfg := setupSite(t)
	bib := `@article{NoYear, author={Smith, John}, title={T}, journal={J}}`
	if err := os.WriteFile(cfg.Sections[0].Source, []byte(bib), 0644); err != nil {
		t.Fatal(err)
	}

	a, warn := newAssembler(cfg)
	doc, err := a.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if !strings.Contains(doc.Text, "J, 2000") {
		t.Errorf("entry should use the default year:\n%s", doc.Text)
	}
	if !strings.Contains(warn.String(), "NoYear") {
		t.Errorf("warning output %q should name NoYear", warn.String())
	}
}

func TestSubstitute(t *testing.T) {
	sections := []RenderedSection{
		{Marker: "@@A", Text: "alpha @@B"},
		{Marker: "@@B", Text: "beta"},
	}

	got := Substitute("x@@RMy @@A @@B @@A", "@@RM", sections)
	want := "xy alpha @@B beta alpha @@B"
	if got != want {
		t.Errorf("Substitute() = %q, want %q", got, want)
	}
}

func TestSubstitute_EmptyMarker(t *testing.T) {
	sections := []RenderedSection{
		{Marker: "", Text: "X"},
		{Marker: "@@B", Text: "beta"},
	}

	got := Substitute("a @@B c", "", sections)
	if got != "a beta c" {
		t.Errorf("Substitute() = %q, want %q", got, "a beta c")
	}
	if got := Substitute("abc", "", sections[:1]); got != "abc" {
		t.Errorf("Substitute() = %q, want template unchanged", got)
	}
}

func TestMissingMarkers(t *testing.T) {
	sections := config.Default().Sections
	got := MissingMarkers("only ###Journals_rep here", sections)
	if len(got) != 1 || got[0] != "###Conferences_rep" {
		t.Errorf("MissingMarkers() = %v, want [###Conferences_rep]", got)
	}
	if got := MissingMarkers(template, sections); len(got) != 0 {
		t.Errorf("MissingMarkers(template) = %v, want none", got)
	}
}

func TestSplitFrontMatter_None(t *testing.T) {
	meta, body, err := SplitFrontMatter([]byte("# Plain\n"))
	if err != nil {
		t.Fatalf("SplitFrontMatter() error = %v", err)
	}
	if meta.Title != "" {
		t.Errorf("Title = %q, want empty", meta.Title)
	}
	if string(body) != "# Plain\n" {
		t.Errorf("body = %q, want unchanged", body)
	}
}
