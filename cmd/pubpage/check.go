package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/matsen/pubpage/internal/config"
	"github.com/matsen/pubpage/internal/importer"
	"github.com/matsen/pubpage/internal/page"
	"github.com/matsen/pubpage/internal/pdf"
	"github.com/matsen/pubpage/internal/reference"
	"github.com/spf13/cobra"
)

var checkPDFs bool

func init() {
	checkCmd.Flags().BoolVar(&checkPDFs, "pdfs", false, "Also open each PDF and report unreadable files")
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report problems in the bibliographies and template",
	Long: `Report problems that would break or degrade the page build.

Errors (exit code 3):
  - template is missing a section placeholder
  - bibliography cannot be parsed
  - entry has no authors

Warnings:
  - entry has no year (rendered as 2000)
  - entry has no journal or booktitle
  - template has no removal marker
  - PDF cannot be read (with --pdfs)

Info:
  - entry has no PDF in the papers directory
  - entry has no DOI`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

// Issue severities.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

// Issue is one problem found by check.
type Issue struct {
	Severity string `json:"severity"`
	Section  string `json:"section,omitempty"`
	Key      string `json:"key,omitempty"`
	Message  string `json:"message"`
}

// CheckResponse is the response for the check command.
type CheckResponse struct {
	Status   string  `json:"status"`
	Entries  int     `json:"entries"`
	Errors   int     `json:"errors"`
	Warnings int     `json:"warnings"`
	Issues   []Issue `json:"issues"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	issues := checkTemplate(cfg)
	entries := 0
	locator := newLocator(cfg)

	for _, s := range cfg.Sections {
		refs, err := importer.Read(s.Source, s.Format)
		if err != nil {
			issues = append(issues, Issue{Severity: SeverityError, Section: s.Name, Message: err.Error()})
			continue
		}
		entries += len(refs)
		for _, ref := range refs {
			issues = append(issues, checkReference(s.Name, ref, locator)...)
		}
	}

	if issues == nil {
		issues = []Issue{}
	}
	resp := CheckResponse{Status: "ok", Entries: entries, Issues: issues}
	for _, is := range issues {
		switch is.Severity {
		case SeverityError:
			resp.Errors++
		case SeverityWarning:
			resp.Warnings++
		}
	}
	if resp.Errors > 0 {
		resp.Status = "failed"
	}

	if humanOutput {
		printIssuesHuman(resp)
	} else if err := outputJSON(resp); err != nil {
		return err
	}

	if resp.Errors > 0 {
		os.Exit(ExitDataError)
	}
	return nil
}

func checkTemplate(cfg config.Config) []Issue {
	data, err := os.ReadFile(cfg.Template)
	if err != nil {
		return []Issue{{Severity: SeverityError, Message: fmt.Sprintf("reading template: %v", err)}}
	}
	text := string(data)

	var issues []Issue
	for _, marker := range page.MissingMarkers(text, cfg.Sections) {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Message:  fmt.Sprintf("template %s has no placeholder %q", cfg.Template, marker),
		})
	}
	if cfg.RemoveMarker != "" && !strings.Contains(text, cfg.RemoveMarker) {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("template %s has no removal marker %q", cfg.Template, cfg.RemoveMarker),
		})
	}
	return issues
}

func checkReference(section string, ref reference.Reference, locator pdf.Locator) []Issue {
	var issues []Issue
	add := func(severity, msg string) {
		issues = append(issues, Issue{Severity: severity, Section: section, Key: ref.ID, Message: msg})
	}

	if len(ref.Authors) == 0 {
		add(SeverityError, "no authors")
	}
	if !ref.HasYear {
		add(SeverityWarning, fmt.Sprintf("year is missing, rendered as %d", reference.DefaultYear))
	}
	if ref.Venue == "" {
		add(SeverityWarning, "no journal or booktitle")
	}
	if !ref.HasDOI() {
		add(SeverityInfo, "no DOI")
	}

	if !locator.Exists(ref.ID) {
		add(SeverityInfo, fmt.Sprintf("no PDF at %s", locator.Path(ref.ID)))
	} else if checkPDFs {
		if _, err := pdf.PageCount(locator.Path(ref.ID)); err != nil {
			add(SeverityWarning, fmt.Sprintf("unreadable PDF: %v", err))
		}
	}

	return issues
}

func printIssuesHuman(resp CheckResponse) {
	for _, is := range resp.Issues {
		where := is.Section
		if is.Key != "" {
			where += "/" + is.Key
		}
		if where != "" {
			outputHuman("%-7s %s: %s\n", is.Severity, where, is.Message)
		} else {
			outputHuman("%-7s %s\n", is.Severity, is.Message)
		}
	}
	outputHuman("\n%d entries checked: %d errors, %d warnings\n", resp.Entries, resp.Errors, resp.Warnings)
}
