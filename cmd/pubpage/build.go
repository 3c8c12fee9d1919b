package main

import (
	"errors"
	"os"

	"github.com/matsen/pubpage/internal/bibtex"
	"github.com/matsen/pubpage/internal/page"
	"github.com/matsen/pubpage/internal/render"
	"github.com/spf13/cobra"
)

var buildDryRun bool

func init() {
	buildCmd.Flags().BoolVar(&buildDryRun, "dry-run", false, "Print the assembled page instead of writing it")
	rootCmd.AddCommand(buildCmd)
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Render the bibliographies into the page template",
	Long: `Render each configured bibliography and splice it into the template.

Entries without a year are rendered as 2000 and reported on stderr.
Any unreadable file, BibTeX syntax error, or entry without authors aborts
the build before the output file is touched.

Examples:
  pubpage build
  pubpage build --config site.yml
  pubpage build --dry-run > /tmp/research.markdown`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

// BuildResponse is the response for the build command.
type BuildResponse struct {
	Status     string                 `json:"status"`
	Output     string                 `json:"output"`
	HTMLOutput string                 `json:"html_output,omitempty"`
	Sections   []page.RenderedSection `json:"sections"`
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	a := page.NewAssembler(cfg, render.NewRenderer(newFormatter(cfg, os.Stderr)))

	if buildDryRun {
		doc, err := a.Build()
		if err != nil {
			exitWithError(buildExitCode(err), "%v", err)
		}
		outputHuman("%s", doc.Text)
		return nil
	}

	doc, err := a.Run()
	if err != nil {
		exitWithError(buildExitCode(err), "%v", err)
	}

	if humanOutput {
		for _, s := range doc.Sections {
			outputHuman("%-12s %3d entries from %s\n", s.Name, s.Entries, s.Source)
		}
		outputHuman("Wrote %s\n", cfg.Output)
		if cfg.HTMLOutput != "" {
			outputHuman("Wrote %s\n", cfg.HTMLOutput)
		}
		return nil
	}

	return outputJSON(BuildResponse{
		Status:     "built",
		Output:     cfg.Output,
		HTMLOutput: cfg.HTMLOutput,
		Sections:   doc.Sections,
	})
}

// buildExitCode separates malformed input from plain I/O failures.
func buildExitCode(err error) int {
	var perr *bibtex.ParseError
	if errors.Is(err, render.ErrNoAuthors) || errors.Is(err, bibtex.ErrInvalidYear) || errors.As(err, &perr) {
		return ExitDataError
	}
	return ExitError
}
