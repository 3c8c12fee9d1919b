package main

import (
	"fmt"

	"github.com/matsen/pubpage/internal/bibtex"
	"github.com/matsen/pubpage/internal/reference"
	"github.com/matsen/pubpage/internal/storage"
	"github.com/spf13/cobra"
)

// DefaultListLimit caps list output unless --limit says otherwise.
const DefaultListLimit = 50

var (
	listSection string
	listYear    int
	listVenue   string
	listSearch  string
	listLimit   int
	listBibTeX  bool
)

func init() {
	listCmd.Flags().StringVar(&listSection, "section", "", "Only entries from this section (e.g. journals)")
	listCmd.Flags().IntVar(&listYear, "year", 0, "Only entries from this year")
	listCmd.Flags().StringVar(&listVenue, "venue", "", "Only entries whose venue contains this text")
	listCmd.Flags().StringVarP(&listSearch, "search", "s", "", "Full-text search over title, authors and venue")
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", DefaultListLimit, "Maximum number of entries (0 for all)")
	listCmd.Flags().BoolVar(&listBibTeX, "bibtex", false, "Write matching entries as a BibTeX database")
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List bibliography entries",
	Long: `List entries from the configured bibliographies, newest first.

Examples:
  pubpage list --human
  pubpage list --section conferences --year 2021
  pubpage list --search phylogenetic --limit 10
  pubpage list --section journals --bibtex > journals.bib`,
	Args: cobra.NoArgs,
	RunE: runList,
}

// ListEntry is one entry in list output.
type ListEntry struct {
	storage.Entry
	HasPDF bool `json:"has_pdf"`
}

func runList(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	if listSection != "" {
		if _, ok := cfg.Section(listSection); !ok {
			exitWithError(ExitError, "unknown section: %s", listSection)
		}
	}

	db := openIndex(cfg)
	defer db.Close()

	entries, err := db.Query(storage.Filter{
		Section: listSection,
		Year:    listYear,
		Venue:   listVenue,
		Search:  listSearch,
		Limit:   listLimit,
	})
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if listBibTeX {
		refs := make([]reference.Reference, len(entries))
		for i, e := range entries {
			refs[i] = e.Reference
		}
		fmt.Print(bibtex.FormatList(refs))
		return nil
	}

	locator := newLocator(cfg)
	results := make([]ListEntry, len(entries))
	for i, e := range entries {
		results[i] = ListEntry{Entry: e, HasPDF: locator.Exists(e.Reference.ID)}
	}

	if !humanOutput {
		return outputJSON(results)
	}

	if len(results) == 0 {
		outputHuman("No entries found.\n")
		return nil
	}
	for _, r := range results {
		ref := r.Reference
		pdfMark := " "
		if r.HasPDF {
			pdfMark = "P"
		}
		outputHuman("%d %s %-12s %s\n", ref.Year, pdfMark, r.Section, ref.ID)
		outputHuman("       %s\n", truncateString(ref.Title, ListTitleMaxLen))
		outputHuman("       %s\n", formatAuthorsShort(ref.Authors, 3))
	}
	return nil
}
