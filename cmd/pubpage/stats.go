package main

import (
	"github.com/matsen/pubpage/internal/storage"
	"github.com/spf13/cobra"
)

var statsSection string

func init() {
	statsCmd.Flags().StringVar(&statsSection, "section", "", "Only count entries from this section")
	rootCmd.AddCommand(statsCmd)
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count entries per year",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

// StatsResponse is the response for the stats command.
type StatsResponse struct {
	Total int                 `json:"total"`
	Years []storage.YearCount `json:"years"`
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	db := openIndex(cfg)
	defer db.Close()

	years, err := db.YearCounts(statsSection)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	resp := StatsResponse{Years: years}
	for _, y := range years {
		resp.Total += y.Count
	}

	if !humanOutput {
		return outputJSON(resp)
	}
	for _, y := range years {
		outputHuman("%d  %3d\n", y.Year, y.Count)
	}
	outputHuman("total %3d\n", resp.Total)
	return nil
}
