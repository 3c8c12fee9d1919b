// Package main provides the pubpage CLI entry point.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool
	// configPath names a config file; empty means pubpage.yml if present
	configPath string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pubpage",
	Short: "Render BibTeX bibliographies into a publications page",
	Long: `pubpage renders journal and conference bibliographies into markdown
list items and splices them into a page template.

Run without a subcommand it behaves like "pubpage build": the template's
removal marker is stripped, each section placeholder is replaced with its
bibliography sorted newest first, and the result overwrites the output file.

Paths default to the layout of the site checkout and can be changed in
pubpage.yml, a .env file, or PUBPAGE_* environment variables.`,
	Args:          cobra.NoArgs,
	RunE:          runBuild,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default pubpage.yml if present)")
	rootCmd.Version = Version
}
