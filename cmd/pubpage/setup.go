package main

import (
	"io"

	"github.com/matsen/pubpage/internal/config"
	"github.com/matsen/pubpage/internal/importer"
	"github.com/matsen/pubpage/internal/pdf"
	"github.com/matsen/pubpage/internal/reference"
	"github.com/matsen/pubpage/internal/render"
)

// loadConfig builds the effective configuration or exits with ExitConfigError.
func loadConfig() config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	cfg.LoadEnv()
	cfg.Expand()
	if err := cfg.Validate(); err != nil {
		exitWithError(ExitConfigError, "invalid config: %v", err)
	}
	return cfg
}

// newLocator returns the PDF locator for the configured papers directory.
func newLocator(cfg config.Config) *pdf.DirLocator {
	return pdf.NewDirLocator(cfg.PapersDir, cfg.PapersURL)
}

// newFormatter wires the configured papers directory and badges into a formatter.
func newFormatter(cfg config.Config, warn io.Writer) *render.Formatter {
	return &render.Formatter{
		Papers: newLocator(cfg),
		Badges: render.Badges{
			DOIImage: cfg.Badges.DOIImage,
			PDFImage: cfg.Badges.PDFImage,
			DOIBase:  cfg.Badges.DOIBase,
		},
		Warn:       warn,
		DOIFromPDF: cfg.DOIFromPDF,
	}
}

// readSections parses every configured bibliography, keyed by section name.
func readSections(cfg config.Config) (map[string][]reference.Reference, error) {
	out := make(map[string][]reference.Reference, len(cfg.Sections))
	for _, s := range cfg.Sections {
		refs, err := importer.Read(s.Source, s.Format)
		if err != nil {
			return nil, err
		}
		out[s.Name] = refs
	}
	return out, nil
}
