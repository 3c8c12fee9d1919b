package main

import (
	"github.com/matsen/pubpage/internal/config"
	"github.com/matsen/pubpage/internal/storage"
)

// openIndex loads every configured section into an in-memory index.
func openIndex(cfg config.Config) *storage.DB {
	sections, err := readSections(cfg)
	if err != nil {
		exitWithError(buildExitCode(err), "%v", err)
	}

	db, err := storage.OpenDB(storage.MemoryPath)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	for _, s := range cfg.Sections {
		if err := db.Load(s.Name, sections[s.Name]); err != nil {
			db.Close()
			exitWithError(ExitError, "indexing %s: %v", s.Name, err)
		}
	}
	return db
}
