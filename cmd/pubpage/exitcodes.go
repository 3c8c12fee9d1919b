package main

// Exit codes
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (I/O failure, unreadable bibliography)
	ExitConfigError = 2 // Configuration error (bad config file, invalid paths or markers)
	ExitDataError   = 3 // Data error (malformed entry, missing template marker)
)
