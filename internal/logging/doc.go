// Package logging assembles structured slog loggers and formatting helpers used
// across filesorter.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so organizer code can tag log
// lines with the run ID and target directory. The package also provides a
// no-op logger for tests and wiring code that cannot fail, plus pruning of old
// session logs.
package logging
