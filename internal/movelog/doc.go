// Package movelog keeps the human-readable record of file moves: a text log
// with one line per move attempt and a CSV file with the same rows for
// spreadsheets. It observes organize and undo runs and never feeds back into
// them.
package movelog
