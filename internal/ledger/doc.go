// Package ledger records the moves of the most recent organize run per target
// directory and replays them in reverse on undo.
//
// A run is appended to as files move, so the record survives a crash
// mid-run. Starting a new run supersedes the previous one for the same target
// (undo is single-level), and a completed undo consumes the run. The SQLite
// store keeps a short summary of superseded and consumed runs for the history
// view; only the active run keeps its individual move records.
//
// Keep the schema in schema.sql in step with schemaVersion.
package ledger
