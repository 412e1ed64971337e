// Package faults defines the error markers shared by the organizer, the undo
// ledger, and the CLI.
//
// Errors are built with Wrap so callers can classify them with errors.Is while
// the message still carries the component and operation that failed. The CLI
// maps markers to exit codes and the organizer maps filesystem errors onto the
// markers before surfacing them.
package faults
