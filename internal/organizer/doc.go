// Package organizer sorts the files of one directory into category subfolders
// and reverses the most recent run on request.
//
// An Organizer scans the target non-recursively, classifies each file by
// extension, resolves name collisions so nothing is ever overwritten, moves
// the file, and records the move in the undo ledger and the move log. Per-file
// failures are captured in the result and never abort the run; directory-level
// failures abort before any move. Organize and Undo hold an advisory lock on
// the target so a second process cannot interleave with them.
package organizer
