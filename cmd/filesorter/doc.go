// Package main hosts the filesorter CLI entrypoint and command graph.
//
// The Cobra-based command tree resolves configuration once, opens a logging
// session under log_dir, and hands each command an Organizer bound to the
// directory it was given. Commands stay thin: classification, moves, undo and
// the move log all live in internal packages.
package main
