// Package preflight provides readiness checks for the filesystem paths and
// state that filesorter depends on.
//
// The CLI "filesorter status" command runs RunAll and renders each Result.
// Individual checks (CheckDirectoryAccess, CheckLedger) are also used before
// organize and undo to fail early with a readable message.
package preflight
