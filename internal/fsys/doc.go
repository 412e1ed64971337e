// Package fsys is the filesystem capability used by the organizer and the
// undo ledger: list a directory, stat, create folders, move files, and remove
// empty folders.
//
// Production code runs on the operating system through afero.OsFs; tests hand
// in afero.NewMemMapFs so every move and restore can be verified without
// touching a disk.
package fsys
