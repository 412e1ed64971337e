// Package config loads, normalizes, and validates filesorter configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and honours the FILESORTER_LOG_LEVEL environment override. The
// Config type carries the log and state directories, organizer behaviour, and
// user-defined categories that are layered over the built-in table.
//
// Obtain settings through this package so downstream code receives absolute
// paths, lower-cased extensions, and clear validation errors.
package config
