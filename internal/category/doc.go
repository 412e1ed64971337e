// Package category maps file extensions onto the named folders the organizer
// sorts files into.
//
// Rules starts from the built-in table (Images, Documents, Videos, and so on)
// and accepts custom categories at runtime. Lookups are case-insensitive and
// never fail: anything unmapped lands in the miscellaneous category.
package category
