// Package conflict picks a destination path that does not collide with an
// existing entry. It is the only collision-avoidance mechanism in the
// organizer: moves never overwrite.
package conflict
