package conflict

import (
	"fmt"
	"path/filepath"
	"strings"

	"filesorter/internal/faults"
)

// DefaultMaxAttempts bounds the numbered candidates tried before giving up.
const DefaultMaxAttempts = 10000

// Checker reports whether a path is already taken.
type Checker interface {
	Exists(path string) (bool, error)
}

// Resolver generates "name (n).ext" candidates until one is free.
type Resolver struct {
	fs          Checker
	maxAttempts int
}

// New returns a resolver backed by fs. A non-positive maxAttempts selects
// DefaultMaxAttempts.
func New(fs Checker, maxAttempts int) *Resolver {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Resolver{fs: fs, maxAttempts: maxAttempts}
}

// Resolve returns dest unchanged when it is free, otherwise the first free
// numbered candidate.
func (r *Resolver) Resolve(dest string) (string, error) {
	taken, err := r.fs.Exists(dest)
	if err != nil {
		return "", faults.Wrap(nil, "conflict", "check destination", dest, err)
	}
	if !taken {
		return dest, nil
	}
	for n := 1; n <= r.maxAttempts; n++ {
		candidate := Candidate(dest, n)
		taken, err := r.fs.Exists(candidate)
		if err != nil {
			return "", faults.Wrap(nil, "conflict", "check candidate", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", faults.Wrap(
		faults.ErrFileConflict,
		"conflict",
		"resolve destination",
		fmt.Sprintf("no free name for %s after %d attempts", dest, r.maxAttempts),
		nil,
	)
}

// Candidate returns the n-th numbered alternative for path, keeping the
// original extension: "photo.jpg" becomes "photo (n).jpg".
func Candidate(path string, n int) string {
	dir, base := filepath.Split(path)
	stem, ext := splitName(base)
	return dir + fmt.Sprintf("%s (%d)%s", stem, n, ext)
}

func splitName(base string) (string, string) {
	idx := strings.LastIndexByte(base, '.')
	if idx <= 0 || idx == len(base)-1 || strings.Trim(base[:idx], ".") == "" {
		return base, ""
	}
	return base[:idx], base[idx:]
}
