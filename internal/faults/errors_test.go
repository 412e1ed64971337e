package faults_test

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"

	"filesorter/internal/faults"
)

func TestWrapKeepsMarkerAndCause(t *testing.T) {
	cause := errors.New("disk on fire")
	err := faults.Wrap(faults.ErrDirectoryNotFound, "organizer", "scan", "Target directory missing", cause)
	if !errors.Is(err, faults.ErrDirectoryNotFound) {
		t.Fatalf("expected marker to be preserved, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be preserved, got %v", err)
	}
	if !strings.Contains(err.Error(), "organizer: scan: Target directory missing") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestWrapInfersPermissionMarker(t *testing.T) {
	cause := &fs.PathError{Op: "open", Path: "/x", Err: fs.ErrPermission}
	err := faults.Wrap(nil, "organizer", "scan", "", cause)
	if !errors.Is(err, faults.ErrPermission) {
		t.Fatalf("expected permission marker, got %v", err)
	}
}

func TestWrapWithoutMarkerOrCause(t *testing.T) {
	err := faults.Wrap(nil, "", "", "", nil)
	if err.Error() != "operation failed" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestKind(t *testing.T) {
	cases := map[string]error{
		"directory_not_found": faults.ErrDirectoryNotFound,
		"permission":          fmt.Errorf("wrapped: %w", fs.ErrPermission),
		"file_conflict":       faults.ErrFileConflict,
		"invalid_category":    faults.ErrInvalidCategory,
		"undo_state":          faults.ErrUndoState,
		"locked":              faults.ErrLocked,
		"unexpected":          errors.New("boom"),
		"":                    nil,
	}
	for want, err := range cases {
		if got := faults.Kind(err); got != want {
			t.Fatalf("Kind(%v) = %q, want %q", err, got, want)
		}
	}
}
