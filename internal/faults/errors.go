package faults

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

var (
	ErrDirectoryNotFound = errors.New("directory not found")
	ErrPermission        = errors.New("permission denied")
	ErrFileConflict      = errors.New("file conflict")
	ErrInvalidCategory   = errors.New("invalid category")
	ErrUndoState         = errors.New("undo state error")
	ErrLocked            = errors.New("target locked")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above. A nil marker is inferred from err
// via Classify.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = Classify(err)
	}
	switch {
	case marker == nil && err == nil:
		return errors.New(detail)
	case marker == nil:
		return fmt.Errorf("%s: %w", detail, err)
	case err != nil:
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	default:
		return fmt.Errorf("%w: %s", marker, detail)
	}
}

// Classify returns the marker matching a raw filesystem error, or nil when the
// error does not map onto the taxonomy.
func Classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrDirectoryNotFound), errors.Is(err, ErrPermission),
		errors.Is(err, ErrFileConflict), errors.Is(err, ErrInvalidCategory),
		errors.Is(err, ErrUndoState), errors.Is(err, ErrLocked):
		return nil
	case errors.Is(err, fs.ErrPermission):
		return ErrPermission
	default:
		return nil
	}
}

// Kind returns a short snake_case label for the marker carried by err. It is
// used as the event_type suffix in structured logs.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrDirectoryNotFound):
		return "directory_not_found"
	case errors.Is(err, ErrPermission), errors.Is(err, fs.ErrPermission):
		return "permission"
	case errors.Is(err, ErrFileConflict):
		return "file_conflict"
	case errors.Is(err, ErrInvalidCategory):
		return "invalid_category"
	case errors.Is(err, ErrUndoState):
		return "undo_state"
	case errors.Is(err, ErrLocked):
		return "locked"
	default:
		return "unexpected"
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "operation failed"
	}
	return strings.Join(parts, ": ")
}
