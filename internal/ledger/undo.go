package ledger

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"filesorter/internal/faults"
	"filesorter/internal/logging"
)

var errNothingToUndo = errors.New("nothing to undo")

// Filesystem is the subset of filesystem operations undo needs.
type Filesystem interface {
	Exists(path string) (bool, error)
	MkdirAll(path string) error
	Move(src, dst string) error
	RemoveEmptyDir(dir string) (bool, error)
}

// PathResolver picks a free path when the original location is occupied.
type PathResolver interface {
	Resolve(dest string) (string, error)
}

// Discrepancy records a file that could not return to its exact original path.
type Discrepancy struct {
	Original string
	Restored string
}

// UndoResult summarizes a reverse replay.
type UndoResult struct {
	RunID       string
	Success     bool
	Message     string
	Restored    int
	Failed      int
	Skipped     []string
	Errors      []string
	Renamed     []Discrepancy
	RemovedDirs []string
	Records     []MoveRecord
}

// Undo moves every successful record of the active run back to its source,
// newest first, then clears the run. Records whose destination vanished are
// skipped and counted as failures. An occupied source is resolved to a free
// name instead of being overwritten. Category folders the run created are
// removed when they end up empty.
func (l *Ledger) Undo(ctx context.Context, fs Filesystem, resolver PathResolver) (UndoResult, error) {
	run, err := l.Active(ctx)
	if err != nil {
		return UndoResult{Message: "Undo data is unreadable"}, err
	}
	moves := run.Successful()
	if len(moves) == 0 {
		if run != nil {
			if err := l.consume(ctx, run); err != nil {
				l.logger.Warn("failed to clear empty run", logging.Error(err))
			}
		}
		return UndoResult{Message: "No operations to undo"},
			faults.Wrap(faults.ErrUndoState, "ledger", "undo", "No operations to undo", errNothingToUndo)
	}

	logger := l.logger.With(logging.String(logging.FieldRunID, run.ID))
	result := UndoResult{RunID: run.ID}
	for i := len(moves) - 1; i >= 0; i-- {
		rec := l.restore(fs, resolver, moves[i], &result)
		result.Records = append(result.Records, rec)
		if rec.Succeeded() {
			logger.Info("file restored",
				logging.String("from", rec.Source),
				logging.String("to", rec.Destination),
			)
		} else {
			logging.WarnWithContext(logger, "file not restored", "undo_restore_failed",
				logging.String("from", rec.Source),
				logging.String("to", rec.Destination),
				logging.String("reason", rec.Error),
				logging.String(logging.FieldImpact, "file stays where the organize run left it"),
				logging.String(logging.FieldErrorHint, "move the file back manually if it still exists"),
			)
		}
	}

	for i := len(run.CreatedDirs) - 1; i >= 0; i-- {
		dir := run.CreatedDirs[i]
		removed, err := fs.RemoveEmptyDir(dir)
		if err != nil {
			logging.WarnWithContext(logger, "category folder not removed", "undo_dir_cleanup_failed",
				logging.String("dir", dir),
				logging.Error(err),
				logging.String(logging.FieldImpact, "an empty category folder remains"),
			)
			continue
		}
		if removed {
			result.RemovedDirs = append(result.RemovedDirs, dir)
		}
	}

	if err := l.consume(ctx, run); err != nil {
		return result, err
	}

	switch {
	case result.Failed == 0:
		result.Success = true
		result.Message = fmt.Sprintf("Successfully undone %d operations", result.Restored)
	case result.Restored > 0:
		result.Success = true
		result.Message = fmt.Sprintf("Partially undone: %d successful, %d failed", result.Restored, result.Failed)
	default:
		result.Message = fmt.Sprintf("Undo failed: %d errors", result.Failed)
	}
	logger.Info("undo completed",
		logging.Int("restored", result.Restored),
		logging.Int("failed", result.Failed),
		logging.Int("renamed", len(result.Renamed)),
		logging.Int("removed_dirs", len(result.RemovedDirs)),
	)
	return result, nil
}

func (l *Ledger) restore(fs Filesystem, resolver PathResolver, move MoveRecord, result *UndoResult) MoveRecord {
	rec := MoveRecord{
		Seq:         move.Seq,
		Operation:   OperationUndo,
		Source:      move.Destination,
		Destination: move.Source,
		Category:    move.Category,
		Timestamp:   l.now(),
		Outcome:     OutcomeFailed,
	}
	fail := func(message string) MoveRecord {
		rec.Error = message
		result.Failed++
		result.Errors = append(result.Errors, message)
		return rec
	}

	present, err := fs.Exists(move.Destination)
	if err != nil {
		return fail(fmt.Sprintf("Cannot undo: stat %s: %v", move.Destination, err))
	}
	if !present {
		result.Skipped = append(result.Skipped, move.Destination)
		return fail(fmt.Sprintf("Cannot undo: %s does not exist", move.Destination))
	}
	if err := fs.MkdirAll(filepath.Dir(move.Source)); err != nil {
		return fail(fmt.Sprintf("Cannot undo: recreate %s: %v", filepath.Dir(move.Source), err))
	}
	target, err := resolver.Resolve(move.Source)
	if err != nil {
		return fail(fmt.Sprintf("Cannot undo: %v", err))
	}
	if err := fs.Move(move.Destination, target); err != nil {
		return fail(fmt.Sprintf("Cannot undo: move %s: %v", move.Destination, err))
	}
	if target != move.Source {
		result.Renamed = append(result.Renamed, Discrepancy{Original: move.Source, Restored: target})
	}
	rec.Destination = target
	rec.Outcome = OutcomeSuccess
	result.Restored++
	return rec
}
