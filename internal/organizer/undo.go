package organizer

import (
	"context"

	"filesorter/internal/faults"
	"filesorter/internal/ledger"
	"filesorter/internal/logging"
	"filesorter/internal/movelog"
)

// CanUndo reports whether the last run for the target can be reversed.
func (o *Organizer) CanUndo(ctx context.Context) bool {
	if o.ledger == nil {
		return false
	}
	ok, err := o.ledger.CanUndo(ctx)
	if err != nil {
		logging.WarnWithContext(o.logger, "undo state unreadable", "undo_state_unreadable",
			logging.Error(err),
			logging.String(logging.FieldImpact, "undo is unavailable"),
			logging.String(logging.FieldErrorHint, "inspect or delete the ledger database under state_dir"),
		)
		return false
	}
	return ok
}

// Undo reverses the most recent run on the target. A second call, or a call
// with nothing recorded, returns Success=false with an error wrapping
// faults.ErrUndoState.
func (o *Organizer) Undo(ctx context.Context) (ledger.UndoResult, error) {
	if err := o.requireTarget("undo"); err != nil {
		return ledger.UndoResult{Message: "No target directory set"}, err
	}
	unlock, err := o.lock()
	if err != nil {
		return ledger.UndoResult{Message: "Target directory is busy"}, err
	}
	defer unlock()

	result, err := o.ledger.Undo(logging.WithTarget(ctx, o.target), o.fs, o.resolver)
	for _, rec := range result.Records {
		o.logMove(rec)
		if !rec.Succeeded() && o.moveLog != nil {
			if logErr := o.moveLog.Error(rec.Error, nil); logErr != nil {
				o.logger.Debug("move log write failed", logging.Error(logErr))
			}
		}
	}
	for _, dir := range result.RemovedDirs {
		if o.moveLog == nil {
			break
		}
		if logErr := o.moveLog.Record(movelog.Entry{Timestamp: o.now(), Operation: "remove_dir", Source: dir, Destination: o.target, Status: "success"}); logErr != nil {
			o.logger.Debug("move log write failed", logging.Error(logErr))
		}
	}
	return result, err
}

// ActiveRun returns the undoable run for the target, or nil.
func (o *Organizer) ActiveRun(ctx context.Context) (*ledger.Run, error) {
	if err := o.requireTarget("load run"); err != nil {
		return nil, err
	}
	return o.ledger.Active(ctx)
}

// History lists recent runs across all targets, newest first.
func (o *Organizer) History(ctx context.Context, limit int) ([]ledger.RunSummary, error) {
	runs, err := o.store.RecentRuns(ctx, limit)
	if err != nil {
		return nil, faults.Wrap(faults.ErrUndoState, "organizer", "history", "Unable to read run history", err)
	}
	return runs, nil
}

// RecentLogLines returns the newest move log lines, oldest first.
func (o *Organizer) RecentLogLines(limit int) ([]string, error) {
	if o.moveLog == nil {
		return nil, nil
	}
	return o.moveLog.Recent(limit)
}
