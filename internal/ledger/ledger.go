package ledger

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"filesorter/internal/faults"
	"filesorter/internal/logging"
)

// Ledger is the undo record for one target directory. It is owned by a single
// organizer and is not safe for concurrent use.
type Ledger struct {
	store  Store
	target string
	logger *slog.Logger
	now    func() time.Time

	run *Run
}

// New returns a ledger for target backed by store.
func New(store Store, target string, logger *slog.Logger) *Ledger {
	return &Ledger{
		store:  store,
		target: target,
		logger: logging.NewComponentLogger(logger, "ledger"),
		now:    time.Now,
	}
}

// SetClock overrides the time source used for restore records.
func (l *Ledger) SetClock(now func() time.Time) {
	if now != nil {
		l.now = now
	}
}

// Target returns the directory this ledger records moves for.
func (l *Ledger) Target() string {
	return l.target
}

// Begin discards the previous run's undo state and starts recording a new run.
func (l *Ledger) Begin(ctx context.Context, runID string, startedAt time.Time) error {
	run := &Run{ID: runID, Target: l.target, Status: RunActive, StartedAt: startedAt}
	if err := l.store.BeginRun(ctx, *run); err != nil {
		return faults.Wrap(faults.ErrUndoState, "ledger", "begin run", "Unable to record a new run", err)
	}
	l.run = run
	l.logger.Debug("ledger run started", logging.String(logging.FieldRunID, runID))
	return nil
}

// Append records a move attempt for the current run. Seq is assigned here.
// The write ignores cancellation of ctx: the move it describes has already
// happened on disk.
func (l *Ledger) Append(ctx context.Context, rec MoveRecord) (MoveRecord, error) {
	if l.run == nil {
		return rec, faults.Wrap(faults.ErrUndoState, "ledger", "append", "No run in progress", nil)
	}
	rec.Seq = len(l.run.Records) + 1
	if rec.Operation == "" {
		rec.Operation = OperationMove
	}
	if err := l.store.AppendMove(context.WithoutCancel(ctx), l.run.ID, rec); err != nil {
		return rec, faults.Wrap(faults.ErrUndoState, "ledger", "append", "Unable to persist move record", err)
	}
	l.run.Records = append(l.run.Records, rec)
	return rec, nil
}

// NoteCreatedDir records a category folder the current run created so undo
// can remove it again once it is empty. The folder list is persisted
// immediately so it survives a run that never reaches Finish.
func (l *Ledger) NoteCreatedDir(ctx context.Context, dir string) error {
	if l.run == nil {
		return nil
	}
	l.run.CreatedDirs = append(l.run.CreatedDirs, dir)
	if err := l.store.SetCreatedDirs(context.WithoutCancel(ctx), l.run.ID, l.run.CreatedDirs); err != nil {
		return faults.Wrap(faults.ErrUndoState, "ledger", "note created dir", "Unable to persist created folder", err)
	}
	return nil
}

// Finish persists the end of the current run, even when ctx is already
// canceled.
func (l *Ledger) Finish(ctx context.Context, finishedAt time.Time) error {
	if l.run == nil {
		return nil
	}
	l.run.FinishedAt = finishedAt
	if err := l.store.FinishRun(context.WithoutCancel(ctx), l.run.ID, finishedAt, l.run.CreatedDirs); err != nil {
		return faults.Wrap(faults.ErrUndoState, "ledger", "finish run", "Unable to persist run completion", err)
	}
	return nil
}

// Current returns a copy of the run being recorded, or nil.
func (l *Ledger) Current() *Run {
	if l.run == nil {
		return nil
	}
	clone := *l.run
	clone.Records = append([]MoveRecord(nil), l.run.Records...)
	clone.CreatedDirs = append([]string(nil), l.run.CreatedDirs...)
	return &clone
}

// Active loads the undoable run for the target from the store.
func (l *Ledger) Active(ctx context.Context) (*Run, error) {
	run, err := l.store.ActiveRun(ctx, l.target)
	if err != nil {
		return nil, faults.Wrap(faults.ErrUndoState, "ledger", "load", "Undo data is unreadable", err)
	}
	return run, nil
}

// CanUndo reports whether the active run holds at least one successful move.
func (l *Ledger) CanUndo(ctx context.Context) (bool, error) {
	run, err := l.Active(ctx)
	if err != nil {
		return false, err
	}
	return len(run.Successful()) > 0, nil
}

// History returns recent runs across all targets, newest first.
func (l *Ledger) History(ctx context.Context, limit int) ([]RunSummary, error) {
	runs, err := l.store.RecentRuns(ctx, limit)
	if err != nil {
		return nil, faults.Wrap(faults.ErrUndoState, "ledger", "history", "Unable to read run history", err)
	}
	return runs, nil
}

func (l *Ledger) consume(ctx context.Context, run *Run) error {
	if err := l.store.ConsumeRun(context.WithoutCancel(ctx), run.ID, l.now()); err != nil {
		return faults.Wrap(faults.ErrUndoState, "ledger", "consume run", "Unable to clear undo data", err)
	}
	if l.run != nil && l.run.ID == run.ID {
		l.run = nil
	}
	return nil
}

// IsNothingToUndo reports whether err came from an undo request with no
// recorded moves.
func IsNothingToUndo(err error) bool {
	return errors.Is(err, errNothingToUndo)
}
