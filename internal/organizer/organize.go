package organizer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"

	"filesorter/internal/faults"
	"filesorter/internal/ledger"
	"filesorter/internal/logging"
	"filesorter/internal/movelog"
)

// Outcome classifies an organize run.
type Outcome string

const (
	OutcomeOrganized   Outcome = "organized"
	OutcomeNothingToDo Outcome = "nothing_to_do"
	OutcomeFailed      Outcome = "failed"
)

const maxErrorDetails = 10

// Progress is reported once per processed file.
type Progress struct {
	Index    int
	Total    int
	Name     string
	Category string
	Record   ledger.MoveRecord
}

// OrganizeOptions carries the caller's callbacks. Both are optional and are
// invoked on the caller's goroutine.
type OrganizeOptions struct {
	Progress func(Progress)
	Done     func(*OrganizeResult)
}

// CategoryCount tallies moves into one category.
type CategoryCount struct {
	Moved  int
	Failed int
}

// OrganizeResult summarizes a run.
type OrganizeResult struct {
	Success  bool
	Outcome  Outcome
	Message  string
	RunID    string
	Counts   map[string]CategoryCount
	Records  []ledger.MoveRecord
	Moved    int
	Failed   int
	Total    int
	Errors   []string
	Canceled bool
}

// Organize moves every top-level file of the target into its category folder.
// Per-file failures are recorded and processing continues. Cancellation of ctx
// is honoured between files only; the run is still finished and undoable.
// When a move cannot be written to the ledger the run stops before the next
// file and the partial result is returned together with the error.
func (o *Organizer) Organize(ctx context.Context, opts OrganizeOptions) (*OrganizeResult, error) {
	if err := o.requireTarget("organize"); err != nil {
		return nil, err
	}
	unlock, err := o.lock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	entries, err := o.scan(ctx)
	if err != nil {
		return nil, err
	}
	result := &OrganizeResult{Counts: make(map[string]CategoryCount), Total: len(entries)}
	if len(entries) == 0 {
		result.Outcome = OutcomeNothingToDo
		result.Message = "No files to organize"
		o.logger.Info("nothing to organize", logging.String(logging.FieldTarget, o.target))
		if opts.Done != nil {
			opts.Done(result)
		}
		return result, nil
	}

	result.RunID = o.newID()
	ctx = logging.WithTarget(logging.WithRunID(ctx, result.RunID), o.target)
	logger := logging.WithContext(ctx, o.logger)
	if err := o.ledger.Begin(ctx, result.RunID, o.now()); err != nil {
		return nil, err
	}
	logger.Info("organize started", logging.Int("files", len(entries)))

	created := make(map[string]bool)
	var recordErr error
	for i, entry := range entries {
		if ctx.Err() != nil {
			result.Canceled = true
			logger.Info("organize canceled", logging.Int("processed", i), logging.Int("remaining", len(entries)-i))
			break
		}
		rec := o.moveOne(ctx, entry, created)
		rec, err := o.ledger.Append(ctx, rec)
		if err != nil {
			recordErr = err
			o.reportUnrecorded(logger, rec, err)
		}
		o.logMove(rec)
		result.Records = append(result.Records, rec)
		count := result.Counts[entry.Category]
		if rec.Succeeded() {
			result.Moved++
			count.Moved++
		} else {
			result.Failed++
			count.Failed++
			if len(result.Errors) < maxErrorDetails {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %s", entry.Name, rec.Error))
			}
		}
		result.Counts[entry.Category] = count
		if recordErr != nil {
			if rec.Succeeded() {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: moved to %s but not recorded for undo", entry.Name, rec.Destination))
			}
			break
		}
		if opts.Progress != nil {
			opts.Progress(Progress{Index: i + 1, Total: len(entries), Name: entry.Name, Category: entry.Category, Record: rec})
		}
	}

	if err := o.ledger.Finish(ctx, o.now()); err != nil {
		if recordErr == nil {
			recordErr = err
		} else {
			logger.Error("run completion not recorded", logging.Error(err))
		}
	}

	result.Success = result.Moved > 0 && recordErr == nil
	switch {
	case recordErr != nil:
		result.Message = fmt.Sprintf("Organize stopped after %d of %d files: undo data could not be saved", len(result.Records), len(entries))
	case result.Canceled:
		result.Message = fmt.Sprintf("Organize canceled: moved %d of %d files", result.Moved, len(entries))
	case result.Failed > 0:
		result.Message = fmt.Sprintf("Organized %d files with %d failures", result.Moved, result.Failed)
	default:
		result.Message = fmt.Sprintf("Successfully organized %d files into %d categories", result.Moved, categoriesUsed(result.Counts))
	}
	if result.Moved > 0 {
		result.Outcome = OutcomeOrganized
	} else {
		result.Outcome = OutcomeFailed
	}
	logger.Info("organize completed",
		logging.Int("moved", result.Moved),
		logging.Int("failed", result.Failed),
		logging.Bool("canceled", result.Canceled),
		logging.String(logging.FieldEventType, "organize_completed"),
	)
	if opts.Done != nil {
		opts.Done(result)
	}
	return result, recordErr
}

// reportUnrecorded logs a move whose ledger entry could not be written so the
// file can be put back by hand.
func (o *Organizer) reportUnrecorded(logger *slog.Logger, rec ledger.MoveRecord, err error) {
	if !rec.Succeeded() {
		logging.ErrorWithContext(logger, "move attempt not recorded", "move_unrecorded", logging.Error(err))
		return
	}
	logging.ErrorWithContext(logger, "move not recorded for undo", "move_unrecorded",
		append(logging.MoveAttrs(rec.Source, rec.Destination, rec.Category),
			logging.Error(err),
			logging.String(logging.FieldImpact, "undo will not restore this file"),
			logging.String(logging.FieldErrorHint, "move the file back manually and check state_dir"),
		)...,
	)
}

func (o *Organizer) moveOne(ctx context.Context, entry FileEntry, created map[string]bool) ledger.MoveRecord {
	logger := logging.WithContext(ctx, o.logger)
	dir := filepath.Join(o.target, entry.Category)
	rec := ledger.MoveRecord{
		Operation:   ledger.OperationMove,
		Source:      entry.Path,
		Destination: filepath.Join(dir, entry.Name),
		Category:    entry.Category,
		Outcome:     ledger.OutcomeFailed,
	}
	fail := func(err error) ledger.MoveRecord {
		rec.Timestamp = o.now()
		rec.Error = err.Error()
		logging.WarnWithContext(logger, "file not moved", "move_failed_"+faults.Kind(err),
			append(logging.MoveAttrs(rec.Source, rec.Destination, rec.Category),
				logging.Error(err),
				logging.String(logging.FieldImpact, "file stays in the target directory"),
				logging.String(logging.FieldErrorHint, "check permissions or whether the file is in use"),
			)...,
		)
		if o.moveLog != nil {
			if logErr := o.moveLog.Error("Failed to move "+entry.Name, err); logErr != nil {
				logger.Debug("move log write failed", logging.Error(logErr))
			}
		}
		return rec
	}

	if !created[dir] {
		exists, err := o.fs.Exists(dir)
		if err != nil {
			return fail(faults.Wrap(nil, "organizer", "inspect category folder", dir, err))
		}
		if !exists {
			if err := o.fs.MkdirAll(dir); err != nil {
				return fail(faults.Wrap(nil, "organizer", "create category folder", dir, err))
			}
			if err := o.ledger.NoteCreatedDir(ctx, dir); err != nil {
				logging.WarnWithContext(logger, "created folder not recorded", "created_dir_unrecorded",
					logging.String("dir", dir),
					logging.Error(err),
					logging.String(logging.FieldImpact, "undo may leave this folder behind if the run is interrupted"),
				)
			}
			logger.Info("category folder created", logging.String("dir", dir))
			if o.moveLog != nil {
				if err := o.moveLog.Record(movelog.Entry{Timestamp: o.now(), Operation: "create_dir", Source: o.target, Destination: dir, Status: "success"}); err != nil {
					logger.Debug("move log write failed", logging.Error(err))
				}
			}
		}
		created[dir] = true
	}

	dest, err := o.resolver.Resolve(rec.Destination)
	if err != nil {
		return fail(err)
	}
	err = o.fs.Move(entry.Path, dest)
	if errors.Is(err, fs.ErrExist) {
		if dest, err = o.resolver.Resolve(rec.Destination); err != nil {
			return fail(err)
		}
		err = o.fs.Move(entry.Path, dest)
	}
	if err != nil {
		return fail(faults.Wrap(nil, "organizer", "move", entry.Name, err))
	}
	if dest != rec.Destination {
		logger.Info("name conflict resolved",
			logging.String("wanted", rec.Destination),
			logging.String("destination", dest),
			logging.String(logging.FieldEventType, "conflict_renamed"),
		)
	}
	rec.Destination = dest
	rec.Timestamp = o.now()
	rec.Outcome = ledger.OutcomeSuccess
	logger.Debug("file moved", logging.Args(logging.MoveAttrs(rec.Source, rec.Destination, rec.Category)...)...)
	return rec
}

func (o *Organizer) logMove(rec ledger.MoveRecord) {
	if o.moveLog == nil {
		return
	}
	err := o.moveLog.Record(movelog.Entry{
		Timestamp:   rec.Timestamp,
		Operation:   string(rec.Operation),
		Source:      rec.Source,
		Destination: rec.Destination,
		Status:      string(rec.Outcome),
	})
	if err != nil {
		logging.WarnWithContext(o.logger, "move log write failed", "movelog_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "the text and CSV move logs are incomplete"),
			logging.String(logging.FieldErrorHint, "check log_dir permissions"),
		)
	}
}

func categoriesUsed(counts map[string]CategoryCount) int {
	n := 0
	for _, c := range counts {
		if c.Moved > 0 {
			n++
		}
	}
	return n
}
