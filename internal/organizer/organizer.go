package organizer

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"filesorter/internal/category"
	"filesorter/internal/config"
	"filesorter/internal/conflict"
	"filesorter/internal/faults"
	"filesorter/internal/fsys"
	"filesorter/internal/ledger"
	"filesorter/internal/logging"
	"filesorter/internal/movelog"
)

// Options wires an Organizer. Zero values select the OS filesystem, an
// in-memory ledger, the built-in categories, and no move log or lock.
type Options struct {
	FS                  fsys.FS
	Store               ledger.Store
	MoveLog             *movelog.Logger
	Rules               *category.Rules
	Logger              *slog.Logger
	MaxConflictAttempts int
	SkipHidden          bool
	// LockDir holds per-target lock files. Empty disables locking.
	LockDir string
	Now     func() time.Time
	NewID   func() string
}

// Organizer sorts one target directory at a time. It owns its ledger and is
// not safe for concurrent use.
type Organizer struct {
	fs         fsys.FS
	store      ledger.Store
	moveLog    *movelog.Logger
	rules      *category.Rules
	resolver   *conflict.Resolver
	logger     *slog.Logger
	skipHidden bool
	lockDir    string
	now        func() time.Time
	newID      func() string

	target string
	ledger *ledger.Ledger
}

// New constructs an Organizer from opts.
func New(opts Options) *Organizer {
	logger := logging.NewComponentLogger(opts.Logger, "organizer")
	o := &Organizer{
		fs:         opts.FS,
		store:      opts.Store,
		moveLog:    opts.MoveLog,
		rules:      opts.Rules,
		logger:     logger,
		skipHidden: opts.SkipHidden,
		lockDir:    strings.TrimSpace(opts.LockDir),
		now:        opts.Now,
		newID:      opts.NewID,
	}
	if o.fs == nil {
		o.fs = fsys.OS()
	}
	if o.store == nil {
		o.store = ledger.NewMemoryStore()
	}
	if o.rules == nil {
		o.rules = category.Default(opts.Logger)
	}
	if o.now == nil {
		o.now = time.Now
	}
	if o.newID == nil {
		o.newID = uuid.NewString
	}
	o.resolver = conflict.New(o.fs, opts.MaxConflictAttempts)
	return o
}

// NewFromConfig builds an Organizer on the real filesystem with the SQLite
// ledger, the move log, and the categories configured in cfg.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) (*Organizer, error) {
	if cfg == nil {
		return nil, errors.New("organizer: config is required")
	}
	rules := category.WithMiscellaneous(cfg.Organizer.MiscCategory, logger)
	for _, name := range cfg.CategoryNames() {
		if _, err := rules.AddCategory(name, cfg.Categories[name]); err != nil {
			return nil, err
		}
	}
	store, err := ledger.Open(cfg)
	if err != nil {
		return nil, faults.Wrap(faults.ErrUndoState, "organizer", "open ledger", "Unable to open the undo ledger", err)
	}
	moveLog, err := movelog.New(afero.NewOsFs(), cfg.Paths.LogDir)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("open move log: %w", err)
	}
	return New(Options{
		FS:                  fsys.OS(),
		Store:               store,
		MoveLog:             moveLog,
		Rules:               rules,
		Logger:              logger,
		MaxConflictAttempts: cfg.Organizer.MaxConflictAttempts,
		SkipHidden:          cfg.Organizer.SkipHidden,
		LockDir:             cfg.LockDir(),
	}), nil
}

// SetTargetDirectory selects the directory to organize. The path must exist
// and be a directory.
func (o *Organizer) SetTargetDirectory(path string) error {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return faults.Wrap(faults.ErrDirectoryNotFound, "organizer", "set target", "No directory given", nil)
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return faults.Wrap(faults.ErrDirectoryNotFound, "organizer", "set target", fmt.Sprintf("Cannot resolve %s", trimmed), err)
	}
	info, err := o.fs.Stat(abs)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return faults.Wrap(faults.ErrDirectoryNotFound, "organizer", "set target", fmt.Sprintf("Directory does not exist: %s", abs), nil)
	case err != nil:
		return faults.Wrap(nil, "organizer", "set target", fmt.Sprintf("Cannot inspect %s", abs), err)
	case !info.IsDir():
		return faults.Wrap(faults.ErrDirectoryNotFound, "organizer", "set target", fmt.Sprintf("Not a directory: %s", abs), nil)
	}
	o.target = abs
	o.ledger = ledger.New(o.store, abs, o.logger)
	o.ledger.SetClock(o.now)
	o.logger.Debug("target directory set", logging.String(logging.FieldTarget, abs))
	return nil
}

// Target returns the selected directory, or "" before SetTargetDirectory.
func (o *Organizer) Target() string {
	return o.target
}

// AddCustomCategory maps exts to name for subsequent runs. Files already
// moved are not reclassified.
func (o *Organizer) AddCustomCategory(name string, exts []string) error {
	_, err := o.rules.AddCategory(name, exts)
	return err
}

// Rules exposes the effective category rules.
func (o *Organizer) Rules() *category.Rules {
	return o.rules
}

// Close releases the ledger store.
func (o *Organizer) Close() error {
	if o.store == nil {
		return nil
	}
	return o.store.Close()
}

func (o *Organizer) requireTarget(operation string) error {
	if o.target == "" || o.ledger == nil {
		return faults.Wrap(faults.ErrDirectoryNotFound, "organizer", operation, "No target directory set", nil)
	}
	return nil
}
