package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"filesorter/internal/config"
)

// SessionLogPattern matches the per-invocation log files NewFromConfig creates.
const SessionLogPattern = "filesorter-*.log"

// Options describes logger construction parameters.
type Options struct {
	Level       string
	Format      string
	OutputPaths []string
	Development bool
}

// New constructs a slog logger using the provided options.
func New(opts Options) (*slog.Logger, error) {
	writer, err := openWriters(defaultSlice(opts.OutputPaths, []string{"stdout"}))
	if err != nil {
		return nil, err
	}
	handler, err := newHandler(writer, opts)
	if err != nil {
		return nil, err
	}
	return slog.New(handler), nil
}

// NewWriter constructs a logger writing to w.
func NewWriter(w io.Writer, opts Options) (*slog.Logger, error) {
	handler, err := newHandler(w, opts)
	if err != nil {
		return nil, err
	}
	return slog.New(handler), nil
}

func newHandler(w io.Writer, opts Options) (slog.Handler, error) {
	level := ParseLevel(opts.Level)
	levelVar := new(slog.LevelVar)
	levelVar.Set(level)
	addSource := opts.Development || level <= slog.LevelDebug

	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "console"
	}
	switch format {
	case "json":
		return newJSONHandler(w, levelVar, addSource)
	case "console":
		return newPrettyHandler(w, levelVar, addSource), nil
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}
}

// Session is the logger for one CLI invocation.
type Session struct {
	Logger *slog.Logger
	Path   string
	file   *os.File
}

// Close flushes and closes the session log file.
func (s *Session) Close() error {
	if s == nil || s.file == nil {
		return nil
	}
	return s.file.Close()
}

// NewFromConfig creates the CLI logger. Records at the configured level go to a
// session file under log_dir; warnings and errors are also echoed to console.
func NewFromConfig(cfg *config.Config, console io.Writer) (*Session, error) {
	if console == nil {
		console = os.Stderr
	}
	if cfg == nil {
		logger, err := NewWriter(console, Options{Level: "warn", Format: "console"})
		if err != nil {
			return nil, err
		}
		return &Session{Logger: logger}, nil
	}

	consoleHandler, err := newHandler(console, Options{Level: cfg.Logging.Level, Format: "console"})
	if err != nil {
		return nil, err
	}
	echo := newLevelOverrideHandler(consoleHandler, slog.LevelWarn)

	if strings.TrimSpace(cfg.Paths.LogDir) == "" {
		return &Session{Logger: slog.New(echo)}, nil
	}
	if err := os.MkdirAll(cfg.Paths.LogDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure log directory: %w", err)
	}
	name := "filesorter-" + time.Now().UTC().Format("20060102T150405.000000000Z") + ".log"
	path := filepath.Join(cfg.Paths.LogDir, name)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	fileHandler, err := newHandler(file, Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	return &Session{
		Logger: TeeLogger(slog.New(fileHandler), echo),
		Path:   path,
		file:   file,
	}, nil
}

// ParseLevel maps a config level name to a slog level. Unknown names mean info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func defaultSlice(value []string, fallback []string) []string {
	if len(value) == 0 {
		return append([]string(nil), fallback...)
	}
	return append([]string(nil), value...)
}

func openWriters(outputPaths []string) (io.Writer, error) {
	seen := map[string]struct{}{}
	var writers []io.Writer

	for _, path := range outputPaths {
		trimmed := strings.TrimSpace(path)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}

		switch trimmed {
		case "stdout":
			writers = append(writers, os.Stdout)
		case "stderr":
			writers = append(writers, os.Stderr)
		default:
			if dir := filepath.Dir(trimmed); dir != "." && dir != "" {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return nil, err
				}
			}
			file, err := os.OpenFile(trimmed, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return nil, fmt.Errorf("open log file %s: %w", trimmed, err)
			}
			writers = append(writers, file)
		}
	}

	switch len(writers) {
	case 0:
		return os.Stdout, nil
	case 1:
		return writers[0], nil
	default:
		return io.MultiWriter(writers...), nil
	}
}
