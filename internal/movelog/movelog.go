package movelog

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"
)

const (
	// TextFileName is the text log written under the log directory.
	TextFileName = "file_operations.log"
	// CSVFileName is the CSV log written under the log directory.
	CSVFileName = "moved_files.csv"
	// TimestampLayout formats every log timestamp.
	TimestampLayout = "2006-01-02 15:04:05"
)

var csvHeader = []string{"Timestamp", "Source", "Destination", "Operation", "Status"}

// Entry is one move attempt as it appears in the logs.
type Entry struct {
	Timestamp   time.Time
	Operation   string
	Source      string
	Destination string
	Status      string
}

// Logger appends entries to the text and CSV logs. It is safe for concurrent use.
type Logger struct {
	mu  sync.Mutex
	fs  afero.Fs
	dir string
	now func() time.Time
}

// New returns a Logger writing under dir, creating the directory and the CSV
// header when missing.
func New(filesystem afero.Fs, dir string) (*Logger, error) {
	if filesystem == nil {
		filesystem = afero.NewOsFs()
	}
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("movelog: log directory is required")
	}
	if err := filesystem.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("movelog: create %s: %w", dir, err)
	}
	l := &Logger{fs: filesystem, dir: dir, now: time.Now}
	if err := l.ensureCSVHeader(); err != nil {
		return nil, err
	}
	return l, nil
}

// SetClock overrides the time source used for entries without a timestamp.
func (l *Logger) SetClock(now func() time.Time) {
	if now != nil {
		l.now = now
	}
}

// TextPath returns the text log location.
func (l *Logger) TextPath() string {
	return filepath.Join(l.dir, TextFileName)
}

// CSVPath returns the CSV log location.
func (l *Logger) CSVPath() string {
	return filepath.Join(l.dir, CSVFileName)
}

// Record appends e to both logs.
func (l *Logger) Record(e Entry) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = l.now()
	}
	if e.Operation == "" {
		e.Operation = "move"
	}
	ts := e.Timestamp.Format(TimestampLayout)
	line := fmt.Sprintf("[%s] %s: %s -> %s (%s)\n", ts, strings.ToUpper(e.Operation), e.Source, e.Destination, e.Status)

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.appendText(line); err != nil {
		return err
	}
	return l.appendCSV([]string{ts, e.Source, e.Destination, e.Operation, e.Status})
}

// Error appends an ERROR line to the text log.
func (l *Logger) Error(message string, cause error) error {
	line := fmt.Sprintf("[%s] ERROR: %s", l.now().Format(TimestampLayout), message)
	if cause != nil {
		line += " - " + cause.Error()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.appendText(line + "\n")
}

// Recent returns up to limit of the newest text log lines, oldest first.
func (l *Logger) Recent(limit int) ([]string, error) {
	if limit <= 0 {
		return nil, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	file, err := l.fs.Open(l.TextPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("movelog: open %s: %w", l.TextPath(), err)
	}
	defer file.Close()

	ring := make([]string, 0, limit)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if len(ring) == limit {
			ring = append(ring[:0], ring[1:]...)
		}
		ring = append(ring, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("movelog: read %s: %w", l.TextPath(), err)
	}
	return ring, nil
}

func (l *Logger) appendText(line string) error {
	file, err := l.fs.OpenFile(l.TextPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("movelog: open %s: %w", l.TextPath(), err)
	}
	if _, err := file.WriteString(line); err != nil {
		_ = file.Close()
		return fmt.Errorf("movelog: write %s: %w", l.TextPath(), err)
	}
	return file.Close()
}

func (l *Logger) appendCSV(row []string) error {
	file, err := l.fs.OpenFile(l.CSVPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("movelog: open %s: %w", l.CSVPath(), err)
	}
	w := csv.NewWriter(file)
	if err := w.Write(row); err != nil {
		_ = file.Close()
		return fmt.Errorf("movelog: write %s: %w", l.CSVPath(), err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = file.Close()
		return fmt.Errorf("movelog: write %s: %w", l.CSVPath(), err)
	}
	return file.Close()
}

func (l *Logger) ensureCSVHeader() error {
	info, err := l.fs.Stat(l.CSVPath())
	switch {
	case err == nil && info.Size() > 0:
		return nil
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("movelog: stat %s: %w", l.CSVPath(), err)
	}
	return l.appendCSV(csvHeader)
}
