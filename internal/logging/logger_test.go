package logging_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"filesorter/internal/config"
	"filesorter/internal/logging"
)

func TestNewFromConfigWritesSessionFileAndEchoesWarnings(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Logging.Format = "json"

	var console bytes.Buffer
	session, err := logging.NewFromConfig(&cfg, &console)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	session.Logger.Info("organize started", logging.String("target", "/tmp/x"))
	session.Logger.Warn("category overridden")
	if err := session.Close(); err != nil {
		t.Fatalf("close session: %v", err)
	}

	if filepath.Dir(session.Path) != cfg.Paths.LogDir {
		t.Fatalf("session log outside log dir: %q", session.Path)
	}
	data, err := os.ReadFile(session.Path)
	if err != nil {
		t.Fatalf("read session log: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"organize started"`) || !strings.Contains(string(data), `"level":"warn"`) {
		t.Fatalf("expected json records in session file, got %q", data)
	}
	if strings.Contains(console.String(), "organize started") {
		t.Fatalf("info should not reach console, got %q", console.String())
	}
	if !strings.Contains(console.String(), "WARN – category overridden") {
		t.Fatalf("expected warning on console, got %q", console.String())
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.NewWriter(&bytes.Buffer{}, logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected unsupported format error")
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.NewWriter(&buf, logging.Options{Format: "console", Level: "debug"})
	if err != nil {
		t.Fatalf("NewWriter returned error: %v", err)
	}
	logger.Debug("scan entry", logging.String("name", "a.jpg"))
	if !strings.Contains(buf.String(), ".go:") {
		t.Fatalf("expected caller information in debug logs, got %q", buf.String())
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.NewWriter(&buf, logging.Options{Format: "json"})
	if err != nil {
		t.Fatalf("NewWriter returned error: %v", err)
	}
	logging.WarnWithContext(logger, "override", "category_override", logging.String(logging.FieldImpact, "files move elsewhere"))
	out := buf.String()
	for _, want := range []string{`"event_type":"category_override"`, `"error_hint":"check logs for details"`, `"impact":"files move elsewhere"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in %q", want, out)
		}
	}
}

func TestWithContextAddsRunFields(t *testing.T) {
	var buf bytes.Buffer
	base, err := logging.NewWriter(&buf, logging.Options{Format: "json"})
	if err != nil {
		t.Fatalf("NewWriter returned error: %v", err)
	}
	ctx := logging.WithTarget(logging.WithRunID(context.Background(), "run-1"), "/data/inbox")
	logging.WithContext(ctx, base).Info("hello")
	out := buf.String()
	if !strings.Contains(out, `"run_id":"run-1"`) || !strings.Contains(out, `"target":"/data/inbox"`) {
		t.Fatalf("expected context fields, got %q", out)
	}
	if logging.WithContext(context.Background(), base) != base {
		t.Fatal("expected logger unchanged without context fields")
	}
}

func TestCleanupOldLogs(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	old := filepath.Join(dir, "filesorter-old.log")
	fresh := filepath.Join(dir, "filesorter-new.log")
	current := filepath.Join(dir, "filesorter-current.log")
	other := filepath.Join(dir, "file_operations.log")
	for _, path := range []string{old, fresh, current, other} {
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	stale := now.AddDate(0, 0, -10)
	for _, path := range []string{old, current, other} {
		if err := os.Chtimes(path, stale, stale); err != nil {
			t.Fatalf("chtimes: %v", err)
		}
	}
	if err := os.Chtimes(fresh, now, now); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	removed := logging.CleanupOldLogs(logging.NewNop(), dir, 7, current, now)
	if removed != 1 {
		t.Fatalf("expected one file removed, got %d", removed)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Fatalf("expected stale session log removed, stat err=%v", err)
	}
	for _, path := range []string{fresh, current, other} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected %s to remain: %v", path, err)
		}
	}
	if logging.CleanupOldLogs(nil, dir, 0, "", now) != 0 {
		t.Fatal("expected zero retention to disable pruning")
	}
}
