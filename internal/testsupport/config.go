package testsupport

import (
	"path/filepath"
	"testing"

	"filesorter/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Logging.Level = "debug"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return builder.cfg
}

// WithCategory adds a custom category to the test config.
func WithCategory(name string, exts ...string) ConfigOption {
	return func(b *configBuilder) {
		if b.cfg.Categories == nil {
			b.cfg.Categories = make(map[string][]string)
		}
		b.cfg.Categories[name] = exts
	}
}

// WithConflictLimit caps conflict resolution attempts.
func WithConflictLimit(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Organizer.MaxConflictAttempts = n
	}
}

// WithHiddenFiles makes the organizer move dotfiles too.
func WithHiddenFiles() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Organizer.SkipHidden = false
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
