package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeOrganizer()
	c.normalizeCategories()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(strings.TrimSpace(c.Paths.StateDir)); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeOrganizer() {
	if c.Organizer.MaxConflictAttempts <= 0 {
		c.Organizer.MaxConflictAttempts = defaultMaxConflictAttempts
	}
	c.Organizer.MiscCategory = strings.TrimSpace(c.Organizer.MiscCategory)
	if c.Organizer.MiscCategory == "" {
		c.Organizer.MiscCategory = defaultMiscCategory
	}
}

func (c *Config) normalizeCategories() {
	if len(c.Categories) == 0 {
		c.Categories = nil
		return
	}
	normalized := make(map[string][]string, len(c.Categories))
	for name, exts := range c.Categories {
		name = strings.TrimSpace(name)
		seen := make(map[string]struct{}, len(exts))
		cleaned := make([]string, 0, len(exts))
		for _, ext := range exts {
			ext = strings.ToLower(strings.TrimSpace(ext))
			if _, dup := seen[ext]; dup {
				continue
			}
			seen[ext] = struct{}{}
			cleaned = append(cleaned, ext)
		}
		normalized[name] = cleaned
	}
	c.Categories = normalized
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	if value, ok := os.LookupEnv(LogLevelEnv); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
