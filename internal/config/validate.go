package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateOrganizer(); err != nil {
		return err
	}
	if err := c.validateCategories(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		return errors.New("paths.state_dir must be set")
	}
	return nil
}

func (c *Config) validateOrganizer() error {
	if c.Organizer.MaxConflictAttempts <= 0 {
		return errors.New("organizer.max_conflict_attempts must be positive")
	}
	if !validSegment(c.Organizer.MiscCategory) {
		return fmt.Errorf("organizer.misc_category %q must be a single folder name", c.Organizer.MiscCategory)
	}
	return nil
}

func (c *Config) validateCategories() error {
	for _, name := range c.CategoryNames() {
		if !validSegment(name) {
			return fmt.Errorf("categories: %q is not a valid folder name", name)
		}
		exts := c.Categories[name]
		if len(exts) == 0 {
			return fmt.Errorf("categories.%s must list at least one extension", name)
		}
		for _, ext := range exts {
			if len(ext) < 2 || ext[0] != '.' || strings.Count(ext, ".") != 1 || strings.ContainsAny(ext, `/\`) {
				return fmt.Errorf("categories.%s: extension %q must look like \".ext\"", name, ext)
			}
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q must be one of debug, info, warn, error", c.Logging.Level)
	}
	return nil
}

func validSegment(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." || strings.HasPrefix(name, ".") {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}
