package main

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"filesorter/internal/config"
	"filesorter/internal/logging"
	"filesorter/internal/organizer"
)

type commandContext struct {
	configPath string
	assumeYes  bool
	stdin      io.Reader
	stderr     io.Writer

	configOnce sync.Once
	config     *config.Config
	configErr  error

	sessionOnce sync.Once
	session     *logging.Session
}

func newCommandContext(stdin io.Reader) *commandContext {
	return &commandContext{stdin: stdin, stderr: os.Stderr}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(strings.TrimSpace(c.configPath))
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// logger opens the session log on first use and prunes expired sessions.
// Failures to open the log file degrade to console-only logging.
func (c *commandContext) logger() *slog.Logger {
	c.sessionOnce.Do(func() {
		cfg, _ := c.ensureConfig()
		session, err := logging.NewFromConfig(cfg, c.stderr)
		if err != nil {
			session, _ = logging.NewFromConfig(nil, c.stderr)
			session.Logger.Warn("session log unavailable", logging.Error(err))
		}
		c.session = session
		if cfg != nil {
			logging.CleanupOldLogs(session.Logger, cfg.Paths.LogDir, cfg.Logging.RetentionDays, session.Path, time.Now())
		}
	})
	return c.session.Logger
}

// openOrganizer builds an Organizer from config and selects target. The
// caller must Close it.
func (c *commandContext) openOrganizer(target string) (*organizer.Organizer, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	org, err := organizer.NewFromConfig(cfg, c.logger())
	if err != nil {
		return nil, err
	}
	if target == "" {
		return org, nil
	}
	path, err := config.ExpandPath(target)
	if err != nil {
		_ = org.Close()
		return nil, err
	}
	if err := org.SetTargetDirectory(path); err != nil {
		_ = org.Close()
		return nil, err
	}
	return org, nil
}

func (c *commandContext) close() {
	if c.session != nil {
		_ = c.session.Close()
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
