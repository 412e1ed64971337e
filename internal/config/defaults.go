package config

const (
	defaultConfigPath          = "~/.config/filesorter/config.toml"
	projectConfigName          = "filesorter.toml"
	defaultLogDir              = "~/.local/share/filesorter/logs"
	defaultStateDir            = "~/.local/share/filesorter/state"
	defaultLogRetentionDays    = 30
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultMaxConflictAttempts = 10000
	defaultMiscCategory        = "Miscellaneous"

	// LogLevelEnv overrides logging.level when set.
	LogLevelEnv = "FILESORTER_LOG_LEVEL"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:   defaultLogDir,
			StateDir: defaultStateDir,
		},
		Organizer: Organizer{
			SkipHidden:          true,
			MaxConflictAttempts: defaultMaxConflictAttempts,
			MiscCategory:        defaultMiscCategory,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
