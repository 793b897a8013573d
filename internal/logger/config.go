package logger

import (
	"github.com/aleister1102/ocrdiff/internal/config"
	"github.com/rs/zerolog"
)

// LogFormat selects how log lines are written.
type LogFormat int

const (
	FormatJSON LogFormat = iota
	FormatConsole
	FormatText
)

var formatNames = map[LogFormat]string{
	FormatJSON:    "json",
	FormatConsole: "console",
	FormatText:    "text",
}

func (lf LogFormat) String() string {
	if name, ok := formatNames[lf]; ok {
		return name
	}
	return formatNames[FormatConsole]
}

// LoggerConfig is the resolved form of config.LogConfig the builder works from.
type LoggerConfig struct {
	Level         zerolog.Level
	Format        LogFormat
	EnableConsole bool
	EnableFile    bool
	FilePath      string
	MaxSizeMB     int
	MaxBackups    int
	// TaskID nests the log file under tasks/<id>/ when UseSubdirs is set.
	TaskID     string
	UseSubdirs bool
}

// DefaultLoggerConfig resolves the default log section.
func DefaultLoggerConfig() LoggerConfig {
	return ConvertConfig(config.NewDefaultLogConfig())
}

// ConvertConfig maps the file-level log section onto a LoggerConfig.
// Unknown levels and formats fall back to info and console.
func ConvertConfig(cfg config.LogConfig) LoggerConfig {
	level, _ := ParseLevel(cfg.LogLevel)

	return LoggerConfig{
		Level:         level,
		Format:        ParseFormat(cfg.LogFormat),
		EnableConsole: true,
		EnableFile:    cfg.LogFile != "",
		FilePath:      cfg.LogFile,
		MaxSizeMB:     positiveOr(cfg.MaxLogSizeMB, config.DefaultMaxLogSizeMB),
		MaxBackups:    positiveOr(cfg.MaxLogBackups, config.DefaultMaxLogBackups),
		UseSubdirs:    cfg.UseTaskSubdirs,
	}
}

func positiveOr(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}
