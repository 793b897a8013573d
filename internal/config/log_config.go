package config

// Log defaults
const (
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "console"
	DefaultLogFile       = ""
	DefaultMaxLogSizeMB  = 100
	DefaultMaxLogBackups = 3
)

// LogConfig defines configuration for logging
type LogConfig struct {
	LogFile       string `json:"log_file,omitempty" yaml:"log_file,omitempty"`
	LogFormat     string `json:"log_format,omitempty" yaml:"log_format,omitempty" validate:"omitempty,logformat"`
	LogLevel      string `json:"log_level,omitempty" yaml:"log_level,omitempty" validate:"omitempty,loglevel"`
	MaxLogBackups int    `json:"max_log_backups,omitempty" yaml:"max_log_backups,omitempty" validate:"omitempty,min=0"`
	MaxLogSizeMB  int    `json:"max_log_size_mb,omitempty" yaml:"max_log_size_mb,omitempty" validate:"omitempty,min=1"`
	// UseTaskSubdirs places each task's log under <dir>/tasks/<taskId>/
	UseTaskSubdirs bool `json:"use_task_subdirs" yaml:"use_task_subdirs"`
}

// NewDefaultLogConfig creates default log configuration
func NewDefaultLogConfig() LogConfig {
	return LogConfig{
		LogFile:        DefaultLogFile,
		LogFormat:      DefaultLogFormat,
		LogLevel:       DefaultLogLevel,
		MaxLogBackups:  DefaultMaxLogBackups,
		MaxLogSizeMB:   DefaultMaxLogSizeMB,
		UseTaskSubdirs: true,
	}
}
