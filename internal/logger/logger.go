package logger

import (
	"github.com/aleister1102/ocrdiff/internal/config"
	"github.com/rs/zerolog"
)

// New creates a logger from the log section of the global config.
func New(cfg config.LogConfig) (zerolog.Logger, error) {
	return NewLoggerBuilder().WithConfig(cfg).Build()
}

// NewWithTaskID creates a logger whose file output is grouped per comparison task.
func NewWithTaskID(cfg config.LogConfig, taskID string) (zerolog.Logger, error) {
	return NewLoggerBuilder().
		WithConfig(cfg).
		WithTaskID(taskID).
		Build()
}
