package logger

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// WriterStrategy wraps a raw output in a format-specific writer
type WriterStrategy interface {
	CreateWriter(out io.Writer) io.Writer
}

// JSONWriterStrategy writes zerolog's native JSON lines
type JSONWriterStrategy struct{}

func (JSONWriterStrategy) CreateWriter(out io.Writer) io.Writer {
	return out
}

// ConsoleWriterStrategy writes human readable, optionally colored lines
type ConsoleWriterStrategy struct {
	NoColor bool
}

func (s ConsoleWriterStrategy) CreateWriter(out io.Writer) io.Writer {
	return zerolog.ConsoleWriter{Out: out, NoColor: s.NoColor, TimeFormat: time.RFC3339}
}

// TextWriterStrategy is a console writer without colors or timestamps
type TextWriterStrategy struct{}

func (TextWriterStrategy) CreateWriter(out io.Writer) io.Writer {
	return zerolog.ConsoleWriter{Out: out, NoColor: true, PartsExclude: []string{zerolog.TimestampFieldName}}
}

// WriterFactory creates writers based on format
type WriterFactory struct {
	strategies map[LogFormat]WriterStrategy
	console    io.Writer
}

// NewWriterFactory creates a new writer factory writing console output to stderr
func NewWriterFactory() *WriterFactory {
	return &WriterFactory{
		strategies: map[LogFormat]WriterStrategy{
			FormatJSON:    JSONWriterStrategy{},
			FormatConsole: ConsoleWriterStrategy{},
			FormatText:    TextWriterStrategy{},
		},
		console: os.Stderr,
	}
}

// CreateConsoleWriter creates a console writer
func (wf *WriterFactory) CreateConsoleWriter(format LogFormat) io.Writer {
	strategy, exists := wf.strategies[format]
	if !exists {
		strategy = ConsoleWriterStrategy{}
	}
	return strategy.CreateWriter(wf.console)
}

// CreateFileWriter creates a rotating file writer
func (wf *WriterFactory) CreateFileWriter(cfg LoggerConfig) io.Writer {
	finalPath := BuildLogPath(cfg)

	if err := os.MkdirAll(filepath.Dir(finalPath), 0755); err != nil {
		finalPath = cfg.FilePath
	}

	rotator := &lumberjack.Logger{
		Filename:   finalPath,
		MaxSize:    cfg.MaxSizeMB,
		LocalTime:  true,
		MaxBackups: cfg.MaxBackups,
	}

	// files never get ANSI colors
	if cfg.Format == FormatConsole {
		return ConsoleWriterStrategy{NoColor: true}.CreateWriter(rotator)
	}

	strategy, exists := wf.strategies[cfg.Format]
	if !exists {
		strategy = JSONWriterStrategy{}
	}
	return strategy.CreateWriter(rotator)
}

// BuildLogPath returns the log file path, nested under tasks/<id>/ when a task ID is set.
func BuildLogPath(cfg LoggerConfig) string {
	if !cfg.UseSubdirs || cfg.TaskID == "" {
		return cfg.FilePath
	}
	baseDir := filepath.Dir(cfg.FilePath)
	fileName := filepath.Base(cfg.FilePath)
	return filepath.Join(baseDir, "tasks", cfg.TaskID, fileName)
}
