package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/aleister1102/ocrdiff/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DefaultLogger(t *testing.T) {
	_, err := New(config.NewDefaultLogConfig())
	require.NoError(t, err)
}

func TestBuild_TaskFieldAndLevel(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.NewDefaultLogConfig()
	cfg.LogLevel = "warn"
	cfg.LogFormat = "json"

	log, err := NewLoggerBuilder().
		WithConfig(cfg).
		WithConsole(false).
		WithWriter(&buf).
		WithTaskID("task-42").
		Build()
	require.NoError(t, err)

	log.Info().Msg("hidden")
	log.Warn().Msg("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"task_id":"task-42"`)
	assert.Contains(t, out, "shown")
}

func TestBuild_NoWriters(t *testing.T) {
	_, err := NewLoggerBuilder().WithConsole(false).Build()
	assert.Error(t, err)
}

func TestBuild_FileOutputPerTask(t *testing.T) {
	dir := t.TempDir()
	cfg := config.NewDefaultLogConfig()
	cfg.LogFile = filepath.Join(dir, "ocrdiff.log")
	cfg.LogFormat = "json"

	log, err := NewLoggerBuilder().WithConfig(cfg).WithConsole(false).WithTaskID("t1").Build()
	require.NoError(t, err)
	log.Error().Msg("to file")

	data, err := os.ReadFile(filepath.Join(dir, "tasks", "t1", "ocrdiff.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
}

func TestParsers(t *testing.T) {
	level, err := ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, level)

	level, err = ParseLevel("loud")
	assert.Error(t, err)
	assert.Equal(t, zerolog.InfoLevel, level)

	assert.Equal(t, FormatJSON, ParseFormat("json"))
	assert.Equal(t, FormatText, ParseFormat("TEXT"))
	assert.Equal(t, FormatConsole, ParseFormat("anything"))
	assert.Equal(t, "console", FormatConsole.String())
}

func TestBuildLogPath(t *testing.T) {
	cfg := LoggerConfig{FilePath: "/var/log/ocrdiff.log", UseSubdirs: true}
	assert.Equal(t, "/var/log/ocrdiff.log", BuildLogPath(cfg))

	cfg.TaskID = "abc"
	assert.Equal(t, filepath.Join("/var/log", "tasks", "abc", "ocrdiff.log"), BuildLogPath(cfg))

	cfg.UseSubdirs = false
	assert.Equal(t, "/var/log/ocrdiff.log", BuildLogPath(cfg))
}
