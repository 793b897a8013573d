package logger

import (
	"strings"

	"github.com/aleister1102/ocrdiff/internal/common"
	"github.com/rs/zerolog"
)

// ParseLevel parses a textual log level. Unknown values fall back to info.
func ParseLevel(levelStr string) (zerolog.Level, error) {
	if levelStr == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(strings.ToLower(levelStr))
	if err != nil {
		return zerolog.InfoLevel, common.WrapError(err, "invalid log level")
	}
	return level, nil
}

// ParseFormat parses a textual log format. Unknown values fall back to console.
func ParseFormat(formatStr string) LogFormat {
	name := strings.ToLower(formatStr)
	for format, n := range formatNames {
		if n == name {
			return format
		}
	}
	return FormatConsole
}
