package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// Init initializes the global logger. If logFilePath is non-empty, logs are
// written to both the console writer and the file. level can be "debug",
// "info", "warn", "error".
func Init(logFilePath, level string) (func(), error) {
	return InitWithWriter(os.Stderr, logFilePath, level)
}

// InitWithWriter is Init with an explicit console writer.
func InitWithWriter(console io.Writer, logFilePath, level string) (func(), error) {
	zerolog.SetGlobalLevel(ParseLevel(level))

	writers := []io.Writer{console}
	var f *os.File
	if logFilePath != "" {
		if err := os.MkdirAll(filepath.Dir(logFilePath), 0o700); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		var err error
		f, err = os.OpenFile(logFilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640)
		if err != nil {
			return nil, err
		}
		writers = append(writers, f)
	}
	Log = zerolog.New(io.MultiWriter(writers...)).With().Timestamp().Logger()

	return func() {
		if f != nil {
			_ = f.Close()
		}
	}, nil
}

// ParseLevel maps a level name to a zerolog level; unknown names are info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Log is the package-global logger configured by Init
var Log = zerolog.Nop()

// Get returns a pointer to the package-global logger
func Get() *zerolog.Logger {
	return &Log
}
