package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		wantLevel zerolog.Level
	}{
		{"default level", "", zerolog.InfoLevel},
		{"debug level", "debug", zerolog.DebugLevel},
		{"warn level", "warn", zerolog.WarnLevel},
		{"error level", "error", zerolog.ErrorLevel},
		{"case insensitive", "DEBUG", zerolog.DebugLevel},
		{"unknown", "verbose", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleanup, err := Init("", tt.level)
			require.NoError(t, err)
			defer cleanup()

			assert.Equal(t, tt.wantLevel, zerolog.GlobalLevel())
		})
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func TestInitWithFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "nested", "ledger.log")
	var console bytes.Buffer

	cleanup, err := InitWithWriter(&console, logPath, "info")
	require.NoError(t, err)

	Get().Info().Str("component", "test").Msg("hello")
	Get().Debug().Msg("hidden")
	cleanup()

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"hello"`)
	assert.NotContains(t, string(data), "hidden")
	assert.Equal(t, strings.TrimSpace(console.String()), strings.TrimSpace(string(data)))
}
