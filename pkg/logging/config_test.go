package logging

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "auto", cfg.Format)
	assert.Equal(t, "stderr", cfg.Output)
	assert.False(t, cfg.AddCaller)
}

func TestNewLoggerFromConfigWritesFile(t *testing.T) {
	originalLevel := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(originalLevel) })

	path := filepath.Join(t.TempDir(), "docledger.log")
	logger := NewLoggerFromConfig(&Config{
		Level:  "warn",
		Format: "json",
		Output: path,
		Fields: map[string]any{"component": "sheets"},
	})

	logger.Info().Msg("hidden")
	logger.Warn().Msg("visible")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(content), "hidden")
	assert.Contains(t, string(content), "visible")
	assert.Contains(t, string(content), `"component":"sheets"`)
}

func TestGetWriter(t *testing.T) {
	t.Run("discard with auto format", func(t *testing.T) {
		w := getWriter(&Config{Output: "discard", Format: "auto"})
		assert.Equal(t, io.Discard, w)
	})

	t.Run("console format", func(t *testing.T) {
		w := getWriter(&Config{Output: "stdout", Format: "console"})
		_, ok := w.(zerolog.ConsoleWriter)
		assert.True(t, ok)
	})
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"trace":    zerolog.TraceLevel,
		"DEBUG":    zerolog.DebugLevel,
		"":         zerolog.InfoLevel,
		"warning":  zerolog.WarnLevel,
		"error":    zerolog.ErrorLevel,
		"off":      zerolog.Disabled,
		"nonsense": zerolog.InfoLevel,
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, parseLevel(in))
		})
	}
}

func TestParseTimeFormat(t *testing.T) {
	assert.Equal(t, time.Kitchen, parseTimeFormat("kitchen"))
	assert.Equal(t, time.RFC3339, parseTimeFormat("rfc3339"))
	assert.Equal(t, "", parseTimeFormat("unix"))
	assert.Equal(t, "2006-01-02", parseTimeFormat("2006-01-02"))
	assert.Equal(t, time.Kitchen, parseTimeFormat("bogus"))
}

func TestParseFields(t *testing.T) {
	fields := parseFields("env=prod, region = eu ,broken")
	assert.Equal(t, map[string]any{"env": "prod", "region": "eu"}, fields)
	assert.Empty(t, parseFields(""))
}

func TestConfigureSetsDefault(t *testing.T) {
	original := *Default()
	originalLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		SetDefault(original)
		zerolog.SetGlobalLevel(originalLevel)
	})

	path := filepath.Join(t.TempDir(), "global.log")
	Configure(&Config{Level: "info", Format: "json", Output: path})
	Info().Msg("through default")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.Contains(content, []byte("through default")))
}
