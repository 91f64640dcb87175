package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetermineLogLevel(t *testing.T) {
	tests := []struct {
		name   string
		config *Config
		want   string
	}{
		{name: "default", config: &Config{}, want: "info"},
		{name: "verbose", config: &Config{Verbose: true}, want: "debug"},
		{name: "quiet", config: &Config{Quiet: true}, want: "warn"},
		{name: "verbose and quiet prefers quiet", config: &Config{Verbose: true, Quiet: true}, want: "warn"},
		{name: "explicit overrides verbose", config: &Config{LogLevel: "error", Verbose: true}, want: "error"},
		{name: "explicit overrides quiet", config: &Config{LogLevel: "trace", Quiet: true}, want: "trace"},
		{name: "invalid falls back to info", config: &Config{LogLevel: "loud"}, want: "info"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, determineLogLevel(tt.config))
		})
	}
}

func TestValidateLogLevel(t *testing.T) {
	for _, level := range []string{"trace", "debug", "info", "warn", "error"} {
		assert.Equal(t, level, validateLogLevel(level))
	}
	assert.Equal(t, "info", validateLogLevel("fatal"))
	assert.Equal(t, "info", validateLogLevel("DEBUG"))
	assert.Equal(t, "info", validateLogLevel(""))
}

func TestNewLoggerLevel(t *testing.T) {
	logger := NewLogger(&Config{Verbose: true, LogOutput: "discard", LogFormat: "json"})
	assert.Equal(t, "debug", logger.GetLevel().String())

	logger = NewLogger(&Config{Quiet: true, LogOutput: "discard", LogFormat: "json"})
	assert.Equal(t, "warn", logger.GetLevel().String())
}
