package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/docledger/pkg/constants"
)

// isolate points the home directory at an empty temp dir so a developer's
// ~/.docledger.yaml never leaks into a test.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func TestLoadConfigDefaults(t *testing.T) {
	home := isolate(t)

	config, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, constants.DefaultRefreshInterval, config.RefreshInterval)
	assert.Equal(t, "keep-first", config.TieBreak)
	assert.Equal(t, "key", config.APIKeyParam)
	assert.Equal(t, filepath.Join(home, ".docledger", "session.yaml"), config.SessionFile)
	assert.NotEmpty(t, config.LogFormat)
	assert.Empty(t, config.Endpoint)
	assert.Empty(t, config.ConfigFile)
}

func TestLoadConfigEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("DOCLEDGER_ENDPOINT", "https://script.example.com/exec")
	t.Setenv("DOCLEDGER_API_KEY", "k-123")
	t.Setenv("DOCLEDGER_REFRESH_INTERVAL", "1h")
	t.Setenv("DOCLEDGER_TIE_BREAK", "latest")
	t.Setenv("DOCLEDGER_UPLOAD_FOLDER_ID", "folder-9")
	t.Setenv("DOCLEDGER_JWT_SECRET", "s3cret")

	config, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "https://script.example.com/exec", config.Endpoint)
	assert.Equal(t, "k-123", config.APIKey)
	assert.Equal(t, time.Hour, config.RefreshInterval)
	assert.Equal(t, "latest", config.TieBreak)
	assert.Equal(t, "folder-9", config.UploadFolderID)
	assert.Equal(t, "s3cret", config.JWTSecret)
}

func TestLoadConfigFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "docledger.yaml")
	content := `endpoint: https://file.example.com/exec
api_key: from-file
api_key_param: token
tie_break: keep-latest
refresh_interval: 90s
session_file: /tmp/docledger-test/session.yaml
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	config, err := LoadConfigFile(path)
	require.NoError(t, err)

	assert.Equal(t, path, config.ConfigFile)
	assert.Equal(t, "https://file.example.com/exec", config.Endpoint)
	assert.Equal(t, "from-file", config.APIKey)
	assert.Equal(t, "query:token", config.APIKeyScheme())
	assert.Equal(t, "keep-latest", config.TieBreak)
	assert.Equal(t, 90*time.Second, config.RefreshInterval)
	assert.Equal(t, "/tmp/docledger-test/session.yaml", config.SessionFile)

	t.Run("environment overrides file", func(t *testing.T) {
		t.Setenv("DOCLEDGER_ENDPOINT", "https://env.example.com/exec")
		config, err := LoadConfigFile(path)
		require.NoError(t, err)
		assert.Equal(t, "https://env.example.com/exec", config.Endpoint)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{name: "valid", config: Config{TieBreak: "keep-first", RefreshInterval: time.Minute}},
		{name: "blank tie-break", config: Config{}},
		{name: "unknown tie-break", config: Config{TieBreak: "coin-flip"}, wantErr: true},
		{name: "negative interval", config: Config{RefreshInterval: -time.Second}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAPIKeyScheme(t *testing.T) {
	assert.Empty(t, (&Config{APIKeyParam: "key"}).APIKeyScheme())
	assert.Equal(t, "query:key", (&Config{APIKey: "abc", APIKeyParam: "key"}).APIKeyScheme())
}

func TestUpdateFromFlags(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.BoolP("verbose", "v", false, "")
	flags.BoolP("quiet", "q", false, "")
	flags.Bool("no-color", false, "")
	flags.StringP("format", "o", "", "")
	flags.String("log-level", "", "")
	flags.String("endpoint", "", "")
	require.NoError(t, flags.Parse([]string{"-v", "-o", "json", "--endpoint", "https://flag.example.com"}))

	config := &Config{Format: "yaml", Quiet: true, LogLevel: "error", Endpoint: "https://config.example.com"}
	config.UpdateFromFlags(flags)

	assert.True(t, config.Verbose)
	assert.Equal(t, "json", config.Format)
	assert.Equal(t, "https://flag.example.com", config.Endpoint)

	// Flags that were not given keep the loaded values
	assert.True(t, config.Quiet)
	assert.Equal(t, "error", config.LogLevel)
}

func TestExpandHome(t *testing.T) {
	home := isolate(t)

	assert.Equal(t, filepath.Join(home, "x", "s.yaml"), expandHome("~/x/s.yaml"))
	assert.Equal(t, home, expandHome("~"))
	assert.Equal(t, "/abs/s.yaml", expandHome("/abs/s.yaml"))
	assert.Equal(t, "~other/s.yaml", expandHome("~other/s.yaml"))
}
