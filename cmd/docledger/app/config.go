package app

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/agentstation/docledger/pkg/constants"
	"github.com/agentstation/docledger/pkg/errors"
	"github.com/agentstation/docledger/pkg/reconcile"
)

// EnvPrefix is the prefix for docledger environment variables.
const EnvPrefix = "DOCLEDGER"

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Script service
	Endpoint       string
	APIKey         string
	APIKeyParam    string
	UploadFolderID string

	// Ledger behaviour
	RefreshInterval time.Duration
	TieBreak        string

	// Session and API tokens
	SessionFile string
	JWTSecret   string

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (applied later by UpdateFromFlags)
// 2. Environment variables (DOCLEDGER_*)
// 3. .env files
// 4. Config file (~/.docledger.yaml)
// 5. Defaults
func LoadConfig() (*Config, error) {
	return LoadConfigFile("")
}

// LoadConfigFile loads configuration like LoadConfig, reading path instead
// of searching the standard locations when path is not empty.
func LoadConfigFile(path string) (*Config, error) {
	// Load .env files first (before Viper env binding)
	loadEnvFiles()

	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.NewConfigError("config", "cannot read "+path, err)
		}
	} else {
		// Search for config in standard locations
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".docledger")

		// Read config file (ignore error if not found)
		_ = v.ReadInConfig()
	}

	config := &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no_color"),
		Format:  v.GetString("format"),

		ConfigFile: v.ConfigFileUsed(),

		Endpoint:       v.GetString("endpoint"),
		APIKey:         v.GetString("api_key"),
		APIKeyParam:    v.GetString("api_key_param"),
		UploadFolderID: v.GetString("upload_folder_id"),

		RefreshInterval: v.GetDuration("refresh_interval"),
		TieBreak:        v.GetString("tie_break"),

		SessionFile: expandHome(v.GetString("session_file")),
		JWTSecret:   v.GetString("jwt_secret"),

		LogLevel:  v.GetString("log_level"),
		LogFormat: v.GetString("log_format"),
		LogOutput: v.GetString("log_output"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// newViper creates a viper instance with docledger defaults and env binding.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("refresh_interval", constants.DefaultRefreshInterval)
	v.SetDefault("tie_break", string(reconcile.TieKeepFirst))
	v.SetDefault("api_key_param", "key")
	v.SetDefault("session_file", filepath.Join(constants.DefaultDataDir, constants.DefaultSessionFile))
	v.SetDefault("log_level", os.Getenv("LOG_LEVEL"))
	v.SetDefault("log_format", getEnvOrDefault("LOG_FORMAT", "auto"))
	v.SetDefault("log_output", getEnvOrDefault("LOG_OUTPUT", "stderr"))
	return v
}

// Validate checks the values that cannot be corrected later.
func (c *Config) Validate() error {
	if c.RefreshInterval < 0 {
		return errors.NewValidationError("refresh_interval", c.RefreshInterval, "must not be negative")
	}
	if _, err := reconcile.ParseTieBreak(c.TieBreak); err != nil {
		return errors.NewValidationError("tie_break", c.TieBreak, err.Error())
	}
	return nil
}

// APIKeyScheme returns how the API key is attached to script requests.
func (c *Config) APIKeyScheme() string {
	if c.APIKey == "" {
		return ""
	}
	return "query:" + c.APIKeyParam
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags to ensure flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(flags *pflag.FlagSet) {
	flags.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "verbose":
			c.Verbose = f.Value.String() == "true"
		case "quiet":
			c.Quiet = f.Value.String() == "true"
		case "no-color":
			c.NoColor = f.Value.String() == "true"
		case "format", "output":
			c.Format = strings.ToLower(f.Value.String())
		case "log-level":
			c.LogLevel = f.Value.String()
		case "endpoint":
			c.Endpoint = f.Value.String()
		}
	})
}

// loadEnvFiles loads environment variables from .env files.
func loadEnvFiles() {
	// .env.local overrides .env
	envFiles := []string{
		".env.local",
		".env",
	}

	// godotenv never overwrites a variable that is already set, so the
	// file loaded first wins.
	for _, envFile := range envFiles {
		_ = godotenv.Load(envFile)
	}
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
