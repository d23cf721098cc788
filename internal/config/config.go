// Package config loads docchat settings from defaults, a YAML file,
// DOCCHAT_* environment variables and command-line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/iksnae/docchat/internal"
)

// Keys understood by Load
const (
	KeyBackendURL       = "backend.url"
	KeyBackendTimeout   = "backend.timeout"
	KeyStoreDriver      = "store.driver"
	KeyStoreDSN         = "store.dsn"
	KeyPollInterval     = "poll.interval"
	KeySummaryCacheSize = "summary_cache_size"
	KeyLogFile          = "log.file"
	KeyVerbose          = "verbose"

	envPrefix = "DOCCHAT"
)

// Config holds the application's configuration
type Config struct {
	Backend          BackendConfig `mapstructure:"backend"`
	Store            StoreConfig   `mapstructure:"store"`
	Poll             PollConfig    `mapstructure:"poll"`
	SummaryCacheSize int           `mapstructure:"summary_cache_size"`
	Log              LogConfig     `mapstructure:"log"`
	Verbose          bool          `mapstructure:"verbose"`

	// File is the config file that was read, "" if none
	File string `mapstructure:"-"`
}

// BackendConfig locates the Q&A backend
type BackendConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// StoreConfig selects the key-value store chat sessions live in
type StoreConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// PollConfig controls --watch refreshes
type PollConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

// LogConfig controls the optional log file
type LogConfig struct {
	File string `mapstructure:"file"`
}

// SetDefaults registers default values on v
func SetDefaults(v *viper.Viper, paths Paths) {
	v.SetDefault(KeyBackendURL, "http://localhost:8000")
	v.SetDefault(KeyBackendTimeout, 30*time.Second)
	v.SetDefault(KeyStoreDriver, "sqlite")
	v.SetDefault(KeyStoreDSN, "")
	v.SetDefault(KeyPollInterval, 30*time.Second)
	v.SetDefault(KeySummaryCacheSize, 64)
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyVerbose, false)
}

// Load reads configuration into a Config. An explicit file must exist; the
// default file is optional.
func Load(v *viper.Viper, file string, paths Paths) (*Config, error) {
	SetDefaults(v, paths)
	loadDotEnv(paths)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(paths.ConfigDir)
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		internal.LogDebug("No config file found, using defaults and environment")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()
	if cfg.Store.Driver == "sqlite" && cfg.Store.DSN == "" {
		cfg.Store.DSN = paths.DatabasePath()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadDotEnv exports the DOCCHAT_* variables of the .env file next to the
// config file. Variables already in the environment win.
func loadDotEnv(paths Paths) {
	file := filepath.Join(paths.ConfigDir, ".env")
	values, err := godotenv.Read(file)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			internal.LogWarn("Failed to read %s: %v", file, err)
		}
		return
	}
	for key, value := range values {
		if !strings.HasPrefix(key, envPrefix+"_") {
			continue
		}
		if _, set := os.LookupEnv(key); set {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			internal.LogWarn("Failed to set %s: %v", key, err)
		}
	}
	internal.LogDebug("Loaded environment from %s", file)
}

// Validate checks values that would otherwise fail later
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "sqlite", "memory", "redis":
	default:
		return &internal.ValidationError{Field: KeyStoreDriver, Reason: fmt.Sprintf("unknown driver %q", c.Store.Driver)}
	}
	if c.Store.Driver == "sqlite" && c.Store.DSN == "" {
		return &internal.ValidationError{Field: KeyStoreDSN, Reason: "sqlite needs a database path"}
	}
	if c.Backend.Timeout < 0 {
		return &internal.ValidationError{Field: KeyBackendTimeout, Reason: "must not be negative"}
	}
	if c.Poll.Interval < 0 {
		return &internal.ValidationError{Field: KeyPollInterval, Reason: "must not be negative"}
	}
	if c.SummaryCacheSize < 0 {
		return &internal.ValidationError{Field: KeySummaryCacheSize, Reason: "must not be negative"}
	}
	return nil
}

// YAML renders the effective configuration, durations in Go notation
func (c *Config) YAML() ([]byte, error) {
	out := map[string]interface{}{
		"backend": map[string]interface{}{
			"url":     c.Backend.URL,
			"timeout": c.Backend.Timeout.String(),
		},
		"store": map[string]interface{}{
			"driver": c.Store.Driver,
			"dsn":    c.Store.DSN,
		},
		"poll": map[string]interface{}{
			"interval": c.Poll.Interval.String(),
		},
		"summary_cache_size": c.SummaryCacheSize,
		"log": map[string]interface{}{
			"file": c.Log.File,
		},
		"verbose": c.Verbose,
	}
	return yaml.Marshal(out)
}
