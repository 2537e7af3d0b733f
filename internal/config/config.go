// Package config layers strata configuration: flags > STRATA_* env >
// config file > defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Keys
const (
	KeyDBPath           = "db.path"
	KeyLogLevel         = "log.level"
	KeyLogFormat        = "log.format"
	KeyLogFile          = "log.file"
	KeyLogMaxSizeMB     = "log.max_size_mb"
	KeyLogMaxBackups    = "log.max_backups"
	KeyLogMaxAgeDays    = "log.max_age_days"
	KeyHTTPAddr         = "http.addr"
	KeyTraceDisplayHops = "trace.display_hops"
	KeyLinksBaseURL     = "links.base_url"
	KeyInformedExcluded = "workflow.informed_excluded"
)

var v *viper.Viper

// Config is the typed view of the resolved configuration.
type Config struct {
	DBPath   string
	Log      LogConfig
	HTTPAddr string
	Trace    TraceConfig
	Links    LinksConfig
	Workflow WorkflowConfig
}

// LogConfig controls the slog handler and optional file rotation.
type LogConfig struct {
	Level      string // debug, info, warn, error
	Format     string // text, json
	File       string // empty logs to stderr
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

type TraceConfig struct {
	DisplayHops int // 0 shows every layer
}

type LinksConfig struct {
	BaseURL string
}

type WorkflowConfig struct {
	InformedExcluded bool
}

// Initialize sets up viper with defaults, env binding and the first config
// file found in ./.strata or $HOME/.strata. A missing file is not an error.
func Initialize() error {
	v = viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(".", ".strata"))
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".strata"))
	}

	v.SetEnvPrefix("STRATA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyDBPath, "")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyLogMaxSizeMB, 10)
	v.SetDefault(KeyLogMaxBackups, 3)
	v.SetDefault(KeyLogMaxAgeDays, 28)
	v.SetDefault(KeyHTTPAddr, "127.0.0.1:8080")
	v.SetDefault(KeyTraceDisplayHops, 0)
	v.SetDefault(KeyLinksBaseURL, "/")
	v.SetDefault(KeyInformedExcluded, true)
}

// ensure lazily initializes viper for callers that skipped Initialize.
func ensure() {
	if v == nil {
		_ = Initialize()
	}
}

// Load resolves the typed configuration.
func Load() (*Config, error) {
	ensure()
	cfg := &Config{
		DBPath: v.GetString(KeyDBPath),
		Log: LogConfig{
			Level:      v.GetString(KeyLogLevel),
			Format:     v.GetString(KeyLogFormat),
			File:       v.GetString(KeyLogFile),
			MaxSizeMB:  v.GetInt(KeyLogMaxSizeMB),
			MaxBackups: v.GetInt(KeyLogMaxBackups),
			MaxAgeDays: v.GetInt(KeyLogMaxAgeDays),
		},
		HTTPAddr: v.GetString(KeyHTTPAddr),
		Trace:    TraceConfig{DisplayHops: v.GetInt(KeyTraceDisplayHops)},
		Links:    LinksConfig{BaseURL: v.GetString(KeyLinksBaseURL)},
		Workflow: WorkflowConfig{InformedExcluded: v.GetBool(KeyInformedExcluded)},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the rest of the program cannot use.
func (c *Config) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid %s %q: want debug, info, warn or error", KeyLogLevel, c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid %s %q: want text or json", KeyLogFormat, c.Log.Format)
	}
	if c.Trace.DisplayHops < 0 {
		return fmt.Errorf("invalid %s %d: must not be negative", KeyTraceDisplayHops, c.Trace.DisplayHops)
	}
	if c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 || c.Log.MaxAgeDays < 0 {
		return errors.New("log rotation limits must not be negative")
	}
	return nil
}

// ConfigFileUsed returns the path of the loaded config file, if any.
func ConfigFileUsed() string {
	ensure()
	return v.ConfigFileUsed()
}

// GetString returns a string config value.
func GetString(key string) string {
	ensure()
	return v.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	ensure()
	return v.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	ensure()
	return v.GetBool(key)
}

// Set overrides a config value for the rest of the process.
func Set(key string, value any) {
	ensure()
	v.Set(key, value)
}
