// Package config loads server configuration from defaults, an optional TOML
// file, and environment variables, in that order.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const (
	// AppName is the application directory and config file base name.
	AppName = "taskverse"

	// ConfigFile is the project-local config filename.
	ConfigFile = "taskverse.toml"

	// OAuthClientFile is the Google OAuth client credentials filename.
	OAuthClientFile = "oauth_client.json"

	// TokenFile is the stored Google OAuth token filename.
	TokenFile = "token.json"
)

// Backend names accepted by the backend setting.
const (
	BackendSupabase    = "supabase"
	BackendMemory      = "memory"
	BackendGoogleTasks = "googletasks"
)

// Config holds server settings.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string `toml:"addr"`

	// Backend selects the backend adapter: "supabase", "memory", or
	// "googletasks".
	Backend string `toml:"backend"`

	// SupabaseURL is the public backend endpoint URL.
	SupabaseURL string `toml:"supabase_url"`

	// SupabaseAnonKey is the public anonymous API key.
	SupabaseAnonKey string `toml:"supabase_anon_key"`

	// SupabaseServiceURL and SupabaseServiceKey are the private server-side
	// pair. They are loaded for parity with the hosted project settings; no
	// server code path uses them.
	SupabaseServiceURL string `toml:"supabase_service_url"`
	SupabaseServiceKey string `toml:"supabase_service_key"`

	// GoogleDir is where oauth_client.json and token.json live for the
	// googletasks backend. Empty means the default config directory.
	GoogleDir string `toml:"google_dir"`

	// GoogleTasksList is the Google Tasks list title backing the task table.
	GoogleTasksList string `toml:"google_tasks_list"`
}

// Load builds the config. path names an explicit TOML file; when empty, a
// taskverse.toml in the current directory is used if present. Environment
// variables override file values. Missing backend endpoint or key values
// stay empty: the failure surfaces on the first backend call, not here.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Addr:            ":8080",
		Backend:         BackendSupabase,
		GoogleTasksList: "TaskVerse",
	}

	if path == "" {
		if _, err := os.Stat(ConfigFile); err == nil {
			path = ConfigFile
		}
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	loadFromEnv(cfg)
	return cfg, nil
}

func loadFromEnv(cfg *Config) {
	setEnv(&cfg.Addr, "TASKVERSE_ADDR")
	setEnv(&cfg.Backend, "TASKVERSE_BACKEND")
	setEnv(&cfg.SupabaseURL, "SUPABASE_URL")
	setEnv(&cfg.SupabaseAnonKey, "SUPABASE_ANON_KEY")
	setEnv(&cfg.SupabaseServiceURL, "SUPABASE_SERVICE_URL")
	setEnv(&cfg.SupabaseServiceKey, "SUPABASE_SERVICE_KEY")
	setEnv(&cfg.GoogleDir, "TASKVERSE_GOOGLE_DIR")
	setEnv(&cfg.GoogleTasksList, "TASKVERSE_GOOGLE_TASKS_LIST")
}

func setEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// DefaultConfigDir returns the default per-user configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

func (c *Config) googleDir() string {
	if c.GoogleDir != "" {
		return c.GoogleDir
	}
	return DefaultConfigDir()
}

// OAuthClientPath returns the path to the Google OAuth client credentials.
func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.googleDir(), OAuthClientFile)
}

// TokenPath returns the path to the stored Google OAuth token.
func (c *Config) TokenPath() string {
	return filepath.Join(c.googleDir(), TokenFile)
}
