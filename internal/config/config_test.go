package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"taskverse/internal/config"
)

// clearEnv blanks every variable Load reads so the host environment cannot
// leak into the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"TASKVERSE_ADDR", "TASKVERSE_BACKEND",
		"SUPABASE_URL", "SUPABASE_ANON_KEY",
		"SUPABASE_SERVICE_URL", "SUPABASE_SERVICE_KEY",
		"TASKVERSE_GOOGLE_DIR", "TASKVERSE_GOOGLE_TASKS_LIST",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err == nil {
		t.Fatal("explicit missing file should fail")
	}

	cfg, err = config.Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Errorf("Addr = %q", cfg.Addr)
	}
	if cfg.Backend != config.BackendSupabase {
		t.Errorf("Backend = %q", cfg.Backend)
	}
	if cfg.GoogleTasksList != "TaskVerse" {
		t.Errorf("GoogleTasksList = %q", cfg.GoogleTasksList)
	}
	if cfg.SupabaseURL != "" || cfg.SupabaseAnonKey != "" {
		t.Errorf("endpoint settings should stay empty, got %q %q", cfg.SupabaseURL, cfg.SupabaseAnonKey)
	}
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "taskverse.toml")
	content := `
addr = ":9090"
backend = "memory"
supabase_url = "https://proj.supabase.co"
supabase_anon_key = "anon-key"
google_tasks_list = "My Tasks"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9090" || cfg.Backend != config.BackendMemory {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.SupabaseURL != "https://proj.supabase.co" || cfg.SupabaseAnonKey != "anon-key" {
		t.Errorf("endpoint settings not applied: %+v", cfg)
	}
	if cfg.GoogleTasksList != "My Tasks" {
		t.Errorf("GoogleTasksList = %q", cfg.GoogleTasksList)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "taskverse.toml")
	if err := os.WriteFile(path, []byte("addr = \":9090\"\nbackend = \"memory\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TASKVERSE_ADDR", ":7070")
	t.Setenv("SUPABASE_URL", "https://env.supabase.co")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":7070" {
		t.Errorf("env should override file, Addr = %q", cfg.Addr)
	}
	if cfg.Backend != config.BackendMemory {
		t.Errorf("unset env must not clobber file, Backend = %q", cfg.Backend)
	}
	if cfg.SupabaseURL != "https://env.supabase.co" {
		t.Errorf("SupabaseURL = %q", cfg.SupabaseURL)
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "taskverse.toml")
	if err := os.WriteFile(path, []byte("addr = [not toml"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := config.Load(path); err == nil {
		t.Fatal("malformed file should fail")
	}
}

func TestGooglePaths(t *testing.T) {
	cfg := &config.Config{GoogleDir: "/srv/taskverse"}
	if got := cfg.OAuthClientPath(); got != filepath.Join("/srv/taskverse", config.OAuthClientFile) {
		t.Errorf("OAuthClientPath = %q", got)
	}
	if got := cfg.TokenPath(); got != filepath.Join("/srv/taskverse", config.TokenFile) {
		t.Errorf("TokenPath = %q", got)
	}

	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	want := filepath.Join("/tmp/xdg", config.AppName)
	if got := config.DefaultConfigDir(); got != want {
		t.Errorf("DefaultConfigDir = %q, want %q", got, want)
	}
}
