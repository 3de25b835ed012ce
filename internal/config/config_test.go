package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	if cfg.DownloadDir != "downloads" {
		t.Errorf("expected default download dir %q, got %q", "downloads", cfg.DownloadDir)
	}
	if cfg.MaxConcurrentTasks != 3 {
		t.Errorf("expected default max concurrent tasks 3, got %d", cfg.MaxConcurrentTasks)
	}
	if cfg.StateDir == "" {
		t.Error("expected a default state dir")
	}
	if cfg.Log.Level != "info" {
		t.Errorf("expected default log level info, got %q", cfg.Log.Level)
	}
	if cfg.HTTP.Timeout != 30*time.Second {
		t.Errorf("expected default timeout 30s, got %v", cfg.HTTP.Timeout)
	}
	if cfg.HTTP.HeadTimeout != 10*time.Second {
		t.Errorf("expected default head timeout 10s, got %v", cfg.HTTP.HeadTimeout)
	}
	if cfg.HTTP.RetryAttempts != 3 {
		t.Errorf("expected default retry attempts 3, got %d", cfg.HTTP.RetryAttempts)
	}
	if cfg.HTTP.RetryBackoff != time.Second {
		t.Errorf("expected default retry backoff 1s, got %v", cfg.HTTP.RetryBackoff)
	}
}

func TestLoadFromYAML(t *testing.T) {
	yamlContent := `
download_dir: /srv/xoss
max_concurrent_tasks: 5
last_database: PSP
log:
  level: debug
http:
  timeout: 45s
  head_timeout: 5s
  retry_attempts: 4
  retry_backoff: 2s
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	cfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}

	if cfg.DownloadDir != "/srv/xoss" {
		t.Errorf("expected download dir /srv/xoss, got %q", cfg.DownloadDir)
	}
	if cfg.MaxConcurrentTasks != 5 {
		t.Errorf("expected max concurrent tasks 5, got %d", cfg.MaxConcurrentTasks)
	}
	if cfg.LastDatabase != "PSP" {
		t.Errorf("expected last database PSP, got %q", cfg.LastDatabase)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected log level debug, got %q", cfg.Log.Level)
	}
	if cfg.Log.Format != "console" {
		t.Errorf("expected log format to default to console, got %q", cfg.Log.Format)
	}
	if cfg.HTTP.Timeout != 45*time.Second {
		t.Errorf("expected timeout 45s, got %v", cfg.HTTP.Timeout)
	}
	if cfg.HTTP.HeadTimeout != 5*time.Second {
		t.Errorf("expected head timeout 5s, got %v", cfg.HTTP.HeadTimeout)
	}
	if cfg.HTTP.RetryAttempts != 4 {
		t.Errorf("expected retry attempts 4, got %d", cfg.HTTP.RetryAttempts)
	}
	if cfg.HTTP.RetryBackoff != 2*time.Second {
		t.Errorf("expected retry backoff 2s, got %v", cfg.HTTP.RetryBackoff)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("XOSSDB_DOWNLOAD_DIR", "/tmp/xoss")
	t.Setenv("XOSSDB_MAX_CONCURRENT_TASKS", "8")
	t.Setenv("XOSSDB_LAST_DATABASE", "NEXT")
	t.Setenv("XOSSDB_LOG_LEVEL", "warn")
	t.Setenv("XOSSDB_HTTP_TIMEOUT", "15s")
	t.Setenv("XOSSDB_HTTP_RETRY_ATTEMPTS", "2")
	t.Setenv("XOSSDB_HTTP_RETRY_BACKOFF", "500ms")

	cfg := Default()
	if err := cfg.LoadFromEnv(); err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}

	if cfg.DownloadDir != "/tmp/xoss" {
		t.Errorf("expected download dir /tmp/xoss, got %q", cfg.DownloadDir)
	}
	if cfg.MaxConcurrentTasks != 8 {
		t.Errorf("expected max concurrent tasks 8, got %d", cfg.MaxConcurrentTasks)
	}
	if cfg.LastDatabase != "NEXT" {
		t.Errorf("expected last database NEXT, got %q", cfg.LastDatabase)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("expected log level warn, got %q", cfg.Log.Level)
	}
	if cfg.HTTP.Timeout != 15*time.Second {
		t.Errorf("expected timeout 15s, got %v", cfg.HTTP.Timeout)
	}
	if cfg.HTTP.RetryAttempts != 2 {
		t.Errorf("expected retry attempts 2, got %d", cfg.HTTP.RetryAttempts)
	}
	if cfg.HTTP.RetryBackoff != 500*time.Millisecond {
		t.Errorf("expected retry backoff 500ms, got %v", cfg.HTTP.RetryBackoff)
	}
}

func TestLoadFromEnvInvalid(t *testing.T) {
	t.Setenv("XOSSDB_MAX_CONCURRENT_TASKS", "many")

	cfg := Default()
	if err := cfg.LoadFromEnv(); err == nil {
		t.Error("expected error for non-numeric task count")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing download dir",
			mutate:  func(c *Config) { c.DownloadDir = "" },
			wantErr: true,
		},
		{
			name:    "invalid task count",
			mutate:  func(c *Config) { c.MaxConcurrentTasks = 0 },
			wantErr: true,
		},
		{
			name:    "missing state dir",
			mutate:  func(c *Config) { c.StateDir = "" },
			wantErr: true,
		},
		{
			name:    "invalid timeout",
			mutate:  func(c *Config) { c.HTTP.Timeout = 0 },
			wantErr: true,
		},
		{
			name:    "invalid retry attempts",
			mutate:  func(c *Config) { c.HTTP.RetryAttempts = -1 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMerge(t *testing.T) {
	base := Default()
	base.LastDatabase = "PSP"

	override := Config{
		MaxConcurrentTasks: 6,
		DownloadDir:        "/data/xoss",
	}

	merged := base.Merge(override)

	if merged.MaxConcurrentTasks != 6 {
		t.Errorf("expected max concurrent tasks overridden to 6, got %d", merged.MaxConcurrentTasks)
	}
	if merged.DownloadDir != "/data/xoss" {
		t.Errorf("expected download dir overridden, got %q", merged.DownloadDir)
	}
	if merged.LastDatabase != "PSP" {
		t.Errorf("expected last database preserved, got %q", merged.LastDatabase)
	}
	if merged.HTTP.Timeout != 30*time.Second {
		t.Errorf("expected timeout preserved, got %v", merged.HTTP.Timeout)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "nested", "config.yaml")

	cfg := Default()
	cfg.LastDatabase = "HMT"
	cfg.StateDir = tmpDir

	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if loaded.LastDatabase != "HMT" {
		t.Errorf("expected last database HMT, got %q", loaded.LastDatabase)
	}
	if loaded.HTTP.Timeout != cfg.HTTP.Timeout {
		t.Errorf("expected timeout %v, got %v", cfg.HTTP.Timeout, loaded.HTTP.Timeout)
	}
	if loaded.StateDir != tmpDir {
		t.Errorf("expected state dir %q, got %q", tmpDir, loaded.StateDir)
	}
}

func TestLoadYAMLFileNotFound(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestLoadYAMLInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("invalid: [yaml: content"), 0644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	_, err := LoadFromFile(configPath)
	if err == nil {
		t.Error("expected error for invalid YAML")
	}
}
