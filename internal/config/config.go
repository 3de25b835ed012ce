package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config defines configuration for the xossdb CLI.
type Config struct {
	// DownloadDir is where downloads land.
	DownloadDir string `yaml:"download_dir"`

	// MaxConcurrentTasks bounds the batch worker pool.
	MaxConcurrentTasks int `yaml:"max_concurrent_tasks"`

	// StateDir holds the persisted cache, history, and settings.
	StateDir string `yaml:"state_dir"`

	// LastDatabase remembers the most recently browsed database.
	LastDatabase string `yaml:"last_database"`

	// Log configures logging output.
	Log LogConfig `yaml:"log"`

	// HTTP configures the retry transport.
	HTTP HTTPConfig `yaml:"http"`
}

// LogConfig defines logging behavior.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// HTTPConfig defines transport behavior.
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout"`
	HeadTimeout   time.Duration `yaml:"head_timeout"`
	RetryAttempts int           `yaml:"retry_attempts"`
	RetryBackoff  time.Duration `yaml:"retry_backoff"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		DownloadDir:        "downloads",
		MaxConcurrentTasks: 3,
		StateDir:           defaultStateDir(),
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		HTTP: HTTPConfig{
			Timeout:       30 * time.Second,
			HeadTimeout:   10 * time.Second,
			RetryAttempts: 3,
			RetryBackoff:  time.Second,
		},
	}
}

// defaultStateDir resolves the per-user state directory, falling back to
// a dotted directory under the working directory.
func defaultStateDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "xossdb")
	}
	return ".xossdb"
}

// yamlConfig is used for YAML unmarshaling with string durations.
type yamlConfig struct {
	DownloadDir        string `yaml:"download_dir"`
	MaxConcurrentTasks int    `yaml:"max_concurrent_tasks"`
	StateDir           string `yaml:"state_dir"`
	LastDatabase       string `yaml:"last_database"`
	Log                struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	HTTP struct {
		Timeout       string `yaml:"timeout"`
		HeadTimeout   string `yaml:"head_timeout"`
		RetryAttempts int    `yaml:"retry_attempts"`
		RetryBackoff  string `yaml:"retry_backoff"`
	} `yaml:"http"`
}

// LoadFromFile loads configuration from a YAML file over the defaults.
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	cfg := Default()

	if yc.DownloadDir != "" {
		cfg.DownloadDir = yc.DownloadDir
	}
	if yc.MaxConcurrentTasks != 0 {
		cfg.MaxConcurrentTasks = yc.MaxConcurrentTasks
	}
	if yc.StateDir != "" {
		cfg.StateDir = yc.StateDir
	}
	if yc.LastDatabase != "" {
		cfg.LastDatabase = yc.LastDatabase
	}
	if yc.Log.Level != "" {
		cfg.Log.Level = yc.Log.Level
	}
	if yc.Log.Format != "" {
		cfg.Log.Format = yc.Log.Format
	}
	if yc.HTTP.Timeout != "" {
		d, err := time.ParseDuration(yc.HTTP.Timeout)
		if err != nil {
			return Config{}, fmt.Errorf("parse http.timeout: %w", err)
		}
		cfg.HTTP.Timeout = d
	}
	if yc.HTTP.HeadTimeout != "" {
		d, err := time.ParseDuration(yc.HTTP.HeadTimeout)
		if err != nil {
			return Config{}, fmt.Errorf("parse http.head_timeout: %w", err)
		}
		cfg.HTTP.HeadTimeout = d
	}
	if yc.HTTP.RetryAttempts != 0 {
		cfg.HTTP.RetryAttempts = yc.HTTP.RetryAttempts
	}
	if yc.HTTP.RetryBackoff != "" {
		d, err := time.ParseDuration(yc.HTTP.RetryBackoff)
		if err != nil {
			return Config{}, fmt.Errorf("parse http.retry_backoff: %w", err)
		}
		cfg.HTTP.RetryBackoff = d
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables with the
// XOSSDB_ prefix. A .env file in the working directory, if present, is
// applied to the environment first without overriding variables already
// set.
func (c *Config) LoadFromEnv() error {
	// Ignore a missing .env; it is optional.
	_ = godotenv.Load()

	if v := os.Getenv("XOSSDB_DOWNLOAD_DIR"); v != "" {
		c.DownloadDir = v
	}
	if v := os.Getenv("XOSSDB_MAX_CONCURRENT_TASKS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse XOSSDB_MAX_CONCURRENT_TASKS: %w", err)
		}
		c.MaxConcurrentTasks = n
	}
	if v := os.Getenv("XOSSDB_STATE_DIR"); v != "" {
		c.StateDir = v
	}
	if v := os.Getenv("XOSSDB_LAST_DATABASE"); v != "" {
		c.LastDatabase = v
	}
	if v := os.Getenv("XOSSDB_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("XOSSDB_LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	if v := os.Getenv("XOSSDB_HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse XOSSDB_HTTP_TIMEOUT: %w", err)
		}
		c.HTTP.Timeout = d
	}
	if v := os.Getenv("XOSSDB_HTTP_HEAD_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse XOSSDB_HTTP_HEAD_TIMEOUT: %w", err)
		}
		c.HTTP.HeadTimeout = d
	}
	if v := os.Getenv("XOSSDB_HTTP_RETRY_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse XOSSDB_HTTP_RETRY_ATTEMPTS: %w", err)
		}
		c.HTTP.RetryAttempts = n
	}
	if v := os.Getenv("XOSSDB_HTTP_RETRY_BACKOFF"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse XOSSDB_HTTP_RETRY_BACKOFF: %w", err)
		}
		c.HTTP.RetryBackoff = d
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.DownloadDir == "" {
		return errors.New("config: download_dir is required")
	}
	if c.MaxConcurrentTasks <= 0 {
		return errors.New("config: max_concurrent_tasks must be positive")
	}
	if c.StateDir == "" {
		return errors.New("config: state_dir is required")
	}
	if c.HTTP.Timeout <= 0 {
		return errors.New("config: http.timeout must be positive")
	}
	if c.HTTP.RetryAttempts <= 0 {
		return errors.New("config: http.retry_attempts must be positive")
	}
	return nil
}

// Merge merges override values into c, returning a new Config.
// Zero values in override are ignored.
func (c Config) Merge(override Config) Config {
	if override.DownloadDir != "" {
		c.DownloadDir = override.DownloadDir
	}
	if override.MaxConcurrentTasks != 0 {
		c.MaxConcurrentTasks = override.MaxConcurrentTasks
	}
	if override.StateDir != "" {
		c.StateDir = override.StateDir
	}
	if override.LastDatabase != "" {
		c.LastDatabase = override.LastDatabase
	}
	if override.Log.Level != "" {
		c.Log.Level = override.Log.Level
	}
	if override.Log.Format != "" {
		c.Log.Format = override.Log.Format
	}
	if override.HTTP.Timeout != 0 {
		c.HTTP.Timeout = override.HTTP.Timeout
	}
	if override.HTTP.HeadTimeout != 0 {
		c.HTTP.HeadTimeout = override.HTTP.HeadTimeout
	}
	if override.HTTP.RetryAttempts != 0 {
		c.HTTP.RetryAttempts = override.HTTP.RetryAttempts
	}
	if override.HTTP.RetryBackoff != 0 {
		c.HTTP.RetryBackoff = override.HTTP.RetryBackoff
	}
	return c
}

// Path returns the default config file location inside StateDir.
func (c Config) Path() string {
	return filepath.Join(c.StateDir, "config.yaml")
}

// Save writes the configuration as YAML to path, creating parent
// directories as needed. Durations are written in their string form so
// the file loads back through LoadFromFile.
func (c Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	var yc yamlConfig
	yc.DownloadDir = c.DownloadDir
	yc.MaxConcurrentTasks = c.MaxConcurrentTasks
	yc.StateDir = c.StateDir
	yc.LastDatabase = c.LastDatabase
	yc.Log.Level = c.Log.Level
	yc.Log.Format = c.Log.Format
	yc.HTTP.Timeout = c.HTTP.Timeout.String()
	yc.HTTP.HeadTimeout = c.HTTP.HeadTimeout.String()
	yc.HTTP.RetryAttempts = c.HTTP.RetryAttempts
	yc.HTTP.RetryBackoff = c.HTTP.RetryBackoff.String()

	data, err := yaml.Marshal(yc)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
