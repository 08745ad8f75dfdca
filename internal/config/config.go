package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syncwatch/internal/logger"
	"syncwatch/internal/poller"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type WatcherConfig struct {
	Name      string `mapstructure:"name"`
	Folder    string `mapstructure:"folder"`
	Pattern   string `mapstructure:"pattern"`
	Action    string `mapstructure:"action"`
	EventType string `mapstructure:"event_type"`
	Command   string `mapstructure:"command"`
}

type Config struct {
	BaseURL               string          `mapstructure:"base_url"`
	APIKey                string          `mapstructure:"api_key"`
	MaxRetries            int             `mapstructure:"max_retries"`
	RetryDelayMS          int             `mapstructure:"retry_delay_ms"`
	MaxConnectionFailures int             `mapstructure:"max_connection_failures"`
	StaleWindowSec        int             `mapstructure:"stale_window_sec"`
	RequestTimeoutSec     int             `mapstructure:"request_timeout_sec"`
	Shell                 string          `mapstructure:"shell"`
	DaemonPort            int             `mapstructure:"daemon_port"`
	DBPath                string          `mapstructure:"db_path"`
	LogFile               string          `mapstructure:"log_file"`
	Watchers              []WatcherConfig `mapstructure:"watchers"`
}

var Default = Config{
	BaseURL:               "http://localhost:8384",
	MaxRetries:            100,
	RetryDelayMS:          1000,
	MaxConnectionFailures: 20,
	StaleWindowSec:        60,
	RequestTimeoutSec:     90,
	Shell:                 "sh",
	DaemonPort:            9384,
}

var v = viper.New()

func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelayMS) * time.Millisecond
}

func (c *Config) StaleWindow() time.Duration {
	return time.Duration(c.StaleWindowSec) * time.Second
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSec) * time.Second
}

func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("base_url is required")
	}

	if _, err := poller.ParseBaseURL(c.BaseURL); err != nil {
		return err
	}

	if c.MaxRetries < 1 {
		return fmt.Errorf("max_retries must be at least 1, got %d", c.MaxRetries)
	}

	if c.RetryDelayMS < 0 {
		return fmt.Errorf("retry_delay_ms must not be negative, got %d", c.RetryDelayMS)
	}

	if c.StaleWindowSec < 1 {
		return fmt.Errorf("stale_window_sec must be at least 1, got %d", c.StaleWindowSec)
	}

	if c.MaxConnectionFailures < 1 {
		return fmt.Errorf("max_connection_failures must be at least 1, got %d", c.MaxConnectionFailures)
	}

	for i, w := range c.Watchers {
		if w.Folder == "" {
			return fmt.Errorf("watcher %d: folder is required", i)
		}
		if w.Command == "" {
			return fmt.Errorf("watcher %d: command is required", i)
		}
	}

	return nil
}

// Dir returns ~/.syncwatch, creating it when missing.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home dir: %w", err)
	}

	dir := filepath.Join(home, ".syncwatch")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config dir: %w", err)
	}

	return dir, nil
}

// Load reads path when given, otherwise config.yaml from Dir.
func Load(path string) (*Config, error) {
	v = viper.New()
	dbPath := "syncwatch.db"

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		v.SetConfigFile(path)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}

		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
		dbPath = filepath.Join(dir, "syncwatch.db")
	}

	v.SetDefault("base_url", Default.BaseURL)
	v.SetDefault("max_retries", Default.MaxRetries)
	v.SetDefault("retry_delay_ms", Default.RetryDelayMS)
	v.SetDefault("max_connection_failures", Default.MaxConnectionFailures)
	v.SetDefault("stale_window_sec", Default.StaleWindowSec)
	v.SetDefault("request_timeout_sec", Default.RequestTimeoutSec)
	v.SetDefault("shell", Default.Shell)
	v.SetDefault("daemon_port", Default.DaemonPort)
	v.SetDefault("db_path", dbPath)
	v.SetDefault("log_file", "")

	v.SetEnvPrefix("SYNCWATCH")
	v.AutomaticEnv()
	if err := v.BindEnv("api_key", "SYNCWATCH_API_KEY", "SYNCTHING_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind api key env: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := errors.AsType[viper.ConfigFileNotFoundError](err); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Watch logs a warning whenever the loaded config file changes. Watchers are
// built once at startup, so edits only take effect after a restart.
func Watch() {
	if v.ConfigFileUsed() == "" {
		return
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		logger.Log.Warn("config file changed, restart to apply",
			zap.String("file", e.Name),
			zap.String("op", e.Op.String()))
	})
	v.WatchConfig()
}

func File() string {
	return v.ConfigFileUsed()
}
