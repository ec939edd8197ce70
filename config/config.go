package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

const envPrefix = "SPACES_"

type Config struct {
	APIBaseURL            string        `yaml:"api_url"`
	WebSocketURL          string        `yaml:"ws_url"`
	DataPath              string        `yaml:"data_path"`
	LogLevel              string        `yaml:"log_level"`
	HeartbeatInterval     time.Duration `yaml:"heartbeat_interval"`
	StatusRefreshInterval time.Duration `yaml:"status_refresh_interval"`
	RequestTimeout        time.Duration `yaml:"request_timeout"`
	MaxUploadSize         string        `yaml:"max_upload_size"`
	EmitRate              int           `yaml:"emit_rate"`
	HistoryLimit          int           `yaml:"history_limit"`
}

func Default() *Config {
	return &Config{
		APIBaseURL:            "http://localhost:8080",
		DataPath:              defaultDataPath(),
		LogLevel:              "info",
		HeartbeatInterval:     30 * time.Second,
		StatusRefreshInterval: 60 * time.Second,
		RequestTimeout:        15 * time.Second,
		MaxUploadSize:         "10MB",
		EmitRate:              5,
		HistoryLimit:          50,
	}
}

func defaultDataPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".spaces", "session.db")
	}
	return filepath.Join(home, ".spaces", "session.db")
}

// Load layers the defaults, the optional YAML file at path, a .env file in
// the working directory and finally SPACES_* environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	// .env is optional; existing environment variables win over it
	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if cfg.WebSocketURL == "" {
		ws, err := DeriveWebSocketURL(cfg.APIBaseURL)
		if err != nil {
			return nil, err
		}
		cfg.WebSocketURL = ws
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.APIBaseURL = getEnvOrDefault("API_URL", c.APIBaseURL)
	c.WebSocketURL = getEnvOrDefault("WS_URL", c.WebSocketURL)
	c.DataPath = getEnvOrDefault("DATA_PATH", c.DataPath)
	c.LogLevel = getEnvOrDefault("LOG_LEVEL", c.LogLevel)
	c.MaxUploadSize = getEnvOrDefault("MAX_UPLOAD_SIZE", c.MaxUploadSize)

	var err error
	if c.HeartbeatInterval, err = getDurationOrDefault("HEARTBEAT_INTERVAL", c.HeartbeatInterval); err != nil {
		return err
	}
	if c.StatusRefreshInterval, err = getDurationOrDefault("STATUS_REFRESH_INTERVAL", c.StatusRefreshInterval); err != nil {
		return err
	}
	if c.RequestTimeout, err = getDurationOrDefault("REQUEST_TIMEOUT", c.RequestTimeout); err != nil {
		return err
	}
	if c.EmitRate, err = getIntOrDefault("EMIT_RATE", c.EmitRate); err != nil {
		return err
	}
	if c.HistoryLimit, err = getIntOrDefault("HISTORY_LIMIT", c.HistoryLimit); err != nil {
		return err
	}
	return nil
}

func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return errors.New("api_url cannot be empty")
	}
	if _, err := url.ParseRequestURI(c.APIBaseURL); err != nil {
		return fmt.Errorf("api_url is invalid: %w", err)
	}
	if c.WebSocketURL == "" {
		return errors.New("ws_url cannot be empty")
	}
	if c.DataPath == "" {
		return errors.New("data_path cannot be empty")
	}
	if c.HeartbeatInterval <= 0 {
		return fmt.Errorf("heartbeat_interval must be positive, got %s", c.HeartbeatInterval)
	}
	if c.StatusRefreshInterval <= 0 {
		return fmt.Errorf("status_refresh_interval must be positive, got %s", c.StatusRefreshInterval)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.EmitRate <= 0 {
		return fmt.Errorf("emit_rate must be positive, got %d", c.EmitRate)
	}
	if c.HistoryLimit <= 0 {
		return fmt.Errorf("history_limit must be positive, got %d", c.HistoryLimit)
	}
	if _, err := c.MaxUploadBytes(); err != nil {
		return err
	}
	return nil
}

// MaxUploadBytes parses MaxUploadSize ("10MB", "512KiB", ...).
func (c *Config) MaxUploadBytes() (int64, error) {
	n, err := humanize.ParseBytes(c.MaxUploadSize)
	if err != nil {
		return 0, fmt.Errorf("max_upload_size %q is invalid: %w", c.MaxUploadSize, err)
	}
	if n == 0 {
		return 0, errors.New("max_upload_size must be positive")
	}
	return int64(n), nil
}

// DeriveWebSocketURL maps http(s)://host/... to ws(s)://host/ws.
func DeriveWebSocketURL(apiURL string) (string, error) {
	u, err := url.Parse(apiURL)
	if err != nil {
		return "", fmt.Errorf("api_url is invalid: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	default:
		return "", fmt.Errorf("api_url has unsupported scheme %q", u.Scheme)
	}
	u.Path = "/ws"
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(envPrefix + key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(envPrefix + key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s%s: %w", envPrefix, key, err)
	}
	return d, nil
}

func getIntOrDefault(key string, defaultValue int) (int, error) {
	value := os.Getenv(envPrefix + key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integer for %s%s: %w", envPrefix, key, err)
	}
	return n, nil
}
