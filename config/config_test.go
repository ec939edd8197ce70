package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.APIBaseURL)
	assert.Equal(t, "ws://localhost:8080/ws", cfg.WebSocketURL)
	assert.Equal(t, 30*time.Second, cfg.HeartbeatInterval)
	assert.Equal(t, 60*time.Second, cfg.StatusRefreshInterval)
	assert.Equal(t, 5, cfg.EmitRate)
	assert.Equal(t, 50, cfg.HistoryLimit)

	n, err := cfg.MaxUploadBytes()
	require.NoError(t, err)
	assert.Equal(t, int64(10_000_000), n)
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", cfg.APIBaseURL)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spaces.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api_url: https://chat.example.com
emit_rate: 2
max_upload_size: 5MiB
`), 0o600))

	t.Setenv("SPACES_EMIT_RATE", "9")
	t.Setenv("SPACES_HEARTBEAT_INTERVAL", "10s")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://chat.example.com", cfg.APIBaseURL)
	assert.Equal(t, "wss://chat.example.com/ws", cfg.WebSocketURL)
	assert.Equal(t, 9, cfg.EmitRate)
	assert.Equal(t, 10*time.Second, cfg.HeartbeatInterval)

	n, err := cfg.MaxUploadBytes()
	require.NoError(t, err)
	assert.Equal(t, int64(5<<20), n)
}

func TestLoadRejectsBadEnv(t *testing.T) {
	t.Setenv("SPACES_REQUEST_TIMEOUT", "soon")
	_, err := Load("")
	assert.ErrorContains(t, err, "SPACES_REQUEST_TIMEOUT")
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"empty api url":     func(c *Config) { c.APIBaseURL = "" },
		"zero heartbeat":    func(c *Config) { c.HeartbeatInterval = 0 },
		"negative timeout":  func(c *Config) { c.RequestTimeout = -time.Second },
		"bad upload size":   func(c *Config) { c.MaxUploadSize = "lots" },
		"zero emit rate":    func(c *Config) { c.EmitRate = 0 },
		"empty data path":   func(c *Config) { c.DataPath = "" },
		"empty websocket":   func(c *Config) { c.WebSocketURL = "" },
		"zero history size": func(c *Config) { c.HistoryLimit = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			cfg.WebSocketURL = "ws://localhost:8080/ws"
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestDeriveWebSocketURL(t *testing.T) {
	ws, err := DeriveWebSocketURL("https://chat.example.com/api?x=1")
	require.NoError(t, err)
	assert.Equal(t, "wss://chat.example.com/ws", ws)

	_, err = DeriveWebSocketURL("ftp://example.com")
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "spaces.yaml")
	cfg := Default()
	cfg.APIBaseURL = "https://chat.example.com"
	cfg.HistoryLimit = 20
	require.NoError(t, Save(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://chat.example.com", loaded.APIBaseURL)
	assert.Equal(t, 20, loaded.HistoryLimit)
}
