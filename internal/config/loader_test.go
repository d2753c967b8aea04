package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, dir, content string) {
	t.Helper()
	err := os.WriteFile(filepath.Join(dir, configFileName), []byte(content), 0644)
	require.NoError(t, err)
}

func TestLoadConfig_DefaultsWhenMissing(t *testing.T) {
	tempDir := t.TempDir()

	cfg, err := LoadConfig(tempDir)
	require.NoError(t, err)

	assert.Equal(t, DefaultScopes, cfg.Spotify.Scopes)
	assert.Equal(t, "localhost:3000", cfg.Proxy.ListenAddr)
	assert.Equal(t, StorageBackendFile, cfg.Auth.Backend)
	assert.Equal(t, 5173, cfg.Auth.CallbackPort)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	tempDir := t.TempDir()
	writeConfigFile(t, tempDir, `
spotify:
  clientID: file-client
proxy:
  listenAddr: localhost:9000
auth:
  backend: keyring
log:
  level: debug
`)

	cfg, err := LoadConfig(tempDir)
	require.NoError(t, err)

	assert.Equal(t, "file-client", cfg.Spotify.ClientID)
	assert.Equal(t, "localhost:9000", cfg.Proxy.ListenAddr)
	assert.Equal(t, StorageBackendKeyring, cfg.Auth.Backend)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Untouched sections keep defaults.
	assert.Equal(t, DefaultScopes, cfg.Spotify.Scopes)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	tempDir := t.TempDir()
	writeConfigFile(t, tempDir, `
spotify:
  clientID: file-client
`)
	t.Setenv(EnvClientID, "env-client")

	cfg, err := LoadConfig(tempDir)
	require.NoError(t, err)

	assert.Equal(t, "env-client", cfg.Spotify.ClientID)
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	tempDir := t.TempDir()
	writeConfigFile(t, tempDir, "spotify: [not a mapping")

	_, err := LoadConfig(tempDir)
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	valid := GetDefaultConfig()
	valid.Spotify.ClientID = "client-1"
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing client id", func(c *Config) { c.Spotify.ClientID = "" }},
		{"empty scopes", func(c *Config) { c.Spotify.Scopes = nil }},
		{"empty listen addr", func(c *Config) { c.Proxy.ListenAddr = "" }},
		{"unknown backend", func(c *Config) { c.Auth.Backend = "vault" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestClientSecret(t *testing.T) {
	t.Setenv(EnvClientSecret, "")
	_, err := ClientSecret()
	assert.Error(t, err)

	t.Setenv(EnvClientSecret, "shh")
	secret, err := ClientSecret()
	require.NoError(t, err)
	assert.Equal(t, "shh", secret)
}

func TestProxyURLs(t *testing.T) {
	cfg := GetDefaultConfig()
	assert.Equal(t, "http://localhost:3000", cfg.ProxyBaseURL())
	assert.Equal(t, "http://localhost:3000/api/authentication", cfg.TokenEndpointURL())

	cfg.Proxy.URL = "https://proxy.example.com"
	assert.Equal(t, "https://proxy.example.com/api/authentication", cfg.TokenEndpointURL())
}
