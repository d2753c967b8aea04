package config

import (
	"spotivr/internal/authflow"
	"spotivr/internal/credentials"
	"spotivr/internal/exchange"
	"spotivr/internal/spotify"

	"spotivr/pkg/logging"
)

// StorageBackend selects where credentials are persisted.
type StorageBackend string

const (
	// StorageBackendFile stores credential slots as files under the
	// storage directory.
	StorageBackendFile StorageBackend = "file"
	// StorageBackendKeyring stores credential slots in the OS keyring.
	StorageBackendKeyring StorageBackend = "keyring"
	// StorageBackendMemory keeps credentials in process memory only.
	StorageBackendMemory StorageBackend = "memory"
)

// Config is the top-level configuration structure for spotivr.
type Config struct {
	Spotify SpotifyConfig `yaml:"spotify"`
	Proxy   ProxyConfig   `yaml:"proxy"`
	Auth    AuthConfig    `yaml:"auth"`
	Log     LogConfig     `yaml:"log"`
}

// SpotifyConfig holds the OAuth application settings. The client secret is
// deliberately absent: the proxy reads it from the environment so it never
// lands in a config file next to the client ID.
type SpotifyConfig struct {
	ClientID          string   `yaml:"clientID,omitempty"`
	Scopes            []string `yaml:"scopes,omitempty"`
	AuthorizeEndpoint string   `yaml:"authorizeEndpoint,omitempty"` // default: https://accounts.spotify.com/authorize
	TokenEndpoint     string   `yaml:"tokenEndpoint,omitempty"`     // default: https://accounts.spotify.com/api/token
	APIBaseURL        string   `yaml:"apiBaseURL,omitempty"`        // default: https://api.spotify.com
}

// ProxyConfig defines the token exchange proxy.
type ProxyConfig struct {
	ListenAddr string `yaml:"listenAddr,omitempty"` // default: localhost:3000
	// URL clients use to reach the proxy. Empty means http://<listenAddr>.
	URL string `yaml:"url,omitempty"`
}

// AuthConfig defines the local consent flow and credential storage.
type AuthConfig struct {
	CallbackPort int            `yaml:"callbackPort,omitempty"` // default: 5173
	Backend      StorageBackend `yaml:"backend,omitempty"`      // default: file
	StorageDir   string         `yaml:"storageDir,omitempty"`   // file backend only
}

// LogConfig controls logging output.
type LogConfig struct {
	Level string `yaml:"level,omitempty"` // debug, info, warn, error
}

// DefaultScopes is the permission set requested on login. It covers playlist
// browsing, playback control, and library edits.
var DefaultScopes = []string{
	"playlist-read-collaborative",
	"playlist-read-private",
	"streaming",
	"user-read-email",
	"user-read-private",
	"user-library-read",
	"user-library-modify",
	"user-read-playback-state",
	"user-modify-playback-state",
}

// GetDefaultConfig returns the default configuration for spotivr.
func GetDefaultConfig() Config {
	return Config{
		Spotify: SpotifyConfig{
			Scopes:            DefaultScopes,
			AuthorizeEndpoint: authflow.DefaultAuthorizeEndpoint,
			TokenEndpoint:     "https://accounts.spotify.com/api/token",
			APIBaseURL:        spotify.DefaultAPIBaseURL,
		},
		Proxy: ProxyConfig{
			ListenAddr: "localhost:3000",
		},
		Auth: AuthConfig{
			CallbackPort: authflow.DefaultCallbackPort,
			Backend:      StorageBackendFile,
			StorageDir:   credentials.DefaultStorageDir,
		},
		Log: LogConfig{
			Level: logging.LevelInfo.String(),
		},
	}
}

// ProxyBaseURL returns the URL clients should use for token exchange.
func (c Config) ProxyBaseURL() string {
	if c.Proxy.URL != "" {
		return c.Proxy.URL
	}
	return "http://" + c.Proxy.ListenAddr
}

// TokenEndpointURL returns the full proxy authentication endpoint.
func (c Config) TokenEndpointURL() string {
	return c.ProxyBaseURL() + exchange.AuthenticationPath
}
