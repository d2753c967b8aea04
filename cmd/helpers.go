package cmd

import (
	"fmt"
	"os"

	"spotivr/internal/authflow"
	"spotivr/internal/config"
	"spotivr/internal/credentials"
	"spotivr/internal/exchange"
	"spotivr/internal/session"
	"spotivr/internal/spotify"
	"spotivr/pkg/logging"
)

// configPath holds the --config-path persistent flag.
var configPath string

// loadConfig loads and validates configuration, initialising logging from
// the configured level.
func loadConfig() (config.Config, error) {
	path := configPath
	if path == "" {
		path = config.GetDefaultConfigPathOrPanic()
	}

	// Logging must exist before the loader runs, at a provisional level.
	logging.Init(logging.LevelInfo, os.Stderr)

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return config.Config{}, err
	}
	logging.Init(logging.ParseLevel(cfg.Log.Level), os.Stderr)

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// newCredentialStore builds the credential store for the configured backend.
func newCredentialStore(cfg config.Config) (*credentials.Store, error) {
	switch cfg.Auth.Backend {
	case config.StorageBackendFile:
		slots, err := credentials.NewFileSlots(cfg.Auth.StorageDir)
		if err != nil {
			return nil, fmt.Errorf("failed to open credential storage: %w", err)
		}
		return credentials.NewStore(slots), nil
	case config.StorageBackendKeyring:
		return credentials.NewStore(credentials.NewKeyringSlots()), nil
	case config.StorageBackendMemory:
		return credentials.NewStore(credentials.NewMemorySlots()), nil
	default:
		return nil, fmt.Errorf("unknown credential backend %q", cfg.Auth.Backend)
	}
}

// newRouter assembles the session router and its collaborators from
// configuration.
func newRouter(cfg config.Config) (*session.Router, error) {
	store, err := newCredentialStore(cfg)
	if err != nil {
		return nil, err
	}

	validator, err := spotify.NewValidator(cfg.Spotify.APIBaseURL)
	if err != nil {
		return nil, err
	}
	exchanger := exchange.NewClient(cfg.ProxyBaseURL(), nil)
	flow := authflow.NewLoopbackChannel(cfg.Auth.CallbackPort)

	return session.NewRouter(session.RouterConfig{
		ClientID:          cfg.Spotify.ClientID,
		Scopes:            cfg.Spotify.Scopes,
		AuthorizeEndpoint: cfg.Spotify.AuthorizeEndpoint,
	}, store, validator, exchanger, flow), nil
}
