package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"spotivr/pkg/logging"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	userConfigDir  = ".config/spotivr"
	configFileName = "config.yaml"

	// EnvClientID overrides spotify.clientID.
	EnvClientID = "SPOTIFY_CLIENT_ID"
	// EnvClientSecret is read by the proxy only. It has no config file
	// counterpart.
	EnvClientSecret = "SPOTIFY_CLIENT_SECRET"
)

func GetDefaultConfigPathOrPanic() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		panic(fmt.Errorf("could not determine user config directory: %w", err))
	}

	return filepath.Join(homeDir, userConfigDir)
}

// LoadConfig loads configuration from the specified directory. A .env file
// in the working directory is loaded first, then config.yaml is merged over
// the defaults, then environment variables take final precedence.
func LoadConfig(configPath string) (Config, error) {
	// Missing .env is the normal case outside development.
	if err := godotenv.Load(); err == nil {
		logging.Debug("ConfigLoader", "Loaded environment from .env")
	}

	configFilePath := filepath.Join(configPath, configFileName)
	config := GetDefaultConfig()

	data, err := os.ReadFile(configFilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Info("ConfigLoader", "No config.yaml found at %s, using defaults", configFilePath)
			return applyEnvOverrides(config), nil
		}
		logging.Info("ConfigLoader", "Error loading config.yaml from %s: %s", configFilePath, err)
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("error loading config from %s: %w", configFilePath, err)
	}
	logging.Info("ConfigLoader", "Loaded configuration from %s", configFilePath)
	return applyEnvOverrides(config), nil
}

func applyEnvOverrides(config Config) Config {
	if clientID := os.Getenv(EnvClientID); clientID != "" {
		config.Spotify.ClientID = clientID
	}
	return config
}

// ClientSecret returns the confidential client secret from the environment.
// It is intentionally not part of Config so it cannot be marshalled or
// logged along with the rest of the configuration.
func ClientSecret() (string, error) {
	secret := os.Getenv(EnvClientSecret)
	if secret == "" {
		return "", fmt.Errorf("%s is not set", EnvClientSecret)
	}
	return secret, nil
}

// Validate reports configuration problems that prevent startup.
func (c Config) Validate() error {
	if c.Spotify.ClientID == "" {
		return fmt.Errorf("spotify.clientID is required (or set %s)", EnvClientID)
	}
	if len(c.Spotify.Scopes) == 0 {
		return errors.New("spotify.scopes must not be empty")
	}
	if c.Proxy.ListenAddr == "" {
		return errors.New("proxy.listenAddr must not be empty")
	}
	switch c.Auth.Backend {
	case StorageBackendFile, StorageBackendKeyring, StorageBackendMemory:
	default:
		return fmt.Errorf("unknown auth.backend %q", c.Auth.Backend)
	}
	return nil
}
