package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const configFileVar = "CONFIG_FILE"

type Config interface {
	EnvConfig
	APIConfig
	StoreConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetDataFolder() string
	GetEnv() string
}

// Overlay holds values read from a YAML config file, keyed by env var name.
// Environment variables always take precedence over the overlay.
type Overlay map[string]string

func (o Overlay) lookup(envVar, defaultValue string) string {
	if value := os.Getenv(envVar); value != "" {
		return value
	}
	if value, ok := o[envVar]; ok && value != "" {
		return value
	}
	return defaultValue
}

type mainConfig struct {
	EnvVars
	API
	Store
}

// New returns a Config backed by environment variables only
func New() Config {
	return newConfig(nil)
}

// Load reads an optional .env file from the working directory and, when CONFIG_FILE
// is set, a YAML overlay file.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("[config.Load] godotenv.Load: %w", err)
	}

	path := os.Getenv(configFileVar)
	if path == "" {
		return New(), nil
	}

	overlay, err := LoadOverlay(path)
	if err != nil {
		return nil, err
	}
	return newConfig(overlay), nil
}

// LoadOverlay parses a flat YAML file of KEY: value pairs
func LoadOverlay(path string) (Overlay, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("[config.LoadOverlay] read %s: %w", path, err)
	}

	overlay := Overlay{}
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("[config.LoadOverlay] parse %s: %w", path, err)
	}
	return overlay, nil
}

func newConfig(overlay Overlay) Config {
	return mainConfig{
		EnvVars: EnvVars{overlay: overlay},
		API:     API{overlay: overlay},
		Store:   Store{overlay: overlay},
	}
}
