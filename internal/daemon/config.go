// Package daemon manages the Spikewise daemon lifecycle and configuration.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all daemon configuration.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Storage   StorageConfig   `toml:"storage"`
	AI        AIConfig        `toml:"ai"`
	Telemetry TelemetryConfig `toml:"telemetry"`
}

// ServerConfig controls the HTTP API server.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig controls where state lives on disk.
type StorageConfig struct {
	Dir string `toml:"dir"`
}

// AIConfig controls the Gemini collaborator. An empty key disables it and
// every insight comes from the heuristic engine.
type AIConfig struct {
	APIKey         string `toml:"api_key"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// TelemetryConfig controls observability endpoints.
type TelemetryConfig struct {
	Prometheus bool `toml:"prometheus"`
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 3000,
		},
		Storage: StorageConfig{
			Dir: filepath.Join(spikewiseHome(), "data"),
		},
		AI: AIConfig{
			Model:          "gemini-1.5-flash",
			TimeoutSeconds: 15,
		},
		Telemetry: TelemetryConfig{
			Prometheus: true,
		},
	}
}

// LoadConfig reads config from ~/.spikewise/config.toml, falling back to
// defaults. The GEMINI_API_KEY env var overrides the file so the key can stay
// out of version control.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	path := filepath.Join(spikewiseHome(), "config.toml")

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		cfg.AI.APIKey = key
	}
	if port := os.Getenv("PORT"); port != "" {
		fmt.Sscanf(port, "%d", &cfg.Server.Port)
	}

	return cfg, nil
}

// SaveConfig writes the config to ~/.spikewise/config.toml.
func SaveConfig(cfg Config) error {
	path := filepath.Join(spikewiseHome(), "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

// spikewiseHome returns the Spikewise data directory.
func spikewiseHome() string {
	if env := os.Getenv("SPIKEWISE_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".spikewise")
}

// SpikewiseHome is exported for use by other packages.
func SpikewiseHome() string {
	return spikewiseHome()
}
