// file: internal/config/persistence.go
// version: 2.0.0
// guid: 9c8d7e6f-5a4b-3c2d-1e0f-9a8b7c6d5e4f

package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// ConfigFileName is the default config file under $HOME.
const ConfigFileName = ".art-roulette.yaml"

// ConfigFilePath returns the config file viper loaded, or $HOME/.art-roulette.yaml.
func ConfigFilePath() string {
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, ConfigFileName)
}

// MarshalYAML renders the current configuration as YAML.
func MarshalYAML() ([]byte, error) {
	cfg := Snapshot()
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// SaveConfigToFile writes the current configuration to ConfigFilePath.
func SaveConfigToFile() error {
	path := ConfigFilePath()
	if path == "" {
		return fmt.Errorf("cannot determine config file path")
	}
	return SaveConfigTo(path)
}

// SaveConfigTo writes the current configuration to path.
func SaveConfigTo(path string) error {
	data, err := MarshalYAML()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	log.Printf("[INFO] Configuration saved to file: %s", path)
	return nil
}

// WatchConfig reloads AppConfig whenever the config file changes and then
// calls onChange with the new snapshot. It is a no-op without a config file.
func WatchConfig(onChange func(Config)) {
	if viper.ConfigFileUsed() == "" {
		log.Printf("[DEBUG] No config file in use; live reload disabled")
		return
	}
	viper.OnConfigChange(func(e fsnotify.Event) {
		handleConfigChange(e, onChange)
	})
	viper.WatchConfig()
}

func handleConfigChange(e fsnotify.Event, onChange func(Config)) {
	if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
		return
	}
	load()
	cfg := Snapshot()
	if err := cfg.Validate(); err != nil {
		log.Printf("[WARN] Reloaded config from %s is invalid: %v", e.Name, err)
		return
	}
	log.Printf("[INFO] Reloaded config from %s", e.Name)
	if onChange != nil {
		onChange(cfg)
	}
}
