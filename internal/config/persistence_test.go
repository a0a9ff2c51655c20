// file: internal/config/persistence_test.go
// version: 2.0.0
// guid: 4d5e6f7a-8b9c-0d1e-2f3a-4b5c6d7e8f9a

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

func TestConfigFilePathDefaultsToHome(t *testing.T) {
	viper.Reset()
	home := t.TempDir()
	t.Setenv("HOME", home)

	want := filepath.Join(home, ".art-roulette.yaml")
	if got := ConfigFilePath(); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	viper.Reset()
	viper.Set("find.batch_attempts", 7)
	viper.Set("catalogs.met.enabled", false)
	InitConfig()

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	if err := SaveConfigTo(path); err != nil {
		t.Fatalf("SaveConfigTo failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back failed: %v", err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		t.Fatalf("saved file is not YAML: %v", err)
	}
	if _, ok := raw["catalogs"]; !ok {
		t.Error("Expected catalogs section in saved file")
	}

	// The saved file must load back through viper to the same values.
	viper.Reset()
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		t.Fatalf("viper could not read saved file: %v", err)
	}
	InitConfig()

	if AppConfig.Find.BatchAttempts != 7 {
		t.Errorf("Expected batch attempts 7 after reload, got %d", AppConfig.Find.BatchAttempts)
	}
	if AppConfig.Catalogs["met"].Enabled {
		t.Error("Expected met to stay disabled after reload")
	}
	if AppConfig.Find.AttemptTimeout != 10*time.Second {
		t.Errorf("Expected attempt timeout 10s after reload, got %v", AppConfig.Find.AttemptTimeout)
	}
	if got := ConfigFilePath(); got != path {
		t.Errorf("Expected ConfigFilePath to follow viper, got %q", got)
	}
}

func TestHandleConfigChangeReloads(t *testing.T) {
	viper.Reset()
	InitConfig()

	viper.Set("find.probe_attempts", 50)
	var got Config
	calls := 0
	handleConfigChange(fsnotify.Event{Name: "cfg.yaml", Op: fsnotify.Write}, func(c Config) {
		calls++
		got = c
	})

	if calls != 1 {
		t.Fatalf("Expected one change callback, got %d", calls)
	}
	if got.Find.ProbeAttempts != 50 {
		t.Errorf("Expected reloaded probe attempts 50, got %d", got.Find.ProbeAttempts)
	}
}

func TestHandleConfigChangeRejectsInvalid(t *testing.T) {
	viper.Reset()
	InitConfig()

	viper.Set("find.batch_attempts", 0)
	called := false
	handleConfigChange(fsnotify.Event{Name: "cfg.yaml", Op: fsnotify.Write}, func(Config) { called = true })
	if called {
		t.Error("Invalid config must not be pushed to listeners")
	}

	handleConfigChange(fsnotify.Event{Name: "cfg.yaml", Op: fsnotify.Chmod}, func(Config) { called = true })
	if called {
		t.Error("Chmod events must be ignored")
	}
}
