// file: cmd/root_test.go
// version: 2.0.0
// guid: 7eae8d0c-7fda-4f45-8f73-5d1e0c7c9f1a

package cmd

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/jdfalk/art-roulette/internal/config"
	"github.com/spf13/viper"
)

func TestInitConfigReadsConfigFile(t *testing.T) {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "db", "cache.pebble")
	cfgPath := filepath.Join(tempDir, "config.yaml")
	content := "database_path: " + dbPath + "\nfind:\n  batch_attempts: 5\nlog_level: warn\n"
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	origCfgFile := cfgFile
	prevWriter := log.Writer()
	defer func() {
		cfgFile = origCfgFile
		log.SetOutput(prevWriter)
		viper.Reset()
	}()
	viper.Reset()
	log.SetOutput(io.Discard)

	cfgFile = cfgPath
	initConfig()

	if config.AppConfig.Find.BatchAttempts != 5 {
		t.Fatalf("expected batch attempts from file, got %d", config.AppConfig.Find.BatchAttempts)
	}
	if config.AppConfig.DatabasePath != dbPath {
		t.Fatalf("expected database path from file, got %q", config.AppConfig.DatabasePath)
	}
	if _, err := os.Stat(filepath.Dir(dbPath)); err != nil {
		t.Fatalf("expected database directory to be created: %v", err)
	}
	if config.ConfigFilePath() != cfgPath {
		t.Fatalf("expected config file in use, got %q", config.ConfigFilePath())
	}
}

func TestInitConfigEnvOverride(t *testing.T) {
	t.Setenv("ART_ROULETTE_FIND_PROBE_ATTEMPTS", "50")
	tempDir := t.TempDir()

	origCfgFile := cfgFile
	prevWriter := log.Writer()
	defer func() {
		cfgFile = origCfgFile
		log.SetOutput(prevWriter)
		viper.Reset()
	}()
	viper.Reset()
	log.SetOutput(io.Discard)

	cfgFile = filepath.Join(tempDir, "missing.yaml")
	viper.Set("database_path", filepath.Join(tempDir, "cache.pebble"))
	initConfig()

	if config.AppConfig.Find.ProbeAttempts != 50 {
		t.Fatalf("expected env override, got %d", config.AppConfig.Find.ProbeAttempts)
	}
}

func TestExecuteHelp(t *testing.T) {
	rootCmd.SetArgs([]string{"--help"})
	rootCmd.SetOut(io.Discard)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
	}()

	if err := Execute(); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := []string{"random", "play", "save", "open", "catalogs", "cache", "config", "serve"}
	for _, name := range want {
		found := false
		for _, c := range rootCmd.Commands() {
			if c.Name() == name {
				found = true
			}
		}
		if !found {
			t.Fatalf("command %q not registered", name)
		}
	}
}
