// file: internal/database/store.go
// version: 3.0.0
// guid: 8a9b0c1d-2e3f-4a5b-6c7d-8e9f0a1b2c3d

package database

import (
	"errors"
	"fmt"
)

// Store defines the key-value operations the application persists through.
// This abstraction allows us to support PebbleDB (default), SQLite3 (opt-in)
// and Redis (shared across server instances).
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(key string) (string, bool, error)
	Set(key, value string) error
	// Delete is a no-op for absent keys.
	Delete(key string) error
	// List returns up to limit entries whose key starts with prefix, ordered by key
	// where the backend supports ordering. limit <= 0 means no limit.
	List(prefix string, limit int) ([]Entry, error)
	Close() error
}

// Entry is one key/value pair returned by List.
type Entry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("store is closed")

var GlobalStore Store

// InitializeStore initializes the database store based on configuration.
// For redis, path is the server address.
func InitializeStore(dbType, path string, enableSQLite bool) error {
	var err error

	switch dbType {
	case "sqlite", "sqlite3":
		if !enableSQLite {
			return fmt.Errorf("SQLite3 is not enabled. To use SQLite3, you must explicitly enable it with --enable-sqlite3-i-know-the-risks or set 'enable_sqlite3_i_know_the_risks: true' in your config file. PebbleDB is the recommended database for production use")
		}
		GlobalStore, err = NewSQLiteStore(path)
		if err != nil {
			return fmt.Errorf("failed to initialize SQLite store: %w", err)
		}
	case "redis":
		GlobalStore, err = NewRedisStore(path)
		if err != nil {
			return fmt.Errorf("failed to initialize Redis store: %w", err)
		}
	case "pebble", "":
		// PebbleDB is the default
		GlobalStore, err = NewPebbleStore(path)
		if err != nil {
			return fmt.Errorf("failed to initialize PebbleDB store: %w", err)
		}
	default:
		return fmt.Errorf("unsupported database type: %s (supported: pebble, sqlite, redis)", dbType)
	}

	return nil
}

// CloseStore closes the global store
func CloseStore() error {
	if GlobalStore == nil {
		return nil
	}
	err := GlobalStore.Close()
	GlobalStore = nil
	return err
}
