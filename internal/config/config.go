// file: internal/config/config.go
// version: 2.0.0
// guid: 7b8c9d0e-1f2a-3b4c-5d6e-7f8a9b0c1d2e

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/jdfalk/art-roulette/internal/catalog"
	"github.com/spf13/viper"
)

// Version is stamped by the build and used in the default User-Agent.
var Version = "dev"

// CatalogConfig tunes one catalog.
type CatalogConfig struct {
	Enabled bool `yaml:"enabled"`
	// BaseURL overrides the adapter default (and its *_BASE_URL env var).
	BaseURL           string  `yaml:"base_url,omitempty"`
	BatchSize         int     `yaml:"batch_size"`
	MaxOffset         int     `yaml:"max_offset,omitempty"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// FindConfig holds the attempt budgets shared by every finder.
type FindConfig struct {
	BatchAttempts  int           `yaml:"batch_attempts"`
	ProbeAttempts  int           `yaml:"probe_attempts"`
	ProbeStride    int           `yaml:"probe_stride"`
	AttemptTimeout time.Duration `yaml:"attempt_timeout"`
}

// ServerSettings configures `serve`.
type ServerSettings struct {
	Host              string        `yaml:"host"`
	Port              int           `yaml:"port"`
	ReadTimeout       time.Duration `yaml:"read_timeout"`
	WriteTimeout      time.Duration `yaml:"write_timeout"`
	IdleTimeout       time.Duration `yaml:"idle_timeout"`
	RequestsPerMinute int           `yaml:"requests_per_minute"`
	// AllowedImageHosts limits which hosts the download and save endpoints fetch from.
	AllowedImageHosts []string `yaml:"allowed_image_hosts"`
}

// Config holds application configuration
type Config struct {
	DatabaseType string `yaml:"database_type"` // "pebble" (default), "sqlite" or "redis"
	DatabasePath string `yaml:"database_path"` // redis: host:port
	EnableSQLite bool   `yaml:"enable_sqlite3_i_know_the_risks"`

	DownloadDir string        `yaml:"download_dir"`
	HTTPTimeout time.Duration `yaml:"http_timeout"`
	UserAgent   string        `yaml:"user_agent"`

	Find      FindConfig               `yaml:"find"`
	IDListTTL time.Duration            `yaml:"id_list_ttl"`
	Catalogs  map[string]CatalogConfig `yaml:"catalogs"`
	Server    ServerSettings           `yaml:"server"`
	LogLevel  string                   `yaml:"log_level"`
}

var (
	AppConfig Config
	mu        sync.RWMutex
)

// DefaultImageHosts are the image CDNs of the three catalogs.
var DefaultImageHosts = []string{
	"images.metmuseum.org",
	"artic.edu",
	"clevelandart.org",
}

// CatalogIDs lists catalogs in display order.
var CatalogIDs = []string{catalog.MetID, catalog.AICID, catalog.CMAID}

// DefaultDownloadDir returns the platform pictures directory for saved images.
func DefaultDownloadDir() string {
	if runtime.GOOS == "android" {
		return "/sdcard/Pictures/art-roulette"
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(os.TempDir(), "art-roulette")
	}
	return filepath.Join(home, "Pictures", "art-roulette")
}

// SetDefaults registers every default with viper.
func SetDefaults() {
	viper.SetDefault("database_type", "pebble")
	viper.SetDefault("database_path", "art-roulette.pebble")
	viper.SetDefault("enable_sqlite3_i_know_the_risks", false)
	viper.SetDefault("download_dir", DefaultDownloadDir())
	viper.SetDefault("http_timeout", 30*time.Second)
	viper.SetDefault("user_agent", "art-roulette/"+Version)

	viper.SetDefault("find.batch_attempts", 12)
	viper.SetDefault("find.probe_attempts", 200)
	viper.SetDefault("find.probe_stride", 9973)
	viper.SetDefault("find.attempt_timeout", 10*time.Second)
	viper.SetDefault("id_list_ttl", time.Duration(0))

	maxOffsets := map[string]int{
		catalog.MetID: 0,
		catalog.AICID: catalog.DefaultAICMaxOffset,
		catalog.CMAID: catalog.DefaultCMAMaxOffset,
	}
	for _, id := range CatalogIDs {
		prefix := "catalogs." + id + "."
		viper.SetDefault(prefix+"enabled", true)
		viper.SetDefault(prefix+"base_url", "")
		viper.SetDefault(prefix+"batch_size", 20)
		viper.SetDefault(prefix+"max_offset", maxOffsets[id])
		viper.SetDefault(prefix+"requests_per_second", 10.0)
		viper.SetDefault(prefix+"burst", 5)
	}

	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 15*time.Second)
	viper.SetDefault("server.write_timeout", 15*time.Second)
	viper.SetDefault("server.idle_timeout", 60*time.Second)
	viper.SetDefault("server.requests_per_minute", 120)
	viper.SetDefault("server.allowed_image_hosts", DefaultImageHosts)

	viper.SetDefault("log_level", "info")
}

// InitConfig initializes the application configuration
func InitConfig() {
	SetDefaults()
	load()
}

// load reads viper into AppConfig.
func load() {
	cfg := Config{
		DatabaseType: strings.ToLower(viper.GetString("database_type")),
		DatabasePath: viper.GetString("database_path"),
		EnableSQLite: viper.GetBool("enable_sqlite3_i_know_the_risks"),
		DownloadDir:  expandHome(viper.GetString("download_dir")),
		HTTPTimeout:  viper.GetDuration("http_timeout"),
		UserAgent:    viper.GetString("user_agent"),
		Find: FindConfig{
			BatchAttempts:  viper.GetInt("find.batch_attempts"),
			ProbeAttempts:  viper.GetInt("find.probe_attempts"),
			ProbeStride:    viper.GetInt("find.probe_stride"),
			AttemptTimeout: viper.GetDuration("find.attempt_timeout"),
		},
		IDListTTL: viper.GetDuration("id_list_ttl"),
		Catalogs:  make(map[string]CatalogConfig, len(CatalogIDs)),
		Server: ServerSettings{
			Host:              viper.GetString("server.host"),
			Port:              viper.GetInt("server.port"),
			ReadTimeout:       viper.GetDuration("server.read_timeout"),
			WriteTimeout:      viper.GetDuration("server.write_timeout"),
			IdleTimeout:       viper.GetDuration("server.idle_timeout"),
			RequestsPerMinute: viper.GetInt("server.requests_per_minute"),
			AllowedImageHosts: viper.GetStringSlice("server.allowed_image_hosts"),
		},
		LogLevel: viper.GetString("log_level"),
	}

	for _, id := range CatalogIDs {
		prefix := "catalogs." + id + "."
		cfg.Catalogs[id] = CatalogConfig{
			Enabled:           viper.GetBool(prefix + "enabled"),
			BaseURL:           viper.GetString(prefix + "base_url"),
			BatchSize:         viper.GetInt(prefix + "batch_size"),
			MaxOffset:         viper.GetInt(prefix + "max_offset"),
			RequestsPerSecond: viper.GetFloat64(prefix + "requests_per_second"),
			Burst:             viper.GetInt(prefix + "burst"),
		}
	}

	// Normalize database type
	if cfg.DatabaseType == "sqlite3" {
		cfg.DatabaseType = "sqlite"
	}
	if cfg.DatabaseType == "" {
		cfg.DatabaseType = "pebble"
	}

	mu.Lock()
	AppConfig = cfg
	mu.Unlock()
}

// Snapshot returns a copy of AppConfig that is safe to read while a reload runs.
func Snapshot() Config {
	mu.RLock()
	defer mu.RUnlock()
	cfg := AppConfig
	cfg.Server.AllowedImageHosts = append([]string(nil), AppConfig.Server.AllowedImageHosts...)
	cfg.Catalogs = make(map[string]CatalogConfig, len(AppConfig.Catalogs))
	for k, v := range AppConfig.Catalogs {
		cfg.Catalogs[k] = v
	}
	return cfg
}

// Validate reports settings no finder can run with.
func (c Config) Validate() error {
	var problems []string
	if c.Find.BatchAttempts <= 0 {
		problems = append(problems, "find.batch_attempts must be positive")
	}
	if c.Find.ProbeAttempts <= 0 {
		problems = append(problems, "find.probe_attempts must be positive")
	}
	if c.Find.ProbeStride <= 0 {
		problems = append(problems, "find.probe_stride must be positive")
	}
	if c.IDListTTL < 0 {
		problems = append(problems, "id_list_ttl must not be negative")
	}
	switch c.DatabaseType {
	case "pebble", "sqlite", "redis":
	default:
		problems = append(problems, fmt.Sprintf("unsupported database_type %q", c.DatabaseType))
	}
	for _, id := range CatalogIDs {
		cc, ok := c.Catalogs[id]
		if !ok || !cc.Enabled {
			continue
		}
		if cc.BatchSize <= 0 {
			problems = append(problems, fmt.Sprintf("catalogs.%s.batch_size must be positive", id))
		}
		if cc.MaxOffset < 0 {
			problems = append(problems, fmt.Sprintf("catalogs.%s.max_offset must not be negative", id))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// EnabledCatalogs returns enabled catalog ids in display order.
func (c Config) EnabledCatalogs() []string {
	var ids []string
	for _, id := range CatalogIDs {
		if c.Catalogs[id].Enabled {
			ids = append(ids, id)
		}
	}
	return ids
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
