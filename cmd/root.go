// file: cmd/root.go
// version: 2.0.0
// guid: 6a7b8c9d-0e1f-2a3b-4c5d-6e7f8a9b0c1d

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/jdfalk/art-roulette/internal/config"
	"github.com/jdfalk/art-roulette/internal/database"
	"github.com/jdfalk/art-roulette/internal/download"
	"github.com/jdfalk/art-roulette/internal/logging"
	"github.com/jdfalk/art-roulette/internal/opener"
	"github.com/jdfalk/art-roulette/internal/roulette"
	"github.com/jdfalk/art-roulette/internal/server"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string
var databasePath string
var databaseType string
var enableSQLite bool
var downloadDir string
var logLevel string

var errNoCatalogs = errors.New("no catalogs are enabled")

// Seams replaced in tests.
var (
	initializeStore = database.InitializeStore
	closeStore      = database.CloseStore
	newOpener       = func() roulette.URLOpener { return opener.New() }
	newPersister    = download.NewPersisterFromConfig
	startServer     = func(ctx context.Context, srv *server.Server, cfg server.ServerConfig) error {
		return srv.Start(ctx, cfg)
	}
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "art-roulette",
	Short: "Show random public-domain artworks from museum open-access APIs",
	Long: `Art Roulette picks a random public-domain artwork from The Metropolitan
Museum of Art, the Art Institute of Chicago or the Cleveland Museum of Art.

Shuffle for another, save the image to your pictures folder, or open the
museum's page for the work. The same roulette is available as a JSON API
through "art-roulette serve".`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Load .env file if present (ignore errors)
		_ = godotenv.Load()
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(config.Version),
		fang.WithNotifySignal(os.Interrupt, syscall.SIGTERM),
	)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.art-roulette.yaml)")
	rootCmd.PersistentFlags().StringVar(&databasePath, "db", "art-roulette.pebble", "path to the identifier cache (redis: server address)")
	rootCmd.PersistentFlags().StringVar(&databaseType, "db-type", "pebble", "cache store: pebble (default), sqlite or redis")
	rootCmd.PersistentFlags().BoolVar(&enableSQLite, "enable-sqlite3-i-know-the-risks", false, "enable SQLite3 store (WARNING: cross-compilation issues, PebbleDB recommended)")
	rootCmd.PersistentFlags().StringVar(&downloadDir, "download-dir", "", "directory saved images go to")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn or error")

	_ = viper.BindPFlag("database_path", rootCmd.PersistentFlags().Lookup("db"))
	_ = viper.BindPFlag("database_type", rootCmd.PersistentFlags().Lookup("db-type"))
	_ = viper.BindPFlag("enable_sqlite3_i_know_the_risks", rootCmd.PersistentFlags().Lookup("enable-sqlite3-i-know-the-risks"))
	_ = viper.BindPFlag("download_dir", rootCmd.PersistentFlags().Lookup("download-dir"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(randomCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(saveCmd)
	rootCmd.AddCommand(openCmd)
	rootCmd.AddCommand(catalogsCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(serveCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(strings.TrimSuffix(config.ConfigFileName, filepath.Ext(config.ConfigFileName)))
	}

	viper.SetEnvPrefix("ART_ROULETTE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	configErr := viper.ReadInConfig()

	config.InitConfig()

	if _, err := logging.Setup(os.Stderr, config.AppConfig.LogLevel); err != nil {
		log.Printf("[WARN] %v", err)
	}
	if configErr == nil {
		log.Printf("[DEBUG] Using config file: %s", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		log.Printf("[WARN] Could not read config file %s: %v", cfgFile, configErr)
	}

	// Ensure database directory exists
	if config.AppConfig.DatabaseType != "redis" && config.AppConfig.DatabasePath != "" {
		dbDir := filepath.Dir(config.AppConfig.DatabasePath)
		if dbDir != "." {
			if err := os.MkdirAll(dbDir, 0o755); err != nil {
				log.Printf("[WARN] Error creating database directory: %v", err)
			}
		}
	}
}

// commandContext returns the command's context, which is nil when RunE is
// called directly.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// session is what a roulette command needs: a config snapshot, the
// registry and the store backing the identifier cache.
type session struct {
	cfg      config.Config
	registry *roulette.Registry
	close    func()
}

func openSession() (*session, error) {
	cfg := config.Snapshot()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	store, closer := openCacheStore(cfg)
	return &session{cfg: cfg, registry: roulette.NewRegistry(cfg, store), close: closer}, nil
}

// openCacheStore opens the configured store. The cache is optional, so a
// store that cannot be opened degrades to memory only.
func openCacheStore(cfg config.Config) (database.Store, func()) {
	if err := initializeStore(cfg.DatabaseType, cfg.DatabasePath, cfg.EnableSQLite); err != nil {
		log.Printf("[WARN] Identifier cache unavailable, using memory only: %v", err)
		return nil, func() {}
	}
	return database.GlobalStore, func() {
		if err := closeStore(); err != nil {
			log.Printf("[WARN] Failed to close store: %v", err)
		}
	}
}
