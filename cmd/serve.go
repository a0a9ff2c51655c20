// file: cmd/serve.go
// version: 1.0.0
// guid: b7e04c2a-5d91-4f38-a6c3-8e2d1f0b9c57

package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/jdfalk/art-roulette/internal/config"
	"github.com/jdfalk/art-roulette/internal/download"
	"github.com/jdfalk/art-roulette/internal/roulette"
	"github.com/jdfalk/art-roulette/internal/server"
	"github.com/spf13/cobra"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the JSON API server",
	Long: `Start the HTTP server that exposes the roulette as a JSON API for web
and mobile front-ends. Editing the config file while it runs retunes the
catalogs without a restart.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Snapshot()
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		store, closer := openCacheStore(cfg)
		defer closer()

		log.Printf("[INFO] Using cache store: %s (%s)", cfg.DatabasePath, cfg.DatabaseType)

		srv := server.NewServer(server.Deps{
			Registry:     roulette.NewRegistry(cfg, store),
			Persister:    newPersister(&cfg, nil),
			Streamer:     download.NewStreamerFromConfig(&cfg),
			Settings:     cfg.Server,
			DatabaseType: cfg.DatabaseType,
			Version:      config.Version,
		})

		config.WatchConfig(func(updated config.Config) {
			srv.SetRegistry(roulette.NewRegistry(updated, store))
		})

		scfg, err := serverConfigFromFlags(cmd, server.ServerConfigFrom(cfg.Server))
		if err != nil {
			return err
		}
		return startServer(commandContext(cmd), srv, scfg)
	},
}

func init() {
	defaults := server.GetDefaultServerConfig()
	serveCmd.Flags().String("port", defaults.Port, "port to run the web server on")
	serveCmd.Flags().String("host", defaults.Host, "host to bind the web server to")
	serveCmd.Flags().String("read-timeout", defaults.ReadTimeout.String(), "read timeout (e.g. 15s, 1m)")
	serveCmd.Flags().String("write-timeout", defaults.WriteTimeout.String(), "write timeout (e.g. 15s, 1m)")
	serveCmd.Flags().String("idle-timeout", defaults.IdleTimeout.String(), "idle timeout (e.g. 60s, 2m)")
}

// serverConfigFromFlags applies the flags the user actually set on top of cfg.
func serverConfigFromFlags(cmd *cobra.Command, cfg server.ServerConfig) (server.ServerConfig, error) {
	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.Port, _ = flags.GetString("port")
	}
	if flags.Changed("host") {
		cfg.Host, _ = flags.GetString("host")
	}

	durations := []struct {
		name string
		dst  *time.Duration
	}{
		{"read-timeout", &cfg.ReadTimeout},
		{"write-timeout", &cfg.WriteTimeout},
		{"idle-timeout", &cfg.IdleTimeout},
	}
	for _, d := range durations {
		if !flags.Changed(d.name) {
			continue
		}
		raw, _ := flags.GetString(d.name)
		v, err := time.ParseDuration(raw)
		if err != nil {
			return cfg, fmt.Errorf("invalid --%s: %w", d.name, err)
		}
		*d.dst = v
	}
	return cfg, nil
}
