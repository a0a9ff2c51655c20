// file: cmd/diagnostics.go
// version: 2.0.0
// guid: c8f6a0d4-2a8b-48cf-9d08-02cc9915d9fc

package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/pebble/v2"
	"github.com/jdfalk/art-roulette/internal/config"
	"github.com/jdfalk/art-roulette/internal/database"
	"github.com/jdfalk/art-roulette/internal/idlist"
	"github.com/jdfalk/art-roulette/internal/render"
	"github.com/jdfalk/art-roulette/internal/roulette"
	"github.com/spf13/cobra"
)

var (
	cacheCmd = &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the identifier cache",
		Long: `The Met is sampled by probing its full object identifier list. The list
is fetched once and kept in the cache store; these commands inspect,
prefetch and clear it.`,
	}

	cacheStatusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show what is cached",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCacheStatus(cmd.OutOrStdout())
		},
	}

	cacheWarmCmd = &cobra.Command{
		Use:   "warm",
		Short: "Fetch identifier lists that are missing or stale",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCacheWarm(cmd)
		},
	}

	cacheClearCmd = &cobra.Command{
		Use:   "clear",
		Short: "Drop cached identifier lists so the next find refetches them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("yes")
			return runCacheClear(cmd.OutOrStdout(), force)
		},
	}

	cacheQueryCmd = &cobra.Command{
		Use:   "query",
		Short: "Inspect stored keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			prefix, _ := cmd.Flags().GetString("prefix")
			raw, _ := cmd.Flags().GetBool("raw")
			return runCacheQuery(cmd.OutOrStdout(), limit, prefix, raw)
		},
	}
)

func init() {
	cacheClearCmd.Flags().Bool("yes", false, "Skip confirmation prompt")

	cacheQueryCmd.Flags().Int("limit", 5, "Number of records to display")
	cacheQueryCmd.Flags().String("prefix", "", "Key prefix to inspect")
	cacheQueryCmd.Flags().Bool("raw", false, "Read the Pebble files directly (Pebble only)")

	cacheCmd.AddCommand(cacheStatusCmd)
	cacheCmd.AddCommand(cacheWarmCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheQueryCmd)
}

// ensureDiagnosticsStore opens the configured store. Unlike finds, these
// commands need the store and fail without it.
func ensureDiagnosticsStore() (func(), error) {
	if err := initializeStore(
		config.AppConfig.DatabaseType,
		config.AppConfig.DatabasePath,
		config.AppConfig.EnableSQLite,
	); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	cleanup := func() {
		_ = closeStore()
	}
	return cleanup, nil
}

func diagnosticsLoaders() []*idlist.Loader {
	return roulette.NewRegistry(config.Snapshot(), database.GlobalStore).Loaders()
}

func runCacheStatus(out io.Writer) error {
	closer, err := ensureDiagnosticsStore()
	if err != nil {
		return err
	}
	defer closer()

	fmt.Fprintf(out, "Cache store: %s (%s)\n", config.AppConfig.DatabasePath, config.AppConfig.DatabaseType)
	for _, l := range diagnosticsLoaders() {
		st, err := l.Status()
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", l.Key(), err)
		}
		if !st.InStore {
			fmt.Fprintf(out, "%s: not cached\n", st.Key)
			continue
		}
		stale := ""
		if st.Stale {
			stale = " (stale)"
		}
		fetched := "unknown"
		if !st.FetchedAt.IsZero() {
			fetched = st.FetchedAt.Format(time.RFC3339)
		}
		fmt.Fprintf(out, "%s: %d ids, fetched %s%s\n", st.Key, st.Count, fetched, stale)
	}
	return nil
}

func runCacheWarm(cmd *cobra.Command) error {
	closer, err := ensureDiagnosticsStore()
	if err != nil {
		return err
	}
	defer closer()

	out := cmd.OutOrStdout()
	ctx := commandContext(cmd)
	for _, l := range diagnosticsLoaders() {
		ids, err := l.Load(ctx)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", l.Key(), err)
		}
		fmt.Fprintln(out, render.Success(fmt.Sprintf("%s: %d ids", l.Key(), len(ids))))
	}
	return nil
}

func runCacheClear(out io.Writer, force bool) error {
	closer, err := ensureDiagnosticsStore()
	if err != nil {
		return err
	}
	defer closer()

	loaders := diagnosticsLoaders()
	if !force {
		confirmed, err := promptYesNo(fmt.Sprintf("Clear %d cached identifier lists", len(loaders)))
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Fprintln(out, "Aborted. Nothing cleared.")
			return nil
		}
	}

	for _, l := range loaders {
		if err := l.Invalidate(); err != nil {
			return fmt.Errorf("failed to clear %s: %w", l.Key(), err)
		}
		fmt.Fprintf(out, "Cleared %s\n", l.Key())
	}
	return nil
}

func runCacheQuery(out io.Writer, limit int, prefix string, raw bool) error {
	if limit <= 0 {
		return errors.New("limit must be positive")
	}

	if raw {
		if config.AppConfig.DatabaseType != "pebble" {
			return fmt.Errorf("raw inspection is only available for Pebble databases")
		}
		return runRawPebbleQuery(out, limit, prefix)
	}

	closer, err := ensureDiagnosticsStore()
	if err != nil {
		return err
	}
	defer closer()

	entries, err := database.GlobalStore.List(prefix, limit)
	if err != nil {
		return fmt.Errorf("failed to list keys: %w", err)
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "No keys matched the requested prefix.")
		return nil
	}
	for _, e := range entries {
		printEntry(out, e.Key, []byte(e.Value))
	}
	return nil
}

func runRawPebbleQuery(out io.Writer, limit int, prefix string) error {
	db, err := pebble.Open(config.AppConfig.DatabasePath, &pebble.Options{
		FormatMajorVersion: pebble.FormatNewest,
		ReadOnly:           true,
	})
	if err != nil {
		return fmt.Errorf("failed to open Pebble database: %w", err)
	}
	defer db.Close()

	iterOpts := &pebble.IterOptions{}
	if prefix != "" {
		iterOpts.LowerBound = []byte(prefix)
		iterOpts.UpperBound = append([]byte(prefix), 0xFF)
	}

	iter, err := db.NewIter(iterOpts)
	if err != nil {
		return fmt.Errorf("failed to create iterator: %w", err)
	}
	defer iter.Close()

	count := 0
	for ok := iter.First(); ok && iter.Valid(); ok = iter.Next() {
		printEntry(out, string(iter.Key()), iter.Value())
		count++
		if count >= limit {
			break
		}
	}

	if err := iter.Error(); err != nil {
		return fmt.Errorf("iterator error: %w", err)
	}

	if count == 0 {
		fmt.Fprintln(out, "No keys matched the requested prefix.")
	}

	return nil
}

func printEntry(out io.Writer, key string, val []byte) {
	fmt.Fprintf(out, "Key: %s\n", key)
	fmt.Fprintf(out, "Value length: %d bytes\n", len(val))
	fmt.Fprintf(out, "Value preview: %s\n", truncateString(string(val), 500))
	fmt.Fprintln(out, "---")
}

func promptYesNo(action string) (bool, error) {
	fmt.Printf("%s? Type 'yes' to confirm: ", action)
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false, err
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "yes", nil
}

func truncateString(in string, max int) string {
	if len(in) <= max {
		return in
	}
	return in[:max] + "..."
}
