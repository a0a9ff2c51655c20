// file: cmd/commands_test.go
// version: 2.0.0
// guid: 6f5b7d78-11d8-4c1a-a150-96d2c4a1a885

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/jdfalk/art-roulette/internal/config"
	"github.com/jdfalk/art-roulette/internal/database"
	"github.com/jdfalk/art-roulette/internal/download"
	"github.com/jdfalk/art-roulette/internal/finder"
	"github.com/jdfalk/art-roulette/internal/models"
	"github.com/jdfalk/art-roulette/internal/roulette"
	"github.com/jdfalk/art-roulette/internal/server"
	"github.com/jdfalk/art-roulette/internal/testutil"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type stubOpener struct {
	mu     sync.Mutex
	opened []string
}

func (s *stubOpener) Open(url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opened = append(s.opened, url)
	return nil
}

type stubPersister struct {
	mu    sync.Mutex
	saved []string
	path  string
	err   error
}

func (s *stubPersister) Persist(ctx context.Context, imageURL, suggestedName string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, imageURL)
	return s.path, s.err
}

type commandStubs struct {
	opener    *stubOpener
	persister *stubPersister
	served    *server.ServerConfig
}

// stubCommandDeps swaps the package seams for in-memory fakes and points the
// configuration at a temp directory.
func stubCommandDeps(t *testing.T, overrides map[string]any) *commandStubs {
	t.Helper()

	viper.Reset()
	tempDir := t.TempDir()
	viper.Set("database_path", filepath.Join(tempDir, "cache.pebble"))
	viper.Set("download_dir", filepath.Join(tempDir, "pictures"))
	for k, v := range overrides {
		viper.Set(k, v)
	}
	config.InitConfig()

	stubs := &commandStubs{
		opener:    &stubOpener{},
		persister: &stubPersister{path: filepath.Join(tempDir, "pictures", "artwork.jpg")},
	}

	origOpener := newOpener
	origPersister := newPersister
	origStart := startServer
	newOpener = func() roulette.URLOpener { return stubs.opener }
	newPersister = func(cfg *config.Config, progress io.Writer) download.Persister { return stubs.persister }
	startServer = func(ctx context.Context, srv *server.Server, cfg server.ServerConfig) error {
		stubs.served = &cfg
		return nil
	}

	t.Cleanup(func() {
		newOpener = origOpener
		newPersister = origPersister
		startServer = origStart
		database.GlobalStore = nil
		viper.Reset()
	})
	return stubs
}

func newTestCommand() (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	c := &cobra.Command{}
	c.SetOut(&out)
	c.SetErr(&errOut)
	return c, &out, &errOut
}

func aicServer(t *testing.T, body string) string {
	t.Helper()
	srv := testutil.MockCatalogServer(t, map[string]string{"/artworks/search": body})
	return srv.URL + "/api/v1"
}

func TestRandomCommandJSONSaveAndOpen(t *testing.T) {
	stubs := stubCommandDeps(t, map[string]any{"catalogs.aic.base_url": aicServer(t, testutil.AICSearchResponse)})
	c, out, errOut := newTestCommand()

	if err := runRandom(c, "aic", true, true, true); err != nil {
		t.Fatalf("runRandom failed: %v", err)
	}

	var art models.Artwork
	if err := json.Unmarshal(out.Bytes(), &art); err != nil {
		t.Fatalf("output is not an artwork: %v\n%s", err, out.String())
	}
	if art.ID != "27992" || art.Catalog != "aic" {
		t.Fatalf("unexpected artwork %+v", art)
	}
	if len(stubs.persister.saved) != 1 || stubs.persister.saved[0] != art.ImageURL {
		t.Fatalf("expected image to be saved once, got %v", stubs.persister.saved)
	}
	if len(stubs.opener.opened) != 1 || stubs.opener.opened[0] != art.SourceURL {
		t.Fatalf("expected source page to be opened, got %v", stubs.opener.opened)
	}
	if !strings.Contains(errOut.String(), "Saved to") {
		t.Fatalf("expected save confirmation, got %q", errOut.String())
	}
}

func TestRandomCommandCard(t *testing.T) {
	stubCommandDeps(t, map[string]any{"catalogs.aic.base_url": aicServer(t, testutil.AICSearchResponse)})
	c, out, errOut := newTestCommand()

	// The first enabled catalog is met; pick aic explicitly.
	if err := runRandom(c, "aic", false, false, false); err != nil {
		t.Fatalf("runRandom failed: %v", err)
	}
	if !strings.Contains(out.String(), "Georges Seurat") {
		t.Fatalf("expected card with artist, got %q", out.String())
	}
	if !strings.Contains(errOut.String(), "Art Institute of Chicago") {
		t.Fatalf("expected loading line, got %q", errOut.String())
	}
}

func TestRandomCommandNotFound(t *testing.T) {
	stubCommandDeps(t, map[string]any{
		"catalogs.aic.base_url": aicServer(t, testutil.AICEmptyResponse),
		"find.batch_attempts":   2,
	})
	c, _, _ := newTestCommand()

	err := runRandom(c, "aic", false, true, false)
	if err == nil || err.Error() != finder.NotFoundMessage {
		t.Fatalf("expected %q, got %v", finder.NotFoundMessage, err)
	}
}

func TestRandomCommandSaveFailed(t *testing.T) {
	stubs := stubCommandDeps(t, map[string]any{"catalogs.aic.base_url": aicServer(t, testutil.AICSearchResponse)})
	stubs.persister.err = errors.New("disk full")
	c, out, _ := newTestCommand()

	err := runRandom(c, "aic", false, true, false)
	if !errors.Is(err, roulette.ErrSaveFailed) {
		t.Fatalf("expected ErrSaveFailed, got %v", err)
	}
	if !strings.Contains(out.String(), "Georges Seurat") {
		t.Fatal("artwork should still be shown when saving fails")
	}
}

func TestRandomCommandCatalogErrors(t *testing.T) {
	stubCommandDeps(t, map[string]any{"catalogs.cma.enabled": false})
	c, _, _ := newTestCommand()

	if err := runRandom(c, "louvre", false, false, false); !errors.Is(err, roulette.ErrUnknownCatalog) {
		t.Fatalf("expected ErrUnknownCatalog, got %v", err)
	}
	if err := runRandom(c, "cma", false, false, false); !errors.Is(err, roulette.ErrCatalogDisabled) {
		t.Fatalf("expected ErrCatalogDisabled, got %v", err)
	}
}

func TestRandomCommandNoCatalogs(t *testing.T) {
	stubCommandDeps(t, map[string]any{
		"catalogs.met.enabled": false,
		"catalogs.aic.enabled": false,
		"catalogs.cma.enabled": false,
	})
	c, _, _ := newTestCommand()

	if err := runRandom(c, "", false, false, false); !errors.Is(err, errNoCatalogs) {
		t.Fatalf("expected errNoCatalogs, got %v", err)
	}
}

func TestRandomCommandWithoutStore(t *testing.T) {
	stubCommandDeps(t, map[string]any{"catalogs.aic.base_url": aicServer(t, testutil.AICSearchResponse)})
	origInit := initializeStore
	initializeStore = func(dbType, path string, enableSQLite bool) error { return errors.New("locked") }
	t.Cleanup(func() { initializeStore = origInit })
	c, _, _ := newTestCommand()

	if err := runRandom(c, "aic", false, false, false); err != nil {
		t.Fatalf("a missing cache store should not fail a find: %v", err)
	}
}

func TestSaveCommand(t *testing.T) {
	stubs := stubCommandDeps(t, nil)
	c, out, _ := newTestCommand()

	if err := runSave(c, "https://images.metmuseum.org/CRDImages/ep/original/DT1567.jpg", "Wheat Field"); err != nil {
		t.Fatalf("runSave failed: %v", err)
	}
	if !strings.Contains(out.String(), stubs.persister.path) {
		t.Fatalf("expected saved path in output, got %q", out.String())
	}

	if err := runSave(c, "not-a-url", ""); err == nil {
		t.Fatal("expected error for relative URL")
	}

	stubs.persister.err = errors.New("boom")
	if err := runSave(c, "https://images.metmuseum.org/x.jpg", ""); !errors.Is(err, roulette.ErrSaveFailed) {
		t.Fatalf("expected ErrSaveFailed, got %v", err)
	}
}

func TestOpenCommand(t *testing.T) {
	stubs := stubCommandDeps(t, nil)
	c, out, _ := newTestCommand()

	if err := openCmd.RunE(c, []string{"https://www.metmuseum.org/art/collection/search/436535"}); err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if len(stubs.opener.opened) != 1 {
		t.Fatalf("expected one open, got %v", stubs.opener.opened)
	}
	if !strings.Contains(out.String(), "Opened") {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestCatalogsCommand(t *testing.T) {
	stubCommandDeps(t, map[string]any{"catalogs.cma.enabled": false})
	c, out, _ := newTestCommand()

	if err := runCatalogs(c, false); err != nil {
		t.Fatalf("runCatalogs failed: %v", err)
	}
	text := out.String()
	for _, want := range []string{"met", "The Metropolitan Museum of Art", "enumeration", "disabled"} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in output:\n%s", want, text)
		}
	}

	out.Reset()
	if err := runCatalogs(c, true); err != nil {
		t.Fatalf("runCatalogs --json failed: %v", err)
	}
	var rows []catalogRow
	if err := json.Unmarshal(out.Bytes(), &rows); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(rows) != 3 || rows[2].ID != "cma" || rows[2].Enabled {
		t.Fatalf("unexpected rows %+v", rows)
	}
}

func TestServeCommand(t *testing.T) {
	stubs := stubCommandDeps(t, map[string]any{"server.port": 9191})
	hostFlag := serveCmd.Flags().Lookup("host")
	t.Cleanup(func() {
		_ = hostFlag.Value.Set(server.GetDefaultServerConfig().Host)
		hostFlag.Changed = false
	})
	if err := serveCmd.Flags().Set("host", "0.0.0.0"); err != nil {
		t.Fatal(err)
	}

	if err := serveCmd.RunE(serveCmd, nil); err != nil {
		t.Fatalf("serveCmd failed: %v", err)
	}
	if stubs.served == nil {
		t.Fatal("server was not started")
	}
	if stubs.served.Host != "0.0.0.0" {
		t.Fatalf("expected host flag to win, got %q", stubs.served.Host)
	}
	if stubs.served.Port != "9191" {
		t.Fatalf("expected port from config, got %q", stubs.served.Port)
	}
}

func TestServeCommandInvalidConfig(t *testing.T) {
	stubs := stubCommandDeps(t, map[string]any{"find.batch_attempts": -1})

	if err := serveCmd.RunE(serveCmd, nil); err == nil {
		t.Fatal("expected invalid configuration error")
	}
	if stubs.served != nil {
		t.Fatal("server should not start with an invalid config")
	}
}

func TestServerConfigFromFlags(t *testing.T) {
	c := &cobra.Command{}
	c.Flags().String("port", "8080", "")
	c.Flags().String("host", "localhost", "")
	c.Flags().String("read-timeout", "15s", "")
	c.Flags().String("write-timeout", "15s", "")
	c.Flags().String("idle-timeout", "60s", "")

	_ = c.Flags().Set("read-timeout", "2m")
	cfg, err := serverConfigFromFlags(c, server.GetDefaultServerConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ReadTimeout.String() != "2m0s" {
		t.Fatalf("expected 2m read timeout, got %v", cfg.ReadTimeout)
	}

	_ = c.Flags().Set("idle-timeout", "soon")
	if _, err := serverConfigFromFlags(c, server.GetDefaultServerConfig()); err == nil {
		t.Fatal("expected error for bad duration")
	}
}

func TestConfigShowAndSave(t *testing.T) {
	stubCommandDeps(t, nil)
	c, out, _ := newTestCommand()

	if err := configShowCmd.RunE(c, nil); err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	if !strings.Contains(out.String(), "database_type: pebble") {
		t.Fatalf("unexpected YAML:\n%s", out.String())
	}

	path := filepath.Join(t.TempDir(), "nested", "art.yaml")
	c.Flags().String("path", path, "")
	if err := configSaveCmd.RunE(c, nil); err != nil {
		t.Fatalf("config save failed: %v", err)
	}
	if !strings.Contains(out.String(), path) {
		t.Fatalf("expected saved path in output, got %q", out.String())
	}
}
