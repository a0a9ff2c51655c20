// file: cmd/diagnostics_test.go
// version: 2.0.0
// guid: 5480d7f7-4a6a-4b7f-9d16-6b589c8a3c0b

package cmd

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/jdfalk/art-roulette/internal/config"
	"github.com/jdfalk/art-roulette/internal/testutil"
)

func TestTruncateString(t *testing.T) {
	if got := truncateString("short", 10); got != "short" {
		t.Fatalf("expected no truncation, got %q", got)
	}
	if got := truncateString("this is long", 4); got != "this..." {
		t.Fatalf("expected truncation, got %q", got)
	}
}

func withStdin(t *testing.T, input string) {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	_, _ = w.Write([]byte(input))
	_ = w.Close()

	origStdin := os.Stdin
	os.Stdin = r
	t.Cleanup(func() {
		os.Stdin = origStdin
	})
}

func TestPromptYesNo(t *testing.T) {
	withStdin(t, "yes\n")
	confirmed, err := promptYesNo("confirm")
	if err != nil {
		t.Fatalf("promptYesNo failed: %v", err)
	}
	if !confirmed {
		t.Fatal("expected confirmation")
	}
}

func TestPromptYesNoNo(t *testing.T) {
	withStdin(t, "no\n")
	confirmed, err := promptYesNo("confirm")
	if err != nil {
		t.Fatalf("promptYesNo failed: %v", err)
	}
	if confirmed {
		t.Fatal("did not expect confirmation")
	}
}

func TestRunCacheQueryErrors(t *testing.T) {
	stubCommandDeps(t, map[string]any{"database_type": "redis"})
	var out bytes.Buffer

	if err := runCacheQuery(&out, 0, "", false); err == nil {
		t.Fatal("expected error for non-positive limit")
	}
	if err := runCacheQuery(&out, 1, "", true); err == nil {
		t.Fatal("expected error for raw query on non-pebble store")
	}
}

func TestCacheLifecycle(t *testing.T) {
	met := testutil.MockCatalogServer(t, map[string]string{
		"/objects": testutil.MetObjectsResponse(436535, 436536, 436537),
	})
	stubCommandDeps(t, map[string]any{"catalogs.met.base_url": met.URL})
	var out bytes.Buffer

	if err := runCacheStatus(&out); err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if !strings.Contains(out.String(), "met:objectIDs: not cached") {
		t.Fatalf("expected empty cache:\n%s", out.String())
	}

	c, warmOut, _ := newTestCommand()
	if err := runCacheWarm(c); err != nil {
		t.Fatalf("warm failed: %v", err)
	}
	if !strings.Contains(warmOut.String(), "met:objectIDs: 3 ids") {
		t.Fatalf("unexpected warm output:\n%s", warmOut.String())
	}

	out.Reset()
	if err := runCacheStatus(&out); err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if !strings.Contains(out.String(), "met:objectIDs: 3 ids, fetched") {
		t.Fatalf("expected cached list:\n%s", out.String())
	}

	out.Reset()
	if err := runCacheQuery(&out, 5, "met:", false); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if !strings.Contains(out.String(), "Key: met:objectIDs") || !strings.Contains(out.String(), "[436535,436536,436537]") {
		t.Fatalf("unexpected query output:\n%s", out.String())
	}

	out.Reset()
	if err := runRawPebbleQuery(&out, 1, "met:"); err != nil {
		t.Fatalf("raw query failed: %v", err)
	}
	if !strings.Contains(out.String(), "Key: met:objectIDs") {
		t.Fatalf("unexpected raw output:\n%s", out.String())
	}

	out.Reset()
	if err := runCacheClear(&out, true); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if !strings.Contains(out.String(), "Cleared met:objectIDs") {
		t.Fatalf("unexpected clear output:\n%s", out.String())
	}

	out.Reset()
	if err := runCacheStatus(&out); err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if !strings.Contains(out.String(), "not cached") {
		t.Fatalf("expected cache to be empty again:\n%s", out.String())
	}
}

func TestRunCacheClearAborted(t *testing.T) {
	stubCommandDeps(t, nil)
	withStdin(t, "no\n")
	var out bytes.Buffer

	if err := runCacheClear(&out, false); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if !strings.Contains(out.String(), "Aborted") {
		t.Fatalf("expected abort, got %q", out.String())
	}
}

func TestEnsureDiagnosticsStoreError(t *testing.T) {
	stubCommandDeps(t, map[string]any{"database_type": "mongodb"})
	if config.AppConfig.DatabaseType != "mongodb" {
		t.Fatalf("unexpected type %q", config.AppConfig.DatabaseType)
	}
	if _, err := ensureDiagnosticsStore(); err == nil {
		t.Fatal("expected error for unsupported store type")
	}
}
