// file: internal/roulette/tab.go
// version: 1.1.0
// guid: 8d3f0b64-a912-4e57-9c38-2b7e5f1d4a06

package roulette

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/jdfalk/art-roulette/internal/download"
	"github.com/jdfalk/art-roulette/internal/finder"
	"github.com/jdfalk/art-roulette/internal/models"
	"github.com/oklog/ulid/v2"
)

// Status is the display state of a tab.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

var (
	// ErrSaveFailed wraps any persistence failure.
	ErrSaveFailed   = errors.New("save failed")
	ErrNothingShown = errors.New("no artwork loaded")
	ErrNoSourcePage = errors.New("artwork has no source page")
)

// State is what a tab currently shows.
type State struct {
	Status     Status          `json:"status"`
	Artwork    *models.Artwork `json:"artwork,omitempty"`
	Message    string          `json:"message,omitempty"`
	Invocation string          `json:"invocation,omitempty"`
}

// URLOpener opens a web page.
type URLOpener interface {
	Open(url string) error
}

// mediaNotifier is implemented by openers that can announce new files.
type mediaNotifier interface {
	NotifyMediaScanner(path string) error
}

// Tab drives one catalog. Only the most recent Shuffle or Refresh may update
// the displayed artwork; earlier invocations are cancelled and discarded.
type Tab struct {
	finder    finder.Finder
	persister download.Persister
	opener    URLOpener

	mu         sync.Mutex
	state      State
	generation uint64
	prev       State
	cancel     context.CancelFunc
}

// NewTab creates an idle tab. persister and opener may be nil.
func NewTab(f finder.Finder, persister download.Persister, opener URLOpener) *Tab {
	return &Tab{
		finder:    f,
		persister: persister,
		opener:    opener,
		state:     State{Status: StatusIdle},
	}
}

// Catalog returns the catalog id this tab draws from.
func (t *Tab) Catalog() string { return t.finder.Info().ID }

// State returns a snapshot of the tab.
func (t *Tab) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshot()
}

func (t *Tab) snapshot() State {
	s := t.state
	if s.Artwork != nil {
		art := *s.Artwork
		s.Artwork = &art
	}
	return s
}

// Shuffle replaces the artwork with a new random one. A superseded or
// cancelled invocation returns context.Canceled and leaves the state alone.
func (t *Tab) Shuffle(ctx context.Context) (State, error) {
	invCtx, gen, id := t.begin(ctx)
	log.Printf("[DEBUG] %s invocation %s started", t.Catalog(), id)
	art, err := t.finder.Find(invCtx)
	return t.commit(invCtx, gen, art, err)
}

// Refresh is Shuffle triggered by a pull-to-refresh gesture.
func (t *Tab) Refresh(ctx context.Context) (State, error) {
	return t.Shuffle(ctx)
}

// Cancel abandons the in-flight invocation, if any. The displayed artwork is kept.
func (t *Tab) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		t.cancel()
	}
}

func (t *Tab) begin(ctx context.Context) (context.Context, uint64, string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	// prev holds the last committed status and invocation.
	if t.cancel != nil {
		t.cancel()
	} else {
		t.prev = State{Status: t.state.Status, Invocation: t.state.Invocation}
	}
	invCtx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.generation++

	id := ulid.Make().String()
	t.state.Status = StatusLoading
	t.state.Invocation = id
	return invCtx, t.generation, id
}

func (t *Tab) commit(invCtx context.Context, gen uint64, art *models.Artwork, err error) (State, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if gen != t.generation {
		// A newer invocation owns the state.
		return t.snapshot(), context.Canceled
	}
	cancelled := invCtx.Err() != nil
	t.cancel()
	t.cancel = nil

	if cancelled || finder.IsCancelled(err) {
		t.state.Status = t.prev.Status
		t.state.Invocation = t.prev.Invocation
		return t.snapshot(), context.Canceled
	}

	if err != nil {
		log.Printf("[INFO] %s: %v", t.Catalog(), err)
		t.state.Status = StatusFailed
		t.state.Artwork = nil
		t.state.Message = finder.UserMessage(err)
		return t.snapshot(), err
	}

	t.state.Status = StatusReady
	t.state.Artwork = art
	t.state.Message = ""
	return t.snapshot(), nil
}

// Save persists the displayed artwork and returns where it went. Failures
// wrap ErrSaveFailed and never change what the tab shows.
func (t *Tab) Save(ctx context.Context) (string, error) {
	art := t.State().Artwork
	if art == nil {
		return "", ErrNothingShown
	}
	if t.persister == nil {
		return "", fmt.Errorf("%w: no persister configured", ErrSaveFailed)
	}

	path, err := t.persister.Persist(ctx, art.ImageURL, art.SuggestedName())
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}
	if n, ok := t.opener.(mediaNotifier); ok {
		if err := n.NotifyMediaScanner(path); err != nil {
			log.Printf("[WARN] Media scanner notification failed for %s: %v", path, err)
		}
	}
	return path, nil
}

// OpenSource opens the displayed artwork's public page and returns its URL.
func (t *Tab) OpenSource() (string, error) {
	art := t.State().Artwork
	if art == nil {
		return "", ErrNothingShown
	}
	if art.SourceURL == "" {
		return "", ErrNoSourcePage
	}
	if t.opener == nil {
		return "", fmt.Errorf("no opener configured")
	}
	if err := t.opener.Open(art.SourceURL); err != nil {
		return "", err
	}
	return art.SourceURL, nil
}
