// file: internal/finder/finder.go
// version: 1.0.0
// guid: 0b6e3c81-5a2f-4d97-8e14-f9c7a2d5b360

// Package finder picks a random usable artwork from a catalog.
//
// Two strategies share the same attempt-budget loop: BatchFinder for catalogs
// whose search endpoint filters server side, and EnumerationFinder for
// catalogs that must be probed one identifier at a time. Every round-trip is
// sequential and bounded by a per-attempt timeout; the caller's context is
// checked before each request and before a result is returned.
package finder

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/jdfalk/art-roulette/internal/catalog"
	"github.com/jdfalk/art-roulette/internal/metrics"
	"github.com/jdfalk/art-roulette/internal/models"
)

// Defaults observed to give a good hit rate without long waits.
const (
	DefaultBatchAttempts  = 12
	DefaultProbeAttempts  = 200
	DefaultProbeStride    = 9973
	DefaultBatchSize      = 20
	DefaultAttemptTimeout = 10 * time.Second
)

// Finder returns one random usable artwork per call.
type Finder interface {
	Info() catalog.Info
	Find(ctx context.Context) (*models.Artwork, error)
}

// Options tunes a finder. Zero values take the defaults above.
type Options struct {
	Attempts       int
	AttemptTimeout time.Duration
	// BatchSize applies to batch finders only.
	BatchSize int
	// Stride applies to enumeration finders only.
	Stride int
	// Rand overrides the random source, mainly for tests.
	Rand catalog.RandSource
}

func (o Options) withDefaults(attempts int) Options {
	if o.Attempts <= 0 {
		o.Attempts = attempts
	}
	if o.AttemptTimeout < 0 {
		o.AttemptTimeout = 0
	} else if o.AttemptTimeout == 0 {
		o.AttemptTimeout = DefaultAttemptTimeout
	}
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.Stride <= 0 {
		o.Stride = DefaultProbeStride
	}
	if o.Rand == nil {
		o.Rand = newLockedRand()
	}
	return o
}

// lockedRand makes *rand.Rand safe for concurrent Find calls.
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func newLockedRand() *lockedRand {
	return &lockedRand{r: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

func (l *lockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}

// attemptGet bounds a single round-trip by timeout without detaching it from ctx.
func attemptGet(ctx context.Context, t catalog.Transport, url string, timeout time.Duration) ([]byte, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return t.Get(ctx, url)
}

// finish records metrics for a completed Find.
func finish(catalogID string, start time.Time, outcome string) {
	metrics.IncFind(catalogID, outcome)
	metrics.ObserveFindDuration(catalogID, time.Since(start))
}
