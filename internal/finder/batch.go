// file: internal/finder/batch.go
// version: 1.0.0
// guid: 7f2c9a54-1e6b-4c30-9d87-a3b0e5f1c826

package finder

import (
	"context"
	"log"
	"time"

	"github.com/jdfalk/art-roulette/internal/catalog"
	"github.com/jdfalk/art-roulette/internal/metrics"
	"github.com/jdfalk/art-roulette/internal/models"
)

// BatchFinder samples random windows from a batch-search catalog and
// returns the first usable candidate it sees.
type BatchFinder[C any] struct {
	adapter   catalog.BatchAdapter[C]
	transport catalog.Transport
	opts      Options
}

// NewBatchFinder creates a batch finder; zero options use the defaults.
func NewBatchFinder[C any](adapter catalog.BatchAdapter[C], transport catalog.Transport, opts Options) *BatchFinder[C] {
	return &BatchFinder[C]{
		adapter:   adapter,
		transport: transport,
		opts:      opts.withDefaults(DefaultBatchAttempts),
	}
}

func (f *BatchFinder[C]) Info() catalog.Info { return f.adapter.Info() }

// Find issues at most opts.Attempts requests, one at a time.
func (f *BatchFinder[C]) Find(ctx context.Context) (*models.Artwork, error) {
	start := time.Now()
	id := f.adapter.Info().ID
	var lastErr error

	for attempt := 1; attempt <= f.opts.Attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			finish(id, start, metrics.OutcomeCancelled)
			return nil, err
		}

		url, window := f.adapter.BuildQueryURL(f.opts.BatchSize, f.opts.Rand)
		log.Printf("[DEBUG] %s attempt %d/%d window %s", id, attempt, f.opts.Attempts, window)

		body, err := attemptGet(ctx, f.transport, url, f.opts.AttemptTimeout)
		if err != nil {
			if ctx.Err() != nil {
				finish(id, start, metrics.OutcomeCancelled)
				return nil, ctx.Err()
			}
			log.Printf("[DEBUG] %s attempt %d: %v", id, attempt, err)
			metrics.IncAttempt(id, metrics.AttemptTransport)
			lastErr = err
			continue
		}

		candidates, err := f.adapter.ParseResponse(body)
		if err != nil {
			log.Printf("[DEBUG] %s attempt %d: %v", id, attempt, err)
			metrics.IncAttempt(id, metrics.AttemptParse)
			lastErr = err
			continue
		}

		usable := f.adapter.FilterUsable(candidates)
		if len(usable) == 0 {
			metrics.IncAttempt(id, metrics.AttemptEmpty)
			continue
		}

		art, err := f.pick(usable)
		if err != nil {
			metrics.IncAttempt(id, metrics.AttemptUnusable)
			lastErr = err
			continue
		}

		if err := ctx.Err(); err != nil {
			finish(id, start, metrics.OutcomeCancelled)
			return nil, err
		}
		metrics.IncAttempt(id, metrics.AttemptHit)
		finish(id, start, metrics.OutcomeFound)
		log.Printf("[INFO] %s found artwork %s on attempt %d", id, art.ID, attempt)
		return art, nil
	}

	finish(id, start, metrics.OutcomeNotFound)
	return nil, &NotFoundError{Catalog: id, Attempts: f.opts.Attempts, LastErr: lastErr}
}

// pick draws uniformly from usable, drawing again if normalization rejects a candidate.
func (f *BatchFinder[C]) pick(usable []C) (*models.Artwork, error) {
	remaining := append([]C(nil), usable...)
	var lastErr error
	for len(remaining) > 0 {
		i := f.opts.Rand.IntN(len(remaining))
		art, err := f.adapter.Normalize(remaining[i])
		if err == nil {
			if err = art.Validate(); err == nil {
				return &art, nil
			}
		}
		lastErr = err
		remaining[i] = remaining[len(remaining)-1]
		remaining = remaining[:len(remaining)-1]
	}
	return nil, lastErr
}
