// file: internal/finder/enumeration.go
// version: 1.0.0
// guid: 2a8d5f17-6c3e-4b09-b1a4-e7f0c9d2385b

package finder

import (
	"context"
	"log"
	"time"

	"github.com/jdfalk/art-roulette/internal/catalog"
	"github.com/jdfalk/art-roulette/internal/metrics"
	"github.com/jdfalk/art-roulette/internal/models"
)

// IdentifierSource supplies the identifier universe, typically *idlist.Loader.
type IdentifierSource interface {
	Load(ctx context.Context) ([]int, error)
}

// EnumerationFinder probes identifiers along a strided sequence from a
// random start until one satisfies the catalog's usability predicate.
type EnumerationFinder[C any] struct {
	adapter   catalog.EnumerationAdapter[C]
	transport catalog.Transport
	ids       IdentifierSource
	opts      Options
}

// NewEnumerationFinder creates an enumeration finder; zero options use the defaults.
func NewEnumerationFinder[C any](adapter catalog.EnumerationAdapter[C], transport catalog.Transport, ids IdentifierSource, opts Options) *EnumerationFinder[C] {
	return &EnumerationFinder[C]{
		adapter:   adapter,
		transport: transport,
		ids:       ids,
		opts:      opts.withDefaults(DefaultProbeAttempts),
	}
}

func (f *EnumerationFinder[C]) Info() catalog.Info { return f.adapter.Info() }

func (f *EnumerationFinder[C]) Find(ctx context.Context) (*models.Artwork, error) {
	start := time.Now()
	id := f.adapter.Info().ID

	if err := ctx.Err(); err != nil {
		finish(id, start, metrics.OutcomeCancelled)
		return nil, err
	}

	ids, err := f.ids.Load(ctx)
	if err != nil {
		if ctx.Err() != nil {
			finish(id, start, metrics.OutcomeCancelled)
			return nil, ctx.Err()
		}
		log.Printf("[WARN] %s identifier list unavailable: %v", id, err)
		finish(id, start, metrics.OutcomeNotFound)
		return nil, &NotFoundError{Catalog: id, LastErr: err}
	}

	n := len(ids)
	if n == 0 {
		finish(id, start, metrics.OutcomeNotFound)
		return nil, &NotFoundError{Catalog: id}
	}
	budget := min(f.opts.Attempts, n)
	stride := CoprimeStride(f.opts.Stride, n)
	first := f.opts.Rand.IntN(n)
	log.Printf("[DEBUG] %s probing %d of %d ids from index %d stride %d", id, budget, n, first, stride)

	var lastErr error
	for k, idx := range ProbeSequence(n, first, stride, budget) {
		if err := ctx.Err(); err != nil {
			finish(id, start, metrics.OutcomeCancelled)
			return nil, err
		}

		objectID := ids[idx]
		body, err := attemptGet(ctx, f.transport, f.adapter.ObjectURL(objectID), f.opts.AttemptTimeout)
		if err != nil {
			if ctx.Err() != nil {
				finish(id, start, metrics.OutcomeCancelled)
				return nil, ctx.Err()
			}
			if catalog.IsNotFound(err) {
				metrics.IncAttempt(id, metrics.AttemptUnusable)
			} else {
				metrics.IncAttempt(id, metrics.AttemptTransport)
				lastErr = err
			}
			continue
		}

		obj, err := f.adapter.ParseObject(body)
		if err != nil {
			metrics.IncAttempt(id, metrics.AttemptParse)
			lastErr = err
			continue
		}
		if !f.adapter.IsUsable(obj) {
			metrics.IncAttempt(id, metrics.AttemptUnusable)
			continue
		}

		art, err := f.adapter.Normalize(obj)
		if err == nil {
			err = art.Validate()
		}
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
		log.Printf("[INFO] %s found artwork %s on probe %d", id, art.ID, k+1)
		return &art, nil
	}

	finish(id, start, metrics.OutcomeNotFound)
	return nil, &NotFoundError{Catalog: id, Attempts: budget, LastErr: lastErr}
}

// ProbeSequence returns the first count indices of s, s+r, s+2r, ... mod n.
func ProbeSequence(n, start, stride, count int) []int {
	if n <= 0 || count <= 0 {
		return nil
	}
	start = ((start % n) + n) % n
	step := ((stride % n) + n) % n
	seq := make([]int, count)
	idx := start
	for k := range seq {
		seq[k] = idx
		idx = (idx + step) % n
	}
	return seq
}

// CoprimeStride returns the smallest value >= stride (mod n) that is coprime
// with n, so a walk of up to n probes never revisits an index.
func CoprimeStride(stride, n int) int {
	if n <= 1 {
		return 1
	}
	r := stride % n
	if r <= 0 {
		r = 1
	}
	for gcd(r, n) != 1 {
		r++
		if r >= n {
			r = 1
		}
	}
	return r
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
