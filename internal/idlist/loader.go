// file: internal/idlist/loader.go
// version: 1.0.0
// guid: 5c9e1a37-b2f4-4d06-8e3a-7f0d4c6b1e92

// Package idlist caches an enumeration catalog's identifier universe.
//
// The list is fetched once, stored in the key-value store as a JSON array of
// integers and kept in memory for the life of the process. By default it
// never expires; a TTL can be configured, and Invalidate drops it everywhere.
package idlist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jdfalk/art-roulette/internal/cache"
	"github.com/jdfalk/art-roulette/internal/catalog"
	"github.com/jdfalk/art-roulette/internal/database"
	"github.com/jdfalk/art-roulette/internal/metrics"
	"golang.org/x/sync/singleflight"
)

// ErrEmptyList is returned when the catalog reports no identifiers.
var ErrEmptyList = errors.New("identifier list is empty")

// Load sources, reported in metrics and Status.
const (
	SourceMemory = "memory"
	SourceStore  = "store"
	SourceFetch  = "fetch"
)

// Fetcher performs the bulk identifier download.
type Fetcher func(ctx context.Context) ([]int, error)

// FetchFrom builds a Fetcher from an enumeration adapter and a transport.
func FetchFrom[C any](adapter catalog.EnumerationAdapter[C], transport catalog.Transport) Fetcher {
	return func(ctx context.Context) ([]int, error) {
		body, err := transport.Get(ctx, adapter.IdentifiersURL())
		if err != nil {
			return nil, err
		}
		return adapter.ParseIdentifiers(body)
	}
}

// Status describes the cached list without triggering a fetch.
type Status struct {
	Catalog   string    `json:"catalog"`
	Key       string    `json:"key"`
	Count     int       `json:"count"`
	InMemory  bool      `json:"in_memory"`
	InStore   bool      `json:"in_store"`
	FetchedAt time.Time `json:"fetched_at,omitempty"`
	Stale     bool      `json:"stale"`
}

// Loader implements check-then-fetch-then-store for one catalog's list.
// Concurrent cold loads share a single fetch.
type Loader struct {
	catalog string
	key     string
	store   database.Store
	fetch   Fetcher
	ttl     time.Duration
	memory  *cache.Cache[[]int]
	group   singleflight.Group
	now     func() time.Time
}

// NewLoader creates a loader. store may be nil, in which case the list is
// only cached in memory. ttl <= 0 keeps the list for the install lifetime.
func NewLoader(catalogID string, store database.Store, fetch Fetcher, ttl time.Duration) *Loader {
	if ttl < 0 {
		ttl = 0
	}
	return &Loader{
		catalog: catalogID,
		key:     catalogID + ":objectIDs",
		store:   store,
		fetch:   fetch,
		ttl:     ttl,
		memory:  cache.New[[]int](ttl),
		now:     time.Now,
	}
}

// Key is the store key holding the JSON identifier array.
func (l *Loader) Key() string { return l.key }

func (l *Loader) fetchedAtKey() string { return l.key + ":fetched_at" }

// Load returns the identifier list, fetching it at most once per process
// unless it has expired or been invalidated.
func (l *Loader) Load(ctx context.Context) ([]int, error) {
	if ids, ok := l.memory.Get(l.key); ok {
		metrics.IncIDListLoad(l.catalog, SourceMemory)
		return ids, nil
	}

	// The shared flight must not die with whichever caller started it.
	flightCtx := context.WithoutCancel(ctx)
	ch := l.group.DoChan(l.key, func() (any, error) {
		return l.loadSlow(flightCtx)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]int), nil
	}
}

func (l *Loader) loadSlow(ctx context.Context) ([]int, error) {
	// Another flight may have populated memory while we queued.
	if ids, ok := l.memory.Get(l.key); ok {
		metrics.IncIDListLoad(l.catalog, SourceMemory)
		return ids, nil
	}

	ids, fetchedAt, ok, err := l.readStore()
	if err != nil {
		log.Printf("[WARN] %s identifier list: store read failed, refetching: %v", l.catalog, err)
	}
	if ok && !l.isStale(fetchedAt) {
		l.remember(ids, fetchedAt)
		metrics.IncIDListLoad(l.catalog, SourceStore)
		log.Printf("[DEBUG] %s identifier list: loaded %d ids from store", l.catalog, len(ids))
		return ids, nil
	}

	log.Printf("[INFO] %s identifier list: fetching from catalog", l.catalog)
	ids, err = l.fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s identifier list: %w", l.catalog, err)
	}
	if len(ids) == 0 {
		return nil, ErrEmptyList
	}
	metrics.IncIDListLoad(l.catalog, SourceFetch)

	now := l.now()
	if err := l.writeStore(ids, now); err != nil {
		log.Printf("[WARN] %s identifier list: failed to persist: %v", l.catalog, err)
	}
	l.remember(ids, now)
	log.Printf("[INFO] %s identifier list: cached %d ids", l.catalog, len(ids))
	return ids, nil
}

func (l *Loader) remember(ids []int, fetchedAt time.Time) {
	metrics.SetIDListSize(l.catalog, len(ids))
	if l.ttl == 0 {
		l.memory.Set(l.key, ids)
		return
	}
	remaining := l.ttl
	if !fetchedAt.IsZero() {
		remaining = fetchedAt.Add(l.ttl).Sub(l.now())
	}
	if remaining > 0 {
		l.memory.SetWithTTL(l.key, ids, remaining)
	}
}

func (l *Loader) isStale(fetchedAt time.Time) bool {
	if l.ttl == 0 {
		return false
	}
	if fetchedAt.IsZero() {
		return true
	}
	return l.now().Sub(fetchedAt) > l.ttl
}

func (l *Loader) readStore() ([]int, time.Time, bool, error) {
	if l.store == nil {
		return nil, time.Time{}, false, nil
	}
	raw, ok, err := l.store.Get(l.key)
	if err != nil || !ok {
		return nil, time.Time{}, false, err
	}
	var ids []int
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, time.Time{}, false, fmt.Errorf("corrupt identifier list under %s: %w", l.key, err)
	}
	if len(ids) == 0 {
		return nil, time.Time{}, false, nil
	}

	var fetchedAt time.Time
	if ts, ok, err := l.store.Get(l.fetchedAtKey()); err == nil && ok {
		fetchedAt, _ = time.Parse(time.RFC3339, ts)
	}
	return ids, fetchedAt, true, nil
}

func (l *Loader) writeStore(ids []int, fetchedAt time.Time) error {
	if l.store == nil {
		return nil
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	if err := l.store.Set(l.key, string(data)); err != nil {
		return err
	}
	return l.store.Set(l.fetchedAtKey(), fetchedAt.UTC().Format(time.RFC3339))
}

// Invalidate drops the list from memory and the store; the next Load refetches.
func (l *Loader) Invalidate() error {
	l.memory.Invalidate(l.key)
	l.group.Forget(l.key)
	if l.store == nil {
		return nil
	}
	if err := l.store.Delete(l.key); err != nil {
		return err
	}
	return l.store.Delete(l.fetchedAtKey())
}

// Status inspects memory and the store without fetching.
func (l *Loader) Status() (Status, error) {
	st := Status{Catalog: l.catalog, Key: l.key}
	if ids, ok := l.memory.Get(l.key); ok {
		st.InMemory = true
		st.Count = len(ids)
	}
	ids, fetchedAt, ok, err := l.readStore()
	if err != nil {
		return st, err
	}
	if ok {
		st.InStore = true
		st.Count = len(ids)
		st.FetchedAt = fetchedAt
		st.Stale = l.isStale(fetchedAt)
	}
	return st, nil
}
