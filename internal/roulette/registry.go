// file: internal/roulette/registry.go
// version: 1.0.0
// guid: 1e5b8d42-7c09-4a63-bf21-d4a6e9c0f853

// Package roulette wires catalogs into finders and drives the per-catalog tabs.
package roulette

import (
	"errors"
	"fmt"

	"github.com/jdfalk/art-roulette/internal/catalog"
	"github.com/jdfalk/art-roulette/internal/config"
	"github.com/jdfalk/art-roulette/internal/database"
	"github.com/jdfalk/art-roulette/internal/finder"
	"github.com/jdfalk/art-roulette/internal/idlist"
)

var (
	ErrUnknownCatalog  = errors.New("unknown catalog")
	ErrCatalogDisabled = errors.New("catalog disabled")
)

// Entry is one catalog as configured.
type Entry struct {
	Info    catalog.Info
	Enabled bool
	// Finder is nil when the catalog is disabled.
	Finder finder.Finder
	// IDs is set for enumeration catalogs.
	IDs *idlist.Loader
}

// Registry holds every known catalog in display order.
type Registry struct {
	entries map[string]*Entry
	order   []string
}

// NewRegistry builds finders for every catalog in cfg. store backs the
// identifier lists and may be nil.
func NewRegistry(cfg config.Config, store database.Store) *Registry {
	r := &Registry{entries: make(map[string]*Entry, len(config.CatalogIDs))}
	for _, id := range config.CatalogIDs {
		cc := cfg.Catalogs[id]
		transport := catalog.NewHTTPTransport(catalog.TransportOptions{
			Timeout:           cfg.HTTPTimeout,
			UserAgent:         cfg.UserAgent,
			RequestsPerSecond: cc.RequestsPerSecond,
			Burst:             cc.Burst,
		})
		batchOpts := finder.Options{
			Attempts:       cfg.Find.BatchAttempts,
			AttemptTimeout: cfg.Find.AttemptTimeout,
			BatchSize:      cc.BatchSize,
		}

		var e *Entry
		switch id {
		case catalog.MetID:
			adapter := catalog.NewMetAdapter()
			if cc.BaseURL != "" {
				adapter = catalog.NewMetAdapterWithBaseURL(cc.BaseURL)
			}
			loader := idlist.NewLoader(id, store, idlist.FetchFrom[catalog.MetObject](adapter, transport), cfg.IDListTTL)
			e = &Entry{Info: adapter.Info(), IDs: loader}
			e.Finder = finder.NewEnumerationFinder[catalog.MetObject](adapter, transport, loader, finder.Options{
				Attempts:       cfg.Find.ProbeAttempts,
				AttemptTimeout: cfg.Find.AttemptTimeout,
				Stride:         cfg.Find.ProbeStride,
			})
		case catalog.AICID:
			adapter := catalog.NewAICAdapter()
			if cc.BaseURL != "" {
				adapter = catalog.NewAICAdapterWithBaseURL(cc.BaseURL)
			}
			if cc.MaxOffset > 0 {
				adapter.MaxOffset = cc.MaxOffset
			}
			e = &Entry{Info: adapter.Info()}
			e.Finder = finder.NewBatchFinder[catalog.AICArtwork](adapter, transport, batchOpts)
		case catalog.CMAID:
			adapter := catalog.NewCMAAdapter()
			if cc.BaseURL != "" {
				adapter = catalog.NewCMAAdapterWithBaseURL(cc.BaseURL)
			}
			if cc.MaxOffset > 0 {
				adapter.MaxOffset = cc.MaxOffset
			}
			e = &Entry{Info: adapter.Info()}
			e.Finder = finder.NewBatchFinder[catalog.CMAArtwork](adapter, transport, batchOpts)
		}

		e.Enabled = cc.Enabled
		if !e.Enabled {
			e.Finder = nil
		}
		r.entries[id] = e
		r.order = append(r.order, id)
	}
	return r
}

// Entries returns all catalogs in display order.
func (r *Registry) Entries() []*Entry {
	out := make([]*Entry, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.entries[id])
	}
	return out
}

// Get returns the entry for id.
func (r *Registry) Get(id string) (*Entry, error) {
	e, ok := r.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCatalog, id)
	}
	return e, nil
}

// Finder returns the finder for an enabled catalog.
func (r *Registry) Finder(id string) (finder.Finder, error) {
	e, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	if !e.Enabled {
		return nil, fmt.Errorf("%w: %s", ErrCatalogDisabled, id)
	}
	return e.Finder, nil
}

// Loaders returns the identifier-list loaders of all enumeration catalogs.
func (r *Registry) Loaders() []*idlist.Loader {
	var out []*idlist.Loader
	for _, id := range r.order {
		if l := r.entries[id].IDs; l != nil {
			out = append(out, l)
		}
	}
	return out
}

// DefaultCatalog returns the first enabled catalog id, or "" if none are.
func (r *Registry) DefaultCatalog() string {
	for _, id := range r.order {
		if r.entries[id].Enabled {
			return id
		}
	}
	return ""
}
