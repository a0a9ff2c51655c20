// file: internal/metrics/metrics.go
// version: 2.0.0
// guid: 9f8e7d6c-5b4a-3210-9fed-cba876543210

package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Find outcomes.
const (
	OutcomeFound     = "found"
	OutcomeNotFound  = "not_found"
	OutcomeCancelled = "cancelled"
)

// Attempt results.
const (
	AttemptHit       = "hit"
	AttemptEmpty     = "empty"
	AttemptTransport = "transport_error"
	AttemptParse     = "parse_error"
	AttemptUnusable  = "unusable"
)

var (
	registerOnce sync.Once

	findsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "art_roulette",
		Name:      "finds_total",
		Help:      "Total number of random artwork finds by catalog and outcome",
	}, []string{"catalog", "outcome"})
	findAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "art_roulette",
		Name:      "find_attempts_total",
		Help:      "Total number of catalog round-trips made while finding, by result",
	}, []string{"catalog", "result"})
	findDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "art_roulette",
		Name:      "find_duration_seconds",
		Help:      "Histogram of find durations in seconds by catalog",
		Buckets:   prometheus.ExponentialBuckets(0.05, 1.8, 12), // ~50ms up to about a minute
	}, []string{"catalog"})
	idListLoads = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "art_roulette",
		Name:      "id_list_loads_total",
		Help:      "Identifier list loads by catalog and source (memory, store, fetch)",
	}, []string{"catalog", "source"})
	idListSize = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "art_roulette",
		Name:      "id_list_size",
		Help:      "Number of identifiers in the cached list by catalog",
	}, []string{"catalog"})
	savesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "art_roulette",
		Name:      "saves_total",
		Help:      "Image save attempts by outcome",
	}, []string{"outcome"})
)

// Register initializes metrics with the global Prometheus registry (idempotent)
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(findsTotal, findAttempts, findDuration, idListLoads, idListSize, savesTotal)
	})
}

// Find lifecycle helpers
func IncFind(catalog, outcome string)   { findsTotal.WithLabelValues(catalog, outcome).Inc() }
func IncAttempt(catalog, result string) { findAttempts.WithLabelValues(catalog, result).Inc() }
func ObserveFindDuration(catalog string, d time.Duration) {
	findDuration.WithLabelValues(catalog).Observe(d.Seconds())
}

// Identifier list
func IncIDListLoad(catalog, source string) { idListLoads.WithLabelValues(catalog, source).Inc() }
func SetIDListSize(catalog string, n int)  { idListSize.WithLabelValues(catalog).Set(float64(n)) }

// Save outcomes.
const (
	SaveOK     = "ok"
	SaveFailed = "failed"
)

// Saves
func IncSave(outcome string) { savesTotal.WithLabelValues(outcome).Inc() }
