// file: internal/catalog/source.go
// version: 1.0.0
// guid: 5b2e8c14-7d9a-4a3f-b0e6-c41f82d7a953

package catalog

import "github.com/jdfalk/art-roulette/internal/models"

// Catalog identifiers.
const (
	MetID = "met"
	AICID = "aic"
	CMAID = "cma"
)

// Shape describes how a catalog is sampled.
type Shape string

const (
	// ShapeBatch catalogs pre-filter server side and return a batch per query.
	ShapeBatch Shape = "batch"
	// ShapeEnumeration catalogs expose only an identifier list that must be probed.
	ShapeEnumeration Shape = "enumeration"
)

// Info describes a catalog for listings and logs.
type Info struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Shape   Shape  `json:"shape"`
	BaseURL string `json:"base_url"`
}

// RandSource is the subset of *math/rand/v2.Rand adapters draw from.
type RandSource interface {
	IntN(n int) int
}

// BatchAdapter is implemented by catalogs whose search endpoint filters by
// license and image availability, so one request yields a batch of candidates.
type BatchAdapter[C any] interface {
	Info() Info
	// BuildQueryURL draws a new random window of batchSize items.
	BuildQueryURL(batchSize int, rnd RandSource) (string, models.QueryWindow)
	// ParseResponse returns an empty slice for well-formed empty bodies.
	ParseResponse(body []byte) ([]C, error)
	FilterUsable(candidates []C) []C
	Normalize(candidate C) (models.Artwork, error)
}

// EnumerationAdapter is implemented by catalogs that publish a full identifier
// list and require each record to be fetched to check usability.
type EnumerationAdapter[C any] interface {
	Info() Info
	IdentifiersURL() string
	ParseIdentifiers(body []byte) ([]int, error)
	// ObjectURL and ParseObject together implement fetch-by-id.
	ObjectURL(id int) string
	ParseObject(body []byte) (C, error)
	IsUsable(candidate C) bool
	Normalize(candidate C) (models.Artwork, error)
}

// randomOffset draws uniformly from [0, bound).
func randomOffset(rnd RandSource, bound int) int {
	if bound <= 1 {
		return 0
	}
	return rnd.IntN(bound)
}
