// file: internal/testutil/mock_catalogs.go
// version: 1.0.0
// guid: c7e2a9d4-5f18-4b3c-9a60-e1d8b4f27c05

package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

// MockCatalogServer creates an httptest.Server that mimics a museum API.
// The responses map keys are matched against the request URL using Contains;
// the longest matching key wins so "/objects/1" beats "/objects".
func MockCatalogServer(t *testing.T, responses map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		best := ""
		for pattern := range responses {
			if strings.Contains(r.URL.String(), pattern) && len(pattern) > len(best) {
				best = pattern
			}
		}
		if best == "" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(responses[best]))
	}))
	t.Cleanup(srv.Close)
	return srv
}

// CountingServer wraps handler and counts requests.
type CountingServer struct {
	*httptest.Server
	hits atomic.Int64
}

// NewCountingServer starts a server whose request count can be inspected.
func NewCountingServer(t *testing.T, handler http.HandlerFunc) *CountingServer {
	t.Helper()
	cs := &CountingServer{}
	cs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cs.hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(cs.Server.Close)
	return cs
}

// Hits returns the number of requests served so far.
func (cs *CountingServer) Hits() int {
	return int(cs.hits.Load())
}

// FixedRand always returns the same value, clamped to n-1.
type FixedRand struct {
	N int
}

func (f FixedRand) IntN(n int) int {
	if f.N >= n {
		return n - 1
	}
	return f.N
}

// MetObjectsResponse builds a GET /objects body for the given ids.
func MetObjectsResponse(ids ...int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return fmt.Sprintf(`{"total":%d,"objectIDs":[%s]}`, len(ids), strings.Join(parts, ","))
}

// MetObjectResponse builds a GET /objects/{id} body.
func MetObjectResponse(id int, publicDomain bool, image string) string {
	return fmt.Sprintf(`{
		"objectID": %d,
		"isPublicDomain": %t,
		"primaryImage": %q,
		"primaryImageSmall": "",
		"title": "Wheat Field with Cypresses",
		"artistDisplayName": "Vincent van Gogh",
		"objectDate": "1889",
		"objectURL": "https://www.metmuseum.org/art/collection/search/%d",
		"department": "European Paintings",
		"creditLine": "Purchase, The Annenberg Foundation Gift, 1993"
	}`, id, publicDomain, image, id)
}

// AICSearchResponse is a two-record search response, one usable.
const AICSearchResponse = `{
	"pagination": {"total": 2, "limit": 2, "offset": 0},
	"data": [
		{
			"id": 27992,
			"title": "A Sunday on La Grande Jatte, 1884",
			"artist_title": "Georges Seurat",
			"artist_display": "Georges Seurat\nFrench, 1859-1891",
			"date_display": "1884-86",
			"image_id": "2d484387-2509-5e8e-2c43-22f9981972eb",
			"is_public_domain": true,
			"department_title": "Painting and Sculpture of Europe",
			"credit_line": "Helen Birch Bartlett Memorial Collection"
		},
		{
			"id": 111628,
			"title": "Nighthawks",
			"artist_title": "Edward Hopper",
			"date_display": "1942",
			"image_id": "831a05de-d3f6-f4fa-a460-23008dd58dda",
			"is_public_domain": false
		}
	],
	"config": {"iiif_url": "https://www.artic.edu/iiif/2", "website_url": "http://www.artic.edu"}
}`

// AICEmptyResponse is a well-formed search response with no records.
const AICEmptyResponse = `{"pagination":{"total":0},"data":[],"config":{"iiif_url":"https://www.artic.edu/iiif/2"}}`

// CMAResponse is a two-record artworks response, one usable.
const CMAResponse = `{
	"info": {"total": 2},
	"data": [
		{
			"id": 135382,
			"title": "The Biglin Brothers Turning the Stake",
			"creation_date": "1873",
			"url": "https://clevelandart.org/art/1927.1984",
			"share_license_status": "CC0",
			"department": "American Painting and Sculpture",
			"creditline": "Hinman B. Hurlbut Collection",
			"creators": [{"description": "Thomas Eakins (American, 1844-1916)"}],
			"images": {
				"web": {"url": "https://openaccess-cdn.clevelandart.org/1927.1984/1927.1984_web.jpg"},
				"print": {"url": "https://openaccess-cdn.clevelandart.org/1927.1984/1927.1984_print.jpg"}
			}
		},
		{
			"id": 99,
			"title": "Copyrighted",
			"share_license_status": "Copyrighted",
			"images": {"web": {"url": "https://openaccess-cdn.clevelandart.org/x/x_web.jpg"}}
		}
	]
}`

// CMAEmptyResponse is a well-formed artworks response with no records.
const CMAEmptyResponse = `{"info":{"total":0},"data":[]}`
