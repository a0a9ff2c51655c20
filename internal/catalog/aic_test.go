// file: internal/catalog/aic_test.go
// version: 1.0.0
// guid: 4a6d2f80-9b1e-4c53-a7d4-2e8f1c6b9a37

package catalog

import (
	"encoding/json"
	"errors"
	"math/rand/v2"
	"net/url"
	"strings"
	"testing"

	"github.com/jdfalk/art-roulette/internal/models"
	"github.com/jdfalk/art-roulette/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAICBuildQueryURL(t *testing.T) {
	a := NewAICAdapterWithBaseURL("https://api.artic.edu/api/v1/")

	raw, window := a.BuildQueryURL(20, testutil.FixedRand{N: 137})
	assert.Equal(t, models.QueryWindow{Offset: 137, Size: 20}, window)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/artworks/search", u.Path)

	var q struct {
		Query struct {
			Bool struct {
				Must []map[string]map[string]any `json:"must"`
			} `json:"bool"`
		} `json:"query"`
		Fields []string `json:"fields"`
		Size   int      `json:"size"`
		From   int      `json:"from"`
	}
	require.NoError(t, json.Unmarshal([]byte(u.Query().Get("params")), &q))
	assert.Equal(t, 20, q.Size)
	assert.Equal(t, 137, q.From)
	assert.Contains(t, q.Fields, "image_id")
	require.Len(t, q.Query.Bool.Must, 2)
	assert.Equal(t, true, q.Query.Bool.Must[0]["term"]["is_public_domain"])
	assert.Equal(t, "image_id", q.Query.Bool.Must[1]["exists"]["field"])
}

func TestAICBuildQueryURLStaysInBound(t *testing.T) {
	a := NewAICAdapterWithBaseURL("http://x")
	a.MaxOffset = 50
	rnd := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 500; i++ {
		_, w := a.BuildQueryURL(10, rnd)
		if w.Offset < 0 || w.Offset >= 50 {
			t.Fatalf("offset %d out of [0, 50)", w.Offset)
		}
	}
}

func TestAICParseResponse(t *testing.T) {
	a := NewAICAdapterWithBaseURL("http://x")

	items, err := a.ParseResponse([]byte(testutil.AICSearchResponse))
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "https://www.artic.edu/iiif/2", items[0].IIIFURL)

	items, err = a.ParseResponse([]byte(testutil.AICEmptyResponse))
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NotNil(t, items)

	_, err = a.ParseResponse([]byte(`{"data": {`))
	assert.True(t, errors.Is(err, ErrParse))
}

func TestAICFilterAndNormalize(t *testing.T) {
	a := NewAICAdapterWithBaseURL("http://x")
	items, err := a.ParseResponse([]byte(testutil.AICSearchResponse))
	require.NoError(t, err)

	usable := a.FilterUsable(items)
	require.Len(t, usable, 1)

	art, err := a.Normalize(usable[0])
	require.NoError(t, err)
	assert.Equal(t, "27992", art.ID)
	assert.Equal(t, "Georges Seurat", art.Artist)
	assert.Equal(t, "https://www.artic.edu/iiif/2/2d484387-2509-5e8e-2c43-22f9981972eb/full/843,/0/default.jpg", art.ImageURL)
	assert.Equal(t, "https://www.artic.edu/iiif/2/2d484387-2509-5e8e-2c43-22f9981972eb/full/200,/0/default.jpg", art.ThumbnailURL)
	assert.Equal(t, "https://www.artic.edu/artworks/27992", art.SourceURL)
	assert.NoError(t, art.Validate())
}

func TestAICNormalizePlaceholdersAndArtistDisplay(t *testing.T) {
	a := NewAICAdapterWithBaseURL("http://x")

	art, err := a.Normalize(AICArtwork{ID: 5, ImageID: "abc", IsPublicDomain: true, ArtistDisplay: "Katsushika Hokusai\nJapanese, 1760-1849"})
	require.NoError(t, err)
	assert.Equal(t, "Untitled", art.Title)
	assert.Equal(t, "Katsushika Hokusai", art.Artist)
	assert.True(t, strings.HasPrefix(art.ImageURL, DefaultAICIIIFURL))

	_, err = a.Normalize(AICArtwork{ID: 6, IsPublicDomain: true})
	assert.ErrorIs(t, err, ErrUnusable)
}
