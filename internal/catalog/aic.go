// file: internal/catalog/aic.go
// version: 1.0.0
// guid: 8c3a1f29-6e4d-4b71-a5f8-0d9c2b7e6f13

package catalog

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/jdfalk/art-roulette/internal/models"
)

const (
	// DefaultAICBaseURL is the Art Institute of Chicago API root.
	DefaultAICBaseURL = "https://api.artic.edu/api/v1"
	// DefaultAICIIIFURL is used when a search response omits config.iiif_url.
	DefaultAICIIIFURL = "https://www.artic.edu/iiif/2"
	// DefaultAICMaxOffset keeps random windows well inside the fast part of the index.
	DefaultAICMaxOffset = 5000

	aicWebsite = "https://www.artic.edu/artworks"
)

var aicFields = []string{
	"id", "title", "artist_title", "artist_display", "date_display",
	"image_id", "is_public_domain", "department_title", "credit_line",
}

// AICArtwork is a single record from the AIC search endpoint.
type AICArtwork struct {
	ID              int    `json:"id"`
	Title           string `json:"title"`
	ArtistTitle     string `json:"artist_title"`
	ArtistDisplay   string `json:"artist_display"`
	DateDisplay     string `json:"date_display"`
	ImageID         string `json:"image_id"`
	IsPublicDomain  bool   `json:"is_public_domain"`
	DepartmentTitle string `json:"department_title"`
	CreditLine      string `json:"credit_line"`

	// IIIFURL is copied from the response config so Normalize can template image URLs.
	IIIFURL string `json:"-"`
}

type aicSearchResponse struct {
	Data   []AICArtwork `json:"data"`
	Config struct {
		IIIFURL string `json:"iiif_url"`
	} `json:"config"`
}

type aicQuery struct {
	Query  aicBoolQuery `json:"query"`
	Fields []string     `json:"fields"`
	Size   int          `json:"size"`
	From   int          `json:"from"`
}

type aicBoolQuery struct {
	Bool struct {
		Must []map[string]any `json:"must"`
	} `json:"bool"`
}

// AICAdapter samples the Art Institute of Chicago search endpoint.
type AICAdapter struct {
	baseURL   string
	MaxOffset int
}

// NewAICAdapter creates an adapter honoring AIC_BASE_URL.
func NewAICAdapter() *AICAdapter {
	baseURL := os.Getenv("AIC_BASE_URL")
	if baseURL == "" {
		baseURL = DefaultAICBaseURL
	}
	return NewAICAdapterWithBaseURL(baseURL)
}

// NewAICAdapterWithBaseURL creates an adapter with a custom base URL.
func NewAICAdapterWithBaseURL(baseURL string) *AICAdapter {
	return &AICAdapter{
		baseURL:   strings.TrimRight(baseURL, "/"),
		MaxOffset: DefaultAICMaxOffset,
	}
}

func (a *AICAdapter) Info() Info {
	return Info{ID: AICID, Name: "Art Institute of Chicago", Shape: ShapeBatch, BaseURL: a.baseURL}
}

func (a *AICAdapter) BuildQueryURL(batchSize int, rnd RandSource) (string, models.QueryWindow) {
	window := models.QueryWindow{Offset: randomOffset(rnd, a.MaxOffset), Size: batchSize}

	q := aicQuery{Fields: aicFields, Size: window.Size, From: window.Offset}
	q.Query.Bool.Must = []map[string]any{
		{"term": map[string]any{"is_public_domain": true}},
		{"exists": map[string]any{"field": "image_id"}},
	}
	params, _ := json.Marshal(q)

	return a.baseURL + "/artworks/search?params=" + url.QueryEscape(string(params)), window
}

func (a *AICAdapter) ParseResponse(body []byte) ([]AICArtwork, error) {
	var resp aicSearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, parseError(AICID, err)
	}
	iiif := strings.TrimRight(resp.Config.IIIFURL, "/")
	if iiif == "" {
		iiif = DefaultAICIIIFURL
	}
	out := make([]AICArtwork, 0, len(resp.Data))
	for _, art := range resp.Data {
		art.IIIFURL = iiif
		out = append(out, art)
	}
	return out, nil
}

func (a *AICAdapter) FilterUsable(candidates []AICArtwork) []AICArtwork {
	usable := make([]AICArtwork, 0, len(candidates))
	for _, c := range candidates {
		if aicUsable(c) {
			usable = append(usable, c)
		}
	}
	return usable
}

func (a *AICAdapter) Normalize(c AICArtwork) (models.Artwork, error) {
	id := strconv.Itoa(c.ID)
	if !aicUsable(c) {
		return models.Artwork{}, unusable(AICID, id, "not public domain or no image_id")
	}
	iiif := c.IIIFURL
	if iiif == "" {
		iiif = DefaultAICIIIFURL
	}
	image := aicImageURL(iiif, c.ImageID, 843)
	if !models.IsAbsoluteURL(image) {
		return models.Artwork{}, unusable(AICID, id, "invalid iiif url")
	}

	return models.Artwork{
		ID:           id,
		Catalog:      AICID,
		Title:        models.TitleOrPlaceholder(c.Title),
		Artist:       models.ArtistOrPlaceholder(aicArtist(c)),
		DateDisplay:  strings.TrimSpace(c.DateDisplay),
		ImageURL:     image,
		ThumbnailURL: aicImageURL(iiif, c.ImageID, 200),
		SourceURL:    fmt.Sprintf("%s/%d", aicWebsite, c.ID),
		Department:   c.DepartmentTitle,
		CreditLine:   c.CreditLine,
	}, nil
}

func aicUsable(c AICArtwork) bool {
	return c.IsPublicDomain && strings.TrimSpace(c.ImageID) != ""
}

func aicImageURL(iiif, imageID string, width int) string {
	return fmt.Sprintf("%s/%s/full/%d,/0/default.jpg", iiif, imageID, width)
}

// aicArtist prefers artist_title; artist_display carries nationality and dates on later lines.
func aicArtist(c AICArtwork) string {
	if c.ArtistTitle != "" {
		return c.ArtistTitle
	}
	first, _, _ := strings.Cut(c.ArtistDisplay, "\n")
	return first
}
