// file: internal/catalog/cma.go
// version: 1.0.0
// guid: f47b0e93-2a1c-4d6e-8b5f-9e3d7c0a1b28

package catalog

import (
	"encoding/json"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/jdfalk/art-roulette/internal/models"
)

const (
	// DefaultCMABaseURL is the Cleveland Museum of Art Open Access API root.
	DefaultCMABaseURL = "https://openaccess-api.clevelandart.org/api"
	// DefaultCMAMaxOffset bounds the random skip.
	DefaultCMAMaxOffset = 10000
)

const cmaFields = "id,title,creation_date,url,share_license_status,department,creditline,creators,images"

// CMAImage is one rendition in a CMA images block.
type CMAImage struct {
	URL string `json:"url"`
}

// CMAArtwork is a single record from the CMA artworks endpoint.
type CMAArtwork struct {
	ID                 int    `json:"id"`
	Title              string `json:"title"`
	CreationDate       string `json:"creation_date"`
	URL                string `json:"url"`
	ShareLicenseStatus string `json:"share_license_status"`
	Department         string `json:"department"`
	CreditLine         string `json:"creditline"`
	Creators           []struct {
		Description string `json:"description"`
	} `json:"creators"`
	Images *struct {
		Web   *CMAImage `json:"web"`
		Print *CMAImage `json:"print"`
		Full  *CMAImage `json:"full"`
	} `json:"images"`
}

type cmaResponse struct {
	Data []CMAArtwork `json:"data"`
}

// CMAAdapter samples the Cleveland Museum of Art open access endpoint.
type CMAAdapter struct {
	baseURL   string
	MaxOffset int
}

// NewCMAAdapter creates an adapter honoring CMA_BASE_URL.
func NewCMAAdapter() *CMAAdapter {
	baseURL := os.Getenv("CMA_BASE_URL")
	if baseURL == "" {
		baseURL = DefaultCMABaseURL
	}
	return NewCMAAdapterWithBaseURL(baseURL)
}

// NewCMAAdapterWithBaseURL creates an adapter with a custom base URL.
func NewCMAAdapterWithBaseURL(baseURL string) *CMAAdapter {
	return &CMAAdapter{
		baseURL:   strings.TrimRight(baseURL, "/"),
		MaxOffset: DefaultCMAMaxOffset,
	}
}

func (a *CMAAdapter) Info() Info {
	return Info{ID: CMAID, Name: "Cleveland Museum of Art", Shape: ShapeBatch, BaseURL: a.baseURL}
}

func (a *CMAAdapter) BuildQueryURL(batchSize int, rnd RandSource) (string, models.QueryWindow) {
	window := models.QueryWindow{Offset: randomOffset(rnd, a.MaxOffset), Size: batchSize}

	params := url.Values{}
	params.Set("cc0", "1")
	params.Set("has_image", "1")
	params.Set("limit", strconv.Itoa(window.Size))
	params.Set("skip", strconv.Itoa(window.Offset))
	params.Set("fields", cmaFields)

	return a.baseURL + "/artworks/?" + params.Encode(), window
}

func (a *CMAAdapter) ParseResponse(body []byte) ([]CMAArtwork, error) {
	var resp cmaResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, parseError(CMAID, err)
	}
	if resp.Data == nil {
		return []CMAArtwork{}, nil
	}
	return resp.Data, nil
}

func (a *CMAAdapter) FilterUsable(candidates []CMAArtwork) []CMAArtwork {
	usable := make([]CMAArtwork, 0, len(candidates))
	for _, c := range candidates {
		if cmaUsable(c) {
			usable = append(usable, c)
		}
	}
	return usable
}

func (a *CMAAdapter) Normalize(c CMAArtwork) (models.Artwork, error) {
	id := strconv.Itoa(c.ID)
	if !cmaUsable(c) {
		return models.Artwork{}, unusable(CMAID, id, "not CC0 or no image")
	}

	art := models.Artwork{
		ID:          id,
		Catalog:     CMAID,
		Title:       models.TitleOrPlaceholder(c.Title),
		DateDisplay: strings.TrimSpace(c.CreationDate),
		ImageURL:    cmaImage(c),
		SourceURL:   c.URL,
		Department:  c.Department,
		CreditLine:  c.CreditLine,
	}
	artist := ""
	if len(c.Creators) > 0 {
		artist = c.Creators[0].Description
	}
	art.Artist = models.ArtistOrPlaceholder(artist)
	return art, nil
}

// cmaUsable accepts CC0 records with a resolvable image. An absent license
// field is accepted because the query already restricts to cc0.
func cmaUsable(c CMAArtwork) bool {
	if c.ShareLicenseStatus != "" && !strings.EqualFold(c.ShareLicenseStatus, "CC0") {
		return false
	}
	return cmaImage(c) != ""
}

// cmaImage falls back web -> print -> full.
func cmaImage(c CMAArtwork) string {
	if c.Images == nil {
		return ""
	}
	for _, img := range []*CMAImage{c.Images.Web, c.Images.Print, c.Images.Full} {
		if img != nil && models.IsAbsoluteURL(img.URL) {
			return img.URL
		}
	}
	return ""
}
