// file: internal/catalog/met.go
// version: 1.0.0
// guid: 2d8f4a61-c5b3-4e0a-97d1-3f6b2e9c8a05

package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jdfalk/art-roulette/internal/models"
)

// DefaultMetBaseURL is the Met Collection API root.
const DefaultMetBaseURL = "https://collectionapi.metmuseum.org/public/collection/v1"

// MetObject is a single record from GET /objects/{id}.
type MetObject struct {
	ObjectID          int    `json:"objectID"`
	IsPublicDomain    bool   `json:"isPublicDomain"`
	PrimaryImage      string `json:"primaryImage"`
	PrimaryImageSmall string `json:"primaryImageSmall"`
	Title             string `json:"title"`
	ArtistDisplayName string `json:"artistDisplayName"`
	ObjectDate        string `json:"objectDate"`
	ObjectURL         string `json:"objectURL"`
	Department        string `json:"department"`
	CreditLine        string `json:"creditLine"`
}

type metObjectsResponse struct {
	Total     int   `json:"total"`
	ObjectIDs []int `json:"objectIDs"`
}

// MetAdapter samples the Met by enumerating its identifier list. The Met
// search endpoint cannot filter by license, so every record is probed.
type MetAdapter struct {
	baseURL string
}

// NewMetAdapter creates an adapter honoring MET_BASE_URL.
func NewMetAdapter() *MetAdapter {
	baseURL := os.Getenv("MET_BASE_URL")
	if baseURL == "" {
		baseURL = DefaultMetBaseURL
	}
	return NewMetAdapterWithBaseURL(baseURL)
}

// NewMetAdapterWithBaseURL creates an adapter with a custom base URL.
func NewMetAdapterWithBaseURL(baseURL string) *MetAdapter {
	return &MetAdapter{baseURL: strings.TrimRight(baseURL, "/")}
}

func (a *MetAdapter) Info() Info {
	return Info{ID: MetID, Name: "The Metropolitan Museum of Art", Shape: ShapeEnumeration, BaseURL: a.baseURL}
}

func (a *MetAdapter) IdentifiersURL() string {
	return a.baseURL + "/objects"
}

func (a *MetAdapter) ParseIdentifiers(body []byte) ([]int, error) {
	var resp metObjectsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, parseError(MetID, err)
	}
	if resp.ObjectIDs == nil {
		return []int{}, nil
	}
	return resp.ObjectIDs, nil
}

func (a *MetAdapter) ObjectURL(id int) string {
	return fmt.Sprintf("%s/objects/%d", a.baseURL, id)
}

func (a *MetAdapter) ParseObject(body []byte) (MetObject, error) {
	var obj MetObject
	if err := json.Unmarshal(body, &obj); err != nil {
		return MetObject{}, parseError(MetID, err)
	}
	if obj.ObjectID == 0 {
		return MetObject{}, parseError(MetID, fmt.Errorf("record has no objectID"))
	}
	return obj, nil
}

// IsUsable requires the public-domain flag and at least one absolute image URL.
func (a *MetAdapter) IsUsable(obj MetObject) bool {
	return obj.IsPublicDomain && metImage(obj) != ""
}

func (a *MetAdapter) Normalize(obj MetObject) (models.Artwork, error) {
	id := strconv.Itoa(obj.ObjectID)
	image := metImage(obj)
	if image == "" {
		return models.Artwork{}, unusable(MetID, id, "no image")
	}

	art := models.Artwork{
		ID:          id,
		Catalog:     MetID,
		Title:       models.TitleOrPlaceholder(obj.Title),
		Artist:      models.ArtistOrPlaceholder(obj.ArtistDisplayName),
		DateDisplay: strings.TrimSpace(obj.ObjectDate),
		ImageURL:    image,
		SourceURL:   obj.ObjectURL,
		Department:  obj.Department,
		CreditLine:  obj.CreditLine,
	}
	if models.IsAbsoluteURL(obj.PrimaryImageSmall) && obj.PrimaryImageSmall != image {
		art.ThumbnailURL = obj.PrimaryImageSmall
	}
	return art, nil
}

func metImage(obj MetObject) string {
	if models.IsAbsoluteURL(obj.PrimaryImage) {
		return obj.PrimaryImage
	}
	if models.IsAbsoluteURL(obj.PrimaryImageSmall) {
		return obj.PrimaryImageSmall
	}
	return ""
}
