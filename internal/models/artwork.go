// file: internal/models/artwork.go
// version: 1.0.0
// guid: 3f6c1a2e-8b4d-4e57-9a0c-71d2e5b8f934

package models

import (
	"fmt"
	"net/url"
	"strings"
)

// Placeholders substituted when a catalog record omits a display field.
const (
	UntitledPlaceholder      = "Untitled"
	UnknownArtistPlaceholder = "Unknown"
)

// Artwork is the catalog-independent shape every adapter normalizes into.
type Artwork struct {
	ID           string `json:"id"`
	Catalog      string `json:"catalog"`
	Title        string `json:"title"`
	Artist       string `json:"artist"`
	DateDisplay  string `json:"date_display"`
	ImageURL     string `json:"image_url"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	SourceURL    string `json:"source_url"`
	Department   string `json:"department,omitempty"`
	CreditLine   string `json:"credit_line,omitempty"`
}

// QueryWindow is the random offset/size slice requested in one round-trip.
type QueryWindow struct {
	Offset int `json:"offset"`
	Size   int `json:"size"`
}

func (w QueryWindow) String() string {
	return fmt.Sprintf("[%d, %d)", w.Offset, w.Offset+w.Size)
}

// TitleOrPlaceholder returns the trimmed title, or "Untitled" when blank.
func TitleOrPlaceholder(title string) string {
	if t := strings.TrimSpace(title); t != "" {
		return t
	}
	return UntitledPlaceholder
}

// ArtistOrPlaceholder returns the trimmed artist, or "Unknown" when blank.
func ArtistOrPlaceholder(artist string) string {
	if a := strings.TrimSpace(artist); a != "" {
		return a
	}
	return UnknownArtistPlaceholder
}

// IsAbsoluteURL reports whether raw parses as an absolute http(s) URL with a host.
func IsAbsoluteURL(raw string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Validate checks the invariants every returned artwork must satisfy.
func (a *Artwork) Validate() error {
	if a == nil {
		return fmt.Errorf("artwork is nil")
	}
	if !IsAbsoluteURL(a.ImageURL) {
		return fmt.Errorf("artwork %s/%s has invalid image URL %q", a.Catalog, a.ID, a.ImageURL)
	}
	if a.Title == "" || a.Artist == "" {
		return fmt.Errorf("artwork %s/%s is missing display fields", a.Catalog, a.ID)
	}
	return nil
}

// SuggestedName is the base filename offered when saving the artwork image.
func (a *Artwork) SuggestedName() string {
	if a.Artist == "" || a.Artist == UnknownArtistPlaceholder {
		return a.Title
	}
	return a.Title + " - " + a.Artist
}
