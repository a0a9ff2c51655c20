// file: internal/server/handlers.go
// version: 1.0.0
// guid: 8b2e6f31-4a7d-4c95-b0e8-d3f1a7c6e524

package server

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jdfalk/art-roulette/internal/catalog"
	"github.com/jdfalk/art-roulette/internal/download"
	"github.com/jdfalk/art-roulette/internal/finder"
	"github.com/jdfalk/art-roulette/internal/idlist"
	"github.com/jdfalk/art-roulette/internal/models"
	"github.com/jdfalk/art-roulette/internal/roulette"
)

// CatalogView is one entry of GET /catalogs.
type CatalogView struct {
	catalog.Info
	Enabled bool           `json:"enabled"`
	IDList  *idlist.Status `json:"id_list,omitempty"`
}

// SaveRequest is the body of POST /save.
type SaveRequest struct {
	ImageURL string `json:"image_url" binding:"required"`
	Name     string `json:"name"`
}

// SaveResult is returned by a successful save.
type SaveResult struct {
	Path string `json:"path"`
}

func (s *Server) healthCheck(c *gin.Context) {
	enabled := 0
	for _, e := range s.registry.Load().Entries() {
		if e.Enabled {
			enabled++
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status":           "ok",
		"timestamp":        time.Now().Unix(),
		"version":          s.version,
		"database_type":    s.databaseType,
		"enabled_catalogs": enabled,
	})
}

func (s *Server) listCatalogs(c *gin.Context) {
	entries := s.registry.Load().Entries()
	views := make([]CatalogView, 0, len(entries))
	for _, e := range entries {
		v := CatalogView{Info: e.Info, Enabled: e.Enabled}
		if e.IDs != nil {
			if st, err := e.IDs.Status(); err == nil {
				v.IDList = &st
			}
		}
		views = append(views, v)
	}
	RespondWithList(c, views, len(views))
}

func (s *Server) randomArtwork(c *gin.Context) {
	id := c.Param("catalog")
	ol := newOperationLogger(c, "randomArtwork")
	ol.SetResourceID(id)
	ol.LogStart()

	f, err := s.registry.Load().Finder(id)
	switch {
	case errors.Is(err, roulette.ErrUnknownCatalog):
		RespondWithError(c, http.StatusNotFound, "unknown catalog: "+id, "UNKNOWN_CATALOG")
		return
	case errors.Is(err, roulette.ErrCatalogDisabled):
		RespondWithError(c, http.StatusNotFound, "catalog disabled: "+id, "CATALOG_DISABLED")
		return
	case err != nil:
		RespondWithError(c, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
		return
	}

	art, err := f.Find(c.Request.Context())
	if err != nil {
		if finder.IsCancelled(err) {
			ol.LogWarning("client went away")
			c.AbortWithStatus(StatusClientClosedRequest)
			return
		}
		ol.LogWarning(err.Error())
		RespondWithError(c, http.StatusNotFound, finder.UserMessage(err), "NOT_FOUND")
		return
	}

	ol.LogSuccess(http.StatusOK)
	RespondWithOK(c, art)
}

func (s *Server) downloadImage(c *gin.Context) {
	imageURL := c.Query("url")
	if !s.checkImageURL(c, imageURL) {
		return
	}
	ol := newOperationLogger(c, "downloadImage")
	ol.SetResourceID(imageURL)

	att, err := s.streamer.Open(c.Request.Context(), imageURL, nameOrDefault(c.Query("name")))
	if err != nil {
		ol.LogError(http.StatusBadGateway, err)
		RespondWithError(c, http.StatusBadGateway, "failed to download image", "DOWNLOAD_FAILED")
		return
	}
	defer att.Body.Close()

	ol.LogSuccess(http.StatusOK)
	c.DataFromReader(http.StatusOK, att.ContentLength, att.ContentType, att.Body, map[string]string{
		"Content-Disposition": download.ContentDisposition(att.Filename),
	})
}

func (s *Server) saveImage(c *gin.Context) {
	var req SaveRequest
	if HandleBindError(c, c.ShouldBindJSON(&req)) {
		return
	}
	if !s.checkImageURL(c, req.ImageURL) {
		return
	}
	ol := newOperationLogger(c, "saveImage")
	ol.SetResourceID(req.ImageURL)

	// A save already under way finishes even if the browser disconnects.
	path, err := s.persister.Persist(context.WithoutCancel(c.Request.Context()), req.ImageURL, nameOrDefault(req.Name))
	if err != nil {
		ol.LogError(http.StatusBadGateway, err)
		RespondWithError(c, http.StatusBadGateway, roulette.ErrSaveFailed.Error(), "SAVE_FAILED")
		return
	}

	ol.LogSuccess(http.StatusOK)
	RespondWithOK(c, SaveResult{Path: path})
}

// checkImageURL writes an error response and returns false unless raw is an
// absolute URL on an allowed image host.
func (s *Server) checkImageURL(c *gin.Context, raw string) bool {
	if !models.IsAbsoluteURL(raw) {
		RespondWithValidationError(c, "url", "absolute http(s) URL required")
		return false
	}
	if !HostAllowed(raw, s.allowedHosts) {
		RespondWithForbidden(c, "image host not allowed")
		return false
	}
	return true
}

// HostAllowed reports whether raw's host equals an allowed entry or is a
// subdomain of one. An empty list allows nothing.
func HostAllowed(raw string, allowed []string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, a := range allowed {
		a = strings.ToLower(strings.TrimSpace(a))
		if a == "" {
			continue
		}
		if host == a || strings.HasSuffix(host, "."+a) {
			return true
		}
	}
	return false
}

func nameOrDefault(name string) string {
	if strings.TrimSpace(name) == "" {
		return "artwork-" + strconv.FormatInt(time.Now().Unix(), 10)
	}
	return name
}
