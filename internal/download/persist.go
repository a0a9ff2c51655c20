// file: internal/download/persist.go
// version: 2.0.0
// guid: 404055b4-a238-453f-80a7-f6303ab23ec1

// Package download saves artwork images. Native builds write into a pictures
// directory; the web API streams the same bytes back as a browser download.
package download

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"
)

// DefaultMaxImageBytes caps a single download.
const DefaultMaxImageBytes int64 = 64 * 1024 * 1024

// Persister stores the image at imageURL and returns where it went.
type Persister interface {
	Persist(ctx context.Context, imageURL, suggestedName string) (string, error)
}

// fetcher holds what FileSaver and AttachmentStreamer share.
type fetcher struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
}

func newFetcher(client *http.Client, userAgent string, maxBytes int64) fetcher {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageBytes
	}
	return fetcher{client: client, userAgent: userAgent, maxBytes: maxBytes}
}

// open issues the GET and checks that an image came back. The caller closes the body.
func (f fetcher) open(ctx context.Context, imageURL string) (*http.Response, string, error) {
	if strings.TrimSpace(imageURL) == "" {
		return nil, "", ErrEmptyURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("invalid image URL: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download image: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, "", &StatusError{URL: imageURL, StatusCode: resp.StatusCode}
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(strings.ToLower(contentType), "image/") {
		resp.Body.Close()
		return nil, "", fmt.Errorf("%w: %s", ErrNotImage, contentType)
	}
	if resp.ContentLength > f.maxBytes {
		resp.Body.Close()
		return nil, "", fmt.Errorf("%w: %d bytes", ErrTooLarge, resp.ContentLength)
	}
	return resp, extensionFromContentType(contentType), nil
}

// copyLimited copies at most max bytes and fails if the source has more.
func copyLimited(dst io.Writer, src io.Reader, max int64) (int64, error) {
	n, err := io.Copy(dst, io.LimitReader(src, max+1))
	if err != nil {
		return n, err
	}
	if n > max {
		return n, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, max)
	}
	return n, nil
}

func extensionFromContentType(ct string) string {
	ct = strings.ToLower(ct)
	switch {
	case strings.Contains(ct, "png"):
		return ".png"
	case strings.Contains(ct, "gif"):
		return ".gif"
	case strings.Contains(ct, "webp"):
		return ".webp"
	case strings.Contains(ct, "tiff"):
		return ".tif"
	default:
		return ".jpg"
	}
}

// ContentDisposition builds an attachment header for filename.
func ContentDisposition(filename string) string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": filename})
}
