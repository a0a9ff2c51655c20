// file: internal/download/attachment.go
// version: 1.0.0
// guid: f1d4a8c3-6e29-4b75-8c0a-2e9b7d5f3416

package download

import (
	"context"
	"io"
	"net/http"
)

// Attachment is an image ready to be streamed to a browser.
type Attachment struct {
	Filename      string
	ContentType   string
	ContentLength int64
	Body          io.ReadCloser
}

// AttachmentStreamer proxies images so a browser saves them as downloads.
type AttachmentStreamer struct {
	fetcher
}

// NewAttachmentStreamer creates a streamer.
func NewAttachmentStreamer(client *http.Client, userAgent string, maxBytes int64) *AttachmentStreamer {
	return &AttachmentStreamer{fetcher: newFetcher(client, userAgent, maxBytes)}
}

// Open fetches imageURL. The caller must close Body.
func (a *AttachmentStreamer) Open(ctx context.Context, imageURL, suggestedName string) (*Attachment, error) {
	resp, ext, err := a.open(ctx, imageURL)
	if err != nil {
		return nil, err
	}
	return &Attachment{
		Filename:      Slug(suggestedName) + ext,
		ContentType:   resp.Header.Get("Content-Type"),
		ContentLength: resp.ContentLength,
		Body:          &limitedBody{r: io.LimitReader(resp.Body, a.maxBytes), c: resp.Body},
	}, nil
}

type limitedBody struct {
	r io.Reader
	c io.Closer
}

func (b *limitedBody) Read(p []byte) (int, error) { return b.r.Read(p) }
func (b *limitedBody) Close() error               { return b.c.Close() }
