// file: internal/download/factory.go
// version: 2.0.0
// guid: be6a33cc-3062-42b7-b395-1892d8829540

package download

import (
	"io"
	"net/http"

	"github.com/jdfalk/art-roulette/internal/config"
)

// NewPersisterFromConfig builds the native persister from application configuration.
func NewPersisterFromConfig(cfg *config.Config, progress io.Writer) Persister {
	return NewFileSaver(cfg.DownloadDir, FileSaverOptions{
		Client:    &http.Client{Timeout: cfg.HTTPTimeout},
		UserAgent: cfg.UserAgent,
		Progress:  progress,
	})
}

// NewStreamerFromConfig builds the web attachment streamer.
func NewStreamerFromConfig(cfg *config.Config) *AttachmentStreamer {
	return NewAttachmentStreamer(&http.Client{Timeout: cfg.HTTPTimeout}, cfg.UserAgent, 0)
}
