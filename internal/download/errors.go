// file: internal/download/errors.go
// version: 2.0.0
// guid: c82e3b94-2ab9-469d-a2ed-16a28525b03d

package download

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyURL = errors.New("empty image URL")
	ErrNotImage = errors.New("response is not an image")
	ErrTooLarge = errors.New("image too large")
)

// StatusError is a non-200 answer from the image host.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("image download returned status %d for %s", e.StatusCode, e.URL)
}
