// file: internal/catalog/errors.go
// version: 1.0.0
// guid: 0a7d3e5c-1b84-4f92-a6c3-d8e2f1b04c67

package catalog

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrTransport marks network failures and non-2xx responses.
	ErrTransport = errors.New("catalog transport failure")
	// ErrParse marks bodies that do not match the expected shape.
	ErrParse = errors.New("catalog response parse failure")
	// ErrUnusable marks candidates that cannot be normalized into a displayable artwork.
	ErrUnusable = errors.New("catalog candidate unusable")
)

// TransportError carries the request URL and, for HTTP errors, the status code.
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("GET %s returned status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("GET %s failed: %v", e.URL, e.Err)
}

// Unwrap exposes both ErrTransport and the underlying cause.
func (e *TransportError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrTransport}
	}
	return []error{ErrTransport, e.Err}
}

// IsNotFound reports whether err is a 404 from the catalog.
func IsNotFound(err error) bool {
	var te *TransportError
	return errors.As(err, &te) && te.StatusCode == http.StatusNotFound
}

func parseError(catalog string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrParse, catalog, err)
}

func unusable(catalog, id, reason string) error {
	return fmt.Errorf("%w: %s %s: %s", ErrUnusable, catalog, id, reason)
}
