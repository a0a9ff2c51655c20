// file: internal/finder/errors.go
// version: 1.0.0
// guid: 4d7a0e2c-9f31-4b85-a6d2-1c8e5b3f7094

package finder

import (
	"context"
	"errors"
	"fmt"
)

// NotFoundMessage is the single message shown for any failed find.
const NotFoundMessage = "Couldn't find an image. Try again."

// ErrNotFound matches any *NotFoundError.
var ErrNotFound = errors.New("no usable artwork found")

// NotFoundError reports an exhausted attempt budget. It is an expected
// outcome of sparse random sampling, not a fault.
type NotFoundError struct {
	Catalog  string
	Attempts int
	// LastErr is the last per-attempt failure, if any, kept for logs.
	LastErr error
}

func (e *NotFoundError) Error() string {
	if e.LastErr != nil {
		return fmt.Sprintf("%s: no usable artwork after %d attempts (last error: %v)", e.Catalog, e.Attempts, e.LastErr)
	}
	return fmt.Sprintf("%s: no usable artwork after %d attempts", e.Catalog, e.Attempts)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// IsCancelled reports whether err came from a cancelled or superseded find.
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled)
}

// UserMessage maps a find error to what the user sees. Every cause collapses
// to NotFoundMessage; cancellation yields "" because nothing should be shown.
func UserMessage(err error) string {
	if err == nil || IsCancelled(err) {
		return ""
	}
	return NotFoundMessage
}
