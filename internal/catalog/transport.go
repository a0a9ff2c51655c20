// file: internal/catalog/transport.go
// version: 1.0.0
// guid: 6e1c9b47-3a2d-4d85-9f70-2b5e8c13a4d6

package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// maxBodyBytes bounds a single catalog response; the Met identifier list is the largest.
const maxBodyBytes = 32 * 1024 * 1024

// Transport issues GET requests against a catalog API.
type Transport interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// TransportOptions configures an HTTPTransport.
type TransportOptions struct {
	Timeout           time.Duration
	UserAgent         string
	RequestsPerSecond float64
	Burst             int
}

// HTTPTransport is the net/http implementation of Transport with an optional
// outbound token bucket so one catalog is never hammered.
type HTTPTransport struct {
	httpClient *http.Client
	userAgent  string
	limiter    *rate.Limiter
}

// NewHTTPTransport creates a transport with the given options.
func NewHTTPTransport(opts TransportOptions) *HTTPTransport {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	t := &HTTPTransport{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		userAgent: opts.UserAgent,
	}
	if opts.RequestsPerSecond > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		t.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}
	return t
}

// Get fetches url and returns the body of a 2xx response.
func (t *HTTPTransport) Get(ctx context.Context, url string) ([]byte, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, &TransportError{URL: url, Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))
		return nil, &TransportError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &TransportError{URL: url, Err: fmt.Errorf("failed to read response: %w", err)}
	}
	return body, nil
}
