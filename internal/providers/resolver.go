package providers

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// defaultResolveTimeout bounds a single link check.
const defaultResolveTimeout = 4 * time.Second

// HTTPLinkResolver checks link validity with a HEAD request. Redirects
// are followed; a 2xx status means valid. Any failure — network error,
// timeout, non-2xx — is reported as invalid, never as an error.
type HTTPLinkResolver struct {
	client  *http.Client
	timeout time.Duration
}

// NewHTTPLinkResolver creates a resolver with the given per-request
// timeout (zero means the default).
func NewHTTPLinkResolver(timeout time.Duration) *HTTPLinkResolver {
	if timeout <= 0 {
		timeout = defaultResolveTimeout
	}
	return &HTTPLinkResolver{
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
	}
}

// Resolve reports whether the URL resolves with a 2xx status.
func (r *HTTPLinkResolver) Resolve(ctx context.Context, url string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false
	}

	resp, err := r.client.Do(req)
	if err != nil {
		slog.Debug("link resolution failed", "url", url, "error", err)
		return false
	}
	defer resp.Body.Close() //nolint:errcheck

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
