package integrations

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	errs "github.com/matzehuels/ebdgraph/pkg/errors"
	"github.com/matzehuels/ebdgraph/pkg/httputil"
)

const (
	// DefaultTimeout bounds a single request including reading the body.
	DefaultTimeout = 30 * time.Second

	// maxResponseSize caps how much of a response body is read.
	maxResponseSize = 64 << 20
)

// NewHTTPClient creates an HTTP client with the given timeout.
// A non-positive timeout selects [DefaultTimeout].
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// NormalizeBaseURL trims whitespace and trailing slashes from a service URL.
func NormalizeBaseURL(raw string) string {
	return strings.TrimRight(strings.TrimSpace(raw), "/")
}

// classify turns a transport failure into a retryable coded error.
func classify(ctx context.Context, err error, target string) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		if ctx.Err() == nil || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return &httputil.RetryableError{Err: errs.Wrap(errs.ErrCodeTimeout, err, "request to %s timed out", target)}
		}
	}
	if errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrCodeNetwork, err, "request to %s cancelled", target)
	}
	return &httputil.RetryableError{Err: errs.Wrap(errs.ErrCodeNetwork, err, "request to %s failed", target)}
}
