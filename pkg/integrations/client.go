package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	errs "github.com/matzehuels/ebdgraph/pkg/errors"
	"github.com/matzehuels/ebdgraph/pkg/httputil"
	"github.com/matzehuels/ebdgraph/pkg/observability"
)

// Client provides shared HTTP functionality for external service clients.
// It handles retry logic, common request headers and request hooks.
type Client struct {
	http     *http.Client
	headers  map[string]string
	attempts int
	delay    time.Duration
}

// NewClient creates a Client with the given timeout and default headers.
// Headers are applied to all requests made through this client.
// Pass nil for headers if no default headers are needed.
func NewClient(timeout time.Duration, headers map[string]string) *Client {
	return &Client{
		http:     NewHTTPClient(timeout),
		headers:  headers,
		attempts: httputil.DefaultAttempts,
		delay:    httputil.DefaultDelay,
	}
}

// SetRetry changes how often transient failures are retried and the
// initial backoff. attempts <= 1 disables retries.
func (c *Client) SetRetry(attempts int, delay time.Duration) {
	c.attempts = max(attempts, 1)
	c.delay = delay
}

// SetHTTPClient replaces the underlying HTTP client, e.g. with
// httptest.Server.Client() in tests.
func (c *Client) SetHTTPClient(h *http.Client) { c.http = h }

// PostJSON encodes body as JSON, posts it to target and returns the
// response body.
func (c *Client) PostJSON(ctx context.Context, target string, body any) ([]byte, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "encode request body")
	}
	return c.Post(ctx, target, "application/json", data)
}

// Post sends body to target and returns the response body of a 2xx reply.
// A non-2xx reply is returned as *errors.StatusError without retrying.
func (c *Client) Post(ctx context.Context, target, contentType string, body []byte) ([]byte, error) {
	var out []byte
	err := httputil.Retry(ctx, c.attempts, c.delay, func() error {
		var err error
		out, err = c.do(ctx, http.MethodPost, target, contentType, body)
		return err
	})
	if err != nil {
		var re *httputil.RetryableError
		if errors.As(err, &re) {
			return nil, re.Err
		}
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, target, contentType string, body []byte) ([]byte, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid url %q", target)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(body))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "build request")
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, method, u.Host, u.Path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, method, u.Host, u.Path, err)
		return nil, classify(ctx, err, u.Host)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	hooks.OnResponse(ctx, method, u.Host, u.Path, resp.StatusCode, time.Since(start))
	if err != nil {
		return nil, classify(ctx, err, u.Host)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &errs.StatusError{StatusCode: resp.StatusCode, Body: string(data)}
	}
	return data, nil
}
