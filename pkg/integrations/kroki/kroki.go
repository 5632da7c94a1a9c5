package kroki

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/matzehuels/ebdgraph/pkg/buildinfo"
	errs "github.com/matzehuels/ebdgraph/pkg/errors"
	"github.com/matzehuels/ebdgraph/pkg/integrations"
)

// DefaultURL is the public Kroki instance.
const DefaultURL = "https://kroki.io"

// DefaultTimeout bounds a single render request.
const DefaultTimeout = 30 * time.Second

// DiagramType names the source grammar as Kroki expects it.
type DiagramType string

const (
	PlantUML DiagramType = "plantuml"
	Graphviz DiagramType = "graphviz"
)

// Format is an output image format.
type Format string

const (
	SVG Format = "svg"
	PNG Format = "png"
	PDF Format = "pdf"
)

// ParseFormat returns the Format named s (case-insensitive).
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case SVG, PNG, PDF:
		return f, nil
	}
	return "", errs.New(errs.ErrCodeInvalidFormat, "unsupported output format %q (want svg, png or pdf)", s)
}

// Option configures a Client.
type Option func(*Client)

// WithURL sets the service base URL.
func WithURL(u string) Option {
	return func(c *Client) { c.url = integrations.NormalizeBaseURL(u) }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithRetry sets how many attempts transient failures get and the initial
// backoff between them.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(c *Client) { c.attempts, c.delay = attempts, delay }
}

// Client renders diagram sources through a Kroki instance.
type Client struct {
	url      string
	timeout  time.Duration
	attempts int
	delay    time.Duration
	http     *integrations.Client
}

// NewClient creates a client for the public instance unless [WithURL] is given.
func NewClient(opts ...Option) *Client {
	c := &Client{url: DefaultURL, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(c)
	}
	c.http = integrations.NewClient(c.timeout, map[string]string{
		"User-Agent": buildinfo.UserAgent(),
	})
	if c.attempts > 0 {
		c.http.SetRetry(c.attempts, c.delay)
	}
	return c
}

// URL returns the configured service base URL.
func (c *Client) URL() string { return c.url }

type request struct {
	Source string      `json:"diagram_source"`
	Type   DiagramType `json:"diagram_type"`
	Format Format      `json:"output_format"`
}

// Render submits source and returns the rendered image.
func (c *Client) Render(ctx context.Context, source string, typ DiagramType, format Format) ([]byte, error) {
	if typ != PlantUML && typ != Graphviz {
		return nil, errs.New(errs.ErrCodeInvalidLanguage, "unsupported diagram type %q", typ)
	}
	if _, err := ParseFormat(string(format)); err != nil {
		return nil, err
	}

	body, err := c.http.PostJSON(ctx, c.url+"/", request{Source: source, Type: typ, Format: format})
	if err != nil {
		var se *errs.StatusError
		if errors.As(err, &se) {
			return nil, errs.Wrap(errs.ErrCodeRenderService, se, "kroki could not render %s as %s", typ, format)
		}
		return nil, err
	}
	return body, nil
}
