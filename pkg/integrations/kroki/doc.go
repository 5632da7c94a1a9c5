// Package kroki provides a client for the Kroki diagram rendering service.
//
// # Overview
//
// Kroki turns diagram source text into images. The client posts
//
//	{"diagram_source": "...", "diagram_type": "plantuml", "output_format": "svg"}
//
// to the service root and returns the image bytes:
//
//	c := kroki.NewClient(kroki.WithURL("http://localhost:8000"))
//	svg, err := c.Render(ctx, source, kroki.PlantUML, kroki.SVG)
//
// # Errors
//
// A non-2xx response is a RENDER_SERVICE error whose cause is an
// [errors.StatusError] carrying the status code and the response body
// (Kroki reports syntax errors in the body). Such errors are not retried.
// Network failures and timeouts are retried with backoff before they are
// reported as NETWORK_ERROR or TIMEOUT.
//
// [errors.StatusError]: github.com/matzehuels/ebdgraph/pkg/errors.StatusError
package kroki
