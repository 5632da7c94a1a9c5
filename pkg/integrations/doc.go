// Package integrations provides the HTTP plumbing for external services.
//
// # Overview
//
// The only external service is the text-to-image rendering service, which
// has its own subpackage:
//
//   - [kroki]: renders PlantUML and Graphviz sources to SVG, PNG or PDF
//
// # Shared Infrastructure
//
// [Client] wraps an [http.Client] with default headers, retries and
// observability hooks. Failures are classified as follows:
//
//   - connection errors become NETWORK_ERROR and are retried
//   - timeouts become TIMEOUT and are retried
//   - non-2xx responses are returned as [errors.StatusError] and are never
//     retried, since the service has already seen and rejected the input
//
// Every request reports to [observability.HTTP], so installing the
// Prometheus hooks is enough to get per-host request metrics.
//
// [kroki]: github.com/matzehuels/ebdgraph/pkg/integrations/kroki
// [errors.StatusError]: github.com/matzehuels/ebdgraph/pkg/errors.StatusError
// [observability.HTTP]: github.com/matzehuels/ebdgraph/pkg/observability.HTTP
package integrations
