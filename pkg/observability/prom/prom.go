// Package prom implements the observability hooks with Prometheus collectors.
//
// Register the hooks once at startup and expose the registry, e.g. with
// promhttp:
//
//	reg := prometheus.NewRegistry()
//	hooks, err := prom.New(reg)
//	if err != nil { ... }
//	hooks.Install()
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
package prom

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	errs "github.com/matzehuels/ebdgraph/pkg/errors"
	"github.com/matzehuels/ebdgraph/pkg/observability"
)

const namespace = "ebdgraph"

// Hooks records pipeline, cache and HTTP events as Prometheus metrics.
type Hooks struct {
	builds      *prometheus.CounterVec
	buildTime   prometheus.Histogram
	graphNodes  prometheus.Histogram
	renders     *prometheus.CounterVec
	renderTime  *prometheus.HistogramVec
	converts    *prometheus.CounterVec
	convertTime *prometheus.HistogramVec
	fallbacks   *prometheus.CounterVec
	cacheOps    *prometheus.CounterVec
	cacheBytes  prometheus.Counter
	requests    *prometheus.CounterVec
	requestTime *prometheus.HistogramVec
	httpErrors  *prometheus.CounterVec
}

var (
	_ observability.PipelineHooks = (*Hooks)(nil)
	_ observability.CacheHooks    = (*Hooks)(nil)
	_ observability.HTTPHooks     = (*Hooks)(nil)
)

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Hooks, error) {
	h := &Hooks{
		builds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "builds_total",
			Help: "Table to graph conversions by result code.",
		}, []string{"result"}),
		buildTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "build_duration_seconds",
			Help:    "Duration of table to graph conversions.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		graphNodes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "graph_nodes",
			Help:    "Number of nodes of successfully built graphs.",
			Buckets: prometheus.ExponentialBuckets(4, 2, 8),
		}),
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "renders_total",
			Help: "Diagram source generations by language and result code.",
		}, []string{"language", "result"}),
		renderTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "render_duration_seconds",
			Help:    "Duration of diagram source generation.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"language"}),
		converts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "converts_total",
			Help: "Image conversions by language, format and result code.",
		}, []string{"language", "format", "result"}),
		convertTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "convert_duration_seconds",
			Help:    "Duration of image conversions.",
			Buckets: prometheus.DefBuckets,
		}, []string{"language", "format"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "fallbacks_total",
			Help: "Renders that fell back to another language.",
		}, []string{"from", "to"}),
		cacheOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "cache_operations_total",
			Help: "Cache lookups and writes by key type.",
		}, []string{"type", "op"}),
		cacheBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "cache_written_bytes_total",
			Help: "Bytes written to the cache.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "http_client_requests_total",
			Help: "Outgoing HTTP requests by host and status code.",
		}, []string{"host", "status"}),
		requestTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_client_request_duration_seconds",
			Help:    "Duration of outgoing HTTP requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"host"}),
		httpErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "http_client_errors_total",
			Help: "Outgoing HTTP requests that failed without a response.",
		}, []string{"host"}),
	}

	for _, c := range []prometheus.Collector{
		h.builds, h.buildTime, h.graphNodes, h.renders, h.renderTime, h.converts,
		h.convertTime, h.fallbacks, h.cacheOps, h.cacheBytes, h.requests,
		h.requestTime, h.httpErrors,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// Install registers h as the global pipeline, cache and HTTP hooks.
func (h *Hooks) Install() {
	observability.SetPipelineHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
}

func result(err error) string {
	if err == nil {
		return "ok"
	}
	if code := errs.GetCode(err); code != "" {
		return string(code)
	}
	return "error"
}

func (h *Hooks) OnBuildStart(context.Context, string) {}

func (h *Hooks) OnBuildComplete(_ context.Context, _ string, nodes, _ int, d time.Duration, err error) {
	h.builds.WithLabelValues(result(err)).Inc()
	h.buildTime.Observe(d.Seconds())
	if err == nil {
		h.graphNodes.Observe(float64(nodes))
	}
}

func (h *Hooks) OnRenderStart(context.Context, string, string) {}

func (h *Hooks) OnRenderComplete(_ context.Context, _ string, language string, d time.Duration, err error) {
	h.renders.WithLabelValues(language, result(err)).Inc()
	h.renderTime.WithLabelValues(language).Observe(d.Seconds())
}

func (h *Hooks) OnConvertStart(context.Context, string, string) {}

func (h *Hooks) OnConvertComplete(_ context.Context, language, format string, _ int, d time.Duration, err error) {
	h.converts.WithLabelValues(language, format, result(err)).Inc()
	h.convertTime.WithLabelValues(language, format).Observe(d.Seconds())
}

func (h *Hooks) OnFallback(_ context.Context, _ string, from, to string) {
	h.fallbacks.WithLabelValues(from, to).Inc()
}

func (h *Hooks) OnCacheHit(_ context.Context, keyType string) {
	h.cacheOps.WithLabelValues(keyType, "hit").Inc()
}

func (h *Hooks) OnCacheMiss(_ context.Context, keyType string) {
	h.cacheOps.WithLabelValues(keyType, "miss").Inc()
}

func (h *Hooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.cacheOps.WithLabelValues(keyType, "set").Inc()
	h.cacheBytes.Add(float64(size))
}

func (h *Hooks) OnRequest(context.Context, string, string, string) {}

func (h *Hooks) OnResponse(_ context.Context, _, host, _ string, status int, d time.Duration) {
	h.requests.WithLabelValues(host, statusLabel(status)).Inc()
	h.requestTime.WithLabelValues(host).Observe(d.Seconds())
}

func (h *Hooks) OnError(_ context.Context, _, host, _ string, _ error) {
	h.httpErrors.WithLabelValues(host).Inc()
}

func statusLabel(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
