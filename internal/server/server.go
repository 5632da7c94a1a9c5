// Package server exposes the ebdgraph pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz                     liveness and version
//	GET  /metrics                     Prometheus metrics (when a gatherer is set)
//	POST /v1/graph                    table JSON → graph JSON
//	POST /v1/render/{language}        table JSON → source or image (?format=, ?fallback=true)
//
// Errors are returned as JSON {"code", "message"}. Every response carries an
// X-Request-ID header.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/ebdgraph/pkg/buildinfo"
	errs "github.com/matzehuels/ebdgraph/pkg/errors"
	"github.com/matzehuels/ebdgraph/pkg/pipeline"
	"github.com/matzehuels/ebdgraph/pkg/table"
)

// MaxBodySize limits request bodies.
const MaxBodySize = 4 << 20

// ShutdownTimeout bounds graceful shutdown in [Server.ListenAndServe].
const ShutdownTimeout = 10 * time.Second

// Config configures a Server.
type Config struct {
	// Runner executes the pipeline. Required.
	Runner *pipeline.Runner

	// Options are the base options for every request. The route overrides
	// languages and formats.
	Options pipeline.Options

	// Gatherer backs /metrics. Nil disables the route.
	Gatherer prometheus.Gatherer

	// Logger receives one line per request. Nil means log.Default().
	Logger *log.Logger
}

// Server is the HTTP front end of a pipeline Runner.
type Server struct {
	runner   *pipeline.Runner
	opts     pipeline.Options
	gatherer prometheus.Gatherer
	logger   *log.Logger
}

// New creates a Server from cfg.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		runner:   cfg.Runner,
		opts:     cfg.Options,
		gatherer: cfg.Gatherer,
		logger:   logger,
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	r.Route("/v1", func(r chi.Router) {
		r.Post("/graph", s.graph)
		r.Post("/render/{language}", s.render)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) graph(w http.ResponseWriter, r *http.Request) {
	t, err := readTable(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, cached, err := s.runner.GraphJSON(r.Context(), t, s.options())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", cacheHeader(cached))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request) {
	language := chi.URLParam(r, "language")
	if err := pipeline.ValidateLanguage(language); err != nil {
		s.writeError(w, r, err)
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatSource
	}
	if format == pipeline.FormatJSON {
		s.writeError(w, r, errs.New(errs.ErrCodeInvalidFormat, "use /v1/graph for graph JSON"))
		return
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, r, err)
		return
	}

	t, err := readTable(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	opts := s.options()
	opts.Languages = []string{language}
	opts.Formats = []string{format}
	if r.URL.Query().Get("fallback") == "true" {
		opts.FallbackToDOT = true
	}
	res, err := s.runner.Execute(r.Context(), t, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	served := language
	if len(res.Fallbacks) > 0 {
		served = res.Fallbacks[0].To
		w.Header().Set("X-Fallback", served)
	}
	for _, a := range res.Artifacts {
		if a.Language != served || a.Format != format {
			continue
		}
		w.Header().Set("Content-Type", contentType(format))
		w.Header().Set("X-Cache", cacheHeader(a.Cached))
		w.WriteHeader(http.StatusOK)
		w.Write(a.Data)
		return
	}
	s.writeError(w, r, errs.New(errs.ErrCodeInternal, "no %s %s artifact produced", served, format))
}

func (s *Server) options() pipeline.Options {
	opts := s.opts
	opts.Languages = slices.Clone(s.opts.Languages)
	opts.Formats = slices.Clone(s.opts.Formats)
	opts.MultiOutcomeCodes = slices.Clone(s.opts.MultiOutcomeCodes)
	return opts
}

func readTable(w http.ResponseWriter, r *http.Request) (*table.Table, error) {
	return table.ReadJSON(http.MaxBytesReader(w, r.Body, MaxBodySize))
}

func contentType(format string) string {
	switch format {
	case pipeline.FormatSVG:
		return "image/svg+xml"
	case pipeline.FormatPNG:
		return "image/png"
	case pipeline.FormatPDF:
		return "application/pdf"
	}
	return "text/plain; charset=utf-8"
}

func cacheHeader(cached bool) string {
	if cached {
		return "HIT"
	}
	return "MISS"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
