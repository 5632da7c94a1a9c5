package pipeline

import (
	"context"
	"encoding/json"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/ebdgraph/pkg/cache"
	errs "github.com/matzehuels/ebdgraph/pkg/errors"
	"github.com/matzehuels/ebdgraph/pkg/graph"
	"github.com/matzehuels/ebdgraph/pkg/observability"
	"github.com/matzehuels/ebdgraph/pkg/table"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// Images creates the image renderer for a run. Nil means
	// [NewImageRenderer].
	Images func(Options) ImageRenderer
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// If logger is nil, the default logger is used.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete build → render → convert pipeline with caching.
func (r *Runner) Execute(ctx context.Context, t *table.Table, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	tableHash, err := hashTable(t)
	if err != nil {
		return nil, err
	}

	buildStart := time.Now()
	g, err := r.Build(ctx, t, opts)
	if err != nil {
		return nil, err
	}
	code := t.Metadata.EBDCode
	result := &Result{
		EBDCode:   code,
		TableHash: tableHash,
		Graph:     g,
		Stats: Stats{
			NodeCount: g.NodeCount(),
			EdgeCount: g.EdgeCount(),
			BuildTime: time.Since(buildStart),
		},
	}

	r.Logger.Info("built graph",
		"ebd", code,
		"nodes", result.Stats.NodeCount,
		"edges", result.Stats.EdgeCount,
		"duration", result.Stats.BuildTime)

	renderStart := time.Now()
	formats := slices.DeleteFunc(slices.Clone(opts.Formats), func(f string) bool { return f == FormatJSON })
	if len(formats) < len(opts.Formats) {
		data, cached, err := r.cachedGraphJSON(ctx, g, tableHash, opts)
		if err != nil {
			return nil, err
		}
		result.Artifacts = append(result.Artifacts, Artifact{
			Language: LanguageGraph, Format: FormatJSON, Data: data, Cached: cached,
		})
	}

	if len(formats) > 0 {
		languages := slices.Clone(opts.Languages)
		for i := 0; i < len(languages); i++ {
			lang := languages[i]
			artifacts, err := r.renderLanguage(ctx, g, code, tableHash, lang, formats, opts)
			if err == nil {
				result.Artifacts = append(result.Artifacts, artifacts...)
				continue
			}
			if lang != LanguagePlantUML || !opts.FallbackToDOT || !errs.Is(err, errs.ErrCodeTooComplex) {
				return nil, err
			}

			r.Logger.Warn("plantuml cannot express this graph, falling back to dot", "ebd", code, "reason", errs.UserMessage(err))
			observability.Pipeline().OnFallback(ctx, code, LanguagePlantUML, LanguageDOT)
			result.Fallbacks = append(result.Fallbacks, Fallback{
				From:   LanguagePlantUML,
				To:     LanguageDOT,
				Reason: err.Error(),
			})
			if !slices.Contains(languages, LanguageDOT) {
				languages = append(languages, LanguageDOT)
			}
		}
	}
	result.Stats.RenderTime = time.Since(renderStart)

	r.Logger.Info("rendered outputs",
		"ebd", code,
		"artifacts", len(result.Artifacts),
		"fallbacks", len(result.Fallbacks),
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Build converts t into a graph and reports the build to the pipeline hooks.
func (r *Runner) Build(ctx context.Context, t *table.Table, opts Options) (*graph.Graph, error) {
	code := ""
	if t != nil {
		code = t.Metadata.EBDCode
	}
	hooks := observability.Pipeline()
	hooks.OnBuildStart(ctx, code)
	start := time.Now()

	g, err := Build(t, opts)

	nodes, edges := 0, 0
	if g != nil {
		nodes, edges = g.NodeCount(), g.EdgeCount()
	}
	hooks.OnBuildComplete(ctx, code, nodes, edges, time.Since(start), err)
	if err != nil {
		r.Logger.Debug("build failed", "ebd", code, "err", err)
	}
	return g, err
}

// GraphJSON builds t and returns the graph as JSON. The second result
// reports whether the JSON came from the cache.
func (r *Runner) GraphJSON(ctx context.Context, t *table.Table, opts Options) ([]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	tableHash, err := hashTable(t)
	if err != nil {
		return nil, false, err
	}
	key := r.Keyer.GraphKey(tableHash, opts.GraphKeyOpts())
	if data, ok := r.lookup(ctx, key, opts); ok {
		r.Logger.Debug("graph from cache", "ebd", t.Metadata.EBDCode, "cached", true)
		return data, true, nil
	}

	g, err := r.Build(ctx, t, opts)
	if err != nil {
		return nil, false, err
	}
	data, err := graph.Marshal(g)
	if err != nil {
		return nil, false, err
	}
	r.store(ctx, key, data)
	return data, false, nil
}

// Source renders g in language and reports to the pipeline hooks.
func (r *Runner) Source(ctx context.Context, g *graph.Graph, language string, opts Options) (string, error) {
	code := g.Meta().EBDCode
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, code, language)
	start := time.Now()

	src, err := Source(g, language, opts)

	hooks.OnRenderComplete(ctx, code, language, time.Since(start), err)
	return src, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) cachedGraphJSON(ctx context.Context, g *graph.Graph, tableHash string, opts Options) ([]byte, bool, error) {
	key := r.Keyer.GraphKey(tableHash, opts.GraphKeyOpts())
	if data, ok := r.lookup(ctx, key, opts); ok {
		return data, true, nil
	}
	data, err := graph.Marshal(g)
	if err != nil {
		return nil, false, err
	}
	r.store(ctx, key, data)
	return data, false, nil
}

// renderLanguage produces every requested format of one language. Diagram
// source is only generated when at least one artifact is not cached.
func (r *Runner) renderLanguage(ctx context.Context, g *graph.Graph, code, tableHash, language string, formats []string, opts Options) ([]Artifact, error) {
	artifacts := make([]Artifact, len(formats))
	keys := make([]string, len(formats))
	missing := false
	for i, format := range formats {
		artifacts[i] = Artifact{Language: language, Format: format}
		keys[i] = r.Keyer.ArtifactKey(tableHash, opts.ArtifactKeyOpts(language, format))
		if data, ok := r.lookup(ctx, keys[i], opts); ok {
			artifacts[i].Data, artifacts[i].Cached = data, true
		} else {
			missing = true
		}
	}
	if !missing {
		r.Logger.Debug("artifacts from cache", "ebd", code, "language", language, "cached", true)
		return artifacts, nil
	}

	src, err := r.Source(ctx, g, language, opts)
	if err != nil {
		return nil, err
	}

	var images ImageRenderer
	for i := range artifacts {
		if artifacts[i].Cached {
			continue
		}
		format := artifacts[i].Format
		start := time.Now()

		data := []byte(src)
		if format != FormatSource {
			if images == nil {
				images = r.imageRenderer(opts)
			}
			if data, err = Image(ctx, images, language, src, format, opts); err != nil {
				return nil, err
			}
		}
		artifacts[i].Data = data
		r.store(ctx, keys[i], data)

		r.Logger.Debug("rendered artifact",
			"ebd", code,
			"language", language,
			"format", format,
			"size", len(data),
			"duration", time.Since(start),
			"cached", false)
	}
	return artifacts, nil
}

func (r *Runner) imageRenderer(opts Options) ImageRenderer {
	if r.Images != nil {
		return r.Images(opts)
	}
	return NewImageRenderer(opts)
}

// lookup reads key from the cache. Cache failures are logged and treated as
// misses; a cache outage must not fail a render.
func (r *Runner) lookup(ctx context.Context, key string, opts Options) ([]byte, bool) {
	if opts.Refresh {
		return nil, false
	}
	data, ok, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "key", key, "err", err)
		return nil, false
	}
	return data, ok
}

func (r *Runner) store(ctx context.Context, key string, data []byte) {
	if err := r.Cache.Set(ctx, key, data, cache.DefaultTTL); err != nil {
		r.Logger.Warn("cache write failed", "key", key, "err", err)
	}
}

// hashTable hashes the canonical JSON encoding of t.
func hashTable(t *table.Table) (string, error) {
	if t == nil {
		return "", errs.New(errs.ErrCodeInvalidInput, "table must not be nil")
	}
	data, err := json.Marshal(t)
	if err != nil {
		return "", errs.Wrap(errs.ErrCodeInternal, err, "hash table")
	}
	return cache.Hash(data), nil
}
