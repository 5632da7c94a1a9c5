// Package cli implements the ebdgraph command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/ebdgraph/pkg/buildinfo"
	"github.com/matzehuels/ebdgraph/pkg/cache"
	"github.com/matzehuels/ebdgraph/pkg/pipeline"
	"github.com/matzehuels/ebdgraph/pkg/table"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for display.
	appName = "ebdgraph"

	envKrokiURL     = "EBDGRAPH_KROKI_URL"
	envRedisURL     = "EBDGRAPH_REDIS_URL"
	envLinkTemplate = "EBDGRAPH_LINK_TEMPLATE"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// cacheDir overrides the per-user cache directory.
	cacheDir string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "ebdgraph turns EBD decision tables into diagrams",
		Long: `ebdgraph converts Entscheidungsbaumdiagramm (EBD) decision tables into a
directed graph and renders it as PlantUML activity diagrams, Graphviz DOT,
SVG, PNG or PDF.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.buildCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. A redis URL selects the
// shared cache; otherwise the per-user file cache is used.
func (c *CLI) newRunner(ctx context.Context, noCache bool, redisURL string) (*pipeline.Runner, error) {
	ch, err := c.newCache(ctx, noCache, redisURL)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache.Instrument(ch), nil, c.Logger), nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool, redisURL string) (cache.Cache, error) {
	switch {
	case noCache:
		return cache.NewNullCache(), nil
	case redisURL != "":
		return cache.NewRedisCache(ctx, redisURL)
	}
	fc, err := cache.NewFileCache(c.cacheDir)
	if err != nil {
		c.Logger.Warn("cache disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return fc, nil
}

// =============================================================================
// Input Helpers
// =============================================================================

// readTable reads and validates a JSON or YAML decision table.
func readTable(path string, opts pipeline.Options) (*table.Table, error) {
	name := opts.CodePattern
	if name == "" {
		name = table.DefaultCodePattern
	}
	pattern, err := table.LookupCodePattern(name)
	if err != nil {
		return nil, err
	}
	return table.ReadFile(path, table.WithCodePattern(pattern))
}

// parseList parses a comma-separated flag value, dropping empty items.
func parseList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// envOr returns the environment variable key, or def when it is unset.
func envOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}
