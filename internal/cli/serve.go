package cli

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/ebdgraph/internal/server"
	"github.com/matzehuels/ebdgraph/pkg/observability/prom"
	"github.com/matzehuels/ebdgraph/pkg/pipeline"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr     string
	redisURL string // shared artifact cache; empty uses the file cache
	config   string
	fallback bool
	noCache  bool
}

// serveCommand creates the serve command, which exposes the pipeline over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var so serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the rendering pipeline over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd, so)
		},
	}

	f := cmd.Flags()
	f.StringVar(&so.addr, "addr", ":8080", "listen address")
	f.StringVar(&so.redisURL, "redis-url", envOr(envRedisURL, ""), "Redis URL for the shared cache [$"+envRedisURL+"]")
	f.StringVar(&so.config, "config", "", "TOML config file with the base render options")
	f.BoolVar(&so.fallback, "fallback", false, "render dot when plantuml cannot express the graph")
	f.BoolVar(&so.noCache, "no-cache", false, "disable the artifact cache")

	return cmd
}

func (c *CLI) runServe(cmd *cobra.Command, so serveOpts) error {
	ctx := cmd.Context()

	opts := pipeline.DefaultOptions()
	if so.config != "" {
		var err error
		if opts, err = pipeline.LoadConfig(so.config); err != nil {
			return err
		}
	} else {
		opts.KrokiURL = envOr(envKrokiURL, opts.KrokiURL)
		opts.LinkTemplate = envOr(envLinkTemplate, opts.LinkTemplate)
	}
	if so.fallback {
		opts.FallbackToDOT = true
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	hooks, err := prom.New(reg)
	if err != nil {
		return err
	}
	hooks.Install()

	runner, err := c.newRunner(ctx, so.noCache, so.redisURL)
	if err != nil {
		return err
	}
	defer runner.Close()

	srv := server.New(server.Config{
		Runner:   runner,
		Options:  opts,
		Gatherer: reg,
		Logger:   c.Logger,
	})

	w := cmd.OutOrStdout()
	printInfo(w, "Serving on %s", StyleHighlight.Render(so.addr))
	printKeyValue(w, "renderer", opts.Renderer)
	printKeyValue(w, "kroki", opts.KrokiURL)
	if so.redisURL != "" {
		printKeyValue(w, "cache", "redis")
	}
	return srv.ListenAndServe(ctx, so.addr)
}
