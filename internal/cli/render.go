package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/ebdgraph/pkg/pipeline"
	"github.com/matzehuels/ebdgraph/pkg/table"
)

// renderOpts holds the command-line flags for the render command.
// Flags that were not set leave the config file (or default) value alone.
type renderOpts struct {
	config       string // TOML config file
	languages    string // comma-separated: plantuml, dot
	formats      string // comma-separated: source, svg, png, pdf, json
	output       string // output directory
	renderer     string // kroki or local
	krokiURL     string
	linkTemplate string // cross-reference URL with {ebd_code}
	codePattern  string
	noWatermark  bool
	noBackground bool
	fallback     bool // fall back to dot when plantuml cannot express the graph
	noCache      bool
	refresh      bool // ignore cached artifacts
}

// renderCommand creates the render command, which turns a decision table into
// diagram sources and images.
func (c *CLI) renderCommand() *cobra.Command {
	var ro renderOpts

	cmd := &cobra.Command{
		Use:   "render <table.json|table.yaml>",
		Short: "Render a decision table as PlantUML, DOT, SVG, PNG or PDF",
		Long: `Render a decision table as diagram sources and images.

Images are rendered by a Kroki instance (default) or locally with Graphviz
(--renderer local, dot only). PNG and PDF conversion of decorated SVGs needs
rsvg-convert on the PATH.`,
		Example: `  ebdgraph render E_0003.json
  ebdgraph render E_0003.json --language dot --format svg,png -o out
  ebdgraph render E_0003.yaml --config ebdgraph.toml --fallback`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := ro.options(cmd)
			if err != nil {
				return err
			}
			return c.runRender(cmd, args[0], opts, ro)
		},
	}

	ro.bind(cmd)

	return cmd
}

// bind registers the render flags on cmd.
func (ro *renderOpts) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&ro.config, "config", "", "TOML config file")
	f.StringVarP(&ro.languages, "language", "l", "plantuml,dot", "languages: plantuml, dot")
	f.StringVarP(&ro.formats, "format", "f", pipeline.FormatSource, "formats: source, svg, png, pdf, json")
	f.StringVarP(&ro.output, "output", "o", ".", "output directory")
	f.StringVar(&ro.renderer, "renderer", pipeline.DefaultRenderer, "image renderer: kroki, local")
	f.StringVar(&ro.krokiURL, "kroki-url", envOr(envKrokiURL, pipeline.DefaultKrokiURL), "Kroki base URL [$"+envKrokiURL+"]")
	f.StringVar(&ro.linkTemplate, "link-template", os.Getenv(envLinkTemplate), "cross-reference URL containing {ebd_code} [$"+envLinkTemplate+"]")
	f.StringVar(&ro.codePattern, "code-pattern", "", "result-code pattern version (2023, 2024)")
	f.BoolVar(&ro.noWatermark, "no-watermark", false, "do not add the watermark to SVGs")
	f.BoolVar(&ro.noBackground, "no-background", false, "do not add a background to SVGs")
	f.BoolVar(&ro.fallback, "fallback", false, "render dot when plantuml cannot express the graph")
	f.BoolVar(&ro.noCache, "no-cache", false, "disable the artifact cache")
	f.BoolVar(&ro.refresh, "refresh", false, "ignore cached artifacts")
}

// options merges defaults, the config file, the environment and the flags,
// in increasing precedence.
func (ro renderOpts) options(cmd *cobra.Command) (pipeline.Options, error) {
	opts := pipeline.DefaultOptions()
	if ro.config != "" {
		var err error
		if opts, err = pipeline.LoadConfig(ro.config); err != nil {
			return opts, err
		}
	}

	f := cmd.Flags()
	set := func(name string) bool {
		return f.Changed(name) || (ro.config == "" && f.Lookup(name).DefValue != "")
	}
	if f.Changed("language") {
		opts.Languages = parseList(ro.languages)
	}
	if f.Changed("format") {
		opts.Formats = parseList(ro.formats)
	}
	if f.Changed("renderer") {
		opts.Renderer = ro.renderer
	}
	if set("kroki-url") {
		opts.KrokiURL = ro.krokiURL
	}
	if set("link-template") {
		opts.LinkTemplate = ro.linkTemplate
	}
	if f.Changed("code-pattern") {
		opts.CodePattern = ro.codePattern
	}
	if ro.noWatermark {
		opts.Watermark = false
	}
	if ro.noBackground {
		opts.Background = false
	}
	if ro.fallback {
		opts.FallbackToDOT = true
	}
	opts.Refresh = ro.refresh

	return opts, opts.ValidateAndSetDefaults()
}

func (c *CLI) runRender(cmd *cobra.Command, path string, opts pipeline.Options, ro renderOpts) error {
	ctx := cmd.Context()
	t, err := readTable(path, opts)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, ro.noCache, "")
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	result, err := c.execute(ctx, runner, t, opts)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(ro.output, 0o755); err != nil {
		return err
	}
	var paths []string
	for _, a := range result.Artifacts {
		p := filepath.Join(ro.output, a.Filename(result.EBDCode))
		if err := os.WriteFile(p, a.Data, 0o644); err != nil {
			return err
		}
		paths = append(paths, p)
	}
	prog.done("Rendered " + result.EBDCode)

	w := cmd.OutOrStdout()
	printSuccess(w, "Rendered %s", StyleHighlight.Render(result.EBDCode))
	printStats(w, result.Stats.NodeCount, result.Stats.EdgeCount, allCached(result.Artifacts))
	for _, fb := range result.Fallbacks {
		printWarning(w, "%s cannot express this graph, rendered %s instead", fb.From, fb.To)
		printDetail(w, "%s", fb.Reason)
	}
	for i, p := range paths {
		printFile(w, p, result.Artifacts[i].Cached)
	}
	return nil
}

// execute runs the pipeline, showing a spinner while images are requested
// from the rendering service.
func (c *CLI) execute(ctx context.Context, runner *pipeline.Runner, t *table.Table, opts pipeline.Options) (*pipeline.Result, error) {
	if !opts.NeedsImages() || opts.Renderer != pipeline.RendererKroki {
		return runner.Execute(ctx, t, opts)
	}
	spinner := newSpinner(ctx, os.Stderr, "Rendering via "+opts.KrokiURL)
	spinner.Start()
	defer spinner.Stop()
	return runner.Execute(ctx, t, opts)
}

func allCached(artifacts []pipeline.Artifact) bool {
	if len(artifacts) == 0 {
		return false
	}
	for _, a := range artifacts {
		if !a.Cached {
			return false
		}
	}
	return true
}
