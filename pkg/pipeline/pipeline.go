// Package pipeline chains the table → graph → diagram → image stages.
//
// This package implements the complete build → render → convert pipeline
// used by the CLI and the HTTP server. By centralizing this logic, both
// entry points share defaults, validation, caching and the PlantUML to DOT
// fallback.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Build: convert the decision table into a graph ([convert.TableToGraph])
//  2. Render: generate diagram source per language (PlantUML, DOT)
//  3. Convert: turn the source into SVG, PNG or PDF through Kroki or the
//     local Graphviz renderer, then apply watermark and background
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.DefaultOptions()
//	opts.Languages = []string{pipeline.LanguageDOT}
//	opts.Formats = []string{pipeline.FormatSource, pipeline.FormatSVG}
//	result, err := runner.Execute(ctx, table, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg, _ := result.Artifact(pipeline.LanguageDOT, pipeline.FormatSVG)
//
// # Fallback
//
// Some graphs cannot be expressed in PlantUML's block grammar (two merge
// points share an ancestor). With [Options.FallbackToDOT] set, such a
// TOO_COMPLEX failure is recorded in [Result.Fallbacks] and DOT is
// rendered instead of failing the run.
//
// # Configuration
//
// [Options] carries JSON and TOML tags; [LoadConfig] reads a TOML file on
// top of [DefaultOptions].
//
// [convert.TableToGraph]: github.com/matzehuels/ebdgraph/pkg/convert.TableToGraph
package pipeline

import (
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/ebdgraph/pkg/cache"
	errs "github.com/matzehuels/ebdgraph/pkg/errors"
	"github.com/matzehuels/ebdgraph/pkg/graph"
	"github.com/matzehuels/ebdgraph/pkg/integrations/kroki"
	"github.com/matzehuels/ebdgraph/pkg/render"
	"github.com/matzehuels/ebdgraph/pkg/render/dot"
	"github.com/matzehuels/ebdgraph/pkg/render/plantuml"
	"github.com/matzehuels/ebdgraph/pkg/table"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

// Languages.
const (
	LanguagePlantUML = "plantuml"
	LanguageDOT      = "dot"

	// LanguageGraph names the language-independent graph JSON artifact.
	LanguageGraph = "graph"
)

// Format constants for output formats.
const (
	FormatSource = "source"
	FormatSVG    = "svg"
	FormatPNG    = "png"
	FormatPDF    = "pdf"
	FormatJSON   = "json"
)

// Renderers turn diagram sources into images.
const (
	RendererKroki = "kroki"
	RendererLocal = "local"
)

const (
	// DefaultRenderer is the image renderer used unless configured otherwise.
	DefaultRenderer = RendererKroki

	// DefaultKrokiURL is the rendering service used unless configured otherwise.
	DefaultKrokiURL = kroki.DefaultURL

	// DefaultKrokiTimeout is the per-request timeout in seconds.
	DefaultKrokiTimeout = int(kroki.DefaultTimeout / time.Second)

	// DefaultScale is the zoom factor for PNG output.
	DefaultScale = 2.0

	// DefaultBackgroundColor fills the SVG background.
	DefaultBackgroundColor = render.DefaultBackgroundColor

	// DefaultIndent, DefaultLabelWidth and DefaultInstructionWidth mirror
	// the renderer defaults.
	DefaultIndent           = plantuml.DefaultIndent
	DefaultLabelWidth       = dot.DefaultLabelWidth
	DefaultInstructionWidth = dot.DefaultInstructionWidth
)

// DefaultLanguages are rendered when no language is requested.
var DefaultLanguages = []string{LanguagePlantUML, LanguageDOT}

// DefaultFormats are produced when no format is requested.
var DefaultFormats = []string{FormatSource}

// ValidLanguages is the set of supported diagram languages.
var ValidLanguages = map[string]bool{
	LanguagePlantUML: true,
	LanguageDOT:      true,
}

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSource: true,
	FormatSVG:    true,
	FormatPNG:    true,
	FormatPDF:    true,
	FormatJSON:   true,
}

// ValidRenderers is the set of supported image renderers.
var ValidRenderers = map[string]bool{
	RendererKroki: true,
	RendererLocal: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests and TOML for
// config files.
type Options struct {
	// Build options
	CodePattern       string   `json:"code_pattern,omitempty" toml:"code_pattern"`
	MultiOutcomeCodes []string `json:"multi_outcome_codes,omitempty" toml:"multi_outcome_codes"`

	// Render options
	Languages        []string `json:"languages,omitempty" toml:"languages"`
	Indent           string   `json:"indent,omitempty" toml:"indent"`
	LabelWidth       int      `json:"label_width,omitempty" toml:"label_width"`
	InstructionWidth int      `json:"instruction_width,omitempty" toml:"instruction_width"`
	LinkTemplate     string   `json:"link_template,omitempty" toml:"link_template"`
	FallbackToDOT    bool     `json:"fallback_to_dot,omitempty" toml:"fallback_to_dot"`

	// Image options
	Formats         []string `json:"formats,omitempty" toml:"formats"`
	Renderer        string   `json:"renderer,omitempty" toml:"renderer"`
	KrokiURL        string   `json:"kroki_url,omitempty" toml:"kroki_url"`
	KrokiTimeout    int      `json:"kroki_timeout,omitempty" toml:"kroki_timeout"` // seconds
	Watermark       bool     `json:"watermark" toml:"watermark"`
	Background      bool     `json:"background" toml:"background"`
	BackgroundColor string   `json:"background_color,omitempty" toml:"background_color"`
	Scale           float64  `json:"scale,omitempty" toml:"scale"`

	// Runtime options (not serialized)
	Refresh bool `json:"-" toml:"-"`
}

// DefaultOptions returns options with every default applied, including the
// boolean ones that SetDefaults cannot tell apart from an explicit false.
func DefaultOptions() Options {
	o := Options{Watermark: true, Background: true}
	o.SetDefaults()
	return o
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// EBDCode identifies the rendered table.
	EBDCode string

	// TableHash is the content hash of the input table.
	TableHash string

	// Graph is the built graph.
	Graph *graph.Graph

	// Artifacts are the outputs in language, then format order.
	Artifacts []Artifact

	// Fallbacks lists languages that were replaced by another one.
	Fallbacks []Fallback

	// Stats contains timing and size information.
	Stats Stats
}

// Artifact is one output of a run.
type Artifact struct {
	Language string
	Format   string
	Data     []byte
	Cached   bool
}

// Filename returns the conventional file name, e.g. "E_0003.dot.svg".
func (a Artifact) Filename(ebdCode string) string {
	switch {
	case a.Language == LanguageGraph:
		return ebdCode + ".json"
	case a.Format == FormatSource && a.Language == LanguagePlantUML:
		return ebdCode + ".puml"
	case a.Format == FormatSource:
		return ebdCode + ".dot"
	}
	return ebdCode + "." + a.Language + "." + a.Format
}

// Fallback records that a language could not express the graph.
type Fallback struct {
	From   string
	To     string
	Reason string
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	BuildTime  time.Duration
	RenderTime time.Duration
}

// Artifact returns the data of the first artifact with the given language
// and format.
func (r *Result) Artifact(language, format string) ([]byte, bool) {
	for _, a := range r.Artifacts {
		if a.Language == language && a.Format == format {
			return a.Data, true
		}
	}
	return nil, false
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateLanguage checks that a language is valid.
func ValidateLanguage(language string) error {
	if !ValidLanguages[language] {
		return errs.New(errs.ErrCodeInvalidLanguage, "invalid language: %q (must be one of: plantuml, dot)", language)
	}
	return nil
}

// ValidateLanguages checks that all languages are valid.
func ValidateLanguages(languages []string) error {
	for _, l := range languages {
		if err := ValidateLanguage(l); err != nil {
			return err
		}
	}
	return nil
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errs.New(errs.ErrCodeInvalidFormat, "invalid format: %q (must be one of: source, svg, png, pdf, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateRenderer checks that a renderer is valid.
func ValidateRenderer(renderer string) error {
	if !ValidRenderers[renderer] {
		return errs.New(errs.ErrCodeInvalidInput, "invalid renderer: %q (must be one of: kroki, local)", renderer)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// SetDefaults fills zero values with the Default* constants.
func (o *Options) SetDefaults() {
	if o.CodePattern == "" {
		o.CodePattern = table.DefaultCodePattern
	}
	if o.MultiOutcomeCodes == nil {
		o.MultiOutcomeCodes = []string{"A**"}
	}
	if len(o.Languages) == 0 {
		o.Languages = slices.Clone(DefaultLanguages)
	}
	if len(o.Formats) == 0 {
		o.Formats = slices.Clone(DefaultFormats)
	}
	if o.Indent == "" {
		o.Indent = DefaultIndent
	}
	if o.LabelWidth == 0 {
		o.LabelWidth = DefaultLabelWidth
	}
	if o.InstructionWidth == 0 {
		o.InstructionWidth = DefaultInstructionWidth
	}
	if o.Renderer == "" {
		o.Renderer = DefaultRenderer
	}
	if o.KrokiURL == "" {
		o.KrokiURL = DefaultKrokiURL
	}
	if o.KrokiTimeout == 0 {
		o.KrokiTimeout = DefaultKrokiTimeout
	}
	if o.BackgroundColor == "" {
		o.BackgroundColor = DefaultBackgroundColor
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
}

// Validate checks every option after defaults have been applied.
func (o *Options) Validate() error {
	if _, err := table.LookupCodePattern(o.CodePattern); err != nil {
		return err
	}
	if err := ValidateLanguages(o.Languages); err != nil {
		return err
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if err := ValidateRenderer(o.Renderer); err != nil {
		return err
	}
	if err := errs.ValidateLinkTemplate(o.LinkTemplate); err != nil {
		return err
	}
	if o.Renderer == RendererKroki && o.NeedsImages() {
		if err := errs.ValidateURL(o.KrokiURL); err != nil {
			return err
		}
	}
	if o.LabelWidth < 0 || o.InstructionWidth < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "wrap widths must not be negative")
	}
	if o.Scale < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "scale must not be negative")
	}
	if o.KrokiTimeout < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "kroki_timeout must not be negative")
	}
	return nil
}

// ValidateAndSetDefaults applies defaults and validates.
func (o *Options) ValidateAndSetDefaults() error {
	o.SetDefaults()
	return o.Validate()
}

// NeedsImages reports whether any image format is requested.
func (o *Options) NeedsImages() bool {
	return slices.ContainsFunc(o.Formats, isImageFormat)
}

// PostProcess reports whether SVGs are modified after rendering.
func (o *Options) PostProcess() bool {
	return o.Watermark || o.Background
}

func isImageFormat(f string) bool {
	return f == FormatSVG || f == FormatPNG || f == FormatPDF
}

// GraphKeyOpts returns cache key options for graph building.
func (o *Options) GraphKeyOpts() cache.GraphKeyOpts {
	return cache.GraphKeyOpts{
		CodePattern:       o.CodePattern,
		MultiOutcomeCodes: o.MultiOutcomeCodes,
	}
}

// ArtifactKeyOpts returns cache key options for one artifact.
func (o *Options) ArtifactKeyOpts(language, format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{
		Language:          language,
		Format:            format,
		MultiOutcomeCodes: o.MultiOutcomeCodes,
		Indent:            o.Indent,
		LabelWidth:        o.LabelWidth,
		InstructionWidth:  o.InstructionWidth,
		LinkTemplate:      o.LinkTemplate,
	}
	if isImageFormat(format) {
		k.Watermark = o.Watermark
		k.Background = o.Background
		k.BackgroundColor = o.BackgroundColor
		k.Renderer = o.Renderer + "|" + strings.TrimRight(o.KrokiURL, "/")
		if format == FormatPNG {
			k.Scale = o.Scale
		}
	}
	return k
}
