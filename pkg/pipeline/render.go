package pipeline

import (
	"context"
	"time"

	errs "github.com/matzehuels/ebdgraph/pkg/errors"
	"github.com/matzehuels/ebdgraph/pkg/graph"
	"github.com/matzehuels/ebdgraph/pkg/integrations/kroki"
	"github.com/matzehuels/ebdgraph/pkg/observability"
	"github.com/matzehuels/ebdgraph/pkg/render"
	"github.com/matzehuels/ebdgraph/pkg/render/dot"
	"github.com/matzehuels/ebdgraph/pkg/render/plantuml"
)

// Source generates the diagram source of g in language.
func Source(g *graph.Graph, language string, opts Options) (string, error) {
	switch language {
	case LanguagePlantUML:
		return plantuml.ToPlantUML(g, plantuml.Options{Indent: opts.Indent})
	case LanguageDOT:
		return dot.ToDOT(g, dot.Options{
			Indent:           opts.Indent,
			LabelWidth:       opts.LabelWidth,
			InstructionWidth: opts.InstructionWidth,
			LinkTemplate:     opts.LinkTemplate,
		})
	}
	return "", ValidateLanguage(language)
}

// ImageRenderer turns diagram source into an image.
type ImageRenderer interface {
	RenderImage(ctx context.Context, language, source, format string) ([]byte, error)
}

// NewImageRenderer returns the renderer selected by opts.Renderer.
func NewImageRenderer(opts Options) ImageRenderer {
	if opts.Renderer == RendererLocal {
		return localRenderer{scale: opts.Scale}
	}
	return krokiRenderer{kroki.NewClient(
		kroki.WithURL(opts.KrokiURL),
		kroki.WithTimeout(time.Duration(opts.KrokiTimeout)*time.Second),
	)}
}

type krokiRenderer struct {
	client *kroki.Client
}

func (k krokiRenderer) RenderImage(ctx context.Context, language, source, format string) ([]byte, error) {
	typ := kroki.PlantUML
	if language == LanguageDOT {
		typ = kroki.Graphviz
	}
	return k.client.Render(ctx, source, typ, kroki.Format(format))
}

// localRenderer lays out DOT in-process and converts with rsvg-convert.
type localRenderer struct {
	scale float64
}

func (l localRenderer) RenderImage(ctx context.Context, language, source, format string) ([]byte, error) {
	if language != LanguageDOT {
		return nil, errs.New(errs.ErrCodeUnsupported, "the local renderer only supports dot, use the kroki renderer for %s", language)
	}
	svg, err := dot.RenderSVG(ctx, source)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatSVG:
		return svg, nil
	case FormatPNG:
		return render.ToPNG(ctx, svg, l.scale)
	case FormatPDF:
		return render.ToPDF(ctx, svg)
	}
	return nil, ValidateFormat(format)
}

// Image renders source as an image in format. When watermark or background
// are enabled the image is rendered as SVG first, post-processed and then
// converted, so PNG and PDF carry the same decorations as SVG.
func Image(ctx context.Context, r ImageRenderer, language, source, format string, opts Options) (data []byte, err error) {
	hooks := observability.Pipeline()
	hooks.OnConvertStart(ctx, language, format)
	start := time.Now()
	defer func() {
		hooks.OnConvertComplete(ctx, language, format, len(data), time.Since(start), err)
	}()

	if format != FormatSVG && !opts.PostProcess() {
		return r.RenderImage(ctx, language, source, format)
	}

	svg, err := r.RenderImage(ctx, language, source, FormatSVG)
	if err != nil {
		return nil, err
	}
	if svg, err = PostProcess(svg, opts); err != nil {
		return nil, err
	}
	switch format {
	case FormatSVG:
		return svg, nil
	case FormatPNG:
		return render.ToPNG(ctx, svg, opts.Scale)
	case FormatPDF:
		return render.ToPDF(ctx, svg)
	}
	return nil, ValidateFormat(format)
}

// PostProcess applies the watermark and then the background to svg.
func PostProcess(svg []byte, opts Options) ([]byte, error) {
	var err error
	if opts.Watermark {
		if svg, err = render.AddWatermark(svg); err != nil {
			return nil, err
		}
	}
	if opts.Background {
		if svg, err = render.AddBackground(svg, opts.BackgroundColor); err != nil {
			return nil, err
		}
	}
	return svg, nil
}
