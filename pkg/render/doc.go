// Package render holds the rendering helpers shared by the diagram
// generators and the pipeline.
//
// # Overview
//
// The grammar-specific generators live in subpackages:
//
//   - [plantuml]: block-structured activity diagrams
//   - [dot]: Graphviz declarations with instruction clusters
//
// This package provides what both need around them:
//
//   - Line wrapping for long labels ([AddLineBreaks])
//   - SVG post-processing ([AddWatermark], [AddBackground])
//   - Format conversion from SVG to PDF/PNG ([ToPDF], [ToPNG])
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] shell out to rsvg-convert (from librsvg):
//
//	svg, err := kroki.NewClient().Render(ctx, src, kroki.Graphviz, kroki.SVG)
//	svg, err = render.AddWatermark(svg)
//	png, err := render.ToPNG(ctx, svg, 2.0) // 2x scale
//
// [plantuml]: github.com/matzehuels/ebdgraph/pkg/render/plantuml
// [dot]: github.com/matzehuels/ebdgraph/pkg/render/dot
package render
