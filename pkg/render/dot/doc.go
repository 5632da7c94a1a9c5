// Package dot renders decision graphs as Graphviz DOT.
//
// Unlike the block grammar of [plantuml], DOT declares every node and edge
// on its own, so any graph shape can be expressed. [ToDOT] styles nodes by
// variant and edges by kind, wraps long labels, groups the steps governed by
// a multi-step instruction into a dashed cluster, and optionally turns
// mentions of other decision trees into links.
//
// [RenderSVG] lays the source out locally with the Graphviz library bundled
// by go-graphviz, which needs no network access.
//
// [plantuml]: github.com/matzehuels/ebdgraph/pkg/render/plantuml
package dot
