// Package plantuml renders decision graphs as PlantUML activity diagrams.
//
// Activity diagrams are block structured: every decision opens an
// if/else/endif block and both branches are rendered inside it. A node that
// several branches lead to can therefore only appear once, right after the
// block of the branches' last common ancestor. [ToPlantUML] runs
// [topology.Analyze] to find these splice points and fails with TOO_COMPLEX
// when the graph's shape cannot be expressed; callers typically fall back
// to the [dot] renderer then.
//
// [topology.Analyze]: github.com/matzehuels/ebdgraph/pkg/graph/topology.Analyze
// [dot]: github.com/matzehuels/ebdgraph/pkg/render/dot
package plantuml
