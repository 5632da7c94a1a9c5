// Package topology analyzes merge points of decision graphs.
//
// Block-structured grammars (PlantUML activity diagrams) can only express a
// node with several predecessors by rendering it once, right after the block
// of the last node all paths to it share. [Analyze] computes that node, the
// last common ancestor (LCA), for every merge point and records it in a
// [Splices] table that lives only as long as the rendering call.
//
// # Failure Modes
//
// Analyze reports two rendering-capability errors; the graph itself stays
// valid and can still be rendered by a declaration grammar such as DOT:
//   - CYCLE: a merge point is reached by fewer than two simple paths
//   - TOO_COMPLEX: the LCA is Start, or two merge points share one LCA
package topology
