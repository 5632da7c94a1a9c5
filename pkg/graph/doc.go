// Package graph is the typed directed-graph model of a decision table.
//
// A [Graph] owns a set of nodes and edges. Nodes are one of a closed set of
// variants, all implementing [Node]:
//
//   - [*Start]: the single entry point, key "Start"
//   - [*End]: the single exit, key "Ende"
//   - [*Empty]: placeholder for tables without rows, key "Empty"
//   - [*Decision]: a yes/no check step, keyed by step number
//   - [*Transition]: a non-branching step, keyed by step number
//   - [*Outcome]: a terminal result, keyed by outcome code (or note)
//   - [*TransitionalOutcome]: a result that continues at another step,
//     keyed by code and subsequent step
//
// The variant set is sealed: [Node] has an unexported method, so every type
// switch over nodes in this module can be checked for exhaustiveness by
// [KindOf].
//
// Edges carry an [EdgeKind] and hold pointers to their source and target
// nodes. The graph indexes edges by (source key, target key); adding a second
// edge between the same pair replaces the first.
//
// # Lifecycle
//
// A graph is built once (see pkg/convert), then sealed with [Graph.Seal].
// After sealing, [Graph.AddNode] and [Graph.AddEdge] fail with [ErrSealed];
// renderers treat the graph as read-only input and keep their per-call
// annotations elsewhere.
//
// # Serialization
//
// [WriteJSON] and [ReadJSON] encode graphs in a flat node/edge JSON format
// used by the CLI "build" command, the HTTP API and the artifact cache.
package graph
