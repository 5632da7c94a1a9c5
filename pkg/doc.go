// Package pkg provides the core libraries for ebdgraph.
//
// # Overview
//
// ebdgraph turns EBD decision tables (Entscheidungsbaumdiagramme) into
// diagrams. The pkg directory is organized into these areas:
//
//  1. [table] - Decision-table model, validation and JSON/YAML decoding
//  2. [graph], [convert], [topology] - Graph model, table → graph builder and
//     path analysis
//  3. [render] - PlantUML and DOT generators plus SVG post-processing
//  4. [integrations] - HTTP client for the Kroki rendering service
//  5. [pipeline] - Orchestration (build → render → image) with caching
//  6. [cache], [observability], [errors] - Supporting infrastructure
//
// # Architecture
//
// The typical data flow:
//
//	Decision table (JSON/YAML)
//	         ↓
//	    [table] package (decode + validate input contract)
//	         ↓
//	    [convert] package (two-pass build into a sealed graph)
//	         ↓
//	    [render/plantuml] or [render/dot] (text source)
//	         ↓
//	    [integrations/kroki] or local Graphviz (SVG/PNG/PDF)
//
// # Quick Start
//
//	t, err := table.ReadFile("E_0003.json")
//	if err != nil {
//	    return err
//	}
//	g, err := convert.TableToGraph(t)
//	if err != nil {
//	    return err
//	}
//	src, err := plantuml.ToPlantUML(g, plantuml.Options{})
//	if errors.Is(err, errors.ErrCodeTooComplex) {
//	    src, err = dot.ToDOT(g, dot.Options{})
//	}
//
// For most callers [pipeline.Runner] is the better entry point: it applies
// defaults, caches artifacts and falls back from PlantUML to DOT on request.
//
// [table]: github.com/matzehuels/ebdgraph/pkg/table
// [graph]: github.com/matzehuels/ebdgraph/pkg/graph
// [convert]: github.com/matzehuels/ebdgraph/pkg/convert
// [topology]: github.com/matzehuels/ebdgraph/pkg/graph/topology
// [render]: github.com/matzehuels/ebdgraph/pkg/render
// [render/plantuml]: github.com/matzehuels/ebdgraph/pkg/render/plantuml
// [render/dot]: github.com/matzehuels/ebdgraph/pkg/render/dot
// [integrations]: github.com/matzehuels/ebdgraph/pkg/integrations
// [integrations/kroki]: github.com/matzehuels/ebdgraph/pkg/integrations/kroki
// [pipeline]: github.com/matzehuels/ebdgraph/pkg/pipeline
// [pipeline.Runner]: github.com/matzehuels/ebdgraph/pkg/pipeline#Runner
// [cache]: github.com/matzehuels/ebdgraph/pkg/cache
// [observability]: github.com/matzehuels/ebdgraph/pkg/observability
// [errors]: github.com/matzehuels/ebdgraph/pkg/errors
package pkg
