package pipeline

import (
	"github.com/matzehuels/ebdgraph/pkg/convert"
	"github.com/matzehuels/ebdgraph/pkg/graph"
	"github.com/matzehuels/ebdgraph/pkg/table"
)

// Build validates t against the configured code pattern and converts it
// into a graph.
func Build(t *table.Table, opts Options) (*graph.Graph, error) {
	pattern, err := table.LookupCodePattern(opts.CodePattern)
	if err != nil {
		return nil, err
	}
	if err := table.Validate(t, table.WithCodePattern(pattern)); err != nil {
		return nil, err
	}
	return convert.TableToGraph(t, convert.WithMultiOutcomeCodes(opts.MultiOutcomeCodes...))
}
