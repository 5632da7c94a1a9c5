// Package convert builds decision graphs from decision tables.
//
// [TableToGraph] runs in two passes. The first pass creates one node per
// step and per distinct outcome, deduplicating outcomes that share a code
// and a note (ignoring trailing punctuation). The second pass resolves every
// sub-row to its target and adds the edges, so forward references between
// steps work regardless of row order.
//
// A failed build never yields a partial graph; the returned error carries
// one of the structural build codes from [errors]:
//
//	g, err := convert.TableToGraph(t)
//	if errors.Is(err, errors.ErrCodeAmbiguousOutcome) {
//	    var amb *errors.AmbiguousOutcomeError
//	    stdErrors.As(err, &amb)
//	}
//
// [errors]: github.com/matzehuels/ebdgraph/pkg/errors
package convert
