package topology

import (
	"slices"

	errs "github.com/matzehuels/ebdgraph/pkg/errors"
	"github.com/matzehuels/ebdgraph/pkg/graph"
)

// Splices maps the key of a last common ancestor to the key of the merge
// node that is rendered immediately after it.
type Splices map[string]string

// After returns the merge node spliced after key, if any.
func (s Splices) After(key string) (string, bool) {
	m, ok := s[key]
	return m, ok
}

// Analyze computes the splice table for every node with in-degree > 1,
// visiting nodes in insertion order.
//
// The returned error has code CYCLE (carrying an [errs.PathCountError]) or
// TOO_COMPLEX (carrying an [errs.SpliceConflictError]).
func Analyze(g *graph.Graph) (Splices, error) {
	splices := make(Splices)
	for _, key := range g.Keys() {
		in := g.InDegree(key)
		if in <= 1 {
			continue
		}

		paths := SimplePaths(g, graph.StartKey, key)
		if len(paths) < 2 {
			return nil, errs.Wrap(errs.ErrCodeCycle,
				&errs.PathCountError{Key: key, InDegree: in, Paths: len(paths)},
				"not enough paths for observed in-degree")
		}

		lca := LastCommonAncestor(paths)
		if lca == "" || lca == graph.StartKey {
			return nil, errs.Wrap(errs.ErrCodeTooComplex,
				&errs.SpliceConflictError{First: key},
				"topology too complex for this grammar")
		}
		if other, taken := splices[lca]; taken && other != key {
			return nil, errs.Wrap(errs.ErrCodeTooComplex,
				&errs.SpliceConflictError{Ancestor: lca, First: other, Second: key},
				"topology too complex for this grammar")
		}
		splices[lca] = key
	}
	return splices, nil
}

// SimplePaths returns every path from src to dst that visits no node twice.
// Each path starts with src and ends with dst; paths are produced in
// depth-first order following the edge insertion order.
//
// The number of simple paths can grow exponentially with the graph; decision
// tables are small enough for exhaustive enumeration.
func SimplePaths(g *graph.Graph, src, dst string) [][]string {
	if !g.HasNode(src) || !g.HasNode(dst) {
		return nil
	}

	var (
		paths  [][]string
		path   []string
		onPath = make(map[string]bool)
	)
	var walk func(key string)
	walk = func(key string) {
		path = append(path, key)
		onPath[key] = true
		if key == dst {
			paths = append(paths, slices.Clone(path))
		} else {
			for _, next := range g.Successors(key) {
				if !onPath[next] {
					walk(next)
				}
			}
		}
		onPath[key] = false
		path = path[:len(path)-1]
	}
	walk(src)
	return paths
}

// LastCommonAncestor returns the last node before the final element of the
// last path that is present in every other path. It returns "" for fewer
// than two paths.
//
// The walk goes backwards along the reference path, so the result is the
// common node closest to the merge point.
func LastCommonAncestor(paths [][]string) string {
	if len(paths) < 2 {
		return ""
	}
	ref := paths[len(paths)-1]
	others := make([]map[string]bool, len(paths)-1)
	for i, p := range paths[:len(paths)-1] {
		others[i] = make(map[string]bool, len(p))
		for _, k := range p {
			others[i][k] = true
		}
	}

	for i := len(ref) - 2; i >= 0; i-- {
		candidate := ref[i]
		common := true
		for _, set := range others {
			if !set[candidate] {
				common = false
				break
			}
		}
		if common {
			return candidate
		}
	}
	return ""
}
