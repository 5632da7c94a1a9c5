package topology

import (
	"errors"
	"slices"
	"strings"
	"testing"

	errs "github.com/matzehuels/ebdgraph/pkg/errors"
	"github.com/matzehuels/ebdgraph/pkg/graph"
)

// build creates a graph from "src>dst" edge specs. Start is implicit, every
// other key becomes a Decision node.
func build(t *testing.T, specs ...string) *graph.Graph {
	t.Helper()
	g := graph.New(graph.Metadata{}, nil)
	nodes := map[string]graph.Node{}
	node := func(key string) graph.Node {
		if n, ok := nodes[key]; ok {
			return n
		}
		var n graph.Node = &graph.Decision{StepNumber: key}
		if key == graph.StartKey {
			n = &graph.Start{}
		}
		if err := g.AddNode(n); err != nil {
			t.Fatal(err)
		}
		nodes[key] = n
		return n
	}
	for _, s := range specs {
		src, dst, _ := strings.Cut(s, ">")
		e := graph.Edge{Kind: graph.EdgeToYes, Source: node(src), Target: node(dst)}
		if err := g.AddEdge(e); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

func TestSimplePaths(t *testing.T) {
	g := build(t, "Start>1", "1>2", "1>3", "2>4", "3>4")
	got := SimplePaths(g, "Start", "4")
	want := [][]string{{"Start", "1", "2", "4"}, {"Start", "1", "3", "4"}}
	if !slices.EqualFunc(got, want, slices.Equal) {
		t.Errorf("SimplePaths = %v, want %v", got, want)
	}
	if SimplePaths(g, "Start", "missing") != nil {
		t.Error("expected nil for unknown target")
	}
}

func TestLastCommonAncestor(t *testing.T) {
	tests := []struct {
		name  string
		paths [][]string
		want  string
	}{
		{"diamond", [][]string{{"Start", "1", "2", "4"}, {"Start", "1", "3", "4"}}, "1"},
		{"nested", [][]string{{"Start", "1", "2", "3", "5"}, {"Start", "1", "2", "4", "5"}, {"Start", "1", "5"}}, "1"},
		{"direct", [][]string{{"Start", "1", "2", "3"}, {"Start", "1", "2", "4", "3"}}, "2"},
		{"single", [][]string{{"Start", "1"}}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LastCommonAncestor(tt.paths); got != tt.want {
				t.Errorf("LastCommonAncestor = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAnalyzeDiamond(t *testing.T) {
	g := build(t, "Start>1", "1>2", "1>3", "2>4", "3>4")
	splices, err := Analyze(g)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if m, ok := splices.After("1"); !ok || m != "4" {
		t.Errorf("After(1) = %q, %v; want 4", m, ok)
	}
	if len(splices) != 1 {
		t.Errorf("splices = %v", splices)
	}
}

func TestAnalyzeNoMerges(t *testing.T) {
	g := build(t, "Start>1", "1>2", "1>3")
	splices, err := Analyze(g)
	if err != nil || len(splices) != 0 {
		t.Errorf("Analyze = %v, %v", splices, err)
	}
}

func TestAnalyzeCycle(t *testing.T) {
	g := build(t, "Start>1", "1>2", "2>1")
	_, err := Analyze(g)
	if !errs.Is(err, errs.ErrCodeCycle) {
		t.Fatalf("err = %v, want CYCLE", err)
	}
	var pc *errs.PathCountError
	if !errors.As(err, &pc) || pc.Key != "1" || pc.InDegree != 2 || pc.Paths != 1 {
		t.Errorf("details = %+v", pc)
	}
}

func TestAnalyzeSharedAncestor(t *testing.T) {
	g := build(t, "Start>1", "1>2", "1>3", "2>4", "2>5", "3>4", "3>5")
	_, err := Analyze(g)
	if !errs.Is(err, errs.ErrCodeTooComplex) {
		t.Fatalf("err = %v, want TOO_COMPLEX", err)
	}
	var sc *errs.SpliceConflictError
	if !errors.As(err, &sc) {
		t.Fatal("missing SpliceConflictError")
	}
	if sc.Ancestor != "1" || sc.First != "4" || sc.Second != "5" {
		t.Errorf("details = %+v", sc)
	}
}

func TestAnalyzeStartAncestor(t *testing.T) {
	g := build(t, "Start>a", "Start>b", "a>c", "b>c")
	_, err := Analyze(g)
	if !errs.Is(err, errs.ErrCodeTooComplex) {
		t.Fatalf("err = %v, want TOO_COMPLEX", err)
	}
}
