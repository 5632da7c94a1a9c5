package convert

import (
	"errors"
	"regexp"
	"slices"
	"testing"

	errs "github.com/matzehuels/ebdgraph/pkg/errors"
	"github.com/matzehuels/ebdgraph/pkg/graph"
	"github.com/matzehuels/ebdgraph/pkg/table"
)

func tbl(rows ...table.Row) *table.Table {
	return &table.Table{
		Metadata: table.Metadata{EBDCode: "E_0003", Chapter: "GPKE", Section: "Bestellung", Role: "NB"},
		Rows:     rows,
	}
}

func decision(step string, yes, no table.SubRow) table.Row {
	return table.Row{StepNumber: step, Description: "Frage " + step + "?", SubRows: []table.SubRow{yes, no}}
}

func to(cr table.CheckResult) table.SubRow { return table.SubRow{CheckResult: cr} }

func outcome(cr table.CheckResult, code, note string) table.SubRow {
	return table.SubRow{CheckResult: cr, ResultCode: code, Note: note}
}

func edgeStrings(g *graph.Graph) []string {
	var out []string
	for _, e := range g.Edges() {
		out = append(out, e.String())
	}
	return out
}

func TestTableToGraphSimple(t *testing.T) {
	g, err := TableToGraph(tbl(
		decision("1", to(table.Yes("2")), outcome(table.No(""), "A01", "Fristüberschreitung")),
		decision("2", to(table.Yes(table.End)), outcome(table.No(""), "A02", "Gelieferte Daten ungültig")),
	))
	if err != nil {
		t.Fatalf("TableToGraph: %v", err)
	}
	if !g.Sealed() {
		t.Error("graph should be sealed")
	}
	if g.NodeCount() != 6 || g.EdgeCount() != 5 {
		t.Fatalf("nodes=%d edges=%d, want 6/5", g.NodeCount(), g.EdgeCount())
	}
	wantKeys := []string{"Start", "1", "A01", "2", "Ende", "A02"}
	if got := g.Keys(); !slices.Equal(got, wantKeys) {
		t.Errorf("Keys = %v, want %v", got, wantKeys)
	}
	wantEdges := []string{
		"Start -unconditional-> 1",
		"1 -yes-> 2",
		"1 -no-> A01",
		"2 -yes-> Ende",
		"2 -no-> A02",
	}
	if got := edgeStrings(g); !slices.Equal(got, wantEdges) {
		t.Errorf("Edges = %v, want %v", got, wantEdges)
	}
	if g.Meta().EBDCode != "E_0003" || g.Meta().Role != "NB" {
		t.Errorf("Meta = %+v", g.Meta())
	}
}

func TestTableToGraphStartsAtFirstRow(t *testing.T) {
	g, err := TableToGraph(tbl(
		decision("10", to(table.Yes("30")), outcome(table.No(""), "A01", "x")),
		decision("30", to(table.Yes(table.End)), outcome(table.No(""), "A02", "y")),
	))
	if err != nil {
		t.Fatal(err)
	}
	first, ok := g.First()
	if !ok || first.Key() != "10" {
		t.Errorf("First = %v, want 10", first)
	}
}

func TestTableToGraphForwardReference(t *testing.T) {
	g, err := TableToGraph(tbl(
		decision("1", to(table.Yes("3")), to(table.No("2"))),
		decision("2", to(table.Yes(table.End)), outcome(table.No(""), "A01", "x")),
		decision("3", to(table.Yes(table.End)), outcome(table.No(""), "A02", "y")),
	))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := g.Edge("1", "3"); !ok {
		t.Error("missing forward edge 1 -> 3")
	}
	if g.InDegree("Ende") != 2 {
		t.Errorf("InDegree(Ende) = %d, want 2", g.InDegree("Ende"))
	}
}

func TestTableToGraphOutcomeDedup(t *testing.T) {
	g, err := TableToGraph(tbl(
		decision("1", to(table.Yes("2")), outcome(table.No(""), "A11", "Cluster: Zustimmung\nBestellung ist angenommen")),
		decision("2", to(table.Yes(table.End)), outcome(table.No(""), "A11", "Cluster: Zustimmung\nBestellung ist angenommen.")),
	))
	if err != nil {
		t.Fatalf("TableToGraph: %v", err)
	}
	if g.InDegree("A11") != 2 {
		t.Errorf("InDegree(A11) = %d, want 2", g.InDegree("A11"))
	}
	n, _ := g.Node("A11")
	if note := n.(*graph.Outcome).Note; note != "Cluster: Zustimmung\nBestellung ist angenommen" {
		t.Errorf("first note should win, got %q", note)
	}
}

func TestTableToGraphAmbiguousOutcome(t *testing.T) {
	_, err := TableToGraph(tbl(
		decision("1", to(table.Yes("2")), outcome(table.No(""), "A01", "Done")),
		decision("2", to(table.Yes(table.End)), outcome(table.No(""), "A01", "Rejected")),
	))
	if !errs.Is(err, errs.ErrCodeAmbiguousOutcome) {
		t.Fatalf("err = %v, want AMBIGUOUS_OUTCOME", err)
	}
	var amb *errs.AmbiguousOutcomeError
	if !errors.As(err, &amb) {
		t.Fatalf("err %v does not carry AmbiguousOutcomeError", err)
	}
	if amb.Code != "A01" || amb.Note != "Done" || amb.OtherNote != "Rejected" {
		t.Errorf("details = %+v", amb)
	}
}

func TestTableToGraphMultiOutcomeCode(t *testing.T) {
	rows := []table.Row{
		decision("1", to(table.Yes("2")), outcome(table.No(""), "A**", "Stammdaten passen nicht")),
		decision("2", to(table.Yes("3")), outcome(table.No(""), "A**", "Zeitraum passt nicht")),
		decision("3", outcome(table.Yes(""), "A01", "ok"), outcome(table.No(""), "A04", "nicht ok")),
	}

	g, err := TableToGraph(tbl(rows...))
	if err != nil {
		t.Fatalf("TableToGraph: %v", err)
	}
	if g.NodeCount() != 8 || g.EdgeCount() != 7 {
		t.Errorf("nodes=%d edges=%d, want 8/7", g.NodeCount(), g.EdgeCount())
	}
	for _, key := range []string{"A**@1", "A**@2"} {
		if !g.HasNode(key) {
			t.Errorf("missing node %s", key)
		}
	}

	_, err = TableToGraph(tbl(rows...), WithMultiOutcomeCodes())
	if !errs.Is(err, errs.ErrCodeAmbiguousOutcome) {
		t.Errorf("without multi-outcome codes: err = %v, want AMBIGUOUS_OUTCOME", err)
	}
}

func TestTableToGraphMultiOutcomeSameNote(t *testing.T) {
	g, err := TableToGraph(tbl(
		decision("1", to(table.Yes("2")), outcome(table.No(""), "A**", "Abweichung")),
		decision("2", to(table.Yes(table.End)), outcome(table.No(""), "A**", "Abweichung.")),
	))
	if err != nil {
		t.Fatal(err)
	}
	if !g.HasNode("A**@1") || g.HasNode("A**@2") {
		t.Errorf("keys = %v, want a single A**@1", g.Keys())
	}
}

func TestTableToGraphTransition(t *testing.T) {
	g, err := TableToGraph(tbl(
		table.Row{StepNumber: "1", Description: "Zuordnung prüfen", SubRows: []table.SubRow{
			{CheckResult: table.Next("2"), Note: "Weiter mit Prüfung 2"},
		}},
		decision("2", to(table.Yes(table.End)), outcome(table.No(""), "A01", "x")),
	))
	if err != nil {
		t.Fatal(err)
	}
	n, _ := g.Node("1")
	tr, ok := n.(*graph.Transition)
	if !ok {
		t.Fatalf("node 1 is %T, want *graph.Transition", n)
	}
	if tr.Note != "Weiter mit Prüfung 2" {
		t.Errorf("Note = %q", tr.Note)
	}
	e, _ := g.Edge("1", "2")
	if e.Kind != graph.EdgeTransition || e.Note != "" {
		t.Errorf("edge = %+v", e)
	}
}

func TestTableToGraphTransitionalOutcome(t *testing.T) {
	g, err := TableToGraph(tbl(
		decision("1", outcome(table.Yes("2"), "A05", "Hinweis an den Lieferanten"), outcome(table.No(""), "A01", "x")),
		decision("2", to(table.Yes(table.End)), outcome(table.No(""), "A02", "y")),
	))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		"Start -unconditional-> 1",
		"1 -yes-> A05_2",
		"1 -no-> A01",
		"2 -yes-> Ende",
		"2 -no-> A02",
		"A05_2 -transitional_outcome-> 2",
	}
	if got := edgeStrings(g); !slices.Equal(got, want) {
		t.Errorf("Edges = %v, want %v", got, want)
	}
}

func TestTableToGraphReferences(t *testing.T) {
	g, err := TableToGraph(tbl(
		decision("1", to(table.Yes("2")), table.SubRow{
			CheckResult:   table.No(""),
			ResultCode:    "A01",
			Note:          "Es ist das EBD E_0621 zu nutzen, siehe auch EBD E_0622",
			EBDReferences: []string{"E_0622"},
		}),
		decision("2", to(table.Yes(table.End)), table.SubRow{
			CheckResult: table.No(""),
			ResultCode:  "A01",
			Note:        "Es ist das EBD E_0621 zu nutzen, siehe auch EBD E_0622.",
		}),
	))
	if err != nil {
		t.Fatal(err)
	}
	n, _ := g.Node("A01")
	if got := graph.References(n); !slices.Equal(got, []string{"E_0622", "E_0621"}) {
		t.Errorf("References = %v", got)
	}
}

func TestTableToGraphReferencePattern(t *testing.T) {
	g, err := TableToGraph(tbl(
		decision("1", to(table.Yes(table.End)), outcome(table.No(""), "A01", "siehe E_0401")),
	), WithReferencePattern(regexp.MustCompile(`(E_\d{4})`)))
	if err != nil {
		t.Fatal(err)
	}
	n, _ := g.Node("A01")
	if got := graph.References(n); !slices.Equal(got, []string{"E_0401"}) {
		t.Errorf("References = %v", got)
	}
}

func TestTableToGraphErrors(t *testing.T) {
	tests := []struct {
		name string
		rows []table.Row
		code errs.Code
	}{
		{
			name: "duplicate step",
			rows: []table.Row{
				decision("1", to(table.Yes("1*")), outcome(table.No(""), "A01", "x")),
				decision("1", to(table.Yes(table.End)), outcome(table.No(""), "A02", "y")),
			},
			code: errs.ErrCodeDuplicateStep,
		},
		{
			name: "unresolved step",
			rows: []table.Row{
				decision("1", to(table.Yes("7")), outcome(table.No(""), "A01", "x")),
			},
			code: errs.ErrCodeUnresolvedStep,
		},
		{
			name: "unresolved transitional outcome",
			rows: []table.Row{
				decision("1", outcome(table.Yes("9"), "A05", "x"), outcome(table.No(""), "A01", "y")),
			},
			code: errs.ErrCodeUnresolvedStep,
		},
		{
			name: "code before terminal marker",
			rows: []table.Row{
				decision("1", outcome(table.Yes(table.End), "A01", "x"), outcome(table.No(""), "A02", "y")),
			},
			code: errs.ErrCodeTerminalMisuse,
		},
		{
			name: "unsupported reference",
			rows: []table.Row{
				decision("1", to(table.Yes(table.End)), table.SubRow{
					CheckResult: table.No(""), ResultCode: "A01", EBDReferences: []string{"E_12"},
				}),
			},
			code: errs.ErrCodeUnsupportedReference,
		},
		{
			name: "branch without result",
			rows: []table.Row{
				decision("1", to(table.Next(table.End)), outcome(table.No(""), "A01", "x")),
			},
			code: errs.ErrCodeInvalidInput,
		},
		{
			name: "empty sub-row",
			rows: []table.Row{
				decision("1", to(table.Yes(table.End)), to(table.No(""))),
			},
			code: errs.ErrCodeInvalidInput,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := TableToGraph(tbl(tt.rows...))
			if !errs.Is(err, tt.code) {
				t.Fatalf("err = %v, want %s", err, tt.code)
			}
			if g != nil {
				t.Error("graph must be nil on error")
			}
		})
	}
}

func TestTableToGraphDeterministic(t *testing.T) {
	build := func() *graph.Graph {
		g, err := TableToGraph(tbl(
			decision("1", to(table.Yes("2")), to(table.No("3"))),
			decision("2", to(table.Yes("4")), outcome(table.No(""), "A01", "a")),
			decision("3", to(table.Yes("4")), outcome(table.No(""), "A02", "b")),
			decision("4", to(table.Yes(table.End)), outcome(table.No(""), "A03", "c")),
		))
		if err != nil {
			t.Fatal(err)
		}
		return g
	}
	a, b := build(), build()
	if !slices.Equal(a.Keys(), b.Keys()) || !slices.Equal(edgeStrings(a), edgeStrings(b)) {
		t.Error("two builds of the same table differ")
	}
}

func TestTableToGraphEmpty(t *testing.T) {
	in := tbl()
	in.Metadata.Remark = "Es ist das EBD E_0527 zu nutzen."
	g, err := TableToGraph(in)
	if err != nil {
		t.Fatal(err)
	}
	if got := g.Keys(); !slices.Equal(got, []string{"Empty"}) || g.EdgeCount() != 0 {
		t.Errorf("Keys = %v, edges = %d", got, g.EdgeCount())
	}
	if g.Meta().Remark == "" {
		t.Error("remark lost")
	}
}

func TestTableToGraphInstructions(t *testing.T) {
	in := tbl(decision("1", to(table.Yes(table.End)), outcome(table.No(""), "A01", "x")))
	in.MultiStepInstructions = []table.MultiStepInstruction{
		{InstructionText: "Für jede Messlokation", FirstStepNumberAffected: "1"},
	}
	g, err := TableToGraph(in)
	if err != nil {
		t.Fatal(err)
	}
	if got := g.Instructions(); len(got) != 1 || got[0].FirstStep != "1" {
		t.Errorf("Instructions = %+v", got)
	}
}

func TestTableToGraphNil(t *testing.T) {
	if _, err := TableToGraph(nil); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("err = %v", err)
	}
}

func TestNormalizeNote(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Done", "Done"},
		{"Done.", "Done"},
		{"Done!? ", "Done"},
		{"a, b;", "a, b"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := normalizeNote(tt.in); got != tt.want {
			t.Errorf("normalizeNote(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
