package plantuml

import (
	"fmt"
	"strings"

	errs "github.com/matzehuels/ebdgraph/pkg/errors"
	"github.com/matzehuels/ebdgraph/pkg/graph"
	"github.com/matzehuels/ebdgraph/pkg/graph/topology"
)

// DefaultIndent is added per nesting level.
const DefaultIndent = "    "

const header = `@startuml
skinparam Shadowing false
skinparam NoteBorderColor #f3f1f6
skinparam NoteBackgroundColor #f3f1f6
skinparam NoteFontSize 12
skinparam ActivityBorderColor none
skinparam ActivityBackgroundColor #7a8da1
skinparam ActivityFontSize 16
skinparam ArrowColor #7aab8a
skinparam ArrowFontSize 16
skinparam ActivityDiamondBackgroundColor #7aab8a
skinparam ActivityDiamondBorderColor #7aab8a
skinparam ActivityDiamondFontSize 18
skinparam defaultFontName DejaVu Serif Condensed
skinparam ActivityEndColor #669580
`

// Options configures PlantUML generation.
type Options struct {
	// Indent is added per nesting level. Empty means [DefaultIndent].
	Indent string
}

type renderer struct {
	g       *graph.Graph
	splices topology.Splices
	indent  string
	active  map[string]bool
}

// ToPlantUML renders g as a PlantUML activity diagram.
//
// The error carries NOT_EXACTLY_TWO_EDGES for a decision without exactly one
// yes and one no branch, and CYCLE or TOO_COMPLEX from the topology analysis.
func ToPlantUML(g *graph.Graph, opts Options) (string, error) {
	if opts.Indent == "" {
		opts.Indent = DefaultIndent
	}

	var body string
	if g.HasNode(graph.EmptyKey) {
		body = renderEmpty(g.Meta())
	} else {
		splices, err := topology.Analyze(g)
		if err != nil {
			return "", err
		}
		first, ok := g.First()
		if !ok {
			return "", errs.New(errs.ErrCodeInternal, "graph %s has no start edge", g.Meta().EBDCode)
		}
		r := &renderer{g: g, splices: splices, indent: opts.Indent, active: make(map[string]bool)}
		if body, err = r.node(first.Key(), "", false); err != nil {
			return "", err
		}
	}

	var b strings.Builder
	b.WriteString(header)
	b.WriteString(title(g.Meta()))
	b.WriteString(body)
	b.WriteString("\n@enduml\n")
	return b.String(), nil
}

func title(m graph.Metadata) string {
	var b strings.Builder
	fmt.Fprintf(&b, "title\n%s\n\n%s\n\n\n\nend title\n", m.Chapter, m.Section)
	fmt.Fprintf(&b, ":<b>%s</b>;\n", m.EBDCode)
	fmt.Fprintf(&b, "note right\n<b><i>Prüfende Rolle: %s\nend note\n\n", m.Role)
	return b.String()
}

func renderEmpty(m graph.Metadata) string {
	remark := m.Remark
	if remark == "" {
		remark = "Keine Prüfschritte"
	}
	return fmt.Sprintf(":%s;\nend\n", remark)
}

// node renders key and everything reachable from it. A merge node renders
// only when it is visited as the splice after its last common ancestor.
func (r *renderer) node(key, indent string, appendix bool) (string, error) {
	if r.g.InDegree(key) > 1 && !appendix {
		return "", nil
	}
	if r.active[key] {
		return "", errs.New(errs.ErrCodeCycle, "node %s is part of a cycle", key)
	}
	r.active[key] = true
	defer delete(r.active, key)

	n, ok := r.g.Node(key)
	if !ok {
		return "", errs.New(errs.ErrCodeInternal, "unknown node %s", key)
	}

	var (
		out string
		err error
	)
	switch n := n.(type) {
	case *graph.Decision:
		out, err = r.decision(n, indent)
	case *graph.Transition:
		out, err = r.transition(n, indent)
	case *graph.Outcome:
		out = r.outcome(n, indent)
	case *graph.TransitionalOutcome:
		out, err = r.transitionalOutcome(n, indent)
	case *graph.End:
		out = indent + "end\n"
	case *graph.Start, *graph.Empty:
		return "", errs.New(errs.ErrCodeInternal, "%s node inside the graph body", graph.KindOf(n))
	}
	if err != nil {
		return "", err
	}

	if merge, ok := r.splices.After(key); ok {
		tail, err := r.node(merge, indent, true)
		if err != nil {
			return "", err
		}
		out += tail
	}
	return out, nil
}

func (r *renderer) decision(n *graph.Decision, indent string) (string, error) {
	yes, no, err := branches(r.g, n.Key())
	if err != nil {
		return "", err
	}
	yesBlock, err := r.node(yes, indent+r.indent, false)
	if err != nil {
		return "", err
	}
	noBlock, err := r.node(no, indent+r.indent, false)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%sif (<b>%s: </b> %s) then (ja)\n", indent, n.StepNumber, oneLine(n.Question))
	b.WriteString(yesBlock)
	fmt.Fprintf(&b, "%selse (nein)\n", indent)
	b.WriteString(noBlock)
	fmt.Fprintf(&b, "%sendif\n", indent)
	return b.String(), nil
}

func (r *renderer) transition(n *graph.Transition, indent string) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s:<b>%s: </b> %s;\n", indent, n.StepNumber, oneLine(n.Question))
	if n.Note != "" {
		fmt.Fprintf(&b, "%snote right\n%s%s\n%send note\n", indent, indent+r.indent, r.reindent(n.Note, indent), indent)
	}
	next, err := single(r.g, n.Key())
	if err != nil {
		return "", err
	}
	rest, err := r.node(next, indent, false)
	if err != nil {
		return "", err
	}
	b.WriteString(rest)
	return b.String(), nil
}

func (r *renderer) outcome(n *graph.Outcome, indent string) string {
	var b strings.Builder
	if n.Code == "" {
		fmt.Fprintf(&b, "%s:%s;\n", indent, r.reindent(n.Note, indent))
	} else {
		fmt.Fprintf(&b, "%s:%s;\n", indent, n.Code)
		r.noteLeft(&b, n.Note, indent)
	}
	fmt.Fprintf(&b, "%skill;\n", indent)
	return b.String()
}

func (r *renderer) transitionalOutcome(n *graph.TransitionalOutcome, indent string) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s:%s;\n", indent, n.Code)
	r.noteLeft(&b, n.Note, indent)
	next, err := single(r.g, n.Key())
	if err != nil {
		return "", err
	}
	rest, err := r.node(next, indent, false)
	if err != nil {
		return "", err
	}
	b.WriteString(rest)
	return b.String(), nil
}

func (r *renderer) noteLeft(b *strings.Builder, note, indent string) {
	if note == "" {
		return
	}
	fmt.Fprintf(b, "%snote left\n%s%s\n%sendnote\n", indent, indent+r.indent, r.reindent(note, indent), indent)
}

// reindent keeps continuation lines of a note at the note's indentation.
func (r *renderer) reindent(s, indent string) string {
	return strings.ReplaceAll(s, "\n", "\n"+indent+r.indent)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// branches returns the yes and no targets of a decision.
func branches(g *graph.Graph, key string) (yes, no string, err error) {
	out := g.Outgoing(key)
	for _, e := range out {
		switch e.Kind {
		case graph.EdgeToYes:
			yes = e.Target.Key()
		case graph.EdgeToNo:
			no = e.Target.Key()
		}
	}
	if len(out) != 2 || yes == "" || no == "" {
		return "", "", errs.Wrap(errs.ErrCodeNotExactlyTwoEdges,
			&errs.OutDegreeError{Key: key, Targets: g.Successors(key)},
			"decision %s", key)
	}
	return yes, no, nil
}

// single returns the only successor of a non-branching node.
func single(g *graph.Graph, key string) (string, error) {
	succ := g.Successors(key)
	if len(succ) != 1 {
		return "", errs.New(errs.ErrCodeInternal,
			"node %s must have exactly one successor, has %d", key, len(succ))
	}
	return succ[0], nil
}
