package convert

import (
	"regexp"
	"slices"
	"strings"
	"unicode"

	errs "github.com/matzehuels/ebdgraph/pkg/errors"
	"github.com/matzehuels/ebdgraph/pkg/graph"
	"github.com/matzehuels/ebdgraph/pkg/table"
)

type builder struct {
	multi map[string]bool
	refs  *regexp.Regexp

	g     *graph.Graph
	start *graph.Start
	end   *graph.End
	steps map[string]graph.Node

	// targets[i][j] is the node sub-row j of row i points at when that node
	// is created in the first pass (outcomes, End); nil means "resolve the
	// subsequent step in the second pass".
	targets      [][]graph.Node
	multiNodes   map[string]*graph.Outcome
	transitional []*graph.TransitionalOutcome
}

// TableToGraph converts a decision table into a sealed graph.
//
// Start is connected to the first row in table order. Errors carry the codes
// DUPLICATE_STEP, UNRESOLVED_STEP, TERMINAL_MISUSE, AMBIGUOUS_OUTCOME,
// UNSUPPORTED_REFERENCE or INVALID_INPUT; the graph is nil in that case.
// A table without rows yields a graph holding a single Empty node.
func TableToGraph(t *table.Table, opts ...Option) (*graph.Graph, error) {
	if t == nil {
		return nil, errs.New(errs.ErrCodeInvalidInput, "table is nil")
	}
	b := &builder{refs: DefaultReferencePattern}
	WithMultiOutcomeCodes(DefaultMultiOutcomeCodes...)(b)
	for _, opt := range opts {
		opt(b)
	}
	b.g = graph.New(metadata(t.Metadata), instructions(t.MultiStepInstructions))
	b.steps = make(map[string]graph.Node, len(t.Rows))
	b.multiNodes = make(map[string]*graph.Outcome)

	if t.IsEmpty() {
		if err := b.g.AddNode(&graph.Empty{}); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInternal, err, "add empty node")
		}
		b.g.Seal()
		return b.g, nil
	}

	if err := b.addNodes(t); err != nil {
		return nil, err
	}
	if err := b.addEdges(t); err != nil {
		return nil, err
	}
	b.g.Seal()
	return b.g, nil
}

func (b *builder) addNodes(t *table.Table) error {
	b.start = &graph.Start{}
	if err := b.g.AddNode(b.start); err != nil {
		return errs.Wrap(errs.ErrCodeInternal, err, "add start node")
	}

	b.targets = make([][]graph.Node, len(t.Rows))
	for i, row := range t.Rows {
		if len(row.SubRows) == 0 {
			return errs.New(errs.ErrCodeInvalidInput, "step %s has no sub-rows", row.StepNumber)
		}
		if _, dup := b.steps[row.StepNumber]; dup {
			return errs.New(errs.ErrCodeDuplicateStep, "step %s is defined more than once", row.StepNumber)
		}

		var n graph.Node
		if row.IsTransition() {
			tr := &graph.Transition{StepNumber: row.StepNumber, Question: row.Description}
			if sr := row.SubRows[0]; sr.ResultCode == "" {
				tr.Note = sr.Note
			}
			n = tr
		} else {
			n = &graph.Decision{StepNumber: row.StepNumber, Question: row.Description}
		}
		if err := b.g.AddNode(n); err != nil {
			return errs.Wrap(errs.ErrCodeDuplicateStep, err, "step %s", row.StepNumber)
		}
		b.steps[row.StepNumber] = n

		b.targets[i] = make([]graph.Node, len(row.SubRows))
		for j, sr := range row.SubRows {
			target, err := b.subRowNode(row.StepNumber, sr)
			if err != nil {
				return err
			}
			b.targets[i][j] = target
		}
	}
	return nil
}

// subRowNode creates (or reuses) the node a sub-row points at directly.
// It returns nil for sub-rows that continue at another step.
func (b *builder) subRowNode(step string, sr table.SubRow) (graph.Node, error) {
	next := sr.CheckResult.SubsequentStepNumber
	switch {
	case sr.ResultCode != "" && next == table.End:
		return nil, errs.New(errs.ErrCodeTerminalMisuse,
			"step %s: outcome %s must not continue at %q", step, sr.ResultCode, table.End)
	case sr.ResultCode != "" && next != "":
		refs, err := b.references(step, sr)
		if err != nil {
			return nil, err
		}
		return b.transitionalOutcome(step, sr, refs)
	case sr.ResultCode != "":
		refs, err := b.references(step, sr)
		if err != nil {
			return nil, err
		}
		return b.outcome(step, sr, refs)
	case next == table.End:
		return b.endNode()
	case next != "":
		return nil, nil
	case sr.Note != "":
		refs, err := b.references(step, sr)
		if err != nil {
			return nil, err
		}
		return b.outcome(step, sr, refs)
	}
	return nil, errs.New(errs.ErrCodeInvalidInput,
		"step %s: sub-row has neither result code, note nor subsequent step", step)
}

func (b *builder) endNode() (graph.Node, error) {
	if b.end == nil {
		b.end = &graph.End{}
		if err := b.g.AddNode(b.end); err != nil {
			return nil, errs.Wrap(errs.ErrCodeTerminalMisuse, err, "terminal marker %q", table.End)
		}
	}
	return b.end, nil
}

func (b *builder) outcome(step string, sr table.SubRow, refs []string) (graph.Node, error) {
	norm := normalizeNote(sr.Note)

	if sr.ResultCode != "" && b.multi[sr.ResultCode] {
		mk := sr.ResultCode + "\x00" + norm
		if n, ok := b.multiNodes[mk]; ok {
			n.References = union(n.References, refs)
			return n, nil
		}
		n := &graph.Outcome{Code: sr.ResultCode, Note: sr.Note, References: refs, Discriminator: step}
		if err := b.g.AddNode(n); err != nil {
			return nil, errs.Wrap(errs.ErrCodeAmbiguousOutcome, err, "step %s", step)
		}
		b.multiNodes[mk] = n
		return n, nil
	}

	n := &graph.Outcome{Code: sr.ResultCode, Note: sr.Note, References: refs}
	existing, ok := b.g.Node(n.Key())
	if !ok {
		if err := b.g.AddNode(n); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "step %s", step)
		}
		return n, nil
	}
	o, isOutcome := existing.(*graph.Outcome)
	if !isOutcome {
		return nil, errs.New(errs.ErrCodeDuplicateStep,
			"step %s: outcome key %q collides with a %s node", step, n.Key(), graph.KindOf(existing))
	}
	if normalizeNote(o.Note) != norm {
		return nil, errs.Wrap(errs.ErrCodeAmbiguousOutcome,
			&errs.AmbiguousOutcomeError{Code: sr.ResultCode, Note: o.Note, OtherNote: sr.Note},
			"step %s", step)
	}
	o.References = union(o.References, refs)
	return o, nil
}

func (b *builder) transitionalOutcome(step string, sr table.SubRow, refs []string) (graph.Node, error) {
	n := &graph.TransitionalOutcome{
		Code:           sr.ResultCode,
		Note:           sr.Note,
		SubsequentStep: sr.CheckResult.SubsequentStepNumber,
		References:     refs,
	}
	existing, ok := b.g.Node(n.Key())
	if !ok {
		if err := b.g.AddNode(n); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "step %s", step)
		}
		b.transitional = append(b.transitional, n)
		return n, nil
	}
	o, isTransitional := existing.(*graph.TransitionalOutcome)
	if !isTransitional {
		return nil, errs.New(errs.ErrCodeDuplicateStep,
			"step %s: outcome key %q collides with a %s node", step, n.Key(), graph.KindOf(existing))
	}
	if normalizeNote(o.Note) != normalizeNote(sr.Note) {
		return nil, errs.Wrap(errs.ErrCodeAmbiguousOutcome,
			&errs.AmbiguousOutcomeError{Code: sr.ResultCode, Note: o.Note, OtherNote: sr.Note},
			"step %s", step)
	}
	o.References = union(o.References, refs)
	return o, nil
}

func (b *builder) addEdges(t *table.Table) error {
	first := b.steps[t.Rows[0].StepNumber]
	if err := b.g.AddEdge(graph.Edge{Kind: graph.EdgeUnconditional, Source: b.start, Target: first}); err != nil {
		return errs.Wrap(errs.ErrCodeInternal, err, "connect start")
	}

	for i, row := range t.Rows {
		src := b.steps[row.StepNumber]
		for j, sr := range row.SubRows {
			kind, err := edgeKind(src, sr)
			if err != nil {
				return err
			}
			edge := graph.Edge{Kind: kind, Source: src, Target: b.targets[i][j]}
			if edge.Target == nil {
				next := sr.CheckResult.SubsequentStepNumber
				target, ok := b.steps[next]
				if !ok {
					return errs.New(errs.ErrCodeUnresolvedStep,
						"step %s refers to unknown step %s", row.StepNumber, next)
				}
				edge.Target = target
				if kind != graph.EdgeTransition {
					edge.Note = sr.Note
				}
			}
			if err := b.g.AddEdge(edge); err != nil {
				return errs.Wrap(errs.ErrCodeInternal, err, "step %s", row.StepNumber)
			}
		}
	}

	for _, n := range b.transitional {
		target, ok := b.steps[n.SubsequentStep]
		if !ok {
			return errs.New(errs.ErrCodeUnresolvedStep,
				"outcome %s refers to unknown step %s", n.Code, n.SubsequentStep)
		}
		edge := graph.Edge{Kind: graph.EdgeTransitionalOutcome, Source: n, Target: target}
		if err := b.g.AddEdge(edge); err != nil {
			return errs.Wrap(errs.ErrCodeInternal, err, "outcome %s", n.Key())
		}
	}
	return nil
}

func edgeKind(src graph.Node, sr table.SubRow) (graph.EdgeKind, error) {
	if _, ok := src.(*graph.Transition); ok {
		return graph.EdgeTransition, nil
	}
	switch r := sr.CheckResult.Result; {
	case r == nil:
		return 0, errs.New(errs.ErrCodeInvalidInput,
			"step %s: branching sub-row without check result", src.Key())
	case *r:
		return graph.EdgeToYes, nil
	default:
		return graph.EdgeToNo, nil
	}
}

// references returns the input-supplied references of sr followed by the
// ones mentioned in its note, without duplicates.
func (b *builder) references(step string, sr table.SubRow) ([]string, error) {
	var refs []string
	for _, r := range sr.EBDReferences {
		if !supportedReference.MatchString(r) {
			return nil, errs.New(errs.ErrCodeUnsupportedReference,
				"step %s: unsupported reference %q (want E_ followed by 4 digits)", step, r)
		}
		refs = union(refs, []string{r})
	}
	for _, m := range b.refs.FindAllStringSubmatch(sr.Note, -1) {
		if len(m) < 2 {
			continue
		}
		if !supportedReference.MatchString(m[1]) {
			return nil, errs.New(errs.ErrCodeUnsupportedReference,
				"step %s: unsupported reference %q in note", step, m[1])
		}
		refs = union(refs, m[1:2])
	}
	return refs, nil
}

// normalizeNote strips trailing punctuation and whitespace, so that
// "Done" and "Done." compare equal.
func normalizeNote(s string) string {
	return strings.TrimRightFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || strings.ContainsRune(".!?;:,", r)
	})
}

func union(a, b []string) []string {
	for _, s := range b {
		if !slices.Contains(a, s) {
			a = append(a, s)
		}
	}
	return a
}

func metadata(m table.Metadata) graph.Metadata {
	return graph.Metadata{
		EBDCode: m.EBDCode,
		Chapter: m.Chapter,
		Section: m.Section,
		EBDName: m.EBDName,
		Role:    m.Role,
		Remark:  m.Remark,
	}
}

func instructions(msis []table.MultiStepInstruction) []graph.Instruction {
	if len(msis) == 0 {
		return nil
	}
	out := make([]graph.Instruction, len(msis))
	for i, m := range msis {
		out[i] = graph.Instruction{Text: m.InstructionText, FirstStep: m.FirstStepNumberAffected}
	}
	return out
}
