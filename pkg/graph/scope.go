package graph

import (
	"slices"

	"github.com/matzehuels/ebdgraph/pkg/table"
)

// InstructionScope is the range of steps a multi-step instruction applies to.
// Steps are compared by their integer part, so "6*" belongs to the scope of 6.
type InstructionScope struct {
	Instruction Instruction
	From        int
	To          int  // inclusive; meaningless when Open
	Open        bool // the scope extends to the end of the graph
}

// Contains reports whether step falls into the scope.
func (s InstructionScope) Contains(step string) bool {
	n, ok := table.StepOrdinal(step)
	if !ok || n < s.From {
		return false
	}
	return s.Open || n <= s.To
}

// InstructionScopes returns one scope per instruction, ordered by first step.
// Each scope ends one step before the next instruction begins; the last one
// is open-ended. Instructions with a non-numeric first step are skipped, as
// is any instruction starting at the same step as an earlier one.
func (g *Graph) InstructionScopes() []InstructionScope {
	type start struct {
		inst Instruction
		from int
	}
	var starts []start
	for _, inst := range g.instructions {
		if n, ok := table.StepOrdinal(inst.FirstStep); ok {
			starts = append(starts, start{inst, n})
		}
	}
	slices.SortStableFunc(starts, func(a, b start) int { return a.from - b.from })
	starts = slices.CompactFunc(starts, func(a, b start) bool { return a.from == b.from })

	scopes := make([]InstructionScope, len(starts))
	for i, s := range starts {
		scopes[i] = InstructionScope{Instruction: s.inst, From: s.from}
		if i+1 < len(starts) {
			scopes[i].To = starts[i+1].from - 1
		} else {
			scopes[i].Open = true
		}
	}
	return scopes
}

// NodesInScope returns the step nodes that fall into s, in insertion order.
func (g *Graph) NodesInScope(s InstructionScope) []Node {
	var out []Node
	for _, n := range g.StepNodes() {
		step, _ := StepNumber(n)
		if s.Contains(step) {
			out = append(out, n)
		}
	}
	return out
}
