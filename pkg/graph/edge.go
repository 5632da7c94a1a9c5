package graph

import "fmt"

// EdgeKind enumerates the edge variants.
type EdgeKind int

const (
	// EdgeUnconditional connects Start to the first step.
	EdgeUnconditional EdgeKind = iota
	// EdgeToYes leaves a decision on a positive answer.
	EdgeToYes
	// EdgeToNo leaves a decision on a negative answer.
	EdgeToNo
	// EdgeTransition leaves a transition node.
	EdgeTransition
	// EdgeTransitionalOutcome leaves a transitional outcome for its next step.
	EdgeTransitionalOutcome
)

var edgeKindNames = [...]string{
	EdgeUnconditional:       "unconditional",
	EdgeToYes:               "yes",
	EdgeToNo:                "no",
	EdgeTransition:          "transition",
	EdgeTransitionalOutcome: "transitional_outcome",
}

func (k EdgeKind) String() string {
	if k < 0 || int(k) >= len(edgeKindNames) {
		return fmt.Sprintf("EdgeKind(%d)", int(k))
	}
	return edgeKindNames[k]
}

// ParseEdgeKind is the inverse of [EdgeKind.String].
func ParseEdgeKind(s string) (EdgeKind, error) {
	for k, name := range edgeKindNames {
		if name == s {
			return EdgeKind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown edge kind %q", s)
}

// Edge is a directed connection between two nodes of the same graph.
type Edge struct {
	Kind   EdgeKind
	Source Node
	Target Node
	Note   string
}

func (e Edge) String() string {
	return fmt.Sprintf("%s -%s-> %s", e.Source.Key(), e.Kind, e.Target.Key())
}
