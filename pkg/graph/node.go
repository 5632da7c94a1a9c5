package graph

import "fmt"

// Literal keys of the singleton nodes.
const (
	StartKey = "Start"
	EndKey   = "Ende"
	EmptyKey = "Empty"
)

// Node is a vertex of a decision graph. The set of implementations is closed.
type Node interface {
	// Key returns the identity of the node within its graph.
	Key() string
	node()
}

// Start is the entry point of the decision process.
type Start struct{}

// End is the exit of the decision process. There is at most one per graph.
type End struct{}

// Empty stands in for a table without rows; the graph metadata carries the
// remark explaining why.
type Empty struct{}

// Decision is a check step answered with yes or no.
type Decision struct {
	StepNumber string
	Question   string
}

// Transition is a check step with exactly one subsequent step.
type Transition struct {
	StepNumber string
	Question   string
	Note       string
}

// Outcome is a leaf of the decision tree.
type Outcome struct {
	Code string
	Note string
	// References lists the ebd codes of other decision trees named in Note.
	References []string
	// Discriminator separates outcomes whose code legitimately appears with
	// different notes (e.g. "A**"); it is the step number that produced them.
	Discriminator string
}

// TransitionalOutcome is an outcome after which the process continues.
type TransitionalOutcome struct {
	Code           string
	Note           string
	SubsequentStep string
	References     []string
}

func (*Start) Key() string { return StartKey }
func (*End) Key() string   { return EndKey }
func (*Empty) Key() string { return EmptyKey }

func (n *Decision) Key() string   { return n.StepNumber }
func (n *Transition) Key() string { return n.StepNumber }

func (n *Outcome) Key() string {
	switch {
	case n.Code == "":
		return n.Note
	case n.Discriminator != "":
		return n.Code + "@" + n.Discriminator
	default:
		return n.Code
	}
}

func (n *TransitionalOutcome) Key() string { return n.Code + "_" + n.SubsequentStep }

func (*Start) node()               {}
func (*End) node()                 {}
func (*Empty) node()               {}
func (*Decision) node()            {}
func (*Transition) node()          {}
func (*Outcome) node()             {}
func (*TransitionalOutcome) node() {}

// NodeKind enumerates the node variants.
type NodeKind int

const (
	KindStart NodeKind = iota
	KindEnd
	KindEmpty
	KindDecision
	KindTransition
	KindOutcome
	KindTransitionalOutcome
)

var nodeKindNames = [...]string{
	KindStart:               "start",
	KindEnd:                 "end",
	KindEmpty:               "empty",
	KindDecision:            "decision",
	KindTransition:          "transition",
	KindOutcome:             "outcome",
	KindTransitionalOutcome: "transitional_outcome",
}

func (k NodeKind) String() string {
	if k < 0 || int(k) >= len(nodeKindNames) {
		return fmt.Sprintf("NodeKind(%d)", int(k))
	}
	return nodeKindNames[k]
}

// ParseNodeKind is the inverse of [NodeKind.String].
func ParseNodeKind(s string) (NodeKind, error) {
	for k, name := range nodeKindNames {
		if name == s {
			return NodeKind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown node kind %q", s)
}

// KindOf returns the variant of n. It panics on a nil or foreign node.
func KindOf(n Node) NodeKind {
	switch n.(type) {
	case *Start:
		return KindStart
	case *End:
		return KindEnd
	case *Empty:
		return KindEmpty
	case *Decision:
		return KindDecision
	case *Transition:
		return KindTransition
	case *Outcome:
		return KindOutcome
	case *TransitionalOutcome:
		return KindTransitionalOutcome
	}
	panic(fmt.Sprintf("graph: unknown node type %T", n))
}

// StepNumber returns the step number of decision and transition nodes.
func StepNumber(n Node) (string, bool) {
	switch n := n.(type) {
	case *Decision:
		return n.StepNumber, true
	case *Transition:
		return n.StepNumber, true
	}
	return "", false
}

// References returns the cross-references of outcome nodes.
func References(n Node) []string {
	switch n := n.(type) {
	case *Outcome:
		return n.References
	case *TransitionalOutcome:
		return n.References
	}
	return nil
}
