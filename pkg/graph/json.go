package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

type graphJSON struct {
	Metadata     Metadata      `json:"metadata"`
	Nodes        []nodeJSON    `json:"nodes"`
	Edges        []edgeJSON    `json:"edges"`
	Instructions []Instruction `json:"instructions,omitempty"`
}

type nodeJSON struct {
	Key            string   `json:"key"`
	Kind           string   `json:"kind"`
	StepNumber     string   `json:"step_number,omitempty"`
	Question       string   `json:"question,omitempty"`
	Code           string   `json:"code,omitempty"`
	Note           string   `json:"note,omitempty"`
	SubsequentStep string   `json:"subsequent_step,omitempty"`
	Discriminator  string   `json:"discriminator,omitempty"`
	References     []string `json:"references,omitempty"`
}

type edgeJSON struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Kind   string `json:"kind"`
	Note   string `json:"note,omitempty"`
}

// Marshal encodes g as indented JSON.
func Marshal(g *Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteJSON(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteJSON encodes g as indented JSON and writes it to w.
// The output can be decoded again with [ReadJSON].
func WriteJSON(g *Graph, w io.Writer) error {
	out := graphJSON{
		Metadata:     g.meta,
		Nodes:        make([]nodeJSON, 0, g.NodeCount()),
		Edges:        make([]edgeJSON, 0, g.EdgeCount()),
		Instructions: g.instructions,
	}
	for _, n := range g.Nodes() {
		out.Nodes = append(out.Nodes, toNodeJSON(n))
	}
	for _, e := range g.Edges() {
		out.Edges = append(out.Edges, edgeJSON{
			Source: e.Source.Key(),
			Target: e.Target.Key(),
			Kind:   e.Kind.String(),
			Note:   e.Note,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteFile writes g as JSON to path.
func WriteFile(g *Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(g, f)
}

// ReadJSON decodes a graph written by [WriteJSON]. The result is sealed.
func ReadJSON(r io.Reader) (*Graph, error) {
	var data graphJSON
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	g := New(data.Metadata, data.Instructions)
	for _, nj := range data.Nodes {
		n, err := fromNodeJSON(nj)
		if err != nil {
			return nil, err
		}
		if n.Key() != nj.Key {
			return nil, fmt.Errorf("node %q: key does not match its fields (%q)", nj.Key, n.Key())
		}
		if err := g.AddNode(n); err != nil {
			return nil, err
		}
	}
	for _, ej := range data.Edges {
		kind, err := ParseEdgeKind(ej.Kind)
		if err != nil {
			return nil, err
		}
		src, ok := g.Node(ej.Source)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSource, ej.Source)
		}
		dst, ok := g.Node(ej.Target)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownTarget, ej.Target)
		}
		if err := g.AddEdge(Edge{Kind: kind, Source: src, Target: dst, Note: ej.Note}); err != nil {
			return nil, err
		}
	}
	g.Seal()
	return g, nil
}

func toNodeJSON(n Node) nodeJSON {
	out := nodeJSON{Key: n.Key(), Kind: KindOf(n).String()}
	switch n := n.(type) {
	case *Decision:
		out.StepNumber, out.Question = n.StepNumber, n.Question
	case *Transition:
		out.StepNumber, out.Question, out.Note = n.StepNumber, n.Question, n.Note
	case *Outcome:
		out.Code, out.Note, out.References, out.Discriminator = n.Code, n.Note, n.References, n.Discriminator
	case *TransitionalOutcome:
		out.Code, out.Note, out.References, out.SubsequentStep = n.Code, n.Note, n.References, n.SubsequentStep
	}
	return out
}

func fromNodeJSON(nj nodeJSON) (Node, error) {
	kind, err := ParseNodeKind(nj.Kind)
	if err != nil {
		return nil, err
	}
	switch kind {
	case KindStart:
		return &Start{}, nil
	case KindEnd:
		return &End{}, nil
	case KindEmpty:
		return &Empty{}, nil
	case KindDecision:
		return &Decision{StepNumber: nj.StepNumber, Question: nj.Question}, nil
	case KindTransition:
		return &Transition{StepNumber: nj.StepNumber, Question: nj.Question, Note: nj.Note}, nil
	case KindOutcome:
		return &Outcome{Code: nj.Code, Note: nj.Note, References: nj.References, Discriminator: nj.Discriminator}, nil
	default:
		return &TransitionalOutcome{Code: nj.Code, Note: nj.Note, SubsequentStep: nj.SubsequentStep, References: nj.References}, nil
	}
}
