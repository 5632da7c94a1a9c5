package dot

import (
	"fmt"
	"regexp"
	"strings"

	errs "github.com/matzehuels/ebdgraph/pkg/errors"
	"github.com/matzehuels/ebdgraph/pkg/graph"
	"github.com/matzehuels/ebdgraph/pkg/render"
)

// Defaults for [Options].
const (
	DefaultIndent           = "    "
	DefaultLabelWidth       = 80
	DefaultInstructionWidth = 50
)

const (
	fontName    = "Roboto, sans-serif"
	nodeAttrs   = `margin="0.2,0.12", shape=box, style="filled,rounded", penwidth=0.0`
	edgeColor   = "#88a0d6"
	br          = `<BR align="left"/>`
	linkColor   = "#0066cc"
	startColor  = "#8ba2d7"
	endColor    = "#8ba2d7"
	emptyColor  = "#7a8da1"
	stepColor   = "#c2cee9"
	resultColor = "#c4cac1"
	msiColor    = "#e6f3ff"
)

// Options configures DOT generation.
type Options struct {
	// Indent is added per nesting level. Empty means [DefaultIndent].
	Indent string
	// LabelWidth is the wrap width of node labels. Zero means [DefaultLabelWidth].
	LabelWidth int
	// InstructionWidth is the wrap width of multi-step instruction labels.
	// Zero means [DefaultInstructionWidth].
	InstructionWidth int
	// LinkTemplate turns references to other decision trees into links. It
	// must contain "{ebd_code}". Empty disables links.
	LinkTemplate string
}

func (o *Options) setDefaults() {
	if o.Indent == "" {
		o.Indent = DefaultIndent
	}
	if o.LabelWidth <= 0 {
		o.LabelWidth = DefaultLabelWidth
	}
	if o.InstructionWidth <= 0 {
		o.InstructionWidth = DefaultInstructionWidth
	}
}

type renderer struct {
	g    *graph.Graph
	opts Options
}

// ToDOT renders g as a Graphviz digraph.
//
// Nodes are declared in insertion order, except for steps covered by a
// multi-step instruction, which are declared inside that instruction's
// cluster. The only error is an invalid link template.
func ToDOT(g *graph.Graph, opts Options) (string, error) {
	opts.setDefaults()
	if err := errs.ValidateLinkTemplate(opts.LinkTemplate); err != nil {
		return "", err
	}
	r := &renderer{g: g, opts: opts}
	in := opts.Indent

	var b strings.Builder
	b.WriteString("digraph D {\n")
	for _, attr := range [][2]string{
		{"labelloc", `"t"`},
		{"label", "<" + r.title() + ">"},
		{"ratio", `"compress"`},
		{"concentrate", "true"},
		{"pack", "true"},
		{"rankdir", "TB"},
		{"packmode", `"array"`},
		{"size", `"20,20"`},
		{"fontsize", "12"},
		{"pad", "0.25"},
	} {
		fmt.Fprintf(&b, "%s%s=%s;\n", in, attr[0], attr[1])
	}

	b.WriteString(strings.Join(r.nodes(in), "\n"))
	b.WriteString("\n\n")
	if g.HasNode(graph.StartKey) {
		var edges []string
		for _, e := range g.Edges() {
			edges = append(edges, edge(e, in))
		}
		b.WriteString(strings.Join(edges, "\n"))
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\n%sbgcolor=\"transparent\";\nfontname=%q;\n}", in, fontName)
	return b.String(), nil
}

func (r *renderer) title() string {
	m := r.g.Meta()
	return fmt.Sprintf(`<B><FONT POINT-SIZE="18">%s</FONT></B>%s<BR/><B><FONT POINT-SIZE="16">%s</FONT></B>%s<BR/><BR/><BR/>`,
		escape(m.Chapter), br, escape(m.Section), br)
}

// nodes declares clusters first, then every node not inside a cluster.
func (r *renderer) nodes(indent string) []string {
	var (
		parts     []string
		clustered = make(map[string]bool)
	)
	inner := indent + r.opts.Indent
	for _, s := range r.g.InstructionScopes() {
		key := "msi_" + s.Instruction.FirstStep
		lines := []string{
			fmt.Sprintf("%ssubgraph %s {", indent, quote("cluster_"+key)),
			inner + `style="dashed,rounded";`,
			inner + `bgcolor="#f0f7ff";`,
			inner + `color="#888888";`,
			inner + "penwidth=1.5;",
			inner + "margin=16;",
			r.instruction(key, s.Instruction, inner),
		}
		for _, n := range r.g.NodesInScope(s) {
			lines = append(lines, r.node(n, inner))
			clustered[n.Key()] = true
		}
		lines = append(lines, indent+"}")
		parts = append(parts, strings.Join(lines, "\n"))
	}

	for _, n := range r.g.Nodes() {
		if !clustered[n.Key()] {
			parts = append(parts, r.node(n, indent))
		}
	}
	return parts
}

func (r *renderer) instruction(key string, inst graph.Instruction, indent string) string {
	text := render.AddLineBreaks(inst.Text, r.opts.InstructionWidth, "\n")
	label := "<FONT><I>" + strings.ReplaceAll(escape(text), "\n", br) + "</I></FONT>" + br
	return fmt.Sprintf(`%s%s [margin="0.2,0.12", shape=note, style=filled, penwidth=0.0, fillcolor=%q, label=<%s>, fontname=%q];`,
		indent, quote(key), msiColor, label, fontName)
}

func (r *renderer) node(n graph.Node, indent string) string {
	m := r.g.Meta()
	var (
		color, label string
		refs         []string
	)
	switch n := n.(type) {
	case *graph.Start:
		color = startColor
		label = fmt.Sprintf(`<B>%s</B>%s<FONT>Prüfende Rolle: <B>%s</B></FONT><BR align="center"/>`,
			escape(m.EBDCode), br, escape(m.Role))
	case *graph.Empty:
		color = emptyColor
		label = fmt.Sprintf(`<B>%s</B><BR align="center"/>`, escape(m.EBDCode))
		if m.Remark != "" {
			label += fmt.Sprintf(`<FONT>%s</FONT><BR align="center"/>`, escape(m.Remark))
		}
	case *graph.End:
		return fmt.Sprintf("%s%s [%s, fillcolor=%q, label=%q, fontname=%q];",
			indent, quote(n.Key()), nodeAttrs, endColor, graph.EndKey, fontName)
	case *graph.Decision:
		color = stepColor
		label = fmt.Sprintf("<B>%s: </B>%s%s", escape(n.StepNumber), r.label(n.Question, nil), br)
	case *graph.Transition:
		color = stepColor
		label = fmt.Sprintf("<B>%s: </B>%s%s", escape(n.StepNumber), r.label(n.Question, nil), br)
		if n.Note != "" {
			label += "<FONT>" + r.label(n.Note, nil) + br + "</FONT>"
		}
	case *graph.Outcome:
		color, refs = resultColor, n.References
		label = r.result(n.Code, n.Note, refs)
	case *graph.TransitionalOutcome:
		color, refs = resultColor, n.References
		label = r.result(n.Code, n.Note, refs)
	}

	attrs := fmt.Sprintf("%s, fillcolor=%q, label=<%s>, fontname=%q", nodeAttrs, color, label, fontName)
	if r.opts.LinkTemplate != "" && len(refs) == 1 {
		attrs += fmt.Sprintf(", href=%q", r.link(refs[0]))
	}
	return fmt.Sprintf("%s%s [%s];", indent, quote(n.Key()), attrs)
}

func (r *renderer) result(code, note string, refs []string) string {
	var label string
	if code != "" {
		label = "<B>" + escape(code) + "</B>" + br + br
	}
	if note != "" {
		label += "<FONT>" + r.label(note, refs) + br + "</FONT>"
	}
	return label
}

// label wraps, escapes and converts newlines to left-aligned breaks. With
// a link template, mentions of refs are styled as links.
func (r *renderer) label(text string, refs []string) string {
	s := escape(render.AddLineBreaks(text, r.opts.LabelWidth, "\n"))
	s = strings.ReplaceAll(s, "\n", br)
	if r.opts.LinkTemplate == "" {
		return s
	}
	for _, ref := range refs {
		re := regexp.MustCompile(`EBD((?:\s|` + regexp.QuoteMeta(br) + `)+)` + regexp.QuoteMeta(ref))
		s = re.ReplaceAllString(s, `<FONT COLOR="`+linkColor+`"><U>EBD${1}`+ref+`</U></FONT>`)
	}
	return s
}

func (r *renderer) link(ref string) string {
	return strings.ReplaceAll(r.opts.LinkTemplate, errs.LinkPlaceholder, ref)
}

func edge(e graph.Edge, indent string) string {
	src, dst := quote(e.Source.Key()), quote(e.Target.Key())
	switch e.Kind {
	case graph.EdgeToYes:
		return fmt.Sprintf("%s%s -> %s [label=<<B>JA</B>>, color=%q, fontname=%q];", indent, src, dst, edgeColor, fontName)
	case graph.EdgeToNo:
		return fmt.Sprintf("%s%s -> %s [label=<<B>NEIN</B>>, color=%q, fontname=%q];", indent, src, dst, edgeColor, fontName)
	default:
		return fmt.Sprintf("%s%s -> %s [color=%q];", indent, src, dst, edgeColor)
	}
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escape(s string) string { return htmlEscaper.Replace(s) }

// quote returns s as a DOT double-quoted ID.
func quote(s string) string {
	return `"` + strings.ReplaceAll(strings.ReplaceAll(s, `\`, `\\`), `"`, `\"`) + `"`
}
