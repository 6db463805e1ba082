package tree

import "strings"

// Kind identifies a node variant.
type Kind uint8

// Node kinds. The set is closed.
const (
	KindText Kind = iota
	KindHeading
	KindEmphasis
	KindList
	KindListItem
	KindListEnd
	KindMathBlock
	KindMathInline
	KindBreak
)

var kindNames = [...]string{
	KindText:       "text",
	KindHeading:    "heading",
	KindEmphasis:   "emphasis",
	KindList:       "list",
	KindListItem:   "item",
	KindListEnd:    "list-end",
	KindMathBlock:  "math-block",
	KindMathInline: "math-inline",
	KindBreak:      "break",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Node is one unit of the rendered document.
// Implementations are the pointer types declared in this file;
// consumers dispatch with a type switch.
type Node interface {
	Kind() Kind
	Span() Span
	node()
}

// Text is literal text, never interpreted as markup.
type Text struct {
	Value string
	Pos   Span
}

// Heading is a section (level 1) or subsection (level 2) title.
type Heading struct {
	Level    int
	Children []Node
	Pos      Span
}

// EmphasisStyle selects the visual emphasis of an Emphasis node.
type EmphasisStyle uint8

// Emphasis styles.
const (
	Bold EmphasisStyle = iota
	Italic
	Underline
)

func (s EmphasisStyle) String() string {
	switch s {
	case Bold:
		return "bold"
	case Italic:
		return "italic"
	case Underline:
		return "underline"
	}
	return "unknown"
}

// Emphasis wraps inline children in bold, italic or underline.
type Emphasis struct {
	Style    EmphasisStyle
	Children []Node
	Pos      Span
}

// List is an itemize environment. Closed reports whether a matching
// \end{itemize} was seen.
type List struct {
	Children []Node
	Closed   bool
	Pos      Span
}

// ListItem is one \item of a list.
type ListItem struct {
	Children []Node
	Pos      Span
}

// ListEnd marks an \end{itemize} that had no open list.
type ListEnd struct {
	Pos Span
}

// Math is a resolved math region. Markup holds the backend output when
// typesetting succeeded; otherwise Err is set and Source is shown as errored.
type Math struct {
	Delim  Delimiter
	Source string // verbatim content between the delimiters
	Markup string
	Err    error
	Pos    Span
}

// Failed reports whether the backend rejected the content.
func (m *Math) Failed() bool { return m.Err != nil }

// Raw returns the original math text including its delimiters.
func (m *Math) Raw() string {
	open, closer := m.Delim.Delims()
	return open + m.Source + closer
}

// Break is a paragraph break produced by a blank line.
type Break struct {
	Pos Span
}

func (n *Text) Kind() Kind     { return KindText }
func (n *Heading) Kind() Kind  { return KindHeading }
func (n *Emphasis) Kind() Kind { return KindEmphasis }
func (n *List) Kind() Kind     { return KindList }
func (n *ListItem) Kind() Kind { return KindListItem }
func (n *ListEnd) Kind() Kind  { return KindListEnd }
func (n *Break) Kind() Kind    { return KindBreak }

func (n *Math) Kind() Kind {
	if n.Delim.Display() {
		return KindMathBlock
	}
	return KindMathInline
}

func (n *Text) Span() Span     { return n.Pos }
func (n *Heading) Span() Span  { return n.Pos }
func (n *Emphasis) Span() Span { return n.Pos }
func (n *List) Span() Span     { return n.Pos }
func (n *ListItem) Span() Span { return n.Pos }
func (n *ListEnd) Span() Span  { return n.Pos }
func (n *Math) Span() Span     { return n.Pos }
func (n *Break) Span() Span    { return n.Pos }

func (*Text) node()     {}
func (*Heading) node()  {}
func (*Emphasis) node() {}
func (*List) node()     {}
func (*ListItem) node() {}
func (*ListEnd) node()  {}
func (*Math) node()     {}
func (*Break) node()    {}

// Children returns the child slice of container nodes, nil otherwise.
func Children(n Node) []Node {
	switch n := n.(type) {
	case *Heading:
		return n.Children
	case *Emphasis:
		return n.Children
	case *List:
		return n.Children
	case *ListItem:
		return n.Children
	}
	return nil
}

// SetChildren replaces the children of a container node.
// It is a no-op for leaf nodes.
func SetChildren(n Node, children []Node) {
	switch n := n.(type) {
	case *Heading:
		n.Children = children
	case *Emphasis:
		n.Children = children
	case *List:
		n.Children = children
	case *ListItem:
		n.Children = children
	}
}

// PlainText flattens nodes to their visible text. Math contributes its raw
// source with delimiters.
func PlainText(nodes []Node) string {
	var b strings.Builder
	writePlain(&b, nodes)
	return b.String()
}

func writePlain(b *strings.Builder, nodes []Node) {
	for _, n := range nodes {
		switch n := n.(type) {
		case *Text:
			b.WriteString(n.Value)
		case *Math:
			b.WriteString(n.Raw())
		case *Break:
			b.WriteString("\n\n")
		default:
			writePlain(b, Children(n))
		}
	}
}
