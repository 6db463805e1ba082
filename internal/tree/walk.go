package tree

import "encoding/json"

// Walk visits nodes depth-first in source order. Returning false from fn
// skips the children of that node.
func Walk(nodes []Node, fn func(Node) bool) {
	for _, n := range nodes {
		if fn(n) {
			Walk(Children(n), fn)
		}
	}
}

// Count returns the number of nodes of kind k, at any depth.
func Count(nodes []Node, k Kind) int {
	count := 0
	Walk(nodes, func(n Node) bool {
		if n.Kind() == k {
			count++
		}
		return true
	})
	return count
}

// Equal reports whether two node sequences are structurally identical.
// Math errors compare by message.
func Equal(a, b []Node) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !equalNode(a[i], b[i]) {
			return false
		}
	}
	return true
}

func equalNode(a, b Node) bool {
	if a.Kind() != b.Kind() || a.Span() != b.Span() {
		return false
	}
	switch x := a.(type) {
	case *Text:
		return x.Value == b.(*Text).Value
	case *Heading:
		y := b.(*Heading)
		return x.Level == y.Level && Equal(x.Children, y.Children)
	case *Emphasis:
		y := b.(*Emphasis)
		return x.Style == y.Style && Equal(x.Children, y.Children)
	case *List:
		y := b.(*List)
		return x.Closed == y.Closed && Equal(x.Children, y.Children)
	case *ListItem:
		return Equal(x.Children, b.(*ListItem).Children)
	case *Math:
		y := b.(*Math)
		return x.Delim == y.Delim && x.Source == y.Source &&
			x.Markup == y.Markup && errText(x.Err) == errText(y.Err)
	}
	return true
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// jsonNode is the wire form of a node.
type jsonNode struct {
	Kind     string      `json:"kind"`
	Start    uint32      `json:"start"`
	End      uint32      `json:"end"`
	Level    int         `json:"level,omitempty"`
	Style    string      `json:"style,omitempty"`
	Text     string      `json:"text,omitempty"`
	Markup   string      `json:"markup,omitempty"`
	Error    string      `json:"error,omitempty"`
	Closed   *bool       `json:"closed,omitempty"`
	Children []*jsonNode `json:"children,omitempty"`
}

// MarshalJSON encodes nodes as an indented JSON array.
func MarshalJSON(nodes []Node) ([]byte, error) {
	return json.MarshalIndent(toJSON(nodes), "", "  ")
}

func toJSON(nodes []Node) []*jsonNode {
	out := make([]*jsonNode, 0, len(nodes))
	for _, n := range nodes {
		sp := n.Span()
		j := &jsonNode{Kind: n.Kind().String(), Start: sp.Start, End: sp.End}
		switch n := n.(type) {
		case *Text:
			j.Text = n.Value
		case *Heading:
			j.Level = n.Level
		case *Emphasis:
			j.Style = n.Style.String()
		case *List:
			closed := n.Closed
			j.Closed = &closed
		case *Math:
			j.Style = n.Delim.String()
			j.Text = n.Source
			j.Markup = n.Markup
			j.Error = errText(n.Err)
		}
		if children := Children(n); len(children) > 0 {
			j.Children = toJSON(children)
		}
		out = append(out, j)
	}
	return out
}
