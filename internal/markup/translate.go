package markup

import (
	"strings"

	"github.com/alnah/go-tex2pdf/internal/tree"
)

// Translate converts src into a node sequence. It never fails: commands it
// cannot read stay literal text, and list commands are not checked for
// balance beyond what is needed to nest them.
func Translate(src string) []tree.Node {
	t := newTokenizer(src)
	b := &builder{t: t}
	for _, tok := range t.scan(0, len(src), false) {
		b.add(tok)
	}
	return b.finish(len(src))
}

type builder struct {
	t     *tokenizer
	root  []tree.Node
	stack []*tree.List
}

func (b *builder) add(tok Token) {
	switch tok.Kind {
	case TokenText:
		b.append(&tree.Text{Value: tok.Text, Pos: tok.Span})
	case TokenBreak:
		b.append(&tree.Break{Pos: tok.Span})
	case TokenCommand:
		b.command(tok.Cmd)
	}
}

func (b *builder) command(cmd Command) {
	switch cmd.Kind {
	case ListBegin:
		l := &tree.List{Pos: cmd.Span}
		b.append(l)
		b.stack = append(b.stack, l)
	case ListEnd:
		if len(b.stack) == 0 {
			b.append(&tree.ListEnd{Pos: cmd.Span})
			return
		}
		l := b.stack[len(b.stack)-1]
		b.stack = b.stack[:len(b.stack)-1]
		l.Closed = true
		l.Pos = tree.Span{Start: l.Pos.Start, End: cmd.Span.End}
	case ListItem:
		b.append(&tree.ListItem{Children: b.itemBody(cmd), Pos: cmd.Span})
	default:
		b.append(inlineNode(cmd))
	}
}

// append adds n to the innermost open list, or to the root. A list opened
// inside a list nests under the last item when there is one.
func (b *builder) append(n tree.Node) {
	if len(b.stack) == 0 {
		b.root = append(b.root, n)
		return
	}
	top := b.stack[len(b.stack)-1]
	if _, ok := n.(*tree.List); ok {
		if item := lastItem(top); item != nil {
			item.Children = append(item.Children, n)
			return
		}
	}
	top.Children = append(top.Children, n)
}

func lastItem(l *tree.List) *tree.ListItem {
	for i := len(l.Children) - 1; i >= 0; i-- {
		switch c := l.Children[i].(type) {
		case *tree.ListItem:
			return c
		case *tree.Text:
			if strings.TrimSpace(c.Value) == "" {
				continue
			}
		}
		return nil
	}
	return nil
}

func (b *builder) itemBody(cmd Command) []tree.Node {
	toks := b.t.scan(int(cmd.ArgSpan.Start), int(cmd.ArgSpan.End), true)
	out := make([]tree.Node, 0, len(toks))
	for _, tok := range toks {
		if tok.Kind == TokenCommand {
			out = append(out, inlineNode(tok.Cmd))
			continue
		}
		out = append(out, &tree.Text{Value: tok.Text, Pos: tok.Span})
	}
	return out
}

// inlineNode builds a heading or emphasis node. Arguments are flat text.
func inlineNode(cmd Command) tree.Node {
	var children []tree.Node
	if cmd.Arg != "" {
		children = []tree.Node{&tree.Text{Value: cmd.Arg, Pos: cmd.ArgSpan}}
	}
	switch cmd.Kind {
	case Section:
		return &tree.Heading{Level: 1, Children: children, Pos: cmd.Span}
	case Subsection:
		return &tree.Heading{Level: 2, Children: children, Pos: cmd.Span}
	case Bold:
		return &tree.Emphasis{Style: tree.Bold, Children: children, Pos: cmd.Span}
	case Italic:
		return &tree.Emphasis{Style: tree.Italic, Children: children, Pos: cmd.Span}
	default:
		return &tree.Emphasis{Style: tree.Underline, Children: children, Pos: cmd.Span}
	}
}

// finish extends lists left open to the end of input.
func (b *builder) finish(end int) []tree.Node {
	for _, l := range b.stack {
		l.Pos = tree.NewSpan(int(l.Pos.Start), end)
	}
	return b.root
}
