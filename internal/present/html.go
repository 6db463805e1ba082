package present

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"

	"github.com/alnah/go-tex2pdf/internal/tree"
)

var _ Presenter = (*HTML)(nil)

// HTML writes a node tree as an HTML fragment. The tree is mapped onto a
// goldmark AST and rendered by goldmark's HTML renderer, extended with
// renderers for math, underline and stray list-end markers.
//
// Inline runs between breaks become paragraphs. Headings, lists and display
// math stand on their own.
type HTML struct {
	renderer renderer.Renderer
}

// NewHTML creates an HTML presenter.
func NewHTML() *HTML {
	return &HTML{
		renderer: renderer.NewRenderer(renderer.WithNodeRenderers(
			util.Prioritized(html.NewRenderer(html.WithXHTML()), 1000),
			util.Prioritized(&nodeRenderer{}, 500),
		)),
	}
}

// Present implements Presenter.
func (h *HTML) Present(ctx context.Context, w io.Writer, nodes []tree.Node) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	doc := (&astBuilder{}).document(nodes)
	if err := h.renderer.Render(w, nil, doc); err != nil {
		return fmt.Errorf("rendering html: %w", err)
	}
	return nil
}

// Fragment returns the HTML fragment for nodes as a string.
func (h *HTML) Fragment(ctx context.Context, nodes []tree.Node) (string, error) {
	var buf bytes.Buffer
	if err := h.Present(ctx, &buf, nodes); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ---------------------------------------------------------------------------
// Tree to AST
// ---------------------------------------------------------------------------

// astBuilder maps tree nodes onto goldmark nodes. When placeholders is set,
// math is emitted as a private-use marker instead of markup, and the
// replaced nodes are collected in maths.
type astBuilder struct {
	placeholders bool
	maths        []*tree.Math
	headings     int
}

// HeadingID returns the anchor id of the n-th heading (1-based) in document
// order.
func HeadingID(n int) string {
	return "section-" + strconv.Itoa(n)
}

func (b *astBuilder) document(nodes []tree.Node) *ast.Document {
	doc := ast.NewDocument()
	var para *ast.Paragraph
	closePara := func() {
		if para != nil && trimParagraph(para) {
			doc.AppendChild(doc, para)
		}
		para = nil
	}

	for _, n := range nodes {
		if block := b.block(n); block != nil {
			closePara()
			doc.AppendChild(doc, block)
			continue
		}
		if _, ok := n.(*tree.Break); ok {
			closePara()
			continue
		}
		if para == nil {
			para = ast.NewParagraph()
		}
		para.AppendChild(para, b.inline(n))
	}
	closePara()
	return doc
}

// block returns the block-level node for n, or nil when n is inline.
func (b *astBuilder) block(n tree.Node) ast.Node {
	switch n := n.(type) {
	case *tree.Heading:
		h := ast.NewHeading(n.Level)
		b.headings++
		h.SetAttributeString("id", []byte(HeadingID(b.headings)))
		b.appendInline(h, n.Children)
		return h
	case *tree.List:
		return b.list(n)
	case *tree.ListItem:
		list := newList()
		list.AppendChild(list, b.item(n))
		return list
	case *tree.ListEnd:
		return &listEndNode{}
	case *tree.Math:
		if n.Delim.Display() {
			return b.math(n, true)
		}
	}
	return nil
}

func (b *astBuilder) inline(n tree.Node) ast.Node {
	switch n := n.(type) {
	case *tree.Text:
		return text(n.Value)
	case *tree.Math:
		return b.math(n, false)
	case *tree.Emphasis:
		var e ast.Node
		switch n.Style {
		case tree.Bold:
			e = ast.NewEmphasis(2)
		case tree.Italic:
			e = ast.NewEmphasis(1)
		default:
			e = &underlineNode{}
		}
		b.appendInline(e, n.Children)
		return e
	}
	return text(tree.PlainText([]tree.Node{n}))
}

func (b *astBuilder) appendInline(parent ast.Node, nodes []tree.Node) {
	for _, n := range nodes {
		parent.AppendChild(parent, b.inline(n))
	}
}

func (b *astBuilder) math(m *tree.Math, block bool) ast.Node {
	if b.placeholders {
		b.maths = append(b.maths, m)
		marker := mathMarkStart + strconv.Itoa(len(b.maths)-1) + mathMarkEnd
		if block {
			p := ast.NewParagraph()
			p.AppendChild(p, text(marker))
			return p
		}
		return text(marker)
	}
	return &mathNode{math: m, block: block}
}

func newList() *ast.List {
	l := ast.NewList('-')
	l.IsTight = true
	return l
}

// list keeps items as they are. Blank text and breaks between items are
// dropped; any other stray node gets an item of its own.
func (b *astBuilder) list(l *tree.List) *ast.List {
	list := newList()
	for _, c := range l.Children {
		switch c := c.(type) {
		case *tree.ListItem:
			list.AppendChild(list, b.item(c))
		case *tree.Break:
		case *tree.Text:
			if strings.TrimSpace(c.Value) != "" {
				list.AppendChild(list, b.item(&tree.ListItem{Children: []tree.Node{c}}))
			}
		default:
			list.AppendChild(list, b.wrapItem(c))
		}
	}
	return list
}

func (b *astBuilder) item(it *tree.ListItem) *ast.ListItem {
	li := ast.NewListItem(0)
	var tb *ast.TextBlock
	for _, c := range it.Children {
		if nested, ok := c.(*tree.List); ok {
			tb = nil
			li.AppendChild(li, b.list(nested))
			continue
		}
		if tb == nil {
			tb = ast.NewTextBlock()
			li.AppendChild(li, tb)
		}
		tb.AppendChild(tb, b.inline(c))
	}
	return li
}

func (b *astBuilder) wrapItem(n tree.Node) *ast.ListItem {
	li := ast.NewListItem(0)
	if block := b.block(n); block != nil {
		li.AppendChild(li, block)
		return li
	}
	tb := ast.NewTextBlock()
	tb.AppendChild(tb, b.inline(n))
	li.AppendChild(li, tb)
	return li
}

// text returns a string node written through the renderer's escaper.
func text(s string) *ast.String {
	n := ast.NewString([]byte(s))
	n.SetRaw(true)
	return n
}

// trimParagraph strips the blank edges of a paragraph's outer text and
// reports whether anything visible is left.
func trimParagraph(p *ast.Paragraph) bool {
	if s, ok := p.FirstChild().(*ast.String); ok {
		s.Value = bytes.TrimLeft(s.Value, " \t\r\n")
	}
	if s, ok := p.LastChild().(*ast.String); ok {
		s.Value = bytes.TrimRight(s.Value, " \t\r\n")
	}
	for c := p.FirstChild(); c != nil; c = c.NextSibling() {
		s, ok := c.(*ast.String)
		if !ok || len(bytes.TrimSpace(s.Value)) > 0 {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Custom nodes
// ---------------------------------------------------------------------------

var (
	kindMath      = ast.NewNodeKind("TeXMath")
	kindUnderline = ast.NewNodeKind("Underline")
	kindListEnd   = ast.NewNodeKind("ListEnd")
)

type mathNode struct {
	ast.BaseInline
	math  *tree.Math
	block bool
}

func (n *mathNode) Kind() ast.NodeKind { return kindMath }

func (n *mathNode) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Delimiter": n.math.Delim.String(),
		"Source":    n.math.Source,
		"Failed":    strconv.FormatBool(n.math.Failed()),
	}, nil)
}

type underlineNode struct {
	ast.BaseInline
}

func (n *underlineNode) Kind() ast.NodeKind { return kindUnderline }

func (n *underlineNode) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

type listEndNode struct {
	ast.BaseBlock
}

func (n *listEndNode) Kind() ast.NodeKind { return kindListEnd }

func (n *listEndNode) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

// ---------------------------------------------------------------------------
// Custom renderers
// ---------------------------------------------------------------------------

type nodeRenderer struct{}

func (r *nodeRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(kindMath, r.renderMath)
	reg.Register(kindUnderline, r.renderUnderline)
	reg.Register(kindListEnd, r.renderListEnd)
}

// renderMath writes backend markup as is. A failed region shows its raw
// source, escaped, with the error in the title.
func (r *nodeRenderer) renderMath(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*mathNode)
	m := n.math

	tag := "span"
	if n.block {
		tag = "div"
	}
	class := "math math-inline"
	if m.Delim.Display() {
		class = "math math-display"
	}

	_, _ = fmt.Fprintf(w, `<%s class="%s`, tag, class)
	if m.Failed() {
		_, _ = w.WriteString(` math-error" data-delimiter="`)
		_, _ = w.WriteString(m.Delim.String())
		_, _ = w.WriteString(`" title="`)
		_, _ = w.Write(util.EscapeHTML([]byte(m.Err.Error())))
		_, _ = w.WriteString(`">`)
		_, _ = w.Write(util.EscapeHTML([]byte(m.Raw())))
	} else {
		_, _ = w.WriteString(`">`)
		_, _ = w.WriteString(m.Markup)
	}
	_, _ = fmt.Fprintf(w, "</%s>", tag)
	if n.block {
		_ = w.WriteByte('\n')
	}
	return ast.WalkSkipChildren, nil
}

func (r *nodeRenderer) renderUnderline(w util.BufWriter, _ []byte, _ ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		_, _ = w.WriteString("<u>")
	} else {
		_, _ = w.WriteString("</u>")
	}
	return ast.WalkContinue, nil
}

func (r *nodeRenderer) renderListEnd(w util.BufWriter, _ []byte, _ ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		_, _ = w.WriteString("<!-- unmatched \\end{itemize} -->\n")
	}
	return ast.WalkContinue, nil
}
