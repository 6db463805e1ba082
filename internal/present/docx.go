package present

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/alnah/go-tex2pdf/internal/tree"
)

var _ Presenter = DOCX{}

// Heading paragraph styles and run sizes in half-points.
var headingStyles = map[int]struct{ style, size string }{
	1: {"Heading1", "32"},
	2: {"Heading2", "28"},
}

const (
	bullet       = "• "
	mathErrColor = "C00000"
)

// DOCX writes the node tree as a Word document. Math is not typeset: it
// appears as its TeX source in italics, or in red with delimiters when the
// backend rejected it.
type DOCX struct{}

// Present implements Presenter.
func (DOCX) Present(ctx context.Context, w io.Writer, nodes []tree.Node) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dw := &docxWriter{doc: docx.New().WithDefaultTheme()}
	dw.blocks(nodes)
	if _, err := dw.doc.WriteTo(w); err != nil {
		return fmt.Errorf("writing docx: %w", err)
	}
	return nil
}

type runStyle struct {
	bold, italic, underline bool
	size                    string
}

type docxWriter struct {
	doc  *docx.Docx
	para *docx.Paragraph
}

func (dw *docxWriter) blocks(nodes []tree.Node) {
	for _, n := range nodes {
		switch n := n.(type) {
		case *tree.Break, *tree.ListEnd:
			dw.para = nil
		case *tree.Heading:
			hs := headingStyles[n.Level]
			p := dw.doc.AddParagraph().Style(hs.style)
			dw.inline(p, n.Children, runStyle{bold: true, size: hs.size})
			dw.para = nil
		case *tree.List:
			dw.list(n, 0)
			dw.para = nil
		case *tree.ListItem:
			dw.item(n, 0)
			dw.para = nil
		case *tree.Math:
			if n.Delim.Display() {
				dw.inline(dw.doc.AddParagraph().Justification("center"), []tree.Node{n}, runStyle{})
				dw.para = nil
				continue
			}
			dw.inline(dw.current(), []tree.Node{n}, runStyle{})
		case *tree.Text:
			if dw.para == nil && strings.TrimSpace(n.Value) == "" {
				continue
			}
			dw.inline(dw.current(), []tree.Node{n}, runStyle{})
		default:
			dw.inline(dw.current(), []tree.Node{n}, runStyle{})
		}
	}
}

func (dw *docxWriter) current() *docx.Paragraph {
	if dw.para == nil {
		dw.para = dw.doc.AddParagraph()
	}
	return dw.para
}

func (dw *docxWriter) list(l *tree.List, depth int) {
	for _, c := range l.Children {
		switch c := c.(type) {
		case *tree.ListItem:
			dw.item(c, depth)
		case *tree.List:
			dw.list(c, depth+1)
		case *tree.Break:
		case *tree.Text:
			if strings.TrimSpace(c.Value) != "" {
				dw.item(&tree.ListItem{Children: []tree.Node{c}}, depth)
			}
		default:
			dw.item(&tree.ListItem{Children: []tree.Node{c}}, depth)
		}
	}
}

// item writes one bulleted paragraph. Nested lists follow it one level
// deeper.
func (dw *docxWriter) item(it *tree.ListItem, depth int) {
	p := dw.doc.AddParagraph()
	p.AddText(strings.Repeat("    ", depth) + bullet)
	for _, c := range it.Children {
		if nested, ok := c.(*tree.List); ok {
			dw.list(nested, depth+1)
			continue
		}
		dw.inline(p, []tree.Node{c}, runStyle{})
	}
}

func (dw *docxWriter) inline(p *docx.Paragraph, nodes []tree.Node, rs runStyle) {
	for _, n := range nodes {
		switch n := n.(type) {
		case *tree.Text:
			applyStyle(p.AddText(flattenLines(n.Value)), rs)
		case *tree.Emphasis:
			inner := rs
			switch n.Style {
			case tree.Bold:
				inner.bold = true
			case tree.Italic:
				inner.italic = true
			case tree.Underline:
				inner.underline = true
			}
			dw.inline(p, n.Children, inner)
		case *tree.Math:
			if n.Failed() {
				applyStyle(p.AddText(n.Raw()), rs).Color(mathErrColor)
				continue
			}
			inner := rs
			inner.italic = true
			applyStyle(p.AddText(strings.TrimSpace(n.Source)), inner)
		default:
			applyStyle(p.AddText(flattenLines(tree.PlainText([]tree.Node{n}))), rs)
		}
	}
}

func applyStyle(r *docx.Run, rs runStyle) *docx.Run {
	if rs.bold {
		r.Bold()
	}
	if rs.italic {
		r.Italic()
	}
	if rs.underline {
		r.Underline("single")
	}
	if rs.size != "" {
		r.Size(rs.size)
	}
	return r
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// flattenLines joins source lines: a Word run has no soft line breaks.
func flattenLines(s string) string {
	return lineBreaks.Replace(s)
}
