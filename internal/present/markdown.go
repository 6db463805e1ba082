package present

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/alnah/go-tex2pdf/internal/tree"
)

// Math placeholders use Unicode Private Use Area characters so that the
// HTML to Markdown conversion leaves them alone.
const (
	mathMarkStart = "\uE000" // U+E000: Private Use Area start
	mathMarkEnd   = "\uE001" // U+E001: Private Use Area end
)

var _ Presenter = (*Markdown)(nil)

// Markdown writes a node tree as Markdown. The tree goes through the HTML
// presenter with math replaced by placeholders, the HTML is converted with
// html-to-markdown, and the placeholders are swapped for the math source
// with its original delimiters.
type Markdown struct {
	html *HTML
}

// NewMarkdown creates a Markdown presenter.
func NewMarkdown() *Markdown {
	return &Markdown{html: NewHTML()}
}

// Present implements Presenter.
func (m *Markdown) Present(ctx context.Context, w io.Writer, nodes []tree.Node) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b := &astBuilder{placeholders: true}
	var buf bytes.Buffer
	if err := m.html.renderer.Render(&buf, nil, b.document(nodes)); err != nil {
		return fmt.Errorf("rendering html: %w", err)
	}

	md, err := htmltomarkdown.ConvertString(buf.String())
	if err != nil {
		return fmt.Errorf("converting HTML to markdown: %w", err)
	}

	if _, err := io.WriteString(w, restoreMath(md, b.maths)+"\n"); err != nil {
		return fmt.Errorf("writing markdown: %w", err)
	}
	return nil
}

func restoreMath(md string, maths []*tree.Math) string {
	if len(maths) == 0 {
		return md
	}
	pairs := make([]string, 0, 2*len(maths))
	for i, m := range maths {
		pairs = append(pairs, mathMarkStart+strconv.Itoa(i)+mathMarkEnd, m.Raw())
	}
	return strings.NewReplacer(pairs...).Replace(md)
}
