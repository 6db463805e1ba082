package present

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/alnah/go-tex2pdf/internal/tree"
)

var _ Presenter = (*Terminal)(nil)

// Terminal writes the node tree as styled text for a terminal. Math is shown
// as source; failed regions are red and followed by the backend error.
type Terminal struct {
	// Width wraps paragraphs when positive.
	Width int

	heading   [3]lipgloss.Style
	bold      lipgloss.Style
	italic    lipgloss.Style
	underline lipgloss.Style
	math      lipgloss.Style
	mathErr   lipgloss.Style
	note      lipgloss.Style
	bullet    lipgloss.Style
}

// NewTerminal creates a terminal presenter with the default palette.
func NewTerminal() *Terminal {
	return &Terminal{
		heading: [3]lipgloss.Style{
			lipgloss.NewStyle().Bold(true),
			lipgloss.NewStyle().Bold(true).Underline(true).Foreground(lipgloss.Color("6")),
			lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6")),
		},
		bold:      lipgloss.NewStyle().Bold(true),
		italic:    lipgloss.NewStyle().Italic(true),
		underline: lipgloss.NewStyle().Underline(true),
		math:      lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		mathErr:   lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		note:      lipgloss.NewStyle().Faint(true),
		bullet:    lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	}
}

// Present implements Presenter.
func (t *Terminal) Present(ctx context.Context, w io.Writer, nodes []tree.Node) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := io.WriteString(w, t.Render(nodes)); err != nil {
		return fmt.Errorf("writing terminal output: %w", err)
	}
	return nil
}

// Render returns the styled text for nodes. Blocks are separated by a blank
// line.
func (t *Terminal) Render(nodes []tree.Node) string {
	var blocks []string
	var para strings.Builder
	flush := func() {
		if s := strings.TrimSpace(para.String()); s != "" {
			blocks = append(blocks, t.wrap(s))
		}
		para.Reset()
	}

	for _, n := range nodes {
		switch n := n.(type) {
		case *tree.Break:
			flush()
		case *tree.Heading:
			flush()
			level := min(max(n.Level, 0), len(t.heading)-1)
			blocks = append(blocks, t.heading[level].Render(t.inline(n.Children)))
		case *tree.List:
			flush()
			blocks = append(blocks, t.list(n, 0))
		case *tree.ListItem:
			flush()
			blocks = append(blocks, t.item(n, 0))
		case *tree.ListEnd:
			flush()
			blocks = append(blocks, t.note.Render(`(unmatched \end{itemize})`))
		case *tree.Math:
			if n.Delim.Display() {
				flush()
				blocks = append(blocks, "    "+t.inline([]tree.Node{n}))
				continue
			}
			para.WriteString(t.inline([]tree.Node{n}))
		default:
			para.WriteString(t.inline([]tree.Node{n}))
		}
	}
	flush()
	if len(blocks) == 0 {
		return ""
	}
	return strings.Join(blocks, "\n\n") + "\n"
}

func (t *Terminal) wrap(s string) string {
	if t.Width <= 0 {
		return s
	}
	return lipgloss.NewStyle().Width(t.Width).Render(s)
}

func (t *Terminal) list(l *tree.List, depth int) string {
	var lines []string
	for _, c := range l.Children {
		switch c := c.(type) {
		case *tree.ListItem:
			lines = append(lines, t.item(c, depth))
		case *tree.List:
			lines = append(lines, t.list(c, depth+1))
		case *tree.Break:
		case *tree.Text:
			if strings.TrimSpace(c.Value) != "" {
				lines = append(lines, t.item(&tree.ListItem{Children: []tree.Node{c}}, depth))
			}
		default:
			lines = append(lines, t.item(&tree.ListItem{Children: []tree.Node{c}}, depth))
		}
	}
	return strings.Join(lines, "\n")
}

func (t *Terminal) item(it *tree.ListItem, depth int) string {
	var body []tree.Node
	var nested []string
	for _, c := range it.Children {
		if l, ok := c.(*tree.List); ok {
			nested = append(nested, t.list(l, depth+1))
			continue
		}
		body = append(body, c)
	}
	line := strings.Repeat("  ", depth) + t.bullet.Render("•") + " " + strings.TrimSpace(t.inline(body))
	return strings.Join(append([]string{line}, nested...), "\n")
}

func (t *Terminal) inline(nodes []tree.Node) string {
	var b strings.Builder
	for _, n := range nodes {
		switch n := n.(type) {
		case *tree.Text:
			b.WriteString(n.Value)
		case *tree.Emphasis:
			inner := t.inline(n.Children)
			switch n.Style {
			case tree.Bold:
				b.WriteString(t.bold.Render(inner))
			case tree.Italic:
				b.WriteString(t.italic.Render(inner))
			default:
				b.WriteString(t.underline.Render(inner))
			}
		case *tree.Math:
			if n.Failed() {
				b.WriteString(t.mathErr.Render(n.Raw()))
				b.WriteString(t.note.Render(" (" + n.Err.Error() + ")"))
				continue
			}
			b.WriteString(t.math.Render(n.Raw()))
		default:
			b.WriteString(tree.PlainText([]tree.Node{n}))
		}
	}
	return b.String()
}
