// Package tui implements the live terminal preview: a source file is
// polled for changes and re-rendered into a scrollable view.
package tui

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/alnah/go-tex2pdf"
	"github.com/alnah/go-tex2pdf/internal/highlight"
	"github.com/alnah/go-tex2pdf/internal/present"
)

// DefaultInterval is the polling interval when none is configured.
const DefaultInterval = 500 * time.Millisecond

// Renderer renders a source into a document. *tex2pdf.Converter satisfies
// it.
type Renderer interface {
	Render(ctx context.Context, in tex2pdf.Input) (*tex2pdf.Document, error)
}

// Options configures a preview.
type Options struct {
	Path     string
	Interval time.Duration // 0 uses DefaultInterval
	Renderer Renderer
	// Highlighter enables the source view (toggled with "s") when set.
	Highlighter *highlight.Highlighter
}

type tickMsg time.Time

// renderedMsg carries the result of one render.
type renderedMsg struct {
	doc    *tex2pdf.Document
	source string
	err    error
	at     time.Time
}

// Model is the bubbletea model of the preview.
type Model struct {
	ctx      context.Context
	path     string
	interval time.Duration
	renderer Renderer
	hl       *highlight.Highlighter
	term     *present.Terminal

	view   viewport.Model
	width  int
	height int
	ready  bool

	modTime    time.Time
	size       int64
	rendering  bool
	dropped    int
	showSource bool

	doc        *tex2pdf.Document
	source     string
	renderedAt time.Time
	err        error
}

// New creates a preview model. ctx bounds every render.
func New(ctx context.Context, opts Options) *Model {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Model{
		ctx:      ctx,
		path:     opts.Path,
		interval: interval,
		renderer: opts.Renderer,
		hl:       opts.Highlighter,
		term:     present.NewTerminal(),
		view:     viewport.New(80, 20),
		width:    80,
		height:   22,
	}
}

// Run starts the preview in the alternate screen and blocks until the user
// quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(New(ctx, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.poll(), m.tick())
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// poll starts a render when the file changed since the last one. While a
// render is in flight the tick is dropped.
func (m *Model) poll() tea.Cmd {
	if m.rendering {
		m.dropped++
		return nil
	}
	info, err := os.Stat(m.path)
	if err != nil {
		m.err = err
		return nil
	}
	if info.ModTime().Equal(m.modTime) && info.Size() == m.size {
		return nil
	}
	m.modTime, m.size = info.ModTime(), info.Size()
	return m.startRender()
}

func (m *Model) startRender() tea.Cmd {
	m.rendering = true
	ctx, path, r := m.ctx, m.path, m.renderer
	return func() tea.Msg {
		data, err := os.ReadFile(path) // #nosec G304 -- user-provided path
		if err != nil {
			return renderedMsg{err: err, at: time.Now()}
		}
		doc, err := r.Render(ctx, tex2pdf.Input{Name: filepath.Base(path), Source: string(data)})
		return renderedMsg{doc: doc, source: string(data), err: err, at: time.Now()}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		return m, tea.Batch(m.poll(), m.tick())
	case renderedMsg:
		m.rendering = false
		m.renderedAt = msg.at
		m.err = msg.err
		if msg.err == nil {
			m.doc, m.source = msg.doc, msg.source
		}
		m.refresh()
		return m, nil
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "s":
			if m.hl != nil {
				m.showSource = !m.showSource
				m.refresh()
			}
			return m, nil
		case "r":
			if m.rendering {
				return m, nil
			}
			return m, m.startRender()
		}
	}
	var cmd tea.Cmd
	m.view, cmd = m.view.Update(msg)
	return m, cmd
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.view.Width = width
	m.view.Height = max(height-2, 1) // header and status lines
	m.term.Width = width
	m.ready = true
	m.refresh()
}

// refresh rebuilds the viewport content from the last good render.
func (m *Model) refresh() {
	if m.doc == nil {
		return
	}
	if m.showSource && m.hl != nil {
		var buf bytes.Buffer
		if err := m.hl.Terminal(&buf, m.source); err == nil {
			m.view.SetContent(buf.String())
			return
		}
	}
	m.view.SetContent(m.term.Render(m.doc.Nodes))
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	statusStyle = lipgloss.NewStyle().Faint(true)
)

func (m *Model) View() string {
	mode := "preview"
	if m.showSource {
		mode = "source"
	}
	header := titleStyle.Render(truncate(fmt.Sprintf("%s (%s)", filepath.Base(m.path), mode), m.width))
	return header + "\n" + m.view.View() + "\n" + m.status()
}

// status returns the bottom line: render state, math errors and keys.
func (m *Model) status() string {
	keys := "q quit  r reload"
	if m.hl != nil {
		keys += "  s source"
	}
	var state string
	var style lipgloss.Style
	switch {
	case m.err != nil:
		state, style = "error: "+m.err.Error(), errStyle
	case m.doc == nil:
		state, style = "rendering...", statusStyle
	default:
		stats := m.doc.Stats()
		state = fmt.Sprintf("rendered %s, %d math", m.renderedAt.Format("15:04:05"), stats.Math)
		style = okStyle
		if stats.MathFailed > 0 {
			state += fmt.Sprintf(", %d failed", stats.MathFailed)
			style = warnStyle
		}
	}
	line := state + "  |  " + keys
	return style.Render(truncate(line, m.width))
}

// truncate cuts value to width display cells.
func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
