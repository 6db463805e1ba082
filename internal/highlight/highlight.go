// Package highlight colors raw LaTeX-subset source with chroma, as HTML
// with CSS classes or as 256-color terminal text.
package highlight

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// Output formats.
const (
	FormatHTML     = "html"
	FormatTerminal = "terminal"
)

// DefaultStyle is the chroma style used when none is given.
const DefaultStyle = "github"

// ErrUnknownFormat is returned for an output format other than FormatHTML
// or FormatTerminal.
var ErrUnknownFormat = errors.New("unknown highlight format")

// Highlighter tokenizes source with the TeX lexer. Safe for concurrent use.
type Highlighter struct {
	lexer       chroma.Lexer
	style       *chroma.Style
	html        *chromahtml.Formatter
	terminal    chroma.Formatter
	lineNumbers bool
}

// Option configures a Highlighter.
type Option func(*Highlighter)

// WithStyle selects a chroma style by name. Unknown names fall back to
// chroma's default style.
func WithStyle(name string) Option {
	return func(h *Highlighter) {
		h.style = styles.Get(name)
	}
}

// WithLineNumbers adds line numbers to HTML output.
func WithLineNumbers(on bool) Option {
	return func(h *Highlighter) {
		h.lineNumbers = on
	}
}

// New creates a Highlighter.
func New(opts ...Option) *Highlighter {
	h := &Highlighter{style: styles.Get(DefaultStyle)}
	for _, opt := range opts {
		opt(h)
	}

	lexer := lexers.Get("latex")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	h.lexer = chroma.Coalesce(lexer)
	h.html = chromahtml.New(
		chromahtml.WithClasses(true),
		chromahtml.WithLineNumbers(h.lineNumbers),
	)
	h.terminal = formatters.TTY256
	return h
}

// Styles lists the available chroma style names.
func Styles() []string {
	names := styles.Names()
	sort.Strings(names)
	return names
}

// Write highlights source in the given format.
func (h *Highlighter) Write(w io.Writer, format, source string) error {
	switch format {
	case FormatHTML:
		return h.HTML(w, source)
	case FormatTerminal:
		return h.Terminal(w, source)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// HTML writes a <pre> block with class-based token markup. Pair it with CSS.
func (h *Highlighter) HTML(w io.Writer, source string) error {
	return h.format(w, h.html, source)
}

// Terminal writes source with 256-color escape sequences.
func (h *Highlighter) Terminal(w io.Writer, source string) error {
	return h.format(w, h.terminal, source)
}

// CSS writes the stylesheet for the classes emitted by HTML.
func (h *Highlighter) CSS(w io.Writer) error {
	if err := h.html.WriteCSS(w, h.style); err != nil {
		return fmt.Errorf("writing highlight css: %w", err)
	}
	return nil
}

func (h *Highlighter) format(w io.Writer, f chroma.Formatter, source string) error {
	it, err := h.lexer.Tokenise(nil, source)
	if err != nil {
		return fmt.Errorf("tokenizing source: %w", err)
	}
	if err := f.Format(w, h.style, it); err != nil {
		return fmt.Errorf("formatting source: %w", err)
	}
	return nil
}
