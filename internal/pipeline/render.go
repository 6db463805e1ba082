package pipeline

import (
	"context"
	"html/template"
	"log/slog"
	"time"

	"github.com/alnah/go-tex2pdf/internal/assets"
	"github.com/alnah/go-tex2pdf/internal/markup"
	"github.com/alnah/go-tex2pdf/internal/mathres"
	"github.com/alnah/go-tex2pdf/internal/present"
	"github.com/alnah/go-tex2pdf/internal/tree"
)

// Config configures a Pipeline.
type Config struct {
	// Typesetter resolves math. Required.
	Typesetter mathres.Typesetter
	// Template is the page template source. Empty uses the embedded page.
	Template string
	// Logger receives debug output. Nil discards it.
	Logger *slog.Logger
}

// Pipeline renders source documents into node trees and node trees into
// HTML pages. It holds no per-document state and is safe for concurrent
// use when its Typesetter is.
type Pipeline struct {
	resolver *mathres.Resolver
	html     *present.HTML
	page     *template.Template
	css      CSSInjector
	toc      TOCInjector
	log      *slog.Logger
}

// New creates a Pipeline.
func New(cfg Config) (*Pipeline, error) {
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	src := cfg.Template
	if src == "" {
		var err error
		src, err = assets.NewEmbeddedLoader().LoadTemplate(assets.PageTemplateName)
		if err != nil {
			return nil, err
		}
	}
	page, err := parsePageTemplate(src)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		resolver: mathres.NewResolver(cfg.Typesetter, log),
		html:     present.NewHTML(),
		page:     page,
		css:      &CSSInjection{},
		toc:      NewTOCInjection(),
		log:      log,
	}, nil
}

// Render translates src and resolves its math. Typeset failures are kept on
// the math nodes; the returned error is a precondition violation or context
// cancellation. src is never modified.
func (p *Pipeline) Render(ctx context.Context, src *tree.Source) ([]tree.Node, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	nodes := markup.Translate(src.Text)
	translated := time.Since(start)

	resolved, err := p.resolver.Resolve(ctx, nodes)
	if err != nil {
		return nil, err
	}

	st := Summarize(resolved)
	p.log.Debug("rendered document",
		"name", src.Name,
		"bytes", len(src.Text),
		"nodes", st.Nodes,
		"math", st.Math,
		"mathFailed", st.MathFailed,
		"translate", translated,
		"duration", time.Since(start))
	return resolved, nil
}

// Stats counts the nodes of a rendered tree.
type Stats struct {
	Nodes      int
	Headings   int
	Lists      int
	Math       int
	MathFailed int
}

// Summarize walks nodes and counts them by kind.
func Summarize(nodes []tree.Node) Stats {
	var st Stats
	tree.Walk(nodes, func(n tree.Node) bool {
		st.Nodes++
		switch n := n.(type) {
		case *tree.Heading:
			st.Headings++
		case *tree.List:
			st.Lists++
		case *tree.Math:
			st.Math++
			if n.Failed() {
				st.MathFailed++
			}
		}
		return true
	})
	return st
}

// MathErrors returns the failed math nodes in document order.
func MathErrors(nodes []tree.Node) []*tree.Math {
	var out []*tree.Math
	tree.Walk(nodes, func(n tree.Node) bool {
		if m, ok := n.(*tree.Math); ok && m.Failed() {
			out = append(out, m)
		}
		return true
	})
	return out
}
