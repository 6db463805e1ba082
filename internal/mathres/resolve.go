package mathres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/alnah/go-tex2pdf/internal/tree"
)

// ErrBackendPanic reports a typesetter that panicked instead of returning
// an error.
var ErrBackendPanic = errors.New("math backend panicked")

// Typesetter turns math content into visual markup. Failures are returned
// as errors and never abort a render.
type Typesetter interface {
	Typeset(ctx context.Context, content string, display bool) (string, error)
}

// TypesetterFunc adapts a function to Typesetter.
type TypesetterFunc func(ctx context.Context, content string, display bool) (string, error)

// Typeset calls f.
func (f TypesetterFunc) Typeset(ctx context.Context, content string, display bool) (string, error) {
	return f(ctx, content, display)
}

// Resolver substitutes math regions in text nodes with Math nodes.
type Resolver struct {
	ts  Typesetter
	log *slog.Logger
}

// NewResolver creates a Resolver backed by ts. A nil logger discards output.
func NewResolver(ts Typesetter, log *slog.Logger) *Resolver {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Resolver{ts: ts, log: log}
}

// Resolve returns a copy of nodes in which every Text node is split into
// text and math. Per-region failures are recorded on the Math node; the
// only returned error is context cancellation.
func (r *Resolver) Resolve(ctx context.Context, nodes []tree.Node) ([]tree.Node, error) {
	out := make([]tree.Node, 0, len(nodes))
	for _, n := range nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		switch n := n.(type) {
		case *tree.Text:
			out = append(out, r.splitText(ctx, n)...)
		case *tree.Heading, *tree.Emphasis, *tree.List, *tree.ListItem:
			children, err := r.Resolve(ctx, tree.Children(n))
			if err != nil {
				return nil, err
			}
			out = append(out, withChildren(n, children))
		default:
			out = append(out, n)
		}
	}
	return out, nil
}

// withChildren shallow-copies a container so the input tree is left as is.
func withChildren(n tree.Node, children []tree.Node) tree.Node {
	var c tree.Node
	switch n := n.(type) {
	case *tree.Heading:
		cp := *n
		c = &cp
	case *tree.Emphasis:
		cp := *n
		c = &cp
	case *tree.List:
		cp := *n
		c = &cp
	case *tree.ListItem:
		cp := *n
		c = &cp
	default:
		return n
	}
	tree.SetChildren(c, children)
	return c
}

func (r *Resolver) splitText(ctx context.Context, t *tree.Text) []tree.Node {
	regions := FindRegions(t.Value)
	if len(regions) == 0 {
		return []tree.Node{t}
	}

	base := int(t.Pos.Start)
	out := make([]tree.Node, 0, 2*len(regions)+1)
	last := 0
	for _, reg := range regions {
		if reg.Start > last {
			out = append(out, &tree.Text{
				Value: t.Value[last:reg.Start],
				Pos:   tree.NewSpan(base+last, base+reg.Start),
			})
		}
		out = append(out, r.typeset(ctx, reg, base))
		last = reg.End
	}
	if last < len(t.Value) {
		out = append(out, &tree.Text{
			Value: t.Value[last:],
			Pos:   tree.NewSpan(base+last, base+len(t.Value)),
		})
	}
	return out
}

func (r *Resolver) typeset(ctx context.Context, reg Region, base int) (m *tree.Math) {
	m = &tree.Math{
		Delim:  reg.Style,
		Source: reg.Content,
		Pos:    reg.Span().Shift(base),
	}
	defer func() {
		if p := recover(); p != nil {
			m.Markup = ""
			m.Err = fmt.Errorf("%w: %v", ErrBackendPanic, p)
			r.log.Warn("math backend panicked", "start", m.Pos.Start, "panic", p)
		}
	}()

	markup, err := r.ts.Typeset(ctx, reg.Content, reg.Style.Display())
	if err != nil {
		m.Err = err
		r.log.Debug("math region failed", "start", m.Pos.Start, "style", reg.Style.String(), "error", err)
		return m
	}
	m.Markup = markup
	return m
}
