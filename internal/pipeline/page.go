package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/alnah/go-tex2pdf/internal/tree"
)

// Page defaults.
const (
	DefaultLang  = "en"
	DefaultTitle = "Document"
)

// PageOptions controls page assembly.
type PageOptions struct {
	// Title defaults to the first heading, then DefaultTitle.
	Title string
	// Lang is the html lang attribute.
	Lang string
	// CSS is injected as an inline style block.
	CSS string
	// Stylesheets are linked in order, before the inline CSS.
	Stylesheets []string
	// TOC adds a numbered table of contents when non-nil.
	TOC *TOCData
}

type pageData struct {
	Lang        string
	Title       string
	Stylesheets []template.URL
	Body        template.HTML
}

func parsePageTemplate(src string) (*template.Template, error) {
	tmpl, err := template.New("page").Parse(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateParse, err)
	}
	return tmpl, nil
}

// Page presents nodes as a complete HTML document.
func (p *Pipeline) Page(ctx context.Context, nodes []tree.Node, opts PageOptions) (string, error) {
	body, err := p.html.Fragment(ctx, nodes)
	if err != nil {
		return "", err
	}

	body, err = p.toc.InjectTOC(ctx, body, nodes, opts.TOC)
	if err != nil {
		return "", err
	}

	data := pageData{
		Lang:  opts.Lang,
		Title: opts.Title,
		// Escaping happened in the presenter; math markup passed validation.
		Body: template.HTML(body),
	}
	if data.Lang == "" {
		data.Lang = DefaultLang
	}
	if data.Title == "" {
		data.Title = documentTitle(nodes)
	}
	for _, s := range opts.Stylesheets {
		// Local KaTeX stylesheets are file:// URLs, which html/template
		// would otherwise replace.
		data.Stylesheets = append(data.Stylesheets, template.URL(s))
	}

	var buf bytes.Buffer
	if err := p.page.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrPageRender, err)
	}
	return p.css.InjectCSS(ctx, buf.String(), opts.CSS), nil
}

// documentTitle returns the plain text of the first heading.
func documentTitle(nodes []tree.Node) string {
	title := ""
	tree.Walk(nodes, func(n tree.Node) bool {
		if title != "" {
			return false
		}
		if h, ok := n.(*tree.Heading); ok {
			title = strings.Join(strings.Fields(tree.PlainText(h.Children)), " ")
			return false
		}
		return true
	})
	if title == "" {
		return DefaultTitle
	}
	return title
}
