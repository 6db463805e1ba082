package pipeline

import (
	"context"
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/alnah/go-tex2pdf/internal/present"
	"github.com/alnah/go-tex2pdf/internal/tree"
)

// CSSInjector defines the contract for CSS injection into HTML.
type CSSInjector interface {
	InjectCSS(ctx context.Context, htmlContent, cssContent string) string
}

// CSSInjection injects CSS as a <style> block into HTML content.
type CSSInjection struct{}

// InjectCSS inserts a <style> block into HTML content.
// Tries </head> first, then <body>, then prepends to the HTML.
// CSS content is sanitized so it cannot close the style element.
func (s *CSSInjection) InjectCSS(ctx context.Context, htmlContent, cssContent string) string {
	if cssContent == "" || ctx.Err() != nil {
		return htmlContent
	}

	styleBlock := "<style>" + sanitizeCSS(cssContent) + "</style>"
	lowerHTML := strings.ToLower(htmlContent)

	if idx := strings.Index(lowerHTML, "</head>"); idx != -1 {
		return htmlContent[:idx] + styleBlock + htmlContent[idx:]
	}
	if pos := afterOpenTag(htmlContent, lowerHTML, "<body"); pos != -1 {
		return htmlContent[:pos] + styleBlock + htmlContent[pos:]
	}
	return styleBlock + htmlContent
}

// sanitizeCSS escapes </ so the CSS cannot end the style block early.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}

// afterOpenTag returns the offset just past the opening tag named by
// prefix, or -1.
func afterOpenTag(htmlContent, lowerHTML, prefix string) int {
	idx := strings.Index(lowerHTML, prefix)
	if idx == -1 {
		return -1
	}
	closeIdx := strings.Index(htmlContent[idx:], ">")
	if closeIdx == -1 {
		return -1
	}
	return idx + closeIdx + 1
}

// ---------------------------------------------------------------------------
// Table of contents
// ---------------------------------------------------------------------------

// TOCData holds TOC configuration for injection.
type TOCData struct {
	Title    string
	MinDepth int // lowest heading level listed (default: 1)
	MaxDepth int // highest heading level listed (default: 2)
}

// TOCInjector defines the contract for TOC injection into a body fragment.
type TOCInjector interface {
	InjectTOC(ctx context.Context, body string, nodes []tree.Node, data *TOCData) (string, error)
}

// headingInfo is one heading listed in the TOC.
type headingInfo struct {
	Level int
	ID    string
	Text  string
}

// collectHeadings lists headings between minDepth and maxDepth. IDs follow
// the numbering used by the HTML presenter, so every heading is counted
// even when it is filtered out.
func collectHeadings(nodes []tree.Node, minDepth, maxDepth int) []headingInfo {
	var headings []headingInfo
	n := 0
	tree.Walk(nodes, func(node tree.Node) bool {
		h, ok := node.(*tree.Heading)
		if !ok {
			return true
		}
		n++
		if h.Level >= minDepth && h.Level <= maxDepth {
			headings = append(headings, headingInfo{
				Level: h.Level,
				ID:    present.HeadingID(n),
				Text:  strings.Join(strings.Fields(tree.PlainText(h.Children)), " "),
			})
		}
		return false
	})
	return headings
}

// numberingState tracks hierarchical numbering for TOC entries.
// The first heading sets depth 1, and a skipped level counts as a direct
// child.
type numberingState struct {
	counters     [2]int
	minLevelSeen int
	lastLevel    int
}

// next returns the number string and effective depth for a heading level.
func (n *numberingState) next(level int) (numStr string, effectiveDepth int) {
	if n.minLevelSeen == 0 {
		n.minLevelSeen = level
	}

	effectiveDepth = max(level-n.minLevelSeen+1, 1)
	if n.lastLevel > 0 && effectiveDepth > n.lastLevel+1 {
		effectiveDepth = n.lastLevel + 1
	}
	effectiveDepth = min(effectiveDepth, len(n.counters))

	for i := effectiveDepth; i < len(n.counters); i++ {
		n.counters[i] = 0
	}
	n.counters[effectiveDepth-1]++
	n.lastLevel = effectiveDepth

	parts := make([]string, 0, effectiveDepth)
	for i := 0; i < effectiveDepth; i++ {
		parts = append(parts, strconv.Itoa(n.counters[i]))
	}
	return strings.Join(parts, ".") + ".", effectiveDepth
}

// generateNumberedTOC creates HTML for a numbered table of contents.
// Uses <div> elements so list styles from the page CSS do not apply.
func generateNumberedTOC(headings []headingInfo, title string) string {
	if len(headings) == 0 {
		return ""
	}

	var buf strings.Builder
	buf.WriteString(`<nav class="toc">`)
	if title != "" {
		buf.WriteString(`<h2 class="toc-title">`)
		buf.WriteString(html.EscapeString(title))
		buf.WriteString(`</h2>`)
	}
	buf.WriteString(`<div class="toc-list">`)

	numbering := &numberingState{}
	for _, h := range headings {
		num, depth := numbering.next(h.Level)

		buf.WriteString(`<div class="toc-item"`)
		if indent := float64(depth-1) * 1.5; indent > 0 {
			buf.WriteString(fmt.Sprintf(` style="padding-left:%.1fem"`, indent))
		}
		buf.WriteString(`><a href="#`)
		buf.WriteString(html.EscapeString(h.ID))
		buf.WriteString(`">`)
		buf.WriteString(num)
		buf.WriteString(` `)
		buf.WriteString(html.EscapeString(h.Text))
		buf.WriteString(`</a></div>`)
	}
	buf.WriteString(`</div></nav>`)
	return buf.String()
}

// TOCInjection implements TOCInjector.
type TOCInjection struct{}

// NewTOCInjection creates a new TOC injector.
func NewTOCInjection() *TOCInjection {
	return &TOCInjection{}
}

// InjectTOC prepends a numbered TOC to the body. If data is nil or no
// heading qualifies, body is returned unchanged.
func (t *TOCInjection) InjectTOC(ctx context.Context, body string, nodes []tree.Node, data *TOCData) (string, error) {
	if data == nil {
		return body, nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	minDepth, maxDepth := data.MinDepth, data.MaxDepth
	if minDepth <= 0 {
		minDepth = 1
	}
	if maxDepth <= 0 {
		maxDepth = 2
	}

	toc := generateNumberedTOC(collectHeadings(nodes, minDepth, maxDepth), data.Title)
	if toc == "" {
		return body, nil
	}
	return toc + "\n" + body, nil
}
