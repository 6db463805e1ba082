// Package pipeline implements the render pipeline and HTML page assembly.
//
// Render runs the two pure stages over a source document:
//   - structural translation (internal/markup)
//   - math resolution through a Typesetter (internal/mathres)
//
// Page presents a node tree as HTML and assembles a standalone page:
//   - the page template from internal/assets
//   - the selected style as an inline <style> block
//   - backend stylesheets (KaTeX fonts) as links
//   - an optional numbered table of contents built from headings
//
// PDF export is handled separately by the root tex2pdf package using
// headless Chrome (go-rod). The pipeline never touches a browser itself; the
// KaTeX backend owns its own page.
package pipeline
