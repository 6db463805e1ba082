// Package present turns a resolved node tree into output formats: an HTML
// fragment built through goldmark's renderer, Markdown, DOCX, JSON and
// styled terminal text.
//
// Text is always escaped. Math markup is the only content written
// unescaped, and it comes from a backend wrapped in typeset.Validated.
package present
