// Package mathres finds math regions in text and substitutes them with
// typeset Math nodes.
//
// Delimiters are resolved in a fixed order: \[...\], $$...$$, \(...\),
// $...$. Block forms are consumed before inline forms so that $$ is never
// split into two inline dollars, and the bracket forms go before the dollar
// forms. A region claimed by one pass is never rescanned by a later one.
//
// Content is handed to the Typesetter verbatim. A Typesetter error marks
// that one region as failed; the rest of the document renders normally.
package mathres
