// Package typeset provides the math backends used by the resolver.
//
// Builtin checks TeX syntax in pure Go and shows the escaped source.
// KaTeX typesets in headless Chrome. Validated and Cache wrap any backend.
// New assembles the stack named in the configuration.
package typeset
