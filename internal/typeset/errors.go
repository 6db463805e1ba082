package typeset

import "errors"

// ErrTypeset wraps every rejection of math content by a backend.
var ErrTypeset = errors.New("math typesetting failed")

// Reasons reported by the built-in checker.
var (
	ErrEmptyMath             = errors.New("empty math")
	ErrUnbalancedBraces      = errors.New("unbalanced braces")
	ErrUnbalancedEnvironment = errors.New("unbalanced environment")
	ErrUnbalancedDelimiters  = errors.New(`unbalanced \left/\right`)
	ErrTrailingBackslash     = errors.New("trailing backslash")
)

// Reasons reported by the markup validator.
var (
	ErrUnsafeMarkup    = errors.New("backend markup contains active content")
	ErrMalformedMarkup = errors.New("backend markup is not well-formed")
)

// ErrUnknownBackend is returned by New for an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown math backend")
