package pipeline

import "errors"

// Sentinel errors for page assembly.
var (
	ErrTemplateParse = errors.New("page template parsing failed")
	ErrPageRender    = errors.New("page rendering failed")
)
