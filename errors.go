package tex2pdf

import (
	"errors"

	"github.com/alnah/go-tex2pdf/internal/assets"
	"github.com/alnah/go-tex2pdf/internal/browser"
	"github.com/alnah/go-tex2pdf/internal/tree"
	"github.com/alnah/go-tex2pdf/internal/typeset"
)

// Source preconditions checked before rendering.
var (
	ErrNilSource      = tree.ErrNilSource
	ErrInvalidSource  = tree.ErrInvalidSource
	ErrSourceTooLarge = tree.ErrSourceTooLarge
)

// ErrTypeset wraps every math typesetting failure. It is never returned by
// Render: failed regions keep it on the document, see Document.MathErrors.
var ErrTypeset = typeset.ErrTypeset

// Export failures.
var (
	ErrEmptySurface   = errors.New("nothing to export: document is empty")
	ErrExport         = errors.New("export failed")
	ErrBrowserConnect = browser.ErrConnect
	ErrPageCreate     = browser.ErrPageCreate
	ErrPageLoad       = browser.ErrPageLoad
	ErrRasterize      = errors.New("failed to rasterize document")
	ErrPaginate       = errors.New("failed to paginate document image")
	ErrWriteArtifact  = errors.New("failed to write artifact")
)

// Settings validation errors.
var (
	ErrInvalidPageSize    = errors.New("invalid page size")
	ErrInvalidOrientation = errors.New("invalid orientation")
	ErrInvalidMargin      = errors.New("invalid margin")
	ErrInvalidExportMode  = errors.New("invalid export mode")
	ErrInvalidScale       = errors.New("invalid scale")
	ErrInvalidTOCDepth    = errors.New("invalid TOC depth")
	ErrUnknownMathBackend = typeset.ErrUnknownBackend
)

// Asset loading errors.
var (
	ErrStyleNotFound    = assets.ErrStyleNotFound
	ErrInvalidAssetPath = errors.New("invalid asset path")
)
