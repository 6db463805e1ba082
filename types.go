package tex2pdf

import (
	"fmt"
	"strings"

	"github.com/alnah/go-tex2pdf/internal/pipeline"
	"github.com/alnah/go-tex2pdf/internal/tree"
)

// Page size constants.
const (
	PageSizeA4     = "a4"
	PageSizeLetter = "letter"
	PageSizeLegal  = "legal"
)

// Orientation constants.
const (
	OrientationPortrait  = "portrait"
	OrientationLandscape = "landscape"
)

// Margin bounds in inches.
const (
	MinMargin     = 0.0
	MaxMargin     = 3.0
	DefaultMargin = 0.5
)

const mmPerInch = 25.4

// pageSizesMM holds portrait page dimensions in millimetres.
var pageSizesMM = map[string][2]float64{
	PageSizeA4:     {210, 297},
	PageSizeLetter: {215.9, 279.4},
	PageSizeLegal:  {215.9, 355.6},
}

// PageSettings configures the physical pages of an export.
type PageSettings struct {
	Size        string  // "a4", "letter", "legal"
	Orientation string  // "portrait", "landscape"
	Margin      float64 // inches, applied to all sides
}

// DefaultPageSettings returns A4 portrait pages with half-inch margins.
func DefaultPageSettings() *PageSettings {
	return &PageSettings{
		Size:        PageSizeA4,
		Orientation: OrientationPortrait,
		Margin:      DefaultMargin,
	}
}

// Validate checks that page settings are valid.
// Returns nil if p is nil (nil means use defaults).
// Does not mutate - uses case-insensitive comparison.
func (p *PageSettings) Validate() error {
	if p == nil {
		return nil
	}
	if _, ok := pageSizesMM[strings.ToLower(p.Size)]; !ok {
		return fmt.Errorf("%w: %q", ErrInvalidPageSize, p.Size)
	}
	switch strings.ToLower(p.Orientation) {
	case OrientationPortrait, OrientationLandscape:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidOrientation, p.Orientation)
	}
	if p.Margin < MinMargin || p.Margin > MaxMargin {
		return fmt.Errorf("%w: %.2f (must be between %.2f and %.2f)", ErrInvalidMargin, p.Margin, MinMargin, MaxMargin)
	}
	w, h := p.SizeMM()
	if m := 2 * p.Margin * mmPerInch; m >= w || m >= h {
		return fmt.Errorf("%w: %.2f leaves no printable area", ErrInvalidMargin, p.Margin)
	}
	return nil
}

// landscape reports whether the settings ask for landscape pages.
func (p *PageSettings) landscape() bool {
	return strings.EqualFold(p.Orientation, OrientationLandscape)
}

// SizeMM returns the oriented page width and height in millimetres.
func (p *PageSettings) SizeMM() (width, height float64) {
	dims, ok := pageSizesMM[strings.ToLower(p.Size)]
	if !ok {
		dims = pageSizesMM[PageSizeA4]
	}
	if p.landscape() {
		return dims[1], dims[0]
	}
	return dims[0], dims[1]
}

// PrintableMM returns the width and height inside the margins, in
// millimetres.
func (p *PageSettings) PrintableMM() (width, height float64) {
	w, h := p.SizeMM()
	m := p.Margin * mmPerInch
	return w - 2*m, h - 2*m
}

// resolvePage returns settings to use for p: defaults when nil, with
// lowercase names.
func resolvePage(p *PageSettings) *PageSettings {
	if p == nil {
		return DefaultPageSettings()
	}
	return &PageSettings{
		Size:        strings.ToLower(p.Size),
		Orientation: strings.ToLower(p.Orientation),
		Margin:      p.Margin,
	}
}

// ExportMode selects how a document becomes a PDF.
type ExportMode string

// Export modes.
const (
	// ExportRaster captures the rendered document as one image and slices it
	// across pages.
	ExportRaster ExportMode = "raster"
	// ExportPrint uses the browser's native print-to-PDF.
	ExportPrint ExportMode = "print"
)

// Validate checks that m is a known mode. The empty mode means raster.
func (m ExportMode) Validate() error {
	switch m {
	case "", ExportRaster, ExportPrint:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidExportMode, string(m))
}

// TOC default depths.
const (
	DefaultTOCMinDepth = 1
	DefaultTOCMaxDepth = 2
)

// TOC configures a numbered table of contents above the document body.
type TOC struct {
	Title    string
	MinDepth int // 0 means DefaultTOCMinDepth
	MaxDepth int // 0 means DefaultTOCMaxDepth
}

// Validate checks the depth range. Returns nil if t is nil.
func (t *TOC) Validate() error {
	if t == nil {
		return nil
	}
	minDepth, maxDepth := t.depths()
	if minDepth < 1 || maxDepth > 2 || minDepth > maxDepth {
		return fmt.Errorf("%w: %d-%d (levels are 1 and 2)", ErrInvalidTOCDepth, t.MinDepth, t.MaxDepth)
	}
	return nil
}

func (t *TOC) depths() (minDepth, maxDepth int) {
	minDepth, maxDepth = t.MinDepth, t.MaxDepth
	if minDepth == 0 {
		minDepth = DefaultTOCMinDepth
	}
	if maxDepth == 0 {
		maxDepth = DefaultTOCMaxDepth
	}
	return minDepth, maxDepth
}

func (t *TOC) data() *pipeline.TOCData {
	if t == nil {
		return nil
	}
	minDepth, maxDepth := t.depths()
	return &pipeline.TOCData{Title: t.Title, MinDepth: minDepth, MaxDepth: maxDepth}
}

// Input is one source document to render.
type Input struct {
	Name   string // label used in logs and artifact names
	Source string // LaTeX-subset markup
	Title  string // page title; empty uses the first heading
	CSS    string // appended after the converter style
	TOC    *TOC   // optional table of contents
}

// Document is a rendered node tree plus the page options it was rendered
// with. It is read-only once returned and may be exported concurrently.
type Document struct {
	Name  string
	Title string
	CSS   string
	TOC   *TOC
	Nodes []tree.Node
}

// Empty reports whether there is nothing to export.
func (d *Document) Empty() bool {
	return d == nil || len(d.Nodes) == 0
}

// Stats counts the document's nodes.
func (d *Document) Stats() pipeline.Stats {
	if d == nil {
		return pipeline.Stats{}
	}
	return pipeline.Summarize(d.Nodes)
}

// MathError describes one math region the backend rejected.
type MathError struct {
	Delimiter string
	Source    string
	Offset    int // byte offset of the opening delimiter
	Err       error
}

func (e MathError) Error() string {
	return fmt.Sprintf("math at byte %d: %v", e.Offset, e.Err)
}

func (e MathError) Unwrap() error { return e.Err }

// MathErrors lists the failed math regions in document order.
func (d *Document) MathErrors() []MathError {
	if d == nil {
		return nil
	}
	failed := pipeline.MathErrors(d.Nodes)
	errs := make([]MathError, 0, len(failed))
	for _, m := range failed {
		errs = append(errs, MathError{
			Delimiter: m.Delim.String(),
			Source:    m.Source,
			Offset:    int(m.Pos.Start),
			Err:       m.Err,
		})
	}
	return errs
}
