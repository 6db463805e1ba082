package main

import (
	"errors"
	"os"

	"github.com/alnah/go-tex2pdf"
	"github.com/alnah/go-tex2pdf/internal/config"
	"github.com/alnah/go-tex2pdf/internal/dateutil"
	"github.com/alnah/go-tex2pdf/internal/highlight"
	"github.com/alnah/go-tex2pdf/internal/present"
)

// Exit codes for the tex2pdf CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful run
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied
	ExitBrowser = 4 // Browser/Chrome errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, tex2pdf.ErrBrowserConnect) ||
		errors.Is(err, tex2pdf.ErrPageCreate) ||
		errors.Is(err, tex2pdf.ErrPageLoad) ||
		errors.Is(err, tex2pdf.ErrRasterize) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadSource) ||
		errors.Is(err, ErrNoSources) ||
		errors.Is(err, tex2pdf.ErrWriteArtifact) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, tex2pdf.ErrInvalidSource) ||
		errors.Is(err, tex2pdf.ErrSourceTooLarge) ||
		errors.Is(err, tex2pdf.ErrEmptySurface) ||
		errors.Is(err, tex2pdf.ErrInvalidPageSize) ||
		errors.Is(err, tex2pdf.ErrInvalidOrientation) ||
		errors.Is(err, tex2pdf.ErrInvalidMargin) ||
		errors.Is(err, tex2pdf.ErrInvalidExportMode) ||
		errors.Is(err, tex2pdf.ErrInvalidScale) ||
		errors.Is(err, tex2pdf.ErrInvalidTOCDepth) ||
		errors.Is(err, tex2pdf.ErrStyleNotFound) ||
		errors.Is(err, tex2pdf.ErrInvalidAssetPath) ||
		errors.Is(err, dateutil.ErrInvalidDateFormat) ||
		errors.Is(err, present.ErrUnknownFormat) ||
		errors.Is(err, highlight.ErrUnknownFormat) ||
		errors.Is(err, tex2pdf.ErrUnknownMathBackend) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrUsage) {
		return ExitUsage
	}

	return ExitGeneral
}
