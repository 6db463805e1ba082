package main

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/alnah/go-tex2pdf"
	"github.com/alnah/go-tex2pdf/internal/assets"
	"github.com/alnah/go-tex2pdf/internal/config"
	"github.com/alnah/go-tex2pdf/internal/hints"
	"github.com/alnah/go-tex2pdf/internal/typeset"
)

// Sentinel errors for CLI operations.
var (
	ErrUsage              = errors.New("invalid usage")
	ErrNoSources          = errors.New("no source files found")
	ErrReadSource         = errors.New("failed to read source file")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
	ErrMathFailed         = errors.New("math regions could not be typeset")
)

// converterOptions translates cfg into converter options.
func converterOptions(cfg *config.Config, log *slog.Logger) ([]tex2pdf.Option, error) {
	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	opts := []tex2pdf.Option{
		tex2pdf.WithLogger(log),
		tex2pdf.WithTimeout(timeout),
		tex2pdf.WithStyle(cfg.Style),
		tex2pdf.WithAssetPath(cfg.Assets.BasePath),
		tex2pdf.WithMathBackend(strings.ToLower(cfg.Math.Backend)),
		tex2pdf.WithKaTeX(cfg.Math.KaTeXScript, cfg.Math.KaTeXStylesheet),
		tex2pdf.WithMathCacheSize(cfg.Math.CacheSize),
		tex2pdf.WithLang(cfg.Lang),
		tex2pdf.WithExportMode(tex2pdf.ExportMode(strings.ToLower(cfg.Export.Mode))),
	}
	if cfg.Export.Scale > 0 {
		opts = append(opts, tex2pdf.WithScale(cfg.Export.Scale))
	}
	return opts, nil
}

// pageSettings returns the page settings from cfg over the library
// defaults.
func pageSettings(cfg *config.Config) (*tex2pdf.PageSettings, error) {
	page := tex2pdf.DefaultPageSettings()
	if cfg.Page.Size != "" {
		page.Size = strings.ToLower(cfg.Page.Size)
	}
	if cfg.Page.Orientation != "" {
		page.Orientation = strings.ToLower(cfg.Page.Orientation)
	}
	if cfg.Page.Margin > 0 {
		page.Margin = cfg.Page.Margin
	}
	if err := page.Validate(); err != nil {
		return nil, err
	}
	return page, nil
}

// tocSettings returns the TOC from cfg, or nil when disabled.
func tocSettings(cfg *config.Config) *tex2pdf.TOC {
	if !cfg.TOC.Enabled {
		return nil
	}
	return &tex2pdf.TOC{Title: cfg.TOC.Title, MaxDepth: cfg.TOC.MaxDepth}
}

// hintFor returns actionable hints for err, or "".
func hintFor(err error, cfg *config.Config) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, tex2pdf.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(nil)
	case errors.Is(err, tex2pdf.ErrStyleNotFound):
		return hints.ForStyleNotFound(assets.StyleNames())
	case errors.Is(err, tex2pdf.ErrWriteArtifact):
		return hints.ForOutputDirectory()
	case errors.Is(err, tex2pdf.ErrPageLoad) && usesKaTeX(cfg):
		return hints.ForKaTeX(cfg.Math.KaTeXScript)
	}
	return ""
}

// mathHint explains failed math regions of doc, or returns "". A KaTeX
// script that never loaded fails every region with the same browser error.
func mathHint(doc *tex2pdf.Document, cfg *config.Config) string {
	failed := doc.MathErrors()
	if len(failed) == 0 {
		return ""
	}
	if usesKaTeX(cfg) && !errors.Is(failed[0], tex2pdf.ErrTypeset) {
		if errors.Is(failed[0], tex2pdf.ErrBrowserConnect) {
			return hints.ForBrowserConnect()
		}
		return hints.ForKaTeX(cfg.Math.KaTeXScript)
	}
	list := make([]hints.MathFailure, 0, len(failed))
	for _, m := range failed {
		list = append(list, hints.MathFailure{Offset: m.Offset, Err: m.Err})
	}
	return hints.ForMathErrors(list)
}

func usesKaTeX(cfg *config.Config) bool {
	return cfg != nil && strings.EqualFold(cfg.Math.Backend, typeset.BackendKaTeX)
}
