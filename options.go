package tex2pdf

import (
	"log/slog"
	"time"
)

// Default converter settings.
const (
	defaultTimeout = 30 * time.Second
	defaultScale   = 2.0
	maxScale       = 4.0
)

// converterConfig holds options applied by NewConverter.
type converterConfig struct {
	timeout         time.Duration
	styleInput      string // name, file path, or CSS content
	assetPath       string
	mathBackend     string
	katexScript     string
	katexStylesheet string
	cacheSize       int
	lang            string
	mode            ExportMode
	scale           float64
	logger          *slog.Logger
}

// Option configures a Converter.
type Option func(*Converter)

// WithTimeout bounds page loads and exports when the context has no
// deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Converter) {
		if d > 0 {
			c.cfg.timeout = d
		}
	}
}

// WithStyle sets the page style. The value is a style name, a path to a CSS
// file, or CSS content.
func WithStyle(style string) Option {
	return func(c *Converter) {
		c.cfg.styleInput = style
	}
}

// WithAssetPath looks up styles and the page template in dir before the
// embedded assets.
func WithAssetPath(dir string) Option {
	return func(c *Converter) {
		c.cfg.assetPath = dir
	}
}

// WithMathBackend selects the math backend: "builtin" (default) or "katex".
func WithMathBackend(name string) Option {
	return func(c *Converter) {
		c.cfg.mathBackend = name
	}
}

// WithKaTeX sets the KaTeX script and stylesheet locations for the katex
// backend. Empty values keep the CDN defaults.
func WithKaTeX(script, stylesheet string) Option {
	return func(c *Converter) {
		c.cfg.katexScript = script
		c.cfg.katexStylesheet = stylesheet
	}
}

// WithMathCacheSize sets the typeset cache capacity. Zero keeps the
// default; a negative size disables the cache.
func WithMathCacheSize(n int) Option {
	return func(c *Converter) {
		c.cfg.cacheSize = n
	}
}

// WithLang sets the html lang attribute of rendered pages.
func WithLang(lang string) Option {
	return func(c *Converter) {
		c.cfg.lang = lang
	}
}

// WithExportMode selects raster (default) or print export.
func WithExportMode(m ExportMode) Option {
	return func(c *Converter) {
		c.cfg.mode = m
	}
}

// WithScale sets the device pixel ratio of raster captures.
func WithScale(scale float64) Option {
	return func(c *Converter) {
		c.cfg.scale = scale
	}
}

// WithLogger sets the logger for pipeline and export events.
func WithLogger(l *slog.Logger) Option {
	return func(c *Converter) {
		c.cfg.logger = l
	}
}

// withExporter replaces the exporter for a mode (for testing).
func withExporter(m ExportMode, e exporter) Option {
	return func(c *Converter) {
		if c.exporters == nil {
			c.exporters = make(map[ExportMode]exporter)
		}
		c.exporters[m] = e
	}
}
