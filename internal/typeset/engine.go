package typeset

import (
	"fmt"
	"log/slog"

	"github.com/alnah/go-tex2pdf/internal/browser"
	"github.com/alnah/go-tex2pdf/internal/mathres"
)

// Backend names accepted by New.
const (
	BackendBuiltin = "builtin"
	BackendKaTeX   = "katex"
)

// Options selects and tunes a backend.
type Options struct {
	Backend         string // builtin (default) or katex
	KaTeXScript     string
	KaTeXStylesheet string
	CacheSize       int // 0 uses DefaultCacheSize, negative disables the cache
	Browser         *browser.Browser
	Logger          *slog.Logger
}

// Engine is an assembled backend stack.
type Engine struct {
	mathres.Typesetter

	// Stylesheets are the extra stylesheet references the page needs for
	// this backend's markup.
	Stylesheets []string

	closers []func() error
}

// New assembles the backend named in opts, wrapped in validation and an
// LRU cache. The katex backend needs opts.Browser.
func New(opts Options) (*Engine, error) {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	e := &Engine{}
	var ts mathres.Typesetter
	switch opts.Backend {
	case "", BackendBuiltin:
		ts = Builtin{}
	case BackendKaTeX:
		if opts.Browser == nil {
			return nil, fmt.Errorf("%w: katex needs a browser", ErrUnknownBackend)
		}
		k := NewKaTeX(opts.Browser, opts.KaTeXScript, opts.KaTeXStylesheet)
		ts = k
		e.Stylesheets = append(e.Stylesheets, k.Stylesheet())
		e.closers = append(e.closers, k.Close)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}

	ts = NewValidated(ts)
	if opts.CacheSize >= 0 {
		ts = NewCache(ts, opts.CacheSize)
	}
	e.Typesetter = ts

	log.Debug("math backend ready", "backend", opts.Backend, "cacheSize", opts.CacheSize)
	return e, nil
}

// Close releases backend resources.
func (e *Engine) Close() error {
	var first error
	for _, c := range e.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	e.closers = nil
	return first
}
