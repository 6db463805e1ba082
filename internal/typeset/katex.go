package typeset

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/go-rod/rod"

	"github.com/alnah/go-tex2pdf/internal/browser"
	"github.com/alnah/go-tex2pdf/internal/fileutil"
	"github.com/alnah/go-tex2pdf/internal/mathres"
)

var _ mathres.Typesetter = (*KaTeX)(nil)

// Default KaTeX distribution.
const (
	DefaultKaTeXScript     = "https://cdn.jsdelivr.net/npm/katex@0.16.11/dist/katex.min.js"
	DefaultKaTeXStylesheet = "https://cdn.jsdelivr.net/npm/katex@0.16.11/dist/katex.min.css"
)

// renderJS never throws: KaTeX parse errors come back in the error field.
const renderJS = `(content, display) => {
	try {
		return {html: katex.renderToString(content, {displayMode: display, throwOnError: true}), error: ""};
	} catch (e) {
		return {html: "", error: String((e && e.message) || e)};
	}
}`

// KaTeX typesets math with katex.renderToString in a dedicated Chrome page.
// Calls are serialized on that page.
type KaTeX struct {
	browser    *browser.Browser
	script     string
	stylesheet string

	mu   sync.Mutex
	page *rod.Page
}

// NewKaTeX returns a KaTeX backend. script and stylesheet are URLs or local
// paths; empty values select the default CDN distribution.
func NewKaTeX(b *browser.Browser, script, stylesheet string) *KaTeX {
	if script == "" {
		script = DefaultKaTeXScript
	}
	if stylesheet == "" {
		stylesheet = DefaultKaTeXStylesheet
	}
	return &KaTeX{browser: b, script: script, stylesheet: stylesheet}
}

// Stylesheet returns the KaTeX stylesheet reference for page assembly.
func (k *KaTeX) Stylesheet() string {
	if fileutil.IsURL(k.stylesheet) {
		return k.stylesheet
	}
	return "file://" + k.stylesheet
}

// Typeset implements mathres.Typesetter.
func (k *KaTeX) Typeset(ctx context.Context, content string, display bool) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	page, err := k.ensurePage()
	if err != nil {
		return "", err
	}

	res, err := page.Context(ctx).Eval(renderJS, content, display)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		// The page may be gone; start over on the next call.
		_ = k.page.Close()
		k.page = nil
		return "", fmt.Errorf("katex eval: %w", err)
	}

	if msg := res.Value.Get("error").Str(); msg != "" {
		return "", fmt.Errorf("%w: %s", ErrTypeset, msg)
	}
	return res.Value.Get("html").Str(), nil
}

// ensurePage opens the KaTeX page on first use. Callers hold k.mu.
func (k *KaTeX) ensurePage() (*rod.Page, error) {
	if k.page != nil {
		return k.page, nil
	}

	page, err := k.browser.Blank()
	if err != nil {
		return nil, err
	}

	if fileutil.IsURL(k.script) {
		err = page.AddScriptTag(k.script, "")
	} else {
		var src []byte
		src, err = os.ReadFile(k.script)
		if err == nil {
			err = page.AddScriptTag("", string(src))
		}
	}
	if err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("%w: loading katex: %v", browser.ErrPageLoad, err)
	}

	k.page = page
	return page, nil
}

// Close releases the KaTeX page. The browser itself is owned by the caller.
func (k *KaTeX) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.page == nil {
		return nil
	}
	err := k.page.Close()
	k.page = nil
	return err
}
