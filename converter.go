package tex2pdf

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/alnah/go-tex2pdf/internal/assets"
	"github.com/alnah/go-tex2pdf/internal/browser"
	"github.com/alnah/go-tex2pdf/internal/fileutil"
	"github.com/alnah/go-tex2pdf/internal/pipeline"
	"github.com/alnah/go-tex2pdf/internal/tree"
	"github.com/alnah/go-tex2pdf/internal/typeset"
)

var (
	_ exporter = (*rasterExporter)(nil)
	_ exporter = (*printExporter)(nil)
)

// exporter turns a complete HTML page into PDF bytes.
type exporter interface {
	Export(ctx context.Context, htmlContent string, page *PageSettings) ([]byte, error)
}

// Converter renders LaTeX-subset documents and exports them to PDF.
// Create with NewConverter, and Close when done. A Converter is safe for
// concurrent use; its headless Chrome is launched on the first export or
// KaTeX typeset.
type Converter struct {
	cfg       converterConfig
	loader    assets.AssetLoader
	style     string
	browser   *browser.Browser
	engine    *typeset.Engine
	pipeline  *pipeline.Pipeline
	exporters map[ExportMode]exporter
	log       *slog.Logger
}

// NewConverter creates a Converter. Returns an error if an option is
// invalid or an asset cannot be loaded.
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{
		cfg: converterConfig{timeout: defaultTimeout, scale: defaultScale},
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.cfg.mode.Validate(); err != nil {
		return nil, err
	}
	if c.cfg.mode == "" {
		c.cfg.mode = ExportRaster
	}
	if c.cfg.scale <= 0 || c.cfg.scale > maxScale {
		return nil, fmt.Errorf("%w: %.2f (must be in (0, %.0f])", ErrInvalidScale, c.cfg.scale, maxScale)
	}

	c.log = c.cfg.logger
	if c.log == nil {
		c.log = slog.New(slog.DiscardHandler)
	}

	resolver, err := assets.NewAssetResolver(c.cfg.assetPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAssetPath, err)
	}
	c.loader = resolver

	if err := c.resolveStyle(); err != nil {
		return nil, err
	}
	tmpl, err := c.loader.LoadTemplate(assets.PageTemplateName)
	if err != nil {
		return nil, fmt.Errorf("loading page template: %w", err)
	}

	c.browser = browser.New(c.cfg.timeout, c.log)
	c.engine, err = typeset.New(typeset.Options{
		Backend:         c.cfg.mathBackend,
		KaTeXScript:     c.cfg.katexScript,
		KaTeXStylesheet: c.cfg.katexStylesheet,
		CacheSize:       c.cfg.cacheSize,
		Browser:         c.browser,
		Logger:          c.log,
	})
	if err != nil {
		return nil, err
	}

	c.pipeline, err = pipeline.New(pipeline.Config{
		Typesetter: c.engine,
		Template:   tmpl,
		Logger:     c.log,
	})
	if err != nil {
		_ = c.engine.Close()
		return nil, fmt.Errorf("initializing pipeline: %w", err)
	}

	if c.exporters == nil {
		c.exporters = make(map[ExportMode]exporter)
	}
	if _, ok := c.exporters[ExportRaster]; !ok {
		c.exporters[ExportRaster] = &rasterExporter{browser: c.browser, scale: c.cfg.scale, log: c.log}
	}
	if _, ok := c.exporters[ExportPrint]; !ok {
		c.exporters[ExportPrint] = &printExporter{browser: c.browser}
	}
	return c, nil
}

// resolveStyle resolves the style input (name, path, or CSS content) to CSS
// content. An empty input loads the default style.
func (c *Converter) resolveStyle() error {
	input := c.cfg.styleInput
	if input == "" {
		input = assets.DefaultStyleName
	}

	if fileutil.IsFilePath(input) {
		content, err := os.ReadFile(input) // #nosec G304 -- user-provided path
		if err != nil {
			return fmt.Errorf("loading style file %q: %w", input, err)
		}
		c.style = string(content)
		return nil
	}

	if strings.Contains(input, "{") {
		c.style = input
		return nil
	}

	css, err := c.loader.LoadStyle(input)
	if err != nil {
		return fmt.Errorf("loading style %q: %w", input, err)
	}
	c.style = css
	return nil
}

// Render translates the input's source and resolves its math. Math the
// backend rejects stays in the document as errored source; see
// Document.MathErrors. The error covers preconditions and cancellation.
func (c *Converter) Render(ctx context.Context, in Input) (doc *Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	if err := in.TOC.Validate(); err != nil {
		return nil, err
	}
	nodes, err := c.pipeline.Render(ctx, tree.NewSource(in.Name, in.Source))
	if err != nil {
		return nil, err
	}
	return &Document{
		Name:  in.Name,
		Title: in.Title,
		CSS:   in.CSS,
		TOC:   in.TOC,
		Nodes: nodes,
	}, nil
}

// HTML returns the complete HTML page for a rendered document.
func (c *Converter) HTML(ctx context.Context, doc *Document) (string, error) {
	if doc == nil {
		return "", ErrEmptySurface
	}
	css := c.style
	if doc.CSS != "" {
		css += "\n" + doc.CSS
	}
	return c.pipeline.Page(ctx, doc.Nodes, pipeline.PageOptions{
		Title:       doc.Title,
		Lang:        c.cfg.lang,
		CSS:         css,
		Stylesheets: c.engine.Stylesheets,
		TOC:         doc.TOC.data(),
	})
}

// Export produces a PDF for a rendered document. A nil page uses the
// defaults. An empty document is rejected with ErrEmptySurface. Context
// errors are returned unwrapped; every other failure wraps ErrExport.
func (c *Converter) Export(ctx context.Context, doc *Document, page *PageSettings) (pdf []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: internal error: %v", ErrExport, r)
		}
	}()

	if doc.Empty() {
		return nil, ErrEmptySurface
	}
	if err := page.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	htmlContent, err := c.HTML(ctx, doc)
	if err != nil {
		return nil, exportError(err)
	}

	start := time.Now()
	page = resolvePage(page)
	pdf, err = c.exporters[c.cfg.mode].Export(ctx, htmlContent, page)
	if err != nil {
		return nil, exportError(err)
	}
	c.log.Debug("exported document",
		"name", doc.Name,
		"mode", string(c.cfg.mode),
		"size", page.Size,
		"bytes", len(pdf),
		"duration", time.Since(start))
	return pdf, nil
}

// exportError wraps err with ErrExport, leaving context errors as they are.
func exportError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, ErrExport) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrExport, err)
}

// Convert renders the input and exports it in one call.
func (c *Converter) Convert(ctx context.Context, in Input, page *PageSettings) (*Document, []byte, error) {
	doc, err := c.Render(ctx, in)
	if err != nil {
		return nil, nil, err
	}
	pdf, err := c.Export(ctx, doc, page)
	if err != nil {
		return doc, nil, err
	}
	return doc, pdf, nil
}

// Close releases the math backend and the browser.
func (c *Converter) Close() error {
	var errs []error
	if c.engine != nil {
		errs = append(errs, c.engine.Close())
	}
	if c.browser != nil {
		errs = append(errs, c.browser.Close())
	}
	return errors.Join(errs...)
}
