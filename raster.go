package tex2pdf

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"log/slog"
	"math"
	"strings"

	"fortio.org/safecast"
	"github.com/go-rod/rod/lib/proto"
	"github.com/jung-kurt/gofpdf"

	"github.com/alnah/go-tex2pdf/internal/browser"
)

const (
	cssPixelsPerInch = 96
	// documentSelector is the element holding the rendered body in the
	// page template.
	documentSelector = "#document"
	captureHeight    = 1024
	// pageEpsilon absorbs float error so an image that exactly fills n
	// pages does not spill onto n+1.
	pageEpsilon = 1e-6
	imageName   = "document"
)

// rasterExporter captures the rendered document as a single PNG and slices
// it across fixed-size PDF pages.
type rasterExporter struct {
	browser *browser.Browser
	scale   float64
	log     *slog.Logger
}

// Export implements exporter.
func (r *rasterExporter) Export(ctx context.Context, htmlContent string, page *PageSettings) ([]byte, error) {
	img, err := r.capture(ctx, htmlContent, page)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return paginate(img, page)
}

// capture loads the page at the printable width and screenshots the
// document element, including the parts below the viewport.
func (r *rasterExporter) capture(ctx context.Context, htmlContent string, page *PageSettings) ([]byte, error) {
	p, err := r.browser.Load(ctx, htmlContent)
	if err != nil {
		return nil, err
	}
	defer func() { _ = p.Close() }()

	printW, _ := page.PrintableMM()
	width, err := safecast.Round[int](printW / mmPerInch * cssPixelsPerInch)
	if err != nil {
		return nil, fmt.Errorf("%w: viewport width: %v", ErrRasterize, err)
	}
	if err := p.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             width,
		Height:            captureHeight,
		DeviceScaleFactor: r.scale,
	}); err != nil {
		return nil, fmt.Errorf("%w: setting viewport: %v", ErrRasterize, err)
	}

	// Web fonts and KaTeX glyphs must be in before the capture.
	if _, err := p.Eval(`() => document.fonts.ready`); err != nil {
		return nil, pageError(ctx, ErrRasterize, "waiting for fonts", err)
	}

	el, err := p.Element(documentSelector)
	if err != nil {
		return nil, pageError(ctx, ErrRasterize, "finding document", err)
	}
	shape, err := el.Shape()
	if err != nil {
		return nil, pageError(ctx, ErrRasterize, "measuring document", err)
	}
	box := shape.Box()
	if box == nil || box.Width <= 0 || box.Height <= 0 {
		return nil, fmt.Errorf("%w: document has no visible area", ErrRasterize)
	}

	img, err := p.Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
		Clip: &proto.PageViewport{
			X:      box.X,
			Y:      box.Y,
			Width:  box.Width,
			Height: box.Height,
			Scale:  1,
		},
		CaptureBeyondViewport: true,
	})
	if err != nil {
		return nil, pageError(ctx, ErrRasterize, "capturing screenshot", err)
	}
	r.log.Debug("captured document",
		"cssWidth", box.Width,
		"cssHeight", box.Height,
		"scale", r.scale,
		"bytes", len(img))
	return img, nil
}

// pageError prefers the context error: rod reports a cancelled page as a
// generic CDP failure.
func pageError(ctx context.Context, sentinel error, step string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return fmt.Errorf("%w: %s: %v", sentinel, step, err)
}

// pageCount returns how many pages of printable height printH an image of
// imgH needs. Always at least one.
func pageCount(imgH, printH float64) (int, error) {
	n, err := safecast.Convert[int](math.Ceil(imgH/printH - pageEpsilon))
	if err != nil {
		return 0, err
	}
	return max(n, 1), nil
}

// paginate lays a PNG out at the printable width of page and slices it
// vertically across as many pages as its height needs. Every page shows
// the image through a clip of the printable area, offset by the height of
// the pages before it.
func paginate(img []byte, page *PageSettings) ([]byte, error) {
	cfg, err := png.DecodeConfig(bytes.NewReader(img))
	if err != nil {
		return nil, fmt.Errorf("%w: decoding image: %v", ErrPaginate, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: empty image", ErrPaginate)
	}

	dims, ok := pageSizesMM[strings.ToLower(page.Size)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPageSize, page.Size)
	}
	orientation := "P"
	if page.landscape() {
		orientation = "L"
	}
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: orientation,
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: dims[0], Ht: dims[1]},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator("go-tex2pdf", true)

	margin := page.Margin * mmPerInch
	printW, printH := page.PrintableMM()
	imgH := float64(cfg.Height) * printW / float64(cfg.Width)
	pages, err := pageCount(imgH, printH)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaginate, err)
	}

	opts := gofpdf.ImageOptions{ImageType: "PNG", AllowNegativePosition: true}
	pdf.RegisterImageOptionsReader(imageName, opts, bytes.NewReader(img))
	for i := range pages {
		pdf.AddPage()
		pdf.ClipRect(margin, margin, printW, printH, false)
		pdf.ImageOptions(imageName, margin, margin-float64(i)*printH, printW, imgH, false, opts, 0, "")
		pdf.ClipEnd()
	}
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaginate, err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaginate, err)
	}
	return buf.Bytes(), nil
}
