package tex2pdf

import (
	"context"
	"fmt"
	"io"

	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-tex2pdf/internal/browser"
)

// printExporter uses Chrome's print-to-PDF. Text stays selectable, but page
// breaks follow the browser's layout rather than fixed slices.
type printExporter struct {
	browser *browser.Browser
}

// Export implements exporter.
func (e *printExporter) Export(ctx context.Context, htmlContent string, page *PageSettings) ([]byte, error) {
	p, err := e.browser.Load(ctx, htmlContent)
	if err != nil {
		return nil, err
	}
	defer func() { _ = p.Close() }()

	reader, err := p.PDF(buildPDFOptions(page))
	if err != nil {
		return nil, pageError(ctx, ErrExport, "printing page", err)
	}
	pdf, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrExport, err)
	}
	return pdf, nil
}

// buildPDFOptions converts page settings to Chrome print options.
func buildPDFOptions(page *PageSettings) *proto.PagePrintToPDF {
	w, h := page.SizeMM()
	return &proto.PagePrintToPDF{
		PaperWidth:      floatPtr(w / mmPerInch),
		PaperHeight:     floatPtr(h / mmPerInch),
		MarginTop:       floatPtr(page.Margin),
		MarginBottom:    floatPtr(page.Margin),
		MarginLeft:      floatPtr(page.Margin),
		MarginRight:     floatPtr(page.Margin),
		PrintBackground: true,
	}
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}
