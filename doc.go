// Package tex2pdf renders documents written in a small LaTeX subset and
// exports them to PDF using headless Chrome.
//
// # Quick Start
//
// Create a converter, render a source, export it, and close when done:
//
//	conv, err := tex2pdf.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conv.Close()
//
//	doc, err := conv.Render(ctx, tex2pdf.Input{
//	    Name:   "notes.tex",
//	    Source: `\section{Energy} Recall that $E = mc^2$.`,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	pdf, err := conv.Export(ctx, doc, nil)
//
// # Rendering
//
// Render translates the markup (\section, \subsection, \textbf, \textit,
// \underline, itemize lists) into a node tree and typesets every math
// region: $...$, \(...\), $$...$$ and \[...\]. A region the math backend
// rejects does not fail the render. It stays in the document as source,
// styled as an error, and is listed by Document.MathErrors.
//
// Two math backends are available. "builtin" checks the math and shows it
// as styled source. "katex" typesets with KaTeX inside the shared browser.
//
// # Export
//
// The default raster mode captures the rendered document as one image at
// the printable width and slices it across fixed pages. Print mode uses
// Chrome's print-to-PDF instead.
//
//	conv, err := tex2pdf.NewConverter(
//	    tex2pdf.WithMathBackend("katex"),
//	    tex2pdf.WithExportMode(tex2pdf.ExportPrint),
//	    tex2pdf.WithStyle("academic"),
//	)
//
// Page settings are passed per export:
//
//	pdf, err := conv.Export(ctx, doc, &tex2pdf.PageSettings{
//	    Size: tex2pdf.PageSizeLetter, Orientation: tex2pdf.OrientationLandscape, Margin: 1,
//	})
//
// # Parallel Processing
//
// For batch exports, use ConverterPool to manage several browsers:
//
//	pool := tex2pdf.NewConverterPool(tex2pdf.ResolvePoolSize(0))
//	defer pool.Close()
//
//	conv, err := pool.Acquire()
//	if err != nil {
//	    return err
//	}
//	defer pool.Release(conv)
//
// # Errors
//
// Preconditions return ErrNilSource, ErrInvalidSource or ErrSourceTooLarge.
// Export failures wrap ErrExport together with the step that failed, such
// as ErrBrowserConnect or ErrRasterize. Context cancellation is returned
// as is.
package tex2pdf
