//go:build integration

package tex2pdf

// Notes:
// - Runs real exports through headless Chrome (rod downloads it if missing)
// - testPool is shared by all tests and closed in TestMain
// - Pool size is capped at 2 to keep CI memory in check

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"
)

const testTimeout = 60 * time.Second

var testPool *ConverterPool

func TestMain(m *testing.M) {
	testPool = NewConverterPool(min(ResolvePoolSize(0), 2))
	code := m.Run()
	_ = testPool.Close()
	os.Exit(code)
}

// acquireConverter gets a converter from the shared pool with automatic
// release.
func acquireConverter(t *testing.T) *Converter {
	t.Helper()
	c, err := testPool.Acquire()
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	t.Cleanup(func() { testPool.Release(c) })
	return c
}

const longSource = `\section{Kinematics}
Position is $x(t)$ and velocity is \(v = \dot{x}\).
\[ x(t) = x_0 + v_0 t + \frac{1}{2} a t^2 \]
\begin{itemize}
\item \textbf{uniform} motion
\item \textit{accelerated} motion
\end{itemize}
`

func TestIntegration_RasterExport(t *testing.T) {
	t.Parallel()

	c := acquireConverter(t)
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	doc, err := c.Render(ctx, Input{Name: "long.tex", Source: strings.Repeat(longSource, 40)})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	pdf, err := c.Export(ctx, doc, DefaultPageSettings())
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	info, err := Inspect(pdf)
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}
	if info.Pages < 2 {
		t.Errorf("pages = %d, want a multi-page document", info.Pages)
	}
}

func TestIntegration_PrintExport(t *testing.T) {
	t.Parallel()

	c, err := NewConverter(WithExportMode(ExportPrint))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	doc, err := c.Render(ctx, Input{Source: longSource})
	if err != nil {
		t.Fatal(err)
	}
	pdf, err := c.Export(ctx, doc, &PageSettings{Size: PageSizeLetter, Orientation: OrientationLandscape, Margin: 1})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	info, err := Inspect(pdf)
	if err != nil {
		t.Fatal(err)
	}
	if info.Pages != 1 {
		t.Errorf("pages = %d, want 1", info.Pages)
	}
	if info.WidthMM < info.HeightMM {
		t.Errorf("expected landscape page, got %.1f x %.1f mm", info.WidthMM, info.HeightMM)
	}
}

func TestIntegration_KaTeX(t *testing.T) {
	t.Parallel()

	c, err := NewConverter(WithMathBackend("katex"))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	doc, err := c.Render(ctx, Input{Source: `ok $\alpha^2$ bad $\frac{1}{$`})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	errs := doc.MathErrors()
	if len(errs) != 1 || !errors.Is(errs[0], ErrTypeset) {
		t.Fatalf("MathErrors() = %v, want one typeset error", errs)
	}
	page, err := c.HTML(ctx, doc)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(page, `class="katex"`) {
		t.Error("expected KaTeX markup in the page")
	}
}

func TestIntegration_ExportCancelled(t *testing.T) {
	t.Parallel()

	c := acquireConverter(t)
	doc, err := c.Render(context.Background(), Input{Source: longSource})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Export(ctx, doc, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}
