package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-tex2pdf"
	"github.com/alnah/go-tex2pdf/internal/config"
	"github.com/alnah/go-tex2pdf/internal/fileutil"
)

// dirPermissions is the mode of created output directories.
const dirPermissions = 0o750

// docConverter renders and exports one source.
type docConverter interface {
	Convert(ctx context.Context, in tex2pdf.Input, page *tex2pdf.PageSettings) (*tex2pdf.Document, []byte, error)
}

var _ docConverter = (*tex2pdf.Converter)(nil)

// Pool abstracts converter pool operations for testability.
type Pool interface {
	Acquire() (docConverter, error)
	Release(docConverter)
	Size() int
}

// converterPool adapts tex2pdf.ConverterPool to Pool.
type converterPool struct {
	*tex2pdf.ConverterPool
}

var _ Pool = converterPool{}

func (p converterPool) Acquire() (docConverter, error) {
	return p.ConverterPool.Acquire()
}

func (p converterPool) Release(c docConverter) {
	if conv, ok := c.(*tex2pdf.Converter); ok {
		p.ConverterPool.Release(conv)
	}
}

// sourceFile is one source to export.
type sourceFile struct {
	InputPath string
	OutputDir string
}

// exportResult holds the outcome of a single export.
type exportResult struct {
	InputPath  string
	OutputPath string
	Info       tex2pdf.PDFInfo
	MathFailed int
	Hint       string
	Err        error
	Duration   time.Duration
}

// exportParams holds per-run export settings resolved from config and flags.
type exportParams struct {
	page       *tex2pdf.PageSettings
	toc        *tex2pdf.TOC
	dateFormat string
	strict     bool
	now        func() time.Time
	cfg        *config.Config
}

type exportOptions struct {
	style  styleFlags
	math   mathFlags
	page   pageFlags
	toc    tocFlags
	export exportFlags
}

func (a *app) exportCmd() *cobra.Command {
	o := &exportOptions{}
	cmd := &cobra.Command{
		Use:   "export <file|dir>...",
		Short: "Export sources to PDF",
		Long: `Export renders each source and writes one PDF per source. Directories are
searched recursively for .tex, .latex and .ltx files. Exports run in parallel,
one browser per worker.

Raster mode (the default) captures the rendered page as an image and slices
it across pages. Print mode uses the browser's print-to-PDF.`,
		Args: usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs := cmd.Flags()
			mergeStyleFlags(fs, &o.style, a.cfg)
			mergeMathFlags(fs, &o.math, a.cfg)
			mergePageFlags(fs, &o.page, a.cfg)
			mergeTOCFlags(fs, &o.toc, a.cfg)
			mergeExportFlags(fs, &o.export, a.cfg)
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			if err := validateWorkers(o.export.workers, tex2pdf.MaxPoolSize); err != nil {
				return err
			}
			return a.runExport(cmd.Context(), args, o)
		},
	}
	fs := cmd.Flags()
	addStyleFlags(fs, &o.style)
	addMathFlags(fs, &o.math)
	addPageFlags(fs, &o.page)
	addTOCFlags(fs, &o.toc)
	addExportFlags(fs, &o.export)
	return cmd
}

func (a *app) runExport(ctx context.Context, args []string, o *exportOptions) error {
	page, err := pageSettings(a.cfg)
	if err != nil {
		return err
	}
	opts, err := converterOptions(a.cfg, a.log)
	if err != nil {
		return err
	}

	var files []sourceFile
	for _, arg := range args {
		found, err := discoverSources(arg, a.cfg.Export.OutputDir)
		if err != nil {
			return err
		}
		files = append(files, found...)
	}
	if len(files) == 0 {
		return fmt.Errorf("%w in %v", ErrNoSources, args)
	}

	size := tex2pdf.ResolvePoolSize(o.export.workers)
	a.log.Debug("exporting", "files", len(files), "workers", size)
	pool := tex2pdf.NewConverterPool(size, opts...)
	defer func() {
		if err := pool.Close(); err != nil {
			a.log.Warn("closing browsers", "error", err)
		}
	}()

	results := exportBatch(ctx, converterPool{pool}, files, &exportParams{
		page:       page,
		toc:        tocSettings(a.cfg),
		dateFormat: a.cfg.Export.DateFormat,
		strict:     o.export.strict,
		now:        a.env.Now,
		cfg:        a.cfg,
	})
	return a.reportResults(results)
}

// exportBatch exports files concurrently, bounded by the pool size.
// Results keep the order of files.
func exportBatch(ctx context.Context, pool Pool, files []sourceFile, params *exportParams) []exportResult {
	results := make([]exportResult, len(files))
	var g errgroup.Group
	g.SetLimit(pool.Size())

	for i, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = exportResult{InputPath: f.InputPath, Err: err}
				return nil
			}
			conv, err := pool.Acquire()
			if err != nil {
				results[i] = exportResult{InputPath: f.InputPath, Err: err}
				return nil
			}
			defer pool.Release(conv)
			results[i] = exportFile(ctx, conv, f, params)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// exportFile exports a single source and writes its artifact.
func exportFile(ctx context.Context, conv docConverter, f sourceFile, params *exportParams) (result exportResult) {
	start := time.Now()
	result.InputPath = f.InputPath
	defer func() { result.Duration = time.Since(start) }()

	data, err := os.ReadFile(f.InputPath) // #nosec G304 -- discovered path
	if err != nil {
		result.Err = fmt.Errorf("%w: %w", ErrReadSource, err)
		return result
	}
	name, err := tex2pdf.ArtifactName(f.InputPath, params.dateFormat, params.now())
	if err != nil {
		result.Err = err
		return result
	}

	doc, pdf, err := conv.Convert(ctx, tex2pdf.Input{
		Name:   filepath.Base(f.InputPath),
		Source: string(data),
		TOC:    params.toc,
	}, params.page)
	if doc != nil {
		if failed := doc.MathErrors(); len(failed) > 0 {
			result.MathFailed = len(failed)
			result.Hint = mathHint(doc, params.cfg)
			if params.strict && err == nil {
				err = fmt.Errorf("%w: %d failed, first: %v", ErrMathFailed, len(failed), failed[0])
			}
		}
	}
	if err != nil {
		result.Err = err
		return result
	}

	if err := os.MkdirAll(f.OutputDir, dirPermissions); err != nil {
		result.Err = fmt.Errorf("%w: %w", tex2pdf.ErrWriteArtifact, err)
		return result
	}
	path, err := tex2pdf.WriteArtifact(f.OutputDir, name, pdf)
	if err != nil {
		result.Err = err
		return result
	}
	result.OutputPath = path
	result.Info, _ = tex2pdf.Inspect(pdf)
	return result
}

// reportResults prints each result and the totals. The returned error is
// the first failure, so the exit code reflects its kind.
func (a *app) reportResults(results []exportResult) error {
	var firstErr error
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			if firstErr == nil {
				firstErr = fmt.Errorf("%s: %w", r.InputPath, r.Err)
			}
			a.out.Failed(r.InputPath, r.Err)
			continue
		}
		detail := pageCountLabel(r.Info.Pages)
		if a.common.verbose {
			detail += fmt.Sprintf(", %.0fx%.0fmm, %v", r.Info.WidthMM, r.Info.HeightMM, r.Duration.Round(time.Millisecond))
		}
		a.out.Created(r.OutputPath, detail)
		if r.MathFailed > 0 {
			a.out.Warn(r.InputPath, fmt.Sprintf("%d math region(s) failed%s", r.MathFailed, r.Hint))
		}
	}
	if len(results) > 1 {
		a.out.Summary(len(results)-failed, failed)
	}
	if failed > 1 {
		return fmt.Errorf("%d of %d exports failed, first: %w", failed, len(results), firstErr)
	}
	return firstErr
}

func pageCountLabel(pages int) string {
	if pages == 1 {
		return "1 page"
	}
	return fmt.Sprintf("%d pages", pages)
}

// discoverSources finds the sources named by inputPath and where each
// artifact goes. An empty outputDir writes next to each source; otherwise
// the directory layout under inputPath is mirrored in outputDir.
func discoverSources(inputPath, outputDir string) ([]sourceFile, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadSource, err)
	}

	if !info.IsDir() {
		return []sourceFile{{InputPath: inputPath, OutputDir: resolveOutputDir(inputPath, outputDir, "")}}, nil
	}

	var files []sourceFile
	err = filepath.WalkDir(inputPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("scanning %s: %w", path, err)
		}
		if d.IsDir() || !fileutil.IsSource(path) {
			return nil
		}
		files = append(files, sourceFile{InputPath: path, OutputDir: resolveOutputDir(path, outputDir, inputPath)})
		return nil
	})
	return files, err
}

// resolveOutputDir determines the artifact directory for a source.
func resolveOutputDir(inputPath, outputDir, baseInputDir string) string {
	if outputDir == "" {
		return filepath.Dir(inputPath)
	}
	if baseInputDir != "" {
		if rel, err := filepath.Rel(baseInputDir, inputPath); err == nil {
			return filepath.Join(outputDir, filepath.Dir(rel))
		}
	}
	return outputDir
}
