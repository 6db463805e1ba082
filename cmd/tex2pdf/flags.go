package main

import (
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-tex2pdf/internal/config"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
	color   string
}

// styleFlags holds page style flags.
type styleFlags struct {
	style     string
	assetPath string
	lang      string
}

// mathFlags holds math backend flags.
type mathFlags struct {
	backend         string
	katexScript     string
	katexStylesheet string
	cacheSize       int
}

// pageFlags holds page layout flags.
type pageFlags struct {
	size        string
	orientation string
	margin      float64
}

// tocFlags holds table of contents flags.
type tocFlags struct {
	enabled  bool
	title    string
	maxDepth int
}

// exportFlags holds PDF export flags.
type exportFlags struct {
	mode       string
	scale      float64
	outputDir  string
	dateFormat string
	workers    int
	timeout    string
	strict     bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs and timings")
	fs.StringVar(&f.color, "color", colorAuto, "colorize output: auto, on, off")
}

// addStyleFlags adds page style flags to a FlagSet.
func addStyleFlags(fs *flag.FlagSet, f *styleFlags) {
	fs.StringVar(&f.style, "style", "", "CSS style name, file path, or CSS content")
	fs.StringVar(&f.assetPath, "asset-path", "", "custom asset directory")
	fs.StringVar(&f.lang, "lang", "", "html lang attribute (BCP 47)")
}

// addMathFlags adds math backend flags to a FlagSet.
func addMathFlags(fs *flag.FlagSet, f *mathFlags) {
	fs.StringVarP(&f.backend, "math", "m", "", "math backend: builtin, katex")
	fs.StringVar(&f.katexScript, "katex-script", "", "katex.min.js URL or local file")
	fs.StringVar(&f.katexStylesheet, "katex-css", "", "katex.min.css URL or local file")
	fs.IntVar(&f.cacheSize, "math-cache", 0, "typeset cache entries (0 = default, <0 disables)")
}

// addPageFlags adds page layout flags to a FlagSet.
func addPageFlags(fs *flag.FlagSet, f *pageFlags) {
	fs.StringVarP(&f.size, "page-size", "p", "", "page size: letter, a4, legal")
	fs.StringVar(&f.orientation, "orientation", "", "page orientation: portrait, landscape")
	fs.Float64Var(&f.margin, "margin", 0, "page margin in inches (0-3)")
}

// addTOCFlags adds TOC flags to a FlagSet.
func addTOCFlags(fs *flag.FlagSet, f *tocFlags) {
	fs.BoolVar(&f.enabled, "toc", false, "add a numbered table of contents")
	fs.StringVar(&f.title, "toc-title", "", "table of contents heading")
	fs.IntVar(&f.maxDepth, "toc-depth", 0, "deepest heading level listed (1-2, default: 2)")
}

// addExportFlags adds export flags to a FlagSet.
func addExportFlags(fs *flag.FlagSet, f *exportFlags) {
	fs.StringVar(&f.mode, "mode", "", "export mode: raster, print")
	fs.Float64Var(&f.scale, "scale", 0, "raster device scale factor (0.5-4, default: 2)")
	fs.StringVarP(&f.outputDir, "output-dir", "o", "", "output directory (default: next to each source)")
	fs.StringVar(&f.dateFormat, "date-format", "", "append a date to file names, e.g. iso or YYYY-MM-DD")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel exports (0 = auto)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "export timeout (e.g., 30s, 2m)")
	fs.BoolVar(&f.strict, "strict", false, "fail when a math region cannot be typeset")
}

// mergeStyleFlags overrides cfg with the style flags that were set.
func mergeStyleFlags(fs *flag.FlagSet, f *styleFlags, cfg *config.Config) {
	if fs.Changed("style") {
		cfg.Style = f.style
	}
	if fs.Changed("asset-path") {
		cfg.Assets.BasePath = f.assetPath
	}
	if fs.Changed("lang") {
		cfg.Lang = f.lang
	}
}

// mergeMathFlags overrides cfg with the math flags that were set.
func mergeMathFlags(fs *flag.FlagSet, f *mathFlags, cfg *config.Config) {
	if fs.Changed("math") {
		cfg.Math.Backend = f.backend
	}
	if fs.Changed("katex-script") {
		cfg.Math.KaTeXScript = f.katexScript
	}
	if fs.Changed("katex-css") {
		cfg.Math.KaTeXStylesheet = f.katexStylesheet
	}
	if fs.Changed("math-cache") {
		cfg.Math.CacheSize = f.cacheSize
	}
}

// mergePageFlags overrides cfg with the page flags that were set.
func mergePageFlags(fs *flag.FlagSet, f *pageFlags, cfg *config.Config) {
	if fs.Changed("page-size") {
		cfg.Page.Size = f.size
	}
	if fs.Changed("orientation") {
		cfg.Page.Orientation = f.orientation
	}
	if fs.Changed("margin") {
		cfg.Page.Margin = f.margin
	}
}

// mergeTOCFlags overrides cfg with the TOC flags that were set. Setting a
// title or depth enables the TOC.
func mergeTOCFlags(fs *flag.FlagSet, f *tocFlags, cfg *config.Config) {
	if fs.Changed("toc") {
		cfg.TOC.Enabled = f.enabled
	}
	if fs.Changed("toc-title") {
		cfg.TOC.Title = f.title
		cfg.TOC.Enabled = true
	}
	if fs.Changed("toc-depth") {
		cfg.TOC.MaxDepth = f.maxDepth
		cfg.TOC.Enabled = true
	}
}

// mergeExportFlags overrides cfg with the export flags that were set.
func mergeExportFlags(fs *flag.FlagSet, f *exportFlags, cfg *config.Config) {
	if fs.Changed("mode") {
		cfg.Export.Mode = f.mode
	}
	if fs.Changed("scale") {
		cfg.Export.Scale = f.scale
	}
	if fs.Changed("output-dir") {
		cfg.Export.OutputDir = f.outputDir
	}
	if fs.Changed("date-format") {
		cfg.Export.DateFormat = f.dateFormat
	}
	if fs.Changed("timeout") {
		cfg.Timeout = f.timeout
	}
}

// validateWorkers checks that the worker count is within valid bounds.
func validateWorkers(n, maxWorkers int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > maxWorkers {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, maxWorkers)
	}
	return nil
}
