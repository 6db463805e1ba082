package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alnah/go-tex2pdf"
	"github.com/alnah/go-tex2pdf/internal/config"
	"github.com/alnah/go-tex2pdf/internal/present"
	"github.com/alnah/go-tex2pdf/internal/tree"
)

// formatPage is the complete HTML page, the default for non-terminal
// output.
const formatPage = "html"

// stdinName labels a source read from standard input.
const stdinName = "stdin"

type renderOptions struct {
	style  styleFlags
	math   mathFlags
	toc    tocFlags
	format string
	out    string
	title  string
	strict bool
}

func (a *app) renderCmd() *cobra.Command {
	o := &renderOptions{}
	cmd := &cobra.Command{
		Use:   "render [file|-]",
		Short: "Render a source to HTML, Markdown, JSON, DOCX or the terminal",
		Long: `Render translates a source and resolves its math, then writes it in one
output format. Without a file, or with "-", the source is read from stdin.

Formats: html (full page), ` + strings.Join(present.Formats(), ", ") + `.
The default is term on a terminal and html otherwise.`,
		Args: usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs := cmd.Flags()
			mergeStyleFlags(fs, &o.style, a.cfg)
			mergeMathFlags(fs, &o.math, a.cfg)
			mergeTOCFlags(fs, &o.toc, a.cfg)
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			return a.runRender(cmd, args, o)
		},
	}
	fs := cmd.Flags()
	addStyleFlags(fs, &o.style)
	addMathFlags(fs, &o.math)
	addTOCFlags(fs, &o.toc)
	fs.StringVarP(&o.format, "format", "f", "", "output format")
	fs.StringVarP(&o.out, "out", "O", "", "write to file instead of stdout")
	fs.StringVar(&o.title, "title", "", "page title (default: first heading)")
	fs.BoolVar(&o.strict, "strict", false, "fail when a math region cannot be typeset")
	return cmd
}

func (a *app) runRender(cmd *cobra.Command, args []string, o *renderOptions) error {
	format := o.format
	if format == "" {
		format = formatPage
		if o.out == "" && a.env.IsTerminal(a.env.Stdout) {
			format = present.FormatTerm
		}
	}
	if format != formatPage && !slices.Contains(present.Formats(), format) {
		return fmt.Errorf("%w: %q", present.ErrUnknownFormat, format)
	}

	name, source, err := a.readSource(args)
	if err != nil {
		return err
	}

	conv, err := a.newConverter(a.cfg)
	if err != nil {
		return err
	}
	defer func() { _ = conv.Close() }()

	ctx := cmd.Context()
	doc, err := conv.Render(ctx, tex2pdf.Input{
		Name:   name,
		Source: source,
		Title:  o.title,
		TOC:    tocSettings(a.cfg),
	})
	if err != nil {
		return err
	}
	if err := a.checkMath(name, doc, o.strict); err != nil {
		return err
	}

	w := a.env.Stdout
	if o.out != "" {
		f, err := os.Create(o.out) // #nosec G304 -- output path is user-provided
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		w = f
	}

	if format == formatPage {
		page, err := conv.HTML(ctx, doc)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, page)
		return err
	}

	p, err := present.New(format)
	if err != nil {
		return err
	}
	if t, ok := p.(*present.Terminal); ok && w == a.env.Stdout {
		t.Width = terminalWidth(a.env.Stdout)
	}
	return p.Present(ctx, w, doc.Nodes)
}

// checkMath reports failed math regions: an error in strict mode, a
// warning otherwise.
func (a *app) checkMath(name string, doc *tex2pdf.Document, strict bool) error {
	failed := doc.MathErrors()
	if len(failed) == 0 {
		return nil
	}
	if strict {
		return fmt.Errorf("%s: %w: %d failed, first: %v", name, ErrMathFailed, len(failed), failed[0])
	}
	for _, me := range failed {
		a.log.Debug("math region failed", "source", name, "offset", me.Offset, "error", me.Err)
	}
	a.out.Warn(name, fmt.Sprintf("%d math region(s) failed%s", len(failed), mathHint(doc, a.cfg)))
	return nil
}

// readSource reads the file named by args, or stdin when args is empty or
// "-".
func (a *app) readSource(args []string) (name, source string, err error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(io.LimitReader(a.env.Stdin, tree.MaxSourceSize+1))
		if err != nil {
			return "", "", fmt.Errorf("%w: %w", ErrReadSource, err)
		}
		return stdinName, string(data), nil
	}
	data, err := os.ReadFile(args[0]) // #nosec G304 -- source path is user-provided
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrReadSource, err)
	}
	return filepath.Base(args[0]), string(data), nil
}

// newConverter creates a converter configured from cfg.
func (a *app) newConverter(cfg *config.Config) (*tex2pdf.Converter, error) {
	opts, err := converterOptions(cfg, a.log)
	if err != nil {
		return nil, err
	}
	return tex2pdf.NewConverter(opts...)
}
