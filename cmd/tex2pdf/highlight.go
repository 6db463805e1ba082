package main

import (
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alnah/go-tex2pdf/internal/highlight"
)

type highlightOptions struct {
	format      string
	style       string
	lineNumbers bool
	css         bool
	listStyles  bool
}

func (a *app) highlightCmd() *cobra.Command {
	o := &highlightOptions{}
	cmd := &cobra.Command{
		Use:   "highlight [file|-]",
		Short: "Syntax-highlight a source for the terminal or HTML",
		Args:  usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runHighlight(args, o)
		},
	}
	fs := cmd.Flags()
	fs.StringVarP(&o.format, "format", "f", highlight.FormatTerminal, "output format: terminal, html")
	fs.StringVar(&o.style, "theme", "", "chroma style name")
	fs.BoolVar(&o.lineNumbers, "line-numbers", false, "number lines in HTML output")
	fs.BoolVar(&o.css, "css", false, "print the stylesheet for HTML output and exit")
	fs.BoolVar(&o.listStyles, "list-themes", false, "list chroma style names and exit")
	return cmd
}

func (a *app) runHighlight(args []string, o *highlightOptions) error {
	w := a.env.Stdout
	if o.listStyles {
		_, err := io.WriteString(w, strings.Join(highlight.Styles(), "\n")+"\n")
		return err
	}

	var opts []highlight.Option
	if o.style != "" {
		opts = append(opts, highlight.WithStyle(o.style))
	}
	opts = append(opts, highlight.WithLineNumbers(o.lineNumbers))
	h := highlight.New(opts...)

	if o.css {
		return h.CSS(w)
	}

	_, source, err := a.readSource(args)
	if err != nil {
		return err
	}
	return h.Write(w, strings.ToLower(o.format), source)
}

// sourceHighlighter returns the highlighter used by the preview, or nil
// when stdout cannot show colors.
func (a *app) sourceHighlighter() *highlight.Highlighter {
	if !a.env.IsTerminal(a.env.Stdout) {
		return nil
	}
	if _, ok := a.env.LookupEnv("NO_COLOR"); ok {
		return nil
	}
	return highlight.New()
}
