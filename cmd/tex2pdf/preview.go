package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/alnah/go-tex2pdf/internal/tui"
)

type previewOptions struct {
	style    styleFlags
	math     mathFlags
	interval string
}

func (a *app) previewCmd() *cobra.Command {
	o := &previewOptions{}
	cmd := &cobra.Command{
		Use:   "preview <file>",
		Short: "Live terminal preview that re-renders on save",
		Long: `Preview renders a source in the terminal and re-renders it whenever the file
changes. Keys: q quits, r re-renders, s toggles the highlighted source.`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs := cmd.Flags()
			mergeStyleFlags(fs, &o.style, a.cfg)
			mergeMathFlags(fs, &o.math, a.cfg)
			if fs.Changed("interval") {
				a.cfg.Preview.Interval = o.interval
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			interval, err := a.cfg.PreviewInterval()
			if err != nil {
				return err
			}
			if _, _, err := a.readSource(args); err != nil {
				return err
			}

			// Log lines on stderr would draw over the alternate screen.
			a.log = slog.New(slog.DiscardHandler)
			conv, err := a.newConverter(a.cfg)
			if err != nil {
				return err
			}
			defer func() { _ = conv.Close() }()

			return tui.Run(cmd.Context(), tui.Options{
				Path:        args[0],
				Interval:    interval,
				Renderer:    conv,
				Highlighter: a.sourceHighlighter(),
			})
		},
	}
	fs := cmd.Flags()
	addStyleFlags(fs, &o.style)
	addMathFlags(fs, &o.math)
	fs.StringVar(&o.interval, "interval", "", "polling interval (default: 500ms)")
	return cmd
}
