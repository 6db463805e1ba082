package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/alnah/go-tex2pdf/internal/config"
)

// Version is set at build time via ldflags.
var Version = "dev"

// app carries the state shared by every command: the environment, the
// global flags, and what PersistentPreRunE derives from them.
type app struct {
	env    *Environment
	common commonFlags
	cfg    *config.Config
	log    *slog.Logger
	out    *printer
}

func main() {
	os.Exit(run(os.Args[1:], DefaultEnv()))
}

// run executes the CLI and returns the process exit code.
func run(args []string, env *Environment) int {
	ctx, stop := signal.NotifyContext(context.Background(), shutdownSignals...)
	defer stop()

	a := &app{env: env}
	root := a.rootCmd()
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(env.Stderr, "Error: %v%s\n", err, hintFor(err, a.cfg))
	}
	return exitCodeFor(err)
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tex2pdf",
		Short: "Render LaTeX-subset notes to HTML and PDF",
		Long: `tex2pdf renders notes written in a small LaTeX subset (sections, emphasis,
itemize lists and math) to HTML, Markdown, JSON, DOCX or the terminal, and
exports them to PDF with headless Chrome.

Configuration is read from --config, then TEX2PDF_* environment variables,
then command flags, each overriding the previous.`,
		Version:           Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.SetOut(a.env.Stdout)
	root.SetErr(a.env.Stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	})
	addCommonFlags(root.PersistentFlags(), &a.common)

	root.AddCommand(
		a.renderCmd(),
		a.exportCmd(),
		a.highlightCmd(),
		a.serveCmd(),
		a.previewCmd(),
		a.doctorCmd(),
		a.versionCmd(),
	)
	return root
}

// setup builds the logger and printer and loads the configuration.
func (a *app) setup(_ *cobra.Command, _ []string) error {
	level := slog.LevelInfo
	switch {
	case a.common.quiet:
		level = slog.LevelError
	case a.common.verbose:
		level = slog.LevelDebug
	}
	a.log = slog.New(slog.NewTextHandler(a.env.Stderr, &slog.HandlerOptions{Level: level}))
	a.out = newPrinter(a.env, a.common.color, a.common.quiet)

	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
		a.log.Debug(fmt.Sprintf(format, args...))
	}))

	cfg := config.DefaultConfig()
	if a.common.config != "" {
		loaded, err := config.LoadConfig(a.common.config)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(a.env.LookupEnv); err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

// usageArgs wraps a positional-argument check so its errors map to the
// usage exit code.
func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return fmt.Errorf("%w: %v", ErrUsage, err)
		}
		return nil
	}
}
