package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Color modes accepted by --color.
const (
	colorAuto = "auto"
	colorOn   = "on"
	colorOff  = "off"
)

// isTerminal reports whether w is a terminal file.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// printer writes result lines, colored when enabled.
type printer struct {
	out, err io.Writer
	quiet    bool
	ok       *color.Color
	warn     *color.Color
	fail     *color.Color
	faint    *color.Color
}

func newPrinter(env *Environment, mode string, quiet bool) *printer {
	enabled := false
	switch strings.ToLower(mode) {
	case colorOn:
		enabled = true
	case colorOff:
	default:
		_, noColor := env.LookupEnv("NO_COLOR")
		enabled = !noColor && env.IsTerminal(env.Stdout)
	}
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return &printer{
		out:   env.Stdout,
		err:   env.Stderr,
		quiet: quiet,
		ok:    mk(color.FgGreen),
		warn:  mk(color.FgYellow),
		fail:  mk(color.FgRed, color.Bold),
		faint: mk(color.Faint),
	}
}

// Created prints a successful artifact line.
func (p *printer) Created(path, detail string) {
	if p.quiet {
		return
	}
	fmt.Fprintf(p.out, "%s %s", p.ok.Sprint("Created"), path)
	if detail != "" {
		fmt.Fprintf(p.out, " %s", p.faint.Sprint("("+detail+")"))
	}
	fmt.Fprintln(p.out)
}

// Warn prints a non-fatal problem on stderr.
func (p *printer) Warn(subject, msg string) {
	if p.quiet {
		return
	}
	fmt.Fprintf(p.err, "%s %s: %s\n", p.warn.Sprint("WARN"), subject, msg)
}

// Failed prints a failed item on stderr. Failures are shown even in quiet
// mode.
func (p *printer) Failed(subject string, err error) {
	fmt.Fprintf(p.err, "%s %s: %v\n", p.fail.Sprint("FAILED"), subject, err)
}

// Summary prints the batch totals.
func (p *printer) Summary(succeeded, failed int) {
	if p.quiet {
		return
	}
	line := fmt.Sprintf("%d succeeded, %d failed", succeeded, failed)
	if failed > 0 {
		line = p.warn.Sprint(line)
	}
	fmt.Fprintf(p.out, "\n%s\n", line)
}

// terminalWidth returns the width of w when it is a terminal, or 0.
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}
