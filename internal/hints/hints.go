// Package hints builds the "hint:" suffixes the CLI appends to errors and
// math warnings. Every hint starts with "\n  hint: " so it can be printed
// right after the message it explains.
package hints

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/alnah/go-tex2pdf/internal/fileutil"
	"github.com/alnah/go-tex2pdf/internal/mathres"
	"github.com/alnah/go-tex2pdf/internal/typeset"
)

const prefix = "\n  hint: "

// IsInContainer reports whether the process runs in a container, where
// Chrome usually needs its sandbox disabled.
var IsInContainer = func() bool {
	return os.Getenv("TEX2PDF_CONTAINER") == "1" || fileutil.FileExists("/.dockerenv")
}

var ciVars = []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL"}

// ForBrowserConnect suggests the rod environment variables that get Chrome
// started under CI and containers.
func ForBrowserConnect() string {
	var parts []string
	if (inCI() || IsInContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		parts = append(parts, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}
	if os.Getenv("ROD_BROWSER_BIN") == "" {
		parts = append(parts, "set ROD_BROWSER_BIN to use custom Chrome")
	}
	return join(parts)
}

func inCI() bool {
	for _, v := range ciVars {
		if os.Getenv(v) != "" {
			return true
		}
	}
	return false
}

// ForTimeout covers exports and KaTeX renders that ran out of time.
func ForTimeout() string {
	return line("long documents take longer to typeset and capture; raise --timeout or set timeout in the config")
}

// ForConfigNotFound suggests --config and the first user config location
// among searched.
func ForConfigNotFound(searched []string) string {
	hint := "use --config /path/to/file.yaml (or .toml)"
	for _, p := range searched {
		if strings.Contains(p, "go-tex2pdf") {
			return line(hint + " or create " + p)
		}
	}
	return line(hint)
}

// ForOutputDirectory covers PDFs that could not be written.
func ForOutputDirectory() string {
	return line("check parent directory exists and is writable")
}

// ForStyleNotFound lists the embedded styles.
func ForStyleNotFound(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return line("available: " + strings.Join(available, ", "))
}

// ForKaTeX explains a KaTeX script that did not load. script is the
// configured math.katexScript; empty means the CDN default.
func ForKaTeX(script string) string {
	const fallback = "or use --math builtin"
	if script == "" || strings.HasPrefix(script, "http://") || strings.HasPrefix(script, "https://") {
		return join([]string{
			"KaTeX is fetched over the network; offline, set math.katexScript to a local katex.min.js",
			fallback,
		})
	}
	return join([]string{"check that math.katexScript (" + script + ") is a readable katex.min.js", fallback})
}

// MathFailure is one math region that was shown as source.
type MathFailure struct {
	Offset int // byte offset of the opening delimiter
	Err    error
}

// mathAdvice maps checker and validator reasons to a fix, most specific
// first.
var mathAdvice = []struct {
	reason error
	advice string
}{
	{typeset.ErrEmptyMath, `empty math; write \$ for a literal dollar sign`},
	{typeset.ErrUnbalancedBraces, "every { needs a matching }"},
	{typeset.ErrUnbalancedEnvironment, `close each \begin{...} with the same \end{...}`},
	{typeset.ErrUnbalancedDelimiters, `pair each \left with a \right (\right. is invisible)`},
	{typeset.ErrTrailingBackslash, `a lone \ ends the formula; write \backslash for a literal one`},
	{typeset.ErrUnsafeMarkup, "the backend output was rejected as unsafe; try --math builtin"},
	{typeset.ErrMalformedMarkup, "the backend output was not well-formed; try --math builtin"},
	{mathres.ErrBackendPanic, "the math backend crashed; try --math builtin"},
}

// ForMathErrors summarizes regions shown as source. The first failure gets
// a concrete fix when its reason is known.
func ForMathErrors(failed []MathFailure) string {
	if len(failed) == 0 {
		return ""
	}
	summary := strconv.Itoa(len(failed)) + " math region"
	if len(failed) > 1 {
		summary += "s"
	}
	parts := []string{summary + " shown as source"}

	first := failed[0]
	for _, a := range mathAdvice {
		if errors.Is(first.Err, a.reason) {
			parts = append(parts, "first at byte "+strconv.Itoa(first.Offset)+": "+a.advice)
			break
		}
	}
	parts = append(parts, "run with --strict to fail instead")
	return join(parts)
}

func line(hint string) string {
	if hint == "" {
		return ""
	}
	return prefix + hint
}

func join(parts []string) string {
	if len(parts) == 0 {
		return ""
	}
	return line(strings.Join(parts, "; "))
}
