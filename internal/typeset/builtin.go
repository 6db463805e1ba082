package typeset

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/alnah/go-tex2pdf/internal/mathres"
)

var _ mathres.Typesetter = Builtin{}

// Builtin checks math syntax without a layout engine. Accepted content is
// returned escaped, wrapped in a tex element that the stylesheet sets in a
// math font.
type Builtin struct{}

// Typeset implements mathres.Typesetter.
func (Builtin) Typeset(ctx context.Context, content string, display bool) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := Check(content); err != nil {
		return "", fmt.Errorf("%w: %w", ErrTypeset, err)
	}
	escaped := html.EscapeString(strings.TrimSpace(content))
	if display {
		return `<span class="tex tex-display">` + escaped + `</span>`, nil
	}
	return `<span class="tex tex-inline">` + escaped + `</span>`, nil
}

// Check validates the TeX structure of content: braces, environments,
// \left/\right pairs and backslashes.
func Check(content string) error {
	if strings.TrimSpace(content) == "" {
		return ErrEmptyMath
	}

	depth, leftRight := 0, 0
	var envs []string
	for i := 0; i < len(content); {
		switch content[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return fmt.Errorf("%w: unexpected } at offset %d", ErrUnbalancedBraces, i)
			}
		case '\\':
			if i+1 >= len(content) {
				return ErrTrailingBackslash
			}
			j := i + 1
			for j < len(content) && isLetter(content[j]) {
				j++
			}
			if j == i+1 {
				i += 2 // control symbol such as \{ or \\
				continue
			}
			switch name := content[i+1 : j]; name {
			case "begin", "end":
				env, next, ok := envName(content, j)
				if !ok {
					return fmt.Errorf("%w: \\%s without a name", ErrUnbalancedEnvironment, name)
				}
				if name == "begin" {
					envs = append(envs, env)
				} else {
					if len(envs) == 0 || envs[len(envs)-1] != env {
						return fmt.Errorf("%w: unexpected \\end{%s}", ErrUnbalancedEnvironment, env)
					}
					envs = envs[:len(envs)-1]
				}
				i = next
				continue
			case "left":
				leftRight++
			case "right":
				leftRight--
				if leftRight < 0 {
					return fmt.Errorf(`%w: \right without \left`, ErrUnbalancedDelimiters)
				}
			}
			i = j
			continue
		}
		i++
	}

	switch {
	case depth > 0:
		return fmt.Errorf("%w: %d unclosed {", ErrUnbalancedBraces, depth)
	case len(envs) > 0:
		return fmt.Errorf("%w: \\begin{%s} not closed", ErrUnbalancedEnvironment, envs[len(envs)-1])
	case leftRight > 0:
		return fmt.Errorf(`%w: \left without \right`, ErrUnbalancedDelimiters)
	}
	return nil
}

// envName reads {name} at pos.
func envName(s string, pos int) (string, int, bool) {
	if pos >= len(s) || s[pos] != '{' {
		return "", 0, false
	}
	end := strings.IndexByte(s[pos:], '}')
	if end <= 1 {
		return "", 0, false
	}
	return s[pos+1 : pos+end], pos + end + 1, true
}

func isLetter(c byte) bool { return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' }
