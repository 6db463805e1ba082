package typeset

// Notes:
// - Check is tested on the reason it reports; Typeset on the wrapping and
//   the escaping of accepted content.

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestCheck - TeX structure validation
// ---------------------------------------------------------------------------

func TestCheck(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{name: "simple", content: "E = mc^2"},
		{name: "fraction", content: `\frac{a}{b}`},
		{name: "escaped braces", content: `\{ x \}`},
		{name: "line break", content: `a \\ b`},
		{name: "environment", content: `\begin{matrix} a & b \end{matrix}`},
		{name: "nested environments", content: `\begin{a}\begin{b}\end{b}\end{a}`},
		{name: "left right", content: `\left( x \right)`},
		{name: "leftarrow is not left", content: `a \leftarrow b`},
		{name: "empty", content: "", wantErr: ErrEmptyMath},
		{name: "blank", content: "  \n ", wantErr: ErrEmptyMath},
		{name: "unclosed brace", content: ` \frac{a}{ `, wantErr: ErrUnbalancedBraces},
		{name: "stray closing brace", content: `a}`, wantErr: ErrUnbalancedBraces},
		{name: "trailing backslash", content: `a \`, wantErr: ErrTrailingBackslash},
		{name: "unclosed environment", content: `\begin{cases} x`, wantErr: ErrUnbalancedEnvironment},
		{name: "mismatched environment", content: `\begin{a} \end{b}`, wantErr: ErrUnbalancedEnvironment},
		{name: "nameless begin", content: `\begin x`, wantErr: ErrUnbalancedEnvironment},
		{name: "right without left", content: `x \right)`, wantErr: ErrUnbalancedDelimiters},
		{name: "left without right", content: `\left( x`, wantErr: ErrUnbalancedDelimiters},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := Check(tt.content)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Check(%q) = %v, want nil", tt.content, err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Check(%q) = %v, want %v", tt.content, err, tt.wantErr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestBuiltin_Typeset
// ---------------------------------------------------------------------------

func TestBuiltin_Typeset(t *testing.T) {
	t.Parallel()

	t.Run("inline is escaped span", func(t *testing.T) {
		t.Parallel()

		got, err := Builtin{}.Typeset(context.Background(), " a<b & c ", false)
		if err != nil {
			t.Fatalf("Typeset() error = %v", err)
		}
		want := `<span class="tex tex-inline">a&lt;b &amp; c</span>`
		if got != want {
			t.Errorf("Typeset() = %q, want %q", got, want)
		}
	})

	t.Run("display is a tex-display span", func(t *testing.T) {
		t.Parallel()

		got, err := Builtin{}.Typeset(context.Background(), "E = mc^2", true)
		if err != nil {
			t.Fatalf("Typeset() error = %v", err)
		}
		if !strings.HasPrefix(got, `<span class="tex tex-display">`) || !strings.Contains(got, "E = mc^2") {
			t.Errorf("Typeset() = %q", got)
		}
	})

	t.Run("rejection wraps ErrTypeset", func(t *testing.T) {
		t.Parallel()

		_, err := Builtin{}.Typeset(context.Background(), `\frac{a}{`, true)
		if !errors.Is(err, ErrTypeset) || !errors.Is(err, ErrUnbalancedBraces) {
			t.Errorf("Typeset() error = %v, want ErrTypeset and ErrUnbalancedBraces", err)
		}
	})

	t.Run("output passes validation", func(t *testing.T) {
		t.Parallel()

		got, err := Builtin{}.Typeset(context.Background(), `<script>alert(1)</script>`, false)
		if err != nil {
			t.Fatalf("Typeset() error = %v", err)
		}
		if err := ValidateMarkup(got); err != nil {
			t.Errorf("ValidateMarkup(%q) = %v", got, err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := (Builtin{}).Typeset(ctx, "x", false); !errors.Is(err, context.Canceled) {
			t.Errorf("Typeset() error = %v, want context.Canceled", err)
		}
	})
}
