package highlight

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

const sample = "\\section{Intro}\n% comment\n\\textbf{bold} and $x^2$\n"

func TestHighlighter_HTML(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := New().HTML(&buf, sample); err != nil {
		t.Fatalf("HTML() error = %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(&buf)
	if err != nil {
		t.Fatalf("parsing output: %v", err)
	}
	pre := doc.Find("pre.chroma")
	if pre.Length() != 1 {
		t.Fatalf("want one pre.chroma, got %d", pre.Length())
	}
	if got := pre.Text(); got != sample {
		t.Errorf("text content = %q, want source unchanged %q", got, sample)
	}
	if doc.Find("pre.chroma span[class]").Length() == 0 {
		t.Error("expected classed token spans")
	}
	if doc.Find("[style]").Length() != 0 {
		t.Error("expected classes, not inline styles")
	}
}

func TestHighlighter_HTMLEscapes(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := New().HTML(&buf, "<script>alert(1)</script>"); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "<script>") {
		t.Errorf("markup not escaped: %s", buf.String())
	}
}

func TestHighlighter_LineNumbers(t *testing.T) {
	t.Parallel()

	var plain, numbered bytes.Buffer
	if err := New().HTML(&plain, sample); err != nil {
		t.Fatal(err)
	}
	if err := New(WithLineNumbers(true)).HTML(&numbered, sample); err != nil {
		t.Fatal(err)
	}
	if numbered.Len() <= plain.Len() {
		t.Error("line numbers should add markup")
	}
	if !strings.Contains(numbered.String(), ">3<") && !strings.Contains(numbered.String(), ">3\n<") {
		t.Errorf("expected a line number 3 in %s", numbered.String())
	}
}

func TestHighlighter_Terminal(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := New().Terminal(&buf, sample); err != nil {
		t.Fatalf("Terminal() error = %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "\x1b[") {
		t.Error("expected ANSI escape sequences")
	}
	if !strings.Contains(out, "Intro") || !strings.Contains(out, "comment") {
		t.Errorf("source text missing from %q", out)
	}
}

func TestHighlighter_CSS(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := New(WithStyle("monokai")).CSS(&buf); err != nil {
		t.Fatalf("CSS() error = %v", err)
	}
	if !strings.Contains(buf.String(), ".chroma") {
		t.Errorf("css missing .chroma selector: %s", buf.String())
	}
}

func TestHighlighter_Write(t *testing.T) {
	t.Parallel()

	h := New(WithStyle("no-such-style"))
	for _, f := range []string{FormatHTML, FormatTerminal} {
		var buf bytes.Buffer
		if err := h.Write(&buf, f, sample); err != nil || buf.Len() == 0 {
			t.Errorf("Write(%q) = %v, %d bytes", f, err, buf.Len())
		}
	}
	if err := h.Write(&bytes.Buffer{}, "rtf", sample); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Write(rtf) error = %v, want ErrUnknownFormat", err)
	}
}

func TestStyles(t *testing.T) {
	t.Parallel()

	names := Styles()
	found := false
	for _, n := range names {
		if n == DefaultStyle {
			found = true
		}
	}
	if !found {
		t.Errorf("Styles() missing %q", DefaultStyle)
	}
}
