package markup

// Notes:
// - Trees are compared through dump, a compact textual form, so each case
//   reads as one line; spans are checked separately in TestTranslate_Spans
// - \item bodies end at the end of the line. A body never continues onto the
//   next line; TestTranslate_ItemEndsAtLineBoundary pins that decision
// - Translate never sees resolved math, so math regions appear as text here

import (
	"fmt"
	"strings"
	"testing"

	"github.com/alnah/go-tex2pdf/internal/tree"
)

// dump renders nodes as a compact s-expression-like string.
func dump(nodes []tree.Node) string {
	parts := make([]string, 0, len(nodes))
	for _, n := range nodes {
		parts = append(parts, dumpNode(n))
	}
	return strings.Join(parts, " ")
}

func dumpNode(n tree.Node) string {
	switch n := n.(type) {
	case *tree.Text:
		return fmt.Sprintf("%q", n.Value)
	case *tree.Heading:
		return fmt.Sprintf("h%d(%s)", n.Level, dump(n.Children))
	case *tree.Emphasis:
		return fmt.Sprintf("%s(%s)", n.Style, dump(n.Children))
	case *tree.List:
		if !n.Closed {
			return fmt.Sprintf("list!(%s)", dump(n.Children))
		}
		return fmt.Sprintf("list(%s)", dump(n.Children))
	case *tree.ListItem:
		return fmt.Sprintf("item(%s)", dump(n.Children))
	case *tree.ListEnd:
		return "/list"
	case *tree.Break:
		return "BR"
	case *tree.Math:
		return "math"
	}
	return "?"
}

// ---------------------------------------------------------------------------
// TestTranslate - Structural commands
// ---------------------------------------------------------------------------

func TestTranslate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want string
	}{
		{name: "empty", src: "", want: ""},
		{name: "plain text", src: "hello", want: `"hello"`},
		{name: "section", src: `\section{Intro}`, want: `h1("Intro")`},
		{name: "subsection", src: `\subsection{Details}`, want: `h2("Details")`},
		{name: "bold", src: `\textbf{a}`, want: `bold("a")`},
		{name: "italic", src: `\textit{a}`, want: `italic("a")`},
		{name: "underline", src: `\underline{a}`, want: `underline("a")`},
		{name: "empty argument", src: `\textbf{}`, want: `bold()`},
		{
			name: "non-greedy arguments",
			src:  `\textbf{a} mid \textbf{b}`,
			want: `bold("a") " mid " bold("b")`,
		},
		{
			name: "adjacent commands",
			src:  `\textbf{a}\textit{b}`,
			want: `bold("a") italic("b")`,
		},
		{name: "nested braces", src: `\textbf{a{b}c}`, want: `bold("a{b}c")`},
		{name: "escaped brace", src: `\textit{a\}b}`, want: `italic("a\\}b")`},
		{name: "unbalanced argument is literal", src: `\textbf{a`, want: `"\\textbf{a"`},
		{
			name: "command after unbalanced argument",
			src:  `\textbf{a \textit{b}`,
			want: `"\\textbf{a " italic("b")`,
		},
		{name: "missing argument is literal", src: `\section Intro`, want: `"\\section Intro"`},
		{name: "unknown command is literal", src: `\emph{a}`, want: `"\\emph{a}"`},
		{name: "case sensitive", src: `\Section{a}`, want: `"\\Section{a}"`},
		{name: "other environment is literal", src: `\begin{enumerate}`, want: `"\\begin{enumerate}"`},
		{
			name: "arguments are flat",
			src:  `\section{\textbf{x}}`,
			want: `h1("\\textbf{x}")`,
		},
		{
			name: "dollar inside argument does not hide braces",
			src:  `\textbf{$a}$}`,
			want: `bold("$a") "$}"`,
		},
		{
			name: "command inside inline dollars is recognized",
			src:  `$\textbf{x}$`,
			want: `"$" bold("x") "$"`,
		},
		{
			name: "command inside block delimiters is recognized",
			src:  `a \[\section{x}\] b`,
			want: `"a \\[" h1("x") "\\] b"`,
		},
		{
			name: "dollar amounts around emphasis",
			src:  `It costs $5 and \textbf{only} $3 today.`,
			want: `"It costs $5 and " bold("only") " $3 today."`,
		},
		{
			name: "dollars in separate arguments",
			src:  `\textbf{$a} and \textbf{b$}`,
			want: `bold("$a") " and " bold("b$")`,
		},
		{name: "escaped backslash", src: `\\textbf{a}`, want: `"\\\\textbf{a}"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := dump(Translate(tt.src)); got != tt.want {
				t.Errorf("Translate(%q)\n got: %s\nwant: %s", tt.src, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestTranslate_Lists
// ---------------------------------------------------------------------------

func TestTranslate_Lists(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "items on separate lines",
			src:  "\\begin{itemize}\n\\item one\n\\item two\n\\end{itemize}",
			want: `list("\n" item("one") "\n" item("two") "\n")`,
		},
		{
			name: "items on one line",
			src:  `\begin{itemize}\item a \item b\end{itemize}`,
			want: `list(item("a") item("b"))`,
		},
		{
			name: "emphasis inside item",
			src:  `\begin{itemize}\item \textbf{x} y\end{itemize}`,
			want: `list(item(bold("x") " y"))`,
		},
		{
			name: "dollar does not hide the next item",
			src:  `\begin{itemize}\item see $a \item b$\end{itemize}`,
			want: `list(item("see $a") item("b$"))`,
		},
		{
			name: "empty item",
			src:  "\\begin{itemize}\\item\n\\end{itemize}",
			want: `list(item() "\n")`,
		},
		{
			name: "itemize is not item",
			src:  `\itemize`,
			want: `"\\itemize"`,
		},
		{
			name: "stray end",
			src:  `\end{itemize}`,
			want: `/list`,
		},
		{
			name: "stray end after closed list",
			src:  `\begin{itemize}\end{itemize}\end{itemize}`,
			want: `list() /list`,
		},
		{
			name: "unclosed list",
			src:  `\begin{itemize}\item a`,
			want: `list!(item("a"))`,
		},
		{
			name: "item outside list",
			src:  `\item lonely`,
			want: `item("lonely")`,
		},
		{
			name: "nested list goes under last item",
			src:  "\\begin{itemize}\\item a\n\\begin{itemize}\\item b\\end{itemize}\\end{itemize}",
			want: `list(item("a" list(item("b"))) "\n")`,
		},
		{
			name: "nested list without items",
			src:  `\begin{itemize}\begin{itemize}\end{itemize}\end{itemize}`,
			want: `list(list())`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := dump(Translate(tt.src)); got != tt.want {
				t.Errorf("Translate(%q)\n got: %s\nwant: %s", tt.src, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestTranslate_ItemEndsAtLineBoundary - Item bodies are single-line
// ---------------------------------------------------------------------------

func TestTranslate_ItemEndsAtLineBoundary(t *testing.T) {
	t.Parallel()

	src := "\\begin{itemize}\n\\item first line\ncontinuation\n\\end{itemize}"
	got := dump(Translate(src))
	want := `list("\n" item("first line") "\ncontinuation\n")`
	if got != want {
		t.Errorf("got: %s\nwant: %s", got, want)
	}
}

// ---------------------------------------------------------------------------
// TestTranslate_Breaks - Paragraph breaks
// ---------------------------------------------------------------------------

func TestTranslate_Breaks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want string
	}{
		{name: "single newline is text", src: "a\nb", want: `"a\nb"`},
		{name: "blank line", src: "a\n\nb", want: `"a" BR "b"`},
		{name: "crlf blank line", src: "a\r\n\r\nb", want: `"a" BR "b"`},
		{name: "cr blank line", src: "a\r\rb", want: `"a" BR "b"`},
		{name: "long run is one break", src: "a\n\n\n\nb", want: `"a" BR "b"`},
		{name: "spaces between newlines", src: "a\n \nb", want: `"a\n \nb"`},
		{name: "after command", src: "\\section{A}\n\nb", want: `h1("A") BR "b"`},
		{name: "inside argument", src: "\\textbf{a\n\nb}", want: `bold("a\n\nb")`},
		{name: "inside block math", src: "\\[a\n\nb\\]", want: `"\\[a\n\nb\\]"`},
		{name: "block math cut by a command", src: "\\[a\n\n\\textbf{b}\\]", want: `"\\[a" BR bold("b") "\\]"`},
		{name: "backslash before newline", src: "a\\\n\nb", want: `"a\\" BR "b"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := dump(Translate(tt.src)); got != tt.want {
				t.Errorf("Translate(%q)\n got: %s\nwant: %s", tt.src, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestTranslate_Spans
// ---------------------------------------------------------------------------

func TestTranslate_Spans(t *testing.T) {
	t.Parallel()

	src := "\\section{Intro}\n\n\\[ E = mc^2 \\]"
	got := Translate(src)
	want := []tree.Node{
		&tree.Heading{
			Level:    1,
			Children: []tree.Node{&tree.Text{Value: "Intro", Pos: tree.NewSpan(9, 14)}},
			Pos:      tree.NewSpan(0, 15),
		},
		&tree.Break{Pos: tree.NewSpan(15, 17)},
		&tree.Text{Value: `\[ E = mc^2 \]`, Pos: tree.NewSpan(17, 31)},
	}
	if !tree.Equal(got, want) {
		data, _ := tree.MarshalJSON(got)
		t.Fatalf("Translate() spans mismatch:\n%s", data)
	}

	for _, n := range got {
		s := n.Span()
		if t1, ok := n.(*tree.Text); ok && src[s.Start:s.End] != t1.Value {
			t.Errorf("text span %+v does not cover %q", s, t1.Value)
		}
	}
}

func TestTranslate_ListSpans(t *testing.T) {
	t.Parallel()

	src := `x \begin{itemize}\item a \end{itemize} \begin{itemize}`
	got := Translate(src)

	closed := got[1].(*tree.List)
	if closed.Pos != tree.NewSpan(2, 38) {
		t.Errorf("closed list span = %+v, want {2 38}", closed.Pos)
	}
	item := closed.Children[0].(*tree.ListItem)
	if src[item.Children[0].Span().Start:item.Children[0].Span().End] != "a" {
		t.Errorf("item body span = %+v", item.Children[0].Span())
	}
	open := got[3].(*tree.List)
	if open.Closed || int(open.Pos.End) != len(src) {
		t.Errorf("unclosed list = %+v, want open to end of input", open)
	}
}

// ---------------------------------------------------------------------------
// TestTranslate_CommandCount - Structural nodes match recognized commands
// ---------------------------------------------------------------------------

func TestTranslate_CommandCount(t *testing.T) {
	t.Parallel()

	inputs := []string{
		`\section{A} text \subsection{B}`,
		`\textbf{a} mid \textbf{b} \underline{c}`,
		"\\begin{itemize}\n\\item \\textit{x}\n\\item y\n\\end{itemize}",
		`\end{itemize} \begin{itemize}\item open`,
		"plain\n\nparagraphs only",
	}

	for _, src := range inputs {
		nodes := Translate(src)
		if n := tree.Count(nodes, tree.KindMathBlock) + tree.Count(nodes, tree.KindMathInline); n != 0 {
			t.Errorf("Translate(%q) produced %d math nodes", src, n)
		}

		want := commandCount(src)
		got := structuralCount(nodes)
		if got != want {
			t.Errorf("Translate(%q): %d structural nodes, %d commands", src, got, want)
		}
	}
}

// commandCount counts every recognized command, including emphasis inside
// item bodies.
func commandCount(src string) int {
	tk := newTokenizer(src)
	count := 0
	for _, tok := range tk.scan(0, len(src), false) {
		if tok.Kind != TokenCommand {
			continue
		}
		count++
		if tok.Cmd.Kind == ListItem {
			for _, inner := range tk.scan(int(tok.Cmd.ArgSpan.Start), int(tok.Cmd.ArgSpan.End), true) {
				if inner.Kind == TokenCommand {
					count++
				}
			}
		}
	}
	return count
}

// structuralCount counts nodes produced by commands. A closed list stands
// for its begin and end commands.
func structuralCount(nodes []tree.Node) int {
	count := 0
	tree.Walk(nodes, func(n tree.Node) bool {
		switch n := n.(type) {
		case *tree.Heading, *tree.Emphasis, *tree.ListItem, *tree.ListEnd:
			count++
		case *tree.List:
			count++
			if n.Closed {
				count++
			}
		}
		return true
	})
	return count
}

// ---------------------------------------------------------------------------
// TestTranslate_Idempotent
// ---------------------------------------------------------------------------

func TestTranslate_Idempotent(t *testing.T) {
	t.Parallel()

	src := "\\section{A}\n\n\\begin{itemize}\\item $x$ \\textbf{y}\\end{itemize}\\end{itemize}"
	if !tree.Equal(Translate(src), Translate(src)) {
		t.Error("Translate is not deterministic")
	}
}

// ---------------------------------------------------------------------------
// TestTokenize
// ---------------------------------------------------------------------------

func TestTokenize(t *testing.T) {
	t.Parallel()

	toks := Tokenize("\\textbf{a} b\n\n\\item c")
	kinds := []TokenKind{TokenCommand, TokenText, TokenBreak, TokenCommand}
	if len(toks) != len(kinds) {
		t.Fatalf("Tokenize() = %d tokens, want %d: %+v", len(toks), len(kinds), toks)
	}
	for i, k := range kinds {
		if toks[i].Kind != k {
			t.Errorf("token %d kind = %v, want %v", i, toks[i].Kind, k)
		}
	}
	if toks[0].Cmd.Kind != Bold || toks[0].Cmd.Arg != "a" {
		t.Errorf("first command = %+v", toks[0].Cmd)
	}
	if toks[3].Cmd.Kind != ListItem || toks[3].Cmd.Arg != "c" {
		t.Errorf("item command = %+v", toks[3].Cmd)
	}
	if ListItem.String() != `\item` || CommandKind(99).String() != "unknown" {
		t.Error("CommandKind.String mismatch")
	}
}
