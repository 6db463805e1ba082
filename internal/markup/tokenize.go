package markup

import (
	"sort"

	"github.com/alnah/go-tex2pdf/internal/mathres"
	"github.com/alnah/go-tex2pdf/internal/tree"
)

// Tokenize splits src into text, command and break tokens. Structural
// commands are recognized wherever they appear, math delimiters included;
// math is only looked at to keep a blank line inside a block region of a
// single text run from becoming a break.
func Tokenize(src string) []Token {
	return newTokenizer(src).scan(0, len(src), false)
}

type tokenizer struct {
	src string
}

func newTokenizer(src string) *tokenizer {
	return &tokenizer{src: src}
}

// regionIndex is the sorted list of math regions of one text run.
type regionIndex []mathres.Region

// at returns the end of the region starting exactly at pos.
func (ri regionIndex) at(pos int) (int, bool) {
	i := sort.Search(len(ri), func(i int) bool { return ri[i].Start >= pos })
	if i < len(ri) && ri[i].Start == pos {
		return ri[i].End, true
	}
	return 0, false
}

// scan tokenizes src[start:end]. In inline mode only emphasis commands are
// recognized and newlines are plain text.
func (t *tokenizer) scan(start, end int, inline bool) []Token {
	var out []Token
	textStart := start
	flush := func(upTo int) {
		switch {
		case upTo <= textStart:
		case inline:
			out = append(out, t.text(textStart, upTo))
		default:
			out = append(out, t.breaks(textStart, upTo)...)
		}
	}

	pos := start
	for pos < end {
		if t.src[pos] != '\\' {
			pos++
			continue
		}
		cmd, next, ok := t.command(pos, end)
		if !ok || (inline && !cmd.Kind.Inline()) {
			pos = t.skipEscape(pos, end)
			continue
		}
		flush(pos)
		out = append(out, Token{Kind: TokenCommand, Cmd: cmd, Span: cmd.Span})
		pos, textStart = next, next
	}
	flush(end)
	return out
}

func (t *tokenizer) text(start, end int) Token {
	return Token{Kind: TokenText, Text: t.src[start:end], Span: tree.NewSpan(start, end)}
}

// breaks splits the text run src[start:end] at runs of two or more
// newlines. Newlines inside a math region of the run are not breaks.
func (t *tokenizer) breaks(start, end int) []Token {
	regions := regionIndex(mathres.FindRegions(t.src[start:end]))

	var out []Token
	textStart := start
	pos := start
	for pos < end {
		if rEnd, ok := regions.at(pos - start); ok {
			pos = start + rEnd
			continue
		}
		if !isNewline(t.src[pos]) {
			pos++
			continue
		}
		runEnd, n := newlineRun(t.src, pos, end)
		if n < 2 {
			pos = runEnd
			continue
		}
		if pos > textStart {
			out = append(out, t.text(textStart, pos))
		}
		out = append(out, Token{Kind: TokenBreak, Span: tree.NewSpan(pos, runEnd)})
		pos, textStart = runEnd, runEnd
	}
	if end > textStart {
		out = append(out, t.text(textStart, end))
	}
	return out
}

// command tries to read a command starting at the backslash at pos. It
// returns the command and the offset just after it.
func (t *tokenizer) command(pos, end int) (Command, int, bool) {
	nameEnd := letters(t.src, pos+1, end)
	kind, ok := byName[t.src[pos+1:nameEnd]]
	if !ok {
		return Command{}, 0, false
	}

	if kind == ListItem {
		return t.item(pos, nameEnd, end)
	}

	argStart, argEnd, ok := t.braced(nameEnd, end)
	if !ok {
		return Command{}, 0, false
	}
	next := argEnd + 1
	span := tree.NewSpan(pos, next)

	if kind == ListBegin || kind == ListEnd {
		if t.src[argStart:argEnd] != "itemize" {
			return Command{}, 0, false
		}
		return Command{Kind: kind, Span: span}, next, true
	}
	return Command{
		Kind:    kind,
		Arg:     t.src[argStart:argEnd],
		Span:    span,
		ArgSpan: tree.NewSpan(argStart, argEnd),
	}, next, true
}

// braced reads a balanced {...} group at open and returns the bounds of its
// content. Escaped braces do not count toward the balance.
func (t *tokenizer) braced(open, end int) (int, int, bool) {
	if open >= end || t.src[open] != '{' {
		return 0, 0, false
	}
	depth := 0
	for i := open; i < end; {
		switch t.src[i] {
		case '\\':
			i = t.skipEscape(i, end)
			continue
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return open + 1, i, true
			}
		}
		i++
	}
	return 0, 0, false
}

// item reads an \item body: it runs to the end of the line or to the next
// list command on the same line. Leading and trailing blanks are not part of
// the body.
func (t *tokenizer) item(pos, nameEnd, end int) (Command, int, bool) {
	bodyStart := nameEnd
	for bodyStart < end && isBlank(t.src[bodyStart]) {
		bodyStart++
	}
	bodyEnd := t.itemEnd(bodyStart, end)
	trimmed := bodyEnd
	for trimmed > bodyStart && isBlank(t.src[trimmed-1]) {
		trimmed--
	}
	return Command{
		Kind:    ListItem,
		Arg:     t.src[bodyStart:trimmed],
		Span:    tree.NewSpan(pos, bodyEnd),
		ArgSpan: tree.NewSpan(bodyStart, trimmed),
	}, bodyEnd, true
}

func (t *tokenizer) itemEnd(from, end int) int {
	for i := from; i < end; {
		switch c := t.src[i]; {
		case isNewline(c):
			return i
		case c == '\\':
			if t.listBoundary(i, end) {
				return i
			}
			i = t.skipEscape(i, end)
		default:
			i++
		}
	}
	return end
}

// listBoundary reports whether a list command starts at pos.
func (t *tokenizer) listBoundary(pos, end int) bool {
	nameEnd := letters(t.src, pos+1, end)
	switch t.src[pos+1 : nameEnd] {
	case "item":
		return true
	case "begin", "end":
		s, e, ok := t.braced(nameEnd, end)
		return ok && t.src[s:e] == "itemize"
	}
	return false
}

// skipEscape steps over a backslash. A backslash followed by a symbol
// other than a line break escapes it.
func (t *tokenizer) skipEscape(pos, end int) int {
	next := pos + 1
	if next >= end || isLetter(t.src[next]) || isNewline(t.src[next]) {
		return next
	}
	return next + 1
}

func letters(s string, from, end int) int {
	for from < end && isLetter(s[from]) {
		from++
	}
	return from
}

// newlineRun consumes consecutive line breaks (LF, CRLF or CR) and returns
// the offset after them and how many there were.
func newlineRun(s string, pos, end int) (int, int) {
	n := 0
	for pos < end {
		switch s[pos] {
		case '\r':
			pos++
			if pos < end && s[pos] == '\n' {
				pos++
			}
		case '\n':
			pos++
		default:
			return pos, n
		}
		n++
	}
	return pos, n
}

func isLetter(c byte) bool { return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' }
func isNewline(c byte) bool { return c == '\n' || c == '\r' }
func isBlank(c byte) bool   { return c == ' ' || c == '\t' }
