package markup

import "github.com/alnah/go-tex2pdf/internal/tree"

// CommandKind identifies a recognized structural command.
type CommandKind uint8

// The closed set of structural commands.
const (
	Section CommandKind = iota + 1
	Subsection
	Bold
	Italic
	Underline
	ListBegin
	ListEnd
	ListItem
)

var commandNames = [...]string{
	Section:    `\section`,
	Subsection: `\subsection`,
	Bold:       `\textbf`,
	Italic:     `\textit`,
	Underline:  `\underline`,
	ListBegin:  `\begin{itemize}`,
	ListEnd:    `\end{itemize}`,
	ListItem:   `\item`,
}

func (k CommandKind) String() string {
	if int(k) < len(commandNames) && commandNames[k] != "" {
		return commandNames[k]
	}
	return "unknown"
}

// Inline reports whether the command may appear inside a list item body.
func (k CommandKind) Inline() bool {
	return k == Bold || k == Italic || k == Underline
}

// byName maps a command name (without backslash) to its kind. begin and end
// are only commands when their argument is itemize.
var byName = map[string]CommandKind{
	"section":    Section,
	"subsection": Subsection,
	"textbf":     Bold,
	"textit":     Italic,
	"underline":  Underline,
	"begin":      ListBegin,
	"end":        ListEnd,
	"item":       ListItem,
}

// Command is one recognized structural directive. Arg is the braced argument
// or the item body, verbatim; ListBegin and ListEnd carry no argument.
type Command struct {
	Kind    CommandKind
	Arg     string
	Span    tree.Span
	ArgSpan tree.Span
}

// TokenKind classifies a token of the structural scan.
type TokenKind uint8

const (
	// TokenText is a run of literal text, math included.
	TokenText TokenKind = iota
	// TokenCommand is a recognized command.
	TokenCommand
	// TokenBreak is a run of two or more newlines.
	TokenBreak
)

// Token is one unit of the structural scan, in source order.
type Token struct {
	Kind TokenKind
	Text string
	Cmd  Command
	Span tree.Span
}
