package tree

// Delimiter is the syntax that enclosed a math region.
type Delimiter uint8

// Delimiter styles, in resolution order.
const (
	BlockBracket Delimiter = iota // \[ ... \]
	BlockDollar                   // $$ ... $$
	InlineParen                   // \( ... \)
	InlineDollar                  // $ ... $
)

// Delimiters lists every style in the fixed resolution order.
var Delimiters = [...]Delimiter{BlockBracket, BlockDollar, InlineParen, InlineDollar}

// Delims returns the opening and closing delimiter text.
func (d Delimiter) Delims() (open, closer string) {
	switch d {
	case BlockBracket:
		return `\[`, `\]`
	case BlockDollar:
		return "$$", "$$"
	case InlineParen:
		return `\(`, `\)`
	default:
		return "$", "$"
	}
}

// Display reports whether the style renders as a block.
func (d Delimiter) Display() bool {
	return d == BlockBracket || d == BlockDollar
}

func (d Delimiter) String() string {
	switch d {
	case BlockBracket:
		return "block-bracket"
	case BlockDollar:
		return "block-dollar"
	case InlineParen:
		return "inline-paren"
	case InlineDollar:
		return "inline-dollar"
	}
	return "unknown"
}
