package tree

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"fortio.org/safecast"
)

// MaxSourceSize bounds a single source document (8 MiB).
const MaxSourceSize = 8 << 20

// Sentinel errors for source preconditions.
var (
	ErrNilSource      = errors.New("source document is nil")
	ErrInvalidSource  = errors.New("source document is not valid UTF-8")
	ErrSourceTooLarge = errors.New("source document too large")
)

// Source is the raw markup text of one document. Name is a caller-chosen
// label (file name, store key) and is never interpreted.
type Source struct {
	Name string
	Text string
}

// NewSource returns a Source for text.
func NewSource(name, text string) *Source {
	return &Source{Name: name, Text: text}
}

// Validate checks the render preconditions.
func (s *Source) Validate() error {
	if s == nil {
		return ErrNilSource
	}
	if len(s.Text) > MaxSourceSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrSourceTooLarge, len(s.Text), MaxSourceSize)
	}
	if !utf8.ValidString(s.Text) {
		return ErrInvalidSource
	}
	return nil
}

// Span is a half-open byte range [Start, End) into the source text.
type Span struct {
	Start uint32
	End   uint32
}

// NewSpan converts int offsets into a Span. Offsets are bounded by
// MaxSourceSize, so a conversion failure means a caller bug; it clamps to
// an empty span at zero.
func NewSpan(start, end int) Span {
	s, err := safecast.Conv[uint32](start)
	if err != nil {
		return Span{}
	}
	e, err := safecast.Conv[uint32](end)
	if err != nil {
		return Span{}
	}
	return Span{Start: s, End: e}
}

// Len returns the span width in bytes.
func (s Span) Len() int { return int(s.End) - int(s.Start) }

// Shift moves the span by off bytes.
func (s Span) Shift(off int) Span {
	return NewSpan(int(s.Start)+off, int(s.End)+off)
}

// Overlaps reports whether two non-empty spans share a byte.
func (s Span) Overlaps(o Span) bool {
	if s.Len() == 0 || o.Len() == 0 {
		return false
	}
	return s.Start < o.End && o.Start < s.End
}
