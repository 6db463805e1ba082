package present

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/alnah/go-tex2pdf/internal/tree"
)

// ErrUnknownFormat is returned by New for an unsupported format name.
var ErrUnknownFormat = errors.New("unknown output format")

// Presenter writes a node tree in one output format.
type Presenter interface {
	Present(ctx context.Context, w io.Writer, nodes []tree.Node) error
}

// Format names.
const (
	FormatFragment = "fragment"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
	FormatDOCX     = "docx"
	FormatTerm     = "term"
)

var contentTypes = map[string]string{
	FormatFragment: "text/html; charset=utf-8",
	FormatMarkdown: "text/markdown; charset=utf-8",
	FormatJSON:     "application/json",
	FormatDOCX:     "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	FormatTerm:     "text/plain; charset=utf-8",
}

// Formats lists the format names accepted by New, sorted.
func Formats() []string {
	names := make([]string, 0, len(contentTypes))
	for k := range contentTypes {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

// ContentType returns the MIME type of a format.
func ContentType(format string) string {
	return contentTypes[format]
}

// New returns the presenter for format.
func New(format string) (Presenter, error) {
	switch format {
	case FormatFragment:
		return NewHTML(), nil
	case FormatMarkdown:
		return NewMarkdown(), nil
	case FormatJSON:
		return JSON{}, nil
	case FormatDOCX:
		return DOCX{}, nil
	case FormatTerm:
		return NewTerminal(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}
