package typeset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/alnah/go-tex2pdf/internal/mathres"
)

var _ mathres.Typesetter = (*Validated)(nil)

// Validated rejects backend output that is not well-formed or carries active
// content. The presenter inserts math markup unescaped, so this is the last
// check on it.
type Validated struct {
	next mathres.Typesetter
}

// NewValidated wraps next.
func NewValidated(next mathres.Typesetter) *Validated {
	return &Validated{next: next}
}

// Typeset implements mathres.Typesetter.
func (v *Validated) Typeset(ctx context.Context, content string, display bool) (string, error) {
	markup, err := v.next.Typeset(ctx, content, display)
	if err != nil {
		return "", err
	}
	if err := ValidateMarkup(markup); err != nil {
		return "", fmt.Errorf("%w: %w", ErrTypeset, err)
	}
	return markup, nil
}

// activeElements may run code or load foreign documents.
var activeElements = map[string]bool{
	"script": true, "iframe": true, "object": true, "embed": true,
	"frame": true, "frameset": true, "base": true, "form": true,
	"style": true, "link": true, "meta": true,
}

// voidElements never have an end tag.
var voidElements = map[string]bool{
	"area": true, "br": true, "col": true, "hr": true, "img": true,
	"input": true, "source": true, "track": true, "wbr": true,
}

// ValidateMarkup checks that markup is a balanced HTML fragment without
// active elements, event handler attributes or javascript: URLs.
func ValidateMarkup(markup string) error {
	z := html.NewTokenizer(strings.NewReader(markup))
	var open []string
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if !errors.Is(z.Err(), io.EOF) {
				return fmt.Errorf("%w: %v", ErrMalformedMarkup, z.Err())
			}
			if len(open) > 0 {
				return fmt.Errorf("%w: <%s> not closed", ErrMalformedMarkup, open[len(open)-1])
			}
			return nil
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			tag := string(name)
			if activeElements[tag] {
				return fmt.Errorf("%w: <%s>", ErrUnsafeMarkup, tag)
			}
			if hasAttr {
				if err := checkAttrs(z, tag); err != nil {
					return err
				}
			}
			if tt == html.StartTagToken && !voidElements[tag] {
				open = append(open, tag)
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if len(open) == 0 || open[len(open)-1] != tag {
				return fmt.Errorf("%w: unexpected </%s>", ErrMalformedMarkup, tag)
			}
			open = open[:len(open)-1]
		}
	}
}

func checkAttrs(z *html.Tokenizer, tag string) error {
	for {
		key, val, more := z.TagAttr()
		k := strings.ToLower(string(key))
		if strings.HasPrefix(k, "on") {
			return fmt.Errorf("%w: %s attribute on <%s>", ErrUnsafeMarkup, k, tag)
		}
		if k == "href" || k == "src" || k == "xlink:href" {
			v := strings.ToLower(strings.TrimSpace(string(val)))
			if strings.HasPrefix(v, "javascript:") {
				return fmt.Errorf("%w: javascript URL on <%s>", ErrUnsafeMarkup, tag)
			}
		}
		if !more {
			return nil
		}
	}
}
