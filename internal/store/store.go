// Package store persists source documents verbatim under caller-chosen keys.
//
// Stored text is never interpreted: Get returns exactly the bytes given to
// Put, and the caller treats them as a fresh source document.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/alnah/go-tex2pdf/internal/tree"
)

// Sentinel errors for store operations.
var (
	ErrNotFound   = errors.New("document not found")
	ErrInvalidKey = errors.New("invalid document key")
	ErrCorrupt    = errors.New("corrupt document record")
)

// MaxKeyLength bounds a normalized key, in bytes.
const MaxKeyLength = 200

// Store persists source documents.
type Store interface {
	Put(ctx context.Context, key string, src *tree.Source) error
	Get(ctx context.Context, key string) (*tree.Source, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) ([]Entry, error)
}

// Entry describes one stored document.
type Entry struct {
	Key     string    `json:"key"`
	Name    string    `json:"name,omitempty"`
	Size    int       `json:"size"`
	Updated time.Time `json:"updated"`
}

// NormalizeKey returns the NFC form of key, or ErrInvalidKey when the key is
// empty, too long, not UTF-8, or contains separators or control characters.
// Two keys that differ only in Unicode composition name the same document.
func NormalizeKey(key string) (string, error) {
	if !utf8.ValidString(key) {
		return "", fmt.Errorf("%w: not valid UTF-8", ErrInvalidKey)
	}
	k := norm.NFC.String(strings.TrimSpace(key))
	switch {
	case k == "":
		return "", fmt.Errorf("%w: empty", ErrInvalidKey)
	case len(k) > MaxKeyLength:
		return "", fmt.Errorf("%w: %d bytes (max %d)", ErrInvalidKey, len(k), MaxKeyLength)
	case strings.ContainsAny(k, `/\`):
		return "", fmt.Errorf("%w: %q contains a path separator", ErrInvalidKey, k)
	case k == "." || k == "..":
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, k)
	}
	for _, r := range k {
		if unicode.IsControl(r) {
			return "", fmt.Errorf("%w: %q contains a control character", ErrInvalidKey, k)
		}
	}
	return k, nil
}

// checkSource applies the size precondition. Content is stored as given.
func checkSource(src *tree.Source) error {
	if src == nil {
		return tree.ErrNilSource
	}
	if len(src.Text) > tree.MaxSourceSize {
		return fmt.Errorf("%w: %d bytes (max %d)", tree.ErrSourceTooLarge, len(src.Text), tree.MaxSourceSize)
	}
	return nil
}
