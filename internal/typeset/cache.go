package typeset

import (
	"context"
	"errors"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/alnah/go-tex2pdf/internal/mathres"
)

var _ mathres.Typesetter = (*Cache)(nil)

// DefaultCacheSize is the number of typeset regions kept by New.
const DefaultCacheSize = 512

type cacheKey struct {
	display bool
	content string
}

type cacheEntry struct {
	markup string
	err    error
}

// Cache memoizes a Typesetter with a bounded LRU. Successes and rejections
// (errors wrapping ErrTypeset) are cached. Any other failure, such as a
// lost browser or a cancelled context, reaches the backend again on the
// next call.
type Cache struct {
	next    mathres.Typesetter
	entries *lru.Cache[cacheKey, cacheEntry]
}

// NewCache wraps next with an LRU of size entries. A size below 1 uses
// DefaultCacheSize.
func NewCache(next mathres.Typesetter, size int) *Cache {
	if size < 1 {
		size = DefaultCacheSize
	}
	// lru.New only fails on a non-positive size.
	entries, _ := lru.New[cacheKey, cacheEntry](size)
	return &Cache{next: next, entries: entries}
}

// Typeset implements mathres.Typesetter.
func (c *Cache) Typeset(ctx context.Context, content string, display bool) (string, error) {
	key := cacheKey{display: display, content: content}
	if e, ok := c.entries.Get(key); ok {
		return e.markup, e.err
	}

	markup, err := c.next.Typeset(ctx, content, display)
	if err == nil || errors.Is(err, ErrTypeset) {
		c.entries.Add(key, cacheEntry{markup: markup, err: err})
	}
	return markup, err
}

// Len returns the number of cached regions.
func (c *Cache) Len() int {
	return c.entries.Len()
}
