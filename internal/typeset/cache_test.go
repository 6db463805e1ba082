package typeset

// Notes:
// - countingTypesetter counts backend calls; a cache hit is a call that did
//   not reach it.

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
)

type countingTypesetter struct {
	calls atomic.Int32
	err   error
	// failFirst makes only the first call return err.
	failFirst bool
}

func (c *countingTypesetter) Typeset(ctx context.Context, content string, display bool) (string, error) {
	n := c.calls.Add(1)
	if c.err != nil && (!c.failFirst || n == 1) {
		return "", c.err
	}
	if display {
		return "D:" + content, nil
	}
	return "I:" + content, nil
}

// ---------------------------------------------------------------------------
// TestCache - Hits, keys and eviction
// ---------------------------------------------------------------------------

func TestCache_Hit(t *testing.T) {
	t.Parallel()

	next := &countingTypesetter{}
	c := NewCache(next, 4)
	ctx := context.Background()

	for range 3 {
		got, err := c.Typeset(ctx, "x", false)
		if err != nil || got != "I:x" {
			t.Fatalf("Typeset() = %q, %v", got, err)
		}
	}
	if n := next.calls.Load(); n != 1 {
		t.Errorf("backend calls = %d, want 1", n)
	}

	if got, _ := c.Typeset(ctx, "x", true); got != "D:x" {
		t.Errorf("display mode must be part of the key, got %q", got)
	}
	if n := next.calls.Load(); n != 2 {
		t.Errorf("backend calls = %d, want 2", n)
	}
}

func TestCache_Eviction(t *testing.T) {
	t.Parallel()

	next := &countingTypesetter{}
	c := NewCache(next, 2)
	ctx := context.Background()

	_, _ = c.Typeset(ctx, "a", false)
	_, _ = c.Typeset(ctx, "b", false)
	_, _ = c.Typeset(ctx, "a", false) // a is now most recent
	_, _ = c.Typeset(ctx, "c", false) // evicts b

	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}
	before := next.calls.Load()
	_, _ = c.Typeset(ctx, "a", false)
	if next.calls.Load() != before {
		t.Error("a should still be cached")
	}
	_, _ = c.Typeset(ctx, "b", false)
	if next.calls.Load() != before+1 {
		t.Error("b should have been evicted")
	}
}

func TestCache_Errors(t *testing.T) {
	t.Parallel()

	t.Run("rejections are cached", func(t *testing.T) {
		t.Parallel()

		next := &countingTypesetter{err: ErrTypeset}
		c := NewCache(next, 0)
		for range 2 {
			if _, err := c.Typeset(context.Background(), "x", false); !errors.Is(err, ErrTypeset) {
				t.Fatalf("Typeset() error = %v", err)
			}
		}
		if n := next.calls.Load(); n != 1 {
			t.Errorf("backend calls = %d, want 1", n)
		}
	})

	t.Run("context errors are not cached", func(t *testing.T) {
		t.Parallel()

		next := &countingTypesetter{err: context.Canceled}
		c := NewCache(next, 0)
		for range 2 {
			_, _ = c.Typeset(context.Background(), "x", false)
		}
		if n := next.calls.Load(); n != 2 {
			t.Errorf("backend calls = %d, want 2", n)
		}
		if c.Len() != 0 {
			t.Errorf("Len() = %d, want 0", c.Len())
		}
	})

	t.Run("backend failures are retried", func(t *testing.T) {
		t.Parallel()

		next := &countingTypesetter{err: errors.New("katex eval: websocket closed"), failFirst: true}
		c := NewCache(next, 0)
		ctx := context.Background()

		if _, err := c.Typeset(ctx, "x", false); err == nil {
			t.Fatal("first Typeset() error = nil, want backend failure")
		}
		got, err := c.Typeset(ctx, "x", false)
		if err != nil || got != "I:x" {
			t.Fatalf("second Typeset() = %q, %v, want I:x", got, err)
		}
		if n := next.calls.Load(); n != 2 {
			t.Errorf("backend calls = %d, want 2", n)
		}
		if _, _ = c.Typeset(ctx, "x", false); next.calls.Load() != 2 {
			t.Error("success after a retry should be cached")
		}
	})

	t.Run("wrapped rejections are cached", func(t *testing.T) {
		t.Parallel()

		next := &countingTypesetter{err: fmt.Errorf("%w: %w", ErrTypeset, ErrUnsafeMarkup)}
		c := NewCache(next, 0)
		for range 2 {
			_, _ = c.Typeset(context.Background(), "x", false)
		}
		if n := next.calls.Load(); n != 1 {
			t.Errorf("backend calls = %d, want 1", n)
		}
	})
}

func TestCache_Concurrent(t *testing.T) {
	t.Parallel()

	c := NewCache(&countingTypesetter{}, 8)
	var wg sync.WaitGroup
	for i := range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			content := string(rune('a' + i%16))
			if got, err := c.Typeset(context.Background(), content, false); err != nil || got != "I:"+content {
				t.Errorf("Typeset(%q) = %q, %v", content, got, err)
			}
		}()
	}
	wg.Wait()
	if c.Len() > 8 {
		t.Errorf("Len() = %d exceeds size", c.Len())
	}
}
