package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/alnah/go-tex2pdf/internal/tree"
)

var _ Store = (*Memory)(nil)

// Memory is an in-process Store. The server uses it when no store
// directory is configured.
type Memory struct {
	mu   sync.RWMutex
	docs map[string]memoryDoc
}

type memoryDoc struct {
	src     tree.Source
	updated time.Time
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{docs: make(map[string]memoryDoc)}
}

// Put implements Store.
func (m *Memory) Put(ctx context.Context, key string, src *tree.Source) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	k, err := NormalizeKey(key)
	if err != nil {
		return err
	}
	if err := checkSource(src); err != nil {
		return err
	}
	m.mu.Lock()
	m.docs[k] = memoryDoc{src: *src, updated: time.Now().UTC()}
	m.mu.Unlock()
	return nil
}

// Get implements Store.
func (m *Memory) Get(ctx context.Context, key string) (*tree.Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	k, err := NormalizeKey(key)
	if err != nil {
		return nil, err
	}
	m.mu.RLock()
	d, ok := m.docs[k]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, k)
	}
	src := d.src
	return &src, nil
}

// Delete implements Store.
func (m *Memory) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	k, err := NormalizeKey(key)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[k]; !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, k)
	}
	delete(m.docs, k)
	return nil
}

// List implements Store.
func (m *Memory) List(ctx context.Context) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	entries := make([]Entry, 0, len(m.docs))
	for k, d := range m.docs {
		entries = append(entries, Entry{Key: k, Name: d.src.Name, Size: len(d.src.Text), Updated: d.updated})
	}
	m.mu.RUnlock()
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, nil
}
