package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/alnah/go-tex2pdf/internal/fileutil"
	"github.com/alnah/go-tex2pdf/internal/tree"
)

var _ Store = (*FileStore)(nil)

// recordSchema is bumped when record changes shape.
const recordSchema uint16 = 1

const recordExt = ".mp"

// record is the on-disk form of one document.
type record struct {
	Schema  uint16    `msgpack:"schema"`
	Key     string    `msgpack:"key"`
	Name    string    `msgpack:"name"`
	Text    string    `msgpack:"text"`
	Updated time.Time `msgpack:"updated"`
}

// FileStore keeps one msgpack record per key in a directory. File names are
// the SHA-256 of the normalized key, so any valid key maps to a safe name.
// Safe for concurrent use.
type FileStore struct {
	mu  sync.RWMutex
	dir string
	now func() time.Time
	log *slog.Logger
}

// FileStoreOption configures a FileStore.
type FileStoreOption func(*FileStore)

// WithLogger sets the logger. Unreadable records found by List are logged
// and skipped.
func WithLogger(l *slog.Logger) FileStoreOption {
	return func(s *FileStore) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock sets the time source for Updated stamps.
func WithClock(now func() time.Time) FileStoreOption {
	return func(s *FileStore) {
		if now != nil {
			s.now = now
		}
	}
}

// OpenFileStore creates dir if needed and returns a store rooted there.
func OpenFileStore(dir string, opts ...FileStoreOption) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("opening store: %w", fileutil.ErrEmptyPath)
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	s := &FileStore{
		dir: dir,
		now: time.Now,
		log: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Dir returns the store directory.
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) pathFor(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(s.dir, hex.EncodeToString(sum[:])+recordExt)
}

// Put stores src under key, replacing any previous document.
func (s *FileStore) Put(ctx context.Context, key string, src *tree.Source) error {
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

	data, err := msgpack.Marshal(&record{
		Schema:  recordSchema,
		Key:     k,
		Name:    src.Name,
		Text:    src.Text,
		Updated: s.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fileutil.WriteFileAtomic(s.pathFor(k), data, 0o600); err != nil {
		return fmt.Errorf("storing %q: %w", k, err)
	}
	return nil
}

// Get returns the document stored under key.
func (s *FileStore) Get(ctx context.Context, key string) (*tree.Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	k, err := NormalizeKey(key)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	rec, err := s.read(s.pathFor(k))
	s.mu.RUnlock()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, k)
		}
		return nil, err
	}
	if rec.Key != k {
		return nil, fmt.Errorf("%w: %q holds key %q", ErrCorrupt, k, rec.Key)
	}
	return tree.NewSource(rec.Name, rec.Text), nil
}

// Delete removes the document stored under key.
func (s *FileStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	k, err := NormalizeKey(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.pathFor(k)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %q", ErrNotFound, k)
		}
		return fmt.Errorf("deleting %q: %w", k, err)
	}
	return nil
}

// List returns every stored document sorted by key.
func (s *FileStore) List(ctx context.Context) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	files, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("listing store: %w", err)
	}

	entries := make([]Entry, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if f.IsDir() || !strings.HasSuffix(f.Name(), recordExt) {
			continue
		}
		rec, err := s.read(filepath.Join(s.dir, f.Name()))
		if err != nil {
			s.log.Warn("skipping unreadable record", "file", f.Name(), "error", err)
			continue
		}
		entries = append(entries, Entry{
			Key:     rec.Key,
			Name:    rec.Name,
			Size:    len(rec.Text),
			Updated: rec.Updated,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, nil
}

func (s *FileStore) read(path string) (*record, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is derived from a hashed key
	if err != nil {
		return nil, err
	}
	var rec record
	if err := msgpack.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if rec.Schema != recordSchema {
		return nil, fmt.Errorf("%w: schema %d (want %d)", ErrCorrupt, rec.Schema, recordSchema)
	}
	return &rec, nil
}
