package storage

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
)

// MemoryBackend is an in-memory StorageBackend for tests: the
// memory-backed storage context spec scenario 3 (save/load round-trip)
// calls for. Grounded on dittofs's in-memory block store.
type MemoryBackend struct {
	mu     sync.RWMutex
	files  map[string][]byte
	closed bool
}

// NewMemoryBackend returns an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{files: make(map[string][]byte)}
}

type memoryReadCloser struct {
	*bytes.Reader
}

func (memoryReadCloser) Close() error { return nil }

// OpenRead implements Backend.
func (b *MemoryBackend) OpenRead(ctx context.Context, path string) (io.ReadCloser, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	data, ok := b.files[path]
	if !ok {
		return nil, ErrNotExist
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return memoryReadCloser{bytes.NewReader(cp)}, nil
}

// Exists implements Backend.
func (b *MemoryBackend) Exists(ctx context.Context, path string) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.files[path]
	return ok, nil
}

// MkdirAll is a no-op: the memory backend has no directory structure.
func (b *MemoryBackend) MkdirAll(ctx context.Context, path string) error { return nil }

// Remove implements Backend.
func (b *MemoryBackend) Remove(ctx context.Context, path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.files, path)
	return nil
}

// List implements Backend: it returns every stored path with the given
// prefix, sorted for determinism.
func (b *MemoryBackend) List(ctx context.Context, prefix string) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []string
	for k := range b.files {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out, nil
}

// OpenWrite implements Backend.
func (b *MemoryBackend) OpenWrite(ctx context.Context, path string, opts AtomicWriteOptions) (AtomicWriteSession, error) {
	return &memoryWriteSession{backend: b, path: path}, nil
}

type memoryWriteSession struct {
	backend *MemoryBackend
	path    string
	buf     bytes.Buffer
	done    bool
}

func (s *memoryWriteSession) Writer() io.Writer { return &s.buf }

func (s *memoryWriteSession) Commit() error {
	if s.done {
		return nil
	}
	s.done = true
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()
	data := make([]byte, s.buf.Len())
	copy(data, s.buf.Bytes())
	s.backend.files[s.path] = data
	return nil
}

func (s *memoryWriteSession) Abort() error {
	s.done = true
	return nil
}

var _ Backend = (*MemoryBackend)(nil)
