package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// FilesystemBackend is a StorageBackend rooted at a base directory on the
// local filesystem. Paths given to its methods are slash-separated and
// relative to the root. Writes go to a temp file in the same directory as
// the destination, then os.Rename into place on Commit: the usual
// temp-file-then-rename idiom for atomic file replacement on POSIX.
type FilesystemBackend struct {
	mu       sync.Mutex
	root     string
	dirMode  os.FileMode
	fileMode os.FileMode
}

// NewFilesystemBackend returns a backend rooted at root, creating it if
// it doesn't already exist.
func NewFilesystemBackend(root string) (*FilesystemBackend, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &FilesystemBackend{root: root, dirMode: 0o755, fileMode: 0o644}, nil
}

func (b *FilesystemBackend) resolve(path string) string {
	return filepath.Join(b.root, filepath.FromSlash(path))
}

// OpenRead implements Backend.
func (b *FilesystemBackend) OpenRead(ctx context.Context, path string) (io.ReadCloser, error) {
	f, err := os.Open(b.resolve(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotExist
		}
		return nil, err
	}
	return f, nil
}

// Exists implements Backend.
func (b *FilesystemBackend) Exists(ctx context.Context, path string) (bool, error) {
	_, err := os.Stat(b.resolve(path))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// MkdirAll implements Backend.
func (b *FilesystemBackend) MkdirAll(ctx context.Context, path string) error {
	return os.MkdirAll(b.resolve(path), b.dirMode)
}

// Remove implements Backend. Removing a path that doesn't exist is not an error.
func (b *FilesystemBackend) Remove(ctx context.Context, path string) error {
	err := os.Remove(b.resolve(path))
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}

// List implements Backend: it lists the immediate contents of the
// directory at path as paths relative to the backend root, sorted for
// determinism.
func (b *FilesystemBackend) List(ctx context.Context, path string) ([]string, error) {
	dir := b.resolve(path)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".tmp-") {
			continue
		}
		rel := path
		if rel != "" {
			rel = strings.TrimSuffix(rel, "/") + "/"
		}
		out = append(out, rel+e.Name())
	}
	sort.Strings(out)
	return out, nil
}

// OpenWrite implements Backend.
func (b *FilesystemBackend) OpenWrite(ctx context.Context, path string, opts AtomicWriteOptions) (AtomicWriteSession, error) {
	dest := b.resolve(path)
	if err := os.MkdirAll(filepath.Dir(dest), b.dirMode); err != nil {
		return nil, err
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".tmp-*")
	if err != nil {
		return nil, err
	}
	return &fsWriteSession{dest: dest, tmp: tmp, opts: opts}, nil
}

type fsWriteSession struct {
	dest string
	tmp  *os.File
	opts AtomicWriteOptions
	done bool
}

func (s *fsWriteSession) Writer() io.Writer { return s.tmp }

func (s *fsWriteSession) Commit() error {
	if s.done {
		return nil
	}
	s.done = true
	if err := s.tmp.Close(); err != nil {
		os.Remove(s.tmp.Name())
		return err
	}
	if !s.opts.ReplaceExisting {
		if _, err := os.Stat(s.dest); err == nil {
			os.Remove(s.tmp.Name())
			return os.ErrExist
		}
	}
	if err := os.Rename(s.tmp.Name(), s.dest); err != nil {
		os.Remove(s.tmp.Name())
		return err
	}
	return nil
}

func (s *fsWriteSession) Abort() error {
	if s.done {
		return nil
	}
	s.done = true
	s.tmp.Close()
	return os.Remove(s.tmp.Name())
}

var _ Backend = (*FilesystemBackend)(nil)
