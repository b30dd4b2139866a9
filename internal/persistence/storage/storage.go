// Package storage supplies the StorageBackend the persistence core
// consumes: a path-addressed byte store with an atomic write commit. The
// filesystem implementation's temp-file-then-rename idiom and the memory
// implementation used by tests are both grounded on dittofs's block store
// package (pkg/payload/store/fs, pkg/store/block/memory).
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotExist is returned by OpenRead when the path does not exist.
var ErrNotExist = errors.New("storage: path does not exist")

// ErrClosed is returned by any operation on a backend that has been closed.
var ErrClosed = errors.New("storage: backend closed")

// AtomicWriteOptions controls the semantics of OpenWrite.
type AtomicWriteOptions struct {
	// Atomic requires that readers observe either the pre-write state or
	// the fully committed post-write state, never a partial write.
	Atomic bool
	// ReplaceExisting allows Commit to overwrite a file already at path.
	ReplaceExisting bool
}

// AtomicWriteSession is a single in-progress write. Writer returns the
// stream to write to; exactly one of Commit or Abort must be called.
type AtomicWriteSession interface {
	Writer() io.Writer
	Commit() error
	Abort() error
}

// Backend is a path-addressed byte store with an atomic commit. All
// methods fail with a wrapped error on underlying failure; callers needing
// the persistence error taxonomy (IoError etc.) wrap these at a higher
// layer.
type Backend interface {
	OpenRead(ctx context.Context, path string) (io.ReadCloser, error)
	OpenWrite(ctx context.Context, path string, opts AtomicWriteOptions) (AtomicWriteSession, error)
	Exists(ctx context.Context, path string) (bool, error)
	List(ctx context.Context, path string) ([]string, error)
	MkdirAll(ctx context.Context, path string) error
	Remove(ctx context.Context, path string) error
}
