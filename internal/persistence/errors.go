// Package persistence implements the region-based storage backend: the
// on-disk container format, the default binary codec, the region layout,
// and the zone/world path conventions the loader and WorldFacade build on.
package persistence

import "errors"

// The error taxonomy below lets callers use errors.Is/errors.As against a
// specific kind while every concrete error still carries its own message
// via fmt.Errorf("...: %w", ...).
var (
	// ErrIO wraps a storage-backend failure: permission, disk full, or a
	// missing path encountered where existence was assumed.
	ErrIO = errors.New("persistence: storage backend failure")

	// ErrFormat wraps a malformed region file: bad magic, unknown version,
	// truncated payload, or a decompression failure.
	ErrFormat = errors.New("persistence: malformed region format")

	// ErrCodec wraps a chunk-level decode failure within an otherwise
	// well-formed region; the offending chunk is skipped, the region load
	// continues.
	ErrCodec = errors.New("persistence: chunk codec failure")
)
