package storage

import (
	"context"
	"io"
	"path/filepath"
	"testing"
)

func TestMemoryBackendReadNotExist(t *testing.T) {
	b := NewMemoryBackend()
	_, err := b.OpenRead(context.Background(), "missing")
	if err != ErrNotExist {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
}

func TestMemoryBackendWriteThenRead(t *testing.T) {
	b := NewMemoryBackend()
	ctx := context.Background()

	session, err := b.OpenWrite(ctx, "a/b.bin", AtomicWriteOptions{Atomic: true, ReplaceExisting: true})
	if err != nil {
		t.Fatalf("OpenWrite: %v", err)
	}
	session.Writer().Write([]byte("hello"))
	if err := session.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	rc, err := b.OpenRead(ctx, "a/b.bin")
	if err != nil {
		t.Fatalf("OpenRead: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "hello" {
		t.Errorf("got %q, want %q", data, "hello")
	}
}

func TestMemoryBackendAbortDoesNotCommit(t *testing.T) {
	b := NewMemoryBackend()
	ctx := context.Background()
	session, _ := b.OpenWrite(ctx, "x", AtomicWriteOptions{Atomic: true})
	session.Writer().Write([]byte("nope"))
	session.Abort()

	if ok, _ := b.Exists(ctx, "x"); ok {
		t.Errorf("expected aborted write to leave no trace")
	}
}

func TestFilesystemBackendWriteIsAtomicAndReadable(t *testing.T) {
	dir := t.TempDir()
	b, err := NewFilesystemBackend(dir)
	if err != nil {
		t.Fatalf("NewFilesystemBackend: %v", err)
	}
	ctx := context.Background()

	session, err := b.OpenWrite(ctx, "zones/a/region_0_0_0.bin", AtomicWriteOptions{Atomic: true, ReplaceExisting: true})
	if err != nil {
		t.Fatalf("OpenWrite: %v", err)
	}
	session.Writer().Write([]byte("region-bytes"))
	if err := session.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	// No stray temp file should remain next to the committed file.
	entries, _ := filepath.Glob(filepath.Join(dir, "zones", "a", ".tmp-*"))
	if len(entries) != 0 {
		t.Errorf("expected no leftover temp files, found %v", entries)
	}

	rc, err := b.OpenRead(ctx, "zones/a/region_0_0_0.bin")
	if err != nil {
		t.Fatalf("OpenRead: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "region-bytes" {
		t.Errorf("got %q", data)
	}
}

func TestFilesystemBackendRemoveMissingIsNotError(t *testing.T) {
	dir := t.TempDir()
	b, _ := NewFilesystemBackend(dir)
	if err := b.Remove(context.Background(), "nonexistent"); err != nil {
		t.Errorf("expected removing a missing path to succeed, got %v", err)
	}
}

func TestFilesystemBackendListSkipsTempFiles(t *testing.T) {
	dir := t.TempDir()
	b, _ := NewFilesystemBackend(dir)
	ctx := context.Background()

	for _, name := range []string{"region_0_0_0.bin", "region_1_0_0.bin"} {
		s, _ := b.OpenWrite(ctx, "zones/a/"+name, AtomicWriteOptions{Atomic: true, ReplaceExisting: true})
		s.Writer().Write([]byte("x"))
		s.Commit()
	}

	// An uncommitted write leaves its temp file beside the committed ones.
	pending, err := b.OpenWrite(ctx, "zones/a/region_2_0_0.bin", AtomicWriteOptions{Atomic: true, ReplaceExisting: true})
	if err != nil {
		t.Fatalf("OpenWrite: %v", err)
	}
	defer pending.Abort()

	entries, err := b.List(ctx, "zones/a")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 entries, got %d: %v", len(entries), entries)
	}
}
