package persistence

import (
	"context"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"

	"github.com/dantero/voxelcore/internal/persistence/storage"
)

// RegionContainer is the on-disk interface the loader and WorldFacade
// save and load regions through: a storage.Backend for bytes, a
// RegionCodec for the binary layout, and the Paths convention tying a
// RegionKey to a path. It does not itself know about chunk state or
// caching; that is AsyncChunkLoader's concern.
type RegionContainer struct {
	backend storage.Backend
	codec   *RegionCodec
	paths   Paths
}

// NewRegionContainer wires a backend, codec and path convention together.
func NewRegionContainer(backend storage.Backend, codec *RegionCodec, paths Paths) *RegionContainer {
	return &RegionContainer{backend: backend, codec: codec, paths: paths}
}

// Format reports the on-disk region format this container reads and
// writes with.
func (c *RegionContainer) Format() FormatDescriptor {
	return FormatDescriptor{ID: FormatID, Version: FormatVersion, Compressed: c.codec.Compress}
}

// SaveRegion writes snapshot to its region file. An empty snapshot
// removes the file instead of writing an empty one, so a region that
// has been fully carved back to defaults doesn't leave a stale file
// behind.
func (c *RegionContainer) SaveRegion(ctx context.Context, snapshot ChunkRegionSnapshot) error {
	p := c.paths.RegionPath(snapshot.Key)
	if snapshot.IsEmpty() {
		if err := c.backend.Remove(ctx, p); err != nil {
			return fmt.Errorf("%w: remove empty region %s: %v", ErrIO, snapshot.Key, err)
		}
		return nil
	}

	encoded, err := c.codec.Encode(snapshot)
	if err != nil {
		return err
	}

	session, err := c.backend.OpenWrite(ctx, p, storage.AtomicWriteOptions{Atomic: true, ReplaceExisting: true})
	if err != nil {
		return fmt.Errorf("%w: open region %s for write: %v", ErrIO, snapshot.Key, err)
	}
	if _, err := session.Writer().Write(encoded); err != nil {
		session.Abort()
		return fmt.Errorf("%w: write region %s: %v", ErrIO, snapshot.Key, err)
	}
	if err := session.Commit(); err != nil {
		return fmt.Errorf("%w: commit region %s: %v", ErrIO, snapshot.Key, err)
	}
	return nil
}

// LoadRegion reads a region's snapshot. A region with no file on disk
// is not an error: it returns an empty snapshot, the same as a region
// that has never had any chunk written to it.
func (c *RegionContainer) LoadRegion(ctx context.Context, key RegionKey) (ChunkRegionSnapshot, error) {
	p := c.paths.RegionPath(key)
	exists, err := c.backend.Exists(ctx, p)
	if err != nil {
		return ChunkRegionSnapshot{}, fmt.Errorf("%w: stat region %s: %v", ErrIO, key, err)
	}
	if !exists {
		return ChunkRegionSnapshot{Key: key}, nil
	}

	rc, err := c.backend.OpenRead(ctx, p)
	if err != nil {
		return ChunkRegionSnapshot{}, fmt.Errorf("%w: open region %s: %v", ErrIO, key, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return ChunkRegionSnapshot{}, fmt.Errorf("%w: read region %s: %v", ErrIO, key, err)
	}

	return c.codec.Decode(key, data)
}

// RegionExists reports whether a region has a file on disk, without
// reading or decoding it.
func (c *RegionContainer) RegionExists(ctx context.Context, key RegionKey) (bool, error) {
	exists, err := c.backend.Exists(ctx, c.paths.RegionPath(key))
	if err != nil {
		return false, fmt.Errorf("%w: stat region %s: %v", ErrIO, key, err)
	}
	return exists, nil
}

// ListRegions enumerates every region with a file on disk for a zone.
func (c *RegionContainer) ListRegions(ctx context.Context, zoneID string) ([]RegionKey, error) {
	entries, err := c.backend.List(ctx, c.paths.RegionsDir(zoneID))
	if err != nil {
		return nil, fmt.Errorf("%w: list regions for zone %s: %v", ErrIO, zoneID, err)
	}
	keys := make([]RegionKey, 0, len(entries))
	for _, e := range entries {
		key, ok := parseRegionFileName(zoneID, path.Base(e))
		if !ok {
			continue
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// parseRegionFileName parses "region_<x>_<y>_<z>.bin" into a RegionKey.
func parseRegionFileName(zoneID, name string) (RegionKey, bool) {
	const prefix, suffix = "region_", ".bin"
	if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, suffix) {
		return RegionKey{}, false
	}
	body := strings.TrimSuffix(strings.TrimPrefix(name, prefix), suffix)
	parts := strings.Split(body, "_")
	if len(parts) != 3 {
		return RegionKey{}, false
	}
	x, errX := strconv.ParseInt(parts[0], 10, 32)
	y, errY := strconv.ParseInt(parts[1], 10, 32)
	z, errZ := strconv.ParseInt(parts[2], 10, 32)
	if errX != nil || errY != nil || errZ != nil {
		return RegionKey{}, false
	}
	return RegionKey{ZoneID: zoneID, X: int32(x), Y: int32(y), Z: int32(z)}, true
}
