package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/dantero/voxelcore/internal/persistence/storage"
)

// WorldInfo is the top-level worldInfo.json document: the only two keys
// a world root is required to carry.
type WorldInfo struct {
	DefaultZoneID    string `json:"defaultZoneId"`
	WorldDisplayName string `json:"worldDisplayName"`
}

// ZoneInfo is a zone's zoneInfo.json document: its own id (redundant with
// the directory name, kept for a self-contained file) and the generator
// config version its region data was last written under, so a loader can
// tell whether an on-disk zone predates a world-gen reconfiguration.
type ZoneInfo struct {
	ZoneID          string `json:"zoneId"`
	WorldGenVersion uint32 `json:"worldGenVersion"`
}

// LoadWorldInfo reads and parses worldInfo.json. A missing file is not an
// error: it returns ok=false.
func (c *RegionContainer) LoadWorldInfo(ctx context.Context) (WorldInfo, bool, error) {
	var info WorldInfo
	ok, err := c.loadJSON(ctx, c.paths.WorldInfoPath(), &info)
	return info, ok, err
}

// SaveWorldInfo writes worldInfo.json atomically.
func (c *RegionContainer) SaveWorldInfo(ctx context.Context, info WorldInfo) error {
	return c.saveJSON(ctx, c.paths.WorldInfoPath(), info)
}

// LoadZoneInfo reads and parses a zone's zoneInfo.json. A missing file is
// not an error: it returns ok=false, the state of a zone that has never
// been saved.
func (c *RegionContainer) LoadZoneInfo(ctx context.Context, zoneID string) (ZoneInfo, bool, error) {
	var info ZoneInfo
	ok, err := c.loadJSON(ctx, c.paths.ZoneInfoPath(zoneID), &info)
	return info, ok, err
}

// SaveZoneInfo writes a zone's zoneInfo.json atomically.
func (c *RegionContainer) SaveZoneInfo(ctx context.Context, info ZoneInfo) error {
	return c.saveJSON(ctx, c.paths.ZoneInfoPath(info.ZoneID), info)
}

func (c *RegionContainer) loadJSON(ctx context.Context, path string, out interface{}) (bool, error) {
	exists, err := c.backend.Exists(ctx, path)
	if err != nil {
		return false, fmt.Errorf("%w: stat %s: %v", ErrIO, path, err)
	}
	if !exists {
		return false, nil
	}
	rc, err := c.backend.OpenRead(ctx, path)
	if err != nil {
		return false, fmt.Errorf("%w: open %s: %v", ErrIO, path, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return false, fmt.Errorf("%w: read %s: %v", ErrIO, path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("%w: decode %s: %v", ErrFormat, path, err)
	}
	return true, nil
}

func (c *RegionContainer) saveJSON(ctx context.Context, path string, in interface{}) error {
	data, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", ErrCodec, path, err)
	}
	session, err := c.backend.OpenWrite(ctx, path, storage.AtomicWriteOptions{Atomic: true, ReplaceExisting: true})
	if err != nil {
		return fmt.Errorf("%w: open %s for write: %v", ErrIO, path, err)
	}
	if _, err := session.Writer().Write(data); err != nil {
		session.Abort()
		return fmt.Errorf("%w: write %s: %v", ErrIO, path, err)
	}
	if err := session.Commit(); err != nil {
		return fmt.Errorf("%w: commit %s: %v", ErrIO, path, err)
	}
	return nil
}
