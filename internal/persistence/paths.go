package persistence

import (
	"fmt"
	"strings"
)

// Paths builds the storage-relative path conventions for a world's saved
// data, mirroring the layout Rigel's CRPaths.cpp establishes: a world
// root holding worldInfo.json, per-zone directories each with their own
// zoneInfo.json, and region/entity-region files named by region
// coordinate underneath a regions/ and entities/ subdirectory.
type Paths struct {
	root string
}

// NewPaths returns a Paths rooted at root, a storage.Backend-relative
// path (commonly "" when the backend is itself already rooted at the
// world directory).
func NewPaths(root string) Paths {
	return Paths{root: strings.TrimSuffix(root, "/")}
}

func (p Paths) join(parts ...string) string {
	all := make([]string, 0, len(parts)+1)
	if p.root != "" {
		all = append(all, p.root)
	}
	all = append(all, parts...)
	return strings.Join(all, "/")
}

// WorldInfoPath returns the path to the world's top-level metadata file.
func (p Paths) WorldInfoPath() string {
	return p.join("worldInfo.json")
}

// normalizeZoneID converts a zone identifier into a filesystem-safe
// directory component by replacing ':' with '/', matching the
// namespaced-id convention zone ids otherwise share with block ids.
func normalizeZoneID(zoneID string) string {
	return strings.ReplaceAll(zoneID, ":", "/")
}

// ZoneRoot returns the directory holding one zone's data.
func (p Paths) ZoneRoot(zoneID string) string {
	return p.join("zones", normalizeZoneID(zoneID))
}

// ZoneInfoPath returns the path to a zone's metadata file.
func (p Paths) ZoneInfoPath(zoneID string) string {
	return p.join("zones", normalizeZoneID(zoneID), "zoneInfo.json")
}

// RegionsDir returns the directory holding a zone's region files.
func (p Paths) RegionsDir(zoneID string) string {
	return p.join("zones", normalizeZoneID(zoneID), "regions")
}

// RegionPath returns the path to a single region's block data file.
func (p Paths) RegionPath(key RegionKey) string {
	return p.join("zones", normalizeZoneID(key.ZoneID), "regions",
		fmt.Sprintf("region_%d_%d_%d.bin", key.X, key.Y, key.Z))
}

// EntitiesDir returns the directory holding a zone's entity-region files.
func (p Paths) EntitiesDir(zoneID string) string {
	return p.join("zones", normalizeZoneID(zoneID), "entities")
}

// EntityRegionPath returns the path to a single region's entity data file.
func (p Paths) EntityRegionPath(key RegionKey) string {
	return p.join("zones", normalizeZoneID(key.ZoneID), "entities",
		fmt.Sprintf("entityRegion_%d_%d_%d.bin", key.X, key.Y, key.Z))
}
