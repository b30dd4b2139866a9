package persistence

import (
	"testing"

	"github.com/dantero/voxelcore/internal/voxel"
)

func sampleSnapshot() ChunkRegionSnapshot {
	key := RegionKey{ZoneID: "overworld", X: 1, Y: 0, Z: -1}
	layout := NewDefaultLayout()

	mk := func(coord voxel.ChunkCoord, fill uint16) ChunkSnapshot {
		blocks := make([]voxel.BlockState, voxel.SIZE*voxel.SIZE*voxel.SIZE)
		for i := range blocks {
			blocks[i] = voxel.BlockState{TypeID: fill}
		}
		return ChunkSnapshot{
			StorageKey: layout.StorageKeysForChunk(coord)[0],
			Coord:      coord,
			Data:       ChunkData{Span: voxel.FullChunkSpan(coord), Blocks: blocks},
		}
	}

	return ChunkRegionSnapshot{
		Key: key,
		Chunks: []ChunkSnapshot{
			mk(voxel.ChunkCoord{X: key.X * RegionSpan, Y: 0, Z: key.Z * RegionSpan}, 7),
			mk(voxel.ChunkCoord{X: key.X * RegionSpan, Y: 1, Z: key.Z * RegionSpan}, 3),
			mk(voxel.ChunkCoord{X: key.X*RegionSpan + 5, Y: 0, Z: key.Z*RegionSpan + 2}, 11),
		},
	}
}

func TestRegionCodecRoundTripUncompressed(t *testing.T) {
	snapshot := sampleSnapshot()
	codec := NewRegionCodec(false)

	encoded, err := codec.Encode(snapshot)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := codec.Decode(snapshot.Key, encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	assertSnapshotsEqual(t, snapshot, decoded)
}

func TestRegionCodecRoundTripCompressed(t *testing.T) {
	snapshot := sampleSnapshot()
	codec := NewRegionCodec(true)

	encoded, err := codec.Encode(snapshot)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := codec.Decode(snapshot.Key, encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	assertSnapshotsEqual(t, snapshot, decoded)
}

func TestRegionCodecEncodeIsDeterministic(t *testing.T) {
	snapshot := sampleSnapshot()
	codec := NewRegionCodec(false)

	a, err := codec.Encode(snapshot)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	b, err := codec.Encode(snapshot)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(a) != len(b) {
		t.Fatalf("expected identical encodings, lengths %d != %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("encodings diverge at byte %d", i)
		}
	}
}

func TestRegionCodecRejectsBadMagic(t *testing.T) {
	codec := NewRegionCodec(false)
	_, err := codec.Decode(RegionKey{}, []byte{0, 0, 0, 0, 1, 0, 0, 0})
	if err == nil {
		t.Fatal("expected an error for bad magic")
	}
}

func TestRegionCodecEmptySnapshotEncodesWithNoChunks(t *testing.T) {
	key := RegionKey{ZoneID: "overworld"}
	codec := NewRegionCodec(false)

	encoded, err := codec.Encode(ChunkRegionSnapshot{Key: key})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := codec.Decode(key, encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(decoded.Chunks) != 0 {
		t.Errorf("expected no chunks, got %d", len(decoded.Chunks))
	}
}

func assertSnapshotsEqual(t *testing.T, want, got ChunkRegionSnapshot) {
	t.Helper()
	if len(want.Chunks) != len(got.Chunks) {
		t.Fatalf("expected %d chunks, got %d", len(want.Chunks), len(got.Chunks))
	}

	byCoord := make(map[voxel.ChunkCoord]ChunkSnapshot, len(got.Chunks))
	for _, cs := range got.Chunks {
		byCoord[cs.Coord] = cs
	}

	for _, wantChunk := range want.Chunks {
		gotChunk, ok := byCoord[wantChunk.Coord]
		if !ok {
			t.Fatalf("missing chunk %v after round trip", wantChunk.Coord)
		}
		if len(gotChunk.Data.Blocks) != len(wantChunk.Data.Blocks) {
			t.Fatalf("chunk %v: expected %d blocks, got %d", wantChunk.Coord, len(wantChunk.Data.Blocks), len(gotChunk.Data.Blocks))
		}
		for i := range wantChunk.Data.Blocks {
			if wantChunk.Data.Blocks[i] != gotChunk.Data.Blocks[i] {
				t.Fatalf("chunk %v: block %d mismatch: want %+v, got %+v", wantChunk.Coord, i, wantChunk.Data.Blocks[i], gotChunk.Data.Blocks[i])
			}
		}
	}
}
