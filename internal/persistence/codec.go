package persistence

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/dantero/voxelcore/internal/voxel"
)

// FormatVersion is the region file format version this codec reads and writes.
const FormatVersion = 1

// FormatID names the on-disk region format a RegionCodec implements.
// RegionContainer.Format exposes this (plus the live compression setting)
// so a caller can record which format wrote a save without the container
// hardcoding that knowledge itself.
const FormatID = "voxelcore-binary-v1"

// FormatDescriptor identifies the on-disk region format a RegionContainer
// is reading and writing with.
type FormatDescriptor struct {
	ID         string
	Version    uint32
	Compressed bool
}

// magic identifies a region file; chosen to be unlikely to collide with
// any other binary format the storage backend might also hold.
const magic = 0x564f5852 // "VOXR"

// CompressionType selects the payload encoding of a region file.
type CompressionType uint32

const (
	CompressionNone CompressionType = 0
	CompressionZstd CompressionType = 1
)

const (
	offsetTypeI16 = 1
	offsetTypeI32 = 2
)

const missingOffset = -1

// RegionCodec encodes and decodes a ChunkRegionSnapshot to and from the
// default binary region layout: a small header, an optional zstd-
// compressed payload (substituting for the LZ4 scheme spec.md names,
// see DESIGN.md), and a flat offset table over per-column chunk data.
type RegionCodec struct {
	Compress bool
}

// NewRegionCodec returns a codec; compress controls whether Encode
// produces a compressed payload (the enableLz4 configuration option).
func NewRegionCodec(compress bool) *RegionCodec {
	return &RegionCodec{Compress: compress}
}

// Encode serializes a snapshot to the on-disk byte form. An empty
// snapshot still encodes validly (callers that want the "no file" rule
// for empty regions check IsEmpty before calling Encode).
func (c *RegionCodec) Encode(snapshot ChunkRegionSnapshot) ([]byte, error) {
	payload, columnCount, err := encodePayload(snapshot)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCodec, err)
	}

	compressionType := CompressionNone
	body := payload
	if c.Compress {
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, fmt.Errorf("%w: zstd encoder unavailable: %v", ErrFormat, err)
		}
		defer enc.Close()
		body = enc.EncodeAll(payload, nil)
		compressionType = CompressionZstd
	}

	var buf bytes.Buffer
	writeU32(&buf, magic)
	writeU32(&buf, FormatVersion)
	writeU32(&buf, uint32(compressionType))
	writeU32(&buf, uint32(columnCount))
	if compressionType != CompressionNone {
		writeU32(&buf, uint32(len(body)))
		writeU32(&buf, uint32(len(payload)))
	}
	buf.Write(body)
	return buf.Bytes(), nil
}

// Decode parses the on-disk byte form back into a snapshot. key is
// attached to the result since the file itself carries no zone/position
// information.
func (c *RegionCodec) Decode(key RegionKey, data []byte) (ChunkRegionSnapshot, error) {
	r := bytes.NewReader(data)
	gotMagic, err := readU32(r)
	if err != nil || gotMagic != magic {
		return ChunkRegionSnapshot{}, fmt.Errorf("%w: bad magic", ErrFormat)
	}
	version, err := readU32(r)
	if err != nil {
		return ChunkRegionSnapshot{}, fmt.Errorf("%w: truncated header", ErrFormat)
	}
	if version != FormatVersion {
		return ChunkRegionSnapshot{}, fmt.Errorf("%w: unsupported version %d", ErrFormat, version)
	}
	compressionType, err := readU32(r)
	if err != nil {
		return ChunkRegionSnapshot{}, fmt.Errorf("%w: truncated header", ErrFormat)
	}
	if _, err := readU32(r); err != nil { // columnCount, informational only on decode
		return ChunkRegionSnapshot{}, fmt.Errorf("%w: truncated header", ErrFormat)
	}

	var payload []byte
	switch CompressionType(compressionType) {
	case CompressionNone:
		payload, err = io.ReadAll(r)
		if err != nil {
			return ChunkRegionSnapshot{}, fmt.Errorf("%w: truncated payload", ErrFormat)
		}
	case CompressionZstd:
		compressedSize, err := readU32(r)
		if err != nil {
			return ChunkRegionSnapshot{}, fmt.Errorf("%w: truncated header", ErrFormat)
		}
		decompressedSize, err := readU32(r)
		if err != nil {
			return ChunkRegionSnapshot{}, fmt.Errorf("%w: truncated header", ErrFormat)
		}
		compressed := make([]byte, compressedSize)
		if _, err := io.ReadFull(r, compressed); err != nil {
			return ChunkRegionSnapshot{}, fmt.Errorf("%w: truncated compressed payload", ErrFormat)
		}
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return ChunkRegionSnapshot{}, fmt.Errorf("%w: zstd decoder unavailable: %v", ErrFormat, err)
		}
		defer dec.Close()
		payload, err = dec.DecodeAll(compressed, make([]byte, 0, decompressedSize))
		if err != nil {
			return ChunkRegionSnapshot{}, fmt.Errorf("%w: decompression failed: %v", ErrFormat, err)
		}
	default:
		return ChunkRegionSnapshot{}, fmt.Errorf("%w: unknown compression type %d", ErrFormat, compressionType)
	}

	return decodePayload(key, payload)
}

// encodePayload builds the offsetTypeByte + offsetTable + columnsBytes
// payload described by the default format, grouping chunk snapshots by
// their storage key (column).
func encodePayload(snapshot ChunkRegionSnapshot) ([]byte, int, error) {
	columns := make(map[int][]ChunkSnapshot)
	for _, cs := range snapshot.Chunks {
		columns[cs.StorageKey] = append(columns[cs.StorageKey], cs)
	}

	const tableLen = RegionSpan * RegionSpan
	var columnsBuf bytes.Buffer
	offsets := make([]int64, tableLen)
	for i := range offsets {
		offsets[i] = missingOffset
	}

	// Deterministic column order keeps repeated encodes of the same
	// snapshot byte-identical, which the round-trip property tests rely on.
	for key := 0; key < tableLen; key++ {
		entries, ok := columns[key]
		if !ok || len(entries) == 0 {
			continue
		}
		offsets[key] = int64(columnsBuf.Len())

		var col bytes.Buffer
		writeU32(&col, FormatVersion)
		col.WriteByte(byte(len(entries)))
		for _, e := range entries {
			writeI32(&col, e.Coord.X)
			writeI32(&col, e.Coord.Y)
			writeI32(&col, e.Coord.Z)
			blob := encodeBlocks(e.Data.Blocks)
			writeU32(&col, uint32(len(blob)))
			col.Write(blob)
		}

		writeU32(&columnsBuf, uint32(col.Len()))
		columnsBuf.Write(col.Bytes())
	}

	maxOffset := int64(0)
	for _, o := range offsets {
		if o > maxOffset {
			maxOffset = o
		}
	}
	offsetType := offsetTypeI16
	if maxOffset > 0x7FFF {
		offsetType = offsetTypeI32
	}

	var out bytes.Buffer
	out.WriteByte(byte(offsetType))
	for _, o := range offsets {
		if offsetType == offsetTypeI16 {
			writeI16(&out, int16(o))
		} else {
			writeI32(&out, int32(o))
		}
	}
	out.Write(columnsBuf.Bytes())
	return out.Bytes(), len(columns), nil
}

func decodePayload(key RegionKey, payload []byte) (ChunkRegionSnapshot, error) {
	r := bytes.NewReader(payload)
	offsetTypeByte, err := r.ReadByte()
	if err != nil {
		return ChunkRegionSnapshot{}, fmt.Errorf("%w: empty payload", ErrFormat)
	}

	const tableLen = RegionSpan * RegionSpan
	offsets := make([]int64, tableLen)
	for i := 0; i < tableLen; i++ {
		switch offsetTypeByte {
		case offsetTypeI16:
			v, err := readI16(r)
			if err != nil {
				return ChunkRegionSnapshot{}, fmt.Errorf("%w: truncated offset table", ErrFormat)
			}
			offsets[i] = int64(v)
		case offsetTypeI32:
			v, err := readI32(r)
			if err != nil {
				return ChunkRegionSnapshot{}, fmt.Errorf("%w: truncated offset table", ErrFormat)
			}
			offsets[i] = int64(v)
		default:
			return ChunkRegionSnapshot{}, fmt.Errorf("%w: unknown offset type %d", ErrFormat, offsetTypeByte)
		}
	}

	columnsStart := int64(len(payload) - r.Len())
	columnsBytes := payload[columnsStart:]

	result := ChunkRegionSnapshot{Key: key}
	for col, off := range offsets {
		if off == missingOffset {
			continue
		}
		if off < 0 || off+4 > int64(len(columnsBytes)) {
			return ChunkRegionSnapshot{}, fmt.Errorf("%w: offset out of range for column %d", ErrFormat, col)
		}
		cr := bytes.NewReader(columnsBytes[off:])
		colByteSize, err := readU32(cr)
		if err != nil {
			return ChunkRegionSnapshot{}, fmt.Errorf("%w: truncated column header", ErrFormat)
		}
		colData := make([]byte, colByteSize)
		if _, err := io.ReadFull(cr, colData); err != nil {
			return ChunkRegionSnapshot{}, fmt.Errorf("%w: truncated column body", ErrFormat)
		}
		entries, err := decodeColumn(col, colData)
		if err != nil {
			// CodecError: skip just this column, keep loading the rest.
			continue
		}
		result.Chunks = append(result.Chunks, entries...)
	}
	return result, nil
}

func decodeColumn(storageKey int, data []byte) ([]ChunkSnapshot, error) {
	r := bytes.NewReader(data)
	if _, err := readU32(r); err != nil { // formatVersion, unused for now
		return nil, fmt.Errorf("%w: truncated column", ErrCodec)
	}
	numChunks, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("%w: truncated column", ErrCodec)
	}

	entries := make([]ChunkSnapshot, 0, numChunks)
	for i := 0; i < int(numChunks); i++ {
		x, err1 := readI32(r)
		y, err2 := readI32(r)
		z, err3 := readI32(r)
		blobLen, err4 := readU32(r)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			return entries, fmt.Errorf("%w: truncated chunk entry", ErrCodec)
		}
		blob := make([]byte, blobLen)
		if _, err := io.ReadFull(r, blob); err != nil {
			return entries, fmt.Errorf("%w: truncated chunk blob", ErrCodec)
		}
		coord := voxel.ChunkCoord{X: x, Y: y, Z: z}
		blocks, err := decodeBlocks(blob)
		if err != nil {
			continue
		}
		entries = append(entries, ChunkSnapshot{
			StorageKey: storageKey,
			Coord:      coord,
			Data:       ChunkData{Span: voxel.FullChunkSpan(coord), Blocks: blocks},
		})
	}
	return entries, nil
}

func encodeBlocks(blocks []voxel.BlockState) []byte {
	out := make([]byte, 0, len(blocks)*4)
	for _, b := range blocks {
		enc := b.Encode()
		out = append(out, enc[:]...)
	}
	return out
}

func decodeBlocks(blob []byte) ([]voxel.BlockState, error) {
	if len(blob)%4 != 0 {
		return nil, fmt.Errorf("%w: block blob length %d not a multiple of 4", ErrCodec, len(blob))
	}
	count := len(blob) / 4
	out := make([]voxel.BlockState, count)
	for i := 0; i < count; i++ {
		var raw [4]byte
		copy(raw[:], blob[i*4:i*4+4])
		out[i] = voxel.DecodeBlockState(raw)
	}
	return out, nil
}

func writeU32(w *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.Write(b[:])
}

func writeI32(w *bytes.Buffer, v int32) { writeU32(w, uint32(v)) }

func writeI16(w *bytes.Buffer, v int16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], uint16(v))
	w.Write(b[:])
}

func readU32(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func readI32(r io.Reader) (int32, error) {
	v, err := readU32(r)
	return int32(v), err
}

func readI16(r io.Reader) (int16, error) {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return int16(binary.LittleEndian.Uint16(b[:])), nil
}
