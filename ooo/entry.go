package ooo

import "encoding/binary"

// entrySize is the width of one packed (timestamp, row-position) entry, used
// both by the caller-provided sorted-OOO-batch index and by the merge index
// this planner builds. Mirrors the 28-byte-record packing idiom in the
// teacher's record.go, narrowed to the two int64 fields this domain needs.
const entrySize = 16

// sourceOOOBit tags packedPos's high bit to mark a merge-index row as
// originating from the OOO slice rather than from existing on-disk data
// (spec §4.4).
const sourceOOOBit = uint64(1) << 63

func decodeEntryTimestamp(buf []byte, idx int) int64 {
	off := idx * entrySize
	return int64(binary.LittleEndian.Uint64(buf[off : off+8]))
}

func decodeEntryRowID(buf []byte, idx int) int64 {
	off := idx * entrySize
	return int64(binary.LittleEndian.Uint64(buf[off+8 : off+16]))
}

func encodeEntry(buf []byte, idx int, ts int64, rowID int64) {
	off := idx * entrySize
	binary.LittleEndian.PutUint64(buf[off:off+8], uint64(ts))
	binary.LittleEndian.PutUint64(buf[off+8:off+16], uint64(rowID))
}

// decodeTimestampColumn views a memory-mapped, 8-byte-per-row timestamp
// column as a plain ascending int64 slice for bsearch64 and the merge
// bookmark to read directly.
func decodeTimestampColumn(buf []byte, n int64) []int64 {
	out := make([]int64, n)
	for i := int64(0); i < n; i++ {
		out[i] = int64(binary.LittleEndian.Uint64(buf[i*8 : i*8+8]))
	}
	return out
}

// packSourcePosition encodes a row id and its origin (OOO vs existing data)
// into the packed_source_position field described in spec §3/§4.4.
func packSourcePosition(rowID int64, fromOOO bool) int64 {
	v := uint64(rowID)
	if fromOOO {
		v |= sourceOOOBit
	}
	return int64(v)
}

// unpackSourcePosition is the inverse of packSourcePosition.
func unpackSourcePosition(packed int64) (rowID int64, fromOOO bool) {
	v := uint64(packed)
	fromOOO = v&sourceOOOBit != 0
	rowID = int64(v &^ sourceOOOBit)
	return
}
