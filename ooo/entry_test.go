package ooo

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEntryRoundTrip(t *testing.T) {
	buf := make([]byte, entrySize*2)
	encodeEntry(buf, 0, 100, 7)
	encodeEntry(buf, 1, 200, 8)

	require.EqualValues(t, 100, decodeEntryTimestamp(buf, 0))
	require.EqualValues(t, 7, decodeEntryRowID(buf, 0))
	require.EqualValues(t, 200, decodeEntryTimestamp(buf, 1))
	require.EqualValues(t, 8, decodeEntryRowID(buf, 1))
}

func TestPackSourcePosition(t *testing.T) {
	packed := packSourcePosition(42, true)
	rowID, fromOOO := unpackSourcePosition(packed)
	require.EqualValues(t, 42, rowID)
	require.True(t, fromOOO)

	packed = packSourcePosition(42, false)
	rowID, fromOOO = unpackSourcePosition(packed)
	require.EqualValues(t, 42, rowID)
	require.False(t, fromOOO)
}

func TestDecodeTimestampColumn(t *testing.T) {
	want := []int64{10, 20, 30}
	buf := make([]byte, len(want)*8)
	for i, ts := range want {
		binary.LittleEndian.PutUint64(buf[i*8:i*8+8], uint64(ts))
	}

	got := decodeTimestampColumn(buf, int64(len(want)))
	require.Equal(t, want, got)
}
