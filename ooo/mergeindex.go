package ooo

// MergeIndex is the flat, ascending-by-timestamp array of (timestamp,
// packed_source_position) entries built by the Merge-Index Builder (C4). It
// is shared by every column of one partition; ownership follows the shared
// ColumnCounter carried on each OpenColumnTask (spec §3 "Lifecycle") rather
// than a counter of its own — the last column to decrement that counter to
// zero also releases the merge index (see StubColumnWorker.OpenColumn).
type MergeIndex struct {
	entries []byte // entrySize bytes per row, timestamp-ascending
}

// Len returns the number of rows in the merge index.
func (m *MergeIndex) Len() int { return len(m.entries) / entrySize }

// At returns the timestamp and (rowID, fromOOO) pair at position i.
func (m *MergeIndex) At(i int) (ts int64, rowID int64, fromOOO bool) {
	ts = decodeEntryTimestamp(m.entries, i)
	packed := decodeEntryRowID(m.entries, i)
	rowID, fromOOO = unpackSourcePosition(packed)
	return
}

// release frees the backing buffer. Called once, by whichever column
// worker decrements the shared column counter to zero last.
func (m *MergeIndex) release() {
	m.entries = nil
}

// buildMergeIndex builds the merge index for one column-independent merge
// block: a stable 2-way ascending merge of the existing-data range
// [mergeDataLo, mergeDataHi] (read from dataTs) against the OOO range
// [mergeOOOLo, mergeOOOHi] (read from the batch-wide sorted index,
// oooEntries, whose first row id is oooBase). Ties are resolved in favor of
// the data side, preserving on-disk order for duplicate timestamps (spec
// §4.4 step 3).
//
// Adapted from grafana-tempo's friggdb/compactor.go N-way streaming
// block merge ("find lowest ID, write, repeat" loop): here k is
// always 2 and both runs are fully resident, so the loop only needs to
// compare bookmark heads and advance, with no paged object I/O.
func buildMergeIndex(dataTs []int64, mergeDataLo, mergeDataHi int64, oooEntries []byte, oooBase, mergeOOOLo, mergeOOOHi int64) *MergeIndex {
	dataRun := newDataBookmark(dataTs, mergeDataLo, mergeDataHi)

	// oooEntries covers [oooBase, oooBase+len) by row id; slice down to the
	// rows this merge block actually needs.
	oooStart := int(mergeOOOLo - oooBase)
	oooEnd := int(mergeOOOHi-oooBase) + 1
	oooSlice := oooEntries[oooStart*entrySize : oooEnd*entrySize]
	oooRun := newOOOBookmark(oooSlice, mergeOOOLo, mergeOOOHi)

	n := 0
	if !dataRun.done() {
		n += int(mergeDataHi-mergeDataLo) + 1
	}
	if !oooRun.done() {
		n += int(mergeOOOHi-mergeOOOLo) + 1
	}

	out := make([]byte, n*entrySize)
	i := 0
	for !dataRun.done() || !oooRun.done() {
		switch {
		case dataRun.done():
			ts := oooRun.peekTimestamp()
			rowID, fromOOO := oooRun.advance()
			encodeEntry(out, i, ts, packSourcePosition(rowID, fromOOO))
		case oooRun.done():
			ts := dataRun.peekTimestamp()
			rowID, fromOOO := dataRun.advance()
			encodeEntry(out, i, ts, packSourcePosition(rowID, fromOOO))
		default:
			dataTsVal := dataRun.peekTimestamp()
			oooTsVal := oooRun.peekTimestamp()
			// stable: data wins ties
			if dataTsVal <= oooTsVal {
				rowID, fromOOO := dataRun.advance()
				encodeEntry(out, i, dataTsVal, packSourcePosition(rowID, fromOOO))
			} else {
				rowID, fromOOO := oooRun.advance()
				encodeEntry(out, i, oooTsVal, packSourcePosition(rowID, fromOOO))
			}
		}
		i++
	}

	return &MergeIndex{entries: out}
}
