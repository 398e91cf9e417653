package ooo

// Binary-Search Locator (C2). Two flavors are needed: one over a plain
// ascending []int64 (the on-disk timestamp column) and one over a strided
// sequence of 16-byte (timestamp,rowid) entries (the OOO batch's sorted
// index).
//
// Both always locate the floor: the largest index i such that ts[i] <=
// value (clamped to 0 when value is below every element in range — there is
// no in-range floor, so the nearest in-range index is returned instead of a
// sentinel). ScanDown and ScanUp only disagree when value has duplicates in
// ts: ScanDown returns the lowest of the matching indices, ScanUp the
// highest. When value is absent or has a unique match, ScanDown and ScanUp
// return the same index — matching
// sort.Search-based locator in wal_complete_block.go, generalized to carry an
// explicit direction bias instead of always finding the lowest match.

// bsearch64 locates value in the ascending int64 slice ts, honoring dir.
// Precondition: ts is non-decreasing.
func bsearch64(ts []int64, value int64, dir Direction) int64 {
	n := len(ts)
	if n == 0 {
		return -1
	}

	floor := floorIdx64(ts, value)
	if floor == -1 {
		return 0
	}
	if dir == ScanDown && ts[floor] == value {
		return lowerBound64(ts, value)
	}
	return int64(floor)
}

// floorIdx64 returns the largest index i such that ts[i] <= value, or -1 if
// no such index exists.
func floorIdx64(ts []int64, value int64) int {
	lo, hi := 0, len(ts)-1
	result := -1
	for lo <= hi {
		mid := lo + (hi-lo)/2
		if ts[mid] <= value {
			result = mid
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	return result
}

// lowerBound64 returns the smallest index i such that ts[i] >= value.
// Precondition: value is present in ts.
func lowerBound64(ts []int64, value int64) int64 {
	lo, hi := 0, len(ts)-1
	result := int64(0)
	for lo <= hi {
		mid := lo + (hi-lo)/2
		if ts[mid] >= value {
			result = int64(mid)
			hi = mid - 1
		} else {
			lo = mid + 1
		}
	}
	return result
}

// bsearchIdx locates value among the timestamps packed into the strided
// (timestamp,rowid) entries slice, honoring dir. entries decodes via
// decodeEntryTimestamp at each probed index.
func bsearchIdx(entries []byte, value int64, dir Direction) int64 {
	n := len(entries) / entrySize
	if n == 0 {
		return -1
	}

	floor := floorIdxEntries(entries, n, value)
	if floor == -1 {
		return 0
	}
	if dir == ScanDown && decodeEntryTimestamp(entries, floor) == value {
		return lowerBoundEntries(entries, n, value)
	}
	return int64(floor)
}

// floorIdxEntries returns the largest index i such that
// decodeEntryTimestamp(entries, i) <= value, or -1 if no such index exists.
func floorIdxEntries(entries []byte, n int, value int64) int {
	lo, hi := 0, n-1
	result := -1
	for lo <= hi {
		mid := lo + (hi-lo)/2
		if decodeEntryTimestamp(entries, mid) <= value {
			result = mid
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	return result
}

// lowerBoundEntries returns the smallest index i such that
// decodeEntryTimestamp(entries, i) >= value. Precondition: value is present.
func lowerBoundEntries(entries []byte, n int, value int64) int64 {
	lo, hi := 0, n-1
	result := int64(0)
	for lo <= hi {
		mid := lo + (hi-lo)/2
		if decodeEntryTimestamp(entries, mid) >= value {
			result = int64(mid)
			hi = mid - 1
		} else {
			lo = mid + 1
		}
	}
	return result
}
