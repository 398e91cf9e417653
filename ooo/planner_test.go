package ooo

import (
	"testing"

	"github.com/go-kit/log"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

// S1 — new higher partition, end to end through the planner: classification
// is skipped entirely and every column is published as a pure OO append.
func TestPlanner_Plan_NewPartition(t *testing.T) {
	files := newFakeFiles()
	tw := &fakeTableWriter{cols: []fakeCol{{name: "ts", typ: 5, fixedFd: 10}, {name: "v", typ: 1, fixedFd: 11}}}

	n := 2
	sorted := packedEntries(2_000_000, 2_000_001)
	task := &PartitionTask{
		PathToTable:              "/table",
		PartitionBy:              PartitionDay,
		TableWriter:              tw,
		OOOColumns:               []OOOColumn{{Fixed: make([]byte, n*8)}, {Fixed: make([]byte, n*8)}},
		SrcOooLo:                 0,
		SrcOooHi:                 int64(n - 1),
		SrcOooMax:                int64(n),
		SortedTimestamps:         sorted,
		OooTimestampHi:           2_000_001,
		TableCeilOfMaxTimestamp:  1_000_000,
		TableFloorOfMinTimestamp: 500_000,
		DoneLatch:                atomic.NewInt64(1),
	}

	var dispatched []*OpenColumnTask
	worker := &StubColumnWorker{Run: func(ct *OpenColumnTask) { dispatched = append(dispatched, ct) }}
	// OpenColumnQueueCapacity 0 forces every publish onto the inline path so
	// this test can observe every column's task via the worker directly,
	// rather than draining the planner's private queue.
	cfg := &Config{MkDirMode: 0o755, OpenColumnQueueCapacity: 0}
	p := NewPlanner(cfg, files, log.NewNopLogger(), worker)

	require.NoError(t, p.Plan(task))
	require.Len(t, dispatched, 2)
	require.EqualValues(t, 0, task.DoneLatch.Load())
	for _, ct := range dispatched {
		require.Equal(t, NewPartitionForAppend, ct.OpenColumnMode)
		require.Equal(t, BlockOOO, ct.Plan.SuffixType)
	}
}

// S3-equivalent end to end: an existing partition with interleaved OOO rows
// produces a MID_PARTITION_FOR_MERGE plan with a populated merge index
// shared across both columns, released exactly once both complete.
func TestPlanner_Plan_MidPartitionMerge(t *testing.T) {
	files := newFakeFiles()
	tw := &fakeTableWriter{cols: []fakeCol{{name: "ts", typ: 5, fixedFd: 10}, {name: "v", typ: 1, fixedFd: 11}}}

	dataTs := []int64{10, 20, 30, 40, 50}
	// openPartition derives the partition directory from the OOO slice's
	// lowest timestamp (srcOooLo's entry, ts=22 here), not OooTimestampHi.
	dir := "/table/" + partitionID(PartitionDay, int64(22))
	files.sizes[dir] = int64(len(dataTs))
	// openPartition maps the timestamp file via a freshly opened fd; seed
	// that fd's backing bytes once we learn what fd OpenRW hands out. Since
	// fakeFiles issues fds deterministically starting at 101, the first
	// historical open in this test receives fd 101.
	files.withTimestampData(101, dataTs)

	sorted := packedEntries(22, 25, 35)
	task := &PartitionTask{
		PathToTable:              "/table",
		PartitionBy:              PartitionDay,
		TableWriter:              tw,
		OOOColumns:               []OOOColumn{{Fixed: make([]byte, 3*8)}, {Fixed: make([]byte, 3*8)}},
		SrcOooLo:                 0,
		SrcOooHi:                 2,
		SrcOooMax:                3,
		SortedTimestamps:         sorted,
		OooTimestampHi:           35,
		TableCeilOfMaxTimestamp:  1_000_000_000,
		TableFloorOfMinTimestamp: 0,
		TableFloorOfMaxTimestamp: 1_000_000_000,
		DoneLatch:                atomic.NewInt64(1),
	}

	var dispatched []*OpenColumnTask
	var mergeLens []int
	worker := &StubColumnWorker{Run: func(ct *OpenColumnTask) {
		dispatched = append(dispatched, ct)
		mergeLens = append(mergeLens, ct.MergeIdx.Len())
	}}
	cfg := &Config{MkDirMode: 0o755, OpenColumnQueueCapacity: 0}
	p := NewPlanner(cfg, files, log.NewNopLogger(), worker)

	require.NoError(t, p.Plan(task))
	require.Len(t, dispatched, 2)
	require.EqualValues(t, 0, task.DoneLatch.Load(), "both columns completed, latch decremented exactly once")

	for _, ct := range dispatched {
		require.Equal(t, MidPartitionForMerge, ct.OpenColumnMode)
		require.Equal(t, BlockMerge, ct.Plan.MergeType)
		require.EqualValues(t, 1, ct.Plan.PrefixHi)
		require.NotNil(t, ct.MergeIdx)
	}

	// data rows 2..3 plus OOO rows 0..2, seen populated by each column, and
	// the one shared index released after the second column completed.
	require.Equal(t, []int{5, 5}, mergeLens)
	require.Same(t, dispatched[0].MergeIdx, dispatched[1].MergeIdx)
	require.Equal(t, 0, dispatched[0].MergeIdx.Len())
}
