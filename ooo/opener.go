package ooo

import (
	"path"
	"strconv"
	"time"

	"github.com/splicedb/oooplan/storage"
)

// openResult is everything the Partition Opener (C3) decides before overlap
// classification, plus the finalized OpenColumnMode once classification
// completes (spec §4.3).
type openResult struct {
	isNew        bool
	partitionDir string
	stagingDir   string // set only once a merge copy is required

	srcDataMax int64
	reusedFd   bool // true => live tail, descriptors are borrowed (negative)

	srcTimestampFd   int64
	srcTimestampData []byte

	mode OpenColumnMode
}

// partitionID derives the on-disk partition directory name from a
// timestamp, per the partitioning granularity (spec §6, "Partition
// directory naming").
func partitionID(by PartitionBy, ts int64) string {
	sec := ts / 1_000_000
	t := time.Unix(sec, 0).UTC()
	switch by {
	case PartitionHour:
		return t.Format("2006-01-02-15")
	case PartitionDay:
		return t.Format("2006-01-02")
	case PartitionMonth:
		return t.Format("2006-01")
	case PartitionYear:
		return t.Format("2006")
	default:
		return "default"
	}
}

// openPartition implements the C3 decision tree. It is called once per
// partition task, before overlap classification; the caller finalizes the
// OpenColumnMode with finalizeMode once the (prefix,merge,suffix) plan is
// known.
func openPartition(cfg *Config, files storage.FilesFacade, task *PartitionTask) (*openResult, error) {
	oooTsLo := decodeEntryTimestamp(task.SortedTimestamps, int(task.SrcOooLo))
	dir := path.Join(task.PathToTable, partitionID(task.PartitionBy, oooTsLo))

	if task.OooTimestampHi > task.TableCeilOfMaxTimestamp || task.OooTimestampHi < task.TableFloorOfMinTimestamp {
		if err := files.Mkdirs(dir, cfg.MkDirMode); err != nil {
			return nil, newPlanError(MkdirFailure, dir, err)
		}
		return &openResult{
			isNew:        true,
			partitionDir: dir,
			mode:         NewPartitionForAppend,
		}, nil
	}

	res := &openResult{partitionDir: dir}

	if task.OooTimestampHi == task.TableCeilOfMaxTimestamp {
		// This partition is the live tail: reuse the already-open
		// descriptor (negated, per spec §3 invariants) and its size.
		res.reusedFd = true
		res.srcDataMax = task.LastPartitionSize

		fixedFd, _ := task.TableWriter.ActiveColumnFd(task.TableWriter.TimestampIndex())
		res.srcTimestampFd = -abs64(fixedFd)

		data, err := files.MmapRO(abs64(fixedFd), res.srcDataMax*8)
		if err != nil {
			return nil, newPlanError(MapFailure, dir, err)
		}
		res.srcTimestampData = data

		return res, nil
	}

	// Historical partition: load its archived size, open its own
	// descriptor (owned, positive), map read-only.
	scratch := make([]byte, 8)
	size, err := files.ReadPartitionSize(dir, scratch)
	if err != nil {
		return nil, newPlanError(OpenFailure, dir, err)
	}
	res.srcDataMax = size

	fd, err := files.OpenRW(path.Join(dir, "timestamp.d"))
	if err != nil {
		return nil, newPlanError(OpenFailure, dir, err)
	}
	res.srcTimestampFd = fd

	data, err := files.MmapRO(fd, size*8)
	if err != nil {
		return nil, newPlanError(MapFailure, dir, err)
	}
	res.srcTimestampData = data

	return res, nil
}

// finalizeMode assigns the open mode once the overlap plan is known (spec
// §4.3's second table). Creates the txn-stamped merge-staging directory
// when a copy is required.
func finalizeMode(cfg *Config, files storage.FilesFacade, task *PartitionTask, res *openResult, plan BlockPlan) error {
	if res.isNew {
		return nil
	}

	switch {
	case plan.PrefixType == BlockNone && task.OooTimestampHi < task.TableFloorOfMaxTimestamp:
		res.mode = MidPartitionForAppend
	case plan.PrefixType == BlockNone:
		res.mode = LastPartitionForAppend
	case res.reusedFd:
		res.mode = LastPartitionForMerge
	default:
		res.mode = MidPartitionForMerge
	}

	if res.mode == MidPartitionForMerge || res.mode == LastPartitionForMerge {
		res.stagingDir = res.partitionDir + "." + strconv.FormatInt(task.Txn, 10)
		if err := files.Mkdirs(res.stagingDir, cfg.MkDirMode); err != nil {
			return newPlanError(MkdirFailure, res.stagingDir, err)
		}
	}

	return nil
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
