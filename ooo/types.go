// Package ooo implements the per-partition out-of-order splice planner: it
// decides how an already-sorted, out-of-order (OOO) ingest slice is spliced
// into an existing on-disk partition, and publishes one column-open task per
// column for downstream column workers to execute.
package ooo

import (
	"github.com/google/uuid"
	"go.uber.org/atomic"
)

// PartitionBy is the partitioning granularity of a table.
type PartitionBy int

const (
	PartitionNone PartitionBy = iota
	PartitionHour
	PartitionDay
	PartitionMonth
	PartitionYear
)

func (p PartitionBy) String() string {
	switch p {
	case PartitionHour:
		return "HOUR"
	case PartitionDay:
		return "DAY"
	case PartitionMonth:
		return "MONTH"
	case PartitionYear:
		return "YEAR"
	default:
		return "NONE"
	}
}

// BlockKind labels the source of a contiguous run of rows in a partition plan.
type BlockKind int

const (
	BlockNone BlockKind = iota
	BlockData
	BlockOOO
	BlockMerge
)

func (k BlockKind) String() string {
	switch k {
	case BlockData:
		return "DATA"
	case BlockOOO:
		return "OO"
	case BlockMerge:
		return "MERGE"
	default:
		return "NONE"
	}
}

// OpenColumnMode is how a single column's file(s) must be opened for this
// partition splice.
type OpenColumnMode int

const (
	NewPartitionForAppend OpenColumnMode = iota
	MidPartitionForAppend
	LastPartitionForAppend
	MidPartitionForMerge
	LastPartitionForMerge
)

func (m OpenColumnMode) String() string {
	switch m {
	case NewPartitionForAppend:
		return "NEW_PARTITION_FOR_APPEND"
	case MidPartitionForAppend:
		return "MID_PARTITION_FOR_APPEND"
	case LastPartitionForAppend:
		return "LAST_PARTITION_FOR_APPEND"
	case MidPartitionForMerge:
		return "MID_PARTITION_FOR_MERGE"
	case LastPartitionForMerge:
		return "LAST_PARTITION_FOR_MERGE"
	default:
		return "UNKNOWN"
	}
}

// Column type tags relevant to the planner. The full type system is an
// external (table/schema) concern; the planner only needs to distinguish
// variable-width columns (string/binary) from fixed-width ones, per spec §3
// invariants.
const (
	TypeString int = 11
	TypeBinary int = 12
)

// IsVarWidthType reports whether a column of this type stores its primary
// data in the variable-width slot (spec §3: "For a fixed column of type
// string or binary, the primary slot holds the variable-length data and the
// auxiliary slot holds offsets").
func IsVarWidthType(t int) bool {
	return t == TypeString || t == TypeBinary
}

// Direction selects, among duplicate keys, which bisection bias to use.
type Direction int

const (
	ScanDown Direction = iota // lowest matching index
	ScanUp                    // highest matching index
)

// Slot is one column storage slot: a file descriptor. A negative Fd signals
// reuse of an already-open, caller-owned descriptor; a positive Fd is owned
// by the planner and must be closed exactly once by the downstream consumer.
type Slot struct {
	Fd int64
}

// Reused reports whether this slot's descriptor is borrowed (negative) or
// owned by the planner (positive).
func (s Slot) Reused() bool { return s.Fd < 0 }

// ActiveColumn is one of the table's currently writable column files. Fixed
// holds the fixed-width file/slot; Var holds the variable-width file/slot,
// used only by string/binary columns.
type ActiveColumn struct {
	Fixed Slot
	Var   Slot
}

// OOOColumn is the in-memory, already-sorted source slice for one column of
// the OOO batch. For string/binary columns Var holds the data buffer and
// Fixed holds the offsets; for every other type Fixed holds the fixed-width
// data and Var is nil.
type OOOColumn struct {
	Fixed []byte
	Var   []byte
}

// BlockPlan is the (prefix, merge, suffix) decomposition computed by the
// Overlap Classifier (C1). Lo/Hi pairs are inclusive row ranges.
type BlockPlan struct {
	PrefixType BlockKind
	PrefixLo   int64
	PrefixHi   int64

	MergeType   BlockKind
	MergeDataLo int64
	MergeDataHi int64
	MergeOOOLo  int64
	MergeOOOHi  int64

	SuffixType BlockKind
	SuffixLo   int64
	SuffixHi   int64
}

// PartitionTask is the immutable, once-published input to the planner.
type PartitionTask struct {
	TraceID uuid.UUID

	PathToTable string
	PartitionBy PartitionBy

	Columns    []ActiveColumn
	OOOColumns []OOOColumn

	SrcOooLo  int64
	SrcOooHi  int64
	SrcOooMax int64

	OooTimestampMin int64
	OooTimestampMax int64
	OooTimestampHi  int64

	Txn int64

	// SortedTimestamps is the packed (timestamp,rowIndex) sequence for the
	// entire OOO batch, 16 bytes per entry, timestamp-ascending.
	SortedTimestamps []byte

	LastPartitionSize int64

	TableCeilOfMaxTimestamp  int64
	TableFloorOfMinTimestamp int64
	TableFloorOfMaxTimestamp int64
	TableMaxTimestamp        int64

	TableWriter TableWriter

	DoneLatch *atomic.Int64
}

// TableWriter is the metadata surface consumed from the table/ingest layer.
// It is an external collaborator (spec §6); the planner only reads from it.
type TableWriter interface {
	ColumnCount() int
	TimestampIndex() int
	ColumnName(i int) string
	ColumnType(i int) int
	IsColumnIndexed(i int) bool
	ColumnTop(i int) int64
	ActiveColumnFd(i int) (fixedFd, varFd int64)
}

// OpenColumnTask is one per-column unit of downstream work (spec §3).
type OpenColumnTask struct {
	OpenColumnMode OpenColumnMode

	ColumnName string
	ColumnType int // negated when this is the timestamp column
	IsIndexed  bool
	OOOFixed   []byte
	OOOVar     []byte

	Plan     BlockPlan
	MergeIdx *MergeIndex

	SrcTimestampFd   int64
	SrcTimestampData []byte

	ActiveFixedFd int64
	ActiveVarFd   int64
	ActiveTop     int64

	ColumnCounter *atomic.Int64
	DoneLatch     *atomic.Int64
}
