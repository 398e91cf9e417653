// Command spliceplan is a demo harness for the out-of-order partition
// splice planner: it loads a Config, synthesizes a single PartitionTask
// against an in-memory TableWriter, runs it through the full C1-C5
// pipeline, and logs the resulting plan and per-column dispatch.
package main

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/dustin/go-humanize"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"
	"github.com/spf13/viper"
	"go.uber.org/atomic"
	"gopkg.in/yaml.v3"

	"github.com/splicedb/oooplan/ooo"
	"github.com/splicedb/oooplan/storage"
	"github.com/splicedb/oooplan/table"
)

type cli struct {
	Config   string `help:"Path to a YAML config file; defaults built in if omitted." optional:""`
	Table    string `help:"Table root directory for the demo partition." default:"/tmp/spliceplan-demo"`
	Rows     int    `help:"Number of synthetic OOO rows to splice." default:"5"`
	Existing int    `help:"Existing row count reported in the start-up log line; the demo creates no on-disk rows." default:"10"`
}

func main() {
	var c cli
	kong.Parse(&c, kong.Description("Demo harness for the out-of-order partition splice planner."))

	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stdout))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)

	cfg, err := loadConfig(c.Config)
	if err != nil {
		level.Error(logger).Log("msg", "failed to load config", "err", err)
		os.Exit(1)
	}
	// Nothing in the demo drains the planner's open-column queue, so every
	// column task runs inline on the worker below.
	cfg.OpenColumnQueueCapacity = 0

	tw := demoTableWriter()
	task := demoPartitionTask(c, tw)

	level.Info(logger).Log(
		"msg", "planning partition",
		"trace_id", task.TraceID,
		"ooo_rows", humanize.Comma(int64(c.Rows)),
		"existing_rows", humanize.Comma(int64(c.Existing)),
	)

	worker := &ooo.StubColumnWorker{
		Run: func(ct *ooo.OpenColumnTask) {
			level.Info(logger).Log(
				"msg", "column task dispatched",
				"column", ct.ColumnName,
				"mode", ct.OpenColumnMode,
				"prefix", ct.Plan.PrefixType, "merge", ct.Plan.MergeType, "suffix", ct.Plan.SuffixType,
			)
		},
	}

	planner := ooo.NewPlanner(cfg, storage.NewLocal(), logger, worker)
	if err := planner.Plan(task); err != nil {
		level.Error(logger).Log("msg", "plan failed", "err", err)
		os.Exit(1)
	}
}

// loadConfig reads a YAML config via viper when path is non-empty, falling
// back to ooo.DefaultConfig() otherwise.
func loadConfig(path string) (*ooo.Config, error) {
	cfg := ooo.DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	raw, err := yaml.Marshal(v.AllSettings())
	if err != nil {
		return nil, fmt.Errorf("marshal config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config %s: %w", path, err)
	}
	return cfg, nil
}

// demoTableWriter builds a minimal two-column in-memory table: a
// timestamp column and one fixed-width value column, both already
// populated (fds are fake, nonzero, positive).
func demoTableWriter() *table.Writer {
	return &table.Writer{
		Timestamp: 0,
		Cols: []table.ColumnMeta{
			{Name: "ts", Type: 0, Indexed: false, Top: 0, FixedFd: 10},
			{Name: "value", Type: 1, Indexed: false, Top: 0, FixedFd: 11},
		},
	}
}

// demoPartitionTask synthesizes a PartitionTask whose OOO slice lies above
// the table's ceiling timestamp (0), so the planner treats it as a new
// partition and skips overlap classification, since the demo has no real
// on-disk partition to classify against.
func demoPartitionTask(c cli, tw *table.Writer) *ooo.PartitionTask {
	n := c.Rows
	sorted := make([]byte, n*16)
	base := int64(1_700_000_000_000_000) // micros
	for i := 0; i < n; i++ {
		ts := base + int64(i)*1_000_000
		off := i * 16
		binary.LittleEndian.PutUint64(sorted[off:off+8], uint64(ts))
		binary.LittleEndian.PutUint64(sorted[off+8:off+16], uint64(i))
	}

	oooCols := make([]ooo.OOOColumn, tw.ColumnCount())
	activeCols := make([]ooo.ActiveColumn, tw.ColumnCount())
	for i := range oooCols {
		oooCols[i] = ooo.OOOColumn{Fixed: make([]byte, n*8)}
		activeCols[i] = ooo.ActiveColumn{Fixed: ooo.Slot{Fd: int64(10 + i)}}
	}

	return &ooo.PartitionTask{
		TraceID:     uuid.New(),
		PathToTable: c.Table,
		PartitionBy: ooo.PartitionDay,

		Columns:    activeCols,
		OOOColumns: oooCols,

		SrcOooLo:  0,
		SrcOooHi:  int64(n - 1),
		SrcOooMax: int64(n),

		OooTimestampMin: base,
		OooTimestampMax: base + int64(n-1)*1_000_000,
		OooTimestampHi:  base + int64(n-1)*1_000_000,

		Txn: 1,

		SortedTimestamps: sorted,

		LastPartitionSize: 0,

		TableCeilOfMaxTimestamp:  0,
		TableFloorOfMinTimestamp: 0,
		TableFloorOfMaxTimestamp: 0,
		TableMaxTimestamp:        0,

		TableWriter: tw,

		DoneLatch: atomic.NewInt64(1),
	}
}

