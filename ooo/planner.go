package ooo

import (
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/atomic"

	"github.com/splicedb/oooplan/ooo/queue"
	"github.com/splicedb/oooplan/storage"
)

var metricPartitionsPlanned = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "oooplan",
	Name:      "partitions_planned_total",
	Help:      "Total number of partition tasks planned, by resulting open mode.",
}, []string{"mode"})

// Planner ties C1/C3/C4/C5 together into the single call a partition-job
// worker makes per PartitionTask. Grounded on grafana-tempo's friggdb/friggdb.go
// New/readerWriter pair: one long-lived value built
// once from Config + a logger, holding the collaborators it delegates to.
type Planner struct {
	cfg       *Config
	files     storage.FilesFacade
	logger    log.Logger
	publisher *Publisher
}

// NewPlanner constructs a Planner. worker is the downstream OutOfOrderOpenColumnJob
// collaborator invoked both off the open-column queue and on the inline
// fallback path.
func NewPlanner(cfg *Config, files storage.FilesFacade, logger log.Logger, worker ColumnWorker) *Planner {
	q := queue.New[*OpenColumnTask](cfg.OpenColumnQueueCapacity)
	return &Planner{
		cfg:       cfg,
		files:     files,
		logger:    logger,
		publisher: NewPublisher(logger, q, worker),
	}
}

// Plan runs the full per-partition pipeline: open the partition, classify
// the overlap, build the merge index if one is needed, and publish one
// OpenColumnTask per column.
func (p *Planner) Plan(task *PartitionTask) error {
	res, err := openPartition(p.cfg, p.files, task)
	if err != nil {
		return err
	}

	var plan BlockPlan
	var dataTs []int64

	switch {
	case res.isNew, res.srcDataMax == 0:
		// Nothing on disk yet to classify against: the entire OOO slice is
		// a pure append (spec §4.3, "skip overlap classification").
		plan = BlockPlan{
			PrefixType: BlockNone,
			MergeType:  BlockNone,
			SuffixType: BlockOOO, SuffixLo: task.SrcOooLo, SuffixHi: task.SrcOooHi,
		}
	default:
		dataTs = decodeTimestampColumn(res.srcTimestampData, res.srcDataMax)
		dataTsLo, dataTsHi := dataTs[0], dataTs[len(dataTs)-1]

		oooTsLo := decodeEntryTimestamp(task.SortedTimestamps, int(task.SrcOooLo))
		oooEntries := task.SortedTimestamps[task.SrcOooLo*entrySize : (task.SrcOooHi+1)*entrySize]

		plan = classify(dataTsLo, dataTsHi, res.srcDataMax, oooTsLo, task.OooTimestampHi, task.SrcOooLo, task.SrcOooHi, dataTs, oooEntries)
	}

	if err := finalizeMode(p.cfg, p.files, task, res, plan); err != nil {
		return err
	}

	var mergeIdx *MergeIndex
	if plan.MergeType == BlockMerge {
		// buildMergeIndex indexes its oooEntries argument by absolute row
		// id (oooBase 0), matching the absolute MergeOOOLo/MergeOOOHi that
		// classify now returns.
		mergeIdx = buildMergeIndex(dataTs, plan.MergeDataLo, plan.MergeDataHi, task.SortedTimestamps, 0, plan.MergeOOOLo, plan.MergeOOOHi)
	}

	level.Debug(p.logger).Log(
		"msg", "partition planned",
		"trace_id", task.TraceID,
		"mode", res.mode,
		"prefix", plan.PrefixType, "merge", plan.MergeType, "suffix", plan.SuffixType,
	)
	metricPartitionsPlanned.WithLabelValues(res.mode.String()).Inc()

	columnCounter := atomic.NewInt64(int64(task.TableWriter.ColumnCount()))
	p.publisher.Publish(task, res, plan, mergeIdx, columnCounter, task.DoneLatch)
	return nil
}
