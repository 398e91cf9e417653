package ooo

import (
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/atomic"

	"github.com/splicedb/oooplan/ooo/queue"
)

var metricInlineFallbacks = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "oooplan",
	Name:      "open_column_inline_fallback_total",
	Help:      "Total number of column-open tasks executed inline because the open-column queue was saturated.",
})

// ColumnWorker is the downstream OutOfOrderOpenColumnJob collaborator: the
// only permitted consumer of OpenColumnTask (spec §6). The publisher calls
// it directly on the inline-fallback path and the caller is expected to run
// it from queue consumers on the queued path.
type ColumnWorker interface {
	OpenColumn(task *OpenColumnTask)
}

// Publisher is the Column-Task Publisher (C5). For every column of a
// partition it derives file descriptors and OOO source pointers, then
// either enqueues the resulting OpenColumnTask onto the open-column queue
// or, when the queue is saturated, executes it inline on the calling
// goroutine (spec §4.5).
type Publisher struct {
	logger log.Logger
	queue  *queue.Queue[*OpenColumnTask]
	worker ColumnWorker
}

func NewPublisher(logger log.Logger, q *queue.Queue[*OpenColumnTask], worker ColumnWorker) *Publisher {
	return &Publisher{logger: logger, queue: q, worker: worker}
}

// Publish builds and dispatches one OpenColumnTask per column of task,
// sharing plan, mergeIdx and the shared column counter/done latch across
// all of them.
func (p *Publisher) Publish(task *PartitionTask, res *openResult, plan BlockPlan, mergeIdx *MergeIndex, columnCounter *atomic.Int64, doneLatch *atomic.Int64) {
	tw := task.TableWriter
	n := tw.ColumnCount()
	tsIdx := tw.TimestampIndex()

	for i := 0; i < n; i++ {
		ct := OpenColumnTask{
			OpenColumnMode: res.mode,
			ColumnName:     tw.ColumnName(i),
			ColumnType:     tw.ColumnType(i),
			IsIndexed:      tw.IsColumnIndexed(i),
			Plan:           plan,
			MergeIdx:       mergeIdx,

			SrcTimestampFd:   res.srcTimestampFd,
			SrcTimestampData: res.srcTimestampData,

			ActiveTop: tw.ColumnTop(i),

			ColumnCounter: columnCounter,
			DoneLatch:     doneLatch,
		}

		fixedFd, varFd := tw.ActiveColumnFd(i)
		if IsVarWidthType(tw.ColumnType(i)) {
			// aux slot (offsets) is the fixed-width file; data slot (var
			// data) is the variable-width file.
			ct.ActiveFixedFd = fixedFd
			ct.ActiveVarFd = varFd
			if i < len(task.OOOColumns) {
				ct.OOOFixed = task.OOOColumns[i].Fixed // offsets
				ct.OOOVar = task.OOOColumns[i].Var     // var data
			}
		} else {
			ct.ActiveFixedFd = fixedFd
			ct.ActiveVarFd = 0
			if i < len(task.OOOColumns) {
				ct.OOOFixed = task.OOOColumns[i].Fixed
			}
		}

		if i == tsIdx {
			ct.ColumnType = -ct.ColumnType
		}

		p.dispatch(&ct)
	}
}

func (p *Publisher) dispatch(ct *OpenColumnTask) {
	for {
		seq, state, ok := p.queue.Next()
		if ok {
			p.queue.Set(seq, ct)
			return
		}

		switch state {
		case queue.Full:
			level.Debug(p.logger).Log("msg", "open-column queue full, falling back to inline execution", "column", ct.ColumnName)
			metricInlineFallbacks.Inc()
			p.worker.OpenColumn(ct)
			return
		case queue.Contended:
			// transient: another producer is mid-claim, spin and retry
			continue
		}
	}
}
