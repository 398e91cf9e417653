package ooo

import (
	"context"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/errgroup"

	"github.com/splicedb/oooplan/ooo/queue"
)

var metricPartitionTasksFailed = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "oooplan",
	Name:      "partition_tasks_failed_total",
	Help:      "Total number of partition tasks that returned a fatal PlanError.",
})

const emptyQueueBackoff = time.Millisecond

// JobLoop is the Partition-Job Loop (C6): it dequeues PartitionTasks from
// the partition queue and hands each one to the Planner. Unlike the
// open-column queue on the publish side, the partition queue's consumer
// side needs no separate claim/ack step — queue.Pop already claims and
// removes the item atomically — so "acknowledge the sequence" (spec §2) is
// simply "Pop returned".
//
// Worker-pool lifecycle grounded on grafana-tempo's friggdb/pool.NewPool (spawns a
// fixed number of long-lived worker goroutines over one shared channel),
// generalized to an errgroup so the pool can be cancelled and its first
// error observed (spec's DOMAIN STACK wiring for golang.org/x/sync).
type JobLoop struct {
	queue   *queue.Queue[*PartitionTask]
	planner *Planner
	logger  log.Logger
}

func NewJobLoop(q *queue.Queue[*PartitionTask], planner *Planner, logger log.Logger) *JobLoop {
	return &JobLoop{queue: q, planner: planner, logger: logger}
}

// RunOnce dequeues and plans at most one PartitionTask. It returns false
// when the queue was empty, true otherwise — spec §8's "work was done"
// signal for the loop driving it.
func (j *JobLoop) RunOnce() bool {
	task, ok := j.queue.Pop()
	if !ok {
		return false
	}

	if err := j.planner.Plan(task); err != nil {
		metricPartitionTasksFailed.Inc()
		level.Error(j.logger).Log("msg", "partition plan failed", "trace_id", task.TraceID, "err", err)
	}
	return true
}

// Run starts workers long-lived goroutines that each loop RunOnce until ctx
// is cancelled, backing off briefly whenever the queue is momentarily
// empty. It returns once every worker has exited.
func (j *JobLoop) Run(ctx context.Context, workers int) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}
				if !j.RunOnce() {
					select {
					case <-ctx.Done():
						return ctx.Err()
					case <-time.After(emptyQueueBackoff):
					}
				}
			}
		})
	}
	return g.Wait()
}
