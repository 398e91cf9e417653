package ooo

// StubColumnWorker is a minimal OutOfOrderOpenColumnJob stand-in: enough to
// exercise the publisher's queued and inline-fallback paths end to end
// (spec §8 item 7) without implementing the actual column copy/merge
// executors, which spec §1 places out of scope. Each call hands the task it
// received to the optional Run callback (tests use it to record tasks for
// assertions) and then performs the same bookkeeping a real
// worker must: decrement the column counter, and once it reaches zero,
// release the shared merge index and decrement the partition's done latch.
type StubColumnWorker struct {
	Run func(task *OpenColumnTask)
}

var _ ColumnWorker = (*StubColumnWorker)(nil)

func (w *StubColumnWorker) OpenColumn(task *OpenColumnTask) {
	if w.Run != nil {
		w.Run(task)
	}

	if task.ColumnCounter.Dec() == 0 {
		if task.MergeIdx != nil {
			task.MergeIdx.release()
		}
		if task.DoneLatch != nil {
			task.DoneLatch.Dec()
		}
	}
}
