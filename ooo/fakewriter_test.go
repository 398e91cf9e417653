package ooo

type fakeCol struct {
	name          string
	typ           int
	indexed       bool
	top           int64
	fixedFd       int64
	varFd         int64
}

// fakeTableWriter is an in-memory TableWriter double for tests.
type fakeTableWriter struct {
	tsIdx int
	cols  []fakeCol
}

var _ TableWriter = (*fakeTableWriter)(nil)

func (w *fakeTableWriter) ColumnCount() int           { return len(w.cols) }
func (w *fakeTableWriter) TimestampIndex() int         { return w.tsIdx }
func (w *fakeTableWriter) ColumnName(i int) string     { return w.cols[i].name }
func (w *fakeTableWriter) ColumnType(i int) int        { return w.cols[i].typ }
func (w *fakeTableWriter) IsColumnIndexed(i int) bool  { return w.cols[i].indexed }
func (w *fakeTableWriter) ColumnTop(i int) int64       { return w.cols[i].top }
func (w *fakeTableWriter) ActiveColumnFd(i int) (fixedFd, varFd int64) {
	return w.cols[i].fixedFd, w.cols[i].varFd
}
