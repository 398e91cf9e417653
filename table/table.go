// Package table provides an in-memory TableWriter implementation, the
// external metadata collaborator the planner consumes per spec §6. A real
// deployment's table/schema layer would satisfy ooo.TableWriter directly;
// this package is the concrete double used by tests and by cmd/spliceplan's
// demo mode.
package table

import "github.com/splicedb/oooplan/ooo"

// ColumnMeta is one column's static metadata, grounded on the
// searchableBlockMeta/blockMeta split in grafana-tempo's friggdb/block_meta.go: a small,
// JSON/yaml-friendly struct carrying exactly the fields a consumer needs.
type ColumnMeta struct {
	Name       string
	Type       int
	Indexed    bool
	Top        int64
	FixedFd    int64
	VarFd      int64
}

// Writer is an in-memory ooo.TableWriter.
type Writer struct {
	Timestamp int
	Cols      []ColumnMeta
}

var _ ooo.TableWriter = (*Writer)(nil)

func (w *Writer) ColumnCount() int            { return len(w.Cols) }
func (w *Writer) TimestampIndex() int         { return w.Timestamp }
func (w *Writer) ColumnName(i int) string     { return w.Cols[i].Name }
func (w *Writer) ColumnType(i int) int        { return w.Cols[i].Type }
func (w *Writer) IsColumnIndexed(i int) bool  { return w.Cols[i].Indexed }
func (w *Writer) ColumnTop(i int) int64       { return w.Cols[i].Top }
func (w *Writer) ActiveColumnFd(i int) (fixedFd, varFd int64) {
	return w.Cols[i].FixedFd, w.Cols[i].VarFd
}
