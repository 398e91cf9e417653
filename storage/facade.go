// Package storage is the FilesFacade external collaborator the splice
// planner consumes (spec §6): opening and memory-mapping the timestamp
// column, creating partition/staging directories, and reading the archived
// partition-size marker. Grounded on grafana-tempo's
// friggdb/backend/backend.go Reader/Writer split, narrowed to the handful
// of primitive filesystem operations the planner itself performs.
package storage

// FilesFacade is the filesystem surface the planner needs. A real
// implementation talks to the local disk (see Local); tests substitute an
// in-memory fake.
type FilesFacade interface {
	// OpenRW opens path for read/write, returning a descriptor the caller
	// owns and must close exactly once.
	OpenRW(path string) (fd int64, err error)

	// MmapRO maps the first size bytes of fd read-only.
	MmapRO(fd int64, size int64) ([]byte, error)

	// Mkdirs creates path and any missing parents with the given mode.
	Mkdirs(path string, mode uint32) error

	// ReadPartitionSize reads the archived row-count marker at the end of
	// the partition directory at path, using scratch as a read buffer.
	ReadPartitionSize(path string, scratch []byte) (int64, error)
}
