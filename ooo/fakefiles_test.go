package ooo

import "encoding/binary"

// fakeFiles is an in-memory storage.FilesFacade double for tests that need
// to exercise openPartition/finalizeMode without touching a real
// filesystem.
type fakeFiles struct {
	dirs  map[string]bool
	sizes map[string]int64
	data  map[int64][]byte
	nextFd int64
}

func newFakeFiles() *fakeFiles {
	return &fakeFiles{
		dirs:   map[string]bool{},
		sizes:  map[string]int64{},
		data:   map[int64][]byte{},
		nextFd: 100,
	}
}

func (f *fakeFiles) OpenRW(path string) (int64, error) {
	f.nextFd++
	return f.nextFd, nil
}

func (f *fakeFiles) MmapRO(fd int64, size int64) ([]byte, error) {
	if b, ok := f.data[fd]; ok {
		return b, nil
	}
	return make([]byte, size), nil
}

func (f *fakeFiles) Mkdirs(path string, mode uint32) error {
	f.dirs[path] = true
	return nil
}

func (f *fakeFiles) ReadPartitionSize(path string, scratch []byte) (int64, error) {
	return f.sizes[path], nil
}

// withTimestampData registers the fixed-width timestamp buffer a given fd
// should map to, so tests can drive classify with realistic data.
func (f *fakeFiles) withTimestampData(fd int64, ts []int64) {
	buf := make([]byte, len(ts)*8)
	for i, v := range ts {
		binary.LittleEndian.PutUint64(buf[i*8:i*8+8], uint64(v))
	}
	f.data[fd] = buf
}
