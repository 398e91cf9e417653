package storage

import (
	"encoding/binary"
	"os"

	"github.com/edsrzf/mmap-go"
	"github.com/pkg/errors"
)

// partitionSizeFile is the name of the archived row-count marker left in a
// partition directory when it is closed, mirroring the meta.json
// convention in grafana-tempo's friggdb/backend/local/local.go, narrowed
// to a single 8-byte counter instead of a JSON blob, since that is all a
// partition's archived size marker needs to carry.
const partitionSizeFile = "_cnt"

// Local is the on-disk FilesFacade implementation.
type Local struct{}

func NewLocal() *Local { return &Local{} }

func (l *Local) OpenRW(path string) (int64, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return 0, errors.Wrapf(err, "open %s", path)
	}
	return int64(f.Fd()), nil
}

func (l *Local) MmapRO(fd int64, size int64) ([]byte, error) {
	f := os.NewFile(uintptr(fd), "")
	if f == nil {
		return nil, errors.Errorf("invalid descriptor %d", fd)
	}

	m, err := mmap.MapRegion(f, int(size), mmap.RDONLY, 0, 0)
	if err != nil {
		return nil, errors.Wrap(err, "mmap")
	}
	return []byte(m), nil
}

func (l *Local) Mkdirs(path string, mode uint32) error {
	if err := os.MkdirAll(path, os.FileMode(mode)); err != nil {
		return errors.Wrapf(err, "mkdir %s", path)
	}
	return nil
}

func (l *Local) ReadPartitionSize(path string, scratch []byte) (int64, error) {
	if len(scratch) < 8 {
		scratch = make([]byte, 8)
	}

	f, err := os.Open(path + "/" + partitionSizeFile)
	if err != nil {
		return 0, errors.Wrapf(err, "read partition size %s", path)
	}
	defer f.Close()

	if _, err := f.Read(scratch[:8]); err != nil {
		return 0, errors.Wrapf(err, "read partition size %s", path)
	}

	return int64(binary.LittleEndian.Uint64(scratch[:8])), nil
}
