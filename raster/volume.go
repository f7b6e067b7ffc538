// Package raster implements the mmap-backed raster volume I/O primitives
// (spec §4.1): scoped, typed windows into flat files on disk, released on
// every exit path. It replaces the raw typed-pointer-into-mmap-memory
// pattern of the source system with a Go value that owns its mapping and
// hands out typed slices for the caller's lifetime.
package raster

import (
	"fmt"
	"os"
	"sync"
	"unsafe"

	"github.com/edsrzf/mmap-go"

	"github.com/gandhilab/volumecore/dvid"
)

// Mode selects how a Volume's backing file is opened.
type Mode int

const (
	// ReadOnly maps an existing file for reading only.
	ReadOnly Mode = iota
	// ReadWrite maps an existing file for reading and writing.
	ReadWrite
	// Create truncates or creates the backing file to the descriptor's
	// exact byte span before mapping it read/write.
	Create
)

var pageSize = int64(os.Getpagesize())

// Volume is a scoped mapping over a region of a backing file. The zero
// value is not usable; construct with Open. Close unmaps and closes the
// file on every exit path, including after a panic recovered by the
// caller -- Close itself never panics.
type Volume struct {
	desc Descriptor

	mu     sync.Mutex
	file   *os.File
	region mmap.MMap // the full, page-aligned mapping
	data   []byte    // the descriptor's byte span within region
	closed bool
}

// Open maps the region of the file named by desc starting at desc.Offset
// and spanning desc.ByteLength() bytes. The offset need not be page
// aligned; Open rounds down internally and slices the requested window out
// of the wider mapping.
func Open(desc Descriptor, mode Mode) (*Volume, error) {
	need := desc.ByteLength()
	if need < 0 {
		return nil, fmt.Errorf("%w: negative volume size for shape %v", dvid.ErrShapeMismatch, desc.Shape)
	}

	flag := os.O_RDONLY
	if mode != ReadOnly {
		flag = os.O_RDWR
	}
	if mode == Create {
		flag |= os.O_CREATE
	}
	f, err := os.OpenFile(desc.Filename, flag, 0644)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", dvid.ErrIO, desc.Filename, err)
	}

	total := int64(desc.Offset) + need
	if mode == Create {
		if err := f.Truncate(total); err != nil {
			f.Close()
			return nil, fmt.Errorf("%w: truncating %s to %s: %v", dvid.ErrIO, desc.Filename, dvid.FormatBytes(total), err)
		}
	} else {
		info, err := f.Stat()
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("%w: stat %s: %v", dvid.ErrIO, desc.Filename, err)
		}
		if info.Size() < total {
			f.Close()
			return nil, fmt.Errorf("%w: %s is %s, need at least %s for shape %v at offset %d",
				dvid.ErrIO, desc.Filename, dvid.FormatBytes(info.Size()), dvid.FormatBytes(total), desc.Shape, desc.Offset)
		}
	}

	pageOff := int64(desc.Offset) - (int64(desc.Offset) % pageSize)
	within := int64(desc.Offset) - pageOff
	mapLen := within + need

	prot := mmap.RDONLY
	if mode != ReadOnly {
		prot = mmap.RDWR
	}
	region, err := mmap.MapRegion(f, int(mapLen), prot, 0, pageOff)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: mmap %s: %v", dvid.ErrIO, desc.Filename, err)
	}

	v := &Volume{
		desc:   desc,
		file:   f,
		region: region,
		data:   region[within : within+need],
	}
	dvid.Debugf("opened raster volume %s shape=%v type=%s (%s)\n", desc.Filename, desc.Shape, desc.ElemType, dvid.FormatBytes(need))
	return v, nil
}

// Descriptor returns the shape/type/offset this volume was opened with.
func (v *Volume) Descriptor() Descriptor {
	return v.desc
}

// Bytes returns the raw byte window backing this volume. Callers should
// prefer the typed accessors (As) for element-level access.
func (v *Volume) Bytes() []byte {
	return v.data
}

// Close unmaps the region and closes the backing file. Close is
// idempotent and safe to call multiple times or via defer on every exit
// path, including error paths.
func (v *Volume) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return nil
	}
	v.closed = true
	var unmapErr error
	if v.region != nil {
		unmapErr = v.region.Unmap()
	}
	closeErr := v.file.Close()
	if unmapErr != nil {
		return fmt.Errorf("%w: unmapping %s: %v", dvid.ErrIO, v.desc.Filename, unmapErr)
	}
	if closeErr != nil {
		return fmt.Errorf("%w: closing %s: %v", dvid.ErrIO, v.desc.Filename, closeErr)
	}
	return nil
}

// numeric is the type constraint satisfied by every element type this
// module's kernels are specialized over.
type numeric interface {
	~uint8 | ~uint16 | ~uint32 | ~int32 | ~float32 | ~float64
}

// As reinterprets the volume's byte window as a slice of T, with no copy.
// The caller is responsible for choosing T consistently with the volume's
// declared ElemType; a mismatch is a contract violation the same way an
// out-of-range raw pointer cast would be in the source system.
func As[T numeric](v *Volume) []T {
	var zero T
	elemSize := int(unsafe.Sizeof(zero))
	n := len(v.data) / elemSize
	if n == 0 {
		return nil
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&v.data[0])), n)
}
