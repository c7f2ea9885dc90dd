//go:build unix

package shm

import (
	"fmt"
	"os"
	"runtime/debug"

	"golang.org/x/sys/unix"
)

// Segment is a mapped view of one named segment.
type Segment struct {
	name     string
	data     []byte
	writable bool
}

// Name returns the object name of the segment.
func (s *Segment) Name() string {
	return s.name
}

// Bytes returns the mapped view. It is empty for a zero-length segment and
// must not be used after Close.
func (s *Segment) Bytes() []byte {
	return s.data
}

// Len returns the size of the mapping.
func (s *Segment) Len() int {
	return len(s.data)
}

// Writable reports whether the view was mapped read-write.
func (s *Segment) Writable() bool {
	return s.writable
}

// Close unmaps the segment. It is safe to call more than once.
func (s *Segment) Close() error {
	if s.data == nil {
		return nil
	}
	data := s.data
	s.data = nil
	if err := unix.Munmap(data); err != nil {
		return &OpError{Op: "unmap", Name: s.name, Err: err}
	}
	return nil
}

// mapFile maps size bytes of f. The caller closes f.
func mapFile(f *os.File, name string, size int64, writable bool) (*Segment, error) {
	seg := &Segment{name: name, writable: writable}
	if size == 0 {
		return seg, nil
	}
	if int64(int(size)) != size {
		return nil, &OpError{Op: "map", Name: name, Err: fmt.Errorf("size %d overflows int", size)}
	}

	prot := unix.PROT_READ
	if writable {
		prot |= unix.PROT_WRITE
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), prot, unix.MAP_SHARED)
	if err != nil {
		return nil, &OpError{Op: "map", Name: name, Err: err}
	}
	seg.data = data
	return seg, nil
}

// copyMapped copies between a mapping and process memory. A SIGBUS raised
// because the backing file shrank underneath the mapping becomes ErrFault.
func copyMapped(dst, src []byte) (n int, err error) {
	old := debug.SetPanicOnFault(true)
	defer func() {
		debug.SetPanicOnFault(old)
		if r := recover(); r != nil {
			if _, ok := r.(interface{ Addr() uintptr }); ok {
				n, err = 0, ErrFault
				return
			}
			panic(r)
		}
	}()
	return copy(dst, src), nil
}
