package shm

import "errors"

var (
	// ErrNotFound is returned when a segment does not exist.
	ErrNotFound = errors.New("shm: segment not found")

	// ErrNameInvalid is returned for names that violate the naming rules.
	ErrNameInvalid = errors.New("shm: invalid segment name")

	// ErrShortWrite is returned when fewer bytes than requested were copied
	// into a segment.
	ErrShortWrite = errors.New("shm: short write")

	// ErrFault is returned when a mapped segment was truncated by another
	// process while it was being copied.
	ErrFault = errors.New("shm: segment truncated while mapped")
)

// OpError records a failed OS operation on a segment.
type OpError struct {
	Op   string // open, truncate, map, unmap, unlink, stat, list, rlimit
	Name string
	Err  error
}

func (e *OpError) Error() string {
	if e.Name == "" {
		return "shm: " + e.Op + ": " + e.Err.Error()
	}
	return "shm: " + e.Op + " " + e.Name + ": " + e.Err.Error()
}

func (e *OpError) Unwrap() error {
	return e.Err
}
