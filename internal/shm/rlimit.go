//go:build unix

package shm

import "golang.org/x/sys/unix"

// RaiseFileLimit lifts the soft RLIMIT_NOFILE to the hard limit and returns
// the resulting soft limit.
func RaiseFileLimit() (uint64, error) {
	var lim unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_NOFILE, &lim); err != nil {
		return 0, &OpError{Op: "rlimit", Err: err}
	}
	if lim.Cur >= lim.Max {
		return uint64(lim.Cur), nil
	}

	lim.Cur = lim.Max
	if err := unix.Setrlimit(unix.RLIMIT_NOFILE, &lim); err != nil {
		return 0, &OpError{Op: "rlimit", Err: err}
	}
	return uint64(lim.Cur), nil
}
