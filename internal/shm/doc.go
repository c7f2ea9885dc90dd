// Package shm manages named shared-memory segments.
//
// Segments are regular files inside a RAM-backed directory (/dev/shm on
// Linux) mapped with mmap(2) in MAP_SHARED mode, which is what shm_open(3)
// does under the hood. Names follow the POSIX shared-memory convention: a
// single leading slash and no other separator.
//
// A Segment owns its mapping only. The file descriptor is closed as soon as
// the mapping exists, so a process never holds more than one descriptor per
// call. ReadAll and Write wrap the open, map, copy, close sequence and
// release the mapping on every path.
package shm
