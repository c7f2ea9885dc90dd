// Package namelock provides named, cross-process, advisory locks.
//
// Each lock name maps to a file in the lock directory locked with
// flock(LOCK_EX). Within one process a refcounted per-name semaphore
// serializes goroutines before they touch the file, so waiters do not each
// hold a descriptor.
//
// Lock files may be unlinked by a holder (see Guard.Unlink). A waiter that
// wins the flock on a file that has since been unlinked or replaced notices
// the inode mismatch and starts over on the current file, so two holders can
// never believe they own the same name.
package namelock
