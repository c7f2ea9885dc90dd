//go:build unix

package namelock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/sys/unix"

	"github.com/yndnr/shmap-go/pkg/cmap"
)

// ErrLock is wrapped by every acquisition failure.
var ErrLock = errors.New("namelock: lock failed")

const lockPerm = 0o600

// Manager hands out locks for names inside one directory.
type Manager struct {
	dir     string
	local   *cmap.Map[string, *slot]
	backoff func() retry.Backoff
}

// slot is the in-process side of one lock name.
type slot struct {
	sem  chan struct{}
	refs int
}

// Option configures a Manager.
type Option func(*Manager)

// WithBackoff sets the polling schedule used while waiting with a
// cancellable context. fn is called once per acquisition.
func WithBackoff(fn func() retry.Backoff) Option {
	return func(m *Manager) {
		m.backoff = fn
	}
}

// DefaultBackoff polls quickly at first and settles at 50ms.
func DefaultBackoff() retry.Backoff {
	b := retry.NewExponential(time.Millisecond)
	b = retry.WithCappedDuration(50*time.Millisecond, b)
	return retry.WithJitterPercent(20, b)
}

// New returns a Manager that keeps lock files in dir.
func New(dir string, opts ...Option) *Manager {
	m := &Manager{
		dir:     dir,
		local:   cmap.New[string, *slot](),
		backoff: DefaultBackoff,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Dir returns the lock directory.
func (m *Manager) Dir() string {
	return m.dir
}

// Pending returns the number of names with an in-process holder or waiter.
func (m *Manager) Pending() int {
	return m.local.Len()
}

// Acquire blocks until the lock for name is held by the caller.
//
// With a context that can be cancelled the lock file is polled and the wait
// ends with an error wrapping ctx.Err(). Otherwise the call blocks in
// flock(2) for as long as the current holder keeps the lock.
func (m *Manager) Acquire(ctx context.Context, name string) (*Guard, error) {
	if name == "" || strings.ContainsAny(name, "/\x00") || name == "." || name == ".." {
		return nil, fmt.Errorf("%w: invalid lock name %q", ErrLock, name)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLock, name, err)
	}

	s := m.ref(name)
	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		m.unref(name)
		return nil, fmt.Errorf("%w: %s: %w", ErrLock, name, ctx.Err())
	}

	f, err := m.lockFile(ctx, name)
	if err != nil {
		<-s.sem
		m.unref(name)
		return nil, err
	}

	return &Guard{m: m, name: name, file: f, slot: s}, nil
}

func (m *Manager) ref(name string) *slot {
	return m.local.Compute(name, func(s *slot, ok bool) (*slot, bool) {
		if !ok {
			s = &slot{sem: make(chan struct{}, 1)}
		}
		s.refs++
		return s, true
	})
}

func (m *Manager) unref(name string) {
	m.local.Compute(name, func(s *slot, ok bool) (*slot, bool) {
		if !ok {
			return nil, false
		}
		s.refs--
		return s, s.refs > 0
	})
}

// lockFile opens and flocks the lock file, retrying until the locked
// descriptor refers to the file currently linked at the path.
func (m *Manager) lockFile(ctx context.Context, name string) (*os.File, error) {
	path := filepath.Join(m.dir, name)
	for {
		f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, lockPerm)
		if err != nil {
			return nil, fmt.Errorf("%w: open %s: %w", ErrLock, name, err)
		}

		if err := m.flock(ctx, f); err != nil {
			f.Close()
			return nil, fmt.Errorf("%w: %s: %w", ErrLock, name, err)
		}

		same, err := sameFile(f, path)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("%w: stat %s: %w", ErrLock, name, err)
		}
		if same {
			// Refresh mtime so a sweep treats the lock as recently used.
			now := time.Now()
			_ = os.Chtimes(path, now, now)
			return f, nil
		}
		f.Close()
	}
}

func (m *Manager) flock(ctx context.Context, f *os.File) error {
	fd := int(f.Fd())

	if ctx.Done() == nil {
		for {
			err := unix.Flock(fd, unix.LOCK_EX)
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return err
		}
	}

	err := retry.Do(ctx, m.backoff(), func(ctx context.Context) error {
		err := unix.Flock(fd, unix.LOCK_EX|unix.LOCK_NB)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, unix.EWOULDBLOCK), errors.Is(err, unix.EINTR):
			return retry.RetryableError(err)
		default:
			return err
		}
	})
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// sameFile reports whether f is still the file linked at path.
func sameFile(f *os.File, path string) (bool, error) {
	var held, linked unix.Stat_t
	if err := unix.Fstat(int(f.Fd()), &held); err != nil {
		return false, err
	}
	if err := unix.Stat(path, &linked); err != nil {
		if errors.Is(err, unix.ENOENT) {
			return false, nil
		}
		return false, err
	}
	return held.Dev == linked.Dev && held.Ino == linked.Ino, nil
}

// Guard is a held lock.
type Guard struct {
	m    *Manager
	name string
	file *os.File
	slot *slot
	once sync.Once
	err  error
}

// Name returns the lock name.
func (g *Guard) Name() string {
	return g.name
}

// Unlink removes the lock file while the lock is still held. Waiters in
// other processes detect the replaced file and retry.
func (g *Guard) Unlink() error {
	err := os.Remove(filepath.Join(g.m.dir, g.name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Release frees the lock. Calls after the first are no-ops.
func (g *Guard) Release() error {
	g.once.Do(func() {
		// Closing the descriptor drops the flock.
		g.err = g.file.Close()
		<-g.slot.sem
		g.m.unref(g.name)
	})
	return g.err
}
