package shmap

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	base := []Option{WithDir(t.TempDir()), WithLogger(quietLogger())}
	s, err := New(append(base, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func randomKey(prefix string) string {
	return prefix + ":" + ulid.Make().String()
}

// segmentPath returns the file backing one of key's entries.
func segmentPath(s *Store, key, suffix string) string {
	return filepath.Join(s.Dir(), s.ns.Sanitize(key)+suffix)
}

func exists(t *testing.T, path string) bool {
	t.Helper()
	_, err := os.Stat(path)
	if err == nil {
		return true
	}
	if !os.IsNotExist(err) {
		t.Fatalf("Stat(%s): %v", path, err)
	}
	return false
}

// age moves the mtime of path an hour into the past.
func age(t *testing.T, path string) {
	t.Helper()
	old := time.Now().Add(-time.Hour)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatalf("Chtimes(%s): %v", path, err)
	}
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Now()}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type countingMetrics struct {
	mu       sync.Mutex
	hits     int
	misses   int
	inserts  int
	removals map[RemoveReason]int
	sweeps   int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{removals: make(map[RemoveReason]int)}
}

func (m *countingMetrics) Hit() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hits++
}

func (m *countingMetrics) Miss() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.misses++
}

func (m *countingMetrics) Insert(int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inserts++
}

func (m *countingMetrics) Remove(r RemoveReason) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removals[r]++
}

func (m *countingMetrics) Sweep(time.Duration, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweeps++
}

var ctx = context.Background()
