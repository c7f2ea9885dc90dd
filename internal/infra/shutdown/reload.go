package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// ReloadHandler runs callbacks when the process receives SIGHUP.
type ReloadHandler struct {
	mu        sync.Mutex
	callbacks []func()
}

// NewReloadHandler creates a reload handler.
func NewReloadHandler() *ReloadHandler {
	return &ReloadHandler{}
}

// OnReload registers a callback. Callbacks run in registration order.
func (r *ReloadHandler) OnReload(cb func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.callbacks = append(r.callbacks, cb)
}

// Reload runs all callbacks once.
func (r *ReloadHandler) Reload() {
	r.mu.Lock()
	cbs := make([]func(), len(r.callbacks))
	copy(cbs, r.callbacks)
	r.mu.Unlock()

	for _, cb := range cbs {
		cb()
	}
}

// Listen runs Reload on every SIGHUP until ctx is done.
func (r *ReloadHandler) Listen(ctx context.Context) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	for {
		select {
		case <-sigCh:
			r.Reload()
		case <-ctx.Done():
			return
		}
	}
}
