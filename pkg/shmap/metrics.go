package shmap

import "time"

// RemoveReason says why a key's segments were removed.
type RemoveReason string

const (
	RemoveExplicit       RemoveReason = "explicit"
	RemoveExpired        RemoveReason = "expired"
	RemoveCorrupt        RemoveReason = "corrupt"
	RemoveOrphanValue    RemoveReason = "orphan_value"
	RemoveOrphanMetadata RemoveReason = "orphan_metadata"
	RemoveOrphanLock     RemoveReason = "orphan_lock"
)

// Metrics receives store events. Implementations must be safe for
// concurrent use.
type Metrics interface {
	// Hit records a Get that returned a value.
	Hit()
	// Miss records a Get that found nothing.
	Miss()
	// Insert records a completed insert of a payload of n bytes.
	Insert(n int)
	// Remove records one removal.
	Remove(reason RemoveReason)
	// Sweep records a finished GC sweep.
	Sweep(d time.Duration, live int)
}

// NoopMetrics discards all events. It is the default.
type NoopMetrics struct{}

func (NoopMetrics) Hit()                     {}
func (NoopMetrics) Miss()                    {}
func (NoopMetrics) Insert(int)               {}
func (NoopMetrics) Remove(RemoveReason)      {}
func (NoopMetrics) Sweep(time.Duration, int) {}

var _ Metrics = NoopMetrics{}
