// Package cmap provides a sharded concurrent map.
//
// Keys are spread over a power-of-two number of shards, each guarded by its
// own RWMutex, so unrelated keys rarely contend. Compute runs a callback
// under the shard lock and is the building block for refcounted registries
// such as the in-process side of the named lock manager.
//
// Usage:
//
//	m := cmap.New[string, *entry]()
//	m.Compute("k", func(e *entry, ok bool) (*entry, bool) {
//		if !ok {
//			e = newEntry()
//		}
//		e.refs++
//		return e, true
//	})
package cmap
