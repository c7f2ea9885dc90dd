// Package shmap is a key/value store whose records live in shared memory.
//
// Values are kept in named segments under /dev/shm, so independent processes
// on one host can share typed data and keep it across their own restarts
// without a server. Each key owns three directory entries:
//
//	<ns>.<sha224(key)>            value (codec bytes, optionally sealed)
//	<ns>.<sha224(key)>.metadata   {key, expires_at, encrypted}
//	<ns>.<sha224(key)>.lock       flock(2) lock shared by value and metadata
//
// # Consistency
//
// Every segment operation runs under the key's lock, so readers never see a
// partially written value. Insert writes the value and the metadata in two
// separate critical sections: a concurrent Get may observe a new value with
// stale metadata, and a crash between the two leaves an orphan. Orphans are
// healed by the garbage-collection sweep, which New runs once and Keys,
// Clean and Sweep run on demand. Entries younger than the grace window are
// never treated as orphans, which protects inserts in flight.
//
// # Expiration
//
// A Get that observes an expired record removes it. Sweeps remove expired
// records that nobody reads.
//
// # Encryption
//
// With WithEncryptionKey every value is sealed with an AEAD under a random
// 96-bit nonce, bound to the segment name. Reading a sealed value with a
// different key, or with none, fails with ErrCrypto.
//
// Usage:
//
//	store, err := shmap.New()
//	err = shmap.Insert(ctx, store, "user:1", User{Name: "ada"})
//	u, ok, err := shmap.Get[User](ctx, store, "user:1")
//	err = store.Remove(ctx, "user:1")
package shmap
