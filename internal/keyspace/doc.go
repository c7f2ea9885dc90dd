// Package keyspace maps caller keys to segment names.
//
// A logical key is hashed with SHA-224 and prefixed with a namespace tag,
// giving a bounded name that is legal both as a file name and as a POSIX
// shared-memory object name. Every key owns three directory entries that
// share one base name:
//
//	shmap.<hex>            value segment
//	shmap.<hex>.metadata   metadata segment
//	shmap.<hex>.lock       lock file
//
// The lock name is always derived from the value name, so a key's value and
// metadata are guarded by the same lock.
package keyspace
