// Package command defines the commands of the shmap CLI.
//
// Every command opens the store described by the merged configuration
// (file, SHMAP_* environment, global flags), runs one operation and
// renders the result with the output package:
//
//   - root.go: App, global flags, store and output helpers
//   - kv.go: get, set, del, keys, ttl
//   - gc.go: gc
//   - config.go: config show
//   - keygen.go: keygen
//   - version.go: version
package command
