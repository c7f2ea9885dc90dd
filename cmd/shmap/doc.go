// Package main provides the entry point for the shmap CLI.
//
// shmap reads and modifies a shared-memory store from the shell:
//
//	shmap set --ttl 10m session:42 '{"user":"ada"}'
//	shmap get session:42
//	shmap --output json keys
//	shmap gc --dry-run
//
// The store location and encryption key come from the configuration file
// (--config), SHMAP_* environment variables and the global flags, in
// increasing priority.
package main
