// Package main provides the entry point for shmap-sweeper.
//
// shmap-sweeper periodically sweeps one store namespace, removing expired
// keys and orphaned segments left behind by crashed writers. It optionally
// serves Prometheus metrics, reloads its log level on SIGHUP or when the
// configuration file changes, and stops gracefully on SIGINT or SIGTERM.
//
// Usage:
//
//	shmap-sweeper -config /etc/shmap/shmap.yaml
//	shmap-sweeper -once -dry-run
package main
