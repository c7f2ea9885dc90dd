// Package metric exports store metrics in Prometheus format.
//
//   - prometheus.go: the registry and its /metrics handler
//   - adapter.go: an implementation of shmap.Metrics backed by counters
//   - collector.go: scrape-time statistics of the segment directory
package metric
