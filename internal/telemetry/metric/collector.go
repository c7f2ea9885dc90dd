package metric

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yndnr/shmap-go/internal/keyspace"
	"github.com/yndnr/shmap-go/internal/shm"
)

// Collector reports the segments of one namespace at scrape time.
type Collector struct {
	dir *shm.Dir
	ns  keyspace.Namespace

	segments *prometheus.Desc
	bytes    *prometheus.Desc
	errors   *prometheus.Desc
}

// NewCollector creates a collector for the namespace prefix in dir.
func NewCollector(dir *shm.Dir, prefix, ns, sub string) *Collector {
	space := keyspace.New(prefix)
	labels := prometheus.Labels{"namespace": space.Prefix()}
	return &Collector{
		dir: dir,
		ns:  space,
		segments: prometheus.NewDesc(
			prometheus.BuildFQName(ns, sub, "segments"),
			"Segment directory entries by kind",
			[]string{"kind"}, labels,
		),
		bytes: prometheus.NewDesc(
			prometheus.BuildFQName(ns, sub, "segment_bytes"),
			"Total size of segment directory entries by kind",
			[]string{"kind"}, labels,
		),
		errors: prometheus.NewDesc(
			prometheus.BuildFQName(ns, sub, "scrape_error"),
			"1 if the last directory listing failed",
			nil, labels,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.segments
	ch <- c.bytes
	ch <- c.errors
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	entries, err := c.dir.List()
	if err != nil {
		ch <- prometheus.MustNewConstMetric(c.errors, prometheus.GaugeValue, 1)
		return
	}
	ch <- prometheus.MustNewConstMetric(c.errors, prometheus.GaugeValue, 0)

	kinds := []keyspace.Kind{keyspace.KindValue, keyspace.KindMetadata, keyspace.KindLock}
	count := make(map[keyspace.Kind]float64, len(kinds))
	size := make(map[keyspace.Kind]float64, len(kinds))
	for _, e := range entries {
		if !c.ns.Owns(e.Name) {
			continue
		}
		k := keyspace.Classify(e.Name)
		count[k]++
		size[k] += float64(e.Size)
	}

	for _, k := range kinds {
		ch <- prometheus.MustNewConstMetric(c.segments, prometheus.GaugeValue, count[k], k.String())
		ch <- prometheus.MustNewConstMetric(c.bytes, prometheus.GaugeValue, size[k], k.String())
	}
}

var _ prometheus.Collector = (*Collector)(nil)
