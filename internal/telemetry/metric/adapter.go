package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yndnr/shmap-go/pkg/shmap"
)

// Adapter implements shmap.Metrics with Prometheus counters and gauges.
// Safe for concurrent use.
type Adapter struct {
	hits          prometheus.Counter
	misses        prometheus.Counter
	inserts       prometheus.Counter
	insertBytes   prometheus.Counter
	removals      *prometheus.CounterVec
	sweeps        prometheus.Counter
	sweepDuration prometheus.Histogram
	liveKeys      prometheus.Gauge
}

// NewAdapter constructs and registers the store metrics.
//   - reg:          registry to register with (nil => prometheus.DefaultRegisterer)
//   - ns, sub:      Prometheus namespace and subsystem
//   - constLabels:  static labels applied to all metrics (may be nil)
func NewAdapter(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) *Adapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	a := &Adapter{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "hits_total",
			Help:        "Reads that returned a value",
			ConstLabels: constLabels,
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "misses_total",
			Help:        "Reads that found no live value",
			ConstLabels: constLabels,
		}),
		inserts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "inserts_total",
			Help:        "Completed inserts",
			ConstLabels: constLabels,
		}),
		insertBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "insert_bytes_total",
			Help:        "Encoded bytes written by inserts, before encryption",
			ConstLabels: constLabels,
		}),
		removals: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   sub,
				Name:        "removals_total",
				Help:        "Removed keys by reason",
				ConstLabels: constLabels,
			},
			[]string{"reason"},
		),
		sweeps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "sweeps_total",
			Help:        "Completed GC sweeps",
			ConstLabels: constLabels,
		}),
		sweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "sweep_duration_seconds",
			Help:        "Duration of GC sweeps",
			Buckets:     prometheus.ExponentialBuckets(0.001, 4, 8),
			ConstLabels: constLabels,
		}),
		liveKeys: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "live_keys",
			Help:        "Live keys seen by the last sweep",
			ConstLabels: constLabels,
		}),
	}
	reg.MustRegister(a.hits, a.misses, a.inserts, a.insertBytes, a.removals,
		a.sweeps, a.sweepDuration, a.liveKeys)
	return a
}

// Hit increments the hit counter.
func (a *Adapter) Hit() { a.hits.Inc() }

// Miss increments the miss counter.
func (a *Adapter) Miss() { a.misses.Inc() }

// Insert counts one insert of n bytes.
func (a *Adapter) Insert(n int) {
	a.inserts.Inc()
	a.insertBytes.Add(float64(n))
}

// Remove counts one removal with a reason label.
func (a *Adapter) Remove(r shmap.RemoveReason) {
	a.removals.WithLabelValues(string(r)).Inc()
}

// Sweep records a finished sweep.
func (a *Adapter) Sweep(d time.Duration, live int) {
	a.sweeps.Inc()
	a.sweepDuration.Observe(d.Seconds())
	a.liveKeys.Set(float64(live))
}

var _ shmap.Metrics = (*Adapter)(nil)
