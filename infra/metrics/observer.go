package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Observer exports register events as Prometheus metrics.
// It satisfies register.Observer.
type Observer struct {
	writes    prometheus.Counter
	torn      prometheus.Counter
	reclaimed prometheus.Counter
	dropped   prometheus.Counter
	version   prometheus.Gauge
	pending   prometheus.Gauge
}

// NewObserver creates the metrics for one register and registers them
// with reg, labelled by register name.
func NewObserver(reg prometheus.Registerer, name string) (*Observer, error) {
	labels := prometheus.Labels{"register": name}
	counter := func(n, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "blockfree",
			Name:        n,
			Help:        help,
			ConstLabels: labels,
		})
	}
	gauge := func(n, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "blockfree",
			Name:        n,
			Help:        help,
			ConstLabels: labels,
		})
	}

	o := &Observer{
		writes:    counter("writes_total", "Writes published by the owner."),
		torn:      counter("torn_reads_total", "Reads that overlapped a write and returned no value."),
		reclaimed: counter("reclaimed_total", "Retired generations returned to the pool."),
		dropped:   counter("dropped_total", "Retired generations left to the garbage collector."),
		version:   gauge("version", "Current stable version."),
		pending:   gauge("retire_pending", "Retired generations waiting for readers to leave."),
	}

	for _, c := range []prometheus.Collector{
		o.writes, o.torn, o.reclaimed, o.dropped, o.version, o.pending,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func (o *Observer) Wrote(version uint64) {
	o.writes.Inc()
	o.version.Set(float64(version))
}

func (o *Observer) Torn() { o.torn.Inc() }

func (o *Observer) Retired(pending int) { o.pending.Set(float64(pending)) }

func (o *Observer) Reclaimed(n int) {
	o.reclaimed.Add(float64(n))
}

func (o *Observer) Dropped() { o.dropped.Inc() }
