package broadcast

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/ringcast/metric"
)

type ringMetrics struct {
	puts         prometheus.Counter
	rejectedPuts prometheus.Counter
	reads        prometheus.Counter
	pops         prometheus.Counter
	drops        prometheus.Counter

	size          prometheus.Gauge
	utilization   prometheus.Gauge
	activeReaders prometheus.Gauge
}

func newCounter(prefix, name, help string) prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Namespace:   metric.Namespace,
		Subsystem:   "ring",
		Name:        name,
		ConstLabels: prometheus.Labels{"component": prefix},
		Help:        help,
	})
}

func newGauge(prefix, name, help string) prometheus.Gauge {
	return prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   metric.Namespace,
		Subsystem:   "ring",
		Name:        name,
		ConstLabels: prometheus.Labels{"component": prefix},
		Help:        help,
	})
}

// newRingMetrics creates and registers ring metrics with the provided registry.
// On failure every metric registered so far is removed again.
func newRingMetrics(registry metric.MetricsRegistrar, prefix string) (*ringMetrics, error) {
	m := &ringMetrics{
		puts:          newCounter(prefix, "puts_total", "Total number of values written into the ring"),
		rejectedPuts:  newCounter(prefix, "rejected_puts_total", "Total number of non-blocking puts that did not write"),
		reads:         newCounter(prefix, "reads_total", "Total number of slot reads across all readers"),
		pops:          newCounter(prefix, "pops_total", "Total number of queue-mode removals"),
		drops:         newCounter(prefix, "drops_total", "Total number of values dropped by the overflow policy"),
		size:          newGauge(prefix, "size", "Written values not yet recyclable"),
		utilization:   newGauge(prefix, "utilization", "Ring utilization as a fraction (0.0 to 1.0)"),
		activeReaders: newGauge(prefix, "active_readers", "Currently registered readers"),
	}

	var registered []string
	rollback := func() {
		for _, name := range registered {
			registry.Unregister(prefix, name)
		}
	}

	counters := []struct {
		name string
		c    prometheus.Counter
	}{
		{"ring_puts", m.puts},
		{"ring_rejected_puts", m.rejectedPuts},
		{"ring_reads", m.reads},
		{"ring_pops", m.pops},
		{"ring_drops", m.drops},
	}
	for _, c := range counters {
		if err := registry.RegisterCounter(prefix, c.name, c.c); err != nil {
			rollback()
			return nil, err
		}
		registered = append(registered, c.name)
	}

	gauges := []struct {
		name string
		g    prometheus.Gauge
	}{
		{"ring_size", m.size},
		{"ring_utilization", m.utilization},
		{"ring_active_readers", m.activeReaders},
	}
	for _, g := range gauges {
		if err := registry.RegisterGauge(prefix, g.name, g.g); err != nil {
			rollback()
			return nil, err
		}
		registered = append(registered, g.name)
	}

	return m, nil
}

func (m *ringMetrics) updateSize(size, capacity int) {
	m.size.Set(float64(size))
	m.utilization.Set(float64(size) / float64(capacity))
}
