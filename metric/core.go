package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every metric exported by ringcast.
const Namespace = "ringcast"

// Metrics contains the run-level metrics (not per-ring)
type Metrics struct {
	RunStatus       prometheus.Gauge
	ValuesProduced  prometheus.Counter
	ProducerMisses  prometheus.Counter
	BytesWritten    *prometheus.CounterVec
	ConsumerLag     *prometheus.GaugeVec
	ErrorsTotal     *prometheus.CounterVec
	ConsumersActive prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all run metrics
func NewMetrics() *Metrics {
	return &Metrics{
		RunStatus: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "run",
			Name:      "status",
			Help:      "Run status (0=stopped, 1=starting, 2=running, 3=stopping, 4=failed)",
		}),
		ValuesProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "producer",
			Name:      "values_produced_total",
			Help:      "Total number of values the producer wrote into the ring",
		}),
		ProducerMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "producer",
			Name:      "misses_total",
			Help:      "Total number of put attempts rejected because no slot was free",
		}),
		BytesWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "consumer",
			Name:      "bytes_written_total",
			Help:      "Total number of bytes a consumer wrote to its sink",
		}, []string{"consumer"}),
		ConsumerLag: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "consumer",
			Name:      "lag",
			Help:      "Number of values a consumer trails the producer by",
		}, []string{"consumer"}),
		ErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "errors",
			Name:      "total",
			Help:      "Total number of errors by component and class",
		}, []string{"component", "class"}),
		ConsumersActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "consumer",
			Name:      "active",
			Help:      "Number of consumers currently draining the ring",
		}),
	}
}

// collectors lists every core metric for registration.
func (c *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		c.RunStatus,
		c.ValuesProduced,
		c.ProducerMisses,
		c.BytesWritten,
		c.ConsumerLag,
		c.ErrorsTotal,
		c.ConsumersActive,
	}
}

// RecordRunStatus updates the run status gauge
func (c *Metrics) RecordRunStatus(status int) {
	c.RunStatus.Set(float64(status))
}

// RecordValueProduced increments the produced value counter
func (c *Metrics) RecordValueProduced() {
	c.ValuesProduced.Inc()
}

// RecordProducerMisses adds rejected put attempts
func (c *Metrics) RecordProducerMisses(n int) {
	if n > 0 {
		c.ProducerMisses.Add(float64(n))
	}
}

// RecordBytesWritten adds bytes written by a consumer
func (c *Metrics) RecordBytesWritten(consumer string, n int) {
	c.BytesWritten.WithLabelValues(consumer).Add(float64(n))
}

// RecordConsumerLag sets the lag gauge for a consumer
func (c *Metrics) RecordConsumerLag(consumer string, lag int) {
	c.ConsumerLag.WithLabelValues(consumer).Set(float64(lag))
}

// RecordError increments the error counter
func (c *Metrics) RecordError(component, class string) {
	c.ErrorsTotal.WithLabelValues(component, class).Inc()
}

// ConsumerStarted increments the active consumer gauge
func (c *Metrics) ConsumerStarted() {
	c.ConsumersActive.Inc()
}

// ConsumerStopped decrements the active consumer gauge
func (c *Metrics) ConsumerStopped() {
	c.ConsumersActive.Dec()
}
