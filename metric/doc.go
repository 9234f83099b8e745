// Package metric provides Prometheus-based metrics collection and an HTTP
// server for ringcast runs.
//
// MetricsRegistry wraps a private prometheus.Registry. It owns the core run
// metrics (values produced, producer misses, bytes written per consumer,
// consumer lag, errors) and lets other packages register their own
// collectors under a "service.metric" key so duplicates are caught before
// Prometheus sees them:
//
//	registry := metric.NewMetricsRegistry()
//	ring, err := broadcast.New[byte](64,
//		broadcast.WithMetrics[byte](registry, "main"),
//	)
//
//	core := registry.CoreMetrics()
//	core.RecordValueProduced()
//	core.RecordBytesWritten("consumer-0", 1)
//
// Server exposes the registry at /metrics and the aggregated run health at
// /health:
//
//	server := metric.NewServer(9090, "/metrics", registry, monitor)
//	go func() { _ = server.Start() }()
//	defer server.Stop()
package metric
