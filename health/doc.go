// Package health tracks the health of the producer and consumers of a run.
//
// A Status is one of healthy, degraded or unhealthy. Monitor holds the
// latest Status per named component and can aggregate them: any unhealthy
// component makes the whole run unhealthy, otherwise any degraded component
// makes it degraded.
//
// Consumers report their lag behind the producer through FromLag. A reader
// that falls half a ring behind is degraded; a reader a full ring behind is
// the one holding the producer back and is reported unhealthy:
//
//	monitor := health.NewMonitor()
//	monitor.Update("consumer-0", health.FromLag("consumer-0", lag, capacity))
//	overall := monitor.AggregateHealth("ringcast")
package health
