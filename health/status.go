package health

import (
	"fmt"
	"time"
)

// Status represents the health state of a component or system
type Status struct {
	Component   string    `json:"component"`
	Healthy     bool      `json:"healthy"` // true if status is "healthy"
	Status      string    `json:"status"`  // "healthy", "unhealthy", "degraded"
	Message     string    `json:"message"`
	Timestamp   time.Time `json:"timestamp"`
	SubStatuses []Status  `json:"sub_statuses,omitempty"`
	Metrics     *Metrics  `json:"metrics,omitempty"`
}

// Metrics contains health-related metrics
type Metrics struct {
	Uptime         time.Duration `json:"uptime,omitempty"`
	ValuesHandled  int64         `json:"values_handled,omitempty"`
	Lag            int           `json:"lag"`
	LastActivity   time.Time     `json:"last_activity,omitempty"`
	CancelledWaits int64         `json:"cancelled_waits,omitempty"`
}

// IsHealthy returns true if the status is healthy
func (s Status) IsHealthy() bool {
	return s.Status == StateHealthy
}

// IsDegraded returns true if the status is degraded
func (s Status) IsDegraded() bool {
	return s.Status == StateDegraded
}

// IsUnhealthy returns true if the status is unhealthy
func (s Status) IsUnhealthy() bool {
	return s.Status == StateUnhealthy
}

// WithMetrics returns a copy of the status with metrics attached
func (s Status) WithMetrics(metrics *Metrics) Status {
	s.Metrics = metrics
	return s
}

// WithSubStatus adds a sub-status and returns a copy
func (s Status) WithSubStatus(subStatus Status) Status {
	// New slice so copies never share a backing array
	newSubStatuses := make([]Status, len(s.SubStatuses), len(s.SubStatuses)+1)
	copy(newSubStatuses, s.SubStatuses)
	s.SubStatuses = append(newSubStatuses, subStatus)
	return s
}

// FromLag classifies a consumer by how many values it trails the producer.
// Lag below half the capacity is healthy, below the full capacity degraded,
// and at or beyond the capacity unhealthy (the producer is stalled on it).
func FromLag(component string, lag, capacity int) Status {
	var status Status
	switch {
	case capacity <= 0:
		status = NewUnhealthy(component, "ring has no capacity")
	case lag*2 < capacity:
		status = NewHealthy(component, fmt.Sprintf("lag %d of %d", lag, capacity))
	case lag < capacity:
		status = NewDegraded(component, fmt.Sprintf("lag %d of %d, falling behind", lag, capacity))
	default:
		status = NewUnhealthy(component, fmt.Sprintf("lag %d of %d, producer stalled", lag, capacity))
	}
	return status.WithMetrics(&Metrics{Lag: lag})
}
