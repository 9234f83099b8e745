package health

import (
	"strconv"
	"time"
)

// Status values, ordered from best to worst.
const (
	StateHealthy   = "healthy"
	StateDegraded  = "degraded"
	StateUnhealthy = "unhealthy"
)

func newStatus(component, state, message string) Status {
	return Status{
		Component: component,
		Healthy:   state == StateHealthy,
		Status:    state,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// NewHealthy creates a healthy status.
func NewHealthy(component, message string) Status {
	return newStatus(component, StateHealthy, message)
}

// NewUnhealthy creates an unhealthy status.
func NewUnhealthy(component, message string) Status {
	return newStatus(component, StateUnhealthy, message)
}

// NewDegraded creates a degraded status.
func NewDegraded(component, message string) Status {
	return newStatus(component, StateDegraded, message)
}

// severity ranks a state; unknown states rank as unhealthy.
func severity(state string) int {
	switch state {
	case StateHealthy:
		return 0
	case StateDegraded:
		return 1
	default:
		return 2
	}
}

// Aggregate folds sub-statuses into one status for component. The result
// takes the worst state among them; with no sub-statuses it is healthy.
func Aggregate(component string, subStatuses []Status) Status {
	worst := StateHealthy
	for _, sub := range subStatuses {
		if severity(sub.Status) > severity(worst) {
			worst = sub.Status
			if severity(worst) == 2 {
				worst = StateUnhealthy
			}
		}
	}

	var message string
	switch {
	case len(subStatuses) == 0:
		message = "nothing reporting"
	case worst == StateHealthy:
		message = "all components healthy"
	default:
		n := 0
		for _, sub := range subStatuses {
			if !sub.IsHealthy() {
				n++
			}
		}
		message = pluralize(n, "component") + " " + worst
	}

	status := newStatus(component, worst, message)
	status.SubStatuses = append([]Status(nil), subStatuses...)
	return status
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}
