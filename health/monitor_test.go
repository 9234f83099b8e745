package health

import (
	"fmt"
	"sync"
	"testing"
)

func TestNewMonitor(t *testing.T) {
	monitor := NewMonitor()

	if monitor == nil {
		t.Fatal("NewMonitor() returned nil")
	}
	if monitor.Count() != 0 {
		t.Errorf("New monitor should have 0 components, got %d", monitor.Count())
	}
}

func TestMonitor_Update(t *testing.T) {
	monitor := NewMonitor()

	monitor.Update("consumer-0", Status{Component: "wrong-name", Status: "healthy"})

	retrieved, exists := monitor.Get("consumer-0")
	if !exists {
		t.Fatal("Component should exist after update")
	}
	if retrieved.Component != "consumer-0" {
		t.Errorf("Expected component name 'consumer-0', got %s", retrieved.Component)
	}
	if retrieved.Timestamp.IsZero() {
		t.Error("Update should set timestamp if not provided")
	}
}

func TestMonitor_Remove(t *testing.T) {
	monitor := NewMonitor()
	monitor.UpdateHealthy("producer", "running")
	monitor.Remove("producer")

	if _, exists := monitor.Get("producer"); exists {
		t.Error("Component should be gone after Remove")
	}
}

func TestMonitor_AggregateHealth(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(m *Monitor)
		expected string
	}{
		{"empty", func(m *Monitor) {}, "healthy"},
		{"all healthy", func(m *Monitor) {
			m.UpdateHealthy("producer", "ok")
			m.UpdateHealthy("consumer-0", "ok")
		}, "healthy"},
		{"one degraded", func(m *Monitor) {
			m.UpdateHealthy("producer", "ok")
			m.UpdateDegraded("consumer-0", "slow")
		}, "degraded"},
		{"unhealthy wins", func(m *Monitor) {
			m.UpdateDegraded("consumer-0", "slow")
			m.UpdateUnhealthy("consumer-1", "stalled")
		}, "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			monitor := NewMonitor()
			tt.setup(monitor)

			agg := monitor.AggregateHealth("ringcast")
			if agg.Status != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, agg.Status)
			}
			if len(agg.SubStatuses) != monitor.Count() {
				t.Errorf("expected %d sub-statuses, got %d", monitor.Count(), len(agg.SubStatuses))
			}
		})
	}
}

func TestMonitor_AggregateOrdersByName(t *testing.T) {
	monitor := NewMonitor()
	monitor.UpdateHealthy("consumer-2", "ok")
	monitor.UpdateHealthy("consumer-0", "ok")
	monitor.UpdateHealthy("consumer-1", "ok")

	agg := monitor.AggregateHealth("ringcast")
	for i, sub := range agg.SubStatuses {
		if want := fmt.Sprintf("consumer-%d", i); sub.Component != want {
			t.Errorf("position %d: expected %s, got %s", i, want, sub.Component)
		}
	}
}

func TestMonitor_ConcurrentUpdates(t *testing.T) {
	monitor := NewMonitor()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			name := fmt.Sprintf("consumer-%d", id%5)
			monitor.Update(name, FromLag(name, id, 16))
			_ = monitor.AggregateHealth("ringcast")
		}(i)
	}
	wg.Wait()

	if monitor.Count() != 5 {
		t.Errorf("expected 5 components, got %d", monitor.Count())
	}
}
