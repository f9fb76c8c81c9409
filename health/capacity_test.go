package health

import (
	"context"
	"errors"
	"testing"
)

func TestCapacityChecker(t *testing.T) {
	tests := []struct {
		name     string
		used     int
		capacity int
		config   CapacityCheckerConfig
		want     Status
	}{
		{"empty", 0, 100, CapacityCheckerConfig{}, StatusHealthy},
		{"full with defaults", 100, 100, CapacityCheckerConfig{}, StatusHealthy},
		{"below warning", 94, 100, CapacityCheckerConfig{WarningThreshold: 0.95}, StatusHealthy},
		{"at warning", 95, 100, CapacityCheckerConfig{WarningThreshold: 0.95}, StatusDegraded},
		{"full without critical", 100, 100, CapacityCheckerConfig{WarningThreshold: 0.95}, StatusDegraded},
		{"custom warning", 50, 100, CapacityCheckerConfig{WarningThreshold: 0.5}, StatusDegraded},
		{"critical", 99, 100, CapacityCheckerConfig{WarningThreshold: 0.8, CriticalThreshold: 0.99}, StatusUnhealthy},
		{"no capacity", 0, 0, CapacityCheckerConfig{}, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCapacityChecker("cache.memory", func() (int, int) { return tt.used, tt.capacity }, tt.config)
			r := c.Check(context.Background())
			if r.Status != tt.want {
				t.Errorf("Check() = %v (%s), want %v", r.Status, r.Message, tt.want)
			}
		})
	}
}

func TestCapacityChecker_Details(t *testing.T) {
	c := NewCapacityChecker("cache.memory", func() (int, int) { return 3, 4 }, CapacityCheckerConfig{})
	r := c.Check(context.Background())

	if r.Details["entries"] != 3 || r.Details["capacity"] != 4 || r.Details["usage_percent"] != 75.0 {
		t.Errorf("Details = %v", r.Details)
	}
	if c.Name() != "cache.memory" {
		t.Errorf("Name() = %q", c.Name())
	}
}

func TestCapacityChecker_Defaults(t *testing.T) {
	c := NewCapacityChecker("x", func() (int, int) { return 0, 1 }, CapacityCheckerConfig{WarningThreshold: 7, CriticalThreshold: -1})
	if c.config.WarningThreshold != 0 || c.config.CriticalThreshold != 0 {
		t.Errorf("config = %+v", c.config)
	}
}

func TestCapacityChecker_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewCapacityChecker("x", func() (int, int) { return 0, 1 }, CapacityCheckerConfig{})
	if r := c.Check(ctx); r.Status != StatusUnhealthy || !errors.Is(r.Error, context.Canceled) {
		t.Errorf("Check() = %+v, want unhealthy with context.Canceled", r)
	}
}
