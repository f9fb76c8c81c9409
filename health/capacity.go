package health

import (
	"context"
	"fmt"
)

// CapacityCheckerConfig sets the fill ratios at which a bounded store
// stops being healthy.
type CapacityCheckerConfig struct {
	// WarningThreshold is the fill ratio that reports degraded.
	// Zero disables it, as for CriticalThreshold.
	WarningThreshold float64

	// CriticalThreshold is the fill ratio that reports unhealthy.
	// Zero disables it: a full LRU cache is working as intended.
	CriticalThreshold float64
}

// CapacityChecker reports how full a bounded store is.
type CapacityChecker struct {
	name   string
	usage  func() (used, capacity int)
	config CapacityCheckerConfig
}

// NewCapacityChecker creates a checker that samples usage on every Check.
func NewCapacityChecker(name string, usage func() (used, capacity int), config CapacityCheckerConfig) *CapacityChecker {
	if config.WarningThreshold < 0 || config.WarningThreshold > 1 {
		config.WarningThreshold = 0
	}
	if config.CriticalThreshold < 0 || config.CriticalThreshold > 1 {
		config.CriticalThreshold = 0
	}
	return &CapacityChecker{name: name, usage: usage, config: config}
}

func (c *CapacityChecker) Name() string {
	return c.name
}

func (c *CapacityChecker) Check(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return Unhealthy("context cancelled", err)
	}

	used, capacity := c.usage()
	if capacity <= 0 {
		return Unhealthy("capacity unavailable", ErrCheckFailed)
	}

	ratio := float64(used) / float64(capacity)
	details := map[string]any{
		"entries":       used,
		"capacity":      capacity,
		"usage_percent": ratio * 100,
	}

	switch {
	case c.config.CriticalThreshold > 0 && ratio >= c.config.CriticalThreshold:
		return Unhealthy(fmt.Sprintf("capacity critical: %.1f%%", ratio*100), ErrCheckFailed).WithDetails(details)
	case c.config.WarningThreshold > 0 && ratio >= c.config.WarningThreshold:
		return Degraded(fmt.Sprintf("capacity high: %.1f%%", ratio*100)).WithDetails(details)
	default:
		return Healthy(fmt.Sprintf("capacity normal: %.1f%%", ratio*100)).WithDetails(details)
	}
}
