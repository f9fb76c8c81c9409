package cache

import "time"

// Policy decides which TTL a caller passes to Set.
type Policy struct {
	// DefaultTTL is used when a caller does not supply one.
	// Zero means entries never expire by default.
	DefaultTTL time.Duration

	// MaxTTL caps any TTL, including "never expires". Zero disables the cap.
	MaxTTL time.Duration
}

// DefaultPolicy returns the policy used when configuration is silent.
// DefaultTTL: 1 hour, MaxTTL: 24 hours.
func DefaultPolicy() Policy {
	return Policy{
		DefaultTTL: time.Hour,
		MaxTTL:     24 * time.Hour,
	}
}

// EffectiveTTL returns the TTL to use, applying defaults and clamping.
// A non-positive override selects DefaultTTL.
func (p Policy) EffectiveTTL(override time.Duration) time.Duration {
	ttl := override
	if ttl <= 0 {
		ttl = p.DefaultTTL
	}

	if p.MaxTTL > 0 && (ttl <= 0 || ttl > p.MaxTTL) {
		ttl = p.MaxTTL
	}

	return ttl
}
