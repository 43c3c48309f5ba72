package resilience

import "time"

// Config tunes the per-operation circuit breakers. Calls are never retried:
// a failed call is reported to the caller as-is.
type Config struct {
	Enabled          bool
	MinRequests      uint32
	FailureRatio     float64
	OpenTimeout      time.Duration
	HalfOpenMaxCalls uint32
}

func DefaultConfig() Config {
	return Config{
		Enabled:          true,
		MinRequests:      5,
		FailureRatio:     0.6,
		OpenTimeout:      30 * time.Second,
		HalfOpenMaxCalls: 1,
	}
}

// ClientConfig maps the CLIENT_BREAKER_* settings. Zero values fall back to
// DefaultConfig.
func ClientConfig(enabled bool, minRequests int, failureRatio float64, openSeconds int) Config {
	cfg := Config{Enabled: enabled, FailureRatio: failureRatio}
	if minRequests > 0 {
		cfg.MinRequests = uint32(minRequests)
	}
	if openSeconds > 0 {
		cfg.OpenTimeout = time.Duration(openSeconds) * time.Second
	}
	return cfg.normalize()
}

func (c Config) normalize() Config {
	out := c
	def := DefaultConfig()

	if out.MinRequests == 0 {
		out.MinRequests = def.MinRequests
	}
	if out.FailureRatio <= 0 || out.FailureRatio > 1 {
		out.FailureRatio = def.FailureRatio
	}
	if out.OpenTimeout <= 0 {
		out.OpenTimeout = def.OpenTimeout
	}
	if out.HalfOpenMaxCalls == 0 {
		out.HalfOpenMaxCalls = def.HalfOpenMaxCalls
	}
	return out
}
