package collector

import (
	"time"

	"github.com/sony/gobreaker"
)

// BreakerConfig tunes the circuit breaker placed in front of a source
type BreakerConfig struct {
	MaxFailures uint32        // consecutive failures before the circuit opens
	OpenTimeout time.Duration // time spent open before a half-open probe
}

// NewBreaker creates a circuit breaker for a named source
func NewBreaker(name string, cfg BreakerConfig) *gobreaker.CircuitBreaker {
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = 3
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 60 * time.Second
	}

	st := gobreaker.Settings{
		Name:     name,
		Interval: 60 * time.Second,
		Timeout:  cfg.OpenTimeout,
	}
	st.ReadyToTrip = func(counts gobreaker.Counts) bool {
		return counts.ConsecutiveFailures >= cfg.MaxFailures
	}
	return gobreaker.NewCircuitBreaker(st)
}
