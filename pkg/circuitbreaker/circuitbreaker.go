package circuitbreaker

import (
	"time"

	"github.com/sony/gobreaker/v2"
)

// New returns a breaker tuned for calls to external stores (object storage,
// third-party APIs). It opens after 5 consecutive failures and probes again
// after 30 seconds.
func New[T any](name string) *gobreaker.CircuitBreaker[T] {
	return gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:    name,
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
}
