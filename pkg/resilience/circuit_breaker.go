package resilience

import (
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/farewise/fare-compare/pkg/logger"
)

// ErrCircuitOpen is returned when the breaker rejects a call without
// attempting it.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreaker guards calls to an external API. Callers that already have a
// fallback path treat ErrCircuitOpen like any other upstream failure.
type CircuitBreaker struct {
	cb *gobreaker.CircuitBreaker
}

// Settings tunes a circuit breaker. Zero values fall back to defaults.
type Settings struct {
	FailureThreshold uint32
	IntervalSeconds  int
	TimeoutSeconds   int
}

// NewCircuitBreaker creates a breaker for the named upstream service.
func NewCircuitBreaker(name string, settings Settings) *CircuitBreaker {
	failureThreshold := settings.FailureThreshold
	if failureThreshold == 0 {
		failureThreshold = 5
	}

	st := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}
	if settings.IntervalSeconds > 0 {
		st.Interval = time.Duration(settings.IntervalSeconds) * time.Second
	}
	if settings.TimeoutSeconds > 0 {
		st.Timeout = time.Duration(settings.TimeoutSeconds) * time.Second
	}

	return &CircuitBreaker{cb: gobreaker.NewCircuitBreaker(st)}
}

// Execute runs fn through the breaker.
func (c *CircuitBreaker) Execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := c.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, ErrCircuitOpen
	}
	return result, err
}
