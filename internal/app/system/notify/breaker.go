package notify

import (
	"context"
	"time"

	"github.com/dalemusser/compoundhub/internal/app/system/telemetry"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// DefaultBreakerFailures is the consecutive-failure count that opens the
// breaker.
const DefaultBreakerFailures = 3

// Breaker wraps a Dispatcher in a circuit breaker and counts every attempt
// under the transport label. While open, Send fails fast with
// gobreaker.ErrOpenState.
type Breaker struct {
	next      Dispatcher
	transport string
	cb        *gobreaker.CircuitBreaker
}

// BreakerSettings configure NewBreaker.
type BreakerSettings struct {
	Transport string        // metrics label and breaker name, e.g. "inbox" or "amqp"
	Failures  uint32        // consecutive failures before opening; DefaultBreakerFailures when 0
	Timeout   time.Duration // open -> half-open; 30s when 0
}

// NewBreaker wraps next.
func NewBreaker(next Dispatcher, s BreakerSettings, logger *zap.Logger) *Breaker {
	if s.Failures == 0 {
		s.Failures = DefaultBreakerFailures
	}
	if s.Timeout <= 0 {
		s.Timeout = 30 * time.Second
	}
	name := "notify-" + s.Transport
	failures := s.Failures

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("notification breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
			telemetry.SetBreakerState(name, int(to))
		},
	})
	telemetry.SetBreakerState(name, int(gobreaker.StateClosed))

	return &Breaker{next: next, transport: s.Transport, cb: cb}
}

// Send forwards msg through the breaker.
func (b *Breaker) Send(ctx context.Context, msg Message) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.next.Send(ctx, msg)
	})
	telemetry.ObserveNotification(b.transport, err)
	return err
}

// State reports the breaker state.
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}
