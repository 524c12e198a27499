// Package resilience guards calls to flaky upstream services.
package resilience

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// State is the breaker position.
type State int

const (
	// Closed lets calls through.
	Closed State = iota
	// Open rejects calls until the cooldown elapses.
	Open
	// HalfOpen lets one trial call through.
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrOpen is returned when a call is rejected by an open breaker.
var ErrOpen = eris.New("resilience: circuit open")

// BreakerOption configures a Breaker.
type BreakerOption func(*Breaker)

// WithThreshold sets how many consecutive tripping failures open the breaker.
func WithThreshold(n int) BreakerOption {
	return func(b *Breaker) {
		if n > 0 {
			b.threshold = n
		}
	}
}

// WithCooldown sets how long the breaker stays open before a trial call.
func WithCooldown(d time.Duration) BreakerOption {
	return func(b *Breaker) {
		if d > 0 {
			b.cooldown = d
		}
	}
}

// WithTrip decides which errors count as failures. Default: IsTransient.
func WithTrip(fn func(error) bool) BreakerOption {
	return func(b *Breaker) {
		b.trips = fn
	}
}

// WithBreakerClock injects the time source.
func WithBreakerClock(now func() time.Time) BreakerOption {
	return func(b *Breaker) {
		b.now = now
	}
}

// Breaker is a consecutive-failure circuit breaker for one upstream.
type Breaker struct {
	name      string
	threshold int
	cooldown  time.Duration
	trips     func(error) bool
	now       func() time.Time

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
	trialing bool
}

// NewBreaker returns a closed breaker named after the upstream it guards.
func NewBreaker(name string, opts ...BreakerOption) *Breaker {
	b := &Breaker{
		name:      name,
		threshold: 3,
		cooldown:  30 * time.Second,
		trips:     IsTransient,
		now:       time.Now,
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Do runs fn unless the breaker is open. While half-open only one trial call runs
// at a time; concurrent callers get ErrOpen.
func (b *Breaker) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := b.admit(); err != nil {
		return err
	}
	err := fn(ctx)
	b.record(err)
	return err
}

// State reports the current position.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == Open && b.now().Sub(b.openedAt) >= b.cooldown {
		return HalfOpen
	}
	return b.state
}

func (b *Breaker) admit() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Open:
		if b.now().Sub(b.openedAt) < b.cooldown {
			return eris.Wrapf(ErrOpen, "%s (retry after %s)", b.name, b.openedAt.Add(b.cooldown).Sub(b.now()).Round(time.Second))
		}
		b.setState(HalfOpen)
		b.trialing = true
	case HalfOpen:
		if b.trialing {
			return eris.Wrapf(ErrOpen, "%s (trial call in flight)", b.name)
		}
		b.trialing = true
	}
	return nil
}

// record updates the breaker after a call. Only success closes it. Errors
// that do not trip (bad requests, caller cancellation) say nothing about the
// upstream's health, so they leave the state and failure count alone; a
// half-open breaker stays half-open and admits the next trial call.
func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.trialing = false

	if err == nil {
		b.failures = 0
		b.setState(Closed)
		return
	}
	if !b.trips(err) {
		return
	}

	b.failures++
	if b.state == HalfOpen || b.failures >= b.threshold {
		b.openedAt = b.now()
		b.setState(Open)
	}
}

func (b *Breaker) setState(to State) {
	if b.state == to {
		return
	}
	zap.L().Warn("resilience: breaker state change",
		zap.String("upstream", b.name),
		zap.Stringer("from", b.state),
		zap.Stringer("to", to),
		zap.Int("failures", b.failures),
	)
	b.state = to
}
