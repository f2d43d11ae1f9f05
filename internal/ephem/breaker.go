package ephem

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/litescript/ls-planets/internal/astro"
	"github.com/litescript/ls-planets/internal/logging"
)

// BreakerSettings configures a BreakerProvider.
type BreakerSettings struct {
	// ConsecutiveFailures trips the breaker. Default 5.
	ConsecutiveFailures uint32
	// Cooldown is how long the breaker stays open. Default 30s.
	Cooldown time.Duration
}

// BreakerProvider stops calling a failing provider for a cooldown period
// once it has failed repeatedly.
type BreakerProvider struct {
	next Provider
	cb   *gobreaker.CircuitBreaker[astro.State]
}

// NewBreakerProvider wraps next in a circuit breaker.
func NewBreakerProvider(next Provider, st BreakerSettings, logger *logging.Logger) *BreakerProvider {
	if st.ConsecutiveFailures == 0 {
		st.ConsecutiveFailures = 5
	}
	if st.Cooldown <= 0 {
		st.Cooldown = 30 * time.Second
	}

	settings := gobreaker.Settings{
		Name:        next.Name(),
		MaxRequests: 1,
		Timeout:     st.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= st.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("ephemeris circuit breaker state changed",
				"provider", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
		// a caller giving up says nothing about the provider's health
		IsExcluded: func(err error) bool {
			return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
	}

	return &BreakerProvider{
		next: next,
		cb:   gobreaker.NewCircuitBreaker[astro.State](settings),
	}
}

// Name implements Provider.
func (p *BreakerProvider) Name() string {
	return p.next.Name()
}

// Available implements Provider.
func (p *BreakerProvider) Available(body string) bool {
	return p.next.Available(body)
}

// State implements Provider. Unsupported bodies bypass the breaker.
func (p *BreakerProvider) State(ctx context.Context, body string, t time.Time) (astro.State, error) {
	if !p.next.Available(body) {
		return p.next.State(ctx, body, t)
	}

	st, err := p.cb.Execute(func() (astro.State, error) {
		return p.next.State(ctx, body, t)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return astro.State{}, unavailable(p.Name(), body, t, err)
	}
	return st, err
}

// BreakerState reports the breaker's state name (closed, half-open, open).
func (p *BreakerProvider) BreakerState() string {
	return p.cb.State().String()
}

// BreakerStates walks a provider chain and reports each breaker's state
// keyed by the provider it guards. It returns nil when there is none.
func BreakerStates(p Provider) map[string]string {
	var states map[string]string
	var walk func(Provider)
	walk = func(p Provider) {
		switch v := p.(type) {
		case *BreakerProvider:
			if states == nil {
				states = make(map[string]string)
			}
			states[v.Name()] = v.BreakerState()
			walk(v.next)
		case *FallbackProvider:
			walk(v.primary)
			walk(v.secondary)
		}
	}
	walk(p)
	return states
}
