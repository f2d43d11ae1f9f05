// Package ephem provides geocentric states for solar-system bodies from
// interchangeable ephemeris sources.
package ephem

import (
	"context"
	"time"

	"github.com/litescript/ls-planets/internal/astro"
	"github.com/litescript/ls-planets/internal/logging"
)

// Provider defines the interface for ephemeris data sources.
// Implementations must be safe for concurrent use.
type Provider interface {
	// Name returns the provider name for display/logging.
	Name() string

	// State returns the geocentric state of body at t. Failures are
	// reported as *ProviderUnavailableError.
	State(ctx context.Context, body string, t time.Time) (astro.State, error)

	// Available returns true if this provider can supply data for the body.
	Available(body string) bool
}

// Mode represents which ephemeris source to use.
type Mode int

const (
	ModeAnalytic Mode = iota // Offline Keplerian elements and lunar series (default)
	ModeHorizons             // Use JPL Horizons
	ModeAuto                 // Try Horizons, fall back to analytic
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeAnalytic:
		return "analytic"
	case ModeHorizons:
		return "horizons"
	case ModeAuto:
		return "auto"
	default:
		return "unknown"
	}
}

// ParseMode parses a mode string.
func ParseMode(s string) Mode {
	switch s {
	case "analytic":
		return ModeAnalytic
	case "horizons":
		return ModeHorizons
	case "auto":
		return ModeAuto
	default:
		return ModeAnalytic
	}
}

// Options configures the provider chain built by New.
type Options struct {
	HorizonsURL       string
	RequestsPerSecond float64
	RequestTimeout    time.Duration

	// BreakerFailures consecutive failures open the Horizons circuit for
	// BreakerCooldown.
	BreakerFailures uint32
	BreakerCooldown time.Duration

	Logger *logging.Logger
}

// New builds the provider for mode. Remote sources are always wrapped in
// a circuit breaker.
func New(mode Mode, opts Options) Provider {
	analytic := NewAnalyticProvider()
	if mode == ModeAnalytic {
		return analytic
	}

	var hopts []HorizonsOption
	if opts.HorizonsURL != "" {
		hopts = append(hopts, WithBaseURL(opts.HorizonsURL))
	}
	if opts.RequestsPerSecond > 0 {
		hopts = append(hopts, WithRateLimit(opts.RequestsPerSecond, 1))
	}
	if opts.RequestTimeout > 0 {
		hopts = append(hopts, WithTimeout(opts.RequestTimeout))
	}
	horizons := NewHorizonsProvider(analytic, hopts...)

	remote := NewBreakerProvider(horizons, BreakerSettings{
		ConsecutiveFailures: opts.BreakerFailures,
		Cooldown:            opts.BreakerCooldown,
	}, opts.Logger)

	if mode == ModeHorizons {
		return remote
	}
	return NewFallbackProvider(remote, analytic, opts.Logger)
}
