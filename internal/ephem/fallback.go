package ephem

import (
	"context"
	"time"

	"github.com/litescript/ls-planets/internal/astro"
	"github.com/litescript/ls-planets/internal/logging"
)

// FallbackProvider tries primary first and answers from secondary when
// primary fails or lacks the body.
type FallbackProvider struct {
	primary   Provider
	secondary Provider
	logger    *logging.Logger
}

// NewFallbackProvider creates a fallback chain.
func NewFallbackProvider(primary, secondary Provider, logger *logging.Logger) *FallbackProvider {
	return &FallbackProvider{primary: primary, secondary: secondary, logger: logger}
}

// Name implements Provider.
func (p *FallbackProvider) Name() string {
	return "auto"
}

// Available implements Provider.
func (p *FallbackProvider) Available(body string) bool {
	return p.primary.Available(body) || p.secondary.Available(body)
}

// State implements Provider.
func (p *FallbackProvider) State(ctx context.Context, body string, t time.Time) (astro.State, error) {
	if p.primary.Available(body) {
		st, err := p.primary.State(ctx, body, t)
		if err == nil {
			return st, nil
		}
		if ctx.Err() != nil {
			return astro.State{}, err
		}
		p.logger.Debug("primary ephemeris failed, falling back",
			"primary", p.primary.Name(),
			"secondary", p.secondary.Name(),
			"body", body,
			"err", err,
		)
	}
	return p.secondary.State(ctx, body, t)
}
