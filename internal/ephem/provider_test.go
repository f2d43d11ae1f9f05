package ephem

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/litescript/ls-planets/internal/astro"
	"github.com/litescript/ls-planets/internal/logging"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		input    string
		expected Mode
	}{
		{"analytic", ModeAnalytic},
		{"horizons", ModeHorizons},
		{"auto", ModeAuto},
		{"", ModeAnalytic},        // default
		{"invalid", ModeAnalytic}, // default for unknown
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			got := ParseMode(tc.input)
			if got != tc.expected {
				t.Errorf("ParseMode(%q) = %v, want %v", tc.input, got, tc.expected)
			}
		})
	}
}

func TestModeString(t *testing.T) {
	tests := []struct {
		mode     Mode
		expected string
	}{
		{ModeAnalytic, "analytic"},
		{ModeHorizons, "horizons"},
		{ModeAuto, "auto"},
		{Mode(99), "unknown"},
	}

	for _, tc := range tests {
		t.Run(tc.expected, func(t *testing.T) {
			got := tc.mode.String()
			if got != tc.expected {
				t.Errorf("Mode(%d).String() = %q, want %q", tc.mode, got, tc.expected)
			}
		})
	}
}

func TestNew(t *testing.T) {
	if _, ok := New(ModeAnalytic, Options{}).(*AnalyticProvider); !ok {
		t.Error("analytic mode should build an AnalyticProvider")
	}
	if _, ok := New(ModeHorizons, Options{}).(*BreakerProvider); !ok {
		t.Error("horizons mode should build a BreakerProvider")
	}
	p := New(ModeAuto, Options{Logger: logging.Discard()})
	if _, ok := p.(*FallbackProvider); !ok {
		t.Error("auto mode should build a FallbackProvider")
	}
	if p.Name() != "auto" {
		t.Errorf("Name() = %q, want auto", p.Name())
	}
}

// stubProvider fails on demand and counts calls.
type stubProvider struct {
	name  string
	fail  atomic.Bool
	calls atomic.Int32
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Available(body string) bool { return body != "vulcan" }

func (s *stubProvider) State(ctx context.Context, body string, t time.Time) (astro.State, error) {
	s.calls.Add(1)
	if !s.Available(body) {
		return astro.State{}, unavailable(s.name, body, t, errUnsupportedBody)
	}
	if s.fail.Load() {
		return astro.State{}, unavailable(s.name, body, t, errors.New("boom"))
	}
	return astro.State{Position: astro.Vec3{X: 1}, Frame: astro.FrameJ2000}, nil
}

func TestBreakerProvider_OpensAfterConsecutiveFailures(t *testing.T) {
	next := &stubProvider{name: "remote"}
	next.fail.Store(true)
	p := NewBreakerProvider(next, BreakerSettings{ConsecutiveFailures: 3, Cooldown: time.Hour}, logging.Discard())

	for range 3 {
		if _, err := p.State(context.Background(), "mars", time.Now()); !errors.Is(err, ErrProviderUnavailable) {
			t.Fatalf("error = %v, want ErrProviderUnavailable", err)
		}
	}
	if got := p.BreakerState(); got != "open" {
		t.Fatalf("BreakerState() = %q, want open", got)
	}

	// open breaker answers without calling through
	_, err := p.State(context.Background(), "mars", time.Now())
	if !errors.Is(err, ErrProviderUnavailable) {
		t.Errorf("error = %v, want ErrProviderUnavailable", err)
	}
	if n := next.calls.Load(); n != 3 {
		t.Errorf("next called %d times, want 3", n)
	}
}

func TestBreakerStates(t *testing.T) {
	if got := BreakerStates(NewAnalyticProvider()); got != nil {
		t.Errorf("BreakerStates(analytic) = %v, want nil", got)
	}

	next := &stubProvider{name: "remote"}
	next.fail.Store(true)
	breaker := NewBreakerProvider(next, BreakerSettings{ConsecutiveFailures: 1, Cooldown: time.Hour}, logging.Discard())
	chain := NewFallbackProvider(breaker, NewAnalyticProvider(), logging.Discard())

	if got := BreakerStates(chain)["remote"]; got != "closed" {
		t.Errorf("before failure: %q, want closed", got)
	}
	if _, err := chain.State(context.Background(), "mars", time.Date(2024, 12, 7, 12, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("fallback should answer: %v", err)
	}
	if got := BreakerStates(chain)["remote"]; got != "open" {
		t.Errorf("after failure: %q, want open", got)
	}
}

func TestBreakerProvider_UnsupportedBodyDoesNotTrip(t *testing.T) {
	next := &stubProvider{name: "remote"}
	p := NewBreakerProvider(next, BreakerSettings{ConsecutiveFailures: 1}, nil)

	for range 5 {
		_, _ = p.State(context.Background(), "vulcan", time.Now())
	}
	if got := p.BreakerState(); got != "closed" {
		t.Errorf("BreakerState() = %q, want closed", got)
	}
	if _, err := p.State(context.Background(), "mars", time.Now()); err != nil {
		t.Errorf("State(mars) error = %v", err)
	}
}

func TestBreakerProvider_CancellationDoesNotTrip(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewBreakerProvider(NewAnalyticProvider(), BreakerSettings{ConsecutiveFailures: 1}, nil)
	for range 3 {
		_, _ = p.State(ctx, "mars", time.Now())
	}
	if got := p.BreakerState(); got != "closed" {
		t.Errorf("BreakerState() = %q, want closed", got)
	}
}

func TestFallbackProvider(t *testing.T) {
	primary := &stubProvider{name: "remote"}
	secondary := NewAnalyticProvider()
	p := NewFallbackProvider(primary, secondary, logging.Discard())
	at := time.Date(2024, 12, 7, 12, 0, 0, 0, time.UTC)

	st, err := p.State(context.Background(), "mars", at)
	if err != nil {
		t.Fatal(err)
	}
	if st.Position != (astro.Vec3{X: 1}) {
		t.Errorf("healthy primary should answer, got %v", st.Position)
	}

	primary.fail.Store(true)
	st, err = p.State(context.Background(), "mars", at)
	if err != nil {
		t.Fatalf("fallback error = %v", err)
	}
	if st.Position.Norm() < 1e8 {
		t.Errorf("fallback should answer from analytic, got %v", st.Position)
	}

	if !p.Available("moon") || p.Available("vulcan") {
		t.Error("Available should be the union of both providers")
	}
}
