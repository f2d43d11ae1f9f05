package engine

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/litescript/ls-planets/internal/astro"
	"github.com/litescript/ls-planets/internal/catalog"
	"github.com/litescript/ls-planets/internal/observability"
)

const (
	// DefaultWindowSpan is the time range searched for rise and set.
	DefaultWindowSpan = 24 * time.Hour

	// DefaultWindowStep is the altitude sample interval.
	DefaultWindowStep = 15 * time.Minute

	// TwilightStep is the Sun altitude sample interval for Twilight.
	TwilightStep = 10 * time.Minute

	// MinWindowStep and MaxWindowSpan bound a Window search to at most
	// 4321 samples. Three interpolation knots stop following the Moon
	// beyond a few days.
	MinWindowStep = time.Minute
	MaxWindowSpan = 72 * time.Hour
)

// Window is a rise/transit/set search result for one body.
type Window struct {
	Body      string        `json:"body"`
	Start     time.Time     `json:"start"`
	Span      time.Duration `json:"span"`
	Threshold float64       `json:"threshold"`
	astro.VisibilityWindow
}

// Window searches [start, start+span) for the body's rise, transit and set.
// Zero span or step select the defaults. A step below MinWindowStep or a
// span above MaxWindowSpan is rejected with an InvalidObserverError. The
// Sun uses the refracted upper-limb threshold, every other body the
// geometric horizon.
func (e *Engine) Window(ctx context.Context, obs astro.Observer, start time.Time, id string, span, step time.Duration) (Window, error) {
	ctx, sp := observability.Tracer().Start(ctx, "engine.Window", trace.WithAttributes(attribute.String("body", id)))
	defer sp.End()

	if err := obs.Validate(); err != nil {
		return Window{}, spanError(sp, err)
	}
	d, err := e.catalog.Lookup(id)
	if err != nil {
		return Window{}, spanError(sp, err)
	}
	if span <= 0 {
		span = DefaultWindowSpan
	}
	if step <= 0 {
		step = DefaultWindowStep
	}
	if err := checkWindow(span, step); err != nil {
		return Window{}, spanError(sp, err)
	}
	start = start.UTC()

	threshold := astro.HorizonAltitude
	if d.ID == catalog.SunID {
		threshold = astro.SunriseAltitude
	}

	samples, err := e.altitudes(ctx, d.ID, obs, start, span, step)
	if err != nil {
		return Window{}, spanError(sp, err)
	}
	vw, err := astro.RiseSet(samples, threshold)
	if err != nil {
		return Window{}, spanError(sp, fmt.Errorf("window %s: %w", d.ID, err))
	}
	return Window{Body: d.ID, Start: start, Span: span, Threshold: threshold, VisibilityWindow: vw}, nil
}

// Twilight holds the Sun's crossings of the standard altitudes over one
// local day. Each window's Rise is the dawn crossing and Set the dusk
// crossing.
type Twilight struct {
	Start        time.Time              `json:"start"`
	Sun          astro.VisibilityWindow `json:"sun"`
	Civil        astro.VisibilityWindow `json:"civil"`
	Nautical     astro.VisibilityWindow `json:"nautical"`
	Astronomical astro.VisibilityWindow `json:"astronomical"`
	SunAltitude  float64                `json:"sunAltitude"`
	Condition    astro.SkyCondition     `json:"condition"`
}

// Twilight computes sunrise, sunset and the three twilight pairs for the
// local day containing instant, plus the sky condition at instant. The day
// starts at local mean midnight derived from the observer's longitude.
func (e *Engine) Twilight(ctx context.Context, obs astro.Observer, instant time.Time) (Twilight, error) {
	ctx, sp := observability.Tracer().Start(ctx, "engine.Twilight")
	defer sp.End()

	if err := obs.Validate(); err != nil {
		return Twilight{}, spanError(sp, err)
	}
	instant = instant.UTC()
	start := localMidnight(instant, obs.LonDeg)

	samples, err := e.altitudes(ctx, catalog.SunID, obs, start, 24*time.Hour, TwilightStep)
	if err != nil {
		return Twilight{}, spanError(sp, err)
	}

	tw := Twilight{Start: start}
	for _, w := range []struct {
		dst       *astro.VisibilityWindow
		threshold float64
	}{
		{&tw.Sun, astro.SunriseAltitude},
		{&tw.Civil, astro.CivilTwilightAltitude},
		{&tw.Nautical, astro.NauticalTwilightAltitude},
		{&tw.Astronomical, astro.AstronomicalTwilightAltitude},
	} {
		if *w.dst, err = astro.RiseSet(samples, w.threshold); err != nil {
			return Twilight{}, spanError(sp, err)
		}
	}

	var sun *astro.State
	if st, err := e.provider.State(ctx, catalog.SunID, instant); err == nil {
		sun = &st
	} else if ctx.Err() != nil {
		return Twilight{}, spanError(sp, ctx.Err())
	}
	tw.SunAltitude = e.sunAltitude(sun, obs, instant)
	tw.Condition = astro.GetSkyCondition(tw.SunAltitude)
	return tw, nil
}

func checkWindow(span, step time.Duration) error {
	switch {
	case step < MinWindowStep:
		return &astro.InvalidObserverError{Field: "step", Value: step, Reason: "below " + MinWindowStep.String()}
	case span > MaxWindowSpan:
		return &astro.InvalidObserverError{Field: "span", Value: span, Reason: "above " + MaxWindowSpan.String()}
	}
	return nil
}

func localMidnight(t time.Time, lonDeg float64) time.Time {
	offset := time.Duration(lonDeg / 15 * float64(time.Hour))
	local := t.Add(offset)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
	return midnight.Add(-offset)
}

// altitudes samples a body's topocentric altitude from start to start+span.
// The provider is queried at three knots and positions between them are
// interpolated with a quadratic, which keeps remote providers to three
// requests per window.
func (e *Engine) altitudes(ctx context.Context, id string, obs astro.Observer, start time.Time, span, step time.Duration) ([]astro.AltitudeSample, error) {
	var knots [3]astro.State
	for i := range knots {
		st, err := e.provider.State(ctx, id, start.Add(time.Duration(i)*span/2))
		if err != nil {
			return nil, fmt.Errorf("sample %s: %w", id, err)
		}
		knots[i] = st
	}

	n := int(span/step) + 1
	samples := make([]astro.AltitudeSample, 0, n)
	for i := range n {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ti := start.Add(time.Duration(i) * step)
		x := 2 * float64(ti.Sub(start)) / float64(span)
		c, err := astro.Topocentric(interpolateState(knots, x), obs, ti, e.transform)
		if err != nil {
			return nil, err
		}
		samples = append(samples, astro.AltitudeSample{Time: ti, AltDeg: c.ElDeg})
	}
	return samples, nil
}

// interpolateState evaluates the Lagrange quadratic through knots at
// x = 0, 1, 2.
func interpolateState(knots [3]astro.State, x float64) astro.State {
	l0 := (x - 1) * (x - 2) / 2
	l1 := -x * (x - 2)
	l2 := x * (x - 1) / 2
	mix := func(a, b, c astro.Vec3) astro.Vec3 {
		return a.Scale(l0).Add(b.Scale(l1)).Add(c.Scale(l2))
	}
	return astro.State{
		Position:      mix(knots[0].Position, knots[1].Position, knots[2].Position),
		EarthVelocity: mix(knots[0].EarthVelocity, knots[1].EarthVelocity, knots[2].EarthVelocity),
		Frame:         knots[0].Frame,
	}
}
