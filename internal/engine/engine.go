// Package engine turns an observer, an instant and a set of catalog bodies
// into per-body observational quantities.
package engine

import (
	"context"
	"fmt"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/litescript/ls-planets/internal/astro"
	"github.com/litescript/ls-planets/internal/catalog"
	"github.com/litescript/ls-planets/internal/ephem"
	"github.com/litescript/ls-planets/internal/logging"
	"github.com/litescript/ls-planets/internal/observability"
	"github.com/litescript/ls-planets/internal/version"
)

// Engine computes sky observations from an ephemeris provider. It holds no
// per-query state and is safe for concurrent use.
type Engine struct {
	provider  ephem.Provider
	catalog   *catalog.Catalog
	log       *logging.Logger
	metrics   *observability.Metrics
	transform astro.TransformOptions
	now       func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithCatalog replaces the built-in catalog.
func WithCatalog(c *catalog.Catalog) Option {
	return func(e *Engine) { e.catalog = c }
}

// WithLogger sets the logger for soft failures.
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithTransformOptions sets the options passed to astro.Topocentric.
func WithTransformOptions(o astro.TransformOptions) Option {
	return func(e *Engine) { e.transform = o }
}

// WithClock overrides the clock used for result metadata.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates an engine over provider.
func New(provider ephem.Provider, opts ...Option) *Engine {
	e := &Engine{
		provider: provider,
		catalog:  catalog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Catalog returns the catalog the engine resolves ids against.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// ProviderName names the ephemeris source.
func (e *Engine) ProviderName() string {
	return e.provider.Name()
}

// BreakerStates reports the circuit breakers in the provider chain.
func (e *Engine) BreakerStates() map[string]string {
	return ephem.BreakerStates(e.provider)
}

// Compute observes ids from obs at t. An empty ids means every catalog
// body. Unknown ids and invalid observers fail the whole call before any
// provider is consulted; a provider failure only drops the affected body
// and records a Warning.
func (e *Engine) Compute(ctx context.Context, obs astro.Observer, t time.Time, ids []string, opts Options) (Result, error) {
	ctx, span := observability.Tracer().Start(ctx, "engine.Compute", trace.WithAttributes(
		attribute.Int("bodies.requested", len(ids)),
		attribute.String("provider", e.provider.Name()),
	))
	defer span.End()

	start := time.Now()
	defer func() { e.metrics.ObserveCompute(time.Since(start)) }()

	if err := obs.Validate(); err != nil {
		return Result{}, spanError(span, err)
	}
	bodies, err := e.resolve(ids)
	if err != nil {
		return Result{}, spanError(span, err)
	}
	t = t.UTC()

	res := Result{
		Observer:     obs,
		Instant:      t,
		Options:      opts,
		Observations: make([]Observation, 0, len(bodies)),
		Meta: Metadata{
			EngineVersion: version.Version,
			Provider:      e.provider.Name(),
			ComputedAt:    e.now().UTC(),
		},
	}

	// The Sun's state serves every body's geometry and is fetched once.
	sunState, sunErr := e.provider.State(ctx, catalog.SunID, t)
	var sun *astro.State
	if sunErr == nil {
		sun = &sunState
	} else if ctx.Err() != nil {
		return Result{}, spanError(span, ctx.Err())
	} else {
		e.log.Warn("sun state unavailable; using nominal magnitudes", "provider", e.provider.Name(), "err", sunErr)
	}

	sunAlt := e.sunAltitude(sun, obs, t)
	res.Meta.SunAltitude = &sunAlt
	res.Meta.SkyCondition = astro.GetSkyCondition(sunAlt)
	limit := astro.MagnitudeLimit(res.Meta.SkyCondition)

	for _, d := range bodies {
		var st astro.State
		var err error
		if d.ID == catalog.SunID {
			st, err = sunState, sunErr
		} else {
			st, err = e.provider.State(ctx, d.ID, t)
		}
		if err == nil {
			var o Observation
			o, err = e.observe(d, st, sun, obs, t, limit)
			if err == nil {
				if opts.AboveHorizonOnly && !o.AboveHorizon {
					continue
				}
				res.Observations = append(res.Observations, o)
				continue
			}
		}
		if ctx.Err() != nil {
			return Result{}, spanError(span, ctx.Err())
		}
		res.Warnings = append(res.Warnings, Warning{Body: d.ID, Message: err.Error(), Err: err})
		e.log.Warn("body omitted", "body", d.ID, "provider", e.provider.Name(), "err", err)
		e.metrics.ProviderFailure(e.provider.Name(), d.ID)
	}

	span.SetAttributes(
		attribute.Int("bodies.observed", len(res.Observations)),
		attribute.Int("warnings", len(res.Warnings)),
	)
	return res, nil
}

// resolve maps ids to descriptors in catalog order without duplicates.
func (e *Engine) resolve(ids []string) ([]catalog.Descriptor, error) {
	all := e.catalog.All()
	if len(ids) == 0 {
		return all, nil
	}
	idx := make([]int, 0, len(ids))
	for _, id := range ids {
		i := e.catalog.Index(id)
		if i < 0 {
			return nil, fmt.Errorf("resolve bodies: %w", &catalog.UnknownBodyError{ID: id})
		}
		idx = append(idx, i)
	}
	slices.Sort(idx)
	idx = slices.Compact(idx)

	out := make([]catalog.Descriptor, len(idx))
	for n, i := range idx {
		out[n] = all[i]
	}
	return out, nil
}

// sunAltitude prefers the provider's Sun and falls back to the
// independent low-precision solar position.
func (e *Engine) sunAltitude(sun *astro.State, obs astro.Observer, t time.Time) float64 {
	if sun != nil {
		if c, err := astro.Topocentric(*sun, obs, t, e.transform); err == nil {
			return c.ElDeg
		}
	}
	ra, dec := astro.SunPosition(t)
	return astro.EquatorialToHorizontal(astro.SkyCoord{RAdeg: ra, DecDeg: dec}, obs, t).ElDeg
}

func (e *Engine) observe(d catalog.Descriptor, st astro.State, sun *astro.State, obs astro.Observer, t time.Time, limit float64) (Observation, error) {
	c, err := astro.Topocentric(st, obs, t, e.transform)
	if err != nil {
		return Observation{}, fmt.Errorf("transform %s: %w", d.ID, err)
	}

	o := Observation{
		ID:                  d.ID,
		Name:                d.Name,
		Category:            d.Category,
		Parent:              d.Parent,
		Altitude:            c.ElDeg,
		Azimuth:             c.AzDeg,
		RightAscension:      c.RAdeg,
		Declination:         c.DecDeg,
		DistanceKm:          c.RangeKm,
		DistanceAU:          astro.KmToAU(c.RangeKm),
		Constellation:       astro.ConstellationAt(c.RAdeg, c.DecDeg, t),
		AboveHorizon:        c.ElDeg > astro.HorizonAltitude,
		AngularDiameter:     astro.AngularDiameter(d.RadiusKm, c.RangeKm),
		Direction:           astro.CompassDirection(c.AzDeg),
		AltitudeDescription: astro.GetAltitudeTier(c.ElDeg).Description(),
		SkyPosition:         astro.SkyPositionDescription(c.ElDeg, c.AzDeg),
	}

	var rAU, phase float64
	if sun != nil && d.Category != catalog.CategoryStar {
		rAU = astro.KmToAU(st.Position.Sub(sun.Position).Norm())
		phase = astro.PhaseAngle(sun.Position, st.Position)
		o.Elongation = astro.AngleBetween(sun.Position, st.Position)

		if d.IsMoon() {
			f := astro.IlluminatedFraction(phase)
			o.PhaseFraction = &f
			sunLon, _, _ := astro.ToSpherical(astro.J2000ToEclipticOfDate(sun.Position, t))
			moonLon, _, _ := astro.ToSpherical(astro.J2000ToEclipticOfDate(st.Position, t))
			o.PhaseName = astro.PhaseName(moonLon - sunLon)
		}
	}
	o.Magnitude = d.Magnitude.Magnitude(d.Category, rAU, o.DistanceAU, phase)
	o.NakedEye = astro.NakedEyeVisible(o.Altitude, o.Magnitude, limit)
	return o, nil
}

func spanError(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
