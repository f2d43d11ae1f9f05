// Package query is the entry point for sky queries: it applies defaults,
// validates parameters, and serves results through the cache.
package query

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/litescript/ls-planets/internal/astro"
	"github.com/litescript/ls-planets/internal/cache"
	"github.com/litescript/ls-planets/internal/catalog"
	"github.com/litescript/ls-planets/internal/engine"
	"github.com/litescript/ls-planets/internal/logging"
	"github.com/litescript/ls-planets/internal/observability"
	"github.com/litescript/ls-planets/internal/version"
)

// Default observer: Cape Canaveral.
const (
	DefaultLatitude  = 28.627222
	DefaultLongitude = -80.620833
	DefaultElevation = 0.0
)

// Params are the raw inputs of a query. Nil pointers and empty values take
// the defaults.
type Params struct {
	Latitude  *float64
	Longitude *float64
	Elevation *float64

	// Instant is an ISO-8601 timestamp; At wins when both are set. Neither
	// means now.
	Instant string
	At      *time.Time

	Bodies       []string
	ShowCoords   bool
	AboveHorizon *bool // defaults to true
}

// Config tunes a Service.
type Config struct {
	Tolerance cache.Tolerance
	Logger    *logging.Logger
	Metrics   *observability.Metrics
}

// Service answers sky queries. Safe for concurrent use.
type Service struct {
	engine  *engine.Engine
	cache   *cache.Cache
	tol     cache.Tolerance
	log     *logging.Logger
	metrics *observability.Metrics
	now     func() time.Time
}

// NewService wires an engine behind a cache.
func NewService(eng *engine.Engine, c *cache.Cache, cfg Config) *Service {
	tol := cfg.Tolerance
	if tol.Coord <= 0 {
		tol.Coord = cache.DefaultCoordTolerance
	}
	if tol.Time <= 0 {
		tol.Time = cache.DefaultTimeResolution
	}
	return &Service{
		engine:  eng,
		cache:   c,
		tol:     tol,
		log:     cfg.Logger,
		metrics: cfg.Metrics,
		now:     time.Now,
	}
}

// Query computes, or fetches from cache, the observations for p.
// Parameter errors are reported as *astro.InvalidObserverError or
// *catalog.UnknownBodyError before any provider is consulted.
func (s *Service) Query(ctx context.Context, p Params) (engine.Result, error) {
	ctx, span := observability.Tracer().Start(ctx, "query.Query")
	defer span.End()

	res, err := s.query(ctx, p)
	s.metrics.QueryDone(outcome(err))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return engine.Result{}, err
	}
	span.SetAttributes(attribute.Int("observations", len(res.Observations)))
	return res, nil
}

func (s *Service) query(ctx context.Context, p Params) (engine.Result, error) {
	obs, at, err := s.resolve(p)
	if err != nil {
		return engine.Result{}, err
	}
	opts := engine.Options{ShowCoords: p.ShowCoords, AboveHorizonOnly: true}
	if p.AboveHorizon != nil {
		opts.AboveHorizonOnly = *p.AboveHorizon
	}
	ids := p.Bodies
	for _, id := range ids {
		if _, err := s.engine.Catalog().Lookup(id); err != nil {
			return engine.Result{}, err
		}
	}

	key := cache.KeyFor(obs, at, ids, opts, s.tol)
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("cache.key", string(key)))

	start := time.Now()
	res, err := s.cache.GetOrCompute(ctx, key, func(ctx context.Context) (engine.Result, error) {
		return s.engine.Compute(ctx, obs, at, ids, opts)
	})
	if err != nil {
		return engine.Result{}, err
	}
	s.log.Debug("query", "key", key, "observations", len(res.Observations), "warnings", len(res.Warnings), "took", logging.Since(start))
	return res, nil
}

// Body returns one body's observation regardless of the horizon filter.
func (s *Service) Body(ctx context.Context, p Params, id string) (engine.Observation, error) {
	d, err := s.engine.Catalog().Lookup(id)
	if err != nil {
		return engine.Observation{}, err
	}
	p.Bodies = []string{d.ID}
	above := false
	p.AboveHorizon = &above

	res, err := s.Query(ctx, p)
	if err != nil {
		return engine.Observation{}, err
	}
	if o, ok := res.Observation(d.ID); ok {
		return o, nil
	}
	for _, w := range res.Warnings {
		if w.Body == d.ID && w.Err != nil {
			return engine.Observation{}, w.Err
		}
	}
	return engine.Observation{}, fmt.Errorf("no observation for %s", d.ID)
}

// Window finds the next rise, transit and set of id after the query
// instant.
func (s *Service) Window(ctx context.Context, p Params, id string, span, step time.Duration) (engine.Window, error) {
	obs, at, err := s.resolve(p)
	if err != nil {
		return engine.Window{}, err
	}
	return s.engine.Window(ctx, obs, at, id, span, step)
}

// Twilight returns the Sun's crossings for the local day of the query
// instant.
func (s *Service) Twilight(ctx context.Context, p Params) (engine.Twilight, error) {
	obs, at, err := s.resolve(p)
	if err != nil {
		return engine.Twilight{}, err
	}
	return s.engine.Twilight(ctx, obs, at)
}

// Meta describes the running service.
type Meta struct {
	EngineVersion  string        `json:"engineVersion"`
	Provider       string        `json:"provider"`
	Bodies         []string      `json:"bodies"`
	CoordTolerance float64       `json:"coordTolerance"`
	TimeResolution time.Duration `json:"timeResolution"`
	Cache          cache.Stats   `json:"cache"`

	// Breakers maps each guarded provider to its circuit state.
	Breakers map[string]string `json:"breakers,omitempty"`
}

// Meta reports the engine version, provider, catalog and cache settings.
func (s *Service) Meta() Meta {
	return Meta{
		EngineVersion:  version.Version,
		Provider:       s.engine.ProviderName(),
		Bodies:         s.engine.Catalog().IDs(),
		CoordTolerance: s.tol.Coord,
		TimeResolution: s.tol.Time,
		Cache:          s.cache.Stats(),
		Breakers:       s.engine.BreakerStates(),
	}
}

// ClearCache drops every cached result and returns how many were stored.
func (s *Service) ClearCache() int {
	n := s.cache.Len()
	s.cache.Purge()
	s.log.Info("cache cleared", "entries", n)
	return n
}

// resolve applies defaults and validates the observer and instant.
func (s *Service) resolve(p Params) (astro.Observer, time.Time, error) {
	obs := astro.Observer{
		LatDeg:     valueOr(p.Latitude, DefaultLatitude),
		LonDeg:     valueOr(p.Longitude, DefaultLongitude),
		ElevationM: valueOr(p.Elevation, DefaultElevation),
	}
	if err := obs.Validate(); err != nil {
		return astro.Observer{}, time.Time{}, err
	}

	var at time.Time
	switch {
	case p.At != nil:
		at = *p.At
	case strings.TrimSpace(p.Instant) != "":
		t, err := ParseInstant(p.Instant)
		if err != nil {
			return astro.Observer{}, time.Time{}, err
		}
		at = t
	default:
		at = s.now()
	}
	return obs, at.UTC(), nil
}

func valueOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

var instantLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseInstant parses an ISO-8601 timestamp. Values without a zone are
// UTC. Failures are *astro.InvalidObserverError on field "instant".
func ParseInstant(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, &astro.InvalidObserverError{Field: "instant", Value: s, Reason: "not an ISO-8601 timestamp"}
}

// IsInvalidParams reports whether err is a caller mistake rather than a
// service failure.
func IsInvalidParams(err error) bool {
	return errors.Is(err, astro.ErrInvalidObserver) || errors.Is(err, catalog.ErrUnknownBody)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case IsInvalidParams(err):
		return "invalid"
	default:
		return "error"
	}
}
