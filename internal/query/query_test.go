package query

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litescript/ls-planets/internal/astro"
	"github.com/litescript/ls-planets/internal/cache"
	"github.com/litescript/ls-planets/internal/catalog"
	"github.com/litescript/ls-planets/internal/engine"
	"github.com/litescript/ls-planets/internal/ephem"
	"github.com/litescript/ls-planets/internal/logging"
	"github.com/litescript/ls-planets/internal/observability"
	"github.com/litescript/ls-planets/internal/version"
)

var december = time.Date(2024, 12, 7, 12, 0, 0, 0, time.UTC)

type stubProvider struct {
	ephem.Provider

	mu    sync.Mutex
	calls int
	fail  map[string]bool
}

func (p *stubProvider) State(ctx context.Context, body string, t time.Time) (astro.State, error) {
	p.mu.Lock()
	p.calls++
	fail := p.fail[body]
	p.mu.Unlock()
	if fail {
		return astro.State{}, &ephem.ProviderUnavailableError{Provider: "stub", Body: body, Time: t, Err: errors.New("offline")}
	}
	return p.Provider.State(ctx, body, t)
}

func (p *stubProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

type fixture struct {
	svc      *Service
	provider *stubProvider
	metrics  *observability.Metrics
}

func newFixture(t *testing.T, fail ...string) fixture {
	t.Helper()
	p := &stubProvider{Provider: ephem.NewAnalyticProvider(), fail: map[string]bool{}}
	for _, f := range fail {
		p.fail[f] = true
	}
	m, err := observability.NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)
	log := logging.Discard()

	eng := engine.New(p, engine.WithLogger(log), engine.WithMetrics(m))
	c, err := cache.New(cache.Config{Logger: log, Metrics: m})
	require.NoError(t, err)
	svc := NewService(eng, c, Config{Logger: log, Metrics: m})
	svc.now = func() time.Time { return december }
	return fixture{svc: svc, provider: p, metrics: m}
}

func ptr[T any](v T) *T { return &v }

func TestQuery_Defaults(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Query(context.Background(), Params{})
	require.NoError(t, err)

	assert.Equal(t, DefaultLatitude, res.Observer.LatDeg)
	assert.Equal(t, DefaultLongitude, res.Observer.LonDeg)
	assert.Equal(t, december, res.Instant)
	assert.True(t, res.Options.AboveHorizonOnly)
	assert.False(t, res.Options.ShowCoords)

	require.NotEmpty(t, res.Observations)
	for _, o := range res.Observations {
		assert.Greater(t, o.Altitude, 0.0, o.ID)
	}
	_, ok := res.Observation("mars")
	assert.True(t, ok)
	_, ok = res.Observation("saturn")
	assert.False(t, ok, "saturn is below the horizon")
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Queries.WithLabelValues("ok")))
}

func TestQuery_AllBodiesWhenUnfiltered(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Query(context.Background(), Params{AboveHorizon: ptr(false)})
	require.NoError(t, err)
	require.Len(t, res.Observations, catalog.Default().Len())
	for i, id := range catalog.Default().IDs() {
		assert.Equal(t, id, res.Observations[i].ID)
	}
}

func TestQuery_EquivalentParamsShareCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Query(ctx, Params{Instant: "2024-12-07T12:00:00Z", Bodies: []string{"moon", "jupiter"}})
	require.NoError(t, err)
	calls := f.provider.Calls()
	require.Positive(t, calls)

	second, err := f.svc.Query(ctx, Params{
		Latitude:  ptr(28.6291),
		Longitude: ptr(-80.6249),
		Instant:   "2024-12-07T12:00:40Z",
		Bodies:    []string{"Jupiter", "moon"},
	})
	require.NoError(t, err)
	assert.Equal(t, calls, f.provider.Calls(), "equivalent query must not reach the provider")
	assert.Equal(t, first, second)

	_, err = f.svc.Query(ctx, Params{Instant: "2024-12-07T12:01:00Z", Bodies: []string{"moon", "jupiter"}})
	require.NoError(t, err)
	assert.Greater(t, f.provider.Calls(), calls)
}

func TestQuery_InvalidParams(t *testing.T) {
	tests := []struct {
		name   string
		params Params
		is     error
		field  string
	}{
		{"latitude", Params{Latitude: ptr(91.0)}, astro.ErrInvalidObserver, "latitude"},
		{"longitude", Params{Longitude: ptr(-180.5)}, astro.ErrInvalidObserver, "longitude"},
		{"elevation", Params{Elevation: ptr(-501.0)}, astro.ErrInvalidObserver, "elevation"},
		{"instant", Params{Instant: "next tuesday"}, astro.ErrInvalidObserver, "instant"},
		{"unknown body", Params{Bodies: []string{"mars", "vulcan"}}, catalog.ErrUnknownBody, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.svc.Query(context.Background(), tc.params)
			require.ErrorIs(t, err, tc.is)
			assert.True(t, IsInvalidParams(err))
			assert.Zero(t, f.provider.Calls(), "no provider call for invalid params")

			if tc.field != "" {
				var ioe *astro.InvalidObserverError
				require.ErrorAs(t, err, &ioe)
				assert.Equal(t, tc.field, ioe.Field)
			}
			assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Queries.WithLabelValues("invalid")))
		})
	}
}

func TestParseInstant(t *testing.T) {
	for _, s := range []string{
		"2024-12-07T12:00:00Z",
		"2024-12-07T12:00:00.000Z",
		"2024-12-07T07:00:00-05:00",
		"2024-12-07T12:00:00",
		"2024-12-07T12:00",
		"2024-12-07 12:00:00",
		" 2024-12-07T12:00:00Z ",
	} {
		got, err := ParseInstant(s)
		require.NoError(t, err, s)
		assert.True(t, got.Equal(december), s)
		assert.Equal(t, time.UTC, got.Location())
	}

	day, err := ParseInstant("2024-12-07")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 12, 7, 0, 0, 0, 0, time.UTC), day)

	for _, s := range []string{"", "12/07/2024", "2024-13-01T00:00:00Z", "now"} {
		_, err := ParseInstant(s)
		assert.ErrorIs(t, err, astro.ErrInvalidObserver, s)
	}
}

func TestQuery_AtWinsOverInstant(t *testing.T) {
	f := newFixture(t)
	at := december.Add(2 * time.Hour).In(time.FixedZone("EST", -5*3600))

	res, err := f.svc.Query(context.Background(), Params{At: &at, Instant: "garbage", Bodies: []string{"sun"}})
	require.NoError(t, err)
	assert.True(t, res.Instant.Equal(at))
	assert.Equal(t, time.UTC, res.Instant.Location())
}

func TestBody(t *testing.T) {
	f := newFixture(t, "neptune")
	ctx := context.Background()

	o, err := f.svc.Body(ctx, Params{}, "Saturn")
	require.NoError(t, err)
	assert.Equal(t, "saturn", o.ID)
	assert.False(t, o.AboveHorizon)
	assert.Less(t, o.Altitude, 0.0)

	_, err = f.svc.Body(ctx, Params{}, "neptune")
	assert.ErrorIs(t, err, ephem.ErrProviderUnavailable)

	_, err = f.svc.Body(ctx, Params{}, "vulcan")
	assert.ErrorIs(t, err, catalog.ErrUnknownBody)
}

func TestWindowAndTwilight(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	w, err := f.svc.Window(ctx, Params{}, "sun", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "sun", w.Body)
	assert.True(t, w.Valid)
	assert.Equal(t, december, w.Start)

	tw, err := f.svc.Twilight(ctx, Params{})
	require.NoError(t, err)
	assert.True(t, tw.Civil.Rise.Before(tw.Sun.Rise))
	assert.Equal(t, astro.GetSkyCondition(tw.SunAltitude), tw.Condition)

	_, err = f.svc.Twilight(ctx, Params{Latitude: ptr(100.0)})
	assert.ErrorIs(t, err, astro.ErrInvalidObserver)
	_, err = f.svc.Window(ctx, Params{}, "vulcan", 0, 0)
	assert.ErrorIs(t, err, catalog.ErrUnknownBody)
}

func TestMeta(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Query(context.Background(), Params{Bodies: []string{"sun"}})
	require.NoError(t, err)

	m := f.svc.Meta()
	assert.Equal(t, version.Version, m.EngineVersion)
	assert.Equal(t, "analytic", m.Provider)
	assert.Equal(t, catalog.Default().IDs(), m.Bodies)
	assert.Equal(t, cache.DefaultCoordTolerance, m.CoordTolerance)
	assert.Equal(t, cache.DefaultTimeResolution, m.TimeResolution)
	assert.Equal(t, 1, m.Cache.Entries)
	assert.Equal(t, uint64(1), m.Cache.Misses)
}

func TestClearCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Query(ctx, Params{Bodies: []string{"sun"}})
	require.NoError(t, err)
	require.Equal(t, 1, f.provider.Calls())

	assert.Equal(t, 1, f.svc.ClearCache())
	assert.Equal(t, 0, f.svc.Meta().Cache.Entries)

	_, err = f.svc.Query(ctx, Params{Bodies: []string{"sun"}})
	require.NoError(t, err)
	assert.Equal(t, 2, f.provider.Calls(), "cleared result is recomputed")
	assert.Nil(t, f.svc.Meta().Breakers)
}

func TestView_CoordinatesOnlyWhenRequested(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	plain, err := f.svc.Query(ctx, Params{Bodies: []string{"jupiter"}})
	require.NoError(t, err)
	v := NewView(plain)
	require.Len(t, v.Bodies, 1)
	assert.Nil(t, v.Bodies[0].RightAscension)
	assert.Nil(t, v.Bodies[0].Declination)

	raw, err := json.Marshal(v)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "rightAscension")
	assert.Contains(t, string(raw), `"altitude"`)
	assert.Contains(t, string(raw), `"constellation":"Taurus"`)

	withCoords, err := f.svc.Query(ctx, Params{Bodies: []string{"jupiter"}, ShowCoords: true})
	require.NoError(t, err)
	v = NewView(withCoords)
	require.NotNil(t, v.Bodies[0].RightAscension)
	assert.Equal(t, withCoords.Observations[0].RightAscension, v.Bodies[0].RightAscension.Degrees)
	assert.Equal(t, withCoords.Observations[0].Declination, v.Bodies[0].Declination.Degrees)
}

func TestNewBodyView_NullConstellation(t *testing.T) {
	b := NewBodyView(engine.Observation{ID: "moon"}, false)
	raw, err := json.Marshal(b)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"constellation":null`)
}

func TestSexagesimal(t *testing.T) {
	ra := NewRightAscension(75)
	assert.Equal(t, "05h00m00.0s", ra.Text)
	assert.Equal(t, 5, ra.Hours)

	assert.Equal(t, "00h00m00.0s", NewRightAscension(359.99999).Text, "rounds up and wraps")
	assert.Equal(t, "12h30m36.0s", NewRightAscension(187.65).Text)

	dec := NewDeclination(22.5125)
	assert.Equal(t, "+22°30'45.0\"", dec.Text)
	assert.Equal(t, 22, dec.Deg)
	assert.Equal(t, 30, dec.Minutes)
	assert.InDelta(t, 45.0, dec.Seconds, 1e-9)

	south := NewDeclination(-0.5)
	assert.True(t, south.Negative)
	assert.Equal(t, "-00°30'00.0\"", south.Text)

	assert.Equal(t, "+00°00'00.0\"", NewDeclination(-1e-9).Text, "no negative zero")
	assert.Equal(t, "-90°00'00.0\"", NewDeclination(-90).Text)
}
