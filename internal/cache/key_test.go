package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/litescript/ls-planets/internal/astro"
	"github.com/litescript/ls-planets/internal/engine"
)

func TestKeyFor_Canonical(t *testing.T) {
	obs := astro.Observer{LatDeg: 28.627222, LonDeg: -80.620833, ElevationM: 3.4}
	at := time.Date(2024, 12, 7, 12, 0, 42, 0, time.UTC)

	got := KeyFor(obs, at, []string{"Moon", "jupiter", "moon"}, engine.Options{AboveHorizonOnly: true}, DefaultTolerance())
	want := Key("lat=28.63|lon=-80.62|elev=3|t=2024-12-07T12:00:00Z|bodies=jupiter,moon|coords=false|above=true")
	assert.Equal(t, want, got)
}

func TestKeyFor_Equivalence(t *testing.T) {
	tol := DefaultTolerance()
	base := astro.Observer{LatDeg: 28.627222, LonDeg: -80.620833}
	at := time.Date(2024, 12, 7, 12, 0, 0, 0, time.UTC)
	key := KeyFor(base, at, nil, engine.Options{}, tol)

	same := []struct {
		name string
		obs  astro.Observer
		at   time.Time
		ids  []string
	}{
		{"within coordinate tolerance", astro.Observer{LatDeg: 28.6291, LonDeg: -80.6249}, at, nil},
		{"same minute", base, at.Add(59 * time.Second), nil},
		{"elevation rounds", astro.Observer{LatDeg: 28.627222, LonDeg: -80.620833, ElevationM: 0.4}, at, nil},
		{"other time zone", base, at.In(time.FixedZone("EST", -5*3600)), nil},
		{"blank ids mean all", base, at, []string{" "}},
	}
	for _, tc := range same {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, key, KeyFor(tc.obs, tc.at, tc.ids, engine.Options{}, tol))
		})
	}

	different := []struct {
		name string
		obs  astro.Observer
		at   time.Time
		opts engine.Options
	}{
		{"latitude", astro.Observer{LatDeg: 28.64, LonDeg: -80.620833}, at, engine.Options{}},
		{"next minute", base, at.Add(time.Minute), engine.Options{}},
		{"show coords", base, at, engine.Options{ShowCoords: true}},
		{"above horizon", base, at, engine.Options{AboveHorizonOnly: true}},
	}
	for _, tc := range different {
		t.Run(tc.name, func(t *testing.T) {
			assert.NotEqual(t, key, KeyFor(tc.obs, tc.at, nil, tc.opts, tol))
		})
	}
}

func TestKeyFor_NegativeZeroAndCoarseTolerance(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	a := KeyFor(astro.Observer{LatDeg: -0.001}, at, nil, engine.Options{}, Tolerance{})
	b := KeyFor(astro.Observer{LatDeg: 0.001}, at, nil, engine.Options{}, Tolerance{})
	assert.Equal(t, a, b)
	assert.Contains(t, string(a), "lat=0.00|")

	coarse := Tolerance{Coord: 0.5, Time: time.Hour}
	k := KeyFor(astro.Observer{LatDeg: 40.3, LonDeg: -3.6}, at.Add(59*time.Minute), []string{"sun"}, engine.Options{}, coarse)
	assert.Equal(t, Key("lat=40.5|lon=-3.5|elev=0|t=2024-01-01T00:00:00Z|bodies=sun|coords=false|above=false"), k)
}

func TestDecimals(t *testing.T) {
	assert.Equal(t, 2, decimals(0.01))
	assert.Equal(t, 1, decimals(0.5))
	assert.Equal(t, 0, decimals(1))
	assert.Equal(t, 0, decimals(5))
	assert.Equal(t, 3, decimals(0.001))
}
