package ephem

import (
	"context"
	"time"

	"github.com/litescript/ls-planets/internal/astro"
)

// Validity window of the mean elements.
var (
	AnalyticStart = time.Date(1800, 1, 1, 0, 0, 0, 0, time.UTC)
	AnalyticEnd   = time.Date(2050, 12, 31, 23, 59, 59, 0, time.UTC)
)

// velocityStep is the half-width of the central difference used for
// Earth's velocity.
const velocityStep = 0.01 // days

const secondsPerDay = 86400.0

// AnalyticProvider computes states offline from mean orbital elements and a
// low-precision lunar theory. The Sun and planets come out within about an
// arcminute; the Moon is only good to about 0.3° in longitude and 0.2° in
// latitude, typically several arcminutes off.
type AnalyticProvider struct{}

// NewAnalyticProvider creates an analytic provider.
func NewAnalyticProvider() *AnalyticProvider {
	return &AnalyticProvider{}
}

// Name implements Provider.
func (p *AnalyticProvider) Name() string {
	return "analytic"
}

// Available implements Provider.
func (p *AnalyticProvider) Available(body string) bool {
	body = normalizeName(body)
	if body == "sun" || body == "moon" {
		return true
	}
	if _, ok := meanElements[body]; ok && body != "emb" {
		return true
	}
	_, ok := satelliteOrbits[body]
	return ok
}

// State implements Provider. Positions are astrometric (light-time
// corrected) J2000 geocentric; the transform applies aberration with the
// returned Earth velocity.
func (p *AnalyticProvider) State(ctx context.Context, body string, t time.Time) (astro.State, error) {
	if err := ctx.Err(); err != nil {
		return astro.State{}, unavailable(p.Name(), body, t, err)
	}
	body = normalizeName(body)
	if !p.Available(body) {
		return astro.State{}, unavailable(p.Name(), body, t, errUnsupportedBody)
	}
	if t.Before(AnalyticStart) || t.After(AnalyticEnd) {
		return astro.State{}, unavailable(p.Name(), body, t, errOutOfRange)
	}

	return astro.State{
		Position:      p.position(body, t),
		EarthVelocity: p.EarthVelocity(t),
		Frame:         astro.FrameJ2000,
	}, nil
}

// EarthVelocity returns Earth's heliocentric velocity in km/s, J2000
// equatorial. Outside the supported range it is zero, which disables
// aberration.
func (p *AnalyticProvider) EarthVelocity(t time.Time) astro.Vec3 {
	if t.Before(AnalyticStart) || t.After(AnalyticEnd) {
		return astro.Vec3{}
	}
	T := astro.JulianCenturiesTT(t)
	h := velocityStep / 36525
	d := earthHeliocentric(T + h).Sub(earthHeliocentric(T - h))
	return astro.EclipticToEquatorial(d.Scale(astro.AU / (2 * velocityStep * secondsPerDay)))
}

func (p *AnalyticProvider) position(body string, t time.Time) astro.Vec3 {
	switch body {
	case "moon":
		return moonGeocentric(t)
	case "sun":
		T := astro.JulianCenturiesTT(t)
		return astro.EclipticToEquatorial(earthHeliocentric(T).Scale(-astro.AU))
	}

	if orbit, ok := satelliteOrbits[body]; ok {
		parent, tau := planetGeocentric(orbit.parent, t)
		return parent.Add(orbit.offset(t.Add(-tau)))
	}
	pos, _ := planetGeocentric(body, t)
	return pos
}

// planetGeocentric returns the light-time corrected geocentric position of
// a planet in km, J2000 equatorial, and the light time.
func planetGeocentric(body string, t time.Time) (astro.Vec3, time.Duration) {
	el := meanElements[body]
	T := astro.JulianCenturiesTT(t)
	earth := earthHeliocentric(T)

	var geo astro.Vec3
	var tauDays float64
	for range 2 {
		geo = el.heliocentric(T - tauDays/36525).Sub(earth)
		tauDays = astro.LightTimeFromKm(geo.Norm()*astro.AU) / secondsPerDay
	}
	tau := time.Duration(tauDays * secondsPerDay * float64(time.Second))
	return astro.EclipticToEquatorial(geo.Scale(astro.AU)), tau
}

// earthHeliocentric returns Earth's heliocentric position in AU on the
// J2000 ecliptic.
func earthHeliocentric(T float64) astro.Vec3 {
	emb := meanElements["emb"].heliocentric(T)
	t := julianCenturiesToTime(T)
	moon := astro.EquatorialToEcliptic(moonGeocentric(t)).Scale(1 / astro.AU)
	return emb.Sub(moon.Scale(1 / earthMoonMassFactor))
}

// julianCenturiesToTime inverts astro.JulianCenturiesTT.
func julianCenturiesToTime(T float64) time.Time {
	days := T * 36525
	j2000 := time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)
	return j2000.Add(time.Duration(days*secondsPerDay*float64(time.Second)) - astro.DeltaT)
}
