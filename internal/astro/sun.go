package astro

import (
	"fmt"
	"math"
	"time"
)

// SunPosition calculates the apparent equatorial coordinates of the Sun.
// Uses a simplified solar ephemeris based on the Astronomical Almanac.
// Accuracy: ~0.01 degrees for RA, ~0.001 degrees for Dec.
func SunPosition(t time.Time) (raDeg, decDeg float64) {
	jd := julianDate(t)

	// Julian centuries from J2000.0
	T := (jd - 2451545.0) / 36525.0

	// Mean longitude of the Sun (degrees)
	L0 := normalizeAngle360(280.46646 + 36000.76983*T + 0.0003032*T*T)

	// Mean anomaly of the Sun (degrees)
	M := normalizeAngle360(357.52911 + 35999.05029*T - 0.0001537*T*T)
	Mrad := degToRad(M)

	// Equation of center (degrees)
	C := (1.914602 - 0.004817*T - 0.000014*T*T) * math.Sin(Mrad)
	C += (0.019993 - 0.000101*T) * math.Sin(2*Mrad)
	C += 0.000289 * math.Sin(3*Mrad)

	sunLon := L0 + C

	// Apparent longitude (aberration and nutation)
	omega := 125.04 - 1934.136*T
	sunLonApp := sunLon - 0.00569 - 0.00478*math.Sin(degToRad(omega))

	eps0 := 23.439291 - 0.0130042*T - 0.00000016*T*T + 0.000000504*T*T*T
	eps := eps0 + 0.00256*math.Cos(degToRad(omega))

	sunLonRad := degToRad(sunLonApp)
	epsRad := degToRad(eps)

	ra := math.Atan2(math.Cos(epsRad)*math.Sin(sunLonRad), math.Cos(sunLonRad))
	raDeg = normalizeAngle360(radToDeg(ra))
	decDeg = radToDeg(math.Asin(math.Sin(epsRad) * math.Sin(sunLonRad)))

	return raDeg, decDeg
}

// AngularSeparation calculates the angular separation between two points on the celestial sphere.
// All coordinates in degrees. Returns separation in degrees.
func AngularSeparation(ra1, dec1, ra2, dec2 float64) float64 {
	ra1Rad := degToRad(ra1)
	dec1Rad := degToRad(dec1)
	ra2Rad := degToRad(ra2)
	dec2Rad := degToRad(dec2)

	// Haversine formula
	dRA := ra2Rad - ra1Rad
	dDec := dec2Rad - dec1Rad

	a := math.Sin(dDec/2)*math.Sin(dDec/2) +
		math.Cos(dec1Rad)*math.Cos(dec2Rad)*math.Sin(dRA/2)*math.Sin(dRA/2)
	if a > 1 {
		a = 1
	}

	return radToDeg(2 * math.Asin(math.Sqrt(a)))
}

// SkyCondition classifies the sky by the Sun's altitude.
type SkyCondition int

const (
	SkyDay                  SkyCondition = iota // Sun above the horizon
	SkyCivilTwilight                            // 0 to -6 degrees
	SkyNauticalTwilight                         // -6 to -12 degrees
	SkyAstronomicalTwilight                     // -12 to -18 degrees
	SkyNight                                    // below -18 degrees
)

// Solar altitude thresholds in degrees.
const (
	SunriseAltitude              = -0.833 // upper limb on the horizon with standard refraction
	CivilTwilightAltitude        = -6.0
	NauticalTwilightAltitude     = -12.0
	AstronomicalTwilightAltitude = -18.0
)

func (c SkyCondition) String() string {
	switch c {
	case SkyDay:
		return "day"
	case SkyCivilTwilight:
		return "civil twilight"
	case SkyNauticalTwilight:
		return "nautical twilight"
	case SkyAstronomicalTwilight:
		return "astronomical twilight"
	case SkyNight:
		return "night"
	default:
		return "unknown"
	}
}

// MarshalText renders the condition name in JSON output.
func (c SkyCondition) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText parses a condition name.
func (c *SkyCondition) UnmarshalText(b []byte) error {
	for cand := SkyDay; cand <= SkyNight; cand++ {
		if cand.String() == string(b) {
			*c = cand
			return nil
		}
	}
	return fmt.Errorf("unknown sky condition %q", b)
}

// GetSkyCondition returns the condition for a given solar altitude.
func GetSkyCondition(sunAltDeg float64) SkyCondition {
	switch {
	case sunAltDeg > 0:
		return SkyDay
	case sunAltDeg > CivilTwilightAltitude:
		return SkyCivilTwilight
	case sunAltDeg > NauticalTwilightAltitude:
		return SkyNauticalTwilight
	case sunAltDeg > AstronomicalTwilightAltitude:
		return SkyAstronomicalTwilight
	default:
		return SkyNight
	}
}

// normalizeAngle360 normalizes an angle to [0, 360).
func normalizeAngle360(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	// a tiny negative input rounds up to exactly 360 after the shift
	if a >= 360 {
		a = 0
	}
	return a
}

// NormalizeDegrees is the exported form of normalizeAngle360.
func NormalizeDegrees(a float64) float64 {
	return normalizeAngle360(a)
}
