// Package astro provides astronomical coordinate transformations and sky math.
package astro

import (
	"math"
	"time"
)

// SkyCoord represents celestial coordinates with both equatorial (RA/Dec)
// and horizontal (Az/El) components.
type SkyCoord struct {
	// Equatorial coordinates (apparent, equinox of date)
	RAdeg  float64 // Right Ascension in degrees [0, 360)
	DecDeg float64 // Declination in degrees [-90, +90]

	// Horizontal coordinates (observer-relative)
	AzDeg float64 // Azimuth in degrees (0=N, 90=E, 180=S, 270=W)
	ElDeg float64 // Elevation/Altitude in degrees (0=horizon, 90=zenith)

	// Topocentric distance
	RangeKm float64
}

// Observer represents a ground-based observer location.
type Observer struct {
	LatDeg     float64 // Geodetic latitude in degrees (north positive)
	LonDeg     float64 // Longitude in degrees (east positive)
	ElevationM float64 // Height above the WGS84 ellipsoid in meters
	Name       string  // Optional name for the site
}

// Observer bounds.
const (
	MinLatitude   = -90.0
	MaxLatitude   = 90.0
	MinLongitude  = -180.0
	MaxLongitude  = 180.0
	MinElevationM = -500.0
)

// Validate reports an *InvalidObserverError when the location is outside
// the supported range.
func (o Observer) Validate() error {
	switch {
	case math.IsNaN(o.LatDeg) || o.LatDeg < MinLatitude || o.LatDeg > MaxLatitude:
		return &InvalidObserverError{Field: "latitude", Value: o.LatDeg, Reason: "must be within [-90, 90]"}
	case math.IsNaN(o.LonDeg) || o.LonDeg < MinLongitude || o.LonDeg > MaxLongitude:
		return &InvalidObserverError{Field: "longitude", Value: o.LonDeg, Reason: "must be within [-180, 180]"}
	case math.IsNaN(o.ElevationM) || math.IsInf(o.ElevationM, 0) || o.ElevationM < MinElevationM:
		return &InvalidObserverError{Field: "elevation", Value: o.ElevationM, Reason: "must be at least -500 m"}
	}
	return nil
}

// EquatorialToHorizontal converts equatorial coordinates (RA/Dec of date) to
// horizontal coordinates (Az/El) for a given observer and time.
//
// The function preserves the input RA/Dec values and populates Az/El.
// Uses standard astronomical conventions:
//   - Azimuth: 0° = North, 90° = East, 180° = South, 270° = West
//   - Elevation: 0° = horizon, 90° = zenith
func EquatorialToHorizontal(eq SkyCoord, obs Observer, t time.Time) SkyCoord {
	lst := localApparentSiderealTime(t, obs.LonDeg)
	az, el := hourAngleToHorizontal(lst-eq.RAdeg, eq.DecDeg, obs.LatDeg)

	return SkyCoord{
		RAdeg:   eq.RAdeg,
		DecDeg:  eq.DecDeg,
		AzDeg:   az,
		ElDeg:   el,
		RangeKm: eq.RangeKm,
	}
}

// hourAngleToHorizontal rotates hour angle/declination into azimuth and
// altitude for a site at latitude latDeg. All values in degrees.
func hourAngleToHorizontal(haDeg, decDeg, latDeg float64) (azDeg, elDeg float64) {
	lat := degToRad(latDeg)
	dec := degToRad(decDeg)
	ha := degToRad(haDeg)

	sinAlt := math.Sin(dec)*math.Sin(lat) + math.Cos(dec)*math.Cos(lat)*math.Cos(ha)
	if sinAlt > 1 {
		sinAlt = 1
	} else if sinAlt < -1 {
		sinAlt = -1
	}

	// atan2 keeps the quadrant without the acos sign ambiguity
	y := -math.Cos(dec) * math.Sin(ha)
	x := math.Sin(dec)*math.Cos(lat) - math.Cos(dec)*math.Sin(lat)*math.Cos(ha)

	return normalizeAngle360(radToDeg(math.Atan2(y, x))), radToDeg(math.Asin(sinAlt))
}

// localSiderealTime calculates the Local Mean Sidereal Time in degrees
// for a given UTC time and observer longitude.
func localSiderealTime(t time.Time, lonDeg float64) float64 {
	return normalizeAngle360(greenwichMeanSiderealTime(t) + lonDeg)
}

// localApparentSiderealTime is the local sidereal time corrected by the
// equation of the equinoxes.
func localApparentSiderealTime(t time.Time, lonDeg float64) float64 {
	return normalizeAngle360(greenwichApparentSiderealTime(t) + lonDeg)
}

// greenwichMeanSiderealTime calculates GMST in degrees for a given UTC time.
// Uses the IAU formula based on Julian Date.
func greenwichMeanSiderealTime(t time.Time) float64 {
	jd := julianDate(t)

	// Julian centuries since J2000.0
	T := (jd - 2451545.0) / 36525.0

	// GMST = 280.46061837 + 360.98564736629*(JD-2451545) + 0.000387933*T^2 - T^3/38710000
	gmst := 280.46061837 +
		360.98564736629*(jd-2451545.0) +
		0.000387933*T*T -
		T*T*T/38710000.0

	return normalizeAngle360(gmst)
}

// greenwichApparentSiderealTime adds the equation of the equinoxes to GMST.
func greenwichApparentSiderealTime(t time.Time) float64 {
	n := nutationAt(julianCenturiesTT(t))
	eqeq := n.dPsi * math.Cos(n.trueObliquity())
	return normalizeAngle360(greenwichMeanSiderealTime(t) + radToDeg(eqeq))
}

// julianDate calculates the Julian Date for a given time.
func julianDate(t time.Time) float64 {
	t = t.UTC()

	y := float64(t.Year())
	m := float64(t.Month())
	d := float64(t.Day())

	h := float64(t.Hour())
	min := float64(t.Minute())
	sec := float64(t.Second())
	ns := float64(t.Nanosecond())

	dayFrac := (h + min/60 + sec/3600 + ns/3600e9) / 24.0

	// January/February count as months 13/14 of the previous year
	if m <= 2 {
		y--
		m += 12
	}

	// Gregorian calendar correction
	A := math.Floor(y / 100)
	B := 2 - A + math.Floor(A/4)

	return math.Floor(365.25*(y+4716)) +
		math.Floor(30.6001*(m+1)) +
		d + dayFrac + B - 1524.5
}

// JulianDate returns the Julian Date (UTC) of t.
func JulianDate(t time.Time) float64 {
	return julianDate(t)
}

// DeltaT is the TT-UTC offset applied at every epoch.
const DeltaT = 69200 * time.Millisecond

// J2000 is the Julian Date of the J2000.0 epoch.
const J2000 = 2451545.0

// julianCenturiesTT returns Julian centuries of Terrestrial Time since J2000.
func julianCenturiesTT(t time.Time) float64 {
	return (julianDate(t) + DeltaT.Seconds()/86400 - J2000) / 36525.0
}

// JulianCenturiesTT is the exported form of julianCenturiesTT.
func JulianCenturiesTT(t time.Time) float64 {
	return julianCenturiesTT(t)
}

// degToRad converts degrees to radians.
func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// radToDeg converts radians to degrees.
func radToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}
