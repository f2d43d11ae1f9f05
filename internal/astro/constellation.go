package astro

import (
	"math"
	"sort"
	"time"
)

// eclipticSegment is the stretch of the J2000 ecliptic inside one
// constellation, starting at StartLon and running to the next segment.
type eclipticSegment struct {
	StartLon float64
	Name     string
}

// Ecliptic longitudes (J2000) where the IAU constellation boundaries cross
// the ecliptic, ascending.
var eclipticSegments = []eclipticSegment{
	{28.69, "Aries"},
	{53.42, "Taurus"},
	{90.14, "Gemini"},
	{118.26, "Cancer"},
	{138.18, "Leo"},
	{174.15, "Virgo"},
	{217.81, "Libra"},
	{241.14, "Scorpius"},
	{248.04, "Ophiuchus"},
	{266.28, "Sagittarius"},
	{299.68, "Capricornus"},
	{327.88, "Aquarius"},
	{351.57, "Pisces"},
}

// ConstellationBand is the ecliptic latitude half-width covered by the
// boundary table.
const ConstellationBand = 18.0

// ConstellationAt returns the constellation containing an apparent RA/Dec
// of date, or "" when the point lies outside the ecliptic band.
//
// A point exactly on a boundary belongs to the constellation whose segment
// starts there. Only the ecliptic crossings are modelled, so inside the
// band the answer is always a zodiacal constellation even where the real
// IAU region is another one, such as Orion or Cetus.
func ConstellationAt(raDeg, decDeg float64, t time.Time) string {
	eq := EquatorialOfDateToJ2000(FromSpherical(raDeg, decDeg, 1), t)
	lon, lat, _ := ToSpherical(EquatorialToEcliptic(eq))
	return constellationForEcliptic(lon, lat)
}

func constellationForEcliptic(lonDeg, latDeg float64) string {
	if math.IsNaN(lonDeg) || math.Abs(latDeg) > ConstellationBand {
		return ""
	}
	lon := normalizeAngle360(lonDeg)

	// index of the first segment starting strictly after lon
	i := sort.Search(len(eclipticSegments), func(i int) bool {
		return eclipticSegments[i].StartLon > lon
	})
	if i == 0 {
		// wraps past 0° back into the last segment
		return eclipticSegments[len(eclipticSegments)-1].Name
	}
	return eclipticSegments[i-1].Name
}
