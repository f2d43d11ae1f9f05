package astro

import "math"

// PhaseAngle is the Sun-body-observer angle in degrees, given geocentric
// positions of the Sun and the body in the same frame.
func PhaseAngle(sun, body Vec3) float64 {
	return AngleBetween(sun.Sub(body), body.Scale(-1))
}

// IlluminatedFraction is the lit fraction of the visible disk for a phase
// angle in degrees.
func IlluminatedFraction(phaseAngleDeg float64) float64 {
	return (1 + math.Cos(degToRad(phaseAngleDeg))) / 2
}

var phaseNames = [8]string{
	"New Moon", "Waxing Crescent", "First Quarter", "Waxing Gibbous",
	"Full Moon", "Waning Gibbous", "Last Quarter", "Waning Crescent",
}

// PhaseName names the lunar phase from the Moon-Sun difference in ecliptic
// longitude (0 = new, 180 = full). Each name covers a 45 degree bin
// centered on its nominal elongation.
func PhaseName(elongationLonDeg float64) string {
	idx := int(math.Floor(normalizeAngle360(elongationLonDeg)/45+0.5)) % len(phaseNames)
	return phaseNames[idx]
}

// AngularDiameter returns the apparent diameter in arcseconds of a sphere of
// radiusKm seen from distanceKm.
func AngularDiameter(radiusKm, distanceKm float64) float64 {
	if distanceKm <= radiusKm {
		return 0
	}
	return radToDeg(2*math.Asin(radiusKm/distanceKm)) * 3600
}
