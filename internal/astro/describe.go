package astro

import (
	"fmt"
	"math"
)

var compassPoints = [8]string{
	"North", "Northeast", "East", "Southeast",
	"South", "Southwest", "West", "Northwest",
}

// CompassDirection names the nearest of the eight principal compass points
// for an azimuth in degrees.
func CompassDirection(azDeg float64) string {
	idx := int(math.Floor(normalizeAngle360(azDeg)/45+0.5)) % len(compassPoints)
	return compassPoints[idx]
}

// SkyPositionDescription renders altitude and azimuth as a pointing hint,
// e.g. "looking Southeast, at medium height (30.0°)".
func SkyPositionDescription(altDeg, azDeg float64) string {
	return fmt.Sprintf("looking %s, %s (%.1f°)",
		CompassDirection(azDeg), GetAltitudeTier(altDeg).Description(), altDeg)
}

// Limiting magnitudes for naked-eye visibility.
const (
	DarkSkyMagnitudeLimit  = 6.0
	TwilightMagnitudeLimit = 3.0
	DaylightMagnitudeLimit = 0.0
	extinctionAltitude     = 10.0
	extinctionPerDegree    = 0.2
)

// MagnitudeLimit returns the faintest magnitude visible without optical aid
// under the given sky.
func MagnitudeLimit(c SkyCondition) float64 {
	switch c {
	case SkyDay:
		return DaylightMagnitudeLimit
	case SkyCivilTwilight, SkyNauticalTwilight:
		return TwilightMagnitudeLimit
	default:
		return DarkSkyMagnitudeLimit
	}
}

// ExtinctedMagnitude dims a magnitude near the horizon with a linear
// extinction model below 10 degrees altitude.
func ExtinctedMagnitude(mag, altDeg float64) float64 {
	if altDeg < extinctionAltitude {
		return mag + (extinctionAltitude-math.Max(altDeg, 0))*extinctionPerDegree
	}
	return mag
}

// NakedEyeVisible reports whether a body above the horizon is bright enough
// to see under limit once extinction is applied.
func NakedEyeVisible(altDeg, mag, limit float64) bool {
	if altDeg <= HorizonAltitude {
		return false
	}
	return ExtinctedMagnitude(mag, altDeg) <= limit
}
