package astro

import (
	"errors"
	"math"
	"time"
)

// AltitudeSample is a body's altitude at one instant.
type AltitudeSample struct {
	Time   time.Time
	AltDeg float64
}

// VisibilityWindow represents a rise-transit-set cycle for an object.
type VisibilityWindow struct {
	Rise          time.Time `json:"rise,omitzero"`    // Time object rises above the threshold
	Transit       time.Time `json:"transit,omitzero"` // Time of highest altitude
	Set           time.Time `json:"set,omitzero"`     // Time object sets below the threshold
	MaxAltitude   float64   `json:"maxAltitude"`      // Peak altitude in degrees
	Valid         bool      `json:"valid"`            // Whether a valid window was found
	AlwaysVisible bool      `json:"alwaysVisible"`    // Object never sets (circumpolar)
	NeverVisible  bool      `json:"neverVisible"`     // Object never rises
}

// HorizonAltitude is the geometric horizon.
const HorizonAltitude = 0.0

// Errors for visibility calculations.
var (
	ErrInsufficientSamples = errors.New("insufficient samples for visibility calculation")
)

// RiseSet computes rise, transit, and set times from altitude samples that
// cross threshold. Samples must be in chronological order and span enough
// time to capture a complete cycle (typically 24 hours).
//
// Horizon crossings are found by linear interpolation between samples and
// transit by parabolic refinement around the highest sample.
func RiseSet(samples []AltitudeSample, threshold float64) (VisibilityWindow, error) {
	if len(samples) < 3 {
		return VisibilityWindow{}, ErrInsufficientSamples
	}

	minAlt := 90.0
	maxAlt := -90.0
	for _, s := range samples {
		minAlt = math.Min(minAlt, s.AltDeg)
		maxAlt = math.Max(maxAlt, s.AltDeg)
	}

	if minAlt > threshold {
		transit, peak := MaxAltitude(samples)
		return VisibilityWindow{
			Transit:       transit,
			MaxAltitude:   peak,
			Valid:         true,
			AlwaysVisible: true,
		}, nil
	}
	if maxAlt < threshold {
		return VisibilityWindow{
			MaxAltitude:  maxAlt,
			Valid:        true,
			NeverVisible: true,
		}, nil
	}

	// First crossing from below to above
	var riseTime time.Time
	riseIdx := -1
	for i := 1; i < len(samples); i++ {
		prev, curr := samples[i-1], samples[i]
		if prev.AltDeg <= threshold && curr.AltDeg > threshold {
			riseTime = interpolateCrossing(prev.Time, curr.Time, prev.AltDeg, curr.AltDeg, threshold)
			riseIdx = i
			break
		}
	}

	// First crossing from above to below, after the rise when there is one
	var setTime time.Time
	setFound := false
	start := 1
	if riseIdx > 0 {
		start = riseIdx + 1
	}
	for i := start; i < len(samples); i++ {
		prev, curr := samples[i-1], samples[i]
		if prev.AltDeg > threshold && curr.AltDeg <= threshold {
			setTime = interpolateCrossing(prev.Time, curr.Time, prev.AltDeg, curr.AltDeg, threshold)
			setFound = true
			break
		}
	}

	// Transit is searched inside the up-window when one is bracketed
	lo, hi := 0, len(samples)
	if riseIdx > 0 {
		lo = riseIdx - 1
	}
	if setFound {
		for i := lo; i < len(samples); i++ {
			if !samples[i].Time.Before(setTime) {
				hi = i + 1
				break
			}
		}
	}
	if hi > len(samples) {
		hi = len(samples)
	}
	transitTime, transitAlt := MaxAltitude(samples[lo:hi])

	return VisibilityWindow{
		Rise:        riseTime,
		Transit:     transitTime,
		Set:         setTime,
		MaxAltitude: transitAlt,
		Valid:       riseIdx > 0 || setFound,
	}, nil
}

// MaxAltitude finds the time and value of maximum altitude.
func MaxAltitude(samples []AltitudeSample) (time.Time, float64) {
	if len(samples) == 0 {
		return time.Time{}, 0
	}

	maxIdx := 0
	for i, s := range samples {
		if s.AltDeg > samples[maxIdx].AltDeg {
			maxIdx = i
		}
	}

	if maxIdx == 0 || maxIdx == len(samples)-1 {
		return samples[maxIdx].Time, samples[maxIdx].AltDeg
	}
	return refineMaxAltitude(samples[maxIdx-1], samples[maxIdx], samples[maxIdx+1])
}

// refineMaxAltitude fits a parabola through three evenly spaced samples.
func refineMaxAltitude(prev, peak, next AltitudeSample) (time.Time, float64) {
	// Normalized time: t = -1 (prev), t = 0 (peak), t = +1 (next)
	y0, y1, y2 := prev.AltDeg, peak.AltDeg, next.AltDeg

	// y = at^2 + bt + c
	c := y1
	a := (y0+y2)/2 - c
	b := (y2 - y0) / 2

	// Only a downward-opening parabola has a maximum
	if a >= 0 {
		return peak.Time, peak.AltDeg
	}

	tMax := -b / (2 * a)
	if tMax < -1 {
		tMax = -1
	} else if tMax > 1 {
		tMax = 1
	}

	dt := peak.Time.Sub(prev.Time)
	return peak.Time.Add(time.Duration(float64(dt) * tMax)), a*tMax*tMax + b*tMax + c
}

// interpolateCrossing finds the time when altitude crosses a threshold.
func interpolateCrossing(t1, t2 time.Time, el1, el2, threshold float64) time.Time {
	if math.Abs(el2-el1) < 0.0001 {
		return t1
	}

	fraction := (threshold - el1) / (el2 - el1)
	if fraction < 0 {
		fraction = 0
	} else if fraction > 1 {
		fraction = 1
	}

	dt := t2.Sub(t1)
	return t1.Add(time.Duration(float64(dt) * fraction))
}

// AltitudeTier categorizes altitude for display.
type AltitudeTier int

const (
	AltitudeBelow    AltitudeTier = iota // Below horizon
	AltitudeLow                          // 0-15 degrees
	AltitudeMedium                       // 15-45 degrees
	AltitudeHigh                         // 45-75 degrees
	AltitudeOverhead                     // 75+ degrees
)

// GetAltitudeTier returns the tier for a given altitude.
func GetAltitudeTier(altDeg float64) AltitudeTier {
	switch {
	case altDeg < 0:
		return AltitudeBelow
	case altDeg < 15:
		return AltitudeLow
	case altDeg < 45:
		return AltitudeMedium
	case altDeg < 75:
		return AltitudeHigh
	default:
		return AltitudeOverhead
	}
}

// Description is a plain-language phrase for the tier.
func (t AltitudeTier) Description() string {
	switch t {
	case AltitudeBelow:
		return "below the horizon"
	case AltitudeLow:
		return "low"
	case AltitudeMedium:
		return "at medium height"
	case AltitudeHigh:
		return "high"
	default:
		return "almost directly overhead"
	}
}
