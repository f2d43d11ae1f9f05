package ephem

import (
	"math"
	"time"

	"github.com/litescript/ls-planets/internal/astro"
)

// Earth/Moon mass ratio plus one; divides the Moon's geocentric vector to
// get the Earth's offset from the barycenter.
const earthMoonMassFactor = 82.30056

type lunarTerm struct {
	amp, phase, rate float64 // degrees, degrees, degrees per century
}

// Low-precision lunar theory from the Astronomical Almanac, accurate to
// about 0.3 degrees in longitude and 0.2 in latitude.
var (
	lunarLongitudeTerms = []lunarTerm{
		{6.29, 135.0, 477198.87},
		{-1.27, 259.3, -413335.36},
		{0.66, 235.7, 890534.22},
		{0.21, 269.9, 954397.74},
		{-0.19, 357.5, 35999.05},
		{-0.11, 186.5, 966404.03},
	}
	lunarLatitudeTerms = []lunarTerm{
		{5.13, 93.3, 483202.02},
		{0.28, 228.2, 960400.89},
		{-0.28, 318.3, 6003.15},
		{-0.17, 217.6, -407332.21},
	}
	lunarParallaxTerms = []lunarTerm{
		{0.0518, 135.0, 477198.87},
		{0.0095, 259.3, -413335.36},
		{0.0078, 235.7, 890534.22},
		{0.0028, 269.9, 954397.74},
	}
)

func sumSin(terms []lunarTerm, T float64) float64 {
	var s float64
	for _, t := range terms {
		s += t.amp * math.Sin(degToRad(t.phase+t.rate*T))
	}
	return s
}

func sumCos(terms []lunarTerm, T float64) float64 {
	var s float64
	for _, t := range terms {
		s += t.amp * math.Cos(degToRad(t.phase+t.rate*T))
	}
	return s
}

// moonGeocentric returns the Moon's geocentric position in km, J2000
// equatorial.
func moonGeocentric(t time.Time) astro.Vec3 {
	T := astro.JulianCenturiesTT(t)

	lon := 218.32 + 481267.881*T + sumSin(lunarLongitudeTerms, T)
	lat := sumSin(lunarLatitudeTerms, T)
	parallax := 0.9508 + sumCos(lunarParallaxTerms, T)
	dist := 6378.14 / math.Sin(degToRad(parallax))

	return astro.EclipticOfDateToJ2000(astro.FromSpherical(lon, lat, dist), t)
}
