package ephem

import (
	"math"
	"time"

	"github.com/litescript/ls-planets/internal/astro"
)

// satelliteOrbit is a mean circular orbit in the parent's equatorial plane.
type satelliteOrbit struct {
	parent     string
	periodDays float64
	radiusKm   float64
	epochLon   float64 // mean longitude at J2000 from the plane's node, degrees
	retrograde bool
}

// Parent north poles (IAU WGCCRE), J2000 RA/Dec degrees.
var planetPoles = map[string][2]float64{
	"jupiter": {268.057, 64.495},
	"saturn":  {40.589, 83.537},
	"uranus":  {257.311, -15.175},
	"neptune": {299.36, 43.46},
}

// Only the Galilean satellites carry a real epoch longitude; the other
// orbits place the satellite at its correct distance but arbitrary phase.
var satelliteOrbits = map[string]satelliteOrbit{
	"io":       {"jupiter", 1.769137786, 421700, 106.07719, false},
	"europa":   {"jupiter", 3.551181, 671034, 175.73161, false},
	"ganymede": {"jupiter", 7.15455296, 1070412, 120.55883, false},
	"callisto": {"jupiter", 16.6890184, 1882709, 84.44459, false},

	"mimas":     {"saturn", 0.942422, 185539, 0, false},
	"enceladus": {"saturn", 1.370218, 237948, 0, false},
	"dione":     {"saturn", 2.736915, 377396, 0, false},
	"rhea":      {"saturn", 4.518212, 527108, 0, false},
	"titan":     {"saturn", 15.945421, 1221870, 0, false},
	"iapetus":   {"saturn", 79.3215, 3560820, 0, false},

	"miranda": {"uranus", 1.413479, 129390, 0, false},
	"ariel":   {"uranus", 2.520379, 190900, 0, false},
	"umbriel": {"uranus", 4.144177, 266000, 0, false},
	"titania": {"uranus", 8.705872, 435910, 0, false},
	"oberon":  {"uranus", 13.463239, 583520, 0, false},

	"triton": {"neptune", 5.876854, 354759, 0, true},
	"nereid": {"neptune", 360.13619, 5513818, 0, false},
}

// offset returns the satellite's planetocentric position in km, J2000
// equatorial, at t.
func (o satelliteOrbit) offset(t time.Time) astro.Vec3 {
	pole := planetPoles[o.parent]
	p := astro.FromSpherical(pole[0], pole[1], 1)

	// n: ascending node of the parent equator on the J2000 equator
	n := astro.Vec3{X: -p.Y, Y: p.X}.Normalized()
	m := astro.Vec3{
		X: p.Y*n.Z - p.Z*n.Y,
		Y: p.Z*n.X - p.X*n.Z,
		Z: p.X*n.Y - p.Y*n.X,
	}

	days := astro.JulianDate(t) - astro.J2000
	motion := 360 / o.periodDays * days
	if o.retrograde {
		motion = -motion
	}
	theta := degToRad(math.Mod(o.epochLon+motion, 360))

	return n.Scale(o.radiusKm * math.Cos(theta)).Add(m.Scale(o.radiusKm * math.Sin(theta)))
}
