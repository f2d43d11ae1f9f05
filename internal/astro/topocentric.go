package astro

import (
	"fmt"
	"math"
	"time"
)

// Frame identifies the reference frame of a State position.
type Frame int

const (
	// FrameJ2000 is an astrometric geocentric position on the J2000 equator.
	FrameJ2000 Frame = iota
	// FrameApparent is an apparent geocentric position of date.
	FrameApparent
	// FrameTopocentric means the source already applied parallax; RA/Dec
	// are passed through.
	FrameTopocentric
)

func (f Frame) String() string {
	switch f {
	case FrameJ2000:
		return "j2000"
	case FrameApparent:
		return "apparent"
	case FrameTopocentric:
		return "topocentric"
	default:
		return "unknown"
	}
}

// State is a body position as delivered by an ephemeris source.
type State struct {
	Position      Vec3 // km, Earth-centered (or observer-centered for FrameTopocentric)
	EarthVelocity Vec3 // km/s, Earth's heliocentric velocity in J2000; zero skips aberration
	Frame         Frame
}

// TransformOptions tunes Topocentric.
type TransformOptions struct {
	// TopocentricEquatorial reports parallax-corrected RA/Dec instead of
	// geocentric apparent RA/Dec. Az/El are always topocentric.
	TopocentricEquatorial bool
}

// WGS84 ellipsoid.
const (
	EarthEquatorialRadiusKm = 6378.137
	earthFlattening         = 1 / 298.257223563
)

// ObserverPosition returns the observer's geocentric position in km on the
// true equator of date, rotated by local apparent sidereal time.
func ObserverPosition(obs Observer, t time.Time) Vec3 {
	lat := degToRad(obs.LatDeg)
	lst := degToRad(localApparentSiderealTime(t, obs.LonDeg))
	h := obs.ElevationM / 1000

	b := 1 - earthFlattening
	c := 1 / math.Sqrt(math.Cos(lat)*math.Cos(lat)+b*b*math.Sin(lat)*math.Sin(lat))
	s := b * b * c

	rxy := (EarthEquatorialRadiusKm*c + h) * math.Cos(lat)
	return Vec3{
		X: rxy * math.Cos(lst),
		Y: rxy * math.Sin(lst),
		Z: (EarthEquatorialRadiusKm*s + h) * math.Sin(lat),
	}
}

// Topocentric turns a body state into observer-relative altitude/azimuth
// plus right ascension/declination. It fails with *InvalidObserverError
// before doing any work when obs is out of bounds.
func Topocentric(st State, obs Observer, t time.Time, opts TransformOptions) (SkyCoord, error) {
	if err := obs.Validate(); err != nil {
		return SkyCoord{}, err
	}

	var geo Vec3
	switch st.Frame {
	case FrameJ2000:
		geo = ApparentPlace(st.Position, st.EarthVelocity, t)
	case FrameApparent:
		geo = st.Position
	case FrameTopocentric:
		ra, dec, r := ToSpherical(st.Position)
		return EquatorialToHorizontal(SkyCoord{RAdeg: ra, DecDeg: dec, RangeKm: r}, obs, t), nil
	default:
		return SkyCoord{}, fmt.Errorf("unsupported frame %v", st.Frame)
	}

	topo := geo.Sub(ObserverPosition(obs, t))
	raTopo, decTopo, rng := ToSpherical(topo)

	out := EquatorialToHorizontal(SkyCoord{RAdeg: raTopo, DecDeg: decTopo, RangeKm: rng}, obs, t)
	if !opts.TopocentricEquatorial {
		out.RAdeg, out.DecDeg, _ = ToSpherical(geo)
	}
	return out, nil
}
