package astro

import (
	"math"
	"time"
)

const arcsecToRad = math.Pi / (180 * 3600)

// nutation holds the low-precision nutation angles, radians.
type nutation struct {
	dPsi float64 // nutation in longitude
	dEps float64 // nutation in obliquity
	eps0 float64 // mean obliquity of date
}

func (n nutation) trueObliquity() float64 {
	return n.eps0 + n.dEps
}

// nutationAt evaluates the four largest nutation terms (accurate to about
// 0.5") for T Julian centuries of TT.
func nutationAt(T float64) nutation {
	omega := degToRad(125.04452 - 1934.136261*T)
	L := degToRad(280.4665 + 36000.7698*T)
	Lp := degToRad(218.3165 + 481267.8813*T)

	dPsi := -17.20*math.Sin(omega) - 1.32*math.Sin(2*L) - 0.23*math.Sin(2*Lp) + 0.21*math.Sin(2*omega)
	dEps := 9.20*math.Cos(omega) + 0.57*math.Cos(2*L) + 0.10*math.Cos(2*Lp) - 0.09*math.Cos(2*omega)
	eps0 := 84381.448 - 46.8150*T - 0.00059*T*T + 0.001813*T*T*T

	return nutation{
		dPsi: dPsi * arcsecToRad,
		dEps: dEps * arcsecToRad,
		eps0: eps0 * arcsecToRad,
	}
}

// precessionMatrix returns the IAU 1976 rotation from J2000 to the mean
// equator and equinox of date.
func precessionMatrix(T float64) [3][3]float64 {
	zeta := (2306.2181*T + 0.30188*T*T + 0.017998*T*T*T) * arcsecToRad
	z := (2306.2181*T + 1.09468*T*T + 0.018203*T*T*T) * arcsecToRad
	theta := (2004.3109*T - 0.42665*T*T - 0.041833*T*T*T) * arcsecToRad

	cz, sz := math.Cos(zeta), math.Sin(zeta)
	cZ, sZ := math.Cos(z), math.Sin(z)
	ct, st := math.Cos(theta), math.Sin(theta)

	return [3][3]float64{
		{cz*ct*cZ - sz*sZ, -sz*ct*cZ - cz*sZ, -st * cZ},
		{cz*ct*sZ + sz*cZ, -sz*ct*sZ + cz*cZ, -st * sZ},
		{cz * st, -sz * st, ct},
	}
}

func precess(v Vec3, T float64) Vec3 {
	m := precessionMatrix(T)
	return Vec3{
		X: m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z,
		Y: m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z,
		Z: m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z,
	}
}

// nutate rotates a mean-of-date equatorial vector to the true equator and
// equinox of date.
func nutate(v Vec3, n nutation) Vec3 {
	ecl := rotX(v, n.eps0)
	ecl = rotZ(ecl, -n.dPsi)
	return rotX(ecl, -n.trueObliquity())
}

// aberrate shifts a geocentric direction by the annual aberration for an
// observer moving at velocity (km/s, same frame). Distance is preserved.
func aberrate(v Vec3, velocity Vec3) Vec3 {
	r := v.Norm()
	if r == 0 {
		return v
	}
	u := v.Normalized().Add(velocity.Scale(1 / SpeedOfLight))
	return u.Normalized().Scale(r)
}

// ApparentPlace converts an astrometric J2000 geocentric vector to the
// apparent geocentric vector of date.
func ApparentPlace(v Vec3, earthVelocity Vec3, t time.Time) Vec3 {
	T := julianCenturiesTT(t)
	v = aberrate(v, earthVelocity)
	v = precess(v, T)
	return nutate(v, nutationAt(T))
}

// J2000ToEclipticOfDate rotates a J2000 equatorial vector onto the mean
// ecliptic and equinox of date.
func J2000ToEclipticOfDate(v Vec3, t time.Time) Vec3 {
	T := julianCenturiesTT(t)
	return rotX(precess(v, T), nutationAt(T).eps0)
}

// EquatorialOfDateToJ2000 undoes precession for a mean-of-date vector.
func EquatorialOfDateToJ2000(v Vec3, t time.Time) Vec3 {
	// orthogonal matrix: the transpose is the inverse
	m := precessionMatrix(julianCenturiesTT(t))
	return Vec3{
		X: m[0][0]*v.X + m[1][0]*v.Y + m[2][0]*v.Z,
		Y: m[0][1]*v.X + m[1][1]*v.Y + m[2][1]*v.Z,
		Z: m[0][2]*v.X + m[1][2]*v.Y + m[2][2]*v.Z,
	}
}

// EclipticOfDateToJ2000 rotates a mean ecliptic-of-date vector to J2000
// equatorial.
func EclipticOfDateToJ2000(v Vec3, t time.Time) Vec3 {
	eq := rotX(v, -nutationAt(julianCenturiesTT(t)).eps0)
	return EquatorialOfDateToJ2000(eq, t)
}
