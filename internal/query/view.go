package query

import (
	"fmt"
	"math"
	"time"

	"github.com/litescript/ls-planets/internal/catalog"
	"github.com/litescript/ls-planets/internal/engine"
)

// View is the presentation form of a Result, as served over HTTP and
// printed by the CLI.
type View struct {
	Observer ObserverView     `json:"observer"`
	Instant  time.Time        `json:"instant"`
	Bodies   []BodyView       `json:"bodies"`
	Warnings []engine.Warning `json:"warnings,omitempty"`
	Meta     engine.Metadata  `json:"meta"`
}

// ObserverView is the observer position used for a result.
type ObserverView struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Elevation float64 `json:"elevation"`
}

// BodyView is one observation. RightAscension and Declination are present
// only when the query asked for coordinates.
type BodyView struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Category catalog.Category `json:"category"`
	Parent   string           `json:"parent,omitempty"`

	Altitude       float64         `json:"altitude"`
	Azimuth        float64         `json:"azimuth"`
	RightAscension *RightAscension `json:"rightAscension,omitempty"`
	Declination    *Declination    `json:"declination,omitempty"`
	DistanceKm     float64         `json:"distanceKm"`
	DistanceAU     float64         `json:"distanceAu"`

	Magnitude     float64 `json:"magnitude"`
	Constellation *string `json:"constellation"`
	AboveHorizon  bool    `json:"aboveHorizon"`

	PhaseFraction *float64 `json:"phaseFraction,omitempty"`
	PhaseName     string   `json:"phaseName,omitempty"`

	Elongation          float64 `json:"elongation"`
	AngularDiameter     float64 `json:"angularDiameter"`
	Direction           string  `json:"direction"`
	AltitudeDescription string  `json:"altitudeDescription"`
	SkyPosition         string  `json:"skyPosition"`
	NakedEye            bool    `json:"nakedEye"`
}

// RightAscension in degrees and hours/minutes/seconds.
type RightAscension struct {
	Degrees float64 `json:"degrees"`
	Hours   int     `json:"hours"`
	Minutes int     `json:"minutes"`
	Seconds float64 `json:"seconds"`
	Text    string  `json:"text"`
}

// Declination in degrees and signed degrees/arcminutes/arcseconds.
type Declination struct {
	Degrees  float64 `json:"degrees"`
	Negative bool    `json:"negative"`
	Deg      int     `json:"deg"`
	Minutes  int     `json:"minutes"`
	Seconds  float64 `json:"seconds"`
	Text     string  `json:"text"`
}

// NewView converts a result for presentation.
func NewView(r engine.Result) View {
	v := View{
		Observer: ObserverView{
			Latitude:  r.Observer.LatDeg,
			Longitude: r.Observer.LonDeg,
			Elevation: r.Observer.ElevationM,
		},
		Instant:  r.Instant,
		Bodies:   make([]BodyView, 0, len(r.Observations)),
		Warnings: r.Warnings,
		Meta:     r.Meta,
	}
	for _, o := range r.Observations {
		v.Bodies = append(v.Bodies, NewBodyView(o, r.Options.ShowCoords))
	}
	return v
}

// NewBodyView converts one observation.
func NewBodyView(o engine.Observation, showCoords bool) BodyView {
	b := BodyView{
		ID:                  o.ID,
		Name:                o.Name,
		Category:            o.Category,
		Parent:              o.Parent,
		Altitude:            o.Altitude,
		Azimuth:             o.Azimuth,
		DistanceKm:          o.DistanceKm,
		DistanceAU:          o.DistanceAU,
		Magnitude:           o.Magnitude,
		AboveHorizon:        o.AboveHorizon,
		PhaseFraction:       o.PhaseFraction,
		PhaseName:           o.PhaseName,
		Elongation:          o.Elongation,
		AngularDiameter:     o.AngularDiameter,
		Direction:           o.Direction,
		AltitudeDescription: o.AltitudeDescription,
		SkyPosition:         o.SkyPosition,
		NakedEye:            o.NakedEye,
	}
	if o.Constellation != "" {
		c := o.Constellation
		b.Constellation = &c
	}
	if o.PhaseFraction != nil {
		f := *o.PhaseFraction
		b.PhaseFraction = &f
	}
	if showCoords {
		ra := NewRightAscension(o.RightAscension)
		dec := NewDeclination(o.Declination)
		b.RightAscension = &ra
		b.Declination = &dec
	}
	return b
}

// NewRightAscension splits deg into hours, minutes and tenths of a second.
func NewRightAscension(deg float64) RightAscension {
	h, m, s := sexagesimal(deg / 15)
	if h >= 24 {
		h -= 24
	}
	return RightAscension{
		Degrees: deg,
		Hours:   h,
		Minutes: m,
		Seconds: s,
		Text:    fmt.Sprintf("%02dh%02dm%04.1fs", h, m, s),
	}
}

// NewDeclination splits deg into degrees, arcminutes and tenths of an
// arcsecond.
func NewDeclination(deg float64) Declination {
	d, m, s := sexagesimal(math.Abs(deg))
	neg := deg < 0 && (d != 0 || m != 0 || s != 0)
	sign := "+"
	if neg {
		sign = "-"
	}
	return Declination{
		Degrees:  deg,
		Negative: neg,
		Deg:      d,
		Minutes:  m,
		Seconds:  s,
		Text:     fmt.Sprintf("%s%02d°%02d'%04.1f\"", sign, d, m, s),
	}
}

// sexagesimal splits a non-negative value into whole units, minutes and
// seconds rounded to a tenth, carrying so seconds stay below 60.
func sexagesimal(v float64) (int, int, float64) {
	tenths := int64(math.Round(v * 36000))
	whole := tenths / 36000
	rem := tenths % 36000
	return int(whole), int(rem / 600), float64(rem%600) / 10
}
