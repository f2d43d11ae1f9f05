package engine

import (
	"time"

	"github.com/litescript/ls-planets/internal/astro"
	"github.com/litescript/ls-planets/internal/catalog"
)

// Options are the per-query switches.
type Options struct {
	// ShowCoords asks the presentation layer to include RA/Dec.
	ShowCoords bool `json:"showCoords"`
	// AboveHorizonOnly drops bodies at or below the geometric horizon.
	AboveHorizonOnly bool `json:"aboveHorizon"`
}

// Observation is the computed sky state of one body.
type Observation struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Category catalog.Category `json:"category"`
	Parent   string           `json:"parent,omitempty"`

	Altitude       float64 `json:"altitude"`
	Azimuth        float64 `json:"azimuth"`
	RightAscension float64 `json:"rightAscension"`
	Declination    float64 `json:"declination"`
	DistanceKm     float64 `json:"distanceKm"`
	DistanceAU     float64 `json:"distanceAu"`

	Magnitude     float64 `json:"magnitude"`
	Constellation string  `json:"constellation,omitempty"`
	AboveHorizon  bool    `json:"aboveHorizon"`

	// Moon only.
	PhaseFraction *float64 `json:"phaseFraction,omitempty"`
	PhaseName     string   `json:"phaseName,omitempty"`

	Elongation          float64 `json:"elongation"`
	AngularDiameter     float64 `json:"angularDiameter"`
	Direction           string  `json:"direction"`
	AltitudeDescription string  `json:"altitudeDescription"`
	SkyPosition         string  `json:"skyPosition"`
	NakedEye            bool    `json:"nakedEye"`
}

// Warning records a body that was left out of a result.
type Warning struct {
	Body    string `json:"body"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Metadata describes how a result was produced.
type Metadata struct {
	EngineVersion string             `json:"engineVersion"`
	Provider      string             `json:"provider"`
	ComputedAt    time.Time          `json:"computedAt"`
	SunAltitude   *float64           `json:"sunAltitude,omitempty"`
	SkyCondition  astro.SkyCondition `json:"skyCondition"`
}

// Result is the answer to one sky query. Observations are in catalog
// order.
type Result struct {
	Observer     astro.Observer `json:"observer"`
	Instant      time.Time      `json:"instant"`
	Options      Options        `json:"options"`
	Observations []Observation  `json:"observations"`
	Warnings     []Warning      `json:"warnings,omitempty"`
	Meta         Metadata       `json:"meta"`
}

// Clone returns a deep copy of r.
func (r Result) Clone() Result {
	out := r
	if r.Observations != nil {
		out.Observations = make([]Observation, len(r.Observations))
		for i, o := range r.Observations {
			if o.PhaseFraction != nil {
				f := *o.PhaseFraction
				o.PhaseFraction = &f
			}
			out.Observations[i] = o
		}
	}
	if r.Warnings != nil {
		out.Warnings = make([]Warning, len(r.Warnings))
		copy(out.Warnings, r.Warnings)
	}
	if r.Meta.SunAltitude != nil {
		a := *r.Meta.SunAltitude
		out.Meta.SunAltitude = &a
	}
	return out
}

// Observation returns the observation for id, if present.
func (r Result) Observation(id string) (Observation, bool) {
	for _, o := range r.Observations {
		if o.ID == id {
			return o, true
		}
	}
	return Observation{}, false
}
