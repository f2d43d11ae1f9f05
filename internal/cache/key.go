package cache

import (
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/litescript/ls-planets/internal/astro"
	"github.com/litescript/ls-planets/internal/engine"
)

// Key identifies equivalent queries. It is a canonical rendering of the
// quantized observer, instant, bodies and options.
type Key string

// Default quantization.
const (
	DefaultCoordTolerance = 0.01 // degrees
	DefaultTimeResolution = time.Minute
)

// Tolerance controls how finely queries are told apart.
type Tolerance struct {
	Coord float64       // latitude/longitude step in degrees
	Time  time.Duration // instant truncation
}

// DefaultTolerance returns 0.01 degrees and one minute.
func DefaultTolerance() Tolerance {
	return Tolerance{Coord: DefaultCoordTolerance, Time: DefaultTimeResolution}
}

// KeyFor builds the cache key for a query. Latitude and longitude are
// rounded to tol.Coord, elevation to whole meters, and the instant is
// truncated to tol.Time. Body ids are lowercased, sorted and deduplicated;
// an empty list stands for the whole catalog.
func KeyFor(obs astro.Observer, instant time.Time, ids []string, opts engine.Options, tol Tolerance) Key {
	if tol.Coord <= 0 {
		tol.Coord = DefaultCoordTolerance
	}
	if tol.Time <= 0 {
		tol.Time = DefaultTimeResolution
	}
	prec := decimals(tol.Coord)

	var b strings.Builder
	b.WriteString("lat=")
	b.WriteString(formatRounded(obs.LatDeg, tol.Coord, prec))
	b.WriteString("|lon=")
	b.WriteString(formatRounded(obs.LonDeg, tol.Coord, prec))
	b.WriteString("|elev=")
	b.WriteString(formatRounded(obs.ElevationM, 1, 0))
	b.WriteString("|t=")
	b.WriteString(instant.UTC().Truncate(tol.Time).Format(time.RFC3339))
	b.WriteString("|bodies=")
	b.WriteString(canonicalIDs(ids))
	b.WriteString("|coords=")
	b.WriteString(strconv.FormatBool(opts.ShowCoords))
	b.WriteString("|above=")
	b.WriteString(strconv.FormatBool(opts.AboveHorizonOnly))
	return Key(b.String())
}

func canonicalIDs(ids []string) string {
	if len(ids) == 0 {
		return "*"
	}
	norm := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.ToLower(strings.TrimSpace(id)); id != "" {
			norm = append(norm, id)
		}
	}
	if len(norm) == 0 {
		return "*"
	}
	slices.Sort(norm)
	return strings.Join(slices.Compact(norm), ",")
}

func formatRounded(v, step float64, prec int) string {
	r := math.Round(v/step) * step
	if r == 0 {
		r = 0 // drop negative zero
	}
	return strconv.FormatFloat(r, 'f', prec, 64)
}

// decimals is the number of fraction digits needed to print multiples of
// step.
func decimals(step float64) int {
	d := int(math.Ceil(-math.Log10(step) - 1e-9))
	return max(d, 0)
}
