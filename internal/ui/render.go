package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-planets/internal/astro"
	"github.com/litescript/ls-planets/internal/engine"
	"github.com/litescript/ls-planets/internal/query"
)

// Altitude display colors
const (
	colorAltOverhead = "#00E5FF" // cyan - near zenith
	colorAltHigh     = "#7CFC00" // lawn green
	colorAltMedium   = "#FFD700" // gold
	colorAltLow      = "#FF6347" // tomato - close to the horizon
	colorAltBelow    = "#444444" // dark gray - below horizon
)

var (
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("135")).Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4500"))
)

func tierToColor(tier astro.AltitudeTier) string {
	switch tier {
	case astro.AltitudeOverhead:
		return colorAltOverhead
	case astro.AltitudeHigh:
		return colorAltHigh
	case astro.AltitudeMedium:
		return colorAltMedium
	case astro.AltitudeLow:
		return colorAltLow
	default:
		return colorAltBelow
	}
}

// colorByAltitude applies tier-based coloring to text.
func colorByAltitude(altDeg float64, text string) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(tierToColor(astro.GetAltitudeTier(altDeg))))
	return style.Render(text)
}

// RenderTable renders a sky view as an aligned table:
//
//	Observer 28.6272°, -80.6208°, 0 m · 2024-12-07 12:00 UTC · day
//	Body       Alt     Az     Dir  Mag    Distance    Constellation
//	Mars       41.2°   298.4° WNW  -0.9   0.71 AU     Cancer
//
// RA/Dec columns are added when the view carries coordinates.
func RenderTable(v query.View) string {
	var b strings.Builder

	b.WriteString(labelStyle.Render("Observer"))
	b.WriteString(dimStyle.Render(fmt.Sprintf(" %.4f°, %.4f°, %.0f m · %s · %s",
		v.Observer.Latitude, v.Observer.Longitude, v.Observer.Elevation,
		v.Instant.UTC().Format("2006-01-02 15:04 MST"), v.Meta.SkyCondition)))
	b.WriteString("\n\n")

	coords := false
	for _, body := range v.Bodies {
		if body.RightAscension != nil {
			coords = true
			break
		}
	}

	header := fmt.Sprintf("%-10s %7s %7s %-4s %5s %-10s %-14s", "Body", "Alt", "Az", "Dir", "Mag", "Distance", "Constellation")
	if coords {
		header += fmt.Sprintf(" %-12s %-13s", "RA", "Dec")
	}
	header += " Notes"
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	if len(v.Bodies) == 0 {
		b.WriteString(dimStyle.Render("  Nothing above the horizon"))
		b.WriteString("\n")
	}

	for _, body := range v.Bodies {
		constellation := "-"
		if body.Constellation != nil {
			constellation = *body.Constellation
		}
		row := fmt.Sprintf("%-10s %6.1f° %6.1f° %-4s %5s %-10s %-14s",
			truncate(body.Name, 10),
			body.Altitude,
			body.Azimuth,
			body.Direction,
			FormatMagnitude(body.Magnitude),
			FormatDistance(body.DistanceKm, body.DistanceAU),
			truncate(constellation, 14),
		)
		if coords {
			ra, dec := "-", "-"
			if body.RightAscension != nil {
				ra = body.RightAscension.Text
			}
			if body.Declination != nil {
				dec = body.Declination.Text
			}
			row += fmt.Sprintf(" %-12s %-13s", ra, dec)
		}
		row += " " + bodyNotes(body.NakedEye, FormatPhase(body.PhaseName, body.PhaseFraction))
		b.WriteString(colorByAltitude(body.Altitude, row))
		b.WriteString("\n")
	}

	for _, w := range v.Warnings {
		b.WriteString(warnStyle.Render(fmt.Sprintf("  ! %s: %s", w.Body, w.Message)))
		b.WriteString("\n")
	}
	return b.String()
}

func bodyNotes(nakedEye bool, phase string) string {
	var notes []string
	if nakedEye {
		notes = append(notes, "naked eye")
	}
	if phase != "" {
		notes = append(notes, phase)
	}
	return strings.Join(notes, ", ")
}

// RenderWindow renders a rise/transit/set search:
//
//	Mars   Rise 22:14   Peak 03:02 @ 58°   Set 09:49
func RenderWindow(w engine.Window, loc *time.Location) string {
	line := labelStyle.Render(fmt.Sprintf("%-8s", w.Body))
	return line + renderVisibilityWindow(w.VisibilityWindow, loc)
}

func renderVisibilityWindow(w astro.VisibilityWindow, loc *time.Location) string {
	if !w.Valid {
		return dimStyle.Render("No data")
	}
	if w.NeverVisible {
		return dimStyle.Render("Below horizon")
	}
	if w.AlwaysVisible {
		return colorByAltitude(w.MaxAltitude, fmt.Sprintf("Always up, peak %.0f°", w.MaxAltitude))
	}

	var parts []string
	if !w.Rise.IsZero() {
		parts = append(parts, "Rise "+w.Rise.In(loc).Format("15:04"))
	}
	if !w.Transit.IsZero() {
		parts = append(parts, fmt.Sprintf("Peak %s @ %.0f°", w.Transit.In(loc).Format("15:04"), w.MaxAltitude))
	}
	if !w.Set.IsZero() {
		parts = append(parts, "Set "+w.Set.In(loc).Format("15:04"))
	}
	if len(parts) == 0 {
		return dimStyle.Render("No crossing")
	}
	return colorByAltitude(w.MaxAltitude, strings.Join(parts, "   "))
}

// RenderTwilight renders the Sun's day as dawn and dusk pairs per altitude.
func RenderTwilight(tw engine.Twilight, loc *time.Location) string {
	var b strings.Builder

	b.WriteString(labelStyle.Render("Sky"))
	b.WriteString(dimStyle.Render(fmt.Sprintf(" %s, Sun at %.1f°", tw.Condition, tw.SunAltitude)))
	b.WriteString("\n")

	for _, row := range []struct {
		name string
		w    astro.VisibilityWindow
	}{
		{"Astronomical", tw.Astronomical},
		{"Nautical", tw.Nautical},
		{"Civil", tw.Civil},
		{"Sun", tw.Sun},
	} {
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-13s", row.name)))
		b.WriteString(renderTwilightPair(row.w, loc))
		b.WriteString("\n")
	}
	return b.String()
}

func renderTwilightPair(w astro.VisibilityWindow, loc *time.Location) string {
	switch {
	case !w.Valid:
		return dimStyle.Render("No data")
	case w.AlwaysVisible:
		return dimStyle.Render("Sun stays above")
	case w.NeverVisible:
		return dimStyle.Render("Sun stays below")
	}
	dawn, dusk := "--:--", "--:--"
	if !w.Rise.IsZero() {
		dawn = w.Rise.In(loc).Format("15:04")
	}
	if !w.Set.IsZero() {
		dusk = w.Set.In(loc).Format("15:04")
	}
	return fmt.Sprintf("Dawn %s   Dusk %s", dawn, dusk)
}
