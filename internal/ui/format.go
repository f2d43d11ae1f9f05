package ui

import "fmt"

// FormatDistance returns a human-readable distance. Bodies inside ten
// million km are shown in km, everything further in AU.
func FormatDistance(km, au float64) string {
	switch {
	case km <= 0:
		return "N/A"
	case km < 1e6:
		return fmt.Sprintf("%.0f km", km)
	case km < 1e7:
		return formatWithUnit(km/1e6, "M km")
	default:
		return formatWithUnit(au, "AU")
	}
}

func formatWithUnit(value float64, unit string) string {
	switch {
	case value < 10:
		return fmt.Sprintf("%.2f %s", value, unit)
	case value < 100:
		return fmt.Sprintf("%.1f %s", value, unit)
	default:
		return fmt.Sprintf("%.0f %s", value, unit)
	}
}

// FormatMagnitude renders an apparent magnitude with an explicit sign.
func FormatMagnitude(mag float64) string {
	return fmt.Sprintf("%+.1f", mag)
}

// FormatPhase renders the Moon's phase as "Waxing Gibbous 82%", or "" for
// bodies without a phase.
func FormatPhase(name string, fraction *float64) string {
	if fraction == nil {
		return ""
	}
	return fmt.Sprintf("%s %.0f%%", name, *fraction*100)
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
