package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-planets/internal/engine"
	"github.com/litescript/ls-planets/internal/state"
)

// Styles for the table view
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)

	rowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	selectedRowStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("229")).
				Background(lipgloss.Color("57"))

	belowRowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

// TableModel lists every body of the latest result with a live event log.
type TableModel struct {
	width       int
	height      int
	cursor      int
	visibleOnly bool
	snapshot    state.Snapshot
	rates       map[string]float64
	lastErr     error
}

// NewTableModel creates a new table model.
func NewTableModel() TableModel {
	return TableModel{}
}

// SetSize updates the viewport size.
func (m TableModel) SetSize(width, height int) TableModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData updates the model with new data. rates holds each body's
// altitude change in degrees per minute.
func (m TableModel) UpdateData(snapshot state.Snapshot, rates map[string]float64) TableModel {
	m.snapshot = snapshot
	m.rates = rates
	if n := len(m.rows()); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
	return m
}

// SetError sets the last error for display.
func (m TableModel) SetError(err error) TableModel {
	m.lastErr = err
	return m
}

// rows returns the observations the table shows.
func (m TableModel) rows() []engine.Observation {
	if m.visibleOnly {
		return m.snapshot.Visible
	}
	if m.snapshot.Result == nil {
		return nil
	}
	return m.snapshot.Result.Observations
}

// Update handles messages.
func (m TableModel) Update(msg tea.Msg) (TableModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		count := len(m.rows())
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < count-1 {
				m.cursor++
			}
		case "home":
			m.cursor = 0
		case "end":
			if count > 0 {
				m.cursor = count - 1
			}
		case "v":
			m.visibleOnly = !m.visibleOnly
			m.cursor = 0
		}
	}
	return m, nil
}

// Selected returns the observation under the cursor, if any.
func (m TableModel) Selected() (engine.Observation, bool) {
	rows := m.rows()
	if m.cursor < 0 || m.cursor >= len(rows) {
		return engine.Observation{}, false
	}
	return rows[m.cursor], true
}

// View renders the table.
func (m TableModel) View() string {
	var b strings.Builder

	if m.lastErr != nil {
		b.WriteString(errorStyle.Render("Error: " + m.lastErr.Error()))
		b.WriteString("\n\n")
	}

	if m.snapshot.Result == nil {
		if m.lastErr == nil {
			b.WriteString("Waiting for first result...\n")
		}
		return b.String()
	}

	b.WriteString(m.renderSkySummary())
	b.WriteString("\n\n")
	b.WriteString(m.renderBodiesTable())
	b.WriteString("\n")
	b.WriteString(RenderEvents(m.snapshot.Events, 6))

	return b.String()
}

func (m TableModel) renderSkySummary() string {
	res := m.snapshot.Result
	var b strings.Builder

	b.WriteString(titleStyle.Render("Sky"))
	b.WriteString("  ")
	b.WriteString(res.Meta.SkyCondition.String())
	if res.Meta.SunAltitude != nil {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  Sun %.1f°", *res.Meta.SunAltitude)))
	}
	b.WriteString(dimStyle.Render(fmt.Sprintf("  %d of %d bodies up  ·  %s  ·  %s",
		len(m.snapshot.Visible), len(res.Observations),
		res.Instant.UTC().Format(time.TimeOnly+" MST"), res.Meta.Provider)))
	return b.String()
}

func (m TableModel) renderBodiesTable() string {
	var b strings.Builder

	title := "All Bodies"
	if m.visibleOnly {
		title = "Above Horizon"
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")

	header := fmt.Sprintf("%-10s %7s %6s %7s %-4s %5s %-10s %-12s %s",
		"Body", "Alt", "Rate", "Az", "Dir", "Mag", "Distance", "Const.", "Phase")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	rows := m.rows()
	if len(rows) == 0 {
		b.WriteString("  Nothing above the horizon\n")
		return b.String()
	}

	// leave room for summary and event log
	maxRows := m.height - 14
	if maxRows < 5 {
		maxRows = 5
	}

	startIdx := 0
	if m.cursor >= maxRows {
		startIdx = m.cursor - maxRows + 1
	}
	endIdx := min(startIdx+maxRows, len(rows))

	for i := startIdx; i < endIdx; i++ {
		o := rows[i]
		constellation := o.Constellation
		if constellation == "" {
			constellation = "-"
		}

		row := fmt.Sprintf("%-10s %6.1f° %6s %6.1f° %-4s %5s %-10s %-12s %s",
			truncate(o.Name, 10),
			o.Altitude,
			renderRate(m.rates[o.ID]),
			o.Azimuth,
			o.Direction,
			FormatMagnitude(o.Magnitude),
			FormatDistance(o.DistanceKm, o.DistanceAU),
			truncate(constellation, 12),
			FormatPhase(o.PhaseName, o.PhaseFraction),
		)

		switch {
		case i == m.cursor:
			b.WriteString(selectedRowStyle.Render(row))
		case !o.AboveHorizon:
			b.WriteString(belowRowStyle.Render(row))
		default:
			b.WriteString(rowStyle.Render(row))
		}
		b.WriteString("\n")
	}

	if len(rows) > maxRows {
		b.WriteString(fmt.Sprintf("\n  Showing %d-%d of %d bodies", startIdx+1, endIdx, len(rows)))
	}

	return b.String()
}

// renderRate shows the altitude trend as an arrow and degrees per minute.
func renderRate(rate float64) string {
	switch {
	case rate > 0.005:
		return fmt.Sprintf("↑%.2f", rate)
	case rate < -0.005:
		return fmt.Sprintf("↓%.2f", -rate)
	default:
		return "·"
	}
}

// RenderEvents renders the last n events, newest last.
func RenderEvents(events []state.Event, n int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Events"))
	b.WriteString("\n")

	if len(events) == 0 {
		b.WriteString(dimStyle.Render("  No horizon crossings yet"))
		b.WriteString("\n")
		return b.String()
	}
	if len(events) > n {
		events = events[len(events)-n:]
	}

	for _, e := range events {
		ts := e.Timestamp.UTC().Format(time.TimeOnly)
		var line string
		switch e.Type {
		case state.EventRise:
			line = fmt.Sprintf("  %s  %-7s %s rose in the %s", ts, e.Type, e.Name, e.Detail)
		case state.EventSet:
			line = fmt.Sprintf("  %s  %-7s %s set in the %s", ts, e.Type, e.Name, e.Detail)
		case state.EventDropped:
			line = fmt.Sprintf("  %s  %-7s %s: %s", ts, e.Type, e.Name, e.Detail)
		case state.EventResumed:
			line = fmt.Sprintf("  %s  %-7s %s is back", ts, e.Type, e.Name)
		default:
			line = fmt.Sprintf("  %s  %-7s %s", ts, e.Type, e.Detail)
		}
		if e.Type == state.EventDropped {
			b.WriteString(warnStyle.Render(line))
		} else {
			b.WriteString(rowStyle.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}
