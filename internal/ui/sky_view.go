package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-planets/internal/catalog"
	"github.com/litescript/ls-planets/internal/engine"
	"github.com/litescript/ls-planets/internal/state"
)

const (
	// Field of view in degrees
	fovAz = 120.0 // horizontal FOV
	fovEl = 60.0  // vertical FOV

	// Animation
	animDuration  = 400 * time.Millisecond
	animFrameRate = 30 * time.Millisecond

	glyphSun    = '☉'
	glyphMoon   = '☾'
	glyphPlanet = '●'
	glyphDwarf  = '•'
	glyphFocus  = '◆'

	colorSun     = "#FFD700"
	colorMoon    = "#E0E0E0"
	colorBright  = "#d0c8ff" // mag < 0
	colorMedium  = "250"     // mag 0-4
	colorFaint   = "244"
	colorFocused = "229" // bright gold
)

// LabelMode controls how body labels are displayed.
type LabelMode int

const (
	LabelNone    LabelMode = iota // No labels
	LabelFocused                  // Only the focused body
	LabelAll                      // All bodies
)

// SkyViewModel renders the sky dome with body positions.
type SkyViewModel struct {
	width  int
	height int

	// Camera position (center of view)
	camAz float64
	camEl float64

	// Animation state
	animating   bool
	animStartAz float64
	animStartEl float64
	animTargAz  float64
	animTargEl  float64
	animStart   time.Time

	focusIdx int
	bodies   []engine.Observation // above the horizon, catalog order

	labelMode LabelMode
}

// NewSkyViewModel creates a new sky view model.
func NewSkyViewModel() SkyViewModel {
	return SkyViewModel{
		camAz:     180,
		camEl:     30,
		labelMode: LabelAll,
	}
}

// SetSize updates the viewport size.
func (m SkyViewModel) SetSize(width, height int) SkyViewModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData updates with new data snapshot. Focus follows the body by id
// across updates.
func (m SkyViewModel) UpdateData(snapshot state.Snapshot) SkyViewModel {
	focused := m.FocusedID()
	m.bodies = snapshot.Visible

	m.focusIdx = 0
	for i, o := range m.bodies {
		if o.ID == focused {
			m.focusIdx = i
			break
		}
	}

	if !m.animating && len(m.bodies) > 0 {
		o := m.bodies[m.focusIdx]
		m.camAz = o.Azimuth
		m.camEl = o.Altitude
	}
	return m
}

// Focus moves the camera to id when it is above the horizon.
func (m SkyViewModel) Focus(id string) (SkyViewModel, tea.Cmd) {
	for i, o := range m.bodies {
		if o.ID == id {
			m.focusIdx = i
			return m.startAnimation()
		}
	}
	return m, nil
}

// FocusedID returns the id of the focused body, or "".
func (m SkyViewModel) FocusedID() string {
	if m.focusIdx < len(m.bodies) {
		return m.bodies[m.focusIdx].ID
	}
	return ""
}

// animTickMsg is sent during animation
type animTickMsg time.Time

func animTick() tea.Cmd {
	return tea.Tick(animFrameRate, func(t time.Time) tea.Msg {
		return animTickMsg(t)
	})
}

// Update handles messages.
func (m SkyViewModel) Update(msg tea.Msg) (SkyViewModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			return m.focusPrev()
		case "down", "j":
			return m.focusNext()
		case "l":
			m.labelMode = (m.labelMode + 1) % 3
		}

	case animTickMsg:
		if m.animating {
			return m.updateAnimation()
		}
	}

	return m, nil
}

func (m SkyViewModel) focusNext() (SkyViewModel, tea.Cmd) {
	if len(m.bodies) == 0 {
		return m, nil
	}
	m.focusIdx = (m.focusIdx + 1) % len(m.bodies)
	return m.startAnimation()
}

func (m SkyViewModel) focusPrev() (SkyViewModel, tea.Cmd) {
	if len(m.bodies) == 0 {
		return m, nil
	}
	m.focusIdx--
	if m.focusIdx < 0 {
		m.focusIdx = len(m.bodies) - 1
	}
	return m.startAnimation()
}

func (m SkyViewModel) startAnimation() (SkyViewModel, tea.Cmd) {
	if m.focusIdx >= len(m.bodies) {
		return m, nil
	}

	o := m.bodies[m.focusIdx]
	m.animating = true
	m.animStartAz = m.camAz
	m.animStartEl = m.camEl
	m.animTargAz = o.Azimuth
	m.animTargEl = o.Altitude
	m.animStart = time.Now()

	return m, animTick()
}

func (m SkyViewModel) updateAnimation() (SkyViewModel, tea.Cmd) {
	t := float64(time.Since(m.animStart)) / float64(animDuration)

	if t >= 1.0 {
		m.animating = false
		m.camAz = m.animTargAz
		m.camEl = m.animTargEl
		return m, nil
	}

	// Ease-out cubic
	t = 1 - math.Pow(1-t, 3)

	m.camAz = lerpAngle(m.animStartAz, m.animTargAz, t)
	m.camEl = lerp(m.animStartEl, m.animTargEl, t)

	return m, animTick()
}

// View renders the sky view.
func (m SkyViewModel) View() string {
	if m.width < 20 || m.height < 10 {
		return "Sky view requires larger terminal"
	}

	viewHeight := m.height - 4

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderSkyCanvas(m.width, viewHeight))
	b.WriteString("\n")
	b.WriteString(m.renderStatus())

	return b.String()
}

func (m SkyViewModel) renderHeader() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("135")).Render("Sky View")
	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(colorBright))

	var labelStr string
	switch m.labelMode {
	case LabelNone:
		labelStr = dimStyle.Render("Labels: off")
	case LabelFocused:
		labelStr = accentStyle.Render("Labels: focus")
	case LabelAll:
		labelStr = accentStyle.Render("Labels: all")
	}

	compass := dimStyle.Render(fmt.Sprintf("Az:%.0f° Alt:%.0f°", m.camAz, m.camEl))
	count := dimStyle.Render(fmt.Sprintf("%d up", len(m.bodies)))

	return fmt.Sprintf("%s | %s | %s | %s", title, count, labelStr, compass)
}

func (m SkyViewModel) renderStatus() string {
	if len(m.bodies) == 0 {
		return "Nothing above the horizon"
	}
	if m.focusIdx >= len(m.bodies) {
		return ""
	}

	o := m.bodies[m.focusIdx]
	line := fmt.Sprintf(">>> %s | Az:%.1f° Alt:%.1f° %s | mag %s | %s",
		o.Name, o.Azimuth, o.Altitude, o.Direction,
		FormatMagnitude(o.Magnitude), FormatDistance(o.DistanceKm, o.DistanceAU))
	if o.Constellation != "" {
		line += " | in " + o.Constellation
	}
	status := lipgloss.NewStyle().Foreground(lipgloss.Color(colorFocused)).Render(line)

	if o.SkyPosition != "" {
		status += "\n" + dimStyle.Render("    "+o.SkyPosition)
	}
	return status
}

// bodyPos tracks a plotted body for label rendering
type bodyPos struct {
	x, y       int
	name       string
	isFocused  bool
	labelStart int
	labelEnd   int
}

func (m SkyViewModel) renderSkyCanvas(width, height int) string {
	canvas := make([][]rune, height)
	colors := make([][]lipgloss.Color, height)
	for y := range height {
		canvas[y] = make([]rune, width)
		colors[y] = make([]lipgloss.Color, width)
		for x := range width {
			canvas[y][x] = ' '
			colors[y][x] = "236"
		}
	}

	horizonY := height - 2
	for x := range width {
		canvas[horizonY][x] = '─'
		colors[horizonY][x] = "60"
	}

	m.drawCardinal(canvas, colors, width, height, "N", 0)
	m.drawCardinal(canvas, colors, width, height, "E", 90)
	m.drawCardinal(canvas, colors, width, height, "S", 180)
	m.drawCardinal(canvas, colors, width, height, "W", 270)

	var positions []bodyPos

	// dim bodies first so brighter ones win shared cells
	order := make([]int, len(m.bodies))
	for i := range order {
		order[i] = i
	}
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && m.bodies[order[j]].Magnitude > m.bodies[order[j-1]].Magnitude; j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}

	for _, i := range order {
		o := m.bodies[i]
		x, y, visible := m.projectToScreen(o.Azimuth, o.Altitude, width, height)
		if !visible || x < 0 || x >= width || y < 0 || y >= horizonY {
			continue
		}

		isFocused := i == m.focusIdx
		sym, color := bodyGlyph(o)
		if isFocused && o.Category != catalog.CategoryStar && o.Category != catalog.CategoryMoon {
			sym = glyphFocus
		}
		if isFocused {
			color = colorFocused
		}

		canvas[y][x] = sym
		colors[y][x] = color
		positions = append(positions, bodyPos{x: x, y: y, name: o.Name, isFocused: isFocused})
	}

	m.renderLabels(canvas, colors, width, horizonY, positions)

	// observer marker at bottom center
	if stationX, stationY := width/2, height-1; stationY >= 0 {
		canvas[stationY][stationX] = '▲'
		colors[stationY][stationX] = "46"
	}

	var b strings.Builder
	for y := range height {
		for x := range width {
			style := lipgloss.NewStyle().Foreground(colors[y][x])
			b.WriteString(style.Render(string(canvas[y][x])))
		}
		if y < height-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// bodyGlyph picks a symbol by category and a color by brightness.
func bodyGlyph(o engine.Observation) (rune, lipgloss.Color) {
	switch o.Category {
	case catalog.CategoryStar:
		return glyphSun, colorSun
	case catalog.CategoryMoon:
		if o.ID == catalog.MoonID {
			return glyphMoon, colorMoon
		}
	case catalog.CategoryDwarfPlanet:
		return glyphDwarf, colorFaint
	}

	glyph := glyphPlanet
	if o.Category == catalog.CategoryMoon {
		glyph = glyphDwarf
	}
	switch {
	case o.Magnitude < 0:
		return glyph, colorBright
	case o.Magnitude < 4:
		return glyph, colorMedium
	default:
		return glyph, colorFaint
	}
}

// renderLabels draws body labels on the canvas based on label mode.
// Focused labels take priority in overlapping regions.
func (m SkyViewModel) renderLabels(canvas [][]rune, colors [][]lipgloss.Color, width, horizonY int, positions []bodyPos) {
	if m.labelMode == LabelNone || len(positions) == 0 {
		return
	}

	for i := range positions {
		pos := &positions[i]
		pos.labelStart = pos.x + 2
		labelLen := len([]rune(pos.name))
		if pos.isFocused {
			labelLen += 2
		}
		pos.labelEnd = pos.labelStart + labelLen
	}

	focusedClaims := make(map[int]map[int]bool) // y -> x -> claimed
	for _, pos := range positions {
		if !pos.isFocused {
			continue
		}
		if focusedClaims[pos.y] == nil {
			focusedClaims[pos.y] = make(map[int]bool)
		}
		for x := pos.labelStart; x < pos.labelEnd; x++ {
			focusedClaims[pos.y][x] = true
		}
	}

	for _, pos := range positions {
		if m.labelMode == LabelFocused && !pos.isFocused {
			continue
		}

		labelColor := lipgloss.Color(colorBright)
		labelText := pos.name
		if pos.isFocused {
			labelColor = colorFocused
			labelText = "◄ " + pos.name
		}

		for i, r := range []rune(labelText) {
			x := pos.labelStart + i
			if x < 0 || x >= width || pos.y < 0 || pos.y >= horizonY {
				continue
			}
			if !pos.isFocused && focusedClaims[pos.y][x] {
				continue
			}
			canvas[pos.y][x] = r
			colors[pos.y][x] = labelColor
		}
	}
}

func (m SkyViewModel) drawCardinal(canvas [][]rune, colors [][]lipgloss.Color, width, height int, label string, az float64) {
	x, _, visible := m.projectToScreen(az, m.camEl, width, height)
	if !visible {
		return
	}
	y := height - 2

	if x >= 0 && x < width && y >= 0 && y < height {
		canvas[y][x] = rune(label[0])
		colors[y][x] = "252"
	}
}

// projectToScreen converts az/alt to screen coordinates relative to the
// camera.
func (m SkyViewModel) projectToScreen(az, el float64, width, height int) (int, int, bool) {
	dAz := normalizeAngle(az - m.camAz)
	dEl := el - m.camEl

	if dAz < -fovAz/2 || dAz > fovAz/2 {
		return 0, 0, false
	}
	if dEl < -fovEl/2 || dEl > fovEl/2 {
		return 0, 0, false
	}

	// Y is inverted: higher altitude is higher on screen
	horizonY := height - 2

	x := int((dAz + fovAz/2) / fovAz * float64(width))
	y := int((fovEl/2 - dEl) / fovEl * float64(horizonY))

	return x, y, true
}

// normalizeAngle wraps angle to -180..+180 range
func normalizeAngle(a float64) float64 {
	for a > 180 {
		a -= 360
	}
	for a < -180 {
		a += 360
	}
	return a
}

// lerpAngle interpolates between angles, taking shortest path
func lerpAngle(a, b, t float64) float64 {
	return a + normalizeAngle(b-a)*t
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
