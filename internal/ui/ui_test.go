package ui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/litescript/ls-planets/internal/state"
)

func newModel(t *testing.T) Model {
	t.Helper()
	mgr := state.NewManager(state.DefaultConfig())
	var m tea.Model = New(mgr, "28.63°N 80.62°W")
	m, _ = m.Update(tea.WindowSizeMsg{Width: 140, Height: 45})
	return m.(Model)
}

func update(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestModel_InitializingUntilSized(t *testing.T) {
	m := New(state.NewManager(state.DefaultConfig()), "")
	if got := m.View(); got != "Initializing..." {
		t.Errorf("View before size = %q", got)
	}
	if m.Init() == nil {
		t.Error("Init should start the tick loops")
	}
}

func TestModel_SwitchViews(t *testing.T) {
	m := newModel(t)
	if m.viewMode != ViewTable {
		t.Fatalf("initial view = %v, want table", m.viewMode)
	}

	m, _ = update(m, key("2"))
	if m.viewMode != ViewSky {
		t.Errorf("after '2' view = %v, want sky", m.viewMode)
	}
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyTab})
	if m.viewMode != ViewTable {
		t.Errorf("tab should wrap back to table, got %v", m.viewMode)
	}
	m, _ = update(m, key("s"))
	m, _ = update(m, key("t"))
	if m.viewMode != ViewTable {
		t.Errorf("after 't' view = %v, want table", m.viewMode)
	}

	_, cmd := update(m, key("q"))
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should return tea.Quit")
	}
}

func TestModel_DataUpdateAndEnter(t *testing.T) {
	m := newModel(t)
	snap := tableSnapshot()
	snap.LastFetch = time.Now()
	snap.NextRefresh = snap.LastFetch.Add(5 * time.Second)

	m, _ = update(m, DataUpdateMsg{Snapshot: snap})
	out := m.View()
	for _, want := range []string{"Solar System Sky", "28.63°N 80.62°W", "▶ [1] Table", "Mars", "refresh in"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}

	// enter on a body below the horizon stays on the table
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.viewMode != ViewTable {
		t.Errorf("enter on the Sun below the horizon switched view")
	}

	m, _ = update(m, key("down"))
	m, cmd := update(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.viewMode != ViewSky {
		t.Fatalf("enter on mars should open the sky view")
	}
	if cmd == nil {
		t.Error("focusing should animate the camera")
	}
	if m.skyView.FocusedID() != "mars" {
		t.Errorf("sky focus = %q, want mars", m.skyView.FocusedID())
	}
}

func TestModel_ErrorShown(t *testing.T) {
	m := newModel(t)
	snap := tableSnapshot()
	snap.LastError = errors.New("horizons: 503")

	m, _ = update(m, DataUpdateMsg{Snapshot: snap})
	out := m.View()
	if !strings.Contains(out, "ERROR: horizons: 503") {
		t.Error("footer should show the last error")
	}

	m, _ = update(m, ErrorMsg{Error: errors.New("boom")})
	if !strings.Contains(m.View(), "Error: boom") {
		t.Error("table should show the error message")
	}
}

func TestGradientColor(t *testing.T) {
	if got := gradientColor(0, 0, 10, 3); got != "#3B82F6" {
		t.Errorf("left edge = %s, want #3B82F6", got)
	}
	if got := gradientColor(5, 0, 10, 3); got != "#8B5CF6" {
		t.Errorf("midpoint = %s, want #8B5CF6", got)
	}
	top := gradientColor(9, 0, 10, 3)
	bottom := gradientColor(9, 2, 10, 3)
	if top == bottom {
		t.Error("lower rows should be darker")
	}
}
