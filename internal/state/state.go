// Package state provides thread-safe state for a live watch session: the
// latest result, altitude history and horizon events.
package state

import (
	"sync"
	"time"

	"github.com/litescript/ls-planets/internal/astro"
	"github.com/litescript/ls-planets/internal/engine"
)

// EventType represents the type of state change event.
type EventType string

const (
	EventRise    EventType = "RISE"
	EventSet     EventType = "SET"
	EventDropped EventType = "DROPPED" // provider stopped answering for a body
	EventResumed EventType = "RESUMED"
	EventSky     EventType = "SKY" // sky condition changed
)

// Event represents a change between two successive results.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Body      string    `json:"body,omitempty"`
	Name      string    `json:"name,omitempty"`
	Altitude  float64   `json:"altitude,omitempty"`
	Azimuth   float64   `json:"azimuth,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}

// TimeSeries is a single data point with timestamp.
type TimeSeries struct {
	Timestamp time.Time
	Value     float64
}

// BodyHistory tracks the altitude of one body across updates.
type BodyHistory struct {
	ID       string
	Name     string
	Altitude []TimeSeries
}

// Manager handles all shared watch state with thread-safe access.
type Manager struct {
	mu sync.RWMutex

	current       *engine.Result
	lastFetch     time.Time
	lastError     error
	fetchDuration time.Duration

	// previous observations for event detection
	prev    map[string]engine.Observation
	prevSky astro.SkyCondition
	hasPrev bool

	history        map[string]*BodyHistory
	maxBodyHistory int

	// Event log (ring buffer)
	events       []Event
	maxEvents    int
	eventWriteAt int

	refreshInterval time.Duration
	now             func() time.Time
}

// Config holds configuration for the state manager.
type Config struct {
	MaxBodyHistory  int
	MaxEvents       int
	RefreshInterval time.Duration
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		MaxBodyHistory:  120, // 10 minutes at the default refresh
		MaxEvents:       50,
		RefreshInterval: 5 * time.Second,
	}
}

// NewManager creates a new state manager.
func NewManager(cfg Config) *Manager {
	if cfg.MaxEvents <= 0 {
		cfg.MaxEvents = 50
	}
	if cfg.MaxBodyHistory <= 0 {
		cfg.MaxBodyHistory = 120
	}
	return &Manager{
		maxBodyHistory:  cfg.MaxBodyHistory,
		maxEvents:       cfg.MaxEvents,
		events:          make([]Event, 0, cfg.MaxEvents),
		refreshInterval: cfg.RefreshInterval,
		history:         make(map[string]*BodyHistory),
		prev:            make(map[string]engine.Observation),
		now:             time.Now,
	}
}

// Update records a new result. A nil result with an error keeps the last
// good result and records the error.
func (m *Manager) Update(res *engine.Result, fetchDuration time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastFetch = m.now()
	m.lastError = err
	m.fetchDuration = fetchDuration

	if res == nil {
		return
	}

	if m.hasPrev {
		m.detectEvents(res)
	}
	m.current = res
	m.updateHistory(res)

	m.prev = make(map[string]engine.Observation, len(res.Observations))
	for _, o := range res.Observations {
		m.prev[o.ID] = o
	}
	m.prevSky = res.Meta.SkyCondition
	m.hasPrev = true
}

// detectEvents compares res with the previous result.
func (m *Manager) detectEvents(res *engine.Result) {
	ts := res.Instant

	for _, o := range res.Observations {
		before, ok := m.prev[o.ID]
		if !ok {
			m.addEvent(Event{Type: EventResumed, Timestamp: ts, Body: o.ID, Name: o.Name, Altitude: o.Altitude, Azimuth: o.Azimuth})
			continue
		}
		switch {
		case o.AboveHorizon && !before.AboveHorizon:
			m.addEvent(Event{Type: EventRise, Timestamp: ts, Body: o.ID, Name: o.Name, Altitude: o.Altitude, Azimuth: o.Azimuth, Detail: o.Direction})
		case !o.AboveHorizon && before.AboveHorizon:
			m.addEvent(Event{Type: EventSet, Timestamp: ts, Body: o.ID, Name: o.Name, Altitude: o.Altitude, Azimuth: o.Azimuth, Detail: o.Direction})
		}
	}

	for _, w := range res.Warnings {
		if before, ok := m.prev[w.Body]; ok {
			m.addEvent(Event{Type: EventDropped, Timestamp: ts, Body: w.Body, Name: before.Name, Detail: w.Message})
		}
	}

	if sky := res.Meta.SkyCondition; sky != m.prevSky {
		m.addEvent(Event{Type: EventSky, Timestamp: ts, Detail: m.prevSky.String() + " → " + sky.String()})
	}
}

// addEvent adds an event to the ring buffer.
func (m *Manager) addEvent(e Event) {
	if len(m.events) < m.maxEvents {
		m.events = append(m.events, e)
	} else {
		m.events[m.eventWriteAt] = e
		m.eventWriteAt = (m.eventWriteAt + 1) % m.maxEvents
	}
}

func (m *Manager) updateHistory(res *engine.Result) {
	for _, o := range res.Observations {
		hist, ok := m.history[o.ID]
		if !ok {
			hist = &BodyHistory{
				ID:       o.ID,
				Name:     o.Name,
				Altitude: make([]TimeSeries, 0, m.maxBodyHistory),
			}
			m.history[o.ID] = hist
		}
		hist.Altitude = append(hist.Altitude, TimeSeries{Timestamp: res.Instant, Value: o.Altitude})
		if len(hist.Altitude) > m.maxBodyHistory {
			hist.Altitude = hist.Altitude[1:]
		}
	}
}

// Snapshot represents an immutable snapshot of current state.
type Snapshot struct {
	Result        *engine.Result
	LastFetch     time.Time
	NextRefresh   time.Time
	LastError     error
	FetchDuration time.Duration
	Visible       []engine.Observation
	Events        []Event
}

// Snapshot returns a consistent snapshot of current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := Snapshot{
		LastFetch:     m.lastFetch,
		LastError:     m.lastError,
		FetchDuration: m.fetchDuration,
		Events:        m.getEventsOrdered(),
	}
	if !m.lastFetch.IsZero() {
		snap.NextRefresh = m.lastFetch.Add(m.refreshInterval)
	}
	if m.current != nil {
		res := m.current.Clone()
		snap.Result = &res
		for _, o := range res.Observations {
			if o.AboveHorizon {
				snap.Visible = append(snap.Visible, o)
			}
		}
	}
	return snap
}

// getEventsOrdered returns events in chronological order.
func (m *Manager) getEventsOrdered() []Event {
	if len(m.events) == 0 {
		return nil
	}

	if len(m.events) < m.maxEvents {
		result := make([]Event, len(m.events))
		copy(result, m.events)
		return result
	}

	result := make([]Event, m.maxEvents)
	for i := range m.maxEvents {
		result[i] = m.events[(m.eventWriteAt+i)%m.maxEvents]
	}
	return result
}

// RecentEvents returns the last n events.
func (m *Manager) RecentEvents(n int) []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := m.getEventsOrdered()
	if len(all) <= n {
		return all
	}
	return all[len(all)-n:]
}

// GetBodyHistory returns a copy of the altitude history for id, or nil.
func (m *Manager) GetBodyHistory(id string) *BodyHistory {
	m.mu.RLock()
	defer m.mu.RUnlock()

	hist, ok := m.history[id]
	if !ok {
		return nil
	}
	out := &BodyHistory{
		ID:       hist.ID,
		Name:     hist.Name,
		Altitude: make([]TimeSeries, len(hist.Altitude)),
	}
	copy(out.Altitude, hist.Altitude)
	return out
}

// AltitudeRate estimates how fast a body is climbing, in degrees per
// minute, from its last two samples. Negative means setting.
func (m *Manager) AltitudeRate(id string) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	hist, ok := m.history[id]
	if !ok || len(hist.Altitude) < 2 {
		return 0
	}

	n := len(hist.Altitude)
	p1 := hist.Altitude[n-2]
	p2 := hist.Altitude[n-1]

	minutes := p2.Timestamp.Sub(p1.Timestamp).Minutes()
	if minutes <= 0 {
		return 0
	}
	return (p2.Value - p1.Value) / minutes
}

// RefreshInterval returns the configured refresh interval.
func (m *Manager) RefreshInterval() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.refreshInterval
}

// SetRefreshInterval updates the refresh interval.
func (m *Manager) SetRefreshInterval(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshInterval = d
}

// HasData returns true if at least one result has been recorded.
func (m *Manager) HasData() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current != nil
}
