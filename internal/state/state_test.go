package state

import (
	"sync"
	"testing"
	"time"

	"github.com/litescript/ls-planets/internal/astro"
	"github.com/litescript/ls-planets/internal/engine"
)

var t0 = time.Date(2024, 12, 7, 12, 0, 0, 0, time.UTC)

func obs(id string, alt float64) engine.Observation {
	return engine.Observation{ID: id, Name: id, Altitude: alt, AboveHorizon: alt > 0, Direction: "E"}
}

func result(at time.Time, sky astro.SkyCondition, o ...engine.Observation) *engine.Result {
	return &engine.Result{Instant: at, Observations: o, Meta: engine.Metadata{SkyCondition: sky}}
}

func TestNewManager(t *testing.T) {
	cfg := DefaultConfig()
	m := NewManager(cfg)

	if m == nil {
		t.Fatal("NewManager returned nil")
	}
	if m.RefreshInterval() != cfg.RefreshInterval {
		t.Errorf("RefreshInterval = %v, want %v", m.RefreshInterval(), cfg.RefreshInterval)
	}
	if m.HasData() {
		t.Error("HasData should be false initially")
	}
}

func TestManager_Update(t *testing.T) {
	m := NewManager(DefaultConfig())

	m.Update(result(t0, astro.SkyDay, obs("mars", 40), obs("saturn", -60)), 100*time.Millisecond, nil)

	if !m.HasData() {
		t.Error("HasData should be true after Update")
	}

	snap := m.Snapshot()
	if snap.Result == nil || len(snap.Result.Observations) != 2 {
		t.Fatalf("Snapshot Result = %+v", snap.Result)
	}
	if snap.FetchDuration != 100*time.Millisecond {
		t.Errorf("FetchDuration = %v, want 100ms", snap.FetchDuration)
	}
	if snap.LastError != nil {
		t.Errorf("LastError = %v, want nil", snap.LastError)
	}
	if len(snap.Visible) != 1 || snap.Visible[0].ID != "mars" {
		t.Errorf("Visible = %+v, want only mars", snap.Visible)
	}
	if !snap.NextRefresh.Equal(snap.LastFetch.Add(DefaultConfig().RefreshInterval)) {
		t.Errorf("NextRefresh = %v, LastFetch = %v", snap.NextRefresh, snap.LastFetch)
	}
	if len(snap.Events) != 0 {
		t.Errorf("first update should not produce events, got %+v", snap.Events)
	}
}

func TestManager_UpdateWithErrorKeepsResult(t *testing.T) {
	m := NewManager(DefaultConfig())
	m.Update(result(t0, astro.SkyDay, obs("mars", 40)), 0, nil)

	testErr := &testError{msg: "provider offline"}
	m.Update(nil, 50*time.Millisecond, testErr)

	snap := m.Snapshot()
	if snap.Result == nil {
		t.Error("last good result should be kept")
	}
	if snap.LastError != testErr {
		t.Errorf("LastError = %v, want %v", snap.LastError, testErr)
	}
}

func TestManager_BodyHistory(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxBodyHistory = 5
	m := NewManager(cfg)

	for i := range 10 {
		m.Update(result(t0.Add(time.Duration(i)*time.Minute), astro.SkyDay, obs("jupiter", float64(10+i))), 0, nil)
	}

	hist := m.GetBodyHistory("jupiter")
	if hist == nil {
		t.Fatal("GetBodyHistory returned nil")
	}
	if len(hist.Altitude) != 5 {
		t.Errorf("history length = %d, want 5", len(hist.Altitude))
	}
	if hist.Altitude[0].Value != 15 {
		t.Errorf("first altitude = %v, want 15", hist.Altitude[0].Value)
	}
	if m.GetBodyHistory("pluto") != nil {
		t.Error("unknown body should have no history")
	}

	hist.Altitude[0].Value = 999
	if m.GetBodyHistory("jupiter").Altitude[0].Value == 999 {
		t.Error("history copy modification affected manager state")
	}
}

func TestManager_AltitudeRate(t *testing.T) {
	m := NewManager(DefaultConfig())

	m.Update(result(t0, astro.SkyDay, obs("moon", 10)), 0, nil)
	if r := m.AltitudeRate("moon"); r != 0 {
		t.Errorf("rate with single point = %v, want 0", r)
	}

	m.Update(result(t0.Add(2*time.Minute), astro.SkyDay, obs("moon", 9)), 0, nil)
	if r := m.AltitudeRate("moon"); r != -0.5 {
		t.Errorf("rate = %v, want -0.5 deg/min", r)
	}
}

func TestManager_Snapshot_IsCopy(t *testing.T) {
	m := NewManager(DefaultConfig())
	m.Update(result(t0, astro.SkyDay, obs("venus", 20)), 0, nil)

	snap := m.Snapshot()
	snap.Result.Observations[0].Altitude = 999

	if m.Snapshot().Result.Observations[0].Altitude == 999 {
		t.Error("Snapshot modification affected manager state")
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	m := NewManager(DefaultConfig())

	var wg sync.WaitGroup
	iterations := 100

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := range iterations {
			alt := float64(i%20 - 10)
			m.Update(result(t0.Add(time.Duration(i)*time.Second), astro.SkyDay, obs("mars", alt)), time.Millisecond, nil)
		}
	}()

	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range iterations {
				_ = m.Snapshot()
				_ = m.HasData()
				_ = m.RefreshInterval()
				_ = m.GetBodyHistory("mars")
				_ = m.AltitudeRate("mars")
				_ = m.RecentEvents(5)
			}
		}()
	}

	wg.Wait()
}

func TestManager_SetRefreshInterval(t *testing.T) {
	m := NewManager(DefaultConfig())

	m.SetRefreshInterval(30 * time.Second)
	if m.RefreshInterval() != 30*time.Second {
		t.Errorf("RefreshInterval = %v, want 30s", m.RefreshInterval())
	}
}

type testError struct {
	msg string
}

func (e *testError) Error() string {
	return e.msg
}

func findEvent(events []Event, typ EventType, body string) *Event {
	for i := range events {
		if events[i].Type == typ && events[i].Body == body {
			return &events[i]
		}
	}
	return nil
}

func TestManager_EventDetection_RiseAndSet(t *testing.T) {
	m := NewManager(DefaultConfig())

	m.Update(result(t0, astro.SkyDay, obs("jupiter", -0.5), obs("mercury", 0.4)), 0, nil)
	m.Update(result(t0.Add(5*time.Minute), astro.SkyDay, obs("jupiter", 0.6), obs("mercury", -0.3)), 0, nil)

	events := m.RecentEvents(10)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %+v", events)
	}

	rise := findEvent(events, EventRise, "jupiter")
	if rise == nil {
		t.Fatal("no RISE event for jupiter")
	}
	if !rise.Timestamp.Equal(t0.Add(5 * time.Minute)) {
		t.Errorf("rise timestamp = %v", rise.Timestamp)
	}
	if rise.Altitude != 0.6 {
		t.Errorf("rise altitude = %v, want 0.6", rise.Altitude)
	}

	if findEvent(events, EventSet, "mercury") == nil {
		t.Error("no SET event for mercury")
	}
}

func TestManager_EventDetection_DroppedAndResumed(t *testing.T) {
	m := NewManager(DefaultConfig())

	m.Update(result(t0, astro.SkyDay, obs("neptune", 30)), 0, nil)

	dropped := result(t0.Add(time.Minute), astro.SkyDay)
	dropped.Warnings = []engine.Warning{{Body: "neptune", Message: "horizons unavailable"}}
	m.Update(dropped, 0, nil)
	m.Update(dropped, 0, nil)
	m.Update(result(t0.Add(3*time.Minute), astro.SkyDay, obs("neptune", 29)), 0, nil)

	events := m.RecentEvents(10)
	if len(events) != 2 {
		t.Fatalf("expected DROPPED once then RESUMED, got %+v", events)
	}
	if events[0].Type != EventDropped || events[0].Detail != "horizons unavailable" {
		t.Errorf("events[0] = %+v", events[0])
	}
	if events[1].Type != EventResumed || events[1].Body != "neptune" {
		t.Errorf("events[1] = %+v", events[1])
	}
}

func TestManager_EventDetection_SkyCondition(t *testing.T) {
	m := NewManager(DefaultConfig())

	m.Update(result(t0, astro.SkyDay), 0, nil)
	m.Update(result(t0.Add(time.Minute), astro.SkyCivilTwilight), 0, nil)

	events := m.RecentEvents(10)
	if len(events) != 1 || events[0].Type != EventSky {
		t.Fatalf("expected one SKY event, got %+v", events)
	}
	if events[0].Detail != "day → civil twilight" {
		t.Errorf("detail = %q", events[0].Detail)
	}
}

func TestManager_EventRingBuffer(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxEvents = 5
	m := NewManager(cfg)

	// alternate above and below the horizon so every update after the
	// first produces one event
	for i := range 10 {
		alt := 1.0
		if i%2 == 1 {
			alt = -1
		}
		m.Update(result(t0.Add(time.Duration(i)*time.Minute), astro.SkyDay, obs("moon", alt)), 0, nil)
	}

	events := m.RecentEvents(100)
	if len(events) != 5 {
		t.Errorf("events count = %d, want 5 (max)", len(events))
	}
	for i := 1; i < len(events); i++ {
		if events[i].Timestamp.Before(events[i-1].Timestamp) {
			t.Errorf("events not in chronological order at index %d", i)
		}
	}
	if last := events[len(events)-1]; last.Type != EventSet || !last.Timestamp.Equal(t0.Add(9*time.Minute)) {
		t.Errorf("last event = %+v", last)
	}

	if got := m.RecentEvents(2); len(got) != 2 || !got[1].Timestamp.Equal(events[4].Timestamp) {
		t.Errorf("RecentEvents(2) = %+v", got)
	}
}
