package ephem

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/litescript/ls-planets/internal/astro"
)

const sampleVectorResult = `*******************************************************************************
Ephemeris / API_USER Mon Apr 22 10:00:00 2024 Pasadena, USA      / Horizons
*******************************************************************************
Target body name: Moon (301)                      {source: DE441}
Center body name: Earth (399)                     {source: DE441}
*******************************************************************************
$$SOE
2460424.492361111 = A.D. 2024-Apr-23 23:49:00.0000 TDB
 X =-3.586836711437131E+05 Y =-1.437432658114574E+05 Z =-6.244815063853411E+04
$$EOE
*******************************************************************************
`

func horizonsJSON(t *testing.T, result string) []byte {
	t.Helper()
	b, err := json.Marshal(map[string]any{
		"signature": map[string]string{"version": "1.2", "source": "NASA/JPL Horizons API"},
		"result":    result,
	})
	if err != nil {
		t.Fatal(err)
	}
	return b
}

type fixedVelocity astro.Vec3

func (v fixedVelocity) EarthVelocity(time.Time) astro.Vec3 { return astro.Vec3(v) }

func TestHorizonsProvider_State(t *testing.T) {
	var hits atomic.Int32
	var mu sync.Mutex
	var gotQuery map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		q := r.URL.Query()
		mu.Lock()
		defer mu.Unlock()
		gotQuery = map[string]string{
			"COMMAND":    q.Get("COMMAND"),
			"CENTER":     q.Get("CENTER"),
			"EPHEM_TYPE": q.Get("EPHEM_TYPE"),
			"VEC_CORR":   q.Get("VEC_CORR"),
			"REF_SYSTEM": q.Get("REF_SYSTEM"),
		}
		_, _ = w.Write(horizonsJSON(t, sampleVectorResult))
	}))
	defer srv.Close()

	vel := fixedVelocity{X: 1, Y: 2, Z: 3}
	p := NewHorizonsProvider(vel, WithBaseURL(srv.URL), WithRateLimit(1000, 10))
	at := time.Date(2024, 4, 23, 23, 49, 0, 0, time.UTC)

	st, err := p.State(context.Background(), "moon", at)
	if err != nil {
		t.Fatalf("State() error = %v", err)
	}

	want := astro.Vec3{X: -3.586836711437131e5, Y: -1.437432658114574e5, Z: -6.244815063853411e4}
	if st.Position != want {
		t.Errorf("Position = %v, want %v", st.Position, want)
	}
	if st.Frame != astro.FrameJ2000 {
		t.Errorf("Frame = %v, want J2000", st.Frame)
	}
	if st.EarthVelocity != astro.Vec3(vel) {
		t.Errorf("EarthVelocity = %v, want %v", st.EarthVelocity, vel)
	}

	expected := map[string]string{
		"COMMAND":    "'301'",
		"CENTER":     "'500@399'",
		"EPHEM_TYPE": "VECTORS",
		"VEC_CORR":   "'LT'",
		"REF_SYSTEM": "ICRF",
	}
	mu.Lock()
	query := gotQuery
	mu.Unlock()
	for k, v := range expected {
		if query[k] != v {
			t.Errorf("query %s = %q, want %q", k, query[k], v)
		}
	}

	// same instant is served from memory
	if _, err := p.State(context.Background(), "moon", at); err != nil {
		t.Fatal(err)
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("server hit %d times, want 1", n)
	}
}

func TestHorizonsProvider_MemoExpires(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write(horizonsJSON(t, sampleVectorResult))
	}))
	defer srv.Close()

	now := time.Date(2024, 4, 23, 0, 0, 0, 0, time.UTC)
	p := NewHorizonsProvider(nil, WithBaseURL(srv.URL), WithRateLimit(1000, 10))
	p.now = func() time.Time { return now }

	at := time.Date(2024, 4, 23, 23, 49, 0, 0, time.UTC)
	for range 2 {
		if _, err := p.State(context.Background(), "moon", at); err != nil {
			t.Fatal(err)
		}
	}
	now = now.Add(StateCacheTTL)
	if _, err := p.State(context.Background(), "moon", at); err != nil {
		t.Fatal(err)
	}

	if n := hits.Load(); n != 2 {
		t.Errorf("server hit %d times, want 2", n)
	}
}

func TestHorizonsProvider_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "maintenance", http.StatusServiceUnavailable)
			},
		},
		{
			name: "api error field",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"error":"No ephemeris for target \"301\" prior to A.D. 1550"}`))
			},
		},
		{
			name: "missing markers",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write(horizonsJSON(t, "no data here"))
			},
		},
		{
			name: "not json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("<html>"))
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()

			p := NewHorizonsProvider(nil, WithBaseURL(srv.URL), WithRateLimit(1000, 10))
			_, err := p.State(context.Background(), "moon", time.Now())
			if !errors.Is(err, ErrProviderUnavailable) {
				t.Errorf("State() error = %v, want ErrProviderUnavailable", err)
			}
		})
	}
}

func TestHorizonsProvider_UnknownBody(t *testing.T) {
	p := NewHorizonsProvider(nil, WithBaseURL("http://127.0.0.1:0"))
	if p.Available("vulcan") {
		t.Error("Available(vulcan) = true")
	}
	_, err := p.State(context.Background(), "vulcan", time.Now())
	if !errors.Is(err, errUnsupportedBody) {
		t.Errorf("State(vulcan) error = %v, want errUnsupportedBody", err)
	}
}

func TestHorizonsProvider_RateLimitRespectsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(horizonsJSON(t, sampleVectorResult))
	}))
	defer srv.Close()

	p := NewHorizonsProvider(nil, WithBaseURL(srv.URL), WithRateLimit(0.001, 1))
	if _, err := p.State(context.Background(), "moon", time.Unix(1e9, 0)); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := p.State(ctx, "mars", time.Unix(1e9, 0))
	if !errors.Is(err, ErrProviderUnavailable) {
		t.Errorf("State() error = %v, want ErrProviderUnavailable", err)
	}
}

func TestParseVectorLines(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		labeled bool
		want    astro.Vec3
		wantErr bool
	}{
		{
			name:    "labeled",
			line:    "X =-3.586836711437131E+05 Y =-1.437432658114574E+05 Z =-6.244815063853411E+04",
			labeled: true,
			want:    astro.Vec3{X: -3.586836711437131e5, Y: -1.437432658114574e5, Z: -6.244815063853411e4},
		},
		{
			name:    "labeled positive",
			line:    "X = 1.0E+00 Y = 2.0E+00 Z = 3.0E+00",
			labeled: true,
			want:    astro.Vec3{X: 1, Y: 2, Z: 3},
		},
		{
			name: "unlabeled",
			line: "1.234E+08  -2.5E+07  4.0E+06",
			want: astro.Vec3{X: 1.234e8, Y: -2.5e7, Z: 4e6},
		},
		{
			name: "csv",
			line: "1.0E+00, 2.0E+00, 3.0E+00,",
			want: astro.Vec3{X: 1, Y: 2, Z: 3},
		},
		{name: "short", line: "1.0 2.0", wantErr: true},
		{name: "garbage", line: "X = a Y = b Z = c", labeled: true, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			parse := parseVectorUnlabeled
			if tc.labeled {
				parse = parseVectorLabeled
			}
			got, err := parse(tc.line)
			if tc.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestHorizonsProvider_Integration(t *testing.T) {
	if testing.Short() || os.Getenv("LSP_HORIZONS_INTEGRATION") == "" {
		t.Skip("set LSP_HORIZONS_INTEGRATION=1 to query the live Horizons API")
	}

	analytic := NewAnalyticProvider()
	p := NewHorizonsProvider(analytic)
	at := time.Now().UTC().Truncate(time.Minute)

	for _, body := range []string{"moon", "jupiter"} {
		live, err := p.State(context.Background(), body, at)
		if err != nil {
			t.Fatalf("State(%s) error = %v", body, err)
		}
		approx, err := analytic.State(context.Background(), body, at)
		if err != nil {
			t.Fatal(err)
		}
		sep := astro.AngleBetween(live.Position, approx.Position)
		t.Logf("%s: horizons vs analytic separation %.3f°", body, sep)
		if sep > 1 {
			t.Errorf("%s: separation %.3f° exceeds 1°", body, sep)
		}
	}
}
