package ephem

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/litescript/ls-planets/internal/astro"
)

const (
	// HorizonsAPIURL is the JPL Horizons JSON API endpoint.
	HorizonsAPIURL = "https://ssd.jpl.nasa.gov/api/horizons.api"

	// RequestTimeout is the HTTP request timeout.
	RequestTimeout = 30 * time.Second

	// DefaultRequestsPerSecond keeps well under the service's fair-use limit.
	DefaultRequestsPerSecond = 2.0

	// StateCacheTTL is how long a fetched state vector is reused.
	StateCacheTTL = 10 * time.Minute

	maxCachedStates = 4096
)

// velocitySource supplies Earth's velocity for aberration; Horizons vectors
// are fetched position-only.
type velocitySource interface {
	EarthVelocity(t time.Time) astro.Vec3
}

// HorizonsProvider queries JPL Horizons for geocentric state vectors.
type HorizonsProvider struct {
	client   *http.Client
	baseURL  string
	limiter  *rate.Limiter
	velocity velocitySource
	now      func() time.Time

	mu     sync.RWMutex
	vector map[vectorKey]cachedVector
}

type vectorKey struct {
	target TargetID
	unix   int64
}

type cachedVector struct {
	pos       astro.Vec3
	fetchedAt time.Time
}

// HorizonsOption customizes a HorizonsProvider.
type HorizonsOption func(*HorizonsProvider)

// WithBaseURL points the provider at another endpoint (tests, mirrors).
func WithBaseURL(u string) HorizonsOption {
	return func(p *HorizonsProvider) { p.baseURL = u }
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) HorizonsOption {
	return func(p *HorizonsProvider) { p.client = c }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) HorizonsOption {
	return func(p *HorizonsProvider) { p.client.Timeout = d }
}

// WithRateLimit caps outbound requests per second.
func WithRateLimit(rps float64, burst int) HorizonsOption {
	return func(p *HorizonsProvider) { p.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

// NewHorizonsProvider creates a new Horizons API client. velocity supplies
// Earth's velocity for aberration and may be nil.
func NewHorizonsProvider(velocity velocitySource, opts ...HorizonsOption) *HorizonsProvider {
	p := &HorizonsProvider{
		client: &http.Client{
			Timeout: RequestTimeout,
		},
		baseURL:  HorizonsAPIURL,
		limiter:  rate.NewLimiter(rate.Limit(DefaultRequestsPerSecond), 1),
		velocity: velocity,
		now:      time.Now,
		vector:   make(map[vectorKey]cachedVector),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name implements Provider.
func (p *HorizonsProvider) Name() string {
	return "horizons"
}

// Available implements Provider.
func (p *HorizonsProvider) Available(body string) bool {
	_, ok := GetTarget(body)
	return ok
}

// State implements Provider. Positions are astrometric J2000 geocentric
// (light-time corrected).
func (p *HorizonsProvider) State(ctx context.Context, body string, t time.Time) (astro.State, error) {
	target, ok := GetTarget(body)
	if !ok {
		return astro.State{}, unavailable(p.Name(), body, t, errUnsupportedBody)
	}

	pos, err := p.GetGeocentricPosition(ctx, target.NAIFID, t)
	if err != nil {
		return astro.State{}, unavailable(p.Name(), target.Body, t, err)
	}

	st := astro.State{Position: pos, Frame: astro.FrameJ2000}
	if p.velocity != nil {
		st.EarthVelocity = p.velocity.EarthVelocity(t)
	}
	return st, nil
}

// GetGeocentricPosition returns the geocentric ICRF position in km,
// reusing a recent answer for the same target and second.
func (p *HorizonsProvider) GetGeocentricPosition(ctx context.Context, target TargetID, t time.Time) (astro.Vec3, error) {
	key := vectorKey{target: target, unix: t.Unix()}

	p.mu.RLock()
	cached, ok := p.vector[key]
	p.mu.RUnlock()

	if ok && p.now().Sub(cached.fetchedAt) < StateCacheTTL {
		return cached.pos, nil
	}

	pos, err := p.queryGeocentricVector(ctx, target, t)
	if err != nil {
		return astro.Vec3{}, err
	}

	p.mu.Lock()
	p.pruneLocked()
	p.vector[key] = cachedVector{pos: pos, fetchedAt: p.now()}
	p.mu.Unlock()

	return pos, nil
}

// pruneLocked drops stale vectors, and everything if the map is full.
func (p *HorizonsProvider) pruneLocked() {
	now := p.now()
	for k, v := range p.vector {
		if now.Sub(v.fetchedAt) >= StateCacheTTL {
			delete(p.vector, k)
		}
	}
	if len(p.vector) >= maxCachedStates {
		clear(p.vector)
	}
}

// queryGeocentricVector makes a VECTORS request to the Horizons API.
func (p *HorizonsProvider) queryGeocentricVector(ctx context.Context, target TargetID, t time.Time) (astro.Vec3, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return astro.Vec3{}, fmt.Errorf("rate limiter: %w", err)
	}

	// Values must be quoted with single quotes
	params := url.Values{}
	params.Set("format", "json")
	params.Set("COMMAND", fmt.Sprintf("'%d'", target))
	params.Set("OBJ_DATA", "NO")
	params.Set("MAKE_EPHEM", "YES")
	params.Set("EPHEM_TYPE", "VECTORS")
	params.Set("CENTER", "'500@399'") // geocenter
	params.Set("REF_PLANE", "FRAME")
	params.Set("REF_SYSTEM", "ICRF")
	params.Set("VEC_TABLE", "'1'")    // position only
	params.Set("VEC_CORR", "'LT'")    // astrometric
	params.Set("OUT_UNITS", "'KM-S'") // km
	params.Set("TIME_TYPE", "UT")
	params.Set("TLIST_TYPE", "JD")
	params.Set("TLIST", fmt.Sprintf("'%.9f'", astro.JulianDate(t)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return astro.Vec3{}, fmt.Errorf("build horizons request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return astro.Vec3{}, fmt.Errorf("horizons request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return astro.Vec3{}, fmt.Errorf("horizons returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return astro.Vec3{}, fmt.Errorf("failed to read response: %w", err)
	}

	return parseVectorResponse(body)
}

// horizonsResponse represents the JSON API response.
type horizonsResponse struct {
	Signature struct {
		Version string `json:"version"`
		Source  string `json:"source"`
	} `json:"signature"`
	Result string `json:"result"`
	Error  string `json:"error"`
}

var errNoVectorData = errors.New("could not find vector data markers")

// parseVectorResponse parses the Horizons JSON response for vector data.
func parseVectorResponse(body []byte) (astro.Vec3, error) {
	var resp horizonsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return astro.Vec3{}, fmt.Errorf("failed to parse JSON: %w", err)
	}
	if resp.Error != "" {
		return astro.Vec3{}, fmt.Errorf("horizons error: %s", strings.TrimSpace(resp.Error))
	}

	// Data section sits between $$SOE and $$EOE markers
	soeIdx := strings.Index(resp.Result, "$$SOE")
	eoeIdx := strings.Index(resp.Result, "$$EOE")
	if soeIdx == -1 || eoeIdx == -1 || soeIdx >= eoeIdx {
		return astro.Vec3{}, errNoVectorData
	}

	// Vector format (VEC_TABLE='1'):
	// 2460424.492361111 = A.D. 2024-Apr-23 23:49:00.0000 TDB
	//  X =-3.586836711437131E+05 Y =-1.437432658114574E+05 Z =-6.244815063853411E+04
	// or, with VEC_LABELS=NO, three bare numbers.
	for _, line := range strings.Split(resp.Result[soeIdx+5:eoeIdx], "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.Contains(line, "A.D.") {
			continue
		}

		if strings.Contains(line, "X =") {
			return parseVectorLabeled(line)
		}

		vec, err := parseVectorUnlabeled(line)
		if err == nil {
			return vec, nil
		}
	}

	return astro.Vec3{}, fmt.Errorf("could not parse vector data")
}

// parseVectorLabeled parses: X = 1.23E+00 Y = 2.34E+00 Z = 3.45E-01
func parseVectorLabeled(line string) (astro.Vec3, error) {
	// "X =-1E+05 Y =..." splits into ["X ", "-1E+05 Y ", "... Z ", "..."]
	parts := strings.Split(line, "=")
	if len(parts) < 4 {
		return astro.Vec3{}, fmt.Errorf("invalid labeled format")
	}

	var out [3]float64
	for i := range out {
		fields := strings.Fields(parts[i+1])
		if len(fields) == 0 {
			return astro.Vec3{}, fmt.Errorf("invalid labeled format")
		}
		v, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return astro.Vec3{}, err
		}
		out[i] = v
	}

	return astro.Vec3{X: out[0], Y: out[1], Z: out[2]}, nil
}

// parseVectorUnlabeled parses: 1.23E+00  2.34E+00  3.45E-01
func parseVectorUnlabeled(line string) (astro.Vec3, error) {
	fields := strings.Fields(strings.ReplaceAll(line, ",", " "))
	if len(fields) < 3 {
		return astro.Vec3{}, fmt.Errorf("insufficient fields: %d", len(fields))
	}

	var out [3]float64
	for i := range out {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return astro.Vec3{}, err
		}
		out[i] = v
	}

	return astro.Vec3{X: out[0], Y: out[1], Z: out[2]}, nil
}
