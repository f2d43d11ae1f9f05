package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litescript/ls-planets/internal/cache"
	"github.com/litescript/ls-planets/internal/ephem"
	"github.com/litescript/ls-planets/internal/logging"
)

var envVars = []string{
	"LSP_LOG_LEVEL", "LSP_EPHEM_MODE", "LSP_HORIZONS_URL", "LSP_HORIZONS_RPS",
	"LSP_HORIZONS_TIMEOUT", "LSP_BREAKER_FAILURES", "LSP_BREAKER_COOLDOWN",
	"LSP_TOPOCENTRIC_RADEC", "LSP_CACHE_TTL", "LSP_CACHE_MAX_ENTRIES",
	"LSP_CACHE_SWEEP", "LSP_COORD_TOLERANCE", "LSP_TIME_RESOLUTION",
	"LSP_HTTP_ADDR", "LSP_TRACING_ENABLED", "LSP_TRACE_SAMPLE_RATIO",
	"LSP_WATCH_INTERVAL",
}

// clearEnv unsets every LSP_ variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, v := range envVars {
		t.Setenv(v, "")
		os.Unsetenv(v)
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "analytic", cfg.EphemMode)
	assert.Equal(t, ephem.ModeAnalytic, cfg.Mode())
	assert.Equal(t, 2.0, cfg.HorizonsRPS)
	assert.Equal(t, 15*time.Second, cfg.HorizonsTimeout)
	assert.Equal(t, 5, cfg.BreakerFailures)
	assert.False(t, cfg.TopocentricRADec)

	assert.Equal(t, cache.DefaultTTL, cfg.CacheTTL)
	assert.Equal(t, cache.DefaultMaxEntries, cfg.CacheMaxEntries)
	assert.Equal(t, cache.DefaultSweepInterval, cfg.CacheSweep)
	assert.Equal(t, cache.DefaultTolerance(), cfg.Tolerance())

	assert.Equal(t, "127.0.0.1:8080", cfg.HTTPAddr)
	assert.False(t, cfg.TracingEnabled)
	assert.Equal(t, 5*time.Second, cfg.WatchInterval)
}

func TestLoad_CustomValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("LSP_LOG_LEVEL", "debug")
	t.Setenv("LSP_EPHEM_MODE", "auto")
	t.Setenv("LSP_HORIZONS_RPS", "0.5")
	t.Setenv("LSP_BREAKER_FAILURES", "3")
	t.Setenv("LSP_TOPOCENTRIC_RADEC", "true")
	t.Setenv("LSP_CACHE_TTL", "2m")
	t.Setenv("LSP_CACHE_MAX_ENTRIES", "64")
	t.Setenv("LSP_COORD_TOLERANCE", "0.1")
	t.Setenv("LSP_TIME_RESOLUTION", "5m")
	t.Setenv("LSP_HTTP_ADDR", ":9090")
	t.Setenv("LSP_TRACING_ENABLED", "1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, ephem.ModeAuto, cfg.Mode())
	assert.True(t, cfg.TransformOptions().TopocentricEquatorial)
	assert.Equal(t, 2*time.Minute, cfg.CacheTTL)
	assert.Equal(t, cache.Tolerance{Coord: 0.1, Time: 5 * time.Minute}, cfg.Tolerance())
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.True(t, cfg.Tracing("ls-planets").Enabled)
	assert.Equal(t, "ls-planets", cfg.Tracing("ls-planets").ServiceName)

	po := cfg.ProviderOptions(logging.Discard())
	assert.Equal(t, 0.5, po.RequestsPerSecond)
	assert.Equal(t, uint32(3), po.BreakerFailures)

	cc := cfg.CacheConfig(nil, nil)
	assert.Equal(t, 2*time.Minute, cc.TTL)
	assert.Equal(t, 64, cc.MaxEntries)
}

func TestLoad_MalformedValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("LSP_CACHE_TTL", "soon")
	t.Setenv("LSP_CACHE_MAX_ENTRIES", "many")
	t.Setenv("LSP_TRACING_ENABLED", "maybe")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, cache.DefaultTTL, cfg.CacheTTL)
	assert.Equal(t, cache.DefaultMaxEntries, cfg.CacheMaxEntries)
	assert.False(t, cfg.TracingEnabled)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key, value, want string
	}{
		{"LSP_EPHEM_MODE", "spice", "LSP_EPHEM_MODE"},
		{"LSP_LOG_LEVEL", "loud", "LSP_LOG_LEVEL"},
		{"LSP_CACHE_TTL", "-1s", "LSP_CACHE_TTL"},
		{"LSP_CACHE_MAX_ENTRIES", "0", "LSP_CACHE_MAX_ENTRIES"},
		{"LSP_COORD_TOLERANCE", "2", "LSP_COORD_TOLERANCE"},
		{"LSP_TIME_RESOLUTION", "10ms", "LSP_TIME_RESOLUTION"},
		{"LSP_HORIZONS_RPS", "0", "LSP_HORIZONS_RPS"},
	}
	for _, tc := range tests {
		t.Run(tc.key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tc.key, tc.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "planets.env")
	require.NoError(t, os.WriteFile(path, []byte("LSP_EPHEM_MODE=horizons\nLSP_CACHE_SWEEP=30s\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("LSP_EPHEM_MODE")
		os.Unsetenv("LSP_CACHE_SWEEP")
	})

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, ephem.ModeHorizons, cfg.Mode())
	assert.Equal(t, 30*time.Second, cfg.CacheSweep)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}
