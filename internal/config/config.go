// Package config loads runtime settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/litescript/ls-planets/internal/astro"
	"github.com/litescript/ls-planets/internal/cache"
	"github.com/litescript/ls-planets/internal/ephem"
	"github.com/litescript/ls-planets/internal/logging"
	"github.com/litescript/ls-planets/internal/observability"
)

// Config holds application configuration.
type Config struct {
	LogLevel string

	// Ephemeris
	EphemMode        string
	HorizonsURL      string
	HorizonsRPS      float64
	HorizonsTimeout  time.Duration
	BreakerFailures  int
	BreakerCooldown  time.Duration
	TopocentricRADec bool

	// Cache
	CacheTTL        time.Duration
	CacheMaxEntries int
	CacheSweep      time.Duration
	CoordTolerance  float64
	TimeResolution  time.Duration

	// HTTP
	HTTPAddr string

	// Tracing
	TracingEnabled   bool
	TraceSampleRatio float64

	// Watch
	WatchInterval time.Duration
}

// Load reads configuration from the environment, after loading .env from
// the working directory if there is one.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return fromEnv()
}

// LoadFile is Load with an explicit env file, which must exist.
func LoadFile(path string) (*Config, error) {
	if err := godotenv.Load(path); err != nil {
		return nil, fmt.Errorf("load env file %s: %w", path, err)
	}
	return fromEnv()
}

func fromEnv() (*Config, error) {
	cfg := &Config{
		LogLevel: getEnv("LSP_LOG_LEVEL", "info"),

		EphemMode:        getEnv("LSP_EPHEM_MODE", "analytic"),
		HorizonsURL:      getEnv("LSP_HORIZONS_URL", ""),
		HorizonsRPS:      getFloatEnv("LSP_HORIZONS_RPS", 2),
		HorizonsTimeout:  getDurationEnv("LSP_HORIZONS_TIMEOUT", 15*time.Second),
		BreakerFailures:  getIntEnv("LSP_BREAKER_FAILURES", 5),
		BreakerCooldown:  getDurationEnv("LSP_BREAKER_COOLDOWN", 30*time.Second),
		TopocentricRADec: getBoolEnv("LSP_TOPOCENTRIC_RADEC", false),

		CacheTTL:        getDurationEnv("LSP_CACHE_TTL", cache.DefaultTTL),
		CacheMaxEntries: getIntEnv("LSP_CACHE_MAX_ENTRIES", cache.DefaultMaxEntries),
		CacheSweep:      getDurationEnv("LSP_CACHE_SWEEP", cache.DefaultSweepInterval),
		CoordTolerance:  getFloatEnv("LSP_COORD_TOLERANCE", cache.DefaultCoordTolerance),
		TimeResolution:  getDurationEnv("LSP_TIME_RESOLUTION", cache.DefaultTimeResolution),

		HTTPAddr: getEnv("LSP_HTTP_ADDR", "127.0.0.1:8080"),

		TracingEnabled:   getBoolEnv("LSP_TRACING_ENABLED", false),
		TraceSampleRatio: getFloatEnv("LSP_TRACE_SAMPLE_RATIO", 1),

		WatchInterval: getDurationEnv("LSP_WATCH_INTERVAL", 5*time.Second),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every setting that is out of range.
func (c *Config) Validate() error {
	var errs []error
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("LSP_LOG_LEVEL: unknown level %q", c.LogLevel))
	}
	switch c.EphemMode {
	case "analytic", "horizons", "auto":
	default:
		errs = append(errs, fmt.Errorf("LSP_EPHEM_MODE: unknown mode %q", c.EphemMode))
	}
	if c.HorizonsRPS <= 0 {
		errs = append(errs, errors.New("LSP_HORIZONS_RPS: must be positive"))
	}
	if c.BreakerFailures < 1 {
		errs = append(errs, errors.New("LSP_BREAKER_FAILURES: must be at least 1"))
	}
	if c.CacheTTL <= 0 {
		errs = append(errs, errors.New("LSP_CACHE_TTL: must be positive"))
	}
	if c.CacheMaxEntries < 1 {
		errs = append(errs, errors.New("LSP_CACHE_MAX_ENTRIES: must be at least 1"))
	}
	if c.CoordTolerance <= 0 || c.CoordTolerance > 1 {
		errs = append(errs, errors.New("LSP_COORD_TOLERANCE: must be within (0, 1]"))
	}
	if c.TimeResolution < time.Second {
		errs = append(errs, errors.New("LSP_TIME_RESOLUTION: must be at least 1s"))
	}
	if c.TraceSampleRatio < 0 || c.TraceSampleRatio > 1 {
		errs = append(errs, errors.New("LSP_TRACE_SAMPLE_RATIO: must be within [0, 1]"))
	}
	return errors.Join(errs...)
}

// Mode returns the parsed ephemeris mode.
func (c *Config) Mode() ephem.Mode {
	return ephem.ParseMode(c.EphemMode)
}

// ProviderOptions maps the ephemeris settings.
func (c *Config) ProviderOptions(log *logging.Logger) ephem.Options {
	return ephem.Options{
		HorizonsURL:       c.HorizonsURL,
		RequestsPerSecond: c.HorizonsRPS,
		RequestTimeout:    c.HorizonsTimeout,
		BreakerFailures:   uint32(c.BreakerFailures),
		BreakerCooldown:   c.BreakerCooldown,
		Logger:            log,
	}
}

// TransformOptions maps the coordinate settings.
func (c *Config) TransformOptions() astro.TransformOptions {
	return astro.TransformOptions{TopocentricEquatorial: c.TopocentricRADec}
}

// CacheConfig maps the cache settings.
func (c *Config) CacheConfig(log *logging.Logger, m *observability.Metrics) cache.Config {
	return cache.Config{TTL: c.CacheTTL, MaxEntries: c.CacheMaxEntries, Logger: log, Metrics: m}
}

// Tolerance is the cache key rounding.
func (c *Config) Tolerance() cache.Tolerance {
	return cache.Tolerance{Coord: c.CoordTolerance, Time: c.TimeResolution}
}

// Tracing maps the tracing settings.
func (c *Config) Tracing(service string) observability.TracingConfig {
	return observability.TracingConfig{
		Enabled:     c.TracingEnabled,
		ServiceName: service,
		SampleRatio: c.TraceSampleRatio,
	}
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
