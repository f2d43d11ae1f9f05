// Package version provides build and version information.
package version

// Version is the current application version.
const Version = "0.3.0"

// Milestones:
// 0.3.0 - HTTP API, Prometheus metrics, tracing, watch view, Horizons circuit breaker
// 0.2.0 - Result cache with request coalescing, twilight and rise/set windows
// 0.1.0 - Initial release: analytic ephemeris, topocentric transform, sky query CLI
