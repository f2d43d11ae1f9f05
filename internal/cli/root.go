// Package cli implements the ls-planets command tree.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/litescript/ls-planets/internal/config"
	"github.com/litescript/ls-planets/internal/logging"
	"github.com/litescript/ls-planets/internal/observability"
	"github.com/litescript/ls-planets/internal/query"
	"github.com/litescript/ls-planets/internal/version"
)

// Output formats for one-shot commands.
const (
	FormatAuto  = "auto"
	FormatTable = "table"
	FormatJSON  = "json"
)

// options are the flags shared by every command.
type options struct {
	envFile  string
	logLevel string
	mode     string
	format   string

	lat, lon, elevation float64
	instant             string
	bodies              []string
	coords              bool
	all                 bool
	topocentric         bool

	// set in PersistentPreRunE
	app             *App
	startedAt       time.Time
	correlationID   uuid.UUID
	shutdownTracing func(context.Context) error

	// registry for metrics; nil uses the global registry
	registry prometheus.Registerer
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&options{})
}

func newRootCommand(o *options) *cobra.Command {
	root := &cobra.Command{
		Use:   "ls-planets",
		Short: "Where the Sun, Moon and planets are in your sky",
		Long: `ls-planets computes the altitude, azimuth, brightness and constellation
of solar-system bodies for an observer on Earth.

Examples:
  ls-planets                                # what is up now over the default site
  ls-planets query --lat 51.48 --lon 0 --all
  ls-planets body moon --coords
  ls-planets window mars --span 48h
  ls-planets twilight --time 2024-12-21
  ls-planets serve --addr :8080
  ls-planets watch`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return o.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			o.teardown(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, o)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&o.envFile, "env-file", "", "load settings from this env file instead of ./.env")
	pf.StringVar(&o.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&o.mode, "mode", "", "ephemeris source (analytic, horizons, auto)")
	pf.StringVarP(&o.format, "format", "o", FormatAuto, "output format (auto, table, json)")
	pf.Float64Var(&o.lat, "lat", query.DefaultLatitude, "observer latitude in degrees")
	pf.Float64Var(&o.lon, "lon", query.DefaultLongitude, "observer longitude in degrees, east positive")
	pf.Float64Var(&o.elevation, "elevation", query.DefaultElevation, "observer elevation in meters")
	pf.StringVarP(&o.instant, "time", "t", "", "ISO-8601 instant (default now)")
	pf.BoolVar(&o.topocentric, "topocentric", false, "report topocentric instead of geocentric RA/Dec")

	addQueryFlags(root, o)

	root.AddCommand(
		newQueryCommand(o),
		newBodyCommand(o),
		newWindowCommand(o),
		newTwilightCommand(o),
		newServeCommand(o),
		newWatchCommand(o),
		newVersionCommand(),
	)
	return root
}

func addQueryFlags(cmd *cobra.Command, o *options) {
	cmd.Flags().StringSliceVarP(&o.bodies, "bodies", "b", nil, "comma-separated body ids (default all)")
	cmd.Flags().BoolVar(&o.coords, "coords", false, "include RA/Dec")
	cmd.Flags().BoolVarP(&o.all, "all", "a", false, "include bodies below the horizon")
}

// setup loads configuration, applies flag overrides and wires the app.
func (o *options) setup(cmd *cobra.Command) error {
	if cmd.Name() == "version" || cmd.Name() == "help" {
		return nil
	}

	var (
		cfg *config.Config
		err error
	)
	if o.envFile != "" {
		cfg, err = config.LoadFile(o.envFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if flags.Changed("mode") {
		cfg.EphemMode = o.mode
	}
	if flags.Changed("topocentric") {
		cfg.TopocentricRADec = o.topocentric
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log := logging.NewWithWriter(cmd.ErrOrStderr(), logging.ParseLevel(cfg.LogLevel))

	o.startedAt = time.Now()
	o.correlationID = uuid.New()
	log = log.With("correlation_id", o.correlationID.String())

	o.shutdownTracing, err = observability.InitTracing(cmd.Context(), cfg.Tracing("ls-planets"), log)
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}

	o.app, err = NewApp(cfg, log, o.registry)
	if err != nil {
		return err
	}
	log.Debug("command start", "command", cmd.CommandPath())
	return nil
}

func (o *options) teardown(cmd *cobra.Command) {
	if o.app == nil {
		return
	}
	observability.ShutdownWithTimeout(context.WithoutCancel(cmd.Context()), o.shutdownTracing, o.app.Log)
	o.app.Log.Debug("command end",
		"command", cmd.CommandPath(),
		"took", logging.Since(o.startedAt),
	)
}

// params maps the flags onto a query. Observer fields are only set when
// given so the service applies its own defaults.
func (o *options) params(cmd *cobra.Command) query.Params {
	p := query.Params{
		Instant:    o.instant,
		Bodies:     o.bodies,
		ShowCoords: o.coords,
	}
	flags := cmd.Flags()
	if flags.Changed("lat") {
		p.Latitude = &o.lat
	}
	if flags.Changed("lon") {
		p.Longitude = &o.lon
	}
	if flags.Changed("elevation") {
		p.Elevation = &o.elevation
	}
	if o.all {
		above := false
		p.AboveHorizon = &above
	}
	return p
}

// wantJSON resolves the output format for w.
func (o *options) wantJSON(w io.Writer) (bool, error) {
	switch o.format {
	case FormatJSON:
		return true, nil
	case FormatTable:
		return false, nil
	case FormatAuto, "":
		return !isTerminal(w), nil
	default:
		return false, fmt.Errorf("unknown format %q (want auto, table or json)", o.format)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Execute runs the command tree with ctx and exits non-zero on error.
func Execute(ctx context.Context) {
	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		os.Exit(1)
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ls-planets v%s\n", version.Version)
		},
	}
}
