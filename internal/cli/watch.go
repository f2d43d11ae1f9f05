package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/litescript/ls-planets/internal/query"
	"github.com/litescript/ls-planets/internal/state"
	"github.com/litescript/ls-planets/internal/ui"
)

const (
	minRefresh = 1 * time.Second
	maxRefresh = 5 * time.Minute
)

func newWatchCommand(o *options) *cobra.Command {
	var (
		interval time.Duration
		headless bool
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow the sky live, with rise and set events",
		Long: `watch recomputes every body at a fixed interval. On a terminal it opens
a live table and sky view; otherwise it prints a table and the new events
after each refresh.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("interval") {
				interval = o.app.Config.WatchInterval
			}
			interval = min(max(interval, minRefresh), maxRefresh)

			stateCfg := state.DefaultConfig()
			stateCfg.RefreshInterval = interval
			w := &watcher{
				app:    o.app,
				state:  state.NewManager(stateCfg),
				params: o.params(cmd),
			}
			// watch always follows the clock and keeps every body so
			// horizon crossings can be detected
			w.params.Instant = ""
			above := false
			w.params.AboveHorizon = &above

			if headless || !isTerminal(cmd.OutOrStdout()) {
				return w.runHeadless(cmd.Context(), cmd.OutOrStdout(), 0)
			}
			return w.runTUI(cmd.Context(), observerTitle(w.params))
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 5*time.Second, "refresh interval (default from LSP_WATCH_INTERVAL)")
	cmd.Flags().BoolVar(&headless, "headless", false, "print updates instead of opening the live view")
	cmd.Flags().StringSliceVarP(&o.bodies, "bodies", "b", nil, "comma-separated body ids (default all)")
	return cmd
}

type watcher struct {
	app    *App
	state  *state.Manager
	params query.Params
	now    func() time.Time
}

// fetch runs one query and records it. The returned snapshot reflects the
// state after the update.
func (w *watcher) fetch(ctx context.Context) state.Snapshot {
	now := time.Now
	if w.now != nil {
		now = w.now
	}
	at := now().UTC()
	p := w.params
	p.At = &at

	start := time.Now()
	res, err := w.app.Service.Query(ctx, p)
	took := time.Since(start)
	if err != nil {
		w.app.Log.Error("fetch failed", "err", err)
		w.state.Update(nil, took, err)
		return w.state.Snapshot()
	}

	w.app.Log.Debug("fetch complete", "bodies", len(res.Observations), "warnings", len(res.Warnings), "took", took)
	w.state.Update(&res, took, nil)
	return w.state.Snapshot()
}

func (w *watcher) runTUI(ctx context.Context, title string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// log lines would tear the alt screen
	w.app.Log.SetOutput(io.Discard)

	p := tea.NewProgram(ui.New(w.state, title), tea.WithAltScreen(), tea.WithContext(ctx))
	go w.runFetchLoop(ctx, p)

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("run TUI: %w", err)
	}
	return nil
}

func (w *watcher) runFetchLoop(ctx context.Context, p *tea.Program) {
	send := func() {
		snap := w.fetch(ctx)
		if ctx.Err() != nil {
			return
		}
		if snap.LastError != nil {
			p.Send(ui.ErrorMsg{Error: snap.LastError})
		}
		p.Send(ui.DataUpdateMsg{Snapshot: snap})
	}
	send()

	ticker := time.NewTicker(w.state.RefreshInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.app.Log.Debug("fetch loop shutting down")
			return
		case <-ticker.C:
			send()
		}
	}
}

// runHeadless prints a table after every refresh, followed by the events
// raised since the previous one. A positive limit stops after that many
// refreshes.
func (w *watcher) runHeadless(ctx context.Context, out io.Writer, limit int) error {
	outputOnce := func() {
		snap := w.fetch(ctx)
		if snap.LastError != nil {
			fmt.Fprintf(out, "Error: %v\n", snap.LastError)
			return
		}
		fmt.Fprint(out, ui.RenderTable(query.NewView(*snap.Result)))

		// events are stamped with the instant of the result that raised them
		var fresh []state.Event
		for _, e := range snap.Events {
			if e.Timestamp.Equal(snap.Result.Instant) {
				fresh = append(fresh, e)
			}
		}
		if len(fresh) > 0 {
			fmt.Fprintln(out)
			fmt.Fprint(out, ui.RenderEvents(fresh, len(fresh)))
		}
	}

	outputOnce()
	if limit == 1 {
		return nil
	}

	ticker := time.NewTicker(w.state.RefreshInterval())
	defer ticker.Stop()

	for n := 1; limit <= 0 || n < limit; n++ {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			fmt.Fprintln(out)
			outputOnce()
		}
	}
	return nil
}

// observerTitle summarises the observer for the TUI header.
func observerTitle(p query.Params) string {
	lat, lon := query.DefaultLatitude, query.DefaultLongitude
	if p.Latitude != nil {
		lat = *p.Latitude
	}
	if p.Longitude != nil {
		lon = *p.Longitude
	}
	ns, ew := "N", "E"
	if lat < 0 {
		ns, lat = "S", -lat
	}
	if lon < 0 {
		ew, lon = "W", -lon
	}
	return fmt.Sprintf("%.2f°%s %.2f°%s", lat, ns, lon, ew)
}
