package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/litescript/ls-planets/internal/api"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(o *options) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve sky queries as JSON over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := api.DefaultServerConfig()
			cfg.Addr = o.app.Config.HTTPAddr
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			return runServer(cmd.Context(), o.app, cfg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from LSP_HTTP_ADDR)")
	return cmd
}

// runServer serves until ctx is cancelled, then drains in-flight requests.
func runServer(ctx context.Context, app *App, cfg api.ServerConfig) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go app.Cache.Run(ctx, app.Config.CacheSweep)

	srv := api.NewServer(cfg, app.Service, app.Log, app.Metrics)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, done := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer done()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	st := app.Cache.Stats()
	app.Log.Info("server stopped", "cache_hits", st.Hits, "cache_misses", st.Misses, "coalesced", st.Coalesced)
	return nil
}
