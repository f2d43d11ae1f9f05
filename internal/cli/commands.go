package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/litescript/ls-planets/internal/engine"
	"github.com/litescript/ls-planets/internal/query"
	"github.com/litescript/ls-planets/internal/ui"
)

func newQueryCommand(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "query",
		Aliases: []string{"sky", "now"},
		Short:   "List bodies above the horizon",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, o)
		},
	}
	addQueryFlags(cmd, o)
	return cmd
}

func runQuery(cmd *cobra.Command, o *options) error {
	asJSON, err := o.wantJSON(cmd.OutOrStdout())
	if err != nil {
		return err
	}

	res, err := o.app.Service.Query(cmd.Context(), o.params(cmd))
	if err != nil {
		return err
	}
	view := query.NewView(res)

	if asJSON {
		return writeJSON(cmd.OutOrStdout(), view)
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), ui.RenderTable(view))
	return err
}

func newBodyCommand(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "body <id>",
		Short: "Show one body, whether or not it is up",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, err := o.wantJSON(cmd.OutOrStdout())
			if err != nil {
				return err
			}

			p := o.params(cmd)
			obs, err := o.app.Service.Body(cmd.Context(), p, args[0])
			if err != nil {
				return err
			}
			bv := query.NewBodyView(obs, p.ShowCoords)

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), bv)
			}
			// same key as the lookup above, so this is served from the cache
			p.Bodies = []string{obs.ID}
			above := false
			p.AboveHorizon = &above
			res, err := o.app.Service.Query(cmd.Context(), p)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), ui.RenderTable(query.NewView(res)))
			return err
		},
	}
	cmd.Flags().BoolVar(&o.coords, "coords", false, "include RA/Dec")
	return cmd
}

func newWindowCommand(o *options) *cobra.Command {
	var span, step time.Duration
	cmd := &cobra.Command{
		Use:   "window <id>",
		Short: "Find the next rise, transit and set of a body",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, err := o.wantJSON(cmd.OutOrStdout())
			if err != nil {
				return err
			}

			w, err := o.app.Service.Window(cmd.Context(), o.params(cmd), args[0], span, step)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), w)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), ui.RenderWindow(w, time.Local))
			return err
		},
	}
	cmd.Flags().DurationVar(&span, "span", engine.DefaultWindowSpan, "time range to search")
	cmd.Flags().DurationVar(&step, "step", engine.DefaultWindowStep, "altitude sample interval")
	return cmd
}

func newTwilightCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "twilight",
		Short: "Show sunrise, sunset and twilight for the day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, err := o.wantJSON(cmd.OutOrStdout())
			if err != nil {
				return err
			}

			tw, err := o.app.Service.Twilight(cmd.Context(), o.params(cmd))
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), tw)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), ui.RenderTwilight(tw, time.Local))
			return err
		},
	}
}
