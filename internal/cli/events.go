package cli

import (
	"strings"

	"helpr/internal/model"

	"github.com/spf13/cobra"
)

func newEventsCmd(app *App) *cobra.Command {
	var limit int
	var action string

	cmd := &cobra.Command{
		Use:   "events",
		Short: "List accepted actions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := app.session("")
			if err != nil {
				return writeErr(cmd, err)
			}
			c, err := app.client(sess)
			if err != nil {
				return writeErr(cmd, err)
			}
			var only model.Action
			if strings.TrimSpace(action) != "" {
				only, err = model.ParseAction(action)
				if err != nil {
					return writeErr(cmd, err)
				}
			}
			evs, err := c.Events(cmd.Context(), limit)
			if err != nil {
				return writeErr(cmd, err)
			}
			if only != "" {
				kept := make([]model.Event, 0, len(evs))
				for _, ev := range evs {
					if ev.Action == only {
						kept = append(kept, ev)
					}
				}
				evs = kept
			}
			return writeOut(cmd, app, map[string]any{"data": evs})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "Max events to fetch")
	cmd.Flags().StringVar(&action, "action", "", "Only show this action (e.g. help, resolve, submit)")
	return cmd
}
