package cli

import (
	"strings"

	"helpr/internal/model"
	"helpr/internal/view"

	"github.com/spf13/cobra"
)

func newQueueCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "queue",
		Short: "Show every request in service order (tutor)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, _, err := app.desk(cmd.Context(), model.RoleTutor)
			if err != nil {
				return writeErr(cmd, err)
			}
			snap, err := d.Refresh(cmd.Context())
			return writeSnapshot(cmd, app, snap, nil, tutorHints(snap.Tutor), err)
		},
	}
}

func newClaimCmd(app *App) *cobra.Command {
	return newRowActionCmd(app, model.ActionHelp, &cobra.Command{
		Use:     "claim <zid>",
		Aliases: []string{"take"},
		Short:   "Start helping a waiting request (tutor)",
		Long: strings.TrimSpace(`
Start helping a waiting request. This is the service's "help" action; the
verb is "claim" on the command line because "help" shows usage.
`),
	})
}

func newResolveCmd(app *App) *cobra.Command {
	return newRowActionCmd(app, model.ActionResolve, &cobra.Command{
		Use:   "resolve <zid>",
		Short: "Finish a request you are helping; it leaves the queue (tutor)",
	})
}

func newRevertCmd(app *App) *cobra.Command {
	return newRowActionCmd(app, model.ActionRevert, &cobra.Command{
		Use:   "revert <zid>",
		Short: "Put a request back to waiting, keeping its place (tutor)",
	})
}

// newRowActionCmd wires a per-request tutor action. Unless --force is given, the
// queue is fetched first and the action is only sent when the row offers it.
func newRowActionCmd(app *App, action model.Action, cmd *cobra.Command) *cobra.Command {
	var force bool
	cmd.Args = cobra.ExactArgs(1)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		zid := strings.TrimSpace(args[0])
		d, _, err := app.desk(cmd.Context(), model.RoleTutor)
		if err != nil {
			return writeErr(cmd, err)
		}
		if !force {
			snap, err := d.Refresh(cmd.Context())
			if err != nil {
				return writeSnapshot(cmd, app, snap, nil, nil, err)
			}
			if row, ok := findRow(snap.Tutor, zid); !ok || !row.Enabled(action) {
				var r *model.Request
				if ok {
					r = &row.Request
				}
				return writeSnapshot(cmd, app, snap, nil, nil, gateError(action, zid, r))
			}
		}
		snap, err := d.Dispatch(cmd.Context(), action, zid, "")
		return writeSnapshot(cmd, app, snap, nil, tutorHints(snap.Tutor), err)
	}
	cmd.Flags().BoolVar(&force, "force", false, "Send even if the last fetched state says the action is unavailable")
	return cmd
}

func findRow(v *view.TutorView, zid string) (view.TutorRow, bool) {
	if v == nil {
		return view.TutorRow{}, false
	}
	for _, row := range v.Rows {
		if row.ZID == zid {
			return row, true
		}
	}
	return view.TutorRow{}, false
}

func newReprioritiseCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "reprioritise",
		Aliases: []string{"reprioritize"},
		Short:   "Move students with fewer resolved requests this session to the front (tutor)",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, _, err := app.desk(cmd.Context(), model.RoleTutor)
			if err != nil {
				return writeErr(cmd, err)
			}
			snap, err := d.Reprioritise(cmd.Context())
			return writeSnapshot(cmd, app, snap, nil, tutorHints(snap.Tutor), err)
		},
	}
}

func newEndCmd(app *App) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "end",
		Short: "End the session: clear the whole queue (admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, _, err := app.desk(cmd.Context(), model.RoleTutor)
			if err != nil {
				return writeErr(cmd, err)
			}
			if !force {
				snap, err := d.Refresh(cmd.Context())
				if err != nil {
					return writeSnapshot(cmd, app, snap, nil, nil, err)
				}
				if !snap.Tutor.EndSession.Enabled {
					return writeErr(cmd, notAdminError{zid: d.Session().ZID})
				}
			}
			snap, err := d.End(cmd.Context())
			return writeSnapshot(cmd, app, snap, nil, nil, err)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Send even if this identity is not the configured administrator")
	return cmd
}
