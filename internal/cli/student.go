package cli

import (
	"strings"

	"helpr/internal/model"

	"github.com/spf13/cobra"
)

func newRequestCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "request <description...>",
		Aliases: []string{"ask"},
		Short:   "Ask for help (student)",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, _, err := app.desk(cmd.Context(), model.RoleStudent)
			if err != nil {
				return writeErr(cmd, err)
			}
			desc := strings.TrimSpace(strings.Join(args, " "))
			snap, err := d.Submit(cmd.Context(), desc)
			return writeSnapshot(cmd, app, snap, nil, []string{"helpr status", "helpr cancel"}, err)
		},
	}
}

func newStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show your request (student)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, c, err := app.desk(cmd.Context(), model.RoleStudent)
			if err != nil {
				return writeErr(cmd, err)
			}
			snap, err := d.Refresh(cmd.Context())
			if err != nil {
				return writeSnapshot(cmd, app, snap, nil, nil, err)
			}

			var remaining *int
			var hints []string
			if r := snap.Student.Request; r != nil && r.Status == model.StatusWaiting {
				// Position is advisory; a failure here does not fail status.
				if n, rerr := c.Remaining(cmd.Context(), r.ZID); rerr == nil {
					remaining = &n
				}
				hints = append(hints, "helpr cancel")
			} else if snap.Student.CanSubmit {
				hints = append(hints, "helpr request <description>")
			}
			return writeSnapshot(cmd, app, snap, remaining, hints, nil)
		},
	}
}

func newCancelCmd(app *App) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "cancel",
		Short: "Withdraw your waiting request (student)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, _, err := app.desk(cmd.Context(), model.RoleStudent)
			if err != nil {
				return writeErr(cmd, err)
			}
			if !force {
				snap, err := d.Refresh(cmd.Context())
				if err != nil {
					return writeSnapshot(cmd, app, snap, nil, nil, err)
				}
				if c := snap.Student.Cancel; c == nil || !c.Enabled {
					return writeSnapshot(cmd, app, snap, nil, nil, gateError(model.ActionCancel, snap.Student.ZID, snap.Student.Request))
				}
			}
			snap, err := d.Cancel(cmd.Context())
			return writeSnapshot(cmd, app, snap, nil, nil, err)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Send even if the last fetched state says cancel is unavailable")
	return cmd
}

func newRemainingCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remaining",
		Short: "How many waiting requests are ahead of yours (student)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := app.session(model.RoleStudent)
			if err != nil {
				return writeErr(cmd, err)
			}
			c, err := app.client(sess)
			if err != nil {
				return writeErr(cmd, err)
			}
			n, err := c.Remaining(cmd.Context(), sess.ZID)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"zid": sess.ZID, "remaining": n}})
		},
	}
}
