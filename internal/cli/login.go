package cli

import (
	"errors"
	"strings"

	"helpr/internal/model"
	"helpr/internal/perm"

	"github.com/spf13/cobra"
)

func newLoginCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "login <student|tutor> <zid>",
		Short: "Save the session used by every other command",
		Long: strings.TrimSpace(`
Save a session (role + identity) in the state dir. Any previous session is
replaced. Identity is self-asserted: the service trusts it as given.
`),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			role, err := model.ParseRole(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			zid := strings.TrimSpace(args[1])
			if zid == "" {
				return writeErr(cmd, errors.New("login: zid is empty"))
			}
			fs, err := app.sessionStore()
			if err != nil {
				return writeErr(cmd, err)
			}
			sess := model.Session{Role: role, ZID: zid}
			if err := fs.Login(sess); err != nil {
				return writeErr(cmd, err)
			}

			hints := []string{"helpr status", "helpr request <description>"}
			if role == model.RoleTutor {
				hints = []string{"helpr queue", "helpr claim <zid>"}
			}
			return writeOut(cmd, app, map[string]any{"data": sess, "_hints": hints})
		},
	}
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, err := app.sessionStore()
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := fs.Logout(); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"loggedOut": true}})
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the acting session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := app.session("")
			if err != nil {
				return writeErr(cmd, err)
			}
			cfg, err := app.config()
			if err != nil {
				return writeErr(cmd, err)
			}
			adminZID := cfg.Server.AdminZID
			if sess.Role == model.RoleTutor {
				c, err := app.client(sess)
				if err != nil {
					return writeErr(cmd, err)
				}
				adminZID = serviceAdmin(cmd.Context(), c, adminZID)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"role":   sess.Role,
				"zid":    sess.ZID,
				"admin":  perm.EndSessionEnabled(sess, adminZID),
				"server": cfg.Client.BaseURL,
			}})
		},
	}
}
