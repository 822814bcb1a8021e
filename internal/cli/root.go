package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"helpr/internal/client"
	"helpr/internal/config"
	"helpr/internal/desk"
	"helpr/internal/format"
	"helpr/internal/model"
	"helpr/internal/session"
	"helpr/internal/tui"

	"github.com/spf13/cobra"
)

type App struct {
	Server     string
	StateDir   string
	ConfigPath string
	PrettyJSON bool
	Format     string
	As         roleFlag
	ZID        string

	cfg    *config.Config
	envErr error
}

func NewRootCmd() *cobra.Command {
	app := &App{}
	if v := os.Getenv("HELPR_ROLE"); v != "" {
		app.envErr = app.As.Set(v)
	}

	cmd := &cobra.Command{
		Use:          "helpr",
		Short:        "Help-desk queue for lab sessions: students ask, tutors help",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Run the queue service
  helpr serve --addr 127.0.0.1:8080

  # As a student
  helpr login student z1111111
  helpr request "need help with recursion"
  helpr status

  # As a tutor
  helpr login tutor t2222222
  helpr queue
  helpr claim z1111111

  # Interactive view for whoever is logged in
  helpr
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if app.envErr != nil {
			return writeErr(cmd, fmt.Errorf("HELPR_ROLE: %w", app.envErr))
		}
		switch app.Format {
		case "json", "text":
		default:
			return writeErr(cmd, fmt.Errorf("unknown format: %s (expected json|text)", app.Format))
		}
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.Server, "server", envOr("HELPR_SERVER", ""), "Queue service base URL (default from config: http://127.0.0.1:8080)")
	cmd.PersistentFlags().StringVar(&app.StateDir, "state-dir", envOr("HELPR_STATE_DIR", ""), "Directory holding the saved session (default ~/.helpr)")
	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", envOr("HELPR_CONFIG", ""), "Path to a YAML config file")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("HELPR_FORMAT", "json"), "Output format (json|text)")
	cmd.PersistentFlags().Var(&app.As, "as", "Act as this role for one command (student|tutor); not saved")
	cmd.PersistentFlags().StringVar(&app.ZID, "zid", envOr("HELPR_ZID", ""), "Act as this identity for one command; not saved")

	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newWhoamiCmd(app))
	cmd.AddCommand(newRequestCmd(app))
	cmd.AddCommand(newStatusCmd(app))
	cmd.AddCommand(newCancelCmd(app))
	cmd.AddCommand(newRemainingCmd(app))
	cmd.AddCommand(newQueueCmd(app))
	cmd.AddCommand(newClaimCmd(app))
	cmd.AddCommand(newResolveCmd(app))
	cmd.AddCommand(newRevertCmd(app))
	cmd.AddCommand(newReprioritiseCmd(app))
	cmd.AddCommand(newEndCmd(app))
	cmd.AddCommand(newEventsCmd(app))
	cmd.AddCommand(newDocsCmd(app))
	cmd.AddCommand(newTUICmd(app))

	return cmd
}

func (app *App) config() (*config.Config, error) {
	if app.cfg != nil {
		return app.cfg, nil
	}
	cfg, err := config.Load(app.ConfigPath)
	if err != nil {
		return nil, err
	}
	if s := strings.TrimSpace(app.Server); s != "" {
		cfg.Client.BaseURL = s
	}
	app.cfg = cfg
	return cfg, nil
}

func (app *App) sessionStore() (session.FileStore, error) {
	dir := strings.TrimSpace(app.StateDir)
	if dir == "" {
		d, err := session.StateDir()
		if err != nil {
			return session.FileStore{}, err
		}
		dir = d
	}
	return session.FileStore{Dir: dir}, nil
}

// session resolves the acting session for surface ("" for either role).
// --as/--zid take precedence over the saved session file.
func (app *App) session(surface model.Role) (model.Session, error) {
	fs, err := app.sessionStore()
	if err != nil {
		return model.Session{}, err
	}
	override := session.Static{Role: string(app.As.role), ZID: strings.TrimSpace(app.ZID)}
	sess, err := session.Resolve(session.First(override, fs), surface)
	if err != nil {
		var ae *session.AuthError
		if errors.As(err, &ae) {
			role := "<student|tutor>"
			if surface != "" {
				role = string(surface)
			}
			return model.Session{}, fmt.Errorf("%w (run `helpr login %s <zid>`)", err, role)
		}
		return model.Session{}, err
	}
	return sess, nil
}

func (app *App) client(sess model.Session) (*client.Client, error) {
	cfg, err := app.config()
	if err != nil {
		return nil, err
	}
	timeout, err := cfg.ClientTimeout()
	if err != nil {
		return nil, err
	}
	c := client.New(cfg.Client.BaseURL, timeout)
	c.Actor = sess.ZID
	return c, nil
}

// desk resolves the session for surface and wires a desk to the configured service.
func (app *App) desk(ctx context.Context, surface model.Role) (*desk.Desk, *client.Client, error) {
	sess, err := app.session(surface)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := app.config()
	if err != nil {
		return nil, nil, err
	}
	c, err := app.client(sess)
	if err != nil {
		return nil, nil, err
	}
	adminZID := cfg.Server.AdminZID
	if sess.Role == model.RoleTutor {
		adminZID = serviceAdmin(ctx, c, adminZID)
	}
	d, err := desk.New(c, sess, adminZID)
	if err != nil {
		return nil, nil, err
	}
	return d, c, nil
}

func runTUI(cmd *cobra.Command, app *App) error {
	d, c, err := app.desk(cmd.Context(), "")
	if err != nil {
		return writeErr(cmd, err)
	}
	cfg, err := app.config()
	if err != nil {
		return writeErr(cmd, err)
	}
	poll, err := cfg.PollInterval()
	if err != nil {
		return writeErr(cmd, err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	opts := tui.Options{
		Desk:         d,
		PollInterval: poll,
		Notices:      tui.WatchNotices(ctx, c, poll),
	}
	if d.Session().Role == model.RoleStudent {
		opts.Remaining = c.Remaining
	}
	return tui.Run(opts)
}

// serviceAdmin is the administrator the service advertises on /health. The
// configured value is used when the service cannot say.
func serviceAdmin(ctx context.Context, c *client.Client, fallback string) string {
	h, err := c.Health(ctx)
	if err != nil || strings.TrimSpace(h.AdminZID) == "" {
		return fallback
	}
	return strings.TrimSpace(h.AdminZID)
}

func newTUICmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Interactive view for the current session (same as bare `helpr`)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, app)
		},
	}
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
