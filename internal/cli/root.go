package cli

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"shobdo-cli/internal/action"
	"shobdo-cli/internal/api"
	"shobdo-cli/internal/config"
	"shobdo-cli/internal/format"
	"shobdo-cli/internal/logging"
	"shobdo-cli/internal/repo"
	"shobdo-cli/internal/session"
	"shobdo-cli/internal/store"
	"shobdo-cli/internal/tui"

	"github.com/spf13/cobra"
)

type App struct {
	APIURL     string
	Dir        string
	Timeout    time.Duration
	PrettyJSON bool
	Format     string
	LogLevel   string
	LogFormat  string
	LogFile    string

	cfg     *config.Config
	cfgErr  error
	logger  *slog.Logger
	logFile io.Closer
	svc     *services
}

// services is everything a command needs to talk to the API, built once per run.
type services struct {
	store    store.Store
	session  *session.State
	client   *api.Client
	auth     *repo.Auth
	dramas   *repo.Dramas
	contacts *repo.Contacts
	sms      *repo.SMS
	actions  *action.Orchestrator
	logger   *slog.Logger
}

func NewRootCmd() *cobra.Command {
	cfg, cfgErr := config.Load(".env")
	if cfg == nil {
		cfg = &config.Config{APIURL: api.DefaultBaseURL, Timeout: api.DefaultTimeout, LogLevel: "info", Format: "json"}
	}
	app := &App{cfg: cfg, cfgErr: cfgErr}

	cmd := &cobra.Command{
		Use:           "shobdo",
		Short:         "Theatre show SMS dashboard (CLI + TUI)",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: strings.TrimSpace(`
  # Start the interactive dashboard
  shobdo

  # Sign in and look around
  shobdo login --email admin@example.com
  shobdo overview --format table

  # Notify contacts about a show
  shobdo sms send <drama-id>
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
		if app.cfgErr != nil {
			return writeErr(cmd, app.cfgErr)
		}
		if err := config.ValidateAPIURL(app.APIURL); err != nil {
			return writeErr(cmd, err)
		}
		if !format.Known(app.Format) {
			return writeErr(cmd, fmt.Errorf("unknown format: %s", app.Format))
		}
		return nil
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if app.logFile != nil {
			return app.logFile.Close()
		}
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.APIURL, "api-url", cfg.APIURL, "API base URL (SHOBDO_API_URL)")
	cmd.PersistentFlags().StringVar(&app.Dir, "dir", cfg.ConfigDir, "Local state dir (default ~/.shobdo; SHOBDO_CONFIG_DIR)")
	cmd.PersistentFlags().DurationVar(&app.Timeout, "timeout", cfg.Timeout, "Per-request timeout (SHOBDO_TIMEOUT)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", cfg.Format, "Output format (json|table)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", cfg.LogLevel, "Log level (debug|info|warn|error)")
	app.LogFormat = cfg.LogFormat
	app.LogFile = cfg.LogFile

	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newWhoamiCmd(app))
	cmd.AddCommand(newOverviewCmd(app))
	cmd.AddCommand(newDramasCmd(app))
	cmd.AddCommand(newContactsCmd(app))
	cmd.AddCommand(newSMSCmd(app))
	cmd.AddCommand(newSubAdminsCmd(app))
	cmd.AddCommand(newActivityCmd(app))
	cmd.AddCommand(newDoctorCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

func runTUI(cmd *cobra.Command, app *App) error {
	// The TUI owns the terminal: log to a file, never to stderr.
	if app.LogFile == "" {
		dir, err := app.stateDir()
		if err != nil {
			return writeErr(cmd, err)
		}
		app.LogFile = filepath.Join(dir, "shobdo.log")
	}
	svc, err := app.services(cmd)
	if err != nil {
		return writeErr(cmd, err)
	}
	return tui.Run(tui.Deps{
		Session:  svc.session,
		Client:   svc.client,
		Auth:     svc.auth,
		Dramas:   svc.dramas,
		Contacts: svc.contacts,
		SMS:      svc.sms,
		Recorder: svc.store,
		Logger:   app.logger,
	})
}

func (app *App) stateDir() (string, error) {
	if strings.TrimSpace(app.Dir) != "" {
		return app.Dir, nil
	}
	return store.DefaultDir()
}

func (app *App) initLogger(cmd *cobra.Command) error {
	if app.logger != nil {
		return nil
	}
	var w io.Writer = cmd.ErrOrStderr()
	if app.LogFile != "" {
		f, err := logging.OpenFile(app.LogFile)
		if err != nil {
			return err
		}
		app.logFile = f
		w = f
	}
	app.logger = logging.New(app.LogLevel, app.LogFormat, w)
	return nil
}

// services wires store -> session -> client -> repositories. The unauthorized
// handler is the CLI's single report of an expired session.
func (app *App) services(cmd *cobra.Command) (*services, error) {
	if app.svc != nil {
		return app.svc, nil
	}
	if err := app.initLogger(cmd); err != nil {
		return nil, err
	}
	dir, err := app.stateDir()
	if err != nil {
		return nil, err
	}
	st := store.Store{Dir: dir}
	sess, err := session.Load(st)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	client := api.New(app.APIURL, sess,
		api.WithTimeout(app.Timeout),
		api.WithLogger(app.logger),
		api.WithUnauthorizedHandler(func() {
			fmt.Fprintln(cmd.ErrOrStderr(), "session expired; run `shobdo login` to sign in again")
		}),
	)
	notifier := action.NotifierFunc(func(n action.Notification) {
		// Outcomes are printed by the command itself; only progress goes to stderr.
		if n.Level == action.LevelInfo || n.Level == action.LevelWarning {
			fmt.Fprintln(cmd.ErrOrStderr(), n.Message)
		}
	})
	app.svc = &services{
		store:    st,
		session:  sess,
		client:   client,
		auth:     repo.NewAuth(client, sess),
		dramas:   repo.NewDramas(client),
		contacts: repo.NewContacts(client),
		sms:      repo.NewSMS(client),
		actions:  action.New(notifier, action.WithRecorder(st, sess.Identity), action.WithLogger(app.logger)),
		logger:   app.logger,
	}
	return app.svc, nil
}

// signedIn returns services for commands that need a session.
func signedIn(cmd *cobra.Command, app *App) (*services, error) {
	svc, err := app.services(cmd)
	if err != nil {
		return nil, err
	}
	if !svc.session.IsAuthenticated() {
		return nil, errNotSignedIn
	}
	return svc, nil
}

func adminOnly(cmd *cobra.Command, app *App) (*services, error) {
	svc, err := signedIn(cmd, app)
	if err != nil {
		return nil, err
	}
	if !svc.session.HasAdminRole() {
		return nil, errAdminOnly(svc.session.Role())
	}
	return svc, nil
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

// writeErr prints err once and returns it for the exit code. Auth failures were
// already reported by the unauthorized handler.
func writeErr(cmd *cobra.Command, err error) error {
	if !api.IsUnauthorized(err) {
		fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	}
	return err
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := NewRootCmd().Execute(); err != nil {
		return 1
	}
	return 0
}
