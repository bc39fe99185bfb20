package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/me/odflow/internal/client"
	"github.com/me/odflow/internal/config"
	"github.com/me/odflow/internal/logging"
	"github.com/me/odflow/internal/session"
	"github.com/me/odflow/internal/store"
	"github.com/me/odflow/pkg/model"
	"github.com/spf13/cobra"
)

var (
	flagServer    string
	flagDB        string
	flagConfig    string
	flagDebug     bool
	flagLogLevel  string
	flagLogFormat string

	cfg          config.ClientConfig
	logger       *slog.Logger
	api          *client.Client
	sessionStore store.SessionStore
	sessions     *session.Manager

	// now is the clock used for "today" and relative ages.
	now = time.Now
)

// NewRootCmd creates the root cobra command for the odflow CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "odflow",
		Short: "odflow: on-duty leave requests from the terminal",
		Long:  "odflow lets students apply for on-duty leave and teachers accept or reject requests.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return teardown()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flagServer, "server", config.DefaultServerURL, "Backend URL (or ODFLOW_SERVER env)")
	root.PersistentFlags().StringVar(&flagDB, "db", "", "Session database path (default ~/.odflow/session.db)")
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default ~/.odflow/config.yaml)")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json)")

	root.AddCommand(
		newLoginCmd(),
		newLogoutCmd(),
		newWhoamiCmd(),
		newFormsCmd(),
		newHistoryCmd(),
		newApplyCmd(),
		newCalendarCmd(),
		newInboxCmd(),
		newDecideCmd(model.StatusAccepted),
		newDecideCmd(model.StatusRejected),
		newWatchCmd(),
	)

	return root
}

// setup resolves configuration and wires the logger, backend client,
// session store and session manager. Explicit flags win over the loaded
// config.
func setup(cmd *cobra.Command) error {
	// A failed command skips PersistentPostRunE; release its store here.
	teardown()

	loaded, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	cfg = loaded

	flags := cmd.Flags()
	if flags.Changed("server") {
		cfg.ServerURL = strings.TrimRight(flagServer, "/")
	}
	if flags.Changed("db") {
		cfg.DBPath = flagDB
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = flagLogLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = flagLogFormat
	}
	if flagDebug {
		cfg.LogLevel = "debug"
	}

	logger = logging.NewLoggerWithWriter(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat, cmd.ErrOrStderr())

	dbPath, err := cfg.ResolveDBPath()
	if err != nil {
		return err
	}
	st, err := store.NewSQLiteStore(dbPath, logger)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	if err := st.Migrate(cmd.Context()); err != nil {
		st.Close()
		return fmt.Errorf("migrate session store: %w", err)
	}
	sessionStore = st

	api = client.New(cfg.ServerURL, client.WithTimeout(cfg.Timeout), client.WithLogger(logger))
	sessions = session.NewManager(api, sessionStore, logger, session.WithNavigator(func(r model.Route) {
		logger.Debug("route", "to", r)
	}))
	logger.Debug("configured", "server", cfg.ServerURL, "db", dbPath)
	return nil
}

func teardown() error {
	if sessionStore == nil {
		return nil
	}
	err := sessionStore.Close()
	sessionStore = nil
	return err
}

// requireSession restores the persisted session and checks that it
// belongs to role. An empty role accepts any signed-in user.
func requireSession(ctx context.Context, role model.Role) (model.Session, error) {
	sess, err := sessions.Restore(ctx)
	if err != nil {
		return model.Session{}, failed("load", err)
	}
	if sess == nil {
		return model.Session{}, errors.New("not logged in; run 'odflow login' first")
	}
	if role != "" && sess.User.Role != role {
		return model.Session{}, fmt.Errorf("this command is for %s accounts; you are signed in as a %s",
			strings.ToLower(string(role)), strings.ToLower(string(sess.User.Role)))
	}
	api.SetToken(sess.Token)
	return *sess, nil
}

// actionError shows the user-facing message for a failed action while
// keeping the underlying error in the chain.
type actionError struct {
	action string
	err    error
}

func (e *actionError) Error() string {
	return model.FriendlyMessage(e.action, e.err)
}

func (e *actionError) Unwrap() error {
	return e.err
}

func failed(action string, err error) error {
	if logger != nil {
		logger.Debug("action failed", "action", action, "error", err)
	}
	return &actionError{action: action, err: err}
}
