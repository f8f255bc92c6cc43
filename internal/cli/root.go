package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"tareas-cli/internal/auth"
	"tareas-cli/internal/config"
	"tareas-cli/internal/format"
	"tareas-cli/internal/logging"
	"tareas-cli/internal/model"
	"tareas-cli/internal/store"
	"tareas-cli/internal/theme"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type App struct {
	Dir        string
	PrettyJSON bool
	Format     string
	LogLevel   string

	cfg       config.Config
	log       *logrus.Logger
	logCloser io.Closer
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "tareas",
		Short:        "Gestor de tareas: personal task manager (TUI + CLI)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  tareas

  # Create an account and sign in
  tareas auth signup --email ana@example.com --password secreto1

  # Scriptable commands
  tareas tasks add --nombre "Comprar leche" --fecha 2024-01-01T10:00
  tareas tasks list --filter pendientes --sort fecha
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd.Context(), app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.init()
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		app.close()
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("TAREAS_DIR", ""), "Data directory (default: data.dir from config, ~/.tareas)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("TAREAS_FORMAT", "json"), "Output format (json|edn)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", "", "Log level (overrides log.level)")

	cmd.AddCommand(newAuthCmd(app))
	cmd.AddCommand(newTasksCmd(app))
	cmd.AddCommand(newThemeCmd(app))
	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

func (app *App) init() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	app.cfg = cfg
	if strings.TrimSpace(app.Dir) == "" {
		app.Dir = cfg.Data.Dir
	}
	if _, err := format.Parse(app.Format); err != nil {
		return err
	}
	level := cfg.Log.Level
	if strings.TrimSpace(app.LogLevel) != "" {
		level = app.LogLevel
	}
	l, closer, err := logging.New(app.Dir, level)
	if err != nil {
		return err
	}
	app.log, app.logCloser = l, closer
	return nil
}

func (app *App) close() {
	if app.logCloser != nil {
		_ = app.logCloser.Close()
		app.logCloser = nil
	}
}

func (app *App) logger() *logrus.Logger {
	if app.log == nil {
		return logging.Discard()
	}
	return app.log
}

func (app *App) store() store.Store {
	return store.Store{Dir: app.Dir}
}

func (app *App) tokens() (*auth.Tokens, error) {
	secret, err := auth.LoadOrInitSecret(app.Dir)
	if err != nil {
		return nil, fmt.Errorf("load session secret: %w", err)
	}
	return auth.NewTokens(secret, app.cfg.Auth.SessionTTL), nil
}

func (app *App) sessionFile() (*auth.SessionFile, error) {
	tk, err := app.tokens()
	if err != nil {
		return nil, err
	}
	return auth.NewSessionFile(app.Dir, tk), nil
}

func (app *App) authService() (*auth.LocalService, *auth.SessionFile, error) {
	sf, err := app.sessionFile()
	if err != nil {
		return nil, nil, err
	}
	svc := auth.NewLocalService(app.store(),
		auth.WithSessionFile(sf),
		auth.WithLogger(app.logger().WithField("component", "auth")),
	)
	return svc, sf, nil
}

func (app *App) session() (model.Session, error) {
	sf, err := app.sessionFile()
	if err != nil {
		return model.SignedOut(), err
	}
	return sf.Load()
}

var errNotSignedIn = errors.New("not signed in; run `tareas auth signin --email <email> --password <password>`")

func requireSession(app *App) (model.Session, error) {
	sess, err := app.session()
	if err != nil {
		return sess, err
	}
	if !sess.LoggedIn {
		return sess, errNotSignedIn
	}
	return sess, nil
}

// theme returns the dark-mode broadcaster, persisting every change to config.
func (app *App) theme() *theme.Theme {
	th := theme.New(app.cfg.UI.DarkMode)
	th.Subscribe(func(dark bool) {
		if err := config.SetDarkMode(dark); err != nil {
			app.logger().WithError(err).Warn("persist dark mode")
		}
	})
	return th
}

// taskSet is a loaded task collection that writes itself back on every change.
type taskSet struct {
	tasks   *store.TaskStore
	saveErr error
}

func loadTasks(ctx context.Context, app *App) (*taskSet, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	s := app.store()
	ts, err := s.LoadTasks(ctx)
	if err != nil {
		return nil, err
	}
	set := &taskSet{tasks: ts}
	log := app.logger().WithField("component", "store")
	s.AutoSave(ctx, ts, func(err error) {
		log.WithError(err).Error("save tasks")
		if set.saveErr == nil {
			set.saveErr = err
		}
	})
	return set, nil
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
