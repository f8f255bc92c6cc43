package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"tareas-cli/internal/auth"
	"tareas-cli/internal/web"

	"github.com/spf13/cobra"
)

func newServeCmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API (bearer-token auth, live feeds)",
		Long: strings.TrimSpace(`
Serve the task manager over HTTP.

  POST /api/auth/signup, /api/auth/signin   -> {token, userId}
  GET/POST /api/tasks, GET/PUT/DELETE /api/tasks/{id}, POST /api/tasks/{id}/toggle
  GET/POST /api/theme
  GET /api/events (Datastar SSE signals), GET /api/ws (projection feed)
`),
		Example: strings.TrimSpace(`
tareas serve --addr 127.0.0.1:8787
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			listenAddr := strings.TrimSpace(addr)
			if !cmd.Flags().Changed("addr") && strings.TrimSpace(app.cfg.Server.Addr) != "" {
				listenAddr = app.cfg.Server.Addr
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			set, err := loadTasks(ctx, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			tokens, err := app.tokens()
			if err != nil {
				return writeErr(cmd, err)
			}
			log := app.logger().WithField("component", "web")
			srv, err := web.NewServer(web.ServerConfig{
				Tasks:  set.tasks,
				Auth:   auth.NewLocalService(app.store(), auth.WithLogger(app.logger().WithField("component", "auth"))),
				Tokens: tokens,
				Theme:  app.theme(),
				Log:    log,
			})
			if err != nil {
				return writeErr(cmd, err)
			}

			err = srv.ListenAndServe(ctx, listenAddr, func(actual string) {
				_ = writeOut(cmd, app, map[string]any{
					"data": map[string]any{
						"addr":      actual,
						"url":       "http://" + actual + "/api",
						"dir":       app.Dir,
						"startedAt": time.Now().UTC().Format(time.RFC3339Nano),
					},
				})
				fmt.Fprintf(cmd.ErrOrStderr(), "tareas API running at http://%s/api\n", actual)
				log.WithField("addr", actual).Info("listening")
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8787", "Bind address (host:port or :port; default server.addr)")
	return cmd
}
