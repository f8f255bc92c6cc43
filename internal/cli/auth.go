package cli

import (
	"errors"
	"strings"

	"tareas-cli/internal/auth"

	"github.com/spf13/cobra"
)

func newAuthCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Account and session commands",
	}

	cmd.AddCommand(newAuthSignUpCmd(app))
	cmd.AddCommand(newAuthSignInCmd(app))
	cmd.AddCommand(newAuthSignOutCmd(app))
	cmd.AddCommand(newAuthWhoAmICmd(app))
	cmd.AddCommand(newAuthDisableCmd(app))

	return cmd
}

type credentialFlags struct {
	email    string
	password string
}

func (c *credentialFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&c.email, "email", "", "Email address")
	cmd.Flags().StringVar(&c.password, "password", envOr("TAREAS_PASSWORD", ""), "Password (or TAREAS_PASSWORD)")
}

func newAuthSignUpCmd(app *App) *cobra.Command {
	var creds credentialFlags
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCredentials(cmd, app, creds, true)
		},
	}
	creds.bind(cmd)
	return cmd
}

func newAuthSignInCmd(app *App) *cobra.Command {
	var creds credentialFlags
	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Sign in to an existing account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCredentials(cmd, app, creds, false)
		},
	}
	creds.bind(cmd)
	return cmd
}

func runCredentials(cmd *cobra.Command, app *App, creds credentialFlags, create bool) error {
	email := strings.TrimSpace(creds.email)
	if err := auth.ValidateForm(email, creds.password); err != nil {
		return writeErr(cmd, userError(err))
	}
	svc, _, err := app.authService()
	if err != nil {
		return writeErr(cmd, err)
	}
	var userID string
	if create {
		userID, err = svc.SignUp(cmd.Context(), email, creds.password)
	} else {
		userID, err = svc.SignIn(cmd.Context(), email, creds.password)
	}
	if err != nil {
		return writeErr(cmd, userError(err))
	}
	sess, err := app.session()
	if err != nil {
		return writeErr(cmd, err)
	}
	if sess.UserID != userID {
		return writeErr(cmd, errors.New("session was not persisted"))
	}
	return writeOut(cmd, app, map[string]any{"data": sess})
}

func newAuthSignOutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := app.authService()
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := svc.SignOut(cmd.Context()); err != nil {
				return writeErr(cmd, userError(err))
			}
			sess, err := app.session()
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": sess})
		},
	}
}

func newAuthWhoAmICmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := app.session()
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": sess})
		},
	}
}

func newAuthDisableCmd(app *App) *cobra.Command {
	var email string
	var enable bool
	cmd := &cobra.Command{
		Use:   "disable",
		Short: "Disable (or re-enable) an account on this machine",
		RunE: func(cmd *cobra.Command, args []string) error {
			email = strings.TrimSpace(email)
			if email == "" {
				return writeErr(cmd, errors.New("missing --email"))
			}
			svc, _, err := app.authService()
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := svc.Disable(cmd.Context(), email, !enable); err != nil {
				return writeErr(cmd, userError(err))
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"email":    strings.ToLower(email),
				"disabled": !enable,
			}})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().BoolVar(&enable, "enable", false, "Re-enable instead of disabling")
	return cmd
}
