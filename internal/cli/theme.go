package cli

import (
	"github.com/spf13/cobra"
)

func newThemeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Show the dark-mode preference",
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"darkMode": app.theme().DarkMode()}})
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "toggle",
		Short: "Switch between light and dark mode",
		RunE: func(cmd *cobra.Command, args []string) error {
			dark := app.theme().Toggle()
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"darkMode": dark}})
		},
	})
	return cmd
}
