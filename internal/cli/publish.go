package cli

import (
	"tareas-cli/internal/projector"
	"tareas-cli/internal/publish"

	"github.com/spf13/cobra"
)

func newTasksPublishCmd(app *App) *cobra.Command {
	var toDir string
	var filter string
	var sortKey string
	var notas bool
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Export your task list as Markdown files (derived, not canonical)",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := requireSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			set, err := loadTasks(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			sel := projector.Selection{Filter: projector.ParseFilter(filter), Sort: projector.ParseSort(sortKey)}
			p := projector.Project(set.tasks.GetAll(), sess.UserID, sel)

			res, err := publish.WriteList(p, toDir, publish.WriteOptions{IncludeNotas: notas, Overwrite: overwrite})
			if err != nil {
				return writeErr(cmd, err)
			}
			app.logger().WithField("written", len(res.Written)).Info("tasks published")
			return writeOut(cmd, app, map[string]any{"data": res})
		},
	}

	cmd.Flags().StringVar(&toDir, "to", "", "Output directory")
	cmd.Flags().StringVar(&filter, "filter", "all", "Status filter")
	cmd.Flags().StringVar(&sortKey, "sort", "name", "Sort key")
	cmd.Flags().BoolVar(&notas, "notas", false, "Include notas in the index")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace existing files")
	return cmd
}
