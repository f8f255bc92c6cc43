package cli

import (
	"strings"

	"tareas-cli/internal/editor"
	"tareas-cli/internal/model"
	"tareas-cli/internal/perm"
	"tareas-cli/internal/projector"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newTasksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"tareas"},
		Short:   "Task commands",
	}

	cmd.AddCommand(newTasksListCmd(app))
	cmd.AddCommand(newTasksShowCmd(app))
	cmd.AddCommand(newTasksAddCmd(app))
	cmd.AddCommand(newTasksEditCmd(app))
	cmd.AddCommand(newTasksToggleCmd(app))
	cmd.AddCommand(newTasksRemoveCmd(app))
	cmd.AddCommand(newTasksPublishCmd(app))

	return cmd
}

func newTasksListCmd(app *App) *cobra.Command {
	var filter string
	var sortKey string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your tasks",
		Example: strings.TrimSpace(`
  tareas tasks list
  tareas tasks list --filter pendientes --sort fecha
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := requireSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			set, err := loadTasks(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if !cmd.Flags().Changed("filter") {
				filter = app.cfg.UI.Filter
			}
			if !cmd.Flags().Changed("sort") {
				sortKey = app.cfg.UI.Sort
			}
			sel := projector.Selection{Filter: projector.ParseFilter(filter), Sort: projector.ParseSort(sortKey)}
			p := projector.Project(set.tasks.GetAll(), sess.UserID, sel)

			meta := map[string]any{
				"title":     projector.ListTitle,
				"selection": p.Selection,
				"counts":    p.Counts,
			}
			if p.Empty {
				meta["message"] = projector.EmptyMessage
			}
			return writeOut(cmd, app, map[string]any{
				"data": projector.Rows(p.Tasks),
				"meta": meta,
			})
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "all", "Status filter (all|completed|pending, todas|completadas|pendientes)")
	cmd.Flags().StringVar(&sortKey, "sort", "name", "Sort key (name|date|priority, nombre|fecha|prioridad)")
	return cmd
}

func newTasksShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <task-id>",
		Short: "Show one task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := requireSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			set, err := loadTasks(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			t, err := ownedTask(set, sess, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": projector.Rows([]model.Task{t})[0]})
		},
	}
}

// fieldFlags binds one flag per editable field.
type fieldFlags struct {
	values map[model.Field]*string
}

func bindFieldFlags(cmd *cobra.Command, defaults model.Draft) *fieldFlags {
	ff := &fieldFlags{values: map[model.Field]*string{}}
	for _, f := range model.EditableFields {
		v := new(string)
		cmd.Flags().StringVar(v, string(f), defaults.Get(f), f.Label())
		ff.values[f] = v
	}
	return ff
}

// apply copies flag values into the open editor; onlyChanged skips flags the user did not pass.
func (ff *fieldFlags) apply(cmd *cobra.Command, c *editor.Controller, onlyChanged bool) error {
	for _, f := range model.EditableFields {
		if onlyChanged && !cmd.Flags().Changed(string(f)) {
			continue
		}
		if err := c.SetField(f, *ff.values[f]); err != nil {
			return err
		}
	}
	return nil
}

func newController(app *App, set *taskSet, sess model.Session, notes *[]string) *editor.Controller {
	log := app.logger().WithField("component", "editor")
	return editor.New(set.tasks, editor.StaticSession(sess),
		editor.WithNotifier(editor.NotifierFunc(func(msg string) {
			log.WithField("userId", sess.UserID).Info(msg)
			*notes = append(*notes, msg)
		})),
	)
}

func commitOut(cmd *cobra.Command, app *App, set *taskSet, t model.Task, notes []string) error {
	if set.saveErr != nil {
		return writeErr(cmd, set.saveErr)
	}
	out := map[string]any{"data": projector.Rows([]model.Task{t})[0]}
	if len(notes) > 0 {
		out["meta"] = map[string]any{"message": notes[len(notes)-1]}
	}
	return writeOut(cmd, app, out)
}

func newTasksAddCmd(app *App) *cobra.Command {
	var ff *fieldFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a task",
		Example: strings.TrimSpace(`
  tareas tasks add --nombre "Comprar leche" --fecha 2024-01-01T10:00 --prioridad alta
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := requireSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			set, err := loadTasks(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			var notes []string
			c := newController(app, set, sess, &notes)
			if err := c.OpenCreate(); err != nil {
				return writeErr(cmd, err)
			}
			if err := ff.apply(cmd, c, false); err != nil {
				return writeErr(cmd, err)
			}
			t, err := c.Commit()
			if err != nil {
				return writeErr(cmd, userError(err))
			}
			return commitOut(cmd, app, set, t, notes)
		},
	}

	ff = bindFieldFlags(cmd, model.NewDraft())
	return cmd
}

func newTasksEditCmd(app *App) *cobra.Command {
	var ff *fieldFlags

	cmd := &cobra.Command{
		Use:   "edit <task-id>",
		Short: "Edit a task's fields (only the flags you pass change)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := requireSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			set, err := loadTasks(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			t, err := ownedTask(set, sess, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			var notes []string
			c := newController(app, set, sess, &notes)
			if err := c.OpenEdit(t); err != nil {
				return writeErr(cmd, err)
			}
			if err := ff.apply(cmd, c, true); err != nil {
				return writeErr(cmd, err)
			}
			updated, err := c.Commit()
			if err != nil {
				return writeErr(cmd, userError(err))
			}
			return commitOut(cmd, app, set, updated, notes)
		},
	}

	ff = bindFieldFlags(cmd, model.Draft{})
	return cmd
}

func newTasksToggleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <task-id>",
		Short: "Flip a task between pending and completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := requireSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			set, err := loadTasks(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			owned, err := ownedTask(set, sess, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			t, err := set.tasks.ToggleComplete(owned.ID)
			if err != nil {
				return writeErr(cmd, err)
			}
			return commitOut(cmd, app, set, t, nil)
		},
	}
}

func newTasksRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <task-id>",
		Aliases: []string{"remove", "delete"},
		Short:   "Delete a task (deleting a missing task is not an error)",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := requireSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			set, err := loadTasks(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			id := strings.TrimSpace(args[0])
			removed := false
			if t, ok := set.tasks.Get(id); ok && t.UserID == sess.UserID {
				removed = set.tasks.Remove(id)
			}
			if set.saveErr != nil {
				return writeErr(cmd, set.saveErr)
			}
			app.logger().WithFields(logrus.Fields{"id": id, "removed": removed}).Info("task remove")
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"id": id, "removed": removed}})
		},
	}
}

// ownedTask hides other users' tasks behind the same not-found error as missing ones.
func ownedTask(set *taskSet, sess model.Session, id string) (model.Task, error) {
	id = strings.TrimSpace(id)
	t, ok := set.tasks.Get(id)
	if !ok || !perm.CanEditTask(sess, t) {
		return model.Task{}, errNotFound("task", id)
	}
	return t, nil
}
