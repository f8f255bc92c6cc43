package cli

import (
	"context"

	"tareas-cli/internal/config"
	"tareas-cli/internal/projector"
	"tareas-cli/internal/tui"
)

func runTUI(ctx context.Context, app *App) error {
	if ctx == nil {
		ctx = context.Background()
	}
	set, err := loadTasks(ctx, app)
	if err != nil {
		return err
	}
	svc, sf, err := app.authService()
	if err != nil {
		return err
	}
	sess, err := sf.Load()
	if err != nil {
		return err
	}

	log := app.logger().WithField("component", "tui")
	sel := projector.Selection{
		Filter: projector.ParseFilter(app.cfg.UI.Filter),
		Sort:   projector.ParseSort(app.cfg.UI.Sort),
	}

	err = tui.Run(ctx, tui.Options{
		Tasks:     set.tasks,
		Auth:      svc,
		Session:   sess,
		Theme:     app.theme(),
		Selection: sel,
		OnSelectionChange: func(s projector.Selection) {
			if err := config.Set("ui.filter", string(s.Filter)); err != nil {
				log.WithError(err).Warn("persist filter")
			}
			if err := config.Set("ui.sort", string(s.Sort)); err != nil {
				log.WithError(err).Warn("persist sort")
			}
		},
		Log: log,
	})
	if err != nil {
		return err
	}
	return set.saveErr
}
