package tui

import (
	"context"
	"errors"

	"tareas-cli/internal/auth"
	"tareas-cli/internal/model"
	"tareas-cli/internal/projector"
	"tareas-cli/internal/store"
	"tareas-cli/internal/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
)

type Options struct {
	Tasks   *store.TaskStore
	Auth    auth.Service
	Session model.Session
	Theme   *theme.Theme

	Selection projector.Selection
	// OnSelectionChange is called after the user cycles the filter or sort.
	OnSelectionChange func(projector.Selection)

	Log logrus.FieldLogger
}

func Run(ctx context.Context, opts Options) error {
	if ctx == nil {
		ctx = context.Background()
	}
	applyColorProfilePreference()

	m := newAppModel(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	// Toggles happen inside Update, so the message has to be sent from another goroutine.
	unsubscribe := m.theme.Subscribe(func(dark bool) {
		go p.Send(themeChangedMsg{dark: dark})
	})
	defer unsubscribe()

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
