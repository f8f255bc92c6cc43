package tui

import (
	"errors"
	"time"

	"tareas-cli/internal/auth"
	"tareas-cli/internal/model"
	"tareas-cli/internal/store"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
)

const flashDuration = 2500 * time.Millisecond

func (m appModel) Init() tea.Cmd {
	return nil
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeLists()
		return m, nil

	case themeChangedMsg:
		applyDarkMode(msg.dark)
		return m, nil

	case flashDoneMsg:
		if msg.seq == m.flashSeq {
			m.minibufferText = ""
		}
		return m, nil

	case authDoneMsg:
		m.login.busy = false
		if msg.err != nil {
			m.login.errMsg = auth.Message(msg.err)
			return m, nil
		}
		m.session = model.SignedIn(msg.userID, msg.email)
		m.login.reset()
		m.screen = screenTasks
		m.modal = modalNone
		m.list.Select(0)
		m.refresh()
		if msg.created {
			return m, m.flash("Cuenta creada: " + msg.email)
		}
		return m, m.flash("Sesión iniciada: " + msg.email)

	case signOutDoneMsg:
		if msg.err != nil {
			m.log.WithError(msg.err).Error("sign out")
			return m, m.flash("Error al cerrar sesión: " + msg.err.Error())
		}
		m.session = model.SignedOut()
		m.screen = screenLogin
		m.modal = modalNone
		m.showNota = false
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if m.screen == screenLogin {
			return m.updateLogin(msg)
		}
		switch m.modal {
		case modalEditor:
			return m.updateEditor(msg)
		case modalConfirmDelete:
			return m.updateConfirmDelete(msg)
		case modalConfirmSignOut:
			return m.updateConfirmSignOut(msg)
		}
		return m.updateTasks(msg)
	}

	if m.screen == screenLogin {
		// Cursor blink and other textinput messages.
		var cmd tea.Cmd
		if m.login.focus == loginFocusEmail {
			m.login.email, cmd = m.login.email.Update(msg)
		} else {
			m.login.password, cmd = m.login.password.Update(msg)
		}
		return m, cmd
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m appModel) updateTasks(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "a", "n":
		if err := m.openEditor(nil); err != nil {
			return m, m.flash("Error: " + err.Error())
		}
		return m, nil

	case "e", "enter":
		t, ok := m.selectedTask()
		if !ok {
			return m, nil
		}
		if err := m.openEditor(&t); err != nil {
			return m, m.flash("Error: " + err.Error())
		}
		return m, nil

	case " ", "x":
		t, ok := m.selectedTask()
		if !ok {
			return m, nil
		}
		got, err := m.tasks.ToggleComplete(t.ID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				m.refresh()
				return m, m.flash("La tarea ya no existe.")
			}
			return m, m.flash("Error: " + err.Error())
		}
		m.log.WithFields(logrus.Fields{"id": got.ID, "completada": got.Completada}).Info("task toggled")
		m.refresh()
		return m, nil

	case "d", "delete":
		t, ok := m.selectedTask()
		if !ok {
			return m, nil
		}
		m.pendingDelete = t
		m.confirmFocus = confirmFocusCancel
		m.modal = modalConfirmDelete
		return m, nil

	case "f":
		m.sel.Filter = m.sel.Filter.Next()
		m.selectionChanged()
		return m, m.flash("Filtro: " + m.sel.Filter.Label())

	case "s":
		m.sel.Sort = m.sel.Sort.Next()
		m.selectionChanged()
		return m, m.flash("Orden: " + m.sel.Sort.Label())

	case "t":
		m.theme.Toggle()
		// The subscription delivers themeChangedMsg too; applying now avoids a stale frame.
		applyDarkMode(m.theme.DarkMode())
		return m, nil

	case "p":
		m.showNota = !m.showNota
		m.resizeLists()
		return m, nil

	case "L":
		m.confirmFocus = confirmFocusCancel
		m.modal = modalConfirmSignOut
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m appModel) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	decided, confirmed := m.updateConfirm(msg)
	if !decided {
		return m, nil
	}
	m.modal = modalNone
	t := m.pendingDelete
	m.pendingDelete = model.Task{}
	if !confirmed {
		return m, nil
	}
	m.tasks.Remove(t.ID)
	m.log.WithField("id", t.ID).Info("task removed")
	m.refresh()
	return m, m.flash("Tarea eliminada")
}

func (m appModel) updateConfirmSignOut(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	decided, confirmed := m.updateConfirm(msg)
	if !decided {
		return m, nil
	}
	m.modal = modalNone
	if !confirmed {
		return m, nil
	}
	return m, signOutCmd(m.auth)
}

func (m *appModel) selectionChanged() {
	m.refresh()
	m.list.Select(0)
	if m.onSelectionChange != nil {
		m.onSelectionChange(m.sel)
	}
}

// flash shows text in the minibuffer and clears it after flashDuration unless
// a newer message replaced it.
func (m *appModel) flash(text string) tea.Cmd {
	m.minibufferText = text
	m.flashSeq++
	seq := m.flashSeq
	if text == "" {
		return nil
	}
	return tea.Tick(flashDuration, func(time.Time) tea.Msg { return flashDoneMsg{seq: seq} })
}
