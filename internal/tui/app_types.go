package tui

import "tareas-cli/internal/model"

type screen int

const (
	screenLogin screen = iota
	screenTasks
)

type modalKind int

const (
	modalNone modalKind = iota
	modalEditor
	modalConfirmDelete
	modalConfirmSignOut
)

type confirmModalFocus int

const (
	confirmFocusConfirm confirmModalFocus = iota
	confirmFocusCancel
)

// authDoneMsg carries the result of a sign-in or sign-up started from the login screen.
type authDoneMsg struct {
	created bool
	userID  string
	email   string
	err     error
}

type signOutDoneMsg struct {
	err error
}

type flashDoneMsg struct {
	seq int
}

type themeChangedMsg struct {
	dark bool
}

// taskItem is one row of the task list.
type taskItem struct {
	task model.Task
}

func (i taskItem) FilterValue() string { return i.task.Nombre }
func (i taskItem) Title() string       { return i.task.Nombre }
