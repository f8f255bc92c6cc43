package tui

import (
	"tareas-cli/internal/auth"
	"tareas-cli/internal/editor"
	"tareas-cli/internal/logging"
	"tareas-cli/internal/model"
	"tareas-cli/internal/projector"
	"tareas-cli/internal/store"
	"tareas-cli/internal/theme"

	"github.com/charmbracelet/bubbles/list"
	"github.com/sirupsen/logrus"
)

// noteSink collects editor notifications until the model shows them.
type noteSink struct {
	msgs []string
}

func (n *noteSink) Notify(msg string) { n.msgs = append(n.msgs, msg) }

func (n *noteSink) drain() []string {
	out := n.msgs
	n.msgs = nil
	return out
}

type appModel struct {
	tasks *store.TaskStore
	auth  auth.Service
	theme *theme.Theme
	log   logrus.FieldLogger

	onSelectionChange func(projector.Selection)

	width  int
	height int

	screen  screen
	modal   modalKind
	session model.Session
	sel     projector.Selection
	proj    projector.Projection

	login loginForm

	list     list.Model
	showNota bool

	editor *editor.Controller
	form   editorForm
	notes  *noteSink

	confirmFocus  confirmModalFocus
	pendingDelete model.Task

	minibufferText string
	flashSeq       int
}

func newAppModel(opts Options) appModel {
	m := appModel{
		tasks:             opts.Tasks,
		auth:              opts.Auth,
		theme:             opts.Theme,
		log:               opts.Log,
		onSelectionChange: opts.OnSelectionChange,
		session:           opts.Session,
		sel:               opts.Selection,
		notes:             &noteSink{},
		width:             80,
		height:            24,
	}
	if m.tasks == nil {
		m.tasks = store.NewTaskStore()
	}
	if m.theme == nil {
		m.theme = theme.New(false)
	}
	if m.log == nil {
		m.log = logging.Discard()
	}
	if m.sel == (projector.Selection{}) {
		m.sel = projector.DefaultSelection()
	}
	applyDarkMode(m.theme.DarkMode())

	m.list = newTaskList()
	m.login = newLoginForm()

	if m.session.LoggedIn {
		m.screen = screenTasks
	} else {
		m.screen = screenLogin
	}
	m.refresh()
	m.resizeLists()
	return m
}

func newTaskList() list.Model {
	l := list.New(nil, newTaskDelegate(), 0, 0)
	l.Title = projector.ListTitle
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowTitle(false)
	l.SetFilteringEnabled(false)
	// q and ctrl+c are handled by the app.
	l.DisableQuitKeybindings()
	return l
}

// refresh re-projects the store for the current user and selection, keeping the cursor
// on the same task when it is still visible.
func (m *appModel) refresh() {
	curID := ""
	if it, ok := m.list.SelectedItem().(taskItem); ok {
		curID = it.task.ID
	}
	userID := ""
	if m.session.LoggedIn {
		userID = m.session.UserID
	}
	m.proj = projector.Project(m.tasks.GetAll(), userID, m.sel)
	m.sel = m.proj.Selection

	items := make([]list.Item, 0, len(m.proj.Tasks))
	for _, t := range m.proj.Tasks {
		items = append(items, taskItem{task: t})
	}
	m.list.SetItems(items)
	if curID != "" {
		selectListItemByID(&m.list, curID)
	}
}

func (m *appModel) selectedTask() (model.Task, bool) {
	it, ok := m.list.SelectedItem().(taskItem)
	if !ok {
		return model.Task{}, false
	}
	return it.task, true
}

func (m *appModel) resizeLists() {
	h := m.height - 6
	if h < 4 {
		h = 4
	}
	w := m.width
	if m.showNota {
		w = m.width / 2
	}
	if w < 30 {
		w = 30
	}
	m.list.SetSize(w, h)
}

func selectListItemByID(l *list.Model, id string) {
	for i, it := range l.Items() {
		if ti, ok := it.(taskItem); ok && ti.task.ID == id {
			l.Select(i)
			return
		}
	}
}
