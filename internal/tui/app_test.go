package tui

import (
	"context"
	"strings"
	"testing"

	"tareas-cli/internal/auth"
	"tareas-cli/internal/editor"
	"tareas-cli/internal/model"
	"tareas-cli/internal/projector"
	"tareas-cli/internal/store"
	"tareas-cli/internal/theme"

	tea "github.com/charmbracelet/bubbletea"
)

type fakeAuth struct {
	passwords map[string]string
	signOuts  int
}

func (f *fakeAuth) SignIn(_ context.Context, email, password string) (string, error) {
	pw, ok := f.passwords[email]
	if !ok {
		return "", &auth.Error{Kind: auth.KindUserNotFound}
	}
	if pw != password {
		return "", &auth.Error{Kind: auth.KindWrongPassword}
	}
	return "user-" + email, nil
}

func (f *fakeAuth) SignUp(_ context.Context, email, password string) (string, error) {
	if _, ok := f.passwords[email]; ok {
		return "", &auth.Error{Kind: auth.KindEmailInUse}
	}
	f.passwords[email] = password
	return "user-" + email, nil
}

func (f *fakeAuth) SignOut(context.Context) error {
	f.signOuts++
	return nil
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+n":
		return tea.KeyMsg{Type: tea.KeyCtrlN}
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func update(t *testing.T, m appModel, msg tea.Msg) (appModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	am, ok := next.(appModel)
	if !ok {
		t.Fatalf("unexpected model type %T", next)
	}
	return am, cmd
}

func press(t *testing.T, m appModel, keys ...string) appModel {
	t.Helper()
	for _, k := range keys {
		m, _ = update(t, m, key(k))
	}
	return m
}

func typeText(t *testing.T, m appModel, s string) appModel {
	t.Helper()
	for _, r := range s {
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func signedInModel(t *testing.T, tasks ...model.Task) (appModel, *store.TaskStore, *fakeAuth) {
	t.Helper()
	ts := store.NewTaskStore(tasks...)
	fa := &fakeAuth{passwords: map[string]string{}}
	m := newAppModel(Options{
		Tasks:   ts,
		Auth:    fa,
		Session: model.SignedIn("user-1", "ana@example.com"),
		Theme:   theme.New(false),
	})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 30})
	return m, ts, fa
}

func TestLogin_ValidatesBeforeCallingService(t *testing.T) {
	fa := &fakeAuth{passwords: map[string]string{}}
	m := newAppModel(Options{Auth: fa, Session: model.SignedOut()})
	if m.screen != screenLogin {
		t.Fatalf("expected login screen when signed out")
	}

	m = typeText(t, m, "no-es-correo")
	m = press(t, m, "enter")
	m, cmd := update(t, m, key("enter"))
	if cmd != nil {
		t.Fatalf("expected no auth call for an invalid form")
	}
	if m.login.errMsg != "Por favor, ingresa un correo electrónico válido." {
		t.Fatalf("unexpected error message: %q", m.login.errMsg)
	}
	if !strings.Contains(m.View(), m.login.errMsg) {
		t.Fatalf("expected error rendered on the login screen")
	}
}

func TestLogin_SignUpThenSignedIn(t *testing.T) {
	fa := &fakeAuth{passwords: map[string]string{}}
	ts := store.NewTaskStore(model.Task{ID: "task-1", UserID: "user-ana@example.com", Nombre: "Mía", Fecha: "2024-01-01", Prioridad: "normal"})
	m := newAppModel(Options{Tasks: ts, Auth: fa, Session: model.SignedOut()})

	m = press(t, m, "ctrl+n")
	if !m.login.createMode || m.login.title() != "Crear cuenta" {
		t.Fatalf("expected create mode")
	}
	m = typeText(t, m, "ana@example.com")
	m = press(t, m, "tab")
	m = typeText(t, m, "secreto1")
	m, cmd := update(t, m, key("enter"))
	if cmd == nil || !m.login.busy {
		t.Fatalf("expected an auth command and busy form")
	}
	m, _ = update(t, m, cmd())

	if m.screen != screenTasks || !m.session.LoggedIn || m.session.UserID != "user-ana@example.com" {
		t.Fatalf("expected signed-in task screen, got screen=%v session=%+v", m.screen, m.session)
	}
	if fa.passwords["ana@example.com"] != "secreto1" {
		t.Fatalf("expected account created")
	}
	if len(m.proj.Tasks) != 1 || m.proj.Tasks[0].ID != "task-1" {
		t.Fatalf("expected the user's task projected, got %+v", m.proj.Tasks)
	}
	if m.login.email.Value() != "" || m.login.password.Value() != "" {
		t.Fatalf("expected login form cleared")
	}
}

func TestLogin_WrongPasswordShowsSharedMessage(t *testing.T) {
	fa := &fakeAuth{passwords: map[string]string{"ana@example.com": "secreto1"}}
	m := newAppModel(Options{Auth: fa, Session: model.SignedOut()})
	m = typeText(t, m, "ana@example.com")
	m = press(t, m, "enter")
	m = typeText(t, m, "otraclave")
	m, cmd := update(t, m, key("enter"))
	m, _ = update(t, m, cmd())

	if m.screen != screenLogin || m.session.LoggedIn {
		t.Fatalf("expected to stay on login")
	}
	if m.login.errMsg != "Correo electrónico o contraseña incorrectos." {
		t.Fatalf("unexpected message: %q", m.login.errMsg)
	}
	if m.login.busy {
		t.Fatalf("form must be usable again")
	}
}

func TestLogin_RevealPassword(t *testing.T) {
	m := newAppModel(Options{Session: model.SignedOut()})
	m = press(t, m, "tab")
	m = typeText(t, m, "secreto1")
	if strings.Contains(m.login.password.View(), "secreto1") {
		t.Fatalf("password should be masked")
	}
	m = press(t, m, "ctrl+r")
	if !strings.Contains(m.login.password.View(), "secreto1") {
		t.Fatalf("password should be revealed")
	}
}

func TestTasks_AddThroughEditor(t *testing.T) {
	m, ts, _ := signedInModel(t)
	if !strings.Contains(m.View(), projector.EmptyMessage) {
		t.Fatalf("expected empty state message")
	}

	m = press(t, m, "a")
	if m.modal != modalEditor || m.editor == nil || m.editor.Mode() != editor.ModeCreate {
		t.Fatalf("expected create editor open")
	}
	if got := m.form.inputs[2].Value(); got != model.DefaultPrioridad {
		t.Fatalf("expected default prioridad in form, got %q", got)
	}
	m = typeText(t, m, "Comprar leche")
	m = press(t, m, "tab")
	m = typeText(t, m, "2024-01-01T10:00")
	m, cmd := update(t, m, key("ctrl+s"))

	all := ts.GetAll()
	if len(all) != 1 {
		t.Fatalf("expected 1 task, got %d", len(all))
	}
	got := all[0]
	if got.Nombre != "Comprar leche" || got.Fecha != "2024-01-01T10:00" || got.Prioridad != "normal" || got.UserID != "user-1" || got.Completada {
		t.Fatalf("unexpected task: %+v", got)
	}
	if m.modal != modalNone || m.minibufferText != editor.MsgTaskAdded || cmd == nil {
		t.Fatalf("expected closed editor and success flash, modal=%v mini=%q", m.modal, m.minibufferText)
	}
	view := m.View()
	if !strings.Contains(view, "Comprar leche") || !strings.Contains(view, "1 de enero de 2024, 10:00:00") || !strings.Contains(view, "Pendiente") {
		t.Fatalf("expected task row rendered, got:\n%s", view)
	}
}

func TestTasks_EditorRejectsBlankFields(t *testing.T) {
	m, ts, _ := signedInModel(t)
	m = press(t, m, "a", "ctrl+s")

	if ts.Len() != 0 {
		t.Fatalf("store must be unchanged")
	}
	if m.modal != modalEditor {
		t.Fatalf("editor must remain open")
	}
	if m.minibufferText != editor.MsgRequiredFields {
		t.Fatalf("unexpected flash: %q", m.minibufferText)
	}
	if !m.form.missing[model.FieldNombre] || !m.form.missing[model.FieldFecha] || m.form.missing[model.FieldPrioridad] {
		t.Fatalf("unexpected missing set: %v", m.form.missing)
	}

	m = press(t, m, "esc")
	if m.modal != modalNone || m.editor != nil {
		t.Fatalf("expected editor cancelled")
	}
}

func TestTasks_EditKeepsIdentity(t *testing.T) {
	orig := model.Task{ID: "task-1", UserID: "user-1", Nombre: "Old", Fecha: "2024-01-01", Prioridad: "alta", Completada: true}
	m, ts, _ := signedInModel(t, orig)

	m = press(t, m, "e")
	if m.editor == nil || m.editor.Mode() != editor.ModeEdit || m.form.inputs[0].Value() != "Old" {
		t.Fatalf("expected edit form prefilled")
	}
	m = typeText(t, m, " name")
	m = press(t, m, "tab", "tab", "tab", "enter")

	got, _ := ts.Get("task-1")
	if got.Nombre != "Old name" || got.ID != orig.ID || got.UserID != orig.UserID || !got.Completada || got.Prioridad != "alta" {
		t.Fatalf("unexpected edited task: %+v", got)
	}
	if m.modal != modalNone {
		t.Fatalf("expected editor closed")
	}
}

func TestTasks_ToggleAndDeleteWithConfirm(t *testing.T) {
	m, ts, _ := signedInModel(t, model.Task{ID: "task-1", UserID: "user-1", Nombre: "A", Fecha: "2024-01-01", Prioridad: "normal"})

	m = press(t, m, "space")
	if got, _ := ts.Get("task-1"); !got.Completada {
		t.Fatalf("expected completed after toggle")
	}
	if !strings.Contains(m.View(), "Completado") {
		t.Fatalf("expected Completado badge")
	}

	m = press(t, m, "d")
	if m.modal != modalConfirmDelete || m.confirmFocus != confirmFocusCancel {
		t.Fatalf("expected delete confirmation focused on cancel")
	}
	m = press(t, m, "enter")
	if ts.Len() != 1 || m.modal != modalNone {
		t.Fatalf("enter on cancel must keep the task")
	}

	m = press(t, m, "d", "tab", "enter")
	if ts.Len() != 0 {
		t.Fatalf("expected task deleted")
	}
	if !strings.Contains(m.View(), projector.EmptyMessage) {
		t.Fatalf("expected empty state after delete")
	}
}

func TestTasks_ScopedToSessionUser(t *testing.T) {
	m, _, _ := signedInModel(t,
		model.Task{ID: "a", UserID: "user-1", Nombre: "Mine", Fecha: "2024-01-01", Prioridad: "normal"},
		model.Task{ID: "b", UserID: "user-2", Nombre: "Theirs", Fecha: "2024-01-01", Prioridad: "normal"},
	)
	if len(m.list.Items()) != 1 {
		t.Fatalf("expected only own task listed, got %d", len(m.list.Items()))
	}
	if strings.Contains(m.View(), "Theirs") {
		t.Fatalf("other user's task leaked into the view")
	}
}

func TestTasks_FilterAndSortCycle(t *testing.T) {
	ts := store.NewTaskStore(
		model.Task{ID: "a", UserID: "user-1", Nombre: "Beta", Fecha: "2024-01-01", Prioridad: "normal", Completada: true},
		model.Task{ID: "b", UserID: "user-1", Nombre: "Alpha", Fecha: "2024-02-01", Prioridad: "alta"},
	)
	var seen []projector.Selection
	m := newAppModel(Options{
		Tasks:             ts,
		Session:           model.SignedIn("user-1", ""),
		OnSelectionChange: func(s projector.Selection) { seen = append(seen, s) },
	})

	if it, _ := m.list.SelectedItem().(taskItem); it.task.Nombre != "Alpha" {
		t.Fatalf("expected name sort first, got %q", it.task.Nombre)
	}
	m = press(t, m, "f")
	if m.sel.Filter != projector.FilterCompleted || len(m.list.Items()) != 1 {
		t.Fatalf("expected completed filter with one row")
	}
	m = press(t, m, "f", "s")
	if m.sel.Filter != projector.FilterPending || m.sel.Sort != projector.SortDate {
		t.Fatalf("unexpected selection: %+v", m.sel)
	}
	if len(seen) != 3 || seen[2] != m.sel {
		t.Fatalf("expected selection callbacks, got %+v", seen)
	}
}

func TestTasks_ThemeToggleAndSignOut(t *testing.T) {
	m, _, fa := signedInModel(t)
	m = press(t, m, "t")
	if !m.theme.DarkMode() {
		t.Fatalf("expected dark mode after toggle")
	}

	m = press(t, m, "L")
	if m.modal != modalConfirmSignOut {
		t.Fatalf("expected sign-out confirmation")
	}
	m, cmd := update(t, m, key("y"))
	if cmd == nil {
		t.Fatalf("expected sign-out command")
	}
	m, _ = update(t, m, cmd())
	if fa.signOuts != 1 || m.screen != screenLogin || m.session.LoggedIn {
		t.Fatalf("expected signed out, screen=%v session=%+v", m.screen, m.session)
	}
	if len(m.proj.Tasks) != 0 {
		t.Fatalf("signed-out projection must be empty")
	}
}

func TestThemeChangedMsgAppliesPalette(t *testing.T) {
	m, _, _ := signedInModel(t)
	m, _ = update(t, m, themeChangedMsg{dark: true})
	if markdownStyle() != "dark" {
		t.Fatalf("expected dark markdown style")
	}
	m, _ = update(t, m, themeChangedMsg{dark: false})
	if markdownStyle() != "light" {
		t.Fatalf("expected light markdown style")
	}
	_ = m
}

func TestFlashClearsOnlyLatest(t *testing.T) {
	m, _, _ := signedInModel(t)
	_ = m.flash("uno")
	first := m.flashSeq
	_ = m.flash("dos")
	m, _ = update(t, m, flashDoneMsg{seq: first})
	if m.minibufferText != "dos" {
		t.Fatalf("stale flash cleared newer text")
	}
	m, _ = update(t, m, flashDoneMsg{seq: m.flashSeq})
	if m.minibufferText != "" {
		t.Fatalf("expected minibuffer cleared")
	}
}

func TestNotaPreviewRendersMarkdown(t *testing.T) {
	m, _, _ := signedInModel(t, model.Task{ID: "a", UserID: "user-1", Nombre: "A", Fecha: "2024-01-01", Prioridad: "normal", Nota: "**importante**"})
	m = press(t, m, "p")
	if !m.showNota {
		t.Fatalf("expected nota pane shown")
	}
	view := m.View()
	if !strings.Contains(view, "importante") || strings.Contains(view, "**importante**") {
		t.Fatalf("expected rendered markdown in preview:\n%s", view)
	}
}
