package tui

import (
	"errors"
	"strings"

	"tareas-cli/internal/editor"
	"tareas-cli/internal/model"
	"tareas-cli/internal/store"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// editorForm mirrors the controller's draft in one text input per editable field.
type editorForm struct {
	inputs  []textinput.Model
	focus   int
	missing map[model.Field]bool
}

func newEditorForm(d model.Draft) editorForm {
	f := editorForm{missing: map[model.Field]bool{}}
	for _, field := range model.EditableFields {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 500
		switch field {
		case model.FieldFecha:
			in.Placeholder = "AAAA-MM-DDTHH:MM"
		case model.FieldPrioridad:
			in.Placeholder = model.DefaultPrioridad
		case model.FieldNota:
			in.Placeholder = "opcional (markdown)"
		}
		in.SetValue(d.Get(field))
		f.inputs = append(f.inputs, in)
	}
	f.setFocus(0)
	return f
}

func (f *editorForm) setFocus(i int) {
	n := len(f.inputs)
	if n == 0 {
		return
	}
	i = ((i % n) + n) % n
	f.focus = i
	for j := range f.inputs {
		if j == i {
			f.inputs[j].Focus()
		} else {
			f.inputs[j].Blur()
		}
	}
}

func (m *appModel) openEditor(t *model.Task) error {
	c := editor.New(m.tasks, editor.StaticSession(m.session), editor.WithNotifier(m.notes))
	var err error
	if t == nil {
		err = c.OpenCreate()
	} else {
		err = c.OpenEdit(*t)
	}
	if err != nil {
		return err
	}
	m.editor = c
	m.form = newEditorForm(c.Draft())
	m.modal = modalEditor
	return nil
}

func (m *appModel) closeEditor() {
	if m.editor != nil {
		m.editor.Cancel()
	}
	m.editor = nil
	m.modal = modalNone
}

func (m appModel) updateEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := &m.form
	switch msg.String() {
	case "esc", "ctrl+g":
		m.closeEditor()
		return m, nil
	case "tab", "down":
		f.setFocus(f.focus + 1)
		return m, nil
	case "shift+tab", "up":
		f.setFocus(f.focus - 1)
		return m, nil
	case "ctrl+s":
		return m.commitEditor()
	case "enter":
		if f.focus == len(f.inputs)-1 {
			return m.commitEditor()
		}
		f.setFocus(f.focus + 1)
		return m, nil
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	field := model.EditableFields[f.focus]
	if err := m.editor.SetField(field, f.inputs[f.focus].Value()); err != nil {
		m.log.WithError(err).Warn("editor set field")
	}
	delete(f.missing, field)
	return m, cmd
}

func (m appModel) commitEditor() (tea.Model, tea.Cmd) {
	editing := m.editor.Mode() == editor.ModeEdit
	t, err := m.editor.Commit()
	notes := m.notes.drain()
	if err != nil {
		var ve *editor.ValidationError
		switch {
		case errors.As(err, &ve):
			m.form.missing = map[model.Field]bool{}
			for _, f := range ve.Missing {
				m.form.missing[f] = true
			}
			return m, m.flash(strings.Join(notes, " "))
		case errors.Is(err, store.ErrNotFound):
			m.closeEditor()
			m.refresh()
			return m, m.flash("La tarea ya no existe.")
		default:
			m.log.WithError(err).Error("commit task")
			return m, m.flash("Error: " + err.Error())
		}
	}

	m.modal = modalNone
	m.editor = nil
	m.refresh()
	selectListItemByID(&m.list, t.ID)
	if editing {
		m.log.WithField("id", t.ID).Info("task edited")
		return m, m.flash("Tarea actualizada")
	}
	m.log.WithField("id", t.ID).Info("task added")
	return m, m.flash(strings.Join(notes, " "))
}

func (m appModel) renderEditorModal() string {
	title := "Nueva tarea"
	if m.editor != nil && m.editor.Mode() == editor.ModeEdit {
		title = "Editar tarea"
	}
	bodyW := modalBodyWidth(m.width)

	labelStyle := lipgloss.NewStyle().Foreground(colorModalSurfaceFg).Background(colorModalSurfaceBg).Bold(true)
	missingStyle := labelStyle.Foreground(colorFlashErrorBg)

	var lines []string
	for i, field := range model.EditableFields {
		label := field.Label()
		if isRequired(field) {
			label += " *"
		}
		st := labelStyle
		if m.form.missing[field] {
			st = missingStyle
		}
		lines = append(lines, st.Render(label))
		lines = append(lines, renderInputLine(bodyW, m.form.inputs[i].View()))
		lines = append(lines, "")
	}
	lines = append(lines, styleMuted().Width(bodyW).Render("tab: siguiente   ctrl+s: guardar   esc: cancelar"))
	return renderModalBox(m.width, title, strings.Join(lines, "\n"))
}

func isRequired(f model.Field) bool {
	for _, r := range model.RequiredFields {
		if r == f {
			return true
		}
	}
	return false
}
