package tui

import (
	"fmt"
	"strings"

	"tareas-cli/internal/projector"

	"github.com/charmbracelet/lipgloss"
)

const appTitle = "Gestor de tareas"

func (m appModel) View() string {
	switch m.modal {
	case modalEditor:
		return placeModal(m.width, m.height, m.renderEditorModal())
	case modalConfirmDelete:
		body := fmt.Sprintf("¿Eliminar la tarea %q? Esta acción no se puede deshacer.", m.pendingDelete.Nombre)
		return placeModal(m.width, m.height,
			renderConfirmModal(m.width, "Eliminar tarea", body, "Eliminar", "Cancelar", m.confirmFocus))
	case modalConfirmSignOut:
		return placeModal(m.width, m.height,
			renderConfirmModal(m.width, "Cerrar sesión", "¿Deseas cerrar la sesión?", "Cerrar sesión", "Cancelar", m.confirmFocus))
	}

	if m.screen == screenLogin {
		return m.viewLogin()
	}
	return m.viewTasks()
}

func (m appModel) navbar() string {
	right := "claro"
	if m.theme.DarkMode() {
		right = "oscuro"
	}
	if m.session.LoggedIn && m.session.Email != "" {
		right = m.session.Email + "  ·  " + right
	}
	left := lipgloss.NewStyle().Bold(true).Foreground(colorAccentFg).Background(colorAccent).Padding(0, 1).Render(appTitle)
	rightR := styleMuted().Render(right)
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(rightR)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + rightR
}

func (m appModel) viewLogin() string {
	f := m.login
	bodyW := modalBodyWidth(m.width)
	label := lipgloss.NewStyle().Bold(true).Foreground(colorModalSurfaceFg).Background(colorModalSurfaceBg)

	lines := []string{
		label.Render("Correo electrónico"),
		renderInputLine(bodyW, f.email.View()),
		"",
		label.Render("Contraseña"),
		renderInputLine(bodyW, f.password.View()),
		"",
	}
	if f.errMsg != "" {
		lines = append(lines, lipgloss.NewStyle().Width(bodyW).Bold(true).Foreground(colorFlashErrorBg).Render(f.errMsg), "")
	}
	if f.busy {
		lines = append(lines, styleMuted().Render("Verificando…"), "")
	}

	switchHint := "¿No tienes cuenta? ctrl+n: Regístrate"
	if f.createMode {
		switchHint = "¿Ya tienes cuenta? ctrl+n: Inicia sesión"
	}
	reveal := "ctrl+r: mostrar contraseña"
	if f.reveal {
		reveal = "ctrl+r: ocultar contraseña"
	}
	lines = append(lines,
		styleMuted().Width(bodyW).Render(switchHint),
		styleMuted().Width(bodyW).Render("enter: continuar   "+reveal+"   ctrl+t: tema   esc: salir"),
	)

	box := renderModalBox(m.width, f.title(), strings.Join(lines, "\n"))
	nav := m.navbar()
	return nav + "\n" + placeModal(m.width, m.height-1, box)
}

func (m appModel) viewTasks() string {
	header := m.navbar()

	c := m.proj.Counts
	title := lipgloss.NewStyle().Bold(true).Render(projector.ListTitle)
	summary := styleMuted().Render(fmt.Sprintf("  Filtro: %s  Orden: %s  ·  %d tareas (%d completadas, %d pendientes)",
		m.sel.Filter.Label(), m.sel.Sort.Label(), c.Total, c.Completed, c.Pending))

	bodyH := m.height - 6
	if bodyH < 4 {
		bodyH = 4
	}

	var body string
	if m.proj.Empty {
		body = normalizePane(styleMuted().Render(projector.EmptyMessage), m.width, bodyH)
	} else if m.showNota {
		leftW := m.list.Width()
		rightW := m.width - leftW - 1
		if rightW < 20 {
			rightW = 20
		}
		left := normalizePane(m.list.View(), leftW, bodyH)
		right := normalizePane(m.renderNotaPane(rightW), rightW, bodyH)
		body = lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)
	} else {
		body = normalizePane(m.list.View(), m.width, bodyH)
	}

	footer := styleMuted().Render("a: nueva  e: editar  espacio: completar  d: eliminar  f: filtro  s: orden  p: nota  t: tema  L: salir de la cuenta  q: salir")
	mini := m.minibufferText
	if mini == "" {
		mini = " "
	}
	return strings.Join([]string{header, title + summary, body, footer, mini}, "\n")
}

func (m appModel) renderNotaPane(width int) string {
	t, ok := m.selectedTask()
	if !ok {
		return ""
	}
	head := lipgloss.NewStyle().Bold(true).Render(t.Nombre)
	meta := styleMuted().Render(projector.FormatFecha(t.Fecha) + "  ·  " + t.Prioridad + "  ·  " + projector.Estado(t))
	nota := renderNota(t.Nota, width)
	if nota == "" {
		nota = styleMuted().Render("Sin nota.")
	}
	return strings.Join([]string{head, meta, "", nota}, "\n")
}
