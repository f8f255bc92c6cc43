package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func renderConfirmModal(width int, title string, body string, confirmLabel string, cancelLabel string, focus confirmModalFocus) string {
	// No nested borders: some terminals show background artifacts inside a filled modal.
	btnBase := lipgloss.NewStyle().
		Padding(0, 1).
		Foreground(colorSurfaceFg).
		Background(colorControlBg)
	btnActive := btnBase.
		Foreground(colorSelectedFg).
		Background(colorSelectedBg).
		Bold(true)

	confirm := btnBase.Render(confirmLabel)
	cancel := btnBase.Render(cancelLabel)
	if focus == confirmFocusConfirm {
		confirm = btnActive.Render(confirmLabel)
	}
	if focus == confirmFocusCancel {
		cancel = btnActive.Render(cancelLabel)
	}

	sep := lipgloss.NewStyle().Background(colorControlBg).Render(" ")
	controls := lipgloss.JoinHorizontal(lipgloss.Top, confirm, sep, cancel)

	bodyW := modalBodyWidth(width)
	help := styleMuted().Width(bodyW).Render("tab: cambiar   enter: elegir   esc: cancelar")

	content := strings.Join([]string{
		lipgloss.NewStyle().Width(bodyW).Render(body),
		"",
		controls,
		"",
		help,
	}, "\n")
	return renderModalBox(width, title, content)
}

// updateConfirm drives a yes/no modal. It reports whether the user decided and what.
func (m *appModel) updateConfirm(msg tea.KeyMsg) (decided bool, confirmed bool) {
	switch msg.String() {
	case "esc", "ctrl+g", "n":
		return true, false
	case "y", "s":
		return true, true
	case "tab", "shift+tab", "left", "right", "h", "l":
		if m.confirmFocus == confirmFocusConfirm {
			m.confirmFocus = confirmFocusCancel
		} else {
			m.confirmFocus = confirmFocusConfirm
		}
		return false, false
	case "enter":
		return true, m.confirmFocus == confirmFocusConfirm
	}
	return false, false
}
