package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	modalMaxWidth = 72
	modalPadX     = 2
)

// modalBodyWidth is the usable content width inside a modal drawn on a screen width wide.
func modalBodyWidth(width int) int {
	w := width - 8
	if w > modalMaxWidth {
		w = modalMaxWidth
	}
	w -= 2 * modalPadX
	if w < 20 {
		w = 20
	}
	return w
}

func renderModalBox(width int, title string, content string) string {
	bodyW := modalBodyWidth(width)
	boxW := bodyW + 2*modalPadX

	header := lipgloss.NewStyle().
		Width(boxW).
		Padding(0, modalPadX).
		Bold(true).
		Foreground(colorModalHeaderFg).
		Background(colorModalHeaderBg).
		Render(title)

	body := lipgloss.NewStyle().
		Width(boxW).
		Padding(1, modalPadX).
		Foreground(colorModalSurfaceFg).
		Background(colorModalSurfaceBg).
		Render(strings.TrimRight(content, "\n"))

	return lipgloss.JoinVertical(lipgloss.Left, header, body)
}

// placeModal centers a rendered modal over the screen.
func placeModal(width, height int, modal string) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, modal,
		lipgloss.WithWhitespaceChars(" "),
	)
}
