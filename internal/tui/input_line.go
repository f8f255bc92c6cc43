package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

func renderInputLine(bodyW int, inputView string) string {
	if bodyW < 10 {
		bodyW = 10
	}

	// Inputs always render as one visual line; a stray newline would look like wrapping while typing.
	inputView = strings.ReplaceAll(inputView, "\n", " ")
	inputView = strings.ReplaceAll(inputView, "\r", " ")

	line := lipgloss.PlaceHorizontal(
		bodyW,
		lipgloss.Left,
		" "+inputView+" ",
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceBackground(colorInputBg),
	)
	if xansi.StringWidth(line) > bodyW {
		line = xansi.Cut(line, 0, bodyW) + "\x1b[0m"
	}
	return line
}
