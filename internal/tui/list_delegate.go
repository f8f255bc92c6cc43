package tui

import (
	"fmt"
	"io"
	"strings"

	"tareas-cli/internal/projector"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// taskDelegate renders one task per line:
// checkbox, nombre, formatted fecha, prioridad and the status badge.
type taskDelegate struct{}

func newTaskDelegate() taskDelegate { return taskDelegate{} }

func (d taskDelegate) Height() int                             { return 1 }
func (d taskDelegate) Spacing() int                            { return 0 }
func (d taskDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d taskDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(taskItem)
	contentW := m.Width()
	if !ok || contentW < 4 {
		fmt.Fprint(w, "")
		return
	}
	t := it.task
	selected := index == m.Index()

	check := "[ ]"
	if t.Completada {
		check = "[x]"
	}
	badge := lipgloss.NewStyle().Bold(true)
	if t.Completada {
		badge = badge.Foreground(colorDoneFg)
	} else {
		badge = badge.Foreground(colorPendingFg)
	}
	meta := styleMuted()
	if selected {
		badge = badge.Background(colorSelectedBg)
		meta = meta.Background(colorSelectedBg)
	}

	right := strings.Join([]string{
		meta.Render(projector.FormatFecha(t.Fecha)),
		meta.Render(t.Prioridad),
		badge.Render(projector.Estado(t)),
	}, meta.Render("  "))
	rightW := xansi.StringWidth(right)

	leftW := contentW - rightW - 2
	if leftW < 8 {
		// Too narrow for metadata: show the name alone.
		right, rightW, leftW = "", 0, contentW
	}
	left := check + " " + t.Nombre
	if xansi.StringWidth(left) > leftW {
		left = xansi.Cut(left, 0, leftW-1) + "…"
	}
	gap := contentW - xansi.StringWidth(left) - rightW
	if gap < 0 {
		gap = 0
	}

	base := lipgloss.NewStyle()
	if selected {
		base = base.Foreground(colorSelectedFg).Background(colorSelectedBg).Bold(true)
	} else if t.Completada {
		base = base.Foreground(colorMuted)
	}
	fmt.Fprint(w, base.Render(left+strings.Repeat(" ", gap))+right)
}
