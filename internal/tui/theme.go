package tui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// The palette is built from adaptive colors; the dark-mode preference picks the variant
// by setting Lip Gloss's background flag.

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

func faintIfDark(st lipgloss.Style) lipgloss.Style {
	if lipgloss.HasDarkBackground() {
		return st.Faint(true)
	}
	return st
}

var (
	colorMuted      = ac("240", "243")
	colorSelectedBg = ac("#e9e9e9", "#262626")
	colorSelectedFg = ac("235", "255")

	colorSurfaceBg = ac("255", "235")
	colorSurfaceFg = ac("235", "252")
	colorControlBg = ac("252", "235")
	colorInputBg   = ac("254", "234")

	colorAccent   = ac("27", "62")
	colorAccentFg = ac("255", "235")

	colorFlashErrorBg = ac("196", "160")

	colorDoneFg    = ac("28", "78")
	colorPendingFg = ac("130", "214")

	colorModalSurfaceBg = colorSurfaceBg
	colorModalSurfaceFg = colorSurfaceFg
	colorModalHeaderBg  = colorControlBg
	colorModalHeaderFg  = colorSurfaceFg
)

func styleMuted() lipgloss.Style {
	return faintIfDark(lipgloss.NewStyle().Foreground(colorMuted))
}

// applyDarkMode switches every adaptive color to its light or dark variant.
func applyDarkMode(dark bool) {
	lipgloss.SetHasDarkBackground(dark)
}

// applyColorProfilePreference sets Lip Gloss's color profile for the interactive TUI.
//
// Only NO_COLOR is honored; CLICOLOR handling is left to the terminal's capabilities.
func applyColorProfilePreference() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}

	profile := termenv.ColorProfile()

	term := strings.ToLower(strings.TrimSpace(os.Getenv("TERM")))
	colorterm := strings.ToLower(strings.TrimSpace(os.Getenv("COLORTERM")))
	if strings.Contains(colorterm, "truecolor") || strings.Contains(colorterm, "24bit") {
		if profile != termenv.Ascii {
			profile = termenv.TrueColor
		}
	} else if strings.Contains(term, "256color") {
		if profile == termenv.Ascii || profile == termenv.ANSI {
			profile = termenv.ANSI256
		}
	}

	lipgloss.SetColorProfile(profile)
}
