package tui

import (
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
)

var (
	mdRendererMu sync.Mutex
	// Keyed by style and wrap width. WithAutoStyle is avoided: it queries the terminal.
	mdRenderers = map[string]*glamour.TermRenderer{}
)

// renderNota renders a task note as markdown for the preview pane.
func renderNota(md string, width int) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	if width < 10 {
		width = 10
	}

	style := markdownStyle()
	key := style + ":" + strconv.Itoa(width)

	mdRendererMu.Lock()
	r := mdRenderers[key]
	mdRendererMu.Unlock()

	if r == nil {
		cfg := markdownStyleConfig(style)
		zero := uint(0)
		cfg.Document.Margin = &zero
		rr, err := glamour.NewTermRenderer(
			glamour.WithStyles(cfg),
			glamour.WithWordWrap(width),
			glamour.WithEmoji(),
		)
		if err != nil {
			return md
		}
		mdRendererMu.Lock()
		if existing := mdRenderers[key]; existing != nil {
			r = existing
		} else {
			mdRenderers[key] = rr
			r = rr
		}
		mdRendererMu.Unlock()
	}

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

func markdownStyle() string {
	if lipgloss.HasDarkBackground() {
		return "dark"
	}
	return "light"
}

func markdownStyleConfig(styleName string) ansi.StyleConfig {
	var cfg ansi.StyleConfig
	if styleName == "light" {
		cfg = styles.LightStyleConfig
	} else {
		cfg = styles.DarkStyleConfig
	}

	text := mdColor(colorSurfaceFg, styleName)
	cfg.Text.Color = text
	cfg.Heading.Color = text
	cfg.H1.Color = text
	cfg.H2.Color = text
	cfg.H3.Color = text

	link := mdColor(colorAccent, styleName)
	cfg.Link.Color = link
	cfg.Link.Underline = mdBoolPtr(true)
	cfg.LinkText.Color = link

	cfg.Code.Color = text
	cfg.CodeBlock.Color = text
	cfg.Strong.Color = nil
	cfg.Emph.Color = nil
	cfg.BlockQuote.Faint = mdBoolPtr(false)
	return cfg
}

func mdColor(c lipgloss.AdaptiveColor, styleName string) *string {
	if styleName == "light" {
		return mdStrPtr(c.Light)
	}
	return mdStrPtr(c.Dark)
}

func mdStrPtr(s string) *string { return &s }
func mdBoolPtr(b bool) *bool    { return &b }
