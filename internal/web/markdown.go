package web

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	emoji "github.com/yuin/goldmark-emoji"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Raw HTML in a nota is dropped (no html.WithUnsafe).
var notaRenderer = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		emoji.Emoji,
	),
	goldmark.WithRendererOptions(
		html.WithHardWraps(),
	),
)

func notaHTML(src string) string {
	src = strings.TrimSpace(src)
	if src == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := notaRenderer.Convert([]byte(src), &buf); err != nil {
		return ""
	}
	return buf.String()
}
