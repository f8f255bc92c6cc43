package tui

import (
	"strings"
	"testing"

	xansi "github.com/charmbracelet/x/ansi"
)

func TestNormalizePane_PadsAndCuts(t *testing.T) {
	out := normalizePane("short\nthis line is far too long", 10, 3)
	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	for i, ln := range lines {
		if w := xansi.StringWidth(ln); w != 10 {
			t.Fatalf("line %d: width %d want 10 (%q)", i, w, ln)
		}
	}
	if !strings.HasSuffix(lines[1], "…") {
		t.Fatalf("expected ellipsis on cut line, got %q", lines[1])
	}
}

func TestRenderInputLine_NeverExceedsWidth(t *testing.T) {
	line := renderInputLine(12, "a very long value\nwith a newline")
	if strings.Contains(line, "\n") {
		t.Fatalf("input line must be single-line")
	}
	if w := xansi.StringWidth(line); w > 12 {
		t.Fatalf("width %d exceeds 12", w)
	}
}

func TestModalBodyWidthBounds(t *testing.T) {
	if got := modalBodyWidth(10); got != 20 {
		t.Fatalf("narrow screen: got %d want 20", got)
	}
	if got := modalBodyWidth(500); got != modalMaxWidth-2*modalPadX {
		t.Fatalf("wide screen: got %d", got)
	}
}
