package tui

import (
	"strings"

	"github.com/muesli/reflow/wordwrap"
)

type pageLayout struct {
	windowWidth    int
	windowHeight   int
	viewportWidth  int
	viewportHeight int
}

func newPageLayout() pageLayout {
	return pageLayout{
		viewportWidth:  80,
		viewportHeight: 12,
	}
}

// formChrome is the rows taken by the title, the form and the status lines.
const formChrome = 2 + 2*(int(fieldCount)-1) + descriptionHeight + 1 + 6

func (l *pageLayout) Update(width, height int) {
	l.windowWidth = width
	l.windowHeight = height
	innerWidth := width - viewportHorizontalPadding
	if innerWidth < minViewportWidth {
		innerWidth = minViewportWidth
	}
	l.viewportWidth = innerWidth
	usable := height - formChrome
	if usable < 5 {
		usable = 5
	}
	l.viewportHeight = usable
}

// refreshDocument rewraps the document for the current viewport width.
func (m *model) refreshDocument() {
	if !m.documentDirty {
		return
	}
	m.documentDirty = false
	if !m.hasDocument {
		m.viewport.SetContent("")
		return
	}
	m.viewport.SetContent(wrapDocument(m.document, m.wrapWidth(2)))
}

func wrapDocument(doc string, width int) string {
	if doc == "" {
		return ""
	}
	lines := strings.Split(strings.ReplaceAll(doc, "\r\n", "\n"), "\n")
	for i, line := range lines {
		lines[i] = wordwrap.String(line, width)
	}
	return strings.Join(lines, "\n")
}

func (m *model) wrapWidth(padding int) int {
	width := m.viewport.Width
	if width <= 0 {
		width = 80
	}
	if padding < 0 {
		padding = 0
	}
	available := width - padding
	if available < 20 {
		available = 20
	}
	return available
}

func previewText(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return strings.TrimSpace(string(runes[:limit])) + "…"
}
