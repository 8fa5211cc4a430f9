package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/csheth/legalchain/internal/submit"
)

func (m *model) View() string {
	if m.modal != "" {
		return m.modalView()
	}
	m.refreshDocument()
	parts := []string{m.heroView(), m.formView(), m.buttonView()}
	if m.errorMessage != "" {
		parts = append(parts, errorStyle.Render(m.errorMessage))
	}
	if m.infoMessage != "" {
		message := m.infoMessage
		if m.stage == stageSubmitting || m.jobState.running() > 0 {
			message = fmt.Sprintf("%s %s", m.spinner.View(), message)
		}
		parts = append(parts, helperStyle.Render(message))
	}
	if m.hasDocument {
		parts = append(parts, m.documentView())
	}
	parts = append(parts, m.statusView())
	return joinNonEmpty(parts)
}

func (m *model) heroView() string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Render(appTitle),
		taglineStyle.Render(heroTagline),
	)
}

func (m *model) formView() string {
	rows := make([]string, 0, fieldCount)
	for f := field(0); f < fieldCount; f++ {
		label := labelStyle
		switch {
		case m.invalid[f]:
			label = invalidLabelStyle
		case m.stage == stageForm && m.focus == f:
			label = focusedLabelStyle
		}
		var input string
		if f == fieldDescription {
			input = m.description.View()
		} else {
			input = m.inputs[f].View()
		}
		rows = append(rows, label.Render(f.label())+"\n"+input)
	}
	return strings.Join(rows, "\n")
}

func (m *model) buttonView() string {
	if m.stage == stageSubmitting {
		return disabledStyle.Render("Generating…")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		buttonStyle.Render("Generate NDA"),
		keyDescStyle.Render("  "),
		keyStyle.Render("Ctrl+S"),
	)
}

func (m *model) documentView() string {
	header := sectionHeaderStyle.Render("Generated NDA")
	hints := []string{
		keyStyle.Render("Ctrl+T") + keyDescStyle.Render(" nda.txt"),
		keyStyle.Render("Ctrl+P") + keyDescStyle.Render(" PDF"),
	}
	if m.stage == stageDocument {
		hints = append(hints, keyStyle.Render("↑/↓") + keyDescStyle.Render(" scroll"), keyStyle.Render("Esc") + keyDescStyle.Render(" edit form"))
	} else {
		hints = append(hints, keyStyle.Render("Tab") + keyDescStyle.Render(" read draft"))
	}
	return joinNonEmpty([]string{
		header,
		documentStyle.Render(m.viewport.View()),
		strings.Join(hints, "  "),
	})
}

func (m *model) statusView() string {
	snap := m.config.Controller.Snapshot()
	stats := []string{fmt.Sprintf("Status %s", snap.Status)}
	if d := snap.Duration(); d > 0 && snap.Status != submit.StatusPending {
		stats = append(stats, fmt.Sprintf("took %s", d.Round(100*time.Millisecond)))
	}
	if m.config.Endpoint != "" {
		stats = append(stats, previewText(m.config.Endpoint, 48))
	}
	if m.lastExport != "" {
		stats = append(stats, "saved "+previewText(m.lastExport, 40))
	}
	if n := m.jobState.running(); n > 0 {
		stats = append(stats, fmt.Sprintf("%d job(s) running", n))
	}
	return statusBarStyle.Render(strings.Join(stats, "  •  "))
}

func (m *model) modalView() string {
	box := modalStyle.Render(joinNonEmpty([]string{
		errorStyle.Bold(true).Render("❌ " + m.modal),
		helperStyle.Render("Press Esc to close."),
	}))
	if m.layout.windowWidth == 0 || m.layout.windowHeight == 0 {
		return box
	}
	return lipgloss.Place(m.layout.windowWidth, m.layout.windowHeight, lipgloss.Center, lipgloss.Center, box)
}

func joinNonEmpty(parts []string) string {
	filtered := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		filtered = append(filtered, part)
	}
	return strings.Join(filtered, "\n\n")
}
