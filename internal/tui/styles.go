package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle         = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).Underline(true)
	sectionHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	labelStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("147"))
	focusedLabelStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	invalidLabelStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	errorStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helperStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))

	heroAccentColor        = lipgloss.Color("#ff8c00")
	heroEmberColor         = lipgloss.Color("#2b1400")
	heroTextColor          = lipgloss.Color("#fff4d0")
	heroSecondaryTextColor = lipgloss.Color("#ffb347")

	taglineStyle   = lipgloss.NewStyle().Foreground(heroSecondaryTextColor).Italic(true)
	statusBarStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#8ecae6")).Padding(0, 1)
	keyStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#ffd166")).Padding(0, 1)
	keyDescStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#e0def4"))
	buttonStyle    = lipgloss.NewStyle().Bold(true).Foreground(heroTextColor).Background(heroEmberColor).Padding(0, 2)
	disabledStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Background(lipgloss.Color("236")).Padding(0, 2)
	documentStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#56526e")).Padding(0, 1)
	modalStyle     = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(heroAccentColor).Foreground(heroTextColor).Padding(1, 3)
)
