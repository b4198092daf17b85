package tui

import "github.com/charmbracelet/lipgloss"

var (
	primaryColor = lipgloss.Color("#7DD3FC") // Sky
	accentColor  = lipgloss.Color("#FBBF24") // Amber, ratings
	mutedColor   = lipgloss.Color("#9CA3AF")
	noticeColor  = lipgloss.Color("#F59E0B")
	borderColor  = lipgloss.Color("#6B7280")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	mutedStyle  = lipgloss.NewStyle().Foreground(mutedColor)
	ratingStyle = lipgloss.NewStyle().Foreground(accentColor)
	noticeStyle = lipgloss.NewStyle().Foreground(noticeColor).Italic(true)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Padding(0, 1)

	selectedCardStyle = cardStyle.
				BorderForeground(primaryColor)

	detailStyle = lipgloss.NewStyle().Padding(1, 2)
	helpStyle   = mutedStyle.MarginTop(1)
)
