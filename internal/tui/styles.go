package tui

import (
	"github.com/charmbracelet/lipgloss"

	"edharness/internal/suite"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#1A1A8F", Dark: "#8BE9FD"})
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#606060", Dark: "#909090"})
	detailStyle   = lipgloss.NewStyle().PaddingLeft(4)

	logPanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.AdaptiveColor{Light: "#606060", Dark: "#A0A0A0"})
	logTitleStyle = lipgloss.NewStyle().Bold(true)

	statusSuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#006600", Dark: "#8AE234"})
	statusErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#B30000", Dark: "#FF6B6B"})

	resultStyles = map[suite.Result]lipgloss.Style{
		suite.ResultPassed:  lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#006600", Dark: "#8AE234"}).Bold(true),
		suite.ResultFailed:  lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#B30000", Dark: "#FF6B6B"}).Bold(true),
		suite.ResultError:   lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#A000A0", Dark: "#FF79C6"}).Bold(true),
		suite.ResultSkipped: lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#A07000", Dark: "#FFD066"}),
	}

	// Log lines are tinted by the level keyword they carry.
	logLevelStyles = map[string]lipgloss.Style{
		"[ERROR]": lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#B30000", Dark: "#FF6B6B"}),
		"[WARN]":  lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#A07000", Dark: "#FFD066"}),
		"[DEBUG]": dimStyle,
	}
)
