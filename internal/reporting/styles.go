package reporting

import (
	"github.com/charmbracelet/lipgloss"

	"edharness/internal/suite"
)

var (
	passColor  = lipgloss.AdaptiveColor{Light: "#006600", Dark: "#8AE234"}
	failColor  = lipgloss.AdaptiveColor{Light: "#B30000", Dark: "#FF6B6B"}
	errorColor = lipgloss.AdaptiveColor{Light: "#A000A0", Dark: "#FF79C6"}
	skipColor  = lipgloss.AdaptiveColor{Light: "#A07000", Dark: "#FFD066"}
	dimColor   = lipgloss.AdaptiveColor{Light: "#606060", Dark: "#909090"}
)

// styles are bound to the renderer of one output so colour is only emitted
// when that output supports it.
type styles struct {
	result  map[suite.Result]lipgloss.Style
	title   lipgloss.Style
	dim     lipgloss.Style
	detail  lipgloss.Style
	summary lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		result: map[suite.Result]lipgloss.Style{
			suite.ResultPassed:  r.NewStyle().Foreground(passColor).Bold(true),
			suite.ResultFailed:  r.NewStyle().Foreground(failColor).Bold(true),
			suite.ResultError:   r.NewStyle().Foreground(errorColor).Bold(true),
			suite.ResultSkipped: r.NewStyle().Foreground(skipColor),
		},
		title:   r.NewStyle().Bold(true),
		dim:     r.NewStyle().Foreground(dimColor),
		detail:  r.NewStyle().PaddingLeft(6),
		summary: r.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
	}
}

// Symbol returns the marker printed next to a result.
func Symbol(result suite.Result) string {
	switch result {
	case suite.ResultPassed:
		return "✅"
	case suite.ResultFailed:
		return "❌"
	case suite.ResultSkipped:
		return "⏭️"
	case suite.ResultError:
		return "💥"
	default:
		return "❓"
	}
}
