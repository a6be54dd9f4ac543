package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme bundles the renderer and the adaptive colors every view draws with
type Theme struct {
	Renderer *lipgloss.Renderer

	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Subtext   lipgloss.AdaptiveColor
	Border    lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor

	Positive lipgloss.AdaptiveColor
	Neutral  lipgloss.AdaptiveColor
	Negative lipgloss.AdaptiveColor
	Star     lipgloss.AdaptiveColor
	Topic    lipgloss.AdaptiveColor
	Danger   lipgloss.AdaptiveColor
}

// DefaultTheme returns the dashboard palette bound to r. A nil renderer
// uses lipgloss' default renderer.
func DefaultTheme(r *lipgloss.Renderer) Theme {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	return Theme{
		Renderer: r,

		Primary:   lipgloss.AdaptiveColor{Light: "#7D56F4", Dark: "#BD93F9"},
		Secondary: lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"},
		Subtext:   lipgloss.AdaptiveColor{Light: "#666666", Dark: "#BFBFBF"},
		Border:    lipgloss.AdaptiveColor{Light: "#CCCCCC", Dark: "#44475A"},
		Highlight: lipgloss.AdaptiveColor{Light: "#EEEEEE", Dark: "#363949"},

		Positive: lipgloss.AdaptiveColor{Light: "#1A7F37", Dark: "#50FA7B"},
		Neutral:  lipgloss.AdaptiveColor{Light: "#9A6700", Dark: "#F1FA8C"},
		Negative: lipgloss.AdaptiveColor{Light: "#CF222E", Dark: "#FF5555"},
		Star:     lipgloss.AdaptiveColor{Light: "#BF8700", Dark: "#FFB86C"},
		Topic:    lipgloss.AdaptiveColor{Light: "#0969DA", Dark: "#8BE9FD"},
		Danger:   lipgloss.AdaptiveColor{Light: "#CF222E", Dark: "#FF5555"},
	}
}
