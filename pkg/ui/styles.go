package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/Dicklesworthstone/reviews_copilot/pkg/model"
)

// Spacing constants for consistent layout (in characters)
const (
	SpaceXS = 1
	SpaceSM = 2
	SpaceMD = 3
)

// Table column widths; the review text column takes the remainder
const (
	colID        = 6
	colLocation  = 9
	colDate      = 12
	colRating    = 7
	colSentiment = 10
	colTopic     = 13
	minTextWidth = 16
)

// SentimentColor maps a sentiment onto its theme color
func SentimentColor(s model.Sentiment, t Theme) lipgloss.AdaptiveColor {
	switch s {
	case model.SentimentPositive:
		return t.Positive
	case model.SentimentNegative:
		return t.Negative
	}
	return t.Neutral
}

// RenderSentimentBadge returns a styled sentiment badge
func RenderSentimentBadge(s model.Sentiment, t Theme) string {
	label := string(s)
	if label == "" {
		label = "-"
	}
	return t.Renderer.NewStyle().
		Foreground(SentimentColor(s, t)).
		Bold(true).
		Render(label)
}

// Stars renders a rating as a five symbol scale
func Stars(rating int) string {
	r := model.Review{Rating: rating}.Stars()
	return strings.Repeat("★", r) + strings.Repeat("☆", model.MaxRating-r)
}

// RenderStars colors the filled part of the star scale
func RenderStars(rating int, t Theme) string {
	r := model.Review{Rating: rating}.Stars()
	filled := t.Renderer.NewStyle().Foreground(t.Star).Render(strings.Repeat("★", r))
	empty := t.Renderer.NewStyle().Foreground(t.Border).Render(strings.Repeat("☆", model.MaxRating-r))
	return filled + empty
}

// RenderBar renders a horizontal bar for a fill between 0 and 1
func RenderBar(fill float64, width int, color lipgloss.AdaptiveColor, t Theme) string {
	if width <= 0 {
		return ""
	}
	if fill < 0 {
		fill = 0
	}
	if fill > 1 {
		fill = 1
	}
	filled := int(fill*float64(width) + 0.5)
	if filled > width {
		filled = width
	}
	bar := t.Renderer.NewStyle().Foreground(color).Render(strings.Repeat("█", filled))
	track := t.Renderer.NewStyle().Foreground(t.Border).Render(strings.Repeat("░", width-filled))
	return bar + track
}

// RenderDivider renders a horizontal divider line
func RenderDivider(width int, t Theme) string {
	if width <= 0 {
		return ""
	}
	return t.Renderer.NewStyle().
		Foreground(t.Border).
		Render(strings.Repeat("─", width))
}

// fit truncates or pads s to exactly width terminal cells
func fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = strings.ReplaceAll(s, "\n", " ")
	if runewidth.StringWidth(s) > width {
		s = runewidth.Truncate(s, width, "…")
	}
	return runewidth.FillRight(s, width)
}
