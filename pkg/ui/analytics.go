package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Dicklesworthstone/reviews_copilot/pkg/model"
)

// renderAnalytics draws the three summary cards and the two breakdowns
func renderAnalytics(a *model.Analytics, width int, t Theme) string {
	if a == nil {
		return ""
	}
	if width < 40 {
		width = 40
	}

	cards := renderCards(*a, width, t)

	colWidth := (width - SpaceMD) / 2
	sentiment := renderBreakdown("Sentiment Distribution", a.SentimentBars(), colWidth, t,
		func(label string) lipgloss.AdaptiveColor { return SentimentColor(model.Sentiment(label), t) })
	topics := renderBreakdown("Topic Breakdown", a.TopicBars(model.TopTopics), colWidth, t,
		func(string) lipgloss.AdaptiveColor { return t.Topic })

	panels := lipgloss.JoinHorizontal(lipgloss.Top, sentiment, strings.Repeat(" ", SpaceMD), topics)
	return lipgloss.JoinVertical(lipgloss.Left, cards, panels)
}

func renderCards(a model.Analytics, width int, t Theme) string {
	cardWidth := (width-2*SpaceSM)/3 - 2
	card := t.Renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(0, 1).
		Width(cardWidth)
	title := t.Renderer.NewStyle().Foreground(t.Subtext)
	value := t.Renderer.NewStyle().Bold(true).Foreground(t.Primary)

	items := [][2]string{
		{"Total Reviews", fmt.Sprintf("%d", a.TotalReviews)},
		{"Avg Rating", formatRating(a.AvgRating)},
		{"Positive", fmt.Sprintf("%d", a.SentimentCount(model.SentimentPositive))},
	}
	rendered := make([]string, 0, len(items)*2)
	for i, it := range items {
		if i > 0 {
			rendered = append(rendered, strings.Repeat(" ", SpaceSM))
		}
		rendered = append(rendered, card.Render(title.Render(it[0])+"\n"+value.Render(it[1])))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

// formatRating prints the average exactly as the server sent it
func formatRating(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func renderBreakdown(title string, bars []model.Bar, width int, t Theme, color func(string) lipgloss.AdaptiveColor) string {
	var b strings.Builder
	b.WriteString(t.Renderer.NewStyle().Bold(true).Foreground(t.Secondary).Render(title))
	b.WriteString("\n")

	labelW := 12
	countW := 6
	pctW := 5
	barW := width - labelW - countW - pctW - 4
	if barW < 5 {
		barW = 5
	}

	if len(bars) == 0 {
		b.WriteString(t.Renderer.NewStyle().Faint(true).Render("no data"))
		b.WriteString("\n")
	}
	for _, bar := range bars {
		b.WriteString(fit(bar.Label, labelW))
		b.WriteString(" ")
		b.WriteString(RenderBar(bar.Fill, barW, color(bar.Label), t))
		b.WriteString(" ")
		b.WriteString(fmt.Sprintf("%*d", countW, bar.Count))
		b.WriteString(" ")
		b.WriteString(fmt.Sprintf("%*s", pctW, bar.Pct))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
