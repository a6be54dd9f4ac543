package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-runewidth"

	"github.com/Dicklesworthstone/reviews_copilot/pkg/model"
	"github.com/Dicklesworthstone/reviews_copilot/pkg/ui"
)

const (
	textWidth  = 48
	replyWidth = 40
	barWidth   = 24
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	return runewidth.Truncate(s, width, "…")
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func renderReviews(w io.Writer, page model.ReviewsPage) {
	if len(page.Reviews) == 0 {
		fmt.Fprintln(w, "No reviews found")
		return
	}
	t := newTable("ID", "LOCATION", "DATE", "RATING", "SENTIMENT", "TOPIC", "REVIEW", "REPLIED")
	for _, r := range page.Reviews {
		replied := ""
		if r.HasReply() {
			replied = "✓"
		}
		t.Row(
			strconv.Itoa(r.ID),
			r.Location,
			r.Date,
			ui.Stars(r.Rating),
			string(r.Sentiment),
			r.Topic,
			truncate(r.Text, textWidth),
			replied,
		)
	}
	fmt.Fprintln(w, t.Render())
	if p := page.Pagination; p != nil {
		fmt.Fprintf(w, "Page %d of %d (%d total reviews)\n", p.Page, p.TotalPages, p.Total)
	}
}

func textBar(fill float64, width int) string {
	n := int(fill*float64(width) + 0.5)
	return strings.Repeat("█", n) + strings.Repeat("░", width-n)
}

func renderBars(w io.Writer, title string, bars []model.Bar) {
	fmt.Fprintln(w, title)
	if len(bars) == 0 {
		fmt.Fprintln(w, "  (none)")
		return
	}
	labelWidth := 0
	for _, b := range bars {
		if lw := runewidth.StringWidth(b.Label); lw > labelWidth {
			labelWidth = lw
		}
	}
	for _, b := range bars {
		fmt.Fprintf(w, "  %s  %s %4s  (%d)\n",
			runewidth.FillRight(b.Label, labelWidth), textBar(b.Fill, barWidth), b.Pct, b.Count)
	}
}

func renderAnalytics(w io.Writer, a model.Analytics) {
	fmt.Fprintf(w, "Total Reviews: %d\n", a.TotalReviews)
	fmt.Fprintf(w, "Avg Rating:    %s\n", strconv.FormatFloat(a.AvgRating, 'f', -1, 64))
	fmt.Fprintf(w, "Positive:      %d\n\n", a.SentimentCount(model.SentimentPositive))
	renderBars(w, "Sentiment Distribution", a.SentimentBars())
	fmt.Fprintln(w)
	renderBars(w, "Topic Breakdown", a.TopicBars(model.TopTopics))
}

func renderHistory(w io.Writer, events []model.ReplyEvent) {
	if len(events) == 0 {
		fmt.Fprintln(w, "No reply activity recorded")
		return
	}
	t := newTable("WHEN", "SESSION", "REVIEW", "ACTION", "REPLY")
	for _, e := range events {
		t.Row(
			e.CreatedAt.Local().Format("2006-01-02 15:04"),
			strconv.FormatInt(e.SessionID, 10),
			strconv.Itoa(e.ReviewID),
			e.Action,
			truncate(e.Reply, replyWidth),
		)
	}
	fmt.Fprintln(w, t.Render())
}
