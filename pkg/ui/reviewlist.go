package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"

	"github.com/Dicklesworthstone/reviews_copilot/pkg/model"
)

// List view texts
const (
	textLoading  = "Loading reviews..."
	textNoResult = "No reviews found"
)

// reviewList is the filter bar, the review table and the pagination footer.
// It never talks to the network: filter and page changes are reported to
// the parent through the returned filters.
type reviewList struct {
	filters model.Filters

	query     textinput.Model
	searching bool

	find    textinput.Model
	finding bool

	cursor int
	scroll int
}

func newReviewList() reviewList {
	q := textinput.New()
	q.Placeholder = "Search reviews..."
	q.Prompt = "/ "
	q.CharLimit = 200

	f := textinput.New()
	f.Placeholder = "find on this page"
	f.Prompt = "find: "
	f.CharLimit = 100

	return reviewList{query: q, find: f}
}

// reviewSource adapts a page of reviews for fuzzy matching
type reviewSource []model.Review

func (s reviewSource) String(i int) string {
	r := s[i]
	return strconv.Itoa(r.ID) + " " + r.Location + " " + r.Topic + " " + r.Text
}

func (s reviewSource) Len() int { return len(s) }

// findOnPage moves the cursor to the best fuzzy match among loaded rows
func (l *reviewList) findOnPage(reviews []model.Review, pattern string) bool {
	if pattern == "" || len(reviews) == 0 {
		return false
	}
	matches := fuzzy.FindFrom(pattern, reviewSource(reviews))
	if len(matches) == 0 {
		return false
	}
	l.cursor = matches[0].Index
	return true
}

func (l *reviewList) clampCursor(n int) {
	if l.cursor >= n {
		l.cursor = n - 1
	}
	if l.cursor < 0 {
		l.cursor = 0
	}
}

func (l *reviewList) ensureVisible(visible int) {
	if visible < 1 {
		visible = 1
	}
	if l.cursor < l.scroll {
		l.scroll = l.cursor
	} else if l.cursor >= l.scroll+visible {
		l.scroll = l.cursor - visible + 1
	}
	if l.scroll < 0 {
		l.scroll = 0
	}
}

// cycle returns the next (or previous) value of options after current,
// where the empty string means "All"
func cycle(options []string, current string, step int) string {
	all := append([]string{""}, options...)
	idx := 0
	for i, o := range all {
		if o == current {
			idx = i
			break
		}
	}
	idx = (idx + step + len(all)) % len(all)
	return all[idx]
}

func sentimentOptions() []string {
	out := make([]string, len(model.Sentiments))
	for i, s := range model.Sentiments {
		out[i] = string(s)
	}
	return out
}

// updateSearch feeds a key to the query box. It returns true when the query
// text changed.
func (l *reviewList) updateSearch(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyEnter:
		l.searching = false
		l.query.Blur()
		return false, nil
	}
	before := l.query.Value()
	var cmd tea.Cmd
	l.query, cmd = l.query.Update(msg)
	if l.query.Value() == before {
		return false, cmd
	}
	l.filters = l.filters.WithQuery(l.query.Value())
	return true, cmd
}

func (l *reviewList) updateFind(msg tea.KeyMsg, reviews []model.Review) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyEnter:
		l.finding = false
		l.find.Blur()
		l.find.Reset()
		return nil
	}
	var cmd tea.Cmd
	l.find, cmd = l.find.Update(msg)
	l.findOnPage(reviews, l.find.Value())
	return cmd
}

func filterLabel(value, all string) string {
	if value == "" {
		return all
	}
	return value
}

func (l reviewList) renderFilters(t Theme) string {
	r := t.Renderer
	label := r.NewStyle().Foreground(t.Subtext)
	value := r.NewStyle().Bold(true).Foreground(t.Primary)

	query := l.query.View()
	if !l.searching && l.query.Value() == "" {
		query = r.NewStyle().Faint(true).Render("/ Search reviews...")
	}

	parts := []string{
		query,
		label.Render("Location: ") + value.Render(filterLabel(l.filters.Location, "All Locations")),
		label.Render("Sentiment: ") + value.Render(filterLabel(l.filters.Sentiment, "All Sentiments")),
	}
	return strings.Join(parts, "   ")
}

func textColumnWidth(width int) int {
	fixed := colID + colLocation + colDate + colRating + colSentiment + colTopic + 7
	if w := width - fixed; w > minTextWidth {
		return w
	}
	return minTextWidth
}

func (l reviewList) renderHeader(width int, t Theme) string {
	h := t.Renderer.NewStyle().Bold(true).Foreground(t.Secondary)
	cols := []string{
		fit("ID", colID),
		fit("LOCATION", colLocation),
		fit("DATE", colDate),
		fit("REVIEW", textColumnWidth(width)),
		fit("RATING", colRating),
		fit("SENTIMENT", colSentiment),
		fit("TOPIC", colTopic),
	}
	return h.Render(strings.Join(cols, " "))
}

func (l reviewList) renderRow(rv model.Review, selected bool, width int, t Theme) string {
	r := t.Renderer
	sentiment := r.NewStyle().Foreground(SentimentColor(rv.Sentiment, t)).
		Render(fit(string(rv.Sentiment), colSentiment))
	stars := RenderStars(rv.Rating, t) + strings.Repeat(" ", colRating-model.MaxRating)

	marker := " "
	if rv.HasReply() {
		marker = "✓"
	}
	cols := []string{
		fit(strconv.Itoa(rv.ID)+marker, colID),
		fit(rv.Location, colLocation),
		fit(rv.Date, colDate),
		fit(rv.Text, textColumnWidth(width)),
		stars,
		sentiment,
		fit(rv.Topic, colTopic),
	}
	row := strings.Join(cols, " ")
	if selected {
		return r.NewStyle().Background(t.Highlight).Bold(true).Render(row)
	}
	return row
}

// renderTable draws the rows area. visible is the number of row lines.
func (l *reviewList) renderTable(reviews []model.Review, loading bool, width, visible int, t Theme) string {
	var b strings.Builder
	b.WriteString(l.renderHeader(width, t))
	b.WriteString("\n")

	muted := t.Renderer.NewStyle().Foreground(t.Subtext).Padding(1, 2)
	switch {
	case loading:
		b.WriteString(muted.Render(textLoading))
		return b.String()
	case len(reviews) == 0:
		b.WriteString(muted.Render(textNoResult))
		return b.String()
	}

	l.clampCursor(len(reviews))
	l.ensureVisible(visible)
	end := l.scroll + visible
	if end > len(reviews) {
		end = len(reviews)
	}
	for i := l.scroll; i < end; i++ {
		b.WriteString(l.renderRow(reviews[i], i == l.cursor, width, t))
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// pageSummary is the footer text, e.g. "Page 2 of 5 (97 total reviews)"
func pageSummary(p *model.Pagination) string {
	return fmt.Sprintf("Page %d of %d (%d total reviews)", p.Page, p.TotalPages, p.Total)
}

func (l reviewList) renderPagination(p *model.Pagination, t Theme) string {
	if p == nil {
		return ""
	}
	r := t.Renderer
	enabled := r.NewStyle().Foreground(t.Primary).Bold(true)
	disabled := r.NewStyle().Foreground(t.Border).Faint(true)

	prev, next := disabled.Render("[p] Previous"), disabled.Render("[n] Next")
	if p.HasPrev {
		prev = enabled.Render("[p] Previous")
	}
	if p.HasNext {
		next = enabled.Render("[n] Next")
	}
	summary := r.NewStyle().Foreground(t.Subtext).Render(pageSummary(p))
	return summary + "   " + prev + "  " + next
}
