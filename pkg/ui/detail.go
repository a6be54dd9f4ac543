package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/Dicklesworthstone/reviews_copilot/pkg/model"
)

// Inline detail messages
const (
	prefixGenerateFailed = "Failed to generate reply: "
	prefixSaveFailed     = "Failed to save reply: "
	textCopied           = "✓ Copied!"
)

// DetailModel is the reply editor for one review
type DetailModel struct {
	review  model.Review
	filters model.Filters // active when the view was opened
	opening int           // distinguishes reopenings of the same review

	textarea textarea.Model
	machine  *replyMachine
	help     help.Model
	keys     detailKeys
	theme    Theme

	width  int
	height int

	// Inline feedback
	errMsg  string
	copied  bool
	copySeq int

	body      string
	bodyWidth int
	mdStyle   string
}

// NewDetailModel opens the editor for review, seeded with its saved reply
func NewDetailModel(review model.Review, filters model.Filters, keys keyMap, theme Theme, mdStyle string) (*DetailModel, error) {
	machine, err := newReplyMachine(review.ID)
	if err != nil {
		return nil, err
	}

	ta := textarea.New()
	ta.Placeholder = "Write or generate a reply..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 4000
	ta.SetWidth(60)
	ta.SetHeight(5)
	ta.SetValue(review.Reply)
	ta.Focus()

	return &DetailModel{
		review:   review,
		filters:  filters,
		textarea: ta,
		machine:  machine,
		help:     help.New(),
		keys:     detailKeys{keys},
		theme:    theme,
		mdStyle:  mdStyle,
	}, nil
}

// Review returns the review being edited
func (m *DetailModel) Review() model.Review {
	return m.review
}

// Reply returns the current editor text
func (m *DetailModel) Reply() string {
	return m.textarea.Value()
}

// Filters returns the list filters captured when the view opened
func (m *DetailModel) Filters() model.Filters {
	return m.filters
}

// State returns the action state (idle, generating, saving)
func (m *DetailModel) State() string {
	return m.machine.Current()
}

// Busy reports an in-flight generate or save
func (m *DetailModel) Busy() bool {
	return m.machine.Busy()
}

// ErrorMessage returns the inline error, if any
func (m *DetailModel) ErrorMessage() string {
	return m.errMsg
}

// Copied reports whether the copy confirmation is showing
func (m *DetailModel) Copied() bool {
	return m.copied
}

// SetSize sets the modal dimensions
func (m *DetailModel) SetSize(width, height int) {
	m.width = width
	m.height = height

	taWidth := width - 16
	if taWidth < 30 {
		taWidth = 30
	}
	if taWidth > 80 {
		taWidth = 80
	}
	m.textarea.SetWidth(taWidth)
	m.help.Width = taWidth
}

func (m *DetailModel) boxWidth() int {
	w := m.textarea.Width() + 6
	if w < 40 {
		w = 40
	}
	return w
}

// beginGenerate moves to the generating state; false when not allowed
func (m *DetailModel) beginGenerate() bool {
	if !m.machine.Send(evGenerate) {
		return false
	}
	m.errMsg = ""
	return true
}

// beginSave moves to the saving state; false when not allowed
func (m *DetailModel) beginSave() bool {
	if !m.machine.Send(evSave) {
		return false
	}
	m.errMsg = ""
	return true
}

// finishGenerate applies a suggestion result. On failure the editor text is
// left untouched.
func (m *DetailModel) finishGenerate(reply string, err error, msg string) {
	m.machine.Send(evDone)
	if err != nil {
		m.errMsg = prefixGenerateFailed + msg
		return
	}
	m.textarea.SetValue(reply)
}

func (m *DetailModel) finishSave(err error, msg string) {
	m.machine.Send(evDone)
	if err != nil {
		m.errMsg = prefixSaveFailed + msg
	}
}

// markCopied shows the confirmation and returns its sequence number
func (m *DetailModel) markCopied() int {
	m.copied = true
	m.copySeq++
	return m.copySeq
}

func (m *DetailModel) clearCopied(seq int) {
	if seq == m.copySeq {
		m.copied = false
	}
}

// updateEditor feeds a message to the textarea
func (m *DetailModel) updateEditor(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return cmd
}

func (m *DetailModel) renderBody(width int) string {
	if m.body != "" && m.bodyWidth == width {
		return m.body
	}
	m.bodyWidth = width

	text := m.review.Text
	if strings.TrimSpace(text) == "" {
		m.body = m.theme.Renderer.NewStyle().Faint(true).Render("(no review text)")
		return m.body
	}

	style := m.mdStyle
	if style == "" {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err == nil {
		if out, err := r.Render(text); err == nil {
			m.body = strings.Trim(out, "\n")
			return m.body
		}
	}
	m.body = wordwrap.String(text, width)
	return m.body
}

// View renders the editor modal
func (m *DetailModel) View(spinner string) string {
	r := m.theme.Renderer
	width := m.boxWidth()
	var b strings.Builder

	title := r.NewStyle().Bold(true).Foreground(m.theme.Primary)
	b.WriteString(title.Render(fmt.Sprintf("Review #%d", m.review.ID)))
	b.WriteString("\n")

	meta := []string{
		RenderStars(m.review.Rating, m.theme),
		RenderSentimentBadge(m.review.Sentiment, m.theme),
		r.NewStyle().Foreground(m.theme.Subtext).Render(m.review.Topic),
	}
	if m.review.Location != "" || m.review.Date != "" {
		meta = append(meta, r.NewStyle().Faint(true).Render(strings.TrimSpace(m.review.Location+" "+m.review.Date)))
	}
	b.WriteString(strings.Join(meta, "  "))
	b.WriteString("\n\n")

	b.WriteString(m.renderBody(width - 4))
	b.WriteString("\n\n")

	label := r.NewStyle().Bold(true).Foreground(m.theme.Secondary).Render("Suggested Reply")
	if m.Reply() != "" {
		copyLabel := "[ctrl+y] Copy"
		if m.copied {
			copyLabel = textCopied
		}
		label += "  " + r.NewStyle().Foreground(m.theme.Positive).Render(copyLabel)
	}
	b.WriteString(label)
	b.WriteString("\n")
	b.WriteString(m.textarea.View())
	b.WriteString("\n")

	switch m.State() {
	case replyGenerating:
		b.WriteString(spinner + " Generating...")
	case replySaving:
		b.WriteString(spinner + " Saving...")
	default:
		b.WriteString(r.NewStyle().Foreground(m.theme.Primary).Render("[ctrl+g] AI Suggest"))
	}
	b.WriteString("\n")

	if m.errMsg != "" {
		b.WriteString(r.NewStyle().Foreground(m.theme.Danger).Render(wordwrap.String(m.errMsg, width-4)))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))

	box := r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.Primary).
		Padding(1, 2).
		Width(width)
	return box.Render(b.String())
}
