package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"github.com/rs/zerolog"

	"github.com/Dicklesworthstone/reviews_copilot/pkg/api"
	"github.com/Dicklesworthstone/reviews_copilot/pkg/config"
	"github.com/Dicklesworthstone/reviews_copilot/pkg/dashboard"
	"github.com/Dicklesworthstone/reviews_copilot/pkg/journal"
	"github.com/Dicklesworthstone/reviews_copilot/pkg/logging"
	"github.com/Dicklesworthstone/reviews_copilot/pkg/model"
	"github.com/Dicklesworthstone/reviews_copilot/pkg/watcher"
)

// CopiedDuration is how long the copy confirmation stays visible
const CopiedDuration = 2 * time.Second

// Backend is everything the dashboard needs from the reviews API
type Backend interface {
	dashboard.Fetcher
	SuggestReply(ctx context.Context, id int) (string, error)
	SaveReply(ctx context.Context, id int, reply string) error
}

// Options wires the dashboard's collaborators
type Options struct {
	Context context.Context
	Backend Backend
	Journal *journal.Recorder

	// Optional config hot reload. NewBackend builds a client for a
	// reloaded config.
	ConfigChanges <-chan watcher.ConfigChange
	NewBackend    func(*config.Config) Backend

	Clipboard     ClipboardWriter
	Theme         *Theme
	MarkdownStyle string // glamour standard style, "dark" by default
}

// Model is the root bubbletea model of the review dashboard
type Model struct {
	ctx     context.Context
	backend Backend
	ctrl    *dashboard.Controller
	journal *journal.Recorder
	clip    ClipboardWriter
	log     zerolog.Logger

	configChanges <-chan watcher.ConfigChange
	newBackend    func(*config.Config) Backend

	list     reviewList
	detail   *DetailModel
	openings int
	helpView HelpOverlayModel
	help     help.Model
	keys     keyMap
	spinner  spinner.Model
	spinning bool
	theme    Theme
	mdStyle  string

	status string // transient footer note

	width  int
	height int

	started  bool
	quitting bool
}

// NewModel builds the dashboard. Nothing is fetched until Init.
func NewModel(opts Options) *Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	theme := DefaultTheme(nil)
	if opts.Theme != nil {
		theme = *opts.Theme
	}
	clip := opts.Clipboard
	if clip == nil {
		clip = systemClipboard{}
	}
	keys := defaultKeyMap()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Renderer.NewStyle().Foreground(theme.Primary)

	return &Model{
		ctx:           ctx,
		backend:       opts.Backend,
		ctrl:          dashboard.New(),
		journal:       opts.Journal,
		clip:          clip,
		log:           logging.For("ui"),
		configChanges: opts.ConfigChanges,
		newBackend:    opts.NewBackend,
		list:          newReviewList(),
		helpView:      NewHelpOverlayModel(keys, theme),
		help:          help.New(),
		keys:          keys,
		spinner:       sp,
		theme:         theme,
		mdStyle:       opts.MarkdownStyle,
		width:         100,
		height:        40,
	}
}

// Controller exposes the view state
func (m *Model) Controller() *dashboard.Controller {
	return m.ctrl
}

// Filters returns the filters of the list controls
func (m *Model) Filters() model.Filters {
	return m.list.filters
}

// Detail returns the open reply editor, or nil
func (m *Model) Detail() *DetailModel {
	return m.detail
}

// Init triggers the one initial load with the default filter set
func (m *Model) Init() tea.Cmd {
	if m.started {
		return nil
	}
	m.started = true
	return tea.Batch(m.load(model.Filters{}), m.waitForConfig())
}

// load issues a sequenced load and returns the command that performs it
func (m *Model) load(filters model.Filters) tea.Cmd {
	ticket := m.ctrl.Begin(filters)
	backend, ctx := m.backend, m.ctx
	fetch := func() tea.Msg {
		return loadResultMsg{result: dashboard.Fetch(ctx, backend, ticket)}
	}
	return tea.Batch(fetch, m.startSpinner())
}

func (m *Model) waitForConfig() tea.Cmd {
	ch := m.configChanges
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		change, ok := <-ch
		if !ok {
			return nil
		}
		return configChangedMsg{change: change}
	}
}

func (m *Model) busy() bool {
	return m.ctrl.Loading || (m.detail != nil && m.detail.Busy())
}

func (m *Model) startSpinner() tea.Cmd {
	if m.spinning {
		return nil
	}
	m.spinning = true
	return m.spinner.Tick
}

func (m *Model) suggest(d *DetailModel) tea.Cmd {
	backend, ctx := m.backend, m.ctx
	id, opening := d.Review().ID, d.opening
	return func() tea.Msg {
		reply, err := backend.SuggestReply(ctx, id)
		return suggestResultMsg{opening: opening, reviewID: id, reply: reply, err: err}
	}
}

func (m *Model) save(d *DetailModel) tea.Cmd {
	backend, ctx := m.backend, m.ctx
	id, opening, reply, filters := d.Review().ID, d.opening, d.Reply(), d.Filters()
	return func() tea.Msg {
		err := backend.SaveReply(ctx, id, reply)
		return saveResultMsg{opening: opening, reviewID: id, reply: reply, filters: filters, err: err}
	}
}

// openDetailFor returns the open detail view if it is the given opening
func (m *Model) openDetailFor(opening int) *DetailModel {
	if m.detail == nil || m.detail.opening != opening {
		return nil
	}
	return m.detail
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		if m.detail != nil {
			m.detail.SetSize(msg.Width, msg.Height)
		}
		return m, nil

	case spinner.TickMsg:
		if !m.busy() {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case loadResultMsg:
		if m.ctrl.Apply(msg.result) {
			m.journal.RecordLoad()
			m.list.clampCursor(len(m.ctrl.Reviews))
		}
		return m, nil

	case suggestResultMsg:
		return m, m.handleSuggest(msg)

	case saveResultMsg:
		return m, m.handleSave(msg)

	case copiedResetMsg:
		if m.detail != nil {
			m.detail.clearCopied(msg.seq)
		}
		return m, nil

	case configChangedMsg:
		return m, tea.Batch(m.handleConfig(msg.change), m.waitForConfig())

	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}

	if m.detail != nil {
		return m, m.detail.updateEditor(msg)
	}
	return m, nil
}

func (m *Model) handleSuggest(msg suggestResultMsg) tea.Cmd {
	d := m.openDetailFor(msg.opening)
	if d == nil {
		return nil
	}
	if msg.err != nil {
		d.finishGenerate("", msg.err, api.MessageOf(msg.err))
		return nil
	}
	d.finishGenerate(msg.reply, nil, "")
	if err := m.journal.RecordReply(msg.reviewID, model.ReplyActionGenerated, msg.reply); err != nil {
		m.log.Warn().Err(err).Msg("journal write failed")
	}
	return nil
}

func (m *Model) handleSave(msg saveResultMsg) tea.Cmd {
	open := m.openDetailFor(msg.opening) != nil
	if msg.err != nil {
		if open {
			m.detail.finishSave(msg.err, api.MessageOf(msg.err))
		}
		return nil
	}

	if err := m.journal.RecordReply(msg.reviewID, model.ReplyActionSaved, msg.reply); err != nil {
		m.log.Warn().Err(err).Msg("journal write failed")
	}
	if open {
		m.detail = nil
	}
	m.status = fmt.Sprintf("Reply saved for review #%d", msg.reviewID)
	return m.load(msg.filters)
}

func (m *Model) handleConfig(change watcher.ConfigChange) tea.Cmd {
	if change.Err != nil {
		m.status = "Config reload failed: " + change.Err.Error()
		return nil
	}
	if m.newBackend == nil || change.Config == nil {
		return nil
	}
	m.backend = m.newBackend(change.Config)
	m.status = "Config reloaded"
	m.log.Info().Str("base_url", change.Config.BaseURL()).Msg("backend rebuilt from config")
	return m.load(m.ctrl.Filters)
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return tea.Quit
	}

	if m.helpView.IsVisible() {
		m.helpView, _ = m.helpView.Update(msg)
		return nil
	}

	if m.detail != nil {
		return m.handleDetailKey(msg)
	}

	if m.ctrl.HasError() {
		switch {
		case key.Matches(msg, m.keys.Reload):
			return m.load(m.ctrl.Filters)
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return tea.Quit
		}
		return nil
	}

	if m.list.searching {
		changed, cmd := m.list.updateSearch(msg)
		if changed {
			return tea.Batch(cmd, m.load(m.list.filters))
		}
		return cmd
	}
	if m.list.finding {
		return m.list.updateFind(msg, m.ctrl.Reviews)
	}

	return m.handleListKey(msg)
}

func (m *Model) handleListKey(msg tea.KeyMsg) tea.Cmd {
	reviews := m.ctrl.Reviews
	l := &m.list

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.helpView.Toggle()
	case key.Matches(msg, m.keys.Down):
		if l.cursor < len(reviews)-1 {
			l.cursor++
		}
	case key.Matches(msg, m.keys.Up):
		if l.cursor > 0 {
			l.cursor--
		}
	case key.Matches(msg, m.keys.Open):
		return m.openDetail()
	case key.Matches(msg, m.keys.Search):
		l.searching = true
		return l.query.Focus()
	case key.Matches(msg, m.keys.Find):
		if len(reviews) > 0 {
			l.finding = true
			return l.find.Focus()
		}
	case key.Matches(msg, m.keys.Location):
		step := 1
		if msg.String() == "L" {
			step = -1
		}
		l.filters = l.filters.WithLocation(cycle(model.Locations, l.filters.Location, step))
		return m.load(l.filters)
	case key.Matches(msg, m.keys.Sentim):
		step := 1
		if msg.String() == "S" {
			step = -1
		}
		l.filters = l.filters.WithSentiment(cycle(sentimentOptions(), l.filters.Sentiment, step))
		return m.load(l.filters)
	case key.Matches(msg, m.keys.Clear):
		if l.filters.Location == "" && l.filters.Sentiment == "" && l.filters.Query == "" {
			return nil
		}
		l.query.Reset()
		l.filters = model.Filters{Page: 1}
		return m.load(l.filters)
	case key.Matches(msg, m.keys.PrevPage):
		if p := m.ctrl.Pagination; p != nil && p.HasPrev {
			l.filters = l.filters.WithPage(p.Page - 1)
			l.cursor, l.scroll = 0, 0
			return m.load(l.filters)
		}
	case key.Matches(msg, m.keys.NextPage):
		if p := m.ctrl.Pagination; p != nil && p.HasNext {
			l.filters = l.filters.WithPage(p.Page + 1)
			l.cursor, l.scroll = 0, 0
			return m.load(l.filters)
		}
	case key.Matches(msg, m.keys.Reload):
		return m.load(m.ctrl.Filters)
	}
	return nil
}

func (m *Model) openDetail() tea.Cmd {
	reviews := m.ctrl.Reviews
	if m.ctrl.Loading || len(reviews) == 0 {
		return nil
	}
	m.list.clampCursor(len(reviews))
	d, err := NewDetailModel(reviews[m.list.cursor], m.list.filters, m.keys, m.theme, m.mdStyle)
	if err != nil {
		m.log.Error().Err(err).Msg("open review detail")
		m.status = err.Error()
		return nil
	}
	m.openings++
	d.opening = m.openings
	d.SetSize(m.width, m.height)
	m.detail = d
	m.status = ""
	return nil
}

func (m *Model) handleDetailKey(msg tea.KeyMsg) tea.Cmd {
	d := m.detail
	switch {
	case key.Matches(msg, m.keys.Close):
		m.detail = nil
		return nil
	case key.Matches(msg, m.keys.Generate):
		if !d.beginGenerate() {
			return nil
		}
		return tea.Batch(m.suggest(d), m.startSpinner())
	case key.Matches(msg, m.keys.Save):
		if !d.beginSave() {
			return nil
		}
		return tea.Batch(m.save(d), m.startSpinner())
	case key.Matches(msg, m.keys.Copy):
		return m.copyReply()
	}
	return d.updateEditor(msg)
}

func (m *Model) copyReply() tea.Cmd {
	d := m.detail
	text := d.Reply()
	if text == "" {
		return nil
	}
	if err := m.clip.WriteText(text); err != nil {
		m.log.Warn().Err(err).Msg("clipboard write failed")
		d.errMsg = "Copy failed: " + err.Error()
		return nil
	}
	seq := d.markCopied()
	return tea.Tick(CopiedDuration, func(time.Time) tea.Msg {
		return copiedResetMsg{seq: seq}
	})
}

// View implements tea.Model
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.ctrl.HasError() {
		return m.renderError()
	}

	base := m.renderBase()
	if m.helpView.IsVisible() {
		return m.renderModalOverlay(base, m.helpView.View())
	}
	if m.detail != nil {
		return m.renderModalOverlay(base, m.detail.View(m.spinner.View()))
	}
	return base
}

func (m *Model) renderError() string {
	r := m.theme.Renderer
	width := m.width - 8
	if width < 20 {
		width = 20
	}
	msg := r.NewStyle().Bold(true).Render("Error:") + " " + m.ctrl.Err
	box := r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.Danger).
		Foreground(m.theme.Danger).
		Padding(1, 2).
		Render(wordwrap.String(msg, width))
	hint := r.NewStyle().Faint(true).Render("[r] Retry  [q] Quit")
	return lipgloss.NewStyle().Padding(1, 2).Render(box + "\n\n" + hint)
}

func (m *Model) renderBase() string {
	r := m.theme.Renderer
	var b strings.Builder

	title := r.NewStyle().Bold(true).Foreground(m.theme.Primary).Render("Reviews Copilot")
	if m.ctrl.Loading {
		title += " " + m.spinner.View()
	}
	b.WriteString(title)
	b.WriteString("\n\n")

	contentWidth := m.width - 2
	if a := m.ctrl.Analytics; a != nil {
		b.WriteString(renderAnalytics(a, contentWidth, m.theme))
		b.WriteString("\n\n")
	}

	b.WriteString(m.list.renderFilters(m.theme))
	b.WriteString("\n")
	b.WriteString(RenderDivider(contentWidth, m.theme))
	b.WriteString("\n")

	used := strings.Count(b.String(), "\n")
	visible := m.height - used - 5
	b.WriteString(m.list.renderTable(m.ctrl.Reviews, m.ctrl.Loading, contentWidth, visible, m.theme))
	b.WriteString("\n")
	b.WriteString(RenderDivider(contentWidth, m.theme))
	b.WriteString("\n")

	if p := m.ctrl.Pagination; p != nil {
		b.WriteString(m.list.renderPagination(p, m.theme))
		b.WriteString("\n")
	}
	if m.list.finding {
		b.WriteString(m.list.find.View())
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString(r.NewStyle().Foreground(m.theme.Subtext).Italic(true).Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))

	return lipgloss.NewStyle().Padding(0, 1).Render(b.String())
}

// renderModalOverlay renders a modal centered over the base view
func (m *Model) renderModalOverlay(base, modal string) string {
	modalWidth := lipgloss.Width(modal)
	modalHeight := lipgloss.Height(modal)

	baseLines := strings.Split(base, "\n")
	for len(baseLines) < m.height {
		baseLines = append(baseLines, "")
	}

	startRow := (m.height - modalHeight) / 2
	startCol := (m.width - modalWidth) / 2
	if startRow < 0 {
		startRow = 0
	}
	if startCol < 0 {
		startCol = 0
	}

	for i, line := range strings.Split(modal, "\n") {
		row := startRow + i
		if row < len(baseLines) {
			baseLines[row] = strings.Repeat(" ", startCol) + line
		} else {
			baseLines = append(baseLines, strings.Repeat(" ", startCol)+line)
		}
	}
	return strings.Join(baseLines, "\n")
}
