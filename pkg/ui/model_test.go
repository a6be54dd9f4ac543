package ui

import (
	"context"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Dicklesworthstone/reviews_copilot/pkg/api"
	"github.com/Dicklesworthstone/reviews_copilot/pkg/config"
	"github.com/Dicklesworthstone/reviews_copilot/pkg/journal"
	"github.com/Dicklesworthstone/reviews_copilot/pkg/mockapi"
	"github.com/Dicklesworthstone/reviews_copilot/pkg/model"
	"github.com/Dicklesworthstone/reviews_copilot/pkg/watcher"
)

// keyMsg creates a tea.KeyMsg for testing
func keyMsg(key string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
}

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyGen   = tea.KeyMsg{Type: tea.KeyCtrlG}
	keySave  = tea.KeyMsg{Type: tea.KeyCtrlS}
	keyCopy  = tea.KeyMsg{Type: tea.KeyCtrlY}
)

// fakeBackend serves three pages of three reviews and records every call
type fakeBackend struct {
	mu sync.Mutex

	listErr    error
	suggestErr error
	saveErr    error
	suggestion string

	lists []model.Filters
	saves map[int]string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{suggestion: "Thank you for the kind words!", saves: map[int]string{}}
}

func (b *fakeBackend) ListReviews(ctx context.Context, f model.Filters) (model.ReviewsPage, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lists = append(b.lists, f)
	if b.listErr != nil {
		return model.ReviewsPage{}, b.listErr
	}
	page := f.PageNumber()
	base := (page - 1) * 3
	reviews := []model.Review{
		{ID: base + 1, Location: "NYC", Rating: 5, Sentiment: model.SentimentPositive, Topic: "Food", Text: "Great pasta " + f.Query},
		{ID: base + 2, Location: "SF", Rating: 2, Sentiment: model.SentimentNegative, Topic: "Service", Text: "Slow waiter"},
		{ID: base + 3, Location: "LA", Rating: 3, Sentiment: model.SentimentNeutral, Topic: "Price", Text: "Fine", Reply: "Existing draft"},
	}
	return model.ReviewsPage{
		Reviews: reviews,
		Pagination: &model.Pagination{
			Page: page, Total: 9, TotalPages: 3,
			HasPrev: page > 1, HasNext: page < 3,
		},
	}, nil
}

func (b *fakeBackend) Analytics(ctx context.Context) (model.Analytics, error) {
	return model.Analytics{
		TotalReviews: 9,
		AvgRating:    3.3,
		Sentiment:    map[model.Sentiment]int{model.SentimentPositive: 3, model.SentimentNeutral: 3, model.SentimentNegative: 3},
		Topics:       model.TopicCounts{{Name: "Food", Count: 3}, {Name: "Service", Count: 3}, {Name: "Price", Count: 3}},
	}, nil
}

func (b *fakeBackend) SuggestReply(ctx context.Context, id int) (string, error) {
	if b.suggestErr != nil {
		return "", b.suggestErr
	}
	return b.suggestion, nil
}

func (b *fakeBackend) SaveReply(ctx context.Context, id int, reply string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.saveErr != nil {
		return b.saveErr
	}
	b.saves[id] = reply
	return nil
}

func (b *fakeBackend) lastList() model.Filters {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.lists) == 0 {
		return model.Filters{}
	}
	return b.lists[len(b.lists)-1]
}

func (b *fakeBackend) listCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.lists)
}

type fakeClipboard struct {
	text string
	err  error
}

func (c *fakeClipboard) WriteText(text string) error {
	if c.err != nil {
		return c.err
	}
	c.text = text
	return nil
}

// runCmd executes cmd and flattens batches. Commands that block (timers,
// cursor blinks) are abandoned.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()

	select {
	case msg := <-ch:
		if batch, ok := msg.(tea.BatchMsg); ok {
			var out []tea.Msg
			for _, c := range batch {
				out = append(out, runCmd(c)...)
			}
			return out
		}
		if msg == nil {
			return nil
		}
		return []tea.Msg{msg}
	case <-time.After(300 * time.Millisecond):
		return nil
	}
}

// drain runs cmd and feeds the dashboard's own result messages back into m
func drain(m *Model, cmd tea.Cmd) {
	for _, msg := range runCmd(cmd) {
		switch msg.(type) {
		case loadResultMsg, suggestResultMsg, saveResultMsg, configChangedMsg:
			_, next := m.Update(msg)
			drain(m, next)
		}
	}
}

func press(m *Model, k tea.KeyMsg) tea.Cmd {
	_, cmd := m.Update(k)
	return cmd
}

func newTestModel(t *testing.T, b Backend) (*Model, *fakeClipboard) {
	t.Helper()
	clip := &fakeClipboard{}
	m := NewModel(Options{Backend: b, Clipboard: clip, MarkdownStyle: "notty"})
	m.list.query.Cursor.SetMode(cursor.CursorStatic)
	m.list.find.Cursor.SetMode(cursor.CursorStatic)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	drain(m, m.Init())
	return m, clip
}

func openDetail(t *testing.T, m *Model, row int) *DetailModel {
	t.Helper()
	m.list.cursor = row
	press(m, keyEnter)
	d := m.Detail()
	if d == nil {
		t.Fatal("expected the detail view to open")
	}
	d.textarea.Cursor.SetMode(cursor.CursorStatic)
	return d
}

func TestInitLoadsOnceWithDefaultFilters(t *testing.T) {
	b := newFakeBackend()
	m, _ := newTestModel(t, b)

	if cmd := m.Init(); cmd != nil {
		t.Error("second Init should not trigger another load")
	}
	if b.listCalls() != 1 {
		t.Fatalf("list calls = %d, want 1", b.listCalls())
	}
	if got := b.lastList(); got != (model.Filters{}) {
		t.Errorf("initial filters = %+v, want empty", got)
	}
	if m.Controller().Loading {
		t.Error("loading should clear after the initial load")
	}
	if len(m.Controller().Reviews) != 3 {
		t.Errorf("reviews = %d", len(m.Controller().Reviews))
	}
}

func TestViewShowsAnalyticsAndPagination(t *testing.T) {
	m, _ := newTestModel(t, newFakeBackend())
	view := m.View()

	for _, want := range []string{
		"Reviews Copilot",
		"Sentiment Distribution",
		"Topic Breakdown",
		"Page 1 of 3 (9 total reviews)",
		"All Locations",
		"All Sentiments",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestFilterChangesResetPage(t *testing.T) {
	b := newFakeBackend()
	m, _ := newTestModel(t, b)

	drain(m, press(m, keyMsg("n")))
	drain(m, press(m, keyMsg("n")))
	if got := b.lastList().Page; got != 3 {
		t.Fatalf("page = %d, want 3", got)
	}

	drain(m, press(m, keyMsg("l")))
	got := b.lastList()
	if got.Location != model.Locations[0] || got.Page != 1 {
		t.Errorf("after location change filters = %+v", got)
	}

	drain(m, press(m, keyMsg("n")))
	drain(m, press(m, keyMsg("s")))
	got = b.lastList()
	if got.Sentiment != string(model.SentimentPositive) || got.Page != 1 || got.Location != model.Locations[0] {
		t.Errorf("after sentiment change filters = %+v", got)
	}

	drain(m, press(m, keyMsg("S")))
	if got := b.lastList(); got.Sentiment != "" {
		t.Errorf("S should cycle back to all sentiments, got %q", got.Sentiment)
	}
}

func TestSearchReloadsPerKeystroke(t *testing.T) {
	b := newFakeBackend()
	m, _ := newTestModel(t, b)

	drain(m, press(m, keyMsg("n")))
	press(m, keyMsg("/"))
	drain(m, press(m, keyMsg("c")))
	drain(m, press(m, keyMsg("o")))

	got := b.lastList()
	if got.Query != "co" || got.Page != 1 {
		t.Errorf("filters = %+v", got)
	}
	// typed letters must not be treated as shortcuts while searching
	if got.Location != "" {
		t.Errorf("location changed while typing: %q", got.Location)
	}

	press(m, keyEsc)
	drain(m, press(m, keyMsg("c")))
	if got := b.lastList(); !got.IsZero() && got != (model.Filters{Page: 1}) {
		t.Errorf("clear left filters %+v", got)
	}
}

func TestPaginationRespectsServerFlags(t *testing.T) {
	b := newFakeBackend()
	m, _ := newTestModel(t, b)

	if cmd := press(m, keyMsg("p")); cmd != nil {
		t.Error("previous must be disabled on the first page")
	}
	if b.listCalls() != 1 {
		t.Errorf("list calls = %d", b.listCalls())
	}

	drain(m, press(m, keyMsg("n")))
	drain(m, press(m, keyMsg("n")))
	if cmd := press(m, keyMsg("n")); cmd != nil {
		t.Error("next must be disabled on the last page")
	}
	if p := m.Controller().Pagination; p == nil || p.Page != 3 {
		t.Fatalf("pagination = %+v", p)
	}

	drain(m, press(m, keyMsg("p")))
	if got := b.lastList().Page; got != 2 {
		t.Errorf("page = %d, want 2", got)
	}
}

func TestErrorViewAndRetry(t *testing.T) {
	b := newFakeBackend()
	b.listErr = &api.Error{Status: 500, Message: "Internal error"}
	m, _ := newTestModel(t, b)

	view := m.View()
	if !strings.Contains(view, "Error:") || !strings.Contains(view, "Internal error") {
		t.Fatalf("expected error view, got:\n%s", view)
	}
	if strings.Contains(view, "Sentiment Distribution") {
		t.Error("error view should replace the dashboard")
	}

	// filter keys are inert while the error view is up
	if cmd := press(m, keyMsg("l")); cmd != nil {
		t.Error("l should be ignored on the error view")
	}

	b.mu.Lock()
	b.listErr = nil
	b.mu.Unlock()
	drain(m, press(m, keyMsg("r")))
	if m.Controller().HasError() {
		t.Fatalf("error persisted: %q", m.Controller().Err)
	}
	if !strings.Contains(m.View(), "Sentiment Distribution") {
		t.Error("dashboard should be back after retry")
	}
}

func TestStaleLoadIsDropped(t *testing.T) {
	b := newFakeBackend()
	m, _ := newTestModel(t, b)

	older := m.load(model.Filters{Query: "older"})
	newer := m.load(model.Filters{Query: "newer"})

	for _, msg := range runCmd(newer) {
		m.Update(msg)
	}
	for _, msg := range runCmd(older) {
		m.Update(msg)
	}

	rv := m.Controller().Reviews
	if len(rv) == 0 || !strings.HasSuffix(rv[0].Text, "newer") {
		t.Errorf("stale result overwrote newer data: %+v", rv)
	}
	if m.Controller().Loading {
		t.Error("loading should be cleared")
	}
}

func TestGenerateAndCopyReply(t *testing.T) {
	b := newFakeBackend()
	m, clip := newTestModel(t, b)
	d := openDetail(t, m, 0)

	cmd := press(m, keyGen)
	if d.State() != replyGenerating {
		t.Fatalf("state = %s", d.State())
	}
	if !strings.Contains(m.View(), "Generating...") {
		t.Error("expected generating indicator")
	}
	drain(m, cmd)

	if d.Reply() != b.suggestion {
		t.Errorf("reply = %q", d.Reply())
	}
	if d.State() != replyIdle {
		t.Errorf("state = %s", d.State())
	}

	if cmd := press(m, keyCopy); cmd == nil {
		t.Fatal("expected a reset timer")
	}
	if clip.text != b.suggestion {
		t.Errorf("clipboard = %q", clip.text)
	}
	if !d.Copied() || !strings.Contains(m.View(), "Copied!") {
		t.Error("expected copy confirmation")
	}

	m.Update(copiedResetMsg{seq: 1})
	if d.Copied() {
		t.Error("confirmation should clear after the timer")
	}
}

func TestCopyConfirmationOnlyClearsForLatestCopy(t *testing.T) {
	m, _ := newTestModel(t, newFakeBackend())
	d := openDetail(t, m, 2)

	press(m, keyCopy)
	press(m, keyCopy)
	m.Update(copiedResetMsg{seq: 1})
	if !d.Copied() {
		t.Error("an older timer must not hide a newer confirmation")
	}
	m.Update(copiedResetMsg{seq: 2})
	if d.Copied() {
		t.Error("latest timer should hide the confirmation")
	}
}

func TestCopyEmptyReplyDoesNothing(t *testing.T) {
	m, clip := newTestModel(t, newFakeBackend())
	d := openDetail(t, m, 0)

	if cmd := press(m, keyCopy); cmd != nil {
		t.Error("copy with an empty reply should be a no-op")
	}
	if clip.text != "" || d.Copied() {
		t.Error("nothing should be copied")
	}
}

func TestGenerateFailureKeepsText(t *testing.T) {
	b := newFakeBackend()
	b.suggestErr = &api.Error{Status: 500, Message: "Internal error"}
	m, _ := newTestModel(t, b)
	d := openDetail(t, m, 2)

	drain(m, press(m, keyGen))

	if d.Reply() != "Existing draft" {
		t.Errorf("reply changed on failure: %q", d.Reply())
	}
	if d.ErrorMessage() != "Failed to generate reply: Internal error" {
		t.Errorf("error = %q", d.ErrorMessage())
	}
	if d.State() != replyIdle {
		t.Errorf("state = %s", d.State())
	}
}

func TestSaveBlockedWhileGenerating(t *testing.T) {
	m, _ := newTestModel(t, newFakeBackend())
	d := openDetail(t, m, 0)

	gen := press(m, keyGen)
	if cmd := press(m, keySave); cmd != nil {
		t.Error("save should be rejected during generate")
	}
	if d.State() != replyGenerating {
		t.Errorf("state = %s", d.State())
	}
	drain(m, gen)
}

func TestSaveClosesAndReloadsWithDetailFilters(t *testing.T) {
	b := newFakeBackend()
	m, _ := newTestModel(t, b)

	rec, err := journal.NewRecorder(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("NewRecorder: %v", err)
	}
	defer rec.Close()
	if err := rec.StartSession("tester", "http://fixture"); err != nil {
		t.Fatal(err)
	}
	m.journal = rec

	drain(m, press(m, keyMsg("s")))
	want := m.Filters()
	d := openDetail(t, m, 0)
	id := d.Review().ID

	press(m, keyMsg("Thanks!"))
	before := b.listCalls()
	drain(m, press(m, keySave))

	if m.Detail() != nil {
		t.Error("detail should close after a successful save")
	}
	if b.saves[id] != "Thanks!" {
		t.Errorf("saved = %q", b.saves[id])
	}
	if b.listCalls() != before+1 {
		t.Errorf("expected one reload, got %d", b.listCalls()-before)
	}
	if got := b.lastList(); got != want {
		t.Errorf("reload filters = %+v, want %+v", got, want)
	}

	events, err := rec.ReviewHistory(id)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].Action != model.ReplyActionSaved || events[0].Reply != "Thanks!" {
		t.Errorf("journal = %+v", events)
	}
}

func TestSaveFailureKeepsDetailOpen(t *testing.T) {
	b := newFakeBackend()
	b.saveErr = &api.Error{Status: 404, Message: "Review not found"}
	m, _ := newTestModel(t, b)
	d := openDetail(t, m, 0)

	before := b.listCalls()
	press(m, keyMsg("draft"))
	drain(m, press(m, keySave))

	if m.Detail() == nil {
		t.Fatal("detail should stay open on failure")
	}
	if d.ErrorMessage() != "Failed to save reply: Review not found" {
		t.Errorf("error = %q", d.ErrorMessage())
	}
	if d.Reply() != "draft" {
		t.Errorf("reply = %q", d.Reply())
	}
	if b.listCalls() != before {
		t.Error("failed save must not reload")
	}
}

func TestEscClosesDetailWithoutSaving(t *testing.T) {
	b := newFakeBackend()
	m, _ := newTestModel(t, b)
	openDetail(t, m, 0)

	press(m, keyMsg("unsaved"))
	press(m, keyEsc)
	if m.Detail() != nil {
		t.Error("esc should close the detail view")
	}
	if len(b.saves) != 0 {
		t.Errorf("saves = %+v", b.saves)
	}
}

func TestLateSuggestionSkipsReopenedDetail(t *testing.T) {
	b := newFakeBackend()
	m, _ := newTestModel(t, b)
	openDetail(t, m, 0)

	cmd := press(m, keyGen)
	press(m, keyEsc)
	second := openDetail(t, m, 0)
	press(m, keyMsg("my draft"))
	drain(m, cmd)

	if second.Reply() != "my draft" {
		t.Errorf("reply = %q, want the new draft", second.Reply())
	}
	if second.State() != replyIdle {
		t.Errorf("state = %s", second.State())
	}
}

func TestLateSaveKeepsReopenedDetailOpen(t *testing.T) {
	b := newFakeBackend()
	m, _ := newTestModel(t, b)
	openDetail(t, m, 0)
	press(m, keyMsg("first"))

	cmd := press(m, keySave)
	press(m, keyEsc)
	second := openDetail(t, m, 0)
	drain(m, cmd)

	if m.Detail() != second {
		t.Fatal("reopened detail should stay open")
	}
	if b.saves[1] != "first" {
		t.Errorf("saves = %+v", b.saves)
	}
}

func TestTypingInDetailDoesNotQuit(t *testing.T) {
	m, _ := newTestModel(t, newFakeBackend())
	d := openDetail(t, m, 0)

	press(m, keyMsg("q"))
	if m.quitting {
		t.Error("q inside the editor should be text")
	}
	if d.Reply() != "q" {
		t.Errorf("reply = %q", d.Reply())
	}
}

func TestConfigChangeRebuildsBackend(t *testing.T) {
	first := newFakeBackend()
	second := newFakeBackend()
	m, _ := newTestModel(t, first)
	m.newBackend = func(*config.Config) Backend { return second }

	cfg := config.Default()
	_, cmd := m.Update(configChangedMsg{change: watcher.ConfigChange{Config: cfg}})
	drain(m, cmd)

	if second.listCalls() != 1 {
		t.Errorf("new backend calls = %d", second.listCalls())
	}
	if first.listCalls() != 1 {
		t.Errorf("old backend calls = %d", first.listCalls())
	}

	_, cmd = m.Update(configChangedMsg{change: watcher.ConfigChange{Err: errors.New("bad yaml")}})
	drain(m, cmd)
	if second.listCalls() != 1 {
		t.Error("a broken config must not reload")
	}
	if !strings.Contains(m.status, "bad yaml") {
		t.Errorf("status = %q", m.status)
	}
}

func TestFormatRatingKeepsServerPrecision(t *testing.T) {
	tests := map[float64]string{
		0:     "0",
		4:     "4",
		3.3:   "3.3",
		3.84:  "3.84",
		4.125: "4.125",
	}
	for in, want := range tests {
		if got := formatRating(in); got != want {
			t.Errorf("formatRating(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestHelpOverlayToggle(t *testing.T) {
	m, _ := newTestModel(t, newFakeBackend())

	press(m, keyMsg("?"))
	if !strings.Contains(m.View(), "Reviews Copilot Help") {
		t.Fatal("expected help overlay")
	}
	// the closing key is swallowed by the overlay
	if cmd := press(m, keyMsg("n")); cmd != nil {
		t.Error("keys should not reach the list while help is open")
	}
	if strings.Contains(m.View(), "Reviews Copilot Help") {
		t.Error("help should close on any key")
	}
}

func TestDashboardAgainstFixtureServer(t *testing.T) {
	srv := mockapi.New(mockapi.Options{APIKey: "k", Store: mockapi.NewStore(mockapi.SeedReviews(45, 3))})
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	cfg := config.Default()
	cfg.API.BaseURL = ts.URL
	cfg.API.APIKey = "k"
	m, _ := newTestModel(t, api.New(cfg))

	if p := m.Controller().Pagination; p == nil || p.TotalPages != 3 || p.Total != 45 {
		t.Fatalf("pagination = %+v", p)
	}
	drain(m, press(m, keyMsg("n")))
	if !strings.Contains(m.View(), "Page 2 of 3 (45 total reviews)") {
		t.Error("expected page 2 footer")
	}

	srv.FailNext("/analytics", mockapi.Fault{Status: 500, Detail: "Internal error"})
	drain(m, press(m, keyMsg("r")))
	if m.Controller().Err != "Internal error" {
		t.Errorf("err = %q", m.Controller().Err)
	}

	drain(m, press(m, keyMsg("r")))
	if m.Controller().HasError() {
		t.Fatalf("retry failed: %q", m.Controller().Err)
	}
	if p := m.Controller().Pagination; p == nil || p.Page != 2 {
		t.Errorf("retry should keep the page, got %+v", p)
	}
}
