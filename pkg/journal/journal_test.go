package journal

import (
	"path/filepath"
	"testing"

	"github.com/Dicklesworthstone/reviews_copilot/pkg/config"
	"github.com/Dicklesworthstone/reviews_copilot/pkg/model"
)

func newTestRecorder(t *testing.T) *Recorder {
	t.Helper()
	r, err := NewRecorder(filepath.Join(t.TempDir(), "nested", "journal.db"))
	if err != nil {
		t.Fatalf("NewRecorder: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestRecordReplyUpdatesSession(t *testing.T) {
	r := newTestRecorder(t)
	if err := r.StartSession("alice", "http://localhost:8000"); err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	if err := r.RecordReply(42, model.ReplyActionGenerated, "Thanks for your feedback!"); err != nil {
		t.Fatalf("RecordReply: %v", err)
	}
	if err := r.RecordReply(42, model.ReplyActionSaved, "Thanks!"); err != nil {
		t.Fatalf("RecordReply: %v", err)
	}
	r.RecordLoad()

	s := r.CurrentSession()
	if s.Generated != 1 || s.Saved != 1 || s.Loads != 1 {
		t.Errorf("counters = %+v", s)
	}

	stored, err := r.db.GetSession(s.ID)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if stored.Operator != "alice" || stored.Saved != 1 || stored.Loads != 1 {
		t.Errorf("stored session = %+v", stored)
	}
}

func TestHistoryNewestFirst(t *testing.T) {
	r := newTestRecorder(t)

	for _, id := range []int{1, 2, 3} {
		if err := r.RecordReply(id, model.ReplyActionSaved, "ok"); err != nil {
			t.Fatalf("RecordReply: %v", err)
		}
	}

	events, err := r.History(2)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("len = %d, want 2", len(events))
	}
	if events[0].ReviewID != 3 {
		t.Errorf("first event review = %d, want 3", events[0].ReviewID)
	}
	if events[0].SessionID != 0 {
		t.Errorf("expected no session, got %d", events[0].SessionID)
	}

	forReview, err := r.ReviewHistory(2)
	if err != nil {
		t.Fatalf("ReviewHistory: %v", err)
	}
	if len(forReview) != 1 || forReview[0].ReviewID != 2 {
		t.Errorf("review history = %+v", forReview)
	}
}

func TestRecordReplyRejectsUnknownAction(t *testing.T) {
	r := newTestRecorder(t)
	if err := r.RecordReply(1, "deleted", ""); err == nil {
		t.Fatal("expected error for unknown action")
	}
}

func TestCloseCompletesSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	r, err := NewRecorder(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.StartSession("", "http://x"); err != nil {
		t.Fatal(err)
	}
	id := r.CurrentSession().ID
	if r.CurrentSession().Operator == "" {
		t.Error("expected default operator")
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	db, err := OpenDB(path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	s, err := db.GetSession(id)
	if err != nil {
		t.Fatal(err)
	}
	if s.CompletedAt == nil {
		t.Error("expected completed_at to be set")
	}
}

func TestNilRecorderIsNoop(t *testing.T) {
	var r *Recorder
	if err := r.StartSession("x", "y"); err != nil {
		t.Error(err)
	}
	if err := r.RecordReply(1, model.ReplyActionSaved, "x"); err != nil {
		t.Error(err)
	}
	r.RecordLoad()
	if events, err := r.History(5); err != nil || events != nil {
		t.Errorf("History = %v, %v", events, err)
	}
	if err := r.Close(); err != nil {
		t.Error(err)
	}
}

func TestOpenDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.Journal.Disabled = true
	if r := Open(cfg); r != nil {
		t.Error("expected nil recorder when disabled")
	}
}
