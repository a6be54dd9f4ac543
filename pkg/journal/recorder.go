package journal

import (
	"os/user"
	"time"

	"github.com/Dicklesworthstone/reviews_copilot/pkg/config"
	"github.com/Dicklesworthstone/reviews_copilot/pkg/logging"
	"github.com/Dicklesworthstone/reviews_copilot/pkg/model"
)

// Recorder tracks the current session and appends reply events to it.
// A nil *Recorder is valid and records nothing, so callers never need to
// check whether the journal is enabled.
type Recorder struct {
	db      *DB
	session *model.Session
}

// NewRecorder opens the journal at dbPath
func NewRecorder(dbPath string) (*Recorder, error) {
	db, err := OpenDB(dbPath)
	if err != nil {
		return nil, err
	}
	return &Recorder{db: db}, nil
}

// Open returns a recorder for the configured journal, or nil when the
// journal is disabled or cannot be opened. Failures are logged, not returned.
func Open(cfg *config.Config) *Recorder {
	if cfg.Journal.Disabled || cfg.Journal.Path == "" {
		return nil
	}
	r, err := NewRecorder(cfg.Journal.Path)
	if err != nil {
		log := logging.For("journal")
		log.Warn().Err(err).Str("path", cfg.Journal.Path).Msg("journal unavailable")
		return nil
	}
	return r
}

// StartSession begins a new session attributed to operator
func (r *Recorder) StartSession(operator, baseURL string) error {
	if r == nil {
		return nil
	}
	if operator == "" {
		operator = DefaultOperator()
	}
	s, err := r.db.StartSession(operator, baseURL)
	if err != nil {
		return err
	}
	r.session = s
	return nil
}

// CurrentSession returns the active session, if any
func (r *Recorder) CurrentSession() *model.Session {
	if r == nil {
		return nil
	}
	return r.session
}

// RecordLoad counts one applied dashboard load
func (r *Recorder) RecordLoad() {
	if r == nil || r.session == nil {
		return
	}
	r.session.Loads++
	r.flushCounters()
}

// RecordReply stores a reply action and updates the session counters
func (r *Recorder) RecordReply(reviewID int, action, reply string) error {
	if r == nil {
		return nil
	}
	e := &model.ReplyEvent{
		ReviewID:  reviewID,
		Action:    action,
		Reply:     reply,
		CreatedAt: time.Now(),
	}
	if r.session != nil {
		e.SessionID = r.session.ID
	}
	if err := r.db.InsertEvent(e); err != nil {
		return err
	}

	if r.session != nil {
		switch action {
		case model.ReplyActionGenerated:
			r.session.Generated++
		case model.ReplyActionSaved:
			r.session.Saved++
		}
		r.flushCounters()
	}
	return nil
}

func (r *Recorder) flushCounters() {
	if err := r.db.UpdateSessionCounters(r.session); err != nil {
		log := logging.For("journal")
		log.Warn().Err(err).Int64("session", r.session.ID).Msg("failed to update session counters")
	}
}

// History returns the newest reply events first
func (r *Recorder) History(limit int) ([]model.ReplyEvent, error) {
	if r == nil {
		return nil, nil
	}
	return r.db.RecentEvents(limit)
}

// ReviewHistory returns the events recorded for one review
func (r *Recorder) ReviewHistory(reviewID int) ([]model.ReplyEvent, error) {
	if r == nil {
		return nil, nil
	}
	return r.db.EventsForReview(reviewID)
}

// Close completes the active session and closes the database
func (r *Recorder) Close() error {
	if r == nil {
		return nil
	}
	if r.session != nil && r.session.CompletedAt == nil {
		if err := r.db.CompleteSession(r.session); err != nil {
			log := logging.For("journal")
			log.Warn().Err(err).Msg("failed to complete session")
		}
	}
	return r.db.Close()
}

// DefaultOperator names the local OS user
func DefaultOperator() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "unknown"
}
