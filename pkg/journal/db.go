// Package journal keeps a local sqlite record of what the operator did in
// the dashboard: reply suggestions requested, replies saved and the sessions
// they happened in. It never stores review data fetched from the API.
package journal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Dicklesworthstone/reviews_copilot/pkg/model"
)

// DB handles journal persistence
type DB struct {
	db *sql.DB
}

// OpenDB opens or creates the journal database at the given path
func OpenDB(dbPath string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	// sqlite serializes writers anyway
	db.SetMaxOpenConns(1)

	jdb := &DB{db: db}
	if err := jdb.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init journal schema: %w", err)
	}
	return jdb, nil
}

// Close closes the database connection
func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		operator TEXT NOT NULL,
		base_url TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		completed_at DATETIME,
		loads INTEGER DEFAULT 0,
		generated INTEGER DEFAULT 0,
		saved INTEGER DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS reply_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id INTEGER,
		review_id INTEGER NOT NULL,
		action TEXT NOT NULL,
		reply TEXT DEFAULT '',
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reply_events_review ON reply_events(review_id);
	`
	_, err := d.db.Exec(schema)
	return err
}

// InsertEvent stores a reply event and sets its ID
func (d *DB) InsertEvent(e *model.ReplyEvent) error {
	if !model.IsValidReplyAction(e.Action) {
		return fmt.Errorf("invalid reply action %q", e.Action)
	}
	var sessionID sql.NullInt64
	if e.SessionID != 0 {
		sessionID = sql.NullInt64{Int64: e.SessionID, Valid: true}
	}

	result, err := d.db.Exec(`
		INSERT INTO reply_events (session_id, review_id, action, reply, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, sessionID, e.ReviewID, e.Action, e.Reply, e.CreatedAt)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = id
	return nil
}

// RecentEvents returns the newest events first. limit <= 0 returns all.
func (d *DB) RecentEvents(limit int) ([]model.ReplyEvent, error) {
	query := `
		SELECT id, session_id, review_id, action, reply, created_at
		FROM reply_events
		ORDER BY created_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return d.queryEvents(query, args...)
}

// EventsForReview returns the events recorded against one review
func (d *DB) EventsForReview(reviewID int) ([]model.ReplyEvent, error) {
	return d.queryEvents(`
		SELECT id, session_id, review_id, action, reply, created_at
		FROM reply_events
		WHERE review_id = ?
		ORDER BY created_at DESC, id DESC
	`, reviewID)
}

func (d *DB) queryEvents(query string, args ...any) ([]model.ReplyEvent, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []model.ReplyEvent
	for rows.Next() {
		var (
			e         model.ReplyEvent
			sessionID sql.NullInt64
		)
		if err := rows.Scan(&e.ID, &sessionID, &e.ReviewID, &e.Action, &e.Reply, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.SessionID = sessionID.Int64
		events = append(events, e)
	}
	return events, rows.Err()
}

// StartSession creates a new dashboard session
func (d *DB) StartSession(operator, baseURL string) (*model.Session, error) {
	now := time.Now()
	result, err := d.db.Exec(`
		INSERT INTO sessions (operator, base_url, started_at)
		VALUES (?, ?, ?)
	`, operator, baseURL, now)
	if err != nil {
		return nil, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &model.Session{
		ID:        id,
		Operator:  operator,
		BaseURL:   baseURL,
		StartedAt: now,
	}, nil
}

// UpdateSessionCounters writes the running counters of a session
func (d *DB) UpdateSessionCounters(s *model.Session) error {
	_, err := d.db.Exec(`
		UPDATE sessions SET loads = ?, generated = ?, saved = ? WHERE id = ?
	`, s.Loads, s.Generated, s.Saved, s.ID)
	return err
}

// CompleteSession stamps the completion time and final counters
func (d *DB) CompleteSession(s *model.Session) error {
	now := time.Now()
	s.CompletedAt = &now
	_, err := d.db.Exec(`
		UPDATE sessions
		SET completed_at = ?, loads = ?, generated = ?, saved = ?
		WHERE id = ?
	`, now, s.Loads, s.Generated, s.Saved, s.ID)
	return err
}

// GetSession retrieves a session by ID
func (d *DB) GetSession(id int64) (*model.Session, error) {
	var (
		s           model.Session
		completedAt sql.NullTime
	)
	err := d.db.QueryRow(`
		SELECT id, operator, base_url, started_at, completed_at, loads, generated, saved
		FROM sessions
		WHERE id = ?
	`, id).Scan(&s.ID, &s.Operator, &s.BaseURL, &s.StartedAt, &completedAt, &s.Loads, &s.Generated, &s.Saved)
	if err != nil {
		return nil, err
	}
	if completedAt.Valid {
		s.CompletedAt = &completedAt.Time
	}
	return &s, nil
}
