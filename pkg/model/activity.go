package model

import "time"

// ReplyEvent records one reply action taken from the dashboard
type ReplyEvent struct {
	ID        int64     `json:"id"`
	SessionID int64     `json:"session_id,omitempty"`
	ReviewID  int       `json:"review_id"`
	Action    string    `json:"action"` // generated, saved
	Reply     string    `json:"reply"`
	CreatedAt time.Time `json:"created_at"`
}

// Session groups the activity of one dashboard run
type Session struct {
	ID          int64      `json:"id"`
	Operator    string     `json:"operator"`
	BaseURL     string     `json:"base_url"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Loads       int        `json:"loads"`
	Generated   int        `json:"generated"`
	Saved       int        `json:"saved"`
}

// Reply action constants
const (
	ReplyActionGenerated = "generated"
	ReplyActionSaved     = "saved"
)

// IsValidReplyAction checks if a reply action is valid
func IsValidReplyAction(action string) bool {
	switch action {
	case ReplyActionGenerated, ReplyActionSaved:
		return true
	}
	return false
}
