package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// FallbackMessage is used when a failure carries no readable detail
const FallbackMessage = "Request failed"

// Error is the single failure type returned by the client.
// Error() yields the human-readable message meant for display.
type Error struct {
	Path      string
	Status    int // 0 when the request never completed
	Message   string
	RequestID string
	Err       error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsTransport reports whether the request failed before a response arrived
func (e *Error) IsTransport() bool {
	return e.Status == 0
}

// StatusOf returns the HTTP status carried by err, or 0
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// MessageOf returns the display message for any error
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

// errorMessage derives the display message for a non-success response.
// An unparseable body yields FallbackMessage; a parseable body without a
// usable detail yields "HTTP <status>".
func errorMessage(status int, body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return FallbackMessage
	}
	if msg := detailText(payload.Detail); msg != "" {
		return msg
	}
	return fmt.Sprintf("HTTP %d", status)
}

// detailText accepts a plain string detail or a list of {"msg": ...} items
func detailText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &items); err == nil {
		var msgs []string
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}
