package ui

import (
	"github.com/Dicklesworthstone/reviews_copilot/pkg/dashboard"
	"github.com/Dicklesworthstone/reviews_copilot/pkg/model"
	"github.com/Dicklesworthstone/reviews_copilot/pkg/watcher"
)

// loadResultMsg carries a finished dashboard load
type loadResultMsg struct {
	result dashboard.Result
}

// suggestResultMsg carries the outcome of a reply suggestion. opening
// names the detail view that asked for it.
type suggestResultMsg struct {
	opening  int
	reviewID int
	reply    string
	err      error
}

// saveResultMsg carries the outcome of a reply save
type saveResultMsg struct {
	opening  int
	reviewID int
	reply    string
	filters  model.Filters
	err      error
}

// copiedResetMsg ends the copy confirmation it was scheduled for
type copiedResetMsg struct {
	seq int
}

// configChangedMsg is sent when the watched config file was reloaded
type configChangedMsg struct {
	change watcher.ConfigChange
}
