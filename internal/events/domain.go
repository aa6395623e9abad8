package events

import "time"

// Event reports the completion of a repository operation.
type Event struct {
	ID      string    `json:"id"`
	Type    string    `json:"type"`
	Path    string    `json:"path"`
	Success bool      `json:"success"`
	Error   string    `json:"error,omitempty"`
	At      time.Time `json:"at"`
}
