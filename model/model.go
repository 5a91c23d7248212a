package model

import "time"

// Selection identifies the theme/variant pair currently applied to the
// preview.
type Selection struct {
	Theme   string `json:"theme"`
	Variant string `json:"variant"`
}

type EventType string

const (
	EventApply  EventType = "apply"
	EventReload EventType = "reload"
)

// Event is pushed to websocket clients when the applied selection changes or
// the token sources are reloaded.
type Event struct {
	Type    EventType `json:"type"`
	Theme   string    `json:"theme,omitempty"`
	Variant string    `json:"variant,omitempty"`
	Time    time.Time `json:"time"`
}

// Snapshot captures one fully resolved (theme, variant) pair at a point in
// time: the flat token mapping after merge and scale expansion, plus the CSS
// rendered from it.
type Snapshot struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Theme     string    `json:"theme"`
	Variant   string    `json:"variant"`
	Dark      bool      `json:"dark"`

	TokenCount     int               `json:"token_count"`
	GeneratedCount int               `json:"generated_count"`
	Tokens         map[string]string `json:"tokens,omitempty"`
	CSS            string            `json:"css,omitempty"`
}
