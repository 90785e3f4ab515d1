package chat

import (
	"github.com/google/uuid"
)

type EventType string

const (
	EventTypeStart EventType = "chat-start"
	EventTypeFinal EventType = "chat-final"
	EventTypeError EventType = "chat-error"
)

// Event describes one step of a Chat call. All events of a call share its ID.
type Event struct {
	ID         uuid.UUID  `json:"id"`
	Type       EventType  `json:"type"`
	Prompt     string     `json:"prompt"`
	Recording  bool       `json:"recording"`
	Transcript Transcript `json:"transcript,omitempty"`
	Error      string     `json:"error,omitempty"`
}

// EventSink receives the events of every Chat call. Publishing errors are
// logged by the Chat and otherwise ignored.
type EventSink interface {
	PublishEvent(event Event) error
}
