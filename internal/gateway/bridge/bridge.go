package bridge

import (
	"context"
	"encoding/json"
)

// Event is a room-scoped server event relayed between gateway instances.
// Data carries the wire payload exactly as local members receive it.
type Event struct {
	Origin     string          `json:"origin"` // instance id that produced the event
	DocumentID string          `json:"documentId"`
	Event      string          `json:"event"`
	Data       json.RawMessage `json:"data"`
}

// Handler consumes events received from peer instances.
type Handler func(ctx context.Context, evt *Event)

// Bridge relays room events between gateway instances. Implementations do
// not filter by origin; the subscriber decides what to ignore.
type Bridge interface {
	// Publish sends an event to all peer instances.
	Publish(ctx context.Context, evt *Event) error

	// Subscribe registers the handler and starts delivering peer events
	// until ctx is cancelled or the bridge is closed.
	Subscribe(ctx context.Context, h Handler) error

	// Close releases underlying resources.
	Close() error
}
