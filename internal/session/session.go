package session

import (
	"context"
	"errors"
	"time"
)

// ErrSessionNotFound is returned when a session is not found
var ErrSessionNotFound = errors.New("session not found")

// Identity is the verified identity attached to a connection at handshake.
// It is assigned exactly once and never re-derived mid-session.
type Identity struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

// Message represents a unified message structure for session communication.
type Message struct {
	Event string // Event type, e.g. "document-updated", "user-joined"
	Data  []byte // JSON payload
}

// Meta holds immutable metadata about a session.
type Meta struct {
	ID        string    `json:"id"`         // Unique connection ID
	Identity  Identity  `json:"identity"`   // Verified identity
	CreatedAt time.Time `json:"created_at"` // Timestamp of session creation
}

// Connection represents an active session connection capable of receiving messages.
type Connection interface {
	// EventQueue returns a read-only channel where outbound messages are published.
	EventQueue() <-chan *Message

	// Send pushes a message to the session. It never blocks; a full queue is an error.
	Send(ctx context.Context, msg *Message) error

	// Close terminates the session connection.
	Close(ctx context.Context) error

	// Meta returns metadata associated with the session.
	Meta() *Meta
}

// Store manages the lifecycle and lookup of active session connections.
type Store interface {
	// Register creates and registers a new session connection.
	Register(ctx context.Context, meta *Meta) (Connection, error)

	// Get retrieves an active session connection by ID.
	Get(ctx context.Context, id string) (Connection, error)

	// Unregister removes a session connection by ID.
	Unregister(ctx context.Context, id string) error

	// List returns all currently active session connections.
	List(ctx context.Context) ([]Connection, error)
}
