package gateway

import (
	"encoding/json"
)

// Envelope is the wire framing for both directions of the realtime channel:
// a tagged event name plus a raw JSON payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// JoinPayload is the payload of join-document and leave-document
type JoinPayload struct {
	DocumentID string `json:"documentId"`
}

// OperationPayload is the payload of document-operation
type OperationPayload struct {
	DocumentID string    `json:"documentId"`
	Operation  Operation `json:"operation"`
}

// CursorPayload is the payload of cursor-position
type CursorPayload struct {
	DocumentID string `json:"documentId"`
	Position   int    `json:"position"`
	Color      string `json:"color"`
}

// PresencePayload is the payload of user-joined and user-left
type PresencePayload struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
}

// UpdatePayload is the payload of document-updated. The operation is relayed
// exactly as received from the acting client.
type UpdatePayload struct {
	Operation Operation `json:"operation"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
}

// CursorEventPayload is the payload of cursor-moved
type CursorEventPayload struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
	Position int    `json:"position"`
	Color    string `json:"color"`
}
