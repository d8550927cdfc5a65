package cnst

// Client to server events
const (
	EventJoinDocument  = "join-document"
	EventLeaveDocument = "leave-document"
	EventDocOperation  = "document-operation"
	EventCursorPos     = "cursor-position"
)

// Server to client events
const (
	EventDocLoaded   = "document-loaded"
	EventDocUpdated  = "document-updated"
	EventUserJoined  = "user-joined"
	EventUserLeft    = "user-left"
	EventCursorMoved = "cursor-moved"
	EventError       = "error"
)

// Operation types applied to a document buffer
const (
	OpInsert = "insert"
	OpDelete = "delete"
	OpRetain = "retain"
)
