package document

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a document does not exist
	ErrNotFound = errors.New("document not found")
)

// Document is the authoritative representation of a shared text document.
// The JSON field names match the wire payload of the document-loaded event.
type Document struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	OwnerID       string    `json:"ownerId"`
	Collaborators []string  `json:"collaborators"`
	IsPublic      bool      `json:"isPublic"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// HasAccess reports whether a user may view or edit the document.
// A user has access if they own the document, appear in its collaborator
// set, or the document is public.
func (d *Document) HasAccess(userID string) bool {
	if d.IsPublic || d.OwnerID == userID {
		return true
	}
	for _, c := range d.Collaborators {
		if c == userID {
			return true
		}
	}
	return false
}

// Store is the document store collaborator consumed by the realtime core.
type Store interface {
	// Create persists a new document.
	Create(ctx context.Context, doc *Document) error

	// Get retrieves a document by id, ErrNotFound if missing.
	Get(ctx context.Context, id string) (*Document, error)

	// GetContent retrieves the current buffer content, ErrNotFound if missing.
	GetContent(ctx context.Context, id string) (string, error)

	// SetContent overwrites the buffer content. Last write wins, no version check.
	SetContent(ctx context.Context, id, content string) error

	// CheckAccess reports whether userID may view or edit the document.
	// A missing document yields false, not an error.
	CheckAccess(ctx context.Context, id, userID string) (bool, error)

	// Delete removes a document.
	Delete(ctx context.Context, id string) error

	// Close releases underlying resources.
	Close() error
}
