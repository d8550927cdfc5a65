package document

import (
	"encoding/json"
	"time"
)

// Model represents the database row for a document. Collaborator ids are
// stored as a JSON-encoded array so the schema stays portable across
// sqlite, mysql and postgres.
type Model struct {
	ID            string    `gorm:"primaryKey;type:varchar(64)"`
	Title         string    `gorm:"type:varchar(255);not null"`
	Content       string    `gorm:"type:text"`
	OwnerID       string    `gorm:"column:owner_id;type:varchar(64);not null;index"`
	Collaborators string    `gorm:"type:text"`
	IsPublic      bool      `gorm:"column:is_public;not null;default:false"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

// TableName sets the table name for the document model
func (Model) TableName() string {
	return "documents"
}

// ToDocument converts the database model to a Document
func (m *Model) ToDocument() (*Document, error) {
	doc := &Document{
		ID:        m.ID,
		Title:     m.Title,
		Content:   m.Content,
		OwnerID:   m.OwnerID,
		IsPublic:  m.IsPublic,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	if len(m.Collaborators) > 0 {
		if err := json.Unmarshal([]byte(m.Collaborators), &doc.Collaborators); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// FromDocument converts a Document to the database model
func FromDocument(doc *Document) (*Model, error) {
	collaborators, err := json.Marshal(doc.Collaborators)
	if err != nil {
		return nil, err
	}
	return &Model{
		ID:            doc.ID,
		Title:         doc.Title,
		Content:       doc.Content,
		OwnerID:       doc.OwnerID,
		Collaborators: string(collaborators),
		IsPublic:      doc.IsPublic,
		CreatedAt:     doc.CreatedAt,
		UpdatedAt:     doc.UpdatedAt,
	}, nil
}
