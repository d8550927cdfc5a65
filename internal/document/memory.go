package document

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStore implements Store using in-memory storage
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]*Document
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a new in-memory document store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs: make(map[string]*Document),
	}
}

// Create implements Store.Create
func (s *MemoryStore) Create(_ context.Context, doc *Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.docs[doc.ID]; exists {
		return fmt.Errorf("document already exists: %s", doc.ID)
	}
	now := time.Now()
	cp := *doc
	cp.CreatedAt = now
	cp.UpdatedAt = now
	s.docs[doc.ID] = &cp
	return nil
}

// Get implements Store.Get
func (s *MemoryStore) Get(_ context.Context, id string) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *doc
	return &cp, nil
}

// GetContent implements Store.GetContent
func (s *MemoryStore) GetContent(_ context.Context, id string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[id]
	if !ok {
		return "", ErrNotFound
	}
	return doc.Content, nil
}

// SetContent implements Store.SetContent
func (s *MemoryStore) SetContent(_ context.Context, id, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[id]
	if !ok {
		return ErrNotFound
	}
	doc.Content = content
	doc.UpdatedAt = time.Now()
	return nil
}

// CheckAccess implements Store.CheckAccess
func (s *MemoryStore) CheckAccess(_ context.Context, id, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[id]
	if !ok {
		return false, nil
	}
	return doc.HasAccess(userID), nil
}

// Delete implements Store.Delete
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[id]; !ok {
		return ErrNotFound
	}
	delete(s.docs, id)
	return nil
}

// Close implements Store.Close
func (s *MemoryStore) Close() error {
	return nil
}
