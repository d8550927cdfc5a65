package room

import (
	"sync"

	"go.uber.org/zap"
)

// Manager tracks which connections are attached to which document rooms.
//
// Rooms are created lazily on first join and deleted when the last member
// leaves. The member set per room and the joined-room set per connection
// are kept consistent under a single mutex, so no caller can observe a
// partially-updated membership.
type Manager struct {
	logger *zap.Logger

	mu sync.RWMutex
	// document id -> set of connection ids
	rooms map[string]map[string]struct{}
	// connection id -> set of document ids
	joined map[string]map[string]struct{}
}

// NewManager creates a new room manager
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{
		logger: logger.Named("room.manager"),
		rooms:  make(map[string]map[string]struct{}),
		joined: make(map[string]map[string]struct{}),
	}
}

// Join adds a connection to a document room. Joining a room twice is a no-op.
func (m *Manager) Join(documentID, connID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	members, ok := m.rooms[documentID]
	if !ok {
		members = make(map[string]struct{})
		m.rooms[documentID] = members
	}
	members[connID] = struct{}{}

	docs, ok := m.joined[connID]
	if !ok {
		docs = make(map[string]struct{})
		m.joined[connID] = docs
	}
	docs[documentID] = struct{}{}

	m.logger.Debug("connection joined room",
		zap.String("documentId", documentID),
		zap.String("connId", connID),
		zap.Int("members", len(members)))
}

// Leave removes a connection from a document room and reports whether the
// connection was a member. Empty rooms are deleted.
func (m *Manager) Leave(documentID, connID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.leaveLocked(documentID, connID)
}

func (m *Manager) leaveLocked(documentID, connID string) bool {
	members, ok := m.rooms[documentID]
	if !ok {
		return false
	}
	if _, member := members[connID]; !member {
		return false
	}

	delete(members, connID)
	if len(members) == 0 {
		delete(m.rooms, documentID)
		m.logger.Debug("room closed", zap.String("documentId", documentID))
	}

	if docs, ok := m.joined[connID]; ok {
		delete(docs, documentID)
		if len(docs) == 0 {
			delete(m.joined, connID)
		}
	}
	return true
}

// LeaveAll removes a connection from every room it joined and returns the
// document ids of the rooms it actually left. Safe to call for a connection
// that never joined anything.
func (m *Manager) LeaveAll(connID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	docs := m.joined[connID]
	if len(docs) == 0 {
		return nil
	}

	left := make([]string, 0, len(docs))
	for documentID := range docs {
		left = append(left, documentID)
	}
	for _, documentID := range left {
		m.leaveLocked(documentID, connID)
	}
	return left
}

// MembersExcept returns the connection ids currently in a room, excluding
// the acting connection.
func (m *Manager) MembersExcept(documentID, connID string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	members, ok := m.rooms[documentID]
	if !ok {
		return nil
	}

	out := make([]string, 0, len(members))
	for id := range members {
		if id != connID {
			out = append(out, id)
		}
	}
	return out
}

// IsMember reports whether a connection is in a room.
func (m *Manager) IsMember(documentID, connID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	members, ok := m.rooms[documentID]
	if !ok {
		return false
	}
	_, member := members[connID]
	return member
}

// Rooms returns the document ids a connection is currently joined to.
func (m *Manager) Rooms(connID string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	docs := m.joined[connID]
	out := make([]string, 0, len(docs))
	for documentID := range docs {
		out = append(out, documentID)
	}
	return out
}

// RoomCount returns the number of active rooms.
func (m *Manager) RoomCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}
