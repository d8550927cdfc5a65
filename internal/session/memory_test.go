package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestMemoryStore_RegisterGetListUnregister(t *testing.T) {
	s := NewMemoryStore(zap.NewNop())
	meta := &Meta{ID: "c1", Identity: Identity{UserID: "u1", DisplayName: "alice"}}

	// register
	conn, err := s.Register(context.Background(), meta)
	assert.NoError(t, err)
	assert.NotNil(t, conn)
	assert.Equal(t, "u1", conn.Meta().Identity.UserID)

	// duplicate register should fail
	_, err = s.Register(context.Background(), meta)
	assert.Error(t, err)

	// get
	got, err := s.Get(context.Background(), "c1")
	assert.NoError(t, err)
	assert.Equal(t, "c1", got.Meta().ID)

	// list
	list, err := s.List(context.Background())
	assert.NoError(t, err)
	assert.Len(t, list, 1)

	// unregister
	err = s.Unregister(context.Background(), "c1")
	assert.NoError(t, err)
	_, err = s.Get(context.Background(), "c1")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// unregister unknown id
	assert.ErrorIs(t, s.Unregister(context.Background(), "nope"), ErrSessionNotFound)
}

func TestMemoryConnection_SendQueueFull(t *testing.T) {
	c := &MemoryConnection{meta: &Meta{ID: "x"}, queue: make(chan *Message, 2)}
	assert.NoError(t, c.Send(context.Background(), &Message{Event: "e"}))
	assert.NoError(t, c.Send(context.Background(), &Message{Event: "e2"}))
	// now should be full
	assert.Error(t, c.Send(context.Background(), &Message{Event: "e3"}))
}

func TestMemoryConnection_SendAfterClose(t *testing.T) {
	c := &MemoryConnection{meta: &Meta{ID: "x"}, queue: make(chan *Message, 2)}
	assert.NoError(t, c.Close(context.Background()))
	// close is idempotent
	assert.NoError(t, c.Close(context.Background()))
	assert.Error(t, c.Send(context.Background(), &Message{Event: "e"}))

	// queue is drained and closed
	_, ok := <-c.EventQueue()
	assert.False(t, ok)
}
