package room

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestJoinLeaveMembership(t *testing.T) {
	m := NewManager(zap.NewNop())

	m.Join("doc", "a")
	m.Join("doc", "b")
	m.Join("doc", "c")
	// double join is a no-op
	m.Join("doc", "a")

	assert.ElementsMatch(t, []string{"b", "c"}, m.MembersExcept("doc", "a"))
	assert.True(t, m.IsMember("doc", "a"))
	assert.Equal(t, 1, m.RoomCount())

	assert.True(t, m.Leave("doc", "b"))
	assert.False(t, m.Leave("doc", "b"))
	assert.ElementsMatch(t, []string{"c"}, m.MembersExcept("doc", "a"))

	assert.True(t, m.Leave("doc", "a"))
	assert.True(t, m.Leave("doc", "c"))

	// room purged once empty
	assert.Equal(t, 0, m.RoomCount())
	assert.Nil(t, m.MembersExcept("doc", "a"))
}

func TestLeaveUnknownRoom(t *testing.T) {
	m := NewManager(zap.NewNop())
	assert.False(t, m.Leave("ghost", "a"))
	assert.Nil(t, m.LeaveAll("a"))
}

func TestLeaveAll(t *testing.T) {
	m := NewManager(zap.NewNop())

	m.Join("doc1", "a")
	m.Join("doc2", "a")
	m.Join("doc2", "b")

	assert.ElementsMatch(t, []string{"doc1", "doc2"}, m.Rooms("a"))

	left := m.LeaveAll("a")
	assert.ElementsMatch(t, []string{"doc1", "doc2"}, left)
	assert.Empty(t, m.Rooms("a"))

	// doc1 purged, doc2 keeps its remaining member
	assert.Equal(t, 1, m.RoomCount())
	assert.True(t, m.IsMember("doc2", "b"))
	assert.False(t, m.IsMember("doc2", "a"))
}

func TestMembersExceptExcludesSelfOnly(t *testing.T) {
	m := NewManager(zap.NewNop())
	m.Join("doc", "a")
	assert.Empty(t, m.MembersExcept("doc", "a"))
	assert.ElementsMatch(t, []string{"a"}, m.MembersExcept("doc", "z"))
}

func TestConcurrentJoinLeave(t *testing.T) {
	m := NewManager(zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("conn-%d", i)
			m.Join("doc", id)
			m.MembersExcept("doc", id)
			if i%2 == 0 {
				m.Leave("doc", id)
			}
		}(i)
	}
	wg.Wait()

	// every odd connection remains, every even one left
	for i := 0; i < 50; i++ {
		id := fmt.Sprintf("conn-%d", i)
		assert.Equal(t, i%2 == 1, m.IsMember("doc", id), id)
	}
}
