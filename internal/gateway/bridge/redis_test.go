package bridge

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/Quyenld9699/realtime-multi-user-edit/internal/common/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRedisBridge(t *testing.T, mr *miniredis.Miniredis) *RedisBridge {
	t.Helper()
	b, err := NewRedisBridge(zap.NewNop(), config.BridgeRedisConfig{
		Addr:  mr.Addr(),
		Topic: "collab:test",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestNewRedisBridge_ConnectionError(t *testing.T) {
	b, err := NewRedisBridge(zap.NewNop(), config.BridgeRedisConfig{Addr: "127.0.0.1:0"})
	assert.Nil(t, b)
	assert.Error(t, err)
}

func TestRedisBridge_PublishSubscribe(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	sender := newTestRedisBridge(t, mr)
	receiver := newTestRedisBridge(t, mr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan *Event, 1)
	require.NoError(t, receiver.Subscribe(ctx, func(_ context.Context, evt *Event) {
		got <- evt
	}))

	payload, _ := json.Marshal(map[string]any{"userId": "u1", "userName": "alice"})
	require.NoError(t, sender.Publish(ctx, &Event{
		Origin:     "node-1",
		DocumentID: "doc-1",
		Event:      "user-joined",
		Data:       payload,
	}))

	select {
	case evt := <-got:
		assert.Equal(t, "node-1", evt.Origin)
		assert.Equal(t, "doc-1", evt.DocumentID)
		assert.Equal(t, "user-joined", evt.Event)
		assert.JSONEq(t, string(payload), string(evt.Data))
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for bridge event")
	}
}

func TestNewBridgeFactory(t *testing.T) {
	b, err := NewBridge(zap.NewNop(), &config.BridgeConfig{Type: "none"})
	assert.NoError(t, err)
	assert.IsType(t, &NoopBridge{}, b)

	_, err = NewBridge(zap.NewNop(), &config.BridgeConfig{Type: "carrier-pigeon"})
	assert.Error(t, err)
}
