package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Quyenld9699/realtime-multi-user-edit/internal/auth/jwt"
	"github.com/Quyenld9699/realtime-multi-user-edit/internal/common/cnst"
	"github.com/Quyenld9699/realtime-multi-user-edit/internal/common/config"
	"github.com/Quyenld9699/realtime-multi-user-edit/internal/document"
	"github.com/Quyenld9699/realtime-multi-user-edit/internal/gateway/bridge"
	"github.com/Quyenld9699/realtime-multi-user-edit/internal/room"
	"github.com/Quyenld9699/realtime-multi-user-edit/internal/session"
	"github.com/Quyenld9699/realtime-multi-user-edit/pkg/metrics"
)

func newWSTestServer(t *testing.T) (*httptest.Server, *jwt.Service, document.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zap.NewNop()
	sessions := session.NewMemoryStore(logger)
	rooms := room.NewManager(logger)
	docs := document.NewMemoryStore()
	m := metrics.New(config.MetricsConfig{Namespace: "wstest"})
	g := NewGateway(logger, sessions, rooms, docs, bridge.NewNoopBridge(), m)

	jwtSvc, err := jwt.NewService(jwt.Config{
		SecretKey: "0123456789abcdef0123456789abcdef",
		Duration:  time.Hour,
	})
	require.NoError(t, err)

	srv := NewServer(logger, g, jwtSvc, sessions, config.RealtimeConfig{
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		MaxMessageSize: 1 << 20,
		SendQueueSize:  16,
	}, m)

	r := gin.New()
	r.GET("/ws", srv.HandleWS)

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts, jwtSvc, docs
}

func wsURL(ts *httptest.Server, token string) string {
	u := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	if token != "" {
		u += "?token=" + token
	}
	return u
}

func dial(t *testing.T, ts *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	ws, _, err := websocket.DefaultDialer.Dial(wsURL(ts, token), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

func sendEnvelope(t *testing.T, ws *websocket.Conn, event string, payload any) {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	require.NoError(t, ws.WriteJSON(Envelope{Event: event, Data: data}))
}

func readEnvelope(t *testing.T, ws *websocket.Conn) Envelope {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(3*time.Second)))
	var env Envelope
	require.NoError(t, ws.ReadJSON(&env))
	return env
}

func TestHandshakeRejectsBadCredential(t *testing.T) {
	ts, _, _ := newWSTestServer(t)

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(ts, "garbage"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Missing credential entirely
	_, resp, err = websocket.DefaultDialer.Dial(wsURL(ts, ""), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRealtimeSessionOverWebsocket(t *testing.T) {
	ts, jwtSvc, docs := newWSTestServer(t)
	ctx := context.Background()

	require.NoError(t, docs.Create(ctx, &document.Document{
		ID: "doc", Title: "notes", Content: "hello", OwnerID: "alice", Collaborators: []string{"bob"},
	}))

	aliceTok, err := jwtSvc.GenerateToken("alice", "Alice")
	require.NoError(t, err)
	bobTok, err := jwtSvc.GenerateToken("bob", "Bob")
	require.NoError(t, err)

	alice := dial(t, ts, aliceTok)
	sendEnvelope(t, alice, cnst.EventJoinDocument, JoinPayload{DocumentID: "doc"})
	env := readEnvelope(t, alice)
	assert.Equal(t, cnst.EventDocLoaded, env.Event)

	bob := dial(t, ts, bobTok)
	sendEnvelope(t, bob, cnst.EventJoinDocument, JoinPayload{DocumentID: "doc"})

	// Bob gets the snapshot, alice gets presence
	env = readEnvelope(t, bob)
	assert.Equal(t, cnst.EventDocLoaded, env.Event)
	var doc document.Document
	require.NoError(t, json.Unmarshal(env.Data, &doc))
	assert.Equal(t, "hello", doc.Content)

	env = readEnvelope(t, alice)
	assert.Equal(t, cnst.EventUserJoined, env.Event)
	var presence PresencePayload
	require.NoError(t, json.Unmarshal(env.Data, &presence))
	assert.Equal(t, "bob", presence.UserID)

	// Alice edits; bob observes the original operation
	sendEnvelope(t, alice, cnst.EventDocOperation, OperationPayload{
		DocumentID: "doc",
		Operation:  Operation{Type: cnst.OpInsert, Index: 5, Text: strp(" world")},
	})
	env = readEnvelope(t, bob)
	assert.Equal(t, cnst.EventDocUpdated, env.Event)
	var update UpdatePayload
	require.NoError(t, json.Unmarshal(env.Data, &update))
	assert.Equal(t, "alice", update.UserID)
	require.NotNil(t, update.Operation.Text)
	assert.Equal(t, " world", *update.Operation.Text)

	// Cursor updates relay without touching the store
	sendEnvelope(t, alice, cnst.EventCursorPos, CursorPayload{DocumentID: "doc", Position: 11, Color: "#00ff00"})
	env = readEnvelope(t, bob)
	assert.Equal(t, cnst.EventCursorMoved, env.Event)

	// Disconnect notifies the peer exactly once
	require.NoError(t, alice.Close())
	env = readEnvelope(t, bob)
	assert.Equal(t, cnst.EventUserLeft, env.Event)
	require.NoError(t, json.Unmarshal(env.Data, &presence))
	assert.Equal(t, "alice", presence.UserID)

	content, err := docs.GetContent(ctx, "doc")
	require.NoError(t, err)
	assert.Equal(t, "hello world", content)
}
