package gateway

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Quyenld9699/realtime-multi-user-edit/internal/common/cnst"
	"github.com/Quyenld9699/realtime-multi-user-edit/internal/document"
	"github.com/Quyenld9699/realtime-multi-user-edit/internal/gateway/bridge"
	"github.com/Quyenld9699/realtime-multi-user-edit/internal/room"
	"github.com/Quyenld9699/realtime-multi-user-edit/internal/session"
	"github.com/Quyenld9699/realtime-multi-user-edit/pkg/metrics"
)

const accessDeniedMessage = "You do not have access to this document"

// Gateway is the realtime synchronization core. It owns no document state of
// its own: operations read-modify-write the authoritative store copy, and
// presence lives entirely in the room manager.
type Gateway struct {
	logger     *zap.Logger
	sessions   session.Store
	rooms      *room.Manager
	docs       document.Store
	bridge     bridge.Bridge
	metrics    *metrics.Metrics
	instanceID string
}

// NewGateway creates a new synchronization gateway
func NewGateway(logger *zap.Logger, sessions session.Store, rooms *room.Manager, docs document.Store, br bridge.Bridge, m *metrics.Metrics) *Gateway {
	return &Gateway{
		logger:     logger.Named("gateway"),
		sessions:   sessions,
		rooms:      rooms,
		docs:       docs,
		bridge:     br,
		metrics:    m,
		instanceID: uuid.NewString(),
	}
}

// Start subscribes the gateway to peer instance events
func (g *Gateway) Start(ctx context.Context) error {
	return g.bridge.Subscribe(ctx, g.handleBridgeEvent)
}

// HandleMessage dispatches one inbound client message. Malformed envelopes
// and unknown events are ignored; the payload shape is never trusted.
func (g *Gateway) HandleMessage(ctx context.Context, conn session.Connection, raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		g.logger.Debug("ignoring malformed message",
			zap.String("connId", conn.Meta().ID),
			zap.Error(err))
		return
	}

	switch env.Event {
	case cnst.EventJoinDocument:
		g.handleJoin(ctx, conn, env.Data)
	case cnst.EventLeaveDocument:
		g.handleLeave(ctx, conn, env.Data)
	case cnst.EventDocOperation:
		g.handleOperation(ctx, conn, env.Data)
	case cnst.EventCursorPos:
		g.handleCursor(ctx, conn, env.Data)
	default:
		g.logger.Debug("ignoring unknown event",
			zap.String("connId", conn.Meta().ID),
			zap.String("event", env.Event))
	}
}

func (g *Gateway) handleJoin(ctx context.Context, conn session.Connection, data json.RawMessage) {
	var p JoinPayload
	if err := json.Unmarshal(data, &p); err != nil || p.DocumentID == "" {
		g.logger.Debug("ignoring malformed join payload", zap.String("connId", conn.Meta().ID))
		return
	}

	identity := conn.Meta().Identity
	ok, err := g.docs.CheckAccess(ctx, p.DocumentID, identity.UserID)
	if err != nil {
		g.logger.Error("access check failed",
			zap.String("documentId", p.DocumentID),
			zap.String("userId", identity.UserID),
			zap.Error(err))
		return
	}
	if !ok {
		g.send(ctx, conn, cnst.EventError, accessDeniedMessage)
		return
	}

	g.rooms.Join(p.DocumentID, conn.Meta().ID)
	g.metrics.SetRooms(g.rooms.RoomCount())

	// Snapshot goes to the joiner before any later operation broadcast
	doc, err := g.docs.Get(ctx, p.DocumentID)
	if err != nil {
		g.logger.Error("failed to load document snapshot",
			zap.String("documentId", p.DocumentID),
			zap.Error(err))
	} else {
		g.send(ctx, conn, cnst.EventDocLoaded, doc)
	}

	g.broadcast(ctx, p.DocumentID, conn.Meta().ID, cnst.EventUserJoined, &PresencePayload{
		UserID:   identity.UserID,
		UserName: identity.DisplayName,
	})

	g.logger.Info("user joined document",
		zap.String("documentId", p.DocumentID),
		zap.String("userId", identity.UserID),
		zap.String("userName", identity.DisplayName))
}

func (g *Gateway) handleLeave(ctx context.Context, conn session.Connection, data json.RawMessage) {
	var p JoinPayload
	if err := json.Unmarshal(data, &p); err != nil || p.DocumentID == "" {
		g.logger.Debug("ignoring malformed leave payload", zap.String("connId", conn.Meta().ID))
		return
	}

	if !g.rooms.Leave(p.DocumentID, conn.Meta().ID) {
		return
	}
	g.metrics.SetRooms(g.rooms.RoomCount())

	identity := conn.Meta().Identity
	g.broadcast(ctx, p.DocumentID, conn.Meta().ID, cnst.EventUserLeft, &PresencePayload{
		UserID:   identity.UserID,
		UserName: identity.DisplayName,
	})

	g.logger.Info("user left document",
		zap.String("documentId", p.DocumentID),
		zap.String("userId", identity.UserID))
}

func (g *Gateway) handleOperation(ctx context.Context, conn session.Connection, data json.RawMessage) {
	var p OperationPayload
	if err := json.Unmarshal(data, &p); err != nil || p.DocumentID == "" {
		g.logger.Debug("ignoring malformed operation payload", zap.String("connId", conn.Meta().ID))
		return
	}
	if err := p.Operation.Validate(); err != nil {
		g.logger.Debug("ignoring invalid operation",
			zap.String("documentId", p.DocumentID),
			zap.Error(err))
		g.metrics.Operation(p.Operation.Type, "invalid")
		return
	}

	identity := conn.Meta().Identity

	// Access is re-checked on every operation; unauthorized writers are
	// silently ignored, not disconnected.
	ok, err := g.docs.CheckAccess(ctx, p.DocumentID, identity.UserID)
	if err != nil {
		g.logger.Error("access check failed",
			zap.String("documentId", p.DocumentID),
			zap.Error(err))
		g.metrics.Operation(p.Operation.Type, "error")
		return
	}
	if !ok {
		g.logger.Debug("dropping operation from unauthorized user",
			zap.String("documentId", p.DocumentID),
			zap.String("userId", identity.UserID))
		g.metrics.Operation(p.Operation.Type, "denied")
		return
	}

	content, err := g.docs.GetContent(ctx, p.DocumentID)
	if err != nil {
		if !errors.Is(err, document.ErrNotFound) {
			g.logger.Error("failed to fetch document content",
				zap.String("documentId", p.DocumentID),
				zap.Error(err))
		}
		g.metrics.Operation(p.Operation.Type, "error")
		return
	}

	newContent := Apply(content, p.Operation)

	// Overwrite, last write wins. Concurrent operations on the same
	// document interleave their read-modify-write cycles; the store holds
	// whichever write lands last.
	if err := g.docs.SetContent(ctx, p.DocumentID, newContent); err != nil {
		g.logger.Error("failed to persist document content",
			zap.String("documentId", p.DocumentID),
			zap.Error(err))
		g.metrics.Operation(p.Operation.Type, "error")
		return
	}

	g.broadcast(ctx, p.DocumentID, conn.Meta().ID, cnst.EventDocUpdated, &UpdatePayload{
		Operation: p.Operation,
		UserID:    identity.UserID,
		UserName:  identity.DisplayName,
	})
	g.metrics.Operation(p.Operation.Type, "ok")

	g.logger.Debug("document operation applied",
		zap.String("documentId", p.DocumentID),
		zap.String("userId", identity.UserID),
		zap.String("type", p.Operation.Type))
}

func (g *Gateway) handleCursor(ctx context.Context, conn session.Connection, data json.RawMessage) {
	var p CursorPayload
	if err := json.Unmarshal(data, &p); err != nil || p.DocumentID == "" {
		g.logger.Debug("ignoring malformed cursor payload", zap.String("connId", conn.Meta().ID))
		return
	}

	// No access re-check on the cursor path: only join enforces it.
	identity := conn.Meta().Identity
	g.broadcast(ctx, p.DocumentID, conn.Meta().ID, cnst.EventCursorMoved, &CursorEventPayload{
		UserID:   identity.UserID,
		UserName: identity.DisplayName,
		Position: p.Position,
		Color:    p.Color,
	})
}

// Disconnect tears down a connection from any state: every joined room is
// left, remaining members are notified once per room, and the session is
// unregistered.
func (g *Gateway) Disconnect(ctx context.Context, conn session.Connection) {
	meta := conn.Meta()
	left := g.rooms.LeaveAll(meta.ID)
	g.metrics.SetRooms(g.rooms.RoomCount())

	for _, documentID := range left {
		g.broadcast(ctx, documentID, meta.ID, cnst.EventUserLeft, &PresencePayload{
			UserID:   meta.Identity.UserID,
			UserName: meta.Identity.DisplayName,
		})
	}

	if err := g.sessions.Unregister(ctx, meta.ID); err != nil && !errors.Is(err, session.ErrSessionNotFound) {
		g.logger.Error("failed to unregister session",
			zap.String("connId", meta.ID),
			zap.Error(err))
	}

	g.logger.Info("connection closed",
		zap.String("connId", meta.ID),
		zap.String("userId", meta.Identity.UserID),
		zap.Int("roomsLeft", len(left)))
}

// send delivers one event to a single connection
func (g *Gateway) send(ctx context.Context, conn session.Connection, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		g.logger.Error("failed to marshal payload",
			zap.String("event", event),
			zap.Error(err))
		return
	}
	if err := conn.Send(ctx, &session.Message{Event: event, Data: data}); err != nil {
		g.logger.Warn("failed to deliver event",
			zap.String("connId", conn.Meta().ID),
			zap.String("event", event),
			zap.Error(err))
	}
}

// broadcast fans an event out to every room member except the acting
// connection, locally and across the bridge.
func (g *Gateway) broadcast(ctx context.Context, documentID, exceptConnID, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		g.logger.Error("failed to marshal broadcast payload",
			zap.String("event", event),
			zap.Error(err))
		return
	}

	g.deliverLocal(ctx, documentID, exceptConnID, event, data)
	g.metrics.Broadcast(event)

	if err := g.bridge.Publish(ctx, &bridge.Event{
		Origin:     g.instanceID,
		DocumentID: documentID,
		Event:      event,
		Data:       data,
	}); err != nil {
		g.logger.Error("failed to publish bridge event",
			zap.String("event", event),
			zap.Error(err))
	}
}

func (g *Gateway) deliverLocal(ctx context.Context, documentID, exceptConnID, event string, data []byte) {
	for _, id := range g.rooms.MembersExcept(documentID, exceptConnID) {
		conn, err := g.sessions.Get(ctx, id)
		if err != nil {
			// Membership can outlive the session for an instant during teardown
			continue
		}
		if err := conn.Send(ctx, &session.Message{Event: event, Data: data}); err != nil {
			g.logger.Warn("failed to deliver broadcast",
				zap.String("connId", id),
				zap.String("event", event),
				zap.Error(err))
		}
	}
}

// handleBridgeEvent delivers a peer instance's event to all local room members
func (g *Gateway) handleBridgeEvent(ctx context.Context, evt *bridge.Event) {
	if evt.Origin == g.instanceID {
		return
	}
	// The acting connection lives on the peer instance, so nobody local
	// is excluded.
	g.deliverLocal(ctx, evt.DocumentID, "", evt.Event, evt.Data)
}
