package gateway

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Quyenld9699/realtime-multi-user-edit/internal/auth/jwt"
	"github.com/Quyenld9699/realtime-multi-user-edit/internal/common/config"
	"github.com/Quyenld9699/realtime-multi-user-edit/internal/session"
	"github.com/Quyenld9699/realtime-multi-user-edit/pkg/metrics"
)

// Server terminates websocket connections and feeds the gateway core.
type Server struct {
	logger   *zap.Logger
	gateway  *Gateway
	jwt      *jwt.Service
	sessions session.Store
	cfg      config.RealtimeConfig
	metrics  *metrics.Metrics
	upgrader websocket.Upgrader
}

// NewServer creates a new websocket server
func NewServer(logger *zap.Logger, g *Gateway, jwtSvc *jwt.Service, sessions session.Store, cfg config.RealtimeConfig, m *metrics.Metrics) *Server {
	return &Server{
		logger:   logger.Named("websocket"),
		gateway:  g,
		jwt:      jwtSvc,
		sessions: sessions,
		cfg:      cfg,
		metrics:  m,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			HandshakeTimeout: 10 * time.Second,
		},
	}
}

// HandleWS authenticates and upgrades a client connection, then runs its
// read loop until the channel drops.
//
// The credential is passed out-of-band at connection establishment, via
// the token query parameter or an Authorization bearer header. A failed
// handshake refuses the connection with no message.
func (s *Server) HandleWS(c *gin.Context) {
	claims, err := s.jwt.ValidateToken(credentialFromRequest(c))
	if err != nil {
		s.metrics.AuthFailure()
		s.logger.Warn("rejecting connection with invalid credential", zap.Error(err))
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	ws, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Error("failed to upgrade connection", zap.Error(err))
		return
	}

	meta := &session.Meta{
		ID: uuid.NewString(),
		Identity: session.Identity{
			UserID:      claims.UserID,
			DisplayName: claims.Name,
		},
		CreatedAt: time.Now(),
	}

	conn, err := s.sessions.Register(c.Request.Context(), meta)
	if err != nil {
		s.logger.Error("failed to register session", zap.Error(err))
		_ = ws.Close()
		return
	}

	s.metrics.ConnOpened()
	s.logger.Info("client connected",
		zap.String("connId", meta.ID),
		zap.String("userId", meta.Identity.UserID),
		zap.String("userName", meta.Identity.DisplayName))

	go s.writePump(ws, conn)
	s.readPump(ws, conn)
}

func credentialFromRequest(c *gin.Context) string {
	if token := c.Query("token"); token != "" {
		return token
	}
	authHeader := c.GetHeader("Authorization")
	if parts := strings.Split(authHeader, " "); len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}

// readPump reads client messages until the channel drops, then tears the
// connection down. Teardown runs with a fresh context so in-flight store
// writes are never aborted by the socket closing.
func (s *Server) readPump(ws *websocket.Conn, conn session.Connection) {
	defer func() {
		s.gateway.Disconnect(context.Background(), conn)
		_ = ws.Close()
		s.metrics.ConnClosed()
	}()

	ws.SetReadLimit(s.cfg.MaxMessageSize)
	_ = ws.SetReadDeadline(time.Now().Add(s.cfg.PongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(s.cfg.PongWait))
	})

	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				s.logger.Warn("connection error",
					zap.String("connId", conn.Meta().ID),
					zap.Error(err))
			}
			return
		}
		s.gateway.HandleMessage(context.Background(), conn, raw)
	}
}

// writePump drains the session queue onto the socket and keeps the
// connection alive with pings.
func (s *Server) writePump(ws *websocket.Conn, conn session.Connection) {
	pingPeriod := s.cfg.PongWait * 9 / 10
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = ws.Close()
	}()

	for {
		select {
		case msg, ok := <-conn.EventQueue():
			_ = ws.SetWriteDeadline(time.Now().Add(s.cfg.WriteWait))
			if !ok {
				// Session unregistered
				_ = ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := ws.WriteJSON(Envelope{Event: msg.Event, Data: msg.Data}); err != nil {
				s.logger.Warn("failed to write message",
					zap.String("connId", conn.Meta().ID),
					zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = ws.SetWriteDeadline(time.Now().Add(s.cfg.WriteWait))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
