package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/budgetgrid/internal/logging"
	"github.com/muurk/budgetgrid/internal/protocol"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer; large-text cells fit well inside
	maxMessageSize = 1 << 20
)

// handleWebSocket upgrades the request and serves commits until the editor
// disconnects
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	remoteAddr := r.RemoteAddr
	LogHTTPRequestDetails(r, remoteAddr)

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error
		logging.Error("Invalid WebSocket upgrade request",
			zap.String("remote_addr", remoteAddr),
			zap.Error(err),
		)
		return
	}

	s.wg.Add(1)
	defer s.wg.Done()
	s.track(remoteAddr, conn)
	defer func() {
		_ = conn.Close()
		s.untrack(remoteAddr)
		logging.LogConnection(remoteAddr, "websocket_closed")
	}()
	logging.LogConnection(remoteAddr, "websocket_upgraded")

	if err := s.serveConn(r.Context(), conn, remoteAddr); err != nil {
		logging.Error("WebSocket connection error",
			zap.String("remote_addr", remoteAddr),
			zap.Error(err),
		)
	}
}

// serveConn is the per-connection read loop. Commits on one connection are
// handled in order; replies are written from this goroutine only.
func (s *Server) serveConn(ctx context.Context, conn *websocket.Conn, remoteAddr string) error {
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	stopPing := make(chan struct{})
	defer close(stopPing)
	go keepAlive(conn, remoteAddr, stopPing)

	w := &deadlineWriter{conn: conn}
	handler := protocol.CommitHandlerFunc(s.handleCommit)

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logging.Info("Connection closed by editor", zap.String("remote_addr", remoteAddr))
				return nil
			}
			if websocket.IsUnexpectedCloseError(err) {
				return err
			}
			logging.Info("Connection closed or error reading message",
				zap.String("remote_addr", remoteAddr),
				zap.Error(err),
			)
			return nil
		}

		if messageType != websocket.TextMessage {
			logging.Warn("Ignoring non-text WebSocket message",
				zap.String("remote_addr", remoteAddr),
				zap.Int("message_type", messageType),
			)
			continue
		}

		if err := protocol.HandleMessage(ctx, w, remoteAddr, data, handler); err != nil {
			return err
		}
	}
}

// handleCommit persists one commit. Any store failure becomes a revert that
// carries the editor's previous value.
func (s *Server) handleCommit(ctx context.Context, m *protocol.Message) *protocol.Message {
	intent := m.Intent()
	if err := s.store.Save(ctx, intent); err != nil {
		s.reverts.Add(1)
		logging.LogRevert(intent.Address.String(), intent.Seq, err.Error())
		return protocol.NewRevert(m.Seq, m.Address(), m.Previous, err.Error())
	}
	s.commits.Add(1)
	logging.LogCommit(intent.Address.String(), intent.Seq, intent.Value)
	return protocol.NewAck(m.Seq, m.Address())
}

// keepAlive pings the editor until stop is closed. WriteControl is safe to
// call alongside the read loop's writes.
func keepAlive(conn *websocket.Conn, remoteAddr string, stop <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				logging.Debug("Ping failed", zap.String("remote_addr", remoteAddr), zap.Error(err))
				return
			}
		case <-stop:
			return
		}
	}
}

// deadlineWriter bounds every reply write
type deadlineWriter struct {
	conn *websocket.Conn
}

func (d *deadlineWriter) WriteMessage(messageType int, data []byte) error {
	if err := d.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return d.conn.WriteMessage(messageType, data)
}
