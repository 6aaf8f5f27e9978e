package protocol

import (
	"context"
	"fmt"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/budgetgrid/internal/logging"
)

// Writer is the part of *websocket.Conn used to send messages
type Writer interface {
	WriteMessage(messageType int, data []byte) error
}

// CommitHandler persists one commit and returns the ack or revert to send back
type CommitHandler interface {
	HandleCommit(ctx context.Context, m *Message) *Message
}

// CommitHandlerFunc adapts a function to CommitHandler
type CommitHandlerFunc func(ctx context.Context, m *Message) *Message

// HandleCommit implements CommitHandler
func (f CommitHandlerFunc) HandleCommit(ctx context.Context, m *Message) *Message {
	return f(ctx, m)
}

// HandleMessage processes one incoming WebSocket message from a sink client.
// Malformed or unexpected messages are answered with an error message; the
// returned error only reports a failed write.
func HandleMessage(ctx context.Context, conn Writer, remoteAddr string, data []byte, h CommitHandler) error {
	logging.LogWireMessage(remoteAddr, "received", data)

	msg, err := Decode(data)
	if err != nil {
		logging.Warn("Invalid message",
			zap.String("remote_addr", remoteAddr),
			zap.Int("length", len(data)),
			zap.Error(err),
		)
		return Send(conn, remoteAddr, NewError(0, err.Error()))
	}

	switch msg.Type {
	case TypeCommit:
		reply := h.HandleCommit(ctx, msg)
		if reply == nil {
			return nil
		}
		return Send(conn, remoteAddr, reply)
	default:
		logging.Warn("Unexpected message type",
			zap.String("remote_addr", remoteAddr),
			zap.String("message", msg.String()),
		)
		return Send(conn, remoteAddr, NewError(msg.Seq, fmt.Sprintf("unexpected %s message", msg.Type)))
	}
}

// Send encodes m and writes it as a text frame
func Send(conn Writer, remoteAddr string, m *Message) error {
	data, err := Encode(m)
	if err != nil {
		return err
	}
	logging.LogWireMessage(remoteAddr, "sent", data)
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("failed to send %s message: %w", m.Type, err)
	}
	return nil
}
