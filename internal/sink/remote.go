package sink

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/budgetgrid/internal/grid"
	"github.com/muurk/budgetgrid/internal/logging"
	"github.com/muurk/budgetgrid/internal/protocol"
	"github.com/muurk/budgetgrid/internal/version"
)

// DefaultReplyTimeout bounds the wait for an ack or revert
const DefaultReplyTimeout = 10 * time.Second

// RemoteStore forwards commits to a budgetgrid-sink server
type RemoteStore struct {
	url     string
	conn    *websocket.Conn
	timeout time.Duration

	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[uint64]chan *protocol.Message
	lost    chan struct{}
	readErr error
}

// DialRemote connects to the server's WebSocket endpoint, e.g.
// ws://host:8470/ws
func DialRemote(ctx context.Context, url string) (*RemoteStore, error) {
	header := http.Header{"User-Agent": []string{version.UserAgent()}}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", url, err)
	}
	logging.LogConnection(url, "connected")

	r := &RemoteStore{
		url:     url,
		conn:    conn,
		timeout: DefaultReplyTimeout,
		pending: make(map[uint64]chan *protocol.Message),
		lost:    make(chan struct{}),
	}
	go r.readLoop()
	return r, nil
}

// SetReplyTimeout changes how long Save waits for the server's answer
func (r *RemoteStore) SetReplyTimeout(d time.Duration) {
	r.timeout = d
}

// Save implements Store. An ack is success; a revert or error reply is a
// RejectedError; transport problems are temporary.
func (r *RemoteStore) Save(ctx context.Context, intent grid.CommitIntent) error {
	reply := make(chan *protocol.Message, 1)

	r.mu.Lock()
	if r.readErr != nil {
		r.mu.Unlock()
		return Temporary(ErrConnectionLost)
	}
	r.pending[intent.Seq] = reply
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		delete(r.pending, intent.Seq)
		r.mu.Unlock()
	}()

	data, err := protocol.Encode(protocol.NewCommit(intent))
	if err != nil {
		return err
	}
	r.writeMu.Lock()
	err = r.conn.WriteMessage(websocket.TextMessage, data)
	r.writeMu.Unlock()
	if err != nil {
		return Temporary(fmt.Errorf("send commit: %w", err))
	}
	logging.LogWireMessage(r.url, "sent", data)

	timer := time.NewTimer(r.timeout)
	defer timer.Stop()

	select {
	case m := <-reply:
		switch m.Type {
		case protocol.TypeAck:
			return nil
		default:
			return &RejectedError{Reason: m.Reason}
		}
	case <-r.lost:
		return Temporary(ErrConnectionLost)
	case <-timer.C:
		return Temporary(fmt.Errorf("no reply to commit %d after %s", intent.Seq, r.timeout))
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *RemoteStore) readLoop() {
	for {
		_, data, err := r.conn.ReadMessage()
		if err != nil {
			r.mu.Lock()
			r.readErr = err
			r.mu.Unlock()
			close(r.lost)
			logging.LogConnection(r.url, "disconnected")
			return
		}
		logging.LogWireMessage(r.url, "received", data)

		m, err := protocol.Decode(data)
		if err != nil {
			logging.Warn("Ignoring invalid reply", zap.String("url", r.url), zap.Error(err))
			continue
		}

		r.mu.Lock()
		ch, ok := r.pending[m.Seq]
		r.mu.Unlock()
		if !ok {
			logging.Debug("Reply without a pending commit", zap.String("message", m.String()))
			continue
		}
		select {
		case ch <- m:
		default:
		}
	}
}

// Close implements Store
func (r *RemoteStore) Close() error {
	r.writeMu.Lock()
	_ = r.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	r.writeMu.Unlock()
	return r.conn.Close()
}
