package protocol

import (
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/muurk/budgetgrid/internal/grid"
)

// Version is the wire protocol version carried in every message
const Version = 1

// MessageType identifies a message
type MessageType string

const (
	// TypeCommit carries a cell value from the grid to the sink
	TypeCommit MessageType = "commit"
	// TypeAck confirms that a commit was persisted
	TypeAck MessageType = "ack"
	// TypeRevert reports a failed commit with the value to restore
	TypeRevert MessageType = "revert"
	// TypeError reports a message the peer could not process
	TypeError MessageType = "error"
)

// Message is the JSON envelope exchanged over the sink WebSocket
type Message struct {
	Version  int         `json:"v"`
	Type     MessageType `json:"type"`
	Seq      uint64      `json:"seq"`
	RowID    string      `json:"row_id,omitempty"`
	ColumnID string      `json:"column_id,omitempty"`
	Value    any         `json:"value,omitempty"`
	Previous any         `json:"previous,omitempty"`
	Reason   string      `json:"reason,omitempty"`
}

// Address returns the cell the message refers to
func (m *Message) Address() grid.CellAddress {
	return grid.CellAddress{RowID: m.RowID, ColumnID: m.ColumnID}
}

// Intent converts a commit message to a grid commit intent
func (m *Message) Intent() grid.CommitIntent {
	return grid.CommitIntent{
		Seq:      m.Seq,
		Address:  m.Address(),
		Value:    m.Value,
		Previous: m.Previous,
	}
}

// Revert converts a revert message to a grid revert
func (m *Message) Revert() grid.Revert {
	return grid.Revert{
		Seq:     m.Seq,
		Address: m.Address(),
		Value:   m.Value,
		Reason:  m.Reason,
	}
}

// String returns a short description for logs
func (m *Message) String() string {
	return fmt.Sprintf("%s seq=%d cell=%s", m.Type, m.Seq, m.Address())
}

// NewCommit builds a commit message from a grid intent
func NewCommit(intent grid.CommitIntent) *Message {
	return &Message{
		Version:  Version,
		Type:     TypeCommit,
		Seq:      intent.Seq,
		RowID:    intent.Address.RowID,
		ColumnID: intent.Address.ColumnID,
		Value:    intent.Value,
		Previous: intent.Previous,
	}
}

// NewAck builds the acknowledgement of a commit
func NewAck(seq uint64, addr grid.CellAddress) *Message {
	return &Message{
		Version:  Version,
		Type:     TypeAck,
		Seq:      seq,
		RowID:    addr.RowID,
		ColumnID: addr.ColumnID,
	}
}

// NewRevert builds a revert restoring value at addr
func NewRevert(seq uint64, addr grid.CellAddress, value any, reason string) *Message {
	return &Message{
		Version:  Version,
		Type:     TypeRevert,
		Seq:      seq,
		RowID:    addr.RowID,
		ColumnID: addr.ColumnID,
		Value:    value,
		Reason:   reason,
	}
}

// NewError builds an error reply
func NewError(seq uint64, reason string) *Message {
	return &Message{
		Version: Version,
		Type:    TypeError,
		Seq:     seq,
		Reason:  reason,
	}
}

// Encode marshals a message
func Encode(m *Message) ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s message: %w", m.Type, err)
	}
	return data, nil
}

// Decode unmarshals and validates a message
func Decode(data []byte) (*Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode message: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks the fields required by the message type
func (m *Message) Validate() error {
	if m.Version != Version {
		return fmt.Errorf("unsupported protocol version %d", m.Version)
	}
	switch m.Type {
	case TypeCommit, TypeAck, TypeRevert:
		if m.RowID == "" || m.ColumnID == "" {
			return fmt.Errorf("%s message without a cell address", m.Type)
		}
		if m.Seq == 0 {
			return fmt.Errorf("%s message without a sequence number", m.Type)
		}
	case TypeError:
	default:
		return fmt.Errorf("unknown message type %q", m.Type)
	}
	return nil
}
