// Package protocol implements the budgetgrid commit-sink wire protocol.
//
// The grid front end and a remote commit sink exchange JSON messages over a
// WebSocket connection, one message per text frame. Every message carries the
// protocol version and a type:
//
//	{"v":1,"type":"commit","seq":7,"row_id":"r1","column_id":"amount","value":42.5,"previous":40}
//	{"v":1,"type":"ack","seq":7,"row_id":"r1","column_id":"amount"}
//	{"v":1,"type":"revert","seq":7,"row_id":"r1","column_id":"amount","value":40,"reason":"database is locked"}
//	{"v":1,"type":"error","seq":0,"reason":"failed to decode message: ..."}
//
// # Message Flow
//
//   - The client sends one commit per committed cell edit. Seq is the grid's
//     commit sequence number and increases monotonically per session.
//   - The server answers every commit with exactly one ack or revert carrying
//     the same seq and cell address.
//   - A revert's value is the cell's value before the failed commit.
//   - Messages that fail to decode, or arrive in the wrong direction, are
//     answered with an error message.
//
// # Usage Example - Client
//
//	data, err := protocol.Encode(protocol.NewCommit(intent))
//	if err != nil {
//	    return err
//	}
//	err = conn.WriteMessage(websocket.TextMessage, data)
//
// # Usage Example - Server
//
//	for {
//	    _, data, err := conn.ReadMessage()
//	    if err != nil {
//	        return
//	    }
//	    protocol.HandleMessage(ctx, conn, remoteAddr, data, store)
//	}
//
// # Thread Safety
//
// Encoding and decoding are stateless. A *websocket.Conn supports one
// concurrent writer, so callers must serialise Send calls per connection.
package protocol
