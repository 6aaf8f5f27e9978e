// Package server implements budgetgrid-sink, the WebSocket server that
// receives cell commits from budgetgrid editors and persists them.
//
// An editor configured with a remote sink dials ws://host:8470/ws and sends
// one JSON commit per edited cell. The server saves each commit to its
// store (a SQLite database in production) and answers on the same
// connection:
//
//	editor -> {"v":1,"type":"commit","seq":7,"row_id":"r1","column_id":"amount","value":12.5,"previous":10}
//	server <- {"v":1,"type":"ack","seq":7,"row_id":"r1","column_id":"amount"}
//
// When the store fails the reply is a revert carrying the editor's previous
// value, which the editor writes back into the cell:
//
//	server <- {"v":1,"type":"revert","seq":7,"row_id":"r1","column_id":"amount","value":10,"reason":"disk full"}
//
// # Routes
//
//   - GET /ws: WebSocket upgrade, then the commit loop
//   - GET /health: JSON status with connection and commit counters
//
// # Usage Example
//
//	store, err := sink.OpenSQLite("budget-edits.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	srv, err := server.New(&server.Config{Port: 8470, Instance: "office"}, store)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	// Blocks until SIGINT or SIGTERM
//	if err := srv.Start(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Lifecycle
//
// Run ties the HTTP server and the mDNS advertisement together with an
// errgroup. On shutdown the server:
//  1. Stops accepting connections
//  2. Sends a close frame to every connected editor
//  3. Waits for in-flight commits to finish
//  4. Closes the store
//
// Each connection is served by one goroutine, so commits from a single
// editor are persisted in the order they were sent. A ping is sent every
// 54 seconds and a connection that stays silent for 60 seconds is dropped.
//
// # TLS
//
// Setting both CertPath and KeyPath serves wss:// with TLS 1.2 or later.
package server
