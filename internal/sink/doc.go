// Package sink persists grid commits.
//
// The grid controller emits a grid.CommitIntent for every committed cell and
// returns to the Focused state immediately. An Actor receives those intents
// on a buffered channel, persists them one at a time through a Store on its
// own goroutine, and publishes one Result per intent: either the commit was
// persisted, or it failed and the grid should revert the cell.
//
// # Stores
//
//   - SQLiteStore writes the latest value of every edited cell, plus an
//     append-only commit log, to a local SQLite database.
//   - RemoteStore forwards commits over a WebSocket connection to a
//     budgetgrid-sink server and waits for the matching ack or revert.
//
// # Retries
//
// Store errors marked temporary (a busy database, a dropped connection) are
// retried with exponential backoff. Other errors, and temporary errors that
// exhaust the retry budget, produce a failed Result.
//
// # Usage Example
//
//	store, err := sink.OpenSQLite("edits.db")
//	if err != nil {
//	    return err
//	}
//	actor := sink.NewActor(store, sink.WithRetries(3))
//	actor.Start(ctx)
//	defer actor.Close()
//
//	ctrl := grid.NewController(gridStore, columns, data, actor)
//	res := <-actor.Results()
//	if res.Err != nil {
//	    ctrl.ApplyRevert(res.Revert())
//	} else {
//	    ctrl.ApplyAck(res.Intent.Address, res.Intent.Seq)
//	}
//
// # Thread Safety
//
// Actor.Commit is safe to call from any goroutine and never blocks. Results
// must be drained by the caller; the actor goroutine blocks once the results
// buffer is full.
package sink
