// Package grid implements the interaction engine behind the budget data grid.
//
// The package is headless: it knows nothing about terminals or widgets. A front
// end feeds it pointer and keyboard events and renders whatever the engine
// reports back. Four pieces cooperate:
//
//   - Store: the table state (focused cell, editing cell, selection, sort order)
//     held as immutable snapshots and mutated only through action methods.
//   - Controller: the cell editing state machine. It interprets triggers on the
//     focused cell, owns the single active editor and applies the navigation
//     protocol shared by every editor variant.
//   - Editors: TextEditor, NumberEditor, CheckboxEditor and LargeTextEditor,
//     each a small finite-state object that owns the pending value and reports
//     back exactly one commit or cancel.
//   - Virtualizer: O(1) windowing over large row sets, recomputed on scroll and
//     resize only.
//
// # Cell States
//
// Every cell is in one of three states:
//
//	Idle ──focus──▶ Focused ──trigger──▶ Editing
//	                   ▲                    │
//	                   └──commit / cancel───┘
//
// Triggers (double-click, F2, Enter, a printable character, Backspace/Delete)
// are only evaluated on the focused cell while nothing is being edited.
//
// # Usage Example
//
//	store := grid.NewStore(grid.WithSelectionSink(func(ids []string) {
//	    log.Printf("selected: %v", ids)
//	}))
//	store.SetColumns([]string{"category", "amount"})
//	store.SetRows(ds.RowIDs())
//
//	ctrl := grid.NewController(store, columns, ds, commitSink)
//	ctrl.Click(grid.CellAddress{RowID: "r1", ColumnID: "amount"}, grid.ModNone)
//	ctrl.HandleKey(grid.KeyEvent{Key: grid.KeyRune, Rune: '4'})
//	ctrl.HandleKey(grid.KeyEvent{Key: grid.KeyRune, Rune: '2'})
//	ctrl.HandleKey(grid.KeyEvent{Key: grid.KeyTab})
//
// # Commits
//
// Commits are optimistic. The controller writes the new value to its
// ValueSource, hands a CommitIntent to the CommitSink and returns the cell to
// Focused without waiting. A persistence layer that later fails sends a Revert
// back through ApplyRevert; reverts are accepted even when a different cell is
// being edited, and ignored when a newer commit has superseded them.
//
// # Thread Safety
//
// Store is safe for concurrent reads of snapshots. Controller is not safe for
// concurrent use: like any UI state machine it expects events to be delivered
// from a single goroutine (the Bubble Tea update loop in this repository).
package grid
