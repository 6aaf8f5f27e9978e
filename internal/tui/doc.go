// Package tui implements the full-screen grid editor and the commit sink
// picker.
//
// Both screens are Bubble Tea models following the Model-Update-View
// pattern. The grid screen is a thin shell around grid.Controller: key
// presses and mouse clicks are translated into grid events, and the
// controller decides what they mean. The shell owns only what a terminal
// adds on top:
//
//   - a virtualizer sized in terminal lines, so only the rows in view are
//     drawn
//   - horizontal scrolling of unpinned columns; pinned columns stay at the
//     edges
//   - a boxed multi-line editor below the grid for largeText cells
//   - a status line with the focused cell, the selection, pending commits
//     and the last validation or commit error
//
// # Terminal key mapping
//
// Terminals cannot report every modifier combination the grid understands:
//
//	ctrl+s, ctrl+j   ctrl+enter (commit a largeText edit)
//	alt+enter        shift+enter (commit and move up)
//	alt+↑/↓          step a number
//
// Application keys (sort, copy, select all, reload, help) are only active
// while no editor is open, so printable keys always reach type-to-edit.
//
// # Async work
//
// Commit results from the sink actor and dataset file changes arrive as
// messages from blocking commands that re-arm themselves after each value.
//
// # Usage
//
//	err := tui.RunGrid(ctx, tui.Config{
//	    Title:   "budget.json",
//	    Columns: layout.ToColumns(),
//	    Dataset: data,
//	    Sink:    actor,
//	    Results: actor.Results(),
//	})
package tui
