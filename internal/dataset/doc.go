// Package dataset provides the rows a grid edits.
//
// A Dataset holds rows keyed by a stable id and implements grid.ValueSource,
// so the grid controller reads and writes cell values through it. Rows are
// loaded wholesale from a JSON file or a SQLite table and can be replaced
// wholesale again, for example when the file changes on disk.
//
// # Sources
//
// JSON files hold an array of objects, each with an id field:
//
//	[
//	  {"id": "r1", "category": "Rent", "amount": 1200, "paid": true},
//	  {"id": "r2", "category": "Food", "amount": 310.5, "paid": false}
//	]
//
// SQLite sources read every column of one table; the id column is configurable.
//
//	rows, err := dataset.Load(ctx, dataset.Source{Path: "budget.db", Table: "lines"})
//
// # Sorting
//
// Sort orders the visible row ids by one or more columns. Numbers compare
// numerically, strings case-insensitively, and empty values sort first.
// Ties keep the load order.
//
// # Watching
//
// Watcher reports changes to a dataset file with debouncing, using fsnotify
// on the containing directory so editors that save via rename are seen.
package dataset
