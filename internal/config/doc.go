// Package config manages the budgetgrid layout file.
//
// The layout declares how the table is virtualized, which columns exist and
// which editor each one mounts, how SQLite datasets are read and where
// committed edits are persisted. It is a YAML file stored in the
// platform-appropriate location:
//   - Linux: $XDG_CONFIG_HOME/budgetgrid/layout.yaml or $HOME/.config/budgetgrid/layout.yaml
//   - macOS: $HOME/.config/budgetgrid/layout.yaml
//   - Windows: %LOCALAPPDATA%\budgetgrid\layout.yaml
//
// A file can also be passed explicitly with --layout.
//
// # Example
//
//	version: 1
//	table:
//	  row_height: 1
//	  overscan: 6
//	columns:
//	  - {id: id, pinned: left}
//	  - {id: amount, editable: true, editor: number, min: 0, precision: 2, allow_null: true}
//	  - {id: paid, editable: true, editor: checkbox}
//	  - {id: meta, editable: true, editor: largeText, rows: 4, validate_json: true}
//	sink:
//	  kind: sqlite
//	  path: budget-edits.db
//
// When columns is empty the editor infers them from the dataset with
// InferColumns.
//
// # Usage Example
//
//	path, _ := config.GetLayoutPath()
//	layout, exists, err := config.Load(path)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !exists {
//	    _ = layout.Save(path)
//	}
//	columns := layout.ToColumns()
//
// # File Safety
//
// Save validates the layout first and then writes through a temporary file
// followed by a rename, so a crash never leaves a half-written layout.
package config
