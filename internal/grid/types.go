package grid

import "fmt"

// CellAddress identifies a cell by row and column identity.
// RowID is supplied by the dataset and survives sorting; ColumnID is stable
// per column definition. The zero value means "no cell".
type CellAddress struct {
	RowID    string
	ColumnID string
}

// IsZero reports whether the address refers to no cell.
func (a CellAddress) IsZero() bool {
	return a.RowID == "" && a.ColumnID == ""
}

// String returns a compact "row/column" form used in logs
func (a CellAddress) String() string {
	if a.IsZero() {
		return "<none>"
	}
	return fmt.Sprintf("%s/%s", a.RowID, a.ColumnID)
}

// CellState is the editing state of a single cell
type CellState int

const (
	// CellIdle displays its value only
	CellIdle CellState = iota
	// CellFocused displays its value and receives keyboard triggers
	CellFocused
	// CellEditing has an editor mounted
	CellEditing
)

// String returns a human-readable name for the state
func (s CellState) String() string {
	switch s {
	case CellIdle:
		return "idle"
	case CellFocused:
		return "focused"
	case CellEditing:
		return "editing"
	default:
		return fmt.Sprintf("CellState(%d)", s)
	}
}

// Direction is a navigation intent
type Direction int

const (
	NavNone Direction = iota
	NavNext
	NavPrev
	NavUp
	NavDown
	NavLeft
	NavRight
	NavRowStart
	NavRowEnd
	NavFirstRow
	NavLastRow
	NavPageUp
	NavPageDown
)

// String returns the direction name
func (d Direction) String() string {
	switch d {
	case NavNone:
		return "none"
	case NavNext:
		return "next"
	case NavPrev:
		return "prev"
	case NavUp:
		return "up"
	case NavDown:
		return "down"
	case NavLeft:
		return "left"
	case NavRight:
		return "right"
	case NavRowStart:
		return "row_start"
	case NavRowEnd:
		return "row_end"
	case NavFirstRow:
		return "first_row"
	case NavLastRow:
		return "last_row"
	case NavPageUp:
		return "page_up"
	case NavPageDown:
		return "page_down"
	default:
		return fmt.Sprintf("Direction(%d)", d)
	}
}

// CommitIntent is emitted to the CommitSink every time an editor commits.
// Seq is unique per controller and increases monotonically; the persistence
// layer echoes it back in acks and reverts.
type CommitIntent struct {
	Seq      uint64
	Address  CellAddress
	Value    any
	Previous any
}

// Revert instructs the controller to restore Value at Address because the
// commit identified by Seq could not be persisted.
type Revert struct {
	Seq     uint64
	Address CellAddress
	Value   any
	Reason  string
}

// CommitSink receives commit intents. Implementations must not block the
// caller for longer than it takes to enqueue the intent.
type CommitSink interface {
	Commit(intent CommitIntent)
}

// CommitFunc adapts a function to the CommitSink interface
type CommitFunc func(intent CommitIntent)

// Commit calls f(intent)
func (f CommitFunc) Commit(intent CommitIntent) {
	f(intent)
}

// ValueSource provides and stores cell values for the controller
type ValueSource interface {
	// Value returns the current value at addr and whether the cell exists
	Value(addr CellAddress) (any, bool)
	// SetValue replaces the value at addr. Unknown cells are ignored.
	SetValue(addr CellAddress, value any)
}

// Scroller brings a row index into view. The Virtualizer implements it.
type Scroller interface {
	EnsureVisible(index int)
}
