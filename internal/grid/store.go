package grid

import (
	"fmt"
	"sort"
	"sync"
)

// SortKey orders rows by one column
type SortKey struct {
	ColumnID   string
	Descending bool
}

// Snapshot is an immutable view of the table state. A new snapshot is
// produced by every Store action; existing snapshots never change.
type Snapshot struct {
	Version uint64

	focused  CellAddress
	editing  CellAddress
	selected map[string]struct{}
	sort     []SortKey

	rows     []string
	rowIndex map[string]int
	columns  []string
	colIndex map[string]int
}

func emptySnapshot() *Snapshot {
	return &Snapshot{
		selected: make(map[string]struct{}),
		rowIndex: make(map[string]int),
		colIndex: make(map[string]int),
	}
}

// clone copies the mutable-by-action parts. rows/columns are replaced
// wholesale by SetRows/SetColumns and can be shared.
func (s *Snapshot) clone() *Snapshot {
	next := *s
	next.selected = make(map[string]struct{}, len(s.selected))
	for id := range s.selected {
		next.selected[id] = struct{}{}
	}
	return &next
}

func (s *Snapshot) known(addr CellAddress) bool {
	_, rowOK := s.rowIndex[addr.RowID]
	_, colOK := s.colIndex[addr.ColumnID]
	return rowOK && colOK
}

// Focused returns the focused cell. ok is false when nothing is focused or
// the focused row/column has disappeared from the dataset.
func (s *Snapshot) Focused() (CellAddress, bool) {
	if s.focused.IsZero() || !s.known(s.focused) {
		return CellAddress{}, false
	}
	return s.focused, true
}

// Editing returns the cell being edited, with the same stale handling as Focused.
func (s *Snapshot) Editing() (CellAddress, bool) {
	if s.editing.IsZero() || !s.known(s.editing) {
		return CellAddress{}, false
	}
	return s.editing, true
}

// StateOf returns the editing state of addr
func (s *Snapshot) StateOf(addr CellAddress) CellState {
	if e, ok := s.Editing(); ok && e == addr {
		return CellEditing
	}
	if f, ok := s.Focused(); ok && f == addr {
		return CellFocused
	}
	return CellIdle
}

// IsSelected reports whether the row is selected
func (s *Snapshot) IsSelected(rowID string) bool {
	_, ok := s.selected[rowID]
	return ok
}

// SelectedIDs returns the selected row ids sorted lexically
func (s *Snapshot) SelectedIDs() []string {
	ids := make([]string, 0, len(s.selected))
	for id := range s.selected {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SelectionCount returns the number of selected rows
func (s *Snapshot) SelectionCount() int {
	return len(s.selected)
}

// Sort returns a copy of the sort order
func (s *Snapshot) Sort() []SortKey {
	out := make([]SortKey, len(s.sort))
	copy(out, s.sort)
	return out
}

// RowCount returns the number of visible rows
func (s *Snapshot) RowCount() int {
	return len(s.rows)
}

// RowAt returns the row id at a visible position
func (s *Snapshot) RowAt(index int) (string, bool) {
	if index < 0 || index >= len(s.rows) {
		return "", false
	}
	return s.rows[index], true
}

// RowIndex returns the visible position of a row
func (s *Snapshot) RowIndex(rowID string) (int, bool) {
	i, ok := s.rowIndex[rowID]
	return i, ok
}

// Columns returns a copy of the column order
func (s *Snapshot) Columns() []string {
	out := make([]string, len(s.columns))
	copy(out, s.columns)
	return out
}

// ColumnIndex returns the position of a column
func (s *Snapshot) ColumnIndex(columnID string) (int, bool) {
	i, ok := s.colIndex[columnID]
	return i, ok
}

// CheckInvariants verifies the table invariants and returns the first violation
func (s *Snapshot) CheckInvariants() error {
	if !s.editing.IsZero() && s.editing != s.focused {
		return fmt.Errorf("editing cell %s differs from focused cell %s", s.editing, s.focused)
	}
	for id := range s.selected {
		if _, ok := s.rowIndex[id]; !ok {
			return fmt.Errorf("selected row %q is not a known row", id)
		}
	}
	return nil
}

// StoreOption configures a Store
type StoreOption func(*Store)

// WithSelectionSink sets the callback invoked whenever the selection set changes
func WithSelectionSink(fn func(selectedIDs []string)) StoreOption {
	return func(s *Store) {
		s.onSelectionChange = fn
	}
}

// Store holds the table state and exposes atomic actions on it.
// All actions are synchronous; callbacks run after the new snapshot is
// published and outside the store lock.
type Store struct {
	mu                sync.RWMutex
	snap              *Snapshot
	onSelectionChange func([]string)
	listeners         map[int]func(*Snapshot)
	nextListener      int
}

// NewStore creates an empty store
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		snap:      emptySnapshot(),
		listeners: make(map[int]func(*Snapshot)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns the current state
func (s *Store) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Subscribe registers fn to receive every new snapshot.
// The returned function removes the subscription.
func (s *Store) Subscribe(fn func(*Snapshot)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// update applies fn to a copy of the current snapshot and publishes it.
// fn returns false to abandon the update.
func (s *Store) update(fn func(next *Snapshot) bool) *Snapshot {
	s.mu.Lock()
	prev := s.snap
	next := prev.clone()
	if !fn(next) {
		s.mu.Unlock()
		return prev
	}
	next.Version = prev.Version + 1
	s.snap = next
	listeners := make([]func(*Snapshot), 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	sink := s.onSelectionChange
	s.mu.Unlock()

	if sink != nil && !sameSelection(prev.selected, next.selected) {
		sink(next.SelectedIDs())
	}
	for _, l := range listeners {
		l(next)
	}
	return next
}

func sameSelection(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for id := range a {
		if _, ok := b[id]; !ok {
			return false
		}
	}
	return true
}

// SetFocusedCell moves focus to addr. A zero address clears focus.
// Editing is cleared unless addr is the cell being edited.
func (s *Store) SetFocusedCell(addr CellAddress) error {
	var err error
	s.update(func(next *Snapshot) bool {
		if !addr.IsZero() && !next.known(addr) {
			err = NewStaleReferenceError(addr)
			return false
		}
		if next.focused == addr && (next.editing.IsZero() || next.editing == addr) {
			return false
		}
		next.focused = addr
		if next.editing != addr {
			next.editing = CellAddress{}
		}
		return true
	})
	return err
}

// StartEditing marks addr as the editing cell and focuses it
func (s *Store) StartEditing(addr CellAddress) error {
	if addr.IsZero() {
		return NewStaleReferenceError(addr)
	}
	var err error
	s.update(func(next *Snapshot) bool {
		if !next.known(addr) {
			err = NewStaleReferenceError(addr)
			return false
		}
		next.focused = addr
		next.editing = addr
		return true
	})
	return err
}

// StopEditing clears the editing cell and leaves focus unchanged
func (s *Store) StopEditing() {
	s.update(func(next *Snapshot) bool {
		if next.editing.IsZero() {
			return false
		}
		next.editing = CellAddress{}
		return true
	})
}

// SelectRows replaces the selection with ids. Unknown ids are dropped.
func (s *Store) SelectRows(ids []string) {
	s.update(func(next *Snapshot) bool {
		next.selected = make(map[string]struct{}, len(ids))
		for _, id := range ids {
			if _, ok := next.rowIndex[id]; ok {
				next.selected[id] = struct{}{}
			}
		}
		return true
	})
}

// ToggleRowSelection adds or removes one row from the selection
func (s *Store) ToggleRowSelection(id string) {
	s.update(func(next *Snapshot) bool {
		if _, ok := next.rowIndex[id]; !ok {
			return false
		}
		if _, ok := next.selected[id]; ok {
			delete(next.selected, id)
		} else {
			next.selected[id] = struct{}{}
		}
		return true
	})
}

// SelectRange replaces the selection with the contiguous visible rows between
// the focused row and toID, inclusive, in either order. Without a usable
// anchor only toID is selected.
func (s *Store) SelectRange(toID string) {
	s.update(func(next *Snapshot) bool {
		to, ok := next.rowIndex[toID]
		if !ok {
			return false
		}
		from := to
		if f, ok := next.Focused(); ok {
			from = next.rowIndex[f.RowID]
		}
		if from > to {
			from, to = to, from
		}
		next.selected = make(map[string]struct{}, to-from+1)
		for _, id := range next.rows[from : to+1] {
			next.selected[id] = struct{}{}
		}
		return true
	})
}

// ClearSelection empties the selection
func (s *Store) ClearSelection() {
	s.update(func(next *Snapshot) bool {
		if len(next.selected) == 0 {
			return false
		}
		next.selected = make(map[string]struct{})
		return true
	})
}

// SetRows replaces the visible row order. Selected rows that disappeared are
// deselected; focus and editing on a removed row are cleared.
func (s *Store) SetRows(ids []string) {
	s.update(func(next *Snapshot) bool {
		next.rows, next.rowIndex = indexIDs(ids)
		for id := range next.selected {
			if _, ok := next.rowIndex[id]; !ok {
				delete(next.selected, id)
			}
		}
		next.dropStale()
		return true
	})
}

// SetColumns replaces the column order used for navigation
func (s *Store) SetColumns(ids []string) {
	s.update(func(next *Snapshot) bool {
		next.columns, next.colIndex = indexIDs(ids)
		next.dropStale()
		return true
	})
}

func (s *Snapshot) dropStale() {
	if !s.focused.IsZero() && !s.known(s.focused) {
		s.focused = CellAddress{}
	}
	if !s.editing.IsZero() && !s.known(s.editing) {
		s.editing = CellAddress{}
	}
}

// indexIDs copies ids, dropping duplicates and empty ids
func indexIDs(ids []string) ([]string, map[string]int) {
	order := make([]string, 0, len(ids))
	index := make(map[string]int, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, dup := index[id]; dup {
			continue
		}
		index[id] = len(order)
		order = append(order, id)
	}
	return order, index
}

// SetSort records the sort order. Applying it to the rows is the dataset's job.
func (s *Store) SetSort(keys []SortKey) {
	s.update(func(next *Snapshot) bool {
		next.sort = make([]SortKey, len(keys))
		copy(next.sort, keys)
		return true
	})
}

// Navigate moves focus in direction dir and returns the new focused cell.
// pageSize is the row step for NavPageUp/NavPageDown. Without a current
// focus the first cell is focused. Navigation always leaves editing cleared.
func (s *Store) Navigate(dir Direction, pageSize int) (CellAddress, bool) {
	var target CellAddress
	s.update(func(next *Snapshot) bool {
		if len(next.rows) == 0 || len(next.columns) == 0 {
			return false
		}
		cur, ok := next.Focused()
		if !ok {
			target = CellAddress{RowID: next.rows[0], ColumnID: next.columns[0]}
		} else {
			row, col := next.rowIndex[cur.RowID], next.colIndex[cur.ColumnID]
			row, col = step(row, col, len(next.rows), len(next.columns), dir, pageSize)
			target = CellAddress{RowID: next.rows[row], ColumnID: next.columns[col]}
		}
		if target == next.focused && next.editing.IsZero() {
			return false
		}
		next.focused = target
		next.editing = CellAddress{}
		return true
	})
	return target, !target.IsZero()
}

// step computes the target position. Next/Prev wrap across row ends and
// stop at the grid corners; every other direction clamps.
func step(row, col, rows, cols int, dir Direction, pageSize int) (int, int) {
	if pageSize < 1 {
		pageSize = 1
	}
	switch dir {
	case NavNext:
		if col < cols-1 {
			col++
		} else if row < rows-1 {
			row, col = row+1, 0
		}
	case NavPrev:
		if col > 0 {
			col--
		} else if row > 0 {
			row, col = row-1, cols-1
		}
	case NavUp:
		row--
	case NavDown:
		row++
	case NavLeft:
		col--
	case NavRight:
		col++
	case NavRowStart:
		col = 0
	case NavRowEnd:
		col = cols - 1
	case NavFirstRow:
		row = 0
	case NavLastRow:
		row = rows - 1
	case NavPageUp:
		row -= pageSize
	case NavPageDown:
		row += pageSize
	}
	return clamp(row, 0, rows-1), clamp(col, 0, cols-1)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
