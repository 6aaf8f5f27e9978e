package dataset

import (
	"sync"

	"github.com/muurk/budgetgrid/internal/grid"
)

// Row is one record. Values are keyed by column id.
type Row struct {
	ID     string
	Values map[string]any
}

// Clone returns a copy whose Values map can be modified independently
func (r Row) Clone() Row {
	values := make(map[string]any, len(r.Values))
	for k, v := range r.Values {
		values[k] = v
	}
	return Row{ID: r.ID, Values: values}
}

// Dataset is an in-memory row set. It is safe for concurrent use.
type Dataset struct {
	mu    sync.RWMutex
	rows  []Row
	index map[string]int
	sort  []grid.SortKey
	order []string
}

// New creates a dataset from rows. Rows with an empty or duplicate id are dropped.
func New(rows []Row) *Dataset {
	d := &Dataset{}
	d.Replace(rows)
	return d
}

// Replace swaps in copies of rows and re-applies the current sort
func (d *Dataset) Replace(rows []Row) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.rows = make([]Row, 0, len(rows))
	d.index = make(map[string]int, len(rows))
	for _, r := range rows {
		if r.ID == "" {
			continue
		}
		if _, dup := d.index[r.ID]; dup {
			continue
		}
		d.index[r.ID] = len(d.rows)
		d.rows = append(d.rows, r.Clone())
	}
	d.order = sortedIDs(d.rows, d.sort)
}

// Len returns the number of rows
func (d *Dataset) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.rows)
}

// Rows returns copies of the rows in load order
func (d *Dataset) Rows() []Row {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Row, len(d.rows))
	for i, r := range d.rows {
		out[i] = r.Clone()
	}
	return out
}

// RowIDs returns the row ids in visible (sorted) order
func (d *Dataset) RowIDs() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// Row returns a copy of one row
func (d *Dataset) Row(id string) (Row, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	i, ok := d.index[id]
	if !ok {
		return Row{}, false
	}
	return d.rows[i].Clone(), true
}

// Value implements grid.ValueSource. A known row without a value for the
// column reports nil, true so that empty cells remain editable.
func (d *Dataset) Value(addr grid.CellAddress) (any, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	i, ok := d.index[addr.RowID]
	if !ok {
		return nil, false
	}
	return d.rows[i].Values[addr.ColumnID], true
}

// SetValue implements grid.ValueSource. Writes to unknown rows are ignored.
func (d *Dataset) SetValue(addr grid.CellAddress, v any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	i, ok := d.index[addr.RowID]
	if !ok {
		return
	}
	d.rows[i].Values[addr.ColumnID] = v
}

// Sort sets the sort order and returns the new visible row order.
// An empty keys slice restores load order.
func (d *Dataset) Sort(keys []grid.SortKey) []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sort = append([]grid.SortKey(nil), keys...)
	d.order = sortedIDs(d.rows, d.sort)
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// Apply writes a set of cell values, typically replayed from a commit log.
// It returns how many cells matched a known row.
func (d *Dataset) Apply(values map[grid.CellAddress]any) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for addr, v := range values {
		i, ok := d.index[addr.RowID]
		if !ok {
			continue
		}
		d.rows[i].Values[addr.ColumnID] = v
		n++
	}
	return n
}
