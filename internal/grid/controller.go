package grid

import (
	"go.uber.org/zap"

	"github.com/muurk/budgetgrid/internal/logging"
)

// session is one open editor
type session struct {
	id       uint64
	addr     CellAddress
	editor   Editor
	original any
	// entered is the editor text right after an EntryExisting open; empty
	// for typed or cleared entries
	entered  string
	existing bool
}

// ControllerOption configures a Controller
type ControllerOption func(*Controller)

// WithScroller sets the component that brings focused rows into view
func WithScroller(s Scroller) ControllerOption {
	return func(c *Controller) {
		c.scroller = s
	}
}

// WithPageSize sets the row count moved by PageUp/PageDown
func WithPageSize(fn func() int) ControllerOption {
	return func(c *Controller) {
		c.pageSize = fn
	}
}

// Controller is the cell editing state machine for one table. It owns the
// only active editor, so at most one cell is ever in CellEditing.
type Controller struct {
	store    *Store
	columns  map[string]Column
	order    []Column
	values   ValueSource
	sink     CommitSink
	scroller Scroller
	pageSize func() int

	active    *session
	sessions  uint64
	commitSeq uint64
	// inflight maps a cell to its newest unacknowledged commit
	inflight map[CellAddress]uint64
	lastErr  error
}

// NewController wires a controller to its store and collaborators and
// publishes the column order to the store.
func NewController(store *Store, columns []Column, values ValueSource, sink CommitSink, opts ...ControllerOption) *Controller {
	c := &Controller{
		store:    store,
		columns:  make(map[string]Column, len(columns)),
		order:    OrderColumns(columns),
		values:   values,
		sink:     sink,
		pageSize: func() int { return 10 },
		inflight: make(map[CellAddress]uint64),
	}
	for _, col := range columns {
		c.columns[col.ID] = col
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.sink == nil {
		c.sink = CommitFunc(func(CommitIntent) {})
	}
	store.SetColumns(ColumnIDs(c.order))
	return c
}

// Store returns the table state store
func (c *Controller) Store() *Store {
	return c.store
}

// Columns returns the columns in render order
func (c *Controller) Columns() []Column {
	out := make([]Column, len(c.order))
	copy(out, c.order)
	return out
}

// Column looks up a column declaration
func (c *Controller) Column(id string) (Column, bool) {
	col, ok := c.columns[id]
	return col, ok
}

// State returns the state of addr
func (c *Controller) State(addr CellAddress) CellState {
	return c.store.Snapshot().StateOf(addr)
}

// ActiveEditor returns the open editor and the cell it edits
func (c *Controller) ActiveEditor() (Editor, CellAddress, bool) {
	if c.active == nil {
		return nil, CellAddress{}, false
	}
	return c.active.editor, c.active.addr, true
}

// Display returns the text a cell shows: the pending text while editing,
// the stored value otherwise.
func (c *Controller) Display(addr CellAddress) string {
	if c.active != nil && c.active.addr == addr {
		return c.active.editor.Text()
	}
	v, _ := c.values.Value(addr)
	if col, ok := c.columns[addr.ColumnID]; ok && col.EditorType == EditorCheckbox {
		if ToBool(v) {
			return "[x]"
		}
		return "[ ]"
	}
	return FormatValue(v)
}

// LastError returns the most recent validation or commit problem
func (c *Controller) LastError() error {
	return c.lastErr
}

// ClearError forgets LastError
func (c *Controller) ClearError() {
	c.lastErr = nil
}

// Pending reports how many commits await acknowledgement
func (c *Controller) Pending() int {
	return len(c.inflight)
}

func (c *Controller) editable(addr CellAddress) bool {
	col, ok := c.columns[addr.ColumnID]
	return ok && col.Editable
}

// Click handles a pointer press on addr. Shift extends the selection from
// the focused row; ctrl/cmd toggles the row; a plain click replaces the
// selection and focuses the cell.
func (c *Controller) Click(addr CellAddress, mod Modifier) {
	if c.active != nil && c.active.addr == addr {
		return
	}
	c.resolveActive()

	switch {
	case mod&ModShift != 0:
		c.store.SelectRange(addr.RowID)
		return
	case mod&(ModCtrl|ModMeta) != 0:
		c.store.ToggleRowSelection(addr.RowID)
	default:
		c.store.SelectRows([]string{addr.RowID})
	}
	c.focus(addr)
}

// DoubleClick focuses addr and opens its editor with the existing value
func (c *Controller) DoubleClick(addr CellAddress) {
	if c.active != nil && c.active.addr == addr {
		return
	}
	c.Click(addr, ModNone)
	c.StartEdit(addr, Entry{Mode: EntryExisting})
}

func (c *Controller) focus(addr CellAddress) {
	if err := c.store.SetFocusedCell(addr); err != nil {
		logging.Debug("Focus rejected", zap.String("cell", addr.String()), zap.Error(err))
		return
	}
	c.reveal(addr)
}

func (c *Controller) reveal(addr CellAddress) {
	if c.scroller == nil {
		return
	}
	if idx, ok := c.store.Snapshot().RowIndex(addr.RowID); ok {
		c.scroller.EnsureVisible(idx)
	}
}

// HandleKey routes a key press: to the active editor while editing,
// otherwise through the trigger table and focus navigation. It reports
// whether the key was consumed.
func (c *Controller) HandleKey(ev KeyEvent) bool {
	if c.active != nil {
		c.apply(c.active, c.active.editor.HandleKey(ev))
		return true
	}

	snap := c.store.Snapshot()
	focused, ok := snap.Focused()
	if !ok {
		if FocusNavigation(ev) != NavNone {
			c.navigate(NavFirstRow)
			return true
		}
		return false
	}

	if c.editable(focused) {
		if entry, ok := ClassifyTrigger(ev); ok {
			c.StartEdit(focused, entry)
			return true
		}
	}

	if ev.Key == KeyEscape {
		c.store.ClearSelection()
		return true
	}

	if dir := FocusNavigation(ev); dir != NavNone {
		c.navigate(dir)
		return true
	}
	return false
}

// StartEdit opens the editor for addr. Any edit in progress elsewhere is
// committed first. Non-editable cells are ignored.
func (c *Controller) StartEdit(addr CellAddress, entry Entry) bool {
	if c.active != nil {
		if c.active.addr == addr {
			return false
		}
		c.resolveActive()
	}
	if !c.editable(addr) {
		return false
	}
	value, ok := c.values.Value(addr)
	if !ok {
		c.lastErr = NewStaleReferenceError(addr)
		return false
	}
	if err := c.store.StartEditing(addr); err != nil {
		c.lastErr = err
		return false
	}

	editor := c.columns[addr.ColumnID].NewEditor()
	editor.Enter(value, entry)

	c.sessions++
	c.active = &session{id: c.sessions, addr: addr, editor: editor, original: value}
	if entry.Mode == EntryExisting {
		c.active.existing, c.active.entered = true, editor.Text()
	}
	c.lastErr = nil
	c.reveal(addr)
	logging.LogTransition(addr.String(), CellFocused.String(), CellEditing.String())
	return true
}

// Blur tells the controller that focus left the editor of addr. A blur for
// an edit that has already finished is ignored.
func (c *Controller) Blur(addr CellAddress) {
	if c.active == nil || c.active.addr != addr {
		return
	}
	c.apply(c.active, c.active.editor.Blur())
}

// CommitActive commits the open editor without navigating
func (c *Controller) CommitActive() {
	if c.active == nil {
		return
	}
	c.apply(c.active, c.active.editor.Commit(NavNone))
}

// CancelActive cancels the open editor
func (c *Controller) CancelActive() {
	if c.active == nil {
		return
	}
	c.apply(c.active, c.active.editor.Cancel())
}

// resolveActive finishes an edit before another cell takes over. Editors
// that refuse to commit on blur are cancelled so no edit is left dangling.
func (c *Controller) resolveActive() {
	if c.active == nil {
		return
	}
	s := c.active
	c.apply(s, s.editor.Blur())
	if c.active == s {
		c.apply(s, s.editor.Cancel())
	}
}

// apply acts on an editor outcome for session s. Outcomes for sessions that
// are no longer active are dropped.
func (c *Controller) apply(s *session, out Outcome) {
	if c.active != s {
		return
	}
	switch out.Action {
	case ActionNone:
		if out.Err != nil {
			c.lastErr = out.Err
		}
		return

	case ActionCommit:
		c.active = nil
		c.commitSeq++
		intent := CommitIntent{
			Seq:      c.commitSeq,
			Address:  s.addr,
			Value:    out.Value,
			Previous: s.original,
		}
		c.values.SetValue(s.addr, out.Value)
		c.inflight[s.addr] = intent.Seq
		c.sink.Commit(intent)
		c.store.StopEditing()
		logging.LogCommit(s.addr.String(), intent.Seq, out.Value)
		logging.LogTransition(s.addr.String(), CellEditing.String(), CellFocused.String())
		if out.Nav != NavNone {
			c.navigate(out.Nav)
		}

	case ActionCancel:
		c.active = nil
		c.lastErr = out.Err
		c.store.StopEditing()
		logging.LogTransition(s.addr.String(), CellEditing.String(), CellFocused.String())
	}
}

func (c *Controller) navigate(dir Direction) {
	if target, ok := c.store.Navigate(dir, c.pageSize()); ok {
		c.reveal(target)
	}
}

// ApplyRevert restores the value a failed commit replaced. It applies even
// when another cell is being edited, and is ignored when a newer commit for
// the same cell has been issued since. An open editor on the cell picks up
// the restored value unless the user has already changed its text. It
// reports whether the value changed.
func (c *Controller) ApplyRevert(r Revert) bool {
	seq, ok := c.inflight[r.Address]
	if !ok || seq != r.Seq {
		logging.Debug("Ignoring stale revert",
			zap.String("cell", r.Address.String()),
			zap.Uint64("seq", r.Seq),
		)
		return false
	}
	delete(c.inflight, r.Address)
	c.values.SetValue(r.Address, r.Value)
	if s := c.active; s != nil && s.addr == r.Address {
		// The open editor started from the rejected value
		s.original = r.Value
		if s.existing && s.editor.Text() == s.entered {
			s.editor.Enter(r.Value, Entry{Mode: EntryExisting})
			s.entered = s.editor.Text()
		}
	}
	c.lastErr = NewCommitError(r.Address, r.Reason)
	logging.LogRevert(r.Address.String(), r.Seq, r.Reason)
	return true
}

// ApplyAck records that the commit seq for addr was persisted
func (c *Controller) ApplyAck(addr CellAddress, seq uint64) {
	if c.inflight[addr] == seq {
		delete(c.inflight, addr)
	}
}

// ReplaceRows swaps in a new visible row order, for example after a
// refetch. An edit on a row that disappeared is cancelled.
func (c *Controller) ReplaceRows(ids []string) {
	if c.active != nil {
		found := false
		for _, id := range ids {
			if id == c.active.addr.RowID {
				found = true
				break
			}
		}
		if !found {
			s := c.active
			c.apply(s, s.editor.Cancel())
			c.lastErr = NewStaleReferenceError(s.addr)
		}
	}
	c.store.SetRows(ids)
}
