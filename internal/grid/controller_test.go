package grid

import (
	"reflect"
	"testing"
)

type memValues map[CellAddress]any

func (m memValues) Value(addr CellAddress) (any, bool) {
	v, ok := m[addr]
	return v, ok
}

func (m memValues) SetValue(addr CellAddress, v any) {
	m[addr] = v
}

type recordingSink struct {
	intents []CommitIntent
}

func (s *recordingSink) Commit(intent CommitIntent) {
	s.intents = append(s.intents, intent)
}

type recordingScroller struct {
	indexes []int
}

func (s *recordingScroller) EnsureVisible(index int) {
	s.indexes = append(s.indexes, index)
}

func at(row, col string) CellAddress {
	return CellAddress{RowID: row, ColumnID: col}
}

type fixture struct {
	ctrl     *Controller
	store    *Store
	values   memValues
	sink     *recordingSink
	scroller *recordingScroller
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	columns := []Column{
		{ID: "id", Title: "ID", Editable: false, Pinned: PinLeft},
		{ID: "city", Title: "City", Editable: true, EditorType: EditorText},
		{ID: "amount", Title: "Amount", Editable: true, EditorType: EditorNumber, Min: floatPtr(0)},
		{ID: "paid", Title: "Paid", Editable: true, EditorType: EditorCheckbox},
		{ID: "meta", Title: "Meta", Editable: true, EditorType: EditorLargeText, ValidateJSON: true},
	}
	values := memValues{}
	rows := []string{"r1", "r2", "r3", "r4"}
	for _, id := range rows {
		values[at(id, "id")] = id
		values[at(id, "city")] = "Paris"
		values[at(id, "amount")] = 42.0
		values[at(id, "paid")] = false
		values[at(id, "meta")] = "{}"
	}

	store := NewStore()
	store.SetRows(rows)
	sink := &recordingSink{}
	scroller := &recordingScroller{}
	ctrl := NewController(store, columns, values, sink,
		WithScroller(scroller),
		WithPageSize(func() int { return 2 }),
	)
	return &fixture{ctrl: ctrl, store: store, values: values, sink: sink, scroller: scroller}
}

func (f *fixture) focus(t *testing.T, addr CellAddress) {
	t.Helper()
	f.ctrl.Click(addr, ModNone)
	if got, _ := f.store.Snapshot().Focused(); got != addr {
		t.Fatalf("focus %v failed, focused = %v", addr, got)
	}
}

func (f *fixture) checkInvariants(t *testing.T) {
	t.Helper()
	if err := f.store.Snapshot().CheckInvariants(); err != nil {
		t.Fatal(err)
	}
}

func TestControllerTypeToEdit(t *testing.T) {
	f := newFixture(t)
	f.focus(t, at("r1", "city"))

	if !f.ctrl.HandleKey(Rune('x')) {
		t.Fatal("typed key was not consumed")
	}
	editor, addr, ok := f.ctrl.ActiveEditor()
	if !ok || addr != at("r1", "city") {
		t.Fatalf("ActiveEditor() = %v, %v", addr, ok)
	}
	if editor.Text() != "x" {
		t.Errorf("editor text = %q, want %q", editor.Text(), "x")
	}
	if f.ctrl.State(addr) != CellEditing {
		t.Errorf("State() = %s, want editing", f.ctrl.State(addr))
	}
	f.checkInvariants(t)
}

func TestControllerBackspaceOpensEmptyNumber(t *testing.T) {
	f := newFixture(t)
	f.focus(t, at("r2", "amount"))
	f.ctrl.HandleKey(Press(KeyBackspace))

	editor, _, ok := f.ctrl.ActiveEditor()
	if !ok {
		t.Fatal("backspace should open the editor")
	}
	if editor.Type() != EditorNumber || editor.Text() != "" {
		t.Errorf("editor = %s %q, want number with empty text", editor.Type(), editor.Text())
	}
}

func TestControllerF2AndEnterOpenExisting(t *testing.T) {
	for _, ev := range []KeyEvent{Press(KeyF2), Press(KeyEnter)} {
		f := newFixture(t)
		f.focus(t, at("r1", "city"))
		f.ctrl.HandleKey(ev)
		editor, _, ok := f.ctrl.ActiveEditor()
		if !ok || editor.Text() != "Paris" || !editor.Selected() {
			t.Errorf("key %+v: editor open=%v text=%q, want Paris selected", ev, ok, editor.Text())
		}
	}
}

func TestControllerReadOnlyCellIgnoresTriggers(t *testing.T) {
	f := newFixture(t)
	f.focus(t, at("r1", "id"))
	f.ctrl.HandleKey(Rune('x'))
	f.ctrl.HandleKey(Press(KeyF2))
	f.ctrl.DoubleClick(at("r1", "id"))

	if _, _, ok := f.ctrl.ActiveEditor(); ok {
		t.Error("read-only cell must never enter editing")
	}
	if _, ok := f.store.Snapshot().Editing(); ok {
		t.Error("store should have no editing cell")
	}
}

func TestControllerTabCommitsAndMovesOnce(t *testing.T) {
	f := newFixture(t)
	f.focus(t, at("r1", "city"))
	f.ctrl.HandleKey(Rune('L'))
	typeText(activeEditor(t, f.ctrl), "yon")
	f.ctrl.HandleKey(Press(KeyTab))

	snap := f.store.Snapshot()
	if got, _ := snap.Focused(); got != at("r1", "amount") {
		t.Errorf("focused = %v, want r1/amount", got)
	}
	if _, ok := snap.Editing(); ok {
		t.Error("editing should be cleared after Tab")
	}
	if len(f.sink.intents) != 1 {
		t.Fatalf("sink received %d commits, want 1", len(f.sink.intents))
	}
	got := f.sink.intents[0]
	if got.Address != at("r1", "city") || got.Value != "Lyon" || got.Previous != "Paris" {
		t.Errorf("commit = %+v", got)
	}
	f.checkInvariants(t)
}

func activeEditor(t *testing.T, c *Controller) Editor {
	t.Helper()
	e, _, ok := c.ActiveEditor()
	if !ok {
		t.Fatal("no active editor")
	}
	return e
}

func TestControllerEnterCommitsDown(t *testing.T) {
	f := newFixture(t)
	f.focus(t, at("r2", "amount"))
	f.ctrl.HandleKey(Rune('7'))
	f.ctrl.HandleKey(Press(KeyEnter))

	if got, _ := f.store.Snapshot().Focused(); got != at("r3", "amount") {
		t.Errorf("focused = %v, want r3/amount", got)
	}
	if f.values[at("r2", "amount")] != 7.0 {
		t.Errorf("value = %v, want 7", f.values[at("r2", "amount")])
	}
}

func TestControllerEscapeLeavesValueUnchanged(t *testing.T) {
	f := newFixture(t)
	f.focus(t, at("r1", "city"))
	f.ctrl.HandleKey(Rune('x'))
	f.ctrl.HandleKey(Press(KeyEscape))

	if f.values[at("r1", "city")] != "Paris" {
		t.Errorf("value = %v, want Paris", f.values[at("r1", "city")])
	}
	if len(f.sink.intents) != 0 {
		t.Errorf("sink received %d commits, want 0", len(f.sink.intents))
	}
	if got := f.ctrl.State(at("r1", "city")); got != CellFocused {
		t.Errorf("State() = %s, want focused", got)
	}
}

func TestControllerEscapeWithoutEditorClearsSelection(t *testing.T) {
	f := newFixture(t)
	f.focus(t, at("r1", "city"))
	f.ctrl.HandleKey(Press(KeyEscape))
	if n := f.store.Snapshot().SelectionCount(); n != 0 {
		t.Errorf("SelectionCount() = %d, want 0", n)
	}
}

func TestControllerRoundTrip(t *testing.T) {
	f := newFixture(t)
	addr := at("r3", "city")
	f.focus(t, addr)
	f.ctrl.HandleKey(Press(KeyBackspace))
	typeText(activeEditor(t, f.ctrl), "Oslo")
	f.ctrl.CommitActive()

	f.ctrl.HandleKey(Press(KeyF2))
	if got := activeEditor(t, f.ctrl).Text(); got != "Oslo" {
		t.Errorf("reopened editor text = %q, want Oslo", got)
	}
	if got := f.ctrl.Display(addr); got != "Oslo" {
		t.Errorf("Display() = %q, want Oslo", got)
	}
}

func TestControllerCommitIsIdempotent(t *testing.T) {
	f := newFixture(t)
	addr := at("r1", "city")
	f.focus(t, addr)
	f.ctrl.HandleKey(Rune('x'))

	// Tab and the blur it causes arrive back to back
	f.ctrl.HandleKey(Press(KeyTab))
	f.ctrl.Blur(addr)
	f.ctrl.CommitActive()
	f.ctrl.CancelActive()

	if len(f.sink.intents) != 1 {
		t.Errorf("sink received %d commits, want 1", len(f.sink.intents))
	}
	if got, _ := f.store.Snapshot().Focused(); got != at("r1", "amount") {
		t.Errorf("focused = %v, want r1/amount", got)
	}
}

func TestControllerBlurCommits(t *testing.T) {
	f := newFixture(t)
	addr := at("r1", "city")
	f.focus(t, addr)
	f.ctrl.HandleKey(Rune('Q'))
	f.ctrl.Blur(at("r2", "city")) // not the active cell
	if _, _, ok := f.ctrl.ActiveEditor(); !ok {
		t.Fatal("blur for another cell must be ignored")
	}
	f.ctrl.Blur(addr)
	if f.values[addr] != "Q" {
		t.Errorf("value = %v, want Q", f.values[addr])
	}
	if got, _ := f.store.Snapshot().Focused(); got != addr {
		t.Errorf("blur must not navigate, focused = %v", got)
	}
}

func TestControllerClickElsewhereCommitsFirst(t *testing.T) {
	f := newFixture(t)
	f.focus(t, at("r1", "city"))
	f.ctrl.HandleKey(Rune('B'))
	f.ctrl.Click(at("r4", "amount"), ModNone)

	if f.values[at("r1", "city")] != "B" {
		t.Errorf("value = %v, want B", f.values[at("r1", "city")])
	}
	if got, _ := f.store.Snapshot().Focused(); got != at("r4", "amount") {
		t.Errorf("focused = %v, want r4/amount", got)
	}
	f.checkInvariants(t)
}

func TestControllerClickAwayFromInvalidJSONCancels(t *testing.T) {
	f := newFixture(t)
	addr := at("r1", "meta")
	f.focus(t, addr)
	f.ctrl.HandleKey(Rune('{'))
	f.ctrl.Click(at("r2", "city"), ModNone)

	if f.values[addr] != "{}" {
		t.Errorf("value = %v, want the original {}", f.values[addr])
	}
	if len(f.sink.intents) != 0 {
		t.Errorf("sink received %d commits, want 0", len(f.sink.intents))
	}
	if _, _, ok := f.ctrl.ActiveEditor(); ok {
		t.Error("no editor should remain open")
	}
}

func TestControllerJSONCommitBlocked(t *testing.T) {
	f := newFixture(t)
	addr := at("r2", "meta")
	f.focus(t, addr)
	f.ctrl.HandleKey(Press(KeyBackspace))
	typeText(activeEditor(t, f.ctrl), `{"a":1`)

	f.ctrl.HandleKey(Press(KeyEnter, ModCtrl))
	if f.ctrl.State(addr) != CellEditing {
		t.Fatal("invalid JSON must keep the cell editing")
	}
	if !IsValidationError(f.ctrl.LastError()) {
		t.Errorf("LastError() = %v, want validation error", f.ctrl.LastError())
	}

	f.ctrl.HandleKey(Rune('}'))
	f.ctrl.HandleKey(Press(KeyEnter, ModCtrl))
	if f.values[addr] != `{"a":1}` {
		t.Errorf("value = %v, want {\"a\":1}", f.values[addr])
	}
	if got, _ := f.store.Snapshot().Focused(); got != at("r3", "meta") {
		t.Errorf("focused = %v, want r3/meta", got)
	}
}

func TestControllerCheckboxSpace(t *testing.T) {
	f := newFixture(t)
	addr := at("r1", "paid")
	f.focus(t, addr)
	f.ctrl.HandleKey(Rune(' '))
	if got := f.ctrl.Display(addr); got != "[x]" {
		t.Errorf("Display() while editing = %q, want [x]", got)
	}
	f.ctrl.HandleKey(Press(KeyEnter))
	if f.values[addr] != true {
		t.Errorf("value = %v, want true", f.values[addr])
	}
}

func TestControllerRequiredValidationMessage(t *testing.T) {
	f := newFixture(t)
	f.ctrl = NewController(f.store, []Column{
		{ID: "city", Editable: true, EditorType: EditorText, Required: true},
	}, f.values, f.sink)
	addr := at("r1", "city")
	f.focus(t, addr)
	f.ctrl.HandleKey(Press(KeyDelete))
	f.ctrl.HandleKey(Press(KeyEnter))

	if !IsValidationError(f.ctrl.LastError()) {
		t.Errorf("LastError() = %v, want validation error", f.ctrl.LastError())
	}
	if f.values[addr] != "Paris" {
		t.Errorf("value = %v, want Paris", f.values[addr])
	}
}

func TestControllerClickSelection(t *testing.T) {
	tests := []struct {
		name   string
		first  string
		second string
		mod    Modifier
		want   []string
		focus  string
	}{
		{"plain click replaces", "r1", "r3", ModNone, []string{"r3"}, "r3"},
		{"shift click down", "r1", "r3", ModShift, []string{"r1", "r2", "r3"}, "r1"},
		{"shift click up", "r4", "r2", ModShift, []string{"r2", "r3", "r4"}, "r4"},
		{"ctrl click adds", "r1", "r3", ModCtrl, []string{"r1", "r3"}, "r3"},
		{"cmd click removes", "r1", "r1", ModMeta, []string{}, "r1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.ctrl.Click(at(tt.first, "city"), ModNone)
			f.ctrl.Click(at(tt.second, "city"), tt.mod)

			snap := f.store.Snapshot()
			if got := snap.SelectedIDs(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SelectedIDs() = %v, want %v", got, tt.want)
			}
			if got, _ := snap.Focused(); got.RowID != tt.focus {
				t.Errorf("focused row = %q, want %q", got.RowID, tt.focus)
			}
		})
	}
}

func TestControllerDoubleClick(t *testing.T) {
	f := newFixture(t)
	f.ctrl.DoubleClick(at("r2", "city"))
	e, addr, ok := f.ctrl.ActiveEditor()
	if !ok || addr != at("r2", "city") || !e.Selected() {
		t.Errorf("DoubleClick() should open r2/city with the value selected")
	}
}

func TestControllerNavigationWithoutFocus(t *testing.T) {
	f := newFixture(t)
	f.ctrl.HandleKey(Press(KeyDown))
	if got, _ := f.store.Snapshot().Focused(); got != at("r1", "id") {
		t.Errorf("focused = %v, want r1/id", got)
	}
	if f.ctrl.HandleKey(Rune('x')) {
		t.Error("typing on the read-only id column should not be consumed")
	}
}

func TestControllerPageDownRevealsRow(t *testing.T) {
	f := newFixture(t)
	f.focus(t, at("r1", "city"))
	f.ctrl.HandleKey(Press(KeyPageDown))

	if got, _ := f.store.Snapshot().Focused(); got != at("r3", "city") {
		t.Errorf("focused = %v, want r3/city", got)
	}
	if n := len(f.scroller.indexes); n == 0 || f.scroller.indexes[n-1] != 2 {
		t.Errorf("scroller indexes = %v, want last 2", f.scroller.indexes)
	}
}

func TestControllerRevert(t *testing.T) {
	f := newFixture(t)
	addr := at("r1", "amount")
	f.focus(t, addr)
	f.ctrl.HandleKey(Rune('9'))
	f.ctrl.CommitActive()
	intent := f.sink.intents[0]

	if f.ctrl.Pending() != 1 {
		t.Fatalf("Pending() = %d, want 1", f.ctrl.Pending())
	}
	// Editing another cell does not block the revert
	f.ctrl.DoubleClick(at("r2", "city"))

	if !f.ctrl.ApplyRevert(Revert{Seq: intent.Seq, Address: addr, Value: intent.Previous, Reason: "disk full"}) {
		t.Fatal("ApplyRevert() = false, want true")
	}
	if f.values[addr] != 42.0 {
		t.Errorf("value = %v, want 42", f.values[addr])
	}
	if !IsCommitError(f.ctrl.LastError()) {
		t.Errorf("LastError() = %v, want commit error", f.ctrl.LastError())
	}
	if _, _, ok := f.ctrl.ActiveEditor(); !ok {
		t.Error("revert must not close the other editor")
	}
	if f.ctrl.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", f.ctrl.Pending())
	}
}

func TestControllerRevertRefreshesOpenEditor(t *testing.T) {
	f := newFixture(t)
	addr := at("r1", "city")
	f.focus(t, addr)
	f.ctrl.HandleKey(Rune('L'))
	f.ctrl.CommitActive()
	first := f.sink.intents[0]

	f.ctrl.HandleKey(Press(KeyF2))
	if !f.ctrl.ApplyRevert(Revert{Seq: first.Seq, Address: addr, Value: first.Previous, Reason: "rejected"}) {
		t.Fatal("ApplyRevert() = false, want true")
	}
	editor, _, ok := f.ctrl.ActiveEditor()
	if !ok {
		t.Fatal("revert must not close the editor")
	}
	if got := editor.Text(); got != "Paris" {
		t.Errorf("editor text = %q, want Paris", got)
	}
	if !IsCommitError(f.ctrl.LastError()) {
		t.Errorf("LastError() = %v, want commit error", f.ctrl.LastError())
	}

	f.ctrl.CommitActive()
	second := f.sink.intents[1]
	if second.Previous != "Paris" {
		t.Errorf("second Previous = %v, want Paris", second.Previous)
	}
	f.ctrl.ApplyRevert(Revert{Seq: second.Seq, Address: addr, Value: second.Previous})
	if f.values[addr] != "Paris" {
		t.Errorf("value = %v, want Paris", f.values[addr])
	}
}

func TestControllerRevertKeepsTypedText(t *testing.T) {
	f := newFixture(t)
	addr := at("r1", "city")
	f.focus(t, addr)
	f.ctrl.HandleKey(Rune('L'))
	f.ctrl.CommitActive()
	first := f.sink.intents[0]

	f.ctrl.HandleKey(Press(KeyF2))
	f.ctrl.HandleKey(Rune('X'))
	f.ctrl.ApplyRevert(Revert{Seq: first.Seq, Address: addr, Value: first.Previous})

	editor, _, _ := f.ctrl.ActiveEditor()
	if got := editor.Text(); got != "X" {
		t.Errorf("editor text = %q, want the typed X", got)
	}
	f.ctrl.CommitActive()
	second := f.sink.intents[1]
	if second.Value != "X" || second.Previous != "Paris" {
		t.Errorf("second intent = %+v, want X over Paris", second)
	}
}

func TestControllerStaleRevertIgnored(t *testing.T) {
	f := newFixture(t)
	addr := at("r1", "amount")
	f.focus(t, addr)

	f.ctrl.HandleKey(Rune('1'))
	f.ctrl.CommitActive()
	first := f.sink.intents[0]

	f.ctrl.HandleKey(Rune('2'))
	f.ctrl.CommitActive()

	if f.ctrl.ApplyRevert(Revert{Seq: first.Seq, Address: addr, Value: first.Previous}) {
		t.Error("revert of a superseded commit should be ignored")
	}
	if f.values[addr] != 2.0 {
		t.Errorf("value = %v, want 2", f.values[addr])
	}
}

func TestControllerAck(t *testing.T) {
	f := newFixture(t)
	addr := at("r1", "city")
	f.focus(t, addr)
	f.ctrl.HandleKey(Rune('a'))
	f.ctrl.CommitActive()
	seq := f.sink.intents[0].Seq

	f.ctrl.ApplyAck(addr, seq)
	if f.ctrl.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", f.ctrl.Pending())
	}
	if f.ctrl.ApplyRevert(Revert{Seq: seq, Address: addr, Value: "Paris"}) {
		t.Error("revert after ack should be ignored")
	}
}

func TestControllerCommitSequenceIncreases(t *testing.T) {
	f := newFixture(t)
	f.focus(t, at("r1", "city"))
	for _, r := range "abc" {
		f.ctrl.HandleKey(Rune(r))
		f.ctrl.HandleKey(Press(KeyEnter))
	}
	var last uint64
	for _, in := range f.sink.intents {
		if in.Seq <= last {
			t.Fatalf("sequence %d after %d", in.Seq, last)
		}
		last = in.Seq
	}
	if len(f.sink.intents) != 3 {
		t.Errorf("got %d commits, want 3", len(f.sink.intents))
	}
}

func TestControllerReplaceRowsCancelsOrphanedEdit(t *testing.T) {
	f := newFixture(t)
	f.focus(t, at("r4", "city"))
	f.ctrl.HandleKey(Rune('z'))

	f.ctrl.ReplaceRows([]string{"r1", "r2"})

	if _, _, ok := f.ctrl.ActiveEditor(); ok {
		t.Error("edit on a removed row should be cancelled")
	}
	if !IsStaleReference(f.ctrl.LastError()) {
		t.Errorf("LastError() = %v, want stale reference", f.ctrl.LastError())
	}
	if len(f.sink.intents) != 0 {
		t.Errorf("sink received %d commits, want 0", len(f.sink.intents))
	}
	f.checkInvariants(t)
}

func TestControllerReplaceRowsKeepsSurvivingEdit(t *testing.T) {
	f := newFixture(t)
	f.focus(t, at("r2", "city"))
	f.ctrl.HandleKey(Rune('z'))

	f.ctrl.ReplaceRows([]string{"r2", "r1"})
	if _, addr, ok := f.ctrl.ActiveEditor(); !ok || addr != at("r2", "city") {
		t.Error("edit on a surviving row should stay open")
	}
	if i, _ := f.store.Snapshot().RowIndex("r2"); i != 0 {
		t.Errorf("RowIndex(r2) = %d, want 0", i)
	}
}

func TestControllerPinnedColumnsLeadNavigation(t *testing.T) {
	f := newFixture(t)
	if got := ColumnIDs(f.ctrl.Columns()); got[0] != "id" {
		t.Errorf("first column = %q, want the left-pinned id", got[0])
	}
}
