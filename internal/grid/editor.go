package grid

import (
	"fmt"
	"strconv"
)

// EntryMode says how an editor was opened
type EntryMode int

const (
	// EntryExisting opens with the cell's value, fully selected
	EntryExisting EntryMode = iota
	// EntryTyped opens with Key replacing the value, caret at the end
	EntryTyped
	// EntryClear opens with an explicitly empty value, caret at the end
	EntryClear
)

// Entry carries the trigger that opened an editor
type Entry struct {
	Mode EntryMode
	Key  string
}

// Action is what an editor reports back to the controller
type Action int

const (
	ActionNone Action = iota
	ActionCommit
	ActionCancel
)

// String returns the action name
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionCommit:
		return "commit"
	case ActionCancel:
		return "cancel"
	default:
		return fmt.Sprintf("Action(%d)", a)
	}
}

// Outcome is the result of feeding an event to an editor. Once an editor has
// reported ActionCommit or ActionCancel it is closed and every later call
// returns the zero Outcome.
type Outcome struct {
	Action Action
	Value  any
	Nav    Direction
	// Err explains a validation cancel or a blocked commit
	Err error
}

// Editor is a typed cell editor. Editors own the pending value and never
// touch table state directly.
type Editor interface {
	// Type returns the variant
	Type() EditorType
	// Enter opens the editor on value. This is where focus and the initial
	// selection or caret placement happen.
	Enter(value any, entry Entry)
	// HandleKey feeds one key press
	HandleKey(ev KeyEvent) Outcome
	// Blur commits without navigation
	Blur() Outcome
	// Commit commits the pending value and requests nav afterwards
	Commit(nav Direction) Outcome
	// Cancel discards the pending value
	Cancel() Outcome
	// Open reports whether the editor still accepts input
	Open() bool
	// Text is the pending value as displayed
	Text() string
	// Caret is the caret position in runes
	Caret() int
	// Selected reports whether the whole text is selected
	Selected() bool
	// Err returns an inline validation message, or ""
	Err() string
}

// lifecycle guards the single commit/cancel of an editor session
type lifecycle struct {
	open bool
}

func (l *lifecycle) start() { l.open = true }

func (l *lifecycle) Open() bool { return l.open }

func (l *lifecycle) finish(o Outcome) Outcome {
	if !l.open {
		return Outcome{}
	}
	l.open = false
	return o
}

// protocolKey applies the navigation contract shared by all editors.
// handled is false for keys the variant must interpret itself.
func protocolKey(ev KeyEvent) (action Action, nav Direction, handled bool) {
	switch ev.Key {
	case KeyEscape:
		return ActionCancel, NavNone, true
	case KeyTab:
		if ev.Shift() {
			return ActionCommit, NavPrev, true
		}
		return ActionCommit, NavNext, true
	case KeyEnter:
		if ev.Command() || ev.Alt() {
			return ActionNone, NavNone, false
		}
		if ev.Shift() {
			return ActionCommit, NavUp, true
		}
		return ActionCommit, NavDown, true
	}
	return ActionNone, NavNone, false
}

// textBuffer is the rune buffer behind the free-text editors
type textBuffer struct {
	runes     []rune
	caret     int
	selectAll bool
	maxLength int
}

// set replaces the text. maxLength caps insertion only, so an existing
// value longer than the cap survives an unchanged commit.
func (b *textBuffer) set(s string, selectAll bool) {
	b.runes = []rune(s)
	b.caret = len(b.runes)
	b.selectAll = selectAll && len(b.runes) > 0
}

func (b *textBuffer) String() string {
	return string(b.runes)
}

func (b *textBuffer) clearSelection() bool {
	if !b.selectAll {
		return false
	}
	b.runes = b.runes[:0]
	b.caret = 0
	b.selectAll = false
	return true
}

func (b *textBuffer) insert(r rune) bool {
	b.clearSelection()
	if b.maxLength > 0 && len(b.runes) >= b.maxLength {
		return false
	}
	b.runes = append(b.runes, 0)
	copy(b.runes[b.caret+1:], b.runes[b.caret:])
	b.runes[b.caret] = r
	b.caret++
	return true
}

func (b *textBuffer) backspace() bool {
	if b.clearSelection() {
		return true
	}
	if b.caret == 0 {
		return false
	}
	b.runes = append(b.runes[:b.caret-1], b.runes[b.caret:]...)
	b.caret--
	return true
}

func (b *textBuffer) deleteForward() bool {
	if b.clearSelection() {
		return true
	}
	if b.caret >= len(b.runes) {
		return false
	}
	b.runes = append(b.runes[:b.caret], b.runes[b.caret+1:]...)
	return true
}

func (b *textBuffer) moveTo(pos int) {
	b.selectAll = false
	b.caret = clamp(pos, 0, len(b.runes))
}

// lineStart returns the index of the first rune of the caret's line
func (b *textBuffer) lineStart() int {
	i := b.caret
	for i > 0 && b.runes[i-1] != '\n' {
		i--
	}
	return i
}

// lineEnd returns the index of the newline ending the caret's line
func (b *textBuffer) lineEnd() int {
	i := b.caret
	for i < len(b.runes) && b.runes[i] != '\n' {
		i++
	}
	return i
}

// editKey applies caret and deletion keys. changed reports a content change.
func (b *textBuffer) editKey(ev KeyEvent, multiline bool) (handled, changed bool) {
	switch ev.Key {
	case KeyRune:
		if ev.Ctrl() || ev.Meta() {
			return false, false
		}
		return true, b.insert(ev.Rune)
	case KeyBackspace:
		return true, b.backspace()
	case KeyDelete:
		return true, b.deleteForward()
	case KeyLeft:
		if b.selectAll {
			b.moveTo(0)
		} else {
			b.moveTo(b.caret - 1)
		}
		return true, false
	case KeyRight:
		if b.selectAll {
			b.moveTo(len(b.runes))
		} else {
			b.moveTo(b.caret + 1)
		}
		return true, false
	case KeyHome:
		if multiline && !ev.Command() {
			b.moveTo(b.lineStart())
		} else {
			b.moveTo(0)
		}
		return true, false
	case KeyEnd:
		if multiline && !ev.Command() {
			b.moveTo(b.lineEnd())
		} else {
			b.moveTo(len(b.runes))
		}
		return true, false
	case KeyUp, KeyDown:
		if !multiline {
			return false, false
		}
		b.moveLine(ev.Key == KeyUp)
		return true, false
	}
	return false, false
}

// moveLine moves the caret to the same column on the adjacent line
func (b *textBuffer) moveLine(up bool) {
	start := b.lineStart()
	column := b.caret - start
	if up {
		if start == 0 {
			b.moveTo(0)
			return
		}
		prevEnd := start - 1
		prevStart := prevEnd
		for prevStart > 0 && b.runes[prevStart-1] != '\n' {
			prevStart--
		}
		b.moveTo(prevStart + min(column, prevEnd-prevStart))
		return
	}
	end := b.lineEnd()
	if end >= len(b.runes) {
		b.moveTo(len(b.runes))
		return
	}
	nextStart := end + 1
	nextEnd := nextStart
	for nextEnd < len(b.runes) && b.runes[nextEnd] != '\n' {
		nextEnd++
	}
	b.moveTo(nextStart + min(column, nextEnd-nextStart))
}

// initialText resolves the starting text for a free-text editor
func initialText(existing string, entry Entry) (string, bool) {
	switch entry.Mode {
	case EntryTyped:
		return entry.Key, false
	case EntryClear:
		return "", false
	default:
		return existing, true
	}
}

// FormatValue renders a cell value for display
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		if val {
			return "true"
		}
		return "false"
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	default:
		return fmt.Sprint(val)
	}
}
