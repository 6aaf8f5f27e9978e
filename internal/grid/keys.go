package grid

import (
	"strings"
	"unicode"
)

// Key identifies a non-character key, or KeyRune for character input
type Key int

const (
	KeyRune Key = iota
	KeyEnter
	KeyTab
	KeyEscape
	KeyBackspace
	KeyDelete
	KeyF2
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
)

// Modifier is a bitmask of held modifier keys
type Modifier uint8

// ModNone means no modifier is held
const ModNone Modifier = 0

const (
	ModShift Modifier = 1 << iota
	ModCtrl
	ModAlt
	// ModMeta is the Cmd key on macOS
	ModMeta
)

// KeyEvent is a single key press delivered to the grid
type KeyEvent struct {
	Key  Key
	Rune rune
	Mod  Modifier
}

// Shift reports whether shift is held
func (e KeyEvent) Shift() bool { return e.Mod&ModShift != 0 }

// Ctrl reports whether ctrl is held
func (e KeyEvent) Ctrl() bool { return e.Mod&ModCtrl != 0 }

// Alt reports whether alt/option is held
func (e KeyEvent) Alt() bool { return e.Mod&ModAlt != 0 }

// Meta reports whether cmd/meta is held
func (e KeyEvent) Meta() bool { return e.Mod&ModMeta != 0 }

// Command reports whether ctrl or cmd is held
func (e KeyEvent) Command() bool { return e.Ctrl() || e.Meta() }

// Plain reports whether no modifier at all is held
func (e KeyEvent) Plain() bool { return e.Mod == ModNone }

// Rune returns a KeyEvent for a typed character
func Rune(r rune) KeyEvent {
	return KeyEvent{Key: KeyRune, Rune: r}
}

// Press returns a KeyEvent for a named key with modifiers
func Press(k Key, mods ...Modifier) KeyEvent {
	ev := KeyEvent{Key: k}
	for _, m := range mods {
		ev.Mod |= m
	}
	return ev
}

// typeToEditPunctuation is the punctuation allowed to start type-to-edit
const typeToEditPunctuation = "-_.,!@#$%^&*()+="

// IsTypeToEditRune reports whether r may start a type-to-edit session
func IsTypeToEditRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
		return true
	}
	return strings.ContainsRune(typeToEditPunctuation, r)
}

// ClassifyTrigger maps a key pressed on a focused, non-editing cell to the
// editor entry it starts. ok is false when the key is not an edit trigger.
func ClassifyTrigger(ev KeyEvent) (entry Entry, ok bool) {
	switch ev.Key {
	case KeyF2:
		return Entry{Mode: EntryExisting}, true
	case KeyEnter:
		if ev.Plain() {
			return Entry{Mode: EntryExisting}, true
		}
	case KeyBackspace, KeyDelete:
		return Entry{Mode: EntryClear}, true
	case KeyRune:
		if ev.Ctrl() || ev.Alt() || ev.Meta() {
			return Entry{}, false
		}
		if IsTypeToEditRune(ev.Rune) {
			return Entry{Mode: EntryTyped, Key: string(ev.Rune)}, true
		}
	}
	return Entry{}, false
}

// FocusNavigation maps a key pressed on a focused, non-editing cell to a
// navigation intent.
func FocusNavigation(ev KeyEvent) Direction {
	switch ev.Key {
	case KeyTab:
		if ev.Shift() {
			return NavPrev
		}
		return NavNext
	case KeyEnter:
		if ev.Shift() {
			return NavUp
		}
	case KeyUp:
		if ev.Command() {
			return NavFirstRow
		}
		return NavUp
	case KeyDown:
		if ev.Command() {
			return NavLastRow
		}
		return NavDown
	case KeyLeft:
		return NavLeft
	case KeyRight:
		return NavRight
	case KeyHome:
		if ev.Command() {
			return NavFirstRow
		}
		return NavRowStart
	case KeyEnd:
		if ev.Command() {
			return NavLastRow
		}
		return NavRowEnd
	case KeyPageUp:
		return NavPageUp
	case KeyPageDown:
		return NavPageDown
	}
	return NavNone
}
