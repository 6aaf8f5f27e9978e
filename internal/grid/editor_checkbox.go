package grid

import "strings"

// CheckboxEditor toggles a boolean. It has no free-text state.
type CheckboxEditor struct {
	lifecycle
	checked bool
}

// NewCheckboxEditor creates a checkbox editor
func NewCheckboxEditor() *CheckboxEditor {
	return &CheckboxEditor{}
}

// Type implements Editor
func (e *CheckboxEditor) Type() EditorType { return EditorCheckbox }

// Enter implements Editor. A typed space toggles once; an explicit clear
// starts unchecked; any other typed character is ignored.
func (e *CheckboxEditor) Enter(value any, entry Entry) {
	e.start()
	e.checked = ToBool(value)
	switch entry.Mode {
	case EntryTyped:
		if entry.Key == " " {
			e.checked = !e.checked
		}
	case EntryClear:
		e.checked = false
	}
}

// HandleKey implements Editor
func (e *CheckboxEditor) HandleKey(ev KeyEvent) Outcome {
	if !e.open {
		return Outcome{}
	}
	if action, nav, ok := protocolKey(ev); ok {
		if action == ActionCancel {
			return e.Cancel()
		}
		return e.Commit(nav)
	}
	if ev.Key == KeyRune && ev.Rune == ' ' && !ev.Command() {
		e.checked = !e.checked
	}
	return Outcome{}
}

// Checked returns the pending value
func (e *CheckboxEditor) Checked() bool { return e.checked }

// Blur implements Editor
func (e *CheckboxEditor) Blur() Outcome {
	return e.Commit(NavNone)
}

// Commit implements Editor
func (e *CheckboxEditor) Commit(nav Direction) Outcome {
	return e.finish(Outcome{Action: ActionCommit, Value: e.checked, Nav: nav})
}

// Cancel implements Editor
func (e *CheckboxEditor) Cancel() Outcome {
	return e.finish(Outcome{Action: ActionCancel})
}

// Text implements Editor
func (e *CheckboxEditor) Text() string {
	if e.checked {
		return "[x]"
	}
	return "[ ]"
}

// Caret implements Editor
func (e *CheckboxEditor) Caret() int { return 0 }

// Selected implements Editor
func (e *CheckboxEditor) Selected() bool { return false }

// Err implements Editor
func (e *CheckboxEditor) Err() string { return "" }

// ToBool converts a cell value to a boolean
func ToBool(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true", "yes", "y", "1", "x", "on":
			return true
		}
		return false
	case nil:
		return false
	default:
		f, ok := ToFloat(v)
		return ok && f != 0
	}
}
