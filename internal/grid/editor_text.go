package grid

import "strings"

// TextOptions configures a TextEditor
type TextOptions struct {
	// Required makes an empty (after trimming) value cancel the edit
	Required bool
	// MaxLength caps the value in runes; 0 means unlimited
	MaxLength int
}

// TextEditor edits a single line of text
type TextEditor struct {
	lifecycle
	opts TextOptions
	buf  textBuffer
}

// NewTextEditor creates a text editor
func NewTextEditor(opts TextOptions) *TextEditor {
	return &TextEditor{
		opts: opts,
		buf:  textBuffer{maxLength: opts.MaxLength},
	}
}

// Type implements Editor
func (e *TextEditor) Type() EditorType { return EditorText }

// Enter implements Editor
func (e *TextEditor) Enter(value any, entry Entry) {
	e.start()
	text, selectAll := initialText(FormatValue(value), entry)
	e.buf.set(text, selectAll)
}

// HandleKey implements Editor
func (e *TextEditor) HandleKey(ev KeyEvent) Outcome {
	if !e.open {
		return Outcome{}
	}
	if action, nav, ok := protocolKey(ev); ok {
		if action == ActionCancel {
			return e.Cancel()
		}
		return e.Commit(nav)
	}
	e.buf.editKey(ev, false)
	return Outcome{}
}

// Blur implements Editor
func (e *TextEditor) Blur() Outcome {
	return e.Commit(NavNone)
}

// Commit implements Editor. The value is trimmed; an empty required value
// cancels instead.
func (e *TextEditor) Commit(nav Direction) Outcome {
	value := strings.TrimSpace(e.buf.String())
	if e.opts.Required && value == "" {
		return e.finish(Outcome{
			Action: ActionCancel,
			Err:    NewValidationError("value is required", nil),
		})
	}
	return e.finish(Outcome{Action: ActionCommit, Value: value, Nav: nav})
}

// Cancel implements Editor
func (e *TextEditor) Cancel() Outcome {
	return e.finish(Outcome{Action: ActionCancel})
}

// Text implements Editor
func (e *TextEditor) Text() string { return e.buf.String() }

// Caret implements Editor
func (e *TextEditor) Caret() int { return e.buf.caret }

// Selected implements Editor
func (e *TextEditor) Selected() bool { return e.buf.selectAll }

// Err implements Editor
func (e *TextEditor) Err() string { return "" }
