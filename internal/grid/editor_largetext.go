package grid

import (
	"strings"

	json "github.com/goccy/go-json"
)

// LargeTextOptions configures a LargeTextEditor
type LargeTextOptions struct {
	MaxLength int
	// Rows is the preferred visible height in lines
	Rows int
	// ValidateJSON parses the text on every change and blocks invalid commits
	ValidateJSON bool
}

// LargeTextEditor edits multi-line text. Plain Enter inserts a newline;
// Ctrl/Cmd+Enter commits.
type LargeTextEditor struct {
	lifecycle
	opts    LargeTextOptions
	buf     textBuffer
	jsonErr string
}

// NewLargeTextEditor creates a multi-line editor
func NewLargeTextEditor(opts LargeTextOptions) *LargeTextEditor {
	if opts.Rows <= 0 {
		opts.Rows = 4
	}
	return &LargeTextEditor{
		opts: opts,
		buf:  textBuffer{maxLength: opts.MaxLength},
	}
}

// Type implements Editor
func (e *LargeTextEditor) Type() EditorType { return EditorLargeText }

// Rows returns the preferred visible height
func (e *LargeTextEditor) Rows() int { return e.opts.Rows }

// Enter implements Editor
func (e *LargeTextEditor) Enter(value any, entry Entry) {
	e.start()
	text, selectAll := initialText(FormatValue(value), entry)
	e.buf.set(text, selectAll)
	e.validate()
}

// HandleKey implements Editor
func (e *LargeTextEditor) HandleKey(ev KeyEvent) Outcome {
	if !e.open {
		return Outcome{}
	}
	if ev.Key == KeyEnter {
		if ev.Command() {
			if ev.Shift() {
				return e.Commit(NavUp)
			}
			return e.Commit(NavDown)
		}
		if e.buf.insert('\n') {
			e.validate()
		}
		return Outcome{}
	}
	if action, nav, ok := protocolKey(ev); ok {
		if action == ActionCancel {
			return e.Cancel()
		}
		return e.Commit(nav)
	}
	if _, changed := e.buf.editKey(ev, true); changed {
		e.validate()
	}
	return Outcome{}
}

// validate refreshes the JSON error. Empty text is always valid.
func (e *LargeTextEditor) validate() {
	e.jsonErr = ""
	if !e.opts.ValidateJSON {
		return
	}
	text := e.buf.String()
	if strings.TrimSpace(text) == "" {
		return
	}
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		e.jsonErr = err.Error()
	}
}

// Blur implements Editor. Invalid JSON cannot stay open once focus has
// left, so it is discarded.
func (e *LargeTextEditor) Blur() Outcome {
	if e.jsonErr != "" {
		return e.finish(Outcome{
			Action: ActionCancel,
			Err:    NewValidationError("invalid JSON discarded on blur", nil),
		})
	}
	return e.Commit(NavNone)
}

// Commit implements Editor. A JSON error blocks the commit and the editor
// stays open.
func (e *LargeTextEditor) Commit(nav Direction) Outcome {
	if !e.open {
		return Outcome{}
	}
	if e.jsonErr != "" {
		return Outcome{Err: NewValidationError(e.jsonErr, nil)}
	}
	return e.finish(Outcome{Action: ActionCommit, Value: e.buf.String(), Nav: nav})
}

// Cancel implements Editor
func (e *LargeTextEditor) Cancel() Outcome {
	return e.finish(Outcome{Action: ActionCancel})
}

// Text implements Editor
func (e *LargeTextEditor) Text() string { return e.buf.String() }

// Caret implements Editor
func (e *LargeTextEditor) Caret() int { return e.buf.caret }

// Selected implements Editor
func (e *LargeTextEditor) Selected() bool { return e.buf.selectAll }

// Err implements Editor
func (e *LargeTextEditor) Err() string { return e.jsonErr }
