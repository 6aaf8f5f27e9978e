package grid

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// NumberOptions configures a NumberEditor
type NumberOptions struct {
	Min *float64
	Max *float64
	// Step is the Alt/Cmd+Arrow increment; 0 means 1
	Step float64
	// Precision is the number of decimal digits kept on commit; nil keeps all
	Precision *int
	// AllowNull lets empty or unparsable input commit nil
	AllowNull bool
}

// NumberEditor edits a float. Input is held as free text so that partial
// states such as "-" or "1." survive until commit.
type NumberEditor struct {
	lifecycle
	opts NumberOptions
	buf  textBuffer
}

// NewNumberEditor creates a number editor
func NewNumberEditor(opts NumberOptions) *NumberEditor {
	return &NumberEditor{opts: opts}
}

// Type implements Editor
func (e *NumberEditor) Type() EditorType { return EditorNumber }

// Enter implements Editor
func (e *NumberEditor) Enter(value any, entry Entry) {
	e.start()
	existing := ""
	if f, ok := ToFloat(value); ok {
		existing = strconv.FormatFloat(f, 'f', -1, 64)
	}
	text, selectAll := initialText(existing, entry)
	e.buf.set(text, selectAll)
}

// HandleKey implements Editor
func (e *NumberEditor) HandleKey(ev KeyEvent) Outcome {
	if !e.open {
		return Outcome{}
	}
	if action, nav, ok := protocolKey(ev); ok {
		if action == ActionCancel {
			return e.Cancel()
		}
		return e.Commit(nav)
	}
	if (ev.Key == KeyUp || ev.Key == KeyDown) && (ev.Alt() || ev.Meta()) {
		e.stepBy(ev.Key == KeyUp)
		return Outcome{}
	}
	e.buf.editKey(ev, false)
	return Outcome{}
}

func (e *NumberEditor) step() float64 {
	if e.opts.Step > 0 {
		return e.opts.Step
	}
	return 1
}

// stepBy increments or decrements the pending value without committing
func (e *NumberEditor) stepBy(up bool) {
	base, err := parseNumber(e.buf.String())
	if err != nil {
		base = 0
	}
	if up {
		base += e.step()
	} else {
		base -= e.step()
	}
	base = e.round(e.clamp(base))
	e.buf.set(e.format(base), false)
}

func (e *NumberEditor) clamp(v float64) float64 {
	if e.opts.Min != nil && v < *e.opts.Min {
		v = *e.opts.Min
	}
	if e.opts.Max != nil && v > *e.opts.Max {
		v = *e.opts.Max
	}
	return v
}

func (e *NumberEditor) round(v float64) float64 {
	if e.opts.Precision == nil {
		return v
	}
	p := math.Pow(10, float64(*e.opts.Precision))
	return math.Round(v*p) / p
}

func (e *NumberEditor) format(v float64) string {
	if e.opts.Precision != nil {
		return strconv.FormatFloat(v, 'f', *e.opts.Precision, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Blur implements Editor
func (e *NumberEditor) Blur() Outcome {
	return e.Commit(NavNone)
}

// Commit implements Editor
func (e *NumberEditor) Commit(nav Direction) Outcome {
	if !e.open {
		return Outcome{}
	}
	text := strings.TrimSpace(e.buf.String())
	if text == "" {
		if e.opts.AllowNull {
			return e.finish(Outcome{Action: ActionCommit, Value: nil, Nav: nav})
		}
		fallback := 0.0
		if e.opts.Min != nil {
			fallback = *e.opts.Min
		}
		return e.finish(Outcome{Action: ActionCommit, Value: fallback, Nav: nav})
	}

	v, err := parseNumber(text)
	if err != nil {
		if e.opts.AllowNull {
			return e.finish(Outcome{Action: ActionCommit, Value: nil, Nav: nav})
		}
		return e.finish(Outcome{
			Action: ActionCancel,
			Err:    NewValidationError(fmt.Sprintf("%q is not a number", text), err),
		})
	}
	return e.finish(Outcome{Action: ActionCommit, Value: e.round(e.clamp(v)), Nav: nav})
}

// Cancel implements Editor
func (e *NumberEditor) Cancel() Outcome {
	return e.finish(Outcome{Action: ActionCancel})
}

// Text implements Editor
func (e *NumberEditor) Text() string { return e.buf.String() }

// Caret implements Editor
func (e *NumberEditor) Caret() int { return e.buf.caret }

// Selected implements Editor
func (e *NumberEditor) Selected() bool { return e.buf.selectAll }

// Err implements Editor
func (e *NumberEditor) Err() string { return "" }

// parseNumber parses finite floats only
func parseNumber(text string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite number %q", text)
	}
	return v, nil
}

// ToFloat converts a cell value to a float
func ToFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint64:
		return float64(val), true
	case string:
		f, err := parseNumber(val)
		return f, err == nil
	default:
		return 0, false
	}
}
