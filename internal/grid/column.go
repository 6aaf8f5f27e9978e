package grid

import (
	"fmt"
	"sort"
)

// EditorType selects the editor variant mounted for a column
type EditorType string

const (
	EditorText      EditorType = "text"
	EditorNumber    EditorType = "number"
	EditorCheckbox  EditorType = "checkbox"
	EditorLargeText EditorType = "largeText"
)

// PinSide fixes a column to one edge during horizontal scrolling
type PinSide string

const (
	PinNone  PinSide = ""
	PinLeft  PinSide = "left"
	PinRight PinSide = "right"
)

// Column declares a grid column and the options of its editor.
// Options that do not apply to the column's editor type are ignored.
type Column struct {
	ID         string
	Title      string
	Width      int
	Editable   bool
	EditorType EditorType
	Pinned     PinSide

	// Text and large text
	Required  bool
	MaxLength int

	// Number
	Min       *float64
	Max       *float64
	Step      float64
	Precision *int
	AllowNull bool

	// Large text
	Rows         int
	ValidateJSON bool
}

// Validate checks the declaration for contradictions
func (c Column) Validate() error {
	if c.ID == "" {
		return NewConfigError("column id is required")
	}
	if c.Min != nil && c.Max != nil && *c.Min > *c.Max {
		return NewConfigError(fmt.Sprintf("column %q: min %v is greater than max %v", c.ID, *c.Min, *c.Max))
	}
	if c.Step < 0 {
		return NewConfigError(fmt.Sprintf("column %q: step must not be negative", c.ID))
	}
	if c.Precision != nil && (*c.Precision < 0 || *c.Precision > 15) {
		return NewConfigError(fmt.Sprintf("column %q: precision must be between 0 and 15", c.ID))
	}
	if c.MaxLength < 0 {
		return NewConfigError(fmt.Sprintf("column %q: max length must not be negative", c.ID))
	}
	switch c.Pinned {
	case PinNone, PinLeft, PinRight:
	default:
		return NewConfigError(fmt.Sprintf("column %q: unknown pin side %q", c.ID, c.Pinned))
	}
	return nil
}

// NewEditor builds the editor variant declared by the column.
// An unrecognised editor type falls back to a text editor.
func (c Column) NewEditor() Editor {
	switch c.EditorType {
	case EditorNumber:
		return NewNumberEditor(NumberOptions{
			Min:       c.Min,
			Max:       c.Max,
			Step:      c.Step,
			Precision: c.Precision,
			AllowNull: c.AllowNull,
		})
	case EditorCheckbox:
		return NewCheckboxEditor()
	case EditorLargeText:
		return NewLargeTextEditor(LargeTextOptions{
			MaxLength:    c.MaxLength,
			Rows:         c.Rows,
			ValidateJSON: c.ValidateJSON,
		})
	default:
		return NewTextEditor(TextOptions{
			Required:  c.Required,
			MaxLength: c.MaxLength,
		})
	}
}

// OrderColumns returns columns in render order: left-pinned first, then
// unpinned, then right-pinned. Declaration order is kept within each group.
func OrderColumns(cols []Column) []Column {
	ordered := make([]Column, len(cols))
	copy(ordered, cols)
	rank := func(p PinSide) int {
		switch p {
		case PinLeft:
			return 0
		case PinRight:
			return 2
		default:
			return 1
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return rank(ordered[i].Pinned) < rank(ordered[j].Pinned)
	})
	return ordered
}

// ColumnIDs returns the ids of cols in order
func ColumnIDs(cols []Column) []string {
	ids := make([]string, len(cols))
	for i, c := range cols {
		ids[i] = c.ID
	}
	return ids
}
