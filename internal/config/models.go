package config

import "github.com/muurk/budgetgrid/internal/grid"

// CurrentVersion is the layout file format version
const CurrentVersion = 1

// Sink kinds
const (
	SinkNone   = "none"
	SinkSQLite = "sqlite"
	SinkRemote = "remote"
)

// Layout is the whole layout file: how the table is laid out, which
// columns are editable with which editor, and where commits go.
type Layout struct {
	Version int            `yaml:"version"`
	Table   TableConfig    `yaml:"table"`
	Dataset DatasetConfig  `yaml:"dataset,omitempty"`
	Columns []ColumnConfig `yaml:"columns,omitempty"` // Empty means infer from the dataset
	Sink    SinkConfig     `yaml:"sink"`
}

// TableConfig holds virtualization settings
type TableConfig struct {
	RowHeight float64 `yaml:"row_height"` // Estimated row height in terminal lines
	Overscan  int     `yaml:"overscan"`   // Rows rendered beyond each edge of the viewport
	PageSize  int     `yaml:"page_size"`  // Rows moved by PageUp/PageDown; 0 follows the viewport
}

// DatasetConfig tells the loader how to read SQLite sources
type DatasetConfig struct {
	Table    string `yaml:"table,omitempty"`     // Defaults to "rows"
	IDColumn string `yaml:"id_column,omitempty"` // Defaults to "id"
}

// ColumnConfig is the YAML form of grid.Column
type ColumnConfig struct {
	ID       string `yaml:"id"`
	Title    string `yaml:"title,omitempty"`
	Width    int    `yaml:"width,omitempty"`
	Editable bool   `yaml:"editable"`
	Editor   string `yaml:"editor,omitempty"` // text, number, checkbox or largeText
	Pinned   string `yaml:"pinned,omitempty"` // left or right

	Required  bool     `yaml:"required,omitempty"`
	MaxLength int      `yaml:"max_length,omitempty"`
	Min       *float64 `yaml:"min,omitempty"`
	Max       *float64 `yaml:"max,omitempty"`
	Step      float64  `yaml:"step,omitempty"`
	Precision *int     `yaml:"precision,omitempty"`
	AllowNull bool     `yaml:"allow_null,omitempty"`

	Rows         int  `yaml:"rows,omitempty"`
	ValidateJSON bool `yaml:"validate_json,omitempty"`
}

// SinkConfig selects where committed edits are persisted
type SinkConfig struct {
	Kind     string `yaml:"kind"`               // none, sqlite or remote
	Path     string `yaml:"path,omitempty"`     // SQLite file; defaults next to the dataset
	URL      string `yaml:"url,omitempty"`      // ws://host:port/ws for remote
	Discover bool   `yaml:"discover,omitempty"` // Find a remote sink over mDNS when URL is empty
	Retries  int    `yaml:"retries"`            // Attempts after the first before reverting
}

// Column converts the YAML form to a grid column
func (c ColumnConfig) Column() grid.Column {
	title := c.Title
	if title == "" {
		title = c.ID
	}
	editor := grid.EditorType(c.Editor)
	if editor == "" {
		editor = grid.EditorText
	}
	return grid.Column{
		ID:           c.ID,
		Title:        title,
		Width:        c.Width,
		Editable:     c.Editable,
		EditorType:   editor,
		Pinned:       grid.PinSide(c.Pinned),
		Required:     c.Required,
		MaxLength:    c.MaxLength,
		Min:          c.Min,
		Max:          c.Max,
		Step:         c.Step,
		Precision:    c.Precision,
		AllowNull:    c.AllowNull,
		Rows:         c.Rows,
		ValidateJSON: c.ValidateJSON,
	}
}

// ToColumns converts every configured column
func (l *Layout) ToColumns() []grid.Column {
	cols := make([]grid.Column, len(l.Columns))
	for i, c := range l.Columns {
		cols[i] = c.Column()
	}
	return cols
}

// DefaultLayout returns the layout used when no file exists. It describes a
// household budget ledger.
func DefaultLayout() *Layout {
	zero := 0.0
	two := 2
	return &Layout{
		Version: CurrentVersion,
		Table: TableConfig{
			RowHeight: 1,
			Overscan:  6,
		},
		Columns: []ColumnConfig{
			{ID: "id", Title: "ID", Width: 6, Pinned: "left"},
			{ID: "date", Title: "Date", Width: 10, Editable: true, Editor: "text", Required: true, MaxLength: 10},
			{ID: "category", Title: "Category", Width: 14, Editable: true, Editor: "text", Required: true, MaxLength: 32},
			{ID: "description", Title: "Description", Width: 24, Editable: true, Editor: "text", MaxLength: 120},
			{ID: "amount", Title: "Amount", Width: 10, Editable: true, Editor: "number", Min: &zero, Step: 1, Precision: &two, AllowNull: true},
			{ID: "paid", Title: "Paid", Width: 4, Editable: true, Editor: "checkbox"},
			{ID: "notes", Title: "Notes", Width: 20, Editable: true, Editor: "largeText", Rows: 4},
		},
		Sink: SinkConfig{
			Kind:    SinkSQLite,
			Retries: 3,
		},
	}
}
