package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/muurk/budgetgrid/internal/dataset"
	"github.com/muurk/budgetgrid/internal/grid"
)

const (
	appName    = "budgetgrid"
	layoutFile = "layout.yaml"
)

// Serialises writes from this process
var fileMutex sync.Mutex

// GetConfigDir returns the OS-appropriate configuration directory:
//   - Linux: $XDG_CONFIG_HOME/budgetgrid or $HOME/.config/budgetgrid
//   - macOS: $HOME/.config/budgetgrid
//   - Windows: %LOCALAPPDATA%\budgetgrid
func GetConfigDir() (string, error) {
	switch runtime.GOOS {
	case "windows":
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return filepath.Join(localAppData, appName), nil
		}
		userProfile := os.Getenv("USERPROFILE")
		if userProfile == "" {
			return "", fmt.Errorf("cannot determine user profile directory (LOCALAPPDATA and USERPROFILE not set)")
		}
		return filepath.Join(userProfile, "AppData", "Local", appName), nil

	case "darwin":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		return filepath.Join(homeDir, ".config", appName), nil

	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, appName), nil
		}
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		return filepath.Join(homeDir, ".config", appName), nil
	}
}

// GetLayoutPath returns the default layout file path
func GetLayoutPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, layoutFile), nil
}

// Load reads the layout at path. A missing file yields DefaultLayout with
// exists=false.
func Load(path string) (layout *Layout, exists bool, err error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultLayout(), false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read layout file: %w", err)
	}
	layout, err = Parse(data)
	if err != nil {
		return nil, true, fmt.Errorf("%s: %w", path, err)
	}
	return layout, true, nil
}

// Parse decodes and validates a layout document. Omitted table settings
// take their defaults.
func Parse(data []byte) (*Layout, error) {
	defaults := DefaultLayout()
	layout := Layout{
		Table: defaults.Table,
		Sink:  SinkConfig{Kind: SinkNone, Retries: defaults.Sink.Retries},
	}
	if err := yaml.Unmarshal(data, &layout); err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}
	if layout.Version != CurrentVersion {
		return nil, fmt.Errorf("unsupported layout version: %d (expected %d)", layout.Version, CurrentVersion)
	}
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	return &layout, nil
}

// Validate checks table bounds, column declarations and the sink
func (l *Layout) Validate() error {
	if l.Table.RowHeight <= 0 {
		return grid.NewConfigError(fmt.Sprintf("table.row_height must be positive, got %v", l.Table.RowHeight))
	}
	if l.Table.Overscan < 0 {
		return grid.NewConfigError("table.overscan must not be negative")
	}
	if l.Table.PageSize < 0 {
		return grid.NewConfigError("table.page_size must not be negative")
	}

	seen := make(map[string]bool, len(l.Columns))
	for _, c := range l.Columns {
		if seen[c.ID] {
			return grid.NewConfigError(fmt.Sprintf("duplicate column %q", c.ID))
		}
		seen[c.ID] = true
		switch grid.EditorType(c.Editor) {
		case "", grid.EditorText, grid.EditorNumber, grid.EditorCheckbox, grid.EditorLargeText:
		default:
			return grid.NewConfigError(fmt.Sprintf("column %q: unknown editor %q", c.ID, c.Editor))
		}
		if err := c.Column().Validate(); err != nil {
			return err
		}
	}

	switch l.Sink.Kind {
	case "", SinkNone, SinkSQLite:
	case SinkRemote:
		if l.Sink.URL == "" && !l.Sink.Discover {
			return grid.NewConfigError("sink.url is required for a remote sink unless sink.discover is set")
		}
	default:
		return grid.NewConfigError(fmt.Sprintf("unknown sink kind %q", l.Sink.Kind))
	}
	if l.Sink.Retries < 0 {
		return grid.NewConfigError("sink.retries must not be negative")
	}
	return nil
}

// Marshal encodes the layout with a descriptive header
func (l *Layout) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal layout: %w", err)
	}
	header := []byte(`# budgetgrid layout
#
# editor: text | number | checkbox | largeText
# pinned: left | right
# sink.kind: none | sqlite | remote

`)
	return append(header, data...), nil
}

// Save writes the layout to path through a temporary file and a rename
func (l *Layout) Save(path string) error {
	if err := l.Validate(); err != nil {
		return err
	}
	data, err := l.Marshal()
	if err != nil {
		return err
	}

	fileMutex.Lock()
	defer fileMutex.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary layout file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save layout file: %w", err)
	}
	return nil
}

// InferColumns derives column declarations from the data when a layout
// declares none. The id column comes first and is read-only; the rest are
// sorted by name and get an editor matching the first non-empty value:
// bool is a checkbox, numbers are number, multi-line strings are largeText.
func InferColumns(rows []dataset.Row, idColumn string) []ColumnConfig {
	if idColumn == "" {
		idColumn = "id"
	}
	kinds := make(map[string]string)
	for _, r := range rows {
		for name, v := range r.Values {
			if name == idColumn || (kinds[name] != "" && kinds[name] != "?") {
				continue
			}
			kinds[name] = editorFor(v)
		}
	}

	names := make([]string, 0, len(kinds))
	for name := range kinds {
		names = append(names, name)
	}
	sort.Strings(names)

	cols := []ColumnConfig{{ID: idColumn, Title: idColumn, Pinned: "left"}}
	for _, name := range names {
		editor := kinds[name]
		if editor == "?" {
			editor = string(grid.EditorText)
		}
		c := ColumnConfig{ID: name, Title: name, Editable: true, Editor: editor}
		if editor == string(grid.EditorNumber) {
			c.AllowNull = true
		}
		if editor == string(grid.EditorLargeText) {
			c.Rows = 4
		}
		cols = append(cols, c)
	}
	return cols
}

// editorFor returns "?" for values that say nothing about the type
func editorFor(v any) string {
	switch x := v.(type) {
	case nil:
		return "?"
	case bool:
		return string(grid.EditorCheckbox)
	case float64, float32, int, int64, int32:
		return string(grid.EditorNumber)
	case string:
		if x == "" {
			return "?"
		}
		if strings.Contains(x, "\n") {
			return string(grid.EditorLargeText)
		}
		return string(grid.EditorText)
	default:
		return string(grid.EditorText)
	}
}
