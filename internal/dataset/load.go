package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	json "github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"github.com/muurk/budgetgrid/internal/grid"
)

// Default names used when a Source leaves them empty
const (
	DefaultTable    = "rows"
	DefaultIDColumn = "id"
)

// Kind identifies the storage format of a source
type Kind string

const (
	KindJSON   Kind = "json"
	KindSQLite Kind = "sqlite"
)

// Source locates a dataset
type Source struct {
	Path string
	// Table is the SQLite table to read; ignored for JSON
	Table string
	// IDColumn names the field holding the row id
	IDColumn string
}

// Kind infers the format from the file extension
func (s Source) Kind() Kind {
	switch strings.ToLower(filepath.Ext(s.Path)) {
	case ".db", ".sqlite", ".sqlite3":
		return KindSQLite
	default:
		return KindJSON
	}
}

func (s Source) idColumn() string {
	if s.IDColumn != "" {
		return s.IDColumn
	}
	return DefaultIDColumn
}

func (s Source) table() string {
	if s.Table != "" {
		return s.Table
	}
	return DefaultTable
}

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Load reads every row of a source
func Load(ctx context.Context, src Source) ([]Row, error) {
	switch src.Kind() {
	case KindSQLite:
		return loadSQLite(ctx, src)
	default:
		return loadJSON(src)
	}
}

func loadJSON(src Source) ([]Row, error) {
	data, err := os.ReadFile(src.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	return DecodeJSON(data, src.idColumn())
}

// DecodeJSON parses an array of objects into rows keyed by idField.
// Numeric ids are formatted as text.
func DecodeJSON(data []byte, idField string) ([]Row, error) {
	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse dataset: %w", err)
	}

	rows := make([]Row, 0, len(records))
	for i, rec := range records {
		raw, ok := rec[idField]
		if !ok || raw == nil {
			return nil, fmt.Errorf("record %d has no %q field", i, idField)
		}
		rows = append(rows, Row{ID: grid.FormatValue(raw), Values: rec})
	}
	return rows, nil
}

// EncodeJSON renders rows in the format DecodeJSON reads
func EncodeJSON(rows []Row, idField string) ([]byte, error) {
	records := make([]map[string]any, len(rows))
	for i, r := range rows {
		rec := make(map[string]any, len(r.Values)+1)
		for k, v := range r.Values {
			rec[k] = v
		}
		if _, ok := rec[idField]; !ok {
			rec[idField] = r.ID
		}
		records[i] = rec
	}
	return json.MarshalIndent(records, "", "  ")
}

func loadSQLite(ctx context.Context, src Source) ([]Row, error) {
	table, idCol := src.table(), src.idColumn()
	if !identPattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	if _, err := os.Stat(src.Path); err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?mode=ro&_pragma=busy_timeout(5000)", src.Path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}
	defer db.Close()

	rs, err := db.QueryContext(ctx, fmt.Sprintf(`SELECT * FROM "%s"`, table))
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rs.Close()

	cols, err := rs.Columns()
	if err != nil {
		return nil, err
	}
	idPos := -1
	for i, c := range cols {
		if c == idCol {
			idPos = i
		}
	}
	if idPos < 0 {
		return nil, fmt.Errorf("table %s has no %q column", table, idCol)
	}

	var rows []Row
	for rs.Next() {
		raw := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rs.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		values := make(map[string]any, len(cols))
		for i, c := range cols {
			if b, ok := raw[i].([]byte); ok {
				values[c] = string(b)
			} else {
				values[c] = raw[i]
			}
		}
		rows = append(rows, Row{ID: grid.FormatValue(values[idCol]), Values: values})
	}
	if err := rs.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	return rows, nil
}
