package sink

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"github.com/muurk/budgetgrid/internal/grid"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS cells (
	row_id     TEXT NOT NULL,
	column_id  TEXT NOT NULL,
	value      TEXT,
	seq        INTEGER NOT NULL,
	updated_at TEXT NOT NULL,
	PRIMARY KEY (row_id, column_id)
);
CREATE TABLE IF NOT EXISTS commit_log (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	row_id     TEXT NOT NULL,
	column_id  TEXT NOT NULL,
	seq        INTEGER NOT NULL,
	value      TEXT,
	previous   TEXT,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_commit_log_cell ON commit_log(row_id, column_id);
`

// LogEntry is one row of the commit log
type LogEntry struct {
	Seq       uint64
	Address   grid.CellAddress
	Value     any
	Previous  any
	CreatedAt time.Time
}

// SQLiteStore persists commits to a SQLite database: the latest value per
// cell in the cells table and every commit in commit_log.
type SQLiteStore struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// OpenSQLite opens or creates the database at path
func OpenSQLite(path string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One writer; SQLite serialises writes anyway
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{db: db, path: path, now: time.Now}, nil
}

// Path returns the database file
func (s *SQLiteStore) Path() string {
	return s.path
}

// Save implements Store
func (s *SQLiteStore) Save(ctx context.Context, intent grid.CommitIntent) error {
	value, err := encodeValue(intent.Value)
	if err != nil {
		return err
	}
	previous, err := encodeValue(intent.Previous)
	if err != nil {
		return err
	}
	ts := s.now().UTC().Format(time.RFC3339Nano)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO cells (row_id, column_id, value, seq, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (row_id, column_id) DO UPDATE SET
			value = excluded.value,
			seq = excluded.seq,
			updated_at = excluded.updated_at`,
		intent.Address.RowID, intent.Address.ColumnID, value, intent.Seq, ts)
	if err != nil {
		return fmt.Errorf("upsert cell %s: %w", intent.Address, err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO commit_log (row_id, column_id, seq, value, previous, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		intent.Address.RowID, intent.Address.ColumnID, intent.Seq, value, previous, ts)
	if err != nil {
		return fmt.Errorf("append commit log: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Load returns the latest persisted value of every edited cell
func (s *SQLiteStore) Load(ctx context.Context) (map[grid.CellAddress]any, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT row_id, column_id, value FROM cells`)
	if err != nil {
		return nil, fmt.Errorf("query cells: %w", err)
	}
	defer rows.Close()

	out := make(map[grid.CellAddress]any)
	for rows.Next() {
		var addr grid.CellAddress
		var raw sql.NullString
		if err := rows.Scan(&addr.RowID, &addr.ColumnID, &raw); err != nil {
			return nil, fmt.Errorf("scan cell: %w", err)
		}
		v, err := decodeValue(raw)
		if err != nil {
			return nil, fmt.Errorf("cell %s: %w", addr, err)
		}
		out[addr] = v
	}
	return out, rows.Err()
}

// History returns the commit log of one cell, oldest first
func (s *SQLiteStore) History(ctx context.Context, addr grid.CellAddress) ([]LogEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, value, previous, created_at FROM commit_log
		WHERE row_id = ? AND column_id = ?
		ORDER BY id`, addr.RowID, addr.ColumnID)
	if err != nil {
		return nil, fmt.Errorf("query commit log: %w", err)
	}
	defer rows.Close()

	var entries []LogEntry
	for rows.Next() {
		var e LogEntry
		var value, previous sql.NullString
		var created string
		if err := rows.Scan(&e.Seq, &value, &previous, &created); err != nil {
			return nil, fmt.Errorf("scan commit log: %w", err)
		}
		e.Address = addr
		if e.Value, err = decodeValue(value); err != nil {
			return nil, err
		}
		if e.Previous, err = decodeValue(previous); err != nil {
			return nil, err
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close implements Store
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// encodeValue stores values as JSON text so their type survives a reload
func encodeValue(v any) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("encode value: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func decodeValue(raw sql.NullString) (any, error) {
	if !raw.Valid {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal([]byte(raw.String), &v); err != nil {
		return nil, fmt.Errorf("decode value: %w", err)
	}
	return v, nil
}
