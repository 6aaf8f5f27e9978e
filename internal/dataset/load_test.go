package dataset

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
)

func TestSourceKind(t *testing.T) {
	tests := []struct {
		path string
		want Kind
	}{
		{"budget.json", KindJSON},
		{"budget.db", KindSQLite},
		{"budget.SQLITE", KindSQLite},
		{"budget.sqlite3", KindSQLite},
		{"budget", KindJSON},
	}
	for _, tt := range tests {
		if got := (Source{Path: tt.path}).Kind(); got != tt.want {
			t.Errorf("Kind(%q) = %s, want %s", tt.path, got, tt.want)
		}
	}
}

func TestLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "budget.json")
	content := `[
		{"id": "r1", "category": "Rent", "amount": 1200, "paid": true},
		{"id": 2, "category": "Food", "amount": 310.5, "notes": null}
	]`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	rows, err := Load(context.Background(), Source{Path: path})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Load() returned %d rows, want 2", len(rows))
	}
	if rows[1].ID != "2" {
		t.Errorf("numeric id = %q, want %q", rows[1].ID, "2")
	}
	if rows[0].Values["amount"] != 1200.0 {
		t.Errorf("amount = %v (%T), want 1200", rows[0].Values["amount"], rows[0].Values["amount"])
	}
	if rows[0].Values["paid"] != true {
		t.Errorf("paid = %v, want true", rows[0].Values["paid"])
	}
}

func TestLoadJSONErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", `{"rows": `},
		{"not an array", `{"id": "r1"}`},
		{"missing id", `[{"category": "Rent"}]`},
		{"null id", `[{"id": null}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeJSON([]byte(tt.content), "id"); err == nil {
				t.Error("DecodeJSON() should fail")
			}
		})
	}

	if _, err := Load(context.Background(), Source{Path: filepath.Join(t.TempDir(), "missing.json")}); err == nil {
		t.Error("Load() of a missing file should fail")
	}
}

func TestEncodeJSONRoundTripsIDs(t *testing.T) {
	data, err := EncodeJSON([]Row{{ID: "r9", Values: map[string]any{"amount": 3.5}}}, "key")
	if err != nil {
		t.Fatal(err)
	}
	rows, err := DecodeJSON(data, "key")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].ID != "r9" || rows[0].Values["amount"] != 3.5 {
		t.Errorf("decoded rows = %+v", rows)
	}
}

func TestLoadSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "budget.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	stmts := []string{
		`CREATE TABLE lines (line_id TEXT PRIMARY KEY, category TEXT, amount REAL)`,
		`INSERT INTO lines VALUES ('a', 'Rent', 1200.0)`,
		`INSERT INTO lines VALUES ('b', 'Food', NULL)`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			t.Fatalf("%s: %v", s, err)
		}
	}
	db.Close()

	rows, err := Load(context.Background(), Source{Path: path, Table: "lines", IDColumn: "line_id"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Load() returned %d rows, want 2", len(rows))
	}
	if rows[0].ID != "a" || rows[0].Values["category"] != "Rent" || rows[0].Values["amount"] != 1200.0 {
		t.Errorf("first row = %+v", rows[0])
	}
	if rows[1].Values["amount"] != nil {
		t.Errorf("NULL amount = %v, want nil", rows[1].Values["amount"])
	}
}

func TestLoadSQLiteErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "budget.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`CREATE TABLE rows (name TEXT)`); err != nil {
		t.Fatal(err)
	}
	db.Close()

	tests := []struct {
		name string
		src  Source
	}{
		{"bad table name", Source{Path: path, Table: "rows; DROP TABLE rows"}},
		{"missing table", Source{Path: path, Table: "nope"}},
		{"missing id column", Source{Path: path}},
		{"missing file", Source{Path: filepath.Join(dir, "none.db")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(context.Background(), tt.src); err == nil {
				t.Error("Load() should fail")
			}
		})
	}
}
