package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/muurk/budgetgrid/internal/dataset"
	"github.com/muurk/budgetgrid/internal/grid"
	"github.com/muurk/budgetgrid/internal/sink"
)

func TestExportAppliesEditLog(t *testing.T) {
	path := writeDataset(t)
	store, err := sink.OpenSQLite(editLogPath(path))
	if err != nil {
		t.Fatal(err)
	}
	addr := grid.CellAddress{RowID: "r1", ColumnID: "category"}
	if err := store.Save(context.Background(), grid.CommitIntent{Seq: 1, Address: addr, Value: "housing", Previous: "rent"}); err != nil {
		t.Fatal(err)
	}
	_ = store.Close()

	exportOut = filepath.Join(t.TempDir(), "out.json")
	exportEdits, datasetTbl, idColumn = "", "", ""
	t.Cleanup(func() { exportOut = "" })

	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	if err := runExport(cmd, []string{path}); err != nil {
		t.Fatalf("runExport() error = %v", err)
	}

	data, err := os.ReadFile(exportOut)
	if err != nil {
		t.Fatal(err)
	}
	rows, err := dataset.DecodeJSON(data, "id")
	if err != nil {
		t.Fatalf("exported file does not decode: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("exported %d rows, want 2", len(rows))
	}
	for _, r := range rows {
		if r.ID == "r1" && r.Values["category"] != "housing" {
			t.Errorf("r1 category = %v, want housing", r.Values["category"])
		}
	}
}

func TestExportRefusesToOverwriteSource(t *testing.T) {
	path := writeDataset(t)
	exportOut = path
	t.Cleanup(func() { exportOut = "" })

	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	err := runExport(cmd, []string{path})
	if err == nil || !strings.Contains(err.Error(), "refusing") {
		t.Errorf("runExport() error = %v, want refusal", err)
	}
}

func TestEditLogPath(t *testing.T) {
	if got := editLogPath("/data/budget.json"); got != "/data/budget.edits.db" {
		t.Errorf("editLogPath() = %q", got)
	}
}
