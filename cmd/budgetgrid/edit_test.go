package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/muurk/budgetgrid/internal/config"
	"github.com/muurk/budgetgrid/internal/grid"
	"github.com/muurk/budgetgrid/internal/sink"
	"github.com/muurk/budgetgrid/internal/ui"
)

func writeDataset(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "budget.json")
	data := `[{"id":"r1","category":"rent","amount":900},{"id":"r2","category":"food","amount":120}]`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newEditCommand(t *testing.T, flags map[string]string) *cobra.Command {
	t.Helper()
	layoutPath = filepath.Join(t.TempDir(), "missing.yaml")
	t.Cleanup(func() { layoutPath = "" })

	cmd := &cobra.Command{Use: "edit"}
	addEditFlags(cmd)
	for name, value := range flags {
		if err := cmd.Flags().Set(name, value); err != nil {
			t.Fatalf("Set(%s) error = %v", name, err)
		}
	}
	return cmd
}

func noSteps(int, ui.StepStatus, string) {}

func TestLoadSessionAppliesFlags(t *testing.T) {
	cmd := newEditCommand(t, map[string]string{
		"url":       "ws://10.0.0.5:8470/ws",
		"retries":   "5",
		"id-column": "key",
	})
	s, err := loadSession(cmd, "budget.json")
	if err != nil {
		t.Fatalf("loadSession() error = %v", err)
	}
	if s.layout.Sink.Kind != config.SinkRemote || s.layout.Sink.URL != "ws://10.0.0.5:8470/ws" {
		t.Errorf("sink = %+v, want remote with the flag URL", s.layout.Sink)
	}
	if s.layout.Sink.Retries != 5 {
		t.Errorf("Retries = %d, want 5", s.layout.Sink.Retries)
	}
	if s.source.IDColumn != "key" {
		t.Errorf("IDColumn = %q, want key", s.source.IDColumn)
	}
	if len(s.layout.Columns) != 0 {
		t.Error("without a layout file columns should be inferred")
	}
}

func TestLoadSessionRejectsBadSink(t *testing.T) {
	cmd := newEditCommand(t, map[string]string{"sink": "ftp"})
	if _, err := loadSession(cmd, "budget.json"); err == nil {
		t.Error("unknown sink kind should fail validation")
	}
}

func TestOpenInfersColumnsAndReplaysEdits(t *testing.T) {
	path := writeDataset(t)
	cmd := newEditCommand(t, map[string]string{"sink": "sqlite"})
	s, err := loadSession(cmd, path)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	// First run records an edit
	if _, err := s.open(ctx, noSteps); err != nil {
		t.Fatalf("open() error = %v", err)
	}
	if len(s.layout.Columns) != 3 {
		t.Errorf("inferred %d columns, want 3", len(s.layout.Columns))
	}
	wantLog := filepath.Join(filepath.Dir(path), "budget.edits.db")
	if s.desc != wantLog {
		t.Errorf("edit log = %q, want %q", s.desc, wantLog)
	}
	addr := grid.CellAddress{RowID: "r2", ColumnID: "amount"}
	if err := s.store.Save(ctx, grid.CommitIntent{Seq: 1, Address: addr, Value: 95.0, Previous: 120.0}); err != nil {
		t.Fatal(err)
	}
	if err := s.store.Close(); err != nil {
		t.Fatal(err)
	}

	// Second run replays it over the file
	s, err = loadSession(cmd, path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.open(ctx, noSteps); err != nil {
		t.Fatalf("open() error = %v", err)
	}
	defer s.store.Close()
	if v, _ := s.data.Value(addr); v != 95.0 {
		t.Errorf("replayed value = %v, want 95", v)
	}

	rows, err := s.reload(ctx)
	if err != nil {
		t.Fatalf("reload() error = %v", err)
	}
	for _, r := range rows {
		if r.ID == "r2" && r.Values["amount"] != 95.0 {
			t.Errorf("reloaded amount = %v, want 95", r.Values["amount"])
		}
	}
}

func TestOpenWithoutSinkAcksInMemory(t *testing.T) {
	path := writeDataset(t)
	cmd := newEditCommand(t, map[string]string{"sink": "none"})
	s, err := loadSession(cmd, path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.open(context.Background(), noSteps); err != nil {
		t.Fatalf("open() error = %v", err)
	}
	if s.edits != nil || s.desc != "in memory" {
		t.Errorf("edits = %v, desc = %q", s.edits, s.desc)
	}
	if err := s.store.Save(context.Background(), grid.CommitIntent{Seq: 1}); err != nil {
		t.Errorf("Save() error = %v", err)
	}
}

func TestNewActorHonoursZeroRetries(t *testing.T) {
	cmd := newEditCommand(t, map[string]string{"sink": "none", "retries": "0"})
	s, err := loadSession(cmd, "budget.json")
	if err != nil {
		t.Fatal(err)
	}
	if s.layout.Sink.Retries != 0 {
		t.Fatalf("Retries = %d, want 0", s.layout.Sink.Retries)
	}

	calls := 0
	s.store = sink.StoreFunc(func(context.Context, grid.CommitIntent) error {
		calls++
		return sink.Temporary(errors.New("sink busy"))
	})

	// A cancelled session context must not abandon the commit
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	actor := s.newActor(ctx)
	actor.Commit(grid.CommitIntent{Seq: 1, Address: grid.CellAddress{RowID: "r1", ColumnID: "amount"}, Value: 1.0})
	res := <-actor.Results()
	if err := actor.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if res.Err == nil || errors.Is(res.Err, context.Canceled) {
		t.Errorf("result error = %v, want the store error", res.Err)
	}
	if calls != 1 {
		t.Errorf("store called %d times, want 1 with retries disabled", calls)
	}
}

func TestSinkDescription(t *testing.T) {
	l := config.DefaultLayout()
	l.Sink = config.SinkConfig{Kind: config.SinkRemote, URL: "ws://h:1/ws"}
	if got := sinkDescription(l); got != "remote ws://h:1/ws" {
		t.Errorf("sinkDescription() = %q", got)
	}
	l.Sink = config.SinkConfig{Kind: config.SinkNone}
	if got := sinkDescription(l); got != "none" {
		t.Errorf("sinkDescription() = %q", got)
	}
}
