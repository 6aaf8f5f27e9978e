package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/muurk/budgetgrid/internal/dataset"
	"github.com/muurk/budgetgrid/internal/sink"
	"github.com/muurk/budgetgrid/internal/ui"
)

var (
	exportOut   string
	exportEdits string
)

var exportCmd = &cobra.Command{
	Use:   "export <dataset>",
	Short: "Write a dataset with its recorded edits applied",
	Long: `Read a dataset, replay the latest value of every cell from a SQLite edit
log and write the result as a JSON array of objects.

The source dataset is never modified.`,
	Example: `  budgetgrid export budget.json --out budget.edited.json
  budgetgrid export ledger.db --edits /srv/budget/sink.db --out ledger.json`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (required)")
	exportCmd.Flags().StringVar(&exportEdits, "edits", "", "SQLite edit log (default: <dataset>.edits.db)")
	exportCmd.Flags().StringVar(&datasetTbl, "table", "", "SQLite table holding the rows")
	exportCmd.Flags().StringVar(&idColumn, "id-column", "", "Field holding the row id")
	_ = exportCmd.MarkFlagRequired("out")
}

func runExport(cmd *cobra.Command, args []string) error {
	src := dataset.Source{Path: args[0], Table: datasetTbl, IDColumn: idColumn}
	if exportOut == src.Path {
		return fmt.Errorf("refusing to overwrite the source dataset %s", src.Path)
	}

	rows, err := dataset.Load(cmd.Context(), src)
	if err != nil {
		return err
	}

	logPath := exportEdits
	if logPath == "" {
		logPath = editLogPath(src.Path)
	}
	applied := 0
	if _, err := os.Stat(logPath); err == nil {
		store, err := sink.OpenSQLite(logPath)
		if err != nil {
			return err
		}
		overlay, err := store.Load(cmd.Context())
		_ = store.Close()
		if err != nil {
			return err
		}
		d := dataset.New(rows)
		applied = d.Apply(overlay)
		rows = d.Rows()
	} else if exportEdits != "" {
		return fmt.Errorf("edit log not found: %s", exportEdits)
	}

	idField := idColumn
	if idField == "" {
		idField = dataset.DefaultIDColumn
	}
	data, err := dataset.EncodeJSON(rows, idField)
	if err != nil {
		return err
	}
	if err := os.WriteFile(exportOut, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", exportOut, err)
	}

	ui.NewPrinter(os.Stdout).PrintSuccess("Dataset exported", []ui.Param{
		{Key: "Rows", Value: strconv.Itoa(len(rows))},
		{Key: "Edits applied", Value: strconv.Itoa(applied)},
		{Key: "Output", Value: exportOut},
	})
	return nil
}
