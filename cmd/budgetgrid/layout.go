package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/muurk/budgetgrid/internal/config"
	"github.com/muurk/budgetgrid/internal/dataset"
	"github.com/muurk/budgetgrid/internal/ui"
)

var (
	layoutFrom  string
	layoutForce bool
)

var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Create or inspect the layout file",
	Long: `The layout file describes the grid: row height and overscan, the columns
with their editors and validation rules, and where commits are sent.`,
}

var layoutInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a layout file",
	Long: `Write a layout file with default settings.

With --from, columns are inferred from the rows of a dataset: numbers get
the number editor, booleans the checkbox, long or multi-line text the
large text editor and the id column is pinned to the left.`,
	Example: `  budgetgrid layout init
  budgetgrid layout init --from budget.json --layout ./budget.layout.yaml`,
	Args: cobra.NoArgs,
	RunE: runLayoutInit,
}

var layoutShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective layout",
	Args:  cobra.NoArgs,
	RunE:  runLayoutShow,
}

func init() {
	layoutInitCmd.Flags().StringVar(&layoutFrom, "from", "", "Infer columns from this dataset")
	layoutInitCmd.Flags().BoolVar(&layoutForce, "force", false, "Overwrite an existing file without asking")

	layoutCmd.AddCommand(layoutInitCmd)
	layoutCmd.AddCommand(layoutShowCmd)
}

func resolveLayoutPath() (string, error) {
	if layoutPath != "" {
		return layoutPath, nil
	}
	return config.GetLayoutPath()
}

func runLayoutInit(cmd *cobra.Command, args []string) error {
	path, err := resolveLayoutPath()
	if err != nil {
		return err
	}

	layout := config.DefaultLayout()
	if layoutFrom != "" {
		if err := inferLayout(cmd.Context(), layout, layoutFrom); err != nil {
			return err
		}
	}

	if _, err := os.Stat(path); err == nil && !layoutForce {
		if !ui.ConfirmOverwrite(os.Stdin, os.Stdout, path) {
			return nil
		}
	}
	if err := layout.Save(path); err != nil {
		return err
	}

	ui.NewPrinter(os.Stdout).PrintSuccess("Layout written", []ui.Param{
		{Key: "Path", Value: path},
		{Key: "Columns", Value: strconv.Itoa(len(layout.Columns))},
		{Key: "Sink", Value: sinkDescription(layout)},
	})
	return nil
}

func inferLayout(ctx context.Context, layout *config.Layout, path string) error {
	src := dataset.Source{Path: path, Table: layout.Dataset.Table, IDColumn: layout.Dataset.IDColumn}
	rows, err := dataset.Load(ctx, src)
	if err != nil {
		return err
	}
	layout.Columns = config.InferColumns(rows, src.IDColumn)
	if len(layout.Columns) == 0 {
		return fmt.Errorf("%s: no columns to infer", path)
	}
	if src.Kind() == dataset.KindSQLite {
		layout.Sink.Kind = config.SinkSQLite
	}
	return nil
}

func runLayoutShow(cmd *cobra.Command, args []string) error {
	path, err := resolveLayoutPath()
	if err != nil {
		return err
	}
	layout, exists, err := config.Load(path)
	if err != nil {
		return err
	}

	p := ui.NewPrinter(os.Stdout)
	source := path
	if !exists {
		source = path + " (missing, defaults shown)"
	}
	p.PrintHeader("Layout", "budgetgrid layout show", []ui.Param{
		{Key: "File", Value: source},
		{Key: "Row height", Value: formatFloat(layout.Table.RowHeight)},
		{Key: "Overscan", Value: strconv.Itoa(layout.Table.Overscan)},
		{Key: "Sink", Value: sinkDescription(layout)},
	})

	if len(layout.Columns) == 0 {
		p.Println("  Columns are inferred from the dataset when it is opened.")
		return nil
	}
	rows := make([][]string, 0, len(layout.Columns))
	for _, c := range layout.ToColumns() {
		editable := "no"
		if c.Editable {
			editable = "yes"
		}
		rows = append(rows, []string{c.ID, c.Title, strconv.Itoa(c.Width), string(c.EditorType), editable, string(c.Pinned)})
	}
	p.PrintTable([]string{"ID", "Title", "Width", "Editor", "Editable", "Pinned"}, rows)
	return nil
}
