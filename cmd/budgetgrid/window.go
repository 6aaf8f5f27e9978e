package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/muurk/budgetgrid/internal/dataset"
	"github.com/muurk/budgetgrid/internal/grid"
	"github.com/muurk/budgetgrid/internal/ui"
)

var (
	winRows     int
	winDataset  string
	winOffset   float64
	winViewport float64
	winHeight   float64
	winOverscan int
)

var windowCmd = &cobra.Command{
	Use:   "window",
	Short: "Show which rows a viewport renders",
	Long: `Compute the rendered row window for a scroll position.

Prints the first and last rendered rows, the padding that stands in for
the rows outside the window and the total scrollable size. The row count
comes from --rows or from the number of rows in --dataset.`,
	Example: `  budgetgrid window --rows 100000 --offset 5000 --viewport 40
  budgetgrid window --dataset budget.json --row-height 2 --overscan 3`,
	Args: cobra.NoArgs,
	RunE: runWindow,
}

func init() {
	windowCmd.Flags().IntVar(&winRows, "rows", 0, "Number of rows")
	windowCmd.Flags().StringVar(&winDataset, "dataset", "", "Count rows from this dataset instead of --rows")
	windowCmd.Flags().Float64Var(&winOffset, "offset", 0, "Scroll offset")
	windowCmd.Flags().Float64Var(&winViewport, "viewport", 24, "Viewport height")
	windowCmd.Flags().Float64Var(&winHeight, "row-height", 1, "Row height")
	windowCmd.Flags().IntVar(&winOverscan, "overscan", 5, "Rows rendered beyond each edge")
}

func runWindow(cmd *cobra.Command, args []string) error {
	rows := winRows
	if winDataset != "" {
		loaded, err := dataset.Load(cmd.Context(), dataset.Source{Path: winDataset})
		if err != nil {
			return err
		}
		rows = len(loaded)
	}
	if winHeight <= 0 {
		return fmt.Errorf("--row-height must be positive, got %v", winHeight)
	}

	w := grid.ComputeWindow(winOffset, winViewport, winHeight, rows, winOverscan)

	p := ui.NewPrinter(os.Stdout)
	p.PrintHeader("Row window", "budgetgrid window", []ui.Param{
		{Key: "Rows", Value: strconv.Itoa(rows)},
		{Key: "Offset", Value: formatFloat(winOffset)},
		{Key: "Viewport", Value: formatFloat(winViewport)},
		{Key: "Row height", Value: formatFloat(winHeight)},
		{Key: "Overscan", Value: strconv.Itoa(winOverscan)},
	})
	p.PrintTable([]string{"First", "Last", "Rendered", "Padding before", "Padding after", "Total size"}, [][]string{{
		strconv.Itoa(w.First),
		strconv.Itoa(w.Last),
		strconv.Itoa(w.Len()),
		formatFloat(w.PaddingBefore),
		formatFloat(w.PaddingAfter),
		formatFloat(w.TotalSize),
	}})
	p.Newline()
	p.Println(ui.RenderRangeBar(w.First, w.Last, rows, p.Width()))
	return nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
