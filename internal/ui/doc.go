// Package ui provides terminal output components for the budgetgrid CLIs
// and the shared palette of the grid editor.
//
// The components follow a "print and move on" pattern: commands render a
// header, optional step progress and a result box, without taking over the
// terminal. The interactive grid lives in package tui and reuses the grid
// styles and colors defined here.
//
// # Components
//
//   - Header: command banner with ordered parameters
//   - Progress: numbered step list with status markers
//   - Result: success, failure or warning box, with troubleshooting tips
//   - Runner: header, steps and result around one operation
//   - Printer: writes components and aligned tables to a writer
//   - Confirm: typed confirmation before destructive actions
//
// # Usage Pattern
//
//	runner := ui.NewRunner(ui.RunnerConfig{
//	    Title:     "Open dataset",
//	    Command:   "budgetgrid edit budget.json",
//	    StepNames: []string{"Load layout", "Load dataset"},
//	})
//	err := runner.Run(ctx, func(ctx context.Context, onStep ui.StepCallback) ([]ui.Param, error) {
//	    onStep(1, ui.StepRunning, "")
//	    // ... do work ...
//	    onStep(1, ui.StepComplete, "")
//	    return nil, nil
//	})
//
// # Logging Integration
//
// zap logging is silent unless BUDGETGRID_LOG_LEVEL is set, so the curated
// output stays clean. Set BUDGETGRID_LOG_FILE as well when running the grid
// editor so log lines do not land on the screen it draws.
package ui
