// Budgetgrid is a terminal editor for tabular datasets.
//
// It opens a JSON or SQLite dataset in a virtualized, spreadsheet-style
// grid. Cells are edited in place with type-specific editors and every
// committed edit is sent to a commit sink: a local SQLite edit log or a
// remote budgetgrid-sink server found by URL or over mDNS.
//
// Usage:
//
//	budgetgrid [dataset] [flags]
//	budgetgrid [command] [flags]
//
// Running with a dataset path opens it in the grid.
// See 'budgetgrid --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/budgetgrid/internal/logging"
	"github.com/muurk/budgetgrid/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var (
	layoutPath string
	logLevel   string
	logFile    string
)

var rootCmd = &cobra.Command{
	Use:   "budgetgrid [dataset]",
	Short: "Terminal grid editor for tabular datasets",
	Long: `A full-screen grid editor for JSON and SQLite datasets.

Rows are virtualized so only the visible window is rendered, cells are
edited in place, and each committed edit is persisted through a commit
sink: a local SQLite edit log or a remote budgetgrid-sink server.

If a dataset is given without a command, it is opened for editing.`,
	Example: `  # Edit a JSON dataset with the default layout
  budgetgrid budget.json

  # Edit a SQLite table and send commits to a remote sink
  budgetgrid ledger.db --sink remote --url ws://10.0.0.5:8470/ws`,
	Version: version.Version,
	Args:    cobra.MaximumNArgs(1),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logging.InitializeWithOutput(logLevel, logFile)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return runEdit(cmd, args)
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&layoutPath, "layout", "", "Layout file (default: ~/.config/budgetgrid/layout.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error (default: $"+logging.LogLevelEnvVar+")")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to this file instead of stderr (default: $"+logging.LogFileEnvVar+")")
	addEditFlags(rootCmd)

	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(windowCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(layoutCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		info := version.Get()
		fmt.Printf("budgetgrid %s (commit: %s)\n", info.Version, info.Commit)
		fmt.Printf("  %s %s\n", info.GoVersion, info.Platform)
	},
}
