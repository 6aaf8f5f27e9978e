// Budgetgrid-sink is a commit sink server for budgetgrid editors.
//
// It accepts commit messages over WebSocket, persists each one to a SQLite
// edit log and answers with an ack or a revert. The server advertises
// itself over mDNS so editors on the local network can find it with
// 'budgetgrid scan' or 'budgetgrid edit --discover'.
//
// Usage:
//
//	budgetgrid-sink serve [flags]
//	budgetgrid-sink history --row <id> --column <id> [flags]
//
// See 'budgetgrid-sink serve --help' for available options.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/budgetgrid/internal/config"
	"github.com/muurk/budgetgrid/internal/discovery"
	"github.com/muurk/budgetgrid/internal/grid"
	"github.com/muurk/budgetgrid/internal/logging"
	"github.com/muurk/budgetgrid/internal/server"
	"github.com/muurk/budgetgrid/internal/sink"
	"github.com/muurk/budgetgrid/internal/ui"
	"github.com/muurk/budgetgrid/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "budgetgrid-sink",
	Short: "Commit sink server for budgetgrid",
	Long: `A WebSocket server that persists commits from budgetgrid editors.

Every commit is written to a SQLite edit log and acknowledged, or reverted
with the reason when it cannot be stored.`,
	Version: version.Version,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite edit log (default: ~/.config/budgetgrid/sink.db)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}

var (
	dbPath   string
	certPath string
	keyPath  string
	host     string
	port     int
	wsPath   string
	instance string
	noMDNS   bool
	logLevel string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the WebSocket server",
	Long: `Start the commit sink server.

Editors connect to ws://<host>:<port><path>, or wss:// when --cert and
--key are given. Unless --no-mdns is set the server is advertised as
` + discovery.ServiceType + ` under the instance name.`,
	Example: `  # Serve on the default port with an edit log in the config directory
  budgetgrid-sink serve

  # Serve TLS under a fixed instance name
  budgetgrid-sink serve --cert cert.pem --key key.pem --instance office

  # Keep the edit log with the shared dataset
  budgetgrid-sink serve --db /srv/budget/edits.db --log-level debug`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&certPath, "cert", "", "Path to TLS certificate file (serves wss:// with --key)")
	serveCmd.Flags().StringVar(&keyPath, "key", "", "Path to TLS private key file")
	serveCmd.Flags().StringVar(&host, "host", "", "Listen address (empty = all interfaces)")
	serveCmd.Flags().IntVar(&port, "port", discovery.DefaultPort, "Server port")
	serveCmd.Flags().StringVar(&wsPath, "path", discovery.DefaultPath, "WebSocket path")
	serveCmd.Flags().StringVar(&instance, "instance", "", "mDNS instance name (default: hostname)")
	serveCmd.Flags().BoolVar(&noMDNS, "no-mdns", false, "Do not advertise over mDNS")
	serveCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if (certPath != "" && keyPath == "") || (certPath == "" && keyPath != "") {
		return fmt.Errorf("both --cert and --key must be provided together, or neither")
	}
	if certPath != "" {
		if _, err := os.Stat(certPath); os.IsNotExist(err) {
			return fmt.Errorf("certificate file not found: %s", certPath)
		}
		if _, err := os.Stat(keyPath); os.IsNotExist(err) {
			return fmt.Errorf("private key file not found: %s", keyPath)
		}
	}

	if err := logging.Initialize(logLevel); err != nil {
		return err
	}
	defer logging.Sync()

	name := ""
	if !noMDNS {
		name = instance
		if name == "" {
			h, err := os.Hostname()
			if err != nil {
				return fmt.Errorf("cannot pick an instance name: %w", err)
			}
			name = h
		}
	}

	store, err := openEditLog()
	if err != nil {
		return err
	}
	logging.Info("Opened edit log", zap.String("path", store.Path()))

	srv, err := server.New(&server.Config{
		Host:     host,
		Port:     port,
		Path:     wsPath,
		CertPath: certPath,
		KeyPath:  keyPath,
		Instance: name,
	}, store)
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}

func openEditLog() (*sink.SQLiteStore, error) {
	if dbPath == "" {
		dir, err := config.GetConfigDir()
		if err != nil {
			return nil, err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}
		dbPath = filepath.Join(dir, "sink.db")
	}
	return sink.OpenSQLite(dbPath)
}

var (
	historyRow    string
	historyColumn string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print the commit history of one cell",
	Example: `  budgetgrid-sink history --row r-0042 --column amount
  budgetgrid-sink history --db ./budget.edits.db --row r-0042 --column notes`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&historyRow, "row", "", "Row id")
	historyCmd.Flags().StringVar(&historyColumn, "column", "", "Column id")
	_ = historyCmd.MarkFlagRequired("row")
	_ = historyCmd.MarkFlagRequired("column")
}

func runHistory(cmd *cobra.Command, args []string) error {
	store, err := openEditLog()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	addr := grid.CellAddress{RowID: historyRow, ColumnID: historyColumn}
	entries, err := store.History(ctx, addr)
	if err != nil {
		return err
	}

	p := ui.NewPrinter(os.Stdout)
	if len(entries) == 0 {
		p.PrintWarning("No commits recorded", []ui.Param{
			{Key: "Cell", Value: addr.String()},
			{Key: "Edit log", Value: store.Path()},
		})
		return nil
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			strconv.FormatUint(e.Seq, 10),
			e.CreatedAt.Local().Format(time.DateTime),
			grid.FormatValue(e.Previous),
			grid.FormatValue(e.Value),
		})
	}
	p.PrintTable([]string{"Seq", "When", "From", "To"}, rows)
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("budgetgrid-sink %s (commit: %s)\n", version.Version, version.Commit)
	},
}
