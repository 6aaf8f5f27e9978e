package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/budgetgrid/internal/config"
	"github.com/muurk/budgetgrid/internal/dataset"
	"github.com/muurk/budgetgrid/internal/discovery"
	"github.com/muurk/budgetgrid/internal/grid"
	"github.com/muurk/budgetgrid/internal/logging"
	"github.com/muurk/budgetgrid/internal/sink"
	"github.com/muurk/budgetgrid/internal/tui"
	"github.com/muurk/budgetgrid/internal/ui"
)

var (
	sinkKind   string
	sinkPath   string
	sinkURL    string
	discover   bool
	peerName   string
	sinkRetry  int
	noWatch    bool
	datasetTbl string
	idColumn   string
)

var editCmd = &cobra.Command{
	Use:   "edit <dataset>",
	Short: "Open a dataset in the grid editor",
	Long: `Open a JSON or SQLite dataset in the full-screen grid editor.

Columns, virtualization settings and the commit sink come from the layout
file. Flags override the layout for this session. When the layout has no
columns they are inferred from the first rows of the dataset.

Edits already recorded in a SQLite edit log are replayed over the dataset
when it is opened, and again whenever the dataset file changes on disk.`,
	Example: `  # Keep an edit log next to the dataset
  budgetgrid edit budget.json --sink sqlite

  # Pick a remote sink found on the local network
  budgetgrid edit budget.json --sink remote --discover`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

func init() {
	addEditFlags(editCmd)
}

func addEditFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&sinkKind, "sink", "", "Commit sink: none, sqlite or remote (default: from layout)")
	cmd.Flags().StringVar(&sinkPath, "sink-path", "", "SQLite edit log (default: <dataset>.edits.db)")
	cmd.Flags().StringVar(&sinkURL, "url", "", "Remote sink URL, e.g. ws://10.0.0.5:8470/ws")
	cmd.Flags().BoolVar(&discover, "discover", false, "Find a remote sink over mDNS when no URL is set")
	cmd.Flags().StringVar(&peerName, "instance", "", "With --discover, use the sink advertised under this name")
	cmd.Flags().IntVar(&sinkRetry, "retries", -1, "Commit attempts after the first before reverting (default: from layout)")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "Do not reload when the dataset file changes")
	cmd.Flags().StringVar(&datasetTbl, "table", "", "SQLite table holding the rows (default: from layout, then \"rows\")")
	cmd.Flags().StringVar(&idColumn, "id-column", "", "Field holding the row id (default: from layout, then \"id\")")
}

// session holds everything opened for one edit run
type session struct {
	layout *config.Layout
	source dataset.Source
	data   *dataset.Dataset
	store  sink.Store
	edits  *sink.SQLiteStore // Set when the sink is a local edit log
	desc   string
}

func runEdit(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := redirectLogs(); err != nil {
		return err
	}
	defer logging.Sync()

	s, err := loadSession(cmd, args[0])
	if err != nil {
		return err
	}

	// Peer picking is interactive, so it runs before the step output
	if s.layout.Sink.Kind == config.SinkRemote && s.layout.Sink.URL == "" {
		peer, err := choosePeer(ctx)
		if err != nil {
			return err
		}
		s.layout.Sink.URL = peer.URL()
	}

	runner := ui.NewRunner(ui.RunnerConfig{
		Title:   "Open dataset",
		Command: "budgetgrid edit " + args[0],
		Params: []ui.Param{
			{Key: "Dataset", Value: s.source.Path},
			{Key: "Layout", Value: layoutPath},
			{Key: "Sink", Value: sinkDescription(s.layout)},
		},
		StepNames: []string{"Load dataset", "Open commit sink", "Replay saved edits"},
		Troubleshooting: []string{
			"Check the dataset is a JSON array of objects or a SQLite file",
			"For SQLite datasets, check --table and --id-column",
			"For a remote sink, check budgetgrid-sink is running and reachable",
		},
		Quiet: true,
	})
	err = runner.Run(ctx, func(ctx context.Context, onStep ui.StepCallback) ([]ui.Param, error) {
		return s.open(ctx, onStep)
	})
	if err != nil {
		if s.store != nil {
			_ = s.store.Close()
		}
		return err
	}

	return s.run(ctx)
}

// redirectLogs moves logging to a file while the grid owns the terminal
func redirectLogs() error {
	level := logLevel
	if level == "" {
		level = os.Getenv(logging.LogLevelEnvVar)
	}
	if level == "" || logFile != "" || os.Getenv(logging.LogFileEnvVar) != "" {
		return nil
	}
	dir, err := config.GetConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return logging.InitializeWithOutput(level, filepath.Join(dir, "budgetgrid.log"))
}

func loadSession(cmd *cobra.Command, path string) (*session, error) {
	if layoutPath == "" {
		p, err := config.GetLayoutPath()
		if err != nil {
			return nil, err
		}
		layoutPath = p
	}
	layout, exists, err := config.Load(layoutPath)
	if err != nil {
		return nil, err
	}
	if !exists {
		// Default columns describe a sample budget; infer from the data instead
		layout.Columns = nil
		logging.Debug("No layout file, inferring columns", zap.String("path", layoutPath))
	}

	flags := cmd.Flags()
	if flags.Changed("sink") {
		layout.Sink.Kind = sinkKind
	}
	if flags.Changed("sink-path") {
		layout.Sink.Path = sinkPath
	}
	if flags.Changed("url") {
		layout.Sink.URL = sinkURL
		if !flags.Changed("sink") {
			layout.Sink.Kind = config.SinkRemote
		}
	}
	if flags.Changed("discover") {
		layout.Sink.Discover = discover
	}
	if flags.Changed("retries") {
		layout.Sink.Retries = sinkRetry
	}
	if flags.Changed("table") {
		layout.Dataset.Table = datasetTbl
	}
	if flags.Changed("id-column") {
		layout.Dataset.IDColumn = idColumn
	}
	if err := layout.Validate(); err != nil {
		return nil, err
	}

	return &session{
		layout: layout,
		source: dataset.Source{
			Path:     path,
			Table:    layout.Dataset.Table,
			IDColumn: layout.Dataset.IDColumn,
		},
	}, nil
}

func choosePeer(ctx context.Context) (*discovery.Peer, error) {
	if peerName != "" {
		return discovery.NewScanner().Find(ctx, peerName)
	}
	peers, err := discovery.QuickScan(ctx)
	if err == nil && len(peers) == 1 {
		logging.Info("Discovered commit sink", zap.String("peer", peers[0].String()))
		return peers[0], nil
	}
	// Zero or several answers: let the user decide
	return tui.PickPeer(ctx, nil)
}

func (s *session) open(ctx context.Context, onStep ui.StepCallback) ([]ui.Param, error) {
	onStep(1, ui.StepRunning, "")
	rows, err := dataset.Load(ctx, s.source)
	if err != nil {
		onStep(1, ui.StepFailed, err.Error())
		return nil, err
	}
	if len(s.layout.Columns) == 0 {
		s.layout.Columns = config.InferColumns(rows, s.source.IDColumn)
		if len(s.layout.Columns) == 0 {
			err := errors.New("dataset has no columns to show")
			onStep(1, ui.StepFailed, err.Error())
			return nil, err
		}
	}
	s.data = dataset.New(rows)
	onStep(1, ui.StepComplete, fmt.Sprintf("%d rows, %d columns", s.data.Len(), len(s.layout.Columns)))

	onStep(2, ui.StepRunning, "")
	if err := s.openSink(ctx); err != nil {
		onStep(2, ui.StepFailed, err.Error())
		return nil, err
	}
	onStep(2, ui.StepComplete, s.desc)

	if s.edits == nil {
		onStep(3, ui.StepSkipped, "no edit log")
		return nil, nil
	}
	onStep(3, ui.StepRunning, "")
	overlay, err := s.edits.Load(ctx)
	if err != nil {
		onStep(3, ui.StepFailed, err.Error())
		return nil, err
	}
	n := s.data.Apply(overlay)
	onStep(3, ui.StepComplete, fmt.Sprintf("%d edits", n))
	return nil, nil
}

func (s *session) openSink(ctx context.Context) error {
	cfg := s.layout.Sink
	switch cfg.Kind {
	case config.SinkSQLite:
		path := cfg.Path
		if path == "" {
			path = editLogPath(s.source.Path)
		}
		store, err := sink.OpenSQLite(path)
		if err != nil {
			return err
		}
		s.store, s.edits, s.desc = store, store, path
	case config.SinkRemote:
		store, err := sink.DialRemote(ctx, cfg.URL)
		if err != nil {
			return err
		}
		s.store, s.desc = store, cfg.URL
	default:
		// Edits stay in memory and are acknowledged at once
		s.store = sink.StoreFunc(func(ctx context.Context, intent grid.CommitIntent) error { return nil })
		s.desc = "in memory"
	}
	return nil
}

// newActor starts the commit actor. It outlives ctx so that a signal still
// lets Close persist the queued commits.
func (s *session) newActor(ctx context.Context) *sink.Actor {
	actor := sink.NewActor(s.store, sink.WithRetries(s.layout.Sink.Retries))
	actor.Start(context.WithoutCancel(ctx))
	return actor
}

func (s *session) run(ctx context.Context) error {
	actor := s.newActor(ctx)

	var changed <-chan struct{}
	if !noWatch {
		w, err := dataset.NewWatcher(s.source.Path, dataset.WithOnError(func(err error) {
			logging.Warn("Dataset watch failed", zap.Error(err))
		}))
		if err != nil {
			logging.Warn("Cannot watch dataset", zap.Error(err))
		} else if err := w.Start(ctx); err != nil {
			logging.Warn("Cannot watch dataset", zap.Error(err))
		} else {
			defer w.Stop()
			changed = w.Changed()
		}
	}

	table := s.layout.Table
	err := tui.RunGrid(ctx, tui.Config{
		Title:     "budgetgrid",
		Source:    s.source.Path,
		Columns:   s.layout.ToColumns(),
		Dataset:   s.data,
		RowHeight: int(math.Ceil(table.RowHeight)),
		Overscan:  table.Overscan,
		PageSize:  table.PageSize,
		Sink:      actor,
		Results:   actor.Results(),
		Changed:   changed,
		Reload:    s.reload,
		OnSelect: func(ids []string) {
			logging.Debug("Selection changed", zap.Int("rows", len(ids)))
		},
	})

	// Close drains queued commits before the store goes away
	if cerr := actor.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// reload rereads the dataset and replays the edit log over it
func (s *session) reload(ctx context.Context) ([]dataset.Row, error) {
	rows, err := dataset.Load(ctx, s.source)
	if err != nil {
		return nil, err
	}
	if s.edits == nil {
		return rows, nil
	}
	overlay, err := s.edits.Load(ctx)
	if err != nil {
		return nil, err
	}
	d := dataset.New(rows)
	d.Apply(overlay)
	return d.Rows(), nil
}

// editLogPath places the edit log next to the dataset: budget.json keeps
// its edits in budget.edits.db
func editLogPath(datasetPath string) string {
	return strings.TrimSuffix(datasetPath, filepath.Ext(datasetPath)) + ".edits.db"
}

func sinkDescription(l *config.Layout) string {
	switch l.Sink.Kind {
	case config.SinkRemote:
		return "remote " + l.Sink.URL
	case config.SinkSQLite:
		if l.Sink.Path != "" {
			return "sqlite " + l.Sink.Path
		}
		return "sqlite (next to dataset)"
	default:
		return "none"
	}
}
