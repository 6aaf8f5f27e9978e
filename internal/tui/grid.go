package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/muurk/budgetgrid/internal/dataset"
	"github.com/muurk/budgetgrid/internal/grid"
	"github.com/muurk/budgetgrid/internal/logging"
	"github.com/muurk/budgetgrid/internal/sink"
	"github.com/muurk/budgetgrid/internal/ui"
)

const (
	// doubleClickInterval is the longest gap between two presses on the
	// same cell that still counts as a double click
	doubleClickInterval = 400 * time.Millisecond

	// wheelRows is how many rows one wheel notch scrolls
	wheelRows = 3

	// chromeLines is the title, column header and separator above the rows
	// plus the status and help lines below them
	chromeLines = 5
	headerLines = 3
)

// Messages for async operations
type resultMsg struct {
	result sink.Result
}

type datasetChangedMsg struct{}

type reloadedMsg struct {
	rows []dataset.Row
	err  error
}

type copiedMsg struct {
	addr grid.CellAddress
	err  error
}

// Config wires a GridModel to its data and collaborators
type Config struct {
	// Title is shown above the grid
	Title string
	// Source describes where the rows came from, shown next to the title
	Source string

	Columns []grid.Column
	Dataset *dataset.Dataset

	// RowHeight is the height of one row in terminal lines
	RowHeight int
	Overscan  int
	// PageSize overrides the viewport-derived PageUp/PageDown distance
	PageSize int

	// Sink receives commit intents; Results delivers their outcomes
	Sink    grid.CommitSink
	Results <-chan sink.Result

	// Changed signals that the dataset file was modified on disk
	Changed <-chan struct{}
	// Reload refetches the rows, with any persisted edits applied
	Reload func(ctx context.Context) ([]dataset.Row, error)

	// Copy writes text to the system clipboard. Defaults to atotto/clipboard.
	Copy func(text string) error

	// OnSelect receives the sorted selected row ids after every change
	OnSelect func(selectedIDs []string)
}

type click struct {
	addr grid.CellAddress
	at   time.Time
}

// GridModel is the interactive grid screen
type GridModel struct {
	ctrl  *grid.Controller
	store *grid.Store
	data  *dataset.Dataset
	virt  *grid.Virtualizer
	cols  []grid.Column

	results <-chan sink.Result
	changed <-chan struct{}
	reload  func(ctx context.Context) ([]dataset.Row, error)
	copy    func(text string) error
	now     func() time.Time

	title     string
	source    string
	rowHeight int

	// colOffset is the first unpinned column shown
	colOffset int
	lastClick click
	status    string
	quitting  bool

	// UI state
	Width   int
	Height  int
	Spinner spinner.Model
	Help    help.Model
	Keys    gridKeyMap
}

// NewGridModel builds the grid screen over cfg.Dataset
func NewGridModel(cfg Config) GridModel {
	rowHeight := cfg.RowHeight
	if rowHeight < 1 {
		rowHeight = 1
	}
	if cfg.Copy == nil {
		cfg.Copy = clipboard.WriteAll
	}

	ids := cfg.Dataset.RowIDs()
	virt := grid.NewVirtualizer(float64(rowHeight), 0, len(ids), cfg.Overscan)

	pageSize := virt.PageSize
	if cfg.PageSize > 0 {
		n := cfg.PageSize
		pageSize = func() int { return n }
	}

	var storeOpts []grid.StoreOption
	if cfg.OnSelect != nil {
		storeOpts = append(storeOpts, grid.WithSelectionSink(cfg.OnSelect))
	}
	store := grid.NewStore(storeOpts...)
	ctrl := grid.NewController(store, cfg.Columns, cfg.Dataset, cfg.Sink,
		grid.WithScroller(virt),
		grid.WithPageSize(pageSize),
	)
	store.SetRows(ids)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = ui.StepRunningStyle

	return GridModel{
		ctrl:      ctrl,
		store:     store,
		data:      cfg.Dataset,
		virt:      virt,
		cols:      ctrl.Columns(),
		results:   cfg.Results,
		changed:   cfg.Changed,
		reload:    cfg.Reload,
		copy:      cfg.Copy,
		now:       time.Now,
		title:     cfg.Title,
		source:    cfg.Source,
		rowHeight: rowHeight,
		Spinner:   s,
		Help:      help.New(),
		Keys:      newGridKeyMap(),
	}
}

// Controller exposes the grid controller driving this screen
func (m GridModel) Controller() *grid.Controller {
	return m.ctrl
}

// Init starts listening for commit results and dataset changes
func (m GridModel) Init() tea.Cmd {
	return tea.Batch(
		waitForResult(m.results),
		waitForChange(m.changed),
		m.Spinner.Tick,
	)
}

// Update handles messages and updates the model
func (m GridModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Help.Width = msg.Width
		m.resize()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(tea.MouseEvent(msg))

	case tea.BlurMsg:
		// The terminal lost focus
		if _, addr, ok := m.ctrl.ActiveEditor(); ok {
			m.ctrl.Blur(addr)
		}
		return m, nil

	case resultMsg:
		m.applyResult(msg.result)
		return m, waitForResult(m.results)

	case datasetChangedMsg:
		return m, tea.Batch(m.reloadCmd(), waitForChange(m.changed))

	case reloadedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("reload failed: %v", msg.err)
			logging.Warn("Dataset reload failed", zap.Error(msg.err))
			return m, nil
		}
		m.replaceRows(msg.rows)
		m.status = fmt.Sprintf("reloaded %d rows", len(msg.rows))
		return m, nil

	case copiedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("copy failed: %v", msg.err)
		} else {
			m.status = fmt.Sprintf("copied %s", msg.addr)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleKey runs application bindings first while no editor is open and
// passes everything else to the grid controller
func (m GridModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.Keys.Quit) {
		if _, addr, ok := m.ctrl.ActiveEditor(); ok {
			m.ctrl.Blur(addr)
		}
		m.quitting = true
		return m, tea.Quit
	}

	_, _, editing := m.ctrl.ActiveEditor()
	if !editing {
		m.ctrl.ClearError()
		m.status = ""

		switch {
		case key.Matches(msg, m.Keys.Help):
			m.Help.ShowAll = !m.Help.ShowAll
			m.resize()
			return m, nil
		case key.Matches(msg, m.Keys.Sort):
			m.sortFocused()
			return m, nil
		case key.Matches(msg, m.Keys.Copy):
			return m, m.copyFocused()
		case key.Matches(msg, m.Keys.All):
			m.store.SelectRows(m.data.RowIDs())
			return m, nil
		case key.Matches(msg, m.Keys.Reload):
			return m, m.reloadCmd()
		}
	}

	for _, ev := range translateKey(msg) {
		m.ctrl.HandleKey(ev)
	}
	m.resize()
	m.revealFocusedColumn()
	return m, nil
}

func (m GridModel) handleMouse(ev tea.MouseEvent) (tea.Model, tea.Cmd) {
	switch {
	case ev.Button == tea.MouseButtonWheelUp:
		m.virt.ScrollBy(-float64(wheelRows * m.rowHeight))
		return m, nil
	case ev.Button == tea.MouseButtonWheelDown:
		m.virt.ScrollBy(float64(wheelRows * m.rowHeight))
		return m, nil
	case ev.Action != tea.MouseActionPress || ev.Button != tea.MouseButtonLeft:
		return m, nil
	}

	if colID, ok := m.headerAt(ev.X, ev.Y); ok {
		m.sortBy(colID)
		return m, nil
	}
	addr, ok := m.cellAt(ev.X, ev.Y)
	if !ok {
		return m, nil
	}

	m.ctrl.ClearError()
	now := m.now()
	if m.lastClick.addr == addr && now.Sub(m.lastClick.at) <= doubleClickInterval {
		m.ctrl.DoubleClick(addr)
		m.lastClick = click{}
	} else {
		var mod grid.Modifier
		if ev.Shift {
			mod |= grid.ModShift
		}
		if ev.Ctrl {
			mod |= grid.ModCtrl
		}
		if ev.Alt {
			mod |= grid.ModAlt
		}
		m.ctrl.Click(addr, mod)
		m.lastClick = click{addr: addr, at: now}
	}
	m.resize()
	m.revealFocusedColumn()
	return m, nil
}

func (m *GridModel) applyResult(res sink.Result) {
	if res.Err == nil {
		m.ctrl.ApplyAck(res.Intent.Address, res.Intent.Seq)
		return
	}
	if m.ctrl.ApplyRevert(res.Revert()) {
		logging.Debug("Commit reverted in grid",
			zap.String("cell", res.Intent.Address.String()),
			zap.Error(res.Err),
		)
	}
}

// sortFocused cycles the sort of the focused column
func (m *GridModel) sortFocused() {
	focused, ok := m.store.Snapshot().Focused()
	if !ok {
		m.status = "focus a cell to sort by its column"
		return
	}
	m.sortBy(focused.ColumnID)
}

func (m *GridModel) sortBy(columnID string) {
	keys := dataset.NextSort(m.store.Snapshot().Sort(), columnID)
	m.store.SetSort(keys)
	m.ctrl.ReplaceRows(m.data.Sort(keys))
	m.afterRowsChanged()
}

// replaceRows swaps in reloaded rows, keeping the sort and any focus on a
// row that still exists
func (m *GridModel) replaceRows(rows []dataset.Row) {
	m.data.Replace(rows)
	m.ctrl.ReplaceRows(m.data.RowIDs())
	m.afterRowsChanged()
}

func (m *GridModel) afterRowsChanged() {
	snap := m.store.Snapshot()
	m.virt.SetRowCount(snap.RowCount())
	if focused, ok := snap.Focused(); ok {
		if i, ok := snap.RowIndex(focused.RowID); ok {
			m.virt.EnsureVisible(i)
		}
	}
}

func (m GridModel) copyFocused() tea.Cmd {
	focused, ok := m.store.Snapshot().Focused()
	if !ok {
		return nil
	}
	v, _ := m.data.Value(focused)
	text := grid.FormatValue(v)
	write := m.copy
	return func() tea.Msg {
		return copiedMsg{addr: focused, err: write(text)}
	}
}

func (m GridModel) reloadCmd() tea.Cmd {
	if m.reload == nil {
		return nil
	}
	reload := m.reload
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		rows, err := reload(ctx)
		return reloadedMsg{rows: rows, err: err}
	}
}

func waitForResult(results <-chan sink.Result) tea.Cmd {
	if results == nil {
		return nil
	}
	return func() tea.Msg {
		return resultMsg{result: <-results}
	}
}

func waitForChange(changed <-chan struct{}) tea.Cmd {
	if changed == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-changed; !ok {
			return nil
		}
		return datasetChangedMsg{}
	}
}
