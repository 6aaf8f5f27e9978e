package tui

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/budgetgrid/internal/discovery"
	"github.com/muurk/budgetgrid/internal/ui"
)

// ScanFunc browses the network for commit sinks
type ScanFunc func(ctx context.Context) ([]*discovery.Peer, error)

// Messages for async operations
type scanStartMsg struct{}
type scanCompleteMsg struct {
	peers []*discovery.Peer
	err   error
}

// peerKeyMap defines key bindings for the peer list
type peerKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Choose key.Binding
	Rescan key.Binding
	Manual key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k peerKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Choose, k.Rescan, k.Manual, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k peerKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Choose},
		{k.Rescan, k.Manual, k.Quit},
	}
}

// manualKeyMap defines key bindings for manual URL entry
type manualKeyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k manualKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Confirm, k.Cancel}
}

// FullHelp returns keybindings for the expanded help view
func (k manualKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Confirm, k.Cancel}}
}

// peerItem adapts a Peer to bubbles/list
type peerItem struct {
	peer *discovery.Peer
}

func (p peerItem) FilterValue() string {
	return p.peer.Instance + " " + p.peer.Hostname + " " + p.peer.IP
}

// Title returns the instance name for list display
func (p peerItem) Title() string {
	if p.peer.Instance == manualInstance {
		return "Manual: " + p.peer.URL()
	}
	return p.peer.Instance
}

// Description returns the address and advertised version
func (p peerItem) Description() string {
	v := p.peer.GetMetadata("version")
	if v == "" {
		v = "unknown"
	}
	return fmt.Sprintf("%s • version %s", p.peer.URL(), v)
}

// peerDelegate renders a peer as a two-line entry
type peerDelegate struct{}

func (d peerDelegate) Height() int { return 2 }
func (d peerDelegate) Spacing() int { return 1 }
func (d peerDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d peerDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(peerItem)
	if !ok {
		return
	}
	title := "  " + it.Title()
	if index == m.Index() {
		title = ui.GridHeaderStyle.Render("→ " + it.Title())
	}
	fmt.Fprintf(w, "%s\n    %s", title, ui.StatusBarStyle.Render(it.Description()))
}

// manualInstance marks a peer typed in by hand
const manualInstance = "manual"

// PeerPickerModel scans for commit sinks and lets the user pick one, or
// type a sink URL by hand
type PeerPickerModel struct {
	scan ScanFunc

	// Discovery state
	Scanning bool
	Peers    list.Model
	Chosen   *discovery.Peer
	Err      error

	// Manual URL entry state
	ManualMode bool
	URLInput   textinput.Model
	InputErr   string

	// UI state
	Width      int
	Height     int
	Spinner    spinner.Model
	ScanStart  time.Time
	Help       help.Model
	Keys       peerKeyMap
	ManualKeys manualKeyMap
}

// NewPeerPickerModel creates the picker. scan defaults to a discovery
// scanner with the default timeout.
func NewPeerPickerModel(scan ScanFunc) PeerPickerModel {
	if scan == nil {
		scan = discovery.NewScanner().Scan
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = ui.StepRunningStyle

	input := textinput.New()
	input.Placeholder = fmt.Sprintf("ws://host:%d%s", discovery.DefaultPort, discovery.DefaultPath)
	input.CharLimit = 256
	input.Width = 48

	peers := list.New([]list.Item{}, peerDelegate{}, 0, 0)
	peers.Title = "Commit sinks"
	peers.SetShowStatusBar(false)
	peers.SetShowHelp(false)
	peers.SetFilteringEnabled(true)
	peers.Styles.Title = ui.HeaderTitleStyle

	return PeerPickerModel{
		scan:     scan,
		Peers:    peers,
		URLInput: input,
		Spinner:  s,
		Help:     help.New(),
		Keys: peerKeyMap{
			Up: key.NewBinding(
				key.WithKeys("up", "k"),
				key.WithHelp("↑/k", "move up"),
			),
			Down: key.NewBinding(
				key.WithKeys("down", "j"),
				key.WithHelp("↓/j", "move down"),
			),
			Choose: key.NewBinding(
				key.WithKeys("enter"),
				key.WithHelp("enter", "connect"),
			),
			Rescan: key.NewBinding(
				key.WithKeys("r"),
				key.WithHelp("r", "rescan"),
			),
			Manual: key.NewBinding(
				key.WithKeys("m"),
				key.WithHelp("m", "enter URL"),
			),
			Quit: key.NewBinding(
				key.WithKeys("q", "ctrl+c"),
				key.WithHelp("q", "quit"),
			),
		},
		ManualKeys: manualKeyMap{
			Confirm: key.NewBinding(
				key.WithKeys("enter"),
				key.WithHelp("enter", "confirm"),
			),
			Cancel: key.NewBinding(
				key.WithKeys("esc"),
				key.WithHelp("esc", "cancel"),
			),
		},
	}
}

// Init starts the first scan
func (m PeerPickerModel) Init() tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return scanStartMsg{} },
		scanPeers(m.scan),
		m.Spinner.Tick,
	)
}

// Update handles messages and updates the model
func (m PeerPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.ManualMode {
			return m.updateManualMode(msg)
		}
		return m.updateListMode(msg)

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Help.Width = msg.Width
		m.Peers.SetSize(msg.Width-4, msg.Height-6)
		return m, nil

	case scanStartMsg:
		m.Scanning = true
		m.ScanStart = time.Now()
		return m, nil

	case scanCompleteMsg:
		m.Scanning = false
		m.Err = msg.err
		items := make([]list.Item, len(msg.peers))
		for i, p := range msg.peers {
			items[i] = peerItem{peer: p}
		}
		cmd = m.Peers.SetItems(items)
		return m, cmd

	case spinner.TickMsg:
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}

	if !m.ManualMode && !m.Scanning {
		m.Peers, cmd = m.Peers.Update(msg)
	}
	return m, cmd
}

func (m PeerPickerModel) updateListMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.Peers.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.Peers, cmd = m.Peers.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.Keys.Choose):
		if it, ok := m.Peers.SelectedItem().(peerItem); ok {
			m.Chosen = it.peer
			return m, tea.Quit
		}
		return m, nil

	case key.Matches(msg, m.Keys.Rescan):
		if m.Scanning {
			return m, nil
		}
		m.Err = nil
		reset := m.Peers.SetItems(nil)
		return m, tea.Batch(
			reset,
			func() tea.Msg { return scanStartMsg{} },
			scanPeers(m.scan),
			m.Spinner.Tick,
		)

	case key.Matches(msg, m.Keys.Manual):
		m.ManualMode = true
		m.InputErr = ""
		m.URLInput.SetValue("")
		cmd := m.URLInput.Focus()
		return m, cmd
	}

	var cmd tea.Cmd
	if !m.Scanning {
		m.Peers, cmd = m.Peers.Update(msg)
	}
	return m, cmd
}

func (m PeerPickerModel) updateManualMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.ManualKeys.Cancel):
		m.ManualMode = false
		m.URLInput.Blur()
		return m, nil

	case key.Matches(msg, m.ManualKeys.Confirm):
		peer, err := ParseSinkURL(m.URLInput.Value())
		if err != nil {
			m.InputErr = err.Error()
			return m, nil
		}
		m.Chosen = peer
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.URLInput, cmd = m.URLInput.Update(msg)
	return m, cmd
}

// ParseSinkURL turns a typed ws:// or wss:// URL into a peer
func ParseSinkURL(raw string) (*discovery.Peer, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, fmt.Errorf("URL must start with ws:// or wss://")
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("URL has no host")
	}
	port := discovery.DefaultPort
	if p := u.Port(); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n <= 0 || n > 65535 {
			return nil, fmt.Errorf("invalid port %q", p)
		}
		port = n
	}
	path := u.Path
	if path == "" {
		path = discovery.DefaultPath
	}
	return &discovery.Peer{
		Instance:     manualInstance,
		Hostname:     u.Hostname(),
		IP:           u.Hostname(),
		Port:         port,
		Metadata:     map[string]string{"path": path, "scheme": u.Scheme},
		DiscoveredAt: time.Now(),
	}, nil
}

// View renders the picker
func (m PeerPickerModel) View() string {
	var content string
	var helpText string

	switch {
	case m.ManualMode:
		content = m.renderManualEntry()
		helpText = m.Help.View(m.ManualKeys)
	case m.Scanning:
		elapsed := time.Since(m.ScanStart).Round(time.Second)
		content = fmt.Sprintf("\n  %s Browsing %s for commit sinks... (%s)\n",
			m.Spinner.View(), discovery.ServiceType, elapsed)
		helpText = m.Help.View(m.Keys)
	default:
		content = m.renderResults()
		helpText = m.Help.View(m.Keys)
	}
	return lipgloss.JoinVertical(lipgloss.Left, content, "", "  "+helpText)
}

func (m PeerPickerModel) renderResults() string {
	var b strings.Builder
	b.WriteString("\n")

	switch {
	case m.Err != nil:
		b.WriteString(ui.ErrorTitleStyle.Render(fmt.Sprintf("  %s Scan failed: %v", ui.FailureMarker, m.Err)))
		b.WriteString("\n\n")
		b.WriteString(renderScanHints())
	case len(m.Peers.Items()) == 0:
		b.WriteString(ui.WarningTitleStyle.Render("  " + ui.WarningMarker + " No commit sinks found on your network"))
		b.WriteString("\n\n")
		b.WriteString(renderScanHints())
	default:
		b.WriteString(m.Peers.View())
	}
	return b.String()
}

func renderScanHints() string {
	var b strings.Builder
	b.WriteString(ui.TroubleshootingTitleStyle.Render("  Troubleshooting:"))
	b.WriteString("\n")
	for _, hint := range []string{
		"Start a sink with 'budgetgrid-sink serve --instance <name>'",
		"Multicast DNS must be allowed between this host and the sink",
		"Press 'm' to type the sink URL instead",
	} {
		b.WriteString(ui.TroubleshootingItemStyle.Render("    • " + hint))
		b.WriteString("\n")
	}
	return b.String()
}

func (m PeerPickerModel) renderManualEntry() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(ui.HeaderTitleStyle.Render("Enter commit sink URL"))
	b.WriteString("\n\n  URL: ")
	b.WriteString(m.URLInput.View())
	b.WriteString("\n")
	if m.InputErr != "" {
		b.WriteString("\n")
		b.WriteString(ui.ErrorMessageStyle.Render("  " + m.InputErr))
		b.WriteString("\n")
	}
	return b.String()
}

func scanPeers(scan ScanFunc) tea.Cmd {
	return func() tea.Msg {
		peers, err := scan(context.Background())
		return scanCompleteMsg{peers: peers, err: err}
	}
}
