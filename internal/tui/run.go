package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/budgetgrid/internal/discovery"
)

// ErrNoPeerChosen is returned when the picker closes without a choice
var ErrNoPeerChosen = errors.New("no commit sink chosen")

// RunGrid runs the grid screen full-screen until the user quits. Mouse
// and terminal focus reporting are enabled.
func RunGrid(ctx context.Context, cfg Config) error {
	p := tea.NewProgram(NewGridModel(cfg),
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithReportFocus(),
	)
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("grid: %w", err)
	}
	return nil
}

// PickPeer shows the peer picker and returns the chosen commit sink
func PickPeer(ctx context.Context, scan ScanFunc) (*discovery.Peer, error) {
	p := tea.NewProgram(NewPeerPickerModel(scan), tea.WithContext(ctx), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("peer picker: %w", err)
	}
	m, ok := final.(PeerPickerModel)
	if !ok || m.Chosen == nil {
		return nil, ErrNoPeerChosen
	}
	return m.Chosen, nil
}
