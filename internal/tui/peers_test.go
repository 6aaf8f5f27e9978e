package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/budgetgrid/internal/discovery"
)

func TestParseSinkURL(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"full", "ws://10.0.0.5:9000/sink", "ws://10.0.0.5:9000/sink", false},
		{"default port and path", "ws://office.local", "ws://office.local:8470/ws", false},
		{"tls", "wss://sink.example.com:443/ws", "wss://sink.example.com:443/ws", false},
		{"trims spaces", "  ws://10.0.0.5:8470/ws ", "ws://10.0.0.5:8470/ws", false},
		{"http scheme", "http://10.0.0.5:8470/ws", "", true},
		{"no host", "ws:///ws", "", true},
		{"bad port", "ws://10.0.0.5:99999/ws", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			peer, err := ParseSinkURL(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSinkURL(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if got := peer.URL(); got != tt.want {
				t.Errorf("URL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func updatePicker(t *testing.T, m PeerPickerModel, msg tea.Msg) (PeerPickerModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	pm, ok := next.(PeerPickerModel)
	if !ok {
		t.Fatalf("Update() returned %T", next)
	}
	return pm, cmd
}

func TestPeerPickerChoosesScannedPeer(t *testing.T) {
	peers := []*discovery.Peer{
		{Instance: "office", IP: "10.0.0.5", Port: 8470},
		{Instance: "laptop", IP: "10.0.0.9", Port: 8470},
	}
	m := NewPeerPickerModel(func(ctx context.Context) ([]*discovery.Peer, error) { return peers, nil })
	m, _ = updatePicker(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
	m, _ = updatePicker(t, m, scanStartMsg{})
	if !m.Scanning {
		t.Fatal("picker should be scanning")
	}
	if !strings.Contains(m.View(), discovery.ServiceType) {
		t.Error("scanning view should name the service type")
	}

	m, _ = updatePicker(t, m, scanPeers(m.scan)())
	if m.Scanning || len(m.Peers.Items()) != 2 {
		t.Fatalf("after scan: scanning=%v items=%d", m.Scanning, len(m.Peers.Items()))
	}

	m, _ = updatePicker(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, cmd := updatePicker(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.Chosen == nil || m.Chosen.Instance != "laptop" {
		t.Errorf("Chosen = %v, want laptop", m.Chosen)
	}
	if cmd == nil {
		t.Fatal("choosing should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("choosing should quit")
	}
}

func TestPeerPickerEmptyAndFailedScans(t *testing.T) {
	m := NewPeerPickerModel(nil)
	m, _ = updatePicker(t, m, scanCompleteMsg{})
	if !strings.Contains(m.View(), "No commit sinks found") {
		t.Error("empty scan should say no sinks were found")
	}

	m, _ = updatePicker(t, m, scanCompleteMsg{err: errors.New("no multicast interface")})
	if !strings.Contains(m.View(), "no multicast interface") {
		t.Error("failed scan should show the error")
	}

	_, cmd := updatePicker(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Error("enter with no peers should do nothing")
	}
}

func TestPeerPickerManualEntry(t *testing.T) {
	m := NewPeerPickerModel(func(ctx context.Context) ([]*discovery.Peer, error) { return nil, nil })
	m, _ = updatePicker(t, m, scanCompleteMsg{})

	m, _ = updatePicker(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'m'}})
	if !m.ManualMode {
		t.Fatal("m should open manual entry")
	}

	m, _ = updatePicker(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("http://nope")})
	m, _ = updatePicker(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.Chosen != nil || m.InputErr == "" {
		t.Fatalf("invalid URL accepted: chosen=%v err=%q", m.Chosen, m.InputErr)
	}

	m.URLInput.SetValue("ws://10.0.0.7:8470/ws")
	m, cmd := updatePicker(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.Chosen == nil || m.Chosen.URL() != "ws://10.0.0.7:8470/ws" {
		t.Errorf("Chosen = %v", m.Chosen)
	}
	if cmd == nil {
		t.Error("confirming a URL should quit")
	}

	m.ManualMode = true
	m, _ = updatePicker(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.ManualMode {
		t.Error("esc should leave manual entry")
	}
}
