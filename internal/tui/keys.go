package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/budgetgrid/internal/grid"
)

// gridKeyMap holds the application bindings of the grid screen. Cell
// navigation and editing keys are interpreted by the grid controller; they
// appear here for the help view only.
type gridKeyMap struct {
	Navigate key.Binding
	Edit     key.Binding
	Commit   key.Binding
	Cancel   key.Binding
	Newline  key.Binding
	Step     key.Binding
	Sort     key.Binding
	Copy     key.Binding
	All      key.Binding
	Reload   key.Binding
	Help     key.Binding
	Quit     key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k gridKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Navigate, k.Edit, k.Sort, k.Copy, k.Help, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k gridKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Navigate, k.Edit, k.Commit, k.Cancel},
		{k.Newline, k.Step, k.Sort, k.Copy},
		{k.All, k.Reload, k.Help, k.Quit},
	}
}

func newGridKeyMap() gridKeyMap {
	return gridKeyMap{
		Navigate: key.NewBinding(
			key.WithKeys("up", "down", "left", "right", "tab", "shift+tab", "pgup", "pgdown", "home", "end"),
			key.WithHelp("←↑↓→/tab", "move"),
		),
		Edit: key.NewBinding(
			key.WithKeys("enter", "f2"),
			key.WithHelp("enter/f2/type", "edit"),
		),
		Commit: key.NewBinding(
			key.WithKeys("enter", "tab", "ctrl+s"),
			key.WithHelp("enter/tab", "commit"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		Newline: key.NewBinding(
			key.WithKeys("ctrl+s", "ctrl+j"),
			key.WithHelp("ctrl+s", "commit notes"),
		),
		Step: key.NewBinding(
			key.WithKeys("alt+up", "alt+down"),
			key.WithHelp("alt+↑/↓", "step number"),
		),
		Sort: key.NewBinding(
			key.WithKeys("alt+s"),
			key.WithHelp("alt+s", "sort"),
		),
		Copy: key.NewBinding(
			key.WithKeys("ctrl+y"),
			key.WithHelp("ctrl+y", "copy"),
		),
		All: key.NewBinding(
			key.WithKeys("ctrl+a"),
			key.WithHelp("ctrl+a", "select all"),
		),
		Reload: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "reload"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+q"),
			key.WithHelp("ctrl+q", "quit"),
		),
	}
}

// translateKey converts a terminal key press into grid key events. Runes
// arrive in batches when pasted, so a single message may yield several
// events. Terminals cannot report ctrl+enter or shift+enter reliably:
// ctrl+s and ctrl+j stand in for ctrl+enter and alt+enter for shift+enter.
func translateKey(msg tea.KeyMsg) []grid.KeyEvent {
	var mod grid.Modifier
	if msg.Alt {
		mod |= grid.ModAlt
	}
	press := func(k grid.Key, mods ...grid.Modifier) []grid.KeyEvent {
		ev := grid.Press(k, mods...)
		ev.Mod |= mod
		return []grid.KeyEvent{ev}
	}

	switch msg.Type {
	case tea.KeyRunes:
		events := make([]grid.KeyEvent, 0, len(msg.Runes))
		for _, r := range msg.Runes {
			ev := grid.Rune(r)
			ev.Mod = mod
			events = append(events, ev)
		}
		return events
	case tea.KeySpace:
		ev := grid.Rune(' ')
		ev.Mod = mod
		return []grid.KeyEvent{ev}

	case tea.KeyEnter:
		if msg.Alt {
			return []grid.KeyEvent{grid.Press(grid.KeyEnter, grid.ModShift)}
		}
		return press(grid.KeyEnter)
	case tea.KeyCtrlS, tea.KeyCtrlJ:
		return press(grid.KeyEnter, grid.ModCtrl)
	case tea.KeyTab:
		return press(grid.KeyTab)
	case tea.KeyShiftTab:
		return press(grid.KeyTab, grid.ModShift)
	case tea.KeyEsc:
		return press(grid.KeyEscape)
	case tea.KeyBackspace, tea.KeyCtrlH:
		return press(grid.KeyBackspace)
	case tea.KeyDelete:
		return press(grid.KeyDelete)
	case tea.KeyF2:
		return press(grid.KeyF2)

	case tea.KeyUp:
		return press(grid.KeyUp)
	case tea.KeyDown:
		return press(grid.KeyDown)
	case tea.KeyLeft:
		return press(grid.KeyLeft)
	case tea.KeyRight:
		return press(grid.KeyRight)
	case tea.KeyShiftUp:
		return press(grid.KeyUp, grid.ModShift)
	case tea.KeyShiftDown:
		return press(grid.KeyDown, grid.ModShift)
	case tea.KeyShiftLeft:
		return press(grid.KeyLeft, grid.ModShift)
	case tea.KeyShiftRight:
		return press(grid.KeyRight, grid.ModShift)
	case tea.KeyCtrlUp:
		return press(grid.KeyUp, grid.ModCtrl)
	case tea.KeyCtrlDown:
		return press(grid.KeyDown, grid.ModCtrl)
	case tea.KeyCtrlLeft:
		return press(grid.KeyLeft, grid.ModCtrl)
	case tea.KeyCtrlRight:
		return press(grid.KeyRight, grid.ModCtrl)

	case tea.KeyHome:
		return press(grid.KeyHome)
	case tea.KeyEnd:
		return press(grid.KeyEnd)
	case tea.KeyShiftHome:
		return press(grid.KeyHome, grid.ModShift)
	case tea.KeyShiftEnd:
		return press(grid.KeyEnd, grid.ModShift)
	case tea.KeyCtrlHome:
		return press(grid.KeyHome, grid.ModCtrl)
	case tea.KeyCtrlEnd:
		return press(grid.KeyEnd, grid.ModCtrl)
	case tea.KeyPgUp:
		return press(grid.KeyPageUp)
	case tea.KeyPgDown:
		return press(grid.KeyPageDown)
	case tea.KeyCtrlPgUp:
		return press(grid.KeyPageUp, grid.ModCtrl)
	case tea.KeyCtrlPgDown:
		return press(grid.KeyPageDown, grid.ModCtrl)
	}
	return nil
}
