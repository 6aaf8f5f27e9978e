package grid

import "testing"

func TestClassifyTrigger(t *testing.T) {
	tests := []struct {
		name   string
		ev     KeyEvent
		wantOK bool
		want   Entry
	}{
		{"letter types", Rune('x'), true, Entry{Mode: EntryTyped, Key: "x"}},
		{"digit types", Rune('7'), true, Entry{Mode: EntryTyped, Key: "7"}},
		{"space types", Rune(' '), true, Entry{Mode: EntryTyped, Key: " "}},
		{"minus types", Rune('-'), true, Entry{Mode: EntryTyped, Key: "-"}},
		{"unicode letter types", Rune('é'), true, Entry{Mode: EntryTyped, Key: "é"}},
		{"shifted letter types", KeyEvent{Key: KeyRune, Rune: 'X', Mod: ModShift}, true, Entry{Mode: EntryTyped, Key: "X"}},
		{"F2 opens existing", Press(KeyF2), true, Entry{Mode: EntryExisting}},
		{"enter opens existing", Press(KeyEnter), true, Entry{Mode: EntryExisting}},
		{"backspace clears", Press(KeyBackspace), true, Entry{Mode: EntryClear}},
		{"delete clears", Press(KeyDelete), true, Entry{Mode: EntryClear}},
		{"ctrl+c is not a trigger", KeyEvent{Key: KeyRune, Rune: 'c', Mod: ModCtrl}, false, Entry{}},
		{"cmd+v is not a trigger", KeyEvent{Key: KeyRune, Rune: 'v', Mod: ModMeta}, false, Entry{}},
		{"alt+x is not a trigger", KeyEvent{Key: KeyRune, Rune: 'x', Mod: ModAlt}, false, Entry{}},
		{"shift+enter is not a trigger", Press(KeyEnter, ModShift), false, Entry{}},
		{"tab is not a trigger", Press(KeyTab), false, Entry{}},
		{"arrow is not a trigger", Press(KeyDown), false, Entry{}},
		{"escape is not a trigger", Press(KeyEscape), false, Entry{}},
		{"unlisted punctuation", Rune('~'), false, Entry{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ClassifyTrigger(tt.ev)
			if ok != tt.wantOK {
				t.Fatalf("ClassifyTrigger() ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("ClassifyTrigger() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFocusNavigation(t *testing.T) {
	tests := []struct {
		ev   KeyEvent
		want Direction
	}{
		{Press(KeyTab), NavNext},
		{Press(KeyTab, ModShift), NavPrev},
		{Press(KeyEnter, ModShift), NavUp},
		{Press(KeyEnter), NavNone},
		{Press(KeyUp), NavUp},
		{Press(KeyDown), NavDown},
		{Press(KeyUp, ModMeta), NavFirstRow},
		{Press(KeyDown, ModCtrl), NavLastRow},
		{Press(KeyLeft), NavLeft},
		{Press(KeyRight), NavRight},
		{Press(KeyHome), NavRowStart},
		{Press(KeyEnd), NavRowEnd},
		{Press(KeyHome, ModCtrl), NavFirstRow},
		{Press(KeyEnd, ModMeta), NavLastRow},
		{Press(KeyPageUp), NavPageUp},
		{Press(KeyPageDown), NavPageDown},
		{Rune('a'), NavNone},
	}

	for _, tt := range tests {
		if got := FocusNavigation(tt.ev); got != tt.want {
			t.Errorf("FocusNavigation(%+v) = %s, want %s", tt.ev, got, tt.want)
		}
	}
}

func TestPressCombinesModifiers(t *testing.T) {
	ev := Press(KeyEnter, ModCtrl, ModShift)
	if !ev.Ctrl() || !ev.Shift() || ev.Alt() || ev.Meta() {
		t.Errorf("Press() modifiers = %b", ev.Mod)
	}
	if !ev.Command() {
		t.Error("Command() should be true with ctrl held")
	}
	if ev.Plain() {
		t.Error("Plain() should be false with modifiers held")
	}
}
