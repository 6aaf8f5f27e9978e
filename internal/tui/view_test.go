package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/budgetgrid/internal/grid"
)

func TestFitText(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		width int
		right bool
		want  string
	}{
		{"pads", "ab", 4, false, "ab  "},
		{"truncates", "abcdef", 4, false, "abc…"},
		{"right aligned", "12", 5, true, "   12"},
		{"wide runes", "日本語", 4, false, "日… "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fitText(tt.in, tt.width)
			if tt.right {
				got = fitTextRight(tt.in, tt.width)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCaretLineKeepsWidthAndCaret(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		caret    int
		width    int
		contains string
		excludes string
	}{
		{"short text", "hello", 5, 8, "hello", ""},
		{"caret scrolls left", "abcdefghij", 10, 5, "ghij", "abc"},
		{"caret at start", "abcdefghij", 0, 5, "abcde", "fgh"},
		{"out of range caret", "abc", 99, 6, "abc", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := caretLine(tt.text, tt.caret, false, tt.width)
			if w := lipgloss.Width(got); w != tt.width {
				t.Errorf("width = %d, want %d", w, tt.width)
			}
			if !strings.Contains(got, tt.contains) {
				t.Errorf("caretLine() = %q, want it to contain %q", got, tt.contains)
			}
			if tt.excludes != "" && strings.Contains(got, tt.excludes) {
				t.Errorf("caretLine() = %q, must not contain %q", got, tt.excludes)
			}
		})
	}
}

func TestCaretLinesScrollsToCaretLine(t *testing.T) {
	text := "one\ntwo\nthree\nfour"
	caret := len("one\ntwo\nthree\nfo")
	lines := caretLines(text, caret, false, 10, 2)
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if !strings.Contains(lines[0], "three") || !strings.Contains(lines[1], "four") {
		t.Errorf("lines = %q, want three and four", lines)
	}
	for i, l := range lines {
		if w := lipgloss.Width(l); w != 10 {
			t.Errorf("line %d width = %d, want 10", i, w)
		}
	}

	short := caretLines("x", 1, false, 4, 3)
	if len(short) != 3 || strings.TrimSpace(short[2]) != "" {
		t.Errorf("short text lines = %q, want 3 with blank padding", short)
	}
}

func TestLayoutColumnsPinsEdges(t *testing.T) {
	m := GridModel{
		Width: 40,
		cols: grid.OrderColumns([]grid.Column{
			{ID: "a", Width: 10},
			{ID: "b", Width: 10},
			{ID: "total", Width: 8, Pinned: grid.PinRight},
			{ID: "id", Width: 4, Pinned: grid.PinLeft},
			{ID: "c", Width: 10},
		}),
	}

	var ids []string
	for _, p := range m.layoutColumns() {
		ids = append(ids, p.col.ID)
	}
	// 5 + 11 + 11 + 9 = 36; c does not fit and the right pin stays
	want := "id,a,b,total"
	if got := strings.Join(ids, ","); got != want {
		t.Errorf("placed columns = %s, want %s", got, want)
	}

	m.colOffset = 1
	ids = ids[:0]
	for _, p := range m.layoutColumns() {
		ids = append(ids, p.col.ID)
	}
	if got := strings.Join(ids, ","); got != "id,b,c,total" {
		t.Errorf("placed columns after scroll = %s", got)
	}
}

func TestLayoutColumnsClipsFirstUnpinned(t *testing.T) {
	m := GridModel{
		Width: 12,
		cols:  []grid.Column{{ID: "id", Width: 4, Pinned: grid.PinLeft}, {ID: "wide", Width: 30}},
	}
	cols := m.layoutColumns()
	if len(cols) != 2 {
		t.Fatalf("placed %d columns, want 2", len(cols))
	}
	if cols[1].width != 6 {
		t.Errorf("clipped width = %d, want 6", cols[1].width)
	}
}
