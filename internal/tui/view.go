package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/muurk/budgetgrid/internal/grid"
	"github.com/muurk/budgetgrid/internal/ui"
)

const (
	defaultColumnWidth = 12
	minColumnWidth     = 3
	// fullHelpLines is how many more lines the expanded help takes
	fullHelpLines = 3
)

var caretStyle = ui.GridEditingStyle.Reverse(true)

// placedColumn is a column positioned on screen. Every column is followed
// by a one-cell separator.
type placedColumn struct {
	col   grid.Column
	x     int
	width int
}

func columnWidth(c grid.Column) int {
	w := c.Width
	if w <= 0 {
		w = defaultColumnWidth
	}
	if w < minColumnWidth {
		w = minColumnWidth
	}
	return w
}

// splitPinned groups the render-ordered columns by pin side
func (m GridModel) splitPinned() (left, middle, right []grid.Column) {
	for _, c := range m.cols {
		switch c.Pinned {
		case grid.PinLeft:
			left = append(left, c)
		case grid.PinRight:
			right = append(right, c)
		default:
			middle = append(middle, c)
		}
	}
	return left, middle, right
}

func spanWidth(cols []grid.Column) int {
	w := 0
	for _, c := range cols {
		w += columnWidth(c) + 1
	}
	return w
}

// middleSpace is the width left for unpinned columns
func (m GridModel) middleSpace() int {
	left, _, right := m.splitPinned()
	return m.Width - spanWidth(left) - spanWidth(right)
}

// layoutColumns places pinned columns at the edges and as many unpinned
// columns as fit between them, starting at colOffset
func (m GridModel) layoutColumns() []placedColumn {
	left, middle, right := m.splitPinned()
	var out []placedColumn
	x := 0
	place := func(c grid.Column, w int) {
		out = append(out, placedColumn{col: c, x: x, width: w})
		x += w + 1
	}

	for _, c := range left {
		place(c, columnWidth(c))
	}
	limit := m.Width - spanWidth(right)
	for i := m.colOffset; i < len(middle); i++ {
		w := columnWidth(middle[i])
		if x+w+1 > limit {
			// Clip the first unpinned column rather than show none
			if i == m.colOffset && limit-x-1 >= minColumnWidth {
				place(middle[i], limit-x-1)
			}
			break
		}
		place(middle[i], w)
	}
	for _, c := range right {
		place(c, columnWidth(c))
	}
	return out
}

// revealFocusedColumn scrolls unpinned columns so the focused one is shown
func (m *GridModel) revealFocusedColumn() {
	focused, ok := m.store.Snapshot().Focused()
	if !ok {
		return
	}
	_, middle, _ := m.splitPinned()
	j := -1
	for i, c := range middle {
		if c.ID == focused.ColumnID {
			j = i
			break
		}
	}
	if j < 0 {
		return
	}
	if j < m.colOffset {
		m.colOffset = j
		return
	}
	space := m.middleSpace()
	for m.colOffset < j && spanWidth(middle[m.colOffset:j+1]) > space {
		m.colOffset++
	}
}

// extraLines is the height taken by the expanded help and the editor box
func (m GridModel) extraLines() int {
	n := 0
	if m.Help.ShowAll {
		n += fullHelpLines
	}
	if rows, ok := m.editorBoxRows(); ok {
		n += rows + 4
	}
	return n
}

func (m GridModel) editorBoxRows() (int, bool) {
	ed, _, ok := m.ctrl.ActiveEditor()
	if !ok || ed.Type() != grid.EditorLargeText {
		return 0, false
	}
	if lt, ok := ed.(*grid.LargeTextEditor); ok {
		return lt.Rows(), true
	}
	return 4, true
}

// rowsFit is how many rows the viewport shows
func (m GridModel) rowsFit() int {
	n := (m.Height - chromeLines - m.extraLines()) / m.rowHeight
	if n < 1 {
		n = 1
	}
	return n
}

// resize keeps the virtualizer viewport a whole number of rows so every
// scroll offset it produces starts on a row boundary
func (m *GridModel) resize() {
	if m.Height == 0 {
		return
	}
	m.virt.OnResize(float64(m.rowsFit() * m.rowHeight))
	snap := m.store.Snapshot()
	if focused, ok := snap.Focused(); ok {
		if i, ok := snap.RowIndex(focused.RowID); ok {
			m.virt.EnsureVisible(i)
		}
	}
}

// headerAt returns the column whose title is at x,y
func (m GridModel) headerAt(x, y int) (string, bool) {
	if y != 1 {
		return "", false
	}
	for _, p := range m.layoutColumns() {
		if x >= p.x && x < p.x+p.width {
			return p.col.ID, true
		}
	}
	return "", false
}

// cellAt returns the cell drawn at x,y
func (m GridModel) cellAt(x, y int) (grid.CellAddress, bool) {
	if y < headerLines {
		return grid.CellAddress{}, false
	}
	slot := (y - headerLines) / m.rowHeight
	if slot >= m.rowsFit() {
		return grid.CellAddress{}, false
	}
	first, last := m.virt.VisibleRange()
	index := first + slot
	if index > last {
		return grid.CellAddress{}, false
	}
	rowID, ok := m.store.Snapshot().RowAt(index)
	if !ok {
		return grid.CellAddress{}, false
	}
	for _, p := range m.layoutColumns() {
		if x >= p.x && x < p.x+p.width {
			return grid.CellAddress{RowID: rowID, ColumnID: p.col.ID}, true
		}
	}
	return grid.CellAddress{}, false
}

// View renders the grid screen
func (m GridModel) View() string {
	if m.quitting {
		return ""
	}
	if m.Width == 0 {
		return "Loading..."
	}

	snap := m.store.Snapshot()
	cols := m.layoutColumns()
	var b strings.Builder

	b.WriteString(m.renderTitle())
	b.WriteString("\n")
	b.WriteString(m.renderHeader(snap, cols))
	b.WriteString("\n")
	b.WriteString(ui.GridSeparatorStyle.Render(strings.Repeat("─", m.Width)))
	b.WriteString("\n")

	fit := m.rowsFit()
	first, last := m.virt.VisibleRange()
	drawn := 0
	if snap.RowCount() == 0 {
		b.WriteString(ui.StatusBarStyle.Render("  no rows"))
		b.WriteString("\n")
		drawn++
	}
	for i := first; i <= last && drawn < fit; i++ {
		rowID, _ := snap.RowAt(i)
		b.WriteString(m.renderRow(snap, rowID, cols))
		b.WriteString(strings.Repeat("\n", m.rowHeight))
		drawn++
	}
	for ; drawn < fit; drawn++ {
		b.WriteString(strings.Repeat("\n", m.rowHeight))
	}

	if box := m.renderEditorBox(); box != "" {
		b.WriteString(box)
		b.WriteString("\n")
	}
	b.WriteString(m.renderStatus(snap))
	b.WriteString("\n")
	b.WriteString(m.Help.View(m.Keys))
	return b.String()
}

func (m GridModel) renderTitle() string {
	title := ui.HeaderTitleStyle.Render(m.title)
	if m.source == "" {
		return title
	}
	return title + ui.HeaderCommandStyle.Render(m.source)
}

func (m GridModel) renderHeader(snap *grid.Snapshot, cols []placedColumn) string {
	indicators := make(map[string]string)
	keys := snap.Sort()
	for i, k := range keys {
		arrow := "▲"
		if k.Descending {
			arrow = "▼"
		}
		if len(keys) > 1 {
			arrow += fmt.Sprint(i + 1)
		}
		indicators[k.ColumnID] = arrow
	}

	var b strings.Builder
	sep := ui.GridSeparatorStyle.Render("│")
	for _, p := range cols {
		title := p.col.Title
		if title == "" {
			title = p.col.ID
		}
		if ind, ok := indicators[p.col.ID]; ok {
			title = runewidth.Truncate(title, p.width-runewidth.StringWidth(ind)-1, "…") + " " + ind
		}
		b.WriteString(ui.GridHeaderStyle.Render(fitText(title, p.width)))
		b.WriteString(sep)
	}
	return b.String()
}

func (m GridModel) renderRow(snap *grid.Snapshot, rowID string, cols []placedColumn) string {
	selected := snap.IsSelected(rowID)
	sep := ui.GridSeparatorStyle.Render("│")
	var b strings.Builder
	for _, p := range cols {
		addr := grid.CellAddress{RowID: rowID, ColumnID: p.col.ID}
		b.WriteString(m.renderCell(snap, addr, p, selected))
		b.WriteString(sep)
	}
	return b.String()
}

func (m GridModel) renderCell(snap *grid.Snapshot, addr grid.CellAddress, p placedColumn, selected bool) string {
	state := snap.StateOf(addr)
	if state == grid.CellEditing {
		if ed, _, ok := m.ctrl.ActiveEditor(); ok && ed.Type() != grid.EditorLargeText {
			return caretLine(ed.Text(), ed.Caret(), ed.Selected(), p.width)
		}
	}

	text := flatten(m.ctrl.Display(addr))
	if p.col.EditorType == grid.EditorNumber {
		text = fitTextRight(text, p.width)
	} else {
		text = fitText(text, p.width)
	}

	var style lipgloss.Style
	switch {
	case state == grid.CellEditing:
		style = ui.GridEditingStyle
	case state == grid.CellFocused:
		style = ui.GridFocusStyle
	case !p.col.Editable:
		style = ui.GridReadOnlyStyle
	default:
		style = ui.GridCellStyle
	}
	if selected && state == grid.CellIdle {
		style = style.Background(ui.SelectColor)
	}
	return style.Render(text)
}

// renderEditorBox draws the open multi-line editor below the grid
func (m GridModel) renderEditorBox() string {
	rows, ok := m.editorBoxRows()
	if !ok {
		return ""
	}
	ed, addr, _ := m.ctrl.ActiveEditor()
	col, _ := m.ctrl.Column(addr.ColumnID)
	title := col.Title
	if title == "" {
		title = col.ID
	}

	inner := m.Width - 4
	if inner < minColumnWidth {
		inner = minColumnWidth
	}
	lines := caretLines(ed.Text(), ed.Caret(), ed.Selected(), inner, rows)
	body := ui.GridHeaderStyle.Render(title+" · "+addr.RowID) + "\n" + strings.Join(lines, "\n")
	box := ui.EditorBoxStyle.Width(m.Width - 2).Render(body)

	footer := ui.StatusBarStyle.Render("  ctrl+s commit · enter newline · esc cancel")
	if e := ed.Err(); e != "" {
		footer = ui.StatusErrorStyle.Render(runewidth.Truncate("  "+ui.FailureMarker+" "+e, m.Width, "…"))
	}
	return box + "\n" + footer
}

func (m GridModel) renderStatus(snap *grid.Snapshot) string {
	var parts []string
	if focused, ok := snap.Focused(); ok {
		i, _ := snap.RowIndex(focused.RowID)
		parts = append(parts, fmt.Sprintf("%s  row %d/%d", focused, i+1, snap.RowCount()))
	} else {
		parts = append(parts, fmt.Sprintf("%d rows", snap.RowCount()))
	}
	if n := snap.SelectionCount(); n > 1 {
		parts = append(parts, fmt.Sprintf("%d selected", n))
	}
	if w := m.virt.Window(); w.Len() > 0 {
		parts = append(parts, fmt.Sprintf("window %d-%d", w.First+1, w.Last+1))
	}
	info := strings.Join(parts, " · ")

	pending := ""
	if n := m.ctrl.Pending(); n > 0 {
		pending = fmt.Sprintf(" %s saving %d", m.Spinner.View(), n)
	}

	room := m.Width - runewidth.StringWidth(info) - 4
	if n := m.ctrl.Pending(); n > 0 {
		room -= len(fmt.Sprintf("  saving %d", n))
	}
	msg := ""
	switch {
	case m.ctrl.LastError() != nil && room > 0:
		msg = "  " + ui.StatusErrorStyle.Render(runewidth.Truncate(ui.FailureMarker+" "+m.ctrl.LastError().Error(), room, "…"))
	case m.status != "" && room > 0:
		msg = "  " + ui.StatusBarStyle.Render(runewidth.Truncate(m.status, room, "…"))
	}
	return ui.StatusBarStyle.Render(" "+info) + pending + msg
}

// flatten shows multi-line values on one line
func flatten(s string) string {
	return strings.ReplaceAll(s, "\n", "↵")
}

// fitText truncates or pads s to exactly width cells
func fitText(s string, width int) string {
	return runewidth.FillRight(runewidth.Truncate(s, width, "…"), width)
}

// fitTextRight is fitText with the text aligned right
func fitTextRight(s string, width int) string {
	return runewidth.FillLeft(runewidth.Truncate(s, width, "…"), width)
}

// caretLine renders single-line editor text in exactly width cells with
// the caret shown as a reversed cell, scrolling left to keep it visible
func caretLine(text string, caret int, selectAll bool, width int) string {
	if selectAll {
		return caretStyle.Render(fitText(text, width))
	}
	runes := []rune(text)
	if caret < 0 {
		caret = 0
	}
	if caret > len(runes) {
		caret = len(runes)
	}
	before := runes[:caret]
	at := " "
	var after []rune
	if caret < len(runes) {
		at = string(runes[caret])
		after = runes[caret+1:]
	}

	atWidth := runewidth.StringWidth(at)
	for len(before) > 0 && runewidth.StringWidth(string(before))+atWidth > width {
		before = before[1:]
	}
	rest := width - runewidth.StringWidth(string(before)) - atWidth
	tail := ""
	if rest > 0 {
		tail = runewidth.FillRight(runewidth.Truncate(string(after), rest, ""), rest)
	}
	return ui.GridEditingStyle.Render(string(before)) +
		caretStyle.Render(at) +
		ui.GridEditingStyle.Render(tail)
}

// caretLines renders multi-line editor text as exactly height lines of
// width cells, scrolled so the caret line is visible
func caretLines(text string, caret int, selectAll bool, width, height int) []string {
	lines := strings.Split(text, "\n")

	caretRow, caretCol := 0, caret
	for i, l := range lines {
		n := len([]rune(l))
		if caretCol <= n {
			caretRow = i
			break
		}
		caretCol -= n + 1
	}

	start := 0
	if caretRow >= height {
		start = caretRow - height + 1
	}
	out := make([]string, 0, height)
	for i := start; i < start+height; i++ {
		switch {
		case i >= len(lines):
			out = append(out, strings.Repeat(" ", width))
		case selectAll:
			out = append(out, caretStyle.Render(fitText(lines[i], width)))
		case i == caretRow:
			out = append(out, caretLine(lines[i], caretCol, false, width))
		default:
			out = append(out, ui.GridCellStyle.Render(fitText(lines[i], width)))
		}
	}
	return out
}
