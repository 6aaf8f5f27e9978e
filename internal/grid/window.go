package grid

import "math"

// Window is the contiguous range of row positions to render.
// An empty dataset yields First 0 and Last -1.
type Window struct {
	First int
	Last  int

	// PaddingBefore/PaddingAfter stand in for the rows outside the window
	PaddingBefore float64
	PaddingAfter  float64

	// TotalSize is the full scrollable extent
	TotalSize float64
}

// Len returns the number of rows in the window
func (w Window) Len() int {
	if w.Last < w.First {
		return 0
	}
	return w.Last - w.First + 1
}

// Contains reports whether index is rendered
func (w Window) Contains(index int) bool {
	return index >= w.First && index <= w.Last
}

// ComputeWindow returns the rows needed to cover the viewport at scrollOffset
// plus overscan rows on each side. It is pure arithmetic and never iterates
// over rows.
//
// With overscan >= 1 the window holds at most
// ceil(viewportHeight/rowHeight) + 2*overscan rows: a partially visible
// trailing row is covered by the overscan margin instead of widening it.
func ComputeWindow(scrollOffset, viewportHeight, rowHeight float64, rowCount, overscan int) Window {
	if rowCount <= 0 || rowHeight <= 0 {
		return Window{First: 0, Last: -1}
	}
	if overscan < 0 {
		overscan = 0
	}
	if viewportHeight < 0 {
		viewportHeight = 0
	}

	total := float64(rowCount) * rowHeight
	scrollOffset = clampOffset(scrollOffset, total, viewportHeight)

	start := int(math.Floor(scrollOffset / rowHeight))
	if start > rowCount-1 {
		start = rowCount - 1
	}
	capacity := int(math.Ceil(viewportHeight / rowHeight))
	if capacity < 1 {
		capacity = 1
	}

	// Last row intersecting the viewport
	exactEnd := int(math.Ceil((scrollOffset+viewportHeight)/rowHeight)) - 1
	end := start + capacity - 1 + overscan
	if exactEnd > end {
		end = exactEnd
	}

	first := start - overscan
	if first < 0 {
		first = 0
	}
	if end > rowCount-1 {
		end = rowCount - 1
	}

	return Window{
		First:         first,
		Last:          end,
		PaddingBefore: float64(first) * rowHeight,
		PaddingAfter:  float64(rowCount-1-end) * rowHeight,
		TotalSize:     total,
	}
}

func clampOffset(offset, total, viewport float64) float64 {
	maxOffset := total - viewport
	if maxOffset < 0 {
		maxOffset = 0
	}
	if offset > maxOffset {
		offset = maxOffset
	}
	if offset < 0 || math.IsNaN(offset) {
		offset = 0
	}
	return offset
}

// Align positions a row within the viewport for ScrollToIndex
type Align int

const (
	// AlignAuto scrolls the minimum distance needed to show the row
	AlignAuto Align = iota
	AlignStart
	AlignCenter
	AlignEnd
)

// Virtualizer keeps the window for one scroll container. The window is
// recomputed only by OnScroll, OnResize and SetRowCount so that unrelated
// state changes (focus, selection, editing) never trigger layout work.
type Virtualizer struct {
	rowHeight float64
	viewport  float64
	offset    float64
	rowCount  int
	overscan  int

	window     Window
	recomputes int
}

// NewVirtualizer creates a virtualizer with an estimated row height
func NewVirtualizer(rowHeight, viewportHeight float64, rowCount, overscan int) *Virtualizer {
	v := &Virtualizer{
		rowHeight: rowHeight,
		viewport:  viewportHeight,
		rowCount:  rowCount,
		overscan:  overscan,
	}
	v.recompute()
	return v
}

func (v *Virtualizer) recompute() {
	v.offset = clampOffset(v.offset, float64(v.rowCount)*v.rowHeight, v.viewport)
	v.window = ComputeWindow(v.offset, v.viewport, v.rowHeight, v.rowCount, v.overscan)
	v.recomputes++
}

// Window returns the cached window
func (v *Virtualizer) Window() Window {
	return v.window
}

// Offset returns the current scroll offset
func (v *Virtualizer) Offset() float64 {
	return v.offset
}

// Recomputes returns how many times the window has been computed
func (v *Virtualizer) Recomputes() int {
	return v.recomputes
}

// PageSize returns the number of rows that fit fully in the viewport
func (v *Virtualizer) PageSize() int {
	if v.rowHeight <= 0 {
		return 1
	}
	n := int(math.Floor(v.viewport / v.rowHeight))
	if n < 1 {
		return 1
	}
	return n
}

// OnScroll handles a scroll event
func (v *Virtualizer) OnScroll(offset float64) Window {
	v.offset = offset
	v.recompute()
	return v.window
}

// ScrollBy scrolls relative to the current offset
func (v *Virtualizer) ScrollBy(delta float64) Window {
	return v.OnScroll(v.offset + delta)
}

// OnResize handles a viewport resize event
func (v *Virtualizer) OnResize(viewportHeight float64) Window {
	v.viewport = viewportHeight
	v.recompute()
	return v.window
}

// SetRowCount updates the dataset size, recomputing only if it changed
func (v *Virtualizer) SetRowCount(n int) Window {
	if n == v.rowCount {
		return v.window
	}
	v.rowCount = n
	v.recompute()
	return v.window
}

// ScrollToIndex scrolls so that row index is placed according to align
func (v *Virtualizer) ScrollToIndex(index int, align Align) Window {
	if v.rowCount == 0 {
		return v.window
	}
	index = clamp(index, 0, v.rowCount-1)
	top := float64(index) * v.rowHeight
	bottom := top + v.rowHeight

	target := v.offset
	switch align {
	case AlignStart:
		target = top
	case AlignEnd:
		target = bottom - v.viewport
	case AlignCenter:
		target = top - (v.viewport-v.rowHeight)/2
	default:
		if top < v.offset {
			target = top
		} else if bottom > v.offset+v.viewport {
			target = bottom - v.viewport
		} else {
			return v.window
		}
	}
	return v.OnScroll(target)
}

// EnsureVisible scrolls the minimum distance to show index
func (v *Virtualizer) EnsureVisible(index int) {
	v.ScrollToIndex(index, AlignAuto)
}

// VisibleRange returns the rows intersecting the viewport, without overscan
func (v *Virtualizer) VisibleRange() (first, last int) {
	w := ComputeWindow(v.offset, v.viewport, v.rowHeight, v.rowCount, 0)
	return w.First, w.Last
}
