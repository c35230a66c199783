// Package snap computes target window frames for snap positions. Everything
// here is pure: no platform calls, no state.
package snap

import (
	"github.com/1broseidon/snapwindow/internal/geometry"
	"github.com/1broseidon/snapwindow/internal/platform"
)

// placement describes a position as a span of equal segments along each axis.
type placement struct {
	cols, col, colSpan int
	rows, row, rowSpan int
}

var placements = map[Position]placement{
	LeftHalf:       {cols: 2, col: 0, colSpan: 1, rows: 1, row: 0, rowSpan: 1},
	RightHalf:      {cols: 2, col: 1, colSpan: 1, rows: 1, row: 0, rowSpan: 1},
	TopHalf:        {cols: 1, col: 0, colSpan: 1, rows: 2, row: 0, rowSpan: 1},
	BottomHalf:     {cols: 1, col: 0, colSpan: 1, rows: 2, row: 1, rowSpan: 1},
	TopLeft:        {cols: 2, col: 0, colSpan: 1, rows: 2, row: 0, rowSpan: 1},
	TopRight:       {cols: 2, col: 1, colSpan: 1, rows: 2, row: 0, rowSpan: 1},
	BottomLeft:     {cols: 2, col: 0, colSpan: 1, rows: 2, row: 1, rowSpan: 1},
	BottomRight:    {cols: 2, col: 1, colSpan: 1, rows: 2, row: 1, rowSpan: 1},
	LeftThird:      {cols: 3, col: 0, colSpan: 1, rows: 1, row: 0, rowSpan: 1},
	CenterThird:    {cols: 3, col: 1, colSpan: 1, rows: 1, row: 0, rowSpan: 1},
	RightThird:     {cols: 3, col: 2, colSpan: 1, rows: 1, row: 0, rowSpan: 1},
	LeftTwoThirds:  {cols: 3, col: 0, colSpan: 2, rows: 1, row: 0, rowSpan: 1},
	RightTwoThirds: {cols: 3, col: 1, colSpan: 2, rows: 1, row: 0, rowSpan: 1},
	Maximize:       {cols: 1, col: 0, colSpan: 1, rows: 1, row: 0, rowSpan: 1},
}

// ComputeTargetRect returns the frame for position on the display's work
// area. It never returns a rect outside the work area.
func ComputeTargetRect(position Position, display platform.Display) geometry.Rect {
	return TargetRect(position, display.WorkArea)
}

// TargetRect computes the frame for position inside area.
//
// Segments along an axis share total/parts pixels each and the last segment
// absorbs the remainder, so adjacent positions tile the area exactly.
// Unknown positions yield the whole area.
func TargetRect(position Position, area geometry.Rect) geometry.Rect {
	if position == Center {
		return centered(area)
	}
	p, ok := placements[position]
	if !ok {
		return area
	}
	x, w := segment(area.Width, p.cols, p.col, p.colSpan)
	y, h := segment(area.Height, p.rows, p.row, p.rowSpan)
	return geometry.Rect{
		X:      area.X + x,
		Y:      area.Y + y,
		Width:  w,
		Height: h,
	}
}

// segment returns the offset and length of span segments starting at index
// when total is split into parts.
func segment(total, parts, index, span int) (offset, length int) {
	base := total / parts
	offset = index * base
	length = span * base
	if index+span == parts {
		length = total - offset
	}
	if length < 1 {
		// Narrower than the segment count; stay inside with a 1px sliver.
		length = 1
		offset = min(offset, max(total-1, 0))
	}
	return offset, length
}

// centered sizes the rect to 2/3 of the area; odd slack rounds toward the
// top-left.
func centered(area geometry.Rect) geometry.Rect {
	w := max(area.Width*2/3, 1)
	h := max(area.Height*2/3, 1)
	return geometry.Rect{
		X:      area.X + max(area.Width-w, 0)/2,
		Y:      area.Y + max(area.Height-h, 0)/2,
		Width:  w,
		Height: h,
	}
}
