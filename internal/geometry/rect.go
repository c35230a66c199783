package geometry

import (
	"fmt"
	"math"
)

// Rect describes a rectangular region in virtual-screen coordinates.
// The origin is the top-left-most point across all displays and Y grows
// downward.
type Rect struct {
	X      int `json:"x" yaml:"x"`
	Y      int `json:"y" yaml:"y"`
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Right returns the exclusive right edge.
func (r Rect) Right() int { return r.X + r.Width }

// Bottom returns the exclusive bottom edge.
func (r Rect) Bottom() int { return r.Y + r.Height }

// Empty reports whether the rect has no area.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Intersects reports whether r and o share a region of positive area.
// Rects that only touch along an edge do not intersect.
func (r Rect) Intersects(o Rect) bool {
	return !r.Intersection(o).Empty()
}

// Intersection returns the overlapping region, or the zero Rect when there is none.
func (r Rect) Intersection(o Rect) Rect {
	x1 := max(r.X, o.X)
	y1 := max(r.Y, o.Y)
	x2 := min(r.Right(), o.Right())
	y2 := min(r.Bottom(), o.Bottom())
	if x2 <= x1 || y2 <= y1 {
		return Rect{}
	}
	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// OverlapArea returns the area shared by r and o.
func (r Rect) OverlapArea(o Rect) int {
	isect := r.Intersection(o)
	return isect.Width * isect.Height
}

// ContainsPoint reports whether (x, y) lies inside r. Left and top edges are
// inside, right and bottom edges are outside.
func (r Rect) ContainsPoint(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Contains reports whether o lies entirely within r.
func (r Rect) Contains(o Rect) bool {
	return o.X >= r.X && o.Y >= r.Y && o.Right() <= r.Right() && o.Bottom() <= r.Bottom()
}

// Center returns the centre point, rounded toward the origin.
func (r Rect) Center() (int, int) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Translate returns r moved by (dx, dy).
func (r Rect) Translate(dx, dy int) Rect {
	r.X += dx
	r.Y += dy
	return r
}

// ScaledBy scales r about the coordinate origin. Edges are rounded
// independently so rects that shared an edge before scaling still share it.
func (r Rect) ScaledBy(factor float64) Rect {
	x1 := int(math.Round(float64(r.X) * factor))
	y1 := int(math.Round(float64(r.Y) * factor))
	x2 := int(math.Round(float64(r.Right()) * factor))
	y2 := int(math.Round(float64(r.Bottom()) * factor))
	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// Union returns the smallest rect covering every input. Empty rects are ignored.
func Union(rects ...Rect) Rect {
	var out Rect
	first := true
	for _, r := range rects {
		if r.Empty() {
			continue
		}
		if first {
			out = r
			first = false
			continue
		}
		x1 := min(out.X, r.X)
		y1 := min(out.Y, r.Y)
		x2 := max(out.Right(), r.Right())
		y2 := max(out.Bottom(), r.Bottom())
		out = Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
	}
	return out
}

// String formats r in X geometry notation, e.g. 1920x1080+0+0.
func (r Rect) String() string {
	return fmt.Sprintf("%dx%d%+d%+d", r.Width, r.Height, r.X, r.Y)
}
