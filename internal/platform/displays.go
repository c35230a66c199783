package platform

import (
	"sort"

	"github.com/1broseidon/snapwindow/internal/geometry"
)

// CoordSpace maps between a backend's native screen coordinates and the
// virtual-screen coordinates used everywhere above the backend.
type CoordSpace struct {
	OffsetX int
	OffsetY int
}

// ToVirtual converts a native rect to virtual-screen coordinates.
func (c CoordSpace) ToVirtual(r geometry.Rect) geometry.Rect {
	return r.Translate(c.OffsetX, c.OffsetY)
}

// ToNative converts a virtual-screen rect back to native coordinates.
func (c CoordSpace) ToNative(r geometry.Rect) geometry.Rect {
	return r.Translate(-c.OffsetX, -c.OffsetY)
}

// NormalizeDisplays moves displays into virtual-screen coordinates so the
// top-left-most point of the combined layout becomes (0, 0). The result is
// sorted by ID, work areas are clipped to their bounds and scale factors
// below 1 are raised to 1.
func NormalizeDisplays(displays []Display) ([]Display, CoordSpace) {
	bounds := make([]geometry.Rect, 0, len(displays))
	for _, d := range displays {
		bounds = append(bounds, d.Bounds)
	}
	union := geometry.Union(bounds...)
	space := CoordSpace{OffsetX: -union.X, OffsetY: -union.Y}

	out := make([]Display, 0, len(displays))
	for _, d := range displays {
		if d.Bounds.Empty() {
			continue
		}
		d.Bounds = space.ToVirtual(d.Bounds)
		work := space.ToVirtual(d.WorkArea).Intersection(d.Bounds)
		if work.Empty() {
			work = d.Bounds
		}
		d.WorkArea = work
		if d.ScaleFactor < 1 {
			d.ScaleFactor = 1
		}
		out = append(out, d)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out, space
}

// DisplayForFrame picks the display sharing the largest area with frame.
// Ties go to the lowest ID. A frame that overlaps no display resolves to the
// display whose centre is nearest to the frame's centre.
func DisplayForFrame(displays []Display, frame geometry.Rect) (Display, error) {
	if len(displays) == 0 {
		return Display{}, ErrNoDisplaysFound
	}

	best := -1
	bestArea := 0
	for i, d := range displays {
		area := d.Bounds.OverlapArea(frame)
		if area == 0 {
			continue
		}
		if best < 0 || area > bestArea || (area == bestArea && d.ID < displays[best].ID) {
			best = i
			bestArea = area
		}
	}
	if best >= 0 {
		return displays[best], nil
	}

	cx, cy := frame.Center()
	bestDist := 0
	for i, d := range displays {
		dx, dy := d.Bounds.Center()
		dist := (dx-cx)*(dx-cx) + (dy-cy)*(dy-cy)
		if best < 0 || dist < bestDist || (dist == bestDist && d.ID < displays[best].ID) {
			best = i
			bestDist = dist
		}
	}
	return displays[best], nil
}
