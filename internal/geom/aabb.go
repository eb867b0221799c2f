package geom

import "math"

// AABB is an axis-aligned bounding box.
type AABB struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewAABB constructs an AABB from its top-left corner and size.
func NewAABB(x, y, w, h float64) AABB {
	return AABB{X: x, Y: y, Width: w, Height: h}
}

func (b AABB) MinX() float64 { return b.X }
func (b AABB) MinY() float64 { return b.Y }
func (b AABB) MaxX() float64 { return b.X + b.Width }
func (b AABB) MaxY() float64 { return b.Y + b.Height }

// Contains reports whether the point lies inside the box (borders included).
func (b AABB) Contains(p Vector2) bool {
	return p.X >= b.MinX() && p.X <= b.MaxX() && p.Y >= b.MinY() && p.Y <= b.MaxY()
}

// ClosestTo returns the point on or inside the box closest to p.
func (b AABB) ClosestTo(p Vector2) Vector2 {
	return Vector2{
		X: math.Min(math.Max(p.X, b.MinX()), b.MaxX()),
		Y: math.Min(math.Max(p.Y, b.MinY()), b.MaxY()),
	}
}

// FurthestFrom returns the corner of the box furthest from p.
func (b AABB) FurthestFrom(p Vector2) Vector2 {
	x := b.MinX()
	if math.Abs(p.X-b.MinX()) < math.Abs(p.X-b.MaxX()) {
		x = b.MaxX()
	}
	y := b.MinY()
	if math.Abs(p.Y-b.MinY()) < math.Abs(p.Y-b.MaxY()) {
		y = b.MaxY()
	}
	return Vector2{X: x, Y: y}
}

// Intersects reports whether the two boxes overlap.
func (b AABB) Intersects(o AABB) bool {
	return b.MinX() <= o.MaxX() && o.MinX() <= b.MaxX() &&
		b.MinY() <= o.MaxY() && o.MinY() <= b.MaxY()
}
