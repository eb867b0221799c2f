package geom

import "math"

// ExtentKind distinguishes how much of a line's infinite carrier is drawn.
type ExtentKind string

const (
	ExtentFull    ExtentKind = "full"
	ExtentRay     ExtentKind = "ray"
	ExtentSegment ExtentKind = "segment"
)

// Extent describes the drawn portion of a line. Length is only meaningful for
// segments.
type Extent struct {
	Kind   ExtentKind `json:"kind"`
	Length float64    `json:"length,omitempty"`
}

func FullExtent() Extent { return Extent{Kind: ExtentFull} }
func RayExtent() Extent  { return Extent{Kind: ExtentRay} }
func SegmentExtent(l float64) Extent {
	return Extent{Kind: ExtentSegment, Length: l}
}

// Line is a directed line: a point of origin, a unit direction, and an extent
// restricting which parameter values along the carrier are drawn.
type Line struct {
	Origin    Vector2 `json:"origin"`
	Direction Vector2 `json:"direction"`
	Extent    Extent  `json:"extent"`
}

// PointAt returns origin + t*direction.
func (l Line) PointAt(t float64) Vector2 {
	return l.Origin.Add(l.Direction.Mul(t))
}

// TRange returns the parameter interval covered by the line's extent.
func (l Line) TRange() (float64, float64) {
	switch l.Extent.Kind {
	case ExtentRay:
		return 0, math.Inf(1)
	case ExtentSegment:
		return 0, l.Extent.Length
	default:
		return math.Inf(-1), math.Inf(1)
	}
}

// TOf returns the parameter of the projection of p onto the carrier.
func (l Line) TOf(p Vector2) float64 {
	return p.Sub(l.Origin).Dot(l.Direction)
}

// ClosestTo returns the point on the drawn extent closest to p.
func (l Line) ClosestTo(p Vector2) Vector2 {
	t := l.TOf(p)
	lo, hi := l.TRange()
	t = math.Min(math.Max(t, lo), hi)
	return l.PointAt(t)
}

// IntersectLines solves for the intersection of the infinite carriers of two
// lines. Returns false when the directions are parallel within Epsilon.
func IntersectLines(l1, l2 Line) (Vector2, bool) {
	denom := l1.Direction.Cross(l2.Direction)
	if math.Abs(denom) < Epsilon {
		return Vector2{}, false
	}
	diff := l2.Origin.Sub(l1.Origin)
	t := diff.Cross(l2.Direction) / denom
	return l1.PointAt(t), true
}

// ClipAABB clips the drawn extent of the line against the box, returning the
// endpoints of the visible segment ordered by increasing t. ok is false when
// nothing of the line falls inside the box.
func (l Line) ClipAABB(box AABB) (Vector2, Vector2, bool) {
	tMin, tMax := l.TRange()

	// Slab clip against each axis of the box.
	for axis := 0; axis < 2; axis++ {
		var o, d, lo, hi float64
		if axis == 0 {
			o, d, lo, hi = l.Origin.X, l.Direction.X, box.MinX(), box.MaxX()
		} else {
			o, d, lo, hi = l.Origin.Y, l.Direction.Y, box.MinY(), box.MaxY()
		}
		if math.Abs(d) < Epsilon {
			if o < lo || o > hi {
				return Vector2{}, Vector2{}, false
			}
			continue
		}
		t1 := (lo - o) / d
		t2 := (hi - o) / d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return Vector2{}, Vector2{}, false
		}
	}

	if math.IsInf(tMin, 0) || math.IsInf(tMax, 0) {
		return Vector2{}, Vector2{}, false
	}
	return l.PointAt(tMin), l.PointAt(tMax), true
}
