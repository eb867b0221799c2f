package geom

import "math"

// Circle is a concrete circle: center and non-negative radius.
type Circle struct {
	Center Vector2 `json:"center"`
	Radius float64 `json:"radius"`
}

// IntersectLine returns the points where the circle meets the line's infinite
// carrier: zero, one (tangent) or two points. Canonical order: ascending line
// parameter t.
func (c Circle) IntersectLine(l Line) []Vector2 {
	proj := l.TOf(c.Center)
	closest := l.PointAt(proj)
	dist := closest.DistanceTo(c.Center)

	if dist > c.Radius+Epsilon {
		return nil
	}
	if math.Abs(dist-c.Radius) < Epsilon {
		return []Vector2{closest}
	}

	half := math.Sqrt(c.Radius*c.Radius - dist*dist)
	return []Vector2{l.PointAt(proj - half), l.PointAt(proj + half)}
}

// IntersectCircle returns the points where two circles meet: zero, one
// (tangent) or two points. Canonical order: the first point lies on the
// positive-cross side of the axis from c's center to o's center.
func (c Circle) IntersectCircle(o Circle) []Vector2 {
	d := c.Center.DistanceTo(o.Center)
	if d < Epsilon {
		// Concentric circles either coincide or never meet; neither case
		// yields a usable intersection point.
		return nil
	}
	if d > c.Radius+o.Radius+Epsilon {
		return nil
	}
	if d < math.Abs(c.Radius-o.Radius)-Epsilon {
		return nil
	}

	// Distance from c's center to the chord joining the intersections.
	a := (c.Radius*c.Radius - o.Radius*o.Radius + d*d) / (2 * d)
	h2 := c.Radius*c.Radius - a*a
	axis := o.Center.Sub(c.Center).Div(d)
	mid := c.Center.Add(axis.Mul(a))

	if h2 < Epsilon {
		return []Vector2{mid}
	}

	offset := axis.Perp().Mul(math.Sqrt(h2))
	return []Vector2{mid.Add(offset), mid.Sub(offset)}
}
