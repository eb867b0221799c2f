package geom

import "math"

// Epsilon is the absolute tolerance used for all comparisons against zero.
// Coordinates come from continuous user interaction (dragging), so exact
// floating-point equality is never meaningful.
const Epsilon = 1e-9

// Vector2 represents a 2D point or direction in Cartesian coordinates.
type Vector2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Vec2 constructs a Vector2.
func Vec2(x, y float64) Vector2 {
	return Vector2{X: x, Y: y}
}

func (v Vector2) Add(o Vector2) Vector2 {
	return Vector2{v.X + o.X, v.Y + o.Y}
}

func (v Vector2) Sub(o Vector2) Vector2 {
	return Vector2{v.X - o.X, v.Y - o.Y}
}

func (v Vector2) Neg() Vector2 {
	return Vector2{-v.X, -v.Y}
}

func (v Vector2) Mul(s float64) Vector2 {
	return Vector2{v.X * s, v.Y * s}
}

func (v Vector2) Div(s float64) Vector2 {
	return Vector2{v.X / s, v.Y / s}
}

func (v Vector2) Dot(o Vector2) float64 {
	return v.X*o.X + v.Y*o.Y
}

// Cross returns the z component of the 3D cross product of the two vectors.
// Zero (within Epsilon) means the vectors are parallel.
func (v Vector2) Cross(o Vector2) float64 {
	return v.X*o.Y - v.Y*o.X
}

func (v Vector2) Magnitude() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

// Normalized returns the unit vector pointing in the same direction.
// The zero vector is returned unchanged.
func (v Vector2) Normalized() Vector2 {
	m := v.Magnitude()
	if m < Epsilon {
		return v
	}
	return v.Div(m)
}

// Perp returns the vector rotated 90 degrees counterclockwise.
func (v Vector2) Perp() Vector2 {
	return Vector2{-v.Y, v.X}
}

func (v Vector2) DistanceTo(o Vector2) float64 {
	return o.Sub(v).Magnitude()
}

// IsZero reports whether both components are within Epsilon of zero.
func (v Vector2) IsZero() bool {
	return math.Abs(v.X) < Epsilon && math.Abs(v.Y) < Epsilon
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b Vector2) Vector2 {
	return a.Add(b).Div(2)
}
