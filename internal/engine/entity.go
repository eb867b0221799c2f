package engine

import (
	"github.com/adamnemecek/geometry-sketchpad/backend-go/internal/geom"
)

// Entity is an opaque stable identifier for a geometric entity. Entities are
// owned by the authoring layer; the engine only references them.
type Entity string

// GeometryKind distinguishes the three entity families.
type GeometryKind string

const (
	KindPoint  GeometryKind = "point"
	KindLine   GeometryKind = "line"
	KindCircle GeometryKind = "circle"
)

// Branch selects between the two solutions of a multi-valued intersection on
// first resolution. After that, continuity with the previously resolved value
// takes over.
type Branch int

type PointKind string

const (
	PointFixed        PointKind = "fixed"
	PointFree         PointKind = "free"
	PointMid          PointKind = "midpoint"
	PointOnLine       PointKind = "onLine"
	PointLineLine     PointKind = "lineLineIntersect"
	PointOnCircle     PointKind = "onCircle"
	PointCircleLine   PointKind = "circleLineIntersect"
	PointCircleCircle PointKind = "circleCircleIntersect"
)

// SymbolicPoint is the relationship-based definition of a point entity.
// Exactly one variant (Kind) is active; the other fields are meaningful only
// for the variants that use them.
type SymbolicPoint struct {
	Kind     PointKind    `json:"kind"`
	Position geom.Vector2 `json:"position,omitempty"` // Fixed, Free
	A        Entity       `json:"a,omitempty"`
	B        Entity       `json:"b,omitempty"`
	T        float64      `json:"t,omitempty"`      // OnLine parameter
	Theta    float64      `json:"theta,omitempty"`  // OnCircle angle
	Branch   Branch       `json:"branch,omitempty"` // intersection branch selector
}

type LineKind string

const (
	LineStraight      LineKind = "straight"
	LineRay           LineKind = "ray"
	LineSegment       LineKind = "segment"
	LineParallel      LineKind = "parallel"
	LinePerpendicular LineKind = "perpendicular"
)

// SymbolicLine defines a line either by two point entities (Straight, Ray,
// Segment: A and B are points) or relative to another line through a point
// (Parallel, Perpendicular: A is the reference line, B the point).
type SymbolicLine struct {
	Kind LineKind `json:"kind"`
	A    Entity   `json:"a"`
	B    Entity   `json:"b"`
}

type CircleKind string

const (
	CircleCenterRadius CircleKind = "centerRadius"
)

// SymbolicCircle defines a circle by a center point entity and a point entity
// the circle passes through.
type SymbolicCircle struct {
	Kind   CircleKind `json:"kind"`
	Center Entity     `json:"center"`
	Radius Entity     `json:"radius"`
}

// Definition is the symbolic definition of an entity. Exactly one of the
// three members is non-nil.
type Definition struct {
	Point  *SymbolicPoint  `json:"point,omitempty"`
	Line   *SymbolicLine   `json:"line,omitempty"`
	Circle *SymbolicCircle `json:"circle,omitempty"`
}

// Kind returns which entity family the definition describes.
func (d Definition) Kind() GeometryKind {
	switch {
	case d.Point != nil:
		return KindPoint
	case d.Line != nil:
		return KindLine
	default:
		return KindCircle
	}
}

// Deps lists the entities the definition references. The dependency graph
// mirrors exactly these edges.
func (d Definition) Deps() []Entity {
	switch {
	case d.Point != nil:
		switch d.Point.Kind {
		case PointFixed, PointFree:
			return nil
		case PointOnLine, PointOnCircle:
			return []Entity{d.Point.A}
		default:
			return []Entity{d.Point.A, d.Point.B}
		}
	case d.Line != nil:
		return []Entity{d.Line.A, d.Line.B}
	case d.Circle != nil:
		return []Entity{d.Circle.Center, d.Circle.Radius}
	}
	return nil
}

// Clone returns a definition with its own copy of the variant struct. Needed
// because free-point positions are mutated in place through the pointer.
func (d Definition) Clone() Definition {
	var out Definition
	switch {
	case d.Point != nil:
		p := *d.Point
		out.Point = &p
	case d.Line != nil:
		l := *d.Line
		out.Line = &l
	case d.Circle != nil:
		c := *d.Circle
		out.Circle = &c
	}
	return out
}

// --- Definition constructors ---

func FixedPoint(pos geom.Vector2) Definition {
	return Definition{Point: &SymbolicPoint{Kind: PointFixed, Position: pos}}
}

func FreePoint(pos geom.Vector2) Definition {
	return Definition{Point: &SymbolicPoint{Kind: PointFree, Position: pos}}
}

func MidPoint(a, b Entity) Definition {
	return Definition{Point: &SymbolicPoint{Kind: PointMid, A: a, B: b}}
}

func PointOnLineAt(line Entity, t float64) Definition {
	return Definition{Point: &SymbolicPoint{Kind: PointOnLine, A: line, T: t}}
}

func LineLineIntersect(l1, l2 Entity) Definition {
	return Definition{Point: &SymbolicPoint{Kind: PointLineLine, A: l1, B: l2}}
}

func PointOnCircleAt(circle Entity, theta float64) Definition {
	return Definition{Point: &SymbolicPoint{Kind: PointOnCircle, A: circle, Theta: theta}}
}

func CircleLineIntersect(circle, line Entity, branch Branch) Definition {
	return Definition{Point: &SymbolicPoint{Kind: PointCircleLine, A: circle, B: line, Branch: branch}}
}

func CircleCircleIntersect(c1, c2 Entity, branch Branch) Definition {
	return Definition{Point: &SymbolicPoint{Kind: PointCircleCircle, A: c1, B: c2, Branch: branch}}
}

func StraightLine(a, b Entity) Definition {
	return Definition{Line: &SymbolicLine{Kind: LineStraight, A: a, B: b}}
}

func RayLine(a, b Entity) Definition {
	return Definition{Line: &SymbolicLine{Kind: LineRay, A: a, B: b}}
}

func SegmentLine(a, b Entity) Definition {
	return Definition{Line: &SymbolicLine{Kind: LineSegment, A: a, B: b}}
}

func ParallelLine(line, point Entity) Definition {
	return Definition{Line: &SymbolicLine{Kind: LineParallel, A: line, B: point}}
}

func PerpendicularLine(line, point Entity) Definition {
	return Definition{Line: &SymbolicLine{Kind: LinePerpendicular, A: line, B: point}}
}

func CenterRadiusCircle(center, radius Entity) Definition {
	return Definition{Circle: &SymbolicCircle{Kind: CircleCenterRadius, Center: center, Radius: radius}}
}
