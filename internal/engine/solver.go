package engine

import (
	"math"

	"github.com/adamnemecek/geometry-sketchpad/backend-go/internal/geom"
)

// Geometry is a resolved concrete shape. Kind selects which member is
// meaningful.
type Geometry struct {
	Kind   GeometryKind `json:"kind"`
	Point  geom.Vector2 `json:"point,omitempty"`
	Line   geom.Line    `json:"line,omitempty"`
	Circle geom.Circle  `json:"circle,omitempty"`
}

// Element is the solver's record for one entity: its symbolic definition, the
// resolved concrete value when one exists, and the previously resolved point
// used for branch continuity on multi-valued intersections.
type Element struct {
	Def      Definition
	Geometry Geometry
	Valid    bool

	prev    geom.Vector2
	hasPrev bool
}

// Solver owns the resolved-geometry store and is its only writer. Given a
// recompute order it turns symbolic definitions into concrete geometry,
// marking entities with no resolvable value invalid. Validity is re-evaluated
// on every pass, so entities recover automatically once their inputs do.
type Solver struct {
	elements map[Entity]*Element
}

func NewSolver() *Solver {
	return &Solver{elements: make(map[Entity]*Element)}
}

// Insert registers (or replaces) an entity's symbolic definition. The entity
// stays unresolved until the next Resolve pass over it.
func (s *Solver) Insert(ent Entity, def Definition) {
	s.elements[ent] = &Element{Def: def, Geometry: Geometry{Kind: def.Kind()}}
}

// Remove drops the entity's record entirely.
func (s *Solver) Remove(ent Entity) {
	delete(s.elements, ent)
}

// Element looks up an entity's record.
func (s *Solver) Element(ent Entity) (*Element, bool) {
	el, ok := s.elements[ent]
	return el, ok
}

// Entities returns every registered entity.
func (s *Solver) Entities() []Entity {
	out := make([]Entity, 0, len(s.elements))
	for e := range s.elements {
		out = append(out, e)
	}
	return out
}

// SetFreePosition updates the stored coordinate of a Free point. Reports
// false when the entity is not a free point.
func (s *Solver) SetFreePosition(ent Entity, pos geom.Vector2) bool {
	el, ok := s.elements[ent]
	if !ok || el.Def.Point == nil || el.Def.Point.Kind != PointFree {
		return false
	}
	el.Def.Point.Position = pos
	return true
}

// Resolve recomputes concrete geometry for the given entities, in order. The
// order must place every entity after its dependencies (see RecomputeOrder);
// entities that appear in the order but are no longer registered are skipped.
func (s *Solver) Resolve(order []Entity) {
	for _, ent := range order {
		el, ok := s.elements[ent]
		if !ok {
			continue
		}
		s.resolveElement(el)
	}
}

func (s *Solver) resolveElement(el *Element) {
	switch {
	case el.Def.Point != nil:
		p, ok := s.resolvePoint(el)
		el.Valid = ok
		if ok {
			el.Geometry = Geometry{Kind: KindPoint, Point: p}
			el.prev = p
			el.hasPrev = true
		}
	case el.Def.Line != nil:
		l, ok := s.resolveLine(el.Def.Line)
		el.Valid = ok
		if ok {
			el.Geometry = Geometry{Kind: KindLine, Line: l}
		}
	case el.Def.Circle != nil:
		c, ok := s.resolveCircle(el.Def.Circle)
		el.Valid = ok
		if ok {
			el.Geometry = Geometry{Kind: KindCircle, Circle: c}
		}
	default:
		el.Valid = false
	}
}

func (s *Solver) resolvePoint(el *Element) (geom.Vector2, bool) {
	sym := el.Def.Point
	switch sym.Kind {
	case PointFixed, PointFree:
		return sym.Position, true

	case PointMid:
		a, okA := s.pointOf(sym.A)
		b, okB := s.pointOf(sym.B)
		if !okA || !okB {
			return geom.Vector2{}, false
		}
		return geom.Midpoint(a, b), true

	case PointOnLine:
		l, ok := s.lineOf(sym.A)
		if !ok {
			return geom.Vector2{}, false
		}
		// For segments t is a fraction of the segment's length; for rays and
		// full lines it is an absolute parameter. Out-of-range t is allowed
		// and simply lands outside the drawn extent.
		t := sym.T
		if l.Extent.Kind == geom.ExtentSegment {
			t *= l.Extent.Length
		}
		return l.PointAt(t), true

	case PointLineLine:
		l1, okA := s.lineOf(sym.A)
		l2, okB := s.lineOf(sym.B)
		if !okA || !okB {
			return geom.Vector2{}, false
		}
		return geom.IntersectLines(l1, l2)

	case PointOnCircle:
		c, ok := s.circleOf(sym.A)
		if !ok {
			return geom.Vector2{}, false
		}
		return c.Center.Add(geom.Vec2(math.Cos(sym.Theta), math.Sin(sym.Theta)).Mul(c.Radius)), true

	case PointCircleLine:
		c, okA := s.circleOf(sym.A)
		l, okB := s.lineOf(sym.B)
		if !okA || !okB {
			return geom.Vector2{}, false
		}
		return selectBranch(c.IntersectLine(l), el, sym.Branch)

	case PointCircleCircle:
		c1, okA := s.circleOf(sym.A)
		c2, okB := s.circleOf(sym.B)
		if !okA || !okB {
			return geom.Vector2{}, false
		}
		return selectBranch(c1.IntersectCircle(c2), el, sym.Branch)
	}
	return geom.Vector2{}, false
}

// selectBranch picks among the candidate intersection points: nearest to the
// previously resolved value when one exists (continuity under dragging),
// otherwise the Branch index into the primitive's canonical order.
func selectBranch(candidates []geom.Vector2, el *Element, branch Branch) (geom.Vector2, bool) {
	if len(candidates) == 0 {
		return geom.Vector2{}, false
	}
	if el.hasPrev {
		best := candidates[0]
		bestDist := el.prev.DistanceTo(best)
		for _, c := range candidates[1:] {
			if d := el.prev.DistanceTo(c); d < bestDist {
				best, bestDist = c, d
			}
		}
		return best, true
	}
	idx := int(branch)
	if idx < 0 || idx >= len(candidates) {
		idx = len(candidates) - 1
	}
	return candidates[idx], true
}

func (s *Solver) resolveLine(sym *SymbolicLine) (geom.Line, bool) {
	switch sym.Kind {
	case LineStraight, LineRay, LineSegment:
		a, okA := s.pointOf(sym.A)
		b, okB := s.pointOf(sym.B)
		if !okA || !okB {
			return geom.Line{}, false
		}
		diff := b.Sub(a)
		length := diff.Magnitude()
		if length < geom.Epsilon {
			// Coincident endpoints define no direction.
			return geom.Line{}, false
		}
		l := geom.Line{Origin: a, Direction: diff.Div(length)}
		switch sym.Kind {
		case LineRay:
			l.Extent = geom.RayExtent()
		case LineSegment:
			l.Extent = geom.SegmentExtent(length)
		default:
			l.Extent = geom.FullExtent()
		}
		return l, true

	case LineParallel, LinePerpendicular:
		ref, okL := s.lineOf(sym.A)
		p, okP := s.pointOf(sym.B)
		if !okL || !okP {
			return geom.Line{}, false
		}
		dir := ref.Direction
		if sym.Kind == LinePerpendicular {
			dir = dir.Perp()
		}
		return geom.Line{Origin: p, Direction: dir, Extent: geom.FullExtent()}, true
	}
	return geom.Line{}, false
}

func (s *Solver) resolveCircle(sym *SymbolicCircle) (geom.Circle, bool) {
	center, okC := s.pointOf(sym.Center)
	through, okR := s.pointOf(sym.Radius)
	if !okC || !okR {
		return geom.Circle{}, false
	}
	radius := center.DistanceTo(through)
	if radius < geom.Epsilon {
		return geom.Circle{}, false
	}
	return geom.Circle{Center: center, Radius: radius}, true
}

func (s *Solver) pointOf(ent Entity) (geom.Vector2, bool) {
	el, ok := s.elements[ent]
	if !ok || !el.Valid || el.Geometry.Kind != KindPoint {
		return geom.Vector2{}, false
	}
	return el.Geometry.Point, true
}

func (s *Solver) lineOf(ent Entity) (geom.Line, bool) {
	el, ok := s.elements[ent]
	if !ok || !el.Valid || el.Geometry.Kind != KindLine {
		return geom.Line{}, false
	}
	return el.Geometry.Line, true
}

func (s *Solver) circleOf(ent Entity) (geom.Circle, bool) {
	el, ok := s.elements[ent]
	if !ok || !el.Valid || el.Geometry.Kind != KindCircle {
		return geom.Circle{}, false
	}
	return el.Geometry.Circle, true
}
