package document

import (
	"time"

	"github.com/adamnemecek/geometry-sketchpad/backend-go/internal/engine"
	"github.com/adamnemecek/geometry-sketchpad/backend-go/internal/geom"
	"github.com/adamnemecek/geometry-sketchpad/backend-go/internal/typeid"
)

// NewSampleDocument builds a demo construction: a triangle, the midpoints of
// its sides, two perpendicular bisectors, their intersection (the
// circumcenter) and the circumcircle through one vertex. Dragging any vertex
// keeps the whole figure consistent.
func NewSampleDocument(sketchID string) *SketchDocument {
	now := time.Now().UTC().Format(time.RFC3339)

	doc := NewEmptyDocument(sketchID, "Untitled")
	doc.Sketch.CreatedAt = now
	doc.Sketch.UpdatedAt = now

	a := typeid.NewEntityID()
	b := typeid.NewEntityID()
	c := typeid.NewEntityID()
	doc.Insert(a, engine.FreePoint(geom.Vec2(-2, -1)))
	doc.Insert(b, engine.FreePoint(geom.Vec2(2, -1)))
	doc.Insert(c, engine.FreePoint(geom.Vec2(0, 2)))

	ab := typeid.NewEntityID()
	bc := typeid.NewEntityID()
	ca := typeid.NewEntityID()
	doc.Insert(ab, engine.SegmentLine(engine.Entity(a), engine.Entity(b)))
	doc.Insert(bc, engine.SegmentLine(engine.Entity(b), engine.Entity(c)))
	doc.Insert(ca, engine.SegmentLine(engine.Entity(c), engine.Entity(a)))

	midAB := typeid.NewEntityID()
	midBC := typeid.NewEntityID()
	doc.Insert(midAB, engine.MidPoint(engine.Entity(a), engine.Entity(b)))
	doc.Insert(midBC, engine.MidPoint(engine.Entity(b), engine.Entity(c)))

	bisectAB := typeid.NewEntityID()
	bisectBC := typeid.NewEntityID()
	doc.Insert(bisectAB, engine.PerpendicularLine(engine.Entity(ab), engine.Entity(midAB)))
	doc.Insert(bisectBC, engine.PerpendicularLine(engine.Entity(bc), engine.Entity(midBC)))

	circumcenter := typeid.NewEntityID()
	doc.Insert(circumcenter, engine.LineLineIntersect(engine.Entity(bisectAB), engine.Entity(bisectBC)))

	circumcircle := typeid.NewEntityID()
	doc.Insert(circumcircle, engine.CenterRadiusCircle(engine.Entity(circumcenter), engine.Entity(a)))

	return doc
}
