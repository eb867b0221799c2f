package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adamnemecek/geometry-sketchpad/backend-go/internal/engine"
	"github.com/adamnemecek/geometry-sketchpad/backend-go/internal/geom"
)

func testViewport() engine.Viewport {
	return engine.Viewport{
		Center:      geom.Vec2(0, 0),
		VirtualSize: geom.Vec2(20, 15),
		ActualSize:  geom.Vec2(1280, 960),
	}
}

func TestNewEmptyDocument(t *testing.T) {
	doc := NewEmptyDocument("sketch_abc", "My Sketch")

	assert.Equal(t, "sketch_abc", doc.Sketch.ID)
	assert.Equal(t, "My Sketch", doc.Sketch.Name)
	assert.Equal(t, 1, doc.Sketch.Version)
	assert.Empty(t, doc.Entities)
	assert.Empty(t, doc.Order)
}

func TestInsertKeepsOrder(t *testing.T) {
	doc := NewEmptyDocument("s", "")

	doc.Insert("a", engine.FreePoint(geom.Vec2(0, 0)))
	doc.Insert("b", engine.FreePoint(geom.Vec2(1, 0)))
	doc.Insert("c", engine.FreePoint(geom.Vec2(2, 0)))

	assert.Equal(t, []string{"a", "b", "c"}, doc.Order)
}

func TestInsertReplaceKeepsPosition(t *testing.T) {
	doc := NewEmptyDocument("s", "")

	doc.Insert("a", engine.FreePoint(geom.Vec2(0, 0)))
	doc.Insert("b", engine.FreePoint(geom.Vec2(1, 0)))
	doc.Insert("a", engine.FreePoint(geom.Vec2(5, 5)))

	assert.Equal(t, []string{"a", "b"}, doc.Order)
	assert.Equal(t, geom.Vec2(5, 5), doc.Entities["a"].Point.Position)
}

func TestRemove(t *testing.T) {
	doc := NewEmptyDocument("s", "")

	doc.Insert("a", engine.FreePoint(geom.Vec2(0, 0)))
	doc.Insert("b", engine.FreePoint(geom.Vec2(1, 0)))
	doc.Remove("a")

	assert.Equal(t, []string{"b"}, doc.Order)
	assert.NotContains(t, doc.Entities, "a")

	// Removing a missing entity is a no-op.
	doc.Remove("nope")
	assert.Equal(t, []string{"b"}, doc.Order)
}

func TestLoadIntoResolvesChain(t *testing.T) {
	doc := NewEmptyDocument("s", "")
	doc.Insert("a", engine.FreePoint(geom.Vec2(0, 0)))
	doc.Insert("b", engine.FreePoint(geom.Vec2(4, 2)))
	doc.Insert("mid", engine.MidPoint("a", "b"))

	e := engine.NewEngine(testViewport())
	require.NoError(t, doc.LoadInto(e))

	g, ok := e.Geometry("mid")
	require.True(t, ok)
	assert.Equal(t, geom.Vec2(2, 1), g.Point)
}

func TestLoadIntoUnknownOrderEntry(t *testing.T) {
	doc := NewEmptyDocument("s", "")
	doc.Insert("a", engine.FreePoint(geom.Vec2(0, 0)))
	doc.Order = append(doc.Order, "ghost")

	e := engine.NewEngine(testViewport())
	err := doc.LoadInto(e)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost")
}

func TestSampleDocumentFullyResolves(t *testing.T) {
	doc := NewSampleDocument("sketch_playground")

	assert.Equal(t, "sketch_playground", doc.Sketch.ID)
	require.Len(t, doc.Order, 12)

	e := engine.NewEngine(testViewport())
	require.NoError(t, doc.LoadInto(e))

	// The whole construction, circumcircle included, must resolve for a
	// non-degenerate triangle.
	for _, id := range doc.Order {
		_, ok := e.Geometry(engine.Entity(id))
		assert.True(t, ok, "entity %s should resolve", id)
	}

	// The circumcircle is the last entity; its center must be equidistant
	// from all three vertices.
	var circle engine.Entity
	for _, id := range doc.Order {
		if doc.Entities[id].Circle != nil {
			circle = engine.Entity(id)
		}
	}
	require.NotEmpty(t, circle)

	g, ok := e.Geometry(circle)
	require.True(t, ok)
	center := g.Circle.Center
	r := g.Circle.Radius
	for _, p := range []geom.Vector2{geom.Vec2(-2, -1), geom.Vec2(2, -1), geom.Vec2(0, 2)} {
		assert.InDelta(t, r, center.Sub(p).Magnitude(), 1e-9)
	}
}
