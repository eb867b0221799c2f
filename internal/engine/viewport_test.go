package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/adamnemecek/geometry-sketchpad/backend-go/internal/geom"
)

func TestToActualFlipsY(t *testing.T) {
	vp := NewViewport(geom.Vec2(0, 0), geom.Vec2(2, 2), geom.Vec2(80, 80))

	assert.Equal(t, geom.Vec2(40, 40), vp.ToActual(geom.Vec2(0, 0)))
	assert.Equal(t, geom.Vec2(80, 0), vp.ToActual(geom.Vec2(1, 1)))
	assert.Equal(t, geom.Vec2(0, 80), vp.ToActual(geom.Vec2(-1, -1)))
}

func TestToActualOffCenter(t *testing.T) {
	vp := NewViewport(geom.Vec2(10, 5), geom.Vec2(4, 2), geom.Vec2(400, 200))

	// Scale is 100px per virtual unit.
	assert.Equal(t, geom.Vec2(200, 100), vp.ToActual(geom.Vec2(10, 5)))
	assert.Equal(t, geom.Vec2(300, 0), vp.ToActual(geom.Vec2(11, 6)))
}

func TestToVirtualRoundTrip(t *testing.T) {
	vp := NewViewport(geom.Vec2(3, -2), geom.Vec2(20, 15), geom.Vec2(1280, 960))

	for _, p := range []geom.Vector2{
		geom.Vec2(0, 0),
		geom.Vec2(3, -2),
		geom.Vec2(-7.5, 4.25),
	} {
		back := vp.ToVirtual(vp.ToActual(p))
		assert.InDelta(t, p.X, back.X, geom.Epsilon)
		assert.InDelta(t, p.Y, back.Y, geom.Epsilon)
	}
}

func TestScalarToActual(t *testing.T) {
	vp := NewViewport(geom.Vec2(0, 0), geom.Vec2(2, 2), geom.Vec2(80, 80))
	assert.InDelta(t, 40.0, vp.ScalarToActual(1), geom.Epsilon)
}

func TestLineToActual(t *testing.T) {
	vp := NewViewport(geom.Vec2(0, 0), geom.Vec2(2, 2), geom.Vec2(80, 80))
	l := geom.Line{Origin: geom.Vec2(0, 0), Direction: geom.Vec2(0, 1), Extent: geom.SegmentExtent(1)}

	out := vp.LineToActual(l)
	assert.Equal(t, geom.Vec2(40, 40), out.Origin)
	// Direction stays unit length with y flipped.
	assert.Equal(t, geom.Vec2(0, -1), out.Direction)
	assert.InDelta(t, 40.0, out.Extent.Length, geom.Epsilon)
}

func TestCircleToActual(t *testing.T) {
	vp := NewViewport(geom.Vec2(0, 0), geom.Vec2(2, 2), geom.Vec2(80, 80))
	c := geom.Circle{Center: geom.Vec2(0.5, 0.5), Radius: 0.25}

	out := vp.CircleToActual(c)
	assert.Equal(t, geom.Vec2(60, 20), out.Center)
	assert.InDelta(t, 10.0, out.Radius, geom.Epsilon)
}
