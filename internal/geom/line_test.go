package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTRangePerExtent(t *testing.T) {
	full := Line{Direction: Vec2(1, 0), Extent: FullExtent()}
	lo, hi := full.TRange()
	assert.True(t, math.IsInf(lo, -1))
	assert.True(t, math.IsInf(hi, 1))

	ray := Line{Direction: Vec2(1, 0), Extent: RayExtent()}
	lo, hi = ray.TRange()
	assert.Equal(t, 0.0, lo)
	assert.True(t, math.IsInf(hi, 1))

	seg := Line{Direction: Vec2(1, 0), Extent: SegmentExtent(3)}
	lo, hi = seg.TRange()
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 3.0, hi)
}

func TestClosestToClampsToExtent(t *testing.T) {
	seg := Line{Origin: Vec2(0, 0), Direction: Vec2(1, 0), Extent: SegmentExtent(2)}

	// Projection inside the segment.
	assert.Equal(t, Vec2(1, 0), seg.ClosestTo(Vec2(1, 5)))
	// Behind the origin clamps to the start.
	assert.Equal(t, Vec2(0, 0), seg.ClosestTo(Vec2(-3, 1)))
	// Past the end clamps to the end.
	assert.Equal(t, Vec2(2, 0), seg.ClosestTo(Vec2(10, -1)))
}

func TestIntersectLines(t *testing.T) {
	l1 := Line{Origin: Vec2(0, 5), Direction: Vec2(1, 0), Extent: FullExtent()}
	l2 := Line{Origin: Vec2(5, 0), Direction: Vec2(0, 1), Extent: FullExtent()}

	p, ok := IntersectLines(l1, l2)
	require.True(t, ok)
	assert.InDelta(t, 5.0, p.X, Epsilon)
	assert.InDelta(t, 5.0, p.Y, Epsilon)
}

func TestIntersectLinesParallel(t *testing.T) {
	l1 := Line{Origin: Vec2(0, 0), Direction: Vec2(1, 0), Extent: FullExtent()}
	l2 := Line{Origin: Vec2(0, 1), Direction: Vec2(1, 0), Extent: FullExtent()}

	_, ok := IntersectLines(l1, l2)
	assert.False(t, ok)
}

func TestIntersectLinesIgnoresExtent(t *testing.T) {
	// The carriers cross at (5,5) even though neither segment reaches it.
	l1 := Line{Origin: Vec2(0, 5), Direction: Vec2(1, 0), Extent: SegmentExtent(1)}
	l2 := Line{Origin: Vec2(5, 0), Direction: Vec2(0, 1), Extent: SegmentExtent(1)}

	p, ok := IntersectLines(l1, l2)
	require.True(t, ok)
	assert.InDelta(t, 5.0, p.X, Epsilon)
	assert.InDelta(t, 5.0, p.Y, Epsilon)
}

func TestClipAABBFullLine(t *testing.T) {
	box := NewAABB(0, 0, 10, 10)
	l := Line{Origin: Vec2(5, 5), Direction: Vec2(1, 0), Extent: FullExtent()}

	p1, p2, ok := l.ClipAABB(box)
	require.True(t, ok)
	assert.Equal(t, Vec2(0, 5), p1)
	assert.Equal(t, Vec2(10, 5), p2)
}

func TestClipAABBSegmentInside(t *testing.T) {
	box := NewAABB(0, 0, 10, 10)
	l := Line{Origin: Vec2(2, 2), Direction: Vec2(1, 0), Extent: SegmentExtent(3)}

	p1, p2, ok := l.ClipAABB(box)
	require.True(t, ok)
	assert.Equal(t, Vec2(2, 2), p1)
	assert.Equal(t, Vec2(5, 2), p2)
}

func TestClipAABBRayStartsInside(t *testing.T) {
	box := NewAABB(0, 0, 10, 10)
	l := Line{Origin: Vec2(5, 5), Direction: Vec2(0, 1), Extent: RayExtent()}

	p1, p2, ok := l.ClipAABB(box)
	require.True(t, ok)
	assert.Equal(t, Vec2(5, 5), p1)
	assert.Equal(t, Vec2(5, 10), p2)
}

func TestClipAABBMiss(t *testing.T) {
	box := NewAABB(0, 0, 10, 10)
	l := Line{Origin: Vec2(20, 0), Direction: Vec2(0, 1), Extent: FullExtent()}

	_, _, ok := l.ClipAABB(box)
	assert.False(t, ok)
}

func TestClipAABBRayPointingAway(t *testing.T) {
	box := NewAABB(0, 0, 10, 10)
	l := Line{Origin: Vec2(5, 20), Direction: Vec2(0, 1), Extent: RayExtent()}

	_, _, ok := l.ClipAABB(box)
	assert.False(t, ok)
}
