package engine

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adamnemecek/geometry-sketchpad/backend-go/internal/geom"
)

// fourTileViewport covers virtual [-1,1]x[-1,1] with an 80x80 pixel grid, so
// the spatial table is exactly 2x2 tiles.
func fourTileViewport() Viewport {
	return NewViewport(geom.Vec2(0, 0), geom.Vec2(2, 2), geom.Vec2(80, 80))
}

func tileContains(s *SpatialHashTable, tile int, ent Entity) bool {
	_, ok := s.table[tile][ent]
	return ok
}

func assertTiles(t *testing.T, s *SpatialHashTable, ent Entity, occupied ...int) {
	t.Helper()
	want := make(map[int]bool, len(occupied))
	for _, tile := range occupied {
		want[tile] = true
	}
	for tile := range s.table {
		if want[tile] {
			assert.True(t, tileContains(s, tile, ent), "tile %d should contain %s", tile, ent)
		} else {
			assert.False(t, tileContains(s, tile, ent), "tile %d should be empty", tile)
		}
	}
}

func TestInsertPointCenter(t *testing.T) {
	vp := fourTileViewport()
	s := NewSpatialHashTable()
	s.InitViewport(vp)

	s.InsertPoint("p", geom.Vec2(0, 0), vp)

	// Virtual origin maps to pixel (40,40), the corner shared by all four
	// tiles; floor division puts it in the bottom-right one.
	assertTiles(t, s, "p", 3)
}

func TestInsertPointOffCenter(t *testing.T) {
	vp := fourTileViewport()
	s := NewSpatialHashTable()
	s.InitViewport(vp)

	s.InsertPoint("p", geom.Vec2(0.5, -0.5), vp)

	assertTiles(t, s, "p", 3)
}

func TestInsertPointOutsideViewport(t *testing.T) {
	vp := fourTileViewport()
	s := NewSpatialHashTable()
	s.InitViewport(vp)

	s.InsertPoint("p", geom.Vec2(5, 5), vp)

	assertTiles(t, s, "p")
}

func TestInsertLineVertical(t *testing.T) {
	vp := fourTileViewport()
	s := NewSpatialHashTable()
	s.InitViewport(vp)

	l := geom.Line{Origin: geom.Vec2(-0.5, 0), Direction: geom.Vec2(0, 1), Extent: geom.FullExtent()}
	s.InsertLine("l", l, vp)

	assertTiles(t, s, "l", 0, 2)
}

func TestInsertLineDiagonalUp(t *testing.T) {
	vp := fourTileViewport()
	s := NewSpatialHashTable()
	s.InitViewport(vp)

	d := math.Sqrt(2) / 2
	l := geom.Line{Origin: geom.Vec2(-0.5, 0), Direction: geom.Vec2(d, d), Extent: geom.FullExtent()}
	s.InsertLine("l", l, vp)

	assertTiles(t, s, "l", 0, 1, 2)
}

func TestInsertLineDiagonalDown(t *testing.T) {
	vp := fourTileViewport()
	s := NewSpatialHashTable()
	s.InitViewport(vp)

	d := math.Sqrt(2) / 2
	l := geom.Line{Origin: geom.Vec2(-0.5, 0), Direction: geom.Vec2(d, -d), Extent: geom.FullExtent()}
	s.InsertLine("l", l, vp)

	assertTiles(t, s, "l", 0, 2, 3)
}

func TestInsertLineDiagonalFourByFour(t *testing.T) {
	vp := NewViewport(geom.Vec2(0, 0), geom.Vec2(4, 4), geom.Vec2(160, 160))
	s := NewSpatialHashTable()
	s.InitViewport(vp)

	d := math.Sqrt(2) / 2
	l := geom.Line{Origin: geom.Vec2(-0.5, 0), Direction: geom.Vec2(d, d), Extent: geom.FullExtent()}
	s.InsertLine("l", l, vp)

	assertTiles(t, s, "l", 2, 3, 5, 6, 8, 9, 12)
}

func TestInsertLineShallowSlope(t *testing.T) {
	vp := NewViewport(geom.Vec2(0, 0), geom.Vec2(4, 4), geom.Vec2(160, 160))
	s := NewSpatialHashTable()
	s.InitViewport(vp)

	n := math.Sqrt(17)
	l := geom.Line{Origin: geom.Vec2(0, -0.1), Direction: geom.Vec2(4/n, 1/n), Extent: geom.FullExtent()}
	s.InsertLine("l", l, vp)

	assertTiles(t, s, "l", 6, 7, 8, 9, 10)
}

func TestInsertLineThroughThreeTiles(t *testing.T) {
	vp := fourTileViewport()
	s := NewSpatialHashTable()
	s.InitViewport(vp)

	d := math.Sqrt(2) / 2
	l := geom.Line{Origin: geom.Vec2(0, -0.5), Direction: geom.Vec2(d, d), Extent: geom.FullExtent()}
	s.InsertLine("l", l, vp)

	assertTiles(t, s, "l", 1, 2, 3)
}

func TestInsertRayUpRight(t *testing.T) {
	vp := fourTileViewport()
	s := NewSpatialHashTable()
	s.InitViewport(vp)

	d := math.Sqrt(2) / 2
	l := geom.Line{Origin: geom.Vec2(0.1, -0.5), Direction: geom.Vec2(d, d), Extent: geom.RayExtent()}
	s.InsertLine("r", l, vp)

	assertTiles(t, s, "r", 1, 3)
}

func TestInsertRayCrossingCenter(t *testing.T) {
	vp := fourTileViewport()
	s := NewSpatialHashTable()
	s.InitViewport(vp)

	d := math.Sqrt(2) / 2
	l := geom.Line{Origin: geom.Vec2(-0.1, -0.5), Direction: geom.Vec2(d, d), Extent: geom.RayExtent()}
	s.InsertLine("r", l, vp)

	assertTiles(t, s, "r", 1, 2, 3)
}

func TestInsertRayDownLeft(t *testing.T) {
	vp := fourTileViewport()
	s := NewSpatialHashTable()
	s.InitViewport(vp)

	d := math.Sqrt(2) / 2
	l := geom.Line{Origin: geom.Vec2(-0.1, -0.5), Direction: geom.Vec2(-d, -d), Extent: geom.RayExtent()}
	s.InsertLine("r", l, vp)

	assertTiles(t, s, "r", 2)
}

func TestInsertRayPointingAway(t *testing.T) {
	vp := fourTileViewport()
	s := NewSpatialHashTable()
	s.InitViewport(vp)

	d := math.Sqrt(2) / 2
	l := geom.Line{Origin: geom.Vec2(-0.5, -1.5), Direction: geom.Vec2(-d, -d), Extent: geom.RayExtent()}
	s.InsertLine("r", l, vp)

	assertTiles(t, s, "r")
}

func TestInsertSegmentLong(t *testing.T) {
	vp := fourTileViewport()
	s := NewSpatialHashTable()
	s.InitViewport(vp)

	d := math.Sqrt(2) / 2
	l := geom.Line{Origin: geom.Vec2(-0.4, -1.5), Direction: geom.Vec2(d, d), Extent: geom.SegmentExtent(5)}
	s.InsertLine("s", l, vp)

	assertTiles(t, s, "s", 3)
}

func TestInsertSegmentShort(t *testing.T) {
	vp := fourTileViewport()
	s := NewSpatialHashTable()
	s.InitViewport(vp)

	d := math.Sqrt(2) / 2
	l := geom.Line{Origin: geom.Vec2(-0.4, -1.5), Direction: geom.Vec2(d, d), Extent: geom.SegmentExtent(1.2)}
	s.InsertLine("s", l, vp)

	assertTiles(t, s, "s", 3)
}

func TestInsertHorizontalLine(t *testing.T) {
	vp := fourTileViewport()
	s := NewSpatialHashTable()
	s.InitViewport(vp)

	l := geom.Line{Origin: geom.Vec2(0, -0.5), Direction: geom.Vec2(1, 0), Extent: geom.FullExtent()}
	s.InsertLine("l", l, vp)

	assertTiles(t, s, "l", 2, 3)
}

func TestInsertCircleCoversRing(t *testing.T) {
	vp := NewViewport(geom.Vec2(0, 0), geom.Vec2(3, 3), geom.Vec2(120, 120))
	s := NewSpatialHashTable()
	s.InitViewport(vp)

	s.InsertCircle("c", geom.Circle{Center: geom.Vec2(0, 0), Radius: 1}, vp)

	// A unit circle at the origin maps to a 40px radius at pixel (60,60).
	// Every tile's closest corner is at most sqrt(800)=28.3px away, so all
	// nine tiles overlap the disk.
	for tile := range s.table {
		assert.True(t, tileContains(s, tile, "c"), "tile %d", tile)
	}
}

func TestInsertSmallCircleSkipsCorner(t *testing.T) {
	vp := NewViewport(geom.Vec2(0, 0), geom.Vec2(6, 6), geom.Vec2(240, 240))
	s := NewSpatialHashTable()
	s.InitViewport(vp)

	s.InsertCircle("c", geom.Circle{Center: geom.Vec2(0.4, 0.6), Radius: 0.5}, vp)

	// Pixel center (136,96), radius 20. The bounding square touches four
	// tiles but the top-left one's closest corner is sqrt(512)=22.6px away.
	assertTiles(t, s, "c", 9, 14, 15)
}

func TestRemoveFromAll(t *testing.T) {
	vp := fourTileViewport()
	s := NewSpatialHashTable()
	s.InitViewport(vp)

	l := geom.Line{Origin: geom.Vec2(-0.5, 0), Direction: geom.Vec2(0, 1), Extent: geom.FullExtent()}
	s.InsertLine("l", l, vp)
	s.RemoveFromAll("l")

	assertTiles(t, s, "l")
}

func TestNeighborsOfPointFindsAdjacent(t *testing.T) {
	vp := NewViewport(geom.Vec2(0, 0), geom.Vec2(4, 4), geom.Vec2(160, 160))
	s := NewSpatialHashTable()
	s.InitViewport(vp)

	s.InsertPoint("a", geom.Vec2(-0.1, 0.1), vp)

	// Query from the adjacent tile.
	got := s.NeighborsOfPoint(geom.Vec2(0.3, 0.1), vp)
	assert.Contains(t, got, Entity("a"))
}

func TestNeighborsOfPointOutsideGrid(t *testing.T) {
	vp := fourTileViewport()
	s := NewSpatialHashTable()
	s.InitViewport(vp)

	assert.Nil(t, s.NeighborsOfPoint(geom.Vec2(10, 10), vp))
}

func TestNeighborsOfAABB(t *testing.T) {
	vp := NewViewport(geom.Vec2(0, 0), geom.Vec2(4, 4), geom.Vec2(160, 160))
	s := NewSpatialHashTable()
	s.InitViewport(vp)

	s.InsertPoint("a", geom.Vec2(-1.5, 1.5), vp) // top-left region
	s.InsertPoint("b", geom.Vec2(1.5, -1.5), vp) // bottom-right region

	got := s.NeighborsOfAABB(geom.NewAABB(0, 0, 50, 50))
	assert.Contains(t, got, Entity("a"))
	assert.NotContains(t, got, Entity("b"))
}

// TestInsertLineRandomRoundTrip checks that every visible point of a line is
// findable through the tile it lands in, across random origins, directions
// and extents.
func TestInsertLineRandomRoundTrip(t *testing.T) {
	vp := NewViewport(geom.Vec2(0, 0), geom.Vec2(2, 2), geom.Vec2(320, 320))
	box := vp.ActualAABB()
	s := NewSpatialHashTable()
	s.InitViewport(vp)

	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 100; i++ {
		s.Clear()

		theta := rng.Float64()*2*math.Pi - math.Pi
		l := geom.Line{
			Origin:    geom.Vec2(rng.Float64()*2-1, rng.Float64()*2-1),
			Direction: geom.Vec2(math.Cos(theta), math.Sin(theta)),
		}
		switch rng.Intn(3) {
		case 0:
			l.Extent = geom.FullExtent()
		case 1:
			l.Extent = geom.RayExtent()
		default:
			l.Extent = geom.SegmentExtent(rng.Float64() * 2)
		}
		s.InsertLine("l", l, vp)

		actual := vp.LineToActual(l)
		for j := 0; j < 100; j++ {
			var tt float64
			switch actual.Extent.Kind {
			case geom.ExtentRay:
				tt = rng.Float64() * 320
			case geom.ExtentSegment:
				tt = rng.Float64() * actual.Extent.Length
			default:
				tt = rng.Float64()*640 - 320
			}
			p := actual.PointAt(tt)
			if !box.Contains(p) {
				continue
			}
			cell, ok := s.cellOf(p)
			require.True(t, ok, "point %v in viewport must map to a cell", p)
			assert.True(t, tileContains(s, cell, "l"),
				"line %+v point %v t=%v cell=%d", l, p, tt, cell)
		}
	}
}

// Regression for a steep downward ray sampled near a tile boundary.
func TestInsertRaySteepDownward(t *testing.T) {
	vp := fourTileViewport()
	box := vp.ActualAABB()
	s := NewSpatialHashTable()
	s.InitViewport(vp)

	l := geom.Line{
		Origin:    geom.Vec2(0.4987389654749186, 0.08770535401554502),
		Direction: geom.Vec2(-0.4210742727328035, -0.9070261610574089),
		Extent:    geom.RayExtent(),
	}
	s.InsertLine("r", l, vp)

	actual := vp.LineToActual(l)
	p := actual.PointAt(47.55087108142186)
	require.True(t, box.Contains(p))
	cell, ok := s.cellOf(p)
	require.True(t, ok)
	assert.True(t, tileContains(s, cell, "r"))
}
