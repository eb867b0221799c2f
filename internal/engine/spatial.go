package engine

import (
	"fmt"
	"math"

	"github.com/adamnemecek/geometry-sketchpad/backend-go/internal/geom"
)

// tileSize is the edge length of one grid tile in actual (pixel) space.
const tileSize = 40.0

// SpatialHashTable indexes concrete geometry over a grid of square tiles
// covering the viewport's actual space, so "what is near this pixel" queries
// run in near-constant time. Each tile holds the set of entities whose
// rendered shape crosses it. The grid must be re-initialized whenever the
// viewport's actual size changes; callers then re-insert all live entities.
type SpatialHashTable struct {
	xTiles int
	yTiles int
	table  []map[Entity]struct{}
}

func NewSpatialHashTable() *SpatialHashTable {
	return &SpatialHashTable{}
}

// InitViewport resizes the grid to cover the viewport's actual space and
// clears every tile.
func (s *SpatialHashTable) InitViewport(vp Viewport) {
	s.xTiles = int(math.Ceil(vp.ActualWidth() / tileSize))
	s.yTiles = int(math.Ceil(vp.ActualHeight() / tileSize))
	s.table = make([]map[Entity]struct{}, s.xTiles*s.yTiles)
	for i := range s.table {
		s.table[i] = make(map[Entity]struct{})
	}
}

// InsertPoint indexes a virtual-space point. Points outside the viewport are
// silently skipped.
func (s *SpatialHashTable) InsertPoint(ent Entity, p geom.Vector2, vp Viewport) {
	if tile, ok := s.cellOf(vp.ToActual(p)); ok {
		s.table[tile][ent] = struct{}{}
	}
}

// InsertLine indexes a virtual-space line into every tile its visible portion
// crosses. The line is clipped against the viewport first (respecting its
// ray/segment extent); near-vertical runs take a column fast path, everything
// else walks tile rows with incremental stepping.
func (s *SpatialHashTable) InsertLine(ent Entity, l geom.Line, vp Viewport) {
	p1, p2, ok := vp.LineToActual(l).ClipAABB(vp.ActualAABB())
	if !ok {
		return
	}

	// Walk left to right.
	if p1.X > p2.X {
		p1, p2 = p2, p1
	}
	dir := p2.Sub(p1).Normalized()
	// Nudge the start off exact tile boundaries so the first tile is the one
	// the segment visibly enters.
	p1 = p1.Add(dir.Mul(1e-6))

	initXTile, initYTile := s.unlimitedCell(p1)
	endXTile, endYTile := s.unlimitedCell(p2)

	// Near-vertical: a single column of tiles.
	if initXTile == endXTile {
		if initXTile < 0 || initXTile >= s.xTiles {
			return
		}
		y0, y1 := initYTile, endYTile
		if y0 > y1 {
			y0, y1 = y1, y0
		}
		for y := maxInt(y0, 0); y <= minInt(y1, s.yTiles-1); y++ {
			s.insertAt(initXTile, y, ent)
		}
		return
	}

	// Horizontal: a single row of tiles.
	if math.Abs(dir.Y) < geom.Epsilon {
		if initYTile < 0 || initYTile >= s.yTiles {
			return
		}
		for x := maxInt(initXTile, 0); x <= minInt(endXTile, s.xTiles-1); x++ {
			s.insertAt(x, initYTile, ent)
		}
		return
	}

	// General case: step row by row, covering every x tile the segment
	// crosses before it leaves the current row.
	yi := 1
	if dir.Y < 0 {
		yi = -1
	}
	currX, currY := p1.X, p1.Y
	currXTile, currYTile := initXTile, initYTile

	for currXTile <= endXTile && 0 <= currYTile && currYTile < s.yTiles {
		rowStep := 0
		if dir.Y > 0 {
			rowStep = 1
		}
		nextY := float64(currYTile+rowStep) * tileSize
		tileOffsetY := (nextY - currY) * float64(yi)
		nextX := currX + tileOffsetY/math.Abs(dir.Y)*dir.X
		nextXTile := int(math.Floor(nextX / tileSize))

		for tx := currXTile; tx <= nextXTile; tx++ {
			if tx >= 0 && tx <= endXTile && tx < s.xTiles {
				s.insertAt(tx, currYTile, ent)
			}
		}

		currX, currY = nextX, nextY
		currXTile = nextXTile
		currYTile += yi
	}
}

// InsertCircle indexes a virtual-space circle into every tile its disk
// overlaps, using the closest-point distance test against each candidate tile
// in the circle's bounding square.
func (s *SpatialHashTable) InsertCircle(ent Entity, c geom.Circle, vp Viewport) {
	actual := vp.CircleToActual(c)
	left, top := s.unlimitedCell(actual.Center.Sub(geom.Vec2(actual.Radius, actual.Radius)))
	right, bottom := s.unlimitedCell(actual.Center.Add(geom.Vec2(actual.Radius, actual.Radius)))

	for y := maxInt(top, 0); y <= minInt(bottom, s.yTiles-1); y++ {
		for x := maxInt(left, 0); x <= minInt(right, s.xTiles-1); x++ {
			tileBox := geom.NewAABB(float64(x)*tileSize, float64(y)*tileSize, tileSize, tileSize)
			closest := tileBox.ClosestTo(actual.Center).DistanceTo(actual.Center)
			furthest := tileBox.FurthestFrom(actual.Center).DistanceTo(actual.Center)
			if closest <= actual.Radius && closest <= furthest {
				s.insertAt(x, y, ent)
			}
		}
	}
}

// RemoveFromAll removes the entity from every tile. O(tile count).
func (s *SpatialHashTable) RemoveFromAll(ent Entity) {
	for _, cell := range s.table {
		delete(cell, ent)
	}
}

// Clear empties every tile without resizing the grid.
func (s *SpatialHashTable) Clear() {
	for _, cell := range s.table {
		for e := range cell {
			delete(cell, e)
		}
	}
}

// NeighborsOfPoint returns the entities indexed in the virtual-space point's
// tile and its up-to-8 adjacent tiles, deduplicated. Returns nil when the
// point maps outside the grid.
func (s *SpatialHashTable) NeighborsOfPoint(p geom.Vector2, vp Viewport) []Entity {
	center, ok := s.cellOf(vp.ToActual(p))
	if !ok {
		return nil
	}

	tiles := []int{center}
	left := !s.isLeftBorder(center)
	right := !s.isRightBorder(center)
	top := !s.isTopBorder(center)
	bottom := !s.isBottomBorder(center)

	if left {
		tiles = append(tiles, center-1)
	}
	if right {
		tiles = append(tiles, center+1)
	}
	if top {
		tiles = append(tiles, center-s.xTiles)
	}
	if bottom {
		tiles = append(tiles, center+s.xTiles)
	}
	if left && top {
		tiles = append(tiles, center-s.xTiles-1)
	}
	if left && bottom {
		tiles = append(tiles, center+s.xTiles-1)
	}
	if right && top {
		tiles = append(tiles, center-s.xTiles+1)
	}
	if right && bottom {
		tiles = append(tiles, center+s.xTiles+1)
	}

	seen := make(map[Entity]struct{})
	result := make([]Entity, 0)
	for _, tile := range tiles {
		for e := range s.table[tile] {
			if _, dup := seen[e]; dup {
				continue
			}
			seen[e] = struct{}{}
			result = append(result, e)
		}
	}
	return result
}

// NeighborsOfAABB returns the union of entities in every tile overlapped by
// the actual-space rectangle.
func (s *SpatialHashTable) NeighborsOfAABB(box geom.AABB) map[Entity]struct{} {
	iMin, jMin := s.unlimitedCell(geom.Vec2(box.MinX(), box.MinY()))
	iMax, jMax := s.unlimitedCell(geom.Vec2(box.MaxX(), box.MaxY()))

	result := make(map[Entity]struct{})
	for j := maxInt(jMin, 0); j <= minInt(jMax, s.yTiles-1); j++ {
		for i := maxInt(iMin, 0); i <= minInt(iMax, s.xTiles-1); i++ {
			for e := range s.table[s.cellByXY(i, j)] {
				result[e] = struct{}{}
			}
		}
	}
	return result
}

// cellOf maps an actual-space point to its tile, reporting false when it
// falls outside the grid.
func (s *SpatialHashTable) cellOf(p geom.Vector2) (int, bool) {
	xTile := int(math.Floor(p.X / tileSize))
	yTile := int(math.Floor(p.Y / tileSize))
	if xTile < 0 || xTile >= s.xTiles || yTile < 0 || yTile >= s.yTiles {
		return 0, false
	}
	return s.cellByXY(xTile, yTile), true
}

// unlimitedCell maps an actual-space point to tile coordinates without bounds
// checking.
func (s *SpatialHashTable) unlimitedCell(p geom.Vector2) (int, int) {
	return int(math.Floor(p.X / tileSize)), int(math.Floor(p.Y / tileSize))
}

func (s *SpatialHashTable) cellByXY(xTile, yTile int) int {
	return yTile*s.xTiles + xTile
}

func (s *SpatialHashTable) insertAt(xTile, yTile int, ent Entity) {
	tile := s.cellByXY(xTile, yTile)
	if tile < 0 || tile >= len(s.table) {
		// Grid math invariant violation, not a recoverable condition.
		panic(fmt.Sprintf("spatial: tile index %d out of range (x=%d y=%d grid=%dx%d)",
			tile, xTile, yTile, s.xTiles, s.yTiles))
	}
	s.table[tile][ent] = struct{}{}
}

func (s *SpatialHashTable) isLeftBorder(tile int) bool {
	return tile%s.xTiles == 0
}

func (s *SpatialHashTable) isRightBorder(tile int) bool {
	return tile%s.xTiles == s.xTiles-1
}

func (s *SpatialHashTable) isTopBorder(tile int) bool {
	return tile/s.xTiles < 1
}

func (s *SpatialHashTable) isBottomBorder(tile int) bool {
	return tile/s.xTiles >= s.yTiles-1
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
