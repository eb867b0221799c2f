package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adamnemecek/geometry-sketchpad/backend-go/internal/document"
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

func TestRenderSVG(t *testing.T) {
	doc := document.NewEmptyDocument("s", "")
	doc.Insert("a", engine.FreePoint(geom.Vec2(-2, 0)))
	doc.Insert("b", engine.FreePoint(geom.Vec2(2, 0)))
	doc.Insert("seg", engine.SegmentLine("a", "b"))
	doc.Insert("circ", engine.CenterRadiusCircle("a", "b"))

	svg, err := RenderSVG(doc, testViewport())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(svg, `<svg xmlns="http://www.w3.org/2000/svg" width="1280" height="960"`))
	assert.True(t, strings.HasSuffix(svg, "</svg>\n"))

	// Segment (-2,0)-(2,0) maps to y=480, x from 512 to 768.
	assert.Contains(t, svg, `<line x1="512" y1="480" x2="768" y2="480"`)

	// Circle centered at a with radius |ab| = 4 virtual units = 256 px.
	assert.Contains(t, svg, `<circle cx="512" cy="480" r="256" fill="none"`)

	// Both endpoints drawn as point markers, after the curves.
	assert.Contains(t, svg, `<circle cx="512" cy="480" r="3" fill="#e94560"/>`)
	assert.Contains(t, svg, `<circle cx="768" cy="480" r="3" fill="#e94560"/>`)
	lineIdx := strings.Index(svg, "<line")
	pointIdx := strings.Index(svg, `fill="#e94560"`)
	assert.Less(t, lineIdx, pointIdx)
}

func TestRenderSVGSkipsInvalidEntities(t *testing.T) {
	doc := document.NewEmptyDocument("s", "")
	doc.Insert("a", engine.FreePoint(geom.Vec2(0, 0)))
	doc.Insert("b", engine.FreePoint(geom.Vec2(0, 0)))
	doc.Insert("seg", engine.SegmentLine("a", "b"))

	svg, err := RenderSVG(doc, testViewport())
	require.NoError(t, err)

	// Coincident endpoints make the segment unresolvable; only the point
	// markers remain.
	assert.NotContains(t, svg, "<line")
	assert.Equal(t, 2, strings.Count(svg, "<circle"))
}

func TestRenderSVGClipsLineToViewport(t *testing.T) {
	doc := document.NewEmptyDocument("s", "")
	doc.Insert("a", engine.FreePoint(geom.Vec2(-1, 0)))
	doc.Insert("b", engine.FreePoint(geom.Vec2(1, 0)))
	doc.Insert("line", engine.StraightLine("a", "b"))

	svg, err := RenderSVG(doc, testViewport())
	require.NoError(t, err)

	// A full line through y=0 spans the whole canvas after clipping.
	assert.Contains(t, svg, `<line x1="0" y1="480" x2="1280" y2="480"`)
}
