package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/adamnemecek/geometry-sketchpad/backend-go/internal/document"
	"github.com/adamnemecek/geometry-sketchpad/backend-go/internal/engine"
)

const (
	pointRadius = 3.0
	strokeColor = "#1a1a2e"
	pointColor  = "#e94560"
	strokeWidth = 1.5
)

// RenderSVG resolves the document's construction and renders every valid
// entity into an SVG sized to the viewport. Invalid entities are skipped.
func RenderSVG(doc *document.SketchDocument, vp engine.Viewport) (string, error) {
	eng := engine.NewEngine(vp)
	if err := doc.LoadInto(eng); err != nil {
		return "", fmt.Errorf("resolve document: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%g" height="%g" viewBox="0 0 %g %g">`,
		vp.ActualSize.X, vp.ActualSize.Y, vp.ActualSize.X, vp.ActualSize.Y)
	b.WriteString("\n")

	// Draw in construction order so points land on top of the curves that
	// defined them.
	box := vp.ActualAABB()
	for _, id := range doc.Order {
		g, ok := eng.Geometry(engine.Entity(id))
		if !ok {
			continue
		}

		switch g.Kind {
		case engine.KindLine:
			actual := vp.LineToActual(g.Line)
			p1, p2, ok := actual.ClipAABB(box)
			if !ok {
				continue
			}
			fmt.Fprintf(&b, `  <line x1="%g" y1="%g" x2="%g" y2="%g" stroke="%s" stroke-width="%g"/>`,
				round(p1.X), round(p1.Y), round(p2.X), round(p2.Y), strokeColor, strokeWidth)
			b.WriteString("\n")

		case engine.KindCircle:
			actual := vp.CircleToActual(g.Circle)
			fmt.Fprintf(&b, `  <circle cx="%g" cy="%g" r="%g" fill="none" stroke="%s" stroke-width="%g"/>`,
				round(actual.Center.X), round(actual.Center.Y), round(actual.Radius), strokeColor, strokeWidth)
			b.WriteString("\n")
		}
	}
	for _, id := range doc.Order {
		g, ok := eng.Geometry(engine.Entity(id))
		if !ok || g.Kind != engine.KindPoint {
			continue
		}
		p := vp.ToActual(g.Point)
		fmt.Fprintf(&b, `  <circle cx="%g" cy="%g" r="%g" fill="%s"/>`,
			round(p.X), round(p.Y), pointRadius, pointColor)
		b.WriteString("\n")
	}

	b.WriteString("</svg>\n")
	return b.String(), nil
}

// round trims sub-thousandth noise so the output stays stable and compact.
func round(v float64) float64 {
	return math.Round(v*1000) / 1000
}
