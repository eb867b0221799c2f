package engine

import (
	"github.com/adamnemecek/geometry-sketchpad/backend-go/internal/geom"
)

// Viewport maps between virtual space (sketch coordinates, y up) and actual
// space (screen pixels, y down, origin at the top-left corner). It is owned by
// the authoring layer; the engine only reads it.
type Viewport struct {
	Center      geom.Vector2 `json:"center"`      // virtual-space center of the view
	VirtualSize geom.Vector2 `json:"virtualSize"` // virtual width/height covered
	ActualSize  geom.Vector2 `json:"actualSize"`  // pixel width/height
}

func NewViewport(center, virtualSize, actualSize geom.Vector2) Viewport {
	return Viewport{Center: center, VirtualSize: virtualSize, ActualSize: actualSize}
}

// Scale is the uniform virtual→actual scale factor.
func (vp Viewport) Scale() float64 {
	return vp.ActualSize.X / vp.VirtualSize.X
}

func (vp Viewport) ActualWidth() float64  { return vp.ActualSize.X }
func (vp Viewport) ActualHeight() float64 { return vp.ActualSize.Y }

// ActualAABB is the pixel-space bounding rectangle of the view.
func (vp Viewport) ActualAABB() geom.AABB {
	return geom.NewAABB(0, 0, vp.ActualSize.X, vp.ActualSize.Y)
}

// ToActual maps a virtual-space point to pixel space.
func (vp Viewport) ToActual(p geom.Vector2) geom.Vector2 {
	s := vp.Scale()
	return geom.Vector2{
		X: vp.ActualSize.X/2 + (p.X-vp.Center.X)*s,
		Y: vp.ActualSize.Y/2 - (p.Y-vp.Center.Y)*s,
	}
}

// ToVirtual maps a pixel-space point back to virtual space.
func (vp Viewport) ToVirtual(p geom.Vector2) geom.Vector2 {
	s := vp.Scale()
	return geom.Vector2{
		X: vp.Center.X + (p.X-vp.ActualSize.X/2)/s,
		Y: vp.Center.Y - (p.Y-vp.ActualSize.Y/2)/s,
	}
}

// ScalarToActual maps a virtual-space length to pixels.
func (vp Viewport) ScalarToActual(v float64) float64 {
	return v * vp.Scale()
}

// LineToActual maps a line to pixel space. Direction stays unit length; only
// the y component flips. Segment extents scale with the viewport.
func (vp Viewport) LineToActual(l geom.Line) geom.Line {
	out := geom.Line{
		Origin:    vp.ToActual(l.Origin),
		Direction: geom.Vector2{X: l.Direction.X, Y: -l.Direction.Y},
		Extent:    l.Extent,
	}
	if out.Extent.Kind == geom.ExtentSegment {
		out.Extent.Length = vp.ScalarToActual(l.Extent.Length)
	}
	return out
}

// CircleToActual maps a circle to pixel space.
func (vp Viewport) CircleToActual(c geom.Circle) geom.Circle {
	return geom.Circle{
		Center: vp.ToActual(c.Center),
		Radius: vp.ScalarToActual(c.Radius),
	}
}
