// Package geometry holds the normalized region-of-interest value type shared
// by the editor, the parameter store and the render client. Everything here is
// pure value math in the 0..1 coordinate space; pixel conversion happens at
// the call sites.
package geometry

import "math"

const (
	// SizeFloor keeps the rectangle large enough to grab with the pointer.
	SizeFloor = 0.05
	// SizeCeil caps either dimension at the full surface.
	SizeCeil = 1.0
)

// RegionKind says which side of the rectangle the weighted operation applies
// to.
type RegionKind int

const (
	Inner RegionKind = iota
	Outer
)

// String returns the wire spelling used by the render service.
func (k RegionKind) String() string {
	if k == Outer {
		return "outer"
	}
	return "inner"
}

// Region is a rectangle in normalized surface coordinates. Center components
// live in [0,1]; size components in [SizeFloor, SizeCeil]. The rectangle may
// extend past the surface edges: only center and size are clamped, and they
// are clamped independently.
type Region struct {
	CenterX float64
	CenterY float64
	Width   float64
	Height  float64
	Kind    RegionKind
}

// Default returns the starting region: a half-size rectangle centered on the
// surface, classified Inner.
func Default() Region {
	return Region{CenterX: 0.5, CenterY: 0.5, Width: 0.5, Height: 0.5, Kind: Inner}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampCenter saturates a center point to the unit square. It never errors.
func ClampCenter(x, y float64) (float64, float64) {
	return clamp(x, 0, 1), clamp(y, 0, 1)
}

// ClampSize saturates a size to [SizeFloor, SizeCeil] per axis.
func ClampSize(w, h float64) (float64, float64) {
	return clamp(w, SizeFloor, SizeCeil), clamp(h, SizeFloor, SizeCeil)
}

// Contains reports whether (px, py) falls inside the rectangle. The point
// must be expressed in the same coordinate space as the region itself.
func (r Region) Contains(px, py float64) bool {
	hw := r.Width / 2
	hh := r.Height / 2
	return px >= r.CenterX-hw && px <= r.CenterX+hw &&
		py >= r.CenterY-hh && py <= r.CenterY+hh
}

// BoundingBox is a rendering-oriented view of a Region, expressed as
// percentages of the surface.
type BoundingBox struct {
	LeftPct   float64
	TopPct    float64
	WidthPct  float64
	HeightPct float64
}

// BoundingBoxPercent converts the center/size representation into the
// left/top box the overlay renderer wants.
func (r Region) BoundingBoxPercent() BoundingBox {
	return BoundingBox{
		LeftPct:   (r.CenterX - r.Width/2) * 100,
		TopPct:    (r.CenterY - r.Height/2) * 100,
		WidthPct:  r.Width * 100,
		HeightPct: r.Height * 100,
	}
}

// Finite reports whether both coordinates are real numbers. Pointer events
// carrying NaN or Inf are dropped before they reach the region math.
func Finite(x, y float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0) && !math.IsNaN(y) && !math.IsInf(y, 0)
}
