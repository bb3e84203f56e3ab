// Package region turns raw pointer events over a viewer surface into
// incremental region updates and Inner/Outer classification. It is a plain
// state machine with no rendering or input-library dependencies; the game
// loop feeds it pixel coordinates each tick.
package region

import (
	"github.com/iburimskiy/fourier-studio/internal/geometry"
)

// Mode is the current gesture state.
type Mode int

const (
	ModeIdle Mode = iota
	ModeMoving
	ModeResizingRight
	ModeResizingBottom
	ModeResizingCorner
)

const (
	// defaultHandleRadius is the grab radius of a resize handle, in pixels.
	defaultHandleRadius = 10.0
	// defaultDeadZone is the pointer travel (pixels) below which a press and
	// release counts as a click rather than a drag.
	defaultDeadZone = 4.0
)

// Editor drives one region rectangle. It keeps the authoritative copy of the
// region between gestures; external writes go through SetRegion and are
// refused while a gesture is active.
type Editor struct {
	current geometry.Region

	mode     Mode
	anchorX  float64 // surface-local pixels at gesture start
	anchorY  float64
	baseline geometry.Region
	downOn   bool    // pointer went down on this surface
	onHandle bool    // the press landed on a resize handle
	travel   float64 // max squared distance from the press point, pixels

	handleRadius float64
	deadZone     float64

	// OnRegion fires after every applied pointer-move and is a per-event
	// stream; consumers must tolerate high frequency.
	OnRegion func(geometry.Region)
	// OnClassify fires on a completed click: Inner when the click landed
	// inside the rectangle, Outer when outside.
	OnClassify func(geometry.RegionKind)
}

// New returns an editor starting from r. The handle radius and click dead
// zone are in surface pixels; non-positive values fall back to the defaults.
// Callers drawing the handles should pass the same radius they render with.
func New(r geometry.Region, handleRadius, deadZone float64) *Editor {
	if handleRadius <= 0 {
		handleRadius = defaultHandleRadius
	}
	if deadZone <= 0 {
		deadZone = defaultDeadZone
	}
	return &Editor{
		current:      r,
		handleRadius: handleRadius,
		deadZone:     deadZone,
	}
}

// Region returns the current rectangle.
func (e *Editor) Region() geometry.Region { return e.current }

// Mode returns the active gesture mode.
func (e *Editor) Mode() Mode { return e.mode }

// SetRegion replaces the rectangle from outside the editor. Ignored while a
// gesture is in progress: the gesture owns the region until pointer-up.
func (e *Editor) SetRegion(r geometry.Region) {
	if e.mode != ModeIdle {
		return
	}
	e.current = r
}

// pixelRect converts the current region to surface pixels.
func (e *Editor) pixelRect(surfW, surfH float64) (left, top, right, bottom float64) {
	left = (e.current.CenterX - e.current.Width/2) * surfW
	right = (e.current.CenterX + e.current.Width/2) * surfW
	top = (e.current.CenterY - e.current.Height/2) * surfH
	bottom = (e.current.CenterY + e.current.Height/2) * surfH
	return
}

func within(px, py, cx, cy, r float64) bool {
	dx := px - cx
	dy := py - cy
	return dx*dx+dy*dy <= r*r
}

// PointerDown starts a gesture. Handles take priority over the body, and the
// body over the bare surface; a press on the bare surface stays Idle and can
// only become a click.
func (e *Editor) PointerDown(px, py, surfW, surfH float64) {
	if surfW <= 0 || surfH <= 0 || !geometry.Finite(px, py) {
		return
	}
	if e.mode != ModeIdle {
		return
	}

	left, top, right, bottom := e.pixelRect(surfW, surfH)
	midY := (top + bottom) / 2
	midX := (left + right) / 2

	e.downOn = true
	e.onHandle = false
	e.travel = 0
	e.anchorX = px
	e.anchorY = py
	e.baseline = e.current

	switch {
	case within(px, py, right, bottom, e.handleRadius):
		e.mode = ModeResizingCorner
		e.onHandle = true
	case within(px, py, right, midY, e.handleRadius):
		e.mode = ModeResizingRight
		e.onHandle = true
	case within(px, py, midX, bottom, e.handleRadius):
		e.mode = ModeResizingBottom
		e.onHandle = true
	case px >= left && px <= right && py >= top && py <= bottom:
		e.mode = ModeMoving
	default:
		// Bare surface: no gesture, but remember the press for the click.
	}
}

// PointerMove advances an active gesture. Events on a zero-sized surface or
// with non-finite coordinates are ignored outright.
func (e *Editor) PointerMove(px, py, surfW, surfH float64) {
	if surfW <= 0 || surfH <= 0 || !geometry.Finite(px, py) {
		return
	}
	if e.downOn {
		dx := px - e.anchorX
		dy := py - e.anchorY
		if d := dx*dx + dy*dy; d > e.travel {
			e.travel = d
		}
	}
	if e.mode == ModeIdle {
		return
	}

	deltaX := (px - e.anchorX) / surfW
	deltaY := (py - e.anchorY) / surfH

	next := e.baseline
	switch e.mode {
	case ModeMoving:
		next.CenterX, next.CenterY = geometry.ClampCenter(
			e.baseline.CenterX+deltaX, e.baseline.CenterY+deltaY)
	case ModeResizingRight:
		// The opposite edge mirrors the handle to keep the center fixed, so
		// the handle moving by delta grows the total width by twice that.
		next.Width, next.Height = geometry.ClampSize(
			e.baseline.Width+deltaX*2, e.baseline.Height)
	case ModeResizingBottom:
		next.Width, next.Height = geometry.ClampSize(
			e.baseline.Width, e.baseline.Height+deltaY*2)
	case ModeResizingCorner:
		next.Width, next.Height = geometry.ClampSize(
			e.baseline.Width+deltaX*2, e.baseline.Height+deltaY*2)
	}

	e.current = next
	if e.OnRegion != nil {
		e.OnRegion(next)
	}
}

// PointerUp ends the gesture. Must be called on release anywhere, not just
// over the surface. A release whose total travel stayed inside the dead zone
// classifies the press point, unless the press landed on a handle or the
// press never hit this surface.
func (e *Editor) PointerUp(px, py, surfW, surfH float64) {
	wasDown := e.downOn
	onHandle := e.onHandle
	travel := e.travel

	e.mode = ModeIdle
	e.downOn = false
	e.onHandle = false
	e.travel = 0

	if !wasDown || onHandle {
		return
	}
	if surfW <= 0 || surfH <= 0 || !geometry.Finite(px, py) {
		return
	}
	if travel > e.deadZone*e.deadZone {
		// A real drag, not a click.
		return
	}

	kind := geometry.Outer
	if e.current.Contains(px/surfW, py/surfH) {
		kind = geometry.Inner
	}
	if e.OnClassify != nil {
		e.OnClassify(kind)
	}
}

// Cancel aborts any in-progress gesture without emitting, for when the owning
// surface goes away mid-drag.
func (e *Editor) Cancel() {
	e.mode = ModeIdle
	e.downOn = false
	e.onHandle = false
	e.travel = 0
}
