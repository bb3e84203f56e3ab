package params

import "github.com/google/uuid"

// GeometryKind is the element layout of a phased array.
type GeometryKind int

const (
	GeometryLinear GeometryKind = iota
	GeometryCurved
)

// String returns the wire spelling used by the render service.
func (g GeometryKind) String() string {
	if g == GeometryCurved {
		return "curved"
	}
	return "linear"
}

// Offset is a manual spatial nudge applied to one element.
type Offset struct {
	X float64
	Y float64
}

// ArraySpec describes one phased array. Offsets and FreqMultipliers are
// sparse: an absent element index means the default (no offset, multiplier
// 1.0). ID is a stable synthetic identity used only for list diffing; it
// carries no meaning for the render service.
type ArraySpec struct {
	ID              string
	Count           int
	Geometry        GeometryKind
	Curvature       float64
	Steering        float64
	Spacing         float64
	X               float64
	Y               float64
	Offsets         map[int]Offset
	FreqMultipliers map[int]float64
}

// DefaultArraySpec returns a fresh linear array with the source defaults.
func DefaultArraySpec() ArraySpec {
	return ArraySpec{
		ID:      uuid.NewString(),
		Count:   10,
		Spacing: 0.5,
	}
}

// clone deep-copies the spec so snapshots are isolated from later edits.
func (a ArraySpec) clone() ArraySpec {
	c := a
	if a.Offsets != nil {
		c.Offsets = make(map[int]Offset, len(a.Offsets))
		for k, v := range a.Offsets {
			c.Offsets[k] = v
		}
	}
	if a.FreqMultipliers != nil {
		c.FreqMultipliers = make(map[int]float64, len(a.FreqMultipliers))
		for k, v := range a.FreqMultipliers {
			c.FreqMultipliers[k] = v
		}
	}
	return c
}
