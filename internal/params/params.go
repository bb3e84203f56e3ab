// Package params is the process-local store of every tunable parameter: mix
// weights, the frequency-domain region, the array list and the active
// selections. The store is a plain injectable value with reducer-style
// update methods; it never performs I/O and never throws for out-of-range
// input. Revision counters let the orchestrator watch the two parameter
// groups independently.
package params

import "github.com/iburimskiy/fourier-studio/internal/geometry"

// NumSlots is the number of source image slots.
const NumSlots = 4

// MixMode selects which weight representation is authoritative.
type MixMode int

const (
	ModeMagPhase MixMode = iota
	ModeRealImag
)

// String returns the wire spelling used by the render service.
func (m MixMode) String() string {
	if m == ModeRealImag {
		return "real-imag"
	}
	return "mag-phase"
}

// MagPhaseWeight is one slot's weight pair in magnitude/phase mode.
type MagPhaseWeight struct {
	Magnitude float64
	Phase     float64
}

// RealImagWeight is one slot's weight pair in real/imaginary mode.
type RealImagWeight struct {
	Real float64
	Imag float64
}

// Weights is the tagged union over the two representations. Exactly one
// concrete type is held at a time; switching modes replaces the value so no
// stale fields from the other representation can leak.
type Weights interface {
	Mode() MixMode
}

// MagPhaseWeights is the weight set in magnitude/phase mode.
type MagPhaseWeights [NumSlots]MagPhaseWeight

// Mode implements Weights.
func (MagPhaseWeights) Mode() MixMode { return ModeMagPhase }

// RealImagWeights is the weight set in real/imaginary mode.
type RealImagWeights [NumSlots]RealImagWeight

// Mode implements Weights.
func (RealImagWeights) Mode() MixMode { return ModeRealImag }

// ComponentKind names a frequency-domain component view of a source slot.
type ComponentKind int

const (
	ComponentOriginal ComponentKind = iota
	ComponentMagnitude
	ComponentPhase
	ComponentReal
	ComponentImaginary
)

// String returns the spelling the render service expects in type_str.
func (c ComponentKind) String() string {
	switch c {
	case ComponentMagnitude:
		return "Magnitude"
	case ComponentPhase:
		return "Phase"
	case ComponentReal:
		return "Real"
	case ComponentImaginary:
		return "Imaginary"
	default:
		return "Original"
	}
}

// Next cycles through the component views in display order.
func (c ComponentKind) Next() ComponentKind {
	if c >= ComponentImaginary {
		return ComponentOriginal
	}
	return c + 1
}

// Snapshot is a deep copy of the parameters one render cycle needs. The
// orchestrator takes a snapshot when a cycle fires so later edits cannot
// bleed into an in-flight request.
type Snapshot struct {
	Weights Weights
	Region  geometry.Region
	Arrays  []ArraySpec
	Active  int
}
