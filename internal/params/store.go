package params

import (
	"errors"

	"github.com/iburimskiy/fourier-studio/internal/geometry"
)

// ErrLastArray is returned when a removal would leave the list empty.
var ErrLastArray = errors.New("cannot remove the last array")

// Store holds all tunable parameters. It is not safe for concurrent use and
// does not need to be: all mutation happens on the game loop. Construct one
// per window (or per test) with NewStore; there is no package-level instance.
type Store struct {
	weights Weights
	region  geometry.Region

	arrays        []ArraySpec
	activeArray   int
	activeElement int // -1 means no element selected

	imagePresent [NumSlots]bool
	slotView     [NumSlots]ComponentKind

	mixRev  uint64
	beamRev uint64
}

// NewStore returns a store with one default array, the default region and
// zeroed magnitude/phase weights.
func NewStore() *Store {
	return &Store{
		weights:       MagPhaseWeights{},
		region:        geometry.Default(),
		arrays:        []ArraySpec{DefaultArraySpec()},
		activeElement: -1,
	}
}

// MixRevision increments on every change to the mix parameter group
// (weights, mode, region).
func (s *Store) MixRevision() uint64 { return s.mixRev }

// BeamRevision increments on every change to the array parameter group.
func (s *Store) BeamRevision() uint64 { return s.beamRev }

// --- mix group ---

// Weights returns the current weight set; the concrete type matches the mode.
func (s *Store) Weights() Weights { return s.weights }

// MixMode returns the authoritative representation tag.
func (s *Store) MixMode() MixMode { return s.weights.Mode() }

// SetMixMode switches representation. The new variant starts zeroed; weights
// do not convert between representations.
func (s *Store) SetMixMode(m MixMode) {
	if m == s.weights.Mode() {
		return
	}
	if m == ModeRealImag {
		s.weights = RealImagWeights{}
	} else {
		s.weights = MagPhaseWeights{}
	}
	s.mixRev++
}

// SetMagPhaseWeight replaces one slot's pair. Ignored outside mag/phase mode
// or for an out-of-range slot.
func (s *Store) SetMagPhaseWeight(slot int, w MagPhaseWeight) {
	ws, ok := s.weights.(MagPhaseWeights)
	if !ok || slot < 0 || slot >= NumSlots {
		return
	}
	ws[slot] = w
	s.weights = ws
	s.mixRev++
}

// SetRealImagWeight replaces one slot's pair. Ignored outside real/imag mode
// or for an out-of-range slot.
func (s *Store) SetRealImagWeight(slot int, w RealImagWeight) {
	ws, ok := s.weights.(RealImagWeights)
	if !ok || slot < 0 || slot >= NumSlots {
		return
	}
	ws[slot] = w
	s.weights = ws
	s.mixRev++
}

// Region returns the current region of interest.
func (s *Store) Region() geometry.Region { return s.region }

// SetRegion replaces the region geometry, keeping whatever classification the
// new value carries. Saturates rather than errors on out-of-range values.
func (s *Store) SetRegion(r geometry.Region) {
	r.CenterX, r.CenterY = geometry.ClampCenter(r.CenterX, r.CenterY)
	r.Width, r.Height = geometry.ClampSize(r.Width, r.Height)
	s.region = r
	s.mixRev++
}

// SetRegionKind updates only the Inner/Outer classification. Geometry and
// classification are independently-set outputs of the editor.
func (s *Store) SetRegionKind(k geometry.RegionKind) {
	if s.region.Kind == k {
		return
	}
	s.region.Kind = k
	s.mixRev++
}

// --- source slots ---

// ImagePresent reports whether a source has been uploaded to slot.
func (s *Store) ImagePresent(slot int) bool {
	if slot < 0 || slot >= NumSlots {
		return false
	}
	return s.imagePresent[slot]
}

// SetImagePresent records a completed upload. Marks the mix group dirty: a
// new source invalidates the current mix result.
func (s *Store) SetImagePresent(slot int, present bool) {
	if slot < 0 || slot >= NumSlots {
		return
	}
	s.imagePresent[slot] = present
	s.mixRev++
}

// SlotView returns the component view selected for slot.
func (s *Store) SlotView(slot int) ComponentKind {
	if slot < 0 || slot >= NumSlots {
		return ComponentOriginal
	}
	return s.slotView[slot]
}

// SetSlotView changes which component a slot displays. Not part of either
// render group; the view refreshes through the immediate slot path.
func (s *Store) SetSlotView(slot int, k ComponentKind) {
	if slot < 0 || slot >= NumSlots {
		return
	}
	s.slotView[slot] = k
}

// --- beam group ---

// Arrays returns the live array list. Callers must not mutate it; use the
// updater methods so revisions stay accurate.
func (s *Store) Arrays() []ArraySpec { return s.arrays }

// ActiveArray returns the index of the selected array.
func (s *Store) ActiveArray() int { return s.activeArray }

// ActiveElement returns the selected element index, or -1.
func (s *Store) ActiveElement() int { return s.activeElement }

// AddArray appends a fresh default array and selects it.
func (s *Store) AddArray() {
	s.arrays = append(s.arrays, DefaultArraySpec())
	s.activeArray = len(s.arrays) - 1
	s.activeElement = -1
	s.beamRev++
}

// RemoveArray deletes the array at i. Refuses to empty the list.
func (s *Store) RemoveArray(i int) error {
	if i < 0 || i >= len(s.arrays) {
		return nil
	}
	if len(s.arrays) == 1 {
		return ErrLastArray
	}
	s.arrays = append(s.arrays[:i], s.arrays[i+1:]...)
	if s.activeArray >= len(s.arrays) {
		s.activeArray = len(s.arrays) - 1
	}
	s.activeElement = -1
	s.beamRev++
	return nil
}

// SetActiveArray switches the selection and resets the element selection.
// The beam group is dirtied because the profile request is built from the
// active array.
func (s *Store) SetActiveArray(i int) {
	if i < 0 || i >= len(s.arrays) || i == s.activeArray {
		return
	}
	s.activeArray = i
	s.activeElement = -1
	s.beamRev++
}

// SetActiveElement selects an element of the active array; -1 clears.
func (s *Store) SetActiveElement(i int) {
	if i < -1 || i >= s.arrays[s.activeArray].Count {
		return
	}
	s.activeElement = i
}

// UpdateActiveArray applies fn to the selected array and marks the beam
// group dirty.
func (s *Store) UpdateActiveArray(fn func(*ArraySpec)) {
	fn(&s.arrays[s.activeArray])
	a := &s.arrays[s.activeArray]
	if a.Count < 1 {
		a.Count = 1
	}
	if s.activeElement >= a.Count {
		s.activeElement = -1
	}
	s.beamRev++
}

// SetElementOffset records a sparse spatial override for one element of the
// active array. A zero offset removes the entry rather than storing defaults.
func (s *Store) SetElementOffset(elem int, off Offset) {
	a := &s.arrays[s.activeArray]
	if elem < 0 || elem >= a.Count {
		return
	}
	if off == (Offset{}) {
		delete(a.Offsets, elem)
	} else {
		if a.Offsets == nil {
			a.Offsets = make(map[int]Offset)
		}
		a.Offsets[elem] = off
	}
	s.beamRev++
}

// SetFreqMultiplier records a sparse harmonic multiplier for one element of
// the active array. Multiplier 1.0 is the default and removes the entry.
func (s *Store) SetFreqMultiplier(elem int, mult float64) {
	a := &s.arrays[s.activeArray]
	if elem < 0 || elem >= a.Count {
		return
	}
	if mult == 1.0 {
		delete(a.FreqMultipliers, elem)
	} else {
		if a.FreqMultipliers == nil {
			a.FreqMultipliers = make(map[int]float64)
		}
		a.FreqMultipliers[elem] = mult
	}
	s.beamRev++
}

// Snapshot deep-copies the parameters for one render cycle.
func (s *Store) Snapshot() Snapshot {
	arrays := make([]ArraySpec, len(s.arrays))
	for i, a := range s.arrays {
		arrays[i] = a.clone()
	}
	return Snapshot{
		Weights: s.weights,
		Region:  s.region,
		Arrays:  arrays,
		Active:  s.activeArray,
	}
}
